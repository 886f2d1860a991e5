package valueobjects

// Address holds a property's postal address. Fields are merged shallowly on
// update: a present patch field replaces the stored one, absent fields keep
// their previous value.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`
}

// AddressPatch is a partial address update; nil fields are left untouched
type AddressPatch struct {
	Line1      *string `json:"line1,omitempty"`
	Line2      *string `json:"line2,omitempty"`
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
	Country    *string `json:"country,omitempty"`
}

// Merge applies a patch and returns the merged address
func (a Address) Merge(patch *AddressPatch) Address {
	if patch == nil {
		return a
	}
	if patch.Line1 != nil {
		a.Line1 = *patch.Line1
	}
	if patch.Line2 != nil {
		a.Line2 = *patch.Line2
	}
	if patch.City != nil {
		a.City = *patch.City
	}
	if patch.State != nil {
		a.State = *patch.State
	}
	if patch.PostalCode != nil {
		a.PostalCode = *patch.PostalCode
	}
	if patch.Country != nil {
		a.Country = *patch.Country
	}
	return a
}
