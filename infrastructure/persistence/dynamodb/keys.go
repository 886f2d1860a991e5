package dynamodb

import (
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Single-table key layout. Every item lives under its tenant partition;
// GSI1 serves code/number lookups and per-property listings, GSI2 serves
// block membership queries.
//
//	property  PK=TENANT#<t>  SK=PROPERTY#<id>  GSI1PK=TENANT#<t>#CODE#<code>
//	unit      PK=TENANT#<t>  SK=UNIT#<id>      GSI1PK=PROPERTY#<pid> GSI1SK=UNIT#<number>  GSI2PK=BLOCK#<bid>
//	block     PK=TENANT#<t>  SK=BLOCK#<id>     GSI1PK=PROPERTY#<pid> GSI1SK=BLOCK#<code>
//	sequence  PK=TENANT#<t>  SK=SEQ#...
const (
	entityTypeProperty = "PROPERTY"
	entityTypeUnit     = "UNIT"
	entityTypeBlock    = "BLOCK"
)

func tenantPK(tenantID string) string {
	return "TENANT#" + tenantID
}

func propertySK(propertyID string) string {
	return "PROPERTY#" + propertyID
}

func propertyCodeGSI1PK(tenantID, code string) string {
	return fmt.Sprintf("TENANT#%s#CODE#%s", tenantID, code)
}

func unitSK(unitID string) string {
	return "UNIT#" + unitID
}

func propertyGSI1PK(propertyID string) string {
	return "PROPERTY#" + propertyID
}

func unitNumberGSI1SK(unitNumber string) string {
	return "UNIT#" + unitNumber
}

func blockSK(blockID string) string {
	return "BLOCK#" + blockID
}

func blockCodeGSI1SK(blockCode string) string {
	return "BLOCK#" + blockCode
}

func blockGSI2PK(blockID string) string {
	return "BLOCK#" + blockID
}

func propertySequenceSK(year int) string {
	return fmt.Sprintf("SEQ#PROPERTY#%d", year)
}

func blockSequenceSK(propertyID string) string {
	return "SEQ#BLOCK#" + propertyID
}

// encodeTime formats a timestamp for storage
func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// decodeTime parses a stored timestamp, zero on malformed input
func decodeTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func encodeTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return encodeTime(*t)
}

func decodeTimePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t := decodeTime(s)
	return &t
}

// isConditionalCheckFailed reports whether a write was rejected by its
// condition expression
func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
