package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"propcore-backend/pkg/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret = "test-secret"
	testIssuer = "propcore"
)

func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return raw
}

func validClaims() Claims {
	return Claims{
		TenantID: "tenant-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func runAuth(t *testing.T, authHeader string) (*httptest.ResponseRecorder, string, string) {
	t.Helper()

	var gotUser, gotTenant string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = common.GetUserID(r.Context())
		gotTenant, _ = common.GetTenantID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := Authenticate(testSecret, testIssuer, zap.NewNop())(next)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, gotUser, gotTenant
}

func TestAuthenticate_ValidToken(t *testing.T) {
	raw := signToken(t, validClaims())

	rec, user, tenant := runAuth(t, "Bearer "+raw)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", user)
	assert.Equal(t, "tenant-1", tenant)
}

func TestAuthenticate_MissingToken(t *testing.T) {
	rec, _, _ := runAuth(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
	raw, err := token.SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	rec, _, _ := runAuth(t, "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	raw := signToken(t, claims)

	rec, _, _ := runAuth(t, "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_WrongIssuer(t *testing.T) {
	claims := validClaims()
	claims.Issuer = "someone-else"
	raw := signToken(t, claims)

	rec, _, _ := runAuth(t, "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_MissingTenantClaim(t *testing.T) {
	claims := validClaims()
	claims.TenantID = ""
	raw := signToken(t, claims)

	rec, _, _ := runAuth(t, "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_RejectsUnsignedToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims())
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	rec, _, _ := runAuth(t, "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
