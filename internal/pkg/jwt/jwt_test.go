package jwt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", "15m")

	token, expiresAt, err := svc.GenerateAccessToken("user-1", "org-1", auth.RolePayrollAdmin)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Positive(t, expiresAt)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claimsMap, err := decoded.AsMap(context.Background())
	require.NoError(t, err)

	claims, err := ClaimsFromMap(claimsMap)
	require.NoError(t, err)
	assert.Equal(t, auth.Claims{UserID: "user-1", OrganizationID: "org-1", Role: auth.RolePayrollAdmin}, claims)
}

func TestGenerateAccessToken_Errors(t *testing.T) {
	_, _, err := NewJWTService("s", "15m").GenerateAccessToken("u", "o", auth.Role("owner"))
	assert.ErrorIs(t, err, auth.ErrInvalidRole)

	_, _, err = NewJWTService("s", "not-a-duration").GenerateAccessToken("u", "o", auth.RoleAdmin)
	assert.Error(t, err)
}

func TestClaimsFromMap(t *testing.T) {
	base := func() map[string]interface{} {
		return map[string]interface{}{
			"type":            "access",
			"user_id":         "u",
			"organization_id": "o",
			"role":            "reviewer",
		}
	}

	_, err := ClaimsFromMap(base())
	assert.NoError(t, err)

	m := base()
	m["type"] = "refresh"
	_, err = ClaimsFromMap(m)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	m = base()
	delete(m, "organization_id")
	_, err = ClaimsFromMap(m)
	assert.ErrorIs(t, err, auth.ErrMissingOrganization)

	m = base()
	m["role"] = "superuser"
	_, err = ClaimsFromMap(m)
	assert.ErrorIs(t, err, auth.ErrInvalidRole)
}
