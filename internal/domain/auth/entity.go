package auth

// Role is the coarse role carried in access tokens.
type Role string

const (
	RoleAdmin        Role = "admin"
	RolePayrollAdmin Role = "payroll_admin"
	RoleReviewer     Role = "reviewer"
	RoleEmployee     Role = "employee"
)

var RoleValues = []string{
	string(RoleAdmin),
	string(RolePayrollAdmin),
	string(RoleReviewer),
	string(RoleEmployee),
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RolePayrollAdmin, RoleReviewer, RoleEmployee:
		return true
	}
	return false
}

// Claims is the identity of the caller extracted from an access token.
type Claims struct {
	UserID         string
	OrganizationID string
	Role           Role
}
