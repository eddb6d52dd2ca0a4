package model

const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

// Caller is the authenticated identity a request acts as.
type Caller struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func (c Caller) IsPrivileged() bool {
	return c.Role == RoleStaff || c.Role == RoleAdmin
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

func (c Caller) IsAuthenticated() bool {
	return c.ID != ""
}

func IsValidRole(role string) bool {
	return role == RoleCustomer || role == RoleStaff || role == RoleAdmin
}
