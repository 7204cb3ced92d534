package models

const (
	RoleAdmin  = "admin"
	RoleMentor = "mentor"
)

// Actor identifies the authenticated caller of an operation.
type Actor struct {
	ID   int64
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
