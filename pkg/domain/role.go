package domain

import "strings"

// Role is the coarse actor category carried by a validated bearer token.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleCliente   Role = "CLIENTE"
	RoleAnalista  Role = "ANALISTA"
	RoleCandidato Role = "CANDIDATO"
)

// ParseRole normalizes a role claim. Unknown values return ok=false and the
// caller is treated as having no role at all.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.IsValid()
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCliente, RoleAnalista, RoleCandidato:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// Caller is the authenticated principal behind a request.
type Caller struct {
	UserID    UserID
	Role      Role
	Email     string
	EmpresaID *EmpresaID
}
