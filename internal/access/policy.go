// Package access resolves what a caller may see and do. Each role maps to one
// Policy that is looked up once per request and then drives row scope,
// field redaction and action checks.
package access

import (
	"estudios/internal/study/models"
	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
)

// Action is a mutation a role may be allowed to perform.
type Action string

const (
	ActionMutateItem      Action = "mutate_item"
	ActionCreateSolicitud Action = "create_solicitud"
	ActionInviteCandidato Action = "invite_candidato"
	ActionRecordConsent   Action = "record_consent"
	ActionManageAnexo     Action = "manage_anexo"
	// ActionSelfProfile covers reading and editing the caller's own
	// candidate record.
	ActionSelfProfile Action = "self_profile"
)

// Policy is the per-role access rule set.
type Policy struct {
	Role             id.Role
	Scope            models.ScopeKind
	RedactItemScores bool
	RedactStudyScore bool
	actions          map[Action]bool
}

var policies = map[id.Role]Policy{
	id.RoleAdmin: {
		Role:  id.RoleAdmin,
		Scope: models.ScopeAll,
		actions: map[Action]bool{
			ActionMutateItem:      true,
			ActionCreateSolicitud: true,
			ActionInviteCandidato: true,
			ActionManageAnexo:     true,
		},
	},
	id.RoleAnalista: {
		Role:  id.RoleAnalista,
		Scope: models.ScopeAnalista,
		actions: map[Action]bool{
			ActionMutateItem:      true,
			ActionInviteCandidato: true,
			ActionManageAnexo:     true,
		},
	},
	id.RoleCliente: {
		Role:             id.RoleCliente,
		Scope:            models.ScopeEmpresa,
		RedactItemScores: true,
		actions: map[Action]bool{
			ActionCreateSolicitud: true,
		},
	},
	id.RoleCandidato: {
		Role:             id.RoleCandidato,
		Scope:            models.ScopeCandidato,
		RedactStudyScore: true,
		actions: map[Action]bool{
			ActionRecordConsent: true,
			ActionManageAnexo:   true,
			ActionSelfProfile:   true,
		},
	},
}

// For returns the policy of a role. Unknown or empty roles get a policy that
// sees nothing and may do nothing.
func For(role id.Role) Policy {
	if p, ok := policies[role]; ok {
		return p
	}
	return Policy{Role: role, Scope: models.ScopeNone}
}

// Can reports whether the policy allows the action.
func (p Policy) Can(a Action) bool { return p.actions[a] }

// Require returns a forbidden error when the action is not allowed.
func (p Policy) Require(a Action) error {
	if !p.Can(a) {
		return dErrors.New(dErrors.CodeForbidden, "Sin permiso.")
	}
	return nil
}

// RowScope binds the policy scope to the caller's identity. A scope that
// needs an attribute the caller lacks resolves to ScopeNone.
func (p Policy) RowScope(c id.Caller) models.RowScope {
	switch p.Scope {
	case models.ScopeAll:
		return models.RowScope{Kind: models.ScopeAll}
	case models.ScopeEmpresa:
		if c.EmpresaID == nil || c.EmpresaID.IsNil() {
			return models.RowScope{Kind: models.ScopeNone}
		}
		return models.RowScope{Kind: models.ScopeEmpresa, EmpresaID: *c.EmpresaID}
	case models.ScopeAnalista:
		if c.UserID.IsNil() {
			return models.RowScope{Kind: models.ScopeNone}
		}
		return models.RowScope{Kind: models.ScopeAnalista, AnalistaID: c.UserID}
	case models.ScopeCandidato:
		if c.Email == "" {
			return models.RowScope{Kind: models.ScopeNone}
		}
		return models.RowScope{Kind: models.ScopeCandidato, CandidatoEmail: c.Email}
	default:
		return models.RowScope{Kind: models.ScopeNone}
	}
}
