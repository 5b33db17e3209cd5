package entity

// Role represents an authorization role.
// The set is closed: no other value is ever persisted (enforced by a CHECK
// constraint on users.role as well).
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleResponsable Role = "responsable"
	RoleAssistante  Role = "assistante"
	RoleEntreprise  Role = "entreprise"
	RoleFormateur   Role = "formateur"
	RoleEtudiant    Role = "etudiant"
)

// DefaultRole is assigned when nothing else is specified.
const DefaultRole = RoleEtudiant

// Roles lists every valid role in display order.
var Roles = []Role{
	RoleSuperAdmin,
	RoleResponsable,
	RoleAssistante,
	RoleEntreprise,
	RoleFormateur,
	RoleEtudiant,
}

var roleLabels = map[Role]string{
	RoleSuperAdmin:  "Super Administrateur",
	RoleResponsable: "Responsable Pédagogique",
	RoleAssistante:  "Assistante",
	RoleEntreprise:  "Entreprise Partenaire",
	RoleFormateur:   "Formateur",
	RoleEtudiant:    "Étudiant",
}

// IsValid reports whether r belongs to the fixed role set.
func (r Role) IsValid() bool {
	_, ok := roleLabels[r]
	return ok
}

// Label returns the human-facing name of the role, or the raw value when unknown.
func (r Role) Label() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return string(r)
}

// RoleNames returns the raw values of Roles.
func RoleNames() []string {
	out := make([]string, 0, len(Roles))
	for _, r := range Roles {
		out = append(out, string(r))
	}
	return out
}
