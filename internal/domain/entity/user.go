package entity

import "time"

// Roles de usuario.
const (
	RoleFacilityManager = "facility_manager"
	RoleOperator        = "operator"
	RoleAuditor         = "auditor"
)

// User representa un actor autenticado. IsGlobalAdmin concede acceso
// transversal a todos los tenants (TenantID nil en ese caso).
type User struct {
	ID            string
	TenantID      *string
	FacilityID    *string
	Email         string
	Name          string
	Role          string // ver constantes Role*
	IsGlobalAdmin bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
