package entity

import "time"

// Tenant representa una organización aislada del sistema (licenciatario de cannabis).
// Todos los registros regulados llevan tenant_id; nil queda reservado para el
// administrador global (acceso transversal).
type Tenant struct {
	ID            string
	Name          string
	LicenseNumber string // licencia de productor otorgada por el regulador
	Status        string // active, suspended, inactive
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Facility representa una instalación física (cultivo, procesamiento, bodega) de un tenant.
type Facility struct {
	ID            string
	TenantID      *string
	Name          string
	Address       string
	LicenseNumber string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
