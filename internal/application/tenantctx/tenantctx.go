// Package tenantctx define el contexto de tenant por request. El scope viaja
// en el context.Context de la petición (nunca en un singleton de proceso)
// para que peticiones concurrentes no se contaminen entre sí.
//
// El mismo Scope alimenta el filtrado de datos y el alcance de permisos: por
// construcción no pueden divergir dentro de una misma petición.
package tenantctx

import (
	"context"

	"github.com/cannaledger/cannaledger-api/internal/domain"
)

// Scope alcance de tenant resuelto para una petición.
// TenantID nil = acceso sin filtro (administrador global o fallback observado,
// ver Resolve).
type Scope struct {
	ActorID       string
	TenantID      *string
	IsGlobalAdmin bool
}

// Unscoped indica si el scope consulta sin filtro de tenant.
func (s Scope) Unscoped() bool { return s.TenantID == nil }

// ActorInfo datos del actor autenticado que entrega la capa de auth,
// una vez por petición.
type ActorInfo struct {
	ActorID       string
	TenantID      *string
	IsGlobalAdmin bool
}

type ctxKey struct{}

// WithScope devuelve un contexto hijo con el scope de tenant.
func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, ctxKey{}, scope)
}

// FromContext devuelve el scope de la petición, si fue resuelto.
func FromContext(ctx context.Context) (Scope, bool) {
	scope, ok := ctx.Value(ctxKey{}).(Scope)
	return scope, ok
}

// Resolve aplica la política de resolución de tenant, en orden:
//  1. Administrador global → scope sin filtro (precedencia absoluta).
//  2. Selector explícito (header) que coincide con el tenant del actor →
//     scope de ese tenant.
//  3. Selector explícito que NO coincide → ErrForbidden (fallo duro, sin
//     efecto parcial).
//  4. Actor con tenant asignado pero sin selector → scope sin filtro.
//     Comportamiento observado del sistema original, preservado tal cual;
//     muy probablemente debería resolver al tenant del actor. El middleware
//     registra un warn cuando toma esta rama. TODO: confirmar con
//     cumplimiento si la rama 4 debe resolver al tenant del actor.
func Resolve(actor ActorInfo, selector string) (Scope, error) {
	if actor.IsGlobalAdmin {
		return Scope{ActorID: actor.ActorID, IsGlobalAdmin: true}, nil
	}
	if selector != "" {
		if actor.TenantID != nil && *actor.TenantID == selector {
			tenant := selector
			return Scope{ActorID: actor.ActorID, TenantID: &tenant}, nil
		}
		return Scope{}, domain.ErrForbidden
	}
	return Scope{ActorID: actor.ActorID}, nil
}

// FallbackUnscoped indica si el scope proviene de la rama 4 de Resolve
// (actor con tenant, sin selector): el caller decide registrarlo.
func FallbackUnscoped(actor ActorInfo, scope Scope) bool {
	return !actor.IsGlobalAdmin && actor.TenantID != nil && scope.Unscoped()
}
