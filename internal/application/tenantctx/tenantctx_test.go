package tenantctx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cannaledger/cannaledger-api/internal/application/tenantctx"
	"github.com/cannaledger/cannaledger-api/internal/domain"
)

func strPtr(s string) *string { return &s }

// ──────────────────────────────────────────────────────────────────────────────
// Resolve — política de resolución de tenant
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_AdminGlobalSiempreSinFiltro(t *testing.T) {
	actor := tenantctx.ActorInfo{ActorID: "u-1", TenantID: strPtr("t-1"), IsGlobalAdmin: true}

	// Aun con selector presente, el admin global tiene precedencia absoluta.
	scope, err := tenantctx.Resolve(actor, "t-2")
	require.NoError(t, err)
	assert.True(t, scope.Unscoped())
	assert.True(t, scope.IsGlobalAdmin)
	assert.Equal(t, "u-1", scope.ActorID)
}

func TestResolve_SelectorCoincideConElActor(t *testing.T) {
	actor := tenantctx.ActorInfo{ActorID: "u-1", TenantID: strPtr("t-1")}

	scope, err := tenantctx.Resolve(actor, "t-1")
	require.NoError(t, err)
	require.NotNil(t, scope.TenantID)
	assert.Equal(t, "t-1", *scope.TenantID)
	assert.False(t, scope.Unscoped())
}

func TestResolve_SelectorAjenoEsForbidden(t *testing.T) {
	actor := tenantctx.ActorInfo{ActorID: "u-1", TenantID: strPtr("t-1")}

	_, err := tenantctx.Resolve(actor, "t-2")
	assert.ErrorIs(t, err, domain.ErrForbidden,
		"pedir el tenant de otro debe fallar duro, sin efecto parcial")
}

func TestResolve_SelectorSinTenantPropioEsForbidden(t *testing.T) {
	actor := tenantctx.ActorInfo{ActorID: "u-1"}

	_, err := tenantctx.Resolve(actor, "t-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestResolve_SinSelectorResuelveSinFiltro(t *testing.T) {
	actor := tenantctx.ActorInfo{ActorID: "u-1", TenantID: strPtr("t-1")}

	scope, err := tenantctx.Resolve(actor, "")
	require.NoError(t, err)
	assert.True(t, scope.Unscoped())
	assert.True(t, tenantctx.FallbackUnscoped(actor, scope),
		"la rama de fallback debe ser detectable para que el middleware la registre")
}

func TestFallbackUnscoped_NoAplicaAlAdmin(t *testing.T) {
	actor := tenantctx.ActorInfo{ActorID: "u-1", IsGlobalAdmin: true}
	scope, err := tenantctx.Resolve(actor, "")
	require.NoError(t, err)
	assert.False(t, tenantctx.FallbackUnscoped(actor, scope))
}

// ──────────────────────────────────────────────────────────────────────────────
// WithScope / FromContext — transporte por context.Context
// ──────────────────────────────────────────────────────────────────────────────

func TestScope_ViajaEnElContexto(t *testing.T) {
	scope := tenantctx.Scope{ActorID: "u-1", TenantID: strPtr("t-1")}
	ctx := tenantctx.WithScope(context.Background(), scope)

	got, ok := tenantctx.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, scope, got)
}

func TestScope_ContextoSinScope(t *testing.T) {
	_, ok := tenantctx.FromContext(context.Background())
	assert.False(t, ok)
}

func TestScope_ContextosConcurrentesNoSeContaminan(t *testing.T) {
	base := context.Background()
	ctxA := tenantctx.WithScope(base, tenantctx.Scope{ActorID: "a", TenantID: strPtr("t-a")})
	ctxB := tenantctx.WithScope(base, tenantctx.Scope{ActorID: "b", TenantID: strPtr("t-b")})

	scopeA, _ := tenantctx.FromContext(ctxA)
	scopeB, _ := tenantctx.FromContext(ctxB)
	assert.Equal(t, "t-a", *scopeA.TenantID)
	assert.Equal(t, "t-b", *scopeB.TenantID)
}
