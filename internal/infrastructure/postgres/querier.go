package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cannaledger/cannaledger-api/internal/application/tenantctx"
)

// Querier abstrae pool y transacción: los repositorios funcionan igual sobre
// *pgxpool.Pool que sobre pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// tenantParam devuelve el tenant del contexto como parámetro SQL.
// nil = scope sin filtro (admin global): la cláusula
// ($N::uuid IS NULL OR tenant_id = $N::uuid) deja pasar todas las filas.
// El filtrado es un decorador explícito sobre cada consulta, no magia
// implícita: cada repo consulta el contexto en cada llamada.
func tenantParam(ctx context.Context) *string {
	if scope, ok := tenantctx.FromContext(ctx); ok && !scope.Unscoped() {
		return scope.TenantID
	}
	return nil
}
