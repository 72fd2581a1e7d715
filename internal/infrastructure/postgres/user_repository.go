package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
	"github.com/cannaledger/cannaledger-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación de lectura de usuarios sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	query := `
		SELECT id, tenant_id, facility_id, email, name, role, is_global_admin,
		       created_at, updated_at
		FROM users WHERE id = $1`
	var u entity.User
	err := r.q.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.TenantID, &u.FacilityID, &u.Email, &u.Name, &u.Role,
		&u.IsGlobalAdmin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// ListNotifiables devuelve los responsables a notificar ante un incidente en
// la instalación: facility managers de esa instalación y administradores
// globales del tenant dueño (o sin tenant).
func (r *UserRepo) ListNotifiables(ctx context.Context, facilityID string) ([]*entity.User, error) {
	query := `
		SELECT u.id, u.tenant_id, u.facility_id, u.email, u.name, u.role,
		       u.is_global_admin, u.created_at, u.updated_at
		FROM users u
		WHERE (u.role = $1 AND u.facility_id = $2)
		   OR u.is_global_admin = true`
	rows, err := r.q.Query(ctx, query, entity.RoleFacilityManager, facilityID)
	if err != nil {
		return nil, fmt.Errorf("list notifiables: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(
			&u.ID, &u.TenantID, &u.FacilityID, &u.Email, &u.Name, &u.Role,
			&u.IsGlobalAdmin, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}
