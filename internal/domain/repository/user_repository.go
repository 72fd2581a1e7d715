package repository

import (
	"context"

	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
)

// UserRepository define el puerto de lectura de usuarios para notificación.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// ListNotifiables devuelve los responsables a notificar ante un incidente:
	// facility managers de la instalación más los administradores globales.
	ListNotifiables(ctx context.Context, facilityID string) ([]*entity.User, error)
}
