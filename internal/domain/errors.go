package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInvalidTransition   = errors.New("transición de estado no permitida")
	ErrUnknownRecordType   = errors.New("tipo de registro desconocido")
	ErrRetentionNotExpired = errors.New("el período de retención aún no expira")
	ErrAlreadyArchived     = errors.New("el registro ya está archivado")
)
