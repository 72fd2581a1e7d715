package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cannaledger/cannaledger-api/internal/application/batchops"
	"github.com/cannaledger/cannaledger-api/internal/application/losstheft"
	"github.com/cannaledger/cannaledger-api/internal/application/retention"
	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
	"github.com/cannaledger/cannaledger-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	BatchUC     *batchops.BatchUseCase
	Engine      *losstheft.Engine
	RetentionUC *retention.Service
	JWTSecret   string
	Log         *logger.Logger
}

// Router registra las rutas de la API. Todas las rutas de negocio van detrás
// de AuthMiddleware y TenantMiddleware: ninguna consulta corre sin scope
// resuelto.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/",
		AuthMiddleware(deps.JWTSecret),
		TenantMiddleware(deps.Log),
	)

	// Batches (protegido)
	batches := protected.Group("/batches")
	batchHandler := NewBatchHandler(deps.BatchUC)
	batches.Post("/", RequireRole(entity.RoleFacilityManager, entity.RoleOperator), batchHandler.Create)
	batches.Get("/", batchHandler.List)
	batches.Get("/:id", batchHandler.GetByID)
	batches.Put("/:id/status", RequireRole(entity.RoleFacilityManager, entity.RoleOperator), batchHandler.ChangeStatus)
	batches.Post("/:id/archive", RequireRole(entity.RoleFacilityManager), batchHandler.Archive)

	// Compliance: discrepancias, conteos, patrones (protegido)
	compliance := protected.Group("/compliance")
	complianceHandler := NewComplianceHandler(deps.Engine)
	compliance.Post("/discrepancies", RequireRole(entity.RoleFacilityManager, entity.RoleOperator), complianceHandler.AnalyzeDiscrepancy)
	compliance.Post("/counts", RequireRole(entity.RoleFacilityManager, entity.RoleOperator), complianceHandler.RegisterCount)
	compliance.Get("/reports", complianceHandler.ListReports)
	compliance.Get("/patterns", RequireRole(entity.RoleFacilityManager, entity.RoleAuditor), complianceHandler.DetectPatterns)
	compliance.Get("/variance-alerts", RequireRole(entity.RoleFacilityManager, entity.RoleAuditor), complianceHandler.VarianceAlerts)

	// Retention policies (protegido, administración)
	retentionGroup := protected.Group("/retention")
	retentionHandler := NewRetentionHandler(deps.RetentionUC)
	retentionGroup.Put("/policies", RequireRole(entity.RoleFacilityManager), retentionHandler.Upsert)
	retentionGroup.Get("/policies", retentionHandler.List)
}
