package losstheft_test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cannaledger/cannaledger-api/internal/application/losstheft"
	appretention "github.com/cannaledger/cannaledger-api/internal/application/retention"
	"github.com/cannaledger/cannaledger-api/internal/domain"
	"github.com/cannaledger/cannaledger-api/internal/domain/entity"
	"github.com/cannaledger/cannaledger-api/internal/domain/repository"
	"github.com/cannaledger/cannaledger-api/pkg/logger"
)

// fakeStore estado en memoria compartido por los repos fake. El mutex interno
// protege cada operación individual; la serialización de transacciones
// completas la decide fakeTxRunner.
type fakeStore struct {
	mu      sync.Mutex
	batches map[string]*entity.Batch
	reports []*entity.LossTheftReport
	numbers map[string]bool // constraint único de report_number
	events  []*entity.TraceabilityEvent
	counts  map[string]*entity.InventoryPhysicalCount

	// Inyección de fallos: mientras sea > 0, Create de reportes falla con
	// ErrDuplicate sin escribir (simula la colisión del índice único).
	forcedDuplicates int
	createAttempts   int
	hourlyScanErr    error

	txMu sync.Mutex
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		batches: make(map[string]*entity.Batch),
		numbers: make(map[string]bool),
		counts:  make(map[string]*entity.InventoryPhysicalCount),
	}
}

func (s *fakeStore) addBatch(b *entity.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[b.ID] = b
}

func (s *fakeStore) addReport(r *entity.LossTheftReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	s.numbers[r.ReportNumber] = true
}

// ──────────────────────────────────────────────────────────────────────────────
// Repos fake
// ──────────────────────────────────────────────────────────────────────────────

type fakeBatchRepo struct{ s *fakeStore }

func (r *fakeBatchRepo) Create(_ context.Context, b *entity.Batch) error {
	r.s.addBatch(b)
	return nil
}

func (r *fakeBatchRepo) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.batches[id]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Batch, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeBatchRepo) UpdateStatus(_ context.Context, b *entity.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if stored, ok := r.s.batches[b.ID]; ok {
		stored.Status = b.Status
		stored.StatusChangedAt = b.StatusChangedAt
		stored.StatusChangeReason = b.StatusChangeReason
		stored.StatusChangedBy = b.StatusChangedBy
	}
	return nil
}

func (r *fakeBatchRepo) UpdateUnits(_ context.Context, id string, units decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if stored, ok := r.s.batches[id]; ok {
		stored.CurrentUnits = units
	}
	return nil
}

func (r *fakeBatchRepo) SetArchived(_ context.Context, b *entity.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if stored, ok := r.s.batches[b.ID]; ok {
		stored.RetentionFields = b.RetentionFields
	}
	return nil
}

func (r *fakeBatchRepo) List(_ context.Context, _, _ int) ([]*entity.Batch, error) {
	return nil, nil
}

type fakeReportRepo struct{ s *fakeStore }

func (r *fakeReportRepo) Create(_ context.Context, report *entity.LossTheftReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.createAttempts++
	if r.s.forcedDuplicates > 0 {
		r.s.forcedDuplicates--
		return domain.ErrDuplicate
	}
	if r.s.numbers[report.ReportNumber] {
		return domain.ErrDuplicate
	}
	stored := *report
	r.s.reports = append(r.s.reports, &stored)
	r.s.numbers[report.ReportNumber] = true
	return nil
}

func (r *fakeReportRepo) GetByID(_ context.Context, id string) (*entity.LossTheftReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rep := range r.s.reports {
		if rep.ID == id {
			copied := *rep
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeReportRepo) CountByYear(_ context.Context, year int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, rep := range r.s.reports {
		if rep.CreatedAt.Year() == year {
			n++
		}
	}
	return n, nil
}

func (r *fakeReportRepo) List(_ context.Context, _, _ int) ([]*entity.LossTheftReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.LossTheftReport, len(r.s.reports))
	copy(out, r.s.reports)
	return out, nil
}

func (r *fakeReportRepo) FacilityTotalsSince(_ context.Context, since time.Time) ([]repository.FacilityLossAggregate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byFacility := make(map[string]*repository.FacilityLossAggregate)
	var order []string
	for _, rep := range r.s.reports {
		if rep.CreatedAt.Before(since) {
			continue
		}
		agg, ok := byFacility[rep.FacilityID]
		if !ok {
			agg = &repository.FacilityLossAggregate{FacilityID: rep.FacilityID}
			byFacility[rep.FacilityID] = agg
			order = append(order, rep.FacilityID)
		}
		agg.ReportCount++
		agg.TotalQuantity = agg.TotalQuantity.Add(rep.QuantityLost)
	}
	var out []repository.FacilityLossAggregate
	for _, id := range order {
		out = append(out, *byFacility[id])
	}
	return out, nil
}

func (r *fakeReportRepo) HourlyCountsSince(_ context.Context, since time.Time) ([]repository.HourlyLossAggregate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.hourlyScanErr != nil {
		return nil, r.s.hourlyScanErr
	}
	byHour := make(map[int]int)
	for _, rep := range r.s.reports {
		if rep.CreatedAt.Before(since) {
			continue
		}
		byHour[rep.DiscoveryDate.Hour()]++
	}
	var out []repository.HourlyLossAggregate
	for hour, count := range byHour {
		out = append(out, repository.HourlyLossAggregate{Hour: hour, ReportCount: count})
	}
	return out, nil
}

type fakeEventRepo struct{ s *fakeStore }

func (r *fakeEventRepo) Append(_ context.Context, event *entity.TraceabilityEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *event
	r.s.events = append(r.s.events, &stored)
	return nil
}

func (r *fakeEventRepo) ListByBatch(_ context.Context, batchID string, _, _ int) ([]*entity.TraceabilityEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.TraceabilityEvent
	for _, e := range r.s.events {
		if e.BatchID == batchID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeCountRepo struct{ s *fakeStore }

func (r *fakeCountRepo) Create(_ context.Context, c *entity.InventoryPhysicalCount) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *c
	r.s.counts[c.ID] = &stored
	return nil
}

func (r *fakeCountRepo) MarkJustified(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.counts[id]; ok {
		c.IsJustified = true
	}
	return nil
}

func (r *fakeCountRepo) ListUnjustifiedSince(_ context.Context, since time.Time) ([]repository.UnjustifiedCountRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []repository.UnjustifiedCountRow
	for _, c := range r.s.counts {
		if c.IsJustified || c.CountDate.Before(since) {
			continue
		}
		row := repository.UnjustifiedCountRow{
			CountID:         c.ID,
			BatchID:         c.BatchID,
			FacilityID:      c.FacilityID,
			CountedQuantity: c.CountedQuantity,
			CountDate:       c.CountDate,
		}
		if b, ok := r.s.batches[c.BatchID]; ok {
			row.CurrentUnits = b.CurrentUnits
		}
		out = append(out, row)
	}
	return out, nil
}

type fakeUserRepo struct {
	users []*entity.User
	err   error
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ListNotifiables(_ context.Context, _ string) ([]*entity.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.users, nil
}

type fakePolicyRepo struct {
	policies map[string]*entity.RecordRetentionPolicy // key: recordType + "|" + tenant
}

func policyKey(recordType string, tenantID *string) string {
	if tenantID == nil {
		return recordType + "|global"
	}
	return recordType + "|" + *tenantID
}

func (r *fakePolicyRepo) ActiveByTypeAndTenant(_ context.Context, recordType string, tenantID *string) (*entity.RecordRetentionPolicy, error) {
	if r.policies == nil {
		return nil, nil
	}
	return r.policies[policyKey(recordType, tenantID)], nil
}

func (r *fakePolicyRepo) Upsert(_ context.Context, p *entity.RecordRetentionPolicy) error {
	if r.policies == nil {
		r.policies = make(map[string]*entity.RecordRetentionPolicy)
	}
	r.policies[policyKey(p.RecordType, p.TenantID)] = p
	return nil
}

func (r *fakePolicyRepo) List(_ context.Context) ([]*entity.RecordRetentionPolicy, error) {
	var out []*entity.RecordRetentionPolicy
	for _, p := range r.policies {
		out = append(out, p)
	}
	return out, nil
}

// fakeTxRunner serializa cada transacción completa con un mutex, como lo haría
// la base con el índice único arbitrando. Los repos que entrega comparten el
// mismo store que los repos fuera de transacción.
type fakeTxRunner struct{ s *fakeStore }

func (t *fakeTxRunner) Run(_ context.Context, fn func(
	reports repository.LossTheftReportRepository,
	batches repository.BatchRepository,
	events repository.TraceabilityEventRepository,
) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()
	return fn(&fakeReportRepo{s: t.s}, &fakeBatchRepo{s: t.s}, &fakeEventRepo{s: t.s})
}

type fakeNotifier struct {
	mu      sync.Mutex
	userIDs []string
	payload losstheft.NotificationPayload
	calls   int
	err     error
}

func (n *fakeNotifier) Notify(_ context.Context, userIDs []string, payload losstheft.NotificationPayload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	n.userIDs = userIDs
	n.payload = payload
	return n.err
}

// ──────────────────────────────────────────────────────────────────────────────
// Armado del motor bajo prueba
// ──────────────────────────────────────────────────────────────────────────────

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

func newTestEngine(s *fakeStore, users *fakeUserRepo, notifier *fakeNotifier) *losstheft.Engine {
	retentionSvc := appretention.NewService(&fakePolicyRepo{}, testLogger())
	return losstheft.NewEngine(
		&fakeTxRunner{s: s},
		&fakeBatchRepo{s: s},
		&fakeReportRepo{s: s},
		&fakeCountRepo{s: s},
		users,
		retentionSvc,
		notifier,
		testLogger(),
	)
}

func driedBatch(id string, units float64) *entity.Batch {
	tenant := "00000000-0000-0000-0000-0000000000aa"
	return &entity.Batch{
		ID:           id,
		TenantID:     &tenant,
		FacilityID:   "fac-1",
		LotCode:      "LOTE-" + id,
		ProductType:  entity.ProductTypeDried,
		Status:       entity.BatchStatusActive,
		CurrentUnits: decimal.NewFromFloat(units),
		Units:        "g",
		CreatedAt:    time.Now(),
	}
}
