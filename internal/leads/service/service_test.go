package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"dealership_crm_backend/internal/events"
	"dealership_crm_backend/internal/leads/domain"
	"dealership_crm_backend/internal/leads/repository"
	"dealership_crm_backend/platform/apperr"
	"dealership_crm_backend/platform/logger"
	"dealership_crm_backend/platform/phone"
)

type fakeCanonical struct {
	leads      map[string]domain.Lead
	nextID     int
	statusSets map[string]domain.Status
	analyses   map[string]domain.Analysis
}

func newFakeCanonical() *fakeCanonical {
	return &fakeCanonical{
		leads:      map[string]domain.Lead{},
		statusSets: map[string]domain.Status{},
		analyses:   map[string]domain.Analysis{},
	}
}

func (f *fakeCanonical) List(_ context.Context, consultantID string, _ int) ([]domain.Lead, error) {
	var out []domain.Lead
	for _, lead := range f.leads {
		if consultantID == "" || lead.AssignedConsultantID == consultantID {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (f *fakeCanonical) GetByID(_ context.Context, id string) (domain.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, nil
}

func (f *fakeCanonical) FindRecentByPhone(_ context.Context, digits string, since time.Time) (domain.Lead, bool, error) {
	var oldest domain.Lead
	found := false
	for _, lead := range f.leads {
		if phone.DigitsOnly(lead.Phone) != digits || lead.CreatedAt.Before(since) {
			continue
		}
		if !found || lead.CreatedAt.Before(oldest.CreatedAt) {
			oldest = lead
			found = true
		}
	}
	return oldest, found, nil
}

func (f *fakeCanonical) Create(_ context.Context, lead domain.Lead) (domain.Lead, error) {
	f.nextID++
	id := "id-" + strconv.Itoa(f.nextID)
	lead.Ref = domain.CanonicalRef(id)
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now()
	}
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeCanonical) UpdateStatus(_ context.Context, id string, status domain.Status) error {
	f.statusSets[id] = status
	return nil
}

func (f *fakeCanonical) StoreAnalysis(_ context.Context, id string, analysis domain.Analysis) error {
	f.analyses[id] = analysis
	return nil
}

func (f *fakeCanonical) UpdateDetails(_ context.Context, _ string, _ repository.DetailPatch) error {
	return nil
}

func (f *fakeCanonical) AssignIfUnassigned(_ context.Context, id, consultantID string) (bool, error) {
	lead, ok := f.leads[id]
	if !ok || lead.AssignedConsultantID != "" {
		return false, nil
	}
	lead.AssignedConsultantID = consultantID
	f.leads[id] = lead
	return true, nil
}

func (f *fakeCanonical) Assign(_ context.Context, id, consultantID string) error {
	lead, ok := f.leads[id]
	if !ok {
		return apperr.NotFound("lead not found")
	}
	lead.AssignedConsultantID = consultantID
	f.leads[id] = lead
	return nil
}

func (f *fakeCanonical) ListUnassigned(_ context.Context, _ int) ([]domain.Lead, error) {
	var out []domain.Lead
	for _, lead := range f.leads {
		if lead.AssignedConsultantID == "" {
			out = append(out, lead)
		}
	}
	return out, nil
}

type fakeLegacy struct {
	rows       map[int64]repository.IntakeRow
	statusSets map[int64]domain.Status
	deleted    []int64
}

func newFakeLegacy() *fakeLegacy {
	return &fakeLegacy{rows: map[int64]repository.IntakeRow{}, statusSets: map[int64]domain.Status{}}
}

func (f *fakeLegacy) List(_ context.Context, _ int) ([]domain.Lead, error) {
	var out []domain.Lead
	for _, row := range f.rows {
		out = append(out, row.ToLead())
	}
	return out, nil
}

func (f *fakeLegacy) GetByID(_ context.Context, id int64) (repository.IntakeRow, error) {
	row, ok := f.rows[id]
	if !ok {
		return repository.IntakeRow{}, apperr.NotFound("lead not found")
	}
	return row, nil
}

func (f *fakeLegacy) UpdateStatus(_ context.Context, id int64, status domain.Status) error {
	f.statusSets[id] = status
	return nil
}

func (f *fakeLegacy) StoreAnalysis(_ context.Context, _ int64, _ domain.Analysis) error { return nil }

func (f *fakeLegacy) UpdateDetails(_ context.Context, _ int64, _ repository.DetailPatch) error {
	return nil
}

func (f *fakeLegacy) SetConsultantIfEmpty(_ context.Context, id int64, name string) (bool, error) {
	row, ok := f.rows[id]
	if !ok || row.ConsultantName != "" {
		return false, nil
	}
	row.ConsultantName = name
	f.rows[id] = row
	return true, nil
}

func (f *fakeLegacy) SetConsultant(_ context.Context, id int64, name string) error {
	row, ok := f.rows[id]
	if !ok {
		return apperr.NotFound("lead not found")
	}
	row.ConsultantName = name
	f.rows[id] = row
	return nil
}

func (f *fakeLegacy) ListUnassigned(_ context.Context, _ int) ([]repository.IntakeRow, error) {
	var out []repository.IntakeRow
	for _, row := range f.rows {
		if row.ConsultantName == "" && !row.Sent {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeLegacy) Delete(_ context.Context, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return apperr.NotFound("lead not found")
	}
	delete(f.rows, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeConsultants struct {
	byID map[string]domain.Consultant
}

func (f *fakeConsultants) GetByID(_ context.Context, id string) (domain.Consultant, error) {
	c, ok := f.byID[id]
	if !ok {
		return domain.Consultant{}, apperr.NotFound("consultant not found")
	}
	return c, nil
}

type fakeAnalyzer struct {
	analysis domain.Analysis
	err      error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ domain.Lead, _ string) (domain.Analysis, error) {
	return f.analysis, f.err
}

type captureBus struct {
	published []events.Event
}

func (b *captureBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *captureBus) PublishSync(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *captureBus) Subscribe(string, events.Handler) {}

func newTestService(canonical *fakeCanonical, legacy *fakeLegacy, analyzer *fakeAnalyzer) *Service {
	log := logger.New("development")
	consultants := &fakeConsultants{byID: map[string]domain.Consultant{
		"c1": {ID: "c1", Name: "Sergio Mendes", IsActive: true},
	}}
	svc := New(canonical, legacy, consultants, nil, events.NewInMemoryBus(log), log)
	if analyzer != nil {
		svc.analyzer = analyzer
	}
	return svc
}

func TestCreateLeadLinksDuplicateWithinWindow(t *testing.T) {
	canonical := newFakeCanonical()
	svc := newTestService(canonical, newFakeLegacy(), nil)
	ctx := context.Background()

	base := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	first, err := svc.CreateLead(ctx, CreateLeadInput{Name: "João", Phone: "47999991111"})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if first.DuplicateOf != "" {
		t.Fatalf("first lead must not be a duplicate, got %q", first.DuplicateOf)
	}

	// Two days later the same phone comes back.
	svc.now = func() time.Time { return base.Add(48 * time.Hour) }
	stored := canonical.leads[first.Ref.ID]
	stored.CreatedAt = base
	canonical.leads[first.Ref.ID] = stored

	second, err := svc.CreateLead(ctx, CreateLeadInput{Name: "João de novo", Phone: "(47) 99999-1111"})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.DuplicateOf != first.Ref.ID {
		t.Fatalf("duplicate_of = %q, want %q", second.DuplicateOf, first.Ref.ID)
	}
	if len(canonical.leads) != 2 {
		t.Fatalf("both rows must exist independently, have %d", len(canonical.leads))
	}
}

func TestCreateLeadOutsideWindowNotDuplicate(t *testing.T) {
	canonical := newFakeCanonical()
	svc := newTestService(canonical, newFakeLegacy(), nil)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	first, err := svc.CreateLead(ctx, CreateLeadInput{Name: "Antigo", Phone: "47999992222"})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	stored := canonical.leads[first.Ref.ID]
	stored.CreatedAt = base
	canonical.leads[first.Ref.ID] = stored

	svc.now = func() time.Time { return base.Add(31 * 24 * time.Hour) }
	second, err := svc.CreateLead(ctx, CreateLeadInput{Name: "Novo", Phone: "47999992222"})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.DuplicateOf != "" {
		t.Fatalf("lead outside the window must not be linked, got %q", second.DuplicateOf)
	}
}

func TestUpdateStatusRoutesByProvenance(t *testing.T) {
	canonical := newFakeCanonical()
	legacy := newFakeLegacy()
	legacy.rows[7] = repository.IntakeRow{ID: 7, Name: "Intake"}
	canonical.leads["abc"] = domain.Lead{Ref: domain.CanonicalRef("abc")}
	svc := newTestService(canonical, legacy, nil)
	ctx := context.Background()

	if err := svc.UpdateStatus(ctx, domain.CanonicalRef("abc"), domain.StatusNegotiation, "u1"); err != nil {
		t.Fatalf("canonical update: %v", err)
	}
	if canonical.statusSets["abc"] != domain.StatusNegotiation {
		t.Fatal("canonical status write missing")
	}

	if err := svc.UpdateStatus(ctx, domain.LegacyRef("7"), domain.StatusContacted, "u1"); err != nil {
		t.Fatalf("legacy update: %v", err)
	}
	if legacy.statusSets[7] != domain.StatusContacted {
		t.Fatal("legacy status write missing")
	}
}

func TestUpdateStatusPublishesOldAndNewStatus(t *testing.T) {
	canonical := newFakeCanonical()
	canonical.leads["abc"] = domain.Lead{
		Ref:    domain.CanonicalRef("abc"),
		Status: domain.StatusContacted,
	}
	bus := &captureBus{}
	log := logger.New("development")
	svc := New(canonical, newFakeLegacy(), &fakeConsultants{}, nil, bus, log)

	if err := svc.UpdateStatus(context.Background(), domain.CanonicalRef("abc"), domain.StatusNegotiation, "u1"); err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
	changed, ok := bus.published[0].(events.LeadStatusChanged)
	if !ok {
		t.Fatalf("event type %T", bus.published[0])
	}
	if changed.OldStatus != string(domain.StatusContacted) {
		t.Fatalf("old status = %q, want %q", changed.OldStatus, domain.StatusContacted)
	}
	if changed.NewStatus != string(domain.StatusNegotiation) {
		t.Fatalf("new status = %q, want %q", changed.NewStatus, domain.StatusNegotiation)
	}
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	svc := newTestService(newFakeCanonical(), newFakeLegacy(), nil)
	err := svc.UpdateStatus(context.Background(), domain.CanonicalRef("abc"), domain.Status("banana"), "u1")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteLeadLegacyOnly(t *testing.T) {
	legacy := newFakeLegacy()
	legacy.rows[3] = repository.IntakeRow{ID: 3}
	svc := newTestService(newFakeCanonical(), legacy, nil)
	ctx := context.Background()

	if err := svc.DeleteLead(ctx, domain.CanonicalRef("abc")); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("canonical delete must be forbidden, got %v", err)
	}
	if err := svc.DeleteLead(ctx, domain.LegacyRef("3")); err != nil {
		t.Fatalf("legacy delete: %v", err)
	}
	if len(legacy.deleted) != 1 || legacy.deleted[0] != 3 {
		t.Fatalf("deleted = %v", legacy.deleted)
	}
}

func TestAnalyzeLeadStoresResult(t *testing.T) {
	canonical := newFakeCanonical()
	canonical.leads["abc"] = domain.Lead{Ref: domain.CanonicalRef("abc"), Name: "Cliente"}
	analyzer := &fakeAnalyzer{analysis: domain.Analysis{
		Classification: domain.ClassificationHot, Score: 90, Summary: "pronto para fechar",
	}}
	svc := newTestService(canonical, newFakeLegacy(), analyzer)

	analysis, err := svc.AnalyzeLead(context.Background(), domain.CanonicalRef("abc"), "conversa")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Score != 90 {
		t.Fatalf("score = %d", analysis.Score)
	}
	if stored := canonical.analyses["abc"]; stored.Classification != domain.ClassificationHot {
		t.Fatalf("analysis not stored: %+v", stored)
	}
}

func TestAnalyzeLeadSurfacesAIFailure(t *testing.T) {
	canonical := newFakeCanonical()
	canonical.leads["abc"] = domain.Lead{Ref: domain.CanonicalRef("abc")}
	analyzer := &fakeAnalyzer{err: errors.New("model timeout")}
	svc := newTestService(canonical, newFakeLegacy(), analyzer)

	if _, err := svc.AnalyzeLead(context.Background(), domain.CanonicalRef("abc"), ""); err == nil {
		t.Fatal("AI failure must surface, never default")
	}
	if len(canonical.analyses) != 0 {
		t.Fatal("failed analysis must not be stored")
	}
}

func TestApplyAssignmentRoutesAndGuards(t *testing.T) {
	canonical := newFakeCanonical()
	canonical.leads["abc"] = domain.Lead{Ref: domain.CanonicalRef("abc")}
	legacy := newFakeLegacy()
	legacy.rows[9] = repository.IntakeRow{ID: 9}
	svc := newTestService(canonical, legacy, nil)
	ctx := context.Background()
	consultant := domain.Consultant{ID: "c1", Name: "Sergio Mendes"}

	ok, err := svc.ApplyAssignment(ctx, domain.CanonicalRef("abc"), consultant)
	if err != nil || !ok {
		t.Fatalf("first canonical apply: ok=%v err=%v", ok, err)
	}
	ok, _ = svc.ApplyAssignment(ctx, domain.CanonicalRef("abc"), domain.Consultant{ID: "c2"})
	if ok {
		t.Fatal("already-assigned lead must reject a second assignment")
	}

	ok, err = svc.ApplyAssignment(ctx, domain.LegacyRef("9"), consultant)
	if err != nil || !ok {
		t.Fatalf("legacy apply: ok=%v err=%v", ok, err)
	}
	if legacy.rows[9].ConsultantName != "Sergio Mendes" {
		t.Fatalf("intake row consultant = %q", legacy.rows[9].ConsultantName)
	}
}
