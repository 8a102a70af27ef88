package promotion

import (
	"context"
	"strings"
	"testing"

	"dealership_crm_backend/internal/events"
	"dealership_crm_backend/internal/leads/domain"
	"dealership_crm_backend/internal/leads/repository"
	"dealership_crm_backend/platform/logger"
	"dealership_crm_backend/platform/phone"
)

type fakeSource struct {
	rows  []repository.IntakeRow
	sent  map[int64]bool
	lists int
}

func (f *fakeSource) ListPendingPromotion(_ context.Context, limit int) ([]repository.IntakeRow, error) {
	f.lists++
	var pending []repository.IntakeRow
	for _, row := range f.rows {
		if !f.sent[row.ID] && row.ConsultantName != "" {
			pending = append(pending, row)
		}
		if len(pending) == limit {
			break
		}
	}
	return pending, nil
}

func (f *fakeSource) MarkSent(_ context.Context, id int64) error {
	if f.sent == nil {
		f.sent = map[int64]bool{}
	}
	f.sent[id] = true
	return nil
}

type fakeDestination struct {
	leads  []domain.Lead
	nextID int
}

func (f *fakeDestination) ExistsByPhone(_ context.Context, digits string) (bool, error) {
	for _, lead := range f.leads {
		if phone.DigitsOnly(lead.Phone) == digits {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDestination) Create(_ context.Context, lead domain.Lead) (domain.Lead, error) {
	f.nextID++
	lead.Ref = domain.CanonicalRef(string(rune('a' + f.nextID)))
	f.leads = append(f.leads, lead)
	return lead, nil
}

type fakeResolver struct {
	consultants []domain.Consultant
}

func (f *fakeResolver) FindByName(_ context.Context, name string) (domain.Consultant, bool, error) {
	for _, c := range f.consultants {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(name)) {
			return c, true, nil
		}
	}
	return domain.Consultant{}, false, nil
}

func newTestEngine(source *fakeSource, dest *fakeDestination, resolver *fakeResolver) *Engine {
	log := logger.New("development")
	return NewEngine(source, dest, resolver, events.NewInMemoryBus(log), log)
}

func TestSyncPendingMigratesQualifyingRows(t *testing.T) {
	source := &fakeSource{rows: []repository.IntakeRow{
		{ID: 1, Name: "João", Phone: "(47) 99999-1111", ConsultantName: "Sergio",
			Summary: `Cliente gostou do carro ||IA_DATA|| {"classification":"hot","score":80}`},
	}}
	dest := &fakeDestination{}
	resolver := &fakeResolver{consultants: []domain.Consultant{
		{ID: "c1", Name: "Sergio Mendes", IsActive: true},
	}}
	engine := newTestEngine(source, dest, resolver)

	count, err := engine.SyncPending(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if count != 1 {
		t.Fatalf("migrated %d, want 1", count)
	}
	if !source.sent[1] {
		t.Fatal("source row must be marked sent")
	}

	created := dest.leads[0]
	if created.Phone != "+5547999991111" {
		t.Fatalf("phone = %q, want normalized E.164", created.Phone)
	}
	if created.AssignedConsultantID != "c1" {
		t.Fatalf("consultant = %q, want c1", created.AssignedConsultantID)
	}
	if created.AIClassification != domain.ClassificationHot || created.AIScore != 80 {
		t.Fatalf("ai fields not carried over: %+v", created)
	}
	if created.Notes != "Cliente gostou do carro" {
		t.Fatalf("notes = %q", created.Notes)
	}
}

func TestSyncPendingDefaultsNeutralAIFields(t *testing.T) {
	source := &fakeSource{rows: []repository.IntakeRow{
		{ID: 1, Name: "Maria", Phone: "47999992222", ConsultantName: "Ana"},
	}}
	dest := &fakeDestination{}
	resolver := &fakeResolver{consultants: []domain.Consultant{{ID: "c2", Name: "Ana Paula"}}}
	engine := newTestEngine(source, dest, resolver)

	if _, err := engine.SyncPending(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	created := dest.leads[0]
	if created.AIClassification != domain.ClassificationWarm || created.AIScore != 0 {
		t.Fatalf("expected neutral defaults, got %+v", created)
	}
}

func TestSyncPendingDuplicateSuppression(t *testing.T) {
	source := &fakeSource{rows: []repository.IntakeRow{
		{ID: 5, Name: "Pedro", Phone: "(47) 99999-3333", ConsultantName: "Sergio"},
	}}
	dest := &fakeDestination{leads: []domain.Lead{
		{Ref: domain.CanonicalRef("existing"), Phone: "+5547999993333"},
	}}
	resolver := &fakeResolver{consultants: []domain.Consultant{{ID: "c1", Name: "Sergio"}}}
	engine := newTestEngine(source, dest, resolver)

	count, err := engine.SyncPending(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if count != 0 {
		t.Fatalf("duplicate must not count as migrated, got %d", count)
	}
	if len(dest.leads) != 1 {
		t.Fatalf("duplicate must not insert, have %d leads", len(dest.leads))
	}
	if !source.sent[5] {
		t.Fatal("duplicate source row must still be marked sent")
	}
}

func TestSyncPendingSkipsEmptyPhone(t *testing.T) {
	source := &fakeSource{rows: []repository.IntakeRow{
		{ID: 2, Name: "Sem Telefone", Phone: "---", ConsultantName: "Sergio"},
	}}
	dest := &fakeDestination{}
	resolver := &fakeResolver{consultants: []domain.Consultant{{ID: "c1", Name: "Sergio"}}}
	engine := newTestEngine(source, dest, resolver)

	count, err := engine.SyncPending(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if count != 0 || len(dest.leads) != 0 {
		t.Fatal("row without digits must be skipped")
	}
	if source.sent[2] {
		t.Fatal("skipped row must stay unsent for manual handling")
	}
}

func TestSyncPendingSkipsUnresolvedConsultant(t *testing.T) {
	source := &fakeSource{rows: []repository.IntakeRow{
		{ID: 3, Name: "Cliente", Phone: "47999994444", ConsultantName: "Desconhecido"},
	}}
	dest := &fakeDestination{}
	engine := newTestEngine(source, dest, &fakeResolver{})

	count, err := engine.SyncPending(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if count != 0 || len(dest.leads) != 0 {
		t.Fatal("unresolved consultant must leave the row for a later pass")
	}
	if source.sent[3] {
		t.Fatal("unresolved row must not be marked sent")
	}
}

func TestSyncPendingIdempotent(t *testing.T) {
	source := &fakeSource{rows: []repository.IntakeRow{
		{ID: 1, Name: "João", Phone: "47999991111", ConsultantName: "Sergio"},
	}}
	dest := &fakeDestination{}
	resolver := &fakeResolver{consultants: []domain.Consultant{{ID: "c1", Name: "Sergio"}}}
	engine := newTestEngine(source, dest, resolver)

	first, err := engine.SyncPending(context.Background())
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	second, err := engine.SyncPending(context.Background())
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if first != 1 || second != 0 {
		t.Fatalf("first=%d second=%d, want 1 and 0", first, second)
	}
	if len(dest.leads) != 1 {
		t.Fatalf("second sweep must perform no writes, have %d leads", len(dest.leads))
	}
}
