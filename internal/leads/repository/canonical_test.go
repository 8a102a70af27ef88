package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"dealership_crm_backend/internal/leads/codec"
	"dealership_crm_backend/internal/leads/domain"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

// fakeDB stands in for the pool. With missingColumns set, every typed
// status/AI write fails with 42703 the way an old deployment without
// those columns would.
type fakeDB struct {
	missingColumns bool
	notes          string
	noteWrites     []string
	narrowInserts  [][]any
}

func missingColumnPgErr() *pgconn.PgError {
	return &pgconn.PgError{
		Code:    pgUndefinedColumn,
		Message: `column "status" of relation "leads" does not exist`,
	}
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch {
	case strings.Contains(sql, "SET status"), strings.Contains(sql, "SET ai_classification"):
		if f.missingColumns {
			return pgconn.CommandTag{}, missingColumnPgErr()
		}
		return pgconn.NewCommandTag("UPDATE 1"), nil
	case strings.Contains(sql, "SET notes"):
		f.notes = args[0].(string)
		f.noteWrites = append(f.noteWrites, f.notes)
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	return pgconn.CommandTag{}, errors.New("unexpected exec: " + sql)
}

func (f *fakeDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query: " + sql)
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "COALESCE(notes"):
		return fakeRow{scan: func(dest ...any) error {
			*(dest[0].(*string)) = f.notes
			return nil
		}}
	case strings.Contains(sql, "ai_score"):
		// Full insert naming the status/AI columns.
		if f.missingColumns {
			return fakeRow{scan: func(...any) error { return missingColumnPgErr() }}
		}
		return fakeRow{scan: func(dest ...any) error {
			*(dest[0].(*string)) = "typed-id"
			return nil
		}}
	case strings.Contains(sql, "INSERT INTO leads"):
		f.narrowInserts = append(f.narrowInserts, args)
		return fakeRow{scan: func(dest ...any) error {
			*(dest[0].(*string)) = "encoded-id"
			return nil
		}}
	}
	return fakeRow{scan: func(...any) error { return errors.New("unexpected query row: " + sql) }}
}

func TestUpdateStatusFallsBackToNotesCodec(t *testing.T) {
	db := &fakeDB{missingColumns: true, notes: "Cliente pediu retorno"}
	repo := &Canonical{db: db}

	if err := repo.UpdateStatus(context.Background(), "abc", domain.StatusNegotiation); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if len(db.noteWrites) != 1 {
		t.Fatalf("notes writes = %d, want 1", len(db.noteWrites))
	}

	payload, plain := codec.Decode(db.notes)
	if payload.Status != string(domain.StatusNegotiation) {
		t.Fatalf("encoded status = %q, want %q", payload.Status, domain.StatusNegotiation)
	}
	if plain != "Cliente pediu retorno" {
		t.Fatalf("plain notes = %q, original text must survive", plain)
	}
}

func TestStoreAnalysisFallbackPreservesEncodedStatus(t *testing.T) {
	db := &fakeDB{
		missingColumns: true,
		notes:          codec.Encode("Ligou ontem", codec.Payload{Status: "contacted"}),
	}
	repo := &Canonical{db: db}

	err := repo.StoreAnalysis(context.Background(), "abc", domain.Analysis{
		Classification: domain.ClassificationHot,
		Score:          90,
		Summary:        "pronto para fechar",
	})
	if err != nil {
		t.Fatalf("store analysis: %v", err)
	}

	payload, plain := codec.Decode(db.notes)
	if payload.Status != "contacted" {
		t.Fatalf("status = %q, the earlier encoded status must survive", payload.Status)
	}
	if payload.Classification != "hot" || payload.Score != 90 {
		t.Fatalf("analysis fields not encoded: %+v", payload)
	}
	if plain != "Ligou ontem" {
		t.Fatalf("plain notes = %q", plain)
	}
}

func TestCreateFallsBackToEncodedInsert(t *testing.T) {
	db := &fakeDB{missingColumns: true}
	repo := &Canonical{db: db}

	created, err := repo.Create(context.Background(), domain.Lead{
		Name:             "João",
		Phone:            "+5547999991111",
		Status:           domain.StatusReceived,
		AIClassification: domain.ClassificationWarm,
		Notes:            "veio do formulário",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Ref.ID != "encoded-id" {
		t.Fatalf("ref = %q, want the narrow-insert id", created.Ref.ID)
	}
	if len(db.narrowInserts) != 1 {
		t.Fatalf("narrow inserts = %d, want 1", len(db.narrowInserts))
	}

	notes := db.narrowInserts[0][8].(string)
	payload, plain := codec.Decode(notes)
	if payload.Status != string(domain.StatusReceived) || payload.Classification != "warm" {
		t.Fatalf("payload not packed into notes: %+v", payload)
	}
	if plain != "veio do formulário" {
		t.Fatalf("plain notes = %q", plain)
	}
}

func TestUpdateStatusPrefersTypedColumn(t *testing.T) {
	db := &fakeDB{notes: "untouched"}
	repo := &Canonical{db: db}

	if err := repo.UpdateStatus(context.Background(), "abc", domain.StatusVisited); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if len(db.noteWrites) != 0 {
		t.Fatal("typed write must not touch notes")
	}
}
