package persistence

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/harborworks/facilitydesk/modules/competency/domain/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type beginFunc func(ctx context.Context) (pgx.Tx, error)

func (f beginFunc) Begin(ctx context.Context) (pgx.Tx, error) { return f(ctx) }

type txStub struct {
	stmts     []string
	execErr   error
	row       pgx.Row
	commitErr error
}

func (t *txStub) Begin(context.Context) (pgx.Tx, error) { return t, nil }
func (t *txStub) Commit(context.Context) error          { return t.commitErr }
func (t *txStub) Rollback(context.Context) error        { return nil }
func (t *txStub) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *txStub) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (t *txStub) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (t *txStub) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *txStub) Conn() *pgx.Conn { return nil }

func (t *txStub) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.stmts = append(t.stmts, sql)
	return pgconn.CommandTag{}, t.execErr
}

func (t *txStub) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	t.stmts = append(t.stmts, sql)
	return &stubRows{}, nil
}

func (t *txStub) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	t.stmts = append(t.stmts, sql)
	if t.row != nil {
		return t.row
	}
	return stubRow{err: errors.New("row not mocked")}
}

type stubRows struct{}

func (r *stubRows) Close()                                       {}
func (r *stubRows) Err() error                                   { return nil }
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Next() bool                                   { return false }
func (r *stubRows) Scan(...any) error                            { return nil }
func (r *stubRows) Values() ([]any, error)                       { return nil, nil }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

type stubRow struct {
	vals []any
	err  error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i := range dest {
		if i >= len(r.vals) || r.vals[i] == nil {
			continue
		}
		if d, ok := dest[i].(*string); ok {
			*d = r.vals[i].(string)
		}
	}
	return nil
}

func matrixRowVals(rec types.CompetencyRecord) []any {
	return []any{
		rec.ID, rec.ContractVersionID, rec.TeamID, rec.CategoryID,
		rec.BuildingID, string(rec.Level), string(rec.Window),
	}
}

func TestCompetencyMatrixPGStore_Upsert(t *testing.T) {
	ctx := context.Background()
	rec := types.CompetencyRecord{
		ID:                "m1",
		ContractVersionID: "cv1",
		TeamID:            "t1",
		CategoryID:        "hvac",
		BuildingID:        "b1",
		Level:             types.LevelPrimary,
		Window:            types.WindowBusinessHours,
	}

	store := NewCompetencyMatrixPGStore(beginFunc(func(context.Context) (pgx.Tx, error) {
		return nil, errors.New("begin")
	}))
	if _, err := store.Upsert(ctx, rec); err == nil {
		t.Fatal("expected begin error")
	}

	store = NewCompetencyMatrixPGStore(beginFunc(func(context.Context) (pgx.Tx, error) {
		return &txStub{row: stubRow{err: errors.New("row")}}, nil
	}))
	if _, err := store.Upsert(ctx, rec); err == nil {
		t.Fatal("expected row error")
	}

	store = NewCompetencyMatrixPGStore(beginFunc(func(context.Context) (pgx.Tx, error) {
		return &txStub{row: stubRow{vals: matrixRowVals(rec)}, commitErr: errors.New("commit")}, nil
	}))
	if _, err := store.Upsert(ctx, rec); err == nil {
		t.Fatal("expected commit error")
	}

	store = NewCompetencyMatrixPGStore(beginFunc(func(context.Context) (pgx.Tx, error) {
		return &txStub{row: stubRow{vals: matrixRowVals(rec)}}, nil
	}))
	out, err := store.Upsert(ctx, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != rec {
		t.Fatalf("unexpected record: %+v", out)
	}
}

func TestCompetencyMatrixPGStore_Find(t *testing.T) {
	ctx := context.Background()
	rec := types.CompetencyRecord{
		ID:                "m2",
		ContractVersionID: "cv1",
		TeamID:            "t2",
		CategoryID:        "plumbing",
		Level:             types.LevelBackup,
		Window:            types.WindowAny,
	}

	store := NewCompetencyMatrixPGStore(beginFunc(func(context.Context) (pgx.Tx, error) {
		return &txStub{row: stubRow{err: pgx.ErrNoRows}}, nil
	}))
	if _, found, err := store.Find(ctx, rec.Key()); err != nil || found {
		t.Fatalf("expected miss without error, got found=%v err=%v", found, err)
	}

	store = NewCompetencyMatrixPGStore(beginFunc(func(context.Context) (pgx.Tx, error) {
		return &txStub{row: stubRow{vals: matrixRowVals(rec)}}, nil
	}))
	out, found, err := store.Find(ctx, rec.Key())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || out != rec {
		t.Fatalf("unexpected record: found=%v %+v", found, out)
	}
}

// PostgreSQL reserves WINDOW, so the matrix statements must only ever touch
// the column as time_window. A regression here is a runtime syntax error on
// every matrix read and write.
func TestCompetencyMatrixPGStore_StatementColumnNames(t *testing.T) {
	ctx := context.Background()
	rec := types.CompetencyRecord{
		ID:                "m1",
		ContractVersionID: "cv1",
		TeamID:            "t1",
		CategoryID:        "hvac",
		Level:             types.LevelPrimary,
		Window:            types.WindowBusinessHours,
	}

	tx := &txStub{row: stubRow{vals: matrixRowVals(rec)}}
	store := NewCompetencyMatrixPGStore(beginFunc(func(context.Context) (pgx.Tx, error) {
		return tx, nil
	}))

	if _, err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.DeleteByKey(ctx, rec.Key()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := store.Find(ctx, rec.Key()); err != nil {
		t.Fatalf("find: %v", err)
	}
	if _, err := store.ListByContractVersion(ctx, "cv1"); err != nil {
		t.Fatalf("list by contract version: %v", err)
	}
	if _, err := store.ListByContractVersionAndCategory(ctx, "cv1", "hvac"); err != nil {
		t.Fatalf("list by contract version and category: %v", err)
	}
	if _, err := store.ListByTeam(ctx, "t1"); err != nil {
		t.Fatalf("list by team: %v", err)
	}
	if _, err := store.ListByCategory(ctx, "hvac"); err != nil {
		t.Fatalf("list by category: %v", err)
	}

	if len(tx.stmts) != 7 {
		t.Fatalf("expected 7 statements, got %d", len(tx.stmts))
	}
	bareWindow := regexp.MustCompile(`(?i)(^|[\s(,=])window\b`)
	timeWindow := regexp.MustCompile(`\btime_window\b`)
	for _, sql := range tx.stmts {
		if bareWindow.MatchString(sql) {
			t.Fatalf("statement uses reserved identifier window:\n%s", sql)
		}
		if !timeWindow.MatchString(sql) {
			t.Fatalf("statement missing time_window column:\n%s", sql)
		}
	}
}
