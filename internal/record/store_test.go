package record

import (
	"context"
	"encoding/base64"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/veildb/internal/encoding"
	"github.com/nerrad567/veildb/internal/infrastructure/config"
	"github.com/nerrad567/veildb/internal/infrastructure/database"
	"github.com/nerrad567/veildb/internal/infrastructure/logging"
	"github.com/nerrad567/veildb/internal/schema"
)

// testLogger returns a quiet logger for tests.
func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"}, "test")
}

// newTestStore opens a temporary database with the given codec mode.
func newTestStore(t *testing.T, mode encoding.Mode, secret string) *Store {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	codec, err := encoding.New(mode, secret)
	if err != nil {
		t.Fatalf("failed to build codec: %v", err)
	}

	return New(db, codec, testLogger())
}

// mustCreateUsers creates the canonical test table.
func mustCreateUsers(t *testing.T, s *Store) {
	t.Helper()
	if _, err := s.CreateTable(context.Background(), "users", "id INTEGER", "name TEXT"); err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
}

// TestEndToEnd runs the full CRUD cycle in every encoding mode.
func TestEndToEnd(t *testing.T) {
	modes := []struct {
		mode   encoding.Mode
		secret string
	}{
		{encoding.ModePlain, ""},
		{encoding.ModeBase64, ""},
		{encoding.ModeSecure, "e2e secret"},
		{encoding.ModeSealed, "e2e secret"},
	}

	for _, m := range modes {
		t.Run(string(m.mode), func(t *testing.T) {
			s := newTestStore(t, m.mode, m.secret)
			ctx := context.Background()
			mustCreateUsers(t, s)

			// add
			resp, err := s.Add(ctx, []Record{{"id": schema.Int(1), "name": schema.Text("Ann")}}, "users")
			if err != nil {
				t.Fatalf("Add() error = %v", err)
			}
			if !resp.Status {
				t.Fatal("Add() status = false, want true")
			}

			// fetch one
			resp, err = s.Fetch(ctx, Record{"id": schema.Int(1)}, "users", FetchOne)
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if !resp.Status {
				t.Fatal("Fetch() status = false, want true")
			}
			if !resp.Record["id"].Equal(schema.Int(1)) || !resp.Record["name"].Equal(schema.Text("Ann")) {
				t.Errorf("Fetch() record = %v, want id=1 name=Ann", resp.Record)
			}

			// update
			resp, err = s.Update(ctx, Record{"id": schema.Int(1)}, Record{"name": schema.Text("Annie")}, "users", 0)
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			if !resp.Status || resp.Count != 1 {
				t.Errorf("Update() = %+v, want status=true count=1", resp)
			}

			resp, err = s.Fetch(ctx, Record{"name": schema.Text("Annie")}, "users", FetchOne)
			if err != nil {
				t.Fatalf("Fetch() after update error = %v", err)
			}
			if !resp.Status {
				t.Error("updated row not found by new value")
			}

			// remove
			resp, err = s.Remove(ctx, []Record{{"id": schema.Int(1)}}, "users", 0)
			if err != nil {
				t.Fatalf("Remove() error = %v", err)
			}
			if !resp.Status || resp.Count != 1 {
				t.Errorf("Remove() = %+v, want status=true count=1", resp)
			}

			// gone
			resp, err = s.Fetch(ctx, Record{"id": schema.Int(1)}, "users", FetchOne)
			if err != nil {
				t.Fatalf("Fetch() after remove error = %v", err)
			}
			if resp.Status || resp.Record != nil {
				t.Errorf("Fetch() after remove = %+v, want negative empty result", resp)
			}
		})
	}
}

// TestAdd_MissingTable verifies Add escalates table absence.
func TestAdd_MissingTable(t *testing.T) {
	s := newTestStore(t, encoding.ModePlain, "")

	_, err := s.Add(context.Background(), []Record{{"id": schema.Int(1)}}, "nowhere")
	if !errors.Is(err, ErrTableNotFound) {
		t.Errorf("Add() error = %v, want ErrTableNotFound", err)
	}
}

// TestAdd_ValidationFailure verifies a type mismatch yields a negative
// envelope, does not raise, and inserts nothing.
func TestAdd_ValidationFailure(t *testing.T) {
	s := newTestStore(t, encoding.ModePlain, "")
	ctx := context.Background()

	if _, err := s.CreateTable(ctx, "people", "name TEXT", "age INTEGER"); err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}

	resp, err := s.Add(ctx, []Record{{"name": schema.Text("x"), "age": schema.Text("not-a-number")}}, "people")
	if err != nil {
		t.Fatalf("Add() error = %v, want nil (validation is not an error)", err)
	}
	if resp.Status {
		t.Error("Add() status = true, want false for failed validation")
	}

	all, err := s.Fetch(ctx, Record{}, "people", FetchAll)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(all.Records) != 0 {
		t.Errorf("table has %d rows after rejected add, want 0", len(all.Records))
	}
}

// TestAdd_RecordShape verifies records must cover the declared columns
// exactly.
func TestAdd_RecordShape(t *testing.T) {
	s := newTestStore(t, encoding.ModePlain, "")
	ctx := context.Background()
	mustCreateUsers(t, s)

	t.Run("missing column", func(t *testing.T) {
		resp, err := s.Add(ctx, []Record{{"id": schema.Int(1)}}, "users")
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		if resp.Status {
			t.Error("Add() status = true, want false for missing column")
		}
	})

	t.Run("unknown column", func(t *testing.T) {
		resp, err := s.Add(ctx, []Record{{
			"id": schema.Int(1), "name": schema.Text("Ann"), "ghost": schema.Int(0),
		}}, "users")
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		if resp.Status {
			t.Error("Add() status = true, want false for unknown column")
		}
	})
}

// TestAdd_BatchRejectedAtomically verifies one bad record rejects the
// whole batch before anything is written.
func TestAdd_BatchRejectedAtomically(t *testing.T) {
	s := newTestStore(t, encoding.ModePlain, "")
	ctx := context.Background()
	mustCreateUsers(t, s)

	resp, err := s.Add(ctx, []Record{
		{"id": schema.Int(1), "name": schema.Text("Ann")},
		{"id": schema.Text("two"), "name": schema.Text("Ben")}, // bad: text into INTEGER
	}, "users")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if resp.Status {
		t.Error("Add() status = true, want false")
	}

	all, _ := s.Fetch(ctx, Record{}, "users", FetchAll)
	if len(all.Records) != 0 {
		t.Errorf("table has %d rows, want 0 after rejected batch", len(all.Records))
	}
}

// TestFetch_All verifies the empty predicate matches every row.
func TestFetch_All(t *testing.T) {
	s := newTestStore(t, encoding.ModeBase64, "")
	ctx := context.Background()
	mustCreateUsers(t, s)

	records := []Record{
		{"id": schema.Int(1), "name": schema.Text("Ann")},
		{"id": schema.Int(2), "name": schema.Text("Ben")},
		{"id": schema.Int(3), "name": schema.Text("Cal")},
	}
	if _, err := s.Add(ctx, records, "users"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	resp, err := s.Fetch(ctx, Record{}, "users", FetchAll)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !resp.Status || len(resp.Records) != 3 {
		t.Fatalf("Fetch(all) = %d records, want 3", len(resp.Records))
	}

	resp, err = s.Fetch(ctx, Record{"id": schema.Int(3)}, "users", FetchOne)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !resp.Record["name"].Equal(schema.Text("Cal")) {
		t.Errorf("Fetch(id=3) name = %v, want Cal", resp.Record["name"])
	}
}

// TestFetch_TypeCoercion verifies declared types drive the returned
// value kinds, whatever was written.
func TestFetch_TypeCoercion(t *testing.T) {
	s := newTestStore(t, encoding.ModeSecure, "coercion secret")
	ctx := context.Background()

	_, err := s.CreateTable(ctx, "events",
		"id INTEGER", "ratio REAL", "active BOOLEAN", "at DATETIME", "label TEXT", "blob_ish BLOB")
	if err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}

	when := time.Date(2024, 6, 1, 12, 13, 20, 0, time.UTC)
	rec := Record{
		"id":       schema.Int(42),
		"ratio":    schema.Real(0.5),
		"active":   schema.Bool(true),
		"at":       schema.Int(when.Unix()), // unix seconds into a DATETIME column
		"label":    schema.Text("hello"),
		"blob_ish": schema.Int(7), // opaque accepts anything
	}
	if resp, err := s.Add(ctx, []Record{rec}, "events"); err != nil || !resp.Status {
		t.Fatalf("Add() = (%+v, %v), want success", resp, err)
	}

	resp, err := s.Fetch(ctx, Record{"id": schema.Int(42)}, "events", FetchOne)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	got := resp.Record

	if !got["id"].Equal(schema.Int(42)) {
		t.Errorf("id = %v, want Int(42)", got["id"])
	}
	if !got["ratio"].Equal(schema.Real(0.5)) {
		t.Errorf("ratio = %v, want Real(0.5)", got["ratio"])
	}
	if !got["active"].Equal(schema.Bool(true)) {
		t.Errorf("active = %v, want Bool(true)", got["active"])
	}
	if !got["at"].Equal(schema.Time(when)) {
		t.Errorf("at = %v, want %v", got["at"].Time(), when)
	}
	if !got["label"].Equal(schema.Text("hello")) {
		t.Errorf("label = %v, want Text(hello)", got["label"])
	}
	// Declared type is authoritative: the integer written into the
	// opaque column comes back as its string form.
	if !got["blob_ish"].Equal(schema.Text("7")) {
		t.Errorf("blob_ish = %v, want Text(7)", got["blob_ish"])
	}

	// A false boolean must survive the round trip too.
	off := Record{
		"id":       schema.Int(43),
		"ratio":    schema.Real(1.5),
		"active":   schema.Bool(false),
		"at":       schema.Text("2024-06-01T12:13:20Z"),
		"label":    schema.Text("bye"),
		"blob_ish": schema.Text("x"),
	}
	if resp, err := s.Add(ctx, []Record{off}, "events"); err != nil || !resp.Status {
		t.Fatalf("Add() = (%+v, %v), want success", resp, err)
	}
	resp, err = s.Fetch(ctx, Record{"id": schema.Int(43)}, "events", FetchOne)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !resp.Record["active"].Equal(schema.Bool(false)) {
		t.Errorf("active = %v, want Bool(false)", resp.Record["active"])
	}
}

// TestFetch_TimestampNotations verifies unix and ISO writes to the same
// DATETIME column read back as the same instant.
func TestFetch_TimestampNotations(t *testing.T) {
	s := newTestStore(t, encoding.ModePlain, "")
	ctx := context.Background()

	if _, err := s.CreateTable(ctx, "stamps", "id INTEGER", "at DATETIME"); err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}

	when := time.Date(2024, 6, 1, 12, 13, 20, 0, time.UTC)
	records := []Record{
		{"id": schema.Int(1), "at": schema.Int(when.Unix())},
		{"id": schema.Int(2), "at": schema.Text("2024-06-01T12:13:20Z")},
	}
	if _, err := s.Add(ctx, records, "stamps"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	for _, id := range []int64{1, 2} {
		resp, err := s.Fetch(ctx, Record{"id": schema.Int(id)}, "stamps", FetchOne)
		if err != nil {
			t.Fatalf("Fetch(id=%d) error = %v", id, err)
		}
		if !resp.Record["at"].Time().Equal(when) {
			t.Errorf("id=%d at = %v, want %v", id, resp.Record["at"].Time(), when)
		}
	}
}

// TestFetch_FalseBoolean verifies a stored false reads back as false in
// plain mode, where the engine keeps the value as integer 0 and the
// driver would otherwise hand it back as the text "false".
func TestFetch_FalseBoolean(t *testing.T) {
	s := newTestStore(t, encoding.ModePlain, "")
	ctx := context.Background()

	if _, err := s.CreateTable(ctx, "flags", "id INTEGER", "ok BOOLEAN"); err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}

	records := []Record{
		{"id": schema.Int(1), "ok": schema.Bool(false)},
		{"id": schema.Int(2), "ok": schema.Bool(true)},
	}
	if _, err := s.Add(ctx, records, "flags"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	for _, tc := range []struct {
		id   int64
		want bool
	}{
		{1, false},
		{2, true},
	} {
		resp, err := s.Fetch(ctx, Record{"id": schema.Int(tc.id)}, "flags", FetchOne)
		if err != nil {
			t.Fatalf("Fetch(id=%d) error = %v", tc.id, err)
		}
		if !resp.Record["ok"].Equal(schema.Bool(tc.want)) {
			t.Errorf("id=%d ok = %v, want Bool(%v)", tc.id, resp.Record["ok"], tc.want)
		}
	}
}

// TestFetch_EncodedDatetimeColumn verifies encoded text stored in a
// DATETIME declared column reaches the codec verbatim. The driver
// parses values from datetime declared columns into time.Time at scan,
// which would destroy the encoded form before decoding.
func TestFetch_EncodedDatetimeColumn(t *testing.T) {
	for _, mode := range []encoding.Mode{encoding.ModeBase64, encoding.ModeSecure, encoding.ModeSealed} {
		t.Run(string(mode), func(t *testing.T) {
			secret := ""
			if mode != encoding.ModeBase64 {
				secret = "stamp secret"
			}
			s := newTestStore(t, mode, secret)
			ctx := context.Background()

			if _, err := s.CreateTable(ctx, "stamps", "id INTEGER", "at DATETIME"); err != nil {
				t.Fatalf("CreateTable() error = %v", err)
			}

			when := time.Date(2024, 6, 1, 12, 13, 20, 0, time.UTC)
			rec := Record{"id": schema.Int(1), "at": schema.Text("2024-06-01T12:13:20Z")}
			if resp, err := s.Add(ctx, []Record{rec}, "stamps"); err != nil || !resp.Status {
				t.Fatalf("Add() = (%+v, %v), want success", resp, err)
			}

			resp, err := s.Fetch(ctx, Record{"id": schema.Int(1)}, "stamps", FetchOne)
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if !resp.Record["at"].Time().Equal(when) {
				t.Errorf("at = %v, want %v", resp.Record["at"].Time(), when)
			}
		})
	}
}

// TestFetch_Null verifies NULLs bypass the codec in both directions.
func TestFetch_Null(t *testing.T) {
	s := newTestStore(t, encoding.ModeSecure, "null secret")
	ctx := context.Background()
	mustCreateUsers(t, s)

	if _, err := s.Add(ctx, []Record{{"id": schema.Int(1), "name": schema.Null()}}, "users"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	resp, err := s.Fetch(ctx, Record{"id": schema.Int(1)}, "users", FetchOne)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !resp.Record["name"].IsNull() {
		t.Errorf("name = %v, want null", resp.Record["name"])
	}
}

// TestFetch_AbsentTable verifies table absence is a negative result.
func TestFetch_AbsentTable(t *testing.T) {
	s := newTestStore(t, encoding.ModePlain, "")

	resp, err := s.Fetch(context.Background(), Record{}, "nowhere", FetchAll)
	if err != nil {
		t.Fatalf("Fetch() error = %v, want nil for absent table", err)
	}
	if resp.Status {
		t.Error("Fetch() status = true, want false for absent table")
	}
}

// TestFetch_WrongSecret verifies reading with another secret raises
// ErrDecode instead of returning garbled records.
func TestFetch_WrongSecret(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "shared.db")

	open := func(secret string) *Store {
		db, err := database.Open(database.Config{Path: dbPath, WALMode: true, BusyTimeout: 5})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
		codec, err := encoding.New(encoding.ModeSecure, secret)
		if err != nil {
			t.Fatalf("New codec error = %v", err)
		}
		return New(db, codec, testLogger())
	}

	writer := open("the right secret")
	ctx := context.Background()
	mustCreateUsers(t, writer)
	if _, err := writer.Add(ctx, []Record{{"id": schema.Int(1), "name": schema.Text("confidential notes")}}, "users"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	reader := open("a different secret")
	_, err := reader.Fetch(ctx, Record{}, "users", FetchAll)
	if !errors.Is(err, encoding.ErrDecode) {
		t.Errorf("Fetch() under wrong secret error = %v, want ErrDecode", err)
	}
}

// TestRemove_Idempotent verifies a non-matching remove is a stable
// negative result.
func TestRemove_Idempotent(t *testing.T) {
	s := newTestStore(t, encoding.ModePlain, "")
	ctx := context.Background()
	mustCreateUsers(t, s)

	for i := 0; i < 2; i++ {
		resp, err := s.Remove(ctx, []Record{{"id": schema.Int(99)}}, "users", 0)
		if err != nil {
			t.Fatalf("Remove() #%d error = %v", i+1, err)
		}
		if resp.Status || resp.Count != 0 {
			t.Errorf("Remove() #%d = %+v, want status=false count=0", i+1, resp)
		}
	}
}

// TestRemove_MultiplePredicates verifies sequential deletes accumulate.
func TestRemove_MultiplePredicates(t *testing.T) {
	s := newTestStore(t, encoding.ModePlain, "")
	ctx := context.Background()
	mustCreateUsers(t, s)

	records := []Record{
		{"id": schema.Int(1), "name": schema.Text("Ann")},
		{"id": schema.Int(2), "name": schema.Text("Ben")},
		{"id": schema.Int(3), "name": schema.Text("Cal")},
	}
	if _, err := s.Add(ctx, records, "users"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	resp, err := s.Remove(ctx, []Record{
		{"id": schema.Int(1)},
		{"id": schema.Int(3)},
		{"id": schema.Int(42)}, // no match, contributes nothing
	}, "users", 0)
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if !resp.Status || resp.Count != 2 {
		t.Errorf("Remove() = %+v, want status=true count=2", resp)
	}
}

// TestRemove_Limit verifies the per-statement row cap.
func TestRemove_Limit(t *testing.T) {
	s := newTestStore(t, encoding.ModePlain, "")
	ctx := context.Background()
	mustCreateUsers(t, s)

	for i := 1; i <= 3; i++ {
		rec := Record{"id": schema.Int(int64(i)), "name": schema.Text("dup")}
		if _, err := s.Add(ctx, []Record{rec}, "users"); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	resp, err := s.Remove(ctx, []Record{{"name": schema.Text("dup")}}, "users", 2)
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("Remove(limit=2) count = %d, want 2", resp.Count)
	}

	all, _ := s.Fetch(ctx, Record{}, "users", FetchAll)
	if len(all.Records) != 1 {
		t.Errorf("%d rows remain, want 1", len(all.Records))
	}
}

// TestRemove_AbsentTable verifies table absence is a negative result.
func TestRemove_AbsentTable(t *testing.T) {
	s := newTestStore(t, encoding.ModePlain, "")

	resp, err := s.Remove(context.Background(), []Record{{}}, "nowhere", 0)
	if err != nil {
		t.Fatalf("Remove() error = %v, want nil for absent table", err)
	}
	if resp.Status {
		t.Error("Remove() status = true, want false")
	}
}

// TestUpdate_EmptyValues verifies the empty-payload contract violation
// raises rather than silently no-opping.
func TestUpdate_EmptyValues(t *testing.T) {
	s := newTestStore(t, encoding.ModePlain, "")
	mustCreateUsers(t, s)

	_, err := s.Update(context.Background(), Record{"id": schema.Int(1)}, Record{}, "users", 0)
	if !errors.Is(err, ErrEmptyUpdate) {
		t.Errorf("Update() error = %v, want ErrEmptyUpdate", err)
	}
}

// TestUpdate_MissingTable verifies Update escalates table absence.
func TestUpdate_MissingTable(t *testing.T) {
	s := newTestStore(t, encoding.ModePlain, "")

	_, err := s.Update(context.Background(),
		Record{"id": schema.Int(1)}, Record{"name": schema.Text("x")}, "nowhere", 0)
	if !errors.Is(err, ErrTableNotFound) {
		t.Errorf("Update() error = %v, want ErrTableNotFound", err)
	}
}

// TestUpdate_Limit verifies the capped update path.
func TestUpdate_Limit(t *testing.T) {
	s := newTestStore(t, encoding.ModeBase64, "")
	ctx := context.Background()
	mustCreateUsers(t, s)

	for i := 1; i <= 3; i++ {
		rec := Record{"id": schema.Int(int64(i)), "name": schema.Text("old")}
		if _, err := s.Add(ctx, []Record{rec}, "users"); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	resp, err := s.Update(ctx, Record{"name": schema.Text("old")}, Record{"name": schema.Text("new")}, "users", 2)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("Update(limit=2) count = %d, want 2", resp.Count)
	}

	remaining, _ := s.Fetch(ctx, Record{"name": schema.Text("old")}, "users", FetchAll)
	if len(remaining.Records) != 1 {
		t.Errorf("%d rows still old, want 1", len(remaining.Records))
	}
}

// TestStoredFormIsEncoded verifies values on disk really carry the
// configured encoding, via the raw Execute passthrough.
func TestStoredFormIsEncoded(t *testing.T) {
	s := newTestStore(t, encoding.ModeBase64, "")
	ctx := context.Background()
	mustCreateUsers(t, s)

	if _, err := s.Add(ctx, []Record{{"id": schema.Int(1), "name": schema.Text("Ann")}}, "users"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	resp, err := s.Execute(ctx, "SELECT name FROM users")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(resp.Records) != 1 {
		t.Fatalf("Execute() returned %d rows, want 1", len(resp.Records))
	}

	want := base64.StdEncoding.EncodeToString([]byte("Ann"))
	if got := resp.Records[0]["name"].Text(); got != want {
		t.Errorf("stored name = %q, want base64 form %q", got, want)
	}
}
