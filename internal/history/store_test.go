package history_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/HendryAvila/triz-master/internal/ai"
	"github.com/HendryAvila/triz-master/internal/catalog"
	"github.com/HendryAvila/triz-master/internal/history"
)

// newTestStore creates a Store backed by a temp directory for isolation.
func newTestStore(t *testing.T, limit int) *history.Store {
	t.Helper()
	s, err := history.New(history.Config{
		DataDir:          t.TempDir(),
		Limit:            limit,
		MaxSearchResults: 20,
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustSave(t *testing.T, s *history.Store, sess history.Session) *history.Session {
	t.Helper()
	saved, err := s.Save(sess)
	if err != nil {
		t.Fatalf("Save(%q): %v", sess.Problem, err)
	}
	return saved
}

func problems(sessions []history.Session) []string {
	out := make([]string, len(sessions))
	for i, s := range sessions {
		out[i] = s.Problem
	}
	return out
}

// ─── New / Initialization ───────────────────────────────────────────────────

func TestNew_UsesWAL(t *testing.T) {
	s := newTestStore(t, 15)
	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestNew_DefaultsLimit(t *testing.T) {
	s, err := history.New(history.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if s.Limit() != 15 {
		t.Errorf("Limit() = %d, want 15", s.Limit())
	}
}

// ─── Save / Get ─────────────────────────────────────────────────────────────

func TestSave_RoundTrip(t *testing.T) {
	s := newTestStore(t, 15)
	created := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	draft := &ai.Report{
		Introduction: "intro",
		Solutions: []ai.Solution{
			{Title: "t", Description: "d", PrincipleApplied: "Segmentation", Feasibility: "High"},
		},
		NextSteps: []string{"step"},
	}

	saved := mustSave(t, s, history.Session{
		CreatedAt:   created,
		Locale:      catalog.English,
		Problem:     "Faster engine burns more fuel",
		ImprovingID: history.IntPtr(9),
		WorseningID: history.IntPtr(22),
		Explanation: "speed vs energy",
		Principles:  []int{15, 35, 2},
		Draft:       draft,
	})
	if saved.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := s.Get(saved.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(saved, got); diff != "" {
		t.Errorf("round trip mismatch (-saved +got):\n%s", diff)
	}
}

func TestSave_OptionalFields(t *testing.T) {
	s := newTestStore(t, 15)
	saved := mustSave(t, s, history.Session{Problem: "bare"})

	got, err := s.Get(saved.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ImprovingID != nil || got.WorseningID != nil || got.Draft != nil {
		t.Errorf("expected nil optional fields, got %+v", got)
	}
	if got.Locale != catalog.DefaultLocale {
		t.Errorf("Locale = %q, want default", got.Locale)
	}
	if got.Principles == nil || len(got.Principles) != 0 {
		t.Errorf("Principles = %#v, want empty non-nil", got.Principles)
	}
}

func TestSave_RequiresProblem(t *testing.T) {
	s := newTestStore(t, 15)
	if _, err := s.Save(history.Session{Problem: "  "}); err == nil {
		t.Fatal("expected error for blank problem")
	}
}

func TestSave_ReplacesSameProblem(t *testing.T) {
	s := newTestStore(t, 15)
	first := mustSave(t, s, history.Session{Problem: "same", Principles: []int{1}})
	mustSave(t, s, history.Session{Problem: "other"})
	second := mustSave(t, s, history.Session{Problem: "same", Principles: []int{2}})

	list, err := s.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"same", "other"}, problems(list)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if _, err := s.Get(first.ID); !errors.Is(err, history.ErrNotFound) {
		t.Errorf("old session should be gone, got %v", err)
	}
	if list[0].ID != second.ID {
		t.Errorf("newest id = %s, want %s", list[0].ID, second.ID)
	}
}

func TestSave_TrimsToLimit(t *testing.T) {
	s := newTestStore(t, 3)
	for i := 1; i <= 5; i++ {
		mustSave(t, s, history.Session{Problem: fmt.Sprintf("p%d", i)})
	}

	list, err := s.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"p5", "p4", "p3"}, problems(list)); diff != "" {
		t.Errorf("trim mismatch (-want +got):\n%s", diff)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := newTestStore(t, 15)
	if _, err := s.Get("nope"); !errors.Is(err, history.ErrNotFound) {
		t.Errorf("Get(nope) err = %v, want ErrNotFound", err)
	}
}

// ─── Delete / Clear ─────────────────────────────────────────────────────────

func TestDelete(t *testing.T) {
	s := newTestStore(t, 15)
	a := mustSave(t, s, history.Session{Problem: "a"})
	mustSave(t, s, history.Session{Problem: "b"})

	if err := s.Delete(a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(a.ID); !errors.Is(err, history.ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
	n, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t, 15)
	mustSave(t, s, history.Session{Problem: "a"})
	mustSave(t, s, history.Session{Problem: "b"})

	n, err := s.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Clear removed %d, want 2", n)
	}
	list, _ := s.List(0)
	if len(list) != 0 {
		t.Errorf("expected empty history, got %d", len(list))
	}
}

// ─── Search ─────────────────────────────────────────────────────────────────

func TestSearch(t *testing.T) {
	s := newTestStore(t, 15)
	mustSave(t, s, history.Session{Problem: "aircraft engine fuel consumption", Explanation: "speed vs energy"})
	mustSave(t, s, history.Session{Problem: "tall building stability", Explanation: "wind load"})
	mustSave(t, s, history.Session{Problem: "زيادة سرعة المحرك", Explanation: "فقدان الطاقة"})

	tests := []struct {
		query string
		want  []string
	}{
		{"fuel", []string{"aircraft engine fuel consumption"}},
		{"wind", []string{"tall building stability"}},
		{"engine energy", []string{"aircraft engine fuel consumption"}},
		{"الطاقة", []string{"زيادة سرعة المحرك"}},
		{"submarine", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.Search(tt.query, 10)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			var gotProblems []string
			if len(got) > 0 {
				gotProblems = problems(got)
			}
			if diff := cmp.Diff(tt.want, gotProblems); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSearch_EmptyQueryReturnsRecent(t *testing.T) {
	s := newTestStore(t, 15)
	mustSave(t, s, history.Session{Problem: "one"})
	mustSave(t, s, history.Session{Problem: "two"})

	got, err := s.Search("   ", 1)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"two"}, problems(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSearch_SurvivesFTSSyntax(t *testing.T) {
	s := newTestStore(t, 15)
	mustSave(t, s, history.Session{Problem: "weight OR speed"})
	if _, err := s.Search(`"weight OR (speed*`, 5); err != nil {
		t.Errorf("Search with FTS operators: %v", err)
	}
}

func TestSearch_IndexFollowsDeletes(t *testing.T) {
	s := newTestStore(t, 15)
	a := mustSave(t, s, history.Session{Problem: "packaging box"})
	if err := s.Delete(a.ID); err != nil {
		t.Fatal(err)
	}
	got, err := s.Search("packaging", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("deleted session still searchable: %+v", got)
	}
}

// ─── Export / Import ────────────────────────────────────────────────────────

func TestExportImport(t *testing.T) {
	src := newTestStore(t, 15)
	mustSave(t, src, history.Session{Problem: "first", Principles: []int{1, 2}})
	mustSave(t, src, history.Session{Problem: "second", ImprovingID: history.IntPtr(1), WorseningID: history.IntPtr(10)})

	data, err := src.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if diff := cmp.Diff([]string{"first", "second"}, problems(data.Sessions)); diff != "" {
		t.Errorf("export order (-want +got):\n%s", diff)
	}

	dst := newTestStore(t, 15)
	mustSave(t, dst, history.Session{Problem: "second", Explanation: "local copy"})
	res, err := dst.Import(data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.SessionsImported != 2 || res.SessionsSkipped != 0 {
		t.Errorf("Import result = %+v", res)
	}

	list, err := dst.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"second", "first"}, problems(list)); diff != "" {
		t.Errorf("after import (-want +got):\n%s", diff)
	}
	if list[0].Explanation != "" {
		t.Errorf("imported session should replace local one with the same problem")
	}

	again, err := dst.Import(data)
	if err != nil {
		t.Fatal(err)
	}
	if again.SessionsImported != 0 || again.SessionsSkipped != 2 {
		t.Errorf("re-import result = %+v, want all skipped", again)
	}
}
