package store

import (
	"context"
	"fmt"
	"testing"
)

// openTestStore opens an in-memory SQLiteStore for use in tests.
func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func Test_Store_AppendAndRecent(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, "/papers/a", "What is attention?", "Attention weighs tokens [paper.pdf p.2]."); err != nil {
		t.Fatalf("append: %v", err)
	}

	turns, err := s.Recent(ctx, "/papers/a", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("want 1 turn, got %d", len(turns))
	}
	if turns[0].Question != "What is attention?" {
		t.Errorf("question: got %q", turns[0].Question)
	}
	if turns[0].Answer != "Attention weighs tokens [paper.pdf p.2]." {
		t.Errorf("answer: got %q", turns[0].Answer)
	}
}

func Test_Store_RecentLimitRespected(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	for i := range 6 {
		if err := s.Append(ctx, "/papers/b", fmt.Sprintf("q%d", i), "a"); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	turns, err := s.Recent(ctx, "/papers/b", 4)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(turns) != 4 {
		t.Errorf("want 4 turns, got %d", len(turns))
	}
}

func Test_Store_CorpusIsolation(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, "/papers/x", "from x", "ax"); err != nil {
		t.Fatalf("append x: %v", err)
	}
	if err := s.Append(ctx, "/papers/y", "from y", "ay"); err != nil {
		t.Fatalf("append y: %v", err)
	}

	turnsX, err := s.Recent(ctx, "/papers/x", 10)
	if err != nil {
		t.Fatalf("recent x: %v", err)
	}
	turnsY, err := s.Recent(ctx, "/papers/y", 10)
	if err != nil {
		t.Fatalf("recent y: %v", err)
	}

	if len(turnsX) != 1 || turnsX[0].Question != "from x" {
		t.Errorf("corpus x isolation failed: got %v", turnsX)
	}
	if len(turnsY) != 1 || turnsY[0].Question != "from y" {
		t.Errorf("corpus y isolation failed: got %v", turnsY)
	}
}

func Test_Store_EmptyCorpusReturnsNil(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	turns, err := s.Recent(ctx, "/papers/empty", 10)
	if err != nil {
		t.Fatalf("recent empty: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("want 0 turns, got %d", len(turns))
	}
}

func Test_Store_OldestFirstOrdering(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	questions := []string{"first", "second", "third"}
	for _, q := range questions {
		if err := s.Append(ctx, "/papers/order", q, "a"); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	turns, err := s.Recent(ctx, "/papers/order", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	for i, want := range questions {
		if turns[i].Question != want {
			t.Errorf("turn[%d]: want %q, got %q", i, want, turns[i].Question)
		}
	}
}
