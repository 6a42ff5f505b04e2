package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/edulens/screening/internal/domain/model"
)

// floatEqual compares two float64 values with a small tolerance for
// fixed-point round-trips.
func floatEqual(a, b float64) bool {
	const tolerance = 1e-9
	return math.Abs(a-b) < tolerance
}

func summaryWith(score float64, level model.RiskLevel) model.Summary {
	return model.Summary{
		OverallRiskLevel: level,
		AverageRiskScore: score,
		GeneratedAt:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestTreapStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	updated, err := store.UpdateRisk(ctx, "student1", summaryWith(0.88, model.RiskMedium))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated {
		t.Error("expected update to succeed")
	}

	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	entry, err := store.Rank(ctx, "student1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 1 {
		t.Errorf("expected rank 1, got %d", entry.Rank)
	}
	if entry.RiskScore != 0.88 {
		t.Errorf("expected score 0.88, got %f", entry.RiskScore)
	}
	if entry.RiskLevel != model.RiskMedium {
		t.Errorf("expected Medium, got %s", entry.RiskLevel)
	}
	if entry.Assessments != 1 {
		t.Errorf("expected 1 assessment, got %d", entry.Assessments)
	}

	entries, err := store.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].StudentID != "student1" {
		t.Errorf("expected student1, got %s", entries[0].StudentID)
	}
}

func TestTreapStore_WorstScoreWins(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	if _, err := store.UpdateRisk(ctx, "student1", summaryWith(0.86, model.RiskLow)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A milder follow-up assessment must not improve the ranked score.
	updated, err := store.UpdateRisk(ctx, "student1", summaryWith(0.50, model.RiskNone))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated {
		t.Error("expected lower score to be rejected")
	}

	entry, err := store.Rank(ctx, "student1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.RiskScore != 0.86 {
		t.Errorf("expected retained score 0.86, got %f", entry.RiskScore)
	}
	if entry.RiskLevel != model.RiskLow {
		t.Errorf("expected retained level Low, got %s", entry.RiskLevel)
	}
	if entry.Assessments != 2 {
		t.Errorf("expected assessment count 2, got %d", entry.Assessments)
	}

	// A worse assessment advances the ranked score and level.
	updated, err = store.UpdateRisk(ctx, "student1", summaryWith(0.93, model.RiskHigh))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated {
		t.Error("expected higher score to be accepted")
	}

	entry, err = store.Rank(ctx, "student1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.RiskScore != 0.93 {
		t.Errorf("expected score 0.93, got %f", entry.RiskScore)
	}
	if entry.RiskLevel != model.RiskHigh {
		t.Errorf("expected High, got %s", entry.RiskLevel)
	}
	if entry.Assessments != 3 {
		t.Errorf("expected assessment count 3, got %d", entry.Assessments)
	}
	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1 after re-insert, got %d", count)
	}
}

func TestTreapStore_Ordering(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	scores := map[string]float64{
		"student-b": 0.91,
		"student-a": 0.95,
		"student-d": 0.40,
		"student-c": 0.88,
	}
	for id, score := range scores {
		if _, err := store.UpdateRisk(ctx, id, summaryWith(score, model.RiskHigh)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	entries, err := store.TopN(ctx, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"student-a", "student-b", "student-c"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, id := range want {
		if entries[i].StudentID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, entries[i].StudentID)
		}
		if entries[i].Rank != i+1 {
			t.Errorf("position %d: expected rank %d, got %d", i, i+1, entries[i].Rank)
		}
	}
}

func TestTreapStore_TieRanks(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	for _, id := range []string{"tie-b", "tie-a", "tie-c"} {
		if _, err := store.UpdateRisk(ctx, id, summaryWith(0.90, model.RiskHigh)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := store.UpdateRisk(ctx, "solo", summaryWith(0.80, model.RiskNone)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := store.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}

	// Tied students share rank 1 in ID order; the next distinct score
	// takes the next consecutive rank.
	wantIDs := []string{"tie-a", "tie-b", "tie-c", "solo"}
	wantRanks := []int{1, 1, 1, 2}
	for i := range wantIDs {
		if entries[i].StudentID != wantIDs[i] {
			t.Errorf("position %d: expected %s, got %s", i, wantIDs[i], entries[i].StudentID)
		}
		if entries[i].Rank != wantRanks[i] {
			t.Errorf("position %d: expected rank %d, got %d", i, wantRanks[i], entries[i].Rank)
		}
	}

	entry, err := store.Rank(ctx, "solo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 2 {
		t.Errorf("expected rank 2 for solo, got %d", entry.Rank)
	}
}

func TestTreapStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	if _, err := store.Rank(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.TopN(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
	if _, err := store.TopN(ctx, -5); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestTreapStore_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	const goroutines = 8
	const perGoroutine = 50

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				id := fmt.Sprintf("student-%d", i)
				score := 0.5 + float64(g)*0.01
				if _, err := store.UpdateRisk(ctx, id, summaryWith(score, model.RiskLow)); err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		}(g)
	}
	wg.Wait()

	if count := store.Count(ctx); count != perGoroutine {
		t.Errorf("expected %d students, got %d", perGoroutine, count)
	}

	// Every student ends at the worst score any goroutine wrote.
	worst := 0.5 + float64(goroutines-1)*0.01
	entries, err := store.TopN(ctx, perGoroutine)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, e := range entries {
		if !floatEqual(e.RiskScore, worst) {
			t.Errorf("student %s: expected score %f, got %f", e.StudentID, worst, e.RiskScore)
		}
	}
}

func TestTreapStore_LargeCaseload(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	const n = 2000
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("student-%04d", i)
		score := float64(i) / float64(n)
		if _, err := store.UpdateRisk(ctx, id, summaryWith(score, model.RiskLow)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	entries, err := store.TopN(ctx, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].RiskScore > entries[i-1].RiskScore {
			t.Errorf("entries out of order at %d", i)
		}
	}
	if entries[0].StudentID != fmt.Sprintf("student-%04d", n-1) {
		t.Errorf("expected highest-risk student first, got %s", entries[0].StudentID)
	}
}
