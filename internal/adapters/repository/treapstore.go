package repository

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/edulens/screening/internal/domain/model"
	"github.com/edulens/screening/pkg/metrics"
)

// Treap-based, in-memory Caseload implementation.
//
// Ordering: risk score DESC, then studentID ASC (deterministic).
// The BST comparator treats "less" as ranking earlier, so an in-order
// traversal walks the caseload from highest risk to lowest.

// scoreScale controls fixed-point scaling from float64. Risk scores live
// in [0, 1], so twelve decimal places keep comparisons exact without any
// overflow headroom concerns.
const scoreScale = 1_000_000_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	if math.IsNaN(x) {
		return 0
	}
	if x > 1 {
		x = 1
	}
	if x < 0 {
		x = 0
	}
	return scoreFP(math.Round(x * scoreScale))
}

func toFloat(x scoreFP) float64 {
	return float64(x) / scoreScale
}

// record stores the fixed-point worst score plus assessment metadata for
// a student.
type record struct {
	score        scoreFP
	level        model.RiskLevel
	assessments  int
	lastAssessed time.Time
}

// treap node
type node struct {
	id    string
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) ranks earlier than (bScore, bID),
// meaning higher risk first and ties broken by student ID ascending.
func less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, score scoreFP, prio uint64) *node {
	if n == nil {
		return &node{id: id, score: score, prio: prio, size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	if score == n.score && id == n.id {
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	} else if less(score, id, n.score, n.id) {
		n.left = deleteNode(n.left, id, score)
	} else {
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// collectTopN appends up to limit entries in rank order (highest risk first).
func collectTopN(n *node, limit int, records map[string]record, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, records, out)
	if len(*out) < limit {
		if rec, exists := records[n.id]; exists {
			*out = append(*out, entryFor(n.id, rec))
		}
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, records, out)
	}
}

// collectAll appends every entry in rank order.
func collectAll(n *node, records map[string]record, out *[]Entry) {
	if n == nil {
		return
	}
	collectAll(n.left, records, out)
	if rec, ok := records[n.id]; ok {
		*out = append(*out, entryFor(n.id, rec))
	}
	collectAll(n.right, records, out)
}

func entryFor(id string, rec record) Entry {
	return Entry{
		StudentID:    id,
		RiskScore:    toFloat(rec.score),
		RiskLevel:    rec.level,
		Assessments:  rec.assessments,
		LastAssessed: rec.lastAssessed,
	}
}

// assignRanksWithTies assigns ranks with tie handling: students with the
// same score share a rank, and ranks stay consecutive.
func assignRanksWithTies(entries []Entry) {
	currentRank := 1
	for i := 0; i < len(entries); i++ {
		entries[i].Rank = currentRank
		sameScoreCount := 1
		for j := i + 1; j < len(entries) && entries[j].RiskScore == entries[i].RiskScore; j++ {
			entries[j].Rank = currentRank
			sameScoreCount++
		}
		currentRank++
		i += sameScoreCount - 1
	}
}

// TreapStore is the in-memory treap-backed caseload.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]record
	rng  *rand.Rand
}

// NewTreapStore constructs an empty caseload store.
func NewTreapStore() *TreapStore {
	return &TreapStore{
		byID: make(map[string]record),
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // treap priorities, not crypto
	}
}

// UpdateRisk implements Caseload.UpdateRisk with O(log n) expected time.
// Assessment metadata is refreshed on every call; the ranked score only
// moves when the new overall risk score is worse than the stored one.
func (s *TreapStore) UpdateRisk(ctx context.Context, studentID string, summary model.Summary) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	ns := toFixedPoint(summary.AverageRiskScore)
	assessed := summary.GeneratedAt
	if assessed.IsZero() {
		assessed = time.Now().UTC()
	}

	s.mu.Lock()
	old, known := s.byID[studentID]
	if known && ns <= old.score {
		old.assessments++
		old.lastAssessed = assessed
		s.byID[studentID] = old
		s.mu.Unlock()
		return false, nil
	}

	rec := record{
		score:        ns,
		level:        summary.OverallRiskLevel,
		assessments:  1,
		lastAssessed: assessed,
	}
	if known {
		rec.assessments = old.assessments + 1
		s.root = deleteNode(s.root, studentID, old.score)
	}
	s.byID[studentID] = rec
	s.root = insert(s.root, studentID, ns, s.rng.Uint64())
	size := len(s.byID)
	s.mu.Unlock()

	if !known {
		metrics.UpdateCaseloadSize(size)
	}
	return true, nil
}

// Rank returns the current rank and risk for a student in O(n).
func (s *TreapStore) Rank(ctx context.Context, studentID string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byID[studentID]; !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}

	all := make([]Entry, 0, len(s.byID))
	collectAll(s.root, s.byID, &all)
	assignRanksWithTies(all)

	for _, entry := range all {
		if entry.StudentID == studentID {
			return entry, nil
		}
	}
	return Entry{}, ErrNotFound
}

// TopN returns the top N entries ordered by risk score desc.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, n)
	collectTopN(s.root, n, s.byID, &out)
	assignRanksWithTies(out)
	return out, nil
}

// Count returns the total number of tracked students.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
