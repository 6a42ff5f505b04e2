// Package repository defines the caseload store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/edulens/screening/internal/domain/model"
)

// Entry represents a caseload row: one student and their worst observed
// screening outcome.
type Entry struct {
	Rank         int
	StudentID    string
	RiskScore    float64
	RiskLevel    model.RiskLevel
	Assessments  int
	LastAssessed time.Time
}

// Caseload provides read/write access to the per-student risk state.
type Caseload interface {
	// UpdateRisk records an assessment outcome for a student. The caseload
	// keeps each student's worst (highest) overall risk score; it returns
	// true when the stored worst score advanced.
	UpdateRisk(ctx context.Context, studentID string, summary model.Summary) (bool, error)

	// Rank returns the current rank and risk for a student.
	// Returns ErrNotFound if the student is unknown.
	Rank(ctx context.Context, studentID string) (Entry, error)

	// TopN returns the top-N entries ordered by risk score desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of students tracked in the caseload.
	Count(ctx context.Context) int
}
