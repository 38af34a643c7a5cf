package db

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a looked-up record does not exist
var ErrNotFound = errors.New("record not found")

// PeriodStore defines the interface for period and requirement operations
type PeriodStore interface {
	GetPeriod(ctx context.Context, month string) (*Period, error)
	GetPeriods(ctx context.Context) ([]Period, error)
	InsertPeriod(ctx context.Context, period *Period, requirements []Requirement) error
	// SetPeriodLeader changes the leader and writes the requirements derived
	// for the new leader in one transaction.
	SetPeriodLeader(ctx context.Context, periodID, leaderID string, requirements []Requirement) error
	GetRequirements(ctx context.Context, periodID string) ([]Requirement, error)
	UpsertRequirements(ctx context.Context, requirements []Requirement) error
}

// RequestStore defines the interface for request grid operations.
// Upserting a request with an empty code removes it.
type RequestStore interface {
	GetRequests(ctx context.Context, periodID string) ([]Request, error)
	UpsertRequests(ctx context.Context, requests []Request) error
	// SaveRequests writes request cells and the requirements recomputed
	// from them in one transaction.
	SaveRequests(ctx context.Context, requests []Request, requirements []Requirement) error
}

// RosterStore defines the interface for committed roster operations
type RosterStore interface {
	GetRoster(ctx context.Context, periodID string) ([]RosterCell, error)
	ReplaceRoster(ctx context.Context, periodID string, cells []RosterCell) error
}

// RunStore defines the interface for optimisation run history
type RunStore interface {
	InsertRun(ctx context.Context, run *OptimizationRun) error
	GetRuns(ctx context.Context, periodID string) ([]OptimizationRun, error)
}

// PeriodLocker serialises optimisation of a period across processes.
// ok is false when another holder has the lock; unlock is nil in that case.
type PeriodLocker interface {
	TryLockPeriod(ctx context.Context, periodID string) (unlock func(), ok bool, err error)
}

// Database defines the interface for all database operations.
// postgres.DB implements this interface.
type Database interface {
	PeriodStore
	RequestStore
	RosterStore
	RunStore
	PeriodLocker
}
