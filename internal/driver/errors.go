package driver

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySession      = errors.New("empty session")
	ErrInvalidStepBudget = errors.New("invalid step budget")
)

// SessionError reports a session request that cannot run a single episode.
type SessionError struct {
	Episodes int
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("%v: %d episodes requested, need at least 1", ErrEmptySession, e.Episodes)
}

func (e *SessionError) Is(target error) bool { return target == ErrEmptySession }

// BudgetError reports a negative step budget.
type BudgetError struct {
	MaxSteps int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("%v: max steps %d, must be >= 0", ErrInvalidStepBudget, e.MaxSteps)
}

func (e *BudgetError) Is(target error) bool { return target == ErrInvalidStepBudget }
