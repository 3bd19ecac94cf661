package environment

import (
	"errors"
	"fmt"

	"fuel-rl/internal/model"
)

var (
	ErrInvalidDataset           = errors.New("invalid dataset")
	ErrEpisodeAlreadyTerminated = errors.New("episode already terminated")
	ErrInvalidAction            = errors.New("invalid action")
)

// DatasetError reports a dataset the environment cannot run on.
type DatasetError struct {
	Rows int
}

func (e *DatasetError) Error() string {
	return fmt.Sprintf("invalid dataset: %d rows, need at least 2 for one transition", e.Rows)
}

func (e *DatasetError) Is(target error) bool { return target == ErrInvalidDataset }

// StepError reports a rejected Step call with the state it was rejected in.
type StepError struct {
	Kind   error // ErrEpisodeAlreadyTerminated or ErrInvalidAction
	Step   int
	Action model.Action
}

func (e *StepError) Error() string {
	if e.Kind == ErrInvalidAction {
		return fmt.Sprintf("invalid action %d at step %d: want 0..%d", int(e.Action), e.Step, model.NumActions-1)
	}
	return fmt.Sprintf("%v: step(%s) called at terminal step %d without reset", e.Kind, e.Action, e.Step)
}

func (e *StepError) Is(target error) bool { return target == e.Kind }
