package environment

import (
	"errors"
	"fmt"

	"fuel-rl/internal/model"
)

// Check exercises an environment against the Env contract and returns every
// violation it finds. It walks one full episode with Hold actions, so the
// environment is left terminated; callers should Reset afterwards.
//
// maxSteps bounds the walk for environments that never terminate.
func Check(env Env, maxSteps int) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	obsSpace := env.ObservationSpace()
	if got := obsSpace.Shape(); len(got) != 1 || got[0] != model.ObservationSize {
		fail("observation space shape %v, want [%d]", got, model.ObservationSize)
	}
	if len(obsSpace.Low) != len(obsSpace.High) {
		fail("observation space bounds have different lengths: %d vs %d", len(obsSpace.Low), len(obsSpace.High))
	}
	if n := env.ActionSpace().N; n != model.NumActions {
		fail("action space has %d actions, want %d", n, model.NumActions)
	}
	for _, a := range model.Actions() {
		if !env.ActionSpace().Contains(a) {
			fail("action space does not contain %s", a)
		}
	}

	first := env.Reset()
	if !obsSpace.Contains(first.Slice()) {
		fail("reset observation %v outside observation space", first)
	}
	if again := env.Reset(); again != first {
		fail("reset is not idempotent: %v then %v", first, again)
	}

	if _, err := env.Step(model.Action(model.NumActions)); !errors.Is(err, ErrInvalidAction) {
		fail("step with out-of-range action returned %v, want %v", err, ErrInvalidAction)
	}

	terminated := false
	for i := 0; i < maxSteps; i++ {
		res, err := env.Step(model.ActionHold)
		if err != nil {
			fail("step %d: %w", i, err)
			break
		}
		if !obsSpace.Contains(res.Observation.Slice()) {
			fail("step %d observation %v outside observation space", i, res.Observation)
		}
		if res.Reward != 0 {
			fail("step %d: hold reward %v, want 0", i, res.Reward)
		}
		if res.Truncated {
			fail("step %d: truncated is set", i)
		}
		if res.Info == nil || len(res.Info) != 0 {
			fail("step %d: info %v, want empty map", i, res.Info)
		}
		if res.Terminated {
			terminated = true
			break
		}
	}
	if !terminated {
		fail("episode did not terminate within %d steps", maxSteps)
	} else if _, err := env.Step(model.ActionHold); !errors.Is(err, ErrEpisodeAlreadyTerminated) {
		fail("step after termination returned %v, want %v", err, ErrEpisodeAlreadyTerminated)
	}

	if obs := env.Reset(); obs != first {
		fail("reset after an episode returned %v, want %v", obs, first)
	}
	if _, err := env.Step(model.ActionHold); err != nil && errors.Is(err, ErrEpisodeAlreadyTerminated) {
		fail("reset did not return the environment to running: %v", err)
	}
	return errors.Join(errs...)
}
