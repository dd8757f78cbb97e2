package task

import (
	"fmt"
	"math/rand/v2"

	"audwm/internal/tones"
)

// Method selects how table rows are ordered across repetitions.
type Method string

const (
	// MethodRandom shuffles each repetition independently.
	MethodRandom Method = "random"
	// MethodSequential repeats the table in file order.
	MethodSequential Method = "sequential"
	// MethodFullRandom shuffles all repetitions together.
	MethodFullRandom Method = "fullRandom"
)

// Trial is one scheduled presentation.
type Trial struct {
	Number int // 0-based position in the run
	Params TrialParameters
}

// Schedule expands rows into nReps repetitions ordered by method. The order
// depends only on seed.
func Schedule(rows []TrialParameters, nReps int, method Method, seed uint64) ([]Trial, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no stimulus rows to schedule", ErrConfiguration)
	}
	if nReps < 1 {
		return nil, fmt.Errorf("%w: n_reps must be >= 1, got %d", ErrConfiguration, nReps)
	}
	rng := rand.New(rand.NewPCG(seed, tones.SplitMix64(seed^0x5EED)))

	order := make([]int, 0, len(rows)*nReps)
	switch method {
	case MethodRandom:
		for r := 0; r < nReps; r++ {
			for _, i := range rng.Perm(len(rows)) {
				order = append(order, i)
			}
		}
	case MethodSequential, MethodFullRandom:
		for r := 0; r < nReps; r++ {
			for i := range rows {
				order = append(order, i)
			}
		}
		if method == MethodFullRandom {
			rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}
	default:
		return nil, fmt.Errorf("%w: unknown trial method %q", ErrConfiguration, method)
	}

	trials := make([]Trial, len(order))
	for n, i := range order {
		trials[n] = Trial{Number: n, Params: rows[i]}
	}
	return trials, nil
}

// TrialSeed derives the generator seed of trial n from the session seed.
func TrialSeed(session uint64, n int) uint64 {
	return tones.SplitMix64(session ^ uint64(n)*0x9E3779B185EBCA87)
}
