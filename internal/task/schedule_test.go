package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduleRows(n int) []TrialParameters {
	rows := make([]TrialParameters, n)
	for i := range rows {
		rows[i] = TrialParameters{CueFrequency: float64(100 * (i + 1)), ChoiceFrequency: 1000, Coherence: 1}
	}
	return rows
}

func counts(trials []Trial) map[float64]int {
	m := map[float64]int{}
	for _, t := range trials {
		m[t.Params.CueFrequency]++
	}
	return m
}

func TestSchedule_Random(t *testing.T) {
	t.Parallel()

	rows := scheduleRows(5)
	trials, err := Schedule(rows, 4, MethodRandom, 12345)
	require.NoError(t, err)
	require.Len(t, trials, 20)

	for i, tr := range trials {
		assert.Equal(t, i, tr.Number)
	}
	// each repetition is a permutation of the table
	for rep := 0; rep < 4; rep++ {
		c := counts(trials[rep*5 : rep*5+5])
		assert.Len(t, c, 5, "repetition %d", rep)
	}

	again, err := Schedule(rows, 4, MethodRandom, 12345)
	require.NoError(t, err)
	assert.Equal(t, trials, again)

	other, err := Schedule(rows, 4, MethodRandom, 54321)
	require.NoError(t, err)
	assert.NotEqual(t, trials, other)
}

func TestSchedule_Sequential(t *testing.T) {
	t.Parallel()

	rows := scheduleRows(3)
	trials, err := Schedule(rows, 2, MethodSequential, 1)
	require.NoError(t, err)
	require.Len(t, trials, 6)
	for i, tr := range trials {
		assert.Equal(t, rows[i%3], tr.Params)
	}
}

func TestSchedule_FullRandom(t *testing.T) {
	t.Parallel()

	trials, err := Schedule(scheduleRows(4), 10, MethodFullRandom, 99)
	require.NoError(t, err)
	require.Len(t, trials, 40)
	for _, n := range counts(trials) {
		assert.Equal(t, 10, n)
	}
}

func TestSchedule_Errors(t *testing.T) {
	t.Parallel()

	_, err := Schedule(nil, 1, MethodRandom, 1)
	assert.ErrorIs(t, err, ErrConfiguration)
	_, err = Schedule(scheduleRows(2), 0, MethodRandom, 1)
	assert.ErrorIs(t, err, ErrConfiguration)
	_, err = Schedule(scheduleRows(2), 1, Method("staircase"), 1)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestTrialSeed(t *testing.T) {
	t.Parallel()

	seen := map[uint64]bool{}
	for n := 0; n < 1000; n++ {
		s := TrialSeed(12345, n)
		assert.False(t, seen[s], "trial %d", n)
		seen[s] = true
	}
	assert.Equal(t, TrialSeed(12345, 7), TrialSeed(12345, 7))
	assert.NotEqual(t, TrialSeed(12345, 7), TrialSeed(12346, 7))
}
