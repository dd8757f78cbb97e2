package triallog

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audwm/internal/task"
)

func sampleRecords() []task.Record {
	return []task.Record{
		{
			TrialNumber:         0,
			Participant:         "P01",
			Response:            task.ResponseSame,
			ResponsePeriodOnset: 7,
			RT:                  0.4,
			Seed:                math.MaxUint64,
			Params:              task.TrialParameters{CueFrequency: 1000, CueFrequencyRange: 1, ChoiceFrequency: 1000, ChoiceFrequencyRange: 1, Coherence: 0.8},
			Correct:             true,
		},
		{
			TrialNumber:         1,
			Participant:         "P01",
			Response:            task.ResponseNA,
			ResponsePeriodOnset: 19.125,
			RT:                  10,
			Seed:                42,
			Params:              task.TrialParameters{CueFrequency: 1000, CueFrequencyRange: 0.5, ChoiceFrequency: 1414.2, ChoiceFrequencyRange: 0.5, Coherence: 0.05},
		},
	}
}

func TestEncodeCSV(t *testing.T) {
	t.Parallel()

	data, err := EncodeCSV(sampleRecords())
	require.NoError(t, err)

	want := "Trial Number,Participant,Response,ResponsePeriodOnset,RT,Seed,Cue Frequency,Cue Frequency Range,Choice Frequency,Choice Frequency Range,Coherence\n" +
		"0,P01,same,7.0,0.4,18446744073709551615,1000.0,1.0,1000.0,1.0,0.8\n" +
		"1,P01,NA,19.125,10.0,42,1000.0,0.5,1414.2,0.5,0.05\n"
	assert.Equal(t, want, string(data))
}

func TestEncodeCSV_Empty(t *testing.T) {
	t.Parallel()

	data, err := EncodeCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(Header, ",")+"\n", string(data))
}

func TestFormatFloat(t *testing.T) {
	t.Parallel()

	tests := map[float64]string{
		0:       "0.0",
		1:       "1.0",
		0.1:     "0.1",
		1e-05:   "1e-05",
		1e21:    "1e+21",
		-2.5:    "-2.5",
		1414.21: "1414.21",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatFloat(in), "%v", in)
	}
}

func TestCSVSink_RewritesWholeFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "P01_20240301-090000.csv")
	sink := &CSVSink{Path: path}
	recs := sampleRecords()

	require.NoError(t, sink.Save(recs[:1]))
	first, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(first), "\n"))

	require.NoError(t, sink.Save(recs))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(second), "\n"))

	// saving the same records again yields the same bytes
	require.NoError(t, sink.Save(recs))
	third, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, second, third)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestCSVSink_WorldReadable(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}

	path := filepath.Join(t.TempDir(), "P01.csv")
	require.NoError(t, (&CSVSink{Path: path}).Save(sampleRecords()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestCSVSink_BadDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	sink := &CSVSink{Path: filepath.Join(blocker, "log.csv")}
	assert.Error(t, sink.Save(sampleRecords()))
}

type stubSink struct {
	calls int
	err   error
}

func (s *stubSink) Save([]task.Record) error {
	s.calls++
	return s.err
}

func TestMulti(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	a, b, c := &stubSink{}, &stubSink{err: boom}, &stubSink{}
	err := Multi{a, b, c}.Save(sampleRecords())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, 1, c.calls)
	assert.NoError(t, Multi{a, c}.Save(nil))
}

func TestSQLiteSink(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trials.db")
	sink, err := OpenSQLite(path, Session{
		Participant: "P01",
		Variant:     "new_timing",
		Seed:        12345,
		StartedAt:   time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })
	assert.NotEqual(t, uuid.Nil, sink.Session().ID)

	recs := sampleRecords()
	require.NoError(t, sink.Save(recs[:1]))
	require.NoError(t, sink.Save(recs))
	require.NoError(t, sink.Save(recs))

	got, err := sink.Records()
	require.NoError(t, err)
	if diff := cmp.Diff(recs, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteSink_SessionSeedKeepsFullRange(t *testing.T) {
	t.Parallel()

	sink, err := OpenSQLite(filepath.Join(t.TempDir(), "trials.db"), Session{
		Participant: "P01",
		Variant:     "new_timing",
		Seed:        math.MaxUint64,
	})
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })

	var seed string
	err = sink.db.QueryRow(`SELECT seed FROM sessions WHERE session_id = ?`, sink.Session().ID.String()).Scan(&seed)
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551615", seed)
}

func TestSQLiteSink_SessionsAreIsolated(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trials.db")
	first, err := OpenSQLite(path, Session{Participant: "P01", Variant: "shell"})
	require.NoError(t, err)
	t.Cleanup(func() { first.Close() })
	require.NoError(t, first.Save(sampleRecords()))

	// reopening runs migrations again without error
	second, err := OpenSQLite(path, Session{Participant: "P02", Variant: "shell"})
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })
	require.NoError(t, second.Save(sampleRecords()[:1]))

	a, err := first.Records()
	require.NoError(t, err)
	b, err := second.Records()
	require.NoError(t, err)
	assert.Len(t, a, 2)
	assert.Len(t, b, 1)
}
