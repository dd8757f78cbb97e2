// Package triallog persists trial records. Every sink rewrites its whole
// output on each Save so a crash never leaves a partial trial behind.
package triallog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"audwm/internal/task"
)

// Header is the trial log column order.
var Header = []string{
	"Trial Number",
	"Participant",
	"Response",
	"ResponsePeriodOnset",
	"RT",
	"Seed",
	"Cue Frequency",
	"Cue Frequency Range",
	"Choice Frequency",
	"Choice Frequency Range",
	"Coherence",
}

// CSVSink writes the trial log to Path.
type CSVSink struct {
	Path string
}

// Save replaces the file at Path with a header and one row per record.
// The new content is written next to the target and renamed over it.
func (s *CSVSink) Save(records []task.Record) error {
	data, err := EncodeCSV(records)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*")
	if err != nil {
		return fmt.Errorf("create temp log: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write trial log: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod trial log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close trial log: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replace trial log: %w", err)
	}
	return nil
}

// EncodeCSV renders records in log format. Equal input gives equal bytes.
func EncodeCSV(records []task.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, err
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.TrialNumber),
			r.Participant,
			string(r.Response),
			formatFloat(r.ResponsePeriodOnset),
			formatFloat(r.RT),
			strconv.FormatUint(r.Seed, 10),
			formatFloat(r.Params.CueFrequency),
			formatFloat(r.Params.CueFrequencyRange),
			formatFloat(r.Params.ChoiceFrequency),
			formatFloat(r.Params.ChoiceFrequencyRange),
			formatFloat(r.Params.Coherence),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode trial log: %w", err)
	}
	return buf.Bytes(), nil
}

// formatFloat prints the shortest round-trip form, keeping a ".0" on
// integral values so columns read back as floats.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if math.IsInf(v, 0) || math.IsNaN(v) || strings.ContainsAny(s, ".eE") {
		return s
	}
	return s + ".0"
}
