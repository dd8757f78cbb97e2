package task

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"audwm/internal/monitoring"
)

// Table column names, in file order of the reference stimulus lists.
const (
	ColCueFrequency         = "cue_frequency"
	ColCueFrequencyRange    = "cue_frequency_range"
	ColChoiceFrequency      = "choice_frequency"
	ColChoiceFrequencyRange = "choice_frequency_range"
	ColCoherence            = "coherence"
)

var tableColumns = []string{
	ColCueFrequency,
	ColCueFrequencyRange,
	ColChoiceFrequency,
	ColChoiceFrequencyRange,
	ColCoherence,
}

// LoadTableFile reads the stimulus table at path.
func LoadTableFile(path string) ([]TrialParameters, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open stimulus table: %v", ErrConfiguration, err)
	}
	defer f.Close()
	rows, err := LoadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// LoadTable parses a headed CSV stimulus table. Every row must carry the
// five parameter columns with in-range numbers; unknown columns are ignored.
func LoadTable(r io.Reader) ([]TrialParameters, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: stimulus table is empty", ErrConfiguration)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrConfiguration, err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		index[h] = i
	}
	for _, col := range tableColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: stimulus table missing column %q", ErrConfiguration, col)
		}
	}
	if extra := len(index) - len(tableColumns); extra > 0 {
		monitoring.Logf("stimulus table: ignoring %d unknown column(s)", extra)
	}

	var rows []TrialParameters
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrConfiguration, line, err)
		}
		vals := make(map[string]float64, len(tableColumns))
		for _, col := range tableColumns {
			raw := strings.TrimSpace(rec[index[col]])
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %s = %q is not a number", ErrConfiguration, line, col, raw)
			}
			vals[col] = v
		}
		p := TrialParameters{
			CueFrequency:         vals[ColCueFrequency],
			CueFrequencyRange:    vals[ColCueFrequencyRange],
			ChoiceFrequency:      vals[ColChoiceFrequency],
			ChoiceFrequencyRange: vals[ColChoiceFrequencyRange],
			Coherence:            vals[ColCoherence],
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, p)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: stimulus table has no rows", ErrConfiguration)
	}
	return rows, nil
}
