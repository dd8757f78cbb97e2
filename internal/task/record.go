package task

// Record is the immutable result of one completed trial.
type Record struct {
	TrialNumber         int
	Participant         string
	Response            Response
	ResponsePeriodOnset float64 // seconds since session start
	RT                  float64 // seconds
	Seed                uint64
	Params              TrialParameters
	Correct             bool
}

// Sink persists the full ordered record set. Save is called with every
// record so far and must overwrite, not append.
type Sink interface {
	Save(records []Record) error
}
