package task

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned for an event the current state does not accept.
var ErrInvalidTransition = errors.New("invalid state transition")

// State is the lifecycle position of a single trial.
type State int

const (
	StatePending            State = iota // trial not started
	StatePresentingCue                   // pre-stimulus flashes and cue playback
	StateInterStimulusDelay              // working-memory retention interval
	StatePresentingChoice                // choice playback
	StateAwaitingResponse                // response window open
	StateResponded                       // a target region was entered
	StateTimedOut                        // no response; idle gate active
	StateFeedback                        // feedback, reward and inter-trial interval
	StateDone
	StateAborting
)

var stateNames = [...]string{
	StatePending:            "PENDING",
	StatePresentingCue:      "PRESENTING_CUE",
	StateInterStimulusDelay: "INTER_STIMULUS_DELAY",
	StatePresentingChoice:   "PRESENTING_CHOICE",
	StateAwaitingResponse:   "AWAITING_RESPONSE",
	StateResponded:          "RESPONDED",
	StateTimedOut:           "TIMED_OUT",
	StateFeedback:           "FEEDBACK",
	StateDone:               "DONE",
	StateAborting:           "ABORTING",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether no further event is accepted.
func (s State) Terminal() bool {
	return s == StateDone || s == StateAborting
}

// Event drives a state change.
type Event int

const (
	EventPhaseDone   Event = iota // the timed work of the current state finished
	EventHit                      // pointer entered a response region
	EventTimeout                  // response window expired
	EventGateCleared              // pointer hovered the neutral target after a timeout
	EventAbort                    // global cancel observed
)

var eventNames = [...]string{
	EventPhaseDone:   "phase-done",
	EventHit:         "hit",
	EventTimeout:     "timeout",
	EventGateCleared: "gate-cleared",
	EventAbort:       "abort",
}

func (e Event) String() string {
	if e >= 0 && int(e) < len(eventNames) {
		return eventNames[e]
	}
	return fmt.Sprintf("Event(%d)", int(e))
}

var transitions = map[State]map[Event]State{
	StatePending:            {EventPhaseDone: StatePresentingCue},
	StatePresentingCue:      {EventPhaseDone: StateInterStimulusDelay},
	StateInterStimulusDelay: {EventPhaseDone: StatePresentingChoice},
	StatePresentingChoice:   {EventPhaseDone: StateAwaitingResponse},
	StateAwaitingResponse:   {EventHit: StateResponded, EventTimeout: StateTimedOut},
	StateResponded:          {EventPhaseDone: StateFeedback},
	StateTimedOut:           {EventGateCleared: StateFeedback},
	StateFeedback:           {EventPhaseDone: StateDone},
}

// Transition returns the state reached from s on ev. Abort is accepted by
// every non-terminal state.
func Transition(s State, ev Event) (State, error) {
	if s.Terminal() {
		return s, fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, s)
	}
	if ev == EventAbort {
		return StateAborting, nil
	}
	if next, ok := transitions[s][ev]; ok {
		return next, nil
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, s)
}
