package task

import "time"

// TransitionEvent is published for every state change of a trial.
type TransitionEvent struct {
	Trial int
	From  State
	To    State
	Cause Event
	At    time.Duration // since session start
}

type TransitionHandler func(TransitionEvent)

// EventBus fans transition events out to subscribers, keyed by target state.
type EventBus struct {
	handlers map[State][]TransitionHandler
	all      []TransitionHandler
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[State][]TransitionHandler),
	}
}

// Subscribe registers fn for transitions into state to.
func (eb *EventBus) Subscribe(to State, fn TransitionHandler) {
	eb.handlers[to] = append(eb.handlers[to], fn)
}

// SubscribeAll registers fn for every transition.
func (eb *EventBus) SubscribeAll(fn TransitionHandler) {
	eb.all = append(eb.all, fn)
}

func (eb *EventBus) Emit(e TransitionEvent) {
	for _, fn := range eb.all {
		fn(e)
	}
	for _, fn := range eb.handlers[e.To] {
		fn(e)
	}
}
