package models

import (
	"errors"
	"fmt"
)

// State is the reproductive status of an animal.
type State string

const (
	StateOpen      State = "open"
	StateServed    State = "served"
	StatePregnant  State = "pregnant"
	StateLactating State = "lactating"
	StateDisposed  State = "disposed"
)

// ErrUnknownState is returned when a transition names a state outside the machine.
var ErrUnknownState = errors.New("unknown animal state")

// States lists every state in lifecycle order.
var States = []State{StateOpen, StateServed, StatePregnant, StateLactating, StateDisposed}

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	for _, known := range States {
		if s == known {
			return true
		}
	}
	return false
}

// ParseState converts raw input into a State.
func ParseState(raw string) (State, error) {
	s := State(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownState, raw)
	}
	return s, nil
}

// Every state accepts every target: the setters below overwrite unconditionally.

func (a *Animal) Open()      { a.State = StateOpen }
func (a *Animal) Served()    { a.State = StateServed }
func (a *Animal) Pregnant()  { a.State = StatePregnant }
func (a *Animal) Lactating() { a.State = StateLactating }
func (a *Animal) Disposed()  { a.State = StateDisposed }

// TransitionTo moves the animal to target through the matching setter.
func (a *Animal) TransitionTo(target State) error {
	switch target {
	case StateOpen:
		a.Open()
	case StateServed:
		a.Served()
	case StatePregnant:
		a.Pregnant()
	case StateLactating:
		a.Lactating()
	case StateDisposed:
		a.Disposed()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownState, target)
	}
	return nil
}
