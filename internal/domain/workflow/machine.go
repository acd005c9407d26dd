package workflow

import "context"

// Transition describes one legal edge of the state graph, including the
// workflow step it produces when taken.
type Transition struct {
	From    State
	To      State
	Kind    StepKind
	Outcome Outcome
}

// StateMachine represents a state machine that tracks current state and validates transitions
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the action is permitted in the current state
	CanFire(action Action) bool

	// Fire attempts to execute the action, transitioning to the new state if
	// allowed, and returns the transition that was taken
	Fire(ctx context.Context, action Action) (Transition, error)

	// PermittedActions returns all actions that can be fired in the current state
	PermittedActions() []Action
}
