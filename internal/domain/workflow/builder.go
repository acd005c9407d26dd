package workflow

import (
	"context"
	"fmt"
)

// GuardFunc is a function that evaluates whether a transition should be allowed
type GuardFunc func(ctx context.Context) bool

// StateMachineBuilder builds a configured state machine
type StateMachineBuilder interface {
	// Configure returns a state configuration for the given state
	Configure(state State) StateConfiguration

	// Build creates a new state machine instance with the given initial state
	Build(initialState State) StateMachine
}

// StateConfiguration configures transitions for a specific state
type StateConfiguration interface {
	// Permit allows an action to transition to the target state, producing a
	// step of the given kind and outcome
	Permit(action Action, toState State, kind StepKind, outcome Outcome) StateConfiguration

	// PermitIf allows the transition only if the guard condition passes
	PermitIf(action Action, toState State, kind StepKind, outcome Outcome, guard GuardFunc) StateConfiguration
}

// edge represents a configured transition with optional guard
type edge struct {
	transition Transition
	guard      GuardFunc
}

// stateConfig implements StateConfiguration
type stateConfig struct {
	fromState State
	edges     map[Action][]edge
}

// stateMachineBuilder implements StateMachineBuilder
type stateMachineBuilder struct {
	configurations map[State]*stateConfig
}

// stateMachine implements StateMachine
type stateMachine struct {
	currentState   State
	configurations map[State]*stateConfig
}

// NewBuilder creates a new state machine builder
func NewBuilder() StateMachineBuilder {
	return &stateMachineBuilder{
		configurations: make(map[State]*stateConfig),
	}
}

// Configure returns a state configuration for the given state
func (b *stateMachineBuilder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}

	config, exists := b.configurations[state]
	if !exists {
		config = &stateConfig{
			fromState: state,
			edges:     make(map[Action][]edge),
		}
		b.configurations[state] = config
	}

	return config
}

// Build creates a new state machine instance with the given initial state
func (b *stateMachineBuilder) Build(initialState State) StateMachine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initialState))
	}

	// Deep copy configurations so machines built from the same builder do not
	// share mutable state
	configsCopy := make(map[State]*stateConfig)
	for state, config := range b.configurations {
		edgesCopy := make(map[Action][]edge)
		for action, edges := range config.edges {
			edgesCopy[action] = append([]edge{}, edges...)
		}
		configsCopy[state] = &stateConfig{
			fromState: state,
			edges:     edgesCopy,
		}
	}

	return &stateMachine{
		currentState:   initialState,
		configurations: configsCopy,
	}
}

// Permit allows an action to transition to the target state
func (c *stateConfig) Permit(action Action, toState State, kind StepKind, outcome Outcome) StateConfiguration {
	return c.PermitIf(action, toState, kind, outcome, nil)
}

// PermitIf allows the transition only if the guard condition passes
func (c *stateConfig) PermitIf(action Action, toState State, kind StepKind, outcome Outcome, guard GuardFunc) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", toState))
	}

	c.edges[action] = append(c.edges[action], edge{
		transition: Transition{
			From:    c.fromState,
			To:      toState,
			Kind:    kind,
			Outcome: outcome,
		},
		guard: guard,
	})

	return c
}

// State returns the current state
func (m *stateMachine) State() State {
	return m.currentState
}

// CanFire returns true if the action is permitted in the current state
func (m *stateMachine) CanFire(action Action) bool {
	config, exists := m.configurations[m.currentState]
	if !exists {
		return false
	}

	edges, exists := config.edges[action]
	return exists && len(edges) > 0
}

// Fire attempts to execute the action, transitioning to the new state if allowed
func (m *stateMachine) Fire(ctx context.Context, action Action) (Transition, error) {
	config, exists := m.configurations[m.currentState]
	if !exists {
		return Transition{}, fmt.Errorf("%w: cannot fire action %s from state %s (no configuration)", ErrInvalidTransition, action, m.currentState)
	}

	edges, exists := config.edges[action]
	if !exists || len(edges) == 0 {
		return Transition{}, fmt.Errorf("%w: cannot fire action %s from state %s", ErrInvalidTransition, action, m.currentState)
	}

	// Try each edge in order until one succeeds
	for _, e := range edges {
		if e.guard == nil || e.guard(ctx) {
			m.currentState = e.transition.To
			return e.transition, nil
		}
	}

	return Transition{}, fmt.Errorf("%w: action %s from state %s", ErrGuardFailed, action, m.currentState)
}

// PermittedActions returns all actions that can be fired in the current state
func (m *stateMachine) PermittedActions() []Action {
	config, exists := m.configurations[m.currentState]
	if !exists {
		return []Action{}
	}

	actions := make([]Action, 0, len(config.edges))
	for action := range config.edges {
		actions = append(actions, action)
	}

	return actions
}
