package plan

import (
	"context"
	"fmt"
	"strings"
)

// Plan is an ordered sequence of actions executed for one identifier.
// A Plan is not modified after construction.
type Plan struct {
	name    string
	actions []Action
}

// New builds a plan from actions in execution order.
func New(name string, actions ...Action) *Plan {
	return &Plan{name: name, actions: append([]Action(nil), actions...)}
}

// Name returns the plan name ("store", "complex", ...).
func (p *Plan) Name() string { return p.name }

// Actions returns a copy of the action list.
func (p *Plan) Actions() []Action {
	return append([]Action(nil), p.actions...)
}

// Len returns the number of actions.
func (p *Plan) Len() int { return len(p.actions) }

// Kinds returns the kind of each action in order.
func (p *Plan) Kinds() []Kind {
	kinds := make([]Kind, len(p.actions))
	for i, a := range p.actions {
		kinds[i] = a.Kind()
	}
	return kinds
}

// String renders the plan as name[kind,kind,...].
func (p *Plan) String() string {
	parts := make([]string, len(p.actions))
	for i, k := range p.Kinds() {
		parts[i] = string(k)
	}
	return fmt.Sprintf("%s[%s]", p.name, strings.Join(parts, ","))
}

// StepError reports which action of a plan failed.
type StepError struct {
	Plan  string
	Index int
	Kind  Kind
	Err   error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("plan %s: step %d (%s): %v", e.Plan, e.Index, e.Kind, e.Err)
}

// Unwrap returns the underlying action error.
func (e *StepError) Unwrap() error { return e.Err }

// Execute runs the actions in order, piping each output into the next
// action. It stops at the first failure and returns a *StepError; actions
// that already ran are not undone. The last action's output is returned.
func (p *Plan) Execute(ctx context.Context, id string, payload []byte, meta map[string]string) ([]byte, error) {
	data := payload
	for i, a := range p.actions {
		if err := ctx.Err(); err != nil {
			return nil, &StepError{Plan: p.name, Index: i, Kind: a.Kind(), Err: err}
		}
		out, err := a.Execute(ctx, id, data, meta)
		if err != nil {
			return nil, &StepError{Plan: p.name, Index: i, Kind: a.Kind(), Err: err}
		}
		data = out
	}
	return data, nil
}

// RetrieveAction returns the first Retrieve action of the plan.
func (p *Plan) RetrieveAction() (Action, bool) {
	for _, a := range p.actions {
		if a.Kind() == KindRetrieve {
			return a, true
		}
	}
	return nil, false
}

// Stages names the transforms that run before the first Store action, in
// order. These are the transforms baked into the stored bytes. An inverse
// transform is named with a leading '~'.
func (p *Plan) Stages() []string {
	var stages []string
	for _, a := range p.actions {
		if a.Kind() == KindStore {
			return stages
		}
		if t, ok := a.(*TransformAction); ok {
			stages = append(stages, stageName(t))
		}
	}
	// Nothing was stored, so nothing needs undoing.
	return nil
}

// ReadPlan returns the plan that reads back what p wrote. When p contains a
// Retrieve action that action is used on its own; otherwise the write path
// is inverted. ReadPlan returns nil when p writes nothing.
func (p *Plan) ReadPlan() *Plan {
	if a, ok := p.RetrieveAction(); ok {
		return New(p.name+"/read", a)
	}

	var inverse []Action
	for i := len(p.actions) - 1; i >= 0; i-- {
		if inv := invert(p.actions[i]); inv != nil {
			inverse = append(inverse, inv)
		}
	}
	// A read path must start by fetching bytes; drop transforms that sit
	// after the last store in write order.
	for len(inverse) > 0 && inverse[0].Kind() != KindRetrieve {
		inverse = inverse[1:]
	}
	if len(inverse) == 0 {
		return nil
	}
	return New(p.name+"/read", inverse...)
}
