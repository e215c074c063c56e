package plan

import (
	"context"
	"fmt"

	"strata-hq/strata/pkg/ingest"
)

// Kind identifies an action variant.
type Kind string

const (
	KindStore     Kind = "store"
	KindRetrieve  Kind = "retrieve"
	KindDelete    Kind = "delete"
	KindTransform Kind = "transform"
)

// Action is a single unit of work against storage.
//
// Execute receives the output of the previous action in the plan (the
// original payload for the first action) and returns the bytes handed to
// the next one.
type Action interface {
	Kind() Kind
	Execute(ctx context.Context, id string, payload []byte, meta map[string]string) ([]byte, error)
}

// StoreAction writes the payload to its backend and passes it through.
type StoreAction struct {
	Storage ingest.Storage
}

// Kind implements Action.
func (a *StoreAction) Kind() Kind { return KindStore }

// Execute implements Action.
func (a *StoreAction) Execute(ctx context.Context, id string, payload []byte, meta map[string]string) ([]byte, error) {
	if err := a.Storage.Store(ctx, id, payload, meta); err != nil {
		return nil, err
	}
	return payload, nil
}

// RetrieveAction reads the object from its backend. The incoming payload is
// ignored.
type RetrieveAction struct {
	Storage ingest.Storage
}

// Kind implements Action.
func (a *RetrieveAction) Kind() Kind { return KindRetrieve }

// Execute implements Action.
func (a *RetrieveAction) Execute(ctx context.Context, id string, _ []byte, _ map[string]string) ([]byte, error) {
	return a.Storage.Retrieve(ctx, id)
}

// DeleteAction removes the object from its backend and passes the payload
// through.
type DeleteAction struct {
	Storage ingest.Storage
}

// Kind implements Action.
func (a *DeleteAction) Kind() Kind { return KindDelete }

// Execute implements Action.
func (a *DeleteAction) Execute(ctx context.Context, id string, payload []byte, _ map[string]string) ([]byte, error) {
	if err := a.Storage.Delete(ctx, id); err != nil {
		return nil, err
	}
	return payload, nil
}

// TransformAction applies a Transformer to the payload. With Inverse set it
// applies the reverse direction.
type TransformAction struct {
	Transformer Transformer
	Inverse     bool
}

// Kind implements Action.
func (a *TransformAction) Kind() Kind { return KindTransform }

// Execute implements Action.
func (a *TransformAction) Execute(ctx context.Context, id string, payload []byte, _ map[string]string) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if a.Inverse {
		out, err = a.Transformer.Reverse(payload)
	} else {
		out, err = a.Transformer.Forward(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", a.Transformer.Name(), err)
	}
	return out, nil
}

// invert returns the action that undoes a on the read path, or nil when a
// has no read-side counterpart.
func invert(a Action) Action {
	switch v := a.(type) {
	case *StoreAction:
		return &RetrieveAction{Storage: v.Storage}
	case *TransformAction:
		return &TransformAction{Transformer: v.Transformer, Inverse: !v.Inverse}
	default:
		return nil
	}
}
