package plan

import (
	"fmt"

	"strata-hq/strata/pkg/ingest"
)

// Canonical plan names.
const (
	NameStore            = "store"
	NameRetrieve         = "retrieve"
	NameDelete           = "delete"
	NameStoreAndRetrieve = "store-retrieve"
	NameComplex          = "complex"
)

// Factory builds the canonical plans, all bound to one backend.
type Factory struct {
	storage       ingest.Storage
	complexStages []Action
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithComplexStages inserts stages ahead of the Store action of the complex
// plan. Stages run in the given order.
func WithComplexStages(stages ...Action) FactoryOption {
	return func(f *Factory) {
		f.complexStages = append(f.complexStages, stages...)
	}
}

// NewFactory creates a factory for storage.
func NewFactory(storage ingest.Storage, opts ...FactoryOption) *Factory {
	f := &Factory{storage: storage}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Storage returns the backend the factory binds plans to.
func (f *Factory) Storage() ingest.Storage { return f.storage }

// StorePlan returns [Store].
func (f *Factory) StorePlan() *Plan {
	return New(NameStore, &StoreAction{Storage: f.storage})
}

// RetrievePlan returns [Retrieve].
func (f *Factory) RetrievePlan() *Plan {
	return New(NameRetrieve, &RetrieveAction{Storage: f.storage})
}

// DeletePlan returns [Delete].
func (f *Factory) DeletePlan() *Plan {
	return New(NameDelete, &DeleteAction{Storage: f.storage})
}

// StoreAndRetrievePlan returns [Store, Retrieve].
func (f *Factory) StoreAndRetrievePlan() *Plan {
	return New(NameStoreAndRetrieve,
		&StoreAction{Storage: f.storage},
		&RetrieveAction{Storage: f.storage},
	)
}

// ComplexPlan returns the plan used for large files: the configured complex
// stages followed by [Store]. Without stages it is structurally the same as
// StorePlan.
func (f *Factory) ComplexPlan() *Plan {
	actions := make([]Action, 0, len(f.complexStages)+1)
	actions = append(actions, f.complexStages...)
	actions = append(actions, &StoreAction{Storage: f.storage})
	return New(NameComplex, actions...)
}

// ReadPlanFor returns the read path for bytes written by the named plan
// with the given stages: [Retrieve] followed by each stage undone in
// reverse order. It depends only on what was recorded at write time, so a
// file stays readable after the factory's stages or the size threshold
// change.
func (f *Factory) ReadPlanFor(name string, stages []string) (*Plan, error) {
	actions := []Action{&RetrieveAction{Storage: f.storage}}
	for i := len(stages) - 1; i >= 0; i-- {
		stage, inverse := parseStage(stages[i])
		t, ok := f.transformer(stage)
		if !ok {
			return nil, ingest.NewConfigError("plan.stages",
				fmt.Sprintf("unknown transform %q recorded by plan %q", stage, name))
		}
		actions = append(actions, &TransformAction{Transformer: t, Inverse: !inverse})
	}
	return New(name+"/read", actions...), nil
}

// transformer resolves a stage name against the configured complex stages
// first, then the built-in transforms.
func (f *Factory) transformer(name string) (Transformer, bool) {
	for _, a := range f.complexStages {
		if t, ok := a.(*TransformAction); ok && t.Transformer.Name() == name {
			return t.Transformer, true
		}
	}
	return LookupTransformer(name)
}
