package plan

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"strata-hq/strata/pkg/ingest"
	"strata-hq/strata/pkg/ingest/storage"
)

func TestPlan_ExecutesInOrderAndPipesOutput(t *testing.T) {
	var log []string
	p := New("test",
		&recordingAction{name: "a", log: &log},
		&recordingAction{name: "b", log: &log},
		&recordingAction{name: "c", log: &log},
	)

	out, err := p.Execute(context.Background(), "id", []byte(">"), nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(log, want) {
		t.Errorf("execution order = %v, want %v", log, want)
	}
	if string(out) != ">abc" {
		t.Errorf("output = %q, want %q", out, ">abc")
	}
}

func TestPlan_StopsAtFirstFailure(t *testing.T) {
	var log []string
	p := New("test",
		&recordingAction{name: "a", log: &log},
		&recordingAction{name: "b", log: &log, err: errInjected},
		&recordingAction{name: "c", log: &log},
	)

	_, err := p.Execute(context.Background(), "id", nil, nil)
	if !errors.Is(err, errInjected) {
		t.Fatalf("Execute() error = %v, want errInjected", err)
	}

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("error type = %T, want *StepError", err)
	}
	if stepErr.Index != 1 {
		t.Errorf("StepError.Index = %d, want 1", stepErr.Index)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(log, want) {
		t.Errorf("executed = %v, want %v", log, want)
	}
}

func TestPlan_EmptyPlanReturnsPayload(t *testing.T) {
	out, err := New("empty").Execute(context.Background(), "id", []byte("x"), nil)
	if err != nil || string(out) != "x" {
		t.Errorf("Execute() = (%q, %v), want (\"x\", nil)", out, err)
	}
}

func TestPlan_ActionsIsCopy(t *testing.T) {
	s := storage.NewMemoryStorage()
	p := New("store", &StoreAction{Storage: s})

	actions := p.Actions()
	actions[0] = &DeleteAction{Storage: s}

	if p.Kinds()[0] != KindStore {
		t.Error("mutating Actions() result changed the plan")
	}
}

func TestPlan_String(t *testing.T) {
	f := NewFactory(storage.NewMemoryStorage())
	if got := f.StoreAndRetrievePlan().String(); got != "store-retrieve[store,retrieve]" {
		t.Errorf("String() = %q", got)
	}
}

func TestPlan_ReadPlan(t *testing.T) {
	s := storage.NewMemoryStorage()
	gz := &TransformAction{Transformer: GzipTransformer{}}

	tests := []struct {
		name  string
		plan  *Plan
		kinds []Kind
	}{
		{
			name:  "store",
			plan:  New("store", &StoreAction{Storage: s}),
			kinds: []Kind{KindRetrieve},
		},
		{
			name:  "store and retrieve uses own retrieve",
			plan:  New("sr", &StoreAction{Storage: s}, &RetrieveAction{Storage: s}),
			kinds: []Kind{KindRetrieve},
		},
		{
			name:  "transform then store",
			plan:  New("complex", gz, &StoreAction{Storage: s}),
			kinds: []Kind{KindRetrieve, KindTransform},
		},
		{
			name:  "delete only",
			plan:  New("delete", &DeleteAction{Storage: s}),
			kinds: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rp := tt.plan.ReadPlan()
			if tt.kinds == nil {
				if rp != nil {
					t.Fatalf("ReadPlan() = %v, want nil", rp)
				}
				return
			}
			if rp == nil {
				t.Fatal("ReadPlan() = nil")
			}
			if !reflect.DeepEqual(rp.Kinds(), tt.kinds) {
				t.Errorf("ReadPlan().Kinds() = %v, want %v", rp.Kinds(), tt.kinds)
			}
		})
	}
}

func TestPlan_ReadPlanRestoresTransformedPayload(t *testing.T) {
	s := storage.NewMemoryStorage()
	p := New("complex",
		&TransformAction{Transformer: GzipTransformer{}},
		&TransformAction{Transformer: ByteReverser{}},
		&StoreAction{Storage: s},
	)
	ctx := context.Background()
	payload := bytes.Repeat([]byte("strata "), 1000)

	if _, err := p.Execute(ctx, "id-1", payload, nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	stored, err := s.Retrieve(ctx, "id-1")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if bytes.Equal(stored, payload) {
		t.Fatal("stored bytes equal payload, transforms did not run")
	}

	got, err := p.ReadPlan().Execute(ctx, "id-1", nil, nil)
	if err != nil {
		t.Fatalf("ReadPlan().Execute() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("read path did not restore the original payload")
	}
}

func TestDeleteAction_MissingObject(t *testing.T) {
	p := NewFactory(storage.NewMemoryStorage()).DeletePlan()
	_, err := p.Execute(context.Background(), "missing", nil, nil)
	if !errors.Is(err, ingest.ErrNotFound) {
		t.Errorf("Execute() error = %v, want ErrNotFound", err)
	}
}
