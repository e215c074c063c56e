package plan

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"strata-hq/strata/pkg/ingest"
	"strata-hq/strata/pkg/ingest/storage"
)

func TestFactory_CanonicalPlans(t *testing.T) {
	f := NewFactory(storage.NewMemoryStorage())

	tests := []struct {
		plan  *Plan
		name  string
		kinds []Kind
	}{
		{f.StorePlan(), NameStore, []Kind{KindStore}},
		{f.RetrievePlan(), NameRetrieve, []Kind{KindRetrieve}},
		{f.DeletePlan(), NameDelete, []Kind{KindDelete}},
		{f.StoreAndRetrievePlan(), NameStoreAndRetrieve, []Kind{KindStore, KindRetrieve}},
		{f.ComplexPlan(), NameComplex, []Kind{KindStore}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.plan.Name() != tt.name {
				t.Errorf("Name() = %q, want %q", tt.plan.Name(), tt.name)
			}
			if !reflect.DeepEqual(tt.plan.Kinds(), tt.kinds) {
				t.Errorf("Kinds() = %v, want %v", tt.plan.Kinds(), tt.kinds)
			}
		})
	}
}

func TestFactory_ComplexStagesPrecedeStore(t *testing.T) {
	f := NewFactory(storage.NewMemoryStorage(),
		WithComplexStages(&TransformAction{Transformer: GzipTransformer{}}),
	)

	want := []Kind{KindTransform, KindStore}
	if got := f.ComplexPlan().Kinds(); !reflect.DeepEqual(got, want) {
		t.Errorf("ComplexPlan().Kinds() = %v, want %v", got, want)
	}
	if got := f.StorePlan().Kinds(); !reflect.DeepEqual(got, []Kind{KindStore}) {
		t.Errorf("StorePlan() changed by complex stages: %v", got)
	}
}

func TestSizeDecisionMaker(t *testing.T) {
	f := NewFactory(storage.NewMemoryStorage())
	dm := NewSizeDecisionMaker(f, DefaultFileSizeThreshold)
	now := time.Now()

	tests := []struct {
		size int64
		want string
	}{
		{0, NameStore},
		{500000, NameStore},
		{DefaultFileSizeThreshold, NameStore},
		{DefaultFileSizeThreshold + 1, NameComplex},
		{2000000, NameComplex},
	}

	for _, tt := range tests {
		p, err := dm.ChoosePlan(ingest.NewFileMetadata("id", "/f", tt.size, now))
		if err != nil {
			t.Fatalf("ChoosePlan(%d) error = %v", tt.size, err)
		}
		if p.Name() != tt.want {
			t.Errorf("ChoosePlan(%d) = %s, want %s", tt.size, p.Name(), tt.want)
		}
	}
}

func TestSizeDecisionMaker_DefaultThreshold(t *testing.T) {
	dm := NewSizeDecisionMaker(NewFactory(storage.NewMemoryStorage()), 0)
	if dm.Threshold() != DefaultFileSizeThreshold {
		t.Errorf("Threshold() = %d, want %d", dm.Threshold(), DefaultFileSizeThreshold)
	}
}

func TestDecisionFunc(t *testing.T) {
	f := NewFactory(storage.NewMemoryStorage())
	boom := errors.New("boom")

	var dm DecisionMaker = DecisionFunc(func(meta *ingest.FileMetadata) (*Plan, error) {
		if meta.ContentType == "" {
			return nil, boom
		}
		return f.StoreAndRetrievePlan(), nil
	})

	meta := ingest.NewFileMetadata("id", "/f", 1, time.Now())
	if _, err := dm.ChoosePlan(meta); !errors.Is(err, boom) {
		t.Errorf("ChoosePlan() error = %v, want boom", err)
	}

	meta.ContentType = "text/plain"
	p, err := dm.ChoosePlan(meta)
	if err != nil || p.Name() != NameStoreAndRetrieve {
		t.Errorf("ChoosePlan() = (%v, %v)", p, err)
	}
}

func TestPlan_Stages(t *testing.T) {
	s := storage.NewMemoryStorage()
	gz := &TransformAction{Transformer: GzipTransformer{}}
	rev := &TransformAction{Transformer: ByteReverser{}, Inverse: true}

	tests := []struct {
		name string
		plan *Plan
		want []string
	}{
		{"store only", New(NameStore, &StoreAction{Storage: s}), nil},
		{"stages before store", New(NameComplex, gz, rev, &StoreAction{Storage: s}), []string{"gzip", "~reverse"}},
		{"transform after store ignored", New("x", gz, &StoreAction{Storage: s}, rev), []string{"gzip"}},
		{"nothing stored", New("x", gz), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.plan.Stages(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Stages() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFactory_ReadPlanForOutlivesConfiguration(t *testing.T) {
	s := storage.NewMemoryStorage()
	ctx := context.Background()
	payload := bytes.Repeat([]byte("strata "), 1000)

	writer := NewFactory(s, WithComplexStages(
		&TransformAction{Transformer: GzipTransformer{Level: 9}},
		&TransformAction{Transformer: ByteReverser{}},
	))
	wp := writer.ComplexPlan()
	if _, err := wp.Execute(ctx, "id-1", payload, nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	// A factory with no stages still reads what the staged one wrote.
	reader := NewFactory(s)
	rp, err := reader.ReadPlanFor(wp.Name(), wp.Stages())
	if err != nil {
		t.Fatalf("ReadPlanFor() error = %v", err)
	}
	want := []Kind{KindRetrieve, KindTransform, KindTransform}
	if !reflect.DeepEqual(rp.Kinds(), want) {
		t.Errorf("Kinds() = %v, want %v", rp.Kinds(), want)
	}

	got, err := rp.Execute(ctx, "id-1", nil, nil)
	if err != nil {
		t.Fatalf("read Execute() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("read path did not restore the original payload")
	}
}

func TestFactory_ReadPlanForInverseStage(t *testing.T) {
	s := storage.NewMemoryStorage()
	ctx := context.Background()
	payload := []byte("abcdef")

	gz, err := GzipTransformer{}.Forward(payload)
	if err != nil {
		t.Fatal(err)
	}
	// Writing through an inverse gzip stage decompresses before storing.
	wp := New(NameComplex, &TransformAction{Transformer: GzipTransformer{}, Inverse: true}, &StoreAction{Storage: s})
	if _, err := wp.Execute(ctx, "id-1", gz, nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	rp, err := NewFactory(s).ReadPlanFor(wp.Name(), wp.Stages())
	if err != nil {
		t.Fatalf("ReadPlanFor() error = %v", err)
	}
	got, err := rp.Execute(ctx, "id-1", nil, nil)
	if err != nil {
		t.Fatalf("read Execute() error = %v", err)
	}
	back, err := GzipTransformer{}.Reverse(got)
	if err != nil || !bytes.Equal(back, payload) {
		t.Errorf("read path returned %q, want gzip of %q", got, payload)
	}
}

func TestFactory_ReadPlanForUnknownStage(t *testing.T) {
	_, err := NewFactory(storage.NewMemoryStorage()).ReadPlanFor(NameComplex, []string{"rot13"})
	var cfgErr *ingest.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("ReadPlanFor() error = %v, want *ingest.ConfigError", err)
	}
}
