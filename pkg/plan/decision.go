package plan

import "strata-hq/strata/pkg/ingest"

// DefaultFileSizeThreshold is the size above which files take the complex plan.
const DefaultFileSizeThreshold int64 = 1 << 20

// DecisionMaker maps file metadata to the plan that stores it.
//
// Implementations must be deterministic for a given FileMetadata: the same
// decision is replayed on retrieval to find the read path.
type DecisionMaker interface {
	ChoosePlan(meta *ingest.FileMetadata) (*Plan, error)
}

// DecisionFunc adapts a function to DecisionMaker.
type DecisionFunc func(meta *ingest.FileMetadata) (*Plan, error)

// ChoosePlan implements DecisionMaker.
func (f DecisionFunc) ChoosePlan(meta *ingest.FileMetadata) (*Plan, error) {
	return f(meta)
}

// SizeDecisionMaker picks the complex plan for files larger than a threshold
// and the store plan otherwise.
type SizeDecisionMaker struct {
	factory   *Factory
	threshold int64
}

// NewSizeDecisionMaker creates a size-based decision maker. A non-positive
// threshold selects DefaultFileSizeThreshold.
func NewSizeDecisionMaker(factory *Factory, threshold int64) *SizeDecisionMaker {
	if threshold <= 0 {
		threshold = DefaultFileSizeThreshold
	}
	return &SizeDecisionMaker{factory: factory, threshold: threshold}
}

// Threshold returns the configured size threshold in bytes.
func (d *SizeDecisionMaker) Threshold() int64 { return d.threshold }

// ChoosePlan implements DecisionMaker. It never fails.
func (d *SizeDecisionMaker) ChoosePlan(meta *ingest.FileMetadata) (*Plan, error) {
	if meta.Size > d.threshold {
		return d.factory.ComplexPlan(), nil
	}
	return d.factory.StorePlan(), nil
}
