package retention

import (
	"fmt"
	"time"

	"strata-hq/strata/pkg/ingest"
)

// Policy is a named, ordered list of rules evaluated first-match-wins.
// A Policy returned by NewPolicy holds only valid rules.
type Policy struct {
	name        string
	description string
	rules       []Rule
}

// Decision is the outcome of evaluating a policy against one file.
type Decision struct {
	Index  int
	Rule   Rule
	Action Action
	Cutoff time.Time
}

// NewPolicy normalizes and validates rules. Any invalid rule fails with an
// *ingest.ConfigError naming the rule.
func NewPolicy(name, description string, rules ...Rule) (*Policy, error) {
	p := &Policy{name: name, description: description, rules: make([]Rule, len(rules))}
	for i, r := range rules {
		r = r.normalize()
		if err := r.validate(); err != nil {
			return nil, ingest.NewConfigError(fmt.Sprintf("retention.rules[%d]", i), err.Error())
		}
		p.rules[i] = r
	}
	return p, nil
}

// Name returns the policy name.
func (p *Policy) Name() string { return p.name }

// Description returns the policy description.
func (p *Policy) Description() string { return p.description }

// Rules returns a copy of the normalized rules.
func (p *Policy) Rules() []Rule {
	return append([]Rule(nil), p.rules...)
}

// Evaluate returns the first rule whose cutoff for meta lies strictly
// before now.
func (p *Policy) Evaluate(meta *ingest.FileMetadata, now time.Time) (Decision, bool) {
	for i, r := range p.rules {
		cutoff, err := r.Cutoff(meta.CreatedAt)
		if err != nil {
			continue
		}
		if now.After(cutoff) {
			return Decision{Index: i, Rule: r, Action: r.Action, Cutoff: cutoff}, true
		}
	}
	return Decision{}, false
}

// ShouldDelete reports whether any rule selects meta at now, whatever the
// resulting action.
func (p *Policy) ShouldDelete(meta *ingest.FileMetadata, now time.Time) bool {
	_, ok := p.Evaluate(meta, now)
	return ok
}
