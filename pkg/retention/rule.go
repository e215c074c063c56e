package retention

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// RuleTypeAge is the only supported rule type.
const RuleTypeAge = "age"

// Unit is the time unit of an age rule.
type Unit string

const (
	UnitSeconds Unit = "seconds"
	UnitDays    Unit = "days"
	UnitWeeks   Unit = "weeks"
	UnitMonths  Unit = "months"
	UnitYears   Unit = "years"
)

// maxValue caps each unit. Seconds stop where time.Duration overflows
// (about 292 years); calendar units stop at 1000 years.
var maxValue = map[Unit]int64{
	UnitSeconds: math.MaxInt64 / int64(time.Second),
	UnitDays:    365250,
	UnitWeeks:   52178,
	UnitMonths:  12000,
	UnitYears:   1000,
}

// Action is what happens to a file selected by a rule.
type Action string

const (
	ActionArchive Action = "ARCHIVE"
	ActionDelete  Action = "DELETE"
)

// Rule is a single age rule.
type Rule struct {
	Type   string `yaml:"type" json:"type"`
	Unit   Unit   `yaml:"unit" json:"unit"`
	Value  int    `yaml:"value" json:"value"`
	Action Action `yaml:"action,omitempty" json:"action,omitempty"`
}

// String renders the rule as "age 90 days -> ARCHIVE".
func (r Rule) String() string {
	return fmt.Sprintf("%s %d %s -> %s", r.Type, r.Value, r.Unit, r.Action)
}

// normalize fills defaults and canonicalizes case.
func (r Rule) normalize() Rule {
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	if r.Type == "" {
		r.Type = RuleTypeAge
	}
	r.Unit = Unit(strings.ToLower(strings.TrimSpace(string(r.Unit))))
	r.Action = Action(strings.ToUpper(strings.TrimSpace(string(r.Action))))
	if r.Action == "" {
		r.Action = ActionDelete
	}
	return r
}

// validate checks a normalized rule.
func (r Rule) validate() error {
	if r.Type != RuleTypeAge {
		return fmt.Errorf("unsupported rule type %q", r.Type)
	}
	if r.Value < 0 {
		return fmt.Errorf("negative value %d", r.Value)
	}
	if _, err := r.Cutoff(time.Time{}); err != nil {
		return err
	}
	switch r.Action {
	case ActionArchive, ActionDelete:
	default:
		return fmt.Errorf("unknown action %q", r.Action)
	}
	return nil
}

// Cutoff returns created plus the rule's duration. Values beyond the unit's
// cap are rejected rather than wrapped.
func (r Rule) Cutoff(created time.Time) (time.Time, error) {
	limit, ok := maxValue[r.Unit]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown time unit %q", r.Unit)
	}
	if int64(r.Value) > limit {
		return time.Time{}, fmt.Errorf("value %d exceeds the %s limit of %d", r.Value, r.Unit, limit)
	}

	switch r.Unit {
	case UnitSeconds:
		return created.Add(time.Duration(r.Value) * time.Second), nil
	case UnitDays:
		return created.AddDate(0, 0, r.Value), nil
	case UnitWeeks:
		return created.AddDate(0, 0, 7*r.Value), nil
	case UnitMonths:
		return created.AddDate(0, r.Value, 0), nil
	case UnitYears:
		return created.AddDate(r.Value, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unknown time unit %q", r.Unit)
	}
}
