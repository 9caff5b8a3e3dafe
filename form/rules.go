package form

import "slices"

// Condition holds when the boolean field Field currently equals Value.
type Condition struct {
	Field string
	Value bool
}

type EffectKind int

const (
	// EffectRequireField makes Target required (blank and "none" rejected) while the rule matches.
	EffectRequireField EffectKind = iota + 1
	// EffectSetButtonEnabled enables the button Target while the rule matches and disables it otherwise.
	EffectSetButtonEnabled
)

func (k EffectKind) String() string {
	switch k {
	case EffectRequireField:
		return "RequireField"
	case EffectSetButtonEnabled:
		return "SetButtonEnabled"
	}
	return "Unknown"
}

type Effect struct {
	Kind   EffectKind
	Target string
}

// Rule links the state of one field or button to the values of watched fields.
type Rule struct {
	Watched    []string
	Conditions []Condition
	Effect     Effect
}

// CorrelationRules are the rules of the Calibre settings form.
var CorrelationRules = []Rule{
	{
		Watched:    []string{FieldEnable},
		Conditions: []Condition{{Field: FieldEnable, Value: true}},
		Effect:     Effect{Kind: EffectRequireField, Target: FieldDataSharedFolder},
	},
	{
		Watched:    []string{FieldEnable},
		Conditions: []Condition{{Field: FieldEnable, Value: true}},
		Effect:     Effect{Kind: EffectSetButtonEnabled, Target: ButtonOpenWeb},
	},
}

// Watches reports whether a change of field must re-evaluate r.
func (r Rule) Watches(field string) bool {
	return slices.Contains(r.Watched, field)
}

// Matches reports whether every condition holds for the given values.
// An unparsable boolean never matches.
func (r Rule) Matches(value func(field string) string) bool {
	for _, c := range r.Conditions {
		v, err := ParseBool(value(c.Field))
		if err != nil || v != c.Value {
			return false
		}
	}
	return true
}

// ruleTarget receives the effects of evaluated rules.
type ruleTarget interface {
	setRequired(field string, required bool)
	setButtonEnabled(button string, enabled bool)
}

// evaluateRules applies every rule watching changed. An empty changed evaluates all rules.
func evaluateRules(rules []Rule, changed string, value func(string) string, target ruleTarget) {
	for _, r := range rules {
		if changed != "" && !r.Watches(changed) {
			continue
		}
		matched := r.Matches(value)
		switch r.Effect.Kind {
		case EffectRequireField:
			target.setRequired(r.Effect.Target, matched)
		case EffectSetButtonEnabled:
			target.setButtonEnabled(r.Effect.Target, matched)
		}
	}
}
