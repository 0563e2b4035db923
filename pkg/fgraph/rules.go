package fgraph

import (
	"math"
	"slices"
	"sync"

	"github.com/matzehuels/convroute/pkg/format"
)

// CategoryChangeRule prices an edge whose source and destination belong to
// different categories. A rule with a Handler only applies to edges of that
// handler and takes precedence over generic rules.
type CategoryChangeRule struct {
	From    string             `json:"from" toml:"from"`
	To      string             `json:"to" toml:"to"`
	Handler format.HandlerName `json:"handler,omitempty" toml:"handler"`
	Cost    float64            `json:"cost" toml:"cost"`
}

// CategoryAdaptiveRule penalizes routes whose category trace ends in
// Sequence. It is evaluated during search on every candidate route.
type CategoryAdaptiveRule struct {
	Sequence []string `json:"sequence" toml:"sequence"`
	Cost     float64  `json:"cost" toml:"cost"`
}

// DefaultCategoryChangeRules returns the built-in category change table.
func DefaultCategoryChangeRules() []CategoryChangeRule {
	return []CategoryChangeRule{
		{From: "image", To: "video", Cost: 0.2},
		{From: "video", To: "image", Cost: 0.4},
		{From: "image", To: "audio", Cost: 1.4},
		{From: "audio", To: "image", Cost: 1.0},
		{From: "video", To: "audio", Cost: 1.4},
		{From: "audio", To: "video", Cost: 1.0},
		{From: "text", To: "image", Cost: 0.5},
		{From: "image", To: "text", Cost: 0.5},
		{From: "text", To: "audio", Cost: 0.6},
		{From: "document", To: "text", Cost: 0.4},
		{From: "text", To: "document", Cost: 0.2},
		{From: "document", To: "image", Cost: 0.3},
		{From: "image", To: "document", Cost: 0.8},
	}
}

// DefaultCategoryAdaptiveRules returns the built-in adaptive rule table.
// Chains that round-trip through an unrelated medium are priced far above
// any realistic route so they only win when nothing else exists.
func DefaultCategoryAdaptiveRules() []CategoryAdaptiveRule {
	return []CategoryAdaptiveRule{
		{Sequence: []string{"image", "video", "audio"}, Cost: 10000},
		{Sequence: []string{"audio", "video", "image"}, Cost: 10000},
		{Sequence: []string{"image", "audio", "image"}, Cost: 1000},
		{Sequence: []string{"text", "image", "text"}, Cost: 500},
	}
}

// Rules holds the mutable category cost tables. Changes only affect graphs
// built after the change; see [Build].
//
// Rules is safe for concurrent use.
type Rules struct {
	mu       sync.RWMutex
	change   []CategoryChangeRule
	adaptive []CategoryAdaptiveRule
}

// NewRules creates a table seeded with the default rules.
func NewRules() *Rules {
	return &Rules{
		change:   DefaultCategoryChangeRules(),
		adaptive: DefaultCategoryAdaptiveRules(),
	}
}

// NewEmptyRules creates a table with no rules.
func NewEmptyRules() *Rules { return &Rules{} }

// AddCategoryChangeCost adds a rule. It returns false if a rule with the
// same from, to and handler already exists or cost is not a finite,
// non-negative number.
func (r *Rules) AddCategoryChangeCost(from, to string, handler format.HandlerName, cost float64) bool {
	if !validCost(cost) || from == "" || to == "" {
		return false
	}
	handler = normalize(handler)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.changeIndex(from, to, handler) >= 0 {
		return false
	}
	r.change = append(r.change, CategoryChangeRule{From: from, To: to, Handler: handler, Cost: cost})
	return true
}

// RemoveCategoryChangeCost removes the matching rule and reports whether
// one existed.
func (r *Rules) RemoveCategoryChangeCost(from, to string, handler format.HandlerName) bool {
	handler = normalize(handler)
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.changeIndex(from, to, handler)
	if i < 0 {
		return false
	}
	r.change = slices.Delete(r.change, i, i+1)
	return true
}

// UpdateCategoryChangeCost sets the cost of an existing rule. It returns
// false if no rule matches or cost is invalid.
func (r *Rules) UpdateCategoryChangeCost(from, to string, handler format.HandlerName, cost float64) bool {
	if !validCost(cost) {
		return false
	}
	handler = normalize(handler)
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.changeIndex(from, to, handler)
	if i < 0 {
		return false
	}
	r.change[i].Cost = cost
	return true
}

// HasCategoryChangeCost reports whether a rule for from, to and handler
// exists.
func (r *Rules) HasCategoryChangeCost(from, to string, handler format.HandlerName) bool {
	handler = normalize(handler)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.changeIndex(from, to, handler) >= 0
}

// AddCategoryAdaptiveCost adds an adaptive rule keyed by its full ordered
// sequence. It returns false for an empty sequence, an invalid cost or an
// existing sequence.
func (r *Rules) AddCategoryAdaptiveCost(sequence []string, cost float64) bool {
	if !validCost(cost) || len(sequence) == 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.adaptiveIndex(sequence) >= 0 {
		return false
	}
	r.adaptive = append(r.adaptive, CategoryAdaptiveRule{Sequence: slices.Clone(sequence), Cost: cost})
	return true
}

// RemoveCategoryAdaptiveCost removes the rule for sequence.
func (r *Rules) RemoveCategoryAdaptiveCost(sequence []string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.adaptiveIndex(sequence)
	if i < 0 {
		return false
	}
	r.adaptive = slices.Delete(r.adaptive, i, i+1)
	return true
}

// UpdateCategoryAdaptiveCost sets the cost of the rule for sequence.
func (r *Rules) UpdateCategoryAdaptiveCost(sequence []string, cost float64) bool {
	if !validCost(cost) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.adaptiveIndex(sequence)
	if i < 0 {
		return false
	}
	r.adaptive[i].Cost = cost
	return true
}

// HasCategoryAdaptiveCost reports whether a rule for sequence exists.
func (r *Rules) HasCategoryAdaptiveCost(sequence []string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.adaptiveIndex(sequence) >= 0
}

// CategoryChangeRules returns a copy of the category change table.
func (r *Rules) CategoryChangeRules() []CategoryChangeRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.change)
}

// CategoryAdaptiveRules returns a deep copy of the adaptive table.
func (r *Rules) CategoryAdaptiveRules() []CategoryAdaptiveRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAdaptive(r.adaptive)
}

// Clone returns an independent copy of r.
func (r *Rules) Clone() *Rules {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Rules{
		change:   slices.Clone(r.change),
		adaptive: cloneAdaptive(r.adaptive),
	}
}

// categoryChangeCost looks up the cost for converting from into to with
// handler. Handler-specific rules win over generic ones; without a match
// DefaultCategoryChangeCost applies.
func (r *Rules) categoryChangeCost(from, to format.Descriptor, handler format.HandlerName) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	generic := math.NaN()
	for _, rule := range r.change {
		if !from.HasCategory(rule.From) || !to.HasCategory(rule.To) {
			continue
		}
		if rule.Handler == handler && !handler.IsZero() {
			return rule.Cost
		}
		if rule.Handler.IsZero() && math.IsNaN(generic) {
			generic = rule.Cost
		}
	}
	if !math.IsNaN(generic) {
		return generic
	}
	return DefaultCategoryChangeCost
}

func (r *Rules) changeIndex(from, to string, handler format.HandlerName) int {
	return slices.IndexFunc(r.change, func(c CategoryChangeRule) bool {
		return c.From == from && c.To == to && c.Handler == handler
	})
}

func (r *Rules) adaptiveIndex(sequence []string) int {
	return slices.IndexFunc(r.adaptive, func(c CategoryAdaptiveRule) bool {
		return slices.Equal(c.Sequence, sequence)
	})
}

func cloneAdaptive(rules []CategoryAdaptiveRule) []CategoryAdaptiveRule {
	out := make([]CategoryAdaptiveRule, len(rules))
	for i, rule := range rules {
		out[i] = CategoryAdaptiveRule{Sequence: slices.Clone(rule.Sequence), Cost: rule.Cost}
	}
	return out
}

func normalize(h format.HandlerName) format.HandlerName {
	return format.NewHandlerName(string(h))
}

func validCost(c float64) bool {
	return c >= 0 && !math.IsInf(c, 0) && !math.IsNaN(c)
}
