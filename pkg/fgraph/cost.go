package fgraph

import "github.com/matzehuels/convroute/pkg/format"

// Cost model constants. Every edge costs at least DepthCost, so edge costs
// are strictly positive.
const (
	DepthCost                 = 1.0
	DefaultCategoryChangeCost = 0.6
	HandlerPriorityCost       = 0.2
	FormatPriorityCost        = 0.05
	LossyMultiplier           = 1.4
)

// EdgeCost computes the static cost of converting from into to with the
// handler registered at handlerOrdinal, where toPosition is the position of
// to in that handler's format list.
//
//	cost = DepthCost + categoryDelta + HandlerPriorityCost*handlerOrdinal + FormatPriorityCost*toPosition
//	cost *= LossyMultiplier if to is lossy
//
// categoryDelta is zero when the formats share a category, unless strict is
// set. Otherwise it comes from the rule table.
func EdgeCost(rules *Rules, from, to format.Descriptor, handler format.HandlerName, handlerOrdinal, toPosition int, strict bool) float64 {
	cost := DepthCost
	if strict || !from.SharesCategory(to) {
		cost += rules.categoryChangeCost(from, to, handler)
	}
	cost += HandlerPriorityCost * float64(handlerOrdinal)
	cost += FormatPriorityCost * float64(toPosition)
	if !to.Lossless {
		cost *= LossyMultiplier
	}
	return cost
}

// CategoryTrace returns the primary category of every step in path.
func CategoryTrace(path []format.PathStep) []string {
	trace := make([]string, len(path))
	for i, s := range path {
		trace[i] = s.Format.PrimaryCategory()
	}
	return trace
}

// AdaptiveCost sums the cost of every rule whose sequence matches the tail
// of trace.
//
// Matching walks rule and trace backwards together. A trace category equal
// to the current rule category consumes both; one equal to the category
// just after it (already consumed) only advances the trace, so repeated
// categories are tolerated. Anything else ends the match. A rule whose
// sequence is fully consumed contributes its cost once.
func AdaptiveCost(rules []CategoryAdaptiveRule, trace []string) float64 {
	var total float64
	for _, rule := range rules {
		if matchesTail(rule.Sequence, trace) {
			total += rule.Cost
		}
	}
	return total
}

func matchesTail(sequence, trace []string) bool {
	ri, ti := len(sequence)-1, len(trace)-1
	if ri < 0 {
		return false
	}
	for ti >= 0 {
		switch {
		case trace[ti] == sequence[ri]:
			ri--
			ti--
		case ri+1 < len(sequence) && trace[ti] == sequence[ri+1]:
			ti--
		default:
			return false
		}
		if ri < 0 {
			return true
		}
	}
	return false
}
