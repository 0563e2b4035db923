// Package pqueue provides a generic binary min-heap used as the frontier of
// the route search.
//
// # Ordering
//
// Items are ordered by an explicit [Compare] function supplied at
// construction. There is no implicit fallback ordering: callers that queue
// ordered scalars can use [NewOrdered], which orders with [cmp.Compare].
//
// # Growth
//
// The backing store starts at the requested capacity and grows when full:
// roughly doubling while below 64 slots and by 50% afterwards. Growth that
// would exceed [MaxCapacity] fails with [ErrCapacityOverflow].
//
// # Example
//
//	q, _ := pqueue.New(16, func(a, b job) int { return cmp.Compare(a.cost, b.cost) })
//	_ = q.Add(job{cost: 2})
//	_ = q.Add(job{cost: 1})
//	next, _ := q.Poll() // cost 1
package pqueue
