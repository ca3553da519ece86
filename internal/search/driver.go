package search

import "context"

// State is the capability set the graph search driver needs. Equal states
// must hash equal.
type State[S any] interface {
	Hash() uint64
	Equal(other S) bool
	IsGoal() bool
	Expand() []S
}

// Stats summarizes one search invocation.
type Stats struct {
	Expanded    int
	Generated   int
	MaxFrontier int
	BudgetHit   bool
	Canceled    bool
}

// Run explores from initial until a goal state is popped (ok == true), the
// frontier empties, maxExpanded states have been expanded (0 = no limit) or
// ctx is done. Successors are visited in the order Expand returns them.
func Run[S State[S]](ctx context.Context, initial S, frontier Frontier[S], maxExpanded int) (goal S, stats Stats, ok bool) {
	explored := NewSet[S]()
	frontier.Add(initial)
	stats.MaxFrontier = 1

	for !frontier.IsEmpty() {
		s := frontier.Pop()
		if s.IsGoal() {
			return s, stats, true
		}
		if maxExpanded > 0 && stats.Expanded >= maxExpanded {
			stats.BudgetHit = true
			return goal, stats, false
		}
		if ctx.Err() != nil {
			stats.Canceled = true
			return goal, stats, false
		}

		explored.Add(s)
		stats.Expanded++
		for _, child := range s.Expand() {
			stats.Generated++
			if frontier.Contains(child) || explored.Contains(child) {
				continue
			}
			frontier.Add(child)
		}
		if n := frontier.Size(); n > stats.MaxFrontier {
			stats.MaxFrontier = n
		}
	}
	return goal, stats, false
}
