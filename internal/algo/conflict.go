package algo

import (
	"fmt"

	"github.com/elektrokombinacija/mapf-hospital/internal/core"
	"github.com/elektrokombinacija/mapf-hospital/internal/search"
)

// ConflictKind distinguishes the two collision shapes.
type ConflictKind int

const (
	// PositionConflict: both agents occupy Pos at Time.
	PositionConflict ConflictKind = iota
	// FollowConflict: Agent1 occupies Pos at Time, which Agent2 occupied
	// at Time-1.
	FollowConflict
)

func (k ConflictKind) String() string {
	if k == FollowConflict {
		return "follow"
	}
	return "position"
}

// Conflict represents a collision between two agents' trajectories. Agents
// are identified by number. For a follow conflict Agent1 is the follower.
type Conflict struct {
	Kind           ConflictKind
	Agent1, Agent2 int
	Pos            core.Position
	Time           int
}

func (c *Conflict) String() string {
	return fmt.Sprintf("%s conflict %d/%d at %v t=%d", c.Kind, c.Agent1, c.Agent2, c.Pos, c.Time)
}

// Constraints returns the two branch constraints that resolve c: one per
// agent. A follow conflict forbids the follower from arriving and the
// leader from having been there one step earlier.
func (c *Conflict) Constraints() [2]search.Constraint {
	if c.Kind == FollowConflict {
		return [2]search.Constraint{
			{Agent: c.Agent1, Pos: c.Pos, Time: c.Time},
			{Agent: c.Agent2, Pos: c.Pos, Time: c.Time - 1},
		}
	}
	return [2]search.Constraint{
		{Agent: c.Agent1, Pos: c.Pos, Time: c.Time},
		{Agent: c.Agent2, Pos: c.Pos, Time: c.Time},
	}
}

func horizon(trajs []*Trajectory) int {
	h := 0
	for _, tr := range trajs {
		if n := len(tr.Occupied); n > h {
			h = n
		}
	}
	return h
}

func intersect(a, b []core.Position) (core.Position, bool) {
	for _, p := range a {
		for _, q := range b {
			if p == q {
				return p, true
			}
		}
	}
	return core.Position{}, false
}

// conflictsAt lists the conflicts between trajectories i and j at time t:
// the position conflict first, then i following j, then j following i.
func conflictsAt(trajs []*Trajectory, i, j, t int, all bool) []*Conflict {
	a, b := trajs[i], trajs[j]
	var out []*Conflict
	if p, ok := intersect(a.At(t), b.At(t)); ok {
		out = append(out, &Conflict{Kind: PositionConflict, Agent1: a.Agent.Number, Agent2: b.Agent.Number, Pos: p, Time: t})
		if !all {
			return out
		}
	}
	if p, ok := intersect(a.At(t), b.At(t-1)); ok {
		out = append(out, &Conflict{Kind: FollowConflict, Agent1: a.Agent.Number, Agent2: b.Agent.Number, Pos: p, Time: t})
		if !all {
			return out
		}
	}
	if p, ok := intersect(b.At(t), a.At(t-1)); ok {
		out = append(out, &Conflict{Kind: FollowConflict, Agent1: b.Agent.Number, Agent2: a.Agent.Number, Pos: p, Time: t})
	}
	return out
}

// FindFirstConflict returns the earliest conflict in (time, agent pair)
// order, or nil. Shorter trajectories are padded by holding their final
// placement.
func FindFirstConflict(trajs []*Trajectory) *Conflict {
	h := horizon(trajs)
	for t := 1; t < h; t++ {
		for i := 0; i < len(trajs); i++ {
			for j := i + 1; j < len(trajs); j++ {
				if cs := conflictsAt(trajs, i, j, t, false); len(cs) > 0 {
					return cs[0]
				}
			}
		}
	}
	return nil
}

// FindAllConflicts detects all conflicts in the trajectories, in the order
// FindFirstConflict would report them.
func FindAllConflicts(trajs []*Trajectory) []*Conflict {
	var conflicts []*Conflict
	h := horizon(trajs)
	for t := 1; t < h; t++ {
		for i := 0; i < len(trajs); i++ {
			for j := i + 1; j < len(trajs); j++ {
				conflicts = append(conflicts, conflictsAt(trajs, i, j, t, true)...)
			}
		}
	}
	return conflicts
}
