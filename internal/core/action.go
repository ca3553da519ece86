package core

import "fmt"

// ActionType classifies primitive actions.
type ActionType int

const (
	NoOpType ActionType = iota
	MoveType
	PushType
	PullType
)

func (t ActionType) String() string {
	return [...]string{"NoOp", "Move", "Push", "Pull"}[t]
}

// Action indexes the fixed catalog of primitive actions. The zero value is NoOp.
type Action uint8

// NumActions is the catalog size: NoOp, 4 moves, 12 pushes, 12 pulls.
const NumActions = 29

// NoOp leaves the agent in place.
const NoOp Action = 0

type actionInfo struct {
	typ        ActionType
	agentDir   Direction
	boxDir     Direction // push: box motion; pull: side the box is on
	agentDelta Position
	boxDelta   Position
	name       string
}

var (
	actionTable  = buildActionTable()
	actionByName = buildActionIndex()
)

func buildActionTable() [NumActions]actionInfo {
	var table [NumActions]actionInfo
	table[0] = actionInfo{typ: NoOpType, name: "NoOp"}
	i := 1
	for _, d := range Directions {
		table[i] = actionInfo{
			typ:        MoveType,
			agentDir:   d,
			agentDelta: d.Delta(),
			name:       fmt.Sprintf("Move(%s)", d),
		}
		i++
	}
	for _, a := range Directions {
		for _, b := range Directions {
			if b == a.Opposite() {
				continue
			}
			table[i] = actionInfo{
				typ:        PushType,
				agentDir:   a,
				boxDir:     b,
				agentDelta: a.Delta(),
				boxDelta:   b.Delta(),
				name:       fmt.Sprintf("Push(%s,%s)", a, b),
			}
			i++
		}
	}
	for _, a := range Directions {
		for _, side := range Directions {
			if side == a {
				continue
			}
			table[i] = actionInfo{
				typ:        PullType,
				agentDir:   a,
				boxDir:     side,
				agentDelta: a.Delta(),
				boxDelta:   side.Opposite().Delta(),
				name:       fmt.Sprintf("Pull(%s,%s)", a, side),
			}
			i++
		}
	}
	return table
}

func buildActionIndex() map[string]Action {
	idx := make(map[string]Action, NumActions)
	for i := range actionTable {
		idx[actionTable[i].name] = Action(i)
	}
	return idx
}

// Actions returns the catalog in its fixed order.
func Actions() []Action {
	out := make([]Action, NumActions)
	for i := range out {
		out[i] = Action(i)
	}
	return out
}

// Type returns the action's tag.
func (a Action) Type() ActionType { return actionTable[a].typ }

// AgentDelta is the agent displacement.
func (a Action) AgentDelta() Position { return actionTable[a].agentDelta }

// BoxDelta is the box displacement (zero for NoOp and Move).
func (a Action) BoxDelta() Position { return actionTable[a].boxDelta }

// MovesBox reports whether the action displaces a box.
func (a Action) MovesBox() bool {
	t := a.Type()
	return t == PushType || t == PullType
}

func (a Action) String() string {
	if int(a) >= NumActions {
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
	return actionTable[a].name
}

// Inverse returns the action undoing a's displacement of the agent (and box).
func (a Action) Inverse() Action {
	info := actionTable[a]
	switch info.typ {
	case MoveType:
		return MoveAction(info.agentDir.Opposite())
	case PushType:
		// Agent steps back and drags the box back behind it.
		return PullAction(info.agentDir.Opposite(), info.boxDir)
	case PullType:
		return PushAction(info.agentDir.Opposite(), info.boxDir)
	default:
		return NoOp
	}
}

// MoveAction returns Move(d).
func MoveAction(d Direction) Action {
	return MustParseAction(fmt.Sprintf("Move(%s)", d))
}

// PushAction returns Push(agentDir, boxDir).
func PushAction(agentDir, boxDir Direction) Action {
	return MustParseAction(fmt.Sprintf("Push(%s,%s)", agentDir, boxDir))
}

// PullAction returns Pull(agentDir, boxSide); the box moves into the
// agent's previous cell.
func PullAction(agentDir, boxSide Direction) Action {
	return MustParseAction(fmt.Sprintf("Pull(%s,%s)", agentDir, boxSide))
}

// ParseAction resolves a wire name such as "Push(N,E)".
func ParseAction(s string) (Action, error) {
	a, ok := actionByName[s]
	if !ok {
		return NoOp, fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// MustParseAction is ParseAction that panics on unknown names.
func MustParseAction(s string) Action {
	a, err := ParseAction(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Grid answers the cell queries action legality depends on.
type Grid interface {
	// Free reports whether an agent or box may enter p.
	Free(p Position) bool
	// BoxAt returns the movable box at p, if any.
	BoxAt(p Position) (*Box, bool)
}

// Effect describes where an action sends the agent and its box.
type Effect struct {
	AgentFrom Position
	AgentTo   Position
	Box       *Box
	BoxFrom   Position
	BoxTo     Position
	MovesBox  bool
}

// Clashes reports whether two agents' effects cannot be applied in the same
// joint step: they target a common cell or move the same box.
func (e Effect) Clashes(o Effect) bool {
	if e.MovesBox && o.MovesBox && e.Box == o.Box {
		return true
	}
	for _, p := range e.claims() {
		for _, q := range o.claims() {
			if p == q {
				return true
			}
		}
	}
	return false
}

// claims lists the cells the effect moves something into.
func (e Effect) claims() []Position {
	out := make([]Position, 0, 2)
	if e.AgentTo != e.AgentFrom {
		out = append(out, e.AgentTo)
	}
	if e.MovesBox {
		out = append(out, e.BoxTo)
	}
	return out
}

// Applicable checks a's preconditions for agent standing at pos and returns
// the resulting displacement.
func Applicable(g Grid, agent *Agent, pos Position, a Action) (Effect, bool) {
	info := actionTable[a]
	switch info.typ {
	case NoOpType:
		return Effect{AgentFrom: pos, AgentTo: pos}, true

	case MoveType:
		to := pos.Add(info.agentDelta)
		if !g.Free(to) {
			return Effect{}, false
		}
		return Effect{AgentFrom: pos, AgentTo: to}, true

	case PushType:
		boxFrom := pos.Add(info.agentDelta)
		box, ok := g.BoxAt(boxFrom)
		if !ok || box.Color != agent.Color {
			return Effect{}, false
		}
		boxTo := boxFrom.Add(info.boxDelta)
		if !g.Free(boxTo) {
			return Effect{}, false
		}
		return Effect{AgentFrom: pos, AgentTo: boxFrom, Box: box, BoxFrom: boxFrom, BoxTo: boxTo, MovesBox: true}, true

	case PullType:
		boxFrom := pos.Sub(info.boxDelta)
		box, ok := g.BoxAt(boxFrom)
		if !ok || box.Color != agent.Color {
			return Effect{}, false
		}
		to := pos.Add(info.agentDelta)
		if !g.Free(to) {
			return Effect{}, false
		}
		return Effect{AgentFrom: pos, AgentTo: to, Box: box, BoxFrom: boxFrom, BoxTo: pos, MovesBox: true}, true
	}
	return Effect{}, false
}
