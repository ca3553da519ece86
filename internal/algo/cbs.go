package algo

import (
	"container/heap"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/elektrokombinacija/mapf-hospital/internal/core"
	"github.com/elektrokombinacija/mapf-hospital/internal/search"
)

const (
	DefaultMaxTime  = 200
	DefaultMaxNodes = 20000
)

// CBS implements Conflict-Based Search over single-agent box planning.
type CBS struct {
	MaxTime  int             // trajectory horizon, 0 = unbounded
	MaxNodes int             // constraint-tree nodes to expand, 0 = unbounded
	Strategy search.Strategy // low-level frontier
	Parallel bool            // replan independent agents concurrently
	Logger   *slog.Logger
	Observer Observer
}

// NewCBS creates a CBS solver.
func NewCBS(maxTime int) *CBS {
	return &CBS{
		MaxTime:  maxTime,
		MaxNodes: DefaultMaxNodes,
		Strategy: search.BestFirstSearch,
	}
}

func (c *CBS) Name() string { return "CBS" }

// cbsNode represents a node in the CBS constraint tree.
type cbsNode struct {
	id          int
	parent      int
	constraints []search.Constraint
	trajs       []*Trajectory // aligned with Level.Agents
	cost        int
	index       int
}

func (n *cbsNode) makespan() int {
	m := 0
	for _, tr := range n.trajs {
		if tr.Len() > m {
			m = tr.Len()
		}
	}
	return m
}

func (n *cbsNode) info() NodeInfo {
	return NodeInfo{
		ID:          n.id,
		ParentID:    n.parent,
		Cost:        n.cost,
		Constraints: len(n.constraints),
		Makespan:    n.makespan(),
	}
}

// cbsHeap orders nodes by cost, then creation order.
type cbsHeap []*cbsNode

func (h cbsHeap) Len() int { return len(h) }
func (h cbsHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return h[i].id < h[j].id
}
func (h cbsHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *cbsHeap) Push(x any) {
	n := x.(*cbsNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *cbsHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// replan is one single-agent search job.
type replan struct {
	agent       int // index into Level.Agents
	constraints []search.Constraint
	added       search.Constraint
	traj        *Trajectory
	stats       search.Stats
	ok          bool
}

// Solve implements the CBS algorithm.
func (c *CBS) Solve(ctx context.Context, p *Problem) *Result {
	start := time.Now()
	res := newResult(c.Name(), p)
	log := c.logger().With("run", res.RunID.String(), "solver", c.Name())
	obs := c.observer()

	// Step 1: plan every agent without constraints
	jobs := make([]*replan, len(p.Level.Agents))
	for i := range jobs {
		jobs[i] = &replan{agent: i}
	}
	if err := c.run(ctx, p, jobs); err != nil {
		log.Info("canceled", "err", err)
		return res.fail(ReasonCanceled, start)
	}
	root := &cbsNode{id: 0, parent: -1, trajs: make([]*Trajectory, len(jobs))}
	for i, j := range jobs {
		res.Stats.Replans++
		res.Stats.Expanded += j.stats.Expanded
		if !j.ok {
			log.Info("agent has no trajectory", "agent", p.Level.Agents[i].Number, "budget", j.stats.BudgetHit)
			return res.fail(ReasonInfeasible, start)
		}
		root.trajs[i] = j.traj
	}
	root.cost = cbsCost(root)

	// Step 2: best-first search over constraint sets
	open := &cbsHeap{}
	heap.Init(open)
	heap.Push(open, root)
	seen := map[string]bool{"": true}
	nextID := 1

	for open.Len() > 0 {
		if err := ctx.Err(); err != nil {
			log.Info("canceled", "nodes", res.Stats.Nodes, "err", err)
			return res.fail(ReasonCanceled, start)
		}
		if c.MaxNodes > 0 && res.Stats.Nodes >= c.MaxNodes {
			log.Info("node budget exhausted", "nodes", res.Stats.Nodes)
			return res.fail(ReasonBudget, start)
		}

		node := heap.Pop(open).(*cbsNode)
		res.Stats.Nodes++
		obs.OnNodeExpanded(node.info())
		log.Debug("expand node", "id", node.id, "cost", node.cost, "constraints", len(node.constraints))

		conflict := FindFirstConflict(node.trajs)
		if conflict == nil {
			c.accept(res, p, node, start)
			log.Info("plan found", "length", res.Plan.Len(), "cost", res.Cost,
				"nodes", res.Stats.Nodes, "elapsed", res.Elapsed)
			obs.OnSolutionFound(res)
			return res
		}
		res.Stats.Conflicts++
		obs.OnConflictDetected(conflict)
		log.Debug("conflict", "node", node.id, "conflict", conflict.String())

		// Merging persistently co-dependent agents into a meta-agent would
		// branch here instead of splitting; not implemented.

		// Step 3: one child per conflicting agent
		var children []*replan
		for _, con := range conflict.Constraints() {
			cs := make([]search.Constraint, 0, len(node.constraints)+1)
			cs = append(cs, node.constraints...)
			cs = append(cs, con)
			search.SortConstraints(cs)
			key := constraintKey(cs)
			if seen[key] {
				obs.OnBranchPruned(con, PruneDuplicate)
				continue
			}
			seen[key] = true
			children = append(children, &replan{agent: p.agentIndex(con.Agent), constraints: cs, added: con})
		}
		if err := c.run(ctx, p, children); err != nil {
			log.Info("canceled", "nodes", res.Stats.Nodes, "err", err)
			return res.fail(ReasonCanceled, start)
		}

		for _, j := range children {
			res.Stats.Replans++
			res.Stats.Expanded += j.stats.Expanded
			if !j.ok {
				obs.OnBranchPruned(j.added, PruneInfeasible)
				continue
			}
			child := &cbsNode{
				id:          nextID,
				parent:      node.id,
				constraints: j.constraints,
				trajs:       append([]*Trajectory(nil), node.trajs...),
			}
			nextID++
			child.trajs[j.agent] = j.traj
			child.cost = cbsCost(child)
			heap.Push(open, child)
			res.Stats.Generated++
			obs.OnConstraintAdded(child.id, j.added)
		}
	}

	log.Info("constraint tree exhausted", "nodes", res.Stats.Nodes)
	return res.fail(ReasonInfeasible, start)
}

// run executes the replans, concurrently when c.Parallel is set. Each job
// owns its result fields so no locking is needed.
func (c *CBS) run(ctx context.Context, p *Problem, jobs []*replan) error {
	plan := func(ctx context.Context, j *replan) {
		prob := p.AgentProblem(j.agent, j.constraints, c.MaxTime)
		j.traj, j.stats, j.ok = PlanSingleAgent(ctx, prob, c.Strategy, 0)
	}
	if !c.Parallel || len(jobs) < 2 {
		for _, j := range jobs {
			if err := ctx.Err(); err != nil {
				return err
			}
			plan(ctx, j)
		}
		// A replan cut short by ctx reports failure, not infeasibility.
		return ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			plan(gctx, j)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (c *CBS) accept(res *Result, p *Problem, node *cbsNode, start time.Time) {
	perAgent := make([][]core.Action, len(node.trajs))
	for i, tr := range node.trajs {
		perAgent[i] = tr.Actions
	}
	res.Solved = true
	res.Plan = core.NewPlan(p.Level.Agents, perAgent)
	res.Trajectories = node.trajs
	res.Cost = node.cost
	res.Elapsed = time.Since(start)
}

func (c *CBS) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func (c *CBS) observer() Observer {
	if c.Observer == nil {
		return NopObserver{}
	}
	return c.Observer
}

// cbsCost is the longest trajectory plus one per constraint.
func cbsCost(n *cbsNode) int {
	return n.makespan() + len(n.constraints)
}

// constraintKey identifies a sorted constraint set.
func constraintKey(cs []search.Constraint) string {
	var sb strings.Builder
	for _, c := range cs {
		fmt.Fprintf(&sb, "%d:%d,%d@%d;", c.Agent, c.Pos.Row, c.Pos.Col, c.Time)
	}
	return sb.String()
}

func (p *Problem) agentIndex(number int) int {
	for i, a := range p.Level.Agents {
		if a.Number == number {
			return i
		}
	}
	panic(fmt.Sprintf("no agent %d in level", number))
}
