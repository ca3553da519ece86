package core

// Unreachable is the distance between disconnected cells. It is small enough
// that summing a few of them cannot overflow.
const Unreachable = 1 << 20

// Distances is the precomputed shortest-path lookup the heuristics consume.
type Distances interface {
	Distance(a, b Position) int
}

// DistanceTable holds all-pairs BFS distances over the wall map. Boxes and
// agents are ignored.
type DistanceTable struct {
	level *Level
	index []int32   // cell -> dense free-cell index, -1 for walls
	dist  [][]int32 // dense index pairs
}

// NewDistanceTable runs one BFS per free cell.
func NewDistanceTable(l *Level) *DistanceTable {
	t := &DistanceTable{
		level: l,
		index: make([]int32, l.Rows*l.Cols),
	}
	for i := range t.index {
		t.index[i] = -1
	}
	cells := l.FreeCells()
	for i, p := range cells {
		t.index[p.Row*l.Cols+p.Col] = int32(i)
	}

	t.dist = make([][]int32, len(cells))
	queue := make([]Position, 0, len(cells))
	for i, src := range cells {
		row := make([]int32, len(cells))
		for j := range row {
			row[j] = -1
		}
		row[i] = 0
		queue = append(queue[:0], src)
		for head := 0; head < len(queue); head++ {
			cur := queue[head]
			d := row[t.cellIndex(cur)]
			for _, nb := range l.Neighbors(cur) {
				ni := t.cellIndex(nb)
				if row[ni] >= 0 {
					continue
				}
				row[ni] = d + 1
				queue = append(queue, nb)
			}
		}
		t.dist[i] = row
	}
	return t
}

func (t *DistanceTable) cellIndex(p Position) int32 {
	if !t.level.InBounds(p) {
		return -1
	}
	return t.index[p.Row*t.level.Cols+p.Col]
}

// Distance returns the shortest path length from a to b, or Unreachable.
func (t *DistanceTable) Distance(a, b Position) int {
	ia, ib := t.cellIndex(a), t.cellIndex(b)
	if ia < 0 || ib < 0 {
		return Unreachable
	}
	d := t.dist[ia][ib]
	if d < 0 {
		return Unreachable
	}
	return int(d)
}

// Reachable reports whether b can be reached from a.
func (t *DistanceTable) Reachable(a, b Position) bool {
	return t.Distance(a, b) < Unreachable
}
