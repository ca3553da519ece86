package search

import (
	"fmt"
	"sort"
)

// Frontier is the open set strategy of a graph search.
type Frontier[S State[S]] interface {
	Add(s S)
	Pop() S
	IsEmpty() bool
	Size() int
	Contains(s S) bool
}

// Heuristic scores a state; lower is more promising.
type Heuristic[S any] func(S) int

// Strategy selects a frontier implementation.
type Strategy int

const (
	BreadthFirst Strategy = iota
	BestFirstSearch
)

func (s Strategy) String() string {
	return [...]string{"bfs", "bestfirst"}[s]
}

// ParseStrategy resolves "bfs" or "bestfirst".
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "bfs":
		return BreadthFirst, nil
	case "bestfirst", "best-first", "greedy":
		return BestFirstSearch, nil
	}
	return 0, fmt.Errorf("unknown frontier strategy %q", s)
}

// NewFrontier builds the frontier for a strategy. h is ignored for BFS.
func NewFrontier[S State[S]](st Strategy, h Heuristic[S]) Frontier[S] {
	if st == BestFirstSearch {
		return NewBestFirst[S](h)
	}
	return NewBFS[S]()
}

// fifo is a slice-backed queue that reclaims its head.
type fifo[S any] struct {
	items []S
	head  int
}

func (q *fifo[S]) push(s S) { q.items = append(q.items, s) }

func (q *fifo[S]) pop() S {
	var zero S
	s := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	if q.head > 64 && q.head*2 > len(q.items) {
		n := copy(q.items, q.items[q.head:])
		q.items = q.items[:n]
		q.head = 0
	}
	return s
}

func (q *fifo[S]) len() int { return len(q.items) - q.head }

// BFS is a FIFO frontier with O(1) membership testing.
type BFS[S State[S]] struct {
	queue fifo[S]
	set   *Set[S]
}

// NewBFS creates an empty breadth-first frontier.
func NewBFS[S State[S]]() *BFS[S] {
	return &BFS[S]{set: NewSet[S]()}
}

func (f *BFS[S]) Add(s S) {
	f.queue.push(s)
	f.set.Add(s)
}

func (f *BFS[S]) Pop() S {
	if f.IsEmpty() {
		panic("pop from empty frontier")
	}
	s := f.queue.pop()
	f.set.Remove(s)
	return s
}

func (f *BFS[S]) IsEmpty() bool     { return f.queue.len() == 0 }
func (f *BFS[S]) Size() int         { return f.queue.len() }
func (f *BFS[S]) Contains(s S) bool { return f.set.Contains(s) }

// BestFirst is a bucket priority queue keyed by integer heuristic score.
// Ties are broken by insertion order within a bucket.
type BestFirst[S State[S]] struct {
	score   Heuristic[S]
	buckets map[int]*fifo[S]
	keys    []int // ascending scores with a non-empty bucket
	set     *Set[S]
	size    int
}

// NewBestFirst creates an empty best-first frontier ordered by h.
func NewBestFirst[S State[S]](h Heuristic[S]) *BestFirst[S] {
	return &BestFirst[S]{
		score:   h,
		buckets: make(map[int]*fifo[S]),
		set:     NewSet[S](),
	}
}

func (f *BestFirst[S]) Add(s S) {
	k := f.score(s)
	b, ok := f.buckets[k]
	if !ok {
		b = &fifo[S]{}
		f.buckets[k] = b
		i := sort.SearchInts(f.keys, k)
		f.keys = append(f.keys, 0)
		copy(f.keys[i+1:], f.keys[i:])
		f.keys[i] = k
	}
	b.push(s)
	f.set.Add(s)
	f.size++
}

func (f *BestFirst[S]) Pop() S {
	if f.IsEmpty() {
		panic("pop from empty frontier")
	}
	k := f.keys[0]
	b := f.buckets[k]
	s := b.pop()
	if b.len() == 0 {
		delete(f.buckets, k)
		f.keys = f.keys[1:]
	}
	f.set.Remove(s)
	f.size--
	return s
}

func (f *BestFirst[S]) IsEmpty() bool     { return f.size == 0 }
func (f *BestFirst[S]) Size() int         { return f.size }
func (f *BestFirst[S]) Contains(s S) bool { return f.set.Contains(s) }
