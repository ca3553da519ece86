package search

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/elektrokombinacija/mapf-hospital/internal/core"
)

// cellHash hashes a (tag, position, value) triple. States sum these per
// occupied cell, so the result does not depend on map iteration order.
func cellHash(tag int, p core.Position, value int) uint64 {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(tag))
	binary.LittleEndian.PutUint64(buf[8:], uint64(p.Row))
	binary.LittleEndian.PutUint64(buf[16:], uint64(p.Col))
	binary.LittleEndian.PutUint64(buf[24:], uint64(value))
	return xxhash.Sum64(buf[:])
}

const (
	tagAgent = iota + 1
	tagBox
	tagTime
)

func boxesHash(boxes map[core.Position]*core.Box) uint64 {
	var h uint64
	for p, b := range boxes {
		h += cellHash(tagBox, p, b.ID)
	}
	return h
}

func boxesEqual(a, b map[core.Position]*core.Box) bool {
	if len(a) != len(b) {
		return false
	}
	for p, box := range a {
		if b[p] != box {
			return false
		}
	}
	return true
}

// Set is a hash set of states using their Hash/Equal contract.
type Set[S State[S]] struct {
	buckets map[uint64][]S
	n       int
}

// NewSet creates an empty state set.
func NewSet[S State[S]]() *Set[S] {
	return &Set[S]{buckets: make(map[uint64][]S)}
}

// Add inserts s and reports whether it was absent.
func (st *Set[S]) Add(s S) bool {
	h := s.Hash()
	for _, o := range st.buckets[h] {
		if s.Equal(o) {
			return false
		}
	}
	st.buckets[h] = append(st.buckets[h], s)
	st.n++
	return true
}

// Contains reports whether an equal state is present.
func (st *Set[S]) Contains(s S) bool {
	for _, o := range st.buckets[s.Hash()] {
		if s.Equal(o) {
			return true
		}
	}
	return false
}

// Remove deletes the state equal to s.
func (st *Set[S]) Remove(s S) bool {
	h := s.Hash()
	bucket := st.buckets[h]
	for i, o := range bucket {
		if s.Equal(o) {
			bucket[i] = bucket[len(bucket)-1]
			bucket = bucket[:len(bucket)-1]
			if len(bucket) == 0 {
				delete(st.buckets, h)
			} else {
				st.buckets[h] = bucket
			}
			st.n--
			return true
		}
	}
	return false
}

// Len returns the number of states.
func (st *Set[S]) Len() int { return st.n }
