package evo

import (
	"fmt"
	"math"
	"sort"

	"meiosis/internal/model"
)

// Below this length the index sorter runs insertion sort; above it,
// heapsort. The transform runs once per generation over the whole
// population, so the large-n path matters.
const insertionSortThreshold = 80

// SortAndRevert builds the rank-reversed weight table used for
// fitness-proportional selection: the element holding rank k ascending
// receives the value of rank n-1-k. Summing the result ascending first is
// what keeps the cumulative selection table numerically stable. The input
// is never mutated; ties rank by original index.
func SortAndRevert(weights []float64) ([]float64, error) {
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight %d is not finite", model.ErrInvalidArgument, i)
		}
		if w < 0 {
			return nil, fmt.Errorf("%w: weight %d is negative: %g", model.ErrInvalidArgument, i, w)
		}
	}

	indexes := sortIndexes(weights)
	n := len(weights)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[indexes[n-1-i]] = weights[indexes[i]]
	}
	return out, nil
}

// sortIndexes returns the permutation that sorts weights ascending: element
// indexes[k] holds rank k. Ties keep original index order on both sort
// paths, since comparisons fall through to the index itself.
func sortIndexes(weights []float64) []int {
	indexes := make([]int, len(weights))
	for i := range indexes {
		indexes[i] = i
	}
	if len(weights) < insertionSortThreshold {
		insertionSortIndexes(weights, indexes)
	} else {
		heapSortIndexes(weights, indexes)
	}
	return indexes
}

func indexLess(weights []float64, a, b int) bool {
	if weights[a] != weights[b] {
		return weights[a] < weights[b]
	}
	return a < b
}

func insertionSortIndexes(weights []float64, indexes []int) {
	for i := 1; i < len(indexes); i++ {
		current := indexes[i]
		j := i - 1
		for j >= 0 && indexLess(weights, current, indexes[j]) {
			indexes[j+1] = indexes[j]
			j--
		}
		indexes[j+1] = current
	}
}

func heapSortIndexes(weights []float64, indexes []int) {
	n := len(indexes)
	for i := n/2 - 1; i >= 0; i-- {
		siftDown(weights, indexes, i, n)
	}
	for i := n - 1; i > 0; i-- {
		indexes[0], indexes[i] = indexes[i], indexes[0]
		siftDown(weights, indexes, 0, i)
	}
}

func siftDown(weights []float64, indexes []int, root, end int) {
	for {
		child := 2*root + 1
		if child >= end {
			return
		}
		if child+1 < end && indexLess(weights, indexes[child], indexes[child+1]) {
			child++
		}
		if !indexLess(weights, indexes[root], indexes[child]) {
			return
		}
		indexes[root], indexes[child] = indexes[child], indexes[root]
		root = child
	}
}

// Incremental turns a weight table into its cumulative form, in place over a
// fresh slice: out[i] = sum of weights[0..i]. Feeding it the rank-reversed
// table accumulates the largest weights first in index order but smallest
// first in rank order, which is the point of the transform.
func Incremental(weights []float64) []float64 {
	out := append([]float64(nil), weights...)
	for i := 1; i < len(out); i++ {
		out[i] += out[i-1]
	}
	return out
}

// IndexOf locates the slot of a cumulative table that covers value: the
// smallest i with table[i] > value. This is the O(log n) lookup half of
// roulette-wheel sampling; drawing the values stays with the caller.
func IndexOf(table []float64, value float64) (int, error) {
	if len(table) == 0 {
		return 0, fmt.Errorf("%w: empty selection table", model.ErrInvalidArgument)
	}
	if math.IsNaN(value) || value < 0 || value >= table[len(table)-1] {
		return 0, fmt.Errorf("%w: value %g outside table range [0, %g)", model.ErrInvalidArgument, value, table[len(table)-1])
	}
	return sort.Search(len(table), func(i int) bool { return table[i] > value }), nil
}
