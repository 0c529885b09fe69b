// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bana implements the BaNa pitch-detection algorithm: harmonic
// ratio analysis over per-frame spectral peaks, confidence-weighted
// distinctive-candidate consolidation, and a Viterbi-style dynamic
// program selecting the lowest-cost fundamental-frequency path across
// frames.
package bana

import "sort"

// OrderedList is a sorted (ascending), insertion-order-stable dynamic
// array of float64, the candidate-frequency container the ratio-analysis
// and distinctive-consolidation stages build and consume.
type OrderedList struct {
	vals []float64
}

// NewOrderedList returns an empty list with room for capacity hints.
func NewOrderedList(capacityHint int) *OrderedList {
	return &OrderedList{vals: make([]float64, 0, capacityHint)}
}

// Len reports the number of elements.
func (l *OrderedList) Len() int { return len(l.vals) }

// Values exposes the backing slice; callers must not retain it across a
// subsequent mutation.
func (l *OrderedList) Values() []float64 { return l.vals }

// BisectLeft returns the insertion index that keeps the list sorted,
// before any existing equal elements.
func (l *OrderedList) BisectLeft(v float64) int {
	return sort.Search(len(l.vals), func(i int) bool { return l.vals[i] >= v })
}

// Insert places v at its sorted position, after any existing equal
// elements (ties keep insertion order).
func (l *OrderedList) Insert(v float64) {
	i := sort.Search(len(l.vals), func(i int) bool { return l.vals[i] > v })
	l.vals = append(l.vals, 0)
	copy(l.vals[i+1:], l.vals[i:])
	l.vals[i] = v
}

// DeleteRange removes elements in [lo, hi).
func (l *OrderedList) DeleteRange(lo, hi int) {
	l.vals = append(l.vals[:lo], l.vals[hi:]...)
}

// bisectLeft is the free-function form used by the fixed 15-entry ratio
// table, which isn't an OrderedList (it never grows).
func bisectLeft(table []float64, v float64) int {
	return sort.Search(len(table), func(i int) bool { return table[i] >= v })
}
