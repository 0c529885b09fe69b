// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package peaks

import "sort"

// minHeap is a fixed-capacity min-heap keyed on Peak.Mag, retaining the N
// largest peaks pushed so far.
type minHeap struct {
	cap   int
	items []Peak
}

func newMinHeap(capacity int) *minHeap {
	return &minHeap{cap: capacity, items: make([]Peak, 0, capacity)}
}

func (h *minHeap) len() int { return len(h.items) }

// push inserts p, evicting the current minimum if the heap is already at
// capacity and p is larger than it.
func (h *minHeap) push(p Peak) {
	if len(h.items) < h.cap {
		h.items = append(h.items, p)
		h.bubbleUp(len(h.items) - 1)
		return
	}
	if h.cap == 0 || p.Mag <= h.items[0].Mag {
		return
	}
	h.items[0] = p
	h.bubbleDown(0)
}

func (h *minHeap) bubbleUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[parent].Mag <= h.items[i].Mag {
			break
		}
		h.items[parent], h.items[i] = h.items[i], h.items[parent]
		i = parent
	}
}

func (h *minHeap) bubbleDown(i int) {
	n := len(h.items)
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < n && h.items[left].Mag < h.items[smallest].Mag {
			smallest = left
		}
		if right < n && h.items[right].Mag < h.items[smallest].Mag {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// sorted returns the retained peaks ordered by ascending frequency, the
// order the rest of the pitch pipeline expects (f_1 < ... < f_p).
func (h *minHeap) sorted() []Peak {
	out := append([]Peak(nil), h.items...)
	sort.Slice(out, func(i, j int) bool { return out[i].Freq < out[j].Freq })
	return out
}
