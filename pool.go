// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"github.com/emirpasic/gods/stacks/arraystack"
)

// pool is a growable arena of Result slots. Slots are addressed by index
// and never move, so a Handle stays meaningful for the life of the pool.
// Idle slots wait on a LIFO free list, which hands back the most recently
// used (cache-warm) buffers first.
type pool struct {
	slots []*Result
	free  *arraystack.Stack
}

func newPool() *pool {
	return &pool{free: arraystack.New()}
}

// acquire checks out an idle slot, growing the arena when none is free.
// It never blocks.
func (p *pool) acquire() *Result {
	var r *Result
	if v, ok := p.free.Pop(); ok {
		r = v.(*Result)
	} else {
		r = &Result{index: uint32(len(p.slots))}
		p.slots = append(p.slots, r)
	}
	r.gen++
	if r.gen == 0 {
		r.gen = 1
	}
	r.state = slotAcquired
	r.abandoned = false
	return r
}

// lookup resolves h to its slot, or reports ErrStaleHandle.
func (p *pool) lookup(h Handle) (*Result, error) {
	if int(h.index) >= len(p.slots) {
		return nil, ErrStaleHandle
	}
	r := p.slots[h.index]
	if r.gen != h.gen || r.state == slotIdle {
		return nil, ErrStaleHandle
	}
	return r, nil
}

// release checks a completed slot back in. Its payload is cleared so
// nothing from the previous command is observable after reuse.
func (p *pool) release(r *Result) error {
	switch r.state {
	case slotPending:
		return ErrReleasePending
	case slotIdle:
		return ErrStaleHandle
	}
	r.Value.reset()
	r.state = slotIdle
	r.abandoned = false
	r.gen++
	if r.gen == 0 {
		r.gen = 1
	}
	p.free.Push(r)
	return nil
}

// size returns the number of slots ever allocated.
func (p *pool) size() int { return len(p.slots) }

// idle returns the number of slots on the free list.
func (p *pool) idle() int { return p.free.Size() }
