// Package trigger provides a block-relative control edge signal.
//
// A Trigger records the frame offsets within one audio block at which a
// control edge fires. Block processors consume it through ExecuteBlock,
// which slices the block into contiguous segments around the recorded
// edges so state machines can react sample-accurately.
package trigger

import "fmt"

// Trigger holds the edge offsets for the current audio block.
//
// Offsets are kept sorted and unique. The zero value is not usable;
// construct with New. A Trigger is not safe for concurrent use.
type Trigger struct {
	framesPerBlock int
	frames         []int
}

// SegmentFunc processes the half-open frame range [start, end) of a block.
type SegmentFunc func(start, end int)

// New creates a Trigger for blocks of the given frame count.
func New(framesPerBlock int) (*Trigger, error) {
	if framesPerBlock <= 0 {
		return nil, fmt.Errorf("trigger: frames per block must be > 0: %d", framesPerBlock)
	}

	return &Trigger{
		framesPerBlock: framesPerBlock,
		frames:         make([]int, 0, framesPerBlock),
	}, nil
}

// FramesPerBlock returns the block length in frames.
func (t *Trigger) FramesPerBlock() int { return t.framesPerBlock }

// Advance clears all recorded edges, preparing the Trigger for the next
// block. It never allocates.
func (t *Trigger) Advance() {
	t.frames = t.frames[:0]
}

// TriggerFrame records an edge at the given block-relative frame offset.
// The offset is clamped into [0, FramesPerBlock-1]; duplicate offsets
// collapse to one edge. Insertion keeps the offsets sorted and does not
// allocate in steady state.
func (t *Trigger) TriggerFrame(frame int) {
	if frame < 0 {
		frame = 0
	}
	if frame >= t.framesPerBlock {
		frame = t.framesPerBlock - 1
	}

	pos := len(t.frames)
	for i, f := range t.frames {
		if f == frame {
			return
		}
		if f > frame {
			pos = i
			break
		}
	}

	t.frames = append(t.frames, 0)
	copy(t.frames[pos+1:], t.frames[pos:])
	t.frames[pos] = frame
}

// NumTriggered returns the number of edges recorded this block.
func (t *Trigger) NumTriggered() int { return len(t.frames) }

// Frames returns the recorded edge offsets in ascending order. The
// returned slice is owned by the Trigger and is only valid until the
// next Advance or TriggerFrame call.
func (t *Trigger) Frames() []int { return t.frames }

// First returns the earliest edge offset this block and whether any
// edge fired.
func (t *Trigger) First() (int, bool) {
	if len(t.frames) == 0 {
		return 0, false
	}
	return t.frames[0], true
}

// Last returns the latest edge offset this block and whether any edge
// fired.
func (t *Trigger) Last() (int, bool) {
	if len(t.frames) == 0 {
		return 0, false
	}
	return t.frames[len(t.frames)-1], true
}

// ExecuteBlock walks the current block in trigger-delimited segments.
//
// onSegment receives the frame range before the first edge (or the whole
// block when no edge fired this block). onTrigger receives one range per
// edge, from that edge up to the next edge or the end of the block.
// Either callback may be nil, in which case the corresponding segments
// are skipped.
func (t *Trigger) ExecuteBlock(onSegment, onTrigger SegmentFunc) {
	if len(t.frames) == 0 {
		if onSegment != nil {
			onSegment(0, t.framesPerBlock)
		}
		return
	}

	if first := t.frames[0]; first > 0 && onSegment != nil {
		onSegment(0, first)
	}

	if onTrigger == nil {
		return
	}

	for i, start := range t.frames {
		end := t.framesPerBlock
		if i+1 < len(t.frames) {
			end = t.frames[i+1]
		}
		onTrigger(start, end)
	}
}
