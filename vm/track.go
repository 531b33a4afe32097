package vm

import (
	"sort"

	"github.com/THE-NUKELEDGE/rseq2mid/debug"
	"github.com/THE-NUKELEDGE/rseq2mid/smf"
)

type (
	// pendingNote is a sounding note and the absolute track tick at which it
	// ends. Note-offs are deferred until a wait advances the clock past the
	// end tick, or until the track ends.
	pendingNote struct {
		key byte
		end uint32
	}

	// Track is the decoding state of one of the sixteen sequence tracks.
	// The track index doubles as the output MIDI channel.
	Track struct {
		index     uint8
		active    bool
		transpose int8
		rpnPrimed bool
		pos       uint32 // read position in the source
		clock     uint32 // ticks since the track started
		ret       uint32 // saved return offset, 0 = none
		notes     []pendingNote
		out       smf.TrackBuffer
	}
)

// Start activates the track at the given absolute source offset, discarding
// any state and output accumulated so far.
func (t *Track) Start(addr uint32) {
	t.active = true
	t.transpose = 0
	t.rpnPrimed = false
	t.pos = addr
	t.clock = 0
	t.ret = 0
	t.notes = t.notes[:0]
	t.out.Reset()
	debug.Logf("track", "trk %02d started at 0x%X", t.index, addr)
}

// Active reports whether the track still has bytecode to decode.
func (t *Track) Active() bool {
	return t.active
}

// Wait advances the track clock by ticks. Pending notes whose end tick falls
// inside the window get their note-off emitted at the end tick, so the
// note-off's delta time includes any wait accumulated before this call.
func (t *Track) Wait(ticks uint32) {
	sort.SliceStable(t.notes, func(i, j int) bool {
		return t.notes[i].end < t.notes[j].end
	})
	target := t.clock + ticks
	for len(t.notes) > 0 && t.notes[0].end <= target {
		n := t.notes[0]
		t.notes = t.notes[1:]
		gap := n.end - t.clock
		t.out.Delay(gap)
		t.out.NoteOff(n.key)
		t.clock += gap
	}
	t.out.Delay(target - t.clock)
	t.clock = target
}

// End flushes every pending note, writes the end-of-track event and
// deactivates the track.
func (t *Track) End() {
	for _, n := range t.notes {
		t.out.NoteOff(n.key)
	}
	t.notes = t.notes[:0]
	t.out.EndOfTrack()
	t.active = false
	debug.Logf("track", "trk %02d ended at 0x%X", t.index, t.pos)
}

func (t *Track) noteOn(key, velocity uint8, duration uint32) {
	t.out.NoteOn(key, velocity)
	t.notes = append(t.notes, pendingNote{key: key, end: t.clock + duration})
}

// nrpn selects a non-registered parameter and writes its value. Any
// parameter-select write consumes the registered-parameter preamble.
func (t *Track) nrpn(msb, lsb, value uint8) {
	t.out.Control(99, lsb)
	t.out.Control(98, msb)
	t.out.Control(6, value)
	t.rpnPrimed = false
}

// bendRange writes the pitch bend range. The registered-parameter preamble
// selecting parameter 0,0 is emitted once and stays primed until some other
// parameter write replaces the selection.
func (t *Track) bendRange(value uint8) {
	if !t.rpnPrimed {
		t.rpnPrimed = true
		t.out.Control(101, 0)
		t.out.Control(100, 0)
	}
	t.out.Control(6, value)
}

// debugControl re-emits an opcode that has no MIDI mapping as a pair of
// generic controllers carrying the opcode and its argument.
func (t *Track) debugControl(opcode, value uint8) {
	t.out.Control(0x70, opcode&0x7F)
	t.out.Control(0x26, value)
}
