// Package smf accumulates decoded sequence events into per-track buffers and
// serializes them as a format 1 Standard MIDI File.
package smf

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/THE-NUKELEDGE/rseq2mid"
)

// Meta event types used by the converter.
const (
	metaMarker     = 0x06
	metaEndOfTrack = 0x2F
	metaTempo      = 0x51
)

// TrackBuffer accumulates the encoded events of one output track. Delta time
// is not written until the next event arrives, so consecutive delays
// coalesce into a single variable-length quantity.
type TrackBuffer struct {
	// Channel is stamped into every channel message the buffer emits.
	Channel uint8

	data    []byte
	pending uint32
}

// Delay adds ticks to the delta time of the next event.
func (t *TrackBuffer) Delay(ticks uint32) {
	t.pending += ticks
}

// Event appends msg preceded by the accumulated delta time.
func (t *TrackBuffer) Event(msg midi.Message) {
	t.flushDelta()
	t.data = append(t.data, msg...)
}

// Meta appends a meta event of the given type and payload.
func (t *TrackBuffer) Meta(typ byte, payload []byte) {
	t.flushDelta()
	t.data = append(t.data, 0xFF, typ)
	t.data = rseq.AppendVarLen(t.data, uint32(len(payload)))
	t.data = append(t.data, payload...)
}

func (t *TrackBuffer) flushDelta() {
	t.data = rseq.AppendVarLen(t.data, t.pending)
	t.pending = 0
}

func (t *TrackBuffer) NoteOn(key, velocity uint8) {
	t.Event(midi.NoteOn(t.Channel, key, velocity))
}

// NoteOff ends a sounding note. It is encoded as a note-on with velocity
// zero so that running status could compress on/off runs.
func (t *TrackBuffer) NoteOff(key uint8) {
	t.Event(midi.NoteOn(t.Channel, key, 0))
}

func (t *TrackBuffer) Control(controller, value uint8) {
	t.Event(midi.ControlChange(t.Channel, controller, value))
}

func (t *TrackBuffer) Program(program uint8) {
	t.Event(midi.ProgramChange(t.Channel, program))
}

// PitchBend takes the bend as a signed offset from center, -8192..8191.
func (t *TrackBuffer) PitchBend(value int16) {
	t.Event(midi.Pitchbend(t.Channel, value))
}

// Marker writes the string as a marker meta event.
func (t *TrackBuffer) Marker(s string) {
	t.Meta(metaMarker, []byte(s))
}

// Tempo converts beats per minute to microseconds per quarter note and
// writes a tempo meta event. Zero is clamped to one beat per minute.
func (t *TrackBuffer) Tempo(bpm uint16) {
	if bpm == 0 {
		bpm = 1
	}
	usec := 60000000 / uint32(bpm)
	t.Meta(metaTempo, []byte{byte(usec >> 16), byte(usec >> 8), byte(usec)})
}

func (t *TrackBuffer) EndOfTrack() {
	t.Meta(metaEndOfTrack, nil)
}

// Bytes returns the encoded track data. Delay ticks not yet attached to an
// event are not included.
func (t *TrackBuffer) Bytes() []byte {
	return t.data
}

func (t *TrackBuffer) Len() int {
	return len(t.data)
}

// Reset discards all accumulated events and pending delay.
func (t *TrackBuffer) Reset() {
	t.data = t.data[:0]
	t.pending = 0
}
