package rseq_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/THE-NUKELEDGE/rseq2mid"
	"github.com/THE-NUKELEDGE/rseq2mid/smf"
	"github.com/THE-NUKELEDGE/rseq2mid/vm"
)

// Decodes a two-track container end to end and checks the exact bytes of the
// resulting MIDI file: track 0 sets the tempo and splits off track 1, which
// plays one labeled note.
func TestConvertTwoTrackSequence(t *testing.T) {
	code := []byte{
		0x88, 0x01, 0x00, 0x00, 0x0B, // split track 1 to offset 11
		0xE1, 0x00, 0x78, // tempo 120
		0x80, 0x60, // wait 96
		0xFF,
		0x3C, 0x64, 0x60, // note C4, velocity 100, duration 96
		0x80, 0x60, // wait 96
		0xFF,
	}
	data := container(dataChunk(code), labelChunk([]label{{target: 11, name: "theme"}}))

	r := bytes.NewReader(data)
	seq, err := rseq.ReadSequence(r)
	if !assert.NoError(t, err) {
		return
	}
	s := vm.NewSequencer(r, seq, rseq.Options{})
	if !assert.NoError(t, s.Run()) {
		return
	}
	var out bytes.Buffer
	if !assert.NoError(t, smf.Write(&out, s.Tracks())) {
		return
	}

	track0 := []byte{
		0x00, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20, // tempo, 500000 us per quarter
		0x60, 0xFF, 0x2F, 0x00, // end of track after 96 ticks
	}
	var track1 []byte
	track1 = append(track1, 0x00, 0xFF, 0x06, 0x05)
	track1 = append(track1, "theme"...)
	track1 = append(track1,
		0x00, 0x91, 0x3C, 0x64, // note on, channel 1
		0x60, 0x91, 0x3C, 0x00, // note off at its end tick
		0x00, 0xFF, 0x2F, 0x00,
	)
	var want []byte
	want = append(want, "MThd"...)
	want = be32(want, 6)
	want = be16(want, 1) // format
	want = be16(want, 2) // tracks
	want = be16(want, smf.Division)
	want = append(want, "MTrk"...)
	want = be32(want, uint32(len(track0)))
	want = append(want, track0...)
	want = append(want, "MTrk"...)
	want = be32(want, uint32(len(track1)))
	want = append(want, track1...)

	assert.Equal(t, want, out.Bytes())
}
