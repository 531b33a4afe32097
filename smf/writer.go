package smf

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Division is the output resolution in ticks per quarter note. Sequence
// bytecode counts time in the same unit, so waits pass through unscaled.
const Division = 96

type (
	fileHeader struct {
		Tag      [4]byte
		Length   uint32
		Format   uint16
		Tracks   uint16
		Division uint16
	}

	trackChunkHeader struct {
		Tag    [4]byte
		Length uint32
	}
)

// Write serializes the non-empty track buffers as a format 1 Standard MIDI
// File. Empty buffers are omitted and do not count toward the track count.
func Write(w io.Writer, tracks []*TrackBuffer) error {
	hdr := fileHeader{
		Tag:      [4]byte{'M', 'T', 'h', 'd'},
		Length:   6,
		Format:   1,
		Division: Division,
	}
	for _, t := range tracks {
		if t.Len() > 0 {
			hdr.Tracks++
		}
	}
	if err := binary.Write(w, binary.BigEndian, hdr); err != nil {
		return fmt.Errorf("writing file header: %w", err)
	}
	for i, t := range tracks {
		if t.Len() == 0 {
			continue
		}
		ch := trackChunkHeader{
			Tag:    [4]byte{'M', 'T', 'r', 'k'},
			Length: uint32(t.Len()),
		}
		if err := binary.Write(w, binary.BigEndian, ch); err != nil {
			return fmt.Errorf("writing track %d chunk header: %w", i, err)
		}
		if _, err := w.Write(t.Bytes()); err != nil {
			return fmt.Errorf("writing track %d data: %w", i, err)
		}
	}
	return nil
}
