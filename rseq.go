// Package rseq reads RSEQ sequence containers: a small chunked binary format
// holding a 16-track bytecode program plus an optional table of named labels
// attached to bytecode offsets. The vm package interprets the bytecode; this
// package only locates it and parses the surrounding container.
package rseq

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	headerTag = "RSEQ"
	// Byte-order mark plus format version, always big-endian in the file.
	headerMagic = 0xFEFF0100

	dataTag  = "DATA"
	labelTag = "LABL"
)

var (
	ErrInvalidContainer = errors.New("invalid RSEQ container")
	ErrMissingDataChunk = errors.New("container has no DATA chunk")
)

type (
	// Sequence is a parsed container: the absolute offset at which the track
	// bytecode starts and the labels keyed by their bytecode-relative
	// offsets. The bytecode itself is not loaded; the interpreter reads it
	// directly from the source.
	Sequence struct {
		DataOffset uint32
		Labels     map[uint32]string
	}

	containerHeader struct {
		Tag        [4]byte
		Magic      uint32
		Size       uint32
		HeaderSize uint16
		NumChunks  uint16
	}

	chunkHeader struct {
		Tag  [4]byte
		Size uint32
	}
)

// ReadSequence parses an RSEQ container from r, which must be positioned at
// the start of the container. Chunks with unknown tags are skipped by their
// declared size. A container without a DATA chunk is rejected with
// ErrMissingDataChunk.
func ReadSequence(r io.ReadSeeker) (*Sequence, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("finding container start: %w", err)
	}
	var hdr containerHeader
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("reading container header: %w", err)
	}
	if string(hdr.Tag[:]) != headerTag || hdr.Magic != headerMagic {
		return nil, fmt.Errorf("%w: tag %q, magic %#08x", ErrInvalidContainer, hdr.Tag[:], hdr.Magic)
	}
	if _, err := r.Seek(start+int64(hdr.HeaderSize), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking past container header: %w", err)
	}
	seq := &Sequence{Labels: map[uint32]string{}}
	haveData := false
	for i := 0; i < int(hdr.NumChunks); i++ {
		chunkStart, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, fmt.Errorf("finding chunk %d: %w", i, err)
		}
		var ch chunkHeader
		if err := binary.Read(r, binary.BigEndian, &ch); err != nil {
			return nil, fmt.Errorf("reading chunk %d header: %w", i, err)
		}
		switch string(ch.Tag[:]) {
		case dataTag:
			var offset uint32
			if err := binary.Read(r, binary.BigEndian, &offset); err != nil {
				return nil, fmt.Errorf("reading DATA chunk: %w", err)
			}
			seq.DataOffset = uint32(chunkStart) + offset
			haveData = true
		case labelTag:
			if err := readLabels(r, chunkStart+8, seq.Labels); err != nil {
				return nil, fmt.Errorf("reading LABL chunk: %w", err)
			}
		}
		if _, err := r.Seek(chunkStart+int64(ch.Size), io.SeekStart); err != nil {
			return nil, fmt.Errorf("skipping chunk %q: %w", ch.Tag[:], err)
		}
	}
	if !haveData {
		return nil, ErrMissingDataChunk
	}
	return seq, nil
}

// readLabels walks the LABL indirection table. Each table entry is an offset
// relative to base; the record it points at restates the bytecode offset the
// label applies to, followed by the string length and bytes. Records may
// appear in any order.
func readLabels(r io.ReadSeeker, base int64, labels map[uint32]string) error {
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return fmt.Errorf("reading label count: %w", err)
	}
	offsets := make([]uint32, count)
	if err := binary.Read(r, binary.BigEndian, offsets); err != nil {
		return fmt.Errorf("reading label offsets: %w", err)
	}
	for i, off := range offsets {
		if _, err := r.Seek(base+int64(off), io.SeekStart); err != nil {
			return fmt.Errorf("seeking to label %d: %w", i, err)
		}
		var rec struct {
			Target uint32
			Length uint32
		}
		if err := binary.Read(r, binary.BigEndian, &rec); err != nil {
			return fmt.Errorf("reading label %d record: %w", i, err)
		}
		name := make([]byte, rec.Length)
		if _, err := io.ReadFull(r, name); err != nil {
			return fmt.Errorf("reading label %d string: %w", i, err)
		}
		labels[rec.Target] = string(name)
	}
	return nil
}

// Label returns the label attached to the given bytecode-relative offset.
func (s *Sequence) Label(offset uint32) (string, bool) {
	name, ok := s.Labels[offset]
	return name, ok
}
