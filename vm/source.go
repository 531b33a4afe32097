package vm

import "io"

// source wraps the shared seekable input. Tracks thread their read position
// explicitly: the sequencer seeks to a track's saved offset before decoding
// a step and saves the cursor afterwards, so tracks never observe each
// other's reads.
type source struct {
	r io.ReadSeeker
}

func (s *source) seek(offset uint32) error {
	_, err := s.r.Seek(int64(offset), io.SeekStart)
	return err
}

func (s *source) pos() (uint32, error) {
	p, err := s.r.Seek(0, io.SeekCurrent)
	return uint32(p), err
}

func (s *source) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(s.r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// readBE reads an n-byte big-endian unsigned integer.
func (s *source) readBE(n int) (uint32, error) {
	var v uint32
	for i := 0; i < n; i++ {
		b, err := s.ReadByte()
		if err != nil {
			return 0, err
		}
		v = v<<8 | uint32(b)
	}
	return v, nil
}
