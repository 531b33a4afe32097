package rseq_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/THE-NUKELEDGE/rseq2mid"
)

type label struct {
	target uint32
	name   string
}

func be16(dst []byte, v uint16) []byte {
	return append(dst, byte(v>>8), byte(v))
}

func be32(dst []byte, v uint32) []byte {
	return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func chunk(tag string, payload []byte) []byte {
	buf := []byte(tag)
	buf = be32(buf, uint32(8+len(payload)))
	return append(buf, payload...)
}

func dataChunk(code []byte) []byte {
	payload := be32(nil, 12)
	return chunk("DATA", append(payload, code...))
}

// labelChunk writes the indirection entries in reverse record order, so
// parsing has to follow the offsets instead of assuming ascending layout.
func labelChunk(labels []label) []byte {
	payload := be32(nil, uint32(len(labels)))
	offsets := make([]uint32, len(labels))
	var records []byte
	recStart := uint32(4 + 4*len(labels))
	for i, l := range labels {
		offsets[i] = recStart + uint32(len(records))
		records = be32(records, l.target)
		records = be32(records, uint32(len(l.name)))
		records = append(records, l.name...)
	}
	for i := len(offsets) - 1; i >= 0; i-- {
		payload = be32(payload, offsets[i])
	}
	return chunk("LABL", append(payload, records...))
}

func container(chunks ...[]byte) []byte {
	total := 16
	for _, c := range chunks {
		total += len(c)
	}
	buf := []byte("RSEQ")
	buf = be32(buf, 0xFEFF0100)
	buf = be32(buf, uint32(total))
	buf = be16(buf, 16)
	buf = be16(buf, uint16(len(chunks)))
	for _, c := range chunks {
		buf = append(buf, c...)
	}
	return buf
}

func TestReadSequence(t *testing.T) {
	code := []byte{0x80, 0x60, 0xFF}
	data := container(dataChunk(code), labelChunk([]label{
		{target: 0, name: "intro"},
		{target: 2, name: "end"},
	}))
	seq, err := rseq.ReadSequence(bytes.NewReader(data))
	if assert.NoError(t, err) {
		assert.Equal(t, uint32(28), seq.DataOffset)
		assert.Equal(t, map[uint32]string{0: "intro", 2: "end"}, seq.Labels)
	}
}

func TestReadSequenceLabelLookup(t *testing.T) {
	data := container(dataChunk([]byte{0xFF}), labelChunk([]label{{target: 0, name: "theme"}}))
	seq, err := rseq.ReadSequence(bytes.NewReader(data))
	assert.NoError(t, err)
	name, ok := seq.Label(0)
	assert.True(t, ok)
	assert.Equal(t, "theme", name)
	_, ok = seq.Label(1)
	assert.False(t, ok)
}

func TestReadSequenceBadMagic(t *testing.T) {
	data := container(dataChunk([]byte{0xFF}))
	data[4] = 0xFF
	data[5] = 0xFE
	_, err := rseq.ReadSequence(bytes.NewReader(data))
	assert.ErrorIs(t, err, rseq.ErrInvalidContainer)
}

func TestReadSequenceBadTag(t *testing.T) {
	data := container(dataChunk([]byte{0xFF}))
	copy(data, "RSAR")
	_, err := rseq.ReadSequence(bytes.NewReader(data))
	assert.ErrorIs(t, err, rseq.ErrInvalidContainer)
}

func TestReadSequenceMissingDataChunk(t *testing.T) {
	data := container(labelChunk([]label{{target: 0, name: "lonely"}}))
	_, err := rseq.ReadSequence(bytes.NewReader(data))
	assert.ErrorIs(t, err, rseq.ErrMissingDataChunk)
}

func TestReadSequenceSkipsUnknownChunks(t *testing.T) {
	data := container(
		chunk("INFO", []byte{0xDE, 0xAD, 0xBE, 0xEF}),
		dataChunk([]byte{0xFF}),
	)
	seq, err := rseq.ReadSequence(bytes.NewReader(data))
	if assert.NoError(t, err) {
		// 16 header + 12 INFO chunk + 12 DATA chunk prefix
		assert.Equal(t, uint32(40), seq.DataOffset)
	}
}

func TestReadSequenceTruncatedHeader(t *testing.T) {
	_, err := rseq.ReadSequence(bytes.NewReader([]byte("RSEQ")))
	assert.Error(t, err)
}
