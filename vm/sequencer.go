package vm

import (
	"errors"
	"fmt"
	"io"

	"github.com/THE-NUKELEDGE/rseq2mid"
	"github.com/THE-NUKELEDGE/rseq2mid/debug"
	"github.com/THE-NUKELEDGE/rseq2mid/smf"
)

// NumTracks is the number of track slots in a sequence.
const NumTracks = 16

// Sequencer decodes a sequence's track bytecode into per-track event
// buffers. The sixteen tracks share one source reader; each step seeks to
// the track's saved position first and saves the cursor after, so a split
// can start any track (including the issuing one) without disturbing the
// others.
type Sequencer struct {
	src    source
	seq    *rseq.Sequence
	opts   rseq.Options
	tracks [NumTracks]Track
}

func NewSequencer(r io.ReadSeeker, seq *rseq.Sequence, opts rseq.Options) *Sequencer {
	s := &Sequencer{src: source{r: r}, seq: seq, opts: opts}
	for i := range s.tracks {
		s.tracks[i].index = uint8(i)
		s.tracks[i].out.Channel = uint8(i)
	}
	return s
}

// Run starts track 0 at the bytecode base and steps every active track, one
// instruction per track per pass, until no track remains active. Tracks
// activated mid-pass are picked up on the next pass.
func (s *Sequencer) Run() error {
	s.tracks[0].Start(s.seq.DataOffset)
	for {
		busy := false
		for i := range s.tracks {
			t := &s.tracks[i]
			if !t.active {
				continue
			}
			busy = true
			if err := s.step(t); err != nil {
				return fmt.Errorf("track %d at 0x%X: %w", i, t.pos, err)
			}
		}
		if !busy {
			return nil
		}
	}
}

// Tracks returns the per-track output buffers, indexed by track number.
func (s *Sequencer) Tracks() []*smf.TrackBuffer {
	bufs := make([]*smf.TrackBuffer, NumTracks)
	for i := range s.tracks {
		bufs[i] = &s.tracks[i].out
	}
	return bufs
}

// step decodes one instruction of t. Running out of bytes mid-instruction
// ends the track instead of failing the conversion; only real source errors
// propagate.
func (s *Sequencer) step(t *Track) error {
	if err := s.src.seek(t.pos); err != nil {
		return err
	}
	if t.pos >= s.seq.DataOffset {
		if name, ok := s.seq.Label(t.pos - s.seq.DataOffset); ok {
			t.out.Marker(name)
		}
	}
	op, err := s.src.ReadByte()
	if err != nil {
		debug.Logf("track", "trk %02d out of data at 0x%X", t.index, t.pos)
		t.End()
		return nil
	}
	next, err := s.exec(t, op)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			debug.Logf("track", "trk %02d truncated instruction %02X at 0x%X", t.index, op, t.pos)
			t.End()
			return nil
		}
		return err
	}
	t.pos = next
	return nil
}

// exec runs one instruction and returns the position the track resumes at.
// Control-flow cases return their target explicitly; everything else resumes
// right after the instruction's arguments.
func (s *Sequencer) exec(t *Track, op byte) (uint32, error) {
	if op < 0x80 {
		vel, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		dur, err := rseq.ReadVarLen(&s.src)
		if err != nil {
			return 0, err
		}
		t.noteOn(op, vel, dur)
		return s.src.pos()
	}
	switch op {
	case opWait:
		ticks, err := rseq.ReadVarLen(&s.src)
		if err != nil {
			return 0, err
		}
		t.Wait(ticks)
	case opProgram:
		c, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		t.out.Program(c & 0x7F)
		// high bit chains up to two bank select bytes, which are skipped
		if c&0x80 != 0 {
			if c, err = s.src.ReadByte(); err != nil {
				return 0, err
			}
		}
		if c&0x80 != 0 {
			if _, err = s.src.ReadByte(); err != nil {
				return 0, err
			}
		}
	case opSplit:
		target, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		offset, err := s.src.readBE(3)
		if err != nil {
			return 0, err
		}
		addr := s.seq.DataOffset + offset
		if int(target) >= NumTracks {
			debug.Logf("track", "trk %02d: split to invalid track %d", t.index, target)
			break
		}
		s.tracks[target].Start(addr)
		if target == t.index {
			return addr, nil
		}
	case opJump:
		return s.jump(t)
	case opCall:
		offset, err := s.src.readBE(3)
		if err != nil {
			return 0, err
		}
		addr := s.seq.DataOffset + offset
		here, err := s.src.pos()
		if err != nil {
			return 0, err
		}
		t.ret = here
		debug.Logf("track", "trk %02d: call to 0x%X", t.index, addr)
		return addr, nil
	case opReturn:
		if t.ret != 0 {
			addr := t.ret
			t.ret = 0
			return addr, nil
		}
		// no saved return address, fall through to the next instruction
	case opPan:
		v, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		t.out.Control(10, v)
	case opVolume:
		v, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		t.out.Control(7, v)
	case opMasterVol:
		v, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		t.out.Control(0x27, v)
	case opTranspose:
		v, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		t.transpose = int8(v)
		t.nrpn(0x00, 0x02, v)
	case opBend:
		v, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		t.out.PitchBend(int16(int8(v)) * 64)
	case opBendRange:
		v, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		t.bendRange(v)
	case opPriority, opPolyphony, opTie, opPrint,
		opUnknownB0, opUnknownD8, opUnknownD9, opUnknownDA, opUnknownDB:
		v, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		if s.opts.DebugControllers {
			t.debugControl(op, v)
		}
	case opPortaCtrl:
		v, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		t.out.Control(84, v)
	case opModDepth:
		v, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		t.out.Control(1, v)
	case opModSpeed:
		v, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		if s.opts.DebugControllers {
			t.out.Control(0x11, v)
		}
	case opModType:
		v, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		if s.opts.DebugControllers {
			t.out.Control(0x21, v)
		}
	case opModRange:
		v, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		if s.opts.DebugControllers {
			t.out.Control(0x12, v)
		}
	case opPortamento:
		v, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		t.out.Control(65, v)
	case opPortaTime:
		v, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		t.out.Control(5, v)
	case opAttack:
		v, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		if s.opts.DebugControllers {
			t.out.Control(73, v)
		}
	case opDecay:
		v, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		if s.opts.DebugControllers {
			t.nrpn(0x01, 0x64, v)
		}
	case opSustain:
		v, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		if s.opts.DebugControllers {
			t.out.Control(91, v)
		}
	case opRelease:
		v, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		if s.opts.DebugControllers {
			t.out.Control(72, v)
		}
	case opLoopStart:
		t.out.Control(0x6F, 0)
	case opExpression:
		v, err := s.src.ReadByte()
		if err != nil {
			return 0, err
		}
		t.out.Control(11, v)
	case opModDelay:
		v, err := s.src.readBE(2)
		if err != nil {
			return 0, err
		}
		if s.opts.DebugControllers {
			t.out.Control(0x10, uint8(v)&0x7F)
		}
	case opTempo:
		v, err := s.src.readBE(2)
		if err != nil {
			return 0, err
		}
		t.out.Tempo(uint16(v))
	case opSweep:
		if _, err := s.src.readBE(2); err != nil {
			return 0, err
		}
		if s.opts.DebugControllers {
			t.out.Control(0x70, op&0x7F)
		}
	case opLoopEnd:
		t.out.Control(0x6F, 1)
	case opTrackUsage:
		if _, err := s.src.readBE(2); err != nil {
			return 0, err
		}
		if s.opts.DebugControllers {
			t.out.Control(0x70, op&0x7F)
		}
	case opFine:
		t.End()
	default:
		debug.Logf("track", "trk %02d: unknown command %02X at 0x%X", t.index, op, t.pos)
		// only the selector byte is consumed; decoding resumes at the next byte
	}
	return s.src.pos()
}

// jump annotates the jump in the output and resolves it. Forward jumps are
// taken, backward jumps (loop points) end the track, and in ignore mode
// decoding continues past the jump either way.
func (s *Sequencer) jump(t *Track) (uint32, error) {
	offset, err := s.src.readBE(3)
	if err != nil {
		return 0, err
	}
	addr := s.seq.DataOffset + offset
	here, err := s.src.pos()
	if err != nil {
		return 0, err
	}
	forward := addr > here
	dir := "backwards"
	if forward {
		dir = "forwards"
	}
	outcome := "Track End"
	if s.opts.IgnoreJumps {
		outcome = "ignored"
	} else if forward {
		outcome = "taken"
	}
	debug.Logf("track", "trk %02d: jump (%s) to 0x%X", t.index, dir, addr)
	t.out.Marker(fmt.Sprintf("Jump (%s, %s)", dir, outcome))
	if s.opts.IgnoreJumps {
		return here, nil
	}
	if forward {
		return addr, nil
	}
	t.End()
	return here, nil
}
