package rosebc

// Assembled is the result of assembling a Program: the packed bytecode
// buffer, its length, and the offset map used to produce it (exposed
// mainly so tests can verify testable property 6, "Offset encoding",
// directly against the bytes).
type Assembled struct {
	Bytes     []byte
	Length    int
	OffsetMap map[Handle]uint32
}

// Assemble is C5: a two-pass layout-and-emit assembler. Pass 1 assigns
// each instruction a byte offset (layout, below); Pass 2 allocates a
// zero-filled buffer of the computed size and emits each instruction's
// packed record into it, resolving pointer fields into offsets via the
// offset map built in Pass 1, and appending side data to blob. The split
// into two passes (rather than one) exists because forward targets must
// be known before the records that reference them are serialised --
// spec.md §9's explicit rationale, also the reason wazero's amd64
// assembler defers forward relative-jump patching
// (resolveForwardRelativeJumps) until the target's offset is known.
func Assemble(p *Program, blob *Blob) (*Assembled, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	offsetMap, total, err := layout(p)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, total)
	sparseOffsets := make(map[Handle][2]uint32)
	for _, h := range p.order {
		ins := p.arena[h]
		off := int(offsetMap[h])
		dest := buf[off : off+ins.byteLength()]
		if err := ins.emit(h, dest, blob, offsetMap, sparseOffsets); err != nil {
			return nil, &AssembleError{Handle: h, Op: ins.Op, Err: err}
		}
	}

	return &Assembled{Bytes: buf, Length: total, OffsetMap: offsetMap}, nil
}

// layout is Pass 1: it walks p in order, assigning to each instruction an
// offset equal to the running total aligned up to that opcode's
// alignment, and accumulates the total packed size, rounded up to
// InstrMinAlign so the last record (END) is zero-padded too. It performs no
// emission and is also used, without a blob or Pass 2, by Equivalent
// (§4.5's "Compute offset_map_P and offset_map_Q using Pass 1 of the
// assembler (no bytes emitted)").
func layout(p *Program) (map[Handle]uint32, int, error) {
	offsetMap := make(map[Handle]uint32, len(p.order))
	total := 0
	for _, h := range p.order {
		ins := p.arena[h]
		total = alignUp(total, ins.Op.align())
		if total > MaxLayoutSize {
			return nil, 0, ErrLayoutOverflow
		}
		offsetMap[h] = uint32(total)
		total += ins.byteLength()
	}
	total = alignUp(total, InstrMinAlign)
	if total > MaxLayoutSize {
		return nil, 0, ErrLayoutOverflow
	}
	return offsetMap, total, nil
}

func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}
