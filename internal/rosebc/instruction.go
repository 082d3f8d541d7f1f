package rosebc

import (
	"encoding/binary"
	"fmt"
)

// Instruction is a tagged variant over OpCode (C2). Rather than one Go
// type per opcode, every instruction is this single concrete struct with a
// handful of generically-named payload slots reused across opcodes --
// grounded directly on wazero's internal/asm/arm64.NodeImpl, which plays
// the identical role for machine instructions (one struct, a tag
// selecting which of SrcReg/DstReg/SrcConst/DstConst apply). Which slots a
// given opcode uses is determined by opcodeTable; emit/hash/equiv all
// dispatch on Op, while rewriteTarget treats every entry of Targets alike.
type Instruction struct {
	Op OpCode

	// U32, I32, U64 are generic scalar fields, used left-to-right in the
	// counts opcodeTable[Op] declares (numU32, numI32, numU64), emitted
	// in that order immediately after the opcode byte for opcodes that
	// use the generic layout. Opcode-specific constructors (constructors.go)
	// give these slots meaningful names at the call site.
	U32 [3]uint32
	I32 [1]int32
	U64 [2]uint64

	// Mask holds the two 32-byte and/compare masks for CHECK_MASK_32,
	// emitted inline per spec.md §6.
	Mask [2][32]byte

	// Targets holds this instruction's non-owning references to other
	// instructions in the same program (C2's "Targets" contract). Most
	// opcodes use at most Targets[0]; SPARSE_ITER_BEGIN additionally uses
	// Targets[1:] for its jump-table destinations (parallel to
	// JumpKeys), and SPARSE_ITER_NEXT uses Targets[0] for its companion
	// SPARSE_ITER_BEGIN and Targets[1] for its fallback.
	Targets []Handle

	// JumpKeys holds the sparse-iterator key indices, parallel to
	// Targets[1:], for SPARSE_ITER_BEGIN. Ordered ascending by key index
	// per spec.md §6's jump-table wire format.
	JumpKeys []uint32

	// IterKeyCount is the declared total key count backing the
	// multibit/sparse-iterator bit-vector for SPARSE_ITER_BEGIN.
	IterKeyCount uint32

	// BitVector is the raw sparse-iterator bit-vector payload. Building
	// this from the declared key set is the external multibit/sparse-
	// iterator collaborator's job (spec.md §1's Out-of-scope list); this
	// package only stores and shares the bytes it's given.
	BitVector []byte

	// comment is a debug-only annotation, populated by WithComment,
	// shown by Disassemble. It is never hashed, compared, or emitted.
	comment string

	owner *Program
}

func newEnd() *Instruction { return &Instruction{Op: END} }

// WithComment attaches a debug annotation to an instruction and returns it,
// for call-site chaining (e.g. NewReport(...).WithComment("onmatch 42")).
// Comments are excluded from hash, equiv, and emit.
func (ins *Instruction) WithComment(c string) *Instruction {
	ins.comment = c
	return ins
}

func (ins *Instruction) info() opcodeInfo { return ins.Op.info() }

// byteLength returns this instruction's packed record length.
func (ins *Instruction) byteLength() int { return ins.Op.byteLength() }

// rewriteTarget replaces every target field equal to old with new_,
// per C2's rewrite_target contract. Instructions with no targets are
// no-ops. SPARSE_ITER_BEGIN rewrites its fallback target and every jump-
// table entry; SPARSE_ITER_NEXT additionally rewrites its companion
// SPARSE_ITER_BEGIN reference. This is the only place any target field is
// ever mutated; Program's mutation operations are the only callers.
func (ins *Instruction) rewriteTarget(old, new_ Handle) {
	for i, t := range ins.Targets {
		if t == old {
			ins.Targets[i] = new_
		}
	}
}

// validateScalars implements §7's "Arithmetic errors": scalar payloads
// must be in-range for their serialised width. Because U32/I32/U64 are
// already native Go widths, a value can only be "out of range" if it
// collides with a reserved sentinel this catalogue relies on: the all-
// ones uint32 is reserved (by convention shared with the external Rose
// graph lowering) to mean "no queue"/"no key", so a real scalar field may
// not legitimately equal it.
func (ins *Instruction) validateScalars() error {
	info := ins.info()
	for i := 0; i < info.numU32; i++ {
		if ins.U32[i] == ^uint32(0) {
			return fmt.Errorf("%w: %s scalar field %d is the reserved sentinel value", ErrScalarOutOfRange, ins.Op, i)
		}
	}
	return nil
}

// describe renders a one-line, human-readable form of the instruction for
// Disassemble, grounded on wazero NodeImpl.String().
func (ins *Instruction) describe(p *Program) string {
	s := ins.Op.String()
	if ins.comment != "" {
		s += " ; " + ins.comment
	}
	for i, t := range ins.Targets {
		s += fmt.Sprintf(" target[%d]=%s", i, t)
	}
	return s
}

// emit writes this instruction's packed record into dest (exactly
// byteLength() bytes), resolving target fields via offsetMap and appending
// side payloads to blob, per C2's emit contract and C5's wire format (§6).
// sparseOffsets records, by handle, the (iterOffset, jumpTableOffset) a
// SPARSE_ITER_BEGIN wrote to the blob, so a later SPARSE_ITER_NEXT can
// reuse them instead of re-emitting (§4.1's sparse-iterator sharing
// policy); the assembler owns and threads this map across Pass 2.
func (ins *Instruction) emit(self Handle, dest []byte, blob *Blob, offsetMap map[Handle]uint32, sparseOffsets map[Handle][2]uint32) error {
	if len(dest) != ins.byteLength() {
		return fmt.Errorf("rosebc: internal error: dest has %d bytes, want %d for %s", len(dest), ins.byteLength(), ins.Op)
	}
	if err := ins.validateScalars(); err != nil {
		return err
	}
	dest[0] = byte(ins.Op)

	switch ins.info().sparse {
	case sparseBegin:
		return ins.emitSparseBegin(self, dest, blob, offsetMap, sparseOffsets)
	case sparseNext:
		return ins.emitSparseNext(dest, blob, offsetMap, sparseOffsets)
	case sparseAny:
		return ins.emitSparseAny(dest, blob, offsetMap)
	}
	if ins.Op == CHECK_MASK_32 {
		return ins.emitMask32(dest, offsetMap)
	}
	if ins.Op == END {
		return nil
	}

	info := ins.info()
	pos := 1
	for i := 0; i < info.numU32; i++ {
		binary.LittleEndian.PutUint32(dest[pos:], ins.U32[i])
		pos += 4
	}
	for i := 0; i < info.numI32; i++ {
		binary.LittleEndian.PutUint32(dest[pos:], uint32(ins.I32[i]))
		pos += 4
	}
	for i := 0; i < info.numU64; i++ {
		binary.LittleEndian.PutUint64(dest[pos:], ins.U64[i])
		pos += 8
	}
	for i := 0; i < info.numTargets; i++ {
		off, err := resolveTarget(ins.Targets[i], offsetMap)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(dest[pos:], off)
		pos += 4
	}
	return nil
}

func resolveTarget(h Handle, offsetMap map[Handle]uint32) (uint32, error) {
	off, ok := offsetMap[h]
	if !ok {
		return 0, fmt.Errorf("%w: handle %s", ErrDanglingTarget, h)
	}
	return off, nil
}

// emitMask32 writes CHECK_MASK_32's record: two inline 32-byte arrays
// (and-mask, compare-mask), a 4-byte neg-mask, a 4-byte signed offset, and
// a 4-byte target offset, per spec.md §6 (bit-exact, special-cased because
// its field order differs from the generic scalars-then-targets layout).
func (ins *Instruction) emitMask32(dest []byte, offsetMap map[Handle]uint32) error {
	pos := 1
	copy(dest[pos:], ins.Mask[0][:])
	pos += 32
	copy(dest[pos:], ins.Mask[1][:])
	pos += 32
	binary.LittleEndian.PutUint32(dest[pos:], ins.U32[0]) // neg-mask
	pos += 4
	binary.LittleEndian.PutUint32(dest[pos:], uint32(ins.I32[0])) // signed offset
	pos += 4
	off, err := resolveTarget(ins.Targets[0], offsetMap)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(dest[pos:], off)
	return nil
}

// emitSparseBegin interns this instruction's bit-vector and jump table in
// blob, records the resulting offsets for a companion SPARSE_ITER_NEXT to
// reuse, and writes: iterKeyCount, iterOffset, jumpTableOffset, fallback
// target, per spec.md §6.
func (ins *Instruction) emitSparseBegin(self Handle, dest []byte, blob *Blob, offsetMap map[Handle]uint32, sparseOffsets map[Handle][2]uint32) error {
	iterOff, err := blob.WriteDeduped(ins.BitVector, BitVectorAlign)
	if err != nil {
		return err
	}
	jtBytes := make([]byte, 8*len(ins.JumpKeys))
	for i, key := range ins.JumpKeys {
		target := ins.Targets[1+i]
		off, err := resolveTarget(target, offsetMap)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(jtBytes[8*i:], key)
		binary.LittleEndian.PutUint32(jtBytes[8*i+4:], off)
	}
	jtOff, err := blob.WriteDeduped(jtBytes, JumpTableAlign)
	if err != nil {
		return err
	}
	sparseOffsets[self] = [2]uint32{iterOff, jtOff}

	pos := 1
	binary.LittleEndian.PutUint32(dest[pos:], ins.IterKeyCount)
	pos += 4
	binary.LittleEndian.PutUint32(dest[pos:], iterOff)
	pos += 4
	binary.LittleEndian.PutUint32(dest[pos:], jtOff)
	pos += 4
	fallback, err := resolveTarget(ins.Targets[0], offsetMap)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(dest[pos:], fallback)
	return nil
}

// emitSparseNext reuses its companion SPARSE_ITER_BEGIN's blob offsets
// (Targets[0]) and writes: state index, iterOffset, jumpTableOffset,
// fallback target.
func (ins *Instruction) emitSparseNext(dest []byte, blob *Blob, offsetMap map[Handle]uint32, sparseOffsets map[Handle][2]uint32) error {
	begin := ins.Targets[0]
	offs, ok := sparseOffsets[begin]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSparseIterNotEmitted, begin)
	}
	pos := 1
	binary.LittleEndian.PutUint32(dest[pos:], ins.U32[0]) // state index
	pos += 4
	binary.LittleEndian.PutUint32(dest[pos:], offs[0])
	pos += 4
	binary.LittleEndian.PutUint32(dest[pos:], offs[1])
	pos += 4
	fallback, err := resolveTarget(ins.Targets[1], offsetMap)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(dest[pos:], fallback)
	return nil
}

// emitSparseAny writes: iterOffset (its own bit-vector, still deduped
// against the blob's content-addressed table), target.
func (ins *Instruction) emitSparseAny(dest []byte, blob *Blob, offsetMap map[Handle]uint32) error {
	iterOff, err := blob.WriteDeduped(ins.BitVector, BitVectorAlign)
	if err != nil {
		return err
	}
	pos := 1
	binary.LittleEndian.PutUint32(dest[pos:], iterOff)
	pos += 4
	target, err := resolveTarget(ins.Targets[0], offsetMap)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(dest[pos:], target)
	return nil
}
