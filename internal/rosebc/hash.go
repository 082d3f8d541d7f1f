package rosebc

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// structuralBytes packs every non-target field of ins into a canonical
// byte sequence for hashing: opcode, scalars in declaration order, masks,
// sparse-iterator metadata and bit-vector content, and jump-table key
// indices (but never the jump-table's targets, nor Targets itself). This
// is the "all non-target payload fields" spec.md §4.1 defines hash()
// over; two instructions differing only in which instructions their
// targets identify pack identical structuralBytes and therefore hash
// identically, exactly as the equivalence relation in §4.5 requires.
//
// CHECK_MASK_32 and the sparse-iterator opcodes bypass the generic
// numU32/numI32/numU64 layout entirely (see Instruction.emit), so their
// scalar fields are packed explicitly below rather than through the
// generic loop -- routing them through the generic counts would mean
// declaring them in opcodeTable, which would also start enforcing
// validateScalars' reserved-sentinel check against fields (neg-mask,
// state index) that were never meant to go through it.
func (ins *Instruction) structuralBytes() []byte {
	info := ins.info()
	buf := make([]byte, 0, 64)
	buf = append(buf, byte(ins.Op))
	for i := 0; i < info.numU32; i++ {
		buf = appendU32(buf, ins.U32[i])
	}
	for i := 0; i < info.numI32; i++ {
		buf = appendU32(buf, uint32(ins.I32[i]))
	}
	for i := 0; i < info.numU64; i++ {
		buf = appendU64(buf, ins.U64[i])
	}
	if info.isMask32 {
		buf = append(buf, ins.Mask[0][:]...)
		buf = append(buf, ins.Mask[1][:]...)
		buf = appendU32(buf, ins.U32[0])         // neg-mask
		buf = appendU32(buf, uint32(ins.I32[0])) // signed offset
	}
	switch info.sparse {
	case sparseBegin:
		buf = appendU32(buf, ins.IterKeyCount)
		buf = append(buf, ins.BitVector...)
		for _, k := range ins.JumpKeys {
			buf = appendU32(buf, k)
		}
	case sparseNext:
		buf = appendU32(buf, ins.U32[0]) // state index
	case sparseAny:
		buf = append(buf, ins.BitVector...)
	}
	return buf
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendU64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

// instrHash is C2's hash(): a structural hash over opcode and all
// non-target payload fields, computed with xxhash (the real third-party
// hash library wired from the example corpus -- see DESIGN.md) rather
// than a hand-rolled checksum.
func instrHash(ins *Instruction) uint64 {
	return xxhash.Sum64(ins.structuralBytes())
}

// hashCombine folds h into acc using the Boost-style mixing function
// spec.md §4.4 names explicitly as the required whole-program folding
// algorithm.
func hashCombine(acc, h uint64) uint64 {
	return acc ^ (h + 0x9e3779b979b7a67a + (acc << 6) + (acc >> 2))
}

// ProgramHash is C6's hash(program): fold over instructions in program
// order, combining each instruction's hash() into a running accumulator.
// Because instrHash excludes targets, two programs that are equivalent
// per Equivalent (same structure, different concrete pointer/handle
// identities for their targets) always produce the same ProgramHash --
// testable property 4, "Equivalence-hash compatibility".
func ProgramHash(p *Program) uint64 {
	var acc uint64
	for _, h := range p.order {
		acc = hashCombine(acc, instrHash(p.arena[h]))
	}
	return acc
}
