package rosebc

import "bytes"

// Equivalent is C6's equivalent(P, Q): true iff the two programs emit the
// same bytecode once assembled, implemented per spec.md §4.5 without
// actually assembling (it reuses Pass 1's layout, the same offset_map
// Assemble would produce, and compares structurally instead of emitting
// bytes). This is the canonical dedup key an upstream program cache uses.
func Equivalent(p, q *Program) bool {
	if len(p.order) != len(q.order) {
		return false
	}
	pOff, _, err := layout(p)
	if err != nil {
		return false
	}
	qOff, _, err := layout(q)
	if err != nil {
		return false
	}
	for i := range p.order {
		a := p.arena[p.order[i]]
		b := q.arena[q.order[i]]
		if !instructionEquiv(a, b, pOff, qOff) {
			return false
		}
	}
	return true
}

// instructionEquiv implements C2's equiv(): same opcode, bit-for-bit
// equal non-target fields, and every target field resolving to the same
// offset once each side's own offset map is consulted -- the "non-
// structural equivalence" spec.md §4.1 describes, which is what lets two
// IR instructions with different concrete target handles still compare
// equal.
//
// Per spec.md §9's Open Question resolution, this never inspects
// emission-state fields: Instruction carries none (see DESIGN.md), so
// there is nothing stale to accidentally compare pre- vs post-emission.
func instructionEquiv(a, b *Instruction, aOff, bOff map[Handle]uint32) bool {
	if a.Op != b.Op {
		return false
	}
	if !bytes.Equal(a.structuralBytes(), b.structuralBytes()) {
		return false
	}
	if len(a.Targets) != len(b.Targets) {
		return false
	}
	for i := range a.Targets {
		ao, aok := aOff[a.Targets[i]]
		bo, bok := bOff[b.Targets[i]]
		if !aok || !bok || ao != bo {
			return false
		}
	}
	return true
}
