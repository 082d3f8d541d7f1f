package rosebc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// S1 (minimal program): empty program has size 1, is Empty, and
// assembles to exactly one END record of length InstrMinAlign, zeroed
// except the opcode byte.
func TestS1MinimalProgram(t *testing.T) {
	p := NewProgram()
	require.Equal(t, 1, p.Size())
	require.True(t, p.Empty())

	blob := NewBlob(0)
	asm, err := Assemble(p, blob)
	require.NoError(t, err)
	require.Equal(t, InstrMinAlign, asm.Length)
	require.Equal(t, byte(END), asm.Bytes[0])
	for _, b := range asm.Bytes[1:] {
		require.Zero(t, b)
	}
}

func TestEndInvariantHoldsAcrossMutations(t *testing.T) {
	p := NewProgram()
	_, err := p.AddBeforeEnd(NewReport(1, 0))
	require.NoError(t, err)
	require.NoError(t, p.Validate())
	endIns := p.At(p.End())
	require.Equal(t, END, endIns.Op)

	_, err = p.AddBeforeEnd(NewReport(2, -1))
	require.NoError(t, err)
	require.NoError(t, p.Validate())
	require.Equal(t, END, p.At(p.End()).Op)

	block := NewProgram()
	_, err = block.AddBeforeEnd(NewReport(3, 0))
	require.NoError(t, err)
	require.NoError(t, p.AddBlockBeforeEnd(block))
	require.NoError(t, p.Validate())
	require.Equal(t, END, p.At(p.End()).Op)

	block2 := NewProgram()
	require.NoError(t, p.AddBlock(block2))
	require.NoError(t, p.Validate())
	require.Equal(t, END, p.At(p.End()).Op)
}

func TestTargetClosureAfterMutation(t *testing.T) {
	p := NewProgram()
	h, err := p.AddBeforeEnd(NewCheckOnlyEOD(p.End()))
	require.NoError(t, err)
	require.NoError(t, p.Validate())
	require.Equal(t, p.End(), p.At(h).Targets[0])
}

// S3 (branch to END).
func TestS3BranchToEnd(t *testing.T) {
	p := NewProgram()
	_, err := p.AddBeforeEnd(NewCheckBounds(10, 100, p.End()))
	require.NoError(t, err)
	blob := NewBlob(0)
	asm, err := Assemble(p, blob)
	require.NoError(t, err)
	endOffset := asm.OffsetMap[p.End()]

	// The CHECK_BOUNDS record's target field (bytes 9..13) equals END's
	// offset.
	got := bytesToU32(asm.Bytes[9:13])
	require.Equal(t, endOffset, got)
}

// S4 (splice with END rewrite).
func TestS4SpliceWithEndRewrite(t *testing.T) {
	a := NewProgram()
	_, err := a.AddBeforeEnd(NewReport(1, 0))
	require.NoError(t, err)

	bprog := NewProgram()
	_, err = bprog.AddBeforeEnd(NewReport(2, 0))
	require.NoError(t, err)

	// Capture a reference into A that points at A's current END, the way
	// an external graph would wire a branch to "fall off the end of A".
	checkHandle, err := a.AddBeforeEnd(NewCheckOnlyEOD(a.End()))
	require.NoError(t, err)

	require.NoError(t, a.AddBlock(bprog))
	require.NoError(t, a.Validate())

	order := a.Order()
	require.Len(t, order, 4) // REPORT(1), CHECK_ONLY_EOD, REPORT(2), END
	require.Equal(t, REPORT, a.At(order[0]).Op)
	require.Equal(t, uint32(1), a.At(order[0]).U32[0], "A's own REPORT(1,0) must survive the merge unaliased")
	require.Equal(t, CHECK_ONLY_EOD, a.At(order[1]).Op)
	require.Equal(t, REPORT, a.At(order[2]).Op)
	require.Equal(t, uint32(2), a.At(order[2]).U32[0])
	require.Equal(t, END, a.At(order[3]).Op)

	// Every handle in the merged program is distinct: B's instructions must
	// not have been transplanted under handle values that collide with A's.
	seen := map[Handle]bool{}
	for _, h := range order {
		require.False(t, seen[h], "duplicate handle %s after merge", h)
		seen[h] = true
	}

	// The CHECK_ONLY_EOD's target, which pointed at A's former END,
	// now points at B's REPORT(2,0).
	require.Equal(t, order[2], a.At(checkHandle).Targets[0])

	blob := NewBlob(0)
	asm, err := Assemble(a, blob)
	require.NoError(t, err)
	firstOnmatch := bytesToU32(asm.Bytes[1:5])
	secondOff := asm.OffsetMap[order[2]]
	secondOnmatch := bytesToU32(asm.Bytes[secondOff+1 : secondOff+5])
	require.Equal(t, uint32(1), firstOnmatch)
	require.Equal(t, uint32(2), secondOnmatch)
}

func TestInsertBlockDropsEndAndRewritesToSuccessor(t *testing.T) {
	p := NewProgram()
	tail, err := p.AddBeforeEnd(NewMatcherEOD())
	require.NoError(t, err)

	block := NewProgram()
	inner, err := block.AddBeforeEnd(NewCheckOnlyEOD(block.End()))
	require.NoError(t, err)
	_ = inner

	require.NoError(t, p.InsertBlock(tail, block))
	require.NoError(t, p.Validate())

	order := p.Order()
	require.Len(t, order, 3) // CHECK_ONLY_EOD, MATCHER_EOD, END
	require.Equal(t, CHECK_ONLY_EOD, p.At(order[0]).Op)
	require.Equal(t, tail, p.At(order[0]).Targets[0])
	require.True(t, block.Empty() || block.Size() == 0)
}

func TestReplaceRewritesReferences(t *testing.T) {
	p := NewProgram()
	target, err := p.AddBeforeEnd(NewMatcherEOD())
	require.NoError(t, err)
	branch, err := p.AddBeforeEnd(NewCheckOnlyEOD(target))
	require.NoError(t, err)

	newTarget := NewRecordAnchored(7)
	newHandle, err := p.Replace(target, newTarget)
	require.NoError(t, err)
	require.NoError(t, p.Validate())
	require.Equal(t, newHandle, p.At(branch).Targets[0])
}

func TestInsertRejectsAlreadyOwnedInstruction(t *testing.T) {
	p := NewProgram()
	ins := NewMatcherEOD()
	_, err := p.AddBeforeEnd(ins)
	require.NoError(t, err)
	_, err = p.AddBeforeEnd(ins)
	require.ErrorIs(t, err, ErrAlreadyOwned)
}

func TestValidateCatchesDanglingTarget(t *testing.T) {
	p := NewProgram()
	bogus := Handle(999)
	ins := NewCheckOnlyEOD(bogus)
	ins.owner = nil
	_, err := p.AddBeforeEnd(ins)
	require.NoError(t, err)
	require.ErrorIs(t, p.Validate(), ErrDanglingTarget)
}

func TestDisassembleProducesOneLinePerInstruction(t *testing.T) {
	p := NewProgram()
	_, err := p.AddBeforeEnd(NewReport(42, -1).WithComment("top level match"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, p.Disassemble(&buf))
	out := buf.String()
	require.Contains(t, out, "REPORT")
	require.Contains(t, out, "top level match")
	require.Contains(t, out, "END")
}

func bytesToU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
