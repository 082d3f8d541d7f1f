package rosebc

import (
	"fmt"
	"io"
)

// Handle is a stable reference to an instruction owned by a Program. Per
// spec.md §9's design note, this replaces the source's raw-pointer
// instruction identity with an arena index: handles are allocated
// monotonically and never reused, so they survive insertion the way
// wazero's *NodeImpl pointers survive linked-list splicing, without this
// package needing actual pointers or a garbage collector's help keeping
// them valid.
type Handle int32

// NoHandle is the zero value of Handle and never identifies a real
// instruction; Program allocates handles starting at 1.
const NoHandle Handle = 0

func (h Handle) String() string {
	if h == NoHandle {
		return "<none>"
	}
	return fmt.Sprintf("#%d", int32(h))
}

// Program is an owned, ordered sequence of instructions, always terminated
// by a single END instruction (C3). Instructions are stored in an arena
// keyed by Handle; order is tracked separately so that splicing and
// insertion never have to renumber existing handles.
type Program struct {
	arena map[Handle]*Instruction
	order []Handle
}

// lastHandle is a package-level monotonic counter, not a per-Program one:
// AddBlock and InsertBlock transplant a second Program's arena entries
// directly into the destination by their existing Handle values (no
// remapping), so two programs built independently must never allocate
// overlapping handles. A per-Program counter starting at 1 would let any
// two non-trivial programs collide on the same handle once merged.
var lastHandle Handle = NoHandle

// NewProgram constructs an empty program: one containing only END, per
// spec.md §3's "Lifecycle: a program is created empty (containing only
// END)".
func NewProgram() *Program {
	p := &Program{arena: map[Handle]*Instruction{}}
	end := p.alloc(newEnd())
	p.order = []Handle{end}
	return p
}

func (p *Program) alloc(ins *Instruction) Handle {
	lastHandle++
	h := lastHandle
	ins.owner = p
	p.arena[h] = ins
	return h
}

// Size returns the number of instructions in the program, including END.
func (p *Program) Size() int { return len(p.order) }

// Empty reports whether the program contains only its END instruction.
func (p *Program) Empty() bool { return len(p.order) == 1 }

// End returns the handle of the program's terminating END instruction.
func (p *Program) End() Handle { return p.order[len(p.order)-1] }

// At returns the instruction at handle h. It panics if h does not belong
// to this program, the same contract as indexing a slice out of bounds:
// a caller holding a foreign handle is a programmer bug, not a runtime
// condition to recover from.
func (p *Program) At(h Handle) *Instruction {
	ins, ok := p.arena[h]
	if !ok {
		panic(fmt.Sprintf("rosebc: handle %s does not belong to this program", h))
	}
	return ins
}

// Order returns the handles of the program's instructions in sequence.
// The returned slice is owned by the caller; mutating it does not affect
// the program.
func (p *Program) Order() []Handle {
	out := make([]Handle, len(p.order))
	copy(out, p.order)
	return out
}

// indexOf returns the position of h in p.order, or -1.
func (p *Program) indexOf(h Handle) int {
	for i, o := range p.order {
		if o == h {
			return i
		}
	}
	return -1
}

// Insert inserts a single instruction before pos. pos must not be the
// program's END handle's successor (there is none) and, per C3's
// contract, may legitimately equal End() -- inserting before END is how
// callers grow the body of a program. ins must not already belong to a
// program.
func (p *Program) Insert(pos Handle, ins *Instruction) (Handle, error) {
	idx := p.indexOf(pos)
	if idx < 0 {
		return NoHandle, fmt.Errorf("%w: insertion position not found", ErrDanglingTarget)
	}
	if ins.owner != nil {
		return NoHandle, ErrAlreadyOwned
	}
	if len(p.order) >= MaxProgramInstructions {
		return NoHandle, ErrTooManyInstructions
	}
	h := p.alloc(ins)
	p.order = append(p.order, NoHandle)
	copy(p.order[idx+1:], p.order[idx:])
	p.order[idx] = h
	return h, nil
}

// AddBeforeEnd is shorthand for Insert(p.End(), ins), matching C3's
// add_before_end.
func (p *Program) AddBeforeEnd(ins *Instruction) (Handle, error) {
	return p.Insert(p.End(), ins)
}

// InsertBlock splices the contents of block before pos, dropping block's
// own END and rewriting every reference inside block that pointed at
// block's END to point at pos's instruction (the successor: the node at
// the splice point, which now sits right after the spliced block), per
// C3's insert(pos, block) contract. block is consumed: it is left empty
// (containing only its own now-dangling END placeholder is not possible,
// so it is reset to a fresh empty program with a new END), so splicing it
// again adds nothing. block's instructions keep their existing handles when
// transplanted into p.arena -- safe because every handle is drawn from the
// package-level lastHandle counter, so two independently-built programs
// never share a handle value.
func (p *Program) InsertBlock(pos Handle, block *Program) error {
	idx := p.indexOf(pos)
	if idx < 0 {
		return fmt.Errorf("%w: insertion position not found", ErrDanglingTarget)
	}
	blockEnd := block.End()
	body := block.order[:len(block.order)-1]

	for _, h := range body {
		ins := block.arena[h]
		ins.rewriteTarget(blockEnd, pos)
		ins.owner = p
		p.arena[h] = ins
	}
	if len(p.order)+len(body) > MaxProgramInstructions {
		return ErrTooManyInstructions
	}

	newOrder := make([]Handle, 0, len(p.order)+len(body))
	newOrder = append(newOrder, p.order[:idx]...)
	newOrder = append(newOrder, body...)
	newOrder = append(newOrder, p.order[idx:]...)
	p.order = newOrder

	delete(block.arena, blockEnd)
	block.arena = map[Handle]*Instruction{}
	block.order = []Handle{block.alloc(newEnd())}
	return nil
}

// AddBlockBeforeEnd is shorthand for InsertBlock(p.End(), block).
func (p *Program) AddBlockBeforeEnd(block *Program) error {
	return p.InsertBlock(p.End(), block)
}

// AddBlock appends block, replacing the current END: every reference in p
// that pointed at p's old END is rewritten to point at block's first
// instruction, and block's own END becomes p's new terminator. This is
// C3's add_block, distinct from AddBlockBeforeEnd/InsertBlock in that it
// consumes p's END entirely rather than preserving it.
func (p *Program) AddBlock(block *Program) error {
	if len(p.order)+len(block.order) > MaxProgramInstructions {
		return ErrTooManyInstructions
	}
	oldEnd := p.End()
	first := block.order[0]

	// Unlike InsertBlock, block's own END is NOT dropped: it becomes the
	// new terminator, so instructions inside block that target block's
	// END are carried over unchanged (they now correctly terminate the
	// combined program). Only references to p's old END, from
	// instructions that existed before this call, move to block's first
	// instruction.
	p.rewriteAll(oldEnd, first)
	delete(p.arena, oldEnd)
	p.order = p.order[:len(p.order)-1]

	for _, h := range block.order {
		ins := block.arena[h]
		ins.owner = p
		p.arena[h] = ins
	}
	p.order = append(p.order, block.order...)

	block.arena = map[Handle]*Instruction{}
	block.order = nil
	return nil
}

// Replace swaps the instruction at pos for ins, rewriting every reference
// in the program that pointed at the old instruction to point at ins
// instead. pos may be END, in which case ins becomes the new terminator;
// the END invariant then holds only if ins is itself an END-opcode
// instruction, and Validate reports ErrNotTerminatedByEnd otherwise.
func (p *Program) Replace(pos Handle, ins *Instruction) (Handle, error) {
	idx := p.indexOf(pos)
	if idx < 0 {
		return NoHandle, fmt.Errorf("%w: replace position not found", ErrDanglingTarget)
	}
	if ins.owner != nil {
		return NoHandle, ErrAlreadyOwned
	}
	h := p.alloc(ins)
	p.order[idx] = h
	p.rewriteAll(pos, h)
	delete(p.arena, pos)
	return h, nil
}

// rewriteAll sweeps every instruction in the program, rewriting any target
// equal to old to new. Per §4.2's "Target-rewriting discipline", this is
// the only mechanism by which cross-references move.
func (p *Program) rewriteAll(old, new_ Handle) {
	for _, h := range p.order {
		p.arena[h].rewriteTarget(old, new_)
	}
}

// Validate checks the structural invariants testable property 1 and 2
// require: the program ends in END, and every target of every instruction
// resolves to another instruction owned by this program.
func (p *Program) Validate() error {
	if len(p.order) == 0 {
		return ErrNotTerminatedByEnd
	}
	endIns := p.arena[p.order[len(p.order)-1]]
	if endIns == nil || endIns.Op != END {
		return ErrNotTerminatedByEnd
	}
	for _, h := range p.order {
		ins := p.arena[h]
		for _, t := range ins.Targets {
			if _, ok := p.arena[t]; !ok {
				return fmt.Errorf("%w: %s target %s", ErrDanglingTarget, ins.Op, t)
			}
			if t == h {
				return fmt.Errorf("%w: %s", ErrSelfTarget, ins.Op)
			}
		}
	}
	return nil
}

// Disassemble writes a human-readable listing of the program, one line per
// instruction, in program order. This is debug tooling only: it has no
// bearing on Assemble's output and is grounded on wazero NodeImpl.String()
// and chriskillpack-bbcdisasm's per-instruction line format.
func (p *Program) Disassemble(w io.Writer) error {
	for i, h := range p.order {
		ins := p.arena[h]
		if _, err := fmt.Fprintf(w, "%4d  %s  %s\n", i, h, ins.describe(p)); err != nil {
			return err
		}
	}
	return nil
}
