package rosebc

// Constructors below build Instruction values by opcode with their
// required payload, per §6's "IR interface": "Construct instruction
// values by opcode with required payload." Each gives the generic
// U32/I32/U64/Targets slots meaningful names at the call site; the
// underlying storage and emit/hash/equiv/rewriteTarget machinery is
// opcode-generic (instruction.go).

func NewAnchoredDelay(queue, delay uint32, target Handle) *Instruction {
	return &Instruction{Op: ANCHORED_DELAY, U32: [3]uint32{queue, delay}, Targets: []Handle{target}}
}

func NewCheckLitEarly(minOffset uint32, target Handle) *Instruction {
	return &Instruction{Op: CHECK_LIT_EARLY, U32: [3]uint32{minOffset}, Targets: []Handle{target}}
}

func NewCheckGroups(groups uint64) *Instruction {
	return &Instruction{Op: CHECK_GROUPS, U64: [2]uint64{groups}}
}

func NewCheckOnlyEOD(target Handle) *Instruction {
	return &Instruction{Op: CHECK_ONLY_EOD, Targets: []Handle{target}}
}

func NewCheckBounds(min, max uint32, target Handle) *Instruction {
	return &Instruction{Op: CHECK_BOUNDS, U32: [3]uint32{min, max}, Targets: []Handle{target}}
}

func NewCheckNotHandled(key uint32, target Handle) *Instruction {
	return &Instruction{Op: CHECK_NOT_HANDLED, U32: [3]uint32{key}, Targets: []Handle{target}}
}

func NewCheckLookaround(lookaroundIndex, count uint32, target Handle) *Instruction {
	return &Instruction{Op: CHECK_LOOKAROUND, U32: [3]uint32{lookaroundIndex, count}, Targets: []Handle{target}}
}

func NewCheckMask(andMask, cmpMask uint64, offsetAdjust int32, target Handle) *Instruction {
	return &Instruction{Op: CHECK_MASK, U64: [2]uint64{andMask, cmpMask}, I32: [1]int32{offsetAdjust}, Targets: []Handle{target}}
}

func NewCheckMask32(andMask, cmpMask [32]byte, negMask uint32, offsetAdjust int32, target Handle) *Instruction {
	return &Instruction{Op: CHECK_MASK_32, Mask: [2][32]byte{andMask, cmpMask}, U32: [3]uint32{negMask}, I32: [1]int32{offsetAdjust}, Targets: []Handle{target}}
}

func NewCheckByte(expected byte, offsetAdjust int32, target Handle) *Instruction {
	return &Instruction{Op: CHECK_BYTE, U32: [3]uint32{uint32(expected)}, I32: [1]int32{offsetAdjust}, Targets: []Handle{target}}
}

func NewCheckInfix(queue, lag uint32, target Handle) *Instruction {
	return &Instruction{Op: CHECK_INFIX, U32: [3]uint32{queue, lag}, Targets: []Handle{target}}
}

func NewCheckPrefix(queue, lag uint32, target Handle) *Instruction {
	return &Instruction{Op: CHECK_PREFIX, U32: [3]uint32{queue, lag}, Targets: []Handle{target}}
}

func NewPushDelayed(delay, index uint32) *Instruction {
	return &Instruction{Op: PUSH_DELAYED, U32: [3]uint32{delay, index}}
}

func NewRecordAnchored(id uint32) *Instruction {
	return &Instruction{Op: RECORD_ANCHORED, U32: [3]uint32{id}}
}

func NewCatchUp() *Instruction { return &Instruction{Op: CATCH_UP} }

func NewCatchUpMpv(queue uint32) *Instruction {
	return &Instruction{Op: CATCH_UP_MPV, U32: [3]uint32{queue}}
}

func NewSomAdjust(distance uint32) *Instruction {
	return &Instruction{Op: SOM_ADJUST, U32: [3]uint32{distance}}
}

func NewSomLeftfix(queue, lag uint32) *Instruction {
	return &Instruction{Op: SOM_LEFTFIX, U32: [3]uint32{queue, lag}}
}

func NewSomFromReport(reportID uint32) *Instruction {
	return &Instruction{Op: SOM_FROM_REPORT, U32: [3]uint32{reportID}}
}

func NewSomZero() *Instruction { return &Instruction{Op: SOM_ZERO} }

func NewTriggerInfix(queue, event uint32, cancel bool) *Instruction {
	c := uint32(0)
	if cancel {
		c = 1
	}
	return &Instruction{Op: TRIGGER_INFIX, U32: [3]uint32{queue, event, c}}
}

func NewTriggerSuffix(queue, event uint32) *Instruction {
	return &Instruction{Op: TRIGGER_SUFFIX, U32: [3]uint32{queue, event}}
}

func NewDedupe(dkey uint32, offsetAdjust int32, target Handle) *Instruction {
	return &Instruction{Op: DEDUPE, U32: [3]uint32{dkey}, I32: [1]int32{offsetAdjust}, Targets: []Handle{target}}
}

func NewDedupeSom(dkey uint32, offsetAdjust int32, target Handle) *Instruction {
	return &Instruction{Op: DEDUPE_SOM, U32: [3]uint32{dkey}, I32: [1]int32{offsetAdjust}, Targets: []Handle{target}}
}

func NewReportChain(reportID, topSquashDistance uint32) *Instruction {
	return &Instruction{Op: REPORT_CHAIN, U32: [3]uint32{reportID, topSquashDistance}}
}

func NewReportSomInt(reportID uint32, offsetAdjust int32) *Instruction {
	return &Instruction{Op: REPORT_SOM_INT, U32: [3]uint32{reportID}, I32: [1]int32{offsetAdjust}}
}

func NewReportSomAware(reportID uint32, offsetAdjust int32) *Instruction {
	return &Instruction{Op: REPORT_SOM_AWARE, U32: [3]uint32{reportID}, I32: [1]int32{offsetAdjust}}
}

func NewReport(onmatch uint32, offsetAdjust int32) *Instruction {
	return &Instruction{Op: REPORT, U32: [3]uint32{onmatch}, I32: [1]int32{offsetAdjust}}
}

func NewReportExhaust(onmatch uint32, offsetAdjust int32, ekey uint32) *Instruction {
	return &Instruction{Op: REPORT_EXHAUST, U32: [3]uint32{onmatch, ekey}, I32: [1]int32{offsetAdjust}}
}

func NewReportSom(onmatch uint32, offsetAdjust int32) *Instruction {
	return &Instruction{Op: REPORT_SOM, U32: [3]uint32{onmatch}, I32: [1]int32{offsetAdjust}}
}

func NewReportSomExhaust(onmatch uint32, offsetAdjust int32, ekey uint32) *Instruction {
	return &Instruction{Op: REPORT_SOM_EXHAUST, U32: [3]uint32{onmatch, ekey}, I32: [1]int32{offsetAdjust}}
}

func NewDedupeAndReport(dkey, onmatch uint32, offsetAdjust int32, target Handle) *Instruction {
	return &Instruction{Op: DEDUPE_AND_REPORT, U32: [3]uint32{dkey, onmatch}, I32: [1]int32{offsetAdjust}, Targets: []Handle{target}}
}

func NewFinalReport(onmatch uint32, offsetAdjust int32) *Instruction {
	return &Instruction{Op: FINAL_REPORT, U32: [3]uint32{onmatch}, I32: [1]int32{offsetAdjust}}
}

func NewCheckExhausted(ekey uint32, target Handle) *Instruction {
	return &Instruction{Op: CHECK_EXHAUSTED, U32: [3]uint32{ekey}, Targets: []Handle{target}}
}

func NewCheckMinLength(minLength uint32, endAdj int32, target Handle) *Instruction {
	return &Instruction{Op: CHECK_MIN_LENGTH, U32: [3]uint32{minLength}, I32: [1]int32{endAdj}, Targets: []Handle{target}}
}

func NewSetState(index uint32) *Instruction {
	return &Instruction{Op: SET_STATE, U32: [3]uint32{index}}
}

func NewSetGroups(groups uint64) *Instruction {
	return &Instruction{Op: SET_GROUPS, U64: [2]uint64{groups}}
}

func NewSquashGroups(mask uint64) *Instruction {
	return &Instruction{Op: SQUASH_GROUPS, U64: [2]uint64{mask}}
}

func NewCheckState(index uint32, target Handle) *Instruction {
	return &Instruction{Op: CHECK_STATE, U32: [3]uint32{index}, Targets: []Handle{target}}
}

// NewSparseIterBegin constructs a SPARSE_ITER_BEGIN instruction. keys and
// keyTargets must be the same length and keys must be ascending, per
// spec.md §6's jump-table wire format; fallback is taken when no key in
// bitVector is set. Building bitVector from the declared key set is the
// external sparse-iterator collaborator's job (spec.md §1); this
// constructor only stores the bytes it is given.
func NewSparseIterBegin(totalKeys uint32, bitVector []byte, keys []uint32, keyTargets []Handle, fallback Handle) *Instruction {
	targets := make([]Handle, 0, 1+len(keyTargets))
	targets = append(targets, fallback)
	targets = append(targets, keyTargets...)
	return &Instruction{
		Op:           SPARSE_ITER_BEGIN,
		IterKeyCount: totalKeys,
		BitVector:    bitVector,
		JumpKeys:     append([]uint32(nil), keys...),
		Targets:      targets,
	}
}

// NewSparseIterNext constructs a SPARSE_ITER_NEXT referring back to begin,
// per §4.1's "sparse-iterator sharing" policy: begin must already have
// been emitted by the time this instruction emits (the assembler visits
// instructions in program order, and BEGIN must precede its NEXTs).
func NewSparseIterNext(begin Handle, stateIndex uint32, fallback Handle) *Instruction {
	return &Instruction{Op: SPARSE_ITER_NEXT, U32: [3]uint32{stateIndex}, Targets: []Handle{begin, fallback}}
}

func NewSparseIterAny(bitVector []byte, target Handle) *Instruction {
	return &Instruction{Op: SPARSE_ITER_ANY, BitVector: bitVector, Targets: []Handle{target}}
}

func NewEnginesEOD(tableIndex uint32) *Instruction {
	return &Instruction{Op: ENGINES_EOD, U32: [3]uint32{tableIndex}}
}

func NewSuffixesEOD(tableIndex uint32) *Instruction {
	return &Instruction{Op: SUFFIXES_EOD, U32: [3]uint32{tableIndex}}
}

func NewMatcherEOD() *Instruction { return &Instruction{Op: MATCHER_EOD} }
