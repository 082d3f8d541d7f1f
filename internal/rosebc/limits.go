package rosebc

// Tunables for the Rose bytecode IR and assembler. Kept in one file the way
// wazero's internal/buildoptions collects its interpreter tunables, so
// callers (and tests) have one place to look for the constants that drive
// the failure modes described for the assembler.
const (
	// InstrMinAlign is the alignment, in bytes, that every instruction
	// record's offset is rounded up to during layout.
	InstrMinAlign = 8

	// MaxProgramInstructions bounds the number of instructions a single
	// program may contain. It exists so pathological inputs fail fast
	// with a resource error instead of growing the offset map without
	// bound.
	MaxProgramInstructions = 1 << 20

	// MaxBlobSize bounds the auxiliary blob. Blob offsets are encoded as
	// 4-byte fields, so the blob can never legitimately need to exceed
	// the range of a uint32; this constant is set comfortably below that
	// to leave room for other users of the same blob.
	MaxBlobSize = 1 << 30

	// MaxLayoutSize bounds the total assembled program size. Beyond this,
	// 4-byte target offsets could collide with legitimate high offsets
	// and the bytecode would no longer be addressable by the runtime
	// interpreter's offset encoding.
	MaxLayoutSize = 1 << 31

	// BitVectorAlign is the alignment the blob maintains for sparse-
	// iterator bit-vector writes: multibit word access wants the same
	// alignment as an instruction record.
	BitVectorAlign = InstrMinAlign

	// JumpTableAlign is the alignment the blob maintains for sparse-
	// iterator jump-table writes: each entry is a (u32, u32) pair, so the
	// table's base only needs 4-byte alignment.
	JumpTableAlign = 4
)
