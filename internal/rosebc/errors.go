package rosebc

import "errors"

// Structural errors: programmer bugs in how the IR is built, fatal and
// never retried, matching spec.md §7's "Structural errors" taxonomy.
var (
	ErrDanglingTarget       = errors.New("rosebc: instruction target does not resolve to an instruction in the program")
	ErrNotTerminatedByEnd   = errors.New("rosebc: program is not terminated by an END instruction")
	ErrAlreadyOwned         = errors.New("rosebc: instruction already belongs to another program")
	ErrSelfTarget           = errors.New("rosebc: instruction target must not point at itself")
	ErrSparseIterNotEmitted = errors.New("rosebc: SPARSE_ITER_NEXT refers to a SPARSE_ITER_BEGIN that has not been emitted yet")
)

// Resource errors: fatal, surfaced to the caller, matching spec.md §7's
// "Resource errors" taxonomy.
var (
	ErrBlobOverflow        = errors.New("rosebc: auxiliary blob capacity exhausted")
	ErrLayoutOverflow      = errors.New("rosebc: assembled program exceeds the maximum addressable bytecode size")
	ErrTooManyInstructions = errors.New("rosebc: program exceeds the maximum instruction count")
)

// Arithmetic errors: fatal, detected on emit via range check, matching
// spec.md §7's "Arithmetic errors" taxonomy.
var (
	ErrScalarOutOfRange = errors.New("rosebc: scalar field value out of range for its serialised width")
)

// AssembleError wraps a failure that occurred while assembling a specific
// instruction, the way wazero's arm64 EncodeNode wraps encode errors with
// the originating node's String() (fmt.Errorf("%w: %s", err, n)) so a
// caller can tell which instruction misbehaved without re-deriving it.
type AssembleError struct {
	Handle Handle
	Op     OpCode
	Err    error
}

func (e *AssembleError) Error() string {
	return "rosebc: assembling " + e.Op.String() + " (handle " + e.Handle.String() + "): " + e.Err.Error()
}

func (e *AssembleError) Unwrap() error { return e.Err }
