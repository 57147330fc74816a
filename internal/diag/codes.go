package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// ownership and borrowing
	BorrowUseAfterMove         Code = 501
	BorrowUseAfterPartialMove  Code = 502
	BorrowDoubleFree           Code = 503
	BorrowUseAfterFree         Code = 504
	BorrowConflict             Code = 505
	BorrowWhileMutablyBorrowed Code = 506
	BorrowMoveWhileBorrowed    Code = 507
	BorrowAfterMove            Code = 508
	BorrowMutOfImmutable       Code = 509
	BorrowAssignWhileBorrowed  Code = 510
	BorrowDanglingReference    Code = 511
	BorrowLifetimeViolation    Code = 512

	// input
	IOInfo           Code = 1000
	IOLoadFileError  Code = 1001
	IODecodeError    Code = 1002
	IOSchemaMismatch Code = 1003
	IOWriteError     Code = 1004

	// malformed MIR
	MirInfo          Code = 2000
	MirInvalidBody   Code = 2001
	MirDuplicateBody Code = 2002
	MirEmptyModule   Code = 2003

	// project configuration
	ProjInfo          Code = 5000
	ProjConfigInvalid Code = 5001
	ProjNoInputs      Code = 5002

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                "Unknown error",
		BorrowUseAfterMove:         "use of moved value",
		BorrowUseAfterPartialMove:  "use of partially moved value",
		BorrowDoubleFree:           "value dropped twice",
		BorrowUseAfterFree:         "use of dropped value",
		BorrowConflict:             "conflicting borrows",
		BorrowWhileMutablyBorrowed: "use while mutably borrowed",
		BorrowMoveWhileBorrowed:    "move out of borrowed value",
		BorrowAfterMove:            "borrow of moved value",
		BorrowMutOfImmutable:       "mutable borrow of immutable local",
		BorrowAssignWhileBorrowed:  "assignment to borrowed value",
		BorrowDanglingReference:    "reference outlives its referent",
		BorrowLifetimeViolation:    "lifetime bound not satisfied",
		IOInfo:                     "I/O information",
		IOLoadFileError:            "I/O load file error",
		IODecodeError:              "Malformed MIR file",
		IOSchemaMismatch:           "MIR file schema mismatch",
		IOWriteError:               "I/O write error",
		MirInfo:                    "MIR information",
		MirInvalidBody:             "Malformed MIR body",
		MirDuplicateBody:           "Duplicate function body",
		MirEmptyModule:             "Module has no bodies",
		ProjInfo:                   "Project information",
		ProjConfigInvalid:          "Invalid project configuration",
		ProjNoInputs:               "No MIR inputs found",
		ObsInfo:                    "Observability information",
		ObsTimings:                 "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic > 0 && ic < 1000:
		return fmt.Sprintf("E%04d", ic)
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("MIR%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
