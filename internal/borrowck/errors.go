package borrowck

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"mirck/internal/diag"
	"mirck/internal/mir"
)

// ErrorKind classifies a violation.
type ErrorKind uint8

const (
	UseAfterMove ErrorKind = iota + 1
	UseAfterPartialMove
	DoubleFree
	UseAfterFree
	// BorrowConflict is also known as a mutable borrow conflict; the
	// ExistingIsMut/NewIsMut pair says which side was mutable.
	BorrowConflict
	BorrowWhileMutablyBorrowed
	MoveWhileBorrowed
	BorrowAfterMove
	MutBorrowOfImmutable
	AssignWhileBorrowed
	DanglingReference
	LifetimeViolation
)

var kindNames = [...]string{
	UseAfterMove:               "UseAfterMove",
	UseAfterPartialMove:        "UseAfterPartialMove",
	DoubleFree:                 "DoubleFree",
	UseAfterFree:               "UseAfterFree",
	BorrowConflict:             "BorrowConflict",
	BorrowWhileMutablyBorrowed: "BorrowWhileMutablyBorrowed",
	MoveWhileBorrowed:          "MoveWhileBorrowed",
	BorrowAfterMove:            "BorrowAfterMove",
	MutBorrowOfImmutable:       "MutBorrowOfImmutable",
	AssignWhileBorrowed:        "AssignWhileBorrowed",
	DanglingReference:          "DanglingReference",
	LifetimeViolation:          "LifetimeViolation",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
}

// Code maps the kind onto its stable diagnostic code.
func (k ErrorKind) Code() diag.Code {
	switch k {
	case UseAfterMove:
		return diag.BorrowUseAfterMove
	case UseAfterPartialMove:
		return diag.BorrowUseAfterPartialMove
	case DoubleFree:
		return diag.BorrowDoubleFree
	case UseAfterFree:
		return diag.BorrowUseAfterFree
	case BorrowConflict:
		return diag.BorrowConflict
	case BorrowWhileMutablyBorrowed:
		return diag.BorrowWhileMutablyBorrowed
	case MoveWhileBorrowed:
		return diag.BorrowMoveWhileBorrowed
	case BorrowAfterMove:
		return diag.BorrowAfterMove
	case MutBorrowOfImmutable:
		return diag.BorrowMutOfImmutable
	case AssignWhileBorrowed:
		return diag.BorrowAssignWhileBorrowed
	case DanglingReference:
		return diag.BorrowDanglingReference
	case LifetimeViolation:
		return diag.BorrowLifetimeViolation
	}
	return diag.UnknownCode
}

// isBorrowRelated reports whether the error involves an active borrow whose
// later use is worth pointing at.
func (k ErrorKind) isBorrowRelated() bool {
	switch k {
	case BorrowConflict, BorrowWhileMutablyBorrowed, MoveWhileBorrowed, AssignWhileBorrowed:
		return true
	}
	return false
}

// BorrowError is one violation found in a body.
//
// Local is the local the violation is about. Other is the second local
// involved, when there is one: the borrower for borrow errors, the
// destination of a move, or the dying source of a dangling reference.
// At is where the violation happens; Prior, when HasPrior is set, is the
// earlier location it conflicts with.
type BorrowError struct {
	Kind  ErrorKind
	Func  string
	Local mir.LocalID
	Other mir.LocalID

	At       mir.Location
	Prior    mir.Location
	HasPrior bool

	// Field is the moved field path for UseAfterPartialMove.
	Field []int

	ExistingIsMut bool
	NewIsMut      bool

	// Shorter and Longer name the regions of a LifetimeViolation: a value
	// living for Shorter was required to live for Longer.
	Shorter string
	Longer  string

	LaterUse    mir.Location
	HasLaterUse bool
}

// Site is one labelled location of an error.
type Site struct {
	Role string
	At   mir.Location
}

func fieldPath(local mir.LocalID, path []int) string {
	var sb strings.Builder
	sb.WriteString(local.String())
	for _, f := range path {
		sb.WriteString("." + strconv.Itoa(f))
	}
	return sb.String()
}

func borrowWord(mut bool) string {
	if mut {
		return "mutable"
	}
	return "shared"
}

func regionName(name string) string {
	if name == "" {
		return "'_"
	}
	if strings.HasPrefix(name, "'") {
		return name
	}
	return "'" + name
}

// Summary is the one-line description of the error.
func (e BorrowError) Summary() string {
	switch e.Kind {
	case UseAfterMove:
		return fmt.Sprintf("use of moved value `%s`", e.Local)
	case UseAfterPartialMove:
		return fmt.Sprintf("use of partially moved value `%s` (`%s` was moved)", e.Local, fieldPath(e.Local, e.Field))
	case DoubleFree:
		return fmt.Sprintf("value `%s` dropped twice", e.Local)
	case UseAfterFree:
		return fmt.Sprintf("use of dropped value `%s`", e.Local)
	case BorrowConflict:
		return fmt.Sprintf("cannot borrow `%s` as %s because it is already borrowed as %s",
			e.Local, borrowWord(e.NewIsMut), borrowWord(e.ExistingIsMut))
	case BorrowWhileMutablyBorrowed:
		return fmt.Sprintf("cannot use `%s` because it is mutably borrowed by `%s`", e.Local, e.Other)
	case MoveWhileBorrowed:
		return fmt.Sprintf("cannot move out of `%s` because it is borrowed by `%s`", e.Local, e.Other)
	case BorrowAfterMove:
		return fmt.Sprintf("borrow of moved value `%s`", e.Local)
	case MutBorrowOfImmutable:
		return fmt.Sprintf("cannot borrow `%s` as mutable, as it is not declared as mutable", e.Local)
	case AssignWhileBorrowed:
		return fmt.Sprintf("cannot assign to `%s` because it is borrowed by `%s`", e.Local, e.Other)
	case DanglingReference:
		return fmt.Sprintf("`%s` does not live long enough: `%s` still refers to it", e.Other, e.Local)
	case LifetimeViolation:
		return fmt.Sprintf("lifetime %s may not live long enough for `%s`: %s must outlive %s",
			regionName(e.Shorter), e.Local, regionName(e.Shorter), regionName(e.Longer))
	}
	return "unknown borrow error"
}

// Sites lists the locations of the error in the order they should be shown.
func (e BorrowError) Sites() []Site {
	prior := func(role string) []Site {
		if !e.HasPrior {
			return nil
		}
		return []Site{{Role: role, At: e.Prior}}
	}
	var sites []Site
	switch e.Kind {
	case UseAfterMove:
		sites = append(prior("moved"), Site{Role: "used", At: e.At})
	case UseAfterPartialMove:
		sites = append(prior("partially moved"), Site{Role: "used", At: e.At})
	case DoubleFree:
		sites = append(prior("first dropped"), Site{Role: "dropped again", At: e.At})
	case UseAfterFree:
		sites = append(prior("dropped"), Site{Role: "used", At: e.At})
	case BorrowConflict:
		sites = append(prior("first borrowed"), Site{Role: "borrowed again", At: e.At})
	case BorrowWhileMutablyBorrowed:
		sites = append(prior("mutably borrowed"), Site{Role: "used", At: e.At})
	case MoveWhileBorrowed:
		sites = append(prior("borrowed"), Site{Role: "moved", At: e.At})
	case BorrowAfterMove:
		sites = append(prior("moved"), Site{Role: "borrowed", At: e.At})
	case MutBorrowOfImmutable:
		sites = []Site{{Role: "borrowed mutably", At: e.At}}
	case AssignWhileBorrowed:
		sites = append(prior("borrowed"), Site{Role: "assigned", At: e.At})
	case DanglingReference:
		sites = append(prior("borrowed"), Site{Role: "goes out of scope", At: e.At})
	case LifetimeViolation:
		sites = []Site{{Role: "required to outlive " + regionName(e.Longer), At: e.At}}
	default:
		sites = []Site{{Role: "here", At: e.At}}
	}
	if e.HasLaterUse {
		sites = append(sites, Site{Role: "later used", At: e.LaterUse})
	}
	return sites
}

// Error renders `error[Exxx]: <summary>` followed by one ` --> <role> at
// <location>` line per site.
func (e BorrowError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "error[%s]: %s", e.Kind.Code().ID(), e.Summary())
	for _, s := range e.Sites() {
		fmt.Fprintf(&sb, "\n --> %s at %s", s.Role, s.At)
	}
	return sb.String()
}

// errKey identifies an error for duplicate suppression.
type errKey struct {
	kind    ErrorKind
	local   mir.LocalID
	other   mir.LocalID
	at      mir.Location
	prior   mir.Location
	field   string
	shorter string
	longer  string
}

func (e *BorrowError) key() errKey {
	return errKey{
		kind:    e.Kind,
		local:   e.Local,
		other:   e.Other,
		at:      e.At,
		prior:   e.Prior,
		field:   fieldPath(e.Local, e.Field),
		shorter: e.Shorter,
		longer:  e.Longer,
	}
}

// SortErrors orders errors by location, then kind, then locals.
func SortErrors(errs []BorrowError) {
	slices.SortStableFunc(errs, func(a, b BorrowError) int {
		if c := strings.Compare(a.Func, b.Func); c != 0 {
			return c
		}
		if c := a.At.Compare(b.At); c != 0 {
			return c
		}
		if a.Kind != b.Kind {
			return int(a.Kind) - int(b.Kind)
		}
		if a.Local != b.Local {
			return int(a.Local) - int(b.Local)
		}
		return int(a.Other) - int(b.Other)
	})
}
