package mir

import (
	"errors"
	"fmt"
	"slices"
)

// ValidateModule checks every body in m.
func ValidateModule(m *Module) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, b := range m.Bodies {
		if b == nil {
			continue
		}
		if err := Validate(b); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", b.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Validate checks the structural invariants the checker relies on.
// Returns error if any invariant is violated.
func Validate(b *Body) error {
	if b == nil {
		return nil
	}
	var errs []error

	// 1. Return slot and parameters
	if err := validateSignature(b); err != nil {
		errs = append(errs, err)
	}

	// 2. Scope tree
	if err := validateScopes(b); err != nil {
		errs = append(errs, err)
	}

	// 3. Check all reachable blocks terminated
	if err := validateBlocksTerminated(b); err != nil {
		errs = append(errs, err)
	}

	// 4. Check block targets exist
	if err := validateBlockTargets(b); err != nil {
		errs = append(errs, err)
	}

	// 5. Check local IDs exist in statements and terminators
	if err := validateLocalIDs(b); err != nil {
		errs = append(errs, err)
	}

	// 6. Lifetime names
	if err := validateLifetimes(b); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateSignature(b *Body) error {
	if len(b.Blocks) == 0 {
		return fmt.Errorf("body has no entry block")
	}
	if len(b.Locals) < len(b.Params)+1 {
		return fmt.Errorf("expected return slot and %d parameter locals, got %d locals", len(b.Params), len(b.Locals))
	}
	return nil
}

func validateScopes(b *Body) error {
	if len(b.Scopes) == 0 {
		return fmt.Errorf("missing root scope")
	}
	var errs []error
	for i := 1; i < len(b.Scopes); i++ {
		parent := b.Scopes[i].Parent
		if parent < 0 || int(parent) >= i {
			errs = append(errs, fmt.Errorf("scope %d: parent %d must be an earlier scope", i, parent))
		}
	}
	scopeExists := func(s ScopeID) bool { return s >= 0 && int(s) < len(b.Scopes) }
	for i := range b.Locals {
		if !scopeExists(b.Locals[i].Scope) {
			errs = append(errs, fmt.Errorf("local _%d: scope %d does not exist", i, b.Locals[i].Scope))
		}
		if i <= len(b.Params) && b.Locals[i].Scope != RootScope {
			errs = append(errs, fmt.Errorf("local _%d: return slot and parameters must live in the root scope", i))
		}
	}
	for i := range b.Blocks {
		if !scopeExists(b.Blocks[i].Scope) {
			errs = append(errs, fmt.Errorf("bb%d: scope %d does not exist", i, b.Blocks[i].Scope))
		}
	}
	return errors.Join(errs...)
}

// validateBlocksTerminated checks that every reachable block ends with a terminator.
func validateBlocksTerminated(b *Body) error {
	var errs []error
	reachable := Reachable(b)
	for i := range b.Blocks {
		if reachable[i] && b.Blocks[i].Term.Kind == TermNone {
			errs = append(errs, fmt.Errorf("bb%d: unterminated block", i))
		}
	}
	return errors.Join(errs...)
}

// validateBlockTargets checks that all block target IDs exist and that no
// edge enters the entry block.
func validateBlockTargets(b *Body) error {
	var errs []error
	for i := range b.Blocks {
		if b.Blocks[i].ID != BlockID(i) { //nolint:gosec // G115: bounded by block count
			errs = append(errs, fmt.Errorf("bb%d: block carries id %d", i, b.Blocks[i].ID))
		}
		for _, target := range b.Blocks[i].Term.Targets() {
			switch {
			case target < 0 || int(target) >= len(b.Blocks):
				errs = append(errs, fmt.Errorf("bb%d: target %s does not exist", i, target))
			case target == 0:
				errs = append(errs, fmt.Errorf("bb%d: edge into the entry block", i))
			}
		}
	}
	return errors.Join(errs...)
}

// validateLocalIDs checks that all LocalID references are valid.
func validateLocalIDs(b *Body) error {
	var errs []error

	checkPlace := func(p Place, context string) {
		if p.Local < 0 || int(p.Local) >= len(b.Locals) {
			errs = append(errs, fmt.Errorf("%s: local %s does not exist", context, p.Local))
		}
	}
	checkOperand := func(context string) func(*Operand) {
		return func(op *Operand) {
			if op.Kind != OperandConst {
				checkPlace(op.Place, context)
			}
		}
	}

	for i := range b.Blocks {
		bb := &b.Blocks[i]
		for j := range bb.Stmts {
			st := &bb.Stmts[j]
			ctx := fmt.Sprintf("bb%d[%d]", i, j)
			switch st.Kind {
			case StmtAssign:
				checkPlace(st.Assign.Dst, ctx)
				st.Assign.Src.Operands(checkOperand(ctx))
				if st.Assign.Src.Kind == RValueRef {
					checkPlace(st.Assign.Src.Ref.Place, ctx)
				}
			case StmtDrop:
				checkPlace(st.Drop.Place, ctx)
			}
		}

		ctx := fmt.Sprintf("bb%d terminator", i)
		bb.Term.Operands(checkOperand(ctx))
		if bb.Term.Kind == TermCall {
			checkPlace(bb.Term.Call.Dst, ctx)
		}
	}

	return errors.Join(errs...)
}

// validateLifetimes checks that every lifetime mentioned is declared.
func validateLifetimes(b *Body) error {
	var errs []error
	declared := func(name string) bool {
		return name == "" || name == StaticLifetime || slices.Contains(b.LifetimeParams, name)
	}
	for _, bd := range b.LifetimeBounds {
		if !declared(bd.Longer) || !declared(bd.Shorter) {
			errs = append(errs, fmt.Errorf("bound '%s: '%s names an undeclared lifetime", bd.Longer, bd.Shorter))
		}
	}
	for i := range b.Locals {
		if lt := b.Locals[i].RegionName(); !declared(lt) {
			errs = append(errs, fmt.Errorf("local _%d: lifetime '%s is not declared", i, lt))
		}
	}
	if !declared(b.ReturnType.Lifetime) {
		errs = append(errs, fmt.Errorf("return type lifetime '%s is not declared", b.ReturnType.Lifetime))
	}
	return errors.Join(errs...)
}
