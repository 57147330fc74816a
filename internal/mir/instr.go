package mir

// OperandKind distinguishes operand types.
type OperandKind uint8

const (
	// OperandConst represents a constant operand.
	OperandConst OperandKind = iota
	// OperandCopy reads a place without affecting ownership.
	OperandCopy
	// OperandMove transfers ownership out of a place.
	OperandMove
)

// Operand represents a MIR operand.
type Operand struct {
	Kind  OperandKind
	Place Place
	Const Const
}

func Copy(p Place) Operand { return Operand{Kind: OperandCopy, Place: p} }

func Move(p Place) Operand { return Operand{Kind: OperandMove, Place: p} }

func ConstOperand(c Const) Operand { return Operand{Kind: OperandConst, Const: c} }

// ConstKind distinguishes constant kinds.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstBool
	ConstStr
	ConstUnit
	ConstFn
)

// Const represents a MIR constant.
type Const struct {
	Kind ConstKind

	IntValue  int64
	BoolValue bool
	StrValue  string
}

func IntConst(v int64) Const { return Const{Kind: ConstInt, IntValue: v} }

func BoolConst(v bool) Const { return Const{Kind: ConstBool, BoolValue: v} }

func StrConst(v string) Const { return Const{Kind: ConstStr, StrValue: v} }

func UnitConst() Const { return Const{Kind: ConstUnit} }

// FnConst names a function item.
func FnConst(name string) Const { return Const{Kind: ConstFn, StrValue: name} }

type BinOp uint8

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinRem
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinAnd
	BinOr
	BinBitAnd
	BinBitOr
	BinBitXor
	BinShl
	BinShr
)

var binOpNames = [...]string{
	BinAdd: "Add", BinSub: "Sub", BinMul: "Mul", BinDiv: "Div", BinRem: "Rem",
	BinEq: "Eq", BinNe: "Ne", BinLt: "Lt", BinLe: "Le", BinGt: "Gt", BinGe: "Ge",
	BinAnd: "And", BinOr: "Or", BinBitAnd: "BitAnd", BinBitOr: "BitOr",
	BinBitXor: "BitXor", BinShl: "Shl", BinShr: "Shr",
}

func (op BinOp) String() string {
	if int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return "BinOp?"
}

type UnOp uint8

const (
	UnNeg UnOp = iota
	UnNot
)

func (op UnOp) String() string {
	switch op {
	case UnNeg:
		return "Neg"
	case UnNot:
		return "Not"
	}
	return "UnOp?"
}

// RefKind is the flavour of a borrow expression.
type RefKind uint8

const (
	RefShared RefKind = iota
	RefMut
	// RefTwoPhaseMut reserves a mutable borrow that activates on first use.
	RefTwoPhaseMut
)

func (k RefKind) IsMut() bool { return k != RefShared }

type AggregateKind uint8

const (
	AggregateStruct AggregateKind = iota
	AggregateTuple
	AggregateVariant
)

// RValueKind distinguishes right-hand value kinds.
type RValueKind uint8

const (
	RValueUse RValueKind = iota
	RValueBinaryOp
	RValueUnaryOp
	RValueRef
	RValueAggregate
	RValueDiscriminant
	RValueCast
	RValueLen
)

// RValue represents a right-hand value in MIR.
type RValue struct {
	Kind RValueKind

	Use          Operand
	Binary       BinaryOp
	Unary        UnaryOp
	Ref          RefOp
	Aggregate    Aggregate
	Discriminant Place
	Cast         CastOp
	Len          Place
}

type BinaryOp struct {
	Op    BinOp
	Left  Operand
	Right Operand
}

type UnaryOp struct {
	Op      UnOp
	Operand Operand
}

type RefOp struct {
	Kind  RefKind
	Place Place
}

// Aggregate builds a struct, tuple or enum variant from operands.
type Aggregate struct {
	Kind     AggregateKind
	Name     string
	Variant  int
	Operands []Operand
}

type CastOp struct {
	Value  Operand
	Target Type
}

func Use(op Operand) RValue { return RValue{Kind: RValueUse, Use: op} }

func Binary(op BinOp, l, r Operand) RValue {
	return RValue{Kind: RValueBinaryOp, Binary: BinaryOp{Op: op, Left: l, Right: r}}
}

func Unary(op UnOp, v Operand) RValue {
	return RValue{Kind: RValueUnaryOp, Unary: UnaryOp{Op: op, Operand: v}}
}

func RefOf(kind RefKind, p Place) RValue {
	return RValue{Kind: RValueRef, Ref: RefOp{Kind: kind, Place: p}}
}

func StructOf(name string, ops ...Operand) RValue {
	return RValue{Kind: RValueAggregate, Aggregate: Aggregate{Kind: AggregateStruct, Name: name, Operands: ops}}
}

func TupleOf(ops ...Operand) RValue {
	return RValue{Kind: RValueAggregate, Aggregate: Aggregate{Kind: AggregateTuple, Operands: ops}}
}

func DiscriminantOf(p Place) RValue { return RValue{Kind: RValueDiscriminant, Discriminant: p} }

func CastTo(v Operand, target Type) RValue {
	return RValue{Kind: RValueCast, Cast: CastOp{Value: v, Target: target}}
}

func LenOf(p Place) RValue { return RValue{Kind: RValueLen, Len: p} }

// StmtKind enumerates statement kinds in MIR.
type StmtKind uint8

const (
	StmtAssign StmtKind = iota
	StmtDrop
	StmtNop
)

// Statement represents a MIR statement.
type Statement struct {
	Kind StmtKind

	Assign AssignStmt
	Drop   DropStmt
}

type AssignStmt struct {
	Dst Place
	Src RValue
}

type DropStmt struct {
	Place Place
}

// Operands calls fn for every operand the rvalue reads, in evaluation order.
// Place-reading rvalues (discriminant, len) are reported as copies.
func (rv *RValue) Operands(fn func(*Operand)) {
	if rv == nil {
		return
	}
	switch rv.Kind {
	case RValueUse:
		fn(&rv.Use)
	case RValueBinaryOp:
		fn(&rv.Binary.Left)
		fn(&rv.Binary.Right)
	case RValueUnaryOp:
		fn(&rv.Unary.Operand)
	case RValueAggregate:
		for i := range rv.Aggregate.Operands {
			fn(&rv.Aggregate.Operands[i])
		}
	case RValueCast:
		fn(&rv.Cast.Value)
	case RValueDiscriminant:
		op := Copy(rv.Discriminant)
		fn(&op)
	case RValueLen:
		op := Copy(rv.Len)
		fn(&op)
	}
}
