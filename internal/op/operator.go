// Package op defines the fixed operator alphabet used as the head tag on
// every expression node in the IR. Every opcode below must have exactly one
// matching entry in the name table in names.go, in the same position.
package op

// Operator is a dense identifier drawn from a closed enumeration. It is the
// sole operator representation inside the IR; names.go is the only place
// that maps an Operator to the string that crosses the serialization
// boundary.
type Operator int

const (
	// Arithmetic
	Plus Operator = iota
	Minus
	Mult
	MultU
	Div
	DivU
	Mod
	ModU
	Neg
	FNeg
	FPlus
	FMinus
	FMult
	FDiv
	FMod
	FPow
	FSqrt
	Abs

	// Bitwise
	BitAnd
	BitOr
	BitXor
	BitNot
	ShiftL
	ShiftR
	ShiftRA
	Rotl
	Rotr
	RotlC
	RotrC

	// Comparison (signed)
	Equal
	NotEqual
	Less
	LessEq
	Greater
	GreaterEq

	// Comparison (unsigned)
	LessUns
	LessEqUns
	GreaterUns
	GreaterEqUns

	// Comparison (float)
	FEqual
	FNotEqual
	FLess
	FLessEq
	FGreater
	FGreaterEq

	// Logical
	LogAnd
	LogOr
	LogNot

	// Memory / register / location
	MemOf
	RegOf
	AddrOf
	RegOfReg
	MemIdx
	GlobalRef
	LocalRef
	ParamRef

	// Conversions / casts
	SignExt
	ZeroExt
	Truncate
	FloatToInt
	IntToFloat
	FloatConvert
	Reinterpret
	Size

	// SSA / flow
	Subscript // RefExp: names a location + defining statement
	Phi
	Implicit

	// Flags
	FlagCall
	FlagDef
	FlagTest
	ZF
	CF
	OF
	SF
	NF
	DF

	// Constants
	IntConst
	FltConst
	StrConst
	FuncConst
	TypeVal

	// Ternary / conditional
	Ternary
	SetCond
	Opex

	// Terminals
	PC
	AFP
	AGP
	Wildcard
	WildIntConst
	WildStrConst
	WildMemOf
	WildRegOf
	WildRegOfReg
	Nil
	TrueConst
	FalseConst

	// High-level call/return shims
	ParamList
	ArgList
	Truncu
	Truncs

	// sentinel — len(name table) must equal this value.
	Count
)
