package ir

import (
	"fmt"
	"strconv"

	"decomp/internal/op"
)

func (e *Terminal) String() string { return op.Name(e.Operator) }

func (e *Const) String() string {
	switch e.Kind {
	case op.IntConst:
		v, _ := e.IntVal()
		return strconv.FormatInt(v, 10)
	case op.FltConst:
		v, _ := e.FltVal()
		return strconv.FormatFloat(v, 'g', -1, 64)
	case op.StrConst:
		v, _ := e.StrVal()
		return strconv.Quote(v)
	case op.FuncConst:
		v, _ := e.StrVal()
		return v
	default:
		return fmt.Sprintf("%v", e.Value)
	}
}

func (e *Unary) String() string {
	return fmt.Sprintf("%s(%s)", op.Name(e.Operator), e.Sub1)
}

func (e *Binary) String() string {
	switch e.Operator {
	case op.Plus, op.Minus, op.Mult, op.Div, op.Mod, op.Equal, op.NotEqual,
		op.Less, op.LessEq, op.Greater, op.GreaterEq, op.LogAnd, op.LogOr,
		op.BitAnd, op.BitOr, op.BitXor:
		return fmt.Sprintf("%s %s %s", e.Sub1, infixSymbol(e.Operator), e.Sub2)
	default:
		return fmt.Sprintf("%s(%s, %s)", op.Name(e.Operator), e.Sub1, e.Sub2)
	}
}

func infixSymbol(o op.Operator) string {
	switch o {
	case op.Plus:
		return "+"
	case op.Minus:
		return "-"
	case op.Mult:
		return "*"
	case op.Div:
		return "/"
	case op.Mod:
		return "%"
	case op.Equal:
		return "=="
	case op.NotEqual:
		return "!="
	case op.Less:
		return "<"
	case op.LessEq:
		return "<="
	case op.Greater:
		return ">"
	case op.GreaterEq:
		return ">="
	case op.LogAnd:
		return "&&"
	case op.LogOr:
		return "||"
	case op.BitAnd:
		return "&"
	case op.BitOr:
		return "|"
	case op.BitXor:
		return "^"
	default:
		return op.Name(o)
	}
}

func (e *Ternary) String() string {
	return fmt.Sprintf("%s(%s, %s, %s)", op.Name(e.Operator), e.Sub1, e.Sub2, e.Sub3)
}

func (e *TypedExp) String() string {
	return fmt.Sprintf("*%s* %s", e.Type, e.Sub1)
}

func (e *Location) String() string {
	switch e.Operator {
	case op.RegOf:
		return fmt.Sprintf("r%s", e.Sub1)
	case op.MemOf:
		return fmt.Sprintf("m[%s]", e.Sub1)
	default:
		return fmt.Sprintf("%s(%s)", op.Name(e.Operator), e.Sub1)
	}
}

func (e *RefExp) String() string {
	return fmt.Sprintf("%s{%d}", e.Sub1, e.Def)
}

func (e *FlagDef) String() string {
	return fmt.Sprintf("flagdef(%s)", e.Sub1)
}

func (e *TypeVal) String() string {
	return fmt.Sprintf("typeval(%s)", e.Type)
}
