package monkey

import (
	"fmt"
	"strconv"
)

// ValueTag enumerates all runtime kinds a Value may hold.
// The tag determines which Go type Value.Data carries.
type ValueTag int

const (
	VTNull   ValueTag = iota // null (no payload)
	VTBool                   // bool
	VTInt                    // int32
	VTStr                    // string
	VTReturn                 // Value (control marker, see below)
	VTFun                    // *Fun
)

func (t ValueTag) String() string {
	switch t {
	case VTNull:
		return "null"
	case VTBool:
		return "bool"
	case VTInt:
		return "int"
	case VTStr:
		return "string"
	case VTReturn:
		return "return"
	case VTFun:
		return "function"
	}
	return "ValueTag(" + strconv.Itoa(int(t)) + ")"
}

// Value is the runtime carrier used by the interpreter.
//
// Invariants:
//   - Tag==VTNull: Data is nil.
//   - Tag==VTReturn: Data is the wrapped Value. Return markers only travel
//     between a `return` statement and the nearest enclosing function call
//     or top-level statement sequence, which unwraps them; they are never
//     handed to callers of Interpreter.
//   - VTStr can be built by hosts; no evaluation rule produces one.
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// Null is the singleton null Value.
var Null = Value{Tag: VTNull}

// Primitive constructors.
func Bool(b bool) Value  { return Value{Tag: VTBool, Data: b} }
func Int(n int32) Value  { return Value{Tag: VTInt, Data: n} }
func Str(s string) Value { return Value{Tag: VTStr, Data: s} }

// FunVal wraps *Fun into a Value (Tag=VTFun).
func FunVal(f *Fun) Value { return Value{Tag: VTFun, Data: f} }

func returnOf(v Value) Value { return Value{Tag: VTReturn, Data: v} }

// unwrapReturn strips a return marker; other values pass through.
func unwrapReturn(v Value) Value {
	if v.Tag == VTReturn {
		return v.Data.(Value)
	}
	return v
}

// Fun is a closure: parameter names, body and the frame it was defined in.
// Env is shared with the defining scope, not copied.
type Fun struct {
	Params []string
	Body   *Block
	Env    *Env
}

// String renders a short debug representation. Use FormatValue for display.
func (v Value) String() string {
	switch v.Tag {
	case VTNull:
		return "null"
	case VTBool:
		return strconv.FormatBool(v.Data.(bool))
	case VTInt:
		return strconv.FormatInt(int64(v.Data.(int32)), 10)
	case VTStr:
		return strconv.Quote(v.Data.(string))
	case VTReturn:
		return fmt.Sprintf("<return %s>", v.Data.(Value))
	case VTFun:
		return fmt.Sprintf("<fun/%d>", len(v.Data.(*Fun).Params))
	default:
		return "<unknown>"
	}
}

// isTruthy: null and false are falsy, everything else (including 0) is truthy.
func isTruthy(v Value) bool {
	switch v.Tag {
	case VTNull:
		return false
	case VTBool:
		return v.Data.(bool)
	default:
		return true
	}
}
