package term

import (
	"fmt"
	"strings"
)

// String renders t in a compact diagnostic notation.
//
// Variables print as x<level> so that a rendering reads the same way
// regardless of how deeply it is nested:
//
//	\x0. \x1. x0 x1
//
// Erased binders and applications are marked with a trailing '.
// This is for logs and error messages only; it is not a surface syntax.
func String(t Term) string {
	var sb strings.Builder
	show(&sb, t, 0)
	return sb.String()
}

func show(sb *strings.Builder, t Term, depth int) {
	switch t := t.(type) {
	case Variable:
		level := depth - 1 - int(t.Index)
		if level < 0 {
			fmt.Fprintf(sb, "^%d", t.Index)
			return
		}
		fmt.Fprintf(sb, "x%d", level)
	case Lambda:
		fmt.Fprintf(sb, "\\x%d", depth)
		if t.Erased {
			sb.WriteByte('\'')
		}
		sb.WriteString(". ")
		show(sb, t.Body, depth+1)
	case Apply:
		sb.WriteByte('(')
		show(sb, t.Function, depth)
		if t.Erased {
			sb.WriteString(" '")
		} else {
			sb.WriteByte(' ')
		}
		show(sb, t.Argument, depth)
		sb.WriteByte(')')
	case Put:
		sb.WriteString("!")
		show(sb, t.Term, depth)
	case Duplicate:
		fmt.Fprintf(sb, "dup x%d = ", depth)
		show(sb, t.Expression, depth)
		sb.WriteString("; ")
		show(sb, t.Body, depth+1)
	case Reference:
		sb.WriteString(t.Name)
	case Universe:
		sb.WriteByte('*')
	case Function:
		fmt.Fprintf(sb, "(x%d", depth)
		if t.Erased {
			sb.WriteByte('\'')
		}
		sb.WriteString(": ")
		show(sb, t.ArgumentType, depth)
		sb.WriteString(") -> ")
		show(sb, t.ReturnType, depth+1)
	case Annotation:
		sb.WriteByte('(')
		show(sb, t.Expression, depth)
		sb.WriteString(" : ")
		show(sb, t.Type, depth)
		sb.WriteByte(')')
	case Wrap:
		sb.WriteString("[")
		show(sb, t.Term, depth)
		sb.WriteString("]")
	case nil:
		sb.WriteString("<nil>")
	default:
		fmt.Fprintf(sb, "<%T>", t)
	}
}
