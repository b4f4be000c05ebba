package expression_parser

import (
	"strconv"
	"strings"
)

// Serialize renders an expression back to source form. Implicit receivers are omitted.
func Serialize(ast AST) string {
	var sb strings.Builder
	serialize(&sb, ast)
	return sb.String()
}

func serializeList(sb *strings.Builder, list []AST, sep string) {
	for i, a := range list {
		if i > 0 {
			sb.WriteString(sep)
		}
		serialize(sb, a)
	}
}

func serializeReceiver(sb *strings.Builder, receiver AST, dot string) {
	switch receiver.(type) {
	case *ThisReceiver:
		sb.WriteString("this")
		sb.WriteString(dot)
	case *ImplicitReceiver:
	default:
		serialize(sb, receiver)
		sb.WriteString(dot)
	}
}

func serialize(sb *strings.Builder, ast AST) {
	switch n := ast.(type) {
	case nil, *EmptyExpr:
	case *ASTWithSource:
		serialize(sb, n.AST)
	case *ThisReceiver:
		sb.WriteString("this")
	case *ImplicitReceiver:
	case *Chain:
		serializeList(sb, n.Expressions, "; ")
	case *Conditional:
		serialize(sb, n.Condition)
		sb.WriteString(" ? ")
		serialize(sb, n.TrueExp)
		sb.WriteString(" : ")
		serialize(sb, n.FalseExp)
	case *PropertyRead:
		serializeReceiver(sb, n.Receiver, ".")
		sb.WriteString(n.Name)
	case *SafePropertyRead:
		serializeReceiver(sb, n.Receiver, "?.")
		sb.WriteString(n.Name)
	case *PropertyWrite:
		serializeReceiver(sb, n.Receiver, ".")
		sb.WriteString(n.Name)
		sb.WriteString(" = ")
		serialize(sb, n.Value)
	case *KeyedRead:
		serialize(sb, n.Receiver)
		sb.WriteString("[")
		serialize(sb, n.Key)
		sb.WriteString("]")
	case *SafeKeyedRead:
		serialize(sb, n.Receiver)
		sb.WriteString("?.[")
		serialize(sb, n.Key)
		sb.WriteString("]")
	case *KeyedWrite:
		serialize(sb, n.Receiver)
		sb.WriteString("[")
		serialize(sb, n.Key)
		sb.WriteString("] = ")
		serialize(sb, n.Value)
	case *BindingPipe:
		sb.WriteString("(")
		serialize(sb, n.Exp)
		sb.WriteString(" | ")
		sb.WriteString(n.Name)
		for _, arg := range n.Args {
			sb.WriteString(":")
			serialize(sb, arg)
		}
		sb.WriteString(")")
	case *LiteralPrimitive:
		switch v := n.Value.(type) {
		case nil:
			sb.WriteString("null")
		case string:
			sb.WriteString(strconv.Quote(v))
		case float64:
			sb.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			sb.WriteString(strconv.FormatBool(v))
		}
	case *LiteralArray:
		sb.WriteString("[")
		serializeList(sb, n.Expressions, ", ")
		sb.WriteString("]")
	case *LiteralMap:
		sb.WriteString("{")
		for i, k := range n.Keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			if k.Quoted {
				sb.WriteString(strconv.Quote(k.Key))
			} else {
				sb.WriteString(k.Key)
			}
			sb.WriteString(": ")
			serialize(sb, n.Values[i])
		}
		sb.WriteString("}")
	case *Interpolation:
		for i, s := range n.Strings {
			sb.WriteString(s)
			if i < len(n.Expressions) {
				sb.WriteString("{{ ")
				serialize(sb, n.Expressions[i])
				sb.WriteString(" }}")
			}
		}
	case *Binary:
		sb.WriteString("(")
		serialize(sb, n.Left)
		sb.WriteString(" " + n.Operation + " ")
		serialize(sb, n.Right)
		sb.WriteString(")")
	case *Unary:
		sb.WriteString(n.Operator)
		serialize(sb, n.Expr)
	case *PrefixNot:
		sb.WriteString("!")
		serialize(sb, n.Expression)
	case *Call:
		serialize(sb, n.Receiver)
		sb.WriteString("(")
		serializeList(sb, n.Args, ", ")
		sb.WriteString(")")
	case *SafeCall:
		serialize(sb, n.Receiver)
		sb.WriteString("?.(")
		serializeList(sb, n.Args, ", ")
		sb.WriteString(")")
	}
}
