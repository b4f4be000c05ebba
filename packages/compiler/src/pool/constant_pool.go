// Package pool holds what the compilers of one generated program share: claimed names and
// constant literals hoisted into variables.
package pool

import (
	"fmt"
	"strings"

	"ngjit-go/packages/compiler/src/output"
)

const constantPrefix = "_c"

// FixupExpression is a place-holder for a pooled literal. It prints as the literal until the
// literal is used a second time; from then on every use reads the shared variable.
type FixupExpression struct {
	output.ExpressionBase
	original output.OutputExpression
	resolved output.OutputExpression
	shared   bool
}

func NewFixupExpression(resolved output.OutputExpression) *FixupExpression {
	return &FixupExpression{
		ExpressionBase: output.ExpressionBase{SourceSpan: resolved.GetSourceSpan()},
		original:       resolved,
		resolved:       resolved,
	}
}

func (f *FixupExpression) VisitExpression(visitor output.ExpressionVisitor, context interface{}) interface{} {
	return f.resolved.VisitExpression(visitor, context)
}

// Fixup redirects every use to expression.
func (f *FixupExpression) Fixup(expression output.OutputExpression) {
	f.resolved = expression
	f.shared = true
}

// ConstantPool is a pool of constants that can be reused
type ConstantPool struct {
	statements []output.OutputStatement
	literals   map[string]*FixupExpression
	claimed    map[string]bool
	counters   map[string]int
}

// NewConstantPool creates a new ConstantPool
func NewConstantPool() *ConstantPool {
	return &ConstantPool{
		literals: map[string]*FixupExpression{},
		claimed:  map[string]bool{},
		counters: map[string]int{},
	}
}

// GetConstLiteral returns an expression for a constant array or map literal. A literal seen
// twice, or once with forceShared, is declared as a "_cN" variable.
func (cp *ConstantPool) GetConstLiteral(literal output.OutputExpression, forceShared bool) output.OutputExpression {
	if _, ok := literal.(*output.LiteralExpr); ok {
		return literal
	}
	if _, ok := literal.(*FixupExpression); ok {
		return literal
	}
	key := KeyOf(literal)
	fixup, exists := cp.literals[key]
	if !exists {
		fixup = NewFixupExpression(literal)
		cp.literals[key] = fixup
	}
	if (exists && !fixup.shared) || (!exists && forceShared) {
		name := cp.freshName()
		cp.statements = append(cp.statements, output.NewDeclareVarStmt(name, literal, output.StmtModifierFinal, nil))
		fixup.Fixup(output.Variable(name))
	}
	return fixup
}

// UniqueName claims a name derived from name. The first claim of a name is returned as-is
// unless alwaysIncludeSuffix is set; later claims get the next free numeric suffix. A result
// never repeats, even when a suffixed form was claimed directly.
func (cp *ConstantPool) UniqueName(name string, alwaysIncludeSuffix bool) string {
	count := cp.counters[name]
	for {
		result := name
		if count > 0 || alwaysIncludeSuffix {
			result = fmt.Sprintf("%s%d", name, count)
		}
		count++
		if !cp.claimed[result] {
			cp.counters[name] = count
			cp.claimed[result] = true
			return result
		}
	}
}

func (cp *ConstantPool) freshName() string {
	return cp.UniqueName(constantPrefix, true)
}

// GetStatements returns all statements in the pool
func (cp *ConstantPool) GetStatements() []output.OutputStatement {
	return cp.statements
}

// AddStatement adds a statement to the pool
func (cp *ConstantPool) AddStatement(stmt output.OutputStatement) {
	cp.statements = append(cp.statements, stmt)
}

// KeyOf renders a constant expression as a lookup key.
func KeyOf(expr output.OutputExpression) string {
	switch e := expr.(type) {
	case *output.LiteralExpr:
		if str, ok := e.Value.(string); ok {
			return fmt.Sprintf("%q", str)
		}
		return fmt.Sprintf("%v", e.Value)
	case *output.LiteralArrayExpr:
		entries := make([]string, len(e.Entries))
		for i, entry := range e.Entries {
			entries[i] = KeyOf(entry)
		}
		return "[" + strings.Join(entries, ",") + "]"
	case *output.LiteralMapExpr:
		entries := make([]string, len(e.Entries))
		for i, entry := range e.Entries {
			key := entry.Key
			if entry.Quoted {
				key = fmt.Sprintf("%q", key)
			}
			entries[i] = key + ":" + KeyOf(entry.Value)
		}
		return "{" + strings.Join(entries, ",") + "}"
	case *output.ExternalExpr:
		return fmt.Sprintf("import(%q, %q)", e.Value.ModuleName, e.Value.Name)
	case *output.ReadVarExpr:
		return fmt.Sprintf("read(%s)", e.Name)
	case *FixupExpression:
		return KeyOf(e.original)
	}
	panic(fmt.Sprintf("KeyOf does not handle expressions of type %T", expr))
}

// OutputContext collects the statements of one generated program together with the pool its
// compilers share.
type OutputContext struct {
	GenFilePath  string
	Statements   []output.OutputStatement
	ConstantPool *ConstantPool
}

func NewOutputContext(genFilePath string) *OutputContext {
	return &OutputContext{GenFilePath: genFilePath, ConstantPool: NewConstantPool()}
}

// Program returns the pooled constants followed by the collected statements.
func (c *OutputContext) Program() []output.OutputStatement {
	stmts := make([]output.OutputStatement, 0, len(c.ConstantPool.statements)+len(c.Statements))
	stmts = append(stmts, c.ConstantPool.statements...)
	return append(stmts, c.Statements...)
}
