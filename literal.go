package watchsat

import "fmt"

// Variable is a dense internal variable index in [0, n). Source-level DIMACS
// variables (arbitrary positive integers) are interned into this range by
// the solver builder; see origVar in solver.go for the reverse mapping.
type Variable int32

// Literal is a variable paired with a polarity, packed as 2*var + sign
// (sign bit 0 means positive, 1 means negated): negation is a single XOR
// and the literal doubles as a dense index into per-literal slices (the
// watch index keys off exactly this value).
type Literal int32

// litNone is a sentinel literal that never matches a real variable.
const litNone Literal = -1

// NewLiteral builds the literal for variable v with the given polarity.
func NewLiteral(v Variable, negated bool) Literal {
	l := Literal(v) << 1
	if negated {
		l |= 1
	}
	return l
}

// Var returns the variable underlying l; negation leaves it invariant.
func (l Literal) Var() Variable { return Variable(l >> 1) }

// Negated reports whether l is the negative polarity of its variable.
func (l Literal) Negated() bool { return l&1 == 1 }

// Negate returns the complementary literal (same variable, opposite
// polarity).
func (l Literal) Negate() Literal { return l ^ 1 }

func (l Literal) String() string {
	if l.Negated() {
		return fmt.Sprintf("-%d", int(l.Var())+1)
	}
	return fmt.Sprintf("%d", int(l.Var())+1)
}

// LitValue is the truth value of a literal under the current assignment.
type LitValue uint8

const (
	LitUnassigned LitValue = iota
	LitSatisfied
	LitFalsified
)

func (v LitValue) String() string {
	switch v {
	case LitSatisfied:
		return "satisfied"
	case LitFalsified:
		return "falsified"
	default:
		return "unassigned"
	}
}
