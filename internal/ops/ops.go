// Package ops provides the operations a program tree is built from:
// variables, constants, and arithmetic. These are the alleles of tree
// chromosomes in genetic-programming use.
package ops

import (
	"fmt"
	"strings"

	"meiosis/internal/model"
	"meiosis/internal/tree"
)

// Op is one operation of a program tree. Arity is the number of children a
// node carrying the op must have; Apply evaluates it over the already
// evaluated child values.
type Op interface {
	Name() string
	Arity() int
	Apply(args []float64) (float64, error)
}

// Var projects one element of the evaluation variable vector. Terminal op.
type Var struct {
	name  string
	index int
}

// NewVar creates a named variable projecting args[index].
func NewVar(name string, index int) (Var, error) {
	if strings.TrimSpace(name) == "" {
		return Var{}, fmt.Errorf("%w: variable name is required", model.ErrInvalidArgument)
	}
	if index < 0 {
		return Var{}, fmt.Errorf("%w: variable index %d", model.ErrInvalidArgument, index)
	}
	return Var{name: name, index: index}, nil
}

func (v Var) Name() string {
	return v.name
}

func (v Var) Arity() int {
	return 0
}

// Index returns the projection index into the variable vector.
func (v Var) Index() int {
	return v.index
}

func (v Var) Apply(args []float64) (float64, error) {
	if v.index >= len(args) {
		return 0, fmt.Errorf("%w: variable %s projects index %d of %d", model.ErrOutOfRange, v.name, v.index, len(args))
	}
	return args[v.index], nil
}

// Const is a fixed value. Terminal op.
type Const struct {
	Value float64
}

func (c Const) Name() string {
	return fmt.Sprintf("%g", c.Value)
}

func (c Const) Arity() int {
	return 0
}

func (c Const) Apply([]float64) (float64, error) {
	return c.Value, nil
}

// arithmetic is a two-argument op keyed by name. Kept comparable so tree
// values and gene alleles carrying ops support equality.
type arithmetic string

const (
	Add arithmetic = "add"
	Sub arithmetic = "sub"
	Mul arithmetic = "mul"
)

func (o arithmetic) Name() string {
	return string(o)
}

func (o arithmetic) Arity() int {
	return 2
}

func (o arithmetic) Apply(args []float64) (float64, error) {
	if len(args) != 2 {
		return 0, fmt.Errorf("%w: %s takes 2 arguments, got %d", model.ErrInvalidArgument, o.Name(), len(args))
	}
	switch o {
	case Add:
		return args[0] + args[1], nil
	case Sub:
		return args[0] - args[1], nil
	case Mul:
		return args[0] * args[1], nil
	default:
		return 0, fmt.Errorf("%w: unknown arithmetic op %q", model.ErrInvalidArgument, string(o))
	}
}

// Eval evaluates a program tree bottom-up against the variable vector. Every
// node value must be an Op whose arity matches the node's child count.
func Eval(node *tree.Node, vars []float64) (float64, error) {
	if node == nil {
		return 0, fmt.Errorf("%w: nil program tree", model.ErrInvalidArgument)
	}
	op, ok := node.Value().(Op)
	if !ok {
		return 0, fmt.Errorf("%w: node value %T is not an op", model.ErrInvalidArgument, node.Value())
	}
	if node.ChildCount() != op.Arity() {
		return 0, fmt.Errorf("%w: op %s arity %d, node has %d children", model.ErrInvalidState, op.Name(), op.Arity(), node.ChildCount())
	}

	args := make([]float64, node.ChildCount())
	for i := range args {
		v, err := Eval(node.Child(i), vars)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}

	// Var reads the evaluation vector directly.
	if v, ok := op.(Var); ok {
		return v.Apply(vars)
	}
	return op.Apply(args)
}
