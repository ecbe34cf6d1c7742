package ops

import (
	"errors"
	"testing"

	"meiosis/internal/model"
	"meiosis/internal/tree"
)

func TestNewVarValidation(t *testing.T) {
	if _, err := NewVar("", 0); !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for empty name, got %v", err)
	}
	if _, err := NewVar("x", -1); !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for negative index, got %v", err)
	}
	v, err := NewVar("x", 2)
	if err != nil {
		t.Fatalf("new var: %v", err)
	}
	if v.Name() != "x" || v.Index() != 2 || v.Arity() != 0 {
		t.Fatalf("unexpected var: %+v", v)
	}
}

func TestEvalProgram(t *testing.T) {
	x, err := NewVar("x", 0)
	if err != nil {
		t.Fatalf("new var: %v", err)
	}
	y, err := NewVar("y", 1)
	if err != nil {
		t.Fatalf("new var: %v", err)
	}

	// (x + 2) * y
	program := tree.Of(Mul,
		tree.Of(Add, tree.New(x), tree.New(Const{Value: 2})),
		tree.New(y),
	)

	got, err := Eval(program, []float64{3, 5})
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got != 25 {
		t.Fatalf("eval (3+2)*5: want 25 got %g", got)
	}
}

func TestEvalArityMismatch(t *testing.T) {
	program := tree.Of(Add, tree.New(Const{Value: 1}))
	if _, err := Eval(program, nil); !errors.Is(err, model.ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestEvalVarOutOfRange(t *testing.T) {
	x, err := NewVar("x", 3)
	if err != nil {
		t.Fatalf("new var: %v", err)
	}
	if _, err := Eval(tree.New(x), []float64{1}); !errors.Is(err, model.ErrOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
}

func TestEvalRejectsNonOpValue(t *testing.T) {
	if _, err := Eval(tree.New("not an op"), nil); !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}
