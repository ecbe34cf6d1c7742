package meiosis

import (
	"errors"
	"math/rand"
	"testing"
)

// End-to-end shape of one engine generation step: build tree genomes,
// recombine a parent pair, then build the selection table from weights.
func TestFacadeGenerationStep(t *testing.T) {
	rng := rand.New(rand.NewSource(17))

	x, err := NewVar("x", 0)
	if err != nil {
		t.Fatalf("new var: %v", err)
	}
	template, err := NewOpGene(x, -1, 0)
	if err != nil {
		t.Fatalf("template: %v", err)
	}

	makeParent := func(program *TreeNode) Phenotype {
		c, err := NewTreeChromosomeOf(program, template)
		if err != nil {
			t.Fatalf("chromosome: %v", err)
		}
		gt, err := NewGenotype(c)
		if err != nil {
			t.Fatalf("genotype: %v", err)
		}
		return NewPhenotype(gt, 0)
	}

	// x + 1 and x * x
	parentA := makeParent(NewTreeNode(Add, NewTreeNode(x), NewTreeNode(Const{Value: 1})))
	parentB := makeParent(NewTreeNode(Mul, NewTreeNode(x), NewTreeNode(x)))

	exchanger, err := ExchangerFromName("subtree_swap")
	if err != nil {
		t.Fatalf("exchanger: %v", err)
	}
	crossover, err := NewTreeCrossover(exchanger)
	if err != nil {
		t.Fatalf("crossover: %v", err)
	}

	childA, childB, altered, err := crossover.Recombine(rng, parentA, parentB, 1)
	if err != nil {
		t.Fatalf("recombine: %v", err)
	}
	if altered <= 0 {
		t.Fatalf("expected positive altered gene count, got %d", altered)
	}
	for _, child := range []Phenotype{childA, childB} {
		c, err := child.Genotype.Chromosome(0)
		if err != nil {
			t.Fatalf("child chromosome: %v", err)
		}
		root, err := c.(*TreeChromosome).Tree()
		if err != nil {
			t.Fatalf("child decode: %v", err)
		}
		if _, err := EvalProgram(root, []float64{2}); err != nil {
			t.Fatalf("child eval: %v", err)
		}
	}

	weights := []float64{0.2, 3.5, 1.1, 0}
	reverted, err := SortAndRevert(weights)
	if err != nil {
		t.Fatalf("sort and revert: %v", err)
	}
	table := Incremental(reverted)
	idx, err := IndexOf(table, table[len(table)-1]/2)
	if err != nil {
		t.Fatalf("index of: %v", err)
	}
	if idx < 0 || idx >= len(table) {
		t.Fatalf("index %d outside table", idx)
	}
}

func TestFacadeBitChromosomes(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	a, err := NewRandomBitChromosome(rng, 32, 0.5)
	if err != nil {
		t.Fatalf("chromosome a: %v", err)
	}
	b, err := NewBitChromosome(32)
	if err != nil {
		t.Fatalf("chromosome b: %v", err)
	}

	snap, err := a.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	before := make([]bool, 32)
	for i := range before {
		before[i], _ = snap.Bit(i)
	}

	if err := a.SwapRange(8, 24, b, 8); err != nil {
		t.Fatalf("swap range: %v", err)
	}
	for i := range before {
		if v, _ := snap.Bit(i); v != before[i] {
			t.Fatalf("snapshot bit %d changed by swap", i)
		}
	}
}

func TestExchangerFromNameUnknown(t *testing.T) {
	if _, err := ExchangerFromName("nope"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestNewTreeCrossoverRequiresExchanger(t *testing.T) {
	if _, err := NewTreeCrossover(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}
