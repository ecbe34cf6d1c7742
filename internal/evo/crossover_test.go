package evo

import (
	"errors"
	"math/rand"
	"testing"

	"meiosis/internal/genotype"
	"meiosis/internal/model"
	"meiosis/internal/ops"
	"meiosis/internal/tree"
)

type noopExchanger struct{}

func (noopExchanger) Name() string {
	return "noop"
}

func (noopExchanger) Exchange(*rand.Rand, *tree.Node, *tree.Node) int {
	return 0
}

func opTemplate(t *testing.T) genotype.OpGene {
	t.Helper()
	template, err := genotype.NewOpGene(ops.Add, -1, 0)
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	return template
}

func treePhenotype(t *testing.T, rng *rand.Rand, generation int) model.Phenotype {
	t.Helper()
	c, err := genotype.NewTreeChromosomeOf(randomProgram(t, rng, 5), opTemplate(t))
	if err != nil {
		t.Fatalf("tree chromosome: %v", err)
	}
	gt, err := model.NewGenotype(c)
	if err != nil {
		t.Fatalf("genotype: %v", err)
	}
	return model.NewPhenotype(gt, generation)
}

func randomProgram(t *testing.T, rng *rand.Rand, maxDepth int) *tree.Node {
	t.Helper()
	if maxDepth <= 1 || rng.Intn(3) == 0 {
		if rng.Intn(2) == 0 {
			x, err := ops.NewVar("x", 0)
			if err != nil {
				t.Fatalf("new var: %v", err)
			}
			return tree.New(x)
		}
		return tree.New(ops.Const{Value: float64(rng.Intn(10))})
	}
	op := []ops.Op{ops.Add, ops.Sub, ops.Mul}[rng.Intn(3)]
	return tree.Of(op,
		randomProgram(t, rng, maxDepth-1),
		randomProgram(t, rng, maxDepth-1),
	)
}

func chosenGenes(t *testing.T, p model.Phenotype, index int) []model.TreeGene {
	t.Helper()
	c, err := p.Genotype.Chromosome(index)
	if err != nil {
		t.Fatalf("chromosome %d: %v", index, err)
	}
	genes := c.Genes()
	out := make([]model.TreeGene, len(genes))
	for i, g := range genes {
		tg, ok := g.(model.TreeGene)
		if !ok {
			t.Fatalf("gene %d is %T, not a tree gene", i, g)
		}
		out[i] = tg
	}
	return out
}

func sameGenes(a, b []model.TreeGene) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Allele() != b[i].Allele() ||
			a[i].ChildOffset() != b[i].ChildOffset() ||
			a[i].ChildCount() != b[i].ChildCount() {
			return false
		}
	}
	return true
}

func TestRecombineNoopExchangerKeepsGenes(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	parentA := treePhenotype(t, rng, 0)
	parentB := treePhenotype(t, rng, 0)
	beforeA := chosenGenes(t, parentA, 0)
	beforeB := chosenGenes(t, parentB, 0)

	childA, childB, altered, err := TreeCrossover{Exchanger: noopExchanger{}}.Recombine(rng, parentA, parentB, 1)
	if err != nil {
		t.Fatalf("recombine: %v", err)
	}
	if altered != 0 {
		t.Fatalf("altered genes: want 0 got %d", altered)
	}
	if !sameGenes(chosenGenes(t, childA, 0), beforeA) {
		t.Fatal("child a genes differ from parent a under noop exchange")
	}
	if !sameGenes(chosenGenes(t, childB, 0), beforeB) {
		t.Fatal("child b genes differ from parent b under noop exchange")
	}
}

func TestRecombineSubtreeSwap(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 50; trial++ {
		parentA := treePhenotype(t, rng, 3)
		parentB := treePhenotype(t, rng, 3)
		beforeA := chosenGenes(t, parentA, 0)
		beforeB := chosenGenes(t, parentB, 0)

		childA, childB, altered, err := TreeCrossover{Exchanger: SubtreeSwap{}}.Recombine(rng, parentA, parentB, 4)
		if err != nil {
			t.Fatalf("recombine: %v", err)
		}

		genesA := chosenGenes(t, childA, 0)
		genesB := chosenGenes(t, childB, 0)
		if altered < 0 || altered > len(genesA)+len(genesB) {
			t.Fatalf("altered genes %d outside [0, %d]", altered, len(genesA)+len(genesB))
		}
		// A subtree exchange moves genes between the chromosomes, never
		// creates or destroys them.
		if len(genesA)+len(genesB) != len(beforeA)+len(beforeB) {
			t.Fatalf("combined gene count changed: %d+%d -> %d+%d", len(beforeA), len(beforeB), len(genesA), len(genesB))
		}

		// Parents stay untouched.
		if !sameGenes(chosenGenes(t, parentA, 0), beforeA) {
			t.Fatal("parent a mutated by recombination")
		}
		if !sameGenes(chosenGenes(t, parentB, 0), beforeB) {
			t.Fatal("parent b mutated by recombination")
		}

		// Children decode into valid programs.
		for _, child := range []model.Phenotype{childA, childB} {
			c, err := child.Genotype.Chromosome(0)
			if err != nil {
				t.Fatalf("child chromosome: %v", err)
			}
			root, err := c.(*genotype.TreeChromosome).Tree()
			if err != nil {
				t.Fatalf("child does not decode: %v", err)
			}
			if _, err := ops.Eval(root, []float64{1}); err != nil {
				t.Fatalf("child program does not evaluate: %v", err)
			}
		}
	}
}

func TestRecombineStampsChildren(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	parentA := treePhenotype(t, rng, 6)
	parentB := treePhenotype(t, rng, 6)

	childA, childB, _, err := TreeCrossover{Exchanger: SubtreeSwap{}}.Recombine(rng, parentA, parentB, 7)
	if err != nil {
		t.Fatalf("recombine: %v", err)
	}
	if childA.Generation != 7 || childB.Generation != 7 {
		t.Fatalf("child generations: %d, %d", childA.Generation, childB.Generation)
	}
	ids := map[string]struct{}{parentA.ID: {}, parentB.ID: {}, childA.ID: {}, childB.ID: {}}
	if len(ids) != 4 {
		t.Fatal("expected four distinct phenotype ids")
	}
	if childA.Evaluated || childB.Evaluated {
		t.Fatal("children must start unevaluated")
	}
}

func TestRecombineCopiesUnalignedChromosomes(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	template := opTemplate(t)

	shared, err := genotype.NewTreeChromosomeOf(randomProgram(t, rng, 4), template)
	if err != nil {
		t.Fatalf("chromosome: %v", err)
	}
	extra, err := genotype.NewTreeChromosomeOf(randomProgram(t, rng, 4), template)
	if err != nil {
		t.Fatalf("chromosome: %v", err)
	}
	longGt, err := model.NewGenotype(shared, extra)
	if err != nil {
		t.Fatalf("genotype: %v", err)
	}
	parentA := model.NewPhenotype(longGt, 0)
	parentB := treePhenotype(t, rng, 0)

	childA, _, _, err := TreeCrossover{Exchanger: SubtreeSwap{}}.Recombine(rng, parentA, parentB, 1)
	if err != nil {
		t.Fatalf("recombine: %v", err)
	}
	if childA.Genotype.Length() != 2 {
		t.Fatalf("child a chromosome count: want 2 got %d", childA.Genotype.Length())
	}
	got, err := childA.Genotype.Chromosome(1)
	if err != nil {
		t.Fatalf("child chromosome 1: %v", err)
	}
	if got != model.Chromosome(extra) {
		t.Fatal("chromosome beyond the aligned range must be copied through unchanged")
	}
}

func TestRecombinePreconditions(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	parent := treePhenotype(t, rng, 0)
	empty := model.Phenotype{}

	if _, _, _, err := (TreeCrossover{Exchanger: SubtreeSwap{}}).Recombine(nil, parent, parent, 1); !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for nil rng, got %v", err)
	}
	if _, _, _, err := (TreeCrossover{}).Recombine(rng, parent, parent, 1); !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for nil exchanger, got %v", err)
	}
	if _, _, _, err := (TreeCrossover{Exchanger: SubtreeSwap{}}).Recombine(rng, empty, parent, 1); !errors.Is(err, model.ErrInvalidState) {
		t.Fatalf("expected invalid state for empty genotype, got %v", err)
	}
}

func TestRecombineRejectsNonTreeChromosome(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	bits, err := genotype.NewBitChromosome(8)
	if err != nil {
		t.Fatalf("bit chromosome: %v", err)
	}
	gt, err := model.NewGenotype(bits)
	if err != nil {
		t.Fatalf("genotype: %v", err)
	}
	parentA := model.NewPhenotype(gt, 0)
	parentB := treePhenotype(t, rng, 0)

	if _, _, _, err := (TreeCrossover{Exchanger: SubtreeSwap{}}).Recombine(rng, parentA, parentB, 1); !errors.Is(err, model.ErrInvalidState) {
		t.Fatalf("expected invalid state for bit chromosome, got %v", err)
	}
}
