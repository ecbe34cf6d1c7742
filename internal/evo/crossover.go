// Package evo implements the variation operators of the core: tree-genome
// crossover and the rank-reversal selection transform.
package evo

import (
	"fmt"
	"math/rand"

	"meiosis/internal/model"
	"meiosis/internal/tree"
)

// Exchanger is the single structural hook of tree crossover. Exchange may
// mutate both trees arbitrarily as long as each stays rooted and
// well-formed, and reports the number of genes it altered. Leaving both
// trees unchanged (count 0) is a valid outcome.
type Exchanger interface {
	Name() string
	Exchange(rng *rand.Rand, a, b *tree.Node) int
}

// SubtreeSwap exchanges one uniformly chosen subtree of each tree. The
// altered count is the combined size of the two exchanged subtrees.
type SubtreeSwap struct{}

func (SubtreeSwap) Name() string {
	return "subtree_swap"
}

func (SubtreeSwap) Exchange(rng *rand.Rand, a, b *tree.Node) int {
	nodesA := a.Nodes()
	nodesB := b.Nodes()
	pickA := nodesA[rng.Intn(len(nodesA))]
	pickB := nodesB[rng.Intn(len(nodesB))]

	altered := pickA.Size() + pickB.Size()
	tree.Exchange(pickA, pickB)
	return altered
}

// TreeCrossover recombines two parent genomes carrying tree-shaped
// chromosomes. It is a pure function of its inputs at the genome level:
// parents are never mutated, the children are fresh phenotypes.
type TreeCrossover struct {
	Exchanger Exchanger
}

// Recombine picks one chromosome index valid in both parents, runs the
// exchanger over the decoded trees, and splices the rebuilt gene sequences
// into two child genomes stamped with generation. The returned count is the
// exchanger's altered-gene total.
func (c TreeCrossover) Recombine(
	rng *rand.Rand,
	parentA, parentB model.Phenotype,
	generation int,
) (model.Phenotype, model.Phenotype, int, error) {
	if rng == nil {
		return model.Phenotype{}, model.Phenotype{}, 0, fmt.Errorf("%w: random source is required", model.ErrInvalidArgument)
	}
	if c.Exchanger == nil {
		return model.Phenotype{}, model.Phenotype{}, 0, fmt.Errorf("%w: exchanger is required", model.ErrInvalidArgument)
	}

	n := parentA.Genotype.Length()
	if m := parentB.Genotype.Length(); m < n {
		n = m
	}
	if n == 0 {
		return model.Phenotype{}, model.Phenotype{}, 0, fmt.Errorf("%w: no aligned chromosomes to recombine", model.ErrInvalidState)
	}
	index := rng.Intn(n)

	chromosomesA := parentA.Genotype.Chromosomes()
	chromosomesB := parentB.Genotype.Chromosomes()

	altered, err := c.crossover(rng, chromosomesA, chromosomesB, index)
	if err != nil {
		return model.Phenotype{}, model.Phenotype{}, 0, err
	}

	genotypeA, err := model.NewGenotype(chromosomesA...)
	if err != nil {
		return model.Phenotype{}, model.Phenotype{}, 0, err
	}
	genotypeB, err := model.NewGenotype(chromosomesB...)
	if err != nil {
		return model.Phenotype{}, model.Phenotype{}, 0, err
	}

	childA := model.NewPhenotype(genotypeA, generation)
	childB := model.NewPhenotype(genotypeB, generation)
	return childA, childB, altered, nil
}

// crossover swaps tree structure between the chromosomes at index. The gene
// allele type is existential here: it is recovered once per parent from the
// chosen chromosome's own first gene, and templates are never mixed across
// chromosomes or parents.
func (c TreeCrossover) crossover(
	rng *rand.Rand,
	chromosomesA, chromosomesB []model.Chromosome,
	index int,
) (int, error) {
	treeA, templateA, err := decodeTreeChromosome(chromosomesA[index])
	if err != nil {
		return 0, fmt.Errorf("parent a chromosome %d: %w", index, err)
	}
	treeB, templateB, err := decodeTreeChromosome(chromosomesB[index])
	if err != nil {
		return 0, fmt.Errorf("parent b chromosome %d: %w", index, err)
	}

	altered := c.Exchanger.Exchange(rng, treeA, treeB)
	if altered < 0 {
		return 0, fmt.Errorf("%w: exchanger %s reported %d altered genes", model.ErrInvalidState, c.Exchanger.Name(), altered)
	}

	rebuiltA, err := encodeTreeChromosome(chromosomesA[index], treeA, templateA)
	if err != nil {
		return 0, fmt.Errorf("parent a chromosome %d: %w", index, err)
	}
	rebuiltB, err := encodeTreeChromosome(chromosomesB[index], treeB, templateB)
	if err != nil {
		return 0, fmt.Errorf("parent b chromosome %d: %w", index, err)
	}

	chromosomesA[index] = rebuiltA
	chromosomesB[index] = rebuiltB
	return altered, nil
}

// decodeTreeChromosome turns a chromosome of tree genes into a mutable tree
// plus the chromosome's gene-construction template.
func decodeTreeChromosome(c model.Chromosome) (*tree.Node, model.TreeGene, error) {
	if c.Length() == 0 {
		return nil, nil, fmt.Errorf("%w: empty chromosome", model.ErrInvalidState)
	}
	genes := c.Genes()
	flat := make([]tree.Flat, len(genes))
	for i, g := range genes {
		tg, ok := g.(model.TreeGene)
		if !ok {
			return nil, nil, fmt.Errorf("%w: gene %d is %T, not a tree gene", model.ErrInvalidState, i, g)
		}
		flat[i] = tree.Flat{
			Value:       tg.Allele(),
			ChildOffset: tg.ChildOffset(),
			ChildCount:  tg.ChildCount(),
		}
	}
	root, err := tree.Unflatten(flat)
	if err != nil {
		return nil, nil, err
	}
	template := genes[0].(model.TreeGene)
	return root, template, nil
}

// encodeTreeChromosome flattens a mutated tree back into genes built through
// the original chromosome's template, then instances the chromosome kind.
func encodeTreeChromosome(original model.Chromosome, root *tree.Node, template model.TreeGene) (model.Chromosome, error) {
	flat, err := tree.Flatten(root)
	if err != nil {
		return nil, err
	}
	genes := make([]model.Gene, len(flat))
	for i, slot := range flat {
		g, err := template.NewTreeGene(slot.Value, slot.ChildOffset, slot.ChildCount)
		if err != nil {
			return nil, err
		}
		genes[i] = g
	}
	return original.NewInstance(genes)
}
