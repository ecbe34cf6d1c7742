// Package meiosis is the public surface of the genome-encoding and
// variation-operator core: packed bit sequences, tree-genome crossover, and
// the rank-reversal selection transform. The surrounding evolution engine
// (population bookkeeping, generation loop, samplers) lives outside this
// module and composes these pieces.
package meiosis

import (
	"fmt"
	"math/rand"

	"meiosis/internal/bitseq"
	"meiosis/internal/evo"
	"meiosis/internal/genotype"
	"meiosis/internal/model"
	"meiosis/internal/ops"
	"meiosis/internal/tree"
)

type (
	Gene       = model.Gene
	TreeGene   = model.TreeGene
	Chromosome = model.Chromosome
	Genotype   = model.Genotype
	Phenotype  = model.Phenotype

	BitSequence       = bitseq.Seq
	SealedBitSequence = bitseq.Sealed

	BitGene        = genotype.BitGene
	BitChromosome  = genotype.BitChromosome
	FlatGene       = genotype.FlatGene
	OpGene         = genotype.OpGene
	TreeChromosome = genotype.TreeChromosome

	TreeNode = tree.Node
	FlatTree = tree.Flat

	Op    = ops.Op
	Var   = ops.Var
	Const = ops.Const

	Exchanger     = evo.Exchanger
	SubtreeSwap   = evo.SubtreeSwap
	TreeCrossover = evo.TreeCrossover
)

// Arithmetic ops for program trees.
var (
	Add Op = ops.Add
	Sub Op = ops.Sub
	Mul Op = ops.Mul
)

// Error taxonomy; match with errors.Is.
var (
	ErrOutOfRange      = model.ErrOutOfRange
	ErrLengthMismatch  = model.ErrLengthMismatch
	ErrInvalidState    = model.ErrInvalidState
	ErrInvalidArgument = model.ErrInvalidArgument
)

// NewBitSequence creates a zero-initialized packed bit sequence.
func NewBitSequence(length int) (*BitSequence, error) {
	return bitseq.New(length)
}

// NewBitChromosome creates a zeroed bit chromosome of the given length.
func NewBitChromosome(length int) (*BitChromosome, error) {
	return genotype.NewBitChromosome(length)
}

// NewRandomBitChromosome creates a bit chromosome with genes set with the
// given probability.
func NewRandomBitChromosome(rng *rand.Rand, length int, onesProbability float64) (*BitChromosome, error) {
	return genotype.NewRandomBitChromosome(rng, length, onesProbability)
}

// NewTreeChromosome builds a tree chromosome from flat tree genes.
func NewTreeChromosome(genes []TreeGene) (*TreeChromosome, error) {
	return genotype.NewTreeChromosome(genes)
}

// NewTreeChromosomeOf flattens a tree into a chromosome through the given
// gene template.
func NewTreeChromosomeOf(root *TreeNode, template TreeGene) (*TreeChromosome, error) {
	return genotype.NewTreeChromosomeOf(root, template)
}

// NewTreeNode creates a tree node, optionally with children.
func NewTreeNode(value any, children ...*TreeNode) *TreeNode {
	return tree.Of(value, children...)
}

// NewGenotype builds a genotype from one or more chromosomes.
func NewGenotype(chromosomes ...Chromosome) (Genotype, error) {
	return model.NewGenotype(chromosomes...)
}

// NewPhenotype creates an unevaluated phenotype for the given generation.
func NewPhenotype(gt Genotype, generation int) Phenotype {
	return model.NewPhenotype(gt, generation)
}

// NewVar creates a named variable op for program trees.
func NewVar(name string, index int) (Var, error) {
	return ops.NewVar(name, index)
}

// NewOpGene creates an op-typed tree gene, usable as a template.
func NewOpGene(op Op, childOffset, childCount int) (OpGene, error) {
	return genotype.NewOpGene(op, childOffset, childCount)
}

// EvalProgram evaluates an op tree against a variable vector.
func EvalProgram(root *TreeNode, vars []float64) (float64, error) {
	return ops.Eval(root, vars)
}

// SortAndRevert builds the rank-reversed weight table for
// fitness-proportional selection.
func SortAndRevert(weights []float64) ([]float64, error) {
	return evo.SortAndRevert(weights)
}

// Incremental turns a weight table into its cumulative form.
func Incremental(weights []float64) []float64 {
	return evo.Incremental(weights)
}

// IndexOf locates the cumulative-table slot covering value.
func IndexOf(table []float64, value float64) (int, error) {
	return evo.IndexOf(table, value)
}

// NewTreeCrossover creates a tree crossover around the given exchanger.
func NewTreeCrossover(exchanger Exchanger) (TreeCrossover, error) {
	if exchanger == nil {
		return TreeCrossover{}, fmt.Errorf("%w: exchanger is required", ErrInvalidArgument)
	}
	return TreeCrossover{Exchanger: exchanger}, nil
}

// ExchangerFromName resolves a registered exchange strategy.
func ExchangerFromName(name string) (Exchanger, error) {
	switch name {
	case "subtree_swap":
		return evo.SubtreeSwap{}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported exchanger: %s", ErrInvalidArgument, name)
	}
}
