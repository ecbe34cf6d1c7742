// Package genotype provides the concrete chromosome kinds: bit chromosomes
// over packed bit storage and tree chromosomes over flat tree genes.
package genotype

import (
	"fmt"
	"math/rand"

	"meiosis/internal/bitseq"
	"meiosis/internal/model"
	"meiosis/internal/ops"
	"meiosis/internal/tree"
)

// BitGene is a single boolean gene.
type BitGene bool

func (g BitGene) Allele() any {
	return bool(g)
}

func (g BitGene) IsValid() bool {
	return true
}

// Bit returns the gene value as a bool.
func (g BitGene) Bit() bool {
	return bool(g)
}

// BitChromosome is a fixed-length chromosome of BitGenes backed by a packed
// bit sequence.
type BitChromosome struct {
	seq *bitseq.Seq
}

// NewBitChromosome creates a zero-initialized bit chromosome.
func NewBitChromosome(length int) (*BitChromosome, error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: bit chromosome length %d", model.ErrInvalidArgument, length)
	}
	seq, err := bitseq.New(length)
	if err != nil {
		return nil, err
	}
	return &BitChromosome{seq: seq}, nil
}

// NewRandomBitChromosome creates a bit chromosome with each gene set with
// probability onesProbability.
func NewRandomBitChromosome(rng *rand.Rand, length int, onesProbability float64) (*BitChromosome, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", model.ErrInvalidArgument)
	}
	if onesProbability < 0 || onesProbability > 1 {
		return nil, fmt.Errorf("%w: ones probability %g", model.ErrInvalidArgument, onesProbability)
	}
	c, err := NewBitChromosome(length)
	if err != nil {
		return nil, err
	}
	for i := 0; i < length; i++ {
		if rng.Float64() < onesProbability {
			if err := c.seq.Set(i, true); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// NewBitChromosomeFromGenes builds a bit chromosome from BitGenes.
func NewBitChromosomeFromGenes(genes []model.Gene) (*BitChromosome, error) {
	c, err := NewBitChromosome(len(genes))
	if err != nil {
		return nil, err
	}
	for i, g := range genes {
		bg, ok := g.(BitGene)
		if !ok {
			return nil, fmt.Errorf("%w: gene %d is %T, not a bit gene", model.ErrInvalidArgument, i, g)
		}
		if err := c.seq.Set(i, bool(bg)); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *BitChromosome) Length() int {
	return c.seq.Len()
}

func (c *BitChromosome) Gene(index int) (model.Gene, error) {
	v, err := c.seq.Get(index)
	if err != nil {
		return nil, err
	}
	return BitGene(v), nil
}

func (c *BitChromosome) Genes() []model.Gene {
	out := make([]model.Gene, c.seq.Len())
	for i := range out {
		v, _ := c.seq.Get(i)
		out[i] = BitGene(v)
	}
	return out
}

func (c *BitChromosome) NewInstance(genes []model.Gene) (model.Chromosome, error) {
	if len(genes) != c.seq.Len() {
		return nil, fmt.Errorf("%w: chromosome length %d, got %d genes", model.ErrLengthMismatch, c.seq.Len(), len(genes))
	}
	return NewBitChromosomeFromGenes(genes)
}

// Bit reads one gene value.
func (c *BitChromosome) Bit(index int) (bool, error) {
	return c.seq.Get(index)
}

// SetBit writes one gene value.
func (c *BitChromosome) SetBit(index int, value bool) error {
	return c.seq.Set(index, value)
}

// SwapRange exchanges genes [start, end) with the equally long gene run
// starting at otherStart in other. This is the workhorse of bit-string
// crossover.
func (c *BitChromosome) SwapRange(start, end int, other *BitChromosome, otherStart int) error {
	if other == nil {
		return fmt.Errorf("%w: nil swap peer", model.ErrInvalidArgument)
	}
	return c.seq.Swap(start, end, other.seq, otherStart, otherStart+(end-start))
}

// Copy returns an eager independent duplicate.
func (c *BitChromosome) Copy() *BitChromosome {
	return &BitChromosome{seq: c.seq.Copy()}
}

// Snapshot returns a chromosome sharing this one's storage copy-on-write:
// both stay readable for free and the first write on either side pays the
// clone.
func (c *BitChromosome) Snapshot() (*BitChromosome, error) {
	c.seq.Seal()
	dup, err := c.seq.Sub(0, c.seq.Len())
	if err != nil {
		return nil, err
	}
	return &BitChromosome{seq: dup}, nil
}

// FlatGene is the default tree gene: an untyped allele plus the child range
// of its flattened node.
type FlatGene struct {
	allele      any
	childOffset int
	childCount  int
}

// NewFlatGene creates a flat tree gene.
func NewFlatGene(allele any, childOffset, childCount int) FlatGene {
	return FlatGene{allele: allele, childOffset: childOffset, childCount: childCount}
}

func (g FlatGene) Allele() any {
	return g.allele
}

func (g FlatGene) IsValid() bool {
	return g.childCount >= 0 && (g.childCount == 0 || g.childOffset > 0)
}

func (g FlatGene) ChildOffset() int {
	return g.childOffset
}

func (g FlatGene) ChildCount() int {
	return g.childCount
}

func (g FlatGene) NewTreeGene(allele any, childOffset, childCount int) (model.TreeGene, error) {
	return NewFlatGene(allele, childOffset, childCount), nil
}

// OpGene is a tree gene whose allele must be a program op. Its template
// enforces the allele kind, so rebuilding a chromosome through the wrong
// template fails instead of silently degrading to untyped genes.
type OpGene struct {
	op          ops.Op
	childOffset int
	childCount  int
}

// NewOpGene creates an op-typed tree gene.
func NewOpGene(op ops.Op, childOffset, childCount int) (OpGene, error) {
	if op == nil {
		return OpGene{}, fmt.Errorf("%w: nil op allele", model.ErrInvalidArgument)
	}
	return OpGene{op: op, childOffset: childOffset, childCount: childCount}, nil
}

func (g OpGene) Allele() any {
	return g.op
}

func (g OpGene) IsValid() bool {
	return g.op != nil && g.childCount == g.op.Arity()
}

func (g OpGene) ChildOffset() int {
	return g.childOffset
}

func (g OpGene) ChildCount() int {
	return g.childCount
}

// Op returns the typed allele.
func (g OpGene) Op() ops.Op {
	return g.op
}

func (g OpGene) NewTreeGene(allele any, childOffset, childCount int) (model.TreeGene, error) {
	op, ok := allele.(ops.Op)
	if !ok {
		return nil, fmt.Errorf("%w: allele %T is not an op", model.ErrInvalidArgument, allele)
	}
	return NewOpGene(op, childOffset, childCount)
}

// TreeChromosome is a fixed-length chromosome whose gene sequence encodes a
// flattened tree.
type TreeChromosome struct {
	genes []model.TreeGene
}

// NewTreeChromosome builds a tree chromosome, validating that the genes
// describe a well-formed flat tree.
func NewTreeChromosome(genes []model.TreeGene) (*TreeChromosome, error) {
	if len(genes) == 0 {
		return nil, fmt.Errorf("%w: tree chromosome requires at least one gene", model.ErrInvalidArgument)
	}
	c := &TreeChromosome{genes: append([]model.TreeGene(nil), genes...)}
	if _, err := c.Tree(); err != nil {
		return nil, fmt.Errorf("malformed flat tree genes: %w", err)
	}
	return c, nil
}

// NewTreeChromosomeOf flattens a tree and encodes it through the given gene
// template.
func NewTreeChromosomeOf(root *tree.Node, template model.TreeGene) (*TreeChromosome, error) {
	if template == nil {
		return nil, fmt.Errorf("%w: nil gene template", model.ErrInvalidArgument)
	}
	flat, err := tree.Flatten(root)
	if err != nil {
		return nil, err
	}
	genes := make([]model.TreeGene, len(flat))
	for i, slot := range flat {
		g, err := template.NewTreeGene(slot.Value, slot.ChildOffset, slot.ChildCount)
		if err != nil {
			return nil, err
		}
		genes[i] = g
	}
	return &TreeChromosome{genes: genes}, nil
}

func (c *TreeChromosome) Length() int {
	return len(c.genes)
}

func (c *TreeChromosome) Gene(index int) (model.Gene, error) {
	if index < 0 || index >= len(c.genes) {
		return nil, fmt.Errorf("%w: gene %d of %d", model.ErrOutOfRange, index, len(c.genes))
	}
	return c.genes[index], nil
}

func (c *TreeChromosome) Genes() []model.Gene {
	out := make([]model.Gene, len(c.genes))
	for i, g := range c.genes {
		out[i] = g
	}
	return out
}

func (c *TreeChromosome) NewInstance(genes []model.Gene) (model.Chromosome, error) {
	treeGenes := make([]model.TreeGene, len(genes))
	for i, g := range genes {
		tg, ok := g.(model.TreeGene)
		if !ok {
			return nil, fmt.Errorf("%w: gene %d is %T, not a tree gene", model.ErrInvalidArgument, i, g)
		}
		treeGenes[i] = tg
	}
	return NewTreeChromosome(treeGenes)
}

// TreeGenes returns an independent copy of the typed gene sequence.
func (c *TreeChromosome) TreeGenes() []model.TreeGene {
	return append([]model.TreeGene(nil), c.genes...)
}

// Template returns the gene-construction template of this chromosome: its
// first gene.
func (c *TreeChromosome) Template() model.TreeGene {
	return c.genes[0]
}

// Tree decodes the gene sequence into a mutable tree.
func (c *TreeChromosome) Tree() (*tree.Node, error) {
	flat := make([]tree.Flat, len(c.genes))
	for i, g := range c.genes {
		flat[i] = tree.Flat{
			Value:       g.Allele(),
			ChildOffset: g.ChildOffset(),
			ChildCount:  g.ChildCount(),
		}
	}
	return tree.Unflatten(flat)
}
