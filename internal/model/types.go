package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error taxonomy shared by every package in the core. Callers match with
// errors.Is; packages wrap these with fmt.Errorf("...: %w", ...) at the
// failure site.
var (
	ErrOutOfRange      = errors.New("index out of range")
	ErrLengthMismatch  = errors.New("length mismatch")
	ErrInvalidState    = errors.New("invalid state")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Gene is the minimal unit of genetic information. Implementations are
// immutable value types.
type Gene interface {
	Allele() any
	IsValid() bool
}

// TreeGene is a gene that encodes one slot of a flattened tree: its allele
// plus the contiguous range its children occupy in the same gene sequence.
//
// NewTreeGene is the gene-construction template: it builds a gene of the same
// concrete kind as the receiver. Operators that rebuild a chromosome must take
// the template from that chromosome's own first gene and never mix templates
// across chromosomes or parents.
type TreeGene interface {
	Gene
	ChildOffset() int
	ChildCount() int
	NewTreeGene(allele any, childOffset, childCount int) (TreeGene, error)
}

// Chromosome is a fixed-length ordered sequence of genes of one concrete
// gene kind. Length never changes for the lifetime of a chromosome; only
// gene values differ across instances.
type Chromosome interface {
	Length() int
	Gene(index int) (Gene, error)
	Genes() []Gene
	// NewInstance builds a chromosome of the same concrete kind and length
	// from the given genes.
	NewInstance(genes []Gene) (Chromosome, error)
}

// Genotype is an ordered collection of chromosomes representing one
// candidate solution's encoding.
type Genotype struct {
	chromosomes []Chromosome
}

// NewGenotype builds a genotype from one or more chromosomes.
func NewGenotype(chromosomes ...Chromosome) (Genotype, error) {
	if len(chromosomes) == 0 {
		return Genotype{}, fmt.Errorf("%w: genotype requires at least one chromosome", ErrInvalidState)
	}
	for i, c := range chromosomes {
		if c == nil {
			return Genotype{}, fmt.Errorf("%w: chromosome %d is nil", ErrInvalidState, i)
		}
	}
	return Genotype{chromosomes: append([]Chromosome(nil), chromosomes...)}, nil
}

// Length reports the number of chromosomes.
func (g Genotype) Length() int {
	return len(g.chromosomes)
}

// Chromosome returns the chromosome at index.
func (g Genotype) Chromosome(index int) (Chromosome, error) {
	if index < 0 || index >= len(g.chromosomes) {
		return nil, ErrOutOfRange
	}
	return g.chromosomes[index], nil
}

// Chromosomes returns an independent copy of the chromosome sequence.
func (g Genotype) Chromosomes() []Chromosome {
	return append([]Chromosome(nil), g.chromosomes...)
}

// Phenotype is a genotype stamped with its originating generation and an
// externally computed fitness. Immutable once created: operators always
// produce new phenotypes, never mutate one in place.
type Phenotype struct {
	ID         string   `json:"id"`
	Genotype   Genotype `json:"-"`
	Generation int      `json:"generation"`
	Fitness    float64  `json:"fitness"`
	Evaluated  bool     `json:"evaluated"`
}

// NewPhenotype creates an unevaluated phenotype with a fresh identity.
func NewPhenotype(genotype Genotype, generation int) Phenotype {
	return Phenotype{
		ID:         uuid.NewString(),
		Genotype:   genotype,
		Generation: generation,
	}
}

// WithFitness returns a copy of the phenotype carrying the given fitness.
func (p Phenotype) WithFitness(fitness float64) Phenotype {
	out := p
	out.Fitness = fitness
	out.Evaluated = true
	return out
}
