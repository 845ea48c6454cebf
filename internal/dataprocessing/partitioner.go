package dataprocessing

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"shiprisk/internal/errors"
	"shiprisk/pkg/contracts/domain"
)

// Partition names
const (
	PartitionTrain      = "train"
	PartitionValidation = "validation"
	PartitionTest       = "test"
)

// SplitOptions controls the stratified split.
type SplitOptions struct {
	TrainFraction          float64
	ValFractionOfRemainder float64
	Seed                   int64
}

// Partition holds three disjoint, sorted row-index sets.
type Partition struct {
	Train      []int `json:"train"`
	Validation []int `json:"validation"`
	Test       []int `json:"test"`
}

// Split assigns every row to exactly one of train, validation and test,
// class by class, so each subset keeps the input's class balance.
// Identical labels and seed always give the identical partition.
func Split(labels []int, opts SplitOptions) (*Partition, error) {
	if opts.TrainFraction <= 0 || opts.TrainFraction >= 1 {
		return nil, fmt.Errorf("train fraction must be in (0,1), got %v", opts.TrainFraction)
	}
	if opts.ValFractionOfRemainder <= 0 || opts.ValFractionOfRemainder >= 1 {
		return nil, fmt.Errorf("validation fraction must be in (0,1), got %v", opts.ValFractionOfRemainder)
	}
	if len(labels) == 0 {
		return nil, errors.NewEmptyPartitionError("cannot split an empty dataset")
	}

	groups := map[int][]int{domain.Late: nil, domain.OnTime: nil}
	for i, y := range labels {
		groups[y] = append(groups[y], i)
	}
	classes := make([]int, 0, len(groups))
	for c := range groups {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	rng := rand.New(rand.NewPCG(uint64(opts.Seed), 0x5EED))
	p := &Partition{}
	for _, c := range classes {
		members := groups[c]
		if len(members) == 0 {
			return nil, errors.NewEmptyPartitionError(fmt.Sprintf("class %d has no rows to split", c)).
				WithContext("class", c)
		}
		rng.Shuffle(len(members), func(i, j int) {
			members[i], members[j] = members[j], members[i]
		})

		nTrain := int(math.Round(opts.TrainFraction * float64(len(members))))
		rest := members[nTrain:]
		nVal := int(math.Round(opts.ValFractionOfRemainder * float64(len(rest))))

		p.Train = append(p.Train, members[:nTrain]...)
		p.Validation = append(p.Validation, rest[:nVal]...)
		p.Test = append(p.Test, rest[nVal:]...)
	}

	sort.Ints(p.Train)
	sort.Ints(p.Validation)
	sort.Ints(p.Test)
	return p, nil
}

// IndexSet is one named subset of a partition
type IndexSet struct {
	Name    string
	Indices []int
}

// Sets returns the three subsets in report order
func (p *Partition) Sets() []IndexSet {
	return []IndexSet{
		{PartitionTrain, p.Train},
		{PartitionValidation, p.Validation},
		{PartitionTest, p.Test},
	}
}

// Balance summarises the class mix of a labelled subset
func Balance(name string, labels []int) domain.PartitionBalance {
	b := domain.PartitionBalance{Name: name, Rows: len(labels)}
	for _, y := range labels {
		if y == domain.OnTime {
			b.OnTime++
		} else {
			b.Late++
		}
	}
	b.OnTimePct = domain.Number(math.NaN())
	if b.Rows > 0 {
		b.OnTimePct = domain.Number(100 * float64(b.OnTime) / float64(b.Rows))
	}
	return b
}
