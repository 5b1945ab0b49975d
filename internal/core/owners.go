package core

import (
	"fmt"
	"strconv"
)

// ResizeContributions reconciles the owner list with a new family size.
// Existing owners keep their position, names and amounts; missing owners are
// appended as "Person N" with nothing paid. The input slice is never modified.
func ResizeContributions(current []Contribution, size int) []Contribution {
	if size < 1 {
		size = 1
	}
	out := make([]Contribution, 0, size)
	for i := 0; i < len(current) && i < size; i++ {
		out = append(out, current[i])
	}
	for i := len(out); i < size; i++ {
		out = append(out, DefaultContribution(i))
	}
	return out
}

// DefaultContribution is the placeholder owner at zero-based position i.
func DefaultContribution(i int) Contribution {
	return Contribution{
		ID:   strconv.Itoa(i + 1),
		Name: fmt.Sprintf("Person %d", i+1),
	}
}

// EqualContributions builds a fully balanced owner set for the given price.
func EqualContributions(price float64, size int) []Contribution {
	out := ResizeContributions(nil, size)
	share := price / float64(len(out))
	for i := range out {
		out[i].Amount = share
	}
	return out
}
