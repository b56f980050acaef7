package wiring

import (
	"fmt"
	"reflect"
	"strings"
)

// Candidate is a concrete type offered to a discovery pass together with the
// contracts it declares.
type Candidate struct {
	Type     reflect.Type
	Declares []*Contract
}

// CandidateOf builds the candidate for T.
func CandidateOf[T any](declares ...*Contract) Candidate {
	return Candidate{Type: reflect.TypeFor[T](), Declares: declares}
}

// Descriptor records one match found by Discover: Implementation declares
// Declared, and Matched (Declared itself or one of its ancestors) has a
// target shape. Args are Matched's type arguments in declaration order.
type Descriptor struct {
	Implementation reflect.Type
	Declared       *Contract
	Matched        *Contract
	Args           []reflect.Type
}

// String names the implementation, its declared contract and the matched
// ancestor when they differ.
func (d Descriptor) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s implements %s", d.Implementation, d.Declared)
	if d.Matched != d.Declared {
		fmt.Fprintf(&b, " via %s", d.Matched)
	}
	return b.String()
}

// Discover scans pool for candidates implementing any of the target shapes.
// Interface and nil candidate types are skipped, as are declared contracts
// the candidate does not actually implement. For each declared contract the
// first ancestor with a target shape wins.
func Discover(pool []Candidate, targets ...Shape) []Descriptor {
	want := make(map[Shape]bool, len(targets))
	for _, s := range targets {
		want[s] = true
	}

	var out []Descriptor
	for _, cand := range pool {
		if cand.Type == nil || cand.Type.Kind() == reflect.Interface {
			continue
		}
		for _, declared := range cand.Declares {
			if declared == nil || !cand.Type.Implements(declared.Type) {
				continue
			}
			for _, anc := range declared.Ancestors() {
				if !want[anc.Shape] {
					continue
				}
				out = append(out, Descriptor{
					Implementation: cand.Type,
					Declared:       declared,
					Matched:        anc,
					Args:           anc.Args,
				})
				break
			}
		}
	}
	return out
}

// Scan runs Discover over pool and registers each match's declared contract
// with its full ancestor graph. Entries get the Scoped lifetime unless
// WithLifetime says otherwise. It returns the number of new entries; a
// repeated pass over the same pool adds none.
func (r *Registry) Scan(pool []Candidate, targets []Shape, opts ...Option) (int, error) {
	o := newOptions(Scoped, opts)
	added := 0
	for _, d := range Discover(pool, targets...) {
		n, err := r.RecursiveAdd(d.Declared, d.Implementation, WithLifetime(o.lifetime))
		added += n
		if err != nil {
			return added, fmt.Errorf("register %s: %w", d, err)
		}
	}
	return added, nil
}
