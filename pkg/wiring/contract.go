// Package wiring discovers which candidate types implement which capability
// contracts and records them in a Registry, together with every interface
// each contract extends.
//
// Go's reflect package cannot list the interfaces an interface embeds, nor
// the type arguments of an instantiated generic interface, so the interface
// graph is declared explicitly. A Contract names one interface type, its
// shape (the generic interface it instantiates, without arguments), its
// type arguments, and the contracts it extends. Candidates declare the
// contracts they implement; Registry.Add still checks every pair with
// reflect.Type.Implements.
//
// Walking the graph keeps a visited set keyed by interface type, so shared
// ancestors (diamonds) are visited once and cycles terminate.
package wiring

import (
	"fmt"
	"reflect"
	"strings"
)

// Shape identifies a generic contract independent of its type arguments,
// such as "CommandService".
type Shape string

// Contract is one node of the interface graph.
type Contract struct {
	Shape   Shape
	Type    reflect.Type
	Args    []reflect.Type
	Extends []*Contract
}

// NewContract builds the node for interface type I. It panics if I is not
// an interface type, since contract tables are fixed at compile time.
func NewContract[I any](shape Shape, args []reflect.Type, extends ...*Contract) *Contract {
	t := reflect.TypeFor[I]()
	if t.Kind() != reflect.Interface {
		panic(fmt.Sprintf("wiring: contract type %s is not an interface", t))
	}
	return &Contract{Shape: shape, Type: t, Args: args, Extends: extends}
}

// TypeArgs returns the reflect types of its type arguments, for use as
// Contract.Args.
func TypeArgs[A, B any]() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B]()}
}

// Ancestors returns c followed by every contract it transitively extends,
// each interface type once, in depth-first order.
func (c *Contract) Ancestors() []*Contract {
	var out []*Contract
	walk(c, make(map[reflect.Type]bool), func(n *Contract) {
		out = append(out, n)
	})
	return out
}

// walk visits c and its ancestors depth first. A node whose interface type
// is already in visited is skipped along with its subgraph.
func walk(c *Contract, visited map[reflect.Type]bool, visit func(*Contract)) {
	if c == nil || visited[c.Type] {
		return
	}
	visited[c.Type] = true
	visit(c)
	for _, parent := range c.Extends {
		walk(parent, visited, visit)
	}
}

// String renders the contract as Shape[arg, ...].
func (c *Contract) String() string {
	if len(c.Args) == 0 {
		return string(c.Shape)
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s[%s]", c.Shape, strings.Join(args, ", "))
}
