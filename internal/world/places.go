// Package world holds the place graph and the weather field the
// simulation runs against.
package world

import "sort"

// Place is one named location personas can occupy.
type Place struct {
	Name      string   `json:"name" yaml:"name"`
	Kind      string   `json:"kind" yaml:"kind"`
	Neighbors []string `json:"neighbors" yaml:"neighbors"`
}

// Graph is the registry of places and their adjacency.
type Graph struct {
	places map[string]*Place
}

// NewGraph builds a graph from a place list. An adjacency listed on either
// side counts for both.
func NewGraph(places []Place) *Graph {
	g := &Graph{places: make(map[string]*Place, len(places))}
	for i := range places {
		p := places[i]
		g.places[p.Name] = &p
	}
	for _, p := range g.places {
		for _, n := range p.Neighbors {
			if q, ok := g.places[n]; ok && !contains(q.Neighbors, p.Name) {
				q.Neighbors = append(q.Neighbors, p.Name)
			}
		}
	}
	return g
}

// Has reports whether a place exists.
func (g *Graph) Has(name string) bool {
	_, ok := g.places[name]
	return ok
}

// Get returns a place by name.
func (g *Graph) Get(name string) (*Place, bool) {
	p, ok := g.places[name]
	return p, ok
}

// Neighbors returns the sorted neighbor names of a place.
func (g *Graph) Neighbors(name string) []string {
	p, ok := g.places[name]
	if !ok || len(p.Neighbors) == 0 {
		return nil
	}
	out := append([]string(nil), p.Neighbors...)
	sort.Strings(out)
	return out
}

// Adjacent reports whether two places share an edge.
func (g *Graph) Adjacent(a, b string) bool {
	p, ok := g.places[a]
	if !ok {
		return false
	}
	return contains(p.Neighbors, b)
}

// Names returns all place names, sorted.
func (g *Graph) Names() []string {
	out := make([]string, 0, len(g.places))
	for name := range g.places {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of places.
func (g *Graph) Len() int {
	return len(g.places)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
