// Package graph analyzes the include graph and computes PageRank over it.
package graph

import (
	"math"
	"sort"

	"github.com/phobologic/partials/internal/model"
)

// Build deduplicates include edges and sorts them by source, then target.
func Build(edges []model.Dependency) []model.Dependency {
	seen := make(map[model.Dependency]struct{}, len(edges))
	var deps []model.Dependency
	for _, e := range edges {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		deps = append(deps, e)
	}

	// Sort for deterministic output
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Source != deps[j].Source {
			return deps[i].Source < deps[j].Source
		}
		return deps[i].Target < deps[j].Target
	})

	return deps
}

// Rank returns every included file with the number of distinct files
// including it and its PageRank, most central first.
func Rank(deps []model.Dependency) []model.PartialInfo {
	if len(deps) == 0 {
		return nil
	}

	g := newIncludeGraph(deps)
	ranks := g.pageRank(0.85, 100, 1e-6)

	partials := make([]model.PartialInfo, 0, len(g.includers))
	for _, path := range sortedKeys(g.includers) {
		partials = append(partials, model.PartialInfo{
			Path: path,
			Uses: len(g.includers[path]),
			Rank: ranks[path],
		})
	}

	sort.SliceStable(partials, func(i, j int) bool {
		return partials[i].Rank > partials[j].Rank
	})

	return partials
}

// Affected returns the files that include any of changed, directly or
// transitively, together with changed itself, sorted.
func Affected(deps []model.Dependency, changed []string) []string {
	includedBy := make(map[string][]string)
	for _, d := range deps {
		includedBy[d.Target] = append(includedBy[d.Target], d.Source)
	}

	seen := make(map[string]struct{})
	queue := append([]string(nil), changed...)
	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		queue = append(queue, includedBy[path]...)
	}

	return sortedKeys(seen)
}

// includeGraph is the adjacency of an include edge list. Nodes are
// sorted so rank sums are accumulated in a fixed order.
type includeGraph struct {
	nodes     []string
	includes  map[string][]string
	includers map[string]map[string]struct{}
}

func newIncludeGraph(deps []model.Dependency) *includeGraph {
	g := &includeGraph{
		includes:  make(map[string][]string),
		includers: make(map[string]map[string]struct{}),
	}
	seen := make(map[string]struct{})
	for _, d := range deps {
		seen[d.Source] = struct{}{}
		seen[d.Target] = struct{}{}
		g.includes[d.Source] = append(g.includes[d.Source], d.Target)
		if g.includers[d.Target] == nil {
			g.includers[d.Target] = make(map[string]struct{})
		}
		g.includers[d.Target][d.Source] = struct{}{}
	}
	g.nodes = sortedKeys(seen)
	return g
}

// pageRank iterates until the L1 change drops below tol or maxIter
// rounds have run.
func (g *includeGraph) pageRank(damping float64, maxIter int, tol float64) map[string]float64 {
	n := len(g.nodes)
	if n == 0 {
		return nil
	}

	index := make(map[string]int, n)
	for i, node := range g.nodes {
		index[node] = i
	}

	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1 / float64(n)
	}
	next := make([]float64, n)

	for range maxIter {
		// Leaf partials include nothing; their rank is shared by every node.
		var leaked float64
		for i, node := range g.nodes {
			if len(g.includes[node]) == 0 {
				leaked += rank[i]
			}
		}
		base := (1-damping)/float64(n) + damping*leaked/float64(n)
		for i := range next {
			next[i] = base
		}

		for i, node := range g.nodes {
			targets := g.includes[node]
			for _, t := range targets {
				next[index[t]] += damping * rank[i] / float64(len(targets))
			}
		}

		var delta float64
		for i := range rank {
			delta += math.Abs(next[i] - rank[i])
		}
		rank, next = next, rank
		if delta < tol {
			break
		}
	}

	ranks := make(map[string]float64, n)
	for i, node := range g.nodes {
		ranks[node] = rank[i]
	}
	return ranks
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
