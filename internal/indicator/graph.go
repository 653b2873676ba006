package indicator

import (
	"fmt"
	"sort"

	"stocklens/internal/contracts"
)

// ErrCyclicDependency is returned when the spec set cannot be evaluated in
// topological order.
var ErrCyclicDependency = fmt.Errorf("cyclic indicator dependency")

// depGraph is the explicit dependency graph over a spec set: an arena of
// nodes with index-based edges, so cycle detection and evaluation order
// stay observable instead of hiding inside recursive evaluation.
type depGraph struct {
	specs   []contracts.IndicatorSpec
	byName  map[string]int
	edges   [][]int // edges[i] = indices depending on i
	inDegal []int
}

// buildGraph indexes the specs and wires the edges. Unknown dependency
// names are an error here; the config loader reports them as configuration
// errors before any run starts.
func buildGraph(specs []contracts.IndicatorSpec) (*depGraph, error) {
	g := &depGraph{
		specs:   specs,
		byName:  make(map[string]int, len(specs)),
		edges:   make([][]int, len(specs)),
		inDegal: make([]int, len(specs)),
	}

	for i, s := range specs {
		if _, dup := g.byName[s.Name]; dup {
			return nil, fmt.Errorf("duplicate indicator name %q", s.Name)
		}
		g.byName[s.Name] = i
	}

	for i, s := range specs {
		for _, dep := range s.DependsOn {
			j, ok := g.byName[dep]
			if !ok {
				return nil, fmt.Errorf("indicator %q depends on unknown indicator %q", s.Name, dep)
			}
			g.edges[j] = append(g.edges[j], i)
			g.inDegal[i]++
		}
	}

	return g, nil
}

// topoOrder runs Kahn's algorithm and returns spec indices in evaluation
// order, failing with ErrCyclicDependency before any computation runs.
// Ready nodes are drained in name order so the evaluation order is
// deterministic across runs.
func (g *depGraph) topoOrder() ([]int, error) {
	inDeg := make([]int, len(g.inDegal))
	copy(inDeg, g.inDegal)

	var ready []int
	for i, d := range inDeg {
		if d == 0 {
			ready = append(ready, i)
		}
	}
	g.sortByName(ready)

	order := make([]int, 0, len(g.specs))
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		order = append(order, i)

		var unlocked []int
		for _, j := range g.edges[i] {
			inDeg[j]--
			if inDeg[j] == 0 {
				unlocked = append(unlocked, j)
			}
		}
		g.sortByName(unlocked)
		ready = append(ready, unlocked...)
	}

	if len(order) != len(g.specs) {
		var stuck []string
		for i, d := range inDeg {
			if d > 0 {
				stuck = append(stuck, g.specs[i].Name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w: involving %v", ErrCyclicDependency, stuck)
	}

	return order, nil
}

func (g *depGraph) sortByName(idx []int) {
	sort.Slice(idx, func(a, b int) bool {
		return g.specs[idx[a]].Name < g.specs[idx[b]].Name
	})
}
