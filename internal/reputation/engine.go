// Package reputation ranks graph entities by damped propagation over the
// trust-typed edge subset, normalized to [0,1].
package reputation

import (
	"math"

	"github.com/Orac-G/agent-trust/internal/graph"
)

const (
	// Damping is the propagation damping factor.
	Damping = 0.85
	// MaxIterations bounds the compute regardless of graph shape.
	MaxIterations = 50
	// Epsilon is the convergence tolerance on the max per-entity delta.
	Epsilon = 0.001

	// degenerateRange is the min-max spread below which every entity is
	// pinned to 0.5 (e.g. a graph with no trust-typed edges).
	degenerateRange = 1e-4
)

// Vector maps entity names to normalized reputation values in [0,1].
// Entities absent from the vector resolve to 0.
type Vector map[string]float64

// Score returns the reputation for name, defaulting to 0.
func (v Vector) Score(name string) float64 {
	return v[name]
}

type inEdge struct {
	source string
	weight float64
}

// Compute derives the reputation vector from a snapshot. The result is
// deterministic for a given snapshot: recomputation yields bitwise-equal
// values after rounding.
func Compute(snapshot *graph.Snapshot) Vector {
	names := make([]string, 0, len(snapshot.Entities))
	known := make(map[string]bool, len(snapshot.Entities))
	for _, entity := range snapshot.Entities {
		names = append(names, entity.Name)
		known[entity.Name] = true
	}

	if len(names) == 0 {
		return Vector{}
	}

	// Derived indices are built once per compute, not per entity.
	outDeg := make(map[string]int, len(names))
	inEdges := make(map[string][]inEdge)
	for _, rel := range snapshot.Relations {
		weight, trusted := graph.TrustWeights[rel.Relation]
		if !trusted || !known[rel.Source] || !known[rel.Target] {
			continue
		}
		outDeg[rel.Source]++
		inEdges[rel.Target] = append(inEdges[rel.Target], inEdge{source: rel.Source, weight: weight})
	}

	scores := make(map[string]float64, len(names))
	for _, name := range names {
		scores[name] = 1.0
	}

	for i := 0; i < MaxIterations; i++ {
		next := make(map[string]float64, len(names))
		maxDelta := 0.0
		for _, name := range names {
			sum := 0.0
			for _, edge := range inEdges[name] {
				deg := outDeg[edge.source]
				if deg < 1 {
					deg = 1
				}
				sum += scores[edge.source] / float64(deg) * edge.weight
			}
			value := (1 - Damping) + Damping*sum
			next[name] = value
			if delta := math.Abs(value - scores[name]); delta > maxDelta {
				maxDelta = delta
			}
		}
		scores = next
		if maxDelta < Epsilon {
			break
		}
	}

	return normalize(names, scores)
}

// normalize applies min-max scaling and four-decimal rounding. A
// degenerate range pins every entity to 0.5.
func normalize(names []string, scores map[string]float64) Vector {
	min, max := math.Inf(1), math.Inf(-1)
	for _, name := range names {
		value := scores[name]
		if value < min {
			min = value
		}
		if value > max {
			max = value
		}
	}

	vector := make(Vector, len(names))
	if max-min < degenerateRange {
		for _, name := range names {
			vector[name] = 0.5
		}
		return vector
	}

	for _, name := range names {
		vector[name] = round4((scores[name] - min) / (max - min))
	}
	return vector
}

func round4(value float64) float64 {
	return math.Round(value*10000) / 10000
}
