package callgraph

import (
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/burden-dev/burden/pkg/models"
)

// PageRank damping and tolerance follow the usual literature values.
const (
	pageRankDamping   = 0.85
	pageRankTolerance = 1e-6
)

// PageRank computes PageRank over the call graph. Edges point caller to
// callee, so heavily depended-on functions accumulate rank. The result feeds
// the dependency factor during score composition.
func (g *Graph) PageRank() map[models.FunctionID]float64 {
	ranks := make(map[models.FunctionID]float64, len(g.ids))
	if len(g.ids) == 0 {
		return ranks
	}

	dg := simple.NewDirectedGraph()
	for i := range g.ids {
		dg.AddNode(simple.Node(int64(i)))
	}
	for caller, callees := range g.callees {
		from := int64(g.index[caller])
		for callee := range callees {
			to := int64(g.index[callee])
			if from == to {
				// gonum rejects self-edges; recursion does not add rank.
				continue
			}
			dg.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		}
	}

	pr := network.PageRank(dg, pageRankDamping, pageRankTolerance)
	for i, id := range g.ids {
		ranks[id] = pr[int64(i)]
	}
	return ranks
}

// NormalizedPageRank rescales ranks to [0, 1] by the maximum rank, giving a
// comparable centrality score across graphs of different sizes.
func (g *Graph) NormalizedPageRank() map[models.FunctionID]float64 {
	ranks := g.PageRank()
	var max float64
	for _, r := range ranks {
		if r > max {
			max = r
		}
	}
	if max == 0 {
		return ranks
	}
	for id, r := range ranks {
		ranks[id] = r / max
	}
	return ranks
}
