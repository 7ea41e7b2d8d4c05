// Package callgraph models the function call graph: an adjacency map over
// stable FunctionID keys with caller/callee sets, transitive traversal,
// reachability, and node classification. The graph is built once, then
// treated as an immutable snapshot by every downstream analyzer.
package callgraph

import (
	"fmt"
	"sort"

	"github.com/burden-dev/burden/pkg/ir"
	"github.com/burden-dev/burden/pkg/models"
)

// DefaultMaxDepth bounds transitive traversals when callers pass 0.
const DefaultMaxDepth = 3

// Node carries the per-function metadata the graph needs for classification.
type Node struct {
	ID         models.FunctionID
	Visibility ir.Visibility
	IsTest     bool
	// Unresolved marks endpoints auto-registered by AddCall for which no
	// extraction record exists (dynamic dispatch, external symbols). They
	// stay in the graph as first-class nodes with role Unknown.
	Unresolved bool
	entry      bool
}

// Builder accumulates nodes and edges. Malformed ids are rejected here, at
// the construction boundary, with a descriptive error; the graph never holds
// a dangling edge endpoint.
type Builder struct {
	nodes      map[models.FunctionID]*Node
	callers    map[models.FunctionID]map[models.FunctionID]struct{}
	callees    map[models.FunctionID]map[models.FunctionID]struct{}
	predicates []Predicate
}

// Option configures a Builder.
type Option func(*Builder)

// WithEntryPredicates replaces the entry-point predicate set.
func WithEntryPredicates(preds ...Predicate) Option {
	return func(b *Builder) {
		b.predicates = preds
	}
}

// NewBuilder creates an empty graph builder with the default entry-point
// predicates.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		nodes:      make(map[models.FunctionID]*Node),
		callers:    make(map[models.FunctionID]map[models.FunctionID]struct{}),
		callees:    make(map[models.FunctionID]map[models.FunctionID]struct{}),
		predicates: DefaultPredicates(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddFunction registers a node. Re-adding an id upgrades a previously
// auto-registered unresolved node with real metadata.
func (b *Builder) AddFunction(n Node) error {
	if err := n.ID.Validate(); err != nil {
		return fmt.Errorf("add function: %w", err)
	}
	if existing, ok := b.nodes[n.ID]; ok && !existing.Unresolved {
		return nil
	}
	node := n
	b.nodes[n.ID] = &node
	b.ensureEdgeSets(n.ID)
	return nil
}

// AddCall records a caller -> callee edge. Unknown endpoints are
// auto-registered as unresolved nodes; self-loops are allowed (recursion).
func (b *Builder) AddCall(caller, callee models.FunctionID) error {
	if err := caller.Validate(); err != nil {
		return fmt.Errorf("add call: caller: %w", err)
	}
	if err := callee.Validate(); err != nil {
		return fmt.Errorf("add call: callee: %w", err)
	}
	b.autoRegister(caller)
	b.autoRegister(callee)
	b.callees[caller][callee] = struct{}{}
	b.callers[callee][caller] = struct{}{}
	return nil
}

func (b *Builder) autoRegister(id models.FunctionID) {
	if _, ok := b.nodes[id]; !ok {
		b.nodes[id] = &Node{ID: id, Visibility: ir.VisibilityUnknown, Unresolved: true}
	}
	b.ensureEdgeSets(id)
}

func (b *Builder) ensureEdgeSets(id models.FunctionID) {
	if b.callers[id] == nil {
		b.callers[id] = make(map[models.FunctionID]struct{})
	}
	if b.callees[id] == nil {
		b.callees[id] = make(map[models.FunctionID]struct{})
	}
}

// Build finalizes the graph. Entry points are evaluated once here so the
// snapshot is fully read-only afterwards.
func (b *Builder) Build() *Graph {
	ids := make([]models.FunctionID, 0, len(b.nodes))
	for id, node := range b.nodes {
		ids = append(ids, id)
		node.entry = evalPredicates(b.predicates, node)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	g := &Graph{
		nodes:   b.nodes,
		callers: b.callers,
		callees: b.callees,
		ids:     ids,
	}
	g.index = make(map[models.FunctionID]uint32, len(ids))
	for i, id := range ids {
		g.index[id] = uint32(i)
	}
	g.markReachable()
	return g
}

// Graph is the immutable call graph snapshot.
type Graph struct {
	nodes   map[models.FunctionID]*Node
	callers map[models.FunctionID]map[models.FunctionID]struct{}
	callees map[models.FunctionID]map[models.FunctionID]struct{}

	// ids is the deterministic node ordering; index maps into it and into
	// the reachability bitmap.
	ids   []models.FunctionID
	index map[models.FunctionID]uint32

	reachable *reachSet
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.ids) }

// IDs returns all node ids in deterministic order.
func (g *Graph) IDs() []models.FunctionID { return g.ids }

// Node returns the node metadata for id.
func (g *Graph) Node(id models.FunctionID) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// IsEntryPoint reports whether id matched an entry-point predicate.
func (g *Graph) IsEntryPoint(id models.FunctionID) bool {
	n, ok := g.nodes[id]
	return ok && n.entry
}

// Callers returns the direct callers of id in deterministic order.
func (g *Graph) Callers(id models.FunctionID) []models.FunctionID {
	return sortedSet(g.callers[id])
}

// Callees returns the direct callees of id in deterministic order.
func (g *Graph) Callees(id models.FunctionID) []models.FunctionID {
	return sortedSet(g.callees[id])
}

// CallerCount returns the number of direct callers (fan-in).
func (g *Graph) CallerCount(id models.FunctionID) int { return len(g.callers[id]) }

// CalleeCount returns the number of direct callees (fan-out).
func (g *Graph) CalleeCount(id models.FunctionID) int { return len(g.callees[id]) }

// TransitiveCaller is one node discovered during upward traversal, with its
// hop distance from the origin.
type TransitiveCaller struct {
	ID       models.FunctionID
	Distance int
}

// TransitiveCallers walks the caller graph breadth-first up to maxDepth hops
// (DefaultMaxDepth when 0). The visited set guarantees termination on cycles
// and that no node is recorded twice; BFS order guarantees each node is seen
// at its shortest distance first. The origin itself is never included.
func (g *Graph) TransitiveCallers(id models.FunctionID, maxDepth int) []TransitiveCaller {
	return g.traverse(id, maxDepth, g.callers)
}

// TransitiveCallees is the downward counterpart of TransitiveCallers.
func (g *Graph) TransitiveCallees(id models.FunctionID, maxDepth int) []TransitiveCaller {
	return g.traverse(id, maxDepth, g.callees)
}

func (g *Graph) traverse(origin models.FunctionID, maxDepth int, adj map[models.FunctionID]map[models.FunctionID]struct{}) []TransitiveCaller {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	type item struct {
		id    models.FunctionID
		depth int
	}
	visited := map[models.FunctionID]struct{}{origin: {}}
	queue := []item{{origin, 0}}
	var out []TransitiveCaller

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		if cur.depth >= maxDepth {
			continue
		}
		for _, next := range sortedSet(adj[cur.id]) {
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			out = append(out, TransitiveCaller{ID: next, Distance: cur.depth + 1})
			queue = append(queue, item{next, cur.depth + 1})
		}
	}
	return out
}

// Classify assigns each node exactly one class. A self-edge counts as both a
// caller and a callee, so a recursive function is never Isolated.
func (g *Graph) Classify(id models.FunctionID) models.NodeClass {
	n, ok := g.nodes[id]
	if !ok {
		return models.NodeIsolated
	}
	if n.entry {
		return models.NodeEntry
	}
	hasCallers := len(g.callers[id]) > 0
	hasCallees := len(g.callees[id]) > 0
	switch {
	case hasCallers && !hasCallees:
		return models.NodeLeaf
	case !hasCallers && !hasCallees:
		return models.NodeIsolated
	case !hasCallers && hasCallees:
		return models.NodeUnreachable
	default:
		return models.NodeInterior
	}
}

// Reachable reports whether id is reachable from any entry point.
func (g *Graph) Reachable(id models.FunctionID) bool {
	idx, ok := g.index[id]
	if !ok {
		return false
	}
	return g.reachable.isSet(idx)
}

// ReachableCount returns the number of nodes reachable from entry points.
func (g *Graph) ReachableCount() uint64 { return g.reachable.count() }

// markReachable runs BFS from every entry point over callee edges.
func (g *Graph) markReachable() {
	g.reachable = newReachSet()
	var queue []models.FunctionID
	for _, id := range g.ids {
		if g.nodes[id].entry {
			g.reachable.set(g.index[id])
			queue = append(queue, id)
		}
	}
	for head := 0; head < len(queue); head++ {
		for callee := range g.callees[queue[head]] {
			idx := g.index[callee]
			if !g.reachable.isSet(idx) {
				g.reachable.set(idx)
				queue = append(queue, callee)
			}
		}
	}
}

// IsDelegator reports whether a function mostly hands work to callees: low
// own complexity and several outgoing calls. Used by role classification to
// spot orchestrators.
func (g *Graph) IsDelegator(id models.FunctionID, ownComplexity uint32) bool {
	return ownComplexity <= 3 && len(g.callees[id]) >= 3
}

func sortedSet(set map[models.FunctionID]struct{}) []models.FunctionID {
	if len(set) == 0 {
		return nil
	}
	out := make([]models.FunctionID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
