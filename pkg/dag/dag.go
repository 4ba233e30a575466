package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrGraphHasCycle is returned by [DAG.Validate] when the requirement
	// edges form a directed cycle.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph,
// such as the installed version or whether a mod was added automatically.
type Metadata map[string]any

// Node is a mod in the requirement graph.
type Node struct {
	ID   string   // Mod identifier, also used as the default label
	Meta Metadata // Never nil after AddNode
}

// Label returns the "title" metadata if present, otherwise the ID.
func (n Node) Label() string {
	if t, ok := n.Meta["title"].(string); ok && t != "" {
		return t
	}
	return n.ID
}

// Edge points from a mod to one of the mods it requires.
type Edge struct {
	From string
	To   string
	Meta Metadata
}

// DAG is a directed graph of mods and their requirements. Edges are kept in
// insertion order; node listings are sorted by ID.
//
// The zero value is not usable; use New.
// DAG is not safe for concurrent use.
type DAG struct {
	nodes    map[string]*Node
	edges    []Edge
	outgoing map[string][]string
	incoming map[string][]string
	meta     Metadata
}

// New returns an empty graph carrying the given graph-level metadata.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata.
func (d *DAG) Meta() Metadata { return d.meta }

// AddNode inserts n. The ID must be non-empty and unique.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, ok := d.nodes[n.ID]; ok {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	d.nodes[n.ID] = &n
	return nil
}

// AddEdge connects two existing nodes. Adding the same edge twice is a no-op.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if slices.Contains(d.outgoing[e.From], e.To) {
		return nil
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// Node returns the node with the given ID.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Nodes returns all nodes sorted by ID.
func (d *DAG) Nodes() []*Node {
	ids := slices.Sorted(maps.Keys(d.nodes))
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = d.nodes[id]
	}
	return out
}

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

func (d *DAG) NodeCount() int { return len(d.nodes) }
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the IDs the node requires.
func (d *DAG) Children(id string) []string { return slices.Clone(d.outgoing[id]) }

// Parents returns the IDs of nodes that require id.
func (d *DAG) Parents(id string) []string { return slices.Clone(d.incoming[id]) }

// Sources returns nodes nothing else requires, sorted by ID.
func (d *DAG) Sources() []*Node {
	return d.filter(func(id string) bool { return len(d.incoming[id]) == 0 })
}

// Sinks returns nodes that require nothing, sorted by ID.
func (d *DAG) Sinks() []*Node {
	return d.filter(func(id string) bool { return len(d.outgoing[id]) == 0 })
}

func (d *DAG) filter(keep func(string) bool) []*Node {
	var out []*Node
	for _, n := range d.Nodes() {
		if keep(n.ID) {
			out = append(out, n)
		}
	}
	return out
}

// Validate reports ErrGraphHasCycle if the requirement edges form a cycle.
// Cycles are legal in a manifest, so callers typically only warn.
func (d *DAG) Validate() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for _, n := range d.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}
