package deps

import (
	"slices"
	"time"

	"github.com/matzehuels/modsync/pkg/dag"
	"github.com/matzehuels/modsync/pkg/manifest"
	"github.com/matzehuels/modsync/pkg/mods"
)

// Node is one reachable mod for the duration of a run: the manifest fields
// plus the manual entries that pulled it in.
type Node struct {
	ID             string
	URL            string
	Title          string
	CurrentVersion string
	GameVersion    string
	LockToVersion  string
	Requires       []string
	LastUpdated    *time.Time
	Auto           bool
	Disabled       bool

	// RequiredBy lists the manual mod ids that transitively need this node.
	// It is only populated for auto nodes.
	RequiredBy []string
}

// Locked reports whether the node is pinned to a specific version.
func (n *Node) Locked() bool { return n.LockToVersion != "" }

// Fresh reports whether the node was resolved less than window ago.
func (n *Node) Fresh(now time.Time, window time.Duration) bool {
	if n.LastUpdated == nil || window <= 0 {
		return false
	}
	return now.Sub(*n.LastUpdated) < window
}

// Entry converts the node back into its persisted form.
func (n *Node) Entry() manifest.Entry {
	e := manifest.Entry{
		Title:         n.Title,
		URL:           n.URL,
		Version:       n.CurrentVersion,
		GameVersion:   n.GameVersion,
		LockToVersion: n.LockToVersion,
		Requires:      slices.Clone(n.Requires),
		Auto:          n.Auto,
		Disabled:      n.Disabled,
	}
	if n.LastUpdated != nil {
		t := *n.LastUpdated
		e.LastUpdated = &t
	}
	return e
}

func (n *Node) addRequiredBy(id string) {
	if !slices.Contains(n.RequiredBy, id) {
		n.RequiredBy = append(n.RequiredBy, id)
	}
}

func (n *Node) seed(e manifest.Entry) {
	if e.Title != "" {
		n.Title = e.Title
	}
	n.CurrentVersion = e.Version
	n.GameVersion = e.GameVersion
	n.LockToVersion = e.LockToVersion
	n.LastUpdated = e.LastUpdated
	n.Disabled = e.Disabled
	if len(e.Requires) > 0 || !n.Auto {
		n.Requires = slices.Clone(e.Requires)
	}
}

// Graph is the resolved node set of a manifest.
type Graph struct {
	nodes map[string]*Node
	order []string
}

// Resolve expands the manually declared entries of m into the full set of
// reachable mods. Manual entries are visited in sorted key order; each one's
// requirements are followed transitively through auto entries, and every
// auto node records which manual roots reach it.
func Resolve(m manifest.Manifest) *Graph {
	g := &Graph{nodes: make(map[string]*Node)}

	for _, key := range m.IDs() {
		e := m[key]
		if e.Auto {
			continue
		}
		id := entryID(key, e)
		n, ok := g.nodes[id]
		if !ok {
			n = g.add(id, e.URL)
		}
		// A mod declared by hand is never an auto dependency, even if an
		// earlier root already pulled it in.
		n.Auto = false
		n.RequiredBy = nil
		n.URL = e.URL
		n.seed(e)

		g.expand(id, e.Requires, m)
	}
	return g
}

func (g *Graph) expand(root string, requires []string, m manifest.Manifest) {
	visited := map[string]bool{root: true}
	queue := slices.Clone(requires)
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		id := mods.IDFromURL(u)
		if id == "" || visited[id] {
			continue
		}
		visited[id] = true

		n, ok := g.nodes[id]
		if !ok {
			n = g.add(id, mods.NormalizeURL(u))
			n.Auto = true
			if e, ok := m[id]; ok {
				n.seed(e)
			}
		}
		if !n.Auto {
			continue
		}
		n.addRequiredBy(root)
		queue = append(queue, n.Requires...)
	}
}

func (g *Graph) add(id, url string) *Node {
	n := &Node{ID: id, URL: url}
	g.nodes[id] = n
	g.order = append(g.order, id)
	return n
}

func entryID(key string, e manifest.Entry) string {
	if id := mods.IDFromURL(e.URL); id != "" && id != "." && id != "/" {
		return id
	}
	return key
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Has reports whether id is part of the resolved set.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of resolved nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns the nodes in expansion order, the order in which they
// should be fetched.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// IsOrphan reports whether an archive stored under id is no longer needed:
// the id is not in the resolved set, or it is an auto node none of whose
// requiring roots is still resolved.
func (g *Graph) IsOrphan(id string) bool {
	n, ok := g.nodes[id]
	if !ok {
		return true
	}
	if !n.Auto {
		return false
	}
	for _, r := range n.RequiredBy {
		if g.Has(r) {
			return false
		}
	}
	return true
}

// DAG builds the requirement graph view used for export. Node metadata
// carries the title, installed version and auto/disabled flags.
func (g *Graph) DAG() *dag.DAG {
	d := dag.New(dag.Metadata{"nodes": len(g.nodes)})
	for _, n := range g.Nodes() {
		meta := dag.Metadata{"auto": n.Auto, "disabled": n.Disabled}
		if n.Title != "" {
			meta["title"] = n.Title
		}
		if n.CurrentVersion != "" {
			meta["version"] = n.CurrentVersion
		}
		if n.Locked() {
			meta["locked"] = n.LockToVersion
		}
		_ = d.AddNode(dag.Node{ID: n.ID, Meta: meta})
	}
	for _, n := range g.Nodes() {
		for _, u := range n.Requires {
			to := mods.IDFromURL(u)
			if g.Has(to) {
				_ = d.AddEdge(dag.Edge{From: n.ID, To: to})
			}
		}
	}
	return d
}
