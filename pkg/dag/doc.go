// Package dag holds the mod requirement graph.
//
// Nodes are mods keyed by identifier; an edge A -> B means A requires B.
// The graph is built by the dependency resolver and consumed by the DOT
// renderer behind the graph command:
//
//	g := dag.New(nil)
//	_ = g.AddNode(dag.Node{ID: "weaponpack"})
//	_ = g.AddNode(dag.Node{ID: "corelib"})
//	_ = g.AddEdge(dag.Edge{From: "weaponpack", To: "corelib"})
//
// Manifests may declare circular requirements. The resolver tolerates them,
// so [DAG.Validate] is used only to surface a warning.
package dag
