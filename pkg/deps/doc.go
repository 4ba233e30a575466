// Package deps expands a mod manifest into the full set of mods that must be
// installed.
//
// Only entries declared by hand seed the expansion. Their requires lists
// are followed transitively; mods reached this way are marked auto and
// remember which manual entries need them, so that the reconciler can
// collect them once nothing requires them anymore:
//
//	g := deps.Resolve(m)
//	for _, n := range g.Nodes() {
//	    ...
//	}
//	if g.IsOrphan("oldlib") {
//	    // safe to delete its archive
//	}
package deps
