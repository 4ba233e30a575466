// Package moddb reads mod pages from the mod database.
//
// A mod page carries the mod's title and a release table, newest release
// first. Each row yields a [mods.Release]: the version (first line of the
// first cell, leading "v" removed), the supported game versions (from the
// tag tooltip or the cell text, with "a - b" ranges expanded), the release
// date, the changelog and the download link.
//
// Everything about the page markup stays in this package; callers only see
// [mods.Listing].
//
//	client := moddb.NewClient(cache.NewNullCache(), 0, 10)
//	listing, err := client.Fetch(ctx, "https://mods.vintagestory.at/show/mod/1234")
package moddb
