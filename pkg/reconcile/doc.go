// Package reconcile brings a mod archive directory in line with its
// manifest.
//
// A [Reconciler] run loads the manifest, expands requirements with
// [deps.Resolve], fetches every enabled mod whose last resolution is older
// than the staleness window, selects a target release per mod with
// [selector.Select], downloads changed archives and rewrites the manifest
// atomically. Archives that no resolved mod needs are deleted, archives of
// disabled mods are uninstalled, and the resulting [Report] lists every
// change.
//
// Fetches and downloads are sequential and paced by fixed delays. A failure
// affecting one mod is logged and reported as skipped; that mod's previous
// manifest entry is kept unchanged.
package reconcile
