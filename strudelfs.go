// Package strudelfs models a live-coding editor's tracks and folders as nodes
// in a parent-pointer graph instead of brittle string paths.
//
// The root package holds the entity shapes shared by every layer: the
// homogeneous [Node] record (folder or track), the legacy flat records that
// predate the graph model, and the persistence seams. The graph itself lives
// in the filesystem package, URL/slug transforms in slug, the SQLite store of
// record in store, and the legacy-to-graph migration in migrate.
package strudelfs
