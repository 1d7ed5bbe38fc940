// Package types defines the shared data model of the search core:
// companies, relationship edges, parsed queries, factor vectors, ranked
// results, and the typed errors exchanged between packages.
package types
