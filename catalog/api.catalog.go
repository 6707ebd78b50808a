package catalog

import (
	"github.com/2x3systems/hexpack/canon"
)

/***

Catalog database format:

	gCatalogStateKey => CatalogState (varints: MajorVers, MinorVers, NumEntries)

	Scope (len-prefixed), Bucket (len-prefixed), Fingerprint.Bytes()
		=> Count (varint), Vector ([]zigzag varint, len-prefixed), Beads ([]varint, len-prefixed)
	...

A scope names one lattice x root molecule(s) pairing, e.g. "t6x10/pentamer".  Fingerprints are only
comparable within a scope, so every entry key starts with its scope.  Since a scope is never empty, no
entry key starts with 0x00 and the state key cannot collide with an entry.

The above structure allows to:
	1) merge duplicate counts of repeated runs of the same scope
	2) enumerate every canonical result of a scope in key order
	3) check if a given canonical result has already been seen

***/

// Opts specifies how a Catalog is opened.
type Opts struct {
	DbPathName string // if empty, the catalog is held in memory
	ReadOnly   bool   // requires DbPathName
}

// CatalogState is stored under gCatalogStateKey.
type CatalogState struct {
	MajorVers  uint64
	MinorVers  uint64
	NumEntries uint64
}

// Record is one stored canonical result.
type Record struct {
	Scope       string
	Bucket      string
	Fingerprint canon.Fingerprint
	Count       uint64 // raw placement sets collapsed onto this result over every merged run
	Vector      []int  // placement vector of the first representative seen
	Beads       []int  // orientation-aware bead vector of the first representative seen
}

// OnRecord is called for each selected record.  Returning false stops the enumeration.
type OnRecord func(rec *Record) bool
