package hexpack

import "errors"

// Errors
var (
	ErrMalformedInput     = errors.New("malformed lattice input")
	ErrInvalidTopology    = errors.New("lattice edge lacks a reciprocal edge")
	ErrBadDirection       = errors.New("invalid direction")
	ErrBadBeadID          = errors.New("invalid bead ID")
	ErrBadMolecule        = errors.New("bad molecule definition")
	ErrUnknownMolecule    = errors.New("unknown molecule")
	ErrBadSymmetry        = errors.New("invalid symmetry data")
	ErrAdjacencyIntegrity = errors.New("adjacency count integrity violation")
	ErrBadMatrix          = errors.New("bad exact-cover matrix")
	ErrExpansionLimit     = errors.New("row ambiguity expansion exceeds limit")
	ErrBadConfig          = errors.New("bad configuration")
	ErrBadCatalogParam    = errors.New("bad catalog param")
	ErrUnmarshal          = errors.New("unmarshal failed")
	ErrNilCrystal         = errors.New("nil crystal")
)
