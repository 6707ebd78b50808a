package report

import (
	"context"
	"io"

	"github.com/2x3systems/hexpack/lattice"
)

// Document is the output of one lattice x root molecule(s) run.
type Document struct {
	RunID          string    `json:"run_id"`
	Lattice        string    `json:"lattice"`
	Molecule       string    `json:"molecule"`
	AdjacencyNames []string  `json:"adjacency_names"`
	Sites          []Site    `json:"sites"`
	Solutions      int64     `json:"solutions"`
	Raw            int       `json:"raw"`
	Canonical      int       `json:"canonical"`
	Stopped        string    `json:"stopped,omitempty"`
	ElapsedMS      int64     `json:"elapsed_ms"`
	Buckets        []*Bucket `json:"buckets"`
}

// Site is one lattice node and its periodic coordinate replicas.
type Site struct {
	ID       int            `json:"id"`
	Hole     bool           `json:"hole,omitempty"`
	Replicas []lattice.Vec3 `json:"replicas"`
}

// Bucket holds the canonical results sharing one bucket label.
type Bucket struct {
	Label           string    `json:"label"`
	Results         []Result  `json:"results"`
	AdjacencyMean   []float64 `json:"adjacency_mean"`
	AdjacencyStdDev []float64 `json:"adjacency_std_dev"`
}

// Result is one canonical result.
type Result struct {
	Beads      []int `json:"beads"`
	Adjacency  []int `json:"adjacency"`
	Placements []int `json:"placements"`
	Duplicates int   `json:"duplicates"`
}

// Driver identifies a Store implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
	DriverMemory     Driver = "memory"
)

// Store is where documents are written.
type Store interface {

	// Put stores everything read from r under key, replacing any previous value.
	Put(ctx context.Context, key string, r io.Reader) error

	// Get opens the value stored under key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	Driver() Driver
}

// StoreOpts specifies which Store OpenStore returns.
type StoreOpts struct {
	Driver    Driver // defaults to DriverFilesystem
	Root      string // fs: output directory, defaults to "."
	Bucket    string // s3: required
	Region    string // s3: defaults to us-east-1
	Endpoint  string // s3: optional custom endpoint (e.g. MinIO)
	PathStyle bool   // s3
}
