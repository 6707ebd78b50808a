package report

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/2x3systems/hexpack/canon"
	"github.com/2x3systems/hexpack/hexpack"
	"github.com/2x3systems/hexpack/lattice"
	"github.com/2x3systems/hexpack/packing"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// New summarizes a finished run.
func New(run *packing.Run) *Document {
	X := run.Crystal
	names := make([]string, len(run.Roots))
	for i, m := range run.Roots {
		names[i] = m.Name
	}

	doc := &Document{
		RunID:          uuid.NewString(),
		Lattice:        X.Name,
		Molecule:       strings.Join(names, "+"),
		AdjacencyNames: canon.AdjacencyNames(run.Roots),
		Sites:          make([]Site, X.NumNodes()),
		Solutions:      run.Solutions,
		Raw:            run.Set.NumRaw(),
		Canonical:      run.Set.Len(),
		Stopped:        string(run.Stopped),
		ElapsedMS:      run.Elapsed.Milliseconds(),
	}

	for i := range doc.Sites {
		id := lattice.NodeID(i)
		replicas := X.Replicas(id)
		doc.Sites[i] = Site{
			ID:       i,
			Hole:     X.IsHole(id),
			Replicas: replicas[:],
		}
	}

	for _, label := range run.Set.Buckets() {
		entries := run.Set.InBucket(label)
		bucket := &Bucket{
			Label:   label,
			Results: make([]Result, len(entries)),
		}
		for i, entry := range entries {
			bucket.Results[i] = Result{
				Beads:      entry.Beads,
				Adjacency:  entry.Adjacency,
				Placements: entry.Vector,
				Duplicates: entry.Count,
			}
		}
		bucket.AdjacencyMean, bucket.AdjacencyStdDev = adjacencyStats(bucket.Results, len(doc.AdjacencyNames))
		doc.Buckets = append(doc.Buckets, bucket)
	}
	return doc
}

// adjacencyStats returns per adjacency column the mean and standard deviation over the raw placement sets
// of a bucket, i.e. each canonical result weighted by its duplicate count.
func adjacencyStats(results []Result, numCols int) (mean, stdDev []float64) {
	mean = make([]float64, numCols)
	stdDev = make([]float64, numCols)

	x := make([]float64, len(results))
	weights := make([]float64, len(results))
	total := 0.0
	for i, res := range results {
		weights[i] = float64(res.Duplicates)
		total += weights[i]
	}

	for col := 0; col < numCols; col++ {
		for i, res := range results {
			x[i] = float64(res.Adjacency[col])
		}
		if total <= 1 {
			mean[col] = stat.Mean(x, weights)
			continue
		}
		mean[col], stdDev[col] = stat.MeanStdDev(x, weights)
	}
	return
}

// Key returns the store key of doc: "<lattice>/<molecule>.json", with ".gz" appended when compressed.
func (doc *Document) Key(compressed bool) string {
	key := doc.Lattice + "/" + doc.Molecule + ".json"
	if compressed {
		key += ".gz"
	}
	return key
}

// Encode writes doc as JSON, gzip compressed if so specified.
func (doc *Document) Encode(w io.Writer, compressed bool) error {
	if !compressed {
		return json.NewEncoder(w).Encode(doc)
	}
	zw := gzip.NewWriter(w)
	if err := json.NewEncoder(zw).Encode(doc); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// Decode reads a document written by Encode, compressed or not.
func Decode(r io.Reader) (*Document, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br
	if magic, _ := br.Peek(2); len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(hexpack.ErrUnmarshal, err.Error())
		}
		defer zr.Close()
		src = zr
	}

	doc := &Document{}
	if err := json.NewDecoder(src).Decode(doc); err != nil {
		return nil, errors.Wrap(hexpack.ErrUnmarshal, err.Error())
	}
	return doc, nil
}
