package batch

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/2x3systems/hexpack/catalog"
	"github.com/2x3systems/hexpack/hexpack"
	"github.com/2x3systems/hexpack/lattice"
	"github.com/2x3systems/hexpack/molecule"
	"github.com/2x3systems/hexpack/packing"
	"github.com/2x3systems/hexpack/report"
	"github.com/2x3systems/hexpack/symmetry"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// Summary is the outcome of a batch.
type Summary struct {
	Written   []string         // store keys of the documents written, sorted
	Failed    map[string]error // by lattice name
	Solutions int64
	Canonical int
}

type batch struct {
	cfg     *Config
	roots   []molecule.Molecule
	store   report.Store
	cat     *catalog.Catalog
	metrics *metrics

	mu      sync.Mutex
	summary Summary
}

// Run tiles every configured lattice on a pool of cfg.Workers goroutines.  A lattice that fails is logged
// and reported in Summary.Failed; the remaining lattices still run.  The returned error is only set when the
// batch itself could not be set up or finished.
func Run(ctx context.Context, cfg *Config, catCtx hexpack.CatalogContext) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &batch{
		cfg:     cfg,
		metrics: newMetrics(),
		summary: Summary{
			Failed: make(map[string]error),
		},
	}

	for _, name := range cfg.Molecules {
		m, err := molecule.Shapes().Lookup(name)
		if err != nil {
			return nil, err
		}
		b.roots = append(b.roots, m)
	}

	var err error
	b.store, err = report.OpenStore(ctx, cfg.Output.StoreOpts())
	if err != nil {
		return nil, err
	}

	if cfg.Catalog != "" {
		b.cat, err = catalog.Open(catCtx, catalog.Opts{DbPathName: cfg.Catalog})
		if err != nil {
			return nil, err
		}
		defer b.cat.Close()
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				b.runLattice(ctx, name)
			}
		}()
	}

	for _, name := range cfg.Lattices {
		jobs <- name
	}
	close(jobs)
	wg.Wait()

	sort.Strings(b.summary.Written)
	if cfg.MetricsFile != "" {
		if err = b.metrics.writeTextfile(cfg.MetricsFile); err != nil {
			return &b.summary, errors.Wrapf(err, "write metrics %q", cfg.MetricsFile)
		}
	}

	klog.Infof("batch: %d lattices written, %d failed", len(b.summary.Written), len(b.summary.Failed))
	return &b.summary, nil
}

func (b *batch) runLattice(ctx context.Context, name string) {
	start := time.Now()
	key, run, err := b.tileLattice(ctx, name)
	b.metrics.seconds.Observe(time.Since(start).Seconds())

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		klog.Warningf("lattice %q skipped: %v", name, err)
		b.summary.Failed[name] = err
		b.metrics.lattices.WithLabelValues("failed").Inc()
		return
	}

	b.summary.Written = append(b.summary.Written, key)
	b.summary.Solutions += run.Solutions
	b.summary.Canonical += run.Set.Len()
	b.metrics.lattices.WithLabelValues("ok").Inc()
	b.metrics.solutions.Add(float64(run.Solutions))
	b.metrics.raw.Add(float64(run.Set.NumRaw()))
	b.metrics.canonical.WithLabelValues(name).Set(float64(run.Set.Len()))
}

// tileLattice loads, enumerates, writes and catalogs one lattice.  A panic below is confined to this lattice.
func (b *batch) tileLattice(ctx context.Context, name string) (key string, run *packing.Run, err error) {
	defer func() {
		if r := recover(); r != nil {
			if rErr, ok := r.(error); ok {
				err = errors.Wrap(rErr, "panic")
			} else {
				err = errors.Errorf("panic: %v", r)
			}
		}
	}()

	cfg := b.cfg
	X, err := lattice.Open(cfg.LatticeDir, lattice.Opts{
		Name:         name,
		MoleculeSize: b.roots[0].Size(),
		Holes:        cfg.Holes,
	})
	if err != nil {
		return "", nil, err
	}

	opts := packing.Opts{
		UseHeuristic:  cfg.Heuristic,
		MaxResults:    cfg.MaxResults,
		MaxExpansions: cfg.MaxExpansions,
	}
	if cfg.Deadline.Duration > 0 {
		opts.Deadline = time.Now().Add(cfg.Deadline.Duration)
	}
	if cfg.Symmetry {
		if opts.Symmetry, err = symmetry.Open(cfg.LatticeDir, name); err != nil {
			return "", nil, err
		}
	}

	run, err = packing.Enumerate(ctx, X, b.roots, opts)
	if err != nil {
		return "", nil, err
	}

	key, err = report.Write(ctx, b.store, report.New(run), cfg.Output.Gzip)
	if err != nil {
		return "", nil, err
	}

	if b.cat != nil {
		if _, err = b.cat.Merge(catalog.ScopeOf(name, b.roots), run.Set); err != nil {
			return "", nil, err
		}
	}
	return key, run, nil
}
