package catalog

import (
	"runtime"
	"strings"
	"sync"

	"github.com/2x3systems/hexpack/canon"
	"github.com/2x3systems/hexpack/hexpack"
	"github.com/2x3systems/hexpack/molecule"
	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
)

const (
	catalogMajorVers = 2026
	catalogMinorVers = 1
)

// Catalog is a badger db wrapper that accumulates canonical results over many runs.
type Catalog struct {
	mu         sync.Mutex
	ctx        hexpack.CatalogContext
	readOnly   bool
	stateDirty bool
	state      CatalogState
	db         *badger.DB
}

// Open opens (or creates) the catalog at opts.DbPathName and attaches it to ctx.
func Open(ctx hexpack.CatalogContext, opts Opts) (*Catalog, error) {
	if ctx == nil {
		return nil, errors.Wrap(hexpack.ErrBadCatalogParam, "nil CatalogContext")
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // one writer per catalog
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(hexpack.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	cat := &Catalog{
		ctx:      ctx,
		readOnly: opts.ReadOnly,
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "open catalog %q", opts.DbPathName)
	}

	// Once the db is open, the catalog ctx is blocked until the catalog closes
	ctx.AttachCatalog(cat)

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = !cat.readOnly
		cat.state = CatalogState{
			MajorVers: catalogMajorVers,
			MinorVers: catalogMinorVers,
		}
	}
	if err == nil && (cat.state.MajorVers != catalogMajorVers || cat.state.MinorVers != catalogMinorVers) {
		err = errors.Wrapf(hexpack.ErrBadCatalogParam, "catalog version %d.%d is incompatible", cat.state.MajorVers, cat.state.MinorVers)
	}
	if err != nil {
		cat.Close()
		return nil, err
	}

	klog.V(2).Infof("catalog %q opened with %d entries", opts.DbPathName, cat.state.NumEntries)
	return cat, nil
}

// ScopeOf names the catalog scope of a lattice tiled with the given root molecule(s).
func ScopeOf(latticeName string, roots []molecule.Molecule) string {
	names := make([]string, len(roots))
	for i, m := range roots {
		names[i] = m.Name
	}
	return latticeName + "/" + strings.Join(names, "+")
}

func (cat *Catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(cat.state.Unmarshal)
	})
}

func (cat *Catalog) flushState() error {
	if !cat.stateDirty {
		return nil
	}
	err := cat.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gCatalogStateKey, cat.state.Marshal())
	})
	if err == nil {
		cat.stateDirty = false
	}
	return err
}

// Close flushes the catalog state and detaches from its CatalogContext.  Close may be called more than once.
func (cat *Catalog) Close() error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.db == nil {
		return nil
	}
	err := cat.flushState()
	if closeErr := cat.db.Close(); err == nil {
		err = closeErr
	}
	cat.db = nil
	cat.ctx.DetachCatalog(cat)
	cat.ctx = nil
	return err
}

// NumEntries returns the number of distinct canonical results over all scopes.
func (cat *Catalog) NumEntries() uint64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return cat.state.NumEntries
}

func (cat *Catalog) checkOpen(scope string) error {
	if cat.db == nil {
		return errors.Wrap(hexpack.ErrBadCatalogParam, "catalog is closed")
	}
	if scope == "" {
		return errors.Wrap(hexpack.ErrBadCatalogParam, "empty scope")
	}
	return nil
}

// Merge adds every entry of set to the given scope.  An entry already present keeps its first
// representative and has its count increased.  Returns how many entries were new to the catalog.
func (cat *Catalog) Merge(scope string, set *canon.Set) (added int, err error) {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if err = cat.checkOpen(scope); err != nil {
		return 0, err
	}
	if cat.readOnly {
		return 0, errors.Wrap(hexpack.ErrBadCatalogParam, "catalog is read-only")
	}

	txn := cat.db.NewTransaction(true)
	defer func() {
		txn.Discard()
	}()

	pending := 0
	commit := func() error {
		cat.state.NumEntries += uint64(pending)
		pending = 0
		if err := txn.Set(gCatalogStateKey, cat.state.Marshal()); err != nil {
			return err
		}
		cat.stateDirty = false
		return txn.Commit()
	}

	for _, entry := range set.Entries() {
		key := appendKey(nil, scope, entry.Bucket, entry.Fingerprint)
		rec := Record{
			Count:  uint64(entry.Count),
			Vector: entry.Vector,
			Beads:  entry.Beads,
		}

		item, getErr := txn.Get(key)
		switch {
		case getErr == nil:
			var prev Record
			if err = item.Value(prev.unmarshalValue); err != nil {
				return added, err
			}
			prev.Count += rec.Count
			rec = prev
		case getErr == badger.ErrKeyNotFound:
			added++
			pending++
		default:
			return added, getErr
		}

		val := rec.marshalValue()
		err = txn.Set(key, val)
		if err == badger.ErrTxnTooBig {
			if err = commit(); err != nil {
				return added, err
			}
			txn = cat.db.NewTransaction(true)
			err = txn.Set(key, val)
		}
		if err != nil {
			return added, err
		}
	}

	if err = commit(); err != nil {
		return added, err
	}
	klog.V(2).Infof("catalog scope %q: merged %d results, %d new", scope, set.Len(), added)
	return added, nil
}

// Lookup returns the stored record for the given canonical result, or nil if it has not been seen.
func (cat *Catalog) Lookup(scope, bucket string, fp canon.Fingerprint) (*Record, error) {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if err := cat.checkOpen(scope); err != nil {
		return nil, err
	}

	var rec *Record
	err := cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(appendKey(nil, scope, bucket, fp))
		if err != nil {
			return err
		}
		rec = &Record{
			Scope:       scope,
			Bucket:      bucket,
			Fingerprint: fp,
		}
		return item.Value(rec.unmarshalValue)
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	return rec, err
}

// Select calls onRecord with every record of the given scope in key order.
//
// Enumeration stops when there are no more records or if onRecord returns false.
func (cat *Catalog) Select(scope string, onRecord OnRecord) error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if err := cat.checkOpen(scope); err != nil {
		return err
	}

	txn := cat.db.NewTransaction(false)
	defer txn.Discard()

	it := txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: true,
		PrefetchSize:   100,
		Prefix:         appendScope(nil, scope),
	})
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		rec, err := parseKey(item.Key())
		if err != nil {
			return err
		}
		if err = item.Value(rec.unmarshalValue); err != nil {
			return err
		}
		if !onRecord(rec) {
			break
		}
	}
	return nil
}
