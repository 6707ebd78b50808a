package hexpack

const (

	// NumReplicas is the number of periodic coordinate replicas stored per lattice site.
	NumReplicas = 9

	// MaxBeadID bounds orientation-aware bead IDs so a bead fits in one tag byte (0xFF is the track separator).
	MaxBeadID = 254

	// DefaultMaxExpansions caps how many concrete placement sets one solver solution may expand into.
	DefaultMaxExpansions = 4096
)

// CatalogContext is a container for open / active Catalog instances.
type CatalogContext interface {

	// Attaches the given Catalog to this context.
	AttachCatalog(cat Closer)

	// Detaches the given Catalog from this context.
	DetachCatalog(cat Closer)

	// Closes all open catalogs then closes.
	Close()

	// Signals when Close() completed and all open Catalogs have been closed
	Done() <-chan struct{}
}

// Closer is anything a CatalogContext can close on shutdown.
type Closer interface {
	Close() error
}

// PrintOpts specifies what is printed when printing a result
type PrintOpts struct {
	Label      string // Prefix label
	Beads      bool   // If set, prints the bead vector
	Adjacency  bool   // If set, prints the adjacency count vector
	Placements bool   // If set, prints the placement / rotation vector
}

// DefaultPrintOpts{}
var DefaultPrintOpts = PrintOpts{
	Adjacency: true,
}
