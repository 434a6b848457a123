package catalog

import "context"

// Reader is the read-only surface of the catalog. *Store satisfies it; no
// component in this module takes a Reader as a dependency.
type Reader interface {
	Count(ctx context.Context) (int, error)
	ListAll(ctx context.Context) ([]*Track, error)
	GetByID(ctx context.Context, id int64) (*Track, error)
}

var _ Reader = (*Store)(nil)
