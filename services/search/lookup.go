package search

import (
	"context"

	"cinelist/services/omdb"
)

// Lookup fetches a raw provider record. *omdb.Client satisfies it.
type Lookup interface {
	Lookup(ctx context.Context, q omdb.Query) (omdb.RawRecord, error)
}
