package weather

import "context"

// Fetcher abstracts the upstream forecast endpoint. Fetch performs one
// blocking round-trip and returns the whole response body.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, loc Location) ([]byte, error)
}

// Store is the contract the SQLite store (and any future store) must satisfy.
// Reads return owned, materialized slices; callers never hold a cursor.
type Store interface {
	// Upsert writes rows keyed by date, replacing all non-key fields of any
	// row whose date is already present. It returns the number of rows
	// applied before the first failure, if any.
	Upsert(days []WeatherDay) (int, error)

	// RowsFrom returns all rows with date >= from, ascending by date.
	RowsFrom(from int64) ([]WeatherDay, error)

	// Clear removes every row. Used before a bulk reload, e.g. when the
	// tracked location changes.
	Clear() error
}
