// Package kvstore holds the small amount of client state that has to survive
// a page reload, such as the credential token.
package kvstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is a string key-value store. Get returns model.ErrKeyNotFound for
// missing keys; Remove of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
}

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// Open builds the store selected by driver. pool is only used by the
// postgres driver and may be nil otherwise.
func Open(driver string, path string, pool *pgxpool.Pool) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile, "":
		return NewFile(path)
	case DriverPostgres:
		if pool == nil {
			return nil, fmt.Errorf("postgres token store requires a database pool")
		}
		return NewPostgres(pool), nil
	default:
		return nil, fmt.Errorf("unknown token store driver %q", driver)
	}
}
