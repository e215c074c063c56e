//go:build integration

package metadata

import (
	"context"
	"os"
	"testing"

	"strata-hq/strata/pkg/ingest"
	"strata-hq/strata/pkg/ingest/ingesttest"
)

// Run with: STRATA_TEST_POSTGRES_HOST=localhost go test -tags integration ./pkg/ingest/metadata/
func TestPostgresStore_Contract(t *testing.T) {
	host := os.Getenv("STRATA_TEST_POSTGRES_HOST")
	if host == "" {
		t.Skip("STRATA_TEST_POSTGRES_HOST not set")
	}

	cfg := PostgresConfig{
		Host:     host,
		Port:     5432,
		Database: "strata_test",
		User:     "postgres",
		Password: os.Getenv("STRATA_TEST_POSTGRES_PASSWORD"),
	}

	suite := &ingesttest.MetadataSuite{
		NewStore: func(t *testing.T) ingest.MetadataStore {
			ctx := context.Background()
			store, err := NewPostgresStore(ctx, cfg, nil)
			if err != nil {
				t.Fatalf("NewPostgresStore() error = %v", err)
			}
			if err := store.DeleteAll(ctx); err != nil {
				t.Fatalf("DeleteAll() error = %v", err)
			}
			t.Cleanup(func() { store.Close() })
			return store
		},
	}
	suite.Run(t)
}
