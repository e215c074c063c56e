package metadata

import (
	"testing"

	"strata-hq/strata/pkg/ingest"
	"strata-hq/strata/pkg/ingest/ingesttest"
)

func TestMemoryStore_Contract(t *testing.T) {
	suite := &ingesttest.MetadataSuite{
		NewStore: func(t *testing.T) ingest.MetadataStore {
			return NewMemoryStore()
		},
	}
	suite.Run(t)
}
