// Package ingesttest provides contract suites shared by every backend
// implementation of the ingest collaborator interfaces.
//
// Each backend package runs the suite for its family from a _test.go file:
//
//	func TestLocalStorage(t *testing.T) {
//		suite := &ingesttest.StorageSuite{
//			NewStorage: func(t *testing.T) ingest.Storage {
//				s, err := NewLocal(t.TempDir(), nil)
//				require.NoError(t, err)
//				return s
//			},
//		}
//		suite.Run(t)
//	}
package ingesttest
