package api

import (
	"github.com/segmentio/ksuid"
	"github.com/ssargent/nodestate/pkg/state"
	"github.com/ssargent/nodestate/pkg/storage"
)

// SnapshotStore is the read side of the snapshot archive
type SnapshotStore interface {
	List() ([]storage.Manifest, error)
	Manifest(id ksuid.KSUID) (*storage.Manifest, error)
	Get(id ksuid.KSUID) (*state.Heap, error)
}
