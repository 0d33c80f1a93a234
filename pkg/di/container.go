// Package di provides dependency injection container
package di

import (
	"context"

	"github.com/segmentio/ksuid"
	"github.com/ssargent/nodestate/pkg/api"
	"github.com/ssargent/nodestate/pkg/state"
	"github.com/ssargent/nodestate/pkg/storage"
	"go.uber.org/zap"
)

// Archive is the snapshot archive as the CLI uses it
type Archive interface {
	api.SnapshotStore
	Put(h *state.Heap) (ksuid.KSUID, error)
	Delete(id ksuid.KSUID) error
	Close() error
}

// ArchiveOpener opens snapshot archives
type ArchiveOpener interface {
	OpenArchive(path string, options storage.Options) (Archive, error)
}

// ServerStarter runs the inspection server until ctx is cancelled
type ServerStarter interface {
	StartServer(ctx context.Context, archive api.SnapshotStore, config api.ServerConfig, logger *zap.Logger) error
}

// Container holds all the dependencies for the application
type Container struct {
	archiveOpener ArchiveOpener
	serverStarter ServerStarter
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		archiveOpener: defaultArchiveOpener{},
		serverStarter: defaultServerStarter{},
	}
}

// GetArchiveOpener returns the archive opener
func (c *Container) GetArchiveOpener() ArchiveOpener {
	return c.archiveOpener
}

// GetServerStarter returns the server starter
func (c *Container) GetServerStarter() ServerStarter {
	return c.serverStarter
}

// SetArchiveOpener allows overriding the archive opener (for testing)
func (c *Container) SetArchiveOpener(opener ArchiveOpener) {
	c.archiveOpener = opener
}

// SetServerStarter allows overriding the server starter (for testing)
func (c *Container) SetServerStarter(starter ServerStarter) {
	c.serverStarter = starter
}

type defaultArchiveOpener struct{}

func (defaultArchiveOpener) OpenArchive(path string, options storage.Options) (Archive, error) {
	archive, err := storage.Open(path, options)
	if err != nil {
		return nil, err
	}
	return archive, nil
}

type defaultServerStarter struct{}

func (defaultServerStarter) StartServer(ctx context.Context, archive api.SnapshotStore, config api.ServerConfig, logger *zap.Logger) error {
	return api.StartServer(ctx, archive, config, logger)
}
