// Package storage archives heap snapshots in a pebble database.
//
// Each snapshot is stored as one blob per heap field plus a manifest:
//
//	manifest/<id>      CBOR Manifest
//	snap/<id>/<field>  envelope(compressed field bytes)
//
// Snapshot IDs are KSUIDs, so manifests list in creation order.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/fxamacker/cbor/v2"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/nodestate/pkg/state"
	"go.uber.org/zap"
)

const (
	manifestPrefix = "manifest/"
	snapPrefix     = "snap/"
)

// Options configures an Archive.
type Options struct {
	Compression Compression
	Sync        bool
}

// DefaultOptions returns zstd compression with synced writes.
func DefaultOptions() Options {
	return Options{Compression: CompressionZstd, Sync: true}
}

// FieldInfo describes one archived field.
type FieldInfo struct {
	Name        string      `cbor:"name" json:"name"`
	Size        int         `cbor:"size" json:"size"`
	StoredSize  int         `cbor:"stored_size" json:"stored_size"`
	Compression Compression `cbor:"compression" json:"compression"`
}

// Manifest describes an archived snapshot.
type Manifest struct {
	ID      string      `cbor:"id" json:"id"`
	Created int64       `cbor:"created" json:"created"`
	Tick    string      `cbor:"tick" json:"tick"`
	Digest  []byte      `cbor:"digest" json:"digest"`
	Fields  []FieldInfo `cbor:"fields" json:"fields"`
}

// CreatedAt returns the time the snapshot was archived.
func (m *Manifest) CreatedAt() time.Time {
	return time.Unix(0, m.Created)
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("storage: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("storage: CBOR decoder initialization failed: " + err.Error())
	}
}

// Archive stores heap snapshots. It is safe for concurrent use.
type Archive struct {
	db      *pebble.DB
	options Options
}

// Open opens or creates an archive at path.
func Open(path string, options Options) (*Archive, error) {
	compression, err := ParseCompression(string(options.Compression))
	if err != nil {
		return nil, err
	}
	options.Compression = compression

	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	return &Archive{db: db, options: options}, nil
}

func (a *Archive) writeOptions() *pebble.WriteOptions {
	if a.options.Sync {
		return pebble.Sync
	}
	return pebble.NoSync
}

func manifestKey(id ksuid.KSUID) []byte {
	return []byte(manifestPrefix + id.String())
}

func fieldKey(id ksuid.KSUID, field string) []byte {
	return []byte(snapPrefix + id.String() + "/" + field)
}

// Put archives h and returns the new snapshot's ID.
func (a *Archive) Put(h *state.Heap) (ksuid.KSUID, error) {
	id := ksuid.New()

	digest, err := h.Digest()
	if err != nil {
		return ksuid.Nil, err
	}
	manifest := Manifest{
		ID:      id.String(),
		Created: time.Now().UnixNano(),
		Tick:    h.Tick.String(),
		Digest:  digest,
	}

	batch := a.db.NewBatch()
	defer batch.Close()

	for _, name := range state.FieldNames {
		raw, err := h.FieldBytes(name)
		if err != nil {
			return ksuid.Nil, fmt.Errorf("failed to encode %s: %w", name, err)
		}
		packed, used, err := compress(a.options.Compression, raw)
		if err != nil {
			return ksuid.Nil, err
		}
		sealed, err := Seal(packed)
		if err != nil {
			return ksuid.Nil, fmt.Errorf("failed to seal %s: %w", name, err)
		}
		if err := batch.Set(fieldKey(id, name), sealed, nil); err != nil {
			return ksuid.Nil, err
		}
		manifest.Fields = append(manifest.Fields, FieldInfo{
			Name:        name,
			Size:        len(raw),
			StoredSize:  len(sealed),
			Compression: used,
		})
	}

	data, err := encMode.Marshal(&manifest)
	if err != nil {
		return ksuid.Nil, err
	}
	if err := batch.Set(manifestKey(id), data, nil); err != nil {
		return ksuid.Nil, err
	}
	if err := batch.Commit(a.writeOptions()); err != nil {
		return ksuid.Nil, err
	}

	Logger().Info("archived snapshot", zap.String("id", id.String()), zap.String("tick", manifest.Tick))
	return id, nil
}

// get copies the value stored at key; pebble's buffer is only valid until
// its closer is closed.
func (a *Archive) get(key []byte) ([]byte, error) {
	value, closer, err := a.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()

	return bytes.Clone(value), nil
}

// Manifest returns the manifest of snapshot id.
func (a *Archive) Manifest(id ksuid.KSUID) (*Manifest, error) {
	data, err := a.get(manifestKey(id))
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", id, err)
	}
	var m Manifest
	if err := decMode.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: manifest %s: %v", ErrCorruption, id, err)
	}
	return &m, nil
}

// Get restores snapshot id. Every field envelope is verified, and the
// restored heap must match the digest recorded when it was archived.
func (a *Archive) Get(id ksuid.KSUID) (*state.Heap, error) {
	m, err := a.Manifest(id)
	if err != nil {
		return nil, err
	}

	h := state.NewHeap()
	for _, field := range m.Fields {
		sealed, err := a.get(fieldKey(id, field.Name))
		if err != nil {
			return nil, fmt.Errorf("snapshot %s field %s: %w", id, field.Name, err)
		}
		envelope, err := OpenEnvelope(sealed)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s field %s: %w", id, field.Name, err)
		}
		raw, err := decompress(field.Compression, envelope.Payload, field.Size)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s field %s: %w", id, field.Name, err)
		}
		if err := h.DecodeField(field.Name, bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("snapshot %s field %s: %w", id, field.Name, err)
		}
	}

	digest, err := h.Digest()
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(digest, m.Digest) {
		return nil, fmt.Errorf("%w: snapshot %s", ErrDigestMismatch, id)
	}
	return h, nil
}

// List returns every manifest, oldest first.
func (a *Archive) List() ([]Manifest, error) {
	iter, err := a.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(manifestPrefix),
		UpperBound: prefixEnd(manifestPrefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var manifests []Manifest
	for iter.First(); iter.Valid(); iter.Next() {
		var m Manifest
		if err := decMode.Unmarshal(iter.Value(), &m); err != nil {
			return nil, fmt.Errorf("%w: manifest %s: %v", ErrCorruption, iter.Key(), err)
		}
		manifests = append(manifests, m)
	}
	return manifests, iter.Error()
}

// Delete removes snapshot id and all of its fields.
func (a *Archive) Delete(id ksuid.KSUID) error {
	if _, err := a.get(manifestKey(id)); err != nil {
		return fmt.Errorf("snapshot %s: %w", id, err)
	}

	prefix := snapPrefix + id.String() + "/"
	batch := a.db.NewBatch()
	defer batch.Close()

	if err := batch.DeleteRange([]byte(prefix), prefixEnd(prefix), nil); err != nil {
		return err
	}
	if err := batch.Delete(manifestKey(id), nil); err != nil {
		return err
	}
	return batch.Commit(a.writeOptions())
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// prefixEnd returns the smallest key greater than every key with prefix.
func prefixEnd(prefix string) []byte {
	end := []byte(prefix)
	end[len(end)-1]++
	return end
}
