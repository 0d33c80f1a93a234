package state

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Save writes h to dir with the default sink settings.
func (h *Heap) Save(dir string) error {
	return h.SaveWith(dir, DefaultSinkConfig())
}

// SaveWith writes every field of h into its own file under dir. The files
// are written to a sibling temporary directory first, which then replaces
// dir, so a failed save leaves the previous heap in place.
func (h *Heap) SaveWith(dir string, config SinkConfig) (err error) {
	start := time.Now()
	defer func() { recordOp("save", err, time.Since(start).Seconds()) }()

	dir = filepath.Clean(dir)
	if err := os.MkdirAll(filepath.Dir(dir), 0750); err != nil {
		return err
	}
	tmp, err := os.MkdirTemp(filepath.Dir(dir), filepath.Base(dir)+".tmp-")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(tmp)
		}
	}()

	for _, name := range FieldNames {
		if err := h.saveField(filepath.Join(tmp, name), name, config); err != nil {
			return err
		}
	}

	return replaceDir(tmp, dir)
}

func (h *Heap) saveField(path, name string, config SinkConfig) error {
	sink, err := newFileSink(path, config)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	n, err := h.EncodeField(name, sink)
	if err != nil {
		_ = sink.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := sink.Close(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}

	fieldBytes.WithLabelValues("save", name).Add(float64(n))
	Logger().Debug("saved heap field", zap.String("field", name), zap.Int("bytes", n))
	return nil
}

// replaceDir moves tmp to dir, setting any existing dir aside until the
// move has succeeded.
func replaceDir(tmp, dir string) error {
	old := dir + ".old"
	if err := os.RemoveAll(old); err != nil {
		return err
	}

	hadOld := true
	if err := os.Rename(dir, old); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		hadOld = false
	}

	if err := os.Rename(tmp, dir); err != nil {
		if hadOld {
			_ = os.Rename(old, dir)
		}
		return err
	}

	if hadOld {
		if err := os.RemoveAll(old); err != nil {
			Logger().Warn("failed to remove previous heap", zap.String("path", old), zap.Error(err))
		}
	}
	return nil
}

// Load reads a heap saved by Save. Every field file must be present.
// Errors name the file they came from.
func Load(dir string) (h *Heap, err error) {
	start := time.Now()
	defer func() { recordOp("load", err, time.Since(start).Seconds()) }()

	h = NewHeap()
	for _, name := range FieldNames {
		if err := h.loadField(filepath.Join(dir, name), name); err != nil {
			return nil, err
		}
	}

	Logger().Info("loaded heap",
		zap.String("dir", dir),
		zap.Int("functions", len(h.File)),
		zap.String("tick", h.Tick.String()))
	return h, nil
}

func (h *Heap) loadField(path, name string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingField, path)
		}
		return err
	}
	defer file.Close()

	if err := h.DecodeField(name, bufio.NewReader(file)); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	if stat, err := file.Stat(); err == nil {
		fieldBytes.WithLabelValues("load", name).Add(float64(stat.Size()))
	}
	return nil
}

// Exists reports whether dir holds a saved heap.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, FieldTick))
	return err == nil
}
