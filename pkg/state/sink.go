package state

import (
	"bufio"
	"os"
	"path/filepath"
)

// SinkConfig controls how field files are written.
type SinkConfig struct {
	BufferSize int
	Fsync      bool
}

// DefaultSinkConfig returns a 64KB buffer with fsync on close.
func DefaultSinkConfig() SinkConfig {
	return SinkConfig{BufferSize: 64 * 1024, Fsync: true}
}

// fileSink is a buffered writer over a freshly created file.
type fileSink struct {
	file   *os.File
	writer *bufio.Writer
	fsync  bool
}

func newFileSink(path string, config SinkConfig) (*fileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, err
	}

	size := config.BufferSize
	if size <= 0 {
		size = DefaultSinkConfig().BufferSize
	}

	return &fileSink{
		file:   file,
		writer: bufio.NewWriterSize(file, size),
		fsync:  config.Fsync,
	}, nil
}

func (s *fileSink) Write(p []byte) (int, error) {
	return s.writer.Write(p)
}

// Close flushes, optionally fsyncs and closes the file.
func (s *fileSink) Close() error {
	if err := s.writer.Flush(); err != nil {
		_ = s.file.Close()
		return err
	}
	if s.fsync {
		if err := s.file.Sync(); err != nil {
			_ = s.file.Close()
			return err
		}
	}
	return s.file.Close()
}
