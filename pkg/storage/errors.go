package storage

// Errors
var (
	ErrNotFound       = &ArchiveError{"snapshot not found"}
	ErrCorruption     = &ArchiveError{"data corruption detected"}
	ErrUnknownCodec   = &ArchiveError{"unknown compression"}
	ErrDigestMismatch = &ArchiveError{"snapshot digest mismatch"}
)

// ArchiveError represents a snapshot archive error
type ArchiveError struct {
	message string
}

func (e *ArchiveError) Error() string {
	return e.message
}
