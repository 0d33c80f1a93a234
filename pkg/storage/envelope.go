package storage

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
	"time"
)

// HeaderSize is the size of an envelope header:
// CRC32(4) + Size(4) + Timestamp(8).
const HeaderSize = 16

// Envelope wraps an archived blob with a checksum and a write time.
type Envelope struct {
	CRC32     uint32 // CRC32 over Size, Timestamp and Payload
	Size      uint32 // Size of the payload in bytes
	Timestamp uint64 // Unix timestamp in nanoseconds
	Payload   []byte
}

// NewEnvelope creates an envelope for payload stamped with the current time.
func NewEnvelope(payload []byte) (*Envelope, error) {
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("payload too large: %d bytes", len(payload))
	}
	e := &Envelope{
		Size:      uint32(len(payload)),
		Timestamp: uint64(time.Now().UnixNano()),
		Payload:   payload,
	}
	e.CRC32 = e.checksum()
	return e, nil
}

// Seal wraps payload in an envelope and encodes it.
// Format: [CRC32(4)][Size(4)][Timestamp(8)][Payload]
func Seal(payload []byte) ([]byte, error) {
	e, err := NewEnvelope(payload)
	if err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// Bytes encodes the envelope.
func (e *Envelope) Bytes() []byte {
	buf := make([]byte, HeaderSize+len(e.Payload))
	binary.LittleEndian.PutUint32(buf[0:], e.CRC32)
	binary.LittleEndian.PutUint32(buf[4:], e.Size)
	binary.LittleEndian.PutUint64(buf[8:], e.Timestamp)
	copy(buf[HeaderSize:], e.Payload)
	return buf
}

// OpenEnvelope decodes data and verifies its checksum. Any mismatch is
// reported as ErrCorruption.
func OpenEnvelope(data []byte) (*Envelope, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: envelope too short: %d bytes", ErrCorruption, len(data))
	}

	e := &Envelope{
		CRC32:     binary.LittleEndian.Uint32(data[0:4]),
		Size:      binary.LittleEndian.Uint32(data[4:8]),
		Timestamp: binary.LittleEndian.Uint64(data[8:16]),
	}
	if uint64(len(data)-HeaderSize) != uint64(e.Size) {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrCorruption, len(data)-HeaderSize, e.Size)
	}
	e.Payload = data[HeaderSize:]

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the envelope's CRC32.
func (e *Envelope) Validate() error {
	if sum := e.checksum(); e.CRC32 != sum {
		return fmt.Errorf("%w: CRC32 mismatch: %d != %d", ErrCorruption, e.CRC32, sum)
	}
	return nil
}

// Time returns the envelope's write time.
func (e *Envelope) Time() time.Time {
	return time.Unix(0, int64(e.Timestamp))
}

func (e *Envelope) checksum() uint32 {
	var header [12]byte
	binary.LittleEndian.PutUint32(header[0:], e.Size)
	binary.LittleEndian.PutUint64(header[4:], e.Timestamp)

	crc := crc32.NewIEEE()
	_, _ = crc.Write(header[:])
	_, _ = crc.Write(e.Payload)
	return crc.Sum32()
}
