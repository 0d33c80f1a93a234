package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

func TestEnvelope_SealOpenRoundTrip(t *testing.T) {
	testCases := []struct {
		name    string
		payload []byte
	}{
		{
			name:    "empty payload",
			payload: []byte{},
		},
		{
			name:    "small payload",
			payload: []byte("heap field"),
		},
		{
			name:    "binary data",
			payload: []byte{0x00, 0x01, 0xFF, 0xFE},
		},
		{
			name:    "large payload",
			payload: bytes.Repeat([]byte("v"), 10240),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sealed, err := Seal(tc.payload)
			if err != nil {
				t.Fatalf("Seal failed: %v", err)
			}

			if len(sealed) != HeaderSize+len(tc.payload) {
				t.Errorf("sealed size: got %d, want %d", len(sealed), HeaderSize+len(tc.payload))
			}

			envelope, err := OpenEnvelope(sealed)
			if err != nil {
				t.Fatalf("OpenEnvelope failed: %v", err)
			}

			if !bytes.Equal(envelope.Payload, tc.payload) {
				t.Errorf("Payload mismatch: got %v, want %v", envelope.Payload, tc.payload)
			}

			if envelope.Size != uint32(len(tc.payload)) {
				t.Errorf("Size mismatch: got %d, want %d", envelope.Size, len(tc.payload))
			}

			// Check timestamp is reasonable (within last minute)
			if since := time.Since(envelope.Time()); since < 0 || since > time.Minute {
				t.Errorf("Timestamp seems unreasonable: %d", envelope.Timestamp)
			}
		})
	}
}

func TestEnvelope_Corruption(t *testing.T) {
	sealed, err := Seal([]byte("heap field"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	testCases := []struct {
		name    string
		corrupt func(data []byte) []byte
	}{
		{
			name:    "flipped CRC",
			corrupt: func(data []byte) []byte { data[0] ^= 0xFF; return data },
		},
		{
			name:    "flipped timestamp",
			corrupt: func(data []byte) []byte { data[9] ^= 0x01; return data },
		},
		{
			name:    "flipped payload byte",
			corrupt: func(data []byte) []byte { data[len(data)-1] ^= 0x01; return data },
		},
		{
			name:    "short header",
			corrupt: func(data []byte) []byte { return data[:HeaderSize-1] },
		},
		{
			name:    "missing payload byte",
			corrupt: func(data []byte) []byte { return data[:len(data)-1] },
		},
		{
			name: "size larger than payload",
			corrupt: func(data []byte) []byte {
				binary.LittleEndian.PutUint32(data[4:], 1<<20)
				return data
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := tc.corrupt(bytes.Clone(sealed))

			_, err := OpenEnvelope(data)
			if !errors.Is(err, ErrCorruption) {
				t.Errorf("expected ErrCorruption, got %v", err)
			}
		})
	}
}

func TestEnvelope_Validate(t *testing.T) {
	envelope, err := NewEnvelope([]byte("payload"))
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}
	if err := envelope.Validate(); err != nil {
		t.Errorf("fresh envelope failed validation: %v", err)
	}

	envelope.Payload = []byte("tampered")
	if err := envelope.Validate(); !errors.Is(err, ErrCorruption) {
		t.Errorf("expected ErrCorruption, got %v", err)
	}
}
