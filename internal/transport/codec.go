package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"device-core/pkg/crypto_util"
)

// Frame layout: 4-byte big-endian payload length, 4-byte BLAKE3 checksum
// of the payload, then the payload itself. The checksum catches link
// corruption before the JSON decoder sees it; it is not an
// authentication mechanism, the payload stays untrusted either way.

const (
	headerSize   = 8
	MaxFrameSize = 1 << 20 // generous; a prev txn plus overhead stays well below this
)

var (
	ErrFrameTooLarge  = errors.New("frame exceeds maximum size")
	ErrChecksumFailed = errors.New("frame checksum mismatch")
)

// WriteFrame writes one framed payload.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return ErrFrameTooLarge
	}

	var header [headerSize]byte
	binary.BigEndian.PutUint32(header[:4], uint32(len(payload)))
	checksum := crypto_util.FrameChecksum(payload)
	copy(header[4:], checksum[:])

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one framed payload, verifying length bound and checksum.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(header[:4])
	if length > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload: %w", err)
	}

	checksum := crypto_util.FrameChecksum(payload)
	if [4]byte(header[4:8]) != checksum {
		return nil, ErrChecksumFailed
	}
	return payload, nil
}
