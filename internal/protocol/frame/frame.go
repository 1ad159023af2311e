package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// HeaderLen is the size of the length prefix. The prefix counts itself.
const HeaderLen = 4

var (
	ErrTransportClosed = errors.New("frame: transport closed")
	ErrFrameTooLarge   = errors.New("frame: frame too large")
	ErrInvalidLength   = errors.New("frame: declared length smaller than header")
)

// TransportError wraps an I/O failure that is not a clean closure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("frame: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxPayloadBytes uint32
}

func DefaultLimits() Limits {
	return Limits{
		MaxPayloadBytes: 16 * 1024 * 1024,
	}
}

// ReadFrame reads one length-prefixed frame and returns its payload.
// The declared length is checked against limits before the body is allocated.
func ReadFrame(r io.Reader, limits Limits) ([]byte, error) {
	var hdr [HeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, classifyRead("read header", err)
	}

	total, err := DecodeHeader(hdr[:])
	if err != nil {
		return nil, err
	}
	if total < HeaderLen {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, total)
	}
	n := total - HeaderLen
	if limits.MaxPayloadBytes > 0 && n > limits.MaxPayloadBytes {
		return nil, fmt.Errorf("%w: declared=%d max=%d", ErrFrameTooLarge, n, limits.MaxPayloadBytes)
	}

	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, classifyRead("read payload", err)
		}
	}
	return payload, nil
}

// WriteFrame writes payload as one frame. Header and body go out in a single
// buffer so a frame is never interleaved on the wire.
func WriteFrame(w io.Writer, payload []byte, limits Limits) error {
	if uint64(len(payload)) > uint64(^uint32(0))-HeaderLen {
		return fmt.Errorf("%w: payload=%d", ErrFrameTooLarge, len(payload))
	}
	if limits.MaxPayloadBytes > 0 && uint64(len(payload)) > uint64(limits.MaxPayloadBytes) {
		return fmt.Errorf("%w: payload=%d max=%d", ErrFrameTooLarge, len(payload), limits.MaxPayloadBytes)
	}

	buf := make([]byte, HeaderLen+len(payload))
	copy(buf, EncodeHeader(uint32(HeaderLen+len(payload))))
	copy(buf[HeaderLen:], payload)

	for len(buf) > 0 {
		n, err := w.Write(buf)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return ErrTransportClosed
			}
			return &TransportError{Op: "write", Err: err}
		}
		if n == 0 {
			return &TransportError{Op: "write", Err: io.ErrShortWrite}
		}
		buf = buf[n:]
	}
	return nil
}

func EncodeHeader(total uint32) []byte {
	buf := make([]byte, HeaderLen)
	binary.BigEndian.PutUint32(buf, total)
	return buf
}

func DecodeHeader(b []byte) (uint32, error) {
	if len(b) != HeaderLen {
		return 0, fmt.Errorf("frame: invalid header length: %d", len(b))
	}
	return binary.BigEndian.Uint32(b), nil
}

func classifyRead(op string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.ErrClosedPipe) {
		return ErrTransportClosed
	}
	return &TransportError{Op: op, Err: err}
}
