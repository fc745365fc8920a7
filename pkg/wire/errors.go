package wire

import (
	"errors"
	"fmt"
)

// Encoding and decoding errors. Check them with errors.Is.
var (
	// ErrMessageTooLong is returned by Encode when a message exceeds MaxMessageLen bytes.
	ErrMessageTooLong = errors.New("wire: message too long")

	// ErrShortHeader is returned by Decode when the buffer cannot hold a header.
	ErrShortHeader = errors.New("wire: buffer shorter than batch header")

	// ErrMagicMismatch is returned by Decode when the header magic is not the expected one.
	ErrMagicMismatch = errors.New("wire: magic mismatch")

	// ErrVersionMismatch is returned by Decode when the header version is not the expected one.
	ErrVersionMismatch = errors.New("wire: version mismatch")

	// ErrTruncated is returned by Decode when a record runs past the end of the buffer.
	ErrTruncated = errors.New("wire: truncated record")
)

// RecordError reports the record that made Encode fail.
type RecordError struct {
	// Index is the position of the record in the batch.
	Index int

	// Length is the UTF-8 byte length of the rejected message.
	Length int

	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%v: record %d has %d bytes (max %d)", e.Err, e.Index, e.Length, MaxMessageLen)
}

func (e *RecordError) Unwrap() error { return e.Err }

// DecodeError reports where Decode stopped.
type DecodeError struct {
	// Index is the position of the record being parsed.
	Index int

	// Offset is the byte offset of that record in the buffer.
	Offset int

	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: record %d at offset %d", e.Err, e.Index, e.Offset)
}

func (e *DecodeError) Unwrap() error { return e.Err }
