package wire

import "fmt"

// DecodeHeader reads the batch header without checking its values.
func DecodeHeader(buf []byte) (Header, error) {
	var h Header
	if !headerSchema.read(buf, &h) {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrShortHeader, len(buf))
	}
	return h, nil
}

// Decode parses a batch produced by Encode. The header must carry the given
// magic and version. Records are read forward until the end of buf; a record
// that does not fit yields a *DecodeError wrapping ErrTruncated.
func Decode(buf []byte, magic, version uint32) ([]Record, error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.Magic != magic {
		return nil, fmt.Errorf("%w: got %#08x, want %#08x", ErrMagicMismatch, h.Magic, magic)
	}
	if h.Version != version {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, h.Version, version)
	}

	records := make([]Record, 0)
	off := headerSchema.size
	for i := 0; off < len(buf); i++ {
		var f recordFrame
		if !recordSchema.read(buf[off:], &f) {
			return nil, &DecodeError{Index: i, Offset: off, Err: ErrTruncated}
		}
		start := off + recordSchema.size
		end := start + f.msgLen
		if end > len(buf) {
			return nil, &DecodeError{Index: i, Offset: off, Err: ErrTruncated}
		}
		f.rec.Message = string(buf[start:end])
		records = append(records, f.rec)
		off = end
	}
	return records, nil
}
