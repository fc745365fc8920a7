package wire

// Encode serializes records, in order, into a single batch buffer.
//
// Encoding is all-or-nothing: if any message is longer than MaxMessageLen
// bytes, Encode returns a nil buffer and a *RecordError wrapping
// ErrMessageTooLong for the first such record. ID, timestamp, level and code
// are written as given.
func Encode(records []Record, magic, version uint32) ([]byte, error) {
	size, err := encodedLen(records)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, size)
	buf = headerSchema.append(buf, &Header{Magic: magic, Version: version})
	for i := range records {
		f := recordFrame{rec: records[i], msgLen: len(records[i].Message)}
		buf = recordSchema.append(buf, &f)
		buf = append(buf, records[i].Message...)
	}
	return buf, nil
}

// EncodedLen returns the size Encode would produce for records, ignoring the
// message length limit.
func EncodedLen(records []Record) int {
	n := headerSchema.size
	for i := range records {
		n += RecordLen(records[i])
	}
	return n
}

// RecordLen returns the encoded size of a single record.
func RecordLen(r Record) int {
	return recordSchema.size + len(r.Message)
}

func encodedLen(records []Record) (int, error) {
	n := headerSchema.size
	for i := range records {
		l := len(records[i].Message)
		if l > MaxMessageLen {
			return 0, &RecordError{Index: i, Length: l, Err: ErrMessageTooLong}
		}
		n += recordSchema.size + l
	}
	return n, nil
}
