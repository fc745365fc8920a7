// Package wire implements the binary batch format shipped to log collectors.
//
// A batch is a fixed 8-byte header followed by zero or more records laid out
// back to back. Every multi-byte integer is little-endian and there is no
// padding, record count or terminator; the end of the buffer is the end of the
// batch.
//
//	header:  magic u32 | version u32
//	record:  id u64 | timestamp_ms u64 | level u8 | code u16 | msg_len u16 | message
//
// The layouts are declared once as schemas and drive both [Encode] and
// [Decode], so the two directions cannot drift apart.
//
// # Usage
//
//	buf, err := wire.Encode([]wire.Record{
//	    {TimestampMs: clock.System.NowMillis(), Level: wire.LevelInfo, Code: 1001, Message: "Service started"},
//	}, wire.DefaultMagic, wire.DefaultVersion)
//	if err != nil {
//	    return err // errors.Is(err, wire.ErrMessageTooLong)
//	}
//
// Magic and version are always supplied by the caller. The defaults below are
// only a convention shared with the reference collector.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package wire
