package wire

// Version information for the wire module.
const (
	// Version is the current version of the wire module.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)

// Protocol defaults. Encoder and collector must agree on both out of band.
const (
	// DefaultMagic is "LOGP" read as a little-endian u32.
	DefaultMagic uint32 = 0x4C4F4750

	// DefaultVersion is the first revision of the batch format.
	DefaultVersion uint32 = 1
)
