package term

// Version constants for the serialized term format and the toolchain.
const (
	// FormatVersion is the serialized term schema version.
	FormatVersion = "1"

	// EngineVersion is the strata toolchain version.
	EngineVersion = "0.1.0"
)
