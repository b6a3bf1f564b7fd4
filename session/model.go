package session

// CurrentSchemaVersion is the binary format version written by [Encode].
const CurrentSchemaVersion = 2

// Snapshot defines a public type used by authcore APIs.
//
// Snapshot instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// A Snapshot is the persisted remnant of an authenticated session: identity
// fields only, never credential material. CheckedAt records the last
// successful remote confirmation so a restoring engine knows how stale the
// identity is.
type Snapshot struct {
	SchemaVersion uint8

	UserID string
	Name   string
	Email  string
	Roles  []string

	// CheckedAt and SavedAt are Unix seconds.
	CheckedAt int64
	SavedAt   int64
}
