package session

import "testing"

// FuzzSnapshotDecode exercises the binary snapshot decoder with arbitrary
// inputs. Goal: no panics, no unexpected nil dereferences, graceful error
// handling.
func FuzzSnapshotDecode(f *testing.F) {
	// Seed with a valid v2 encoded snapshot.
	snap := &Snapshot{
		UserID:    "user-fuzz",
		Name:      "Fuzz",
		Email:     "fuzz@example.com",
		Roles:     []string{"admin"},
		CheckedAt: 1700000000,
		SavedAt:   1700003600,
	}
	encoded, err := Encode(snap)
	if err == nil {
		f.Add(encoded)
	}

	// Empty and short inputs.
	f.Add([]byte{})
	f.Add([]byte{0})
	f.Add([]byte{2})
	f.Add([]byte{255, 255, 255})

	// Truncated at various offsets.
	if len(encoded) > 10 {
		f.Add(encoded[:10])
	}
	if len(encoded) > 30 {
		f.Add(encoded[:30])
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		// Must not panic. Errors are expected for malformed input.
		s, err := Decode(data)
		if err != nil {
			return
		}

		// If decode succeeded, re-encode should not panic either.
		if s.SchemaVersion == CurrentSchemaVersion {
			_, _ = Encode(s)
		}
	})
}
