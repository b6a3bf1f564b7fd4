package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const (
	snapshotFormatVersionCurrent = CurrentSchemaVersion
	snapshotFormatVersionV1      = 1
)

const maxRoles = 255

// Encode serializes s into the current binary format.
func Encode(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(snapshotFormatVersionCurrent)

	if err := writeString(&buf, "userID", s.UserID); err != nil {
		return nil, err
	}
	if err := writeString(&buf, "name", s.Name); err != nil {
		return nil, err
	}
	if err := writeString(&buf, "email", s.Email); err != nil {
		return nil, err
	}

	if len(s.Roles) > maxRoles {
		return nil, errors.New("too many roles")
	}
	buf.WriteByte(byte(len(s.Roles)))
	for _, role := range s.Roles {
		if err := writeString(&buf, "role", role); err != nil {
			return nil, err
		}
	}

	if err := binary.Write(&buf, binary.BigEndian, s.CheckedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.SavedAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses data encoded by any supported schema version. v1 snapshots
// predate role lists and migrate forward with Roles left nil.
func Decode(data []byte) (*Snapshot, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != snapshotFormatVersionCurrent && version != snapshotFormatVersionV1 {
		return nil, errors.New("invalid snapshot version")
	}

	s := &Snapshot{SchemaVersion: version}

	if s.UserID, err = readString(reader); err != nil {
		return nil, err
	}
	if s.Name, err = readString(reader); err != nil {
		return nil, err
	}
	if s.Email, err = readString(reader); err != nil {
		return nil, err
	}

	if version == snapshotFormatVersionCurrent {
		count, err := reader.ReadByte()
		if err != nil {
			return nil, err
		}
		if count > 0 {
			s.Roles = make([]string, 0, count)
			for i := 0; i < int(count); i++ {
				role, err := readString(reader)
				if err != nil {
					return nil, err
				}
				s.Roles = append(s.Roles, role)
			}
		}
	}

	if err := binary.Read(reader, binary.BigEndian, &s.CheckedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.SavedAt); err != nil {
		return nil, err
	}

	return s, nil
}

func writeString(buf *bytes.Buffer, field, value string) error {
	if len(value) > 255 {
		return errors.New(field + " too long")
	}
	buf.WriteByte(byte(len(value)))
	buf.WriteString(value)
	return nil
}

func readString(reader *bytes.Reader) (string, error) {
	length, err := reader.ReadByte()
	if err != nil {
		return "", err
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return "", err
	}
	return string(raw), nil
}
