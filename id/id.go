// Package id defines TypeID-based identity types for Tempo records.
//
// Every persisted record carries a single ID struct whose prefix names the
// record kind. IDs are K-sortable (UUIDv7-based), globally unique and
// URL-safe in the format "prefix_suffix". They also have a wire encoding so
// they can travel alongside tempo values.
package id

import (
	"database/sql/driver"
	"fmt"

	"go.jetify.com/typeid/v2"

	"github.com/xraph/tempo/wire"
)

// Prefix identifies the record kind encoded in a TypeID.
type Prefix string

// Prefix constants for Tempo record kinds.
const (
	PrefixTempoMap   Prefix = "tmap" // Stored tempo map
	PrefixAuditEvent Prefix = "aud"  // Audit trail entry
)

// ID is the identifier type for all Tempo records.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix.
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}
	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string such as "tmap_01h2xcejqtf2nbrexx3vqjhp41".
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}
	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses s and checks that its prefix is expected.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}
	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}
	return parsed, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}
	return parsed
}

// MustParseWithPrefix is like ParseWithPrefix but panics on error.
func MustParseWithPrefix(s string, expected Prefix) ID {
	parsed, err := ParseWithPrefix(s, expected)
	if err != nil {
		panic(fmt.Sprintf("id: must parse with prefix %q: %v", expected, err))
	}
	return parsed
}

// TempoMapID identifies a stored tempo map (prefix: "tmap").
type TempoMapID = ID

// AuditEventID identifies an audit trail entry (prefix: "aud").
type AuditEventID = ID

// NewTempoMapID generates a new tempo map ID.
func NewTempoMapID() ID { return New(PrefixTempoMap) }

// NewAuditEventID generates a new audit event ID.
func NewAuditEventID() ID { return New(PrefixAuditEvent) }

// ParseTempoMapID parses s and validates the "tmap" prefix.
func ParseTempoMapID(s string) (ID, error) { return ParseWithPrefix(s, PrefixTempoMap) }

// ParseAuditEventID parses s and validates the "aud" prefix.
func ParseAuditEventID(s string) (ID, error) { return ParseWithPrefix(s, PrefixAuditEvent) }

// ──────────────────────────────────────────────────
// ID methods
// ──────────────────────────────────────────────────

// String returns "prefix_suffix", or "" for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}
	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}
	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool { return !i.valid }

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}
	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil
		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// Value implements driver.Valuer. The Nil ID is stored as NULL.
func (i ID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}
	return i.inner.String(), nil
}

// Scan implements sql.Scanner.
func (i *ID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*i = Nil
		return nil
	case string:
		return i.UnmarshalText([]byte(v))
	case []byte:
		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into ID", src)
	}
}

// ──────────────────────────────────────────────────
// Wire encoding
// ──────────────────────────────────────────────────

// SizeInByteStream implements wire.Serializable.
func (i ID) SizeInByteStream() uint32 { return wire.SizeString(i.String()) }

// AppendByteStream implements wire.Serializable. The ID travels as its
// length-prefixed text form; the Nil ID is an empty string.
func (i ID) AppendByteStream(b []byte) []byte { return wire.AppendString(b, i.String()) }

// Read decodes an ID from the front of b.
func Read(b []byte) (ID, []byte, error) {
	s, rest, err := wire.ReadString(b)
	if err != nil {
		return Nil, b, fmt.Errorf("id: %w", err)
	}
	if s == "" {
		return Nil, rest, nil
	}

	parsed, err := Parse(s)
	if err != nil {
		return Nil, b, err
	}
	return parsed, rest, nil
}
