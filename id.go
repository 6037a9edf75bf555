package tempo

import "github.com/xraph/tempo/id"

// ID is the primary identifier type for all Tempo entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix

// TempoMapID identifies a stored tempo map.
type TempoMapID = id.TempoMapID
