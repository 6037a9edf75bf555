package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/tempo/id"
	"github.com/xraph/tempo/tempomap"
	"github.com/xraph/tempo/types"
)

// ==================== Tempo map models ====================

// Segments are stored as a BSON binary holding their wire encoding.
type tempoMapModel struct {
	grove.BaseModel `grove:"table:tempo_maps"`

	ID        string            `grove:"id,pk"      bson:"_id"`
	Name      string            `grove:"name"       bson:"name"`
	Slug      string            `grove:"slug"       bson:"slug"`
	AppID     string            `grove:"app_id"     bson:"app_id"`
	Segments  []byte            `grove:"segments"   bson:"segments"`
	Metadata  map[string]string `grove:"metadata"   bson:"metadata,omitempty"`
	CreatedAt time.Time         `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time         `grove:"updated_at" bson:"updated_at"`
}

func toTempoMapModel(m *tempomap.Map) *tempoMapModel {
	return &tempoMapModel{
		ID:        m.ID.String(),
		Name:      m.Name,
		Slug:      m.Slug,
		AppID:     m.AppID,
		Segments:  tempomap.EncodeSegments(m.Segments),
		Metadata:  m.Metadata,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromTempoMapModel(m *tempoMapModel) (*tempomap.Map, error) {
	mapID, err := id.ParseTempoMapID(m.ID)
	if err != nil {
		return nil, err
	}

	segments, err := tempomap.DecodeSegments(m.Segments)
	if err != nil {
		return nil, err
	}

	return &tempomap.Map{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:       mapID,
		Name:     m.Name,
		Slug:     m.Slug,
		AppID:    m.AppID,
		Segments: segments,
		Metadata: m.Metadata,
	}, nil
}
