package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/tempo/id"
	"github.com/xraph/tempo/tempomap"
	"github.com/xraph/tempo/types"
)

// ==================== Tempo map models ====================

type tempoMapModel struct {
	grove.BaseModel `grove:"table:tempo_maps"`

	ID        string            `grove:"id,pk"`
	Name      string            `grove:"name"`
	Slug      string            `grove:"slug"`
	AppID     string            `grove:"app_id"`
	Segments  []byte            `grove:"segments,type:bytea"`
	Metadata  map[string]string `grove:"metadata,type:jsonb"`
	CreatedAt time.Time         `grove:"created_at"`
	UpdatedAt time.Time         `grove:"updated_at"`
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

	metadata := m.Metadata
	if len(metadata) == 0 {
		metadata = nil
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
		Metadata: metadata,
	}, nil
}
