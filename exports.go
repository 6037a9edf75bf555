package tempo

import (
	"github.com/xraph/tempo/tempomap"
	"github.com/xraph/tempo/types"
)

// Re-export common types so callers rarely need the types package.

// Beats is a fixed-point beat quantity in microbeats.
type Beats = types.Beats

// Tempo is a tempo in beats per minute.
type Tempo = types.Tempo

// Timeline maps between time and beats at a single tempo.
type Timeline = types.Timeline

// Entity is re-exported from types package.
type Entity = types.Entity

// TempoMap and Segment are re-exported from the tempomap package.
type (
	TempoMap = tempomap.Map
	Segment  = tempomap.Segment
)

// Beat constructors and helpers
var (
	NewBeats   = types.NewBeats
	MicroBeats = types.MicroBeats
	ZeroBeats  = types.ZeroBeats
	SumBeats   = types.SumBeats
)

// Tempo constructors
var (
	NewTempo               = types.NewTempo
	TempoFromMicrosPerBeat = types.TempoFromMicrosPerBeat
)

// Phase helpers
var (
	Phase                 = types.Phase
	NextPhaseMatch        = types.NextPhaseMatch
	ClosestPhaseMatch     = types.ClosestPhaseMatch
	ToPhaseEncodedBeats   = types.ToPhaseEncodedBeats
	FromPhaseEncodedBeats = types.FromPhaseEncodedBeats
)

// Tempo bounds used by Timeline.Clamp.
const (
	MinBPM = types.MinBPM
	MaxBPM = types.MaxBPM
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
