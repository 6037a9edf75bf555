// Package tempo provides musical-time arithmetic and a tempo-map engine for
// Go applications.
//
// Tempo is a library, not a service. Import it directly into your Go
// application. It provides:
//
//   - Beats, an exact fixed-point beat quantity counted in microbeats
//   - Tempo, a bpm value with microsecond-per-beat conversions
//   - Timeline and phase helpers for quantum-aligned positions
//   - A compositional binary wire codec for every value type
//   - Stored tempo maps with cached time/beat conversions
//   - Pluggable lifecycle hooks, metrics and audit trail
//
// # Quick Start
//
// Create an engine with your preferred store:
//
//	import (
//	    "github.com/xraph/tempo"
//	    "github.com/xraph/tempo/store/memory"
//	)
//
//	e := tempo.New(memory.New())
//	if err := e.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer e.Stop()
//
// # Core Concepts
//
// A tempo map is a list of segments, each starting at a beat position with
// its own tempo:
//
//	m := &tempo.TempoMap{
//	    Slug: "intro",
//	    Segments: []tempo.Segment{
//	        {Start: tempo.ZeroBeats(), Tempo: tempo.NewTempo(120)},
//	        {Start: tempo.NewBeats(16), Tempo: tempo.NewTempo(90)},
//	    },
//	}
//	err := e.CreateTempoMap(ctx, m)
//
// Conversions run against the compiled map:
//
//	beats, err := e.BeatsAt(ctx, m.ID, 10*time.Second)
//	at, err := e.TimeAt(ctx, m.ID, tempo.NewBeats(32))
//
// # Precision
//
// Beats are stored as a signed 64-bit count of microbeats, so addition and
// comparison are exact. Tempo is a float64 bpm, but on the wire it travels
// as whole microseconds per beat: a decoded tempo may differ slightly from
// the original bpm while its microseconds per beat match exactly.
//
// # TypeID
//
// Stored records use TypeID for globally unique, type-safe identifiers:
//
//	tmap_01h2xcejqtf2nbrexx3vqjhp41  // Tempo map ID
//	aud_01h455vb4pex5vsknk084sn02q   // Audit event ID
package tempo
