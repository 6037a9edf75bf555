package types

import "time"

// Phase returns the position of beats within a cycle of length quantum, in
// the range [0, quantum). Negative beat values wrap correctly. A zero
// quantum yields zero.
func Phase(beats, quantum Beats) Beats {
	if quantum.IsZero() {
		return Beats{}
	}
	// Shift onto a quantum boundary at or below -|beats| so the remainder is
	// taken over a non-negative value.
	q := quantum.MicroBeats()
	bins := (beats.Abs().MicroBeats() + q) / q
	return beats.Add(MicroBeats(bins * q)).Mod(quantum)
}

// NextPhaseMatch returns the least value not below x whose phase matches
// that of target with respect to quantum.
func NextPhaseMatch(x, target, quantum Beats) Beats {
	desired := Phase(target, quantum)
	current := Phase(x, quantum)
	diff := desired.Subtract(current).Add(quantum).Mod(quantum)
	return x.Add(diff)
}

// ClosestPhaseMatch returns the value closest to x whose phase matches that
// of target with respect to quantum.
func ClosestPhaseMatch(x, target, quantum Beats) Beats {
	return NextPhaseMatch(x.Subtract(NewBeats(0.5*quantum.Floating())), target, quantum)
}

// ToPhaseEncodedBeats treats the timeline origin as a quantum boundary and
// returns the beat value at time t that keeps phase with that boundary.
func ToPhaseEncodedBeats(tl Timeline, t time.Duration, quantum Beats) Beats {
	beat := tl.ToBeats(t)
	return ClosestPhaseMatch(beat, beat.Subtract(tl.BeatOrigin), quantum)
}

// FromPhaseEncodedBeats is the inverse of ToPhaseEncodedBeats.
func FromPhaseEncodedBeats(tl Timeline, beat, quantum Beats) time.Duration {
	fromOrigin := beat.Subtract(tl.BeatOrigin)
	originOffset := fromOrigin.Subtract(Phase(fromOrigin, quantum))
	// Mirror the phase so a value exactly at quantum/2 rounds up here; the
	// forward direction rounds down.
	inverse := ClosestPhaseMatch(
		quantum.Subtract(Phase(fromOrigin, quantum)),
		quantum.Subtract(Phase(beat, quantum)),
		quantum,
	)
	return tl.FromBeats(tl.BeatOrigin.Add(originOffset).Add(quantum).Subtract(inverse))
}
