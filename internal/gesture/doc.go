// Package gesture detects the "wiggle" gesture — shaking a dragged entity
// back and forth rapidly — from a stream of per-frame position samples.
//
// The package is organised as a small pipeline: a SampleBuffer holds the
// time-windowed motion history for one entity, Classify reduces a buffer
// snapshot to motion metrics and a verdict, and a Detector owns one session
// per tracked entity, applies edge-trigger logic, and emits Events to
// registered listeners. The host drives everything through synchronous
// OnTick calls; the package contains no timers, goroutines, or loops.
package gesture
