// Package dynamics provides reusable non-I/O dynamics building blocks.
//
// Included units:
//   - Gate: sidechain gain computer with threshold, transition zone and
//     reduction, driven by an attack/release envelope follower.
//   - RMSFollower: moving-window RMS level with a retunable window length.
package dynamics
