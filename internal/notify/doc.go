// Package notify plays a short audible cue when new matches are found.
//
// The Emitter enforces a cooldown: a request that arrives within the
// cooldown window after the last emitted cue is dropped, with no queueing.
// Audio failures are logged as warnings and never returned to the caller,
// so a missing sound device cannot interrupt highlighting.
//
// The cue is an 880 Hz sine tone, 300ms long at 0.2 gain, rendered as a
// 16-bit mono WAV. Players decide how the tone reaches the user: an
// external audio command, the terminal bell, or nothing at all.
package notify
