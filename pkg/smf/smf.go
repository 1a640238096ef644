// Package smf encodes a stream of timed events into a Standard MIDI File
// (format 0, single track) assembled in memory and persisted when the
// stream is closed.
//
// A Writer owns one stream at a time. Open writes the fixed file header
// and reserves the track length field, WriteEvent and WriteTag append
// delta-timed messages, Delay accumulates time between them, and Close
// terminates the track, patches the reserved length and hands the result
// to storage in a single write. This is not a general MIDI library: only
// the message subset listed at WriteEvent is emitted, everything else is
// accepted and dropped without disturbing the timing of later events.
package smf

// Command bytes recognized by WriteEvent. The channel bits of the status
// byte are filled in from the channel argument.
const (
	CommandNoteOff         = 0x80
	CommandNoteOn          = 0x90
	CommandPolyPressure    = 0xA0
	CommandControlChange   = 0xB0
	CommandProgramChange   = 0xC0
	CommandChannelPressure = 0xD0
	CommandPitchBend       = 0xE0
	CommandMeta            = 0xFF
)

// Meta event types the Writer can emit.
const (
	MetaText       = 0x01
	MetaEndOfTrack = 0x2F
)

// TicksPerQuarterNote is the fixed time division written into every file
// header.
const TicksPerQuarterNote = 480

const (
	headerChunkID     = "MThd"
	trackChunkID      = "MTrk"
	headerDataLength  = 6
	formatSingleTrack = 0
	headerTrackCount  = 1

	// delayUnitScale converts caller delay units into MIDI ticks: ten
	// units make one tick. The scale is a legacy of the unit the
	// upstream sound driver counts in.
	delayUnitScale = 10

	// midiFileExt is appended to stream names that do not already
	// carry it.
	midiFileExt = ".mid"

	// tagTimeLayout is the timestamp format embedded in tag text.
	tagTimeLayout = "2006-01-02 15:04:05"
)
