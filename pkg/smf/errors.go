package smf

import "errors"

// ErrBufferExhausted is returned when the in-memory stream buffer cannot
// grow without exceeding its configured size limit. The bytes written so
// far stay intact.
var ErrBufferExhausted = errors.New("midi stream buffer exhausted")

// ErrNotOpen is returned when a write or close is attempted on a Writer
// that has no open stream, including a second Close.
var ErrNotOpen = errors.New("midi stream is not open")

// ErrAlreadyOpen is returned by Open while the Writer still has an open
// stream.
var ErrAlreadyOpen = errors.New("midi stream is already open")

// ErrPersistFailed is returned by Close when the finished stream could
// not be written to storage. The stream is released regardless.
var ErrPersistFailed = errors.New("failed to persist midi stream")
