package smf

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gumoraes525/QuattroPlay-midi/pkg/fileutil"
	"github.com/gumoraes525/QuattroPlay-midi/pkg/logger"
	"golang.org/x/text/transform"
)

// delayAccumulator collects caller delay units between events. Units are
// tenths of a tick; flush converts with truncating division and starts
// the next span from zero, so at most delayUnitScale-1 units are lost per
// flush.
type delayAccumulator struct {
	units uint64
}

func (a *delayAccumulator) add(units uint32) {
	a.units += uint64(units)
}

// flush returns the accumulated whole ticks and resets the counter. The
// result is truncated to 32 bits; callers must not let a single span
// accumulate beyond that range.
func (a *delayAccumulator) flush() uint32 {
	ticks := a.units / delayUnitScale
	a.units = 0
	return uint32(ticks)
}

// Writer builds one Standard MIDI File at a time. Open starts a stream
// and writes the fixed headers, WriteEvent, WriteTag and Delay append to
// it, and Close patches the track length, persists the finished bytes and
// releases the buffer. After Close the Writer can be opened again for the
// next stream, and several independent Writers may be live at once.
// Methods are safe for concurrent use, though a stream is normally
// produced from a single goroutine.
type Writer struct {
	mu sync.Mutex

	fs          fileutil.FileSystem
	log         *slog.Logger
	now         func() time.Time
	transformer transform.Transformer
	initialSize int
	maxSize     int

	buf          *trackBuffer
	delay        delayAccumulator
	lengthOffset int
	payloadStart int
	name         string
	open         bool
}

// Option is a functional option for configuring a Writer.
type Option func(*Writer)

// WithFileSystem sets the storage the finished stream is persisted to.
// The default is the real file system relative to the current directory.
func WithFileSystem(fs fileutil.FileSystem) Option {
	return func(w *Writer) {
		w.fs = fs
	}
}

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(w *Writer) {
		w.log = log
	}
}

// WithClock sets the time source used for tag timestamps. Tests pin it to
// get reproducible tag text.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		w.now = now
	}
}

// WithTextTransformer sets a transformer applied to tag text before it is
// written, for callers that need the text meta event in a legacy encoding
// such as Shift_JIS. By default the text is written as is.
func WithTextTransformer(t transform.Transformer) Option {
	return func(w *Writer) {
		w.transformer = t
	}
}

// WithInitialBufferSize sets the buffer capacity allocated at Open.
func WithInitialBufferSize(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.initialSize = n
		}
	}
}

// WithMaxBufferSize caps buffer growth. A stream that outgrows the cap
// fails with ErrBufferExhausted instead of allocating further. Zero means
// no limit.
func WithMaxBufferSize(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.maxSize = n
		}
	}
}

// NewWriter creates a Writer with the given options. The zero
// configuration persists finished streams under the current directory and
// stamps tags with the wall clock.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{
		fs:          fileutil.NewRealFS(""),
		log:         logger.GetLogger(),
		now:         time.Now,
		initialSize: DefaultInitialBufferSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Open starts a new stream that Close will persist under name. The name
// gets a ".mid" suffix unless it already ends in one, compared without
// regard to case. The file header and the track chunk header with its
// four-byte length placeholder are written immediately.
func (w *Writer) Open(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.open {
		return fmt.Errorf("%w: %s", ErrAlreadyOpen, w.name)
	}

	buf := newTrackBuffer(w.initialSize, w.maxSize)
	lengthOffset, payloadStart, err := writeStreamHeader(buf)
	if err != nil {
		return err
	}

	w.buf = buf
	w.lengthOffset = lengthOffset
	w.payloadStart = payloadStart
	w.name = normalizeName(name)
	w.delay = delayAccumulator{}
	w.open = true

	w.log.Debug("midi stream opened", "file", w.name, "division", TicksPerQuarterNote)
	return nil
}

// Delay adds units of pending delay to the stream. Ten units make one
// MIDI tick; the conversion happens when the next event is written.
func (w *Writer) Delay(units uint32) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return ErrNotOpen
	}
	w.delay.add(units)
	return nil
}

// WriteEvent appends one message preceded by its delta-time. The channel
// is masked to 0-15 and data1/data2 follow the layout of the selected
// command:
//
//	CommandNoteOn, CommandNoteOff  data1 = note, data2 = velocity
//	CommandControlChange           data1 = controller, data2 = value
//	CommandProgramChange           data2 = program (data1 ignored)
//	CommandPitchBend               data2 = 14-bit bend value
//	CommandMeta with data1 = MetaEndOfTrack  end-of-track marker
//
// Any other command, including SysEx and the remaining meta types, writes
// no message bytes. The pending delta-time has been flushed by then, so
// dropped events never disturb the timing of later ones.
func (w *Writer) WriteEvent(command, channel byte, data1, data2 uint16) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return ErrNotOpen
	}
	if err := w.flushDelta(); err != nil {
		return err
	}

	status := command&0xF0 | channel&0x0F
	switch command & 0xF0 {
	case CommandNoteOn, CommandNoteOff, CommandControlChange:
		return w.buf.appendBytes([]byte{status, byte(data1 & 0x7F), byte(data2 & 0x7F)})
	case CommandProgramChange:
		return w.buf.appendBytes([]byte{status, byte(data2 & 0x7F)})
	case CommandPitchBend:
		bend := data2 & 0x3FFF
		return w.buf.appendBytes([]byte{status, byte(bend & 0x7F), byte(bend >> 7 & 0x7F)})
	case 0xF0:
		if command == CommandMeta && data1&0xFF == MetaEndOfTrack {
			return w.buf.appendBytes([]byte{CommandMeta, MetaEndOfTrack, 0x00})
		}
	}

	// Dropped on purpose: the delta above stays in the stream so the
	// next event keeps its timing.
	w.log.Debug("unsupported midi command dropped", "command", fmt.Sprintf("%#02x", command))
	return nil
}

// WriteTag appends a text meta event built from label, an optional song
// id and a generation timestamp, preceded by the usual delta-time. A
// negative songID omits the id segment; otherwise the id is reduced to 11
// bits and rendered in hex.
func (w *Writer) WriteTag(label string, songID int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return ErrNotOpen
	}

	text := w.tagText(label, songID)
	if w.transformer != nil {
		converted, _, err := transform.String(w.transformer, text)
		if err != nil {
			return fmt.Errorf("failed to transform tag text: %w", err)
		}
		text = converted
	}

	if err := w.flushDelta(); err != nil {
		return err
	}
	if err := w.buf.appendBytes([]byte{CommandMeta, MetaText}); err != nil {
		return err
	}
	if err := w.buf.appendBytes(appendVarLen(nil, uint32(len(text)))); err != nil {
		return err
	}
	return w.buf.appendBytes([]byte(text))
}

// Close finishes the stream: the residual delta-time and a final
// end-of-track marker are appended, the track length placeholder is
// patched, and the whole buffer goes to storage in one write. An
// end-of-track marker already written by the caller is not deduplicated.
// The buffer is released and the Writer returns to the closed state even
// when persistence fails, so a failed Close never leaks the stream or
// leaves it half open.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return ErrNotOpen
	}

	name := w.name
	data, trackLen, err := w.finalize()

	w.buf = nil
	w.name = ""
	w.open = false

	if err != nil {
		return err
	}
	if err := w.fs.WriteFile(name, data); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	w.log.Debug("midi stream closed", "file", name, "track_bytes", trackLen, "total_bytes", len(data))
	return nil
}

// finalize terminates the track and patches the length field, returning
// the finished file image. Nothing is persisted here; a failure leaves no
// partial file behind.
func (w *Writer) finalize() ([]byte, uint32, error) {
	if err := w.flushDelta(); err != nil {
		return nil, 0, err
	}
	if err := w.buf.appendBytes([]byte{CommandMeta, MetaEndOfTrack, 0x00}); err != nil {
		return nil, 0, err
	}
	trackLen := uint32(w.buf.position() - w.payloadStart)
	if err := w.buf.patchUint32(w.lengthOffset, trackLen); err != nil {
		return nil, 0, err
	}
	return w.buf.bytes(), trackLen, nil
}

// flushDelta writes the VLQ delta-time for the next message and resets
// the accumulator. Called exactly once before every event and tag and
// once more at close, so a zero delta still appears in the stream.
func (w *Writer) flushDelta() error {
	return w.buf.appendBytes(appendVarLen(nil, w.delay.flush()))
}

// tagText renders the tag body: label, optional song id in hex, and a
// timestamp.
func (w *Writer) tagText(label string, songID int) string {
	stamp := w.now().Format(tagTimeLayout)
	if songID < 0 {
		return fmt.Sprintf("%s — Generated: %s", label, stamp)
	}
	return fmt.Sprintf("%s — Song ID: %03x — Generated: %s", label, songID&0x7FF, stamp)
}

// writeStreamHeader emits the file header and the track chunk prefix,
// returning the offsets of the length placeholder and of the first
// payload byte.
func writeStreamHeader(buf *trackBuffer) (lengthOffset, payloadStart int, err error) {
	if err = buf.appendBytes([]byte(headerChunkID)); err != nil {
		return 0, 0, err
	}
	if err = buf.appendUint32(headerDataLength); err != nil {
		return 0, 0, err
	}
	if err = buf.appendUint16(formatSingleTrack); err != nil {
		return 0, 0, err
	}
	if err = buf.appendUint16(headerTrackCount); err != nil {
		return 0, 0, err
	}
	if err = buf.appendUint16(TicksPerQuarterNote); err != nil {
		return 0, 0, err
	}
	if err = buf.appendBytes([]byte(trackChunkID)); err != nil {
		return 0, 0, err
	}
	lengthOffset = buf.position()
	if err = buf.appendUint32(0); err != nil {
		return 0, 0, err
	}
	return lengthOffset, buf.position(), nil
}

// normalizeName appends the ".mid" suffix unless name already ends in
// one. The check ignores case so "SONG.MID" passes through unchanged.
func normalizeName(name string) string {
	if strings.HasSuffix(strings.ToLower(name), midiFileExt) {
		return name
	}
	return name + midiFileExt
}
