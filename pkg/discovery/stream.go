package discovery

import (
	"bytes"
	"context"
	"io"
	"iter"

	"github.com/bgrewell/pssh-box/pkg/box"
)

// MaxBoxSize bounds how large a single candidate box the streaming scanner
// will attempt to buffer and validate, protecting against a corrupted or
// adversarial size field that does not exceed the declared input length
// but is still unreasonably large.
const MaxBoxSize = 16 * 1024 * 1024

// readChunkSize is how much new data the streaming scanner pulls from the
// source at a time.
const readChunkSize = 64 * 1024

// trimThreshold bounds how large the scanner's sliding window is allowed to
// grow before bytes already scanned past are dropped, keeping memory use
// independent of total input length.
const trimThreshold = MaxBoxSize + readChunkSize

// FindBoxesStream scans r for PSSH boxes using a bounded-memory, iterative
// sliding window: it never buffers more than a small bounded multiple of
// MaxBoxSize regardless of how much data r produces, and it never recurses,
// so it cannot stack-overflow on adversarial or merely large input.
//
// It is a Go 1.23 range-over-func iterator; ctx is checked once per scan
// step so a caller can bound wall-clock time on a slow source.
func FindBoxesStream(ctx context.Context, r io.Reader) iter.Seq2[*box.PsshBox, error] {
	return func(yield func(*box.PsshBox, error) bool) {
		s := newScanner(r)
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			b, err, ok := s.next()
			if !ok {
				return
			}
			if !yield(b, err) {
				return
			}
		}
	}
}

// FindBoxesStreamSlice is a convenience wrapper over FindBoxesStream for
// callers that want every successfully parsed box as a slice, discarding
// per-candidate errors (mirroring FindBoxesBuffer's tolerant behaviour).
func FindBoxesStreamSlice(ctx context.Context, r io.Reader) ([]*box.PsshBox, error) {
	var boxes []*box.PsshBox
	for b, err := range FindBoxesStream(ctx, r) {
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return boxes, ctxErr
			}
			// A rejected candidate: tolerated, scan continues.
			continue
		}
		if b != nil {
			boxes = append(boxes, b)
		}
	}
	return boxes, nil
}

// scanner holds the sliding-window state for one streaming scan.
type scanner struct {
	r        io.Reader
	window   []byte
	base     int64 // absolute stream offset of window[0]
	scanFrom int   // next index in window to search from
	eof      bool
}

func newScanner(r io.Reader) *scanner {
	return &scanner{r: r}
}

// next returns the next validated box, or a per-candidate error for a
// rejected candidate, or ok=false once the source is exhausted and no
// further candidates remain. This method never recurses: all looping is an
// explicit for-loop, so memory and stack usage are independent of how many
// bytes have been scanned.
func (s *scanner) next() (*box.PsshBox, error, bool) {
	for {
		rel := indexFrom(s.window, s.scanFrom, signature)
		if rel < 0 {
			// No signature in the buffered tail. Refill, or stop if the
			// source is exhausted.
			if s.eof {
				return nil, nil, false
			}
			beforeFill := len(s.window)
			s.fill()
			// Nothing from scanFrom up to 3 bytes before the old window's
			// end could match (already searched); advance scanFrom there so
			// trim can reclaim it, bounding memory use even when the source
			// never contains a signature at all.
			if edge := beforeFill - (len(signature) - 1); edge > s.scanFrom {
				s.scanFrom = edge
			}
			s.trim()
			continue
		}

		sigAbs := rel // index within window
		if sigAbs < 4 {
			// Not enough leading context buffered to read the size field;
			// this can only happen right at the very start of the stream,
			// in which case there is no valid box here. Skip past it.
			s.scanFrom = sigAbs + 1
			continue
		}
		start := sigAbs - 4
		size := int(readUint32(s.window, start))
		if size < minHeaderLen || size > MaxBoxSize {
			s.scanFrom = sigAbs + 1
			continue
		}
		// Make sure the whole candidate box is buffered.
		for start+size > len(s.window) && !s.eof {
			s.fill()
		}
		if start+size > len(s.window) {
			// Source ended mid-box: not a valid candidate.
			s.scanFrom = sigAbs + 1
			continue
		}

		candidate := s.window[start : start+size]
		b, _, err := box.Unmarshal(candidate)
		// Progress is guaranteed regardless of outcome.
		s.scanFrom = sigAbs + 1
		s.trim()
		if err != nil {
			log.Debug("rejecting streamed pssh candidate", "offset", s.base+int64(start), "error", err)
			return nil, err, true
		}
		return b, nil, true
	}
}

// fill reads one more chunk from the source into the window. It reports
// whether any bytes were read.
func (s *scanner) fill() bool {
	buf := make([]byte, readChunkSize)
	n, err := s.r.Read(buf)
	if n > 0 {
		s.window = append(s.window, buf[:n]...)
	}
	if err != nil {
		s.eof = true
	}
	return n > 0
}

// trim drops bytes the scanner will never need to look at again, bounding
// window size independent of total stream length.
func (s *scanner) trim() {
	safe := s.scanFrom - 4
	if safe <= 0 {
		return
	}
	if len(s.window) < trimThreshold && safe < readChunkSize {
		return
	}
	s.base += int64(safe)
	s.window = s.window[safe:]
	s.scanFrom -= safe
}

func readUint32(window []byte, start int) uint32 {
	return uint32(window[start])<<24 | uint32(window[start+1])<<16 | uint32(window[start+2])<<8 | uint32(window[start+3])
}

func indexFrom(window []byte, from int, sig []byte) int {
	if from >= len(window) {
		return -1
	}
	i := bytes.Index(window[from:], sig)
	if i < 0 {
		return -1
	}
	return from + i
}
