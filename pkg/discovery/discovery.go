// Package discovery locates PSSH boxes embedded in arbitrary byte streams
// that may contain unrelated container framing: signature-scan for the
// ASCII bytes "pssh", then validate each candidate by re-parsing it as a
// full box.
package discovery

import (
	"bytes"

	"github.com/bgrewell/pssh-box/pkg/box"
	"github.com/bgrewell/pssh-box/pkg/logging"
)

var log = logging.DefaultLogger().Named("discovery")

// SetLogger replaces this package's logger, nesting it under "discovery".
// Shared by both the buffer scanner (this file) and the streaming scanner
// (stream.go). By default logging is discarded.
func SetLogger(l *logging.Logger) {
	log = l.Named("discovery")
}

// signature is the 4-byte ASCII marker this package scans for.
var signature = []byte("pssh")

// minHeaderLen is the number of bytes that must be present from the
// signature offset onward for a candidate to be worth validating:
// type(4)+version/flags(4)+system_id(16). candidateSize also rejects any
// declared size smaller than this.
const minHeaderLen = 24

// FindPositions returns, in ascending order, the start offset (of the size
// field, i.e. signatureOffset-4) of every byte range in buf that validates
// as a complete PSSH box.
func FindPositions(buf []byte) []int {
	var positions []int
	for _, o := range signatureOffsets(buf) {
		if o+minHeaderLen > len(buf) {
			continue
		}
		start := o - 4
		size, ok := candidateSize(buf, start)
		if !ok {
			continue
		}
		if _, _, err := box.Unmarshal(buf[start : start+size]); err != nil {
			continue
		}
		positions = append(positions, start)
	}
	return positions
}

// FindBoxesBuffer returns every PSSH box that validates inside buf, parsed.
func FindBoxesBuffer(buf []byte) []*box.PsshBox {
	var boxes []*box.PsshBox
	for _, o := range signatureOffsets(buf) {
		if o+minHeaderLen > len(buf) {
			continue
		}
		start := o - 4
		size, ok := candidateSize(buf, start)
		if !ok {
			continue
		}
		b, _, err := box.Unmarshal(buf[start : start+size])
		if err != nil {
			log.Debug("rejecting candidate pssh box", "offset", start, "error", err)
			continue
		}
		boxes = append(boxes, b)
	}
	return boxes
}

// signatureOffsets returns every offset of the literal "pssh" signature in
// buf, in ascending order, including overlapping occurrences.
func signatureOffsets(buf []byte) []int {
	var offsets []int
	from := 0
	for {
		i := bytes.Index(buf[from:], signature)
		if i < 0 {
			break
		}
		offsets = append(offsets, from+i)
		from += i + 1
	}
	return offsets
}

// candidateSize reads the big-endian size field at buf[start:start+4] and
// reports whether it names a plausible box fully contained in buf.
func candidateSize(buf []byte, start int) (int, bool) {
	if start < 0 || start+4 > len(buf) {
		return 0, false
	}
	size := uint32(buf[start])<<24 | uint32(buf[start+1])<<16 | uint32(buf[start+2])<<8 | uint32(buf[start+3])
	if size < minHeaderLen || uint64(start)+uint64(size) > uint64(len(buf)) {
		return 0, false
	}
	return int(size), true
}
