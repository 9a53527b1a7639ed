// Package stream implements the HTTP range-request protocol for media
// streaming: parsing Range headers against a known object size and building
// 200/206/416 responses with download-prevention headers.
package stream

import (
	"errors"
	"strconv"
	"strings"
)

// ErrUnsatisfiable marks a Range header that is present but cannot be
// honored: out-of-bounds start, invalid syntax, unsupported unit, or a
// multi-range list. Callers must answer 416 with Content-Range: bytes */{size}.
var ErrUnsatisfiable = errors.New("requested range not satisfiable")

// ByteRange is a parsed, clamped byte interval. Both bounds are 0-indexed
// and inclusive.
type ByteRange struct {
	Start int64
	End   int64
}

// Len returns the number of bytes covered by the range.
func (b ByteRange) Len() int64 { return b.End - b.Start + 1 }

// ParseRange interprets a Range request header value against a resource of
// the given size.
//
// A (nil, nil) return means the header was absent and the caller should
// serve the full resource with status 200. A header that is present but
// malformed or entirely out of bounds yields ErrUnsatisfiable; it never
// falls back to a full-body 200.
//
// Supported forms (single range only; comma-separated lists are rejected):
//
//	bytes=a-b   → [a, min(b, size-1)]
//	bytes=a-    → [a, size-1]
//	bytes=-n    → last n bytes; the whole resource when n >= size
func ParseRange(header string, size int64) (*ByteRange, error) {
	if header == "" {
		return nil, nil
	}
	if !strings.HasPrefix(header, "bytes=") {
		return nil, ErrUnsatisfiable
	}
	spec := strings.TrimPrefix(header, "bytes=")
	if strings.Contains(spec, ",") {
		return nil, ErrUnsatisfiable
	}
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return nil, ErrUnsatisfiable
	}
	startStr := strings.TrimSpace(parts[0])
	endStr := strings.TrimSpace(parts[1])
	if startStr == "" && endStr == "" {
		return nil, ErrUnsatisfiable
	}
	if size <= 0 {
		// No byte of an empty resource is addressable.
		return nil, ErrUnsatisfiable
	}

	if startStr == "" {
		// Suffix form: the last n bytes of the resource.
		suffix, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || suffix <= 0 {
			return nil, ErrUnsatisfiable
		}
		start := size - suffix
		if start < 0 {
			start = 0
		}
		return &ByteRange{Start: start, End: size - 1}, nil
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return nil, ErrUnsatisfiable
	}
	if start >= size {
		return nil, ErrUnsatisfiable
	}

	end := size - 1
	if endStr != "" {
		e, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || e < 0 {
			return nil, ErrUnsatisfiable
		}
		if e < start {
			return nil, ErrUnsatisfiable
		}
		if e < end {
			end = e
		}
	}
	return &ByteRange{Start: start, End: end}, nil
}
