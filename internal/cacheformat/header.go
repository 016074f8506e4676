// Package cacheformat decodes the binary header Apache's mod_cache_disk
// writes alongside every cached response, extracting just enough (format
// tag and expiry timestamp) to drive eviction decisions.
package cacheformat

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Format identifies the on-disk layout of a cache header file.
type Format uint32

const (
	// FormatVary marks a header that stores only a Vary negotiation record;
	// the actual response metadata lives in a format-6 file underneath it.
	FormatVary Format = 5
	// FormatDisk marks a header carrying full disk-cache response metadata.
	FormatDisk Format = 6
)

func (f Format) String() string {
	switch f {
	case FormatVary:
		return "vary"
	case FormatDisk:
		return "disk"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(f))
	}
}

// UnknownFormatError reports a format tag this package does not understand.
type UnknownFormatError struct {
	Tag uint32
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("cacheformat: unknown header format %d", e.Tag)
}

// diskHeaderFixedFields mirrors disk_cache_info_t on a 64-bit Apache build:
// one C int (entity version), two size_t fields (header/body lengths), then
// two 8-byte fields of which the second is the epoch-in-microseconds expiry
// (4 + 16 + 16 = 36 bytes after the format tag), all preceding the name
// length and further variable data this package does not need.
const (
	sizeofCInt    = 4
	sizeofSizeT   = 8
	diskFixedSize = sizeofCInt + 2*sizeofSizeT + 16
)

// Header is the subset of an Apache disk-cache header this tool needs.
type Header struct {
	Format Format
	Expiry int64 // microseconds since the Unix epoch; 0 if not encoded
}

// ParseHeader reads just enough of r to recover the format tag and, for
// formats that carry one, the expiry timestamp. It intentionally ignores
// everything past the fields it needs: URL, Vary header text, and the
// cached response's own header block are irrelevant to eviction.
func ParseHeader(r io.Reader) (Header, error) {
	var tagBuf [4]byte
	if _, err := io.ReadFull(r, tagBuf[:]); err != nil {
		return Header{}, fmt.Errorf("cacheformat: reading format tag: %w", err)
	}
	tag := binary.NativeEndian.Uint32(tagBuf[:])
	format := Format(tag)

	switch format {
	case FormatVary:
		var expBuf [8]byte
		if _, err := io.ReadFull(r, expBuf[:]); err != nil {
			return Header{}, fmt.Errorf("cacheformat: reading vary expiry: %w", err)
		}
		return Header{Format: format, Expiry: int64(binary.NativeEndian.Uint64(expBuf[:]))}, nil

	case FormatDisk:
		rest := make([]byte, diskFixedSize)
		if _, err := io.ReadFull(r, rest); err != nil {
			return Header{}, fmt.Errorf("cacheformat: reading disk header: %w", err)
		}
		// The expiry (apr_time_t, microseconds) is the last 8 bytes of the
		// fixed-size block we just read.
		expiry := int64(binary.NativeEndian.Uint64(rest[diskFixedSize-8:]))
		return Header{Format: format, Expiry: expiry}, nil

	default:
		return Header{}, &UnknownFormatError{Tag: tag}
	}
}
