package convert

import (
	"encoding/binary"
	"fmt"
)

// Page bundles pack a document's rendered pages into a single cacheable
// artifact: a uvarint page count followed by uvarint-length-prefixed page
// payloads in page order.

// encodeBundle packs pages into a single byte slice.
func encodeBundle(pages [][]byte) []byte {
	size := binary.MaxVarintLen64
	for _, p := range pages {
		size += binary.MaxVarintLen64 + len(p)
	}

	buf := make([]byte, 0, size)
	buf = binary.AppendUvarint(buf, uint64(len(pages)))
	for _, p := range pages {
		buf = binary.AppendUvarint(buf, uint64(len(p)))
		buf = append(buf, p...)
	}
	return buf
}

// decodeBundle unpacks a bundle back into per-page payloads.
func decodeBundle(data []byte) ([][]byte, error) {
	count, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, fmt.Errorf("%w: bad page count", ErrCorruptBundle)
	}
	data = data[n:]

	// Each page costs at least a one-byte length prefix, so a count beyond
	// the remaining payload is corrupt. Checking before allocating keeps a
	// hostile count from sizing the slice.
	if count > uint64(len(data)) {
		return nil, fmt.Errorf("%w: page count %d exceeds payload", ErrCorruptBundle, count)
	}

	pages := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		length, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, fmt.Errorf("%w: bad length prefix for page %d", ErrCorruptBundle, i+1)
		}
		data = data[n:]

		if uint64(len(data)) < length {
			return nil, fmt.Errorf("%w: truncated page %d", ErrCorruptBundle, i+1)
		}
		page := make([]byte, length)
		copy(page, data[:length])
		pages = append(pages, page)
		data = data[length:]
	}

	if len(data) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptBundle, len(data))
	}
	return pages, nil
}
