package core

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// DecodeText normalizes spreadsheet-export text to UTF-8 as it streams.
// A leading byte order mark is dropped, a UTF-16 mark switches decoding to
// UTF-16, and invalid UTF-8 becomes U+FFFD. BOMOverride hands a marked
// stream to a decoder that passes bytes through, so ill-formed input is
// replaced in a separate step after it.
func DecodeText(r io.Reader) io.Reader {
	return transform.NewReader(r, transform.Chain(
		unicode.BOMOverride(unicode.UTF8.NewDecoder()),
		runes.ReplaceIllFormed(),
	))
}

// ByteCounter counts the raw bytes pulled through it.
type ByteCounter struct {
	r     io.Reader
	N     int64
	Total int64 // 0 when unknown
}

func NewByteCounter(r io.Reader, total int64) *ByteCounter {
	return &ByteCounter{r: r, Total: total}
}

func (c *ByteCounter) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.N += int64(n)
	return n, err
}

// Percent reports how much of Total has been read, or 0 when Total is unknown.
func (c *ByteCounter) Percent() int {
	if c.Total <= 0 {
		return 0
	}
	return int(c.N * 100 / c.Total)
}

// countedText stacks DecodeText over a ByteCounter, so the counter sees
// raw file bytes rather than decoded ones.
func countedText(r io.Reader, total int64) (io.Reader, *ByteCounter) {
	c := NewByteCounter(r, total)
	return DecodeText(c), c
}
