package core

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "MARCA,EMPRESA"...), "MARCA,EMPRESA"},
		{"no bom", []byte("MARCA,EMPRESA"), "MARCA,EMPRESA"},
		{"empty", []byte{}, ""},
		{"only bom", []byte{0xEF, 0xBB, 0xBF}, ""},
		{"accents kept", []byte("Categoría,País"), "Categoría,País"},
		{"invalid byte", []byte{'h', 'e', 0x80, 'l', 'o'}, "he�lo"},
		{"utf8 bom then invalid byte", []byte{0xEF, 0xBB, 0xBF, 'h', 'e', 0x80, 'l', 'o'}, "he�lo"},
		{"utf16 with bom", []byte{0xFF, 0xFE, 'O', 0, 'K', 0}, "OK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(DecodeText(bytes.NewReader(tt.input)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestByteCounter(t *testing.T) {
	input := strings.Repeat("x", 1000)
	c := NewByteCounter(strings.NewReader(input), int64(len(input)))

	buf := make([]byte, 100)
	for {
		_, err := c.Read(buf)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if c.N == 500 {
			assert.Equal(t, 50, c.Percent())
		}
	}

	assert.Equal(t, int64(1000), c.N)
	assert.Equal(t, 100, c.Percent())
	assert.Equal(t, 0, NewByteCounter(strings.NewReader(""), 0).Percent())
}

func TestCountedText(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, 'h', 'e', 0x80, 'l', 'o')

	r, c := countedText(bytes.NewReader(input), int64(len(input)))
	got, err := io.ReadAll(r)
	require.NoError(t, err)

	assert.Equal(t, "he�lo", string(got))
	assert.Equal(t, int64(len(input)), c.N)
}
