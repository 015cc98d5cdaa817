package dis

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`plain`, `plain`},
		{`say "hi"`, `say \"hi\"`},
		{"a\nb\rc", `a\nb\rc`},
		{"line\u2028para\u2029", `line\u2028para\u2029`},
		{`trailing\`, `trailing\\`},
		{`mid\dle`, `mid\dle`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, escape(tt.in))
		})
	}
}

func TestQuoteAndComment(t *testing.T) {
	assert.Equal(t, `"x"`, quote("x"))
	assert.Equal(t, "/* x */", comment("x"))
	assert.Equal(t, `/* "a\"b" */`, comment(quote(escape(`a"b`))))
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-2.5, "-2.5"},
		{1e6, "1000000"},
		{0.1, "0.1"},
		{1e-7, "1e-7"},
		{1.5e300, "1.5e+300"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{math.NaN(), "NaN"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNumber(tt.in))
		})
	}
}

func TestIndentedWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewIndentedWriter(&buf)
	w.WriteLine("a")
	w.Indent = 2
	w.Write("b").Write("c").WriteLine("")
	w.Indent = 1
	w.WriteLine("d")
	w.Indent = 0
	w.WriteLine("")
	assert.NoError(t, w.Err())
	assert.Equal(t, "a\n    bc\n  d\n\n", buf.String())
}

type failingWriter struct{ n int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.n++
	return 0, assert.AnError
}

func TestIndentedWriterKeepsFirstError(t *testing.T) {
	fw := &failingWriter{}
	w := NewIndentedWriter(fw)
	w.WriteLine("a").WriteLine("b")
	assert.ErrorIs(t, w.Err(), assert.AnError)
	assert.Equal(t, 1, fw.n)
}
