package hbc

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/hbc/bytecode"
	"github.com/deepnoodle-ai/hbc/errz"
	"github.com/deepnoodle-ai/hbc/internal/hbctest"
	"github.com/deepnoodle-ai/hbc/op"
)

func testImage() []byte {
	b := hbctest.New()
	name := b.AddIdentifier("global")
	b.AddFunction(hbctest.Function{
		NameID: name,
		Code:   hbctest.Code(hbctest.Op(op.LoadConstZero, 0), hbctest.Op(op.Ret, 0)),
	})
	return b.Build()
}

type recorder struct {
	bytecode.NoOpObserver
	functions []string
}

func (r *recorder) OnFunction(e bytecode.FunctionEvent) {
	r.functions = append(r.functions, e.Name)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.hbc")
	require.NoError(t, os.WriteFile(path, testImage(), 0o644))

	rec := &recorder{}
	file, err := Open(path, WithObserver(rec))
	require.NoError(t, err)
	assert.Equal(t, uint32(hbctest.DefaultVersion), file.Version())

	fn, err := file.Function(0)
	require.NoError(t, err)
	assert.Equal(t, "global", fn.Name())
	assert.Equal(t, []string{"global"}, rec.functions)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.hbc"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestOpenInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.hbc")
	require.NoError(t, os.WriteFile(path, []byte("not a bundle at all"), 0o644))
	_, err := Open(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errz.ErrInvalidMagic))
	assert.Contains(t, err.Error(), "bad.hbc")
}

func TestMaxFileSize(t *testing.T) {
	data := testImage()
	path := filepath.Join(t.TempDir(), "index.hbc")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err := Open(path, WithMaxFileSize(16))
	assert.ErrorContains(t, err, "exceeds limit")

	_, err = ReadFrom(bytes.NewReader(data), WithMaxFileSize(16))
	assert.ErrorContains(t, err, "exceeds limit")

	file, err := ReadFrom(bytes.NewReader(data), WithMaxFileSize(int64(len(data))))
	require.NoError(t, err)
	assert.Equal(t, 1, file.FunctionCount())
}

func TestLoggerAndObserverCombine(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	rec := &recorder{}

	file, err := Read(testImage(), WithLogger(logger), WithObserver(rec), nil)
	require.NoError(t, err)
	fn, err := file.Function(0)
	require.NoError(t, err)
	_, err = fn.Instructions()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"region":"header"`)
	assert.Contains(t, out, `"message":"resolved function"`)
	assert.Contains(t, out, `"message":"decoded instructions"`)
	assert.Equal(t, []string{"global"}, rec.functions)
	assert.Equal(t, 1, strings.Count(out, "resolved function"))
}
