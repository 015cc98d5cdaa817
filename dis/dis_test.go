package dis

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/hbc/bytecode"
	"github.com/deepnoodle-ai/hbc/errz"
	"github.com/deepnoodle-ai/hbc/internal/hbctest"
	"github.com/deepnoodle-ai/hbc/op"
)

func init() {
	color.NoColor = true
}

const prohibitNone = 2

// testFile returns a container with a named function that branches and an
// anonymous function that creates a closure over the first.
func testFile(t *testing.T) *bytecode.File {
	t.Helper()
	b := hbctest.New()
	global := b.AddIdentifier("global")
	b.AddIdentifier("helper")
	b.AddString(hbctest.String{Text: "hello"})
	empty := b.AddString(hbctest.String{Text: ""})
	b.AddFunction(hbctest.Function{
		NameID:         global,
		ProhibitInvoke: prohibitNone,
		Code: hbctest.Code(
			hbctest.Op(op.LoadConstString, 0, 2),
			hbctest.Op(op.JmpTrue, 5, 0),
			hbctest.Op(op.LoadConstZero, 0),
			hbctest.Op(op.Ret, 0),
		),
	})
	b.AddFunction(hbctest.Function{
		NameID:         empty,
		ProhibitInvoke: prohibitNone,
		Code: hbctest.Code(
			hbctest.Op(op.CreateClosure, 1, 0, 0),
			hbctest.Op(op.Ret, 1),
		),
	})
	file, err := bytecode.Read(b.Build(), nil)
	require.NoError(t, err)
	return file
}

func disassemble(t *testing.T, file *bytecode.File, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Disassemble(file, &buf, opts))
	return buf.String()
}

func TestDisassemble(t *testing.T) {
	expected := `version 84

function 0 (name = 0 /* global */) {
    LoadConstString r0, 2 /* "hello" */
    JmpTrue L1, r0
    LoadConstZero r0
L1:
    Ret r0
}

function 1 {
    CreateClosure r1, r0, 0 /* global */
    Ret r1
}

`
	assert.Equal(t, expected, disassemble(t, testFile(t), Options{}))
}

func TestDisassembleSkipLabels(t *testing.T) {
	out := disassemble(t, testFile(t), Options{SkipLabels: true})
	assert.Contains(t, out, "    JmpTrue 5, r0\n")
	assert.NotContains(t, out, "L1")
}

func TestDisassembleNoIDs(t *testing.T) {
	out := disassemble(t, testFile(t), Options{NoIDs: true})
	lines := strings.Split(out, "\n")
	assert.Equal(t, "function (name = /* global */) {", lines[2])
	assert.Equal(t, "    LoadConstString r0, /* \"hello\" */", lines[3])
	// sha1("CreateClosure" + "Ret")
	assert.Contains(t, out, "function 384b390a3fa201caa09dd6ea9730fb48c6ac1460 {\n")
	assert.Contains(t, out, "    CreateClosure r1, r0, /* global */\n")
}

func TestDisassembleAnonymousReference(t *testing.T) {
	b := hbctest.New()
	empty := b.AddString(hbctest.String{Text: ""})
	b.AddFunction(hbctest.Function{
		NameID:         empty,
		ProhibitInvoke: prohibitNone,
		Code:           hbctest.Code(hbctest.Op(op.CreateClosure, 0, 0, 1), hbctest.Op(op.Ret, 0)),
	})
	b.AddFunction(hbctest.Function{
		NameID:         empty,
		ProhibitInvoke: prohibitNone,
		Code:           hbctest.Code(hbctest.Op(op.Unreachable)),
	})
	file, err := bytecode.Read(b.Build(), nil)
	require.NoError(t, err)

	out := disassemble(t, file, Options{})
	assert.Contains(t, out, "    CreateClosure r0, r0, 1\n")
	assert.Contains(t, out, "function 1 {\n    Unreachable\n}\n")

	out = disassemble(t, file, Options{NoIDs: true})
	// sha1("Unreachable")
	assert.Contains(t, out, "    CreateClosure r0, r0, /* aa284d0c56a292ee035bf849d5f5cba462faac46 */\n")
}

func TestDisassembleProhibitInvoke(t *testing.T) {
	b := hbctest.New()
	name := b.AddIdentifier("Point")
	b.AddFunction(hbctest.Function{
		NameID:         name,
		ProhibitInvoke: uint8(bytecode.ProhibitCall),
		Code:           hbctest.Code(hbctest.Op(op.Ret, 0)),
	})
	file, err := bytecode.Read(b.Build(), nil)
	require.NoError(t, err)
	out := disassemble(t, file, Options{})
	assert.Contains(t, out, "function 0 (name = 0 /* Point */, prohibitInvoke = ProhibitCall) {\n")
}

func TestDisassembleDouble(t *testing.T) {
	b := hbctest.New()
	name := b.AddIdentifier("f")
	b.AddFunction(hbctest.Function{
		NameID:         name,
		ProhibitInvoke: prohibitNone,
		Code: hbctest.Code(
			hbctest.Op(op.LoadConstDouble, 0, hbctest.Float(1.5)),
			hbctest.Op(op.LoadConstDouble, 1, hbctest.Float(1e21)),
		),
	})
	file, err := bytecode.Read(b.Build(), nil)
	require.NoError(t, err)
	out := disassemble(t, file, Options{})
	assert.Contains(t, out, "    LoadConstDouble r0, 1.5\n")
	assert.Contains(t, out, "    LoadConstDouble r1, 1e+21\n")
}

func brokenFile(t *testing.T) *bytecode.File {
	t.Helper()
	b := hbctest.New()
	name := b.AddIdentifier("ok")
	b.AddFunction(hbctest.Function{
		NameID:         name,
		ProhibitInvoke: prohibitNone,
		Code:           hbctest.Code(hbctest.Op(op.Jmp, 1)),
	})
	b.AddFunction(hbctest.Function{
		NameID:         name,
		ProhibitInvoke: prohibitNone,
		Code:           []byte{0xff},
	})
	b.AddFunction(hbctest.Function{
		NameID:         name,
		ProhibitInvoke: prohibitNone,
		Code:           hbctest.Code(hbctest.Op(op.Ret, 0)),
	})
	file, err := bytecode.Read(b.Build(), nil)
	require.NoError(t, err)
	return file
}

func TestDisassembleStopsOnError(t *testing.T) {
	var buf bytes.Buffer
	err := Disassemble(brokenFile(t), &buf, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errz.ErrNoInstruction))
	assert.Equal(t, "version 84\n\n", buf.String())
}

func TestDisassembleKeepGoing(t *testing.T) {
	var buf bytes.Buffer
	err := Disassemble(brokenFile(t), &buf, Options{KeepGoing: true})
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 2)
	assert.True(t, errors.Is(merr.Errors[0], errz.ErrNoInstruction))
	assert.True(t, errors.Is(merr.Errors[1], errz.ErrUnknownOpcode))

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "function "))
	assert.Contains(t, out, "function 2 (name = 0 /* ok */) {\n    Ret r0\n}\n")
}

func TestDisassembleIsRepeatable(t *testing.T) {
	file := testFile(t)
	first := disassemble(t, file, Options{})
	assert.Equal(t, first, disassemble(t, file, Options{}))
	assert.NotContains(t, disassemble(t, file, Options{SkipLabels: true}), "L1")
}

func TestDisassembleConcurrently(t *testing.T) {
	want := disassemble(t, testFile(t), Options{})
	file := testFile(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				var buf bytes.Buffer
				opts := Options{SkipLabels: (i+j)%4 == 3}
				if err := Disassemble(file, &buf, opts); err != nil {
					t.Error(err)
					return
				}
				if !opts.SkipLabels && buf.String() != want {
					t.Errorf("goroutine %d run %d: unexpected output:\n%s", i, j, buf.String())
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
