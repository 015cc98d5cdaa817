package bytecode

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/hbc/internal/hbctest"
	"github.com/deepnoodle-ai/hbc/op"
)

type countingObserver struct {
	regions   atomic.Int32
	functions atomic.Int32
	decodes   atomic.Int32
}

func (o *countingObserver) OnRegion(RegionEvent)     { o.regions.Add(1) }
func (o *countingObserver) OnFunction(FunctionEvent) { o.functions.Add(1) }
func (o *countingObserver) OnDecode(DecodeEvent)     { o.decodes.Add(1) }

func mustRead(t *testing.T, buf []byte, obs Observer) *File {
	t.Helper()
	f, err := Read(buf, &Config{Observer: obs})
	require.NoError(t, err)
	return f
}

// simpleImage returns a container with a global function and a helper.
func simpleImage() *hbctest.Builder {
	b := hbctest.New()
	global := b.AddIdentifier("global")
	helper := b.AddIdentifier("helper")
	b.AddString(hbctest.String{Text: "hello"})
	b.AddFunction(hbctest.Function{
		NameID:    global,
		FrameSize: 2,
		Code: hbctest.Code(
			hbctest.Op(op.NewArray, 0, 5),
			hbctest.Op(op.Ret, 0),
		),
	})
	b.AddFunction(hbctest.Function{
		NameID:     helper,
		ParamCount: 1,
		Code: hbctest.Code(
			hbctest.Op(op.LoadConstString, 0, 2),
			hbctest.Op(op.CreateClosure, 1, 0, 0),
			hbctest.Op(op.Ret, 0),
		),
	})
	return b
}
