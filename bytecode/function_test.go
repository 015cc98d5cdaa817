package bytecode

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/hbc/errz"
	"github.com/deepnoodle-ai/hbc/internal/hbctest"
	"github.com/deepnoodle-ai/hbc/op"
)

func TestTwoInstructionFunction(t *testing.T) {
	f := mustRead(t, simpleImage().Build(), nil)
	fn, err := f.Function(0)
	require.NoError(t, err)
	assert.Equal(t, "global", fn.Name())
	assert.Equal(t, uint32(6), fn.Header().BytecodeSizeInBytes)

	ins, err := fn.Instructions()
	require.NoError(t, err)
	require.Len(t, ins, 2)
	assert.Equal(t, 0, ins[0].Offset)
	assert.Equal(t, op.NewArray, ins[0].Opcode)
	assert.Equal(t, int64(5), ins[0].Operands[1].Value)
	assert.Equal(t, 4, ins[1].Offset)
	assert.Equal(t, op.Ret, ins[1].Opcode)

	require.NoError(t, fn.DetectLabels())
	for _, i := range ins {
		assert.Zero(t, i.Label)
		assert.Zero(t, i.TargetLabel)
	}
}

func TestInstructionSizesCoverBytecode(t *testing.T) {
	b := hbctest.New()
	name := b.AddIdentifier("mixed")
	b.AddFunction(hbctest.Function{
		NameID: name,
		Code: hbctest.Code(
			hbctest.Op(op.LoadConstDouble, 1, hbctest.Float(1.5)),
			hbctest.Op(op.LoadConstInt, 2, -7),
			hbctest.Op(op.MovLong, 70000, 1),
			hbctest.Op(op.GetById, 0, 1, 3, 0),
			hbctest.Op(op.SwitchImm, 0, 20, 10, 0, 3),
			hbctest.Op(op.Call3, 0, 1, 2, 3, 4),
			hbctest.Op(op.JmpLong, -5),
			hbctest.Op(op.Unreachable),
			hbctest.Op(op.Ret, 0),
		),
	})
	f := mustRead(t, b.Build(), nil)
	fn, err := f.Function(0)
	require.NoError(t, err)
	ins, err := fn.Instructions()
	require.NoError(t, err)
	require.Len(t, ins, 9)

	next := 0
	for _, i := range ins {
		assert.Equal(t, next, i.Offset, i.Name())
		assert.Equal(t, i.Info().Size(), i.Size())
		next += i.Size()
	}
	assert.Equal(t, int(fn.Header().BytecodeSizeInBytes), next)

	raw, err := fn.Bytecode()
	require.NoError(t, err)
	assert.Len(t, raw, next)

	assert.Equal(t, 1.5, ins[0].Operands[1].Double)
	assert.Equal(t, int64(-7), ins[1].Operands[1].Value)
	assert.Equal(t, int64(70000), ins[2].Operands[0].Value)
	assert.True(t, ins[2].Operands[0].IsRegister())
	assert.True(t, ins[3].Operands[3].StringID)
	assert.Equal(t, int64(-5), ins[6].Operands[0].Value)
	assert.Equal(t, "LoadConstInt r2, -7", ins[1].String())
	assert.Equal(t, "LoadConstDouble r1, 1.5", ins[0].String())

	got, ok := fn.InstructionAt(ins[4].Offset)
	require.True(t, ok)
	assert.Same(t, ins[4], got)
	_, ok = fn.InstructionAt(ins[4].Offset + 1)
	assert.False(t, ok)
}

func TestUnknownOpcode(t *testing.T) {
	b := hbctest.New()
	name := b.AddIdentifier("bad")
	b.AddFunction(hbctest.Function{NameID: name, Code: []byte{0xff, 0x00}})
	obs := &countingObserver{}
	f := mustRead(t, b.Build(), obs)
	fn, err := f.Function(0)
	require.NoError(t, err)

	_, err = fn.Instructions()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errz.ErrUnknownOpcode))
	var e *errz.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, 0, e.Function)

	_, again := fn.Instructions()
	assert.Equal(t, err, again)
	assert.Equal(t, int32(1), obs.decodes.Load())
}

func TestTruncatedOperand(t *testing.T) {
	b := hbctest.New()
	name := b.AddIdentifier("cut")
	code := hbctest.Op(op.LoadConstInt, 0, 1)
	b.AddFunction(hbctest.Function{NameID: name, Code: code[:3]})
	f := mustRead(t, b.Build(), nil)
	fn, err := f.Function(0)
	require.NoError(t, err)

	_, err = fn.Instructions()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errz.ErrOutOfRange))
}

func TestFunctionMemoized(t *testing.T) {
	obs := &countingObserver{}
	f := mustRead(t, simpleImage().Build(), obs)

	first, err := f.Function(1)
	require.NoError(t, err)
	second, err := f.Function(1)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), obs.functions.Load())
	assert.Equal(t, int32(0), obs.decodes.Load())

	a, err := first.Instructions()
	require.NoError(t, err)
	b, err := second.Instructions()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, int32(1), obs.decodes.Load())
}

func TestConcurrentAccess(t *testing.T) {
	obs := &countingObserver{}
	f := mustRead(t, simpleImage().Build(), obs)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fn, err := f.Function(i % 2)
			if err != nil {
				t.Error(err)
				return
			}
			if _, err := fn.Instructions(); err != nil {
				t.Error(err)
			}
			if _, err := f.String(i % 3); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(2), obs.functions.Load())
	assert.Equal(t, int32(2), obs.decodes.Load())
}

func TestOperandClassification(t *testing.T) {
	f := mustRead(t, simpleImage().Build(), nil)
	fn, err := f.Function(1)
	require.NoError(t, err)
	ins, err := fn.Instructions()
	require.NoError(t, err)

	assert.True(t, ins[0].Operands[1].StringID)
	assert.False(t, ins[0].Operands[0].StringID)
	assert.True(t, ins[1].Operands[2].FunctionID)

	stats, err := fn.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{
		InstructionCount: 3,
		ByteCount:        int(fn.Header().BytecodeSizeInBytes),
		StringRefs:       1,
		FunctionRefs:     1,
	}, stats)
}

func TestExceptionHandlers(t *testing.T) {
	for _, large := range []bool{false, true} {
		b := hbctest.New()
		name := b.AddIdentifier("try")
		b.AddFunction(hbctest.Function{
			NameID: name,
			Large:  large,
			Code: hbctest.Code(
				hbctest.Op(op.LoadConstZero, 0),
				hbctest.Op(op.Throw, 0),
				hbctest.Op(op.Catch, 0),
				hbctest.Op(op.Ret, 0),
			),
			Handlers: []hbctest.Handler{{Start: 0, End: 4, Target: 4}},
		})
		b.AddFunction(hbctest.Function{NameID: name, Code: hbctest.Op(op.Ret, 0)})
		f := mustRead(t, b.Build(), nil)

		fn, err := f.Function(0)
		require.NoError(t, err)
		assert.True(t, fn.Header().Flags.HasExceptionHandler)
		handlers, err := fn.ExceptionHandlers()
		require.NoError(t, err)
		assert.Equal(t, []ExceptionHandler{{Start: 0, End: 4, Target: 4}}, handlers, "large=%v", large)

		plain, err := f.Function(1)
		require.NoError(t, err)
		handlers, err = plain.ExceptionHandlers()
		require.NoError(t, err)
		assert.Nil(t, handlers)
	}
}

func TestGlobalFunction(t *testing.T) {
	b := simpleImage()
	b.GlobalCodeIndex = 1
	f := mustRead(t, b.Build(), nil)
	fn, err := f.GlobalFunction()
	require.NoError(t, err)
	assert.Equal(t, 1, fn.ID())
	assert.Equal(t, "helper", fn.Name())
	assert.Contains(t, fn.String(), "helper")
}
