package op

import "fmt"

const (
	Unreachable Code = iota
	NewObjectWithBuffer
	NewObjectWithBufferLong
	NewObject
	NewObjectWithParent
	NewArrayWithBuffer
	NewArrayWithBufferLong
	NewArray
	Mov
	MovLong
	Negate
	Not
	BitNot
	TypeOf
	Eq
	StrictEq
	Neq
	StrictNeq
	Less
	LessEq
	Greater
	GreaterEq
	Add
	AddN
	Mul
	MulN
	Div
	DivN
	Mod
	Sub
	SubN
	LShift
	RShift
	URshift
	BitAnd
	BitXor
	BitOr
	Inc
	Dec
	InstanceOf
	IsIn
	GetEnvironment
	StoreToEnvironment
	StoreToEnvironmentL
	StoreNPToEnvironment
	StoreNPToEnvironmentL
	LoadFromEnvironment
	LoadFromEnvironmentL
	GetGlobalObject
	GetNewTarget
	CreateEnvironment
	DeclareGlobalVar
	GetByIdShort
	GetById
	GetByIdLong
	TryGetById
	TryGetByIdLong
	PutById
	PutByIdLong
	TryPutById
	TryPutByIdLong
	PutNewOwnByIdShort
	PutNewOwnById
	PutNewOwnByIdLong
	PutNewOwnNEById
	PutNewOwnNEByIdLong
	PutOwnByIndex
	PutOwnByIndexL
	PutOwnByVal
	DelById
	DelByIdLong
	GetByVal
	PutByVal
	DelByVal
	PutOwnGetterSetterByVal
	GetPNameList
	GetNextPName
	Call
	Construct
	Call1
	CallDirect
	Call2
	Call3
	Call4
	CallLong
	ConstructLong
	CallDirectLongIndex
	CallBuiltin
	CallBuiltinLong
	GetBuiltinClosure
	Ret
	Catch
	DirectEval
	Throw
	ThrowIfEmpty
	Debugger
	AsyncBreakCheck
	ProfilePoint
	CreateClosure
	CreateClosureLongIndex
	CreateGeneratorClosure
	CreateGeneratorClosureLongIndex
	CreateAsyncClosure
	CreateAsyncClosureLongIndex
	CreateThis
	SelectObject
	LoadParam
	LoadParamLong
	LoadConstUInt8
	LoadConstInt
	LoadConstDouble
	LoadConstString
	LoadConstStringLongIndex
	LoadConstEmpty
	LoadConstUndefined
	LoadConstNull
	LoadConstTrue
	LoadConstFalse
	LoadConstZero
	CoerceThisNS
	LoadThisNS
	ToNumber
	ToInt32
	AddEmptyString
	GetArgumentsPropByVal
	GetArgumentsLength
	ReifyArguments
	CreateRegExp
	SwitchImm
	StartGenerator
	ResumeGenerator
	CompleteGenerator
	CreateGenerator
	CreateGeneratorLongIndex
	IteratorBegin
	IteratorNext
	IteratorClose
	Jmp
	JmpLong
	JmpTrue
	JmpTrueLong
	JmpFalse
	JmpFalseLong
	JmpUndefined
	JmpUndefinedLong
	SaveGenerator
	SaveGeneratorLong
	JLess
	JLessLong
	JNotLess
	JNotLessLong
	JLessN
	JLessNLong
	JNotLessN
	JNotLessNLong
	JLessEqual
	JLessEqualLong
	JNotLessEqual
	JNotLessEqualLong
	JLessEqualN
	JLessEqualNLong
	JNotLessEqualN
	JNotLessEqualNLong
	JGreater
	JGreaterLong
	JNotGreater
	JNotGreaterLong
	JGreaterN
	JGreaterNLong
	JNotGreaterN
	JNotGreaterNLong
	JGreaterEqual
	JGreaterEqualLong
	JNotGreaterEqual
	JNotGreaterEqualLong
	JGreaterEqualN
	JGreaterEqualNLong
	JNotGreaterEqualN
	JNotGreaterEqualNLong
	JEqual
	JEqualLong
	JNotEqual
	JNotEqualLong
	JStrictEqual
	JStrictEqualLong
	JStrictNotEqual
	JStrictNotEqualLong
	Add32
	Sub32
	Mul32
	Divi32
	Divu32
	Loadi8
	Loadu8
	Loadi16
	Loadu16
	Loadi32
	Loadu32
	Store8
	Store16
	Store32

	codeCount
)

func ops(types ...OperandType) []OperandType { return types }

func init() {
	type opInfo struct {
		op       Code
		name     string
		operands []OperandType
	}
	type jumpInfo struct {
		op    Code
		name  string
		count int // operands including the displacement
	}

	r1 := ops(Reg8)
	r2 := ops(Reg8, Reg8)
	r3 := ops(Reg8, Reg8, Reg8)

	defs := []opInfo{
		{Unreachable, "Unreachable", nil},
		{NewObjectWithBuffer, "NewObjectWithBuffer", ops(Reg8, UInt16, UInt16, UInt16, UInt16)},
		{NewObjectWithBufferLong, "NewObjectWithBufferLong", ops(Reg8, UInt16, UInt16, UInt32, UInt32)},
		{NewObject, "NewObject", r1},
		{NewObjectWithParent, "NewObjectWithParent", r2},
		{NewArrayWithBuffer, "NewArrayWithBuffer", ops(Reg8, UInt16, UInt16, UInt16)},
		{NewArrayWithBufferLong, "NewArrayWithBufferLong", ops(Reg8, UInt16, UInt16, UInt32)},
		{NewArray, "NewArray", ops(Reg8, UInt16)},
		{Mov, "Mov", r2},
		{MovLong, "MovLong", ops(Reg32, Reg32)},
		{Negate, "Negate", r2},
		{Not, "Not", r2},
		{BitNot, "BitNot", r2},
		{TypeOf, "TypeOf", r2},
		{Eq, "Eq", r3},
		{StrictEq, "StrictEq", r3},
		{Neq, "Neq", r3},
		{StrictNeq, "StrictNeq", r3},
		{Less, "Less", r3},
		{LessEq, "LessEq", r3},
		{Greater, "Greater", r3},
		{GreaterEq, "GreaterEq", r3},
		{Add, "Add", r3},
		{AddN, "AddN", r3},
		{Mul, "Mul", r3},
		{MulN, "MulN", r3},
		{Div, "Div", r3},
		{DivN, "DivN", r3},
		{Mod, "Mod", r3},
		{Sub, "Sub", r3},
		{SubN, "SubN", r3},
		{LShift, "LShift", r3},
		{RShift, "RShift", r3},
		{URshift, "URshift", r3},
		{BitAnd, "BitAnd", r3},
		{BitXor, "BitXor", r3},
		{BitOr, "BitOr", r3},
		{Inc, "Inc", r2},
		{Dec, "Dec", r2},
		{InstanceOf, "InstanceOf", r3},
		{IsIn, "IsIn", r3},
		{GetEnvironment, "GetEnvironment", ops(Reg8, UInt8)},
		{StoreToEnvironment, "StoreToEnvironment", ops(Reg8, UInt8, Reg8)},
		{StoreToEnvironmentL, "StoreToEnvironmentL", ops(Reg8, UInt16, Reg8)},
		{StoreNPToEnvironment, "StoreNPToEnvironment", ops(Reg8, UInt8, Reg8)},
		{StoreNPToEnvironmentL, "StoreNPToEnvironmentL", ops(Reg8, UInt16, Reg8)},
		{LoadFromEnvironment, "LoadFromEnvironment", ops(Reg8, Reg8, UInt8)},
		{LoadFromEnvironmentL, "LoadFromEnvironmentL", ops(Reg8, Reg8, UInt16)},
		{GetGlobalObject, "GetGlobalObject", r1},
		{GetNewTarget, "GetNewTarget", r1},
		{CreateEnvironment, "CreateEnvironment", r1},
		{DeclareGlobalVar, "DeclareGlobalVar", ops(UInt32)},
		{GetByIdShort, "GetByIdShort", ops(Reg8, Reg8, UInt8, UInt8)},
		{GetById, "GetById", ops(Reg8, Reg8, UInt8, UInt16)},
		{GetByIdLong, "GetByIdLong", ops(Reg8, Reg8, UInt8, UInt32)},
		{TryGetById, "TryGetById", ops(Reg8, Reg8, UInt8, UInt16)},
		{TryGetByIdLong, "TryGetByIdLong", ops(Reg8, Reg8, UInt8, UInt32)},
		{PutById, "PutById", ops(Reg8, Reg8, UInt8, UInt16)},
		{PutByIdLong, "PutByIdLong", ops(Reg8, Reg8, UInt8, UInt32)},
		{TryPutById, "TryPutById", ops(Reg8, Reg8, UInt8, UInt16)},
		{TryPutByIdLong, "TryPutByIdLong", ops(Reg8, Reg8, UInt8, UInt32)},
		{PutNewOwnByIdShort, "PutNewOwnByIdShort", ops(Reg8, Reg8, UInt8)},
		{PutNewOwnById, "PutNewOwnById", ops(Reg8, Reg8, UInt16)},
		{PutNewOwnByIdLong, "PutNewOwnByIdLong", ops(Reg8, Reg8, UInt32)},
		{PutNewOwnNEById, "PutNewOwnNEById", ops(Reg8, Reg8, UInt16)},
		{PutNewOwnNEByIdLong, "PutNewOwnNEByIdLong", ops(Reg8, Reg8, UInt32)},
		{PutOwnByIndex, "PutOwnByIndex", ops(Reg8, Reg8, UInt8)},
		{PutOwnByIndexL, "PutOwnByIndexL", ops(Reg8, Reg8, UInt32)},
		{PutOwnByVal, "PutOwnByVal", ops(Reg8, Reg8, Reg8, UInt8)},
		{DelById, "DelById", ops(Reg8, Reg8, UInt16)},
		{DelByIdLong, "DelByIdLong", ops(Reg8, Reg8, UInt32)},
		{GetByVal, "GetByVal", r3},
		{PutByVal, "PutByVal", r3},
		{DelByVal, "DelByVal", r3},
		{PutOwnGetterSetterByVal, "PutOwnGetterSetterByVal", ops(Reg8, Reg8, Reg8, Reg8, UInt8)},
		{GetPNameList, "GetPNameList", ops(Reg8, Reg8, Reg8, Reg8)},
		{GetNextPName, "GetNextPName", ops(Reg8, Reg8, Reg8, Reg8, Reg8)},
		{Call, "Call", ops(Reg8, Reg8, UInt8)},
		{Construct, "Construct", ops(Reg8, Reg8, UInt8)},
		{Call1, "Call1", r3},
		{CallDirect, "CallDirect", ops(Reg8, UInt8, UInt16)},
		{Call2, "Call2", ops(Reg8, Reg8, Reg8, Reg8)},
		{Call3, "Call3", ops(Reg8, Reg8, Reg8, Reg8, Reg8)},
		{Call4, "Call4", ops(Reg8, Reg8, Reg8, Reg8, Reg8, Reg8)},
		{CallLong, "CallLong", ops(Reg8, Reg8, UInt32)},
		{ConstructLong, "ConstructLong", ops(Reg8, Reg8, UInt32)},
		{CallDirectLongIndex, "CallDirectLongIndex", ops(Reg8, UInt8, UInt32)},
		{CallBuiltin, "CallBuiltin", ops(Reg8, UInt8, UInt8)},
		{CallBuiltinLong, "CallBuiltinLong", ops(Reg8, UInt8, UInt32)},
		{GetBuiltinClosure, "GetBuiltinClosure", ops(Reg8, UInt8)},
		{Ret, "Ret", r1},
		{Catch, "Catch", r1},
		{DirectEval, "DirectEval", r2},
		{Throw, "Throw", r1},
		{ThrowIfEmpty, "ThrowIfEmpty", r2},
		{Debugger, "Debugger", nil},
		{AsyncBreakCheck, "AsyncBreakCheck", nil},
		{ProfilePoint, "ProfilePoint", ops(UInt16)},
		{CreateClosure, "CreateClosure", ops(Reg8, Reg8, UInt16)},
		{CreateClosureLongIndex, "CreateClosureLongIndex", ops(Reg8, Reg8, UInt32)},
		{CreateGeneratorClosure, "CreateGeneratorClosure", ops(Reg8, Reg8, UInt16)},
		{CreateGeneratorClosureLongIndex, "CreateGeneratorClosureLongIndex", ops(Reg8, Reg8, UInt32)},
		{CreateAsyncClosure, "CreateAsyncClosure", ops(Reg8, Reg8, UInt16)},
		{CreateAsyncClosureLongIndex, "CreateAsyncClosureLongIndex", ops(Reg8, Reg8, UInt32)},
		{CreateThis, "CreateThis", r3},
		{SelectObject, "SelectObject", r3},
		{LoadParam, "LoadParam", ops(Reg8, UInt8)},
		{LoadParamLong, "LoadParamLong", ops(Reg8, UInt32)},
		{LoadConstUInt8, "LoadConstUInt8", ops(Reg8, UInt8)},
		{LoadConstInt, "LoadConstInt", ops(Reg8, Imm32)},
		{LoadConstDouble, "LoadConstDouble", ops(Reg8, Double)},
		{LoadConstString, "LoadConstString", ops(Reg8, UInt16)},
		{LoadConstStringLongIndex, "LoadConstStringLongIndex", ops(Reg8, UInt32)},
		{LoadConstEmpty, "LoadConstEmpty", r1},
		{LoadConstUndefined, "LoadConstUndefined", r1},
		{LoadConstNull, "LoadConstNull", r1},
		{LoadConstTrue, "LoadConstTrue", r1},
		{LoadConstFalse, "LoadConstFalse", r1},
		{LoadConstZero, "LoadConstZero", r1},
		{CoerceThisNS, "CoerceThisNS", r2},
		{LoadThisNS, "LoadThisNS", r1},
		{ToNumber, "ToNumber", r2},
		{ToInt32, "ToInt32", r2},
		{AddEmptyString, "AddEmptyString", r2},
		{GetArgumentsPropByVal, "GetArgumentsPropByVal", r3},
		{GetArgumentsLength, "GetArgumentsLength", r2},
		{ReifyArguments, "ReifyArguments", r1},
		{CreateRegExp, "CreateRegExp", ops(Reg8, UInt32, UInt32, UInt32)},
		{SwitchImm, "SwitchImm", ops(Reg8, UInt32, Addr32, UInt32, UInt32)},
		{StartGenerator, "StartGenerator", nil},
		{ResumeGenerator, "ResumeGenerator", r2},
		{CompleteGenerator, "CompleteGenerator", nil},
		{CreateGenerator, "CreateGenerator", ops(Reg8, Reg8, UInt16)},
		{CreateGeneratorLongIndex, "CreateGeneratorLongIndex", ops(Reg8, Reg8, UInt32)},
		{IteratorBegin, "IteratorBegin", r2},
		{IteratorNext, "IteratorNext", r3},
		{IteratorClose, "IteratorClose", ops(Reg8, UInt8)},
		{Add32, "Add32", r3},
		{Sub32, "Sub32", r3},
		{Mul32, "Mul32", r3},
		{Divi32, "Divi32", r3},
		{Divu32, "Divu32", r3},
		{Loadi8, "Loadi8", r3},
		{Loadu8, "Loadu8", r3},
		{Loadi16, "Loadi16", r3},
		{Loadu16, "Loadu16", r3},
		{Loadi32, "Loadi32", r3},
		{Loadu32, "Loadu32", r3},
		{Store8, "Store8", r3},
		{Store16, "Store16", r3},
		{Store32, "Store32", r3},
	}

	// Each entry expands to the short form and the Long form that follows it.
	jumps := []jumpInfo{
		{Jmp, "Jmp", 1},
		{JmpTrue, "JmpTrue", 2},
		{JmpFalse, "JmpFalse", 2},
		{JmpUndefined, "JmpUndefined", 2},
		{SaveGenerator, "SaveGenerator", 1},
		{JLess, "JLess", 3},
		{JNotLess, "JNotLess", 3},
		{JLessN, "JLessN", 3},
		{JNotLessN, "JNotLessN", 3},
		{JLessEqual, "JLessEqual", 3},
		{JNotLessEqual, "JNotLessEqual", 3},
		{JLessEqualN, "JLessEqualN", 3},
		{JNotLessEqualN, "JNotLessEqualN", 3},
		{JGreater, "JGreater", 3},
		{JNotGreater, "JNotGreater", 3},
		{JGreaterN, "JGreaterN", 3},
		{JNotGreaterN, "JNotGreaterN", 3},
		{JGreaterEqual, "JGreaterEqual", 3},
		{JNotGreaterEqual, "JNotGreaterEqual", 3},
		{JGreaterEqualN, "JGreaterEqualN", 3},
		{JNotGreaterEqualN, "JNotGreaterEqualN", 3},
		{JEqual, "JEqual", 3},
		{JNotEqual, "JNotEqual", 3},
		{JStrictEqual, "JStrictEqual", 3},
		{JStrictNotEqual, "JStrictNotEqual", 3},
	}

	// Operand positions are 1-based, as in BytecodeList.def.
	stringIDs := []struct {
		op  Code
		pos int
	}{
		{DeclareGlobalVar, 1},
		{GetByIdShort, 4},
		{GetById, 4},
		{GetByIdLong, 4},
		{TryGetById, 4},
		{TryGetByIdLong, 4},
		{PutById, 4},
		{PutByIdLong, 4},
		{TryPutById, 4},
		{TryPutByIdLong, 4},
		{PutNewOwnByIdShort, 3},
		{PutNewOwnById, 3},
		{PutNewOwnByIdLong, 3},
		{PutNewOwnNEById, 3},
		{PutNewOwnNEByIdLong, 3},
		{DelById, 3},
		{DelByIdLong, 3},
		{LoadConstString, 2},
		{LoadConstStringLongIndex, 2},
		{CreateRegExp, 2},
		{CreateRegExp, 3},
	}
	functionIDs := []struct {
		op  Code
		pos int
	}{
		{CallDirect, 3},
		{CallDirectLongIndex, 3},
		{CreateClosure, 3},
		{CreateClosureLongIndex, 3},
		{CreateGeneratorClosure, 3},
		{CreateGeneratorClosureLongIndex, 3},
		{CreateAsyncClosure, 3},
		{CreateAsyncClosureLongIndex, 3},
		{CreateGenerator, 3},
		{CreateGeneratorLongIndex, 3},
	}
	retTargets := []Code{
		Call, Construct, Call1, CallDirect, Call2, Call3, Call4,
		CallLong, ConstructLong, CallDirectLongIndex,
		CallBuiltin, CallBuiltinLong,
	}

	infos = make([]Info, codeCount)
	filled := make([]bool, codeCount)
	set := func(c Code, name string, types []OperandType, jump bool) {
		operands := make([]OperandInfo, len(types))
		for i, t := range types {
			operands[i] = OperandInfo{Type: t}
		}
		infos[c] = Info{Code: c, Name: name, Operands: operands, IsJump: jump}
		filled[c] = true
	}

	for _, d := range defs {
		set(d.op, d.name, d.operands, false)
	}
	for _, j := range jumps {
		short := append(ops(Addr8), repeat(Reg8, j.count-1)...)
		long := append(ops(Addr32), repeat(Reg8, j.count-1)...)
		set(j.op, j.name, short, true)
		set(j.op+1, j.name+"Long", long, true)
	}
	for _, s := range stringIDs {
		infos[s.op].Operands[s.pos-1].StringID = true
	}
	for _, f := range functionIDs {
		infos[f.op].Operands[f.pos-1].FunctionID = true
	}
	for _, c := range retTargets {
		infos[c].IsCallType = true
	}

	byName = make(map[string]Code, len(infos))
	for c, ok := range filled {
		if !ok {
			panic(fmt.Sprintf("op: no metadata for opcode %d", c))
		}
		byName[infos[c].Name] = Code(c)
	}
}

func repeat(t OperandType, n int) []OperandType {
	out := make([]OperandType, n)
	for i := range out {
		out[i] = t
	}
	return out
}
