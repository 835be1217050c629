package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xirelogy/go-qi/internal/vm"
)

func run(t *testing.T, src string) string {
	t.Helper()
	m := vm.New(vm.DefaultConfig(), nil)
	var out bytes.Buffer
	m.SetOutput(&out)
	result, err := m.Interpret(src)
	require.NoError(t, err)
	require.Equal(t, vm.InterpretOK, result)
	return out.String()
}

func TestInterpretArithmeticAndPrint(t *testing.T) {
	out := run(t, `变量 a = 1 + 2； 打印 a；`)
	assert.Equal(t, "3\n", out)
}

func TestInterpretFunctionCallAndReturn(t *testing.T) {
	out := run(t, `功能 f（） 『 返回 "你好"； 』 打印 f（）；`)
	assert.Equal(t, "你好\n", out)
}

func TestInterpretClosureCapturesAndMutatesUpvalue(t *testing.T) {
	src := `
功能 计数器（） 『
  变量 数 = 0；
  功能 加一（） 『
    数 = 数 + 1；
    返回 数；
  』
  返回 加一；
』
变量 下一 = 计数器（）；
打印 下一（）；
打印 下一（）；
打印 下一（）；
`
	out := run(t, src)
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestInterpretClassInheritanceAndSuper(t *testing.T) {
	src := `类 A 『 问候（） 『 打印 "A"； 』 』 类 B < A 『 问候（） 『 超。问候（）； 打印 "B"； 』 』 B（）。问候（）；`
	out := run(t, src)
	assert.Equal(t, "A\nB\n", out)
}

func TestInterpretForLoopSkipsOnContinue(t *testing.T) {
	src := `对于 （变量 i = 0； i 小 3； i++） 『 如果 （i 等 1） 继续； 打印 i； 』`
	out := run(t, src)
	assert.Equal(t, "0\n2\n", out)
}

func TestInterpretUndefinedGlobalCallIsRuntimeError(t *testing.T) {
	m := vm.New(vm.DefaultConfig(), nil)
	var out bytes.Buffer
	m.SetOutput(&out)
	result, err := m.Interpret(`未定义（）；`)
	require.Error(t, err)
	assert.Equal(t, vm.InterpretRuntimeError, result)
	var rerr *vm.RuntimeError
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, rerr.Message, "未定义")
}

func TestInterpretGlobalsPersistAcrossCalls(t *testing.T) {
	m := vm.New(vm.DefaultConfig(), nil)
	var out bytes.Buffer
	m.SetOutput(&out)
	_, err := m.Interpret(`变量 甲 = 1；`)
	require.NoError(t, err)
	_, err = m.Interpret(`甲 = 甲 + 1； 打印 甲；`)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out.String())
}

func TestInterpretStringConcatenation(t *testing.T) {
	out := run(t, `打印 "你" + "好"；`)
	assert.Equal(t, "你好\n", out)
}

func TestInterpretModOnFractionalOperandsUsesFloatingRemainder(t *testing.T) {
	out := run(t, `打印 5.5 % 2.5；`)
	assert.Equal(t, "0.5\n", out)
}

func TestInterpretDivisionByZeroIsRuntimeError(t *testing.T) {
	m := vm.New(vm.DefaultConfig(), nil)
	var out bytes.Buffer
	m.SetOutput(&out)
	result, err := m.Interpret(`打印 1 / 0；`)
	require.Error(t, err)
	assert.Equal(t, vm.InterpretRuntimeError, result)
	assert.True(t, strings.Contains(err.Error(), "Division by zero."))
}

func TestCloseReclaimsAllTrackedHeapObjects(t *testing.T) {
	m := vm.New(vm.DefaultConfig(), nil)
	var out bytes.Buffer
	m.SetOutput(&out)

	src := `类 甲 『 初始化（） 『 这。值 = "你好"； 』 』 变量 乙 = 甲（）；`
	result, err := m.Interpret(src)
	require.NoError(t, err)
	require.Equal(t, vm.InterpretOK, result)
	assert.Greater(t, m.HeapObjectCount(), 0, "the class, its instance, and its initializer closure should all be tracked")

	m.Close()
	assert.Equal(t, 0, m.HeapObjectCount())
}

func TestInterpretStackOverflowOnUnboundedRecursion(t *testing.T) {
	cfg := vm.DefaultConfig()
	cfg.MaxFrames = 8
	m := vm.New(cfg, nil)
	var out bytes.Buffer
	m.SetOutput(&out)
	src := `功能 递归（） 『 返回 递归（）； 』 递归（）；`
	result, err := m.Interpret(src)
	require.Error(t, err)
	assert.Equal(t, vm.InterpretRuntimeError, result)
	assert.Contains(t, err.Error(), "Stack overflow.")
}
