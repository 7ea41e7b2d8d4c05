package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burden-dev/burden/pkg/ir"
)

func parse(t *testing.T, source string, lang Language, path string) []ir.FunctionRecord {
	t.Helper()
	psr := New()
	defer psr.Close()
	result, err := psr.Parse([]byte(source), lang, path)
	require.NoError(t, err)
	return Extract(result)
}

func byName(t *testing.T, records []ir.FunctionRecord, name string) ir.FunctionRecord {
	t.Helper()
	for _, rec := range records {
		if rec.ID.Name == name {
			return rec
		}
	}
	t.Fatalf("no record named %q", name)
	return ir.FunctionRecord{}
}

const goSource = `package main

func Add(a, b int) int {
	return a + b
}

func process(items []string) int {
	count := 0
	for _, item := range items {
		if item != "" {
			count++
		}
	}
	return count
}

func (c *Counter) Incr() {
	c.n++
}

func (p Point) WithX(x int) Point {
	p.x = x
	return p
}
`

func TestExtractGoFunctions(t *testing.T) {
	records := parse(t, goSource, LangGo, "main.go")
	require.Len(t, records, 4)

	add := byName(t, records, "Add")
	assert.Equal(t, ir.VisibilityPublic, add.Visibility)
	assert.Equal(t, ir.ReceiverNone, add.ReceiverMode)
	assert.Equal(t, uint32(1), add.Cyclomatic)
	assert.Empty(t, add.Mutations)

	process := byName(t, records, "process")
	assert.Equal(t, ir.VisibilityPrivate, process.Visibility)
	assert.Equal(t, uint32(3), process.Cyclomatic)
	assert.GreaterOrEqual(t, process.MaxNesting, uint32(2))
	assert.Greater(t, process.Tokens.TotalTokens, 0)
}

func TestGoPointerReceiverMutationEscapes(t *testing.T) {
	records := parse(t, goSource, LangGo, "main.go")

	incr := byName(t, records, "Counter.Incr")
	assert.Equal(t, ir.ReceiverMutRef, incr.ReceiverMode)
	require.Len(t, incr.Mutations, 1)
	assert.Equal(t, "c", incr.Mutations[0].Root)
	assert.True(t, incr.Mutations[0].FieldAccess)

	var recv ir.Binding
	for _, b := range incr.Scope {
		if b.Name == "c" {
			recv = b
		}
	}
	assert.False(t, recv.ByValue)
}

func TestGoValueReceiverIsOwned(t *testing.T) {
	records := parse(t, goSource, LangGo, "main.go")

	withX := byName(t, records, "Point.WithX")
	assert.Equal(t, ir.ReceiverValue, withX.ReceiverMode)
	require.NotEmpty(t, withX.Mutations)
	assert.Equal(t, "p", withX.Mutations[0].Root)

	var recv ir.Binding
	for _, b := range withX.Scope {
		if b.Name == "p" {
			recv = b
		}
	}
	assert.True(t, recv.ByValue)
}

func TestGoSwitchBecomesDispatchArms(t *testing.T) {
	src := `package main

func kindName(kind int) string {
	switch kind {
	case 1:
		return "alpha"
	case 2:
		return "beta"
	case 3:
		return "gamma"
	default:
		return "unknown"
	}
}
`
	records := parse(t, src, LangGo, "kind.go")
	fn := byName(t, records, "kindName")
	require.GreaterOrEqual(t, len(fn.Arms), 4)
	for _, arm := range fn.Arms {
		assert.Equal(t, "kind", arm.Subject)
		assert.Equal(t, ir.ArmReturn, arm.Kind)
	}
}

func TestGoCallsAndExternalReads(t *testing.T) {
	src := `package main

func check(x int) bool {
	logResult(x)
	return x < limit
}
`
	records := parse(t, src, LangGo, "check.go")
	fn := byName(t, records, "check")

	require.Len(t, fn.Calls, 1)
	assert.Equal(t, "logResult", fn.Calls[0].Callee)

	assert.Contains(t, fn.ExternalReads, "limit")
	assert.NotContains(t, fn.ExternalReads, "x")
	assert.NotContains(t, fn.ExternalReads, "logResult")
}

func TestGoTestFunctionDetection(t *testing.T) {
	src := `package main

import "testing"

func TestAdd(t *testing.T) {
	helper()
}

func helper() {}
`
	records := parse(t, src, LangGo, "main_test.go")
	assert.True(t, byName(t, records, "TestAdd").IsTest)
	assert.False(t, byName(t, records, "helper").IsTest)
}

const rustSource = `impl Counter {
    pub fn incr(&mut self) {
        self.n += 1;
    }

    fn current(&self) -> u32 {
        self.n
    }
}

fn classify(kind: u32) -> &'static str {
    match kind {
        1 => "alpha",
        2 => "beta",
        3 => "gamma",
        _ => "unknown",
    }
}
`

func TestExtractRustFunctions(t *testing.T) {
	records := parse(t, rustSource, LangRust, "lib.rs")
	require.Len(t, records, 3)

	incr := byName(t, records, "Counter.incr")
	assert.Equal(t, ir.VisibilityPublic, incr.Visibility)
	assert.Equal(t, ir.ReceiverMutRef, incr.ReceiverMode)
	require.NotEmpty(t, incr.Mutations)
	assert.Equal(t, "self", incr.Mutations[0].Root)
	assert.True(t, incr.Mutations[0].FieldAccess)

	current := byName(t, records, "Counter.current")
	assert.Equal(t, ir.VisibilityPrivate, current.Visibility)
	assert.Equal(t, ir.ReceiverRef, current.ReceiverMode)
	assert.Empty(t, current.Mutations)
}

func TestRustMatchBecomesDispatchArms(t *testing.T) {
	records := parse(t, rustSource, LangRust, "lib.rs")
	fn := byName(t, records, "classify")

	require.GreaterOrEqual(t, len(fn.Arms), 4)
	for _, arm := range fn.Arms {
		assert.Equal(t, "kind", arm.Subject)
		assert.Equal(t, ir.ArmLiteral, arm.Kind)
	}
	assert.GreaterOrEqual(t, fn.Cyclomatic, uint32(2))
}

const pythonSource = `class Store:
    def __init__(self, size):
        self.size = size

def label(code):
    if code == 1:
        return "a"
    elif code == 2:
        return "b"
    elif code == 3:
        return "c"
    return "z"

def test_label():
    assert label(1) == "a"
`

func TestExtractPythonFunctions(t *testing.T) {
	records := parse(t, pythonSource, LangPython, "store.py")
	require.Len(t, records, 3)

	init := byName(t, records, "Store.__init__")
	assert.Equal(t, ir.VisibilityPrivate, init.Visibility)
	assert.Equal(t, ir.ReceiverMutRef, init.ReceiverMode)
	require.NotEmpty(t, init.Mutations)
	assert.Equal(t, "self", init.Mutations[0].Root)
	assert.True(t, init.Mutations[0].FieldAccess)

	assert.True(t, byName(t, records, "test_label").IsTest)
}

func TestPythonIfChainBecomesDispatchArms(t *testing.T) {
	records := parse(t, pythonSource, LangPython, "store.py")
	fn := byName(t, records, "label")

	require.GreaterOrEqual(t, len(fn.Arms), 3)
	for _, arm := range fn.Arms {
		assert.Equal(t, "code", arm.Subject)
	}
}

const tsSource = `export function greet(name: string): string {
  return "hi " + name;
}

class Box {
  setValue(v: number): void {
    this.value = v;
  }
}
`

func TestExtractTypeScriptFunctions(t *testing.T) {
	records := parse(t, tsSource, LangTypeScript, "box.ts")

	greet := byName(t, records, "greet")
	assert.Equal(t, ir.VisibilityPublic, greet.Visibility)
	assert.Empty(t, greet.Mutations)

	setValue := byName(t, records, "Box.setValue")
	assert.Equal(t, ir.ReceiverMutRef, setValue.ReceiverMode)
	require.NotEmpty(t, setValue.Mutations)
	assert.Equal(t, "this", setValue.Mutations[0].Root)
	assert.True(t, setValue.Mutations[0].FieldAccess)
}

func TestClosureMutationIsMarked(t *testing.T) {
	src := `package main

func counter() func() int {
	n := 0
	return func() int {
		n++
		return n
	}
}
`
	records := parse(t, src, LangGo, "counter.go")
	fn := byName(t, records, "counter")
	require.NotEmpty(t, fn.Mutations)
	assert.Equal(t, "n", fn.Mutations[0].Root)
	assert.True(t, fn.Mutations[0].InClosure)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"a/b/c.go", LangGo},
		{"lib.rs", LangRust},
		{"script.py", LangPython},
		{"app.ts", LangTypeScript},
		{"view.tsx", LangTSX},
		{"index.js", LangJavaScript},
		{"README.md", LangUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLanguage(tt.path), tt.path)
	}
	assert.True(t, Supported("x.go"))
	assert.False(t, Supported("x.toml"))
}

func TestFunctionIDLineNumbers(t *testing.T) {
	records := parse(t, goSource, LangGo, "main.go")
	add := byName(t, records, "Add")
	assert.Equal(t, uint32(3), add.ID.Line)
	assert.Equal(t, uint32(5), add.EndLine)
	assert.Equal(t, 3, add.Lines)
}
