package extfn

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/extfn/errors"
)

func TestParseFunctionReceivers(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		receiver ReceiverKind
		recvName string
	}{
		{"value", "func (s Self) Len() int { return 0 }", ReceiverValue, "s"},
		{"pointer", "func (s *Self) Reset() {}", ReceiverPointer, "s"},
		{"unnamed", "func (Self) Kind() string { return \"text\" }", ReceiverValue, ""},
		{"none", "func Zero() int { return 0 }", ReceiverNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := ParseFunction(tt.src, token.Position{})
			require.NoError(t, err)
			assert.Equal(t, tt.receiver, fn.Receiver)
			assert.Equal(t, tt.recvName, fn.RecvName)
		})
	}
}

func TestParseFunctionVisibility(t *testing.T) {
	fn, err := ParseFunction("func (s Self) CountDigits() int { return 0 }", token.Position{})
	require.NoError(t, err)
	assert.Equal(t, VisibilityExported, fn.Visibility)
	assert.Equal(t, "CountDigits", fn.Name)

	fn, err = ParseFunction("func (s Self) countDigits() int { return 0 }", token.Position{})
	require.NoError(t, err)
	assert.Equal(t, VisibilityUnexported, fn.Visibility)

	fn.lower()
	assert.Equal(t, VisibilityInherited, fn.Visibility)
}

func TestParseFunctionSignature(t *testing.T) {
	src := "func (s Self) Join(a, b string, sep rune, rest ...string) (out string, err error) { return }"
	fn, err := ParseFunction(src, token.Position{})
	require.NoError(t, err)

	assert.Equal(t, []Param{
		{Name: "a", Type: "string"},
		{Name: "b", Type: "string"},
		{Name: "sep", Type: "rune"},
		{Name: "rest", Type: "...string", Variadic: true},
	}, fn.Params())
	assert.Equal(t, []Param{
		{Name: "out", Type: "string"},
		{Name: "err", Type: "error"},
	}, fn.Results())
}

func TestParseFunctionUnnamedParams(t *testing.T) {
	fn, err := ParseFunction("func (s Self) Log(string, int) bool { return true }", token.Position{})
	require.NoError(t, err)

	assert.Equal(t, []Param{{Type: "string"}, {Type: "int"}}, fn.Params())
	assert.Equal(t, []Param{{Type: "bool"}}, fn.Results())
}

func TestParseFunctionDocComment(t *testing.T) {
	src := `// Sum adds the elements.
//
// Deprecated: use Total.
//extfn:target Numbers
//extfn:async
//go:noinline
func (n Self) Sum() int { return 0 }`

	fn, err := ParseFunction(src, token.Position{})
	require.NoError(t, err)

	assert.True(t, fn.Async)
	assert.Equal(t, []string{
		"// Sum adds the elements.",
		"//",
		"// Deprecated: use Total.",
		"//go:noinline",
	}, fn.Attrs)
}

func TestParseFunctionNotAsync(t *testing.T) {
	fn, err := ParseFunction("// Len is sync.\nfunc (s Self) Len() int { return 0 }", token.Position{})
	require.NoError(t, err)
	assert.False(t, fn.Async)
	assert.Equal(t, []string{"// Len is sync."}, fn.Attrs)
}

func TestParseFunctionTrimsDirectiveSeparator(t *testing.T) {
	src := "// Len reports the length.\n//\n//extfn:target Text\nfunc (s Self) Len() int { return 0 }"
	fn, err := ParseFunction(src, token.Position{})
	require.NoError(t, err)
	assert.Equal(t, []string{"// Len reports the length."}, fn.Attrs)
}

func TestParseFunctionBodyKeepsComments(t *testing.T) {
	src := `func (s Self) Len() int {
	// runes, not bytes
	return len([]rune(s))
}`
	fn, err := ParseFunction(src, token.Position{})
	require.NoError(t, err)

	body := fn.Body()
	assert.Contains(t, body, "// runes, not bytes")
	assert.Contains(t, body, "return len([]rune(s))")
}

func TestReplaceSelf(t *testing.T) {
	src := `func (s Self) Clone(other Self) Self {
	var x Self = s
	_ = x.Self
	_ = Wrapper{Self: s}
	return Self(other)
}`
	fn, err := ParseFunction(src, token.Position{})
	require.NoError(t, err)

	fn.replaceSelf("Text")

	assert.Equal(t, []Param{{Name: "other", Type: "Text"}}, fn.Params())
	assert.Equal(t, []Param{{Type: "Text"}}, fn.Results())

	body := fn.Body()
	assert.Contains(t, body, "var x Text = s")
	assert.Contains(t, body, "x.Self")
	assert.Contains(t, body, "Wrapper{Self: s}")
	assert.Contains(t, body, "return Text(other)")
}

func TestParseFunctionErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"type declaration", "type T int", "expected a function declaration"},
		{"two functions", "func a() {}\nfunc b() {}", "exactly one"},
		{"no body", "func (s Self) Len() int", "has no body"},
		{"type parameters", "func Map[T any](t T) T { return t }", "declares type parameters"},
		{"foreign receiver", "func (t Text) Len() int { return 0 }", "receiver of Len"},
		{"double pointer", "func (s **Self) Len() int { return 0 }", "receiver of Len"},
		{"syntax", "func (s Self) Len( {", "not a function declaration"},
		{"empty", "", "exactly one"},
		{"blank name", "func (s Self) _() int { return 0 }", "does not give a capability name"},
		{"no letter", "func (s Self) _1() {}", "does not give a capability name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := ParseFunction(tt.src, token.Position{})
			require.Error(t, err)
			assert.Nil(t, fn)
			assert.True(t, errors.Is(err, ErrFunction))
			assert.False(t, errors.Is(err, ErrTargetSpec))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseFunctionErrorPosition(t *testing.T) {
	pos := token.Position{Filename: "text.go", Line: 10, Column: 1}
	src := "// Len reports the length.\nfunc (t Text) Len() int { return 0 }"

	_, err := ParseFunction(src, pos)
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "text.go", perr.Pos.Filename)
	assert.Equal(t, 11, perr.Pos.Line)
}
