package extfn

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/extfn/errors"
)

func TestParseTargetConcrete(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		typ    string
		params []TypeParam
	}{
		{"named type", "Text", "Text", nil},
		{"pointer", "*Buffer", "*Buffer", nil},
		{"qualified", "strings.Builder", "strings.Builder", nil},
		{
			"generic",
			"[K comparable, V any] Mapping[K, V]",
			"Mapping[K, V]",
			[]TypeParam{{Names: []string{"K"}, Constraint: "comparable"}, {Names: []string{"V"}, Constraint: "any"}},
		},
		{
			"grouped params",
			"[K, V any] Pair[K, V]",
			"Pair[K, V]",
			[]TypeParam{{Names: []string{"K", "V"}, Constraint: "any"}},
		},
		{"slice", "[]byte", "[]byte", nil},
		{"array", "[4]int", "[4]int", nil},
		{"surrounding space", "  Text  ", "Text", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := ParseTarget(tt.src, token.Position{})
			require.NoError(t, err)
			assert.Equal(t, TargetConcrete, target.Kind)
			assert.Equal(t, tt.typ, target.Type)
			assert.Equal(t, tt.params, target.TypeParams)
			assert.Empty(t, target.Constraints)
		})
	}
}

func TestParseTargetBound(t *testing.T) {
	tests := []struct {
		name        string
		src         string
		constraints []string
		params      []TypeParam
	}{
		{"single", "interface fmt.Stringer", []string{"fmt.Stringer"}, nil},
		{"approximation", "interface ~string", []string{"~string"}, nil},
		{"conjunction", "interface ~string + fmt.Stringer", []string{"~string", "fmt.Stringer"}, nil},
		{"union", "interface ~int | ~int64", []string{"~int | ~int64"}, nil},
		{
			"generic",
			"[K comparable, V any] interface ~map[K]V",
			[]string{"~map[K]V"},
			[]TypeParam{{Names: []string{"K"}, Constraint: "comparable"}, {Names: []string{"V"}, Constraint: "any"}},
		},
		{"generic constraint", "[T any] interface Container[T] + comparable", []string{"Container[T]", "comparable"},
			[]TypeParam{{Names: []string{"T"}, Constraint: "any"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := ParseTarget(tt.src, token.Position{})
			require.NoError(t, err)
			assert.Equal(t, TargetBound, target.Kind)
			assert.Equal(t, tt.constraints, target.Constraints)
			assert.Equal(t, tt.params, target.TypeParams)
			assert.Empty(t, target.Type)
		})
	}
}

func TestParseTargetInterfaceLiteralIsConcrete(t *testing.T) {
	target, err := ParseTarget("interface{ Len() int }", token.Position{})
	require.NoError(t, err)
	assert.Equal(t, TargetConcrete, target.Kind)
	assert.Contains(t, target.Type, "Len() int")
}

func TestParseTargetErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"empty", "", "missing target type"},
		{"only params", "[T any]", "missing target type"},
		{"empty params", "[] interface Sized", "empty type parameter list"},
		{"unconstrained param", "[K] interface Sized", "no constraints"},
		{"unterminated params", "[K comparable Text", "unterminated"},
		{"reserved Self", "[Self any] Box[Self]", "reserved"},
		{"missing constraint", "interface", "missing constraint"},
		{"leading plus", "interface + fmt.Stringer", "empty constraint"},
		{"trailing plus", "interface fmt.Stringer +", "empty constraint"},
		{"double plus", "interface A + + B", "empty constraint"},
		{"trailing tokens", "Text Other", "trailing tokens"},
		{"not a type", "1 + 2", "not a type"},
		{"not a constraint", "interface 42", "not a constraint"},
		{"bad token", "Text\"", "string literal not terminated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := ParseTarget(tt.src, token.Position{})
			require.Error(t, err)
			assert.Nil(t, target)
			assert.True(t, errors.Is(err, ErrTargetSpec))
			assert.False(t, errors.Is(err, ErrFunction))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseTargetErrorPosition(t *testing.T) {
	pos := token.Position{Filename: "text.go", Line: 3, Column: 16}

	_, err := ParseTarget("Text Other", pos)
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "text.go", perr.Pos.Filename)
	assert.Equal(t, 3, perr.Pos.Line)
	assert.Equal(t, 21, perr.Pos.Column)
	assert.Contains(t, err.Error(), "text.go:3:21")
}

func TestParseTargetErrorHasHint(t *testing.T) {
	_, err := ParseTarget("interface", token.Position{})
	require.Error(t, err)
	assert.NotEmpty(t, errors.Hints(err))
}

func TestTargetKindString(t *testing.T) {
	assert.Equal(t, "concrete", TargetConcrete.String())
	assert.Equal(t, "bound", TargetBound.String())
	assert.Equal(t, "unknown", TargetKind(9).String())
}
