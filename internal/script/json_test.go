package script

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinduce/kinduce/internal/logic"
)

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	doc := `{
		"vars":  [["cnt", "int"], ["reset", "bool"]],
		"lets":  [["inc", ["+", "cnt", 1]]],
		"init":  ["=", "cnt", 0],
		"trans": ["=", "cnt'", ["ite", "reset", 0, "inc"]],
		"props": [["cnt-positive", [">=", "cnt", 0]]]
	}`

	s, err := DecodeJSON([]byte(doc))
	require.NoError(t, err)

	require.Len(t, s.Decls, 2)
	assert.Equal(t, Decl{Name: "cnt", Sort: logic.Int}, s.Decls[0])
	assert.Equal(t, Decl{Name: "reset", Sort: logic.Bool}, s.Decls[1])
	require.Len(t, s.Lets, 1)
	assert.Equal(t, "inc", s.Lets[0].Name)
	require.Len(t, s.Props, 1)
	assert.Equal(t, "cnt-positive", s.Props[0].Name)

	// The whole document builds into a working system.
	sys, diags, err := Build(s)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, []string{"cnt-positive"}, sys.Props())

	cnt := logic.Curr("cnt", logic.Int)
	wantTrans := logic.Eq(
		logic.Next("cnt", logic.Int),
		logic.Ite(logic.Curr("reset", logic.Bool), logic.IntC(0), logic.Add(cnt, logic.IntC(1))),
	)
	assert.True(t, wantTrans.Equal(sys.Trans()), "want %s, got %s", wantTrans, sys.Trans())
}

func TestDecodeJSONExprForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want Expr
	}{
		{"bool literal", `true`, BoolLit(true)},
		{"int literal", `42`, IntLit(42)},
		{"big int literal", `123456789012345678901234567890`, Lit{Val: logic.BigI(bigInt(t, "123456789012345678901234567890"))}},
		{"rational", `["rat", "1/3"]`, RatLit(1, 3)},
		{"ident", `"x"`, ID("x")},
		{"next ident", `"x'"`, NextID("x")},
		{"application", `["and", "a", "b"]`, Ap(logic.OpAnd, ID("a"), ID("b"))},
		{"alias operators", `["&&", ["!", "a"], ["==", "x", 1]]`,
			Ap(logic.OpAnd, Ap(logic.OpNot, ID("a")), Ap(logic.OpEq, ID("x"), IntLit(1)))},
		{"let form", `["let", [["a", 1]], ["=", "x", "a"]]`,
			Let("a", IntLit(1), Ap(logic.OpEq, ID("x"), ID("a")))},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := decodeExpr([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeJSONErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"unknown sort", `{"vars": [["x", "float"]], "init": true, "trans": true, "props": []}`},
		{"unknown operator", `{"vars": [], "init": ["xor", true, true], "trans": true, "props": []}`},
		{"decimal literal", `{"vars": [], "init": ["=", "x", 1.5], "trans": true, "props": []}`},
		{"empty application", `{"vars": [], "init": [], "trans": true, "props": []}`},
		{"malformed rational", `{"vars": [], "init": ["rat", "one third"], "trans": true, "props": []}`},
		{"malformed property", `{"vars": [], "init": true, "trans": true, "props": [["p"]]}`},
		{"malformed let", `{"vars": [], "init": ["let", ["a", 1], "a"], "trans": true, "props": []}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeJSON([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func bigInt(t *testing.T, s string) *big.Int {
	t.Helper()
	i, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return i
}
