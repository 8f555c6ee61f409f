package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinduce/kinduce/internal/logic"
)

// counterScript is the running example: an integer counter starting
// at zero and incrementing forever.
func counterScript() *Script {
	return &Script{
		Decls: []Decl{{Name: "cnt", Sort: logic.Int}},
		Init:  Ap(logic.OpEq, ID("cnt"), IntLit(0)),
		Trans: Ap(logic.OpEq, NextID("cnt"), Ap(logic.OpAdd, ID("cnt"), IntLit(1))),
		Props: []PropDef{{Name: "non-negative", Body: Ap(logic.OpGe, ID("cnt"), IntLit(0))}},
	}
}

func TestBuildCounter(t *testing.T) {
	t.Parallel()

	sys, diags, err := Build(counterScript())
	require.NoError(t, err)
	assert.Empty(t, diags)

	cnt := logic.Curr("cnt", logic.Int)
	assert.True(t, logic.Eq(cnt, logic.IntC(0)).Equal(sys.Init()))
	assert.True(t, logic.Eq(logic.Next("cnt", logic.Int), logic.Add(cnt, logic.IntC(1))).Equal(sys.Trans()))

	body, ok := sys.Prop("non-negative")
	require.True(t, ok)
	assert.True(t, logic.Ge(cnt, logic.IntC(0)).Equal(body))
}

func TestBuildInlinesLets(t *testing.T) {
	t.Parallel()

	// A top-level let and a nested let both vanish into the terms
	// they are used from.
	s := counterScript()
	s.Lets = []Binding{{Name: "inc", RHS: Ap(logic.OpAdd, ID("cnt"), IntLit(1))}}
	s.Trans = Ap(logic.OpEq, NextID("cnt"),
		Let("bump", ID("inc"), ID("bump")))

	sys, diags, err := Build(s)
	require.NoError(t, err)
	assert.Empty(t, diags)

	cnt := logic.Curr("cnt", logic.Int)
	assert.True(t, logic.Eq(logic.Next("cnt", logic.Int), logic.Add(cnt, logic.IntC(1))).Equal(sys.Trans()))
}

func TestBuildShadowing(t *testing.T) {
	t.Parallel()

	// An inner let shadows the state variable inside its body only.
	s := counterScript()
	s.Props = []PropDef{{
		Name: "shadowed",
		Body: Ap(logic.OpAnd,
			Let("cnt", BoolLit(true), ID("cnt")),
			Ap(logic.OpGe, ID("cnt"), IntLit(0)),
		),
	}}

	sys, _, err := Build(s)
	require.NoError(t, err)

	cnt := logic.Curr("cnt", logic.Int)
	body, ok := sys.Prop("shadowed")
	require.True(t, ok)
	want := logic.And(logic.True(), logic.Ge(cnt, logic.IntC(0)))
	assert.True(t, want.Equal(body), "want %s, got %s", want, body)
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*Script)
		wantKind ErrorKind
		wantName string
	}{
		{
			"variable declared twice",
			func(s *Script) { s.Decls = append(s.Decls, Decl{Name: "cnt", Sort: logic.Bool}) },
			DuplicateDeclaration, "cnt",
		},
		{
			"top-level let reuses declared name",
			func(s *Script) { s.Lets = []Binding{{Name: "cnt", RHS: IntLit(0)}} },
			DuplicateDeclaration, "cnt",
		},
		{
			"let binds one name twice",
			func(s *Script) {
				s.Init = LetIn{
					Bindings: []Binding{{Name: "a", RHS: IntLit(0)}, {Name: "a", RHS: IntLit(1)}},
					Body:     Ap(logic.OpEq, ID("cnt"), ID("a")),
				}
			},
			DuplicateDeclaration, "a",
		},
		{
			"unbound name",
			func(s *Script) { s.Init = Ap(logic.OpEq, ID("missing"), IntLit(0)) },
			UnboundVariable, "missing",
		},
		{
			"let binding not in scope outside its body",
			func(s *Script) {
				s.Init = Ap(logic.OpAnd,
					Let("tmp", BoolLit(true), ID("tmp")),
					ID("tmp"),
				)
			},
			UnboundVariable, "tmp",
		},
		{
			"next-state reference in init",
			func(s *Script) { s.Init = Ap(logic.OpEq, NextID("cnt"), IntLit(0)) },
			UnknownNextReference, "cnt",
		},
		{
			"next-state reference in property",
			func(s *Script) {
				s.Props = []PropDef{{Name: "p", Body: Ap(logic.OpGe, NextID("cnt"), IntLit(0))}}
			},
			UnknownNextReference, "cnt",
		},
		{
			"next-state reference to a let binding",
			func(s *Script) {
				s.Lets = []Binding{{Name: "inc", RHS: Ap(logic.OpAdd, ID("cnt"), IntLit(1))}}
				s.Trans = Ap(logic.OpEq, NextID("inc"), IntLit(0))
			},
			UnknownNextReference, "inc",
		},
		{
			"ill-typed application",
			func(s *Script) { s.Init = Ap(logic.OpAnd, ID("cnt"), BoolLit(true)) },
			BadType, "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := counterScript()
			tt.mutate(s)
			_, _, err := Build(s)
			require.Error(t, err)
			var buildErr *BuildError
			require.ErrorAs(t, err, &buildErr)
			assert.Equal(t, tt.wantKind, buildErr.Kind)
			assert.Equal(t, tt.wantName, buildErr.Name)
		})
	}
}

func TestBuildWarnsOnUnusedLet(t *testing.T) {
	t.Parallel()

	s := counterScript()
	s.Init = Let("unused", IntLit(7), Ap(logic.OpEq, ID("cnt"), IntLit(0)))

	sys, diags, err := Build(s)
	require.NoError(t, err)
	require.NotNil(t, sys)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "unused let binding `unused`")
}
