package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReindexRoundTrip(t *testing.T) {
	t.Parallel()

	term := Eq(Next("x", Int), Add(Curr("x", Int), IntC(1)))

	shifted := Reindex(term, 3)
	assert.Equal(t, 4, MaxOffset(shifted))
	assert.True(t, term.Equal(Reindex(shifted, -3)))

	// Zero delta is the identity.
	assert.True(t, term.Equal(Reindex(term, 0)))
}

func TestReindexLeavesConstants(t *testing.T) {
	t.Parallel()

	term := And(True(), Ge(Curr("x", Int), IntC(0)))
	shifted := Reindex(term, 2)
	assert.Equal(t, "(and true (>= x'' 0))", shifted.String())
}

func TestSubstitute(t *testing.T) {
	t.Parallel()

	x := Curr("x", Int)
	inc := Add(x, IntC(1))

	// Replacing y by x+1 in y' = y produces (x+1)' = x+1, i.e. the
	// replacement reindexed at the reference's offset.
	term := Eq(Reindex(Curr("y", Int), 1), Curr("y", Int))
	got := Substitute(term, map[string]Term{"y": inc})
	want := Eq(Add(Next("x", Int), IntC(1)), inc)
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)

	// Unmapped names survive untouched.
	assert.True(t, term.Equal(Substitute(term, map[string]Term{"z": inc})))
}

func TestRefs(t *testing.T) {
	t.Parallel()

	term := And(
		Ge(Curr("x", Int), IntC(0)),
		Eq(Next("x", Int), Curr("y", Int)),
		Curr("b", Bool),
	)
	refs := Refs(term)
	require.Len(t, refs, 4)
	assert.Equal(t, Ref{Name: "x", Sort: Int}, refs[0])
	assert.Equal(t, Ref{Name: "x", Sort: Int, Offset: 1}, refs[1])
	assert.Equal(t, Ref{Name: "y", Sort: Int}, refs[2])
	assert.Equal(t, Ref{Name: "b", Sort: Bool}, refs[3])
}

func TestMaxOffset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, -1, MaxOffset(True()))
	assert.Equal(t, 0, MaxOffset(Curr("x", Int)))
	assert.Equal(t, 1, MaxOffset(Eq(Next("x", Int), Curr("x", Int))))
}
