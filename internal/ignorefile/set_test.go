package ignorefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/dropignore/internal/pathinfo"
)

func TestSet_MatchesAny(t *testing.T) {
	// Given: a set of unrelated rules
	set := NewSet(pathinfo.Dirs{p("/base/x/cache"): true},
		mustCompile(t, "/base", "node_modules"),
		mustCompile(t, "/base", "/dist"),
		mustCompile(t, "/base", "cache/"),
	)

	// Then: a candidate is accepted when any rule accepts it
	assert.True(t, set.Matches(p("/base/a/node_modules")))
	assert.True(t, set.Matches(p("/base/dist")))
	assert.True(t, set.Matches(p("/base/x/cache")))
	assert.False(t, set.Matches(p("/base/src/dist")))
	assert.False(t, set.Matches(p("/base/y/cache")))
	assert.Equal(t, 3, set.Len())
}

func TestSet_OrderDoesNotMatter(t *testing.T) {
	a := mustCompile(t, "/base", "node_modules")
	b := mustCompile(t, "/base", "/a*b")

	forward := NewSet(pathinfo.Dirs{}, a, b)
	backward := NewSet(pathinfo.Dirs{}, b, a)

	for _, c := range []string{"/base/node_modules", "/base/axb", "/base/a/xb", "/base/q"} {
		assert.Equal(t, forward.Matches(p(c)), backward.Matches(p(c)), c)
	}
}

func TestSet_Explain(t *testing.T) {
	first := mustCompile(t, "/base", "/**/build")
	second := mustCompile(t, "/base", "build")
	set := NewSet(pathinfo.Dirs{}, first, second)

	m, ok := set.Explain(p("/base/x/build"))
	require.True(t, ok)
	assert.Same(t, first, m)

	m, ok = set.Explain(p("/base/x/src"))
	assert.False(t, ok)
	assert.Nil(t, m)
}

func TestSet_SkipsNilMatchers(t *testing.T) {
	set := NewSet(nil, nil, mustCompile(t, "/base", "x"), nil)
	assert.Equal(t, 1, set.Len())
	assert.Len(t, set.Matchers(), 1)
}

func TestSet_NilAndEmpty(t *testing.T) {
	var nilSet *Set
	assert.False(t, nilSet.Matches(p("/base/x")))
	assert.Equal(t, 0, nilSet.Len())
	assert.Nil(t, nilSet.Matchers())

	empty := NewSet(nil)
	assert.False(t, empty.Matches(p("/base/x")))
}
