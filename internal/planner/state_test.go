package planner

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot_MergesLeftToRight(t *testing.T) {
	t.Parallel()
	root, err := Root(Facts{"a": 1}, Facts{"a": 2, "b": 3})
	require.NoError(t, err)

	assert.Equal(t, Facts{"a": 2.0, "b": 3.0}, root.Facts())
	assert.Nil(t, root.Parent())
	assert.Equal(t, 0, root.Index())
	assert.Zero(t, root.Balance())
	assert.Zero(t, root.Age())
	assert.Empty(t, root.Rule())
}

func TestRoot_NoFragments(t *testing.T) {
	t.Parallel()
	root, err := Root()
	require.NoError(t, err)
	assert.Empty(t, root.Facts())
}

func TestLookup_FallsBackThroughParents(t *testing.T) {
	t.Parallel()
	root, err := Root(Facts{"a": 1, "b": "x", "c": nil})
	require.NoError(t, err)

	first, err := Rule{Name: "one", Cost: 1, Precondition: Pattern(Facts{}), Effect: Patch(Facts{"a": 5})}.Apply(root)
	require.NoError(t, err)
	second, err := Rule{Name: "two", Cost: 1, Precondition: Pattern(Facts{}), Effect: Patch(Facts{"d": true})}.Apply(first)
	require.NoError(t, err)

	v, ok := second.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 5.0, v)
	assert.Equal(t, "x", second.Text("b"))
	v, ok = second.Lookup("c")
	assert.True(t, ok, "explicit nil is still set")
	assert.Nil(t, v)
	_, ok = second.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, Facts{"a": 5.0, "b": "x", "c": nil, "d": true}, second.Facts())
	assert.Same(t, first, second.Parent())
	assert.Same(t, root, first.Parent())
	assert.Equal(t, 1.0, root.Number("a"), "parents are unchanged")
	assert.Equal(t, []*State{root, first, second}, Path(second))
}

func TestMatches_SelfSubsumption(t *testing.T) {
	t.Parallel()
	tests := []Facts{
		{},
		{"a": 1},
		{"a": 1, "b": "two", "c": nil, "d": false},
	}
	for _, facts := range tests {
		root, err := Root(facts)
		require.NoError(t, err)
		assert.True(t, root.Subsumes(root), "%v", facts)
		assert.True(t, Matches(root.Facts(), root), "%v", facts)
	}
}

func TestMatches(t *testing.T) {
	t.Parallel()
	root, err := Root(Facts{"a": 1, "b": "x"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		pattern Facts
		want    bool
	}{
		{"empty pattern", Facts{}, true},
		{"subset", Facts{"a": 1}, true},
		{"int and float are equal", Facts{"a": 1.0}, true},
		{"value differs", Facts{"a": 2}, false},
		{"type differs", Facts{"a": "1"}, false},
		{"nil matches absent", Facts{"z": nil}, true},
		{"value vs absent", Facts{"z": 0}, false},
		{"superset", Facts{"a": 1, "b": "x", "c": 3}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Matches(tt.pattern, root), tt.name)
	}
}

func TestSubsumes_IgnoresMetadata(t *testing.T) {
	t.Parallel()
	root, err := Root(Facts{"a": 1})
	require.NoError(t, err)
	child, err := Rule{Name: "same", Cost: 10, Precondition: Pattern(Facts{}), Effect: Patch(Facts{"a": 1})}.Apply(root)
	require.NoError(t, err)

	assert.True(t, root.Subsumes(child))
	assert.True(t, child.Subsumes(root))
}

func TestSealedState_Panics(t *testing.T) {
	t.Parallel()
	root, err := Root(Facts{"a": 1})
	require.NoError(t, err)

	assert.True(t, root.Sealed())
	assert.Panics(t, func() { root.Set("a", 2) })
	assert.Panics(t, func() { root.Charge("x", 1) })
	assert.Panics(t, func() { root.SetBalance(1) })
	assert.Panics(t, func() { root.SetAge(1) })
	assert.Panics(t, func() { root.SetRule("x") })
}

func TestSet_RejectsUnsupportedValues(t *testing.T) {
	t.Parallel()
	root, err := Root()
	require.NoError(t, err)
	child := root.derive()

	assert.NotPanics(t, func() { child.Set("n", int64(3)) })
	assert.Equal(t, 3.0, child.Value("n"))
	assert.Panics(t, func() { child.Set("bad", []string{"x"}) })
}

func TestApply_PreconditionFails(t *testing.T) {
	t.Parallel()
	root, err := Root(Facts{"a": 1})
	require.NoError(t, err)

	child, err := Rule{Name: "r", Cost: 1, Precondition: Pattern(Facts{"a": 2}), Effect: Patch(Facts{"a": 3})}.Apply(root)
	require.NoError(t, err)
	assert.Nil(t, child)
	assert.Equal(t, 1.0, root.Number("a"))
}

func TestApply_RequiresVisitedSource(t *testing.T) {
	t.Parallel()
	root, err := Root()
	require.NoError(t, err)

	_, err = Rule{Name: "r", Precondition: Pattern(Facts{}), Effect: Patch(Facts{})}.Apply(root.derive())
	assert.Error(t, err)
}

func TestEqual(t *testing.T) {
	t.Parallel()
	assert.True(t, Equal(1, 1.0))
	assert.True(t, Equal(uint8(2), int64(2)))
	assert.True(t, Equal(nil, nil))
	assert.True(t, Equal("a", "a"))
	assert.False(t, Equal(0, nil))
	assert.False(t, Equal(false, 0))
	assert.False(t, Equal([]int{}, []int{}))
}

func TestState_MarshalJSON(t *testing.T) {
	t.Parallel()
	root, err := Root(Facts{"door.isLocked": 1})
	require.NoError(t, err)
	child, err := Rule{Name: "[unlock door]", Cost: 1, Precondition: Pattern(Facts{}), Effect: Patch(Facts{"door.isLocked": 0})}.Apply(root)
	require.NoError(t, err)

	b, err := json.Marshal(child)
	require.NoError(t, err)
	assert.JSONEq(t, `{"facts":{"door.isLocked":0},"balance":1,"age":1,"rule":"[unlock door]"}`, string(b))

	b, err = json.Marshal(root)
	require.NoError(t, err)
	assert.JSONEq(t, `{"facts":{"door.isLocked":1},"balance":0,"age":0}`, string(b))
}

func TestMerge_RejectsInvalidValues(t *testing.T) {
	t.Parallel()
	_, err := Merge(Facts{"ok": 1}, Facts{"bad": make(chan int)})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestFacts_Keys(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"a", "b", "c"}, Facts{"c": 1, "a": 2, "b": 3}.Keys())
}
