package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joeycumines/one-shot-planner/internal/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doorYAML = `
name: yaml-door
description: door from a file
maxPasses: 10
initial:
  - {agent.hasKey: 0, guard.hasKey: 1}
  - {door.isLocked: 1}
rules:
  - name: "[ask for key]"
    cost: 1
    pre: {guard.hasKey: 1}
    post: {agent.hasKey: 1, guard.hasKey: 0}
  - name: "[unlock door]"
    cost: 1
    pre: 'facts["agent.hasKey"] > 0'
    post: '{"door.isLocked": 0}'
goal: {door.isLocked: 0}
`

const counterYAML = `
initial:
  - {n: 0}
rules:
  - name: inc
    cost: 2
    pre: 'facts["n"] < 5'
    post: '{"n": facts["n"] + 1}'
goal: 'facts["n"] >= 3'
`

func TestParse_Door(t *testing.T) {
	t.Parallel()
	s, err := Parse(strings.NewReader(doorYAML))
	require.NoError(t, err)

	assert.Equal(t, "yaml-door", s.Name)
	assert.Equal(t, "door from a file", s.Description)
	assert.Equal(t, 10, s.Bound())
	require.Len(t, s.Rules, 2)
	assert.False(t, s.Rules[0].Precondition.IsPredicate())
	assert.True(t, s.Rules[1].Precondition.IsPredicate())

	solution, err := s.Solve(-1)
	require.NoError(t, err)
	require.NotNil(t, solution)
	assert.Equal(t, []string{"[ask for key]", "[unlock door]"}, planner.Plan(solution))
	assert.Equal(t, 2.0, solution.Balance())
	assert.Equal(t, 0.0, solution.Number("door.isLocked"))
}

func TestParse_ExprProcedureChargesRule(t *testing.T) {
	t.Parallel()
	s, err := Parse(strings.NewReader(counterYAML))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxPasses, s.Bound())

	solution, err := s.Solve(-1)
	require.NoError(t, err)
	require.NotNil(t, solution)
	assert.Equal(t, 3.0, solution.Number("n"))
	assert.Equal(t, 3, solution.Age())
	assert.Equal(t, 6.0, solution.Balance())
	assert.Equal(t, []string{"inc", "inc", "inc"}, planner.Plan(solution))
}

func TestParse_ExprProcedureMustReturnFacts(t *testing.T) {
	t.Parallel()
	s, err := Parse(strings.NewReader(`
initial: [{n: 0}]
rules:
  - {name: bad, cost: 1, pre: {}, post: '42'}
goal: {n: 1}
`))
	require.NoError(t, err)

	_, err = s.Solve(-1)
	assert.ErrorIs(t, err, planner.ErrProcedure)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", ``, "empty document"},
		{"unknown field", "goal: {a: 1}\nbogus: true\n", "bogus"},
		{"missing goal", "initial: [{a: 1}]\n", "goal"},
		{"negative bound", "maxPasses: -1\ngoal: {a: 1}\n", "maxPasses"},
		{"rule without name", "rules: [{pre: {}, post: {}}]\ngoal: {a: 1}\n", "missing name"},
		{"rule without post", "rules: [{name: r, pre: {}}]\ngoal: {a: 1}\n", "r post"},
		{"bad expression", "rules: [{name: r, pre: 'facts[', post: {}}]\ngoal: {a: 1}\n", "compile"},
		{"sequence condition", "goal: [1, 2]\n", "expected a mapping"},
		{"invalid fact value", "initial: [{a: [1, 2]}]\ngoal: {a: 1}\n", "initial[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrScenario)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_NamesAfterFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "counter.yaml")
	writeFile(t, path, counterYAML)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "counter", s.Name)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_ErrorMentionsPath(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "broken.yml")
	writeFile(t, path, "goal: [oops]\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrScenario)
	assert.Contains(t, err.Error(), path)
}

func TestLoadDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.yml"), counterYAML)
	writeFile(t, filepath.Join(dir, "a.yaml"), doorYAML)
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a scenario")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.yaml"), 0o755))

	scenarios, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "yaml-door", scenarios[0].Name)
	assert.Equal(t, "b", scenarios[1].Name)
}

func TestLoadDir_Missing(t *testing.T) {
	t.Parallel()
	scenarios, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, scenarios)
}

func TestResolve(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "counter.yaml")
	writeFile(t, path, counterYAML)

	s, err := Resolve(path, "")
	require.NoError(t, err)
	assert.Equal(t, "counter", s.Name)

	s, err = Resolve("counter", dir)
	require.NoError(t, err)
	assert.Equal(t, "counter", s.Name)

	s, err = Resolve("door", dir)
	require.NoError(t, err)
	assert.Equal(t, "door", s.Name)

	_, err = Resolve("counter", "")
	assert.ErrorIs(t, err, ErrUnknownScenario)
}
