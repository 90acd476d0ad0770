package scenario

import (
	"errors"
	"testing"

	"github.com/joeycumines/one-shot-planner/internal/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoor(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"door", "door-predicate"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s, err := Lookup(name)
			require.NoError(t, err)

			solution, err := s.Solve(-1)
			require.NoError(t, err)
			require.NotNil(t, solution)

			assert.Equal(t, "[unlock door]", solution.Rule())
			assert.Equal(t, 2.0, solution.Balance())
			assert.Equal(t, 2, solution.Age())
			assert.Equal(t, []string{"[ask for key]", "[unlock door]"}, planner.Plan(solution))
		})
	}
}

func TestRiverCrossing(t *testing.T) {
	t.Parallel()
	s := RiverCrossing()
	require.Equal(t, 20, s.Bound())

	solution, err := s.Solve(s.Bound())
	require.NoError(t, err)
	require.NotNil(t, solution)

	for _, p := range Passengers {
		assert.Equal(t, Right, solution.Text(p+".location"), p)
	}
	assert.Equal(t, []string{
		"[embark-goat]", "[cross]", "[cross]",
		"[embark-cabbage]", "[cross]", "[embark-goat]", "[cross]",
		"[embark-wolf]", "[cross]", "[cross]",
		"[embark-goat]", "[cross]",
	}, planner.Plan(solution))
	assert.Equal(t, 12, solution.Age())
	assert.Equal(t, 12.0, solution.Balance())
}

func TestRiverCrossing_NothingIsEatenAlongThePath(t *testing.T) {
	t.Parallel()
	s := RiverCrossing()
	solution, err := s.Solve(s.Bound())
	require.NoError(t, err)
	require.NotNil(t, solution)

	path := planner.Path(solution)
	require.Len(t, path, solution.Age()+1)
	for i, st := range path {
		goat := st.Text("goat.location")
		boat := st.Text("boat.location")
		for _, other := range []string{"wolf", "cabbage"} {
			if goat != Boat && st.Text(other+".location") == goat {
				assert.Equal(t, goat, boat, "step %d: goat left with the %s on the %s bank", i, other, goat)
			}
		}
		if st.Rule() == "[cross]" {
			assert.True(t, SafeToCross(path[i-1]), "step %d crossed while unsafe", i)
		}
		cargo := st.Value("boat.cargo")
		if cargo != nil {
			assert.Equal(t, Boat, st.Text(cargo.(string)+".location"), "step %d", i)
		}
	}
}

func TestRiverCrossing_TooFewPasses(t *testing.T) {
	t.Parallel()
	solution, err := RiverCrossing().Solve(11)
	require.NoError(t, err)
	assert.Nil(t, solution)
}

func TestLookup_Unknown(t *testing.T) {
	t.Parallel()
	_, err := Lookup("no-such-scenario")
	assert.True(t, errors.Is(err, ErrUnknownScenario))
}

func TestLookup_ReturnsFreshInstances(t *testing.T) {
	t.Parallel()
	a, err := Lookup("door")
	require.NoError(t, err)
	b, err := Lookup("door")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	a.Rules = nil
	assert.Len(t, b.Rules, 2)
}

func TestNames(t *testing.T) {
	t.Parallel()
	assert.Subset(t, Names(), []string{"door", "door-predicate", "river-crossing"})
}

func TestOpposite(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Right, Opposite(Left))
	assert.Equal(t, Left, Opposite(Right))
}
