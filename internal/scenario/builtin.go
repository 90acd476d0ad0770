package scenario

import (
	"github.com/joeycumines/one-shot-planner/internal/planner"
)

// Door: the agent must get the key from the guard before unlocking the door.
func Door() *Scenario {
	return &Scenario{
		Name:        "door",
		Description: "Solving for opening door",
		Initial: []planner.Facts{
			{"agent.hasKey": 0},
			{"guard.hasKey": 1},
			{"door.isLocked": 1},
		},
		Rules: []planner.Rule{
			askForKey(),
			{
				Name:         "[unlock door]",
				Cost:         1,
				Precondition: planner.Pattern(planner.Facts{"agent.hasKey": 1}),
				Effect:       planner.Patch(planner.Facts{"door.isLocked": 0}),
			},
		},
		Goal:      planner.Pattern(planner.Facts{"door.isLocked": 0}),
		MaxPasses: 10,
	}
}

// DoorPredicate is Door with the unlock precondition written as a predicate.
func DoorPredicate() *Scenario {
	s := Door()
	s.Name = "door-predicate"
	s.Description = "Solving for opening door (predicate precondition)"
	s.Rules[1].Precondition = planner.Predicate(func(st *planner.State) bool {
		return st.Number("agent.hasKey") > 0
	})
	return s
}

func askForKey() planner.Rule {
	return planner.Rule{
		Name:         "[ask for key]",
		Cost:         1,
		Precondition: planner.Pattern(planner.Facts{"guard.hasKey": 1}),
		Effect:       planner.Patch(planner.Facts{"agent.hasKey": 1, "guard.hasKey": 0}),
	}
}

// River crossing locations.
const (
	Left  = "left"
	Right = "right"
	Boat  = "boat"
)

// Passengers of the river crossing scenario.
var Passengers = []string{"goat", "cabbage", "wolf"}

// RiverCrossing: ferry a goat, a cabbage and a wolf across a river in a boat
// that carries one passenger. The boat may not cross while the goat shares a
// location with the wolf or the cabbage.
func RiverCrossing() *Scenario {
	rules := make([]planner.Rule, 0, len(Passengers)+1)
	for _, p := range Passengers {
		rules = append(rules, embark(p))
	}
	rules = append(rules, cross())
	return &Scenario{
		Name:        "river-crossing",
		Description: "Solving goat, cabbage and wolf problem",
		Initial: []planner.Facts{{
			"goat.location":    Left,
			"cabbage.location": Left,
			"wolf.location":    Left,
			"boat.location":    Left,
			"boat.cargo":       nil,
		}},
		Rules: rules,
		Goal: planner.Pattern(planner.Facts{
			"goat.location":    Right,
			"wolf.location":    Right,
			"cabbage.location": Right,
		}),
		MaxPasses: 20,
	}
}

func embark(passenger string) planner.Rule {
	name := "[embark-" + passenger + "]"
	location := passenger + ".location"
	return planner.Rule{
		Name: name,
		Cost: 1,
		Precondition: planner.Predicate(func(s *planner.State) bool {
			return s.Value(location) == s.Value("boat.location") && s.Value("boat.cargo") == nil
		}),
		Effect: planner.Procedure(func(s *planner.State) error {
			s.Set(location, Boat)
			s.Set("boat.cargo", passenger)
			s.Charge(name, 1)
			return nil
		}),
	}
}

func cross() planner.Rule {
	const name = "[cross]"
	return planner.Rule{
		Name:         name,
		Cost:         1,
		Precondition: planner.Predicate(SafeToCross),
		Effect: planner.Procedure(func(s *planner.State) error {
			to := Opposite(s.Text("boat.location"))
			if cargo := s.Text("boat.cargo"); cargo != "" {
				s.Set(cargo+".location", to)
			}
			s.Set("boat.location", to)
			s.Set("boat.cargo", nil)
			s.Charge(name, 1)
			return nil
		}),
	}
}

// SafeToCross reports whether the goat is apart from both the wolf and the
// cabbage.
func SafeToCross(s *planner.State) bool {
	goat := s.Value("goat.location")
	return goat != s.Value("wolf.location") && goat != s.Value("cabbage.location")
}

// Opposite returns the other river bank.
func Opposite(bank string) string {
	if bank == Right {
		return Left
	}
	return Right
}
