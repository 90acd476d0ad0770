package planner

import (
	"encoding/json"
	"fmt"
)

// noParent marks the root of a space.
const noParent = -1

// Space is the arena holding every visited state of one search. States refer
// to their parent by index, never by pointer.
type Space struct {
	states []*State
}

// Len returns the number of states in the space.
func (sp *Space) Len() int {
	return len(sp.states)
}

// At returns the state at index i.
func (sp *Space) At(i int) *State {
	return sp.states[i]
}

// push seals s and appends it to the arena.
func (sp *Space) push(s *State) {
	s.index = len(sp.states)
	sp.states = append(sp.states, s)
	s.resolved = s.resolve()
}

// State is one layer of facts plus search metadata. Domain facts and
// metadata are held separately, so fact comparisons never see metadata.
//
// A state is sealed once it has been appended to its space; after that only
// the engine's open flag may change.
type State struct {
	space   *Space
	index   int
	parent  int
	local   Facts
	balance float64
	age     int
	rule    string
	open    bool

	// resolved caches the full fact view of a sealed state
	resolved Facts
}

// Root creates a new space whose root state holds the left-to-right merge of
// fragments.
func Root(fragments ...Facts) (*State, error) {
	merged, err := Merge(fragments...)
	if err != nil {
		return nil, err
	}
	s := &State{
		space:  new(Space),
		index:  noParent,
		parent: noParent,
		local:  merged,
	}
	s.space.push(s)
	return s, nil
}

// derive returns an unsealed child of s with no local facts. Metadata is
// inherited from s, so effects add to the parent's balance and age.
func (s *State) derive() *State {
	return &State{
		space:   s.space,
		index:   noParent,
		parent:  s.index,
		local:   make(Facts),
		balance: s.balance,
		age:     s.age,
		rule:    s.rule,
	}
}

// Lookup returns the value of key, falling back through the parent chain.
// The boolean is false if no layer sets the key.
func (s *State) Lookup(key string) (any, bool) {
	if s.resolved != nil {
		v, ok := s.resolved[key]
		return v, ok
	}
	if v, ok := s.local[key]; ok {
		return v, true
	}
	for p := s.parent; p != noParent; {
		st := s.space.states[p]
		if v, ok := st.local[key]; ok {
			return v, true
		}
		p = st.parent
	}
	return nil, false
}

// Value returns the value of key, or nil if it is unset.
func (s *State) Value(key string) any {
	v, _ := s.Lookup(key)
	return v
}

// Text returns the value of key if it is a string, else "".
func (s *State) Text(key string) string {
	v, _ := s.Value(key).(string)
	return v
}

// Number returns the value of key if it is a number, else 0.
func (s *State) Number(key string) float64 {
	v, _ := s.Value(key).(float64)
	return v
}

// Facts returns the resolved fact view of s. The returned map must not be
// modified.
func (s *State) Facts() Facts {
	if s.resolved != nil {
		return s.resolved
	}
	return s.resolve()
}

func (s *State) resolve() Facts {
	out := make(Facts, len(s.local))
	for k, v := range s.local {
		out[k] = v
	}
	for p := s.parent; p != noParent; {
		st := s.space.states[p]
		for k, v := range st.local {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
		p = st.parent
	}
	return out
}

// Parent returns the state s was derived from, or nil for the root.
func (s *State) Parent() *State {
	if s.parent == noParent {
		return nil
	}
	return s.space.states[s.parent]
}

// Index returns the position of s in its space, or -1 if s has not been
// visited.
func (s *State) Index() int {
	return s.index
}

// Balance is the cumulative cost along the derivation path.
func (s *State) Balance() float64 { return s.balance }

// Age is the number of rule applications since the root.
func (s *State) Age() int { return s.age }

// Rule is the name of the rule that produced s ("" for the root).
func (s *State) Rule() string { return s.rule }

// Open reports whether s may still be expanded.
func (s *State) Open() bool { return s.open }

// Sealed reports whether s has been appended to its space.
func (s *State) Sealed() bool { return s.index != noParent }

func (s *State) mustBeMutable() {
	if s.Sealed() {
		panic(fmt.Sprintf("planner: state %d is visited and cannot be modified", s.index))
	}
}

// Set overrides key on s. Panics if s is sealed or value has an unsupported
// type.
func (s *State) Set(key string, value any) {
	s.mustBeMutable()
	n, err := Normalize(value)
	if err != nil {
		panic(fmt.Sprintf("planner: set %q: %v", key, err))
	}
	s.local[key] = n
}

// SetBalance sets the cumulative cost of s.
func (s *State) SetBalance(balance float64) {
	s.mustBeMutable()
	s.balance = balance
}

// SetAge sets the depth of s.
func (s *State) SetAge(age int) {
	s.mustBeMutable()
	s.age = age
}

// SetRule sets the rule name recorded on s.
func (s *State) SetRule(name string) {
	s.mustBeMutable()
	s.rule = name
}

// Charge records one application of the named rule: it adds cost to the
// balance, increments the age and sets the rule name. Procedures use it for
// the bookkeeping patches get automatically.
func (s *State) Charge(name string, cost float64) {
	s.mustBeMutable()
	s.balance += cost
	s.age++
	s.rule = name
}

// Matches reports whether every key in pattern has an equal value in s.
// Keys present in s but not in pattern are ignored.
func Matches(pattern Facts, s *State) bool {
	for k, want := range pattern {
		got, _ := s.Lookup(k)
		if !Equal(want, got) {
			return false
		}
	}
	return true
}

// Subsumes reports whether the resolved facts of s all hold in c, i.e.
// whether c is a compatible extension of s.
func (s *State) Subsumes(c *State) bool {
	return Matches(s.Facts(), c)
}

type stateJSON struct {
	Facts   Facts   `json:"facts"`
	Balance float64 `json:"balance"`
	Age     int     `json:"age"`
	Rule    string  `json:"rule,omitempty"`
}

// MarshalJSON encodes the resolved facts and metadata of s.
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		Facts:   s.Facts(),
		Balance: s.balance,
		Age:     s.age,
		Rule:    s.rule,
	})
}
