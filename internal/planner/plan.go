package planner

import "slices"

// Plan returns the names of the rules applied from the root to s, in order.
// It walks parent links from s and stops at the first state without a rule
// name.
func Plan(s *State) []string {
	var names []string
	for cur := s; cur != nil && cur.rule != ""; cur = cur.Parent() {
		names = append(names, cur.rule)
	}
	slices.Reverse(names)
	return names
}

// Path returns the states from the root to s, in order.
func Path(s *State) []*State {
	var path []*State
	for cur := s; cur != nil; cur = cur.Parent() {
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path
}
