// Package planner implements a forward state-space search planner.
//
// A search starts from a root state built by merging initial fact fragments,
// then repeatedly expands every live state against every rule, level by
// level. Each new child is compared against all previously visited states: a
// visited state whose facts match the child's at no higher balance dominates
// it, and the source state stops trying further rules for that pass. The
// first accepted child that satisfies the goal is returned.
//
// States are stored in an arena (Space). Each state holds only the facts it
// overrides plus the index of its parent, so lookups fall back through the
// parent chain without object references:
//
//	p, err := planner.New([]planner.Rule{
//	    {
//	        Name:         "[ask for key]",
//	        Cost:         1,
//	        Precondition: planner.Pattern(planner.Facts{"guard.hasKey": 1}),
//	        Effect:       planner.Patch(planner.Facts{"agent.hasKey": 1, "guard.hasKey": 0}),
//	    },
//	})
//	solution, err := p.Solve(initial, planner.Pattern(planner.Facts{"agent.hasKey": 1}), 10)
//	fmt.Println(planner.Plan(solution))
//
// This is not a cost-optimal search. The first goal state discovered in
// rule-by-state order wins, even if a cheaper one exists.
package planner
