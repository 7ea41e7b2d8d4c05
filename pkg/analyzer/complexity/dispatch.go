package complexity

import "github.com/burden-dev/burden/pkg/ir"

// detectDispatch looks for a same-subject conditional chain whose arms all
// terminate immediately. Returns the arm count of the widest qualifying
// chain, or 0 when the body is not a dispatch shape.
//
// Arms arrive normalized from extraction, so match arms, if/elif chains and
// switch statements all look the same here. An arm body counts as simple
// when it is a return/break/continue, a literal, a single call or
// constructor, a trailing error propagation, or one formatting/logging
// invocation; anything else disqualifies its chain.
func (a *Analyzer) detectDispatch(arms []ir.Arm) int {
	if len(arms) < a.minDispatchArms {
		return 0
	}

	chains := make(map[string][]ir.Arm)
	for _, arm := range arms {
		if arm.Subject == "" {
			continue
		}
		chains[arm.Subject] = append(chains[arm.Subject], arm)
	}

	best := 0
	for _, chain := range chains {
		if len(chain) < a.minDispatchArms {
			continue
		}
		simple := true
		for _, arm := range chain {
			if !arm.Kind.Simple() {
				simple = false
				break
			}
		}
		if simple && len(chain) > best {
			best = len(chain)
		}
	}
	return best
}
