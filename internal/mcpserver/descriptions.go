package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// how to interpret results, and key thresholds.

func describeDebt() string {
	return `Scores every function for technical debt by combining test-coverage gaps, entropy-dampened complexity, and call-graph criticality into a single 0-10 score.

USE WHEN:
- Deciding which functions to test or refactor first
- Triaging a backlog of technical debt by impact
- Auditing a codebase before taking ownership
- Producing a ranked worklist for a quality sprint

INTERPRETING RESULTS:
- Score 0: trivial or well-tested, no action needed
- Score 1-4: low debt, revisit opportunistically
- Score 5-7: meaningful debt, schedule remediation
- Score 8-10: untested, complex, heavily depended-upon code
- Coverage credit propagates from tested callers (up to 3 hops), so a
  0 coverage function called only by well-tested code may still score low
- Role multipliers shift priority: pure logic scores higher (easy to test),
  pattern-matching dispatchers score lower (repetition, not risk)

METRICS RETURNED:
- Per-function: score, factor breakdown (coverage, complexity, dependency)
- With explain: full diagnostic snapshot per function (coverage provenance,
  dampening factor, role, applied multipliers)
- Summary: totals, scored/errored counts, files analyzed`
}

func describeComplexity() string {
	return `Measures cyclomatic and cognitive complexity with entropy-based dampening that discounts repetitive dispatch patterns.

USE WHEN:
- Identifying functions that are hard to test or maintain
- Finding refactoring candidates before code reviews
- Separating genuinely tangled code from long-but-flat dispatch tables
- Prioritizing technical debt remediation

INTERPRETING RESULTS:
- Adjusted cyclomatic > 10: many independent paths, consider splitting
- Adjusted cognitive > 15: hard to follow, simplify control flow
- DampeningFactor < 1.0: the function is dominated by a repetitive
  multi-arm dispatch and its raw counts overstate the risk
- DispatchArms counts the arms of the dominant switch/match construct
- Raw and adjusted values are both reported; large gaps mean the raw
  number was mostly pattern repetition

METRICS RETURNED:
- Per-function: cyclomatic, cognitive, adjusted variants, max nesting,
  lines, entropy, dampening factor, dispatch arms
- Ordered by combined complexity, highest first`
}

func describePurity() string {
	return `Classifies functions by mutation and I/O behavior: strictly pure, read-only, locally pure, or impure.

USE WHEN:
- Finding functions that are safe to test without mocks or fixtures
- Identifying side-effecting code that needs integration coverage
- Planning an extract-pure-core refactoring
- Assessing how much of a codebase is referentially transparent

INTERPRETING RESULTS:
- strictly_pure: no mutation, no I/O, deterministic; trivial to unit test
- read_only: reads external state but never writes; easy to test
- locally_pure: mutates only its own locals; still safe to unit test
- impure: writes external state or performs I/O; needs setup to test
- Confidence below 1.0 means the classification relied on heuristics
  (unresolved callees, dynamic dispatch) and may be optimistic

METRICS RETURNED:
- Per-function: level, confidence, mutation sites, I/O indicators
- Ordered by function id for stable diffs`
}

func describeGraph() string {
	return `Builds the static call graph and reports per-function fan-in, fan-out, entry-point status, and optional PageRank centrality.

USE WHEN:
- Understanding which functions the rest of the codebase leans on
- Finding entry points and dispatch hubs
- Tracing how coverage credit can propagate between callers and callees
- Getting oriented in an unfamiliar codebase

INTERPRETING RESULTS:
- High caller count: widely depended upon, changes have broad impact
- High callee count: orchestrator, likely coordinating work
- Entry points are matched by name patterns (main, handlers, CLI verbs)
  and seed the criticality calculation
- Rank (when enabled) is normalized PageRank in [0, 1]; the highest-rank
  functions are the structural core of the codebase

METRICS RETURNED:
- Per-function node: callers, callees, entry flag, optional rank
- Unresolved call targets stay in the graph as first-class nodes`
}
