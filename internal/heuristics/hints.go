package heuristics

// PlanHint is the canonical form of externally supplied plan metadata
// for one feature: keyword, artifact, and test lists that boost
// matching. Hints are strictly additive; a textual match is never
// suppressed because no hint corroborates it.
type PlanHint struct {
	Keywords  []string
	Artifacts []string
	Tests     []string
}

// IsZero reports whether the hint carries no signal.
func (h PlanHint) IsZero() bool {
	return len(h.Keywords) == 0 && len(h.Artifacts) == 0 && len(h.Tests) == 0
}

// NormalizeHint converts the loosely shaped hint values that plan
// metadata may carry into the canonical PlanHint record. Accepted
// shapes:
//
//	"auth login"                         -> keywords
//	["auth", "login"]                    -> keywords
//	{keywords: [...], artifacts: [...], tests: [...]}
//
// This is the single normalization boundary; nothing else in the
// package sniffs hint shapes.
func NormalizeHint(v any) PlanHint {
	switch val := v.(type) {
	case nil:
		return PlanHint{}
	case PlanHint:
		return val
	case string:
		if val == "" {
			return PlanHint{}
		}
		return PlanHint{Keywords: []string{val}}
	case []string:
		return PlanHint{Keywords: append([]string(nil), val...)}
	case []any:
		return PlanHint{Keywords: stringList(val)}
	case map[string]any:
		return PlanHint{
			Keywords:  stringsAt(val, "keywords"),
			Artifacts: stringsAt(val, "artifacts"),
			Tests:     stringsAt(val, "tests"),
		}
	default:
		return PlanHint{}
	}
}

func stringsAt(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	case []any:
		return stringList(v)
	default:
		return nil
	}
}

func stringList(items []any) []string {
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// HintSet maps feature ids to their normalized plan hints.
type HintSet map[string]PlanHint

// NormalizeHintSet applies NormalizeHint to every value of a raw
// string-keyed hint map.
func NormalizeHintSet(raw map[string]any) HintSet {
	if len(raw) == 0 {
		return nil
	}
	out := make(HintSet, len(raw))
	for id, v := range raw {
		if h := NormalizeHint(v); !h.IsZero() {
			out[id] = h
		}
	}
	return out
}

// Task is the fragment of a task plan the heuristics engine can see:
// an id plus whatever request and step text the planner produced.
type Task struct {
	ID    string
	Title string
	Text  string
}

// fullText joins the task's textual fields for token comparison.
func (t Task) fullText() string {
	return t.Title + " " + t.Text
}

// Context carries the optional external signals for a query: plan
// metadata hints and the task plans associated with the workspace.
type Context struct {
	Hints HintSet
	Tasks []Task
}

// hint returns the hint for a feature id, or a zero hint.
func (c *Context) hint(featureID string) PlanHint {
	if c == nil || c.Hints == nil {
		return PlanHint{}
	}
	return c.Hints[featureID]
}

// tasks returns the context's task list, tolerating a nil context.
func (c *Context) tasks() []Task {
	if c == nil {
		return nil
	}
	return c.Tasks
}
