package suggest

// Keywords is one vocabulary split into tiers. Order matters for priority
// prediction, where the first match in a tier wins.
type Keywords struct {
	High   []string
	Medium []string
	Low    []string
}

func (k Keywords) clone() Keywords {
	return Keywords{
		High:   append([]string(nil), k.High...),
		Medium: append([]string(nil), k.Medium...),
		Low:    append([]string(nil), k.Low...),
	}
}

// Tables holds the vocabularies the engine scans.
type Tables struct {
	Complexity Keywords
	Priority   Keywords
}

// DefaultTables returns a fresh copy of the built-in vocabularies.
func DefaultTables() Tables {
	return Tables{
		Complexity: Keywords{
			High: []string{
				"complex", "integrate", "architecture", "refactor", "migrate", "system",
				"infrastructure", "database", "security", "optimization", "performance",
			},
			Medium: []string{
				"implement", "develop", "create", "build", "design", "update",
				"modify", "enhance", "improve", "api", "feature",
			},
			Low: []string{
				"fix", "bug", "typo", "update text", "change color", "small",
				"minor", "quick", "simple", "documentation", "comment",
			},
		},
		Priority: Keywords{
			High: []string{
				"urgent", "critical", "asap", "immediately", "emergency", "blocker", "security",
				"bug", "crash", "broken", "production", "hotfix", "important",
			},
			Medium: []string{
				"should", "need", "required", "feature", "enhancement", "improve", "update", "modify",
			},
			Low: []string{
				"nice to have", "optional", "future", "consider", "maybe",
				"eventually", "documentation", "cleanup", "refactor",
			},
		},
	}
}
