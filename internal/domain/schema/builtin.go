package schema

// Priorities shared by the built-in schemas.
var Priorities = []string{"High", "Medium", "Low"}

// UserStory returns the column set produced by the extraction worker.
func UserStory() *Schema {
	return &Schema{
		Name:        "user_story",
		Description: "User stories extracted from interview transcripts",
		IDPrefix:    "US",
		IDLabel:     "User Story ID",
		Fields: []Field{
			{Name: "story", Label: "User Story", Kind: KindLongText},
			{Name: "team", Label: "Team", Kind: KindText, Default: "Product"},
			{Name: "category", Label: "Category", Kind: KindText, Default: "Workflow"},
			{Name: "lifecycle_phase", Label: "Lifecycle Phase", Kind: KindText, Default: "Execution"},
			{Name: "capability", Label: "Capability", Kind: KindLongText},
			{Name: "priority", Label: "Priority", Kind: KindEnum, Values: Priorities, Default: "Medium"},
			{Name: "source", Label: "Source", Kind: KindText},
			{Name: "snippet", Label: "Snippet", Kind: KindLongText},
			{Name: "match_score", Label: "Match Score", Kind: KindScore, Min: 0, Max: 1},
			{Name: "tags", Label: "Tags", Kind: KindTagSet},
		},
		Searchable: []string{"story", "capability", "snippet", "team", "category", "tags"},
	}
}

// Requirement returns the column set produced by the requirements converter.
func Requirement() *Schema {
	return &Schema{
		Name:        "requirement",
		Description: "Requirements derived from user stories",
		IDPrefix:    "REQ",
		IDLabel:     "Requirement ID",
		Fields: []Field{
			{Name: "requirement", Label: "Requirement", Kind: KindLongText},
			{Name: "priority_level", Label: "Priority Level", Kind: KindEnum, Values: Priorities, Default: "Medium"},
			{Name: "details", Label: "Details", Kind: KindLongText},
			{Name: "source_story_id", Label: "Source Story ID", Kind: KindText},
		},
		Searchable: []string{"requirement", "details"},
	}
}

// Builtins returns fresh copies of every built-in schema.
func Builtins() []*Schema {
	return []*Schema{UserStory(), Requirement()}
}

// Builtin returns the built-in schema with the given name.
func Builtin(name string) (*Schema, bool) {
	for _, s := range Builtins() {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}
