package prompt

import "encoding/json"

// Type is a JSON Schema primitive type.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
)

// Schema is the subset of JSON Schema both model providers accept for
// structured output. Order lists property names in the order the model
// should emit them.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Minimum     *float64           `json:"minimum,omitempty"`
	Maximum     *float64           `json:"maximum,omitempty"`
	Order       []string           `json:"-"`
}

// MarshalJSON renders the schema as a JSON Schema document.
func (s *Schema) MarshalJSON() ([]byte, error) {
	type plain Schema
	return json.Marshal((*plain)(s))
}

// HasProperty reports whether name is declared on the top-level object.
func (s *Schema) HasProperty(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Properties[name]
	return ok
}

func object(order []string, required []string, props map[string]*Schema) *Schema {
	return &Schema{Type: TypeObject, Properties: props, Required: required, Order: order}
}

func str(desc string) *Schema { return &Schema{Type: TypeString, Description: desc} }

func boolean(desc string) *Schema { return &Schema{Type: TypeBoolean, Description: desc} }

func list(desc string, items *Schema) *Schema {
	return &Schema{Type: TypeArray, Description: desc, Items: items}
}

func score(desc string) *Schema {
	lo, hi := 0.0, 100.0
	return &Schema{Type: TypeNumber, Description: desc, Minimum: &lo, Maximum: &hi}
}

// ScoreFields are the five numeric dimensions every result carries.
var ScoreFields = []string{"overall", "content", "keywords", "format", "atsCompatibility"}

func scoreProperties() map[string]*Schema {
	return map[string]*Schema{
		"overall":          score("Overall resume quality, 0-100"),
		"content":          score("Strength of achievements, impact and clarity, 0-100"),
		"keywords":         score("Relevant industry or job keywords present, 0-100"),
		"format":           score("Structure, readability and consistency, 0-100"),
		"atsCompatibility": score("How reliably an applicant tracking system can parse it, 0-100"),
	}
}

// ResultSchema is the contract enforced on a scoring response. keywordMatch is
// only declared in detailed mode.
func ResultSchema(mode Mode) *Schema {
	props := scoreProperties()
	props["strengths"] = list("Specific strengths of the resume", str(""))
	props["improvements"] = list("Specific, actionable improvements", str(""))
	props["summary"] = str("Two to four sentence overall assessment")

	order := append(append([]string{}, ScoreFields...), "strengths", "improvements")
	if mode == ModeDetailed {
		props["keywordMatch"] = list("Key terms from the job description and whether the resume covers them",
			object([]string{"keyword", "found", "context"}, []string{"keyword", "found"}, map[string]*Schema{
				"keyword": str("Term taken from the job description"),
				"found":   boolean("Whether the resume demonstrates the term"),
				"context": str("Where or how the resume covers it, if found"),
			}))
		order = append(order, "keywordMatch")
	}
	order = append(order, "summary")

	required := append(append([]string{}, ScoreFields...), "strengths", "improvements", "summary")
	return object(order, required, props)
}

func suggestionItem() *Schema {
	return object(
		[]string{"title", "description", "before", "after", "impact"},
		[]string{"title", "description"},
		map[string]*Schema{
			"title":       str("Short imperative headline"),
			"description": str("What to change and why"),
			"before":      str("Current wording, if the change rewrites text"),
			"after":       str("Suggested wording"),
			"impact":      str("high, medium or low"),
		})
}

// SuggestionsSchema describes the four suggestion categories.
func SuggestionsSchema() *Schema {
	cats := []string{"content", "keywords", "format", "custom"}
	props := make(map[string]*Schema, len(cats))
	for _, c := range cats {
		props[c] = list("Suggestions in the "+c+" category", suggestionItem())
	}
	return object(cats, cats, props)
}

// ScoresSchema describes a re-scoring response.
func ScoresSchema() *Schema {
	return object(ScoreFields, ScoreFields, scoreProperties())
}
