package suggestions

// Category groups suggestions. There are always exactly four.
type Category string

const (
	CategoryContent  Category = "content"
	CategoryKeywords Category = "keywords"
	CategoryFormat   Category = "format"
	CategoryCustom   Category = "custom"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryContent, CategoryKeywords, CategoryFormat, CategoryCustom}

// ParseCategory reports whether raw names one of the four categories.
func ParseCategory(raw string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == raw {
			return c, true
		}
	}
	return "", false
}

// Suggestion is one proposed resume edit.
type Suggestion struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Before      string `json:"before,omitempty"`
	After       string `json:"after,omitempty"`
	Impact      string `json:"impact"`
}

// Set holds the suggestions of every category. An empty category is an
// empty list, never nil, once the set has been built.
type Set struct {
	Content  []Suggestion `json:"content"`
	Keywords []Suggestion `json:"keywords"`
	Format   []Suggestion `json:"format"`
	Custom   []Suggestion `json:"custom"`
}

// NewSet returns a Set with four empty lists.
func NewSet() Set {
	return Set{
		Content:  []Suggestion{},
		Keywords: []Suggestion{},
		Format:   []Suggestion{},
		Custom:   []Suggestion{},
	}
}

// List returns the suggestions for c.
func (s Set) List(c Category) []Suggestion {
	switch c {
	case CategoryContent:
		return s.Content
	case CategoryKeywords:
		return s.Keywords
	case CategoryFormat:
		return s.Format
	case CategoryCustom:
		return s.Custom
	}
	return nil
}

func (s *Set) add(c Category, item Suggestion) {
	switch c {
	case CategoryContent:
		s.Content = append(s.Content, item)
	case CategoryKeywords:
		s.Keywords = append(s.Keywords, item)
	case CategoryFormat:
		s.Format = append(s.Format, item)
	case CategoryCustom:
		s.Custom = append(s.Custom, item)
	}
}

// Len counts suggestions across all categories.
func (s Set) Len() int {
	return len(s.Content) + len(s.Keywords) + len(s.Format) + len(s.Custom)
}
