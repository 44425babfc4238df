package search

import "strings"

// FieldTag selects which document fields a term is matched against.
type FieldTag string

const (
	// FieldKeyword searches title, abstract, and author keywords.
	FieldKeyword FieldTag = "keyword"
	// FieldControlled searches a controlled vocabulary such as MeSH.
	// Dialects without one fall back to their broadest field.
	FieldControlled FieldTag = "controlled"
	// FieldAll searches every indexed field.
	FieldAll FieldTag = "all"
)

// Term is an atomic search unit.
type Term struct {
	Text   string   `json:"text"`
	Field  FieldTag `json:"field,omitempty"`
	Phrase bool     `json:"phrase,omitempty"`
}

// NewTerm builds a keyword term, marking multi-word text as a phrase.
func NewTerm(text string) Term {
	return NewTaggedTerm(text, FieldKeyword)
}

// NewTaggedTerm builds a term with an explicit field tag. Multi-word
// text is marked as a phrase automatically.
func NewTaggedTerm(text string, field FieldTag) Term {
	text = strings.TrimSpace(text)
	return Term{
		Text:   text,
		Field:  field,
		Phrase: strings.Contains(text, " "),
	}
}

// clean strips embedded quotes so the term cannot break out of the
// quoting a dialect applies.
func (t Term) clean() string {
	return strings.TrimSpace(strings.ReplaceAll(t.Text, `"`, ""))
}

// ConceptBlock groups synonyms for one concept. Terms within a block
// are OR-joined when the query is built.
type ConceptBlock struct {
	Label string `json:"label"`
	Terms []Term `json:"terms"`
}

// Add appends a keyword term to the block.
func (b *ConceptBlock) Add(text string) {
	b.Terms = append(b.Terms, NewTerm(text))
}

// AddTagged appends a term with an explicit field tag.
func (b *ConceptBlock) AddTagged(text string, field FieldTag) {
	b.Terms = append(b.Terms, NewTaggedTerm(text, field))
}

// QueryPlan is a complete dialect-neutral search strategy. Blocks are
// AND-joined when the query is built.
type QueryPlan struct {
	Blocks []ConceptBlock `json:"blocks"`
}
