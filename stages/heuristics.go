package stages

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Offline generators. Every generating stage falls back to these when
// no LLM client is available, so the pipeline stays runnable end to
// end without network access. The output is deliberately plain: it is
// a draft for a human to rewrite, not a finished artifact.

var keywordPattern = regexp.MustCompile(`[A-Za-z][A-Za-z0-9_-]{4,}`)

var sentenceEnd = regexp.MustCompile(`[.!?]`)

// titleFromText derives a short title from the first sentence of the
// idea text, title-cased and truncated.
func titleFromText(text string) string {
	first := sentenceEnd.Split(strings.TrimSpace(text), 2)[0]
	if len(first) > 120 {
		first = first[:120]
	}
	title := cases.Title(language.English).String(strings.TrimSpace(first))
	if len(title) > 80 {
		title = title[:80]
	}
	if title == "" {
		return "Untitled Project"
	}
	return title
}

// extractKeywords pulls distinct lowercase words longer than four
// characters, in order of first appearance, capped at ten.
func extractKeywords(text string) []string {
	tokens := keywordPattern.FindAllString(strings.ToLower(text), -1)
	seen := make(map[string]bool, len(tokens))
	var keywords []string
	for _, t := range tokens {
		if seen[t] {
			continue
		}
		seen[t] = true
		keywords = append(keywords, t)
		if len(keywords) == 10 {
			break
		}
	}
	return keywords
}

func heuristicProjectContext(rawIdea string) ProjectContext {
	return ProjectContext{
		Title:            titleFromText(rawIdea),
		ShortDescription: strings.TrimSpace(rawIdea),
		InitialKeywords:  extractKeywords(rawIdea),
		Constraints:      map[string]string{},
	}
}

func heuristicProblemFraming(ctx ProjectContext) (ProblemFraming, ConceptModel) {
	goals := []string{"Explore the problem domain"}
	if len(ctx.InitialKeywords) > 0 {
		goals = goals[:0]
		for _, kw := range firstN(ctx.InitialKeywords, 3) {
			goals = append(goals, fmt.Sprintf("Understand the role of %s", kw))
		}
	}

	framing := ProblemFraming{
		ProblemStatement: fmt.Sprintf(
			"The research aims to investigate %s by examining key factors, relationships, and outcomes.",
			strings.ToLower(ctx.Title)),
		Goals:        goals,
		ScopeIn:      []string{"Academic literature", "Empirical studies", "Recent publications (last 10 years)"},
		ScopeOut:     []string{"Non-peer-reviewed sources", "Opinion pieces"},
		Stakeholders: []string{"Researchers", "Practitioners"},
	}

	titleCaser := cases.Title(language.English)
	var concepts []Concept
	for i, kw := range firstN(ctx.InitialKeywords, 5) {
		concepts = append(concepts, Concept{
			ID:          fmt.Sprintf("concept_%d", i),
			Label:       titleCaser.String(kw),
			Type:        "domain_concept",
			Description: fmt.Sprintf("Key concept: %s", kw),
		})
	}
	return framing, ConceptModel{Concepts: concepts}
}

func heuristicResearchQuestions(framing ProblemFraming, model ConceptModel) ResearchQuestionSet {
	terms := make([]string, 0, 5)
	for _, c := range firstN(model.Concepts, 5) {
		terms = append(terms, c.Label)
	}
	if len(terms) == 0 {
		terms = []string{"Core Phenomenon"}
	}

	templates := []string{
		"How does %s relate to outcomes described in the problem statement?",
		"What factors influence %s adoption or effectiveness?",
		"What mechanisms link %s to observed performance or quality measures?",
		"How can %s be optimized to improve reliability or consistency?",
		"What are the barriers and facilitators to integrating %s in practice?",
	}

	linked := make([]string, 0, 2)
	for _, c := range firstN(model.Concepts, 2) {
		linked = append(linked, c.ID)
	}

	var questions []ResearchQuestion
	for i, term := range terms {
		if i >= len(templates) {
			break
		}
		q := ResearchQuestion{
			ID:             fmt.Sprintf("rq_%d", i),
			Text:           fmt.Sprintf(templates[i], term),
			Type:           "explanatory",
			LinkedConcepts: linked,
			Priority:       "nice_to_have",
		}
		if i == 0 {
			q.Type = "descriptive"
		}
		if i < 3 {
			q.Priority = "must_have"
		}
		questions = append(questions, q)
	}
	return ResearchQuestionSet{Questions: questions}
}

func heuristicConceptBlocks(model ConceptModel) SearchConceptBlocks {
	var blocks []ConceptBlock
	for i, c := range firstN(model.Concepts, 6) {
		label := c.Label
		terms := dedupeStrings([]string{
			label,
			strings.ToLower(label),
			strings.ReplaceAll(label, " ", "-"),
		})
		if !strings.HasSuffix(label, "s") {
			terms = append(terms, label+"s")
		}
		blocks = append(blocks, ConceptBlock{
			ID:            fmt.Sprintf("block_%d", i),
			Label:         label,
			Description:   c.Description,
			TermsIncluded: terms,
		})
	}
	return SearchConceptBlocks{Blocks: blocks}
}

// firstN returns at most n leading elements of s.
func firstN[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
