package search

import (
	"fmt"
	"sort"
	"strings"
)

// Dialect formats terms and boolean operators for one database.
type Dialect interface {
	// Name is the canonical lowercase database identifier.
	Name() string
	// FormatTerm renders a single term with its field tag applied.
	FormatTerm(t Term) string
	// JoinOR combines formatted terms from one concept block.
	JoinOR(terms []string) string
	// JoinAND combines OR-joined concept groups into the final query.
	JoinAND(groups []string) string
	// FormatNOT renders an exclusion clause, or "" when terms is empty.
	FormatNOT(terms []string) string
}

// DialectFor returns the dialect for a database name, matched
// case-insensitively.
func DialectFor(database string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(database)) {
	case "pubmed":
		return pubmedDialect{}, nil
	case "scopus":
		return scopusDialect{}, nil
	case "arxiv":
		return arxivDialect{}, nil
	case "openalex":
		return openalexDialect{}, nil
	case "semanticscholar":
		return semanticScholarDialect{}, nil
	case "crossref":
		return crossrefDialect{}, nil
	default:
		return nil, fmt.Errorf("unknown database %q: supported databases are %s",
			database, strings.Join(Databases(), ", "))
	}
}

// Databases lists the supported database names in sorted order.
func Databases() []string {
	names := []string{"pubmed", "scopus", "arxiv", "openalex", "semanticscholar", "crossref"}
	sort.Strings(names)
	return names
}

// parenOR is the grouping most dialects share: a single term stays
// bare, multiple terms are OR-joined inside parentheses.
func parenOR(terms []string) string {
	switch len(terms) {
	case 0:
		return ""
	case 1:
		return terms[0]
	default:
		return "(" + strings.Join(terms, " OR ") + ")"
	}
}

// notOR is the default exclusion clause: NOT (a OR b).
func notOR(d Dialect, terms []string) string {
	if len(terms) == 0 {
		return ""
	}
	group := d.JoinOR(terms)
	if group == "" {
		return ""
	}
	return "NOT " + group
}

// pubmedDialect emits PubMed/MEDLINE syntax: quoted phrases, square
// bracket field tags, and concept blocks joined on separate lines.
type pubmedDialect struct{}

func (pubmedDialect) Name() string { return "pubmed" }

func (pubmedDialect) FormatTerm(t Term) string {
	base := t.clean()
	if t.Phrase {
		base = `"` + base + `"`
	}
	switch t.Field {
	case FieldControlled:
		return base + "[MeSH Terms]"
	case FieldAll:
		return base + "[All Fields]"
	default:
		return base + "[Title/Abstract]"
	}
}

func (pubmedDialect) JoinOR(terms []string) string { return parenOR(terms) }

func (pubmedDialect) JoinAND(groups []string) string {
	return strings.Join(groups, "\nAND\n")
}

func (d pubmedDialect) FormatNOT(terms []string) string { return notOR(d, terms) }

// scopusDialect emits Scopus syntax. Each concept block becomes a
// single TITLE-ABS-KEY wrapper instead of one wrapper per term.
type scopusDialect struct{}

func (scopusDialect) Name() string { return "scopus" }

func (scopusDialect) FormatTerm(t Term) string {
	if t.Phrase {
		return `"` + t.clean() + `"`
	}
	return t.clean()
}

func (scopusDialect) JoinOR(terms []string) string {
	if len(terms) == 0 {
		return ""
	}
	return "TITLE-ABS-KEY(" + strings.Join(terms, " OR ") + ")"
}

func (scopusDialect) JoinAND(groups []string) string {
	return strings.Join(groups, " AND ")
}

func (scopusDialect) FormatNOT(terms []string) string {
	if len(terms) == 0 {
		return ""
	}
	return "AND NOT TITLE-ABS-KEY(" + strings.Join(terms, " OR ") + ")"
}

// arxivDialect emits arXiv API syntax. arXiv has no controlled
// vocabulary, so every tag maps to the all: field prefix.
type arxivDialect struct{}

func (arxivDialect) Name() string { return "arxiv" }

func (arxivDialect) FormatTerm(t Term) string {
	base := t.clean()
	if t.Phrase {
		base = `"` + base + `"`
	}
	return "all:" + base
}

func (arxivDialect) JoinOR(terms []string) string { return parenOR(terms) }

func (arxivDialect) JoinAND(groups []string) string {
	return strings.Join(groups, " AND ")
}

func (d arxivDialect) FormatNOT(terms []string) string { return notOR(d, terms) }

// openalexDialect emits the boolean syntax of the OpenAlex search
// parameter. Field scoping is an API-filter concern, not part of the
// query string.
type openalexDialect struct{}

func (openalexDialect) Name() string { return "openalex" }

func (openalexDialect) FormatTerm(t Term) string {
	if t.Phrase {
		return `"` + t.clean() + `"`
	}
	return t.clean()
}

func (openalexDialect) JoinOR(terms []string) string { return parenOR(terms) }

func (openalexDialect) JoinAND(groups []string) string {
	return strings.Join(groups, " AND ")
}

func (d openalexDialect) FormatNOT(terms []string) string { return notOR(d, terms) }

// semanticScholarDialect emits the plain-text boolean form accepted by
// the Semantic Scholar keyword search.
type semanticScholarDialect struct{}

func (semanticScholarDialect) Name() string { return "semanticscholar" }

func (semanticScholarDialect) FormatTerm(t Term) string {
	if t.Phrase {
		return `"` + t.clean() + `"`
	}
	return t.clean()
}

func (semanticScholarDialect) JoinOR(terms []string) string { return parenOR(terms) }

func (semanticScholarDialect) JoinAND(groups []string) string {
	return strings.Join(groups, " AND ")
}

func (d semanticScholarDialect) FormatNOT(terms []string) string { return notOR(d, terms) }

// crossrefDialect emits a logical query string for the fuzzy CrossRef
// engine. Grouping is kept even for single terms since CrossRef treats
// bare whitespace as an implicit AND.
type crossrefDialect struct{}

func (crossrefDialect) Name() string { return "crossref" }

func (crossrefDialect) FormatTerm(t Term) string {
	if t.Phrase {
		return `"` + t.clean() + `"`
	}
	return t.clean()
}

func (crossrefDialect) JoinOR(terms []string) string {
	if len(terms) == 0 {
		return ""
	}
	return "(" + strings.Join(terms, " OR ") + ")"
}

func (crossrefDialect) JoinAND(groups []string) string {
	return strings.Join(groups, " AND ")
}

func (d crossrefDialect) FormatNOT(terms []string) string { return notOR(d, terms) }
