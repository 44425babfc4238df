package retrieval

import "strings"

// Author identifies one contributor to a document.
type Author struct {
	FamilyName string `json:"family_name"`
	GivenName  string `json:"given_name,omitempty"`
	ORCID      string `json:"orcid,omitempty"`
}

// Document is a normalized bibliographic record. Every provider maps
// its native response shape into this form.
type Document struct {
	Title        string   `json:"title"`
	Abstract     string   `json:"abstract,omitempty"`
	Authors      []Author `json:"authors,omitempty"`
	Year         int      `json:"year,omitempty"`
	DOI          string   `json:"doi,omitempty"`
	ArxivID      string   `json:"arxiv_id,omitempty"`
	PubMedID     string   `json:"pmid,omitempty"`
	URL          string   `json:"url,omitempty"`
	Venue        string   `json:"venue,omitempty"`
	CitedByCount int      `json:"cited_by_count,omitempty"`
	Provider     string   `json:"provider"`
	ProviderID   string   `json:"provider_id,omitempty"`
}

// dedupKey returns a stable identity for duplicate detection: DOI
// first, then arXiv id, then the normalized title. Documents with no
// usable identity get an empty key and are kept as-is.
func (d Document) dedupKey() string {
	if doi := normalizeDOI(d.DOI); doi != "" {
		return "doi:" + doi
	}
	if id := strings.TrimSpace(strings.ToLower(d.ArxivID)); id != "" {
		return "arxiv:" + id
	}
	if title := normalizeTitle(d.Title); title != "" {
		return "title:" + title
	}
	return ""
}

// Dedup merges documents that share an identity, keeping the first
// occurrence. Citation counts are reconciled to the highest value
// seen, and a missing abstract is backfilled from a later duplicate.
func Dedup(docs []Document) []Document {
	unique := make([]Document, 0, len(docs))
	index := make(map[string]int)

	for _, doc := range docs {
		key := doc.dedupKey()
		if key == "" {
			unique = append(unique, doc)
			continue
		}
		if i, seen := index[key]; seen {
			if doc.CitedByCount > unique[i].CitedByCount {
				unique[i].CitedByCount = doc.CitedByCount
			}
			if unique[i].Abstract == "" {
				unique[i].Abstract = doc.Abstract
			}
			if unique[i].DOI == "" {
				unique[i].DOI = doc.DOI
			}
			continue
		}
		index[key] = len(unique)
		unique = append(unique, doc)
	}

	return unique
}

// normalizeDOI lowercases a DOI and strips resolver URL prefixes.
func normalizeDOI(doi string) string {
	doi = strings.TrimSpace(strings.ToLower(doi))
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "doi:"} {
		doi = strings.TrimPrefix(doi, prefix)
	}
	return doi
}

// normalizeTitle collapses a title to lowercase alphanumerics so minor
// punctuation and spacing differences do not defeat deduplication.
func normalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
