package retrieval

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const openAlexBaseURL = "https://api.openalex.org"

// OpenAlexProvider searches the OpenAlex works endpoint.
type OpenAlexProvider struct {
	client *client
}

// NewOpenAlexProvider creates an OpenAlex provider.
func NewOpenAlexProvider(cfg ProviderConfig) *OpenAlexProvider {
	return &OpenAlexProvider{client: cfg.client("openalex", openAlexBaseURL)}
}

// Name implements Provider.
func (p *OpenAlexProvider) Name() string { return "openalex" }

type openAlexWork struct {
	ID                    string         `json:"id"`
	Title                 string         `json:"title"`
	DOI                   string         `json:"doi"`
	PublicationYear       int            `json:"publication_year"`
	CitedByCount          int            `json:"cited_by_count"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
	Authorships           []struct {
		Author struct {
			DisplayName string `json:"display_name"`
			ORCID       string `json:"orcid"`
		} `json:"author"`
	} `json:"authorships"`
	PrimaryLocation struct {
		LandingPageURL string `json:"landing_page_url"`
		Source         struct {
			DisplayName string `json:"display_name"`
		} `json:"source"`
	} `json:"primary_location"`
}

// Search implements Provider.
func (p *OpenAlexProvider) Search(ctx context.Context, query string, limit int) ([]Document, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("per-page", strconv.Itoa(limit))
	if p.client.mailto != "" {
		params.Set("mailto", p.client.mailto)
	}

	var resp struct {
		Results []openAlexWork `json:"results"`
	}
	if err := p.client.getJSON(ctx, "/works", params, &resp); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(resp.Results))
	for _, work := range resp.Results {
		doc := Document{
			Title:        work.Title,
			Abstract:     reconstructAbstract(work.AbstractInvertedIndex),
			Year:         work.PublicationYear,
			DOI:          normalizeDOI(work.DOI),
			URL:          work.PrimaryLocation.LandingPageURL,
			Venue:        work.PrimaryLocation.Source.DisplayName,
			CitedByCount: work.CitedByCount,
			Provider:     p.Name(),
			ProviderID:   work.ID,
		}
		for _, a := range work.Authorships {
			doc.Authors = append(doc.Authors, splitDisplayName(a.Author.DisplayName, a.Author.ORCID))
		}
		docs = append(docs, doc)
		if len(docs) >= limit {
			break
		}
	}
	return docs, nil
}

// reconstructAbstract rebuilds plain text from the inverted index
// OpenAlex publishes instead of abstracts.
func reconstructAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}
	type slot struct {
		pos  int
		word string
	}
	var slots []slot
	for word, positions := range index {
		for _, pos := range positions {
			slots = append(slots, slot{pos, word})
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].pos < slots[j].pos })

	words := make([]string, len(slots))
	for i, s := range slots {
		words[i] = s.word
	}
	return strings.Join(words, " ")
}

// splitDisplayName derives family and given names from a display name.
// The last token is taken as the family name.
func splitDisplayName(name, orcid string) Author {
	fields := strings.Fields(name)
	a := Author{ORCID: strings.TrimPrefix(orcid, "https://orcid.org/")}
	switch len(fields) {
	case 0:
	case 1:
		a.FamilyName = fields[0]
	default:
		a.FamilyName = fields[len(fields)-1]
		a.GivenName = strings.Join(fields[:len(fields)-1], " ")
	}
	return a
}
