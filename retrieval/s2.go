package retrieval

import (
	"context"
	"net/url"
	"strconv"
)

const semanticScholarBaseURL = "https://api.semanticscholar.org/graph/v1"

// s2Fields is the field projection requested from the paper search
// endpoint. The API returns only paperId and title without it.
const s2Fields = "title,abstract,year,venue,citationCount,url,authors,externalIds"

// SemanticScholarProvider searches the Semantic Scholar Graph API.
type SemanticScholarProvider struct {
	client *client
}

// NewSemanticScholarProvider creates a Semantic Scholar provider.
func NewSemanticScholarProvider(cfg ProviderConfig) *SemanticScholarProvider {
	return &SemanticScholarProvider{client: cfg.client("semanticscholar", semanticScholarBaseURL)}
}

// Name implements Provider.
func (p *SemanticScholarProvider) Name() string { return "semanticscholar" }

type s2Paper struct {
	PaperID       string `json:"paperId"`
	Title         string `json:"title"`
	Abstract      string `json:"abstract"`
	Year          int    `json:"year"`
	Venue         string `json:"venue"`
	CitationCount int    `json:"citationCount"`
	URL           string `json:"url"`
	Authors       []struct {
		Name string `json:"name"`
	} `json:"authors"`
	ExternalIDs struct {
		DOI    string `json:"DOI"`
		ArXiv  string `json:"ArXiv"`
		PubMed string `json:"PubMed"`
	} `json:"externalIds"`
}

// Search implements Provider.
func (p *SemanticScholarProvider) Search(ctx context.Context, query string, limit int) ([]Document, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", s2Fields)

	var resp struct {
		Data []s2Paper `json:"data"`
	}
	if err := p.client.getJSON(ctx, "/paper/search", params, &resp); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(resp.Data))
	for _, paper := range resp.Data {
		doc := Document{
			Title:        paper.Title,
			Abstract:     paper.Abstract,
			Year:         paper.Year,
			DOI:          normalizeDOI(paper.ExternalIDs.DOI),
			ArxivID:      paper.ExternalIDs.ArXiv,
			PubMedID:     paper.ExternalIDs.PubMed,
			URL:          paper.URL,
			Venue:        paper.Venue,
			CitedByCount: paper.CitationCount,
			Provider:     p.Name(),
			ProviderID:   paper.PaperID,
		}
		for _, a := range paper.Authors {
			doc.Authors = append(doc.Authors, splitDisplayName(a.Name, ""))
		}
		docs = append(docs, doc)
		if len(docs) >= limit {
			break
		}
	}
	return docs, nil
}
