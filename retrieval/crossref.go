package retrieval

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

const crossRefBaseURL = "https://api.crossref.org"

// CrossRefProvider searches the CrossRef works endpoint.
type CrossRefProvider struct {
	client *client
}

// NewCrossRefProvider creates a CrossRef provider.
func NewCrossRefProvider(cfg ProviderConfig) *CrossRefProvider {
	return &CrossRefProvider{client: cfg.client("crossref", crossRefBaseURL)}
}

// Name implements Provider.
func (p *CrossRefProvider) Name() string { return "crossref" }

type crossRefItem struct {
	DOI            string   `json:"DOI"`
	Title          []string `json:"title"`
	Abstract       string   `json:"abstract"`
	URL            string   `json:"URL"`
	ContainerTitle []string `json:"container-title"`
	ReferencedBy   int      `json:"is-referenced-by-count"`
	Author         []struct {
		Family string `json:"family"`
		Given  string `json:"given"`
		ORCID  string `json:"ORCID"`
	} `json:"author"`
	Issued struct {
		DateParts [][]int `json:"date-parts"`
	} `json:"issued"`
}

// Search implements Provider.
func (p *CrossRefProvider) Search(ctx context.Context, query string, limit int) ([]Document, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("rows", strconv.Itoa(limit))
	if p.client.mailto != "" {
		params.Set("mailto", p.client.mailto)
	}

	var resp struct {
		Message struct {
			Items []crossRefItem `json:"items"`
		} `json:"message"`
	}
	if err := p.client.getJSON(ctx, "/works", params, &resp); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(resp.Message.Items))
	for _, item := range resp.Message.Items {
		doc := Document{
			Title:        first(item.Title),
			Abstract:     stripJATS(item.Abstract),
			Year:         issuedYear(item.Issued.DateParts),
			DOI:          normalizeDOI(item.DOI),
			URL:          item.URL,
			Venue:        first(item.ContainerTitle),
			CitedByCount: item.ReferencedBy,
			Provider:     p.Name(),
			ProviderID:   item.DOI,
		}
		for _, a := range item.Author {
			doc.Authors = append(doc.Authors, Author{
				FamilyName: a.Family,
				GivenName:  a.Given,
				ORCID:      strings.TrimPrefix(a.ORCID, "https://orcid.org/"),
			})
		}
		docs = append(docs, doc)
		if len(docs) >= limit {
			break
		}
	}
	return docs, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func issuedYear(dateParts [][]int) int {
	if len(dateParts) == 0 || len(dateParts[0]) == 0 {
		return 0
	}
	return dateParts[0][0]
}

// stripJATS removes the XML markup CrossRef embeds in abstracts.
func stripJATS(abstract string) string {
	if !strings.Contains(abstract, "<") {
		return strings.TrimSpace(abstract)
	}
	var b strings.Builder
	inTag := false
	for _, r := range abstract {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
