package retrieval

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const arxivBaseURL = "https://export.arxiv.org/api"

// ArxivProvider searches the arXiv Atom API.
type ArxivProvider struct {
	client *client
}

// NewArxivProvider creates an arXiv provider.
func NewArxivProvider(cfg ProviderConfig) *ArxivProvider {
	return &ArxivProvider{client: cfg.client("arxiv", arxivBaseURL)}
}

// Name implements Provider.
func (p *ArxivProvider) Name() string { return "arxiv" }

type arxivFeed struct {
	Entries []struct {
		ID        string `xml:"id"`
		Title     string `xml:"title"`
		Summary   string `xml:"summary"`
		Published string `xml:"published"`
		Authors   []struct {
			Name string `xml:"name"`
		} `xml:"author"`
		DOI string `xml:"doi"`
	} `xml:"entry"`
}

// Search implements Provider.
func (p *ArxivProvider) Search(ctx context.Context, query string, limit int) ([]Document, error) {
	params := url.Values{}
	params.Set("search_query", query)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(limit))

	body, err := p.client.get(ctx, "/query", params)
	if err != nil {
		return nil, err
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decode arxiv feed: %w", err)
	}

	docs := make([]Document, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		doc := Document{
			Title:      collapseWhitespace(entry.Title),
			Abstract:   collapseWhitespace(entry.Summary),
			Year:       yearOf(entry.Published),
			DOI:        normalizeDOI(entry.DOI),
			ArxivID:    arxivIDFromURL(entry.ID),
			URL:        entry.ID,
			Venue:      "arXiv",
			Provider:   p.Name(),
			ProviderID: entry.ID,
		}
		for _, a := range entry.Authors {
			doc.Authors = append(doc.Authors, splitDisplayName(a.Name, ""))
		}
		docs = append(docs, doc)
		if len(docs) >= limit {
			break
		}
	}
	return docs, nil
}

// arxivIDFromURL extracts "2301.00001v1" style ids from the entry URL.
func arxivIDFromURL(entryURL string) string {
	if i := strings.LastIndex(entryURL, "/abs/"); i >= 0 {
		return entryURL[i+len("/abs/"):]
	}
	return ""
}

// yearOf parses the year from an RFC 3339 timestamp prefix.
func yearOf(published string) int {
	if len(published) < 4 {
		return 0
	}
	year, err := strconv.Atoi(published[:4])
	if err != nil {
		return 0
	}
	return year
}

// collapseWhitespace flattens the hard-wrapped text of Atom entries.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
