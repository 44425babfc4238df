package retrieval

import "testing"

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.1000/XYZ123", "10.1000/xyz123"},
		{"https://doi.org/10.1000/xyz123", "10.1000/xyz123"},
		{"doi:10.1000/xyz123", "10.1000/xyz123"},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := normalizeDOI(tt.in); got != tt.want {
			t.Errorf("normalizeDOI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTitle(t *testing.T) {
	a := normalizeTitle("Deep Learning: A Survey!")
	b := normalizeTitle("deep learning - a survey")
	if a != b {
		t.Errorf("titles should normalize equal: %q vs %q", a, b)
	}
}

func TestDedup_ByDOI(t *testing.T) {
	docs := []Document{
		{Title: "Paper A", DOI: "10.1/a", Provider: "openalex", CitedByCount: 5},
		{Title: "Paper A (preprint)", DOI: "https://doi.org/10.1/A", Provider: "crossref", CitedByCount: 9},
		{Title: "Paper B", DOI: "10.1/b", Provider: "openalex"},
	}
	unique := Dedup(docs)
	if len(unique) != 2 {
		t.Fatalf("unique = %d, want 2", len(unique))
	}
	if unique[0].Provider != "openalex" {
		t.Error("first occurrence should win")
	}
	if unique[0].CitedByCount != 9 {
		t.Errorf("citation count = %d, want max of duplicates", unique[0].CitedByCount)
	}
}

func TestDedup_ByTitleWhenNoIDs(t *testing.T) {
	docs := []Document{
		{Title: "Graph Neural Networks", Provider: "arxiv"},
		{Title: "Graph Neural Networks.", Provider: "semanticscholar", Abstract: "We study GNNs."},
	}
	unique := Dedup(docs)
	if len(unique) != 1 {
		t.Fatalf("unique = %d, want 1", len(unique))
	}
	if unique[0].Abstract != "We study GNNs." {
		t.Error("missing abstract should be backfilled from duplicate")
	}
}

func TestDedup_ArxivID(t *testing.T) {
	docs := []Document{
		{Title: "v1 title", ArxivID: "2301.00001v1"},
		{Title: "v1 Title", ArxivID: "2301.00001V1"},
	}
	if got := len(Dedup(docs)); got != 1 {
		t.Errorf("unique = %d, want 1", got)
	}
}

func TestDedup_NoIdentityKept(t *testing.T) {
	docs := []Document{{Provider: "a"}, {Provider: "b"}}
	if got := len(Dedup(docs)); got != 2 {
		t.Errorf("documents without identity should never merge, got %d", got)
	}
}
