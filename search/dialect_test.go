package search

import (
	"strings"
	"testing"
)

func TestDialectFor(t *testing.T) {
	for _, name := range Databases() {
		d, err := DialectFor(name)
		if err != nil {
			t.Errorf("DialectFor(%q): %v", name, err)
			continue
		}
		if d.Name() != name {
			t.Errorf("DialectFor(%q).Name() = %q", name, d.Name())
		}
	}

	if d, err := DialectFor("PubMed"); err != nil || d.Name() != "pubmed" {
		t.Errorf("case-insensitive lookup failed: %v", err)
	}

	_, err := DialectFor("web-of-science")
	if err == nil {
		t.Fatal("unknown database should fail")
	}
	if !strings.Contains(err.Error(), "pubmed") {
		t.Errorf("error should list supported databases: %v", err)
	}
}

func TestPubMedFormatTerm(t *testing.T) {
	d := pubmedDialect{}
	tests := []struct {
		name string
		term Term
		want string
	}{
		{"keyword", NewTerm("diabetes"), "diabetes[Title/Abstract]"},
		{"phrase", NewTerm("machine learning"), `"machine learning"[Title/Abstract]`},
		{"controlled", NewTaggedTerm("diabetes", FieldControlled), "diabetes[MeSH Terms]"},
		{"all fields", NewTaggedTerm("diabetes", FieldAll), "diabetes[All Fields]"},
		{"strips quotes", Term{Text: `dia"betes`, Field: FieldKeyword}, "diabetes[Title/Abstract]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.FormatTerm(tt.term); got != tt.want {
				t.Errorf("FormatTerm = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScopusWrapsBlockOnce(t *testing.T) {
	d := scopusDialect{}
	got := d.JoinOR([]string{`"deep learning"`, "cnn"})
	want := `TITLE-ABS-KEY("deep learning" OR cnn)`
	if got != want {
		t.Errorf("JoinOR = %q, want %q", got, want)
	}
}

func TestScopusFormatNOT(t *testing.T) {
	d := scopusDialect{}
	got := d.FormatNOT([]string{"animals", `"case report"`})
	want := `AND NOT TITLE-ABS-KEY(animals OR "case report")`
	if got != want {
		t.Errorf("FormatNOT = %q, want %q", got, want)
	}
	if d.FormatNOT(nil) != "" {
		t.Error("empty exclusion should render empty")
	}
}

func TestArxivPrefixesAllField(t *testing.T) {
	d := arxivDialect{}
	if got := d.FormatTerm(NewTerm("transformers")); got != "all:transformers" {
		t.Errorf("FormatTerm = %q", got)
	}
	// arXiv has no controlled vocabulary.
	if got := d.FormatTerm(NewTaggedTerm("diabetes", FieldControlled)); got != "all:diabetes" {
		t.Errorf("controlled term = %q", got)
	}
}

func TestDefaultFormatNOT(t *testing.T) {
	d := openalexDialect{}
	got := d.FormatNOT([]string{"mice", "rats"})
	if got != "NOT (mice OR rats)" {
		t.Errorf("FormatNOT = %q", got)
	}
	if d.FormatNOT([]string{"mice"}) != "NOT mice" {
		t.Errorf("single-term NOT = %q", d.FormatNOT([]string{"mice"}))
	}
}

func TestSingleTermStaysBare(t *testing.T) {
	for _, d := range []Dialect{pubmedDialect{}, arxivDialect{}, openalexDialect{}, semanticScholarDialect{}} {
		if got := d.JoinOR([]string{"x"}); strings.HasPrefix(got, "(") {
			t.Errorf("%s: single term should not be parenthesized: %q", d.Name(), got)
		}
	}
}
