package knowledge

import (
	"strings"
	"testing"
)

func TestSearchRanksConsumerProvisionFirst(t *testing.T) {
	c := NewCorpus(nil)
	got := c.Search("Consumer e-commerce scam against Acme. Issue: Received fake product. Claiming Rs 2500.")
	if len(got) == 0 {
		t.Fatal("expected at least one provision")
	}
	if got[0].ID != "cpa_2019" {
		t.Fatalf("expected cpa_2019 first, got %s", got[0].ID)
	}
	if len(got) > 3 {
		t.Fatalf("expected at most 3 results, got %d", len(got))
	}
}

func TestSearchNoMatchReturnsEmpty(t *testing.T) {
	c := NewCorpus(nil)
	if got := c.Search("zzz qqq xyzzy"); len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
	if got := c.Search("   "); got != nil {
		t.Fatalf("expected nil for blank query, got %v", got)
	}
}

func TestSearchDeterministic(t *testing.T) {
	c := NewCorpus(nil)
	a := c.Search("refund not processed for online order")
	b := c.Search("refund not processed for online order")
	if len(a) != len(b) {
		t.Fatalf("result count differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("rank %d differs: %s vs %s", i, a[i].ID, b[i].ID)
		}
	}
}

func TestFormatContext(t *testing.T) {
	if got := FormatContext(nil); got != "" {
		t.Fatalf("expected empty context for no provisions, got %q", got)
	}
	ctx := FormatContext([]Provision{{
		LawName:   "Consumer Protection Act, 2019",
		Section:   "Sections 34-37",
		Summary:   "Complaints for defective goods.",
		SourceURL: "https://example.org/cpa",
	}})
	for _, want := range []string{"VERIFIED LEGAL REFERENCES", "Consumer Protection Act, 2019", "Sections 34-37", "https://example.org/cpa"} {
		if !strings.Contains(ctx, want) {
			t.Fatalf("context missing %q:\n%s", want, ctx)
		}
	}
}
