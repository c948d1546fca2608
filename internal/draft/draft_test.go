package draft

import (
	"context"
	"encoding/json"
	"testing"

	"nyaya/internal/knowledge"
	"nyaya/internal/session"
)

type fakeLLM struct {
	calls int
	raw   string
	err   error
}

func (f *fakeLLM) Name() string { return "fake" }
func (f *fakeLLM) Close() error { return nil }
func (f *fakeLLM) GenerateJSON(context.Context, string, any) (json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.raw), nil
}

func facts() map[string]string {
	return map[string]string{
		session.SlotIssue:        "Received fake product",
		session.SlotCounterparty: "Acme Co",
		session.SlotAmount:       "2500",
		session.SlotIncidentDate: "12 Oct 2025",
	}
}

func TestDraftRefusesWithoutGrounding(t *testing.T) {
	llm := &fakeLLM{raw: `{"notice":"should never be used"}`}
	e := NewEngine(knowledge.NewCorpus([]knowledge.Provision{}), llm)

	res, err := e.Draft(context.Background(), facts())
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if res != nil {
		t.Fatalf("expected nil result for empty retrieval, got %+v", res)
	}
	if llm.calls != 0 {
		t.Fatalf("generation model was called %d times despite empty grounding", llm.calls)
	}
}

func TestDraftParsesStructuredResult(t *testing.T) {
	llm := &fakeLLM{raw: `{"citations":"CPA 2019, Sections 34-37","notice":"To the Grievance Officer...","risk_level":"MEDIUM"}`}
	e := NewEngine(knowledge.NewCorpus(nil), llm)

	res, err := e.Draft(context.Background(), facts())
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if res == nil {
		t.Fatal("expected a result")
	}
	if res.Risk != RiskMedium {
		t.Fatalf("expected MEDIUM risk, got %s", res.Risk)
	}
	if res.Citations != "CPA 2019, Sections 34-37" {
		t.Fatalf("unexpected citations: %q", res.Citations)
	}
	if llm.calls != 1 {
		t.Fatalf("expected one generation call, got %d", llm.calls)
	}
}

func TestDraftTreatsBadOutputAsAbsent(t *testing.T) {
	cases := map[string]string{
		"not json":       `the notice follows: ...`,
		"missing notice": `{"citations":"CPA"}`,
		"empty object":   `{}`,
	}
	for name, raw := range cases {
		llm := &fakeLLM{raw: raw}
		e := NewEngine(knowledge.NewCorpus(nil), llm)
		res, err := e.Draft(context.Background(), facts())
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if res != nil {
			t.Fatalf("%s: expected nil result, got %+v", name, res)
		}
	}
}

func TestDraftAcceptsLegacyFieldName(t *testing.T) {
	llm := &fakeLLM{raw: `{"draft_notice":"To whom it may concern","risk_level":"red / HIGH"}`}
	e := NewEngine(knowledge.NewCorpus(nil), llm)
	res, err := e.Draft(context.Background(), facts())
	if err != nil || res == nil {
		t.Fatalf("draft: res=%v err=%v", res, err)
	}
	if res.NoticeBody != "To whom it may concern" || res.Risk != RiskHigh {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestNormalizeRiskDefaultsLow(t *testing.T) {
	if got := normalizeRisk("whatever"); got != RiskLow {
		t.Fatalf("expected LOW, got %s", got)
	}
}
