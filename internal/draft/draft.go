// Package draft turns collected intake facts into a grounded legal
// notice draft. The generation model is never called without retrieved
// grounding context.
package draft

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tidwall/gjson"

	"nyaya/internal/knowledge"
	"nyaya/internal/llmclient"
	"nyaya/internal/session"
)

// RiskLevel is the model's self-assessed risk for the drafted notice.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Result is a drafted notice. A nil *Result means drafting was refused
// for lack of grounding context.
type Result struct {
	Citations  string
	NoticeBody string
	Risk       RiskLevel
}

// Engine retrieves grounding provisions and prompts the generation
// model for the structured draft.
type Engine struct {
	corpus *knowledge.Corpus
	llm    llmclient.Client
}

func NewEngine(corpus *knowledge.Corpus, llm llmclient.Client) *Engine {
	return &Engine{corpus: corpus, llm: llm}
}

const systemPrompt = `You are an expert Indian Legal Advisor generating a formal Legal Notice Draft for a consumer complaint.
You must base your draft ONLY on the provided legal context. Do not cite any Act or section that is not in the context.

Context:
%s

Output strictly a single JSON object with these fields:
{
  "citations": "string listing the relevant sections/Acts cited from context",
  "notice": "the formal text of the legal notice, addressed to the grievance officer of the counterparty",
  "risk_level": "LOW | MEDIUM | HIGH, assessed from the facts and consumer law"
}`

// Draft builds the retrieval query, fetches grounding context and asks
// the model for the three-field draft. It returns (nil, nil) when the
// corpus has nothing relevant: insufficient grounding is an expected
// outcome, not an error. Model output that does not parse as the
// expected structure is also treated as no draft.
func (e *Engine) Draft(ctx context.Context, facts map[string]string) (*Result, error) {
	if e == nil || e.llm == nil {
		return nil, fmt.Errorf("draft engine is not configured")
	}

	query := buildQuery(facts)
	provisions := e.corpus.Search(query)
	contextText := knowledge.FormatContext(provisions)
	if strings.TrimSpace(contextText) == "" {
		return nil, nil
	}

	prompt := fmt.Sprintf(systemPrompt, contextText)
	raw, err := e.llm.GenerateJSON(ctx, prompt, facts)
	if err != nil {
		return nil, fmt.Errorf("generate draft: %w", err)
	}

	res, ok := parseResult(raw)
	if !ok {
		log.Printf("draft: unparseable model output, treating as insufficient data")
		return nil, nil
	}
	return res, nil
}

func buildQuery(facts map[string]string) string {
	return fmt.Sprintf("Consumer protection e-commerce complaint against %s. Issue: %s. Claiming Rs %s. Date: %s",
		facts[session.SlotCounterparty], facts[session.SlotIssue],
		facts[session.SlotAmount], facts[session.SlotIncidentDate])
}

// parseResult extracts the three draft fields leniently. The notice
// body is mandatory; citations and risk get defaults.
func parseResult(raw []byte) (*Result, bool) {
	if !gjson.ValidBytes(raw) {
		return nil, false
	}
	notice := strings.TrimSpace(gjson.GetBytes(raw, "notice").String())
	if notice == "" {
		// Some models echo the original field name.
		notice = strings.TrimSpace(gjson.GetBytes(raw, "draft_notice").String())
	}
	if notice == "" {
		return nil, false
	}
	citations := strings.TrimSpace(gjson.GetBytes(raw, "citations").String())
	if citations == "" {
		citations = "Consumer Protection Act, 2019"
	}
	return &Result{
		Citations:  citations,
		NoticeBody: notice,
		Risk:       normalizeRisk(gjson.GetBytes(raw, "risk_level").String()),
	}, true
}

func normalizeRisk(raw string) RiskLevel {
	switch {
	case strings.Contains(strings.ToUpper(raw), "HIGH"):
		return RiskHigh
	case strings.Contains(strings.ToUpper(raw), "MEDIUM"):
		return RiskMedium
	default:
		return RiskLow
	}
}
