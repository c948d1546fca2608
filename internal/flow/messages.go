package flow

import (
	"fmt"
	"strings"

	"nyaya/internal/lingo"
	"nyaya/internal/session"
)

const (
	msgConfirmRetry = "Please type YES to confirm or RESTART to cancel."

	msgInsufficient = "INSUFFICIENT LEGAL DATA. We couldn't safely draft a notice for this specific issue. Please consult a human lawyer."

	msgApology = "Sorry, I encountered an internal error. Please try again later."

	msgVoiceFailed = "I couldn't make out that voice note. Please type your message instead."

	msgJustGenerated = "Your legal notice was generated moments ago. Please use the download link already sent. Type RESTART to file a new complaint."

	msgOutcomeRetry = "Please reply with 1 (full resolution), 2 (partial resolution) or 3 (no reply yet)."

	msgOutcomeThanks = "Thank you for the update. You can type HI anytime to file a new complaint."
)

func welcomeMessage() string {
	var b strings.Builder
	b.WriteString("Welcome to the Nyaya Consumer Helpdesk. 👋\n\n")
	b.WriteString("I can help you officially complain against e-commerce fraud and draft a legal notice.\n\n")
	b.WriteString("Choose your language:\n")
	for i, l := range lingo.Supported {
		fmt.Fprintf(&b, "%d. %s\n", i+1, l.Label)
	}
	return strings.TrimRight(b.String(), "\n")
}

func confirmMessage(facts map[string]string) string {
	return fmt.Sprintf(
		"Please review your details:\n\n"+
			"Company: %s\nAmount: Rs %s\nDate: %s\nIssue: %s\n\n"+
			"Type YES to generate a legal notice, or RESTART to start over.",
		facts[session.SlotCounterparty], facts[session.SlotAmount],
		facts[session.SlotIncidentDate], facts[session.SlotIssue])
}

func draftMessage(citations, risk, notice, noticeURL string) string {
	return fmt.Sprintf(
		"LEGAL BASIS:\n%s\n\nRisk Level: %s\nHuman Review: Pending\n\nDRAFT NOTICE:\n%s\n\n"+
			"Download the PDF (one-time link): %s\n\n"+
			"Tip: forward this draft to the company's grievance email or print it.",
		citations, risk, notice, noticeURL)
}
