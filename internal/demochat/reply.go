// Package demochat implements the scripted "try Ayra" demo chat.
package demochat

import "strings"

// Greeting opens every demo conversation.
const Greeting = "Hi! I’m Ayra. Ask me anything about your hospital workflows."

const (
	onCallReply    = "On-call in Neurosurgery: Dr. Ortega until 18:00, then Dr. Marín (18:00–08:00). I can page them if you want."
	pharmacyReply  = "Pharmacy: midazolam 12 vials, ceftriaxone 24 vials, insulin 8 pens. Would you like to reorder?"
	logisticsReply = "Logistics Hub: AMT-172 unloading at Gate 3, ETA 12 min. Dock B is free."
	fallbackReply  = "Got it. I’ll route that to the right module and follow up. Try asking about on-call staff, pharmacy stock, or logistics ETAs."
)

// Suggestions are example prompts shown next to the input.
var Suggestions = []string{
	"Who is on call in Neurosurgery?",
	"Check pharmacy stock",
	"ETA for the logistics hub",
}

// Reply picks the canned answer for a question. Matching is a lowercase
// substring check, first rule wins.
func Reply(question string) string {
	lc := strings.ToLower(question)
	switch {
	case strings.Contains(lc, "on call") && strings.Contains(lc, "neuro"):
		return onCallReply
	case strings.Contains(lc, "pharmacy") || strings.Contains(lc, "stock"):
		return pharmacyReply
	case strings.Contains(lc, "eta") || strings.Contains(lc, "logistics"):
		return logisticsReply
	default:
		return fallbackReply
	}
}
