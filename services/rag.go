package services

import "time"

// RAG thresholds in days until the target date.
const (
	ragRedDays   = 7
	ragAmberDays = 21
)

// RAGStatus is the red/amber/green schedule-health indicator.
type RAGStatus string

const (
	RAGNone  RAGStatus = "none"
	RAGRed   RAGStatus = "red"
	RAGAmber RAGStatus = "amber"
	RAGGreen RAGStatus = "green"
)

// CalcRAGStatus derives schedule health from the days remaining until target.
// Overdue or inside a week is red, inside three weeks is amber, otherwise
// green. A zero target date yields none.
func CalcRAGStatus(now, target time.Time) RAGStatus {
	if target.IsZero() {
		return RAGNone
	}
	days := int(target.Sub(now).Hours() / 24)
	switch {
	case days < ragRedDays:
		return RAGRed
	case days < ragAmberDays:
		return RAGAmber
	default:
		return RAGGreen
	}
}
