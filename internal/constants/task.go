package constants

import "strings"

type Recurrence string

const (
	RecurrenceOnce   Recurrence = "once"
	RecurrenceDaily  Recurrence = "daily"
	RecurrenceWeekly Recurrence = "weekly"
)

func ParseRecurrence(s string) (Recurrence, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "once", "unica":
		return RecurrenceOnce, true
	case "daily", "diaria":
		return RecurrenceDaily, true
	case "weekly", "semanal":
		return RecurrenceWeekly, true
	}
	return "", false
}

type DestinationMode string

const (
	DestinationIndividual DestinationMode = "individual"
	DestinationTeam       DestinationMode = "team"
)

func ParseDestinationMode(s string) (DestinationMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "individual":
		return DestinationIndividual, true
	case "team", "equipe":
		return DestinationTeam, true
	}
	return "", false
}

type ExecutionStatus string

const (
	StatusPending   ExecutionStatus = "pending"
	StatusCompleted ExecutionStatus = "completed"
	StatusNotDone   ExecutionStatus = "not-done"
)

func ParseExecutionStatus(s string) (ExecutionStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "pendente":
		return StatusPending, true
	case "completed", "concluida":
		return StatusCompleted, true
	case "not-done", "nao_realizada":
		return StatusNotDone, true
	}
	return "", false
}
