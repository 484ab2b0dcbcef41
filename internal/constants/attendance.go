package constants

import "strings"

type ClockEvent string

const (
	ClockIn    ClockEvent = "in"
	ClockOut   ClockEvent = "out"
	ClockBreak ClockEvent = "break"
)

// ParseClockEvent defaults an empty value to ClockIn.
func ParseClockEvent(s string) (ClockEvent, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "in", "entrada":
		return ClockIn, true
	case "out", "saida":
		return ClockOut, true
	case "break", "intervalo":
		return ClockBreak, true
	}
	return "", false
}

const (
	DefaultClockListLimit = 30
	MinClockListLimit     = 5
	MaxClockListLimit     = 200
)
