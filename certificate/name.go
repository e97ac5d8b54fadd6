package certificate

import (
	"fmt"
	"strings"
)

// FallbackName is printed when a participant has neither first nor last name
const FallbackName = "Participant"

// FormatName joins the trimmed, non-empty name parts with a single space
func FormatName(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		// collapse inner whitespace as well, "Mary  Ann" -> "Mary Ann"
		if f := strings.Fields(p); len(f) > 0 {
			nonEmpty = append(nonEmpty, strings.Join(f, " "))
		}
	}
	if len(nonEmpty) == 0 {
		return FallbackName
	}
	return strings.Join(nonEmpty, " ")
}

// TrainingName returns the trimmed training name or a placeholder derived
// from the id
func TrainingName(name string, id uint) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return fmt.Sprintf("Training #%d", id)
}
