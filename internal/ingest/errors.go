package ingest

import (
	"fmt"
	"strings"
)

// MissingFieldError reports every required header absent from the input.
type MissingFieldError struct {
	Sheet   string
	Missing []string
}

func (e *MissingFieldError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("input missing required columns: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("sheet %q missing required columns: %s", e.Sheet, strings.Join(e.Missing, ", "))
}
