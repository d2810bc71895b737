package stats

import (
	"errors"
	"fmt"
)

// InsufficientDataError reports a sample below the statistical minimum for an
// operation. Callers can recover by waiting for more data.
type InsufficientDataError struct {
	Op   string
	Need int
	Got  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: need at least %d samples, got %d", e.Op, e.Need, e.Got)
}

// DegenerateInputError reports constant or zero-variance input that would
// produce NaN or undefined results. Callers should treat it as "no signal",
// never as a numeric answer.
type DegenerateInputError struct {
	Op     string
	Reason string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("%s: degenerate input: %s", e.Op, e.Reason)
}

// IsInsufficientData returns true if err is an InsufficientDataError.
func IsInsufficientData(err error) bool {
	var ie *InsufficientDataError
	return errors.As(err, &ie)
}

// IsDegenerateInput returns true if err is a DegenerateInputError.
func IsDegenerateInput(err error) bool {
	var de *DegenerateInputError
	return errors.As(err, &de)
}
