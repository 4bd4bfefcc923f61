package metrics

import "errors"

// Error taxonomy shared by both pipelines.
// ErrFieldAbsent lives next to Result in summary.go.
var (
	// ErrArtifactUnreadable marks a source document that could not be read at all
	ErrArtifactUnreadable = errors.New("artifact unreadable")
	// ErrParseFailure marks a value that was found but could not be converted
	ErrParseFailure = errors.New("value could not be parsed")
	// ErrZeroDenominator marks a ratio whose denominator is zero
	ErrZeroDenominator = errors.New("denominator is zero")
)

// Reason returns a short, stable label for an omission reason
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFieldAbsent):
		return "field_absent"
	case errors.Is(err, ErrParseFailure):
		return "parse_failure"
	case errors.Is(err, ErrZeroDenominator):
		return "zero_denominator"
	case errors.Is(err, ErrArtifactUnreadable):
		return "artifact_unreadable"
	default:
		return "error"
	}
}
