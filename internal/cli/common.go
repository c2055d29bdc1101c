package cli

const (
	successMark = "✓"
	warningMark = "⚠"
)

// FormatError is the line printed for a command that failed.
func FormatError(err error) string {
	return "Error: " + err.Error()
}

func FormatSuccess(msg string) string {
	return successMark + " " + msg
}

func FormatWarning(msg string) string {
	return warningMark + " " + msg
}
