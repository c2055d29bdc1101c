package cli

import (
	"errors"
	"io/fs"

	"zapretctl/internal/pipeline"
)

// Hint returns a one-line suggestion for err, or "" when there is nothing
// useful to add.
func Hint(err error) string {
	switch pipeline.Classify(err) {
	case pipeline.ErrorPermissionDenied:
		return "Authorization was refused. Run again and accept the elevation prompt."
	case pipeline.ErrorSpawn:
		return "A required program could not be started. Check that it is installed and on PATH."
	case pipeline.ErrorParse:
		return "Fix the file and run again."
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "The zapret work tree looks incomplete. Run `zapretctl install --overwrite`."
	case errors.Is(err, pipeline.ErrNoDomains):
		return "Pass at least one domain, e.g. `zapretctl discover youtube.com`."
	}
	return ""
}
