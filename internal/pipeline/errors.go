package pipeline

import (
	"context"
	"errors"
	"fmt"

	"zapretctl/internal/config"
	"zapretctl/internal/process"
	"zapretctl/internal/strategy"
)

// ErrCancelled ends a run the user cancelled. It is never reported as a
// failure.
var ErrCancelled = errors.New("cancelled")

// ErrNoDomains is returned when domain collection yields nothing to test.
var ErrNoDomains = errors.New("no domains to test")

// ErrorKind classifies pipeline errors.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorGeneral
	ErrorSpawn
	ErrorPermissionDenied
	ErrorNonZeroExit
	ErrorParse
	ErrorCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorNone:
		return "none"
	case ErrorSpawn:
		return "spawn failure"
	case ErrorPermissionDenied:
		return "permission denied"
	case ErrorNonZeroExit:
		return "non-zero exit"
	case ErrorParse:
		return "parse failure"
	case ErrorCancelled:
		return "cancelled"
	default:
		return "error"
	}
}

// Classify maps err onto the error taxonomy.
func Classify(err error) ErrorKind {
	if err == nil {
		return ErrorNone
	}
	if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
		return ErrorCancelled
	}

	var (
		permErr  *process.PermissionDeniedError
		spawnErr *process.SpawnError
		exitErr  *process.ExitError
		parseErr *strategy.ParseError
		cfgErr   *config.ConfigurationError
	)
	switch {
	case errors.As(err, &permErr):
		return ErrorPermissionDenied
	case errors.As(err, &spawnErr):
		return ErrorSpawn
	case errors.As(err, &parseErr), errors.As(err, &cfgErr):
		return ErrorParse
	case errors.As(err, &exitErr):
		return ErrorNonZeroExit
	default:
		return ErrorGeneral
	}
}

// InvalidDomainError reports a domain entry that cannot be passed to
// blockcheck.
type InvalidDomainError struct {
	Domain string
	Reason string
}

func (e *InvalidDomainError) Error() string {
	return fmt.Sprintf("invalid domain %q: %s", e.Domain, e.Reason)
}
