package cli

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/dshills/reviewlens/internal/aggregate"
	"github.com/dshills/reviewlens/internal/config"
	"github.com/dshills/reviewlens/internal/dataset"
	"github.com/dshills/reviewlens/internal/providers"
	"github.com/dshills/reviewlens/internal/report"
)

// setupError marks a failure to build a component from configuration, such
// as an unknown provider name or an unreadable seed file.
type setupError struct {
	err error
}

func (e *setupError) Error() string { return e.err.Error() }
func (e *setupError) Unwrap() error { return e.err }

// exitCodeFor maps an error from a command to the process exit code.
func exitCodeFor(err error) int {
	var (
		setupErr     *setupError
		fieldErr     *config.FieldError
		policyErr    *aggregate.ConfigError
		fewErr       *dataset.NotEnoughReviewsError
		integrityErr *report.IntegrityError
	)
	switch {
	case err == nil:
		return ExitSuccess
	case providers.IsAuthError(err),
		errors.As(err, &setupErr),
		errors.As(err, &fieldErr),
		errors.As(err, &policyErr):
		return ExitConfigError
	case errors.As(err, &fewErr),
		errors.As(err, &integrityErr),
		errors.Is(err, dataset.ErrProductNotFound):
		return ExitDataError
	default:
		return ExitRuntimeError
	}
}

// fail reports err and records its exit code.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	logger.Debug("command failed", zap.Error(err))
	exitCode = exitCodeFor(err)
}
