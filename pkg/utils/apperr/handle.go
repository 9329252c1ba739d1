package apperr

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/retention/pkg/domain/model"
)

// Handle logs an error that cannot be returned to a caller. Errors caused by
// operator input or by the connector state are logged as warnings.
func Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	logger := ctxlog.From(ctx)
	if IsClientError(err) {
		logger.Warn("application error", "error", err)
		return
	}
	logger.Error("application error", "error", err)
}

// IsClientError reports whether err is caused by the request rather than by
// the service
func IsClientError(err error) bool {
	return goerr.HasTag(err, model.ErrTagValidation) ||
		goerr.HasTag(err, model.ErrTagInvalidTransition)
}
