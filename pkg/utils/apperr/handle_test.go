package apperr_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/utils/apperr"
)

func TestHandle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.With(context.Background(), logger)

	apperr.Handle(ctx, goerr.New("nothing selected", goerr.T(model.ErrTagValidation)))
	gt.S(t, buf.String()).Contains(`"level":"WARN"`)

	buf.Reset()
	apperr.Handle(ctx, goerr.New("disk full"))
	gt.S(t, buf.String()).Contains(`"level":"ERROR"`)

	buf.Reset()
	apperr.Handle(ctx, nil)
	gt.Equal(t, buf.Len(), 0)
}

func TestIsClientError(t *testing.T) {
	gt.True(t, apperr.IsClientError(goerr.New("x", goerr.T(model.ErrTagInvalidTransition))))
	gt.True(t, apperr.IsClientError(goerr.Wrap(goerr.New("x", goerr.T(model.ErrTagValidation)), "wrapped")))
	gt.False(t, apperr.IsClientError(goerr.New("x", goerr.T(model.ErrTagAuthFailure))))
}
