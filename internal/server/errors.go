package server

import (
	"context"
	"errors"

	"fight-timeline/internal/domain"
	"fight-timeline/internal/selection"
	"fight-timeline/internal/session"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

// failed logs err with the request logger, or fallback when the context has
// none, and converts it for the wire.
func failed(ctx context.Context, fallback zerolog.Logger, procedure string, err error) error {
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &fallback
	}
	logger.Warn().Err(err).Str("procedure", procedure).Msg("request failed")
	return toConnectError(err)
}

// toConnectError maps domain and selection errors onto connect codes.
// Anything unrecognised, stored data errors included, is internal.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	return connect.NewError(codeOf(err), err)
}

func codeOf(err error) connect.Code {
	switch {
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, selection.ErrOpponentNotFound),
		errors.Is(err, selection.ErrFighterNotFound),
		errors.Is(err, session.ErrSessionNotFound):
		return connect.CodeNotFound
	case errors.Is(err, selection.ErrUnknownFight),
		errors.Is(err, session.ErrInvalidAction):
		return connect.CodeInvalidArgument
	}
	return connect.CodeInternal
}
