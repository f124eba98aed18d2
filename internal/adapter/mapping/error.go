package mapping

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/eslsoft/studydeck/internal/entity"
)

// ToConnectError maps domain errors onto connect status codes.
func ToConnectError(err error) error {
	var connectErr *connect.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, entity.ErrEmptyQueue), errors.Is(err, entity.ErrSessionFinished):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, entity.ErrInvalidQuality),
		errors.Is(err, entity.ErrInconsistentAnswer),
		errors.Is(err, entity.ErrInvalidLearnerID),
		errors.Is(err, entity.ErrInvalidSessionID),
		errors.Is(err, entity.ErrInvalidFilter):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, entity.ErrSessionNotFound), errors.Is(err, entity.ErrCardNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
