package match

import (
	"errors"

	"pairup/internal/pkg/errs"
)

var (
	// ErrDuplicateJoin is returned when a connection that already has an active user joins again.
	ErrDuplicateJoin = errs.NewError(errs.ErrDuplicateJoin)

	// ErrRoomIDConflict is returned when a room id is already taken by an active room.
	ErrRoomIDConflict = errs.NewError(errs.ErrRoomIDConflict)

	// ErrHubClosed is returned by Hub operations after Stop.
	ErrHubClosed = errs.NewError(errs.ErrMatchmakingUnavailable)
)

func asCustom(err error) *errs.CustomError {
	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		return customErr
	}
	return errs.NewError(errs.ErrUnknown)
}
