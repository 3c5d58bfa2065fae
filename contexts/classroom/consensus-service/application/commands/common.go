package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"classconsensus/contexts/classroom/consensus-service/domain/entities"
	domainerrors "classconsensus/contexts/classroom/consensus-service/domain/errors"
	"classconsensus/contexts/classroom/consensus-service/ports"
)

const moduleName = "classroom/consensus-service"

// resolveCaller loads the caller's identity inside tx. Unknown callers are
// returned with RoleNone.
func resolveCaller(ctx context.Context, tx ports.Tx, caller string) (entities.Identity, error) {
	address := entities.NormalizeAddress(caller)
	if address == "" {
		return entities.Identity{}, domainerrors.ErrInvalidInput
	}
	identity, found, err := tx.GetIdentity(ctx, address)
	if err != nil {
		return entities.Identity{}, err
	}
	if !found {
		return entities.Identity{Address: address, Role: entities.RoleNone}, nil
	}
	return identity, nil
}

func loadPresentation(ctx context.Context, tx ports.Tx, id int64) (entities.Presentation, error) {
	if id < entities.FirstPresentationID {
		return entities.Presentation{}, domainerrors.ErrPresentationNotFound
	}
	return tx.GetPresentation(ctx, id)
}

func isDomainError(err error) bool {
	for _, target := range []error{
		domainerrors.ErrUnauthorized,
		domainerrors.ErrAlreadyRegistered,
		domainerrors.ErrInvalidSecret,
		domainerrors.ErrSlotsFull,
		domainerrors.ErrNotFound,
		domainerrors.ErrInvalidCategory,
		domainerrors.ErrInvalidState,
		domainerrors.ErrAlreadyVoted,
		domainerrors.ErrInvalidInput,
		domainerrors.ErrProfessorImmutable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// logRejected logs a failed command. Domain rejections are warnings; anything
// else is an infrastructure failure.
func logRejected(logger *slog.Logger, event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", moduleName,
		"layer", "application",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	if isDomainError(err) {
		logger.Warn("consensus command rejected", fields...)
	} else {
		logger.Error("consensus command failed", fields...)
	}
	return err
}

func nowFrom(clock ports.Clock) time.Time {
	if clock != nil {
		return clock.Now().UTC()
	}
	return time.Now().UTC()
}
