package commands

import (
	"context"
	"log/slog"
	"strings"

	application "classconsensus/contexts/classroom/consensus-service/application"
	"classconsensus/contexts/classroom/consensus-service/domain/entities"
	domainerrors "classconsensus/contexts/classroom/consensus-service/domain/errors"
	"classconsensus/contexts/classroom/consensus-service/domain/services"
	"classconsensus/contexts/classroom/consensus-service/ports"
)

const professorDisplayName = "Professor"

// RegisterStudentCommand registers the caller as a student.
type RegisterStudentCommand struct {
	Caller string
	Name   string
}

// RegisterTACommand registers the caller into the lowest free TA slot.
type RegisterTACommand struct {
	Caller     string
	Name       string
	SecretCode string
}

// RegistryUseCase owns identity registration. Roles are write-once: no command
// here ever changes an existing identity.
type RegistryUseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
	TASecret   services.SecretDigest
	Logger     *slog.Logger
}

// InitializeClassroom fixes the professor identity. It is idempotent for the
// same address and refuses to replace an existing professor.
func (uc RegistryUseCase) InitializeClassroom(ctx context.Context, professor string) error {
	logger := application.ResolveLogger(uc.Logger)
	address := entities.NormalizeAddress(professor)
	if address == "" {
		return logRejected(logger, "consensus_initialize_rejected", domainerrors.ErrInvalidInput)
	}

	created := false
	err := uc.Repository.Atomic(ctx, func(tx ports.Tx) error {
		roster, err := tx.GetRoster(ctx)
		if err != nil {
			return err
		}
		if roster.Professor != "" {
			if roster.Professor != address {
				return domainerrors.ErrProfessorImmutable
			}
			return nil
		}
		existing, found, err := tx.GetIdentity(ctx, address)
		if err != nil {
			return err
		}
		if found && existing.Role != entities.RoleProfessor {
			return domainerrors.ErrAlreadyRegistered
		}
		if err := tx.SaveIdentity(ctx, entities.Identity{
			Address:      address,
			Role:         entities.RoleProfessor,
			Name:         professorDisplayName,
			RegisteredAt: nowFrom(uc.Clock),
		}); err != nil {
			return err
		}
		roster.Professor = address
		created = true
		return tx.SaveRoster(ctx, roster)
	})
	if err != nil {
		return logRejected(logger, "consensus_initialize_failed", err, "professor", address)
	}
	logger.Info("classroom initialized",
		"event", "consensus_initialized",
		"module", moduleName,
		"layer", "application",
		"professor", address,
		"created", created,
	)
	return nil
}

// RegisterStudent assigns the STUDENT role to a caller without one.
func (uc RegistryUseCase) RegisterStudent(ctx context.Context, cmd RegisterStudentCommand) (entities.Identity, error) {
	logger := application.ResolveLogger(uc.Logger)
	name := strings.TrimSpace(cmd.Name)
	caller := entities.NormalizeAddress(cmd.Caller)
	if name == "" || caller == "" {
		return entities.Identity{}, logRejected(logger, "consensus_register_student_rejected", domainerrors.ErrInvalidInput,
			"caller", caller,
		)
	}

	var identity entities.Identity
	err := uc.Repository.Atomic(ctx, func(tx ports.Tx) error {
		current, err := resolveCaller(ctx, tx, caller)
		if err != nil {
			return err
		}
		if current.Role.Registered() {
			return domainerrors.ErrAlreadyRegistered
		}
		identity = entities.Identity{
			Address:      caller,
			Role:         entities.RoleStudent,
			Name:         name,
			RegisteredAt: nowFrom(uc.Clock),
		}
		return tx.SaveIdentity(ctx, identity)
	})
	if err != nil {
		return entities.Identity{}, logRejected(logger, "consensus_register_student_failed", err, "caller", caller)
	}
	logger.Info("student registered",
		"event", "consensus_student_registered",
		"module", moduleName,
		"layer", "application",
		"caller", caller,
	)
	return identity, nil
}

// RegisterTA verifies the shared secret and seats the caller in the lowest
// empty TA slot.
func (uc RegistryUseCase) RegisterTA(ctx context.Context, cmd RegisterTACommand) (entities.Identity, error) {
	logger := application.ResolveLogger(uc.Logger)
	name := strings.TrimSpace(cmd.Name)
	caller := entities.NormalizeAddress(cmd.Caller)
	if name == "" || caller == "" {
		return entities.Identity{}, logRejected(logger, "consensus_register_ta_rejected", domainerrors.ErrInvalidInput,
			"caller", caller,
		)
	}

	var identity entities.Identity
	err := uc.Repository.Atomic(ctx, func(tx ports.Tx) error {
		current, err := resolveCaller(ctx, tx, caller)
		if err != nil {
			return err
		}
		if current.Role.Registered() {
			return domainerrors.ErrAlreadyRegistered
		}
		if uc.TASecret.IsZero() || !uc.TASecret.Matches(cmd.SecretCode) {
			return domainerrors.ErrInvalidSecret
		}
		roster, err := tx.GetRoster(ctx)
		if err != nil {
			return err
		}
		slot, ok := roster.FreeTASlot()
		if !ok {
			return domainerrors.ErrSlotsFull
		}
		roster.TASlots[slot-1] = caller
		identity = entities.Identity{
			Address:      caller,
			Role:         entities.RoleTA,
			Name:         name,
			TASlot:       slot,
			RegisteredAt: nowFrom(uc.Clock),
		}
		if err := tx.SaveIdentity(ctx, identity); err != nil {
			return err
		}
		return tx.SaveRoster(ctx, roster)
	})
	if err != nil {
		return entities.Identity{}, logRejected(logger, "consensus_register_ta_failed", err, "caller", caller)
	}
	logger.Info("ta registered",
		"event", "consensus_ta_registered",
		"module", moduleName,
		"layer", "application",
		"caller", caller,
		"ta_slot", identity.TASlot,
	)
	return identity, nil
}
