package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"classconsensus/contexts/classroom/consensus-service/adapters/memory"
	"classconsensus/contexts/classroom/consensus-service/application/queries"
	"classconsensus/contexts/classroom/consensus-service/domain/entities"
	domainerrors "classconsensus/contexts/classroom/consensus-service/domain/errors"
	"classconsensus/contexts/classroom/consensus-service/ports"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	err := store.Atomic(ctx, func(tx ports.Tx) error {
		for _, identity := range []entities.Identity{
			{Address: "0xprof", Role: entities.RoleProfessor, Name: "Professor"},
			{Address: "0xta1", Role: entities.RoleTA, Name: "Tom", TASlot: 1},
			{Address: "0xs1", Role: entities.RoleStudent, Name: "Alice", RegisteredAt: now},
		} {
			if err := tx.SaveIdentity(ctx, identity); err != nil {
				return err
			}
		}
		if err := tx.SaveRoster(ctx, entities.Roster{Professor: "0xprof", TASlots: [2]string{"0xta1", ""}}); err != nil {
			return err
		}
		p := entities.NewPresentation(101, "DEMO", entities.Identity{Address: "0xs1", Name: "Alice"}, now)
		p.ProfessorVote = entities.BallotPass
		p.TAVotes = [2]entities.Ballot{entities.BallotFail, entities.BallotPass}
		p.StudentPass = 3
		p.StudentFail = 1
		return tx.SavePresentation(ctx, p)
	})
	if err != nil {
		t.Fatalf("seed store failed: %v", err)
	}
	return store
}

func TestGetUserRole(t *testing.T) {
	uc := queries.RoleLookupUseCase{Repository: seededStore(t)}
	ctx := context.Background()

	view, err := uc.GetUserRole(ctx, "0xTA1")
	if err != nil {
		t.Fatalf("get role failed: %v", err)
	}
	if view.Role != entities.RoleTA || view.Name != "Tom" || !view.Registered || view.TASlot != 1 {
		t.Fatalf("unexpected ta view: %+v", view)
	}

	view, err = uc.GetUserRole(ctx, "0xstranger")
	if err != nil {
		t.Fatalf("get role for stranger failed: %v", err)
	}
	if view.Role != entities.RoleNone || view.Registered || view.Name != "" {
		t.Fatalf("unexpected stranger view: %+v", view)
	}

	roster, err := uc.GetRoster(ctx)
	if err != nil {
		t.Fatalf("get roster failed: %v", err)
	}
	if roster.Professor != "0xprof" || roster.TASlots[0] != "0xta1" {
		t.Fatalf("unexpected roster: %+v", roster)
	}
}

func TestGetPresentationViewIgnoresEmptySlot(t *testing.T) {
	uc := queries.PresentationQueryUseCase{Repository: seededStore(t)}
	ctx := context.Background()

	view, err := uc.GetPresentationView(ctx, 101)
	if err != nil {
		t.Fatalf("get view failed: %v", err)
	}
	if view.StudentBlock != entities.BallotPass {
		t.Fatalf("expected student block PASS, got %s", view.StudentBlock)
	}
	if view.Tally != (entities.Tally{PassBlocks: 2, FailBlocks: 1, Participating: 3}) {
		t.Fatalf("unexpected tally: %+v", view.Tally)
	}

	if _, err := uc.GetPresentationView(ctx, 42); !errors.Is(err, domainerrors.ErrNotFound) {
		t.Fatalf("expected not found below first id, got %v", err)
	}

	ids, err := uc.GetAllIDs(ctx)
	if err != nil || len(ids) != 1 || ids[0] != 101 {
		t.Fatalf("unexpected ids: %v err=%v", ids, err)
	}
	students, err := uc.GetAllStudents(ctx)
	if err != nil || len(students) != 1 || students[0].Name != "Alice" {
		t.Fatalf("unexpected students: %+v err=%v", students, err)
	}
}
