package commands_test

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"classconsensus/contexts/classroom/consensus-service/adapters/memory"
	"classconsensus/contexts/classroom/consensus-service/application/commands"
	"classconsensus/contexts/classroom/consensus-service/domain/entities"
	domainerrors "classconsensus/contexts/classroom/consensus-service/domain/errors"
	"classconsensus/contexts/classroom/consensus-service/domain/services"
)

const (
	professor = "0xprof"
	taSecret  = "programmable2025"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type classroom struct {
	store         *memory.Store
	registry      commands.RegistryUseCase
	presentations commands.PresentationUseCase
	votes         commands.VoteUseCase
	finalizer     commands.FinalizeUseCase
}

func newClassroom(t *testing.T) classroom {
	t.Helper()
	store := memory.NewStore()
	clock := fixedClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	c := classroom{
		store: store,
		registry: commands.RegistryUseCase{
			Repository: store,
			Clock:      clock,
			TASecret:   services.DigestSecret(taSecret),
		},
		presentations: commands.PresentationUseCase{
			Repository: store,
			Categories: entities.NewCategories(entities.DefaultCategories),
			Clock:      clock,
			IDGen:      store,
		},
		votes: commands.VoteUseCase{
			Repository: store,
			Clock:      clock,
		},
		finalizer: commands.FinalizeUseCase{
			Repository: store,
			Clock:      clock,
			IDGen:      store,
		},
	}
	if err := c.registry.InitializeClassroom(context.Background(), professor); err != nil {
		t.Fatalf("initialize classroom failed: %v", err)
	}
	return c
}

func (c classroom) student(t *testing.T, address string, name string) {
	t.Helper()
	if _, err := c.registry.RegisterStudent(context.Background(), commands.RegisterStudentCommand{
		Caller: address,
		Name:   name,
	}); err != nil {
		t.Fatalf("register student %s failed: %v", address, err)
	}
}

func (c classroom) ta(t *testing.T, address string, name string) entities.Identity {
	t.Helper()
	identity, err := c.registry.RegisterTA(context.Background(), commands.RegisterTACommand{
		Caller:     address,
		Name:       name,
		SecretCode: taSecret,
	})
	if err != nil {
		t.Fatalf("register ta %s failed: %v", address, err)
	}
	return identity
}

func (c classroom) create(t *testing.T, caller string, student string) entities.Presentation {
	t.Helper()
	p, err := c.presentations.CreatePresentation(context.Background(), commands.CreatePresentationCommand{
		Caller:   caller,
		Category: "DEMO",
		Student:  student,
	})
	if err != nil {
		t.Fatalf("create presentation failed: %v", err)
	}
	return p
}

func (c classroom) vote(t *testing.T, class string, caller string, id int64, pass bool) {
	t.Helper()
	cmd := commands.CastVoteCommand{Caller: caller, PresentationID: id, Pass: pass}
	var err error
	switch class {
	case "professor":
		_, err = c.votes.VoteProfessor(context.Background(), cmd)
	case "ta":
		_, err = c.votes.VoteTA(context.Background(), cmd)
	default:
		_, err = c.votes.VoteAsStudent(context.Background(), cmd)
	}
	if err != nil {
		t.Fatalf("%s vote by %s failed: %v", class, caller, err)
	}
}

type outboxEvent struct {
	EventType string `json:"event_type"`
	Data      struct {
		PresentationID int64  `json:"presentation_id"`
		Result         string `json:"result"`
	} `json:"data"`
}

func (c classroom) events(t *testing.T, eventType string) []outboxEvent {
	t.Helper()
	pending, err := c.store.ListPendingOutbox(context.Background(), 100)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	var out []outboxEvent
	for _, row := range pending {
		var event outboxEvent
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			t.Fatalf("decode outbox row failed: %v", err)
		}
		if event.EventType == eventType {
			out = append(out, event)
		}
	}
	return out
}

func TestInitializeClassroomIsIdempotentAndImmutable(t *testing.T) {
	c := newClassroom(t)
	ctx := context.Background()

	if err := c.registry.InitializeClassroom(ctx, "0xPROF"); err != nil {
		t.Fatalf("re-initialize with same professor failed: %v", err)
	}
	if err := c.registry.InitializeClassroom(ctx, "0xother"); !errors.Is(err, domainerrors.ErrProfessorImmutable) {
		t.Fatalf("expected ErrProfessorImmutable, got %v", err)
	}
	identity, found, _ := c.store.GetIdentity(ctx, professor)
	if !found || identity.Role != entities.RoleProfessor {
		t.Fatalf("expected professor identity, got %+v", identity)
	}
}

func TestRegisterStudentRejectsRegisteredCallers(t *testing.T) {
	c := newClassroom(t)
	ctx := context.Background()
	c.student(t, "0xs1", "Alice")

	for _, caller := range []string{"0xs1", "0XS1", professor} {
		_, err := c.registry.RegisterStudent(ctx, commands.RegisterStudentCommand{Caller: caller, Name: "Again"})
		if !errors.Is(err, domainerrors.ErrAlreadyRegistered) {
			t.Fatalf("caller %s: expected ErrAlreadyRegistered, got %v", caller, err)
		}
	}
	if _, err := c.registry.RegisterStudent(ctx, commands.RegisterStudentCommand{Caller: "0xs2", Name: "  "}); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}
}

func TestRegisterTASeatsLowestSlotAndEnforcesSecret(t *testing.T) {
	c := newClassroom(t)
	ctx := context.Background()

	_, err := c.registry.RegisterTA(ctx, commands.RegisterTACommand{Caller: "0xta1", Name: "Tom", SecretCode: "wrong"})
	if !errors.Is(err, domainerrors.ErrInvalidSecret) {
		t.Fatalf("expected ErrInvalidSecret, got %v", err)
	}
	if _, found, _ := c.store.GetIdentity(ctx, "0xta1"); found {
		t.Fatalf("failed registration must not create an identity")
	}

	first := c.ta(t, "0xta1", "Tom")
	second := c.ta(t, "0xta2", "Tina")
	if first.TASlot != 1 || second.TASlot != 2 {
		t.Fatalf("expected slots 1 and 2, got %d and %d", first.TASlot, second.TASlot)
	}

	_, err = c.registry.RegisterTA(ctx, commands.RegisterTACommand{Caller: "0xta3", Name: "Tia", SecretCode: taSecret})
	if !errors.Is(err, domainerrors.ErrSlotsFull) {
		t.Fatalf("expected ErrSlotsFull, got %v", err)
	}
	_, err = c.registry.RegisterTA(ctx, commands.RegisterTACommand{Caller: "0xta1", Name: "Tom", SecretCode: taSecret})
	if !errors.Is(err, domainerrors.ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}

	roster, _ := c.store.GetRoster(ctx)
	if roster.TASlots != [2]string{"0xta1", "0xta2"} {
		t.Fatalf("unexpected roster: %+v", roster)
	}
}

func TestCreatePresentationAssignsSequentialIDs(t *testing.T) {
	c := newClassroom(t)
	ctx := context.Background()
	c.student(t, "0xs1", "Alice")
	c.ta(t, "0xta1", "Tom")

	first := c.create(t, professor, "0xs1")
	if first.ID != 101 || first.Result != entities.ResultInProgress || first.StudentName != "Alice" {
		t.Fatalf("unexpected first presentation: %+v", first)
	}

	_, err := c.presentations.CreatePresentation(ctx, commands.CreatePresentationCommand{
		Caller: professor, Category: "KEYNOTE", Student: "0xs1",
	})
	if !errors.Is(err, domainerrors.ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}

	second := c.create(t, "0xta1", "0xs1")
	if second.ID != 102 {
		t.Fatalf("failed creation must not consume an id; got %d", second.ID)
	}
}

func TestCreatePresentationRejections(t *testing.T) {
	c := newClassroom(t)
	c.student(t, "0xs1", "Alice")
	c.ta(t, "0xta1", "Tom")

	tests := []struct {
		name    string
		caller  string
		student string
		want    error
	}{
		{name: "student caller", caller: "0xs1", student: "0xs1", want: domainerrors.ErrUnauthorized},
		{name: "unregistered caller", caller: "0xnobody", student: "0xs1", want: domainerrors.ErrUnauthorized},
		{name: "unknown student", caller: professor, student: "0xghost", want: domainerrors.ErrNotFound},
		{name: "target is a ta", caller: professor, student: "0xta1", want: domainerrors.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.presentations.CreatePresentation(context.Background(), commands.CreatePresentationCommand{
				Caller: tt.caller, Category: "DEMO", Student: tt.student,
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestFinalizePassEmitsEvent(t *testing.T) {
	c := newClassroom(t)
	ctx := context.Background()
	for _, s := range []string{"0xs1", "0xs2", "0xs3"} {
		c.student(t, s, "Student "+s)
	}
	c.ta(t, "0xta1", "Tom")
	c.ta(t, "0xta2", "Tina")
	p := c.create(t, professor, "0xs1")

	c.vote(t, "professor", professor, p.ID, true)
	c.vote(t, "ta", "0xta1", p.ID, true)
	c.vote(t, "ta", "0xta2", p.ID, false)
	c.vote(t, "student", "0xs2", p.ID, true)
	c.vote(t, "student", "0xs3", p.ID, true)

	result, err := c.finalizer.FinalizeResult(ctx, commands.FinalizeCommand{Caller: professor, PresentationID: p.ID})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if result.Presentation.Result != entities.ResultPass {
		t.Fatalf("expected PASS, got %s", result.Presentation.Result)
	}
	if result.Tally != (entities.Tally{PassBlocks: 3, FailBlocks: 1, Participating: 4}) {
		t.Fatalf("unexpected tally: %+v", result.Tally)
	}
	if result.Presentation.FinalizedAt == nil {
		t.Fatalf("expected finalized timestamp")
	}

	events := c.events(t, commands.EventResultFinalized)
	if len(events) != 1 || events[0].Data.PresentationID != 101 || events[0].Data.Result != "PASS" {
		t.Fatalf("expected one finalize event (101, PASS), got %+v", events)
	}

	_, err = c.votes.VoteProfessor(ctx, commands.CastVoteCommand{Caller: professor, PresentationID: p.ID, Pass: false})
	if !errors.Is(err, domainerrors.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState voting on a finalized presentation, got %v", err)
	}
	_, err = c.finalizer.FinalizeResult(ctx, commands.FinalizeCommand{Caller: professor, PresentationID: p.ID})
	if !errors.Is(err, domainerrors.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on second finalize, got %v", err)
	}
	_, err = c.finalizer.ProfessorOverride(ctx, commands.OverrideCommand{Caller: professor, PresentationID: p.ID, Pass: false})
	if !errors.Is(err, domainerrors.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState overriding a PASS, got %v", err)
	}
}

func TestTieThenProfessorOverride(t *testing.T) {
	c := newClassroom(t)
	ctx := context.Background()
	c.student(t, "0xs1", "Alice")
	c.ta(t, "0xta1", "Tom")
	p := c.create(t, professor, "0xs1")

	c.vote(t, "professor", professor, p.ID, true)
	c.vote(t, "ta", "0xta1", p.ID, false)

	result, err := c.finalizer.FinalizeResult(ctx, commands.FinalizeCommand{Caller: "0xta1", PresentationID: p.ID})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if result.Presentation.Result != entities.ResultTiePendingOverride {
		t.Fatalf("expected tie, got %s", result.Presentation.Result)
	}
	if result.Presentation.FinalizedAt != nil {
		t.Fatalf("tie must not carry a finalized timestamp")
	}

	_, err = c.votes.VoteProfessor(ctx, commands.CastVoteCommand{Caller: professor, PresentationID: p.ID, Pass: true})
	if !errors.Is(err, domainerrors.ErrInvalidState) {
		t.Fatalf("expected votes to be closed during a tie, got %v", err)
	}

	_, err = c.finalizer.ProfessorOverride(ctx, commands.OverrideCommand{Caller: "0xta1", PresentationID: p.ID, Pass: true})
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected TA override to be unauthorized, got %v", err)
	}

	overridden, err := c.finalizer.ProfessorOverride(ctx, commands.OverrideCommand{Caller: professor, PresentationID: p.ID, Pass: true})
	if err != nil {
		t.Fatalf("override failed: %v", err)
	}
	if overridden.Presentation.Result != entities.ResultPass {
		t.Fatalf("expected PASS after override, got %s", overridden.Presentation.Result)
	}

	_, err = c.finalizer.ProfessorOverride(ctx, commands.OverrideCommand{Caller: professor, PresentationID: p.ID, Pass: false})
	if !errors.Is(err, domainerrors.ErrInvalidState) {
		t.Fatalf("expected second override to fail with ErrInvalidState, got %v", err)
	}

	events := c.events(t, commands.EventResultOverridden)
	if len(events) != 1 || events[0].Data.Result != "PASS" {
		t.Fatalf("expected one override event with PASS, got %+v", events)
	}
}

func TestProfessorAndTAVotesOverwrite(t *testing.T) {
	c := newClassroom(t)
	ctx := context.Background()
	c.student(t, "0xs1", "Alice")
	c.ta(t, "0xta1", "Tom")
	p := c.create(t, professor, "0xs1")

	c.vote(t, "professor", professor, p.ID, true)
	c.vote(t, "professor", professor, p.ID, false)
	c.vote(t, "ta", "0xta1", p.ID, true)
	c.vote(t, "ta", "0xta1", p.ID, false)

	stored, err := c.store.GetPresentation(ctx, p.ID)
	if err != nil {
		t.Fatalf("load presentation failed: %v", err)
	}
	if stored.ProfessorVote != entities.BallotFail || stored.TAVotes[0] != entities.BallotFail {
		t.Fatalf("expected latest ballots to win, got professor=%s ta1=%s", stored.ProfessorVote, stored.TAVotes[0])
	}

	result, err := c.finalizer.FinalizeResult(ctx, commands.FinalizeCommand{Caller: professor, PresentationID: p.ID})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if result.Presentation.Result != entities.ResultFail {
		t.Fatalf("expected FAIL, got %s", result.Presentation.Result)
	}
}

func TestStudentVotesAreCumulativeAndSingle(t *testing.T) {
	c := newClassroom(t)
	ctx := context.Background()
	c.student(t, "0xs1", "Alice")
	c.student(t, "0xs2", "Bob")
	p := c.create(t, professor, "0xs1")

	c.vote(t, "student", "0xs1", p.ID, true)
	c.vote(t, "student", "0xs2", p.ID, false)

	_, err := c.votes.VoteAsStudent(ctx, commands.CastVoteCommand{Caller: "0XS1", PresentationID: p.ID, Pass: false})
	if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}

	stored, _ := c.store.GetPresentation(ctx, p.ID)
	if stored.StudentPass != 1 || stored.StudentFail != 1 {
		t.Fatalf("expected 1/1 student counts, got %d/%d", stored.StudentPass, stored.StudentFail)
	}
}

func TestVoteGates(t *testing.T) {
	c := newClassroom(t)
	c.student(t, "0xs1", "Alice")
	c.ta(t, "0xta1", "Tom")
	p := c.create(t, professor, "0xs1")

	tests := []struct {
		name   string
		vote   func(context.Context, commands.CastVoteCommand) (entities.Presentation, error)
		caller string
		id     int64
		want   error
	}{
		{name: "ta as professor", vote: c.votes.VoteProfessor, caller: "0xta1", id: p.ID, want: domainerrors.ErrUnauthorized},
		{name: "student as ta", vote: c.votes.VoteTA, caller: "0xs1", id: p.ID, want: domainerrors.ErrUnauthorized},
		{name: "professor as student", vote: c.votes.VoteAsStudent, caller: professor, id: p.ID, want: domainerrors.ErrUnauthorized},
		{name: "stranger as student", vote: c.votes.VoteAsStudent, caller: "0xnobody", id: p.ID, want: domainerrors.ErrUnauthorized},
		{name: "unknown id", vote: c.votes.VoteProfessor, caller: professor, id: 999, want: domainerrors.ErrNotFound},
		{name: "id below first", vote: c.votes.VoteProfessor, caller: professor, id: 100, want: domainerrors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.vote(context.Background(), commands.CastVoteCommand{Caller: tt.caller, PresentationID: tt.id, Pass: true})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestFinalizeRequiresManager(t *testing.T) {
	c := newClassroom(t)
	c.student(t, "0xs1", "Alice")
	p := c.create(t, professor, "0xs1")

	_, err := c.finalizer.FinalizeResult(context.Background(), commands.FinalizeCommand{Caller: "0xs1", PresentationID: p.ID})
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	_, err = c.finalizer.FinalizeResult(context.Background(), commands.FinalizeCommand{Caller: professor, PresentationID: 555})
	if !errors.Is(err, domainerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFinalizeWithoutVotesTies(t *testing.T) {
	c := newClassroom(t)
	c.student(t, "0xs1", "Alice")
	p := c.create(t, professor, "0xs1")

	result, err := c.finalizer.FinalizeResult(context.Background(), commands.FinalizeCommand{Caller: professor, PresentationID: p.ID})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if result.Presentation.Result != entities.ResultTiePendingOverride || result.Tally.Participating != 0 {
		t.Fatalf("expected empty tally to tie, got %s %+v", result.Presentation.Result, result.Tally)
	}
}

// assertUnchanged re-reads presentation id and the outbox and fails if either
// differs from the snapshot taken before a rejected call.
func (c classroom) assertUnchanged(t *testing.T, id int64, before entities.Presentation, outboxBefore int) {
	t.Helper()
	after, err := c.store.GetPresentation(context.Background(), id)
	if err != nil {
		t.Fatalf("reload presentation failed: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("rejected call changed presentation:\nbefore %+v\nafter  %+v", before, after)
	}
	pending, _ := c.store.ListPendingOutbox(context.Background(), 100)
	if len(pending) != outboxBefore {
		t.Fatalf("rejected call wrote outbox rows: before %d, after %d", outboxBefore, len(pending))
	}
}

func (c classroom) rejectAllOnTerminal(t *testing.T, id int64) {
	t.Helper()
	ctx := context.Background()
	before, err := c.store.GetPresentation(ctx, id)
	if err != nil {
		t.Fatalf("load presentation failed: %v", err)
	}
	if !before.Result.Terminal() {
		t.Fatalf("expected a terminal presentation, got %s", before.Result)
	}
	pending, _ := c.store.ListPendingOutbox(ctx, 100)
	outboxBefore := len(pending)

	attempts := []struct {
		name string
		call func() error
	}{
		{name: "professor vote", call: func() error {
			_, err := c.votes.VoteProfessor(ctx, commands.CastVoteCommand{Caller: professor, PresentationID: id, Pass: false})
			return err
		}},
		{name: "ta vote", call: func() error {
			_, err := c.votes.VoteTA(ctx, commands.CastVoteCommand{Caller: "0xta1", PresentationID: id, Pass: false})
			return err
		}},
		{name: "student vote", call: func() error {
			_, err := c.votes.VoteAsStudent(ctx, commands.CastVoteCommand{Caller: "0xs1", PresentationID: id, Pass: false})
			return err
		}},
		{name: "finalize", call: func() error {
			_, err := c.finalizer.FinalizeResult(ctx, commands.FinalizeCommand{Caller: professor, PresentationID: id})
			return err
		}},
		{name: "override", call: func() error {
			_, err := c.finalizer.ProfessorOverride(ctx, commands.OverrideCommand{Caller: professor, PresentationID: id, Pass: false})
			return err
		}},
	}
	for _, attempt := range attempts {
		if err := attempt.call(); !errors.Is(err, domainerrors.ErrInvalidState) {
			t.Fatalf("%s on terminal presentation: expected ErrInvalidState, got %v", attempt.name, err)
		}
		c.assertUnchanged(t, id, before, outboxBefore)
	}
}

func TestSingleTAUnanimousPassLifecycle(t *testing.T) {
	c := newClassroom(t)
	ctx := context.Background()
	if slot := c.ta(t, "0xta1", "Tom").TASlot; slot != 1 {
		t.Fatalf("expected ta slot 1, got %d", slot)
	}
	c.student(t, "0xs1", "Alice")
	c.student(t, "0xs2", "Bob")
	p := c.create(t, professor, "0xs1")

	c.vote(t, "professor", professor, p.ID, true)
	c.vote(t, "ta", "0xta1", p.ID, true)
	c.vote(t, "student", "0xs2", p.ID, true)

	result, err := c.finalizer.FinalizeResult(ctx, commands.FinalizeCommand{Caller: professor, PresentationID: p.ID})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if result.Presentation.Result != entities.ResultPass {
		t.Fatalf("expected PASS, got %s", result.Presentation.Result)
	}
	if result.Tally != (entities.Tally{PassBlocks: 3, FailBlocks: 0, Participating: 3}) {
		t.Fatalf("expected 3 pass blocks with ta slot 2 absent, got %+v", result.Tally)
	}

	events := c.events(t, commands.EventResultFinalized)
	if len(events) != 1 || events[0].Data.PresentationID != p.ID || events[0].Data.Result != "PASS" {
		t.Fatalf("expected finalize notification (%d, PASS), got %+v", p.ID, events)
	}

	c.rejectAllOnTerminal(t, p.ID)
}

func TestTwoTwoTieResolvedByOverride(t *testing.T) {
	c := newClassroom(t)
	ctx := context.Background()
	c.ta(t, "0xta1", "Tom")
	c.ta(t, "0xta2", "Tina")
	c.student(t, "0xs1", "Alice")
	c.student(t, "0xs2", "Bob")
	p := c.create(t, professor, "0xs1")

	c.vote(t, "professor", professor, p.ID, true)
	c.vote(t, "ta", "0xta1", p.ID, true)
	c.vote(t, "ta", "0xta2", p.ID, false)
	c.vote(t, "student", "0xs2", p.ID, false)

	tied, err := c.finalizer.FinalizeResult(ctx, commands.FinalizeCommand{Caller: professor, PresentationID: p.ID})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if tied.Presentation.Result != entities.ResultTiePendingOverride {
		t.Fatalf("expected TIE_PENDING_OVERRIDE, got %s", tied.Presentation.Result)
	}
	if tied.Tally != (entities.Tally{PassBlocks: 2, FailBlocks: 2, Participating: 4}) {
		t.Fatalf("expected 2:2 tally, got %+v", tied.Tally)
	}

	overridden, err := c.finalizer.ProfessorOverride(ctx, commands.OverrideCommand{Caller: professor, PresentationID: p.ID, Pass: true})
	if err != nil {
		t.Fatalf("override failed: %v", err)
	}
	if overridden.Presentation.Result != entities.ResultPass {
		t.Fatalf("expected PASS after override, got %s", overridden.Presentation.Result)
	}
	if overridden.Tally != tied.Tally {
		t.Fatalf("expected override to report the recorded tally %+v, got %+v", tied.Tally, overridden.Tally)
	}

	c.rejectAllOnTerminal(t, p.ID)
}
