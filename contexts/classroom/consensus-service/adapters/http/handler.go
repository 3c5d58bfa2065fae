package httpadapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"classconsensus/contexts/classroom/consensus-service/application/commands"
	"classconsensus/contexts/classroom/consensus-service/application/queries"
	"classconsensus/contexts/classroom/consensus-service/domain/entities"
	domainerrors "classconsensus/contexts/classroom/consensus-service/domain/errors"
	"classconsensus/contexts/classroom/consensus-service/domain/services"
	httptransport "classconsensus/contexts/classroom/consensus-service/transport/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Handler struct {
	Registry      commands.RegistryUseCase
	Presentations commands.PresentationUseCase
	Votes         commands.VoteUseCase
	Finalizer     commands.FinalizeUseCase
	Roles         queries.RoleLookupUseCase
	Views         queries.PresentationQueryUseCase
	Logger        *slog.Logger
}

func (h Handler) RegisterStudentHandler(
	ctx context.Context,
	caller string,
	req httptransport.RegisterStudentRequest,
) (httptransport.IdentityResponse, error) {
	if err := validateRequest(req); err != nil {
		return httptransport.IdentityResponse{}, err
	}
	identity, err := h.Registry.RegisterStudent(ctx, commands.RegisterStudentCommand{
		Caller: caller,
		Name:   req.Name,
	})
	if err != nil {
		return httptransport.IdentityResponse{}, err
	}
	return mapIdentity(identity), nil
}

func (h Handler) RegisterTAHandler(
	ctx context.Context,
	caller string,
	req httptransport.RegisterTARequest,
) (httptransport.IdentityResponse, error) {
	if err := validateRequest(req); err != nil {
		return httptransport.IdentityResponse{}, err
	}
	identity, err := h.Registry.RegisterTA(ctx, commands.RegisterTACommand{
		Caller:     caller,
		Name:       req.Name,
		SecretCode: req.SecretCode,
	})
	if err != nil {
		return httptransport.IdentityResponse{}, err
	}
	return mapIdentity(identity), nil
}

func (h Handler) GetUserRoleHandler(ctx context.Context, address string) (httptransport.IdentityResponse, error) {
	view, err := h.Roles.GetUserRole(ctx, address)
	if err != nil {
		return httptransport.IdentityResponse{}, err
	}
	return httptransport.IdentityResponse{
		Address:    view.Address,
		Role:       view.Role.String(),
		RoleCode:   int(view.Role),
		Name:       view.Name,
		Registered: view.Registered,
		TASlot:     view.TASlot,
	}, nil
}

func (h Handler) GetRosterHandler(ctx context.Context) (httptransport.RosterResponse, error) {
	roster, err := h.Roles.GetRoster(ctx)
	if err != nil {
		return httptransport.RosterResponse{}, err
	}
	return httptransport.RosterResponse{
		Professor: roster.Professor,
		TA1:       roster.TASlots[0],
		TA2:       roster.TASlots[1],
	}, nil
}

func (h Handler) ListStudentsHandler(ctx context.Context) (httptransport.StudentsResponse, error) {
	students, err := h.Views.GetAllStudents(ctx)
	if err != nil {
		return httptransport.StudentsResponse{}, err
	}
	items := make([]httptransport.StudentItem, 0, len(students))
	for _, student := range students {
		items = append(items, httptransport.StudentItem{Address: student.Address, Name: student.Name})
	}
	return httptransport.StudentsResponse{Items: items}, nil
}

func (h Handler) CreatePresentationHandler(
	ctx context.Context,
	caller string,
	req httptransport.CreatePresentationRequest,
) (httptransport.PresentationResponse, error) {
	if err := validateRequest(req); err != nil {
		return httptransport.PresentationResponse{}, err
	}
	presentation, err := h.Presentations.CreatePresentation(ctx, commands.CreatePresentationCommand{
		Caller:   caller,
		Category: req.Category,
		Student:  req.StudentAddress,
	})
	if err != nil {
		return httptransport.PresentationResponse{}, err
	}
	return h.presentationWithTally(ctx, presentation)
}

func (h Handler) ListPresentationIDsHandler(ctx context.Context) (httptransport.PresentationIDsResponse, error) {
	ids, err := h.Views.GetAllIDs(ctx)
	if err != nil {
		return httptransport.PresentationIDsResponse{}, err
	}
	return httptransport.PresentationIDsResponse{IDs: ids}, nil
}

func (h Handler) GetPresentationHandler(ctx context.Context, id int64) (httptransport.PresentationResponse, error) {
	view, err := h.Views.GetPresentationView(ctx, id)
	if err != nil {
		return httptransport.PresentationResponse{}, err
	}
	return mapPresentation(view.Presentation, view.Tally), nil
}

// VoteHandler dispatches to the vote class named by voterClass: professor, ta
// or student.
func (h Handler) VoteHandler(
	ctx context.Context,
	caller string,
	voterClass string,
	id int64,
	req httptransport.VoteRequest,
) (httptransport.PresentationResponse, error) {
	if err := validateRequest(req); err != nil {
		return httptransport.PresentationResponse{}, err
	}
	cmd := commands.CastVoteCommand{
		Caller:         caller,
		PresentationID: id,
		Pass:           *req.Pass,
	}

	var (
		presentation entities.Presentation
		err          error
	)
	switch voterClass {
	case "professor":
		presentation, err = h.Votes.VoteProfessor(ctx, cmd)
	case "ta":
		presentation, err = h.Votes.VoteTA(ctx, cmd)
	case "student":
		presentation, err = h.Votes.VoteAsStudent(ctx, cmd)
	default:
		return httptransport.PresentationResponse{}, domainerrors.ErrNotFound
	}
	if err != nil {
		return httptransport.PresentationResponse{}, err
	}
	return h.presentationWithTally(ctx, presentation)
}

func (h Handler) FinalizeHandler(ctx context.Context, caller string, id int64) (httptransport.PresentationResponse, error) {
	result, err := h.Finalizer.FinalizeResult(ctx, commands.FinalizeCommand{
		Caller:         caller,
		PresentationID: id,
	})
	if err != nil {
		return httptransport.PresentationResponse{}, err
	}
	return mapPresentation(result.Presentation, result.Tally), nil
}

func (h Handler) OverrideHandler(
	ctx context.Context,
	caller string,
	id int64,
	req httptransport.VoteRequest,
) (httptransport.PresentationResponse, error) {
	if err := validateRequest(req); err != nil {
		return httptransport.PresentationResponse{}, err
	}
	result, err := h.Finalizer.ProfessorOverride(ctx, commands.OverrideCommand{
		Caller:         caller,
		PresentationID: id,
		Pass:           *req.Pass,
	})
	if err != nil {
		return httptransport.PresentationResponse{}, err
	}
	return mapPresentation(result.Presentation, result.Tally), nil
}

// presentationWithTally maps a presentation returned by a command, deriving
// the tally from the current roster as a finalize would.
func (h Handler) presentationWithTally(
	ctx context.Context,
	presentation entities.Presentation,
) (httptransport.PresentationResponse, error) {
	roster, err := h.Roles.GetRoster(ctx)
	if err != nil {
		return httptransport.PresentationResponse{}, err
	}
	return mapPresentation(presentation, services.ComputeTally(presentation, roster)), nil
}

func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", domainerrors.ErrInvalidInput, err.Error())
	}
	return nil
}

func mapIdentity(identity entities.Identity) httptransport.IdentityResponse {
	return httptransport.IdentityResponse{
		Address:    identity.Address,
		Role:       identity.Role.String(),
		RoleCode:   int(identity.Role),
		Name:       identity.Name,
		Registered: identity.Role.Registered(),
		TASlot:     identity.TASlot,
	}
}

func mapPresentation(p entities.Presentation, tally entities.Tally) httptransport.PresentationResponse {
	response := httptransport.PresentationResponse{
		ID:             p.ID,
		Category:       p.Category,
		StudentName:    p.StudentName,
		StudentAddress: p.StudentAddress,
		CreatedAt:      p.CreatedAt.UTC().Format(time.RFC3339),
		Result:         p.Result.String(),
		ResultCode:     int(p.Result),
		ProfessorVote:  p.ProfessorVote.String(),
		TA1Vote:        p.TAVotes[0].String(),
		TA2Vote:        p.TAVotes[1].String(),
		StudentPass:    p.StudentPass,
		StudentFail:    p.StudentFail,
		Tally: httptransport.TallyResponse{
			PassBlocks:    tally.PassBlocks,
			FailBlocks:    tally.FailBlocks,
			Participating: tally.Participating,
		},
	}
	if studentBlock := services.StudentBlock(p.StudentPass, p.StudentFail); studentBlock.Cast() {
		response.StudentBlock = studentBlock.String()
	}
	if p.FinalizedAt != nil {
		response.FinalizedAt = p.FinalizedAt.UTC().Format(time.RFC3339)
	}
	return response
}
