package queries

import (
	"context"

	"classconsensus/contexts/classroom/consensus-service/domain/entities"
	"classconsensus/contexts/classroom/consensus-service/ports"
)

// RoleView mirrors the (role, name, registered) triple reported for any
// address. Unknown addresses report RoleNone and Registered=false.
type RoleView struct {
	Address    string
	Role       entities.Role
	Name       string
	Registered bool
	TASlot     int
}

type RoleLookupUseCase struct {
	Repository ports.Repository
}

func (uc RoleLookupUseCase) GetUserRole(ctx context.Context, address string) (RoleView, error) {
	address = entities.NormalizeAddress(address)
	view := RoleView{Address: address, Role: entities.RoleNone}
	if address == "" {
		return view, nil
	}
	identity, found, err := uc.Repository.GetIdentity(ctx, address)
	if err != nil {
		return RoleView{}, err
	}
	if !found {
		return view, nil
	}
	view.Role = identity.Role
	view.Name = identity.Name
	view.Registered = identity.Role.Registered()
	view.TASlot = identity.TASlot
	return view, nil
}

func (uc RoleLookupUseCase) GetRoster(ctx context.Context) (entities.Roster, error) {
	return uc.Repository.GetRoster(ctx)
}
