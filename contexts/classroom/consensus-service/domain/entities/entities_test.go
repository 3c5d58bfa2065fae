package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoleLabels(t *testing.T) {
	tests := []struct {
		role   Role
		label  string
		manage bool
	}{
		{role: RoleNone, label: "NONE"},
		{role: RoleStudent, label: "STUDENT"},
		{role: RoleTA, label: "TA", manage: true},
		{role: RoleProfessor, label: "PROF", manage: true},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.label, tt.role.String())
			assert.Equal(t, tt.manage, tt.role.CanManagePresentations())
			parsed, ok := ParseRole(tt.label)
			assert.True(t, ok)
			assert.Equal(t, tt.role, parsed)
		})
	}

	parsed, ok := ParseRole("professor")
	assert.True(t, ok)
	assert.Equal(t, RoleProfessor, parsed)

	_, ok = ParseRole("dean")
	assert.False(t, ok)
}

func TestRosterSlots(t *testing.T) {
	var roster Roster
	slot, ok := roster.FreeTASlot()
	assert.True(t, ok)
	assert.Equal(t, 1, slot)

	roster.TASlots[0] = "0xta1"
	slot, ok = roster.FreeTASlot()
	assert.True(t, ok)
	assert.Equal(t, 2, slot)

	roster.TASlots[1] = "0xta2"
	_, ok = roster.FreeTASlot()
	assert.False(t, ok)

	slot, ok = roster.TASlotOf(" 0xTA2 ")
	assert.True(t, ok)
	assert.Equal(t, 2, slot)

	_, ok = roster.TASlotOf("")
	assert.False(t, ok)
	assert.False(t, roster.SlotFilled(0))
	assert.False(t, roster.SlotFilled(3))
}

func TestCategoriesResolve(t *testing.T) {
	categories := NewCategories(append(append([]string(nil), DefaultCategories...), "DEMO", " "))
	assert.Equal(t, 4, categories.Len())
	assert.Equal(t, DefaultCategories, categories.Names())

	name, ok := categories.Resolve("  PAPER PRESENTATION ")
	assert.True(t, ok)
	assert.Equal(t, "PAPER PRESENTATION", name)

	_, ok = categories.Resolve("demo")
	assert.False(t, ok)
	_, ok = categories.Resolve("")
	assert.False(t, ok)
}

func TestNewPresentationStartsInProgress(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p := NewPresentation(101, "DEMO", Identity{Address: "0xs1", Name: "Alice", Role: RoleStudent}, now)

	assert.Equal(t, ResultInProgress, p.Result)
	assert.True(t, p.AcceptingVotes())
	assert.Equal(t, "Alice", p.StudentName)
	assert.Equal(t, BallotUnset, p.ProfessorVote)
	assert.Nil(t, p.FinalizedAt)
	assert.False(t, p.Result.Terminal())
	assert.True(t, ResultPass.Terminal())
	assert.True(t, ResultFail.Terminal())
	assert.False(t, ResultTiePendingOverride.Terminal())
}

func TestResultCodes(t *testing.T) {
	assert.Equal(t, 0, int(ResultInProgress))
	assert.Equal(t, 1, int(ResultPass))
	assert.Equal(t, 2, int(ResultFail))
	assert.Equal(t, 3, int(ResultTiePendingOverride))
}
