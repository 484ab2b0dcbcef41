package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"care-tasks.com/care-tasks/internal/constants"
	dto "care-tasks.com/care-tasks/internal/data_models"
	apperrors "care-tasks.com/care-tasks/internal/errors"
)

func at(hour int) *time.Time {
	t := time.Date(2026, 3, 2, hour, 0, 0, 0, time.UTC)
	return &t
}

func TestAttendance_RecordClockEvent(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	acc := env.account(t, constants.RoleOwner)
	maria := env.enroll(t, acc.ID, "Maria Souza", constants.RoleGeneralServices)

	record, err := env.attendance.RecordClockEvent(ctx, dto.ClockEventInput{MemberID: maria.ID})
	require.NoError(t, err)
	assert.Equal(t, constants.ClockIn, record.EventType)
	assert.Equal(t, "Maria Souza", record.MemberName)
	assert.Equal(t, acc.ID, record.AccountID)
	assert.WithinDuration(t, time.Now(), record.RecordedAt, time.Minute)
	assert.Nil(t, record.Note)

	_, err = env.attendance.RecordClockEvent(ctx, dto.ClockEventInput{MemberID: maria.ID, EventType: "lunch"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = env.attendance.RecordClockEvent(ctx, dto.ClockEventInput{MemberID: "missing"})
	assert.ErrorIs(t, err, apperrors.ErrMemberNotFound)
}

func TestAttendance_ImportCollectsRowErrors(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	acc := env.account(t, constants.RoleOwner)
	env.enroll(t, acc.ID, "Maria Souza", constants.RoleGeneralServices)
	env.enroll(t, acc.ID, "Ana Paula", constants.RoleNursing)

	rows := []dto.ClockImportRow{
		{Line: 2, Name: "Maria Souza", EventType: "entrada", At: at(7)},
		{Line: 3, Name: "ana paula", Role: "enfermaria", At: at(7)},
		{Line: 4, Name: "Pedro Alves", At: at(8)},
		{Line: 5, Name: "MARIA SOUZA", EventType: "intervalo", At: at(12)},
		{Line: 6, Name: "Ana  Paula", EventType: "saida", Note: "plantão", At: at(19)},
	}

	result, err := env.attendance.ImportClockEvents(ctx, rows, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Inserted)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, dto.ImportError{Line: 4, Name: "Pedro Alves", Reason: "member not found"}, result.Errors[0])

	records, err := env.attendance.ListClockEvents(ctx, dto.ClockFilter{})
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, constants.ClockOut, records[0].EventType)
	assert.Equal(t, "Ana Paula", records[0].MemberName)
	assert.Equal(t, constants.ClockBreak, records[1].EventType)
}

func TestAttendance_ImportRejectsBadRows(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	first := env.account(t, constants.RoleOwner)
	second := env.account(t, constants.RoleOwner)
	env.enroll(t, first.ID, "José Santos", constants.RoleGeneralServices)
	env.enroll(t, second.ID, "Jose Santos", constants.RoleNursing)
	env.enroll(t, first.ID, "Ana Paula", constants.RoleNursing)
	recorder := env.account(t, constants.RoleOwner)

	rows := []dto.ClockImportRow{
		{Line: 2, Name: "  "},
		{Line: 3, Name: "Jose Santos"},
		{Line: 4, Name: "Ana Paula", Role: "cozinha"},
		{Line: 5, Name: "Ana Paula", Role: "asg"},
		{Line: 6, Name: "Ana Paula", EventType: "lunch"},
	}

	result, err := env.attendance.ImportClockEvents(ctx, rows, recorder.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)

	reasons := make(map[int]string, len(result.Errors))
	for _, e := range result.Errors {
		reasons[e.Line] = e.Reason
	}
	assert.Equal(t, map[int]string{
		2: "name is required",
		3: "ambiguous member name",
		4: "invalid role",
		5: "role does not match member",
		6: "invalid clock event type",
	}, reasons)
}

func TestAttendance_ImportPrefersRecordingAccount(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	first := env.account(t, constants.RoleNursing)
	second := env.account(t, constants.RoleNursing)
	for _, acc := range []string{first.ID, second.ID} {
		_, err := env.roster.ListByAccountAndRole(ctx, acc, constants.RoleNursing, "")
		require.NoError(t, err)
	}
	onlySecond := env.enroll(t, second.ID, "Rita Alves", constants.RoleNursing)

	result, err := env.attendance.ImportClockEvents(ctx, []dto.ClockImportRow{
		{Line: 2, Name: "Enf. Carla Mendes", At: at(7)},
		{Line: 3, Name: "enf carla mendes", At: at(8)},
		{Line: 4, Name: "Rita Alves", At: at(9)},
	}, first.ID)
	require.NoError(t, err)
	require.Equal(t, 2, result.Inserted)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Line)
	assert.Equal(t, "member not found", result.Errors[0].Reason)

	records, err := env.attendance.ListClockEvents(ctx, dto.ClockFilter{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, onlySecond.ID, records[0].MemberID)

	carla, err := env.roster.ResolveMember(ctx, records[1].MemberID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, carla.AccountID)
	assert.Equal(t, "Enf. Carla Mendes", carla.Name)

	result, err = env.attendance.ImportClockEvents(ctx, []dto.ClockImportRow{
		{Line: 2, Name: "Enf. Carla Mendes"},
	}, env.account(t, constants.RoleOwner).ID)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "ambiguous member name", result.Errors[0].Reason)
}

func TestAttendance_ListFiltersAndClamps(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	acc := env.account(t, constants.RoleOwner)
	maria := env.enroll(t, acc.ID, "Maria Souza", constants.RoleGeneralServices)
	ana := env.enroll(t, acc.ID, "Ana Paula", constants.RoleNursing)

	for h := 1; h <= 8; h++ {
		_, err := env.attendance.RecordClockEvent(ctx, dto.ClockEventInput{MemberID: maria.ID, At: at(h)})
		require.NoError(t, err)
	}
	_, err := env.attendance.RecordClockEvent(ctx, dto.ClockEventInput{MemberID: ana.ID, At: at(10)})
	require.NoError(t, err)

	records, err := env.attendance.ListClockEvents(ctx, dto.ClockFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, records, constants.MinClockListLimit)
	assert.Equal(t, ana.ID, records[0].MemberID)

	records, err = env.attendance.ListClockEvents(ctx, dto.ClockFilter{Role: constants.RoleGeneralServices, Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, records, 8)
	for i := 1; i < len(records); i++ {
		assert.True(t, records[i-1].RecordedAt.After(records[i].RecordedAt))
	}

	records, err = env.attendance.ListClockEvents(ctx, dto.ClockFilter{MemberID: ana.ID})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ana Paula", records[0].MemberName)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 30, clampLimit(0))
	assert.Equal(t, 5, clampLimit(-3))
	assert.Equal(t, 5, clampLimit(2))
	assert.Equal(t, 50, clampLimit(50))
	assert.Equal(t, 200, clampLimit(500))
}
