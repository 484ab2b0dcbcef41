package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"care-tasks.com/care-tasks/internal/constants"
	dto "care-tasks.com/care-tasks/internal/data_models"
	apperrors "care-tasks.com/care-tasks/internal/errors"
	"care-tasks.com/care-tasks/internal/identity"
	model "care-tasks.com/care-tasks/internal/models"
)

var ownerCaller = identity.Caller{ID: "owner", Role: constants.RoleOwner}

func TestExecution_SetStatusIsIdempotent(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	acc := env.account(t, constants.RoleOwner)
	sup := env.enroll(t, acc.ID, "Vitória Barboza Silveira", constants.RoleSupervisor)

	taskID, err := env.tasks.CreateTask(ctx, dto.CreateTaskInput{Title: "Conferir medicação", TargetRole: "supervisor"})
	require.NoError(t, err)

	in := dto.SetExecutionStatusInput{
		TaskID:        taskID,
		MemberID:      sup.ID,
		Status:        "completed",
		Note:          "ok",
		AttachmentRef: "uploads/foto.jpg",
	}
	first, err := env.executions.SetExecutionStatus(ctx, ownerCaller, in)
	require.NoError(t, err)
	second, err := env.executions.SetExecutionStatus(ctx, ownerCaller, in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.EqualValues(t, 1, env.countExecutions(t, taskID))
	assert.Equal(t, constants.StatusCompleted, second.Status)
	assert.Equal(t, "ok", second.Note)
	require.NotNil(t, second.AttachmentRef)
	assert.Equal(t, "uploads/foto.jpg", *second.AttachmentRef)
	assert.NotNil(t, second.CompletedAt)
	assert.Equal(t, sup.Name, second.MemberName)
}

func TestExecution_PendingClearsCompletion(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	acc := env.account(t, constants.RoleOwner)
	sup := env.enroll(t, acc.ID, "Vitória Barboza Silveira", constants.RoleSupervisor)
	taskID, err := env.tasks.CreateTask(ctx, dto.CreateTaskInput{Title: "Relatório", TargetRole: "supervisor"})
	require.NoError(t, err)

	done, err := env.executions.SetExecutionStatus(ctx, ownerCaller, dto.SetExecutionStatusInput{
		TaskID: taskID, MemberID: sup.ID, Status: "nao_realizada",
	})
	require.NoError(t, err)
	assert.Equal(t, constants.StatusNotDone, done.Status)
	assert.NotNil(t, done.CompletedAt)

	reopened, err := env.executions.SetExecutionStatus(ctx, ownerCaller, dto.SetExecutionStatusInput{
		TaskID: taskID, MemberID: sup.ID, Status: "pending",
	})
	require.NoError(t, err)
	assert.Equal(t, constants.StatusPending, reopened.Status)
	assert.Nil(t, reopened.CompletedAt)
}

func TestExecution_RejectsInvalidInput(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	acc := env.account(t, constants.RoleOwner)
	sup := env.enroll(t, acc.ID, "Vitória Barboza Silveira", constants.RoleSupervisor)
	taskID, err := env.tasks.CreateTask(ctx, dto.CreateTaskInput{Title: "Relatório", TargetRole: "supervisor"})
	require.NoError(t, err)

	_, err = env.executions.SetExecutionStatus(ctx, ownerCaller, dto.SetExecutionStatusInput{
		TaskID: taskID, MemberID: sup.ID, Status: "done",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)

	_, err = env.executions.SetExecutionStatus(ctx, ownerCaller, dto.SetExecutionStatusInput{
		TaskID: taskID, Status: "completed",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = env.executions.SetExecutionStatus(ctx, ownerCaller, dto.SetExecutionStatusInput{
		TaskID: "missing", MemberID: sup.ID, Status: "completed",
	})
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
}

func TestExecution_NonPrivilegedCallerScopedToOwnTeam(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	mine := env.account(t, constants.RoleGeneralServices)
	other := env.account(t, constants.RoleGeneralServices)
	own := env.enroll(t, mine.ID, "Maria Souza", constants.RoleGeneralServices)
	foreign := env.enroll(t, other.ID, "João Lima", constants.RoleGeneralServices)

	taskID, err := env.tasks.CreateTask(ctx, dto.CreateTaskInput{
		Title: "Lavar corredor", TargetRole: "asg", DestinationMode: "team",
	})
	require.NoError(t, err)

	_, err = env.executions.SetExecutionStatus(ctx, mine, dto.SetExecutionStatusInput{
		TaskID: taskID, MemberID: foreign.ID, Status: "completed",
	})
	assert.ErrorIs(t, err, apperrors.ErrAuthorization)

	exec, err := env.executions.SetExecutionStatus(ctx, mine, dto.SetExecutionStatusInput{
		TaskID: taskID, MemberID: own.ID, Status: "completed", MemberNameHint: "Maria S.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria S.", exec.MemberName)
	assert.EqualValues(t, 2, env.countExecutions(t, taskID))
}

func TestExecution_BackfillsPrimaryAssigneeOnlyOnce(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	acc := env.account(t, constants.RoleOwner)
	a := env.enroll(t, acc.ID, "Maria Souza", constants.RoleGeneralServices)
	b := env.enroll(t, acc.ID, "João Lima", constants.RoleGeneralServices)

	task := &model.Task{
		ID:              uuid.NewString(),
		Title:           "Recolher roupas",
		TargetRole:      constants.RoleGeneralServices,
		Recurrence:      constants.RecurrenceOnce,
		DestinationMode: constants.DestinationIndividual,
		CreatedAt:       time.Now().UTC(),
	}
	require.NoError(t, env.taskRepo.Create(ctx, task))

	_, err := env.executions.SetExecutionStatus(ctx, ownerCaller, dto.SetExecutionStatusInput{
		TaskID: task.ID, MemberID: a.ID, Status: "completed",
	})
	require.NoError(t, err)
	_, err = env.executions.SetExecutionStatus(ctx, ownerCaller, dto.SetExecutionStatusInput{
		TaskID: task.ID, MemberID: b.ID, Status: "completed",
	})
	require.NoError(t, err)

	stored, err := env.taskRepo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PrimaryAssigneeID)
	assert.Equal(t, a.ID, *stored.PrimaryAssigneeID)
	assert.Equal(t, a.Name, *stored.PrimaryAssigneeName)
}

func TestExecution_ConcurrentUpdatesKeepOneRow(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	acc := env.account(t, constants.RoleOwner)
	sup := env.enroll(t, acc.ID, "Vitória Barboza Silveira", constants.RoleSupervisor)
	taskID, err := env.tasks.CreateTask(ctx, dto.CreateTaskInput{Title: "Plantão", TargetRole: "supervisor"})
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := "completed"
			if i%2 == 0 {
				status = "pending"
			}
			_, err := env.executions.SetExecutionStatus(ctx, ownerCaller, dto.SetExecutionStatusInput{
				TaskID: taskID, MemberID: sup.ID, Status: status,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, env.countExecutions(t, taskID))
}

func TestExecution_ListTasksFiltersByMember(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	acc := env.account(t, constants.RoleOwner)
	maria := env.enroll(t, acc.ID, "Maria Souza", constants.RoleGeneralServices)
	joao := env.enroll(t, acc.ID, "João Lima", constants.RoleGeneralServices)

	forMaria, err := env.tasks.CreateTask(ctx, dto.CreateTaskInput{
		Title: "Limpar quarto 12", TargetRole: "asg", AssigneeIDs: []string{maria.ID},
	})
	require.NoError(t, err)
	forJoao, err := env.tasks.CreateTask(ctx, dto.CreateTaskInput{
		Title: "Limpar quarto 14", TargetRole: "asg", AssigneeIDs: []string{joao.ID},
	})
	require.NoError(t, err)
	team, err := env.tasks.CreateTask(ctx, dto.CreateTaskInput{
		Title: "Mutirão", TargetRole: "asg", DestinationMode: "team",
	})
	require.NoError(t, err)

	_, err = env.executions.SetExecutionStatus(ctx, ownerCaller, dto.SetExecutionStatusInput{
		TaskID: team, MemberID: joao.ID, Status: "completed", Note: "feito",
	})
	require.NoError(t, err)

	views, err := env.executions.ListTasks(ctx, dto.TaskFilter{MemberID: maria.ID})
	require.NoError(t, err)

	ids := map[string]dto.TaskView{}
	for _, v := range views {
		ids[v.ID] = v
	}
	assert.Contains(t, ids, forMaria)
	assert.Contains(t, ids, team)
	assert.NotContains(t, ids, forJoao)

	require.NotNil(t, ids[forMaria].CurrentExecution)
	assert.Equal(t, constants.StatusPending, ids[forMaria].CurrentExecution.Status)

	teamView := ids[team]
	assert.Equal(t, 2, teamView.ExecutionCount)
	assert.Equal(t, 1, teamView.CompletedCount)
	assert.Len(t, teamView.Destinataries, 2)
	assert.Empty(t, teamView.Validations)

	all, err := env.executions.ListTasks(ctx, dto.TaskFilter{IncludeValidations: true})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, v := range all {
		if v.ID != team {
			continue
		}
		require.Len(t, v.Validations, 1)
		assert.Equal(t, "feito", v.Validations[0].Note)
		assert.Equal(t, joao.ID, *v.Validations[0].MemberID)
	}

	nursing, err := env.executions.ListTasks(ctx, dto.TaskFilter{Role: constants.RoleNursing})
	require.NoError(t, err)
	assert.Empty(t, nursing)
}

func TestExecution_GetTask(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	acc := env.account(t, constants.RoleOwner)
	sup := env.enroll(t, acc.ID, "Vitória Barboza Silveira", constants.RoleSupervisor)
	taskID, err := env.tasks.CreateTask(ctx, dto.CreateTaskInput{Title: "Relatório", TargetRole: "supervisor"})
	require.NoError(t, err)

	view, err := env.executions.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, "Relatório", view.Title)
	require.Len(t, view.Destinataries, 1)
	assert.Equal(t, sup.Name, view.Destinataries[0].MemberName)

	_, err = env.executions.GetTask(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
