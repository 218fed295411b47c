package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etlapi/internal/api/handler/request"
	"etlapi/internal/api/models"
	"etlapi/internal/etl"
)

func TestValidateCron(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		valid      bool
	}{
		{"every five minutes", "*/5 * * * *", true},
		{"daily at midnight", "0 0 * * *", true},
		{"weekdays at 6am", "0 6 * * 1-5", true},
		{"macro", "@daily", true},
		{"too few fields", "* * *", false},
		{"bad minute", "61 * * * *", false},
		{"garbage", "whenever", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCron(tt.expression)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

// fakeRunStore keeps scheduler run rows in memory and records the status
// each Create and Update call carried.
type fakeRunStore struct {
	runs     []models.SchedulerRun
	statuses []models.RunStatus
}

func (f *fakeRunStore) Create(run *models.SchedulerRun) error {
	run.ID = uint(len(f.runs) + 1)
	f.runs = append(f.runs, *run)
	f.statuses = append(f.statuses, run.Status)
	return nil
}

func (f *fakeRunStore) Update(run *models.SchedulerRun) error {
	f.statuses = append(f.statuses, run.Status)
	for i := range f.runs {
		if f.runs[i].ID == run.ID {
			f.runs[i] = *run
		}
	}
	return nil
}

func (f *fakeRunStore) GetAll() ([]models.SchedulerRun, error) {
	return f.runs, nil
}

func scheduleDTO() request.ScheduleDTO {
	return request.ScheduleDTO{
		SchedulerName:  "nightly-claims",
		CronExpression: "0 2 * * *",
		WarehouseID:    1,
		TargetTable:    "claims",
	}
}

func TestScheduleFailedRunIsTerminal(t *testing.T) {
	store := &fakeRunStore{}
	svc := &SchedulerService{
		schedulerRepo: store,
		process: func(ctx context.Context, dto request.ProcessDTO) (*etl.BatchResult, error) {
			return nil, &etl.ConfigError{Msg: "no mappings declared for target table claims"}
		},
		logger: zerolog.Nop(),
	}

	run, err := svc.Schedule(context.Background(), scheduleDTO())
	require.Error(t, err)
	require.NotNil(t, run)
	assert.Equal(t, models.RunStatusFailed, run.Status)
	assert.Contains(t, run.Details, "no mappings declared")
	require.NotNil(t, run.EndDateTime)
	// The row is created Scheduled, then moved to its terminal state.
	assert.Equal(t, []models.RunStatus{models.RunStatusScheduled, models.RunStatusFailed}, store.statuses)
}

func TestScheduleCompletedRunEmbedsResult(t *testing.T) {
	store := &fakeRunStore{}
	svc := &SchedulerService{
		schedulerRepo: store,
		process: func(ctx context.Context, dto request.ProcessDTO) (*etl.BatchResult, error) {
			return &etl.BatchResult{Message: "3 rows inserted into claims", Inserted: 3}, nil
		},
		logger: zerolog.Nop(),
	}

	run, err := svc.Schedule(context.Background(), scheduleDTO())
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Contains(t, run.Details, "3 rows inserted into claims")
	assert.Equal(t, []models.RunStatus{models.RunStatusScheduled, models.RunStatusCompleted}, store.statuses)
}

func TestScheduleRejectsInvalidCron(t *testing.T) {
	store := &fakeRunStore{}
	svc := &SchedulerService{schedulerRepo: store, logger: zerolog.Nop()}

	dto := scheduleDTO()
	dto.CronExpression = "61 * * * *"
	_, err := svc.Schedule(context.Background(), dto)
	require.Error(t, err)
	assert.Empty(t, store.runs)
}
