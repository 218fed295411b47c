package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"etlapi"
	"etlapi/internal/api/handler/request"
	"etlapi/internal/api/models"
	"etlapi/internal/api/repo"
	"etlapi/internal/etl"
	"etlapi/pkg"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// schedulerRunStore persists scheduler run rows.
type schedulerRunStore interface {
	Create(run *models.SchedulerRun) error
	Update(run *models.SchedulerRun) error
	GetAll() ([]models.SchedulerRun, error)
}

// SchedulerService records a processing intent and runs it once,
// synchronously. The run row always reaches a terminal state.
type SchedulerService struct {
	schedulerRepo schedulerRunStore
	process       func(ctx context.Context, dto request.ProcessDTO) (*etl.BatchResult, error)
	logger        zerolog.Logger
}

func NewSchedulerService() *SchedulerService {
	return &SchedulerService{
		schedulerRepo: repo.NewSchedulerRepository(),
		process:       NewProcessService().Process,
		logger:        etlapi.Logger,
	}
}

// ValidateCron checks a cron expression against the standard five-field
// format.
func ValidateCron(expression string) error {
	_, err := cron.ParseStandard(expression)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expression, err)
	}
	return nil
}

// Schedule inserts a Scheduled run row, executes the processor and moves the
// row to Completed or Failed with the outcome embedded in Details.
func (slf *SchedulerService) Schedule(ctx context.Context, dto request.ScheduleDTO) (*models.SchedulerRun, error) {
	if err := ValidateCron(dto.CronExpression); err != nil {
		return nil, err
	}

	run := models.SchedulerRun{
		SchedulerName:  dto.SchedulerName,
		CronExpression: dto.CronExpression,
		TargetTable:    dto.TargetTable,
		WarehouseID:    dto.WarehouseID,
		StartDate:      dto.StartDate,
		EndDate:        dto.EndDate,
		DateColumn:     dto.DateColumn,
		ProcessLogic:   dto.ProcessLogic,
		Status:         models.RunStatusScheduled,
	}
	if err := slf.schedulerRepo.Create(&run); err != nil {
		slf.logger.Error().Err(err).Str("scheduler", dto.SchedulerName).Msg("Failed to record scheduler run")
		return nil, err
	}

	result, err := slf.process(ctx, request.ProcessDTO{
		WarehouseID: dto.WarehouseID,
		TargetTable: dto.TargetTable,
		StartDate:   dto.StartDate,
		EndDate:     dto.EndDate,
		DateColumn:  dto.DateColumn,
	})

	run.EndDateTime = pkg.ToPtr(time.Now())
	if err != nil {
		run.Status = models.RunStatusFailed
		run.Details = err.Error()
	} else {
		run.Status = models.RunStatusCompleted
		if summary, jsonErr := json.Marshal(result); jsonErr == nil {
			run.Details = string(summary)
		} else {
			run.Details = result.Message
		}
	}

	if updateErr := slf.schedulerRepo.Update(&run); updateErr != nil {
		slf.logger.Error().Err(updateErr).Uint("runId", run.ID).Msg("Failed to update scheduler run status")
		if err == nil {
			err = updateErr
		}
	}

	slf.logger.Info().
		Uint("runId", run.ID).
		Str("status", string(run.Status)).
		Str("table", run.TargetTable).
		Msg("Scheduler run finished")

	if err != nil {
		return &run, err
	}
	return &run, nil
}

// Runs returns the scheduler run history, newest first.
func (slf *SchedulerService) Runs() ([]models.SchedulerRun, error) {
	return slf.schedulerRepo.GetAll()
}
