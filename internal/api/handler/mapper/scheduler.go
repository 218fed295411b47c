package mapper

import (
	"etlapi/internal/api/handler/response"
	"etlapi/internal/api/models"
)

type SchedulerMapper interface {
	ToRunResponse(run models.SchedulerRun) response.SchedulerRunResponse
	ToRunResponses(runs []models.SchedulerRun) []response.SchedulerRunResponse
}

// SchedulerMapperImpl implements SchedulerMapper
type SchedulerMapperImpl struct{}

func (m SchedulerMapperImpl) ToRunResponse(run models.SchedulerRun) response.SchedulerRunResponse {
	return response.SchedulerRunResponse{
		ID:             run.ID,
		SchedulerName:  run.SchedulerName,
		CronExpression: run.CronExpression,
		TargetTable:    run.TargetTable,
		WarehouseID:    run.WarehouseID,
		StartDate:      run.StartDate,
		EndDate:        run.EndDate,
		Status:         string(run.Status),
		Details:        run.Details,
		StartDateTime:  run.StartDateTime,
		EndDateTime:    run.EndDateTime,
	}
}

func (m SchedulerMapperImpl) ToRunResponses(runs []models.SchedulerRun) []response.SchedulerRunResponse {
	responses := make([]response.SchedulerRunResponse, len(runs))
	for i, r := range runs {
		responses[i] = m.ToRunResponse(r)
	}
	return responses
}

// NewSchedulerMapper creates a new instance of SchedulerMapperImpl
func NewSchedulerMapper() SchedulerMapper {
	return &SchedulerMapperImpl{}
}
