package service

import (
	"context"

	"etlapi"
	"etlapi/internal/api/handler/request"
	"etlapi/internal/etl"

	"github.com/rs/zerolog"
)

// ProcessService runs the target table processor against a configured
// warehouse.
type ProcessService struct {
	warehouseService *WarehouseService
	logger           zerolog.Logger
}

func NewProcessService() *ProcessService {
	return &ProcessService{
		warehouseService: NewWarehouseService(),
		logger:           etlapi.Logger,
	}
}

func (slf *ProcessService) Process(ctx context.Context, dto request.ProcessDTO) (*etl.BatchResult, error) {
	cfg, err := slf.warehouseService.ConnectionConfig(dto.WarehouseID)
	if err != nil {
		return nil, err
	}
	store, err := etl.OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	processor := etl.NewProcessor(store, slf.logger)
	return processor.Run(ctx, etl.ProcessRequest{
		TargetTable: dto.TargetTable,
		StartDate:   dto.StartDate,
		EndDate:     dto.EndDate,
		DateColumn:  dto.DateColumn,
	})
}
