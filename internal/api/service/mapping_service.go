package service

import (
	"context"

	"etlapi"
	"etlapi/internal/etl"

	"github.com/rs/zerolog"
)

// MappingService turns uploaded spreadsheets into mapping tables in the
// warehouse and answers mapping table queries. One warehouse connection is
// opened per call and closed before returning.
type MappingService struct {
	warehouseService *WarehouseService
	logger           zerolog.Logger
}

func NewMappingService() *MappingService {
	return &MappingService{
		warehouseService: NewWarehouseService(),
		logger:           etlapi.Logger,
	}
}

// UploadMappingSheet reads the spreadsheet at path and builds the mapping
// table in the warehouse identified by warehouseID.
func (slf *MappingService) UploadMappingSheet(ctx context.Context, warehouseID uint, path, tableName string) (*etl.BuildResult, error) {
	sheet, err := etl.ReadSheet(path)
	if err != nil {
		return nil, err
	}

	cfg, err := slf.warehouseService.ConnectionConfig(warehouseID)
	if err != nil {
		return nil, err
	}
	store, err := etl.OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	builder := etl.NewTableBuilder(store, slf.logger)
	result, err := builder.BuildFromSheet(ctx, tableName, sheet)
	if err != nil {
		return nil, err
	}

	slf.logger.Info().
		Str("table", result.Table).
		Int("rowsLoaded", result.RowsLoaded).
		Int("failures", len(result.Failures)).
		Msg("Mapping sheet loaded")
	return result, nil
}

// UploadMappedData loads a data sheet through an existing column mapping
// table into a destination table.
func (slf *MappingService) UploadMappedData(ctx context.Context, warehouseID uint, path, mappingTable, targetTable string) (*etl.LoadResult, error) {
	sheet, err := etl.ReadSheet(path)
	if err != nil {
		return nil, err
	}

	cfg, err := slf.warehouseService.ConnectionConfig(warehouseID)
	if err != nil {
		return nil, err
	}
	store, err := etl.OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	loader := etl.NewMappedLoader(store, slf.logger)
	return loader.Load(ctx, sheet, mappingTable, targetTable)
}

// ListMappingTables returns the warehouse tables whose name marks them as
// mapping tables.
func (slf *MappingService) ListMappingTables(ctx context.Context, warehouseID uint) ([]string, error) {
	cfg, err := slf.warehouseService.ConnectionConfig(warehouseID)
	if err != nil {
		return nil, err
	}
	store, err := etl.OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return store.ListTables(ctx, "%mapping%")
}
