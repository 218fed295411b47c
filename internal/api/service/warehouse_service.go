package service

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"etlapi"
	"etlapi/internal/api/handler/response"
	"etlapi/internal/api/models"
	"etlapi/internal/api/repo"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type WarehouseService struct {
	warehouseRepo *repo.WarehouseRepository
	logger        zerolog.Logger
}

func NewWarehouseService() *WarehouseService {
	return &WarehouseService{
		warehouseRepo: repo.NewWarehouseRepository(),
		logger:        etlapi.Logger,
	}
}

func (slf *WarehouseService) FindAll() ([]models.WarehouseMetadata, error) {
	return slf.warehouseRepo.GetAll()
}

func (slf *WarehouseService) FindByID(id uint) (*models.WarehouseMetadata, error) {
	metadata, err := slf.warehouseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("warehouse not found")
		}
		return nil, err
	}
	return &metadata, nil
}

func (slf *WarehouseService) Create(metadata models.WarehouseMetadata) (*models.WarehouseMetadata, error) {
	if err := slf.warehouseRepo.Create(&metadata); err != nil {
		slf.logger.Error().Err(err).Str("name", metadata.Name).Msg("Failed to create warehouse metadata")
		return nil, err
	}
	slf.logger.Info().Uint("id", metadata.ID).Str("name", metadata.Name).Msg("Warehouse metadata created")
	return &metadata, nil
}

func (slf *WarehouseService) Update(id uint, patch func(*models.WarehouseMetadata)) (*models.WarehouseMetadata, error) {
	metadata, err := slf.warehouseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("warehouse not found")
		}
		return nil, err
	}

	patch(&metadata)
	if err := slf.warehouseRepo.Update(&metadata); err != nil {
		slf.logger.Error().Err(err).Uint("id", id).Msg("Failed to update warehouse metadata")
		return nil, err
	}
	return &metadata, nil
}

func (slf *WarehouseService) Delete(id uint) error {
	return slf.warehouseRepo.Delete(id)
}

// ConnectionConfig resolves the stored connection details of a warehouse.
func (slf *WarehouseService) ConnectionConfig(id uint) (models.DBConnectionConfig, error) {
	metadata, err := slf.warehouseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DBConnectionConfig{}, fmt.Errorf("warehouse %d not found", id)
		}
		return models.DBConnectionConfig{}, err
	}
	return metadata.ConnectionConfig(), nil
}

// TestDatabaseConnection tests if a warehouse connection can be established
func TestDatabaseConnection(cfg models.DBConnectionConfig) response.TestConnectionResult {
	db, err := sql.Open(cfg.GetDriverName(), cfg.BuildConnectionString())
	if err != nil {
		return response.TestConnectionResult{
			Success: false,
			Message: fmt.Sprintf("Failed to open connection: %v", err),
		}
	}
	defer db.Close()

	db.SetConnMaxLifetime(10 * time.Second)
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return response.TestConnectionResult{
			Success: false,
			Message: fmt.Sprintf("Failed to ping database: %v", err),
		}
	}

	var version string
	versionQuery := getVersionQuery(cfg.Type)
	if versionQuery != "" {
		if err := db.QueryRow(versionQuery).Scan(&version); err != nil {
			version = "Unknown"
		}
	}

	return response.TestConnectionResult{
		Success: true,
		Message: "Connection successful",
		Version: version,
	}
}

// getVersionQuery returns the version query for a database type
func getVersionQuery(dbType models.DBType) string {
	switch dbType {
	case models.DBTypePostgres, models.DBTypeMySQL:
		return "SELECT version()"
	case models.DBTypeSQLServer:
		return "SELECT @@VERSION"
	default:
		return ""
	}
}
