package mapper

import (
	"etlapi/internal/api/handler/request"
	"etlapi/internal/api/handler/response"
	"etlapi/internal/api/models"
)

type WarehouseMapper interface {
	CreateToEntity(req request.CreateWarehouse) models.WarehouseMetadata
	PatchEntity(req request.UpdateWarehouse, metadata *models.WarehouseMetadata)
	ToWarehouseResponse(metadata models.WarehouseMetadata) response.Warehouse
	ToWarehouseResponses(entities []models.WarehouseMetadata) []response.Warehouse
}

// WarehouseMapperImpl implements WarehouseMapper
type WarehouseMapperImpl struct{}

func (m WarehouseMapperImpl) CreateToEntity(req request.CreateWarehouse) models.WarehouseMetadata {
	return models.WarehouseMetadata{
		Name:         req.Name,
		Host:         req.Host,
		Port:         req.Port,
		User:         req.User,
		Password:     req.Password,
		DatabaseName: req.DatabaseName,
		SSLMode:      req.SSLMode,
		DbType:       models.DBType(req.DbType),
	}
}

func (m WarehouseMapperImpl) PatchEntity(req request.UpdateWarehouse, metadata *models.WarehouseMetadata) {
	if req.Name != nil {
		metadata.Name = *req.Name
	}
	if req.Host != nil {
		metadata.Host = *req.Host
	}
	if req.Port != nil {
		metadata.Port = *req.Port
	}
	if req.User != nil {
		metadata.User = *req.User
	}
	if req.Password != nil {
		metadata.Password = *req.Password
	}
	if req.DatabaseName != nil {
		metadata.DatabaseName = *req.DatabaseName
	}
	if req.SSLMode != nil {
		metadata.SSLMode = *req.SSLMode
	}
	if req.DbType != nil {
		metadata.DbType = models.DBType(*req.DbType)
	}
}

func (m WarehouseMapperImpl) ToWarehouseResponse(metadata models.WarehouseMetadata) response.Warehouse {
	return response.Warehouse{
		ID:           metadata.ID,
		Name:         metadata.Name,
		Host:         metadata.Host,
		Port:         metadata.Port,
		User:         metadata.User,
		DatabaseName: metadata.DatabaseName,
		SSLMode:      metadata.SSLMode,
		DbType:       string(metadata.DbType),
	}
}

func (m WarehouseMapperImpl) ToWarehouseResponses(entities []models.WarehouseMetadata) []response.Warehouse {
	responses := make([]response.Warehouse, len(entities))
	for i, e := range entities {
		responses[i] = m.ToWarehouseResponse(e)
	}
	return responses
}

// NewWarehouseMapper creates a new instance of WarehouseMapperImpl
func NewWarehouseMapper() WarehouseMapper {
	return &WarehouseMapperImpl{}
}
