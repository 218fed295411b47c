package repo

import (
	"etlapi"
	"etlapi/internal/api/models"

	"gorm.io/gorm"
)

type WarehouseRepository struct {
	Db *gorm.DB
}

func NewWarehouseRepository() *WarehouseRepository {
	return &WarehouseRepository{Db: etlapi.DB}
}

func (slf *WarehouseRepository) FindByID(id uint) (models.WarehouseMetadata, error) {
	var metadata models.WarehouseMetadata
	err := slf.Db.First(&metadata, id).Error
	return metadata, err
}

func (slf *WarehouseRepository) FindByName(name string) (models.WarehouseMetadata, error) {
	var metadata models.WarehouseMetadata
	err := slf.Db.Where("name = ?", name).First(&metadata).Error
	return metadata, err
}

func (slf *WarehouseRepository) Create(metadata *models.WarehouseMetadata) error {
	return slf.Db.Create(metadata).Error
}

func (slf *WarehouseRepository) Update(metadata *models.WarehouseMetadata) error {
	return slf.Db.Save(metadata).Error
}

func (slf *WarehouseRepository) Delete(id uint) error {
	return slf.Db.Delete(&models.WarehouseMetadata{}, id).Error
}

func (slf *WarehouseRepository) GetAll() ([]models.WarehouseMetadata, error) {
	var metadata []models.WarehouseMetadata
	err := slf.Db.Find(&metadata).Error
	return metadata, err
}
