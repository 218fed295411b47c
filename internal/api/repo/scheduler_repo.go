package repo

import (
	"etlapi"
	"etlapi/internal/api/models"

	"gorm.io/gorm"
)

type SchedulerRepository struct {
	Db *gorm.DB
}

func NewSchedulerRepository() *SchedulerRepository {
	return &SchedulerRepository{Db: etlapi.DB}
}

func (slf *SchedulerRepository) Create(run *models.SchedulerRun) error {
	return slf.Db.Create(run).Error
}

func (slf *SchedulerRepository) Update(run *models.SchedulerRun) error {
	return slf.Db.Save(run).Error
}

func (slf *SchedulerRepository) FindByID(id uint) (models.SchedulerRun, error) {
	var run models.SchedulerRun
	err := slf.Db.First(&run, id).Error
	return run, err
}

func (slf *SchedulerRepository) GetAll() ([]models.SchedulerRun, error) {
	var runs []models.SchedulerRun
	err := slf.Db.Order("start_date_time DESC").Find(&runs).Error
	return runs, err
}

func (slf *SchedulerRepository) FindByTargetTable(table string) ([]models.SchedulerRun, error) {
	var runs []models.SchedulerRun
	err := slf.Db.Where("target_table = ?", table).Order("start_date_time DESC").Find(&runs).Error
	return runs, err
}
