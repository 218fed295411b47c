package request

type ProcessDTO struct {
	WarehouseID uint   `json:"warehouseId" validate:"required"`
	TargetTable string `json:"targetTable" validate:"required"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	DateColumn  string `json:"dateColumn"`
}

type ScheduleDTO struct {
	SchedulerName  string `json:"schedulerName" validate:"required"`
	CronExpression string `json:"cronExpression" validate:"required"`
	WarehouseID    uint   `json:"warehouseId" validate:"required"`
	TargetTable    string `json:"targetTable" validate:"required"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	DateColumn     string `json:"dateColumn"`
	ProcessLogic   string `json:"processLogic"`
}
