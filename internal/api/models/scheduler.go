package models

import "time"

// RunStatus represents the lifecycle state of a scheduler run.
type RunStatus string

const (
	RunStatusScheduled RunStatus = "Scheduled"
	RunStatusCompleted RunStatus = "Completed"
	RunStatusFailed    RunStatus = "Failed"
)

// SchedulerRun records one "schedule and run now" invocation of the target
// table processor. The run starts as Scheduled and always reaches a terminal
// state: Completed when processing returned a batch result, Failed when it
// returned an error. The error or batch summary is embedded in Details.
type SchedulerRun struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SchedulerName  string    `gorm:"not null" json:"schedulerName"`
	CronExpression string    `gorm:"column:cron_expression" json:"cronExpression"`
	TargetTable    string    `gorm:"not null" json:"targetTable"`
	WarehouseID    uint      `gorm:"not null" json:"warehouseId"`
	StartDate      string    `json:"startDate,omitempty"`
	EndDate        string    `json:"endDate,omitempty"`
	DateColumn     string    `json:"dateColumn,omitempty"`
	ProcessLogic   string    `json:"processLogic,omitempty"`
	Status         RunStatus `gorm:"type:varchar(20);default:Scheduled" json:"status"`
	Details        string    `gorm:"type:text" json:"details,omitempty"`
	StartDateTime  time.Time `gorm:"autoCreateTime;column:start_date_time" json:"startDateTime"`
	EndDateTime    *time.Time `gorm:"column:end_date_time" json:"endDateTime,omitempty"`
}

func (SchedulerRun) TableName() string {
	return "scheduler_details"
}
