package response

import "time"

type SchedulerRunResponse struct {
	ID             uint       `json:"id"`
	SchedulerName  string     `json:"schedulerName"`
	CronExpression string     `json:"cronExpression"`
	TargetTable    string     `json:"targetTable"`
	WarehouseID    uint       `json:"warehouseId"`
	StartDate      string     `json:"startDate,omitempty"`
	EndDate        string     `json:"endDate,omitempty"`
	Status         string     `json:"status"`
	Details        string     `json:"details,omitempty"`
	StartDateTime  time.Time  `json:"startDateTime"`
	EndDateTime    *time.Time `json:"endDateTime,omitempty"`
}
