package dto

import recordsdto "healthdash/internal/modules/records/dto"

type StatsOutput struct {
	Username     string
	TotalSteps   int64
	RecordCount  int
	AverageSteps float64
}

// DashboardOutput is the record list plus stats. Stats is nil when there are
// no records, or when StatsPending is set because the service has not
// computed them yet.
type DashboardOutput struct {
	Username     string
	Records      []recordsdto.RecordOutput
	Stats        *StatsOutput
	StatsPending bool
}
