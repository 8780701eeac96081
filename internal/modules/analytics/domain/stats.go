package domain

// Stats is the service-computed aggregate for one user. Read only; it may lag
// behind the record set.
type Stats struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	TotalSteps   int64   `json:"total_steps"`
	RecordCount  int     `json:"record_count"`
	AverageSteps float64 `json:"average_steps"`
}
