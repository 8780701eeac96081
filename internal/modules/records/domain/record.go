package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// HealthRecord is a server-owned measurement entry. The client only holds
// copies fetched per request.
type HealthRecord struct {
	ID         int64   `json:"id"`
	Username   string  `json:"username"`
	Steps      int     `json:"steps"`
	SleepHours float64 `json:"sleep_hours"`
	Weight     float64 `json:"weight"`
	Timestamp  string  `json:"timestamp"`

	HeartRate       *int     `json:"heart_rate,omitempty"`
	BloodPressure   *string  `json:"blood_pressure,omitempty"`
	BloodSugar      *float64 `json:"blood_sugar,omitempty"`
	BodyTemperature *float64 `json:"body_temperature,omitempty"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Time parses Timestamp. The service emits naive UTC timestamps, so values
// without a zone are read as UTC.
func (r HealthRecord) Time() (time.Time, bool) {
	raw := strings.TrimSpace(r.Timestamp)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortNewestFirst orders records by timestamp, newest first. Unparsable
// timestamps fall back to string order; ties keep the higher id first.
func SortNewestFirst(records []HealthRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		ta, okA := a.Time()
		tb, okB := b.Time()
		switch {
		case okA && okB && !ta.Equal(tb):
			return ta.After(tb)
		case !(okA && okB) && a.Timestamp != b.Timestamp:
			return a.Timestamp > b.Timestamp
		}
		return a.ID > b.ID
	})
}

// Draft is a record to be created for Username.
type Draft struct {
	Username   string  `json:"username"`
	Steps      int     `json:"steps"`
	SleepHours float64 `json:"sleep_hours"`
	Weight     float64 `json:"weight"`

	HeartRate       *int     `json:"heart_rate,omitempty"`
	BloodPressure   *string  `json:"blood_pressure,omitempty"`
	BloodSugar      *float64 `json:"blood_sugar,omitempty"`
	BodyTemperature *float64 `json:"body_temperature,omitempty"`
}

func (d Draft) Validate() error {
	if strings.TrimSpace(d.Username) == "" {
		return fmt.Errorf("username is required")
	}
	return validateMeasurements(&d.Steps, &d.SleepHours, &d.Weight, d.HeartRate, d.BloodPressure, d.BloodSugar, d.BodyTemperature)
}

// Patch carries only the fields to change; nil fields are left out of the
// request body entirely.
type Patch struct {
	Steps      *int     `json:"steps,omitempty"`
	SleepHours *float64 `json:"sleep_hours,omitempty"`
	Weight     *float64 `json:"weight,omitempty"`

	HeartRate       *int     `json:"heart_rate,omitempty"`
	BloodPressure   *string  `json:"blood_pressure,omitempty"`
	BloodSugar      *float64 `json:"blood_sugar,omitempty"`
	BodyTemperature *float64 `json:"body_temperature,omitempty"`
}

func (p Patch) Empty() bool {
	return p.Steps == nil && p.SleepHours == nil && p.Weight == nil &&
		p.HeartRate == nil && p.BloodPressure == nil && p.BloodSugar == nil && p.BodyTemperature == nil
}

func (p Patch) Validate() error {
	if p.Empty() {
		return fmt.Errorf("nothing to update")
	}
	return validateMeasurements(p.Steps, p.SleepHours, p.Weight, p.HeartRate, p.BloodPressure, p.BloodSugar, p.BodyTemperature)
}

func validateMeasurements(steps *int, sleep, weight *float64, heartRate *int, pressure *string, sugar, temperature *float64) error {
	if steps != nil && *steps < 0 {
		return fmt.Errorf("steps must be non-negative")
	}
	if sleep != nil && (*sleep < 0 || *sleep > 24) {
		return fmt.Errorf("sleep hours must be between 0 and 24")
	}
	if weight != nil && *weight < 0 {
		return fmt.Errorf("weight must be non-negative")
	}
	if heartRate != nil && *heartRate < 0 {
		return fmt.Errorf("heart rate must be non-negative")
	}
	if pressure != nil && !validBloodPressure(*pressure) {
		return fmt.Errorf("blood pressure must look like 120/80")
	}
	if sugar != nil && *sugar < 0 {
		return fmt.Errorf("blood sugar must be non-negative")
	}
	if temperature != nil && *temperature < 0 {
		return fmt.Errorf("body temperature must be non-negative")
	}
	return nil
}

func validBloodPressure(v string) bool {
	var systolic, diastolic int
	n, err := fmt.Sscanf(strings.TrimSpace(v), "%d/%d", &systolic, &diastolic)
	return err == nil && n == 2 && systolic > 0 && diastolic > 0
}
