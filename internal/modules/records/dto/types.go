package dto

import "time"

type RecordOutput struct {
	ID         int64
	Username   string
	Steps      int
	SleepHours float64
	Weight     float64
	Timestamp  string
	RecordedAt time.Time

	HeartRate       *int
	BloodPressure   *string
	BloodSugar      *float64
	BodyTemperature *float64
}

type CreateInput struct {
	Steps      int
	SleepHours float64
	Weight     float64

	HeartRate       *int
	BloodPressure   *string
	BloodSugar      *float64
	BodyTemperature *float64
}

// UpdateInput is a partial update; nil fields are not sent.
type UpdateInput struct {
	ID         int64
	Steps      *int
	SleepHours *float64
	Weight     *float64

	HeartRate       *int
	BloodPressure   *string
	BloodSugar      *float64
	BodyTemperature *float64
}

type DeleteOutput struct {
	ID      int64
	Message string
}
