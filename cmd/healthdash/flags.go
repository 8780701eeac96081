package main

import (
	"github.com/spf13/cobra"

	recordsdto "healthdash/internal/modules/records/dto"
)

type measurementFlags struct {
	steps           int
	sleep           float64
	weight          float64
	heartRate       int
	bloodPressure   string
	bloodSugar      float64
	bodyTemperature float64
}

func (f *measurementFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.steps, "steps", 0, "step count")
	cmd.Flags().Float64Var(&f.sleep, "sleep", 0, "sleep in hours")
	cmd.Flags().Float64Var(&f.weight, "weight", 0, "weight in kg")
	cmd.Flags().IntVar(&f.heartRate, "heart-rate", 0, "resting heart rate in bpm")
	cmd.Flags().StringVar(&f.bloodPressure, "blood-pressure", "", "blood pressure, e.g. 120/80")
	cmd.Flags().Float64Var(&f.bloodSugar, "blood-sugar", 0, "blood sugar")
	cmd.Flags().Float64Var(&f.bodyTemperature, "body-temperature", 0, "body temperature in °C")
}

// optionals returns pointers only for flags the user actually passed.
func (f *measurementFlags) optionals(cmd *cobra.Command) (heartRate *int, pressure *string, sugar, temperature *float64) {
	if cmd.Flags().Changed("heart-rate") {
		heartRate = &f.heartRate
	}
	if cmd.Flags().Changed("blood-pressure") {
		pressure = &f.bloodPressure
	}
	if cmd.Flags().Changed("blood-sugar") {
		sugar = &f.bloodSugar
	}
	if cmd.Flags().Changed("body-temperature") {
		temperature = &f.bodyTemperature
	}
	return heartRate, pressure, sugar, temperature
}

func (f *measurementFlags) createInput(cmd *cobra.Command) recordsdto.CreateInput {
	heartRate, pressure, sugar, temperature := f.optionals(cmd)
	return recordsdto.CreateInput{
		Steps:           f.steps,
		SleepHours:      f.sleep,
		Weight:          f.weight,
		HeartRate:       heartRate,
		BloodPressure:   pressure,
		BloodSugar:      sugar,
		BodyTemperature: temperature,
	}
}

func (f *measurementFlags) updateInput(cmd *cobra.Command, id int64) recordsdto.UpdateInput {
	heartRate, pressure, sugar, temperature := f.optionals(cmd)
	input := recordsdto.UpdateInput{
		ID:              id,
		HeartRate:       heartRate,
		BloodPressure:   pressure,
		BloodSugar:      sugar,
		BodyTemperature: temperature,
	}
	if cmd.Flags().Changed("steps") {
		input.Steps = &f.steps
	}
	if cmd.Flags().Changed("sleep") {
		input.SleepHours = &f.sleep
	}
	if cmd.Flags().Changed("weight") {
		input.Weight = &f.weight
	}
	return input
}
