package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HerdReport is the weekly summary archived for one farm.
type HerdReport struct {
	FarmID         uint            `bson:"farm_id" json:"farm_id"`
	FarmName       string          `bson:"farm_name" json:"farm_name"`
	PeriodStart    time.Time       `bson:"period_start" json:"period_start"`
	PeriodEnd      time.Time       `bson:"period_end" json:"period_end"`
	StateCounts    map[State]int64 `bson:"state_counts" json:"state_counts"`
	MilkTotal      decimal.Decimal `bson:"-" json:"milk_total"`
	Services       int64           `bson:"services" json:"services"`
	PregnantChecks int64           `bson:"pregnant_checks" json:"pregnant_checks"`
	OpenChecks     int64           `bson:"open_checks" json:"open_checks"`
	Births         int64           `bson:"births" json:"births"`
	CreatedAt      time.Time       `bson:"created_at" json:"created_at"`
}
