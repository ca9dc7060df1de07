package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceMethod is how a breeding service was performed.
type ServiceMethod string

const (
	MethodArtificialInsemination ServiceMethod = "artificial_insemination"
	MethodNaturalService         ServiceMethod = "natural_service"
)

// Label returns the display name of the method.
func (m ServiceMethod) Label() string {
	switch m {
	case MethodArtificialInsemination:
		return "Artificial Insemination"
	case MethodNaturalService:
		return "Natural Service"
	}
	return ""
}

// Service is a recorded breeding event.
type Service struct {
	Audit
	AnimalID uint          `gorm:"not null;index" json:"animal_id"`
	Method   ServiceMethod `gorm:"size:30;not null;default:artificial_insemination" json:"method"`
	SireID   uint          `gorm:"not null" json:"sire_id"`
	Sire     *Sire         `json:"sire,omitempty"`
	Date     time.Time     `json:"date"`
	Notes    string        `gorm:"size:200" json:"notes"`
}

// CheckResult is the outcome of a pregnancy check.
type CheckResult string

const (
	ResultPregnant CheckResult = "pregnant"
	ResultOpen     CheckResult = "open"
)

// Label returns the display name of the result.
func (r CheckResult) Label() string {
	switch r {
	case ResultPregnant:
		return "Pregnant"
	case ResultOpen:
		return "Open"
	}
	return ""
}

// CheckMethod is how pregnancy was determined.
type CheckMethod string

const (
	CheckPalpation   CheckMethod = "palpation"
	CheckUltrasound  CheckMethod = "ultrasound"
	CheckObservation CheckMethod = "observation"
	CheckBlood       CheckMethod = "blood"
)

// PregnancyCheck records the outcome of a check, usually following a service.
type PregnancyCheck struct {
	Audit
	ServiceID   *uint       `gorm:"index" json:"service_id,omitempty"`
	Service     *Service    `json:"service,omitempty"`
	AnimalID    uint        `gorm:"not null;index" json:"animal_id"`
	Result      CheckResult `gorm:"size:20;not null" json:"result"`
	CheckMethod CheckMethod `gorm:"size:20" json:"check_method"`
	Date        time.Time   `json:"date"`
}

// MilkingTime is the session a milk record belongs to.
type MilkingTime string

const (
	MilkingMorning MilkingTime = "am"
	MilkingEvening MilkingTime = "pm"
)

// MilkProduction is one milking record.
type MilkProduction struct {
	Audit
	AnimalID  uint                `gorm:"not null;index" json:"animal_id"`
	Time      MilkingTime         `gorm:"size:10;not null" json:"time"`
	Amount    decimal.Decimal     `gorm:"type:decimal(5,2);not null" json:"amount"`
	Butterfat decimal.NullDecimal `gorm:"type:decimal(5,3)" json:"butterfat"`
	Date      time.Time           `gorm:"index" json:"date"`
}

// LactationPeriod is a bounded lactation span; EndDate stays nil while open.
type LactationPeriod struct {
	Audit
	AnimalID  uint       `gorm:"not null;index" json:"animal_id"`
	Calves    []Animal   `gorm:"many2many:lactation_calves;" json:"calves,omitempty"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}
