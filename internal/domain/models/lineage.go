package models

import "time"

// Breed is a lookup value for animals, sires and dams.
type Breed struct {
	Audit
	Name string `gorm:"size:30;not null" json:"name"`
}

// Color is a coat color lookup value.
type Color struct {
	Audit
	Name string `gorm:"size:50;not null" json:"name"`
}

// Breeder is the farm or studbook an animal was bred by.
type Breeder struct {
	Audit
	Name string `gorm:"size:30;not null" json:"name"`
}

// Sire is a male breeding animal, usually external to the farm.
type Sire struct {
	Audit
	Name      string     `gorm:"size:30;not null" json:"name"`
	Code      string     `gorm:"size:10" json:"code"`
	BreedID   *uint      `json:"breed_id,omitempty"`
	Breed     *Breed     `json:"breed,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	BreederID *uint      `json:"breeder_id,omitempty"`
	Breeder   *Breeder   `json:"breeder,omitempty"`
}

// Dam is a female lineage record. AnimalID links it back to the tracked female
// it mirrors; external ancestors leave it unset.
type Dam struct {
	Audit
	Name      string     `gorm:"size:30;not null" json:"name"`
	BreedID   *uint      `json:"breed_id,omitempty"`
	Breed     *Breed     `json:"breed,omitempty"`
	Code      string     `gorm:"size:10" json:"code"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	AnimalID  *uint      `gorm:"index" json:"animal_id,omitempty"`
	BreederID *uint      `json:"breeder_id,omitempty"`
	Breeder   *Breeder   `json:"breeder,omitempty"`
}
