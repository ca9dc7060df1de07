package models

import "time"

// Sex of an animal.
type Sex string

const (
	SexFemale Sex = "female"
	SexMale   Sex = "male"
)

// Animal is a single tracked animal owned by a farm.
type Animal struct {
	Audit

	EarTag string `gorm:"size:30;not null" json:"ear_tag"`
	Name   string `gorm:"size:30;not null" json:"name"`
	Sex    Sex    `gorm:"size:20" json:"sex"`
	State  State  `gorm:"size:20;not null;default:open;index" json:"state"`

	ColorID   *uint    `json:"color_id,omitempty"`
	Color     *Color   `json:"color,omitempty"`
	BreedID   *uint    `json:"breed_id,omitempty"`
	Breed     *Breed   `json:"breed,omitempty"`
	SireID    *uint    `json:"sire_id,omitempty"`
	Sire      *Sire    `json:"sire,omitempty"`
	DamID     *uint    `gorm:"index" json:"dam_id,omitempty"`
	Dam       *Dam     `json:"dam,omitempty"`
	BreederID *uint    `json:"breeder_id,omitempty"`
	Breeder   *Breeder `json:"breeder,omitempty"`

	BirthDate      *time.Time `json:"birth_date,omitempty"`
	BirthWeight    *int       `json:"birth_weight,omitempty"`
	WeaningDate    *time.Time `json:"weaning_date,omitempty"`
	WeaningWeight  *int       `json:"weaning_weight,omitempty"`
	YearlingDate   *time.Time `json:"yearling_date,omitempty"`
	YearlingWeight *int       `json:"yearling_weight,omitempty"`

	FarmID *uint `gorm:"index" json:"farm_id,omitempty"`
}

// IsFemale reports whether the animal can carry breeding records.
func (a *Animal) IsFemale() bool { return a.Sex == SexFemale }

// Label renders the animal the way lists show it.
func (a *Animal) Label() string { return a.EarTag + "-" + a.Name }

// MirrorDam builds the lineage record kept for a female animal.
func (a *Animal) MirrorDam() *Dam {
	id := a.ID
	dam := &Dam{
		Name:      a.Name,
		BreedID:   a.BreedID,
		BirthDate: a.BirthDate,
		AnimalID:  &id,
	}
	dam.CreatedByID = a.CreatedByID
	dam.ModifiedByID = a.ModifiedByID
	dam.IsActive = true
	return dam
}
