package models

import "time"

// Treatment is a health intervention applied to one or more animals.
type Treatment struct {
	Audit
	Type        string    `gorm:"size:50" json:"type"`
	Date        time.Time `json:"date"`
	Description string    `gorm:"size:200;not null" json:"description"`
	Notes       string    `gorm:"type:text" json:"notes"`
	Animals     []Animal  `gorm:"many2many:treatment_animals;" json:"animals,omitempty"`
}

// Note is a free-form record, optionally with an attached file.
type Note struct {
	Audit
	Date          time.Time `json:"date"`
	Details       string    `gorm:"type:text;not null" json:"details"`
	AttachmentKey string    `gorm:"size:255" json:"attachment_key,omitempty"`
	Animals       []Animal  `gorm:"many2many:note_animals;" json:"animals,omitempty"`
}

// All returns every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Farm{},
		&Breed{},
		&Color{},
		&Breeder{},
		&Sire{},
		&Dam{},
		&Animal{},
		&Service{},
		&PregnancyCheck{},
		&MilkProduction{},
		&LactationPeriod{},
		&Treatment{},
		&Note{},
	}
}
