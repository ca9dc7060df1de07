// Package repository declares the persistence contract used by the services.
// The gormdb package provides the relational implementation.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

// ErrNotFound indicates the requested record does not exist or is inactive.
var ErrNotFound = errors.New("record not found")

// AnimalFilter narrows an animal listing.
type AnimalFilter struct {
	FarmID uint
	Search string
	// OffspringOf keeps animals whose dam mirrors this animal.
	OffspringOf *uint
	Page        models.Page
}

// RecordFilter narrows a listing of records hanging off an animal or service.
type RecordFilter struct {
	AnimalID  *uint
	ServiceID *uint
	FarmID    *uint
	Page      models.Page
}

// HerdStats aggregates a farm's activity over a period.
type HerdStats struct {
	StateCounts    map[models.State]int64
	MilkTotal      decimal.Decimal
	Services       int64
	PregnantChecks int64
	OpenChecks     int64
	Births         int64
}

// AnimalStore persists animals.
type AnimalStore interface {
	CreateAnimal(ctx context.Context, a *models.Animal) error
	SaveAnimal(ctx context.Context, a *models.Animal) error
	SetAnimalState(ctx context.Context, id uint, state models.State, actor uint) error
	GetAnimal(ctx context.Context, id uint) (*models.Animal, error)
	ListAnimals(ctx context.Context, f AnimalFilter) ([]models.Animal, int64, error)
}

// LineageStore persists sires, dams and lookup values.
type LineageStore interface {
	CreateSire(ctx context.Context, s *models.Sire) error
	GetSire(ctx context.Context, id uint) (*models.Sire, error)
	ListSires(ctx context.Context, p models.Page) ([]models.Sire, int64, error)
	CreateDam(ctx context.Context, d *models.Dam) error
	GetDam(ctx context.Context, id uint) (*models.Dam, error)
	ListDams(ctx context.Context, p models.Page) ([]models.Dam, int64, error)
	// MirroredDam returns the most recent dam mirroring the animal.
	MirroredDam(ctx context.Context, animalID uint) (*models.Dam, error)
	CountMirroredDams(ctx context.Context, animalID uint) (int64, error)
	CreateBreed(ctx context.Context, b *models.Breed) error
	ListBreeds(ctx context.Context, p models.Page) ([]models.Breed, int64, error)
	CreateColor(ctx context.Context, c *models.Color) error
	ListColors(ctx context.Context, p models.Page) ([]models.Color, int64, error)
	CreateBreeder(ctx context.Context, b *models.Breeder) error
	ListBreeders(ctx context.Context, p models.Page) ([]models.Breeder, int64, error)
}

// BreedingStore persists services, pregnancy checks and lactations.
type BreedingStore interface {
	CreateService(ctx context.Context, s *models.Service) error
	SaveService(ctx context.Context, s *models.Service) error
	GetService(ctx context.Context, id uint) (*models.Service, error)
	ListServices(ctx context.Context, f RecordFilter) ([]models.Service, int64, error)
	// LatestService returns the animal's most recently created service.
	LatestService(ctx context.Context, animalID uint) (*models.Service, error)
	EarliestServiceDate(ctx context.Context, animalID uint) (*time.Time, error)
	CountServices(ctx context.Context, animalID uint) (int64, error)

	CreatePregnancyCheck(ctx context.Context, c *models.PregnancyCheck) error
	GetPregnancyCheck(ctx context.Context, id uint) (*models.PregnancyCheck, error)
	ListPregnancyChecks(ctx context.Context, f RecordFilter) ([]models.PregnancyCheck, int64, error)
	LatestCheckForService(ctx context.Context, serviceID uint) (*models.PregnancyCheck, error)
	// CountServiceOutcomes counts checks with the result that are linked to a service.
	CountServiceOutcomes(ctx context.Context, animalID uint, result models.CheckResult) (int64, error)

	CreateLactation(ctx context.Context, l *models.LactationPeriod) error
	SaveLactation(ctx context.Context, l *models.LactationPeriod) error
	GetLactation(ctx context.Context, id uint) (*models.LactationPeriod, error)
	OpenLactation(ctx context.Context, animalID uint) (*models.LactationPeriod, error)
	AddCalf(ctx context.Context, lactationID, calfID uint) error
	ListLactations(ctx context.Context, animalID uint) ([]models.LactationPeriod, error)
}

// ProductionStore persists milk records.
type ProductionStore interface {
	CreateMilkProduction(ctx context.Context, m *models.MilkProduction) error
	ListMilkProduction(ctx context.Context, f RecordFilter) ([]models.MilkProduction, int64, error)
	// TotalMilkProduction sums amounts; Valid is false when the animal has no records.
	TotalMilkProduction(ctx context.Context, animalID uint) (decimal.NullDecimal, error)
	MilkSeries(ctx context.Context, animalID uint) ([]models.MilkProduction, error)
}

// RecordStore persists treatments and notes.
type RecordStore interface {
	CreateTreatment(ctx context.Context, t *models.Treatment, animalIDs ...uint) error
	SaveTreatment(ctx context.Context, t *models.Treatment) error
	GetTreatment(ctx context.Context, id uint) (*models.Treatment, error)
	ListTreatments(ctx context.Context, f RecordFilter) ([]models.Treatment, int64, error)
	CreateNote(ctx context.Context, n *models.Note, animalIDs ...uint) error
	GetNote(ctx context.Context, id uint) (*models.Note, error)
	ListNotes(ctx context.Context, f RecordFilter) ([]models.Note, int64, error)
}

// FarmStore persists farms and their reporting aggregates.
type FarmStore interface {
	CreateFarm(ctx context.Context, f *models.Farm) error
	GetFarm(ctx context.Context, id uint) (*models.Farm, error)
	FarmNameTaken(ctx context.Context, name string) (bool, error)
	ListFarms(ctx context.Context) ([]models.Farm, error)
	HerdStats(ctx context.Context, farmID uint, from, to time.Time) (HerdStats, error)
}

// Store is the full persistence surface. WithinTx runs fn against a store bound
// to one transaction; fn's error rolls everything back.
type Store interface {
	AnimalStore
	LineageStore
	BreedingStore
	ProductionStore
	RecordStore
	FarmStore
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
