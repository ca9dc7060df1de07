package gormdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdbook/internal/config"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedAnimal(t *testing.T, s *Store, farm uint, tag, name string, sex models.Sex) *models.Animal {
	t.Helper()
	a := &models.Animal{EarTag: tag, Name: name, Sex: sex, State: models.StateOpen, FarmID: &farm}
	a.Stamp(farm)
	require.NoError(t, s.CreateAnimal(context.Background(), a))
	return a
}

func seedSire(t *testing.T, s *Store, name string) *models.Sire {
	t.Helper()
	sire := &models.Sire{Name: name}
	sire.Stamp(1)
	require.NoError(t, s.CreateSire(context.Background(), sire))
	return sire
}

func TestAnimalRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := seedAnimal(t, s, 1, "A1", "Daisy", models.SexFemale)
	require.NotZero(t, a.ID)

	got, err := s.GetAnimal(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Daisy", got.Name)
	assert.Equal(t, models.StateOpen, got.State)
	assert.True(t, got.IsActive)

	require.NoError(t, s.SetAnimalState(ctx, a.ID, models.StateServed, 1))
	got, err = s.GetAnimal(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateServed, got.State)

	_, err = s.GetAnimal(ctx, 999)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	assert.True(t, errors.Is(s.SetAnimalState(ctx, 999, models.StateOpen, 1), repository.ErrNotFound))
}

func TestListAnimalsScopesFarmAndOffspring(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mother := seedAnimal(t, s, 1, "M1", "Bella", models.SexFemale)
	seedAnimal(t, s, 2, "X1", "Stranger", models.SexMale)

	dam := mother.MirrorDam()
	require.NoError(t, s.CreateDam(ctx, dam))

	calf := &models.Animal{EarTag: "C1", Name: "Calf", Sex: models.SexMale, DamID: &dam.ID, FarmID: mother.FarmID}
	calf.Stamp(1)
	require.NoError(t, s.CreateAnimal(ctx, calf))

	animals, total, err := s.ListAnimals(ctx, repository.AnimalFilter{FarmID: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, animals, 2)
	assert.Equal(t, mother.ID, animals[0].ID)

	offspring, total, err := s.ListAnimals(ctx, repository.AnimalFilter{OffspringOf: &mother.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, offspring, 1)
	assert.Equal(t, calf.ID, offspring[0].ID)
	require.NotNil(t, offspring[0].Dam)
	assert.Equal(t, "Bella", offspring[0].Dam.Name)
}

func TestListAnimalsSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sire := seedSire(t, s, "Thunder")
	withSire := &models.Animal{EarTag: "T1", Name: "Alpha", SireID: &sire.ID}
	withSire.Stamp(1)
	require.NoError(t, s.CreateAnimal(ctx, withSire))
	seedAnimal(t, s, 0, "T2", "Beta", models.SexMale)

	found, total, err := s.ListAnimals(ctx, repository.AnimalFilter{Search: "thun"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, withSire.ID, found[0].ID)

	found, _, err = s.ListAnimals(ctx, repository.AnimalFilter{Search: "BETA"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "T2", found[0].EarTag)
}

func TestListAnimalsPaging(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for _, tag := range []string{"P1", "P2", "P3"} {
		seedAnimal(t, s, 1, tag, tag, models.SexMale)
	}

	page, total, err := s.ListAnimals(ctx, repository.AnimalFilter{FarmID: 1, Page: models.Page{Number: 2, Size: 2}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, "P3", page[0].EarTag)
}

func TestLatestServiceUsesCreationOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	cow := seedAnimal(t, s, 1, "S1", "Rosie", models.SexFemale)
	first := seedSire(t, s, "First")
	second := seedSire(t, s, "Second")

	_, err := s.LatestService(ctx, cow.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))

	// The later record carries an earlier service date and still wins.
	a := &models.Service{AnimalID: cow.ID, SireID: first.ID, Method: models.MethodNaturalService, Date: day(2024, 3, 1)}
	a.Stamp(1)
	require.NoError(t, s.CreateService(ctx, a))
	b := &models.Service{AnimalID: cow.ID, SireID: second.ID, Method: models.MethodArtificialInsemination, Date: day(2024, 1, 1)}
	b.Stamp(1)
	require.NoError(t, s.CreateService(ctx, b))

	latest, err := s.LatestService(ctx, cow.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, latest.ID)
	require.NotNil(t, latest.Sire)
	assert.Equal(t, "Second", latest.Sire.Name)

	earliest, err := s.EarliestServiceDate(ctx, cow.ID)
	require.NoError(t, err)
	require.NotNil(t, earliest)
	assert.True(t, earliest.Equal(day(2024, 1, 1)))

	n, err := s.CountServices(ctx, cow.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	none, err := s.EarliestServiceDate(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestCountServiceOutcomesSkipsUnlinkedChecks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	cow := seedAnimal(t, s, 1, "O1", "Molly", models.SexFemale)
	sire := seedSire(t, s, "Bolt")
	svc := &models.Service{AnimalID: cow.ID, SireID: sire.ID, Date: day(2024, 2, 1)}
	svc.Stamp(1)
	require.NoError(t, s.CreateService(ctx, svc))

	for _, c := range []*models.PregnancyCheck{
		{AnimalID: cow.ID, ServiceID: &svc.ID, Result: models.ResultPregnant},
		{AnimalID: cow.ID, ServiceID: &svc.ID, Result: models.ResultOpen},
		{AnimalID: cow.ID, Result: models.ResultPregnant},
	} {
		c.Stamp(1)
		require.NoError(t, s.CreatePregnancyCheck(ctx, c))
	}

	pregnant, err := s.CountServiceOutcomes(ctx, cow.ID, models.ResultPregnant)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pregnant)

	open, err := s.CountServiceOutcomes(ctx, cow.ID, models.ResultOpen)
	require.NoError(t, err)
	assert.EqualValues(t, 1, open)

	latest, err := s.LatestCheckForService(ctx, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResultOpen, latest.Result)

	checks, total, err := s.ListPregnancyChecks(ctx, repository.RecordFilter{AnimalID: &cow.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, checks, 3)
}

func TestTotalMilkProduction(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	cow := seedAnimal(t, s, 1, "D1", "Clover", models.SexFemale)

	total, err := s.TotalMilkProduction(ctx, cow.ID)
	require.NoError(t, err)
	assert.False(t, total.Valid)

	for _, amount := range []string{"10.25", "20.50"} {
		m := &models.MilkProduction{AnimalID: cow.ID, Time: models.MilkingMorning, Amount: decimal.RequireFromString(amount), Date: day(2024, 5, 1)}
		m.Stamp(1)
		require.NoError(t, s.CreateMilkProduction(ctx, m))
	}

	total, err = s.TotalMilkProduction(ctx, cow.ID)
	require.NoError(t, err)
	require.True(t, total.Valid)
	assert.True(t, total.Decimal.Equal(decimal.RequireFromString("30.75")), total.Decimal.String())

	series, err := s.MilkSeries(ctx, cow.ID)
	require.NoError(t, err)
	assert.Len(t, series, 2)
}

func TestTreatmentsAndNotesLinkAnimals(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	cow := seedAnimal(t, s, 1, "R1", "Hazel", models.SexFemale)
	other := seedAnimal(t, s, 1, "R2", "Ivy", models.SexFemale)

	tr := &models.Treatment{Type: "vaccine", Description: "Blackleg", Date: day(2024, 4, 2)}
	tr.Stamp(1)
	require.NoError(t, s.CreateTreatment(ctx, tr, cow.ID))

	got, err := s.GetTreatment(ctx, tr.ID)
	require.NoError(t, err)
	require.Len(t, got.Animals, 1)
	assert.Equal(t, cow.ID, got.Animals[0].ID)

	list, total, err := s.ListTreatments(ctx, repository.RecordFilter{AnimalID: &other.ID})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)

	note := &models.Note{Details: "limping", Date: day(2024, 4, 3)}
	note.Stamp(1)
	require.NoError(t, s.CreateNote(ctx, note, cow.ID))

	notes, total, err := s.ListNotes(ctx, repository.RecordFilter{AnimalID: &cow.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, notes, 1)
	assert.Equal(t, "limping", notes[0].Details)
}

func TestLactationCalves(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	cow := seedAnimal(t, s, 1, "L1", "Maple", models.SexFemale)
	calf := seedAnimal(t, s, 1, "L2", "Sprout", models.SexFemale)

	_, err := s.OpenLactation(ctx, cow.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))

	period := &models.LactationPeriod{AnimalID: cow.ID, StartDate: day(2024, 6, 1)}
	period.Stamp(1)
	require.NoError(t, s.CreateLactation(ctx, period))
	require.NoError(t, s.AddCalf(ctx, period.ID, calf.ID))

	open, err := s.OpenLactation(ctx, cow.ID)
	require.NoError(t, err)
	assert.Equal(t, period.ID, open.ID)

	loaded, err := s.GetLactation(ctx, period.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Calves, 1)
	assert.Equal(t, calf.ID, loaded.Calves[0].ID)

	end := day(2024, 12, 1)
	loaded.EndDate = &end
	require.NoError(t, s.SaveLactation(ctx, loaded))
	_, err = s.OpenLactation(ctx, cow.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestWithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx repository.Store) error {
		a := &models.Animal{EarTag: "TX", Name: "Ghost"}
		a.Stamp(1)
		if err := tx.CreateAnimal(ctx, a); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, total, err := s.ListAnimals(ctx, repository.AnimalFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestFarmNameTakenIgnoresCase(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateFarm(ctx, &models.Farm{Name: "Green Acres"}))

	taken, err := s.FarmNameTaken(ctx, "green ACRES")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = s.FarmNameTaken(ctx, "Blue Acres")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestHerdStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	farm := &models.Farm{Name: "Stats"}
	require.NoError(t, s.CreateFarm(ctx, farm))
	cow := seedAnimal(t, s, farm.ID, "H1", "Poppy", models.SexFemale)
	require.NoError(t, s.SetAnimalState(ctx, cow.ID, models.StatePregnant, farm.ID))
	seedAnimal(t, s, farm.ID, "H2", "Rex", models.SexMale)

	sire := seedSire(t, s, "Duke")
	svc := &models.Service{AnimalID: cow.ID, SireID: sire.ID, Date: day(2024, 7, 2)}
	svc.Stamp(farm.ID)
	require.NoError(t, s.CreateService(ctx, svc))

	check := &models.PregnancyCheck{AnimalID: cow.ID, ServiceID: &svc.ID, Result: models.ResultPregnant, Date: day(2024, 7, 3)}
	check.Stamp(farm.ID)
	require.NoError(t, s.CreatePregnancyCheck(ctx, check))

	milk := &models.MilkProduction{AnimalID: cow.ID, Time: models.MilkingEvening, Amount: decimal.RequireFromString("12.50"), Date: day(2024, 7, 4)}
	milk.Stamp(farm.ID)
	require.NoError(t, s.CreateMilkProduction(ctx, milk))

	outside := &models.MilkProduction{AnimalID: cow.ID, Time: models.MilkingEvening, Amount: decimal.RequireFromString("99"), Date: day(2024, 8, 1)}
	outside.Stamp(farm.ID)
	require.NoError(t, s.CreateMilkProduction(ctx, outside))

	stats, err := s.HerdStats(ctx, farm.ID, day(2024, 7, 1), day(2024, 7, 8))
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.StateCounts[models.StatePregnant])
	assert.EqualValues(t, 1, stats.StateCounts[models.StateOpen])
	assert.EqualValues(t, 1, stats.Services)
	assert.EqualValues(t, 1, stats.PregnantChecks)
	assert.Zero(t, stats.OpenChecks)
	assert.True(t, stats.MilkTotal.Equal(decimal.RequireFromString("12.5")), stats.MilkTotal.String())
}
