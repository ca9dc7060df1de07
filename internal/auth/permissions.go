package auth

// Permission codenames follow <model>_<action>.
const (
	AnimalCreate       = "animal_create"
	AnimalRead         = "animal_read"
	AnimalUpdate       = "animal_update"
	AnimalList         = "animal_list"
	AnimalAddOffspring = "animal_add_offspring"
	AnimalDashboard    = "animal_dashboard"

	ServiceCreate = "service_create"
	ServiceRead   = "service_read"
	ServiceUpdate = "service_update"
	ServiceList   = "service_list"

	PregnancyCheckCreate = "pregnancycheck_create"
	PregnancyCheckRead   = "pregnancycheck_read"
	PregnancyCheckList   = "pregnancycheck_list"

	MilkProductionCreate = "milkproduction_create"
	MilkProductionList   = "milkproduction_list"

	TreatmentCreate = "treatment_create"
	TreatmentRead   = "treatment_read"
	TreatmentUpdate = "treatment_update"
	TreatmentList   = "treatment_list"

	NoteCreate = "note_create"
	NoteRead   = "note_read"
	NoteList   = "note_list"

	LactationList   = "lactationperiod_list"
	LactationUpdate = "lactationperiod_update"

	SireCreate    = "sire_create"
	SireList      = "sire_list"
	DamCreate     = "dam_create"
	DamList       = "dam_list"
	BreederCreate = "breeder_create"
	BreederList   = "breeder_list"
)

// All lists every codename; new farms are granted all of them.
func All() []string {
	return []string{
		AnimalCreate, AnimalRead, AnimalUpdate, AnimalList, AnimalAddOffspring, AnimalDashboard,
		ServiceCreate, ServiceRead, ServiceUpdate, ServiceList,
		PregnancyCheckCreate, PregnancyCheckRead, PregnancyCheckList,
		MilkProductionCreate, MilkProductionList,
		TreatmentCreate, TreatmentRead, TreatmentUpdate, TreatmentList,
		NoteCreate, NoteRead, NoteList,
		LactationList, LactationUpdate,
		SireCreate, SireList, DamCreate, DamList, BreederCreate, BreederList,
	}
}
