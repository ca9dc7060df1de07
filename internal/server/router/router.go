package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/auth"
	"github.com/mamadbah2/herdbook/internal/server/handlers"
	mw "github.com/mamadbah2/herdbook/internal/server/middleware"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Herd     *handlers.HerdHandler
	Reports  *handlers.ReportHandler
	Verifier mw.Verifier
	// Metrics is optional; without it /metrics is not mounted.
	Metrics interface {
		mw.HTTPRecorder
		Handler() http.Handler
	}
}

// New wires the Gin engine with required routes and middlewares.
func New(d Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(mw.RequestID())
	r.Use(mw.Logger(logger))

	if d.Metrics != nil {
		r.Use(mw.Metrics(d.Metrics))
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/", mw.Authenticate(d.Verifier, logger))
	h := d.Herd
	need := mw.Require

	animals := api.Group("/animals")
	animals.GET("", need(auth.AnimalList), h.ListAnimals)
	animals.POST("", need(auth.AnimalCreate), h.CreateAnimal)
	animals.GET("/offspring/new", need(auth.AnimalAddOffspring), h.OffspringForm)
	animals.POST("/offspring", need(auth.AnimalAddOffspring), h.AddOffspring)
	animals.GET("/:id", need(auth.AnimalRead), h.GetAnimal)
	animals.PUT("/:id", need(auth.AnimalUpdate), h.UpdateAnimal)
	animals.POST("/:id/transitions", need(auth.AnimalUpdate), h.TransitionAnimal)
	animals.GET("/:id/dashboard", need(auth.AnimalDashboard), h.Dashboard)

	services := api.Group("/services")
	services.GET("", need(auth.ServiceList), h.ListServices)
	services.GET("/new", need(auth.ServiceCreate), h.ServiceForm)
	services.POST("", need(auth.ServiceCreate), h.CreateService)
	services.GET("/:id", need(auth.ServiceRead), h.GetService)
	services.PUT("/:id", need(auth.ServiceUpdate), h.UpdateService)

	checks := api.Group("/pregnancy-checks")
	checks.GET("/new", need(auth.PregnancyCheckCreate), h.PregnancyCheckForm)
	checks.POST("", need(auth.PregnancyCheckCreate), h.CreatePregnancyCheck)
	checks.GET("/:id", need(auth.PregnancyCheckRead), h.GetPregnancyCheck)

	milk := api.Group("/milk-production")
	milk.GET("", need(auth.MilkProductionList), h.ListMilkProduction)
	milk.POST("", need(auth.MilkProductionCreate), h.CreateMilkProduction)
	milk.POST("/animal", need(auth.MilkProductionCreate), h.CreateAnimalMilkProduction)

	treatments := api.Group("/treatments")
	treatments.POST("", need(auth.TreatmentCreate), h.CreateTreatment)
	treatments.GET("/:id", need(auth.TreatmentRead), h.GetTreatment)
	treatments.PUT("/:id", need(auth.TreatmentUpdate), h.UpdateTreatment)

	notes := api.Group("/notes")
	notes.POST("", need(auth.NoteCreate), h.CreateNote)
	notes.GET("/:id", need(auth.NoteRead), h.GetNote)
	notes.GET("/:id/attachment", need(auth.NoteRead), h.NoteAttachment)

	api.GET("/sires", need(auth.SireList), h.ListSires)
	api.POST("/sires", need(auth.SireCreate), h.CreateSire)
	api.GET("/dams", need(auth.DamList), h.ListDams)
	api.POST("/dams", need(auth.DamCreate), h.CreateDam)
	api.GET("/breeders", need(auth.BreederList), h.ListBreeders)
	api.POST("/breeders", need(auth.BreederCreate), h.CreateBreeder)
	api.GET("/breeds", h.ListBreeds)
	api.POST("/breeds", h.CreateBreed)
	api.GET("/colors", h.ListColors)
	api.POST("/colors", h.CreateColor)

	api.POST("/lactations/:id/close", need(auth.LactationUpdate), h.CloseLactation)

	if d.Reports != nil {
		api.GET("/reports/weekly", need(auth.AnimalList), d.Reports.Weekly)
	}

	if logger != nil {
		logger.Info("router initialized", zap.Int("routes", len(r.Routes())))
	}

	return r
}
