package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdbook/internal/auth"
	"github.com/mamadbah2/herdbook/internal/config"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/metrics"
	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/repository/gormdb"
	"github.com/mamadbah2/herdbook/internal/server/handlers"
	"github.com/mamadbah2/herdbook/internal/server/router"
	"github.com/mamadbah2/herdbook/internal/service/herd"
	"github.com/mamadbah2/herdbook/internal/storage/attachments"
)

type fakeReports struct{}

func (fakeReports) GenerateWeeklyReport(_ context.Context, farmID uint, now time.Time) (models.HerdReport, error) {
	return models.HerdReport{
		FarmID:      farmID,
		FarmName:    "Hillside",
		PeriodStart: now.AddDate(0, 0, -7),
		PeriodEnd:   now,
		StateCounts: map[models.State]int64{models.StateLactating: 2},
		MilkTotal:   decimal.RequireFromString("41.5"),
	}, nil
}

type env struct {
	handler http.Handler
	store   *gormdb.Store
	svc     *herd.Service
	tokens  *auth.Tokens
	actor   auth.Actor
	token   string
	ctx     context.Context
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store, err := gormdb.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	rec := metrics.New()
	svc := herd.NewService(store, attachments.NewMemory(), rec, nil)
	tokens := auth.NewTokens("handlers-test-secret", "herdbook")
	actor := auth.NewActor(1, auth.All()...)
	token, err := tokens.Issue(actor, time.Hour)
	require.NoError(t, err)

	h := router.New(router.Deps{
		Herd:     handlers.NewHerdHandler(svc, nil),
		Reports:  handlers.NewReportHandler(fakeReports{}, nil),
		Verifier: tokens,
		Metrics:  rec,
	}, nil)

	return &env{handler: h, store: store, svc: svc, tokens: tokens, actor: actor, token: token, ctx: context.Background()}
}

func (e *env) do(t *testing.T, method, target string, body any, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+e.token)
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *env) animal(t *testing.T, name string, sex models.Sex) *models.Animal {
	t.Helper()
	a, _, err := e.svc.CreateAnimal(e.ctx, e.actor, herd.AnimalInput{EarTag: "E-" + name, Name: name, Sex: sex})
	require.NoError(t, err)
	return a
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func id(v uint) string { return strconv.FormatUint(uint64(v), 10) }

func flash(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == handlers.FlashCookie {
			msg, err := url.QueryUnescape(c.Value)
			require.NoError(t, err)
			return msg
		}
	}
	return ""
}

func TestMissingParentRedirectsWithoutCreating(t *testing.T) {
	e := newEnv(t)
	cow := e.animal(t, "Bella", models.SexFemale)

	routes := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/services/new", nil},
		{http.MethodPost, "/services", map[string]any{"sire_id": 1}},
		{http.MethodGet, "/pregnancy-checks/new", nil},
		{http.MethodPost, "/pregnancy-checks", map[string]any{"result": "pregnant"}},
		{http.MethodPost, "/treatments", map[string]any{"description": "deworming"}},
		{http.MethodPost, "/notes", map[string]any{"details": "limping"}},
		{http.MethodGet, "/animals/offspring/new", nil},
		{http.MethodPost, "/animals/offspring", map[string]any{"ear_tag": "C1", "name": "Calf"}},
		{http.MethodPost, "/milk-production/animal", map[string]any{"time": "am", "amount": "10"}},
	}

	for _, rt := range routes {
		for _, query := range []string{"", "?animal=", "?animal=999", "?animal=abc"} {
			rec := e.do(t, rt.method, rt.path+query, rt.body)
			assert.Equal(t, http.StatusSeeOther, rec.Code, "%s %s%s", rt.method, rt.path, query)
			assert.Equal(t, handlers.FallbackRedirect, rec.Header().Get("Location"))
			assert.Equal(t, "Animal Id is required", flash(t, rec))
		}
	}

	f := repository.RecordFilter{}
	_, services, err := e.store.ListServices(e.ctx, f)
	require.NoError(t, err)
	_, checks, err := e.store.ListPregnancyChecks(e.ctx, f)
	require.NoError(t, err)
	_, treatments, err := e.store.ListTreatments(e.ctx, f)
	require.NoError(t, err)
	_, notes, err := e.store.ListNotes(e.ctx, f)
	require.NoError(t, err)
	_, milk, err := e.store.ListMilkProduction(e.ctx, f)
	require.NoError(t, err)
	_, animals, err := e.store.ListAnimals(e.ctx, repository.AnimalFilter{FarmID: 1})
	require.NoError(t, err)

	assert.Zero(t, services+checks+treatments+notes+milk)
	assert.Equal(t, int64(1), animals)

	reloaded, err := e.store.GetAnimal(e.ctx, cow.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateOpen, reloaded.State)
}

func TestMissingParentFollowsReferer(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/treatments", nil, func(r *http.Request) {
		r.Header.Set("Referer", "/animals/7")
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/animals/7", rec.Header().Get("Location"))
	assert.Equal(t, "/animals/7", decode(t, rec)["redirect"])
}

func TestForeignAnimalIsMissingParent(t *testing.T) {
	e := newEnv(t)
	stranger := auth.NewActor(2, auth.All()...)
	theirs, _, err := e.svc.CreateAnimal(e.ctx, stranger, herd.AnimalInput{EarTag: "X1", Name: "Other", Sex: models.SexFemale})
	require.NoError(t, err)

	rec := e.do(t, http.MethodPost, "/treatments?animal="+id(theirs.ID), map[string]any{"description": "x"})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = e.do(t, http.MethodGet, "/animals/"+id(theirs.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateFemaleReturnsMirroredDam(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/animals", map[string]any{
		"ear_tag": "A-1", "name": "Daisy", "sex": "female", "birth_date": "2021-03-04",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	animal := body["animal"].(map[string]any)
	dam := body["mirrored_dam"].(map[string]any)
	assert.Equal(t, "open", animal["state"])
	assert.Equal(t, "Daisy", dam["name"])
	assert.Equal(t, animal["id"], dam["animal_id"])

	rec = e.do(t, http.MethodPost, "/animals", map[string]any{"ear_tag": "A-2", "name": "Max", "sex": "male"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, decode(t, rec)["mirrored_dam"])
}

func TestValidationErrors(t *testing.T) {
	e := newEnv(t)
	cow := e.animal(t, "Bella", models.SexFemale)

	rec := e.do(t, http.MethodPost, "/animals", map[string]any{"name": "NoTag"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/pregnancy-checks?animal="+id(cow.ID), map[string]any{"result": "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/animals/"+id(cow.ID)+"/transitions", map[string]any{"state": "sleeping"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/milk-production/animal?animal="+id(cow.ID), map[string]any{"time": "am", "amount": "0"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodGet, "/animals/nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBreedingFlowOverHTTP(t *testing.T) {
	e := newEnv(t)
	cow := e.animal(t, "Bella", models.SexFemale)

	rec := e.do(t, http.MethodPost, "/sires", map[string]any{"name": "Thor"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sireID := decode(t, rec)["id"]

	rec = e.do(t, http.MethodPost, "/services?animal="+id(cow.ID), map[string]any{"sire_id": sireID, "date": "2024-05-01"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	serviceID := decode(t, rec)["id"]

	rec = e.do(t, http.MethodGet, "/pregnancy-checks/new?animal="+id(cow.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, serviceID, decode(t, rec)["service_id"])

	rec = e.do(t, http.MethodPost, "/pregnancy-checks?animal="+id(cow.ID), map[string]any{"result": "pregnant", "check_method": "ultrasound"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, serviceID, decode(t, rec)["service_id"])

	rec = e.do(t, http.MethodGet, "/animals/"+id(cow.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode(t, rec)
	assert.Equal(t, "pregnant", detail["animal"].(map[string]any)["state"])
	assert.Equal(t, true, detail["fertile"])
	stats := detail["stats"].(map[string]any)
	assert.EqualValues(t, 1, stats["number_of_services"])
	assert.EqualValues(t, 1, stats["number_of_successful_services"])
	assert.EqualValues(t, 0, stats["number_of_failed_services"])
	assert.Nil(t, stats["all_time_production"])

	services := detail["services"].(map[string]any)
	rows := services["items"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "Pregnant", rows[0].(map[string]any)["status"])

	rec = e.do(t, http.MethodGet, "/services", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["total"])
}

func TestDetailSectionsFollowPermissions(t *testing.T) {
	e := newEnv(t)
	cow := e.animal(t, "Bella", models.SexFemale)
	_, err := e.svc.CreateTreatment(e.ctx, e.actor, id(cow.ID), herd.TreatmentInput{Description: "vaccination"})
	require.NoError(t, err)

	rec := e.do(t, http.MethodGet, "/animals/"+id(cow.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec), "treatments")

	narrow, err := e.tokens.Issue(auth.NewActor(1, auth.AnimalRead), time.Hour)
	require.NoError(t, err)
	rec = e.do(t, http.MethodGet, "/animals/"+id(cow.ID), nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+narrow)
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.NotContains(t, body, "treatments")
	assert.NotContains(t, body, "services")
	assert.Contains(t, body, "stats")

	rec = e.do(t, http.MethodGet, "/treatments/1", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+narrow)
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMilkAndDashboard(t *testing.T) {
	e := newEnv(t)
	cow := e.animal(t, "Bella", models.SexFemale)

	rec := e.do(t, http.MethodPost, "/milk-production", map[string]any{
		"animal_id": cow.ID, "time": "am", "amount": "12.5", "date": "2024-06-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/milk-production/animal?animal="+id(cow.ID), map[string]any{
		"time": "pm", "amount": "8.25", "butterfat": "4.1", "date": "2024-06-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodGet, "/animals/"+id(cow.ID)+"/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decode(t, rec)
	assert.Equal(t, "20.75", dash["all_time_production"])
	weekly := dash["weekly"].([]any)
	require.Len(t, weekly, 1)
	assert.Equal(t, "2024-W24", weekly[0].(map[string]any)["label"])
}

func TestOffspringAndLactationClose(t *testing.T) {
	e := newEnv(t)
	cow := e.animal(t, "Bella", models.SexFemale)

	rec := e.do(t, http.MethodPost, "/animals/offspring?animal="+id(cow.ID), map[string]any{
		"ear_tag": "C-1", "name": "Clover", "sex": "female", "birth_date": "2024-06-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, "lactating", out["parent"].(map[string]any)["state"])
	lactationID := out["lactation"].(map[string]any)["id"].(float64)

	rec = e.do(t, http.MethodGet, "/animals/"+id(cow.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	offspring := decode(t, rec)["offspring"].(map[string]any)
	assert.EqualValues(t, 1, offspring["total"])

	path := "/lactations/" + strconv.Itoa(int(lactationID)) + "/close"
	rec = e.do(t, http.MethodPost, path, map[string]any{"end_date": "2024-09-01"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotNil(t, decode(t, rec)["end_date"])

	rec = e.do(t, http.MethodPost, path, map[string]any{"end_date": "2024-09-02"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNoteAttachmentRoundTrip(t *testing.T) {
	e := newEnv(t)
	cow := e.animal(t, "Bella", models.SexFemale)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("details", "vet visit"))
	require.NoError(t, w.WriteField("date", "2024-06-11"))
	part, err := w.CreateFormFile("file", "Report.PDF")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/notes?animal="+id(cow.ID), &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.token)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	note := decode(t, rec)
	key := note["attachment_key"].(string)
	assert.True(t, strings.HasPrefix(key, "farms/1/notes/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	rec = e.do(t, http.MethodGet, "/notes/"+strconv.Itoa(int(note["id"].(float64)))+"/attachment", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4 fake", rec.Body.String())
}

func TestWeeklyReportAndMetrics(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/reports/weekly", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.True(t, strings.HasPrefix(body["text"].(string), "Herd report for Hillside"))
	assert.Contains(t, body["text"], "Milk: 41.50")

	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/reports/weekly"`)
	assert.Contains(t, rec.Body.String(), `route="/healthz"`)

	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/animals", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
