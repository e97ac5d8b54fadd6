package adminapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certhouse/certhouse/artifacts"
	"github.com/certhouse/certhouse/certificate"
	"github.com/certhouse/certhouse/internal/auth"
	"github.com/certhouse/certhouse/issuance"
	"github.com/certhouse/certhouse/storage"
	"github.com/certhouse/certhouse/storage/model"
)

type testAPI struct {
	t     *testing.T
	app   *fiber.App
	store *storage.Storage
	admin string
	user  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	s, err := storage.NewStorage(
		storage.Config{
			Driver:  storage.DriverSQLite,
			DataDir: t.TempDir(),
			UsersHash: storage.Argon2idParams{
				Time:        1,
				MemoryKiB:   8 * 1024,
				Parallelism: 1,
				KeyLen:      32,
				SaltLen:     16,
			},
		},
	)
	require.NoError(t, err)
	tokens, err := auth.NewTokens([]byte("0123456789abcdef0123456789abcdef"), "test", time.Hour)
	require.NoError(t, err)
	renderer, err := certificate.NewRenderer()
	require.NoError(t, err)

	backends := s.Backends()
	services := Services{
		Tokens: tokens,
		Publisher: &issuance.Publisher{
			Enrollments:  backends.Enrollments,
			Certificates: backends.Certificates,
			KV:           backends.KV,
			Renderer:     renderer,
			Licenses:     certificate.LicenseGenerator{},
			Artifacts:    &artifacts.BillyStore{FS: memfs.New(), URLPrefix: "/certificates"},
			Assets:       certificate.AssetResolver{FS: memfs.New()},
		},
		Provisioner: &issuance.Provisioner{
			Enrollments:  backends.Enrollments,
			Certificates: backends.Certificates,
		},
	}
	app := fiber.New()
	require.NoError(t, Register(app.Group("/admin"), "https://certs.example.org", backends, services, nil))

	admin, err := tokens.Issue(model.User{ID: 1, Username: "root", Role: model.RoleAdmin})
	require.NoError(t, err)
	user, err := tokens.Issue(model.User{ID: 2, Username: "jane", Role: model.RoleParticipant})
	require.NoError(t, err)
	return &testAPI{
		t:     t,
		app:   app,
		store: s,
		admin: admin,
		user:  user,
	}
}

func (a *testAPI) do(method, path, token string, body any) (int, []byte) {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, data
}

func (a *testAPI) decode(data []byte, v any) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(data, v))
}

func (a *testAPI) createTraining() model.Training {
	a.t.Helper()
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	status, data := a.do(
		http.MethodPost, "/admin/trainings", a.admin, model.AddTraining{
			Name:          "First Aid",
			StartsAt:      start,
			EndsAt:        start.Add(4 * time.Hour),
			CategoryCodes: []string{"fa-1"},
		},
	)
	require.Equal(a.t, fiber.StatusCreated, status, string(data))
	var tr model.Training
	a.decode(data, &tr)
	return tr
}

func (a *testAPI) createParticipant(first string) model.Participant {
	a.t.Helper()
	status, data := a.do(
		http.MethodPost, "/admin/participants", a.admin, model.AddParticipant{
			FirstName: first,
			LastName:  "Doe",
		},
	)
	require.Equal(a.t, fiber.StatusCreated, status, string(data))
	var p model.Participant
	a.decode(data, &p)
	return p
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)
	status, _ := api.do(http.MethodGet, "/admin/trainings", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = api.do(http.MethodGet, "/admin/trainings", "not-a-token", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = api.do(http.MethodGet, "/admin/trainings", api.user, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = api.do(http.MethodGet, "/admin/trainings", api.admin, nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestOpenAPIServers(t *testing.T) {
	api := newTestAPI(t)
	status, data := api.do(http.MethodGet, "/admin/openapi.yaml", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(data), "https://certs.example.org")
	assert.Contains(t, string(data), "bearerAuth")
}

func TestTrainings(t *testing.T) {
	api := newTestAPI(t)
	tr := api.createTraining()
	assert.Equal(t, []string{"FA-1"}, tr.CategoryCodes())

	status, data := api.do(
		http.MethodPut, "/admin/trainings/"+itoa(tr.ID)+"/categories", api.admin,
		map[string]any{"category_codes": []string{"FA-1", "HSE-2"}},
	)
	require.Equal(t, fiber.StatusOK, status, string(data))
	api.decode(data, &tr)
	assert.ElementsMatch(t, []string{"FA-1", "HSE-2"}, tr.CategoryCodes())

	status, _ = api.do(http.MethodDelete, "/admin/trainings/"+itoa(tr.ID), api.admin, nil)
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _ = api.do(http.MethodGet, "/admin/trainings/"+itoa(tr.ID), api.admin, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = api.do(http.MethodPost, "/admin/trainings/"+itoa(tr.ID)+"/restore", api.admin, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = api.do(http.MethodGet, "/admin/trainings/abc", api.admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = api.do(http.MethodPost, "/admin/trainings", api.admin, map[string]any{"name": "x"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestEnrollmentLifecycleAndPublish(t *testing.T) {
	api := newTestAPI(t)
	tr := api.createTraining()
	p := api.createParticipant("Jane")
	base := "/admin/trainings/" + itoa(tr.ID)

	status, data := api.do(http.MethodPost, base+"/enrollments", api.admin, map[string]any{"participant_id": p.ID})
	require.Equal(t, fiber.StatusCreated, status, string(data))
	var e model.Enrollment
	api.decode(data, &e)
	assert.Equal(t, model.StatusNotStarted, e.Status)

	status, _ = api.do(http.MethodPost, base+"/enrollments", api.admin, map[string]any{"participant_id": p.ID})
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = api.do(
		http.MethodPut, "/admin/enrollments/"+itoa(e.ID)+"/status", api.admin, map[string]any{"status": "done"},
	)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, data = api.do(
		http.MethodPut, "/admin/enrollments/"+itoa(e.ID)+"/status", api.admin, map[string]any{"status": "completed"},
	)
	require.Equal(t, fiber.StatusOK, status, string(data))
	api.decode(data, &e)
	require.NotNil(t, e.Certificate)
	assert.False(t, e.Certificate.Published())

	status, data = api.do(http.MethodGet, "/admin/enrollments/"+itoa(e.ID)+"/history", api.admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	var events []model.EnrollmentEvent
	api.decode(data, &events)
	require.Len(t, events, 2)
	require.NotNil(t, events[1].Actor)
	assert.Equal(t, "root", *events[1].Actor)

	status, data = api.do(
		http.MethodPost, base+"/certificates/publish", api.admin, map[string]any{"participant_ids": []uint{p.ID, 999}},
	)
	require.Equal(t, fiber.StatusOK, status, string(data))
	var res struct {
		Updated []model.Certificate `json:"updated"`
		Skipped []issuance.Skip     `json:"skipped"`
	}
	api.decode(data, &res)
	require.Len(t, res.Updated, 1)
	assert.NotEmpty(t, res.Updated[0].License())
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, uint(999), res.Skipped[0].ParticipantID)
	assert.Equal(t, issuance.ReasonNotEnrolled, res.Skipped[0].Reason)

	status, _ = api.do(http.MethodPost, base+"/certificates/publish", api.admin, map[string]any{})
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = api.do(
		http.MethodPost, "/admin/trainings/4242/certificates/publish", api.admin,
		map[string]any{"participant_ids": []uint{p.ID}},
	)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestProvision(t *testing.T) {
	api := newTestAPI(t)
	tr := api.createTraining()
	enrolled := api.createParticipant("Max")
	other := api.createParticipant("Eva")
	base := "/admin/trainings/" + itoa(tr.ID)
	status, _ := api.do(
		http.MethodPost, base+"/certificates/provision", api.admin,
		map[string]any{"participant_ids": []uint{enrolled.ID}},
	)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, data := api.do(http.MethodPost, base+"/enrollments", api.admin, map[string]any{"participant_id": enrolled.ID})
	require.Equal(t, fiber.StatusCreated, status, string(data))
	status, data = api.do(
		http.MethodPost, base+"/certificates/provision", api.admin,
		map[string]any{"participant_ids": []uint{enrolled.ID, other.ID}},
	)
	require.Equal(t, fiber.StatusOK, status, string(data))
	var res struct {
		Updated []model.Certificate `json:"updated"`
		Skipped []issuance.Skip     `json:"skipped"`
	}
	api.decode(data, &res)
	assert.Empty(t, res.Updated)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, issuance.StatusReason(model.StatusNotStarted), res.Skipped[0].Reason)
	assert.Equal(t, issuance.ReasonNotEnrolled, res.Skipped[1].Reason)
}

func TestCertificateSettings(t *testing.T) {
	api := newTestAPI(t)
	status, data := api.do(http.MethodGet, "/admin/settings/certificates", api.admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	var settings model.CertificateSettings
	api.decode(data, &settings)
	assert.Equal(t, model.DefaultValidityYears, settings.ValidityYears)

	status, data = api.do(
		http.MethodPut, "/admin/settings/certificates", api.admin,
		model.CertificateSettings{CertifyingBody: "Safety Board", ValidityYears: 5},
	)
	require.Equal(t, fiber.StatusOK, status, string(data))
	api.decode(data, &settings)
	assert.Equal(t, 5, settings.ValidityYears)
	assert.Equal(t, "Safety Board", settings.CertifyingBody)

	status, _ = api.do(
		http.MethodPut, "/admin/settings/certificates", api.admin, model.CertificateSettings{ValidityYears: -1},
	)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestAdaptServerURLPort(t *testing.T) {
	tests := []struct {
		in   string
		port int
		want string
	}{
		{"https://example.org", 8080, "https://example.org:8080"},
		{"https://example.org:443/api", 9000, "https://example.org:9000/api"},
		{"", 8080, ""},
		{"https://example.org", 0, "https://example.org"},
		{"not a url", 8080, "not a url"},
	}
	for _, tt := range tests {
		t.Run(
			tt.in, func(t *testing.T) {
				assert.Equal(t, tt.want, adaptServerURLPort(tt.in, tt.port))
			},
		)
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
