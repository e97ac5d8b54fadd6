package certhouse

import (
	"bytes"
	"context"
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
	"github.com/certhouse/certhouse/internal/cache"
	"github.com/certhouse/certhouse/issuance"
	"github.com/certhouse/certhouse/storage"
	"github.com/certhouse/certhouse/storage/model"
)

type testServer struct {
	t         *testing.T
	app       *fiber.App
	store     *storage.Storage
	publisher *issuance.Publisher
	training  *model.Training
}

func newTestServer(t *testing.T) *testServer {
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
	c, err := cache.New(context.Background(), cache.Config{})
	require.NoError(t, err)

	backends := s.Backends()
	publisher := &issuance.Publisher{
		Enrollments:  backends.Enrollments,
		Certificates: backends.Certificates,
		KV:           backends.KV,
		Renderer:     renderer,
		Licenses:     certificate.LicenseGenerator{},
		Artifacts:    &artifacts.BillyStore{FS: memfs.New(), URLPrefix: "/certificates"},
		Assets:       certificate.AssetResolver{FS: memfs.New()},
	}
	ch, err := NewCertHouse(
		ServerConf{Port: 7672}, backends, Services{
			Tokens:    tokens,
			Publisher: publisher,
			Provisioner: &issuance.Provisioner{
				Enrollments:  backends.Enrollments,
				Certificates: backends.Certificates,
			},
			Cache: c,
		},
	)
	require.NoError(t, err)

	start := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)
	training, err := backends.Trainings.Create(
		model.AddTraining{
			Name:          "Forklift Operation",
			StartsAt:      start,
			EndsAt:        start.Add(8 * time.Hour),
			CategoryCodes: []string{"FL-1"},
		},
	)
	require.NoError(t, err)
	return &testServer{
		t:         t,
		app:       ch.App(),
		store:     s,
		publisher: publisher,
		training:  training,
	}
}

func (s *testServer) do(method, path, token string, body any) (int, []byte) {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp.StatusCode, data
}

// participantUser creates a login account with a linked participant and
// returns the participant and a token
func (s *testServer) participantUser(username string) (*model.Participant, string) {
	s.t.Helper()
	u, err := s.store.UsersStorage().Create(username, "pw-"+username, "", model.RoleParticipant)
	require.NoError(s.t, err)
	p, err := s.store.ParticipantsStorage().Create(
		model.AddParticipant{
			UserID:    &u.ID,
			FirstName: "Sam",
			LastName:  "Worker",
		},
	)
	require.NoError(s.t, err)
	return p, s.login(username, "pw-"+username)
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	status, data := s.do(
		http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"username": username,
			"password": password,
		},
	)
	require.Equal(s.t, fiber.StatusOK, status, string(data))
	var tok tokenResponse
	require.NoError(s.t, json.Unmarshal(data, &tok))
	assert.Equal(s.t, "Bearer", tok.TokenType)
	assert.Equal(s.t, int64(3600), tok.ExpiresIn)
	return tok.AccessToken
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	_, token := s.participantUser("sam")
	assert.NotEmpty(t, token)

	status, _ := s.do(
		http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "sam", "password": "wrong"},
	)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = s.do(
		http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "nobody", "password": "x"},
	)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestSelfEnroll(t *testing.T) {
	s := newTestServer(t)
	_, token := s.participantUser("sam")
	path := "/api/v1/trainings/" + strconv.FormatUint(uint64(s.training.ID), 10) + "/enroll"

	status, _ := s.do(http.MethodPost, path, "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, data := s.do(http.MethodPost, path, token, nil)
	require.Equal(t, fiber.StatusCreated, status, string(data))
	var e model.Enrollment
	require.NoError(t, json.Unmarshal(data, &e))
	assert.Equal(t, model.StatusNotStarted, e.Status)

	status, _ = s.do(http.MethodPost, path, token, nil)
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = s.do(http.MethodPost, "/api/v1/trainings/9999/enroll", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestSelfEnroll_NoParticipantProfile(t *testing.T) {
	s := newTestServer(t)
	_, err := s.store.UsersStorage().Create("lonely", "pw", "", model.RoleParticipant)
	require.NoError(t, err)
	token := s.login("lonely", "pw")
	status, _ := s.do(
		http.MethodPost, "/api/v1/trainings/"+strconv.FormatUint(uint64(s.training.ID), 10)+"/enroll", token, nil,
	)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func (s *testServer) completeAndPublish(p *model.Participant) *model.Certificate {
	s.t.Helper()
	e, err := s.store.EnrollmentsStorage().ForParticipant(s.training.ID, p.ID)
	require.NoError(s.t, err)
	require.NotNil(s.t, e)
	_, err = s.store.EnrollmentsStorage().UpdateStatus(e.ID, model.StatusCompleted, "test")
	require.NoError(s.t, err)
	res, err := s.publisher.Publish(
		context.Background(), issuance.BatchRequest{
			TrainingID:     s.training.ID,
			ParticipantIDs: []uint{p.ID},
		},
	)
	require.NoError(s.t, err)
	updated := res.Updated()
	require.Len(s.t, updated, 1)
	return &updated[0]
}

func TestMyCertificatesAndVerify(t *testing.T) {
	s := newTestServer(t)
	p, token := s.participantUser("sam")
	tid := strconv.FormatUint(uint64(s.training.ID), 10)
	status, _ := s.do(http.MethodPost, "/api/v1/trainings/"+tid+"/enroll", token, nil)
	require.Equal(t, fiber.StatusCreated, status)

	status, data := s.do(http.MethodGet, "/api/v1/me/certificates", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, "[]", string(data))

	cert := s.completeAndPublish(p)

	status, data = s.do(http.MethodGet, "/api/v1/me/certificates", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	var certs []model.Certificate
	require.NoError(t, json.Unmarshal(data, &certs))
	require.Len(t, certs, 1)
	assert.Equal(t, cert.License(), certs[0].License())

	status, data = s.do(http.MethodGet, "/api/v1/me/certificates?training_ids=4242", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, "[]", string(data))
	status, data = s.do(http.MethodGet, "/api/v1/me/certificates?training_ids=4242,"+tid, token, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(data, &certs))
	assert.Len(t, certs, 1)
	status, _ = s.do(http.MethodGet, "/api/v1/me/certificates?training_ids=abc", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, data = s.do(http.MethodGet, "/certificates/verify/"+cert.License(), "", nil)
	require.Equal(t, fiber.StatusOK, status, string(data))
	var v Verification
	require.NoError(t, json.Unmarshal(data, &v))
	assert.True(t, v.Valid)
	assert.Equal(t, "Sam Worker", v.Holder)
	assert.Equal(t, "Forklift Operation", v.Training)
	require.NotNil(t, v.ExpiresAt)
	assert.True(t, v.ExpiresAt.After(v.IssuedAt))

	status, _ = s.do(http.MethodGet, "/certificates/verify/CERT-NOPE", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = s.do(http.MethodGet, "/certificates/verify/bad%20license!", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestFilterByTraining(t *testing.T) {
	certs := []model.Certificate{
		{ID: 1, TrainingID: 3},
		{ID: 2, TrainingID: 1},
		{ID: 3, TrainingID: 3},
	}
	got := filterByTraining(certs, []uint{3, 7})
	require.Len(t, got, 2)
	assert.Equal(t, uint(1), got[0].ID)
	assert.Equal(t, uint(3), got[1].ID)
	assert.Empty(t, filterByTraining(certs, []uint{9}))
}

func TestNewCertHouse_RequiresTokens(t *testing.T) {
	_, err := NewCertHouse(ServerConf{}, model.Backends{}, Services{})
	assert.Error(t, err)
}

func TestVerification_NoExpiry(t *testing.T) {
	data, err := json.Marshal(Verification{LicenseNumber: "CERT-T1-P1-X", Valid: true})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "expires_at")
}

func TestStaticMountPath(t *testing.T) {
	tests := []struct {
		prefix   string
		expected string
	}{
		{"", "/certificates"},
		{"/", "/certificates"},
		{"/files/certs/", "/files/certs"},
		{"certs", "/certs"},
		{"https://cdn.example.org/static/certs", "/static/certs"},
		{"https://cdn.example.org", "/certificates"},
	}
	for _, test := range tests {
		t.Run(
			test.prefix, func(t *testing.T) {
				assert.Equal(t, test.expected, staticMountPath(test.prefix))
			},
		)
	}
}
