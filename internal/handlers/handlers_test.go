package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"campus-portal-backend/internal/metrics"
	"campus-portal-backend/internal/models"
	"campus-portal-backend/internal/repository/memory"
	"campus-portal-backend/internal/services"
	"campus-portal-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = models.Actor{ID: "alice", Role: "user"}
	bob   = models.Actor{ID: "bob", Role: "user"}
	admin = models.Actor{ID: "root", Role: models.RoleAdmin}
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

type memStorage struct{}

func (memStorage) Upload(ctx context.Context, folder string, file storage.File) (string, error) {
	return fmt.Sprintf("mem://%s/%s", folder, file.Name), nil
}

type published struct {
	topic string
	msg   services.Message
}

type recorder struct {
	mu   sync.Mutex
	msgs []published
}

func (r *recorder) Publish(ctx context.Context, topic string, msg services.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, published{topic: topic, msg: msg})
	return nil
}

func (r *recorder) byEvent(event string) []published {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []published
	for _, p := range r.msgs {
		if p.msg.Event == event {
			out = append(out, p)
		}
	}
	return out
}

type testServer struct {
	handler       http.Handler
	auth          *services.AuthService
	bus           *recorder
	notifications *memory.NotificationStore
	notifier      *services.NotificationService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	users := memory.NewUserStore(
		models.User{ID: "alice", Name: "Alice", Email: "alice@campus.edu"},
		models.User{ID: "bob", Name: "Bob", Email: "bob@campus.edu"},
		models.User{ID: "root", Name: "Admin", Email: "admin@campus.edu", Role: models.RoleAdmin},
	)
	images := services.NewImageResolver(memStorage{})
	bus := &recorder{}
	store := memory.NewNotificationStore()
	auth := services.NewAuthService("test-secret")

	notifier := services.NewNotificationService(users, store, bus, nil, nil)
	lostFound := services.NewListingService(services.LostFoundSchema(),
		memory.NewListingStore(func() *models.LostFoundItem { return &models.LostFoundItem{} }), users, images, nil)
	lostFound.OnCreated(notifier.LostFoundPosted)

	handler := NewRouter(Deps{
		Auth: auth,
		Events: services.NewListingService(services.EventSchema(),
			memory.NewListingStore(func() *models.Event { return &models.Event{} }), users, images, nil),
		Housing: services.NewListingService(services.HousingSchema(),
			memory.NewListingStore(func() *models.HousingPost { return &models.HousingPost{} }), users, images, nil),
		Jobs: services.NewListingService(services.JobSchema(),
			memory.NewListingStore(func() *models.Job { return &models.Job{} }), users, images, nil),
		LostFound:      lostFound,
		Notifications:  notifier,
		Broadcaster:    bus,
		Metrics:        metrics.New(),
		AllowedOrigins: []string{"*"},
	})

	return &testServer{handler: handler, auth: auth, bus: bus, notifications: store, notifier: notifier}
}

type upload struct {
	name string
	data []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...upload) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile("images", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (s *testServer) do(t *testing.T, method, path string, actor *models.Actor, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if actor != nil {
		token, err := s.auth.GenerateJWT(*actor)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func eventFields() map[string]string {
	return map[string]string{
		"title":       "Tech Fest",
		"description": "Annual festival",
		"date":        "2025-05-01T10:00",
		"location":    "Auditorium",
	}
}

func (s *testServer) createEvent(t *testing.T, actor models.Actor, files ...upload) *models.Event {
	t.Helper()
	body, ct := multipartBody(t, eventFields(), files...)
	rec := s.do(t, http.MethodPost, "/api/events", &actor, body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[*models.Event](t, rec)
}

func TestCreateEvent(t *testing.T) {
	s := newTestServer(t)

	ev := s.createEvent(t, alice, upload{"poster.png", pngHeader})
	assert.Equal(t, "alice", ev.Owner)
	assert.Equal(t, []string{"mem://events/poster.png"}, ev.Images)
	require.NotNil(t, ev.Poster)
	assert.Equal(t, "Alice", ev.Poster.Name)

	sent := s.bus.byEvent(services.EventUpdate)
	require.Len(t, sent, 1)
	assert.Equal(t, services.TopicEvents, sent[0].topic)
	assert.Equal(t, "created", sent[0].msg.Type)
}

func TestCreateRequiresAuth(t *testing.T) {
	s := newTestServer(t)
	body, ct := multipartBody(t, eventFields())
	rec := s.do(t, http.MethodPost, "/api/events", nil, body, ct)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateValidation(t *testing.T) {
	s := newTestServer(t)

	fields := eventFields()
	delete(fields, "location")
	body, ct := multipartBody(t, fields)
	rec := s.do(t, http.MethodPost, "/api/events", &alice, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Error, "location")

	body, ct = multipartBody(t, eventFields(), upload{"notes.txt", []byte("plain text, not an image")})
	rec = s.do(t, http.MethodPost, "/api/events", &alice, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	big := append(append([]byte{}, pngHeader...), make([]byte, maxImageSize)...)
	body, ct = multipartBody(t, eventFields(), upload{"huge.png", big})
	rec = s.do(t, http.MethodPost, "/api/events", &alice, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Error, "5MB")

	assert.Empty(t, s.bus.byEvent(services.EventUpdate))
}

func TestCreateAcceptsJSON(t *testing.T) {
	s := newTestServer(t)
	body := `{"title":"Intern","company":"Acme","description":"Build things","skills":["go","sql"]}`
	rec := s.do(t, http.MethodPost, "/api/jobs", &alice, strings.NewReader(body), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	job := decode[*models.Job](t, rec)
	assert.Equal(t, []string{"go", "sql"}, job.Skills)
	assert.True(t, job.IsActive)
}

func TestOversizedBodyIsRejected(t *testing.T) {
	s := newTestServer(t)

	body := `{"title":"` + strings.Repeat("a", maxMultipartForm) + `","company":"Acme","description":"x"}`
	rec := s.do(t, http.MethodPost, "/api/jobs", &alice, strings.NewReader(body), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	form := "title=" + strings.Repeat("a", maxMultipartForm) + "&company=Acme&description=x"
	rec = s.do(t, http.MethodPost, "/api/jobs", &alice, strings.NewReader(form), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/jobs?isActive=all", nil, nil, "")
	assert.Empty(t, decode[[]*models.Job](t, rec))
}

func TestGetIncrementsViews(t *testing.T) {
	s := newTestServer(t)
	ev := s.createEvent(t, alice)

	rec := s.do(t, http.MethodGet, "/api/events/"+ev.ID, nil, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[*models.Event](t, rec).Views)

	rec = s.do(t, http.MethodGet, "/api/events/"+ev.ID, nil, nil, "")
	assert.Equal(t, 2, decode[*models.Event](t, rec).Views)

	rec = s.do(t, http.MethodGet, "/api/events/missing", nil, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Event not found", decode[ErrorResponse](t, rec).Error)
}

func TestListEvents(t *testing.T) {
	s := newTestServer(t)
	s.createEvent(t, alice)
	s.createEvent(t, bob)

	rec := s.do(t, http.MethodGet, "/api/events", nil, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]*models.Event](t, rec), 2)
}

func TestUpdateEvent(t *testing.T) {
	s := newTestServer(t)
	ev := s.createEvent(t, alice, upload{"a.png", pngHeader}, upload{"b.png", pngHeader})

	body, ct := multipartBody(t, map[string]string{"title": "Hijacked"})
	rec := s.do(t, http.MethodPut, "/api/events/"+ev.ID, &bob, body, ct)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body, ct = multipartBody(t, map[string]string{"existingImages": "not json"})
	rec = s.do(t, http.MethodPut, "/api/events/"+ev.ID, &alice, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartBody(t, map[string]string{
		"title":          "Tech Fest 2025",
		"location":       "",
		"existingImages": `["mem://events/b.png"]`,
	}, upload{"c.png", pngHeader})
	rec = s.do(t, http.MethodPut, "/api/events/"+ev.ID, &alice, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated := decode[*models.Event](t, rec)
	assert.Equal(t, "Tech Fest 2025", updated.Title)
	assert.Equal(t, "Auditorium", updated.Location)
	assert.Equal(t, []string{"mem://events/b.png", "mem://events/c.png"}, updated.Images)

	sent := s.bus.byEvent(services.EventUpdate)
	require.Len(t, sent, 2)
	assert.Equal(t, "updated", sent[1].msg.Type)
}

func TestDeleteEvent(t *testing.T) {
	s := newTestServer(t)
	ev := s.createEvent(t, alice)

	rec := s.do(t, http.MethodDelete, "/api/events/"+ev.ID, &bob, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/events/"+ev.ID, &admin, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Event deleted successfully", decode[MessageResponse](t, rec).Message)

	sent := s.bus.byEvent(services.EventUpdate)
	require.Len(t, sent, 2)
	assert.Equal(t, "deleted", sent[1].msg.Type)
	assert.Equal(t, map[string]string{"eventId": ev.ID}, sent[1].msg.Data)

	rec = s.do(t, http.MethodDelete, "/api/events/"+ev.ID, &alice, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleInterest(t *testing.T) {
	s := newTestServer(t)
	ev := s.createEvent(t, alice)

	rec := s.do(t, http.MethodPatch, "/api/events/"+ev.ID+"/interested", &bob, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"bob"}, decode[*models.Event](t, rec).Interested)

	sent := s.bus.byEvent(services.EventUpdate)
	last := sent[len(sent)-1]
	assert.Equal(t, "interestUpdated", last.msg.Type)
	data := last.msg.Data.(map[string]any)
	assert.Equal(t, 1, data["interestedCount"])

	rec = s.do(t, http.MethodPatch, "/api/events/"+ev.ID+"/interested", &bob, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[*models.Event](t, rec).Interested)

	rec = s.do(t, http.MethodPatch, "/api/events/"+ev.ID+"/interested", nil, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestApplyToJob(t *testing.T) {
	s := newTestServer(t)
	body, ct := multipartBody(t, map[string]string{"title": "Intern", "company": "Acme", "description": "Build things"})
	rec := s.do(t, http.MethodPost, "/api/jobs", &alice, body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	job := decode[*models.Job](t, rec)

	rec = s.do(t, http.MethodPost, "/api/jobs/"+job.ID+"/apply", &bob, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Application submitted", decode[MessageResponse](t, rec).Message)

	rec = s.do(t, http.MethodPost, "/api/jobs/"+job.ID+"/apply", &bob, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Already applied", decode[ErrorResponse](t, rec).Error)

	rec = s.do(t, http.MethodGet, "/api/jobs/"+job.ID, nil, nil, "")
	assert.Equal(t, []string{"bob"}, decode[*models.Job](t, rec).Applicants)

	rec = s.do(t, http.MethodPost, "/api/jobs/missing/apply", &bob, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/jobs?isActive=maybe", nil, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func (s *testServer) createLostFound(t *testing.T, actor models.Actor, typ string) *models.LostFoundItem {
	t.Helper()
	body, ct := multipartBody(t, map[string]string{
		"title":       "Blue wallet",
		"description": "Leather wallet near the library",
		"type":        typ,
		"category":    "accessories",
		"location":    "Library",
	})
	rec := s.do(t, http.MethodPost, "/api/lost-found", &actor, body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	s.notifier.Wait()
	return decode[*models.LostFoundItem](t, rec)
}

func TestLostFoundLifecycle(t *testing.T) {
	s := newTestServer(t)
	item := s.createLostFound(t, alice, models.LostItem)
	assert.Equal(t, models.LostFoundActive, item.Status)

	rec := s.do(t, http.MethodPost, "/api/lost-found/"+item.ID+"/claim", &bob, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	claimed := decode[*models.LostFoundItem](t, rec)
	assert.Equal(t, models.LostFoundClaimed, claimed.Status)
	assert.Equal(t, "bob", claimed.ClaimedBy)
	require.NotNil(t, claimed.Claimant)
	assert.Equal(t, "Bob", claimed.Claimant.Name)

	rec = s.do(t, http.MethodPost, "/api/lost-found/"+item.ID+"/claim", &admin, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Item already claimed or resolved", decode[ErrorResponse](t, rec).Error)

	rec = s.do(t, http.MethodGet, "/api/lost-found", nil, nil, "")
	assert.Empty(t, decode[[]*models.LostFoundItem](t, rec))
	rec = s.do(t, http.MethodGet, "/api/lost-found?status=all", nil, nil, "")
	assert.Len(t, decode[[]*models.LostFoundItem](t, rec), 1)

	status := func(actor models.Actor, value string) *httptest.ResponseRecorder {
		return s.do(t, http.MethodPut, "/api/lost-found/"+item.ID+"/status", &actor, strings.NewReader(`{"status":"`+value+`"}`), "application/json")
	}
	assert.Equal(t, http.StatusForbidden, status(bob, models.LostFoundResolved).Code)
	assert.Equal(t, http.StatusBadRequest, status(alice, "lost-forever").Code)

	rec = status(alice, models.LostFoundResolved)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.LostFoundResolved, decode[*models.LostFoundItem](t, rec).Status)
}

func TestLostFoundNotifications(t *testing.T) {
	s := newTestServer(t)
	item := s.createLostFound(t, alice, models.FoundItem)

	assert.Len(t, s.notifications.All(), 2)
	pushed := s.bus.byEvent(services.EventNotification)
	require.Len(t, pushed, 2)

	rec := s.do(t, http.MethodGet, "/api/notifications", &bob, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	inbox := decode[[]models.Notification](t, rec)
	require.Len(t, inbox, 1)
	n := inbox[0]
	assert.Equal(t, "🟢 Found Item: Blue wallet", n.Title)
	assert.Equal(t, "/lost-found/"+item.ID, n.Link)
	assert.False(t, n.Read)

	rec = s.do(t, http.MethodGet, "/api/notifications", &alice, nil, "")
	assert.Empty(t, decode[[]models.Notification](t, rec))

	rec = s.do(t, http.MethodPatch, "/api/notifications/"+n.ID+"/read", &alice, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/notifications/"+n.ID+"/read", &bob, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.Notification](t, rec).Read)

	rec = s.do(t, http.MethodGet, "/api/notifications", nil, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/health", nil, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Backend running", decode[map[string]any](t, rec)["message"])

	rec = s.do(t, http.MethodGet, "/metrics", nil, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(models.NewValidationError("title", "is required")))
	assert.Equal(t, http.StatusBadRequest, statusFor(fmt.Errorf("claim: %w", models.ErrInvalidState)))
	assert.Equal(t, http.StatusBadRequest, statusFor(models.ErrAlreadyMember))
	assert.Equal(t, http.StatusForbidden, statusFor(models.ErrForbidden))
	assert.Equal(t, http.StatusNotFound, statusFor(fmt.Errorf("get: %w", models.ErrNotFound)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(fmt.Errorf("upload: %w", models.ErrUpstream)))
}
