package services

import (
	"context"
	"net/url"
	"testing"
	"time"

	"campus-portal-backend/internal/models"
	"campus-portal-backend/internal/repository/memory"
	"campus-portal-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = models.Actor{ID: "alice", Role: "user"}
	bob   = models.Actor{ID: "bob", Role: "user"}
	admin = models.Actor{ID: "root", Role: models.RoleAdmin}
)

func testUsers() *memory.UserStore {
	return memory.NewUserStore(
		models.User{ID: "alice", Name: "Alice", Email: "alice@campus.edu", Department: "CSE", Batch: "2025", IsStudentVerified: true},
		models.User{ID: "bob", Name: "Bob", Email: "bob@campus.edu"},
		models.User{ID: "root", Name: "Admin", Email: "admin@campus.edu", Role: models.RoleAdmin},
	)
}

func newEventService(t *testing.T) *ListingService[*models.Event] {
	t.Helper()
	repo := memory.NewListingStore(func() *models.Event { return &models.Event{} })
	return NewListingService(EventSchema(), repo, testUsers(), NewImageResolver(&fakeStorage{}), nil)
}

func techFest() Fields {
	return Fields{
		"title":       "Tech Fest",
		"description": "...",
		"date":        "2025-05-01T10:00",
		"location":    "Auditorium",
	}
}

func TestTechFestScenario(t *testing.T) {
	ctx := context.Background()
	svc := newEventService(t)

	ev, err := svc.Create(ctx, alice, techFest(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, ev.Images)
	assert.Equal(t, []string{}, ev.Interested)
	assert.Equal(t, "other", ev.Category)
	assert.Equal(t, time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC), ev.Date)
	require.NotNil(t, ev.Poster)
	assert.Equal(t, "Alice", ev.Poster.Name)
	assert.True(t, ev.Poster.IsStudentVerified)

	ev, member, err := svc.ToggleMember(ctx, bob, ev.ID)
	require.NoError(t, err)
	assert.True(t, member)
	assert.Equal(t, []string{"bob"}, ev.Interested)

	ev, member, err = svc.ToggleMember(ctx, bob, ev.ID)
	require.NoError(t, err)
	assert.False(t, member)
	assert.Equal(t, []string{}, ev.Interested)
}

func TestCreateRequiresFields(t *testing.T) {
	svc := newEventService(t)
	fields := techFest()
	delete(fields, "location")

	_, err := svc.Create(context.Background(), alice, fields, nil)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.ErrorContains(t, err, "location is required")
}

func TestCreateRejectsTooManyImages(t *testing.T) {
	svc := newEventService(t)
	files := make([]storage.File, 6)
	for i := range files {
		files[i] = storage.File{Name: "x.png", ContentType: "image/png"}
	}

	_, err := svc.Create(context.Background(), alice, techFest(), files)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCreateDropsMalformedTags(t *testing.T) {
	svc := newEventService(t)
	fields := techFest()
	fields["tags"] = "[not json"
	fields["coordinates"] = `{"lat": 12.9, "lng": 77.5}`

	ev, err := svc.Create(context.Background(), alice, fields, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, ev.Tags)
	require.NotNil(t, ev.Coordinates)
	assert.Equal(t, 12.9, ev.Coordinates.Lat)
}

func TestUpdateKeepsAbsentFields(t *testing.T) {
	ctx := context.Background()
	svc := newEventService(t)
	fields := techFest()
	fields["tags"] = `["tech","fest"]`
	fields["requiresRSVP"] = "true"

	ev, err := svc.Create(ctx, alice, fields, []storage.File{{Name: "a.png"}})
	require.NoError(t, err)
	require.Len(t, ev.Images, 1)

	updated, err := svc.Update(ctx, alice, ev.ID, Fields{"title": "Tech Fest 2025", "location": ""}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "Tech Fest 2025", updated.Title)
	assert.Equal(t, ev.Description, updated.Description)
	assert.Equal(t, "Auditorium", updated.Location)
	assert.Equal(t, ev.Date, updated.Date)
	assert.Equal(t, []string{"tech", "fest"}, updated.Tags)
	assert.True(t, updated.RequiresRSVP)
	assert.Equal(t, ev.Images, updated.Images)
	assert.Equal(t, ev.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "alice", updated.Owner)
}

func TestUpdateMergesExistingAndNewImages(t *testing.T) {
	ctx := context.Background()
	svc := newEventService(t)

	ev, err := svc.Create(ctx, alice, techFest(), []storage.File{{Name: "a.png"}, {Name: "b.png"}})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, alice, ev.ID, Fields{}, []string{ev.Images[1]}, []storage.File{{Name: "c.png"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"mem://events/b.png", "mem://events/c.png"}, updated.Images)

	_, err = svc.Update(ctx, alice, ev.ID, Fields{}, nil, make([]storage.File, 4))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestOnlyOwnerOrAdminMutates(t *testing.T) {
	ctx := context.Background()
	svc := newEventService(t)

	ev, err := svc.Create(ctx, alice, techFest(), nil)
	require.NoError(t, err)

	_, err = svc.Update(ctx, bob, ev.ID, Fields{"title": "mine now"}, nil, nil)
	assert.ErrorIs(t, err, models.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, bob, ev.ID), models.ErrForbidden)

	_, err = svc.Update(ctx, admin, ev.ID, Fields{"title": "moderated"}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, admin, ev.ID))

	_, err = svc.Get(ctx, ev.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, alice, ev.ID), models.ErrNotFound)
}

func TestGetIncrementsViews(t *testing.T) {
	ctx := context.Background()
	svc := newEventService(t)

	ev, err := svc.Create(ctx, alice, techFest(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ev.Views)

	for want := 1; want <= 3; want++ {
		got, err := svc.Get(ctx, ev.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got.Views)
		assert.Equal(t, ev.Title, got.Title)
	}
}

func TestEventsListByDateAscending(t *testing.T) {
	ctx := context.Background()
	svc := newEventService(t)

	later := techFest()
	later["date"] = "2025-06-01"
	_, err := svc.Create(ctx, alice, later, nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, techFest(), nil)
	require.NoError(t, err)

	events, err := svc.List(ctx, url.Values{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "bob", events[0].Owner)
	assert.Equal(t, "Bob", events[0].Poster.Name)
}

func newJobService() *ListingService[*models.Job] {
	repo := memory.NewListingStore(func() *models.Job { return &models.Job{} })
	return NewListingService(JobSchema(), repo, testUsers(), NewImageResolver(&fakeStorage{}), nil)
}

func TestApplyTwiceFails(t *testing.T) {
	ctx := context.Background()
	svc := newJobService()

	job, err := svc.Create(ctx, alice, Fields{"title": "Intern", "company": "Acme", "description": "Build things"}, nil)
	require.NoError(t, err)
	assert.True(t, job.IsActive)

	count, err := svc.AddMember(ctx, bob, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = svc.AddMember(ctx, bob, job.ID)
	assert.ErrorIs(t, err, models.ErrAlreadyMember)

	got, err := svc.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, got.Applicants)
}

func TestJobsListActiveByDefault(t *testing.T) {
	ctx := context.Background()
	svc := newJobService()

	_, err := svc.Create(ctx, alice, Fields{"title": "Open", "company": "Acme", "description": "x"}, nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, alice, Fields{"title": "Closed", "company": "Acme", "description": "x", "isActive": "false"}, nil)
	require.NoError(t, err)

	jobs, err := svc.List(ctx, url.Values{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Open", jobs[0].Title)

	jobs, err = svc.List(ctx, url.Values{"isActive": {"all"}})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	_, err = svc.List(ctx, url.Values{"isActive": {"maybe"}})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestHousingRentSource(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewListingStore(func() *models.HousingPost { return &models.HousingPost{} })
	svc := NewListingService(HousingSchema(), repo, testUsers(), NewImageResolver(&fakeStorage{}), nil)

	offer, err := svc.Create(ctx, alice, Fields{"postType": "available", "title": "Seat", "location": "Gate 2", "rent": "4500", "maxBudget": "9000"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 4500.0, offer.Rent)

	wanted, err := svc.Create(ctx, bob, Fields{"postType": "wanted", "title": "Need seat", "location": "Gate 2", "rent": "4500", "maxBudget": "3000"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, wanted.Rent)

	_, err = svc.Create(ctx, bob, Fields{"postType": "swap", "title": "x", "location": "y"}, nil)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Create(ctx, bob, Fields{"postType": "available", "title": "x", "location": "y", "rent": "cheap"}, nil)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func newLostFoundService() *ListingService[*models.LostFoundItem] {
	repo := memory.NewListingStore(func() *models.LostFoundItem { return &models.LostFoundItem{} })
	return NewListingService(LostFoundSchema(), repo, testUsers(), NewImageResolver(&fakeStorage{}), nil)
}

func wallet() Fields {
	return Fields{"title": "Wallet", "description": "Brown leather", "type": "lost", "category": "accessories", "location": "Library"}
}

func TestClaimOnce(t *testing.T) {
	ctx := context.Background()
	svc := newLostFoundService()

	item, err := svc.Create(ctx, alice, wallet(), nil)
	require.NoError(t, err)
	assert.Equal(t, models.LostFoundActive, item.Status)
	assert.Nil(t, item.Claimant)

	claimed, err := svc.Claim(ctx, bob, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LostFoundClaimed, claimed.Status)
	assert.Equal(t, "bob", claimed.ClaimedBy)
	require.NotNil(t, claimed.Claimant)
	assert.Equal(t, "Bob", claimed.Claimant.Name)
	assert.Equal(t, "bob@campus.edu", claimed.Claimant.Email)
	require.NotNil(t, claimed.Poster)
	assert.Equal(t, "Alice", claimed.Poster.Name)

	fetched, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.Claimant)
	assert.Equal(t, "Bob", fetched.Claimant.Name)

	_, err = svc.Claim(ctx, admin, item.ID)
	assert.ErrorIs(t, err, models.ErrInvalidState)

	_, err = svc.Claim(ctx, bob, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)

	active, err := svc.List(ctx, url.Values{})
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(ctx, url.Values{"status": {"all"}})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	svc := newLostFoundService()

	item, err := svc.Create(ctx, alice, wallet(), nil)
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, alice, item.ID, "lost-forever")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.SetStatus(ctx, bob, item.ID, models.LostFoundResolved)
	assert.ErrorIs(t, err, models.ErrForbidden)

	resolved, err := svc.SetStatus(ctx, alice, item.ID, models.LostFoundResolved)
	require.NoError(t, err)
	assert.Equal(t, models.LostFoundResolved, resolved.Status)
}

func TestLostFoundImageCap(t *testing.T) {
	svc := newLostFoundService()
	_, err := svc.Create(context.Background(), alice, wallet(), make([]storage.File, 4))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestOnCreatedHookRuns(t *testing.T) {
	ctx := context.Background()
	svc := newLostFoundService()

	var seen []string
	svc.OnCreated(func(ctx context.Context, item *models.LostFoundItem) {
		seen = append(seen, item.ID)
	})

	item, err := svc.Create(ctx, alice, wallet(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{item.ID}, seen)
}
