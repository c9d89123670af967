package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/adapters/memory"
	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testHarness struct {
	svc      *Service
	repos    *memory.Repositories
	cache    *memory.Cache
	realtime *memory.Realtime
	email    *memory.Email
	now      time.Time
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	h := &testHarness{
		repos:    memory.NewRepositories(),
		cache:    memory.NewCache(),
		realtime: &memory.Realtime{},
		email:    &memory.Email{},
		now:      time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	h.svc = NewService(Dependencies{
		Config: Config{
			EmailMaxRetries:   2,
			EmailRetryBackoff: time.Millisecond,
			EmailTimeout:      time.Second,
		},
		Complaints:    h.repos.Complaints,
		Users:         h.repos.Users,
		Notifications: h.repos.Notifications,
		Outbox:        h.repos.Outbox,
		EventDedup:    h.repos.EventDedup,
		Cache:         h.cache,
		Locker:        memory.NewLocker(),
		Realtime:      h.realtime,
		Email:         h.email,
	})
	h.svc.nowFn = func() time.Time { return h.now }

	h.repos.Users.Put(domain.User{ID: "citizen-1", Name: "Asha", Email: "asha@example.com", Role: domain.RoleCitizen, Scope: scope("S1", "D1", "C1")})
	h.repos.Users.Put(domain.User{ID: "citizen-2", Name: "Ravi", Role: domain.RoleCitizen, Scope: scope("S1", "D2", "C2")})
	h.repos.Users.Put(domain.User{ID: "officer-1", Name: "Officer Rao", Role: domain.RoleOfficer, Scope: scope("S1", "D1", "C1")})
	h.repos.Users.Put(domain.User{ID: "officer-2", Name: "Officer Das", Role: domain.RoleOfficer, Scope: scope("S1", "D2", "C2")})
	h.repos.Users.Put(domain.User{ID: "district-admin", Role: domain.RoleDistrictAdmin, Scope: scope("S1", "D1", "C1")})
	h.repos.Users.Put(domain.User{ID: "admin", Role: domain.RoleAdmin})
	return h
}

func scope(state, district, city string) domain.Scope {
	return domain.Scope{StateID: &state, DistrictID: &district, CityID: &city}
}

func (h *testHarness) seedComplaint(id, category string, lat, lng float64, status domain.ComplaintStatus) domain.Complaint {
	c := domain.Complaint{
		ID:          id,
		TicketID:    "JSK-2026-1" + id[len(id)-4:],
		Title:       "Road damage " + id,
		Description: "Large pothole on main road",
		Category:    category,
		Severity:    2,
		Status:      status,
		Latitude:    lat,
		Longitude:   lng,
		Scope:       scope("S1", "D1", "C1"),
		AuthorID:    "citizen-1",
		CreatedAt:   h.now.Add(-time.Hour),
		UpdatedAt:   h.now.Add(-time.Hour),
	}
	h.repos.Complaints.Put(c)
	return c
}

func actorOf(t *testing.T, h *testHarness, userID string) domain.Actor {
	t.Helper()
	u, err := h.repos.Users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	return domain.ActorFromUser(u)
}

const processedPayload = `{
	"complaint_id": "cmp-0001",
	"ticketId": "JSK-2026-10001",
	"districtId": "D1",
	"analysis": {"category": "Pothole", "severity": "High", "confidence": 0.91, "reasoning": "vehicles at risk"},
	"status": "IN_PROGRESS",
	"assigned_officer": "officer-1",
	"is_duplicate": false
}`

func TestHandleComplaintProcessedIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.seedComplaint("cmp-0001", "General", 12.9716, 77.5946, domain.StatusPending)
	ctx := context.Background()

	require.NoError(t, h.svc.HandleEvent(ctx, domain.TopicComplaintProcessed, []byte(processedPayload)))
	first, err := h.repos.Complaints.GetByID(ctx, "cmp-0001")
	require.NoError(t, err)

	require.NoError(t, h.svc.HandleEvent(ctx, domain.TopicComplaintProcessed, []byte(processedPayload)))
	second, err := h.repos.Complaints.GetByID(ctx, "cmp-0001")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, domain.StatusInProgress, second.Status)
	assert.Equal(t, "Pothole", second.Category)
	require.NotNil(t, second.AssignedToID)
	assert.Equal(t, "officer-1", *second.AssignedToID)
	assert.GreaterOrEqual(t, second.Severity, 4)
	assert.InDelta(t, 0.91, second.ConfidenceScore, 1e-9)

	notifications := h.repos.Notifications.All()
	require.Len(t, notifications, 1)
	assert.Equal(t, domain.NotificationStatusUpdate, notifications[0].Type)
	assert.Equal(t, "citizen-1", notifications[0].UserID)
	assert.Equal(t, "Your complaint JSK-2026-10001 status has been updated to IN_PROGRESS.", notifications[0].Message)
	assert.Len(t, h.email.Sent(), 1)
}

func TestHandleComplaintProcessedRedeliveryAfterLostMarker(t *testing.T) {
	h := newHarness(t)
	h.seedComplaint("cmp-0001", "General", 12.9716, 77.5946, domain.StatusPending)
	ctx := context.Background()

	require.NoError(t, h.svc.HandleComplaintProcessed(ctx, []byte(processedPayload)))
	// a fresh dedup store behaves like a crash before the marker was written
	h.svc.eventDedup = memory.NewRepositories().EventDedup
	require.NoError(t, h.svc.HandleComplaintProcessed(ctx, []byte(processedPayload)))

	assert.Len(t, h.repos.Notifications.All(), 1)
	assert.Len(t, h.email.Sent(), 1)
}

func TestHandleComplaintProcessedWithoutOfficerKeepsStatus(t *testing.T) {
	h := newHarness(t)
	h.seedComplaint("cmp-0002", "General", 12.9716, 77.5946, domain.StatusPending)
	payload := `{"complaint_id":"cmp-0002","analysis":{"category":"Streetlight","severity":"Critical","confidence":0.5},"assigned_officer":null,"is_duplicate":true}`

	require.NoError(t, h.svc.HandleComplaintProcessed(context.Background(), []byte(payload)))

	got, err := h.repos.Complaints.GetByID(context.Background(), "cmp-0002")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Nil(t, got.AssignedToID)
	assert.Equal(t, 5, got.Severity)
	assert.True(t, got.IsDuplicate)
	assert.JSONEq(t, `{"category":"Streetlight","severity":"Critical","confidence":0.5}`, string(got.AIAnalysis))
}

func TestHandleComplaintProcessedSkipsUnknownOfficer(t *testing.T) {
	for _, officer := range []string{"officer-404", "citizen-2"} {
		t.Run(officer, func(t *testing.T) {
			h := newHarness(t)
			h.seedComplaint("cmp-0001", "General", 12.9716, 77.5946, domain.StatusPending)
			payload := strings.Replace(processedPayload, `"officer-1"`, `"`+officer+`"`, 1)
			ctx := context.Background()

			require.NoError(t, h.svc.HandleEvent(ctx, domain.TopicComplaintProcessed, []byte(payload)))
			require.NoError(t, h.svc.HandleEvent(ctx, domain.TopicComplaintProcessed, []byte(payload)))

			got, err := h.repos.Complaints.GetByID(ctx, "cmp-0001")
			require.NoError(t, err)
			assert.Nil(t, got.AssignedToID)
			assert.Equal(t, domain.StatusPending, got.Status)
			assert.Equal(t, "Pothole", got.Category)
			assert.Len(t, h.repos.Notifications.All(), 1)
		})
	}
}

// holdTracker wraps a locker and records how many holders a key ever had at once.
type holdTracker struct {
	inner ports.Locker

	mu     sync.Mutex
	active int
	peak   int
}

func (l *holdTracker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	release, err := l.inner.Acquire(ctx, key, ttl)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.active++
	if l.active > l.peak {
		l.peak = l.active
	}
	l.mu.Unlock()
	return func(ctx context.Context) error {
		l.mu.Lock()
		l.active--
		l.mu.Unlock()
		return release(ctx)
	}, nil
}

func TestConcurrentVerdictsForOneComplaintAreSerialized(t *testing.T) {
	h := newHarness(t)
	h.seedComplaint("cmp-0001", "General", 12.9716, 77.5946, domain.StatusPending)
	tracker := &holdTracker{inner: memory.NewLocker()}
	h.svc.locker = tracker
	rejected := []byte(`{"complaint_id":"cmp-0001","score":0.9,"reason":"spam"}`)

	start := make(chan struct{})
	errs := make(chan error, 16)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		topic, payload := domain.TopicComplaintProcessed, []byte(processedPayload)
		if i%2 == 1 {
			topic, payload = domain.TopicComplaintRejected, rejected
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs <- h.svc.HandleEvent(context.Background(), topic, payload)
		}()
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 1, tracker.peak)

	got, err := h.repos.Complaints.GetByID(context.Background(), "cmp-0001")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, got.Status)
	assert.InDelta(t, 0.9, got.SpamScore, 1e-9)

	processedMarker := domain.MarkerKey(domain.TopicComplaintProcessed, "cmp-0001", string(domain.StatusInProgress))
	rejectedMarker := domain.MarkerKey(domain.TopicComplaintRejected, "cmp-0001", string(domain.StatusRejected))
	perKey := map[string]int{}
	for _, n := range h.repos.Notifications.All() {
		perKey[n.DedupKey]++
	}
	assert.Equal(t, 1, perKey[rejectedMarker])
	assert.LessOrEqual(t, perKey[processedMarker], 1)
	assert.LessOrEqual(t, len(perKey), 2)
}

func TestHandleComplaintProcessedSkipsTerminalComplaint(t *testing.T) {
	h := newHarness(t)
	h.seedComplaint("cmp-0001", "Pothole", 12.9716, 77.5946, domain.StatusResolved)

	require.NoError(t, h.svc.HandleComplaintProcessed(context.Background(), []byte(processedPayload)))

	got, err := h.repos.Complaints.GetByID(context.Background(), "cmp-0001")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, got.Status)
	assert.Nil(t, got.AssignedToID)
	assert.Empty(t, h.repos.Notifications.All())
}

func TestHandleComplaintProcessedDropsUnknownComplaint(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.svc.HandleComplaintProcessed(context.Background(), []byte(processedPayload)))
	assert.Empty(t, h.repos.Notifications.All())
}

func TestHandleEventRejectsMalformedPayload(t *testing.T) {
	h := newHarness(t)
	err := h.svc.HandleEvent(context.Background(), domain.TopicComplaintProcessed, []byte(`{"analysis":{}}`))
	assert.ErrorIs(t, err, domain.ErrMalformedEvent)

	err = h.svc.HandleEvent(context.Background(), "complaint_unknown", []byte(`{}`))
	assert.ErrorIs(t, err, domain.ErrUnsupportedEventType)
}

func TestHandleComplaintRejected(t *testing.T) {
	h := newHarness(t)
	h.seedComplaint("cmp-0003", "General", 12.9716, 77.5946, domain.StatusPending)
	payload := []byte(`{"complaint_id":"cmp-0003","score":0.9,"reason":"spam detected"}`)

	require.NoError(t, h.svc.HandleEvent(context.Background(), domain.TopicComplaintRejected, payload))
	require.NoError(t, h.svc.HandleEvent(context.Background(), domain.TopicComplaintRejected, payload))

	got, err := h.repos.Complaints.GetByID(context.Background(), "cmp-0003")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, got.Status)
	assert.InDelta(t, 0.9, got.SpamScore, 1e-9)

	notifications := h.repos.Notifications.All()
	require.Len(t, notifications, 1)
	assert.Equal(t, domain.NotificationStatusUpdate, notifications[0].Type)
	assert.Equal(t, "citizen-1", notifications[0].UserID)

	var rejectedEvents int
	for _, evt := range h.realtime.Events() {
		if evt.Event == "complaint-rejected" {
			rejectedEvents++
		}
	}
	assert.Equal(t, 1, rejectedEvents)
}

func TestHandleComplaintRejectedStoreFailureIsRetryable(t *testing.T) {
	h := newHarness(t)
	h.seedComplaint("cmp-0003", "General", 12.9716, 77.5946, domain.StatusPending)
	payload := []byte(`{"complaint_id":"cmp-0003","score":0.9,"reason":"spam"}`)
	h.repos.Complaints.SetFailWrites(domain.ErrStorageUnavailable)

	err := h.svc.HandleComplaintRejected(context.Background(), payload)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStorageUnavailable))
	assert.Empty(t, h.repos.Notifications.All())

	h.repos.Complaints.SetFailWrites(nil)
	require.NoError(t, h.svc.HandleComplaintRejected(context.Background(), payload))
	got, err := h.repos.Complaints.GetByID(context.Background(), "cmp-0003")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, got.Status)
	assert.Len(t, h.repos.Notifications.All(), 1)
}

func TestHandleComplaintRejectedNotificationFailureIsRetryable(t *testing.T) {
	h := newHarness(t)
	h.seedComplaint("cmp-0003", "General", 12.9716, 77.5946, domain.StatusPending)
	payload := []byte(`{"complaint_id":"cmp-0003","score":0.9,"reason":"spam"}`)
	h.repos.Notifications.FailCreates = domain.ErrStorageUnavailable

	require.Error(t, h.svc.HandleComplaintRejected(context.Background(), payload))

	h.repos.Notifications.FailCreates = nil
	require.NoError(t, h.svc.HandleComplaintRejected(context.Background(), payload))
	assert.Len(t, h.repos.Notifications.All(), 1)
}

func TestFindNearbyDuplicates(t *testing.T) {
	h := newHarness(t)
	h.seedComplaint("cmp-near", "Pothole", 12.9720, 77.5950, domain.StatusPending)
	h.seedComplaint("cmp-prog", "Pothole", 12.9712, 77.5941, domain.StatusInProgress)
	h.seedComplaint("cmp-far1", "Pothole", 13.0166, 77.5946, domain.StatusPending)
	h.seedComplaint("cmp-done", "Pothole", 12.9716, 77.5946, domain.StatusResolved)
	h.seedComplaint("cmp-othr", "Garbage", 12.9716, 77.5946, domain.StatusPending)

	got, err := h.svc.FindNearbyDuplicates(context.Background(), 12.9716, 77.5946, "Pothole")
	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, c := range got {
		assert.Equal(t, "Pothole", c.Category)
		assert.NotEqual(t, domain.StatusResolved, c.Status)
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []string{"cmp-near", "cmp-prog"}, ids)

	_, err = h.svc.FindNearbyDuplicates(context.Background(), 12.9716, 77.5946, " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDuplicateDensityRaisesSeverity(t *testing.T) {
	h := newHarness(t)
	target := h.seedComplaint("cmp-0009", "General", 12.9716, 77.5946, domain.StatusPending)
	for _, id := range []string{"cmp-1001", "cmp-1002", "cmp-1003", "cmp-1004", "cmp-1005"} {
		h.seedComplaint(id, "Flooding", 12.9717, 77.5947, domain.StatusPending)
	}
	analysis := domain.ComplaintAnalysis{Category: "Flooding", Severity: "Low", Reasoning: "emergency near hospital"}

	density, err := h.svc.duplicateDensity(context.Background(), target, "Flooding")
	require.NoError(t, err)
	assert.Equal(t, 5, density)
	assert.Greater(t, verdictSeverity(target, analysis, density), verdictSeverity(target, analysis, 0))
}

func TestChangeStatusResolvedAwardsPointsAndNotifies(t *testing.T) {
	h := newHarness(t)
	h.seedComplaint("cmp-0004", "Pothole", 12.9716, 77.5946, domain.StatusInProgress)

	view, err := h.svc.ChangeStatus(context.Background(), actorOf(t, h, "officer-1"), "cmp-0004", ChangeStatusRequest{Status: "RESOLVED", Note: "patched"})
	require.NoError(t, err)
	assert.Equal(t, "RESOLVED", view.Status)

	author, err := h.repos.Users.GetByID(context.Background(), "citizen-1")
	require.NoError(t, err)
	assert.Equal(t, 50, author.Points)

	notifications := h.repos.Notifications.All()
	require.Len(t, notifications, 1)
	assert.Equal(t, domain.NotificationResolved, notifications[0].Type)

	records := h.repos.Outbox.Records()
	require.Len(t, records, 1)
	assert.Equal(t, domain.TopicComplaintResolved, records[0].EventType)
	assert.Equal(t, "cmp-0004", records[0].PartitionKey)
}

func TestChangeStatusAuthorization(t *testing.T) {
	h := newHarness(t)
	h.seedComplaint("cmp-0005", "Pothole", 12.9716, 77.5946, domain.StatusPending)
	ctx := context.Background()

	_, err := h.svc.ChangeStatus(ctx, actorOf(t, h, "citizen-1"), "cmp-0005", ChangeStatusRequest{Status: "RESOLVED"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = h.svc.ChangeStatus(ctx, actorOf(t, h, "officer-2"), "cmp-0005", ChangeStatusRequest{Status: "IN_PROGRESS"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = h.svc.ChangeStatus(ctx, actorOf(t, h, "officer-1"), "cmp-0005", ChangeStatusRequest{Status: "CLOSED"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	stale := domain.Actor{UserID: "ghost", Role: domain.RoleStateAdmin}
	_, err = h.svc.ChangeStatus(ctx, stale, "cmp-0005", ChangeStatusRequest{Status: "IN_PROGRESS"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestChangeStatusTerminalRegression(t *testing.T) {
	h := newHarness(t)
	h.seedComplaint("cmp-0006", "Pothole", 12.9716, 77.5946, domain.StatusRejected)
	ctx := context.Background()

	view, err := h.svc.ChangeStatus(ctx, actorOf(t, h, "district-admin"), "cmp-0006", ChangeStatusRequest{Status: "PENDING"})
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", view.Status)
	assert.Empty(t, h.repos.Notifications.All())

	view, err = h.svc.ChangeStatus(ctx, actorOf(t, h, "admin"), "cmp-0006", ChangeStatusRequest{Status: "PENDING"})
	require.NoError(t, err)
	assert.Equal(t, "PENDING", view.Status)
	assert.Len(t, h.repos.Notifications.All(), 1)
}

func TestAssignOfficer(t *testing.T) {
	h := newHarness(t)
	h.seedComplaint("cmp-0007", "Pothole", 12.9716, 77.5946, domain.StatusPending)
	ctx := context.Background()

	_, err := h.svc.AssignOfficer(ctx, actorOf(t, h, "officer-1"), "cmp-0007", AssignOfficerRequest{OfficerID: "officer-1"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = h.svc.AssignOfficer(ctx, actorOf(t, h, "district-admin"), "cmp-0007", AssignOfficerRequest{OfficerID: "citizen-2"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	view, err := h.svc.AssignOfficer(ctx, actorOf(t, h, "district-admin"), "cmp-0007", AssignOfficerRequest{OfficerID: "officer-1"})
	require.NoError(t, err)
	assert.Equal(t, "IN_PROGRESS", view.Status)
	require.NotNil(t, view.AssignedToID)
	assert.Equal(t, "officer-1", *view.AssignedToID)

	notifications := h.repos.Notifications.All()
	require.Len(t, notifications, 1)
	assert.Equal(t, domain.NotificationComplaintAssigned, notifications[0].Type)
	assert.Contains(t, notifications[0].Message, "Officer Rao")

	var officerEvents int
	for _, evt := range h.realtime.Events() {
		if evt.Channel == "user-officer-1" && evt.Event == "complaint-assigned" {
			officerEvents++
		}
	}
	assert.Equal(t, 1, officerEvents)
}

func TestSubmitComplaint(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	actor := actorOf(t, h, "citizen-1")

	view, err := h.svc.SubmitComplaint(ctx, actor, SubmitComplaintRequest{
		Title:       "Flooding near hospital",
		Description: "Emergency: road is flooding and blocking road access",
		Latitude:    12.9716,
		Longitude:   77.5946,
	})
	require.NoError(t, err)
	assert.True(t, domain.ValidTicketID(view.TicketID), view.TicketID)
	assert.Equal(t, "PENDING", view.Status)
	assert.Equal(t, "General", view.Category)
	require.NotNil(t, view.DistrictID)
	assert.Equal(t, "D1", *view.DistrictID)
	assert.GreaterOrEqual(t, view.Severity, 2)

	records := h.repos.Outbox.Records()
	require.Len(t, records, 1)
	assert.Equal(t, domain.TopicComplaintSubmitted, records[0].EventType)
	assert.Contains(t, string(records[0].Payload), view.TicketID)

	notifications := h.repos.Notifications.All()
	require.Len(t, notifications, 1)
	assert.Equal(t, domain.NotificationComplaintRegistered, notifications[0].Type)
	assert.Equal(t, "Your complaint "+view.TicketID+" has been successfully registered.", notifications[0].Message)

	_, err = h.svc.SubmitComplaint(ctx, actor, SubmitComplaintRequest{Title: "", Description: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSubmitComplaintRateLimited(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	actor := actorOf(t, h, "citizen-2")
	req := SubmitComplaintRequest{Title: "Garbage", Description: "Garbage pile", Latitude: 10, Longitude: 10}

	for i := 0; i < 10; i++ {
		_, err := h.svc.SubmitComplaint(ctx, actor, req)
		require.NoError(t, err)
	}
	_, err := h.svc.SubmitComplaint(ctx, actor, req)
	assert.ErrorIs(t, err, domain.ErrRateLimitExceeded)
}

func TestListComplaintsAppliesTenantFilter(t *testing.T) {
	h := newHarness(t)
	h.seedComplaint("cmp-0010", "Pothole", 12.9716, 77.5946, domain.StatusPending)
	other := h.seedComplaint("cmp-0011", "Pothole", 12.9716, 77.5946, domain.StatusPending)
	other.AuthorID = "citizen-2"
	other.Scope = scope("S1", "D2", "C2")
	h.repos.Complaints.Put(other)
	ctx := context.Background()

	own, err := h.svc.ListComplaints(ctx, actorOf(t, h, "citizen-1"), domain.ComplaintFilter{})
	require.NoError(t, err)
	require.Len(t, own.Items, 1)
	assert.Equal(t, "cmp-0010", own.Items[0].ID)

	district, err := h.svc.ListComplaints(ctx, actorOf(t, h, "officer-2"), domain.ComplaintFilter{})
	require.NoError(t, err)
	require.Len(t, district.Items, 1)
	assert.Equal(t, "cmp-0011", district.Items[0].ID)

	all, err := h.svc.ListComplaints(ctx, actorOf(t, h, "admin"), domain.ComplaintFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	none, err := h.svc.ListComplaints(ctx, domain.Actor{UserID: "x", Role: domain.RoleCityAdmin}, domain.ComplaintFilter{})
	require.NoError(t, err)
	assert.Empty(t, none.Items)
}

func TestGetComplaintChecksOwnershipAndScope(t *testing.T) {
	h := newHarness(t)
	h.seedComplaint("cmp-0012", "Pothole", 12.9716, 77.5946, domain.StatusPending)
	ctx := context.Background()

	_, err := h.svc.GetComplaint(ctx, actorOf(t, h, "citizen-1"), "cmp-0012")
	assert.NoError(t, err)
	_, err = h.svc.GetComplaint(ctx, actorOf(t, h, "citizen-2"), "cmp-0012")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = h.svc.GetComplaint(ctx, actorOf(t, h, "officer-1"), "cmp-0012")
	assert.NoError(t, err)
	_, err = h.svc.GetComplaint(ctx, actorOf(t, h, "admin"), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
