package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
	"github.com/nekogravitycat/servicehub-backend/internal/booking"
	"github.com/nekogravitycat/servicehub-backend/internal/booking/bookingtest"
	bookingHttp "github.com/nekogravitycat/servicehub-backend/internal/booking/http"
	"github.com/nekogravitycat/servicehub-backend/internal/catalog"
	"github.com/nekogravitycat/servicehub-backend/internal/db/dbtest"
	"github.com/nekogravitycat/servicehub-backend/internal/notification"
	notificationHttp "github.com/nekogravitycat/servicehub-backend/internal/notification/http"
	"github.com/nekogravitycat/servicehub-backend/internal/notification/notificationtest"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/response"
	"github.com/nekogravitycat/servicehub-backend/internal/tasks"
	"github.com/nekogravitycat/servicehub-backend/internal/user"
)

type fakeUsers map[string]*user.User

func (f fakeUsers) Register(context.Context, user.RegisterRequest) (*user.User, error) {
	return nil, user.ErrInvalidRole
}

func (f fakeUsers) Login(context.Context, string, string) (*user.User, error) {
	return nil, user.ErrInvalidCredentials
}

func (f fakeUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

type fakeServices map[string]*catalog.ProviderService

func (f fakeServices) GetService(_ context.Context, id string) (*catalog.ProviderService, error) {
	if s, ok := f[id]; ok {
		return s, nil
	}
	return nil, catalog.ErrServiceNotFound
}

type noopJobs struct{}

func (noopJobs) IncrementJobsCompleted(context.Context, string) error { return nil }

type testServer struct {
	router    *gin.Engine
	jwt       *auth.JWTManager
	users     fakeUsers
	sched     *tasks.LocalScheduler
	serviceID string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	customerID, providerID, serviceID := uuid.NewString(), uuid.NewString(), uuid.NewString()
	users := fakeUsers{
		customerID: {ID: customerID, FullName: "Casey Customer", Role: user.RoleCustomer, IsActive: true},
		providerID: {ID: providerID, FullName: "Pat Provider", Role: user.RoleProvider, IsActive: true},
	}
	services := fakeServices{
		serviceID: {ID: serviceID, ProviderID: providerID, Name: "Deep Clean", IsActive: true},
	}

	store := bookingtest.NewStore()
	notes := notificationtest.NewStore()
	sched := tasks.NewLocalScheduler(time.Second)
	t.Cleanup(func() { _ = sched.Shutdown(context.Background()) })

	notifier := notification.NewService(notes, sched)
	bookings := booking.NewService(store, dbtest.NewTxManager(store, notes), users, services, noopJobs{}, notifier)

	jwt := auth.NewJWTManager("test-secret", time.Minute)
	router := NewRouter(Config{
		UserService:         users,
		BookingService:      bookings,
		NotificationService: notifier,
		JWTManager:          jwt,
	})
	return &testServer{router: router, jwt: jwt, users: users, sched: sched, serviceID: serviceID}
}

func (s *testServer) idFor(role string) string {
	for id, u := range s.users {
		if u.Role == role {
			return id
		}
	}
	return ""
}

func (s *testServer) token(t *testing.T, role string) string {
	t.Helper()
	tok, err := s.jwt.GenerateAccessToken(s.idFor(role), role)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestRouter_BookingFlow(t *testing.T) {
	s := newTestServer(t)
	customerToken := s.token(t, user.RoleCustomer)
	providerToken := s.token(t, user.RoleProvider)

	lat, lng := 40.7589, -73.9851
	create := bookingHttp.CreateBookingRequest{
		ProviderID:       s.idFor(user.RoleProvider),
		ServiceID:        s.serviceID,
		BookingDate:      time.Now().Add(72 * time.Hour),
		ServiceAddress:   "5th Ave, New York",
		ServiceLatitude:  &lat,
		ServiceLongitude: &lng,
		QuotedPrice:      80,
	}

	var bookingID string

	t.Run("Requires Token", func(t *testing.T) {
		w := s.do("GET", "/v1/bookings", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Provider Cannot Create", func(t *testing.T) {
		w := s.do("POST", "/v1/bookings", create, providerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Half Coordinates Rejected", func(t *testing.T) {
		bad := create
		bad.ServiceLongitude = nil
		w := s.do("POST", "/v1/bookings", bad, customerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Customer Creates", func(t *testing.T) {
		w := s.do("POST", "/v1/bookings", create, customerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp bookingHttp.BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, "Deep Clean", resp.Service.Name)
		assert.Nil(t, resp.DistanceKm)
		bookingID = resp.ID
	})

	t.Run("Customer Cannot Confirm", func(t *testing.T) {
		w := s.do("PATCH", "/v1/bookings/"+bookingID+"/status", bookingHttp.UpdateStatusRequest{Status: "confirmed"}, customerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Provider Confirms", func(t *testing.T) {
		w := s.do("PATCH", "/v1/bookings/"+bookingID+"/status", bookingHttp.UpdateStatusRequest{Status: "confirmed"}, providerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp bookingHttp.BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "confirmed", resp.Status)
		assert.NotNil(t, resp.ConfirmedAt)
	})

	t.Run("Illegal Transition", func(t *testing.T) {
		w := s.do("PATCH", "/v1/bookings/"+bookingID+"/status", bookingHttp.UpdateStatusRequest{Status: "completed"}, providerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Customer Is Notified", func(t *testing.T) {
		s.sched.Wait()
		w := s.do("GET", "/v1/notifications", nil, customerToken)
		require.Equal(t, http.StatusOK, w.Code)

		var page response.PageResponse[notificationHttp.NotificationResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		require.Equal(t, 1, page.Total)
		assert.Equal(t, "booking_confirmed", page.Items[0].Type)
		assert.True(t, page.Items[0].IsSent)
	})

	t.Run("Deactivated Account Is Blocked", func(t *testing.T) {
		s.users[s.idFor(user.RoleCustomer)].IsActive = false
		defer func() { s.users[s.idFor(user.RoleCustomer)].IsActive = true }()

		w := s.do("POST", "/v1/bookings/"+bookingID+"/cancel", nil, customerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Customer Cancels", func(t *testing.T) {
		w := s.do("POST", "/v1/bookings/"+bookingID+"/cancel", nil, customerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp bookingHttp.BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "cancelled", resp.Status)
	})

	t.Run("Stranger Sees Not Found", func(t *testing.T) {
		outsider := uuid.NewString()
		s.users[outsider] = &user.User{ID: outsider, Role: user.RoleCustomer, IsActive: true}
		tok, err := s.jwt.GenerateAccessToken(outsider, user.RoleCustomer)
		require.NoError(t, err)

		w := s.do("GET", "/v1/bookings/"+bookingID, nil, tok)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
