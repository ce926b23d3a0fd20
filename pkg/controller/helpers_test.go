package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trailhead/trailhead/pkg/auth"
	"github.com/trailhead/trailhead/pkg/config"
	"github.com/trailhead/trailhead/pkg/controller"
	"github.com/trailhead/trailhead/pkg/domain"
	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/recommend"
	"github.com/trailhead/trailhead/pkg/repository"
	"github.com/trailhead/trailhead/pkg/server"
	"github.com/trailhead/trailhead/pkg/server/router"
	ginadapter "github.com/trailhead/trailhead/pkg/server/router/gin"
	"github.com/trailhead/trailhead/pkg/store/document/memory"
)

const testSigningSecret = "test-secret-test-secret-test-secret!"

// testEnv wires the full public API against the in-memory store so handler
// tests exercise the real middleware stack and routes.
type testEnv struct {
	users  *repository.UserRepository
	trails *repository.TrailRepository
	trips  *repository.TripRepository
	recs   *repository.RecommendationRepository
	tokens *auth.TokenService
	router router.Router
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.NewNop()
	store := memory.NewStore()

	users := repository.NewUserRepository(store, log)
	trails := repository.NewTrailRepository(store, log)
	trips := repository.NewTripRepository(store, log)
	recs := repository.NewRecommendationRepository(store, log)

	tokens, err := auth.NewTokenService(auth.Config{Secret: testSigningSecret}, log)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	engine := recommend.NewEngine(trails, log)

	ctrl := server.Controllers{
		Auth:            controller.NewAuthController(users, tokens, log),
		Users:           controller.NewUserController(users, trips, recs, log),
		Trails:          controller.NewTrailController(trails, users, engine, log),
		Trips:           controller.NewTripController(trips, log),
		Recommendations: controller.NewRecommendationController(recs, trips, users, engine, log),
	}

	srv := server.NewPublicAPIServer(server.PublicOptions{
		HTTP: config.HTTPConfig{RequestTimeout: 5 * time.Second},
	}, ginadapter.NewRouter(), tokens, ctrl, log)

	return &testEnv{
		users:  users,
		trails: trails,
		trips:  trips,
		recs:   recs,
		tokens: tokens,
		router: srv.Router(),
	}
}

func (e *testEnv) buildRequest(t *testing.T, method, path, token string, body interface{}) *http.Request {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return e.serve(e.buildRequest(t, method, path, token, body))
}

// seedUser persists an active profile and returns it with a valid access
// token for it.
func (e *testEnv) seedUser(t *testing.T, email string) (*domain.UserProfile, string) {
	t.Helper()
	user := &domain.UserProfile{
		Email:        email,
		DisplayName:  "Test Hiker",
		FitnessLevel: domain.FitnessIntermediate,
		Preferences: domain.UserPreferences{
			Difficulties: []domain.TrailDifficulty{domain.DifficultyModerate},
			MaxDistance:  50,
			GroupSize:    2,
		},
		Location: domain.UserLocation{Country: "AT", Region: "alps"},
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	pair, err := e.tokens.Issue(user.ID, user.Email)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return user, pair.AccessToken
}

func (e *testEnv) seedTrip(t *testing.T, userID string) *domain.TripPlan {
	t.Helper()
	trip := &domain.TripPlan{
		UserID: userID,
		Title:  "Dolomites week",
		Status: domain.TripPlanning,
		Dates: domain.TripDates{
			Start: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		},
		Location:     domain.TripLocation{Region: "dolomites"},
		Participants: domain.TripParticipants{Count: 2},
		Preferences: domain.TripPreferences{
			Difficulties: []domain.TrailDifficulty{domain.DifficultyModerate},
		},
	}
	if err := e.trips.Create(context.Background(), trip); err != nil {
		t.Fatalf("seed trip: %v", err)
	}
	return trip
}

func (e *testEnv) seedActiveTrail(t *testing.T, id, region string) *domain.Trail {
	t.Helper()
	trail := &domain.Trail{
		Name:     "Eagle Ridge",
		Location: domain.TrailLocation{Region: region, Country: "AT"},
		Characteristics: domain.TrailCharacteristics{
			Difficulty:     domain.DifficultyModerate,
			Type:           domain.TrailLoop,
			DistanceKm:     12,
			ElevationGainM: 600,
		},
		Safety:   domain.TrailSafety{RiskLevel: 2},
		Ratings:  domain.TrailRatings{Average: 4.2, Count: 12},
		IsActive: true,
	}
	trail.ID = id
	if err := e.trails.Create(context.Background(), trail); err != nil {
		t.Fatalf("seed trail: %v", err)
	}
	return trail
}

// envelope matches the service's success and error response shapes closely
// enough for assertions.
type envelope struct {
	Data              json.RawMessage        `json:"data"`
	ContinuationToken string                 `json:"continuationToken"`
	HasMore           bool                   `json:"hasMore"`
	Error             string                 `json:"error"`
	Code              string                 `json:"code"`
	Message           string                 `json:"message"`
	RequestID         string                 `json:"request_id"`
	Details           map[string]interface{} `json:"details"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, v interface{}) envelope {
	t.Helper()
	env := decodeEnvelope(t, w)
	if env.Data == nil {
		t.Fatalf("response has no data: %s", w.Body.String())
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	return env
}
