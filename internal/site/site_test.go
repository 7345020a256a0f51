package site

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayrahq/ayra/internal/carousel"
	"github.com/ayrahq/ayra/internal/db"
	"github.com/ayrahq/ayra/internal/demochat"
	"github.com/ayrahq/ayra/internal/metrics"
	"github.com/ayrahq/ayra/internal/models"
	"github.com/ayrahq/ayra/internal/playback"
	"github.com/ayrahq/ayra/internal/preferences"
	"github.com/ayrahq/ayra/internal/scenarios"
	"github.com/ayrahq/ayra/internal/waitlist"
)

type testSite struct {
	handler http.Handler
	events  *db.EventRepository
	themes  *preferences.ThemeStore
	signups *db.SignupRepository
}

func quickScenario() *models.Scenario {
	return &models.Scenario{
		Name:  "quick",
		Title: "Quick",
		Steps: []models.ChatStep{
			{Origin: models.OriginOutgoing, Text: "ping", DelayMs: models.Delay(1)},
			{Origin: models.OriginIncoming, Typing: true, DelayMs: models.Delay(1)},
			{Origin: models.OriginIncoming, Text: "pong", DelayMs: models.Delay(1)},
		},
	}
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	return newTestSiteWith(t, nil)
}

// newTestSiteWith lets a test adjust the router's dependencies.
func newTestSiteWith(t *testing.T, adjust func(*Deps)) *testSite {
	t.Helper()

	database, err := db.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	_, err = database.MigrateUp(context.Background())
	require.NoError(t, err)

	builtins, err := scenarios.LoadBuiltinScenarios()
	require.NoError(t, err)

	eventRepo := db.NewEventRepository(database)
	signups := db.NewSignupRepository(database)
	logger := zerolog.Nop()
	themes := preferences.NewThemeStore(
		db.NewPreferenceRepository(database),
		preferences.WithEventRepository(eventRepo),
		preferences.WithLogger(logger),
	)

	deps := Deps{
		Catalog:  scenarios.NewCatalog(append(builtins, quickScenario())),
		Themes:   themes,
		Waitlist: waitlist.NewService(signups, eventRepo),
		Events:   eventRepo,
		Metrics:  metrics.NewCollector(),
		Playback: playback.Config{BaseDelay: time.Millisecond, LoopPause: time.Millisecond},
		Logger:   &logger,
	}
	if adjust != nil {
		adjust(&deps)
	}
	handler := NewRouter(deps)
	return &testSite{handler: handler, events: eventRepo, themes: themes, signups: signups}
}

func (s *testSite) do(t *testing.T, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestLandingPageRendersSections(t *testing.T) {
	s := newTestSite(t)

	rec := s.do(t, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	for _, want := range []string{
		"redefines hospital experience",
		`id="modules"`, "One brand. Six modules.", "Wellness",
		`id="roadmap"`, "Scale &amp; expansion",
		`id="testimonials"`, "I would use it every day. Simple as that.",
		`id="founder"`, "Meet the Founder",
		"Trusted by early partners", "Hospital General de México",
		`id="waitlist"`, `action="/waitlist"`,
		`id="contexts"`, "Logistics hubs",
		`id="demo"`, demochat.Greeting,
		"All rights reserved.",
		`data-theme="dark"`,
		// healthcare is played by default with its variables rendered
		`data-scenario="healthcare"`, "Dr. Ortega until 18:00",
	} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, "{{")
}

func TestLandingPageQueryOptions(t *testing.T) {
	s := newTestSite(t)

	rec := s.do(t, http.MethodGet, "/?scenario=airport&slide=logistics&joined=1&demo=1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `data-scenario="airport"`)
	assert.Contains(t, body, "Live ETAs, dock tasks")
	assert.Contains(t, body, "Thanks! You’re on the list.")
	assert.Contains(t, body, `class="modal open"`)

	rec = s.do(t, http.MethodGet, "/?scenario=nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLandingCarouselAutoplayControl(t *testing.T) {
	s := newTestSiteWith(t, func(deps *Deps) {
		deps.Slides = carousel.DefaultSlides()
		deps.Autoplay = true
	})

	body := s.do(t, http.MethodGet, "/", nil, "").Body.String()
	assert.Contains(t, body, `data-auto="true"`)
	assert.Contains(t, body, `data-interval="6000"`)
	assert.Contains(t, body, `data-carousel-toggle aria-label="Pause autoplay">Pause</button>`)
	assert.Contains(t, body, `data-slide-step="1"`)
	// All slides are in the page; only the current one is visible.
	assert.Contains(t, body, `data-slide="health">`)
	assert.Contains(t, body, `data-slide="airport" hidden>`)

	// Choosing a slide stops autoplay, so the control offers to resume.
	body = s.do(t, http.MethodGet, "/?slide=airport", nil, "").Body.String()
	assert.Contains(t, body, `data-auto="false"`)
	assert.Contains(t, body, `data-carousel-toggle aria-label="Resume autoplay">Play</button>`)
	assert.Contains(t, body, `data-slide="health" hidden>`)
	rec := s.do(t, http.MethodGet, "/static/ayra.js", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "[data-carousel-toggle]")
	assert.Contains(t, rec.Body.String(), "setInterval")
}

func TestThemeToggleForm(t *testing.T) {
	s := newTestSite(t)

	rec := s.do(t, http.MethodPost, "/theme/toggle", nil, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	theme, err := s.themes.Theme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ThemeLight, theme)

	rec = s.do(t, http.MethodGet, "/", nil, "")
	assert.Contains(t, rec.Body.String(), `data-theme="light"`)
}

func TestThemeAPI(t *testing.T) {
	s := newTestSite(t)

	rec := s.do(t, http.MethodGet, "/api/theme", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"theme":"dark"}`, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/api/theme", strings.NewReader(`{"theme":"light"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"theme":"light"}`, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/api/theme", strings.NewReader(`{"theme":"sepia"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)

	rec = s.do(t, http.MethodPut, "/api/theme", strings.NewReader(`not json`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	counts, err := s.events.CountByType(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts[models.EventTypeThemeChanged])
}

func TestWaitlistForm(t *testing.T) {
	s := newTestSite(t)

	form := url.Values{"email": {"  nurse@example.org "}}.Encode()
	rec := s.do(t, http.MethodPost, "/waitlist", strings.NewReader(form), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?joined=1#waitlist", rec.Header().Get("Location"))

	// Duplicates are accepted.
	rec = s.do(t, http.MethodPost, "/waitlist", strings.NewReader(form), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusSeeOther, rec.Code)

	count, err := s.signups.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	signup, err := s.signups.GetByEmail(context.Background(), "nurse@example.org")
	require.NoError(t, err)
	assert.Equal(t, "web", signup.Source)

	blank := url.Values{"email": {"   "}}.Encode()
	rec = s.do(t, http.MethodPost, "/waitlist", strings.NewReader(blank), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDemoAskAPI(t *testing.T) {
	s := newTestSite(t)

	rec := s.do(t, http.MethodPost, "/api/demo/ask", strings.NewReader(`{"question":"Check pharmacy stock"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.DemoRoleUser, resp.Question.Role)
	assert.Equal(t, "Check pharmacy stock", resp.Question.Content)
	assert.Equal(t, models.DemoRoleAyra, resp.Reply.Role)
	assert.Equal(t, demochat.Reply("pharmacy"), resp.Reply.Content)

	rec = s.do(t, http.MethodPost, "/api/demo/ask", strings.NewReader(`{"question":"   "}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	counts, err := s.events.CountByType(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts[models.EventTypeDemoAsked])
}

func TestDemoForm(t *testing.T) {
	s := newTestSite(t)

	form := url.Values{"q": {"Who is on call in neuro?"}}.Encode()
	rec := s.do(t, http.MethodPost, "/demo", strings.NewReader(form), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `class="modal open"`)
	assert.Contains(t, body, "Who is on call in neuro?")
	assert.Contains(t, body, "On-call in Neurosurgery")
}

func TestScenarioAPI(t *testing.T) {
	s := newTestSite(t)

	rec := s.do(t, http.MethodGet, "/api/scenarios", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []ScenarioSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	names := make([]string, 0, len(list))
	for _, item := range list {
		names = append(names, item.Name)
	}
	assert.ElementsMatch(t, []string{"healthcare", "logistics", "airport", "quick"}, names)

	rec = s.do(t, http.MethodGet, "/api/scenarios?tag=on-call", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "healthcare", list[0].Name)

	rec = s.do(t, http.MethodGet, "/api/scenarios/HealthCare?doctor=Dr.%20House", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var scenario models.Scenario
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scenario))
	assert.Equal(t, "healthcare", scenario.Name)
	assert.Contains(t, scenario.Steps[2].Text, "Dr. House until 18:00")

	rec = s.do(t, http.MethodGet, "/api/scenarios/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "scenario not found")
}

func TestHealthMetricsAndNotFound(t *testing.T) {
	s := newTestSite(t)

	rec := s.do(t, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ayra_http_requests_total")

	rec = s.do(t, http.MethodGet, "/nowhere", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/static/ayra.css", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecoveryReturnsJSON(t *testing.T) {
	logger := zerolog.Nop()
	handler := recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func dialPlayback(t *testing.T, s *testSite, query string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(s.handler)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/playback" + query
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestPlaybackSocketStreamsReveals(t *testing.T) {
	s := newTestSite(t)
	conn := dialPlayback(t, s, "")

	loop := false
	require.NoError(t, conn.WriteJSON(wsRequest{Type: wsStart, Scenario: "quick", Loop: &loop}))

	started := readMessage(t, conn)
	require.Equal(t, "started", started.Type)
	assert.Equal(t, "quick", started.Scenario)
	assert.Equal(t, 3, started.Steps)

	for i := 0; i < 3; i++ {
		msg := readMessage(t, conn)
		require.Equal(t, "reveal", msg.Type)
		require.NotNil(t, msg.Event)
		assert.Equal(t, i, msg.Event.Index)
		assert.Len(t, msg.Event.Prefix, i+1)
		assert.Equal(t, started.SessionID, msg.SessionID)
	}

	finished := readMessage(t, conn)
	assert.Equal(t, "finished", finished.Type)

	counts, err := s.events.CountByType(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts[models.EventTypePlaybackStarted])
}

func TestPlaybackSocketKeepsZeroConfig(t *testing.T) {
	s := newTestSiteWith(t, func(deps *Deps) {
		deps.Playback = playback.Config{}
		deps.Catalog = scenarios.NewCatalog([]*models.Scenario{{Name: "undelayed", Steps: []models.ChatStep{
			{Origin: models.OriginIncoming, Text: "now"},
		}}})
	})
	conn := dialPlayback(t, s, "")

	require.NoError(t, conn.WriteJSON(wsRequest{Type: wsStart, Scenario: "undelayed"}))

	require.Equal(t, "started", readMessage(t, conn).Type)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "reveal", msg.Type)
	assert.Equal(t, "finished", readMessage(t, conn).Type)
}

func TestPlaybackSocketStopAndRestart(t *testing.T) {
	s := newTestSite(t)
	conn := dialPlayback(t, s, "?scenario=healthcare")

	first := readMessage(t, conn)
	require.Equal(t, "started", first.Type)

	require.NoError(t, conn.WriteJSON(wsRequest{Type: wsStop}))
	var last wsMessage
	for {
		last = readMessage(t, conn)
		if last.Type != "reveal" && last.Type != "reset" {
			break
		}
		assert.Equal(t, first.SessionID, last.SessionID)
	}
	assert.Equal(t, "cancelled", last.Type)
	assert.Equal(t, first.SessionID, last.SessionID)

	require.NoError(t, conn.WriteJSON(wsRequest{Type: wsStart, Scenario: "missing"}))
	errMsg := readMessage(t, conn)
	assert.Equal(t, "error", errMsg.Type)
	assert.Contains(t, errMsg.Error, "scenario not found")

	require.NoError(t, conn.WriteJSON(wsRequest{Type: "dance"}))
	errMsg = readMessage(t, conn)
	assert.Equal(t, "error", errMsg.Type)

	require.NoError(t, conn.WriteJSON(wsRequest{Type: wsStart, Scenario: "quick"}))
	second := readMessage(t, conn)
	require.Equal(t, "started", second.Type)
	assert.NotEqual(t, first.SessionID, second.SessionID)
}
