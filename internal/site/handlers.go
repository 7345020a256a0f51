package site

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	g "maragu.dev/gomponents"

	"github.com/ayrahq/ayra/internal/carousel"
	"github.com/ayrahq/ayra/internal/demochat"
	"github.com/ayrahq/ayra/internal/events"
	"github.com/ayrahq/ayra/internal/models"
	"github.com/ayrahq/ayra/internal/preferences"
	"github.com/ayrahq/ayra/internal/scenarios"
	"github.com/ayrahq/ayra/internal/waitlist"
)

const maxBodyBytes = 64 << 10

type errorBody struct {
	Error string `json:"error"`
}

// ScenarioSummary is the list view of a scenario.
type ScenarioSummary struct {
	Name        string   `json:"name"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Steps       int      `json:"steps"`
	Tags        []string `json:"tags,omitempty"`
	Source      string   `json:"source,omitempty"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Question models.DemoMessage `json:"question"`
	Reply    models.DemoMessage `json:"reply"`
}

type themeBody struct {
	Theme models.Theme `json:"theme"`
}

func (h *handlers) landing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	theme, err := h.deps.Themes.Theme(ctx)
	if err != nil {
		h.logger.Warn().Err(err).Msg("theme lookup failed, using default")
	}

	scenario, err := h.scenarioFor(query.Get("scenario"))
	if err != nil {
		writeError(w, err)
		return
	}

	car := carousel.New(h.deps.Slides)
	car.SetAuto(h.deps.Autoplay)
	if slide := query.Get("slide"); slide != "" {
		if i, convErr := strconv.Atoi(slide); convErr == nil {
			car.Go(i)
		} else {
			car.GoKey(slide)
		}
	}

	page := Page(PageData{
		Theme:    theme,
		Scenario: scenario,
		Carousel: car.Current(),
		Slides:   car.Slides(),
		Interval: h.deps.Interval,
		DemoOpen: query.Get("demo") == "1",
		Joined:   query.Get("joined") == "1",
		Year:     h.deps.Clock.Now().Year(),
	})
	renderPage(w, http.StatusOK, page)
}

func (h *handlers) toggleThemeForm(w http.ResponseWriter, r *http.Request) {
	if _, err := h.deps.Themes.Toggle(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *handlers) joinWaitlistForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid form"})
		return
	}

	signup, created, err := h.deps.Waitlist.Join(r.Context(), r.PostFormValue("email"), "web")
	if err != nil {
		writeError(w, err)
		return
	}
	if created && h.deps.Metrics != nil {
		h.deps.Metrics.SignupCreated()
	}
	h.logger.Info().Str("signup_id", signup.ID).Bool("created", created).Msg("waitlist join")

	http.Redirect(w, r, "/?joined=1#waitlist", http.StatusSeeOther)
}

func (h *handlers) demoForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid form"})
		return
	}

	conv := h.conversation()
	if _, err := h.ask(r, conv, r.PostFormValue("q")); err != nil && !errors.Is(err, demochat.ErrEmptyMessage) {
		writeError(w, err)
		return
	}

	theme, err := h.deps.Themes.Theme(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("theme lookup failed, using default")
	}
	scenario, err := h.scenarioFor("")
	if err != nil {
		writeError(w, err)
		return
	}

	car := carousel.New(h.deps.Slides)
	page := Page(PageData{
		Theme:    theme,
		Scenario: scenario,
		Carousel: car.Current(),
		Slides:   car.Slides(),
		Interval: h.deps.Interval,
		Demo:     conv.Messages(),
		DemoOpen: true,
		Year:     h.deps.Clock.Now().Year(),
	})
	renderPage(w, http.StatusOK, page)
}

func (h *handlers) listScenarios(w http.ResponseWriter, r *http.Request) {
	list := h.deps.Catalog.List()
	if tags := r.URL.Query()["tag"]; len(tags) > 0 {
		list = scenarios.Filter(list, tags)
	}

	out := make([]ScenarioSummary, 0, len(list))
	for _, s := range list {
		out = append(out, ScenarioSummary{
			Name:        s.Name,
			Title:       s.Title,
			Description: s.Description,
			Steps:       s.Len(),
			Tags:        s.Tags,
			Source:      s.Source,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) getScenario(w http.ResponseWriter, r *http.Request) {
	scenario, err := h.deps.Catalog.Get(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}

	vars := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			vars[key] = values[0]
		}
	}
	rendered, err := scenarios.Render(scenario, vars)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rendered)
}

func (h *handlers) askDemo(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}

	conv := h.conversation()
	reply, err := h.ask(r, conv, req.Question)
	if err != nil {
		writeError(w, err)
		return
	}

	messages := conv.Messages()
	writeJSON(w, http.StatusOK, askResponse{Question: messages[len(messages)-2], Reply: reply})
}

func (h *handlers) getTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.deps.Themes.Theme(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: theme})
}

func (h *handlers) putTheme(w http.ResponseWriter, r *http.Request) {
	var body themeBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	if err := h.deps.Themes.SetTheme(r.Context(), body.Theme); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) conversation() *demochat.Conversation {
	return demochat.NewConversation(
		demochat.WithClock(h.deps.Clock),
		demochat.WithReplyDelay(h.deps.ReplyDelay),
		demochat.WithLogger(h.logger),
	)
}

func (h *handlers) ask(r *http.Request, conv *demochat.Conversation, question string) (models.DemoMessage, error) {
	ctx := r.Context()
	reply, err := conv.Ask(ctx, question)
	if err != nil {
		return reply, err
	}
	if h.deps.Metrics != nil {
		h.deps.Metrics.DemoAsked("web")
	}
	conversationID := middleware.GetReqID(ctx)
	if conversationID == "" {
		conversationID = "web"
	}
	if err := events.LogDemoAsked(ctx, h.deps.Events, conversationID, question, reply.Content); err != nil {
		h.logger.Warn().Err(err).Msg("failed to record demo event")
	}
	return reply, nil
}

// scenarioFor resolves a scenario by name (or the default) with its
// variables rendered.
func (h *handlers) scenarioFor(name string) (*models.Scenario, error) {
	var (
		scenario *models.Scenario
		err      error
	)
	if name == "" {
		scenario, err = h.deps.Catalog.Default()
	} else {
		scenario, err = h.deps.Catalog.Get(name)
	}
	if err != nil {
		return nil, err
	}
	return scenarios.Render(scenario, nil)
}

func renderPage(w http.ResponseWriter, status int, page g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = page.Render(w)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	var validation *models.ValidationErrors
	switch {
	case errors.Is(err, scenarios.ErrScenarioNotFound):
		return http.StatusNotFound
	case errors.Is(err, scenarios.ErrInvalidScenario),
		errors.Is(err, demochat.ErrEmptyMessage),
		errors.Is(err, waitlist.ErrEmailRequired),
		errors.Is(err, preferences.ErrInvalidTheme),
		errors.As(err, &validation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
