package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"partymap/internal/adapters/http/middleware"
	"partymap/internal/application/orchestrators"
	"partymap/internal/application/projections"
	domainEvent "partymap/internal/domain/event"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDomainError maps a lifecycle error kind to its HTTP status. Anything
// outside the taxonomy is treated as internal.
func writeDomainError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, domainEvent.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, domainEvent.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, domainEvent.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domainEvent.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domainEvent.ErrConflict),
		errors.Is(err, domainEvent.ErrAlreadyJoined),
		errors.Is(err, domainEvent.ErrNotJoined):
		status = http.StatusConflict
	default:
		internalError(w, err)
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// actorID returns the authenticated account ID, or "" for visitors.
func actorID(r *http.Request) string {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		return ""
	}
	return sess.AccountID
}

// renderMarkdown converts a markdown description to HTML for the detail view.
func renderMarkdown(md string) string {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return ""
	}
	return buf.String()
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/signup", handleSignup)
	mux.HandleFunc("/api/login", handleLogin)
	mux.HandleFunc("/api/logout", handleLogout)
	mux.HandleFunc("/api/me", handleMe)
	mux.HandleFunc("/api/events", handleEvents)
	mux.HandleFunc("/api/events/", handleEventSubtree)
	mux.HandleFunc("/api/directory", handleDirectory)
	mux.HandleFunc("/api/status", handleStatus)
}

// --- Auth handlers ---

// handleSignup handles POST /api/signup.
// POST: account created and a session cookie issued
func handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input struct {
		Email       string `json:"email"`
		ProfileName string `json:"profileName"`
		Password    string `json:"password"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	deps := orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		GenerateID:   generateID,
		Now:          timeNow,
	}
	acct, err := orchestrators.ExecuteCreateAccount(r.Context(), orchestrators.CreateAccountInput{
		Email:       input.Email,
		ProfileName: input.ProfileName,
		Password:    input.Password,
	}, deps)
	if err != nil {
		if errors.Is(err, orchestrators.ErrEmailTaken) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	token, err := sessions.Create(acct.ID, acct.Email, acct.ProfileName)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":          acct.ID,
		"email":       acct.Email,
		"profileName": acct.ProfileName,
	})
}

// handleLogin handles POST /api/login.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    input.Email,
		Password: input.Password,
	}, orchestrators.LoginDeps{AccountStore: stores.AccountStore})
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}

	token, err := sessions.Create(result.AccountID, result.Email, result.ProfileName)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{
		"id":          result.AccountID,
		"email":       result.Email,
		"profileName": result.ProfileName,
	})
}

// handleLogout handles POST /api/logout.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleMe handles GET /api/me.
func handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":          sess.AccountID,
		"email":       sess.Email,
		"profileName": sess.ProfileName,
	})
}

// --- Event handlers ---

// eventSummaryDTO is one map pin as served to the client.
type eventSummaryDTO struct {
	ID          string  `json:"id"`
	Owner       string  `json:"owner"`
	Title       string  `json:"title"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Public      bool    `json:"public"`
	Location    string  `json:"location,omitempty"`
	Reward      string  `json:"reward,omitempty"`
	Points      int     `json:"points"`
	HelperCount int     `json:"helperCount"`
	Expired     bool    `json:"expired"`
	Mine        bool    `json:"mine"`
}

// participantDTO is one attendance record.
type participantDTO struct {
	User     string `json:"user"`
	Response string `json:"response"`
}

// eventDetailDTO is the full event view.
type eventDetailDTO struct {
	ID              string           `json:"id"`
	Owner           string           `json:"owner"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	DescriptionHTML string           `json:"descriptionHtml"`
	X               float64          `json:"x"`
	Y               float64          `json:"y"`
	Public          bool             `json:"public"`
	Location        string           `json:"location,omitempty"`
	Reward          string           `json:"reward,omitempty"`
	Points          int              `json:"points"`
	Expire          string           `json:"expire,omitempty"`
	CreatedAt       string           `json:"createdAt"`
	Participants    []participantDTO `json:"participants"`
	Invited         []string         `json:"invited,omitempty"`
	MyResponse      string           `json:"myResponse,omitempty"`
	Expired         bool             `json:"expired"`
	CanEdit         bool             `json:"canEdit"`
}

// createEventRequest is the POST /api/events body.
type createEventRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Public      bool    `json:"public"`
	Location    string  `json:"location"`
	Reward      string  `json:"reward"`
	Points      int     `json:"points"`
	Expire      string  `json:"expire"` // RFC 3339, empty for none
}

// handleEvents handles GET (list visible) and POST (create) for /api/events.
func handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case "GET":
		result, err := projections.QueryListVisibleEvents(ctx,
			projections.ListVisibleEventsQuery{Viewer: actorID(r)},
			projections.ListVisibleEventsDeps{EventStore: stores.EventStore, Now: timeNow})
		if err != nil {
			internalError(w, err)
			return
		}
		dtos := make([]eventSummaryDTO, 0, len(result.Events))
		for _, e := range result.Events {
			dtos = append(dtos, eventSummaryDTO{
				ID:          e.ID,
				Owner:       e.Owner,
				Title:       e.Title,
				X:           e.X,
				Y:           e.Y,
				Public:      e.Public,
				Location:    e.Location,
				Reward:      e.Reward,
				Points:      e.Points,
				HelperCount: e.HelperCount,
				Expired:     e.Expired,
				Mine:        e.Mine,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": dtos})

	case "POST":
		var req createEventRequest
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		var expire time.Time
		if req.Expire != "" {
			t, err := time.Parse(time.RFC3339, req.Expire)
			if err != nil {
				writeDomainError(w, &domainEvent.InvalidArgumentError{Field: "expire", Reason: "must be an RFC 3339 timestamp"})
				return
			}
			expire = t
		}

		created, err := orchestrators.ExecuteCreateEvent(ctx, orchestrators.CreateEventInput{
			Actor:       actorID(r),
			Title:       req.Title,
			Description: req.Description,
			X:           req.X,
			Y:           req.Y,
			Public:      req.Public,
			Location:    req.Location,
			Reward:      req.Reward,
			Points:      req.Points,
			Expire:      expire,
		}, orchestrators.CreateEventDeps{
			EventStore: stores.EventStore,
			GenerateID: generateID,
			Now:        timeNow,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, eventDetail(created, nil, nil, "", actorID(r)))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleEventSubtree dispatches /api/events/{id} and its subresources
// (join, leave, rsvp, invite).
func handleEventSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/events/"), "/")
	parts := strings.Split(rest, "/")
	if rest == "" || len(parts) > 2 {
		http.NotFound(w, r)
		return
	}
	eventID := parts[0]

	if len(parts) == 1 {
		handleEvent(w, r, eventID)
		return
	}

	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch parts[1] {
	case "join":
		handleJoin(w, r, eventID)
	case "leave":
		handleLeave(w, r, eventID)
	case "rsvp":
		handleRSVP(w, r, eventID)
	case "invite":
		handleInvite(w, r, eventID)
	default:
		http.NotFound(w, r)
	}
}

// handleEvent handles GET, PATCH and DELETE for /api/events/{id}.
func handleEvent(w http.ResponseWriter, r *http.Request, eventID string) {
	ctx := r.Context()

	switch r.Method {
	case "GET":
		result, err := projections.QueryGetEvent(ctx,
			projections.GetEventQuery{Viewer: actorID(r), EventID: eventID},
			projections.GetEventDeps{EventStore: stores.EventStore, Now: timeNow})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		dto := eventDetail(result.Event, result.Participants, result.Invited, result.MyResponse, actorID(r))
		dto.Expired = result.Expired
		dto.CanEdit = result.CanEdit
		writeJSON(w, http.StatusOK, dto)

	case "PATCH":
		var fields map[string]any
		if err := strictDecode(r, &fields); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		updated, err := orchestrators.ExecuteUpdateEvent(ctx, orchestrators.UpdateEventInput{
			Actor:   actorID(r),
			EventID: eventID,
			Fields:  fields,
		}, orchestrators.UpdateEventDeps{EventStore: stores.EventStore})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, eventDetail(updated, nil, nil, "", actorID(r)))

	case "DELETE":
		err := orchestrators.ExecuteRemoveEvent(ctx, orchestrators.RemoveEventInput{
			Actor:   actorID(r),
			EventID: eventID,
		}, orchestrators.RemoveEventDeps{EventStore: stores.EventStore})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func handleJoin(w http.ResponseWriter, r *http.Request, eventID string) {
	err := orchestrators.ExecuteJoinEvent(r.Context(), orchestrators.JoinEventInput{
		Actor:   actorID(r),
		EventID: eventID,
	}, orchestrators.JoinEventDeps{EventStore: stores.EventStore, Now: timeNow})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleLeave(w http.ResponseWriter, r *http.Request, eventID string) {
	err := orchestrators.ExecuteLeaveEvent(r.Context(), orchestrators.LeaveEventInput{
		Actor:   actorID(r),
		EventID: eventID,
	}, orchestrators.LeaveEventDeps{EventStore: stores.EventStore})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleRSVP(w http.ResponseWriter, r *http.Request, eventID string) {
	var input struct {
		Response string `json:"response"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	err := orchestrators.ExecuteRSVP(r.Context(), orchestrators.RSVPInput{
		Actor:    actorID(r),
		EventID:  eventID,
		Response: input.Response,
	}, orchestrators.RSVPDeps{EventStore: stores.EventStore, Now: timeNow})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleInvite(w http.ResponseWriter, r *http.Request, eventID string) {
	var input struct {
		UserID string `json:"userId"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	err := orchestrators.ExecuteInvite(r.Context(), orchestrators.InviteInput{
		Actor:   actorID(r),
		EventID: eventID,
		Target:  input.UserID,
	}, orchestrators.InviteDeps{
		EventStore:   stores.EventStore,
		AccountStore: stores.AccountStore,
		OutboxStore:  stores.OutboxStore,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDirectory handles GET /api/directory.
func handleDirectory(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if actorID(r) == "" {
		writeDomainError(w, domainEvent.ErrUnauthenticated)
		return
	}

	result, err := projections.QueryGetDirectory(r.Context(),
		projections.GetDirectoryDeps{AccountStore: stores.AccountStore})
	if err != nil {
		internalError(w, err)
		return
	}
	type entryDTO struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		ProfileName string `json:"profileName,omitempty"`
	}
	entries := make([]entryDTO, 0, len(result.Entries))
	for _, e := range result.Entries {
		entries = append(entries, entryDTO{ID: e.ID, Email: e.Email, ProfileName: e.ProfileName})
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": entries})
}

// handleStatus handles GET /api/status: a small ops view over the email
// outbox, for logged-in users.
func handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if actorID(r) == "" {
		writeDomainError(w, domainEvent.ErrUnauthenticated)
		return
	}

	failed, err := stores.OutboxStore.ListFailed(r.Context(), 50)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"failedEmails": len(failed)})
}

// eventDetail builds the detail DTO from a domain event and its read-side
// extras.
func eventDetail(e domainEvent.Event, participants []domainEvent.Participant, invited []string, myResponse, viewer string) eventDetailDTO {
	dto := eventDetailDTO{
		ID:              e.ID,
		Owner:           e.Owner,
		Title:           e.Title,
		Description:     e.Description,
		DescriptionHTML: renderMarkdown(e.Description),
		X:               e.X,
		Y:               e.Y,
		Public:          e.Public,
		Location:        e.Location,
		Reward:          e.Reward,
		Points:          e.Points,
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
		Participants:    make([]participantDTO, 0, len(participants)),
		Invited:         invited,
		MyResponse:      myResponse,
		CanEdit:         viewer != "" && viewer == e.Owner,
	}
	if !e.Expire.IsZero() {
		dto.Expire = e.Expire.Format(time.RFC3339)
	}
	for _, p := range participants {
		dto.Participants = append(dto.Participants, participantDTO{User: p.User, Response: p.Response})
	}
	return dto
}
