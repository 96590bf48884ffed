package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/placard/placard/pkg/signage"
)

// ContentHandler handles HTTP requests for content using pkg/signage
type ContentHandler struct {
	service    signage.Service
	browsePath string
}

// NewContentHandler creates a new content handler. Stale content links
// redirect to browsePath rather than 404ing.
func NewContentHandler(service signage.Service, browsePath string) *ContentHandler {
	if browsePath == "" {
		browsePath = "/contents"
	}
	return &ContentHandler{service: service, browsePath: browsePath}
}

// Routes returns the routes for content
func (h *ContentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListContents)
	r.Post("/", h.CreateContent)
	r.Get("/new", h.NewContent)
	r.Get("/preview", h.PreviewContent)
	r.Get("/{id}", h.GetContent)
	r.Get("/{id}/edit", h.EditContent)
	r.Put("/{id}", h.UpdateContent)
	r.Delete("/{id}", h.DeleteContent)
	r.Get("/{id}/display", h.DisplayContent)
	r.Put("/{id}/act", h.PerformAction)

	return r
}

// MediaRequest is one media entry in a content mutation body. Data is
// base64 in transit.
type MediaRequest struct {
	FileName string `json:"file_name,omitempty"`
	FileType string `json:"file_type,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	Data     []byte `json:"data,omitempty"`
}

// ContentRequest is the request body for creating or updating content
type ContentRequest struct {
	Kind       string            `json:"kind,omitempty"`
	Attributes map[string]string `json:"attributes"`
	Media      []MediaRequest    `json:"media,omitempty"`
	FeedIDs    []string          `json:"feed_ids"`
}

// SubmissionResponse is the wire shape of a submission
type SubmissionResponse struct {
	ID             string    `json:"id"`
	ContentID      string    `json:"content_id"`
	FeedID         string    `json:"feed_id"`
	Duration       int       `json:"duration"`
	ModerationFlag string    `json:"moderation_flag"`
	ModeratorID    string    `json:"moderator_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ContentResponse is the response body for a content item
type ContentResponse struct {
	ID          string               `json:"id"`
	OwnerID     string               `json:"owner_id"`
	Kind        string               `json:"kind"`
	Name        string               `json:"name,omitempty"`
	Duration    int                  `json:"duration"`
	Data        string               `json:"data,omitempty"`
	StartTime   *time.Time           `json:"start_time,omitempty"`
	EndTime     *time.Time           `json:"end_time,omitempty"`
	Media       []signage.Media      `json:"media,omitempty"`
	Submissions []SubmissionResponse `json:"submissions"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// FeedResponse is the wire shape of a feed
type FeedResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func toContentResponse(c *signage.Content) ContentResponse {
	resp := ContentResponse{
		ID:          c.ID.String(),
		OwnerID:     c.OwnerID.String(),
		Kind:        c.Kind,
		Name:        c.Name,
		Duration:    c.Duration,
		Data:        c.Data,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
		Media:       c.Media,
		Submissions: make([]SubmissionResponse, 0, len(c.Submissions)),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	for _, s := range c.Submissions {
		sub := SubmissionResponse{
			ID:             s.ID.String(),
			ContentID:      s.ContentID.String(),
			FeedID:         s.FeedID.String(),
			Duration:       s.Duration,
			ModerationFlag: string(s.Moderation),
			CreatedAt:      s.CreatedAt,
			UpdatedAt:      s.UpdatedAt,
		}
		if s.ModeratorID != nil {
			sub.ModeratorID = s.ModeratorID.String()
		}
		resp.Submissions = append(resp.Submissions, sub)
	}
	return resp
}

func toFeedResponses(feeds []*signage.Feed) []FeedResponse {
	resp := make([]FeedResponse, 0, len(feeds))
	for _, f := range feeds {
		resp = append(resp, FeedResponse{ID: f.ID.String(), Name: f.Name, Description: f.Description})
	}
	return resp
}

// ListContents lists content items, optionally filtered by owner_id, kind
// or feed_id query parameters.
func (h *ContentHandler) ListContents(w http.ResponseWriter, r *http.Request) {
	var req signage.ListContentRequest

	if v := r.URL.Query().Get("owner_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			http.Error(w, "Invalid owner ID", http.StatusBadRequest)
			return
		}
		req.OwnerID = &id
	}
	if v := r.URL.Query().Get("kind"); v != "" {
		req.Kind = &v
	}
	if v := r.URL.Query().Get("feed_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			http.Error(w, "Invalid feed ID", http.StatusBadRequest)
			return
		}
		req.FeedID = &id
	}

	contents, err := h.service.ListContent(r.Context(), req)
	if err != nil {
		slog.Error("Failed to list content", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]ContentResponse, 0, len(contents))
	for _, c := range contents {
		resp = append(resp, toContentResponse(c))
	}
	render.JSON(w, r, resp)
}

// GetContent retrieves a content item by ID
func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}

	content, err := h.service.GetContent(r.Context(), id, ActorFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, toContentResponse(content))
}

// NewContentResponse is the response body for a blank creation form
type NewContentResponse struct {
	Content ContentResponse `json:"content"`
	Feeds   []FeedResponse  `json:"feeds"`
}

// NewContent returns a blank content item of the requested type (query
// parameter "type") and the feeds the actor may submit to.
func (h *ContentHandler) NewContent(w http.ResponseWriter, r *http.Request) {
	actorID := ActorFromContext(r.Context())

	content, err := h.service.NewContent(r.Context(), r.URL.Query().Get("type"), actorID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	feeds, err := h.service.SubmittableFeeds(r.Context(), actorID)
	if err != nil {
		slog.Error("Failed to list submittable feeds", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, NewContentResponse{
		Content: toContentResponse(content),
		Feeds:   toFeedResponses(feeds),
	})
}

// CreateContentResponse wraps the created content with a user notice
type CreateContentResponse struct {
	Content ContentResponse `json:"content"`
	Notice  string          `json:"notice"`
}

// CreateContent creates a new content item and submits it to the requested
// feeds.
func (h *ContentHandler) CreateContent(w http.ResponseWriter, r *http.Request) {
	var body ContentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	feedIDs, err := parseFeedIDs(body.FeedIDs)
	if err != nil {
		http.Error(w, "Invalid feed ID", http.StatusBadRequest)
		return
	}

	req := signage.CreateContentRequest{
		Kind:       body.Kind,
		OwnerID:    ActorFromContext(r.Context()),
		Attributes: body.Attributes,
		Media:      toMedia(body.Media),
		FeedIDs:    feedIDs,
	}

	content, err := h.service.CreateContent(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// Both branches succeed; only the notice differs.
	notice := "Content created."
	if len(feedIDs) == 0 {
		notice = "Content created but not submitted to any feeds."
	}

	slog.Info("Content created", "content_id", content.ID.String(), "kind", content.Kind)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, CreateContentResponse{Content: toContentResponse(content), Notice: notice})
}

// EditContentResponse is the response body for an edit form
type EditContentResponse struct {
	Content ContentResponse `json:"content"`
	Feeds   []FeedResponse  `json:"feeds"`
}

// EditContent returns a content item together with the feeds the actor may
// submit to.
func (h *ContentHandler) EditContent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}
	actorID := ActorFromContext(r.Context())

	content, err := h.service.GetContent(r.Context(), id, actorID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	feeds, err := h.service.SubmittableFeeds(r.Context(), actorID)
	if err != nil {
		slog.Error("Failed to list submittable feeds", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, EditContentResponse{
		Content: toContentResponse(content),
		Feeds:   toFeedResponses(feeds),
	})
}

// UpdateContent updates a content item's attributes and reconciles its feed
// submissions.
func (h *ContentHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}

	var body ContentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	feedIDs, err := parseFeedIDs(body.FeedIDs)
	if err != nil {
		http.Error(w, "Invalid feed ID", http.StatusBadRequest)
		return
	}

	content, err := h.service.UpdateContent(r.Context(), signage.UpdateContentRequest{
		ID:         id,
		ActorID:    ActorFromContext(r.Context()),
		Attributes: body.Attributes,
		FeedIDs:    feedIDs,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	slog.Info("Content updated", "content_id", content.ID.String())
	render.JSON(w, r, CreateContentResponse{Content: toContentResponse(content), Notice: "Content updated."})
}

// DeleteContent deletes a content item together with its submissions
func (h *ContentHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteContent(r.Context(), id, ActorFromContext(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}

	slog.Info("Content deleted", "content_id", id.String())
	render.JSON(w, r, map[string]string{"notice": "Content deleted."})
}

// DisplayContent renders a content item inline, honoring If-None-Match
// freshness.
func (h *ContentHandler) DisplayContent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}

	params := make(signage.RenderParams)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	file, token, err := h.service.DisplayContent(r.Context(), signage.DisplayContentRequest{
		ID:             id,
		ActorID:        ActorFromContext(r.Context()),
		Params:         params,
		FreshnessToken: strings.Trim(r.Header.Get("If-None-Match"), `"`),
	})
	if errors.Is(err, signage.ErrNotModified) {
		w.Header().Set("ETag", `"`+token+`"`)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("ETag", `"`+token+`"`)
	w.Header().Set("Content-Type", file.FileType)
	w.Header().Set("Content-Disposition", `inline; filename="`+file.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		slog.Warn("Failed to write rendered content", "content_id", id.String(), "error", err)
	}
}

// PerformAction dispatches a custom named action on a content item. The
// action name travels in the action_name query parameter; remaining query
// parameters become the action's value bag.
func (h *ContentHandler) PerformAction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}

	values := make(map[string]string)
	for key, vs := range r.URL.Query() {
		if key == "action_name" || len(vs) == 0 {
			continue
		}
		values[key] = vs[0]
	}

	result, err := h.service.PerformAction(r.Context(), signage.PerformActionRequest{
		ID:      id,
		ActorID: ActorFromContext(r.Context()),
		Action:  r.URL.Query().Get("action_name"),
		Values:  values,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.PlainText(w, r, result)
}

// PreviewContent returns an advisory HTML fragment for the supplied data
// (query parameter "data") or a persisted content's data (query parameter
// "id"). Unrecognized types yield a literal message, never an error.
func (h *ContentHandler) PreviewContent(w http.ResponseWriter, r *http.Request) {
	req := signage.PreviewContentRequest{
		Kind: r.URL.Query().Get("type"),
		Data: r.URL.Query().Get("data"),
	}
	if v := r.URL.Query().Get("id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			req.ID = &id
		}
	}

	html, err := h.service.PreviewContent(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

func (h *ContentHandler) contentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid content ID", "content_id", idStr, "error", err)
		http.Error(w, "Invalid content ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps domain errors to the HTTP contract: validation to 422
// with field errors, stale ids to a redirect that keeps the user in the
// application, kind resolution failures to 400, missing default kind to a
// fatal 500.
func (h *ContentHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *signage.ValidationError
	if errors.As(err, &verr) {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, map[string]interface{}{"errors": verr.Fields})
		return
	}

	switch {
	case errors.Is(err, signage.ErrContentNotFound):
		notice := url.Values{"notice": {"Content not found."}}
		http.Redirect(w, r, h.browsePath+"?"+notice.Encode(), http.StatusSeeOther)
	case errors.Is(err, signage.ErrKindNotFound):
		http.Error(w, "Unrecognized content type.", http.StatusBadRequest)
	case errors.Is(err, signage.ErrNoDefaultKind):
		slog.Error("No default content kind configured")
		http.Error(w, "Missing default content type.", http.StatusInternalServerError)
	case errors.Is(err, signage.ErrNotAuthorized):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, signage.ErrActionNotSupported):
		http.Error(w, "Unable to perform action.", http.StatusBadRequest)
	default:
		slog.Error("Request failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseFeedIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func toMedia(reqs []MediaRequest) []signage.Media {
	media := make([]signage.Media, 0, len(reqs))
	for _, m := range reqs {
		media = append(media, signage.Media{
			FileName: m.FileName,
			FileType: m.FileType,
			FileSize: m.FileSize,
			Data:     m.Data,
		})
	}
	return media
}
