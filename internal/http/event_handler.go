package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/example/eventhub/internal/gateway"
	"github.com/example/eventhub/internal/query"
)

var (
	eventFields  = []string{"id", "title", "category", "status", "organizer_id", "start_date", "end_date", "created_at"}
	ticketFields = []string{"id", "event_id", "created_at"}
	ratingFields = []string{"user_id", "rating", "created_at", "updated_at"}
)

type eventBackend interface {
	gateway.Events
	gateway.Tickets
	gateway.Ratings
	gateway.Aggregates
}

// EventHandler serves events and the resources hanging off them: tickets,
// ratings and the rating aggregate.
type EventHandler struct {
	backend   eventBackend
	responder responder
	logger    *slog.Logger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(backend eventBackend, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{backend: backend, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

// List handles GET /events.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	q, ok := h.decodeQuery(w, r, eventFields)
	if !ok {
		return
	}
	events, err := h.backend.ListEvents(r.Context(), q)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, events)
}

// Get handles GET /events/{id}.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.backend.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, event)
}

// Create handles POST /events. The caller becomes the organizer.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	var event gateway.Event
	if err := decodeJSON(w, r, &event); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	event.OrganizerID = principal.ID

	created, err := h.backend.CreateEvent(ctx, event)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.log(ctx, "Create", "event_id", created.ID).InfoContext(ctx, "event created")
	h.responder.writeJSON(ctx, w, http.StatusCreated, created)
}

// Update handles PUT /events/{id}. Only the organizer may update; the
// organizer cannot be reassigned.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	existing, err := h.ownedEvent(ctx, id)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	var event gateway.Event
	if err := decodeJSON(w, r, &event); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	event.ID = id
	event.OrganizerID = existing.OrganizerID
	if event.Attendees == nil {
		event.Attendees = existing.Attendees
	}

	updated, err := h.backend.UpdateEvent(ctx, event)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.log(ctx, "Update", "event_id", id).InfoContext(ctx, "event updated")
	h.responder.writeJSON(ctx, w, http.StatusOK, updated)
}

// Delete handles DELETE /events/{id}.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	if _, err := h.ownedEvent(ctx, id); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	if err := h.backend.DeleteEvent(ctx, id); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.log(ctx, "Delete", "event_id", id).InfoContext(ctx, "event deleted")
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

func (h *EventHandler) ownedEvent(ctx context.Context, id string) (gateway.Event, error) {
	principal, _ := PrincipalFromContext(ctx)
	event, err := h.backend.GetEvent(ctx, id)
	if err != nil {
		return gateway.Event{}, err
	}
	if event.OrganizerID != principal.ID {
		return gateway.Event{}, gateway.ErrForbidden
	}
	return event, nil
}

// BuyTicket handles POST /events/{id}/tickets for the caller.
func (h *EventHandler) BuyTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	var ticket gateway.Ticket
	if err := decodeJSON(w, r, &ticket); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	ticket.ID = ""
	ticket.EventID = r.PathValue("id")
	ticket.UserID = principal.ID

	created, err := h.backend.CreateTicket(ctx, ticket)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.log(ctx, "BuyTicket", "event_id", ticket.EventID, "ticket_id", created.ID).InfoContext(ctx, "ticket sold")
	h.responder.writeJSON(ctx, w, http.StatusCreated, created)
}

// ListTickets handles GET /tickets, restricted to the caller's tickets.
func (h *EventHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	q, ok := h.decodeQuery(w, r, ticketFields)
	if !ok {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	tickets, err := h.backend.ListTickets(r.Context(), q.Eq("user_id", principal.ID))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, tickets)
}

// ListRatings handles GET /events/{id}/ratings.
func (h *EventHandler) ListRatings(w http.ResponseWriter, r *http.Request) {
	q, ok := h.decodeQuery(w, r, ratingFields)
	if !ok {
		return
	}
	ratings, err := h.backend.ListRatings(r.Context(), r.PathValue("id"), q)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, ratings)
}

// Rate handles PUT /events/{id}/ratings, upserting the caller's rating.
func (h *EventHandler) Rate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	var rating gateway.Rating
	if err := decodeJSON(w, r, &rating); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	rating.EventID = r.PathValue("id")
	rating.UserID = principal.ID

	stored, err := h.backend.UpsertRating(ctx, rating)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, stored)
}

type scalarResponse struct {
	Result *float64 `json:"result"`
}

// CallScalar handles GET /rpc/{name}. Query parameters are the arguments.
func (h *EventHandler) CallScalar(w http.ResponseWriter, r *http.Request) {
	args := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			args[key] = values[0]
		}
	}
	result, err := h.backend.CallScalar(r.Context(), r.PathValue("name"), args)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, scalarResponse{Result: result})
}

func (h *EventHandler) decodeQuery(w http.ResponseWriter, r *http.Request, allowed []string) (query.Query, bool) {
	return decodeQuery(h.responder, w, r, allowed)
}

func decodeQuery(resp responder, w http.ResponseWriter, r *http.Request, allowed []string) (query.Query, bool) {
	q, err := query.Decode(r.URL.Query(), allowed...)
	if err != nil {
		resp.handleServiceError(r.Context(), w, fmt.Errorf("%w: %w", gateway.ErrInvalidRequest, err))
		return query.Query{}, false
	}
	return q, true
}
