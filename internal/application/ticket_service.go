package application

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/example/eventhub/internal/gateway"
	"github.com/example/eventhub/internal/query"
)

// PaymentCompleted is the payment status of a purchased ticket.
const PaymentCompleted = "completed"

// TicketType is one purchasable tier of an event.
type TicketType struct {
	Name        string
	Price       float64
	Description string
	Benefits    []string
}

// DefaultTicketTypes returns the tiers offered for an event with the given
// base price.
func DefaultTicketTypes(basePrice float64) []TicketType {
	return []TicketType{
		{
			Name:        "General Admission",
			Price:       basePrice,
			Description: "Standard entry to the event",
			Benefits:    []string{"Event access", "Digital ticket"},
		},
		{
			Name:        "VIP",
			Price:       basePrice * 2,
			Description: "Premium experience with extra perks",
			Benefits:    []string{"Priority entry", "Reserved seating", "Event merchandise"},
		},
	}
}

// TicketService sells tickets to the current user.
type TicketService struct {
	tickets gateway.Tickets
	session SessionSource
	now     func() time.Time
	logger  *slog.Logger
}

// NewTicketService constructs a TicketService.
func NewTicketService(tickets gateway.Tickets, session SessionSource, now func() time.Time) *TicketService {
	return NewTicketServiceWithLogger(tickets, session, now, nil)
}

// NewTicketServiceWithLogger constructs a TicketService with a specified logger.
func NewTicketServiceWithLogger(tickets gateway.Tickets, session SessionSource, now func() time.Time, logger *slog.Logger) *TicketService {
	if now == nil {
		now = time.Now
	}
	return &TicketService{tickets: tickets, session: session, now: now, logger: defaultLogger(logger)}
}

func (s *TicketService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TicketService", operation, attrs...)
}

// Purchase buys one ticket of the given type. Payment is simulated and always
// completes; a sold-out event fails with gateway.ErrCapacityReached.
func (s *TicketService) Purchase(ctx context.Context, eventID string, ticketType TicketType) (ticket gateway.Ticket, err error) {
	if s == nil || s.tickets == nil {
		err = fmt.Errorf("TicketService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "Purchase", "event_id", eventID, "ticket_type", ticketType.Name)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "ticket purchase failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("ticket_id", ticket.ID).InfoContext(ctx, "ticket purchased")
	}()

	userID := s.session.userID()
	if userID == "" {
		err = ErrUnauthorized
		return
	}
	if ticketType.Price < 0 {
		vErr := &ValidationError{}
		vErr.add("price", "price must not be negative")
		err = vErr
		return
	}

	stamp := strconv.FormatInt(s.now().UnixMilli(), 10)
	ticket, err = s.tickets.CreateTicket(ctx, gateway.Ticket{
		EventID:       eventID,
		UserID:        userID,
		TicketType:    ticketType.Name,
		Price:         ticketType.Price,
		PaymentID:     "mock_payment_" + stamp,
		PaymentStatus: PaymentCompleted,
		QRCode:        eventID + "_" + userID + "_" + stamp,
	})
	return
}

// MyTickets lists the current user's tickets, newest first.
func (s *TicketService) MyTickets(ctx context.Context) ([]gateway.Ticket, error) {
	if s == nil || s.tickets == nil {
		return nil, fmt.Errorf("TicketService is not configured")
	}
	userID := s.session.userID()
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.tickets.ListTickets(ctx, query.New().Eq("user_id", userID).Order("created_at", true))
}
