package sqlstore

import (
	"context"
	"database/sql"
	"slices"

	"github.com/example/eventhub/internal/persistence"
	"github.com/example/eventhub/internal/query"
)

var ticketCollection = collection{
	fields: map[string]string{
		"id":         "id",
		"event_id":   "event_id",
		"user_id":    "user_id",
		"created_at": "created_at",
	},
	tiebreak: "id",
}

const ticketColumns = `id, event_id, user_id, ticket_type, price, payment_id, payment_status, qr_code, is_used, created_at, updated_at`

// CreateTicket sells a seat for the event. The capacity check, the insert and
// the attendee update happen in one transaction.
func (s *Store) CreateTicket(ctx context.Context, ticket persistence.Ticket) error {
	if ticket.ID == "" || ticket.EventID == "" || ticket.UserID == "" {
		return persistence.ErrConstraintViolation
	}
	now := s.timestamp()

	return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var (
			capacity     int
			attendeesRaw string
		)
		row := s.helper.QueryRowTx(ctx, tx,
			`SELECT capacity, attendees FROM events WHERE id = ?`+s.pool.Dialect().forUpdate(), ticket.EventID)
		if err := row.Scan(&capacity, &attendeesRaw); err != nil {
			return s.mapper.MapError(err)
		}

		var sold int
		if err := s.helper.QueryRowTx(ctx, tx, `SELECT COUNT(*) FROM tickets WHERE event_id = ?`, ticket.EventID).Scan(&sold); err != nil {
			return s.mapper.MapError(err)
		}
		if sold >= capacity {
			return persistence.ErrCapacityReached
		}

		if _, err := s.helper.ExecTx(ctx, tx, `
			INSERT INTO tickets (`+ticketColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ticket.ID,
			ticket.EventID,
			ticket.UserID,
			ticket.TicketType,
			ticket.Price,
			ticket.PaymentID,
			ticket.PaymentStatus,
			ticket.QRCode,
			ticket.IsUsed,
			formatTime(now),
			formatTime(now),
		); err != nil {
			return s.mapper.MapError(err)
		}

		attendees, err := decodeStrings("attendees", attendeesRaw)
		if err != nil {
			return err
		}
		if slices.Contains(attendees, ticket.UserID) {
			return nil
		}
		encoded, err := encodeStrings(append(attendees, ticket.UserID))
		if err != nil {
			return err
		}
		_, err = s.helper.ExecTx(ctx, tx, `UPDATE events SET attendees = ?, updated_at = ? WHERE id = ?`,
			encoded, formatTime(now), ticket.EventID)
		return s.mapper.MapError(err)
	})
}

// ListTickets returns tickets matching the query.
func (s *Store) ListTickets(ctx context.Context, q query.Query) ([]persistence.Ticket, error) {
	statement, args, err := ticketCollection.build(`SELECT `+ticketColumns+` FROM tickets`, q)
	if err != nil {
		return nil, err
	}
	rows, err := s.helper.Query(ctx, statement, args...)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	tickets := make([]persistence.Ticket, 0)
	for rows.Next() {
		var (
			ticket             persistence.Ticket
			created, updatedAt string
		)
		if err := rows.Scan(
			&ticket.ID,
			&ticket.EventID,
			&ticket.UserID,
			&ticket.TicketType,
			&ticket.Price,
			&ticket.PaymentID,
			&ticket.PaymentStatus,
			&ticket.QRCode,
			&ticket.IsUsed,
			&created,
			&updatedAt,
		); err != nil {
			return nil, err
		}
		if ticket.CreatedAt, err = parseTime("created_at", created); err != nil {
			return nil, err
		}
		if ticket.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}
