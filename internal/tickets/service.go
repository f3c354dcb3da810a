package tickets

import (
	"context"
	"fmt"

	"qr-admin-service/internal/models"
	"qr-admin-service/internal/tickets/qr"
)

type TicketDBLayer interface {
	GetTicketByID(ctx context.Context, id string) (*models.Ticket, error)
	GetTicketsByOrder(ctx context.Context, orderID string) ([]models.Ticket, error)
	UpdateStatus(ctx context.Context, ticketID, status string) (*models.Ticket, error)
	CountByStatus(ctx context.Context, status string) (int, error)
}

// Publisher emits ticket lifecycle events; nil disables publishing.
type Publisher interface {
	PublishTicketValidated(topic string, ticket models.Ticket) error
}

type TicketService struct {
	DB             TicketDBLayer
	QR             *qr.QRGenerator
	Kafka          Publisher
	ValidatedTopic string
}

func NewTicketService(db TicketDBLayer, qrGen *qr.QRGenerator, kafka Publisher, validatedTopic string) *TicketService {
	return &TicketService{DB: db, QR: qrGen, Kafka: kafka, ValidatedTopic: validatedTopic}
}

func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*models.Ticket, error) {
	ticket, err := s.DB.GetTicketByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("ticket %s not found: %w", ticketID, err)
	}
	return ticket, nil
}

func (s *TicketService) GetTicketsByOrder(ctx context.Context, orderID string) ([]models.Ticket, error) {
	tickets, err := s.DB.GetTicketsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets for order %s: %w", orderID, err)
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	return tickets, nil
}

// SetStatus toggles one ticket between live and validated.
func (s *TicketService) SetStatus(ctx context.Context, ticketID, status string) (*models.Ticket, error) {
	if status != models.TicketStatusLive && status != models.TicketStatusValidated {
		return nil, fmt.Errorf("invalid ticket status %q", status)
	}

	ticket, err := s.DB.UpdateStatus(ctx, ticketID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update ticket %s: %w", ticketID, err)
	}

	if status == models.TicketStatusValidated && s.Kafka != nil {
		if err := s.Kafka.PublishTicketValidated(s.ValidatedTopic, *ticket); err != nil {
			// Validation stands even when the event does not make it out.
			return ticket, nil
		}
	}

	return ticket, nil
}

// ValidateScanned decrypts a scanned QR payload and validates the matching
// ticket. A ticket already validated is rejected, so the same QR cannot be
// used twice at the door.
func (s *TicketService) ValidateScanned(ctx context.Context, encryptedQR string) (*models.Ticket, error) {
	payload, err := s.QR.DecryptPayload(encryptedQR)
	if err != nil {
		return nil, fmt.Errorf("invalid QR code: %w", err)
	}

	ticket, err := s.DB.GetTicketByID(ctx, payload.TicketID)
	if err != nil {
		return nil, fmt.Errorf("ticket %s not found: %w", payload.TicketID, err)
	}
	if ticket.OrderID != payload.OrderID {
		return nil, fmt.Errorf("QR payload does not match ticket %s", payload.TicketID)
	}
	if ticket.Status == models.TicketStatusValidated {
		return nil, fmt.Errorf("ticket %s already validated", payload.TicketID)
	}

	return s.SetStatus(ctx, payload.TicketID, models.TicketStatusValidated)
}
