package service

import (
	"context"
	"strings"

	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/logger"
	"gymdesk/membership-app/internal/repository"
	"gymdesk/membership-app/internal/validation"
)

// WhatsAppStatusView is the gateway status. Degraded is set when the backend
// could not be asked.
type WhatsAppStatusView struct {
	domain.WhatsAppStatus
	Degraded bool `json:"degraded"`
}

type WhatsAppConnectionView struct {
	domain.WhatsAppConnection
	Degraded bool `json:"degraded"`
}

type WhatsAppService interface {
	Status(ctx context.Context) WhatsAppStatusView
	CheckConnection(ctx context.Context) WhatsAppConnectionView
	Reset(ctx context.Context) (*domain.WhatsAppResult, error)
	SendTestMessage(ctx context.Context, phoneNumber string) (*domain.WhatsAppResult, error)
}

type whatsAppService struct {
	repo repository.WhatsAppRepository
	log  *logger.Logger
}

func NewWhatsAppService(repo repository.WhatsAppRepository, log *logger.Logger) WhatsAppService {
	return &whatsAppService{repo: repo, log: log}
}

func (s *whatsAppService) Status(ctx context.Context) WhatsAppStatusView {
	st, err := s.repo.Status(ctx)
	if err != nil {
		s.log.Warn(ctx, "whatsapp status unavailable", err)
		return WhatsAppStatusView{
			WhatsAppStatus: domain.WhatsAppStatus{Status: "disconnected", Message: "could not reach the messaging gateway"},
			Degraded:       true,
		}
	}
	return WhatsAppStatusView{WhatsAppStatus: *st}
}

func (s *whatsAppService) CheckConnection(ctx context.Context) WhatsAppConnectionView {
	c, err := s.repo.CheckConnection(ctx)
	if err != nil {
		s.log.Warn(ctx, "whatsapp connection check failed", err)
		return WhatsAppConnectionView{
			WhatsAppConnection: domain.WhatsAppConnection{
				Connected: false,
				Message:   "could not verify the connection",
				Timestamp: now(),
			},
			Degraded: true,
		}
	}
	return WhatsAppConnectionView{WhatsAppConnection: *c}
}

func (s *whatsAppService) Reset(ctx context.Context) (*domain.WhatsAppResult, error) {
	return s.repo.Reset(ctx)
}

func (s *whatsAppService) SendTestMessage(ctx context.Context, phoneNumber string) (*domain.WhatsAppResult, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if len(phoneNumber) < 10 {
		r := validation.Ok()
		r.Add("phoneNumber", "must be at least 10 characters")
		return nil, r.Err()
	}
	return s.repo.SendTestMessage(ctx, phoneNumber)
}
