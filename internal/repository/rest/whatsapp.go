package rest

import (
	"context"

	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/repository"
)

const whatsappPath = "/whatsapp"

type whatsAppRepository struct {
	client *Client
}

func NewWhatsAppRepository(client *Client) repository.WhatsAppRepository {
	return &whatsAppRepository{client: client}
}

func (r *whatsAppRepository) Status(ctx context.Context) (*domain.WhatsAppStatus, error) {
	var status domain.WhatsAppStatus
	if err := r.client.get(ctx, whatsappPath+"/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *whatsAppRepository) CheckConnection(ctx context.Context) (*domain.WhatsAppConnection, error) {
	var conn domain.WhatsAppConnection
	if err := r.client.get(ctx, whatsappPath+"/check-connection", nil, &conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *whatsAppRepository) Reset(ctx context.Context) (*domain.WhatsAppResult, error) {
	var result domain.WhatsAppResult
	if err := r.client.post(ctx, whatsappPath+"/reset", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *whatsAppRepository) SendTestMessage(ctx context.Context, phoneNumber string) (*domain.WhatsAppResult, error) {
	var result domain.WhatsAppResult
	body := map[string]string{"phoneNumber": phoneNumber}
	if err := r.client.post(ctx, whatsappPath+"/test-message", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
