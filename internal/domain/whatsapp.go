package domain

import "time"

type WhatsAppStatus struct {
	Status  string `json:"status"` // "connected" or "disconnected"
	Message string `json:"message"`
}

type WhatsAppConnection struct {
	Connected bool      `json:"connected"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type WhatsAppResult struct {
	Status  string `json:"status"` // "success" or "error"
	Message string `json:"message"`
}
