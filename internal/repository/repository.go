package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"gymdesk/membership-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound          = RepositoryError("not found")
	ErrForbidden         = RepositoryError("forbidden")
	ErrConflict          = RepositoryError("conflict")
	ErrRejected          = RepositoryError("rejected by backend")
	ErrUnavailable       = RepositoryError("backend unavailable")
	ErrMalformedResponse = RepositoryError("malformed backend response")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// BackendError is a non-2xx reply from the gym backend. It unwraps to the
// RepositoryError matching its status so callers can use errors.Is.
type BackendError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *BackendError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case e.StatusCode == http.StatusConflict:
		return ErrConflict
	case e.StatusCode >= 500:
		return ErrUnavailable
	default:
		return ErrRejected
	}
}

// PlanRepository reads the plan catalog.
type PlanRepository interface {
	List(ctx context.Context) ([]domain.Plan, error)
	GetByID(ctx context.Context, id int64) (*domain.Plan, error)
}

// ClientRepository defines the interface for interacting with client data.
type ClientRepository interface {
	List(ctx context.Context) ([]domain.Client, error)
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	GetByNationalID(ctx context.Context, nationalID string) (*domain.Client, error)
	NationalIDExists(ctx context.Context, nationalID string) (bool, error)
	Create(ctx context.Context, client *domain.Client) (*domain.Client, error)
	Update(ctx context.Context, id int64, client *domain.Client) (*domain.Client, error)
	Delete(ctx context.Context, id int64) error
	Register(ctx context.Context, reg domain.Registration) (*domain.Client, error)
}

// MeasurementRepository defines the interface for body measurement records.
type MeasurementRepository interface {
	List(ctx context.Context) ([]domain.Measurement, error)
	ListByClient(ctx context.Context, clientID int64) ([]domain.Measurement, error)
	Latest(ctx context.Context, clientID int64) (*domain.Measurement, error)
	GetByID(ctx context.Context, id int64) (*domain.Measurement, error)
	Create(ctx context.Context, m *domain.Measurement) (*domain.Measurement, error)
	Update(ctx context.Context, id int64, m *domain.Measurement) (*domain.Measurement, error)
	Delete(ctx context.Context, id int64) error
}

// PaymentRepository defines the interface for payments and renewals.
type PaymentRepository interface {
	List(ctx context.Context) ([]domain.Payment, error)
	ListByClient(ctx context.Context, clientID int64) ([]domain.Payment, error)
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	Create(ctx context.Context, p domain.NewPayment) (*domain.Payment, error)
	Update(ctx context.Context, id int64, patch domain.PaymentPatch) (*domain.Payment, error)
	Delete(ctx context.Context, id int64) error
	Renew(ctx context.Context, req domain.RenewalRequest) (*domain.RenewalResult, error)
}

// FeeRepository defines the interface for maintenance fee records.
type FeeRepository interface {
	ListByClient(ctx context.Context, clientID int64) ([]domain.MaintenanceFee, error)
	PendingSummary(ctx context.Context, clientID int64) (*domain.PendingFeesResponse, error)
	Create(ctx context.Context, fee domain.NewFee) (*domain.MaintenanceFee, error)
	MarkPaid(ctx context.Context, id int64, settlement domain.FeeSettlement) (*domain.MaintenanceFee, error)
	Update(ctx context.Context, id int64, patch domain.FeePatch) (*domain.MaintenanceFee, error)
	Delete(ctx context.Context, id int64) error
}

// StatsRepository reads dashboard statistics.
type StatsRepository interface {
	Dashboard(ctx context.Context) (*domain.DashboardSummary, error)
	Distribution(ctx context.Context) ([]domain.PlanDistribution, error)
	Trend(ctx context.Context, year int) (*domain.MonthlyTrend, error)
	WeeklyActivity(ctx context.Context, month, year int) ([]domain.WeeklyActivity, error)
	Compare(ctx context.Context, month1, month2, year1, year2 int) (*domain.MonthComparison, error)
	HealthCheck(ctx context.Context) error
}

// WhatsAppRepository talks to the backend's messaging gateway.
type WhatsAppRepository interface {
	Status(ctx context.Context) (*domain.WhatsAppStatus, error)
	CheckConnection(ctx context.Context) (*domain.WhatsAppConnection, error)
	Reset(ctx context.Context) (*domain.WhatsAppResult, error)
	SendTestMessage(ctx context.Context, phoneNumber string) (*domain.WhatsAppResult, error)
}

// SessionRepository stores console sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// StatementRepository stores metadata of exported payment statements.
type StatementRepository interface {
	Create(ctx context.Context, statement *domain.Statement) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Statement, error)
	ListByClient(ctx context.Context, clientID int64) ([]domain.Statement, error)
}
