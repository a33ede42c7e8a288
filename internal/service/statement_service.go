package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"

	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/logger"
	"gymdesk/membership-app/internal/reconcile"
	"gymdesk/membership-app/internal/repository"
	"gymdesk/membership-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrStatementURL    = errors.New("failed to generate statement download URL")
	ErrStatementUpload = errors.New("failed to upload statement")
)

const statementContentType = "text/csv"

var statementHeader = []string{"fecha", "idPago", "metodoPago", "estado", "monto", "totalEsperado", "saldoPendiente"}

type StatementService interface {
	// Export writes the client's payment history as CSV to object storage and
	// returns the record with a short-lived download URL.
	Export(ctx context.Context, clientID int64, requestedBy string) (*domain.Statement, error)
	List(ctx context.Context, clientID int64) ([]domain.Statement, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Statement, error)
}

type statementService struct {
	paymentRepo   repository.PaymentRepository
	statementRepo repository.StatementRepository
	fileStorage   storage.FileStorage
	log           *logger.Logger
}

func NewStatementService(
	paymentRepo repository.PaymentRepository,
	statementRepo repository.StatementRepository,
	fileStorage storage.FileStorage,
	log *logger.Logger,
) StatementService {
	return &statementService{
		paymentRepo:   paymentRepo,
		statementRepo: statementRepo,
		fileStorage:   fileStorage,
		log:           log,
	}
}

func (s *statementService) Export(ctx context.Context, clientID int64, requestedBy string) (*domain.Statement, error) {
	payments, err := s.paymentRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	body, err := renderStatement(payments)
	if err != nil {
		return nil, err
	}

	t := now()
	objectKey := path.Join("statements", strconv.FormatInt(clientID, 10), uuid.NewString()+".csv")
	if err := s.fileStorage.PutObject(ctx, objectKey, statementContentType, body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStatementUpload, err)
	}

	st := &domain.Statement{
		ClientID:     clientID,
		ObjectKey:    objectKey,
		FileName:     fmt.Sprintf("pagos-%d-%s.csv", clientID, t.Format("20060102")),
		PaymentCount: len(payments),
		Size:         int64(len(body)),
		RequestedBy:  requestedBy,
		CreatedAt:    t,
	}
	id, err := s.statementRepo.Create(ctx, st)
	if err != nil {
		if derr := s.fileStorage.DeleteObject(ctx, objectKey); derr != nil {
			s.log.Warn(s.log.WithField(ctx, "key", objectKey), "failed to remove orphaned statement", derr)
		}
		return nil, err
	}
	st.ID = id

	if err := s.sign(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *statementService) List(ctx context.Context, clientID int64) ([]domain.Statement, error) {
	statements, err := s.statementRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	for i := range statements {
		if err := s.sign(ctx, &statements[i]); err != nil {
			return nil, err
		}
	}
	return statements, nil
}

func (s *statementService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Statement, error) {
	st, err := s.statementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.sign(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *statementService) sign(ctx context.Context, st *domain.Statement) error {
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, st.ObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStatementURL, err)
	}
	st.DownloadURL = url
	return nil
}

// renderStatement writes one row per payment, oldest first.
func renderStatement(payments []domain.Payment) ([]byte, error) {
	sorted := append([]domain.Payment(nil), payments...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].PaidAt.Equal(sorted[j].PaidAt) {
			return sorted[i].PaidAt.Before(sorted[j].PaidAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(statementHeader); err != nil {
		return nil, err
	}
	for _, p := range sorted {
		a := reconcile.Assess(p)
		row := []string{
			p.PaidAt.Format("2006-01-02"),
			strconv.FormatInt(p.ID, 10),
			string(p.Method),
			string(p.State),
			p.Amount.StringFixed(2),
			a.ExpectedTotal.StringFixed(2),
			a.RemainingBalance.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
