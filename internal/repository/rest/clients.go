package rest

import (
	"context"
	"net/url"

	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/repository"
)

const clientsPath = "/clientes"

type clientRepository struct {
	client *Client
}

func NewClientRepository(client *Client) repository.ClientRepository {
	return &clientRepository{client: client}
}

func (r *clientRepository) List(ctx context.Context) ([]domain.Client, error) {
	return getList[domain.Client](ctx, r.client, clientsPath, nil)
}

func (r *clientRepository) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	var c domain.Client
	if err := r.client.get(ctx, idPath(clientsPath, id), nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clientRepository) GetByNationalID(ctx context.Context, nationalID string) (*domain.Client, error) {
	var c domain.Client
	path := clientsPath + "/cedula/" + url.PathEscape(nationalID)
	if err := r.client.get(ctx, path, nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// NationalIDExists reports whether a client with this national id is
// already registered.
func (r *clientRepository) NationalIDExists(ctx context.Context, nationalID string) (bool, error) {
	var exists bool
	path := clientsPath + "/chequeoCI/" + url.PathEscape(nationalID)
	if err := r.client.get(ctx, path, nil, &exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *clientRepository) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	var created domain.Client
	if err := r.client.post(ctx, clientsPath, c, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *clientRepository) Update(ctx context.Context, id int64, c *domain.Client) (*domain.Client, error) {
	var updated domain.Client
	if err := r.client.patch(ctx, idPath(clientsPath, id), c, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *clientRepository) Delete(ctx context.Context, id int64) error {
	return r.client.del(ctx, idPath(clientsPath, id))
}

// Register creates the client, first measurement, enrollment and payment in
// a single backend transaction.
func (r *clientRepository) Register(ctx context.Context, reg domain.Registration) (*domain.Client, error) {
	var created domain.Client
	if err := r.client.post(ctx, clientsPath+"/registro", reg, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
