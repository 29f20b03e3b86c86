// Package integration implements e-commerce store connections and the
// product sync job that mirrors the remote catalog locally.
package integration

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/agencyhub/backend/internal/domain/integration"
	"github.com/agencyhub/backend/internal/domain/jobs"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/infrastructure/ecommerce"
)

// ConnectStoreInput connects an organization to a Shopify store
type ConnectStoreInput struct {
	OrgID       uuid.UUID
	CreatedBy   uuid.UUID
	ShopDomain  string
	AccessToken string
}

// syncPayload is the job payload for a store sync
type syncPayload struct {
	ConnectionID string `json:"connection_id"`
}

// StoreCatalog fetches the remote product catalog
type StoreCatalog interface {
	FetchProducts(ctx context.Context, shopDomain, accessToken string) ([]ecommerce.Product, error)
}

// JobEnqueuer delegates catalog syncs to the worker pool
type JobEnqueuer interface {
	EnqueueJob(ctx context.Context, orgID uuid.UUID, kind jobs.JobKind, payload interface{}) (*jobs.Job, error)
}

// IntegrationService handles store connections and product links
type IntegrationService struct {
	connRepo integration.StoreConnectionRepository
	linkRepo integration.ProductLinkRepository
	catalog  StoreCatalog
	enqueuer JobEnqueuer
	logger   *zap.Logger
}

// NewIntegrationService creates a new integration service
func NewIntegrationService(
	connRepo integration.StoreConnectionRepository,
	linkRepo integration.ProductLinkRepository,
	catalog StoreCatalog,
	enqueuer JobEnqueuer,
	logger *zap.Logger,
) *IntegrationService {
	return &IntegrationService{
		connRepo: connRepo,
		linkRepo: linkRepo,
		catalog:  catalog,
		enqueuer: enqueuer,
		logger:   logger,
	}
}

// Connect links an organization to a Shopify store and queues the first sync
func (s *IntegrationService) Connect(ctx context.Context, input ConnectStoreInput) (*integration.StoreConnection, error) {
	conn, err := integration.NewStoreConnection(input.OrgID, integration.ProviderShopify, input.ShopDomain, input.AccessToken)
	if err != nil {
		return nil, err
	}
	exists, err := s.connRepo.ExistsByShopDomain(ctx, input.OrgID, conn.ShopDomain)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("SHOP_CONNECTED", "This shop is already connected")
	}
	conn.SetCreatedBy(input.CreatedBy)

	if err := s.connRepo.Save(ctx, conn); err != nil {
		return nil, err
	}
	if _, err := s.enqueuer.EnqueueJob(ctx, input.OrgID, jobs.JobKindStoreSync, syncPayload{
		ConnectionID: conn.ID.String(),
	}); err != nil {
		s.logger.Error("failed to queue initial store sync",
			zap.String("connection_id", conn.ID.String()), zap.Error(err))
	}

	s.logger.Info("store connected",
		zap.String("org_id", input.OrgID.String()),
		zap.String("shop", conn.ShopDomain))
	return conn, nil
}

// Get loads a store connection by ID
func (s *IntegrationService) Get(ctx context.Context, orgID, connectionID uuid.UUID) (*integration.StoreConnection, error) {
	return s.connRepo.FindByID(ctx, orgID, connectionID)
}

// List lists an organization's store connections
func (s *IntegrationService) List(ctx context.Context, orgID uuid.UUID) ([]*integration.StoreConnection, error) {
	return s.connRepo.FindAll(ctx, orgID)
}

// RotateToken replaces the access token after the merchant reauthorizes
func (s *IntegrationService) RotateToken(ctx context.Context, orgID, connectionID uuid.UUID, accessToken string) (*integration.StoreConnection, error) {
	conn, err := s.connRepo.FindByID(ctx, orgID, connectionID)
	if err != nil {
		return nil, err
	}
	if err := conn.RotateToken(accessToken); err != nil {
		return nil, err
	}
	if err := s.connRepo.SaveWithLock(ctx, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// RequestSync queues a catalog sync for a healthy connection
func (s *IntegrationService) RequestSync(ctx context.Context, orgID, connectionID uuid.UUID) (*jobs.Job, error) {
	conn, err := s.connRepo.FindByID(ctx, orgID, connectionID)
	if err != nil {
		return nil, err
	}
	if !conn.IsConnected() {
		return nil, shared.NewDomainError("NOT_CONNECTED", "Store is not connected")
	}
	return s.enqueuer.EnqueueJob(ctx, orgID, jobs.JobKindStoreSync, syncPayload{
		ConnectionID: conn.ID.String(),
	})
}

// Disconnect severs the connection; product links stay for history
func (s *IntegrationService) Disconnect(ctx context.Context, orgID, connectionID uuid.UUID) (*integration.StoreConnection, error) {
	conn, err := s.connRepo.FindByID(ctx, orgID, connectionID)
	if err != nil {
		return nil, err
	}
	if err := conn.Disconnect(); err != nil {
		return nil, err
	}
	if err := s.connRepo.SaveWithLock(ctx, conn); err != nil {
		return nil, err
	}
	s.logger.Info("store disconnected", zap.String("connection_id", conn.ID.String()))
	return conn, nil
}

// Delete removes a connection together with its product links
func (s *IntegrationService) Delete(ctx context.Context, orgID, connectionID uuid.UUID) error {
	return s.connRepo.Delete(ctx, orgID, connectionID)
}

// ListProducts pages through a connection's mirrored products
func (s *IntegrationService) ListProducts(ctx context.Context, orgID, connectionID uuid.UUID, filter shared.Filter) (*shared.Paginated[*integration.ProductLink], error) {
	if _, err := s.connRepo.FindByID(ctx, orgID, connectionID); err != nil {
		return nil, err
	}
	return s.linkRepo.FindByConnection(ctx, orgID, connectionID, filter)
}

// HandleStoreSync is the catalog sync job handler. It upserts a product
// link per remote product; products that disappeared remotely keep their
// link but a future sync never refreshes them again.
func (s *IntegrationService) HandleStoreSync(ctx context.Context, job *jobs.Job) (string, error) {
	var payload syncPayload
	if err := job.DecodePayload(&payload); err != nil {
		return "", err
	}
	connectionID, err := uuid.Parse(payload.ConnectionID)
	if err != nil {
		return "", shared.NewDomainError("INVALID_PAYLOAD", "Connection ID is not a UUID")
	}

	conn, err := s.connRepo.FindByID(ctx, job.OrgID, connectionID)
	if err != nil {
		return "", err
	}
	if !conn.IsConnected() {
		return "", shared.NewDomainError("NOT_CONNECTED", "Store is not connected")
	}

	products, err := s.catalog.FetchProducts(ctx, conn.ShopDomain, conn.AccessToken)
	if err != nil {
		conn.RecordSyncError(err.Error())
		if serr := s.connRepo.SaveWithLock(ctx, conn); serr != nil {
			s.logger.Error("failed to persist sync error",
				zap.String("connection_id", conn.ID.String()), zap.Error(serr))
		}
		if errors.Is(err, ecommerce.ErrUnauthorized) {
			// A revoked token never recovers on retry
			return "", shared.NewDomainError("TOKEN_REVOKED", "Store access token was rejected")
		}
		return "", err
	}

	var created, updated int
	for _, product := range products {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		price, perr := decimal.NewFromString(product.Price)
		if perr != nil {
			s.logger.Warn("product has unparseable price, skipped",
				zap.String("external_id", product.ExternalID),
				zap.String("price", product.Price))
			continue
		}
		available := product.Status == "active"

		link, err := s.linkRepo.FindByExternalID(ctx, job.OrgID, conn.ID, product.ExternalID)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return "", err
			}
			link, err = integration.NewProductLink(job.OrgID, conn.ID, product.ExternalID, product.Title)
			if err != nil {
				s.logger.Warn("product rejected", zap.String("external_id", product.ExternalID), zap.Error(err))
				continue
			}
			created++
		} else {
			updated++
		}

		if err := link.ApplySync(product.Title, product.Handle, price, product.Currency, available); err != nil {
			s.logger.Warn("product sync rejected", zap.String("external_id", product.ExternalID), zap.Error(err))
			continue
		}
		if err := s.linkRepo.Save(ctx, link); err != nil {
			return "", err
		}
	}

	conn.RecordSync()
	if err := s.connRepo.SaveWithLock(ctx, conn); err != nil {
		return "", err
	}

	s.logger.Info("store sync finished",
		zap.String("connection_id", conn.ID.String()),
		zap.Int("created", created),
		zap.Int("updated", updated))
	result, _ := json.Marshal(map[string]int{"created": created, "updated": updated})
	return string(result), nil
}
