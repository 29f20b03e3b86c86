package integration

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StoreProvider identifies the e-commerce platform behind a connection
type StoreProvider string

const (
	ProviderShopify StoreProvider = "shopify"
)

// ConnectionStatus represents the health of a store connection
type ConnectionStatus string

const (
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
	ConnectionStatusError        ConnectionStatus = "error"
)

// StoreConnection links an organization to an external store. The access
// token is stored as given; transport-level secrecy is the database's
// concern, not the domain's.
type StoreConnection struct {
	shared.OrgAggregateRoot
	Provider    StoreProvider    `gorm:"type:varchar(20);not null"`
	ShopDomain  string           `gorm:"type:varchar(253);not null;index"`
	AccessToken string           `gorm:"type:varchar(200);not null"`
	Status      ConnectionStatus `gorm:"type:varchar(15);not null;default:'connected'"`
	LastSyncAt  *time.Time       `gorm:"type:timestamptz"`
	LastError   string           `gorm:"type:text"`
}

// ProductLink mirrors one product from a connected store
type ProductLink struct {
	shared.OrgAggregateRoot
	ConnectionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ExternalID   string          `gorm:"type:varchar(100);not null;index"`
	Title        string          `gorm:"type:varchar(300);not null"`
	Handle       string          `gorm:"type:varchar(300)"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Currency     string          `gorm:"type:varchar(3);not null;default:'USD'"`
	Available    bool            `gorm:"not null;default:true"`
	SyncedAt     time.Time       `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (StoreConnection) TableName() string {
	return "store_connections"
}

// TableName returns the table name for GORM
func (ProductLink) TableName() string {
	return "product_links"
}

// NewStoreConnection connects an organization to a store
func NewStoreConnection(orgID uuid.UUID, provider StoreProvider, shopDomain, accessToken string) (*StoreConnection, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if provider != ProviderShopify {
		return nil, shared.NewDomainError("INVALID_PROVIDER", "Unsupported store provider")
	}
	shopDomain = strings.TrimSpace(strings.ToLower(shopDomain))
	if shopDomain == "" || !strings.Contains(shopDomain, ".") {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is not valid")
	}
	if accessToken == "" {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Access token cannot be empty")
	}

	return &StoreConnection{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Provider:         provider,
		ShopDomain:       shopDomain,
		AccessToken:      accessToken,
		Status:           ConnectionStatusConnected,
	}, nil
}

// RotateToken replaces the access token and clears any error state
func (c *StoreConnection) RotateToken(accessToken string) error {
	if accessToken == "" {
		return shared.NewDomainError("INVALID_TOKEN", "Access token cannot be empty")
	}

	c.AccessToken = accessToken
	c.Status = ConnectionStatusConnected
	c.LastError = ""
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// RecordSync stamps a successful sync
func (c *StoreConnection) RecordSync() {
	now := time.Now()
	c.LastSyncAt = &now
	c.Status = ConnectionStatusConnected
	c.LastError = ""
	c.UpdatedAt = now
	c.IncrementVersion()
}

// RecordSyncError marks the connection unhealthy with the failure reason
func (c *StoreConnection) RecordSyncError(reason string) {
	c.Status = ConnectionStatusError
	c.LastError = reason
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Disconnect severs the connection; its product links stay for history
func (c *StoreConnection) Disconnect() error {
	if c.Status == ConnectionStatusDisconnected {
		return shared.NewDomainError("ALREADY_DISCONNECTED", "Store is already disconnected")
	}

	c.Status = ConnectionStatusDisconnected
	c.AccessToken = ""
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// IsConnected returns true if the connection can be used for syncing
func (c *StoreConnection) IsConnected() bool {
	return c.Status != ConnectionStatusDisconnected && c.AccessToken != ""
}

// NewProductLink mirrors a store product locally
func NewProductLink(orgID, connectionID uuid.UUID, externalID, title string) (*ProductLink, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if connectionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONNECTION", "Connection ID cannot be empty")
	}
	if externalID == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "External product ID cannot be empty")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product title cannot be empty")
	}

	return &ProductLink{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		ConnectionID:     connectionID,
		ExternalID:       externalID,
		Title:            title,
		Price:            decimal.Zero,
		Currency:         "USD",
		Available:        true,
		SyncedAt:         time.Now(),
	}, nil
}

// ApplySync refreshes the mirrored fields from the latest store data
func (p *ProductLink) ApplySync(title, handle string, price decimal.Decimal, currency string, available bool) error {
	if title == "" {
		return shared.NewDomainError("INVALID_PRODUCT", "Product title cannot be empty")
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	now := time.Now()
	p.Title = title
	p.Handle = handle
	p.Price = price
	if currency != "" {
		p.Currency = currency
	}
	p.Available = available
	p.SyncedAt = now
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}
