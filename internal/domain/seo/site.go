package seo

import (
	"net/url"
	"strings"
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AuditStatus tracks the state of the most recent audit run on a site
type AuditStatus string

const (
	AuditStatusNever   AuditStatus = "never"
	AuditStatusQueued  AuditStatus = "queued"
	AuditStatusRunning AuditStatus = "running"
	AuditStatusDone    AuditStatus = "done"
	AuditStatusFailed  AuditStatus = "failed"
)

// Site is a client website tracked for SEO work
type Site struct {
	shared.OrgAggregateRoot
	ContactID   *uuid.UUID  `gorm:"type:uuid;index"`
	ProjectID   *uuid.UUID  `gorm:"type:uuid;index"`
	Domain      string      `gorm:"type:varchar(253);not null;index"`
	Name        string      `gorm:"type:varchar(200);not null"`
	AuditStatus AuditStatus `gorm:"type:varchar(10);not null;default:'never'"`
	LastAuditAt *time.Time  `gorm:"type:timestamptz"`
	AuditError  string      `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Site) TableName() string {
	return "seo_sites"
}

// NewSite registers a website for SEO tracking
func NewSite(orgID uuid.UUID, domain, name string) (*Site, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	normalized, err := NormalizeDomain(domain)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = normalized
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Site name cannot exceed 200 characters")
	}

	return &Site{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Domain:           normalized,
		Name:             name,
		AuditStatus:      AuditStatusNever,
	}, nil
}

// NormalizeDomain lowercases a domain and strips any scheme, path, or port
func NormalizeDomain(domain string) (string, error) {
	domain = strings.TrimSpace(strings.ToLower(domain))
	if domain == "" {
		return "", shared.NewDomainError("INVALID_DOMAIN", "Domain cannot be empty")
	}
	if strings.Contains(domain, "://") {
		u, err := url.Parse(domain)
		if err != nil || u.Host == "" {
			return "", shared.NewDomainError("INVALID_DOMAIN", "Domain is not valid")
		}
		domain = u.Host
	}
	if idx := strings.IndexAny(domain, "/?#"); idx >= 0 {
		domain = domain[:idx]
	}
	if idx := strings.Index(domain, ":"); idx >= 0 {
		domain = domain[:idx]
	}
	if domain == "" || len(domain) > 253 || !strings.Contains(domain, ".") {
		return "", shared.NewDomainError("INVALID_DOMAIN", "Domain is not valid")
	}
	return domain, nil
}

// QueueAudit marks an audit requested. A site with an audit already in
// flight rejects a second request.
func (s *Site) QueueAudit() error {
	if s.AuditStatus == AuditStatusQueued || s.AuditStatus == AuditStatusRunning {
		return shared.NewDomainError("AUDIT_IN_PROGRESS", "An audit is already in progress for this site")
	}

	s.AuditStatus = AuditStatusQueued
	s.AuditError = ""
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// StartAudit marks the queued audit running
func (s *Site) StartAudit() error {
	if s.AuditStatus != AuditStatusQueued {
		return shared.NewDomainError("INVALID_STATE", "No queued audit to start")
	}

	s.AuditStatus = AuditStatusRunning
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// FinishAudit records a completed audit
func (s *Site) FinishAudit() error {
	if s.AuditStatus != AuditStatusRunning {
		return shared.NewDomainError("INVALID_STATE", "No running audit to finish")
	}

	now := time.Now()
	s.AuditStatus = AuditStatusDone
	s.LastAuditAt = &now
	s.AuditError = ""
	s.UpdatedAt = now
	s.IncrementVersion()
	return nil
}

// FailAudit records an audit failure with its error
func (s *Site) FailAudit(reason string) error {
	if s.AuditStatus != AuditStatusQueued && s.AuditStatus != AuditStatusRunning {
		return shared.NewDomainError("INVALID_STATE", "No audit in progress to fail")
	}

	s.AuditStatus = AuditStatusFailed
	s.AuditError = reason
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}
