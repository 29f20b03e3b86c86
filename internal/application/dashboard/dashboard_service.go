// Package dashboard aggregates cross-module counts for the overview screen.
package dashboard

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/agencyhub/backend/internal/domain/billing"
	"github.com/agencyhub/backend/internal/domain/crm"
	"github.com/agencyhub/backend/internal/domain/jobs"
	"github.com/agencyhub/backend/internal/domain/projects"
	"github.com/agencyhub/backend/internal/domain/proposals"
)

// Summary is the overview snapshot for one organization
type Summary struct {
	Prospects       int64           `json:"prospects"`
	Clients         int64           `json:"clients"`
	ActiveProjects  int64           `json:"active_projects"`
	OpenProposals   int64           `json:"open_proposals"`
	UnpaidInvoices  int64           `json:"unpaid_invoices"`
	OverdueInvoices int64           `json:"overdue_invoices"`
	Revenue         decimal.Decimal `json:"revenue"`
	FailedJobs      int64           `json:"failed_jobs"`
}

// DashboardService assembles the overview snapshot
type DashboardService struct {
	contactRepo  crm.ContactRepository
	projectRepo  projects.ProjectRepository
	proposalRepo proposals.ProposalRepository
	invoiceRepo  billing.InvoiceRepository
	jobRepo      jobs.JobRepository
	logger       *zap.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	contactRepo crm.ContactRepository,
	projectRepo projects.ProjectRepository,
	proposalRepo proposals.ProposalRepository,
	invoiceRepo billing.InvoiceRepository,
	jobRepo jobs.JobRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		contactRepo:  contactRepo,
		projectRepo:  projectRepo,
		proposalRepo: proposalRepo,
		invoiceRepo:  invoiceRepo,
		jobRepo:      jobRepo,
		logger:       logger,
	}
}

// Summary gathers the organization's headline numbers
func (s *DashboardService) Summary(ctx context.Context, orgID uuid.UUID) (*Summary, error) {
	summary := &Summary{}

	var err error
	if summary.Prospects, err = s.contactRepo.CountByKind(ctx, orgID, crm.ContactKindProspect); err != nil {
		return nil, err
	}
	if summary.Clients, err = s.contactRepo.CountByKind(ctx, orgID, crm.ContactKindClient); err != nil {
		return nil, err
	}
	if summary.ActiveProjects, err = s.projectRepo.CountByStatus(ctx, orgID, projects.ProjectStatusActive); err != nil {
		return nil, err
	}

	sent, err := s.proposalRepo.CountByStatus(ctx, orgID, proposals.ProposalStatusSent)
	if err != nil {
		return nil, err
	}
	viewed, err := s.proposalRepo.CountByStatus(ctx, orgID, proposals.ProposalStatusViewed)
	if err != nil {
		return nil, err
	}
	summary.OpenProposals = sent + viewed

	unpaid, err := s.invoiceRepo.CountByStatus(ctx, orgID, billing.InvoiceStatusSent)
	if err != nil {
		return nil, err
	}
	if summary.OverdueInvoices, err = s.invoiceRepo.CountByStatus(ctx, orgID, billing.InvoiceStatusOverdue); err != nil {
		return nil, err
	}
	summary.UnpaidInvoices = unpaid + summary.OverdueInvoices

	paid, err := s.invoiceRepo.SumPaidAmount(ctx, orgID)
	if err != nil {
		return nil, err
	}
	revenue, err := decimal.NewFromString(paid)
	if err != nil {
		s.logger.Warn("paid amount sum is not a decimal", zap.String("sum", paid))
		revenue = decimal.Zero
	}
	summary.Revenue = revenue

	if summary.FailedJobs, err = s.jobRepo.CountByStatus(ctx, orgID, jobs.JobStatusFailed); err != nil {
		return nil, err
	}

	return summary, nil
}
