// Package email implements template, mailing list and campaign use cases.
// Campaign delivery runs in a background job so the API call returns as
// soon as the campaign is queued.
package email

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agencyhub/backend/internal/domain/crm"
	"github.com/agencyhub/backend/internal/domain/email"
	"github.com/agencyhub/backend/internal/domain/jobs"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/infrastructure/mailer"
)

// scheduledSweepBatch bounds how many campaigns one scheduler pass enqueues
const scheduledSweepBatch = 50

// Mailer delivers individual campaign messages
type Mailer interface {
	Send(ctx context.Context, email *mailer.Email) (string, error)
}

// JobEnqueuer delegates campaign delivery to the worker pool
type JobEnqueuer interface {
	EnqueueJob(ctx context.Context, orgID uuid.UUID, kind jobs.JobKind, payload interface{}) (*jobs.Job, error)
}

// EmailService handles templates, lists and campaigns
type EmailService struct {
	templateRepo email.TemplateRepository
	listRepo     email.ListRepository
	campaignRepo email.CampaignRepository
	contactRepo  crm.ContactRepository
	mailer       Mailer
	enqueuer     JobEnqueuer
	logger       *zap.Logger
}

// NewEmailService creates a new email service
func NewEmailService(
	templateRepo email.TemplateRepository,
	listRepo email.ListRepository,
	campaignRepo email.CampaignRepository,
	contactRepo crm.ContactRepository,
	m Mailer,
	enqueuer JobEnqueuer,
	logger *zap.Logger,
) *EmailService {
	return &EmailService{
		templateRepo: templateRepo,
		listRepo:     listRepo,
		campaignRepo: campaignRepo,
		contactRepo:  contactRepo,
		mailer:       m,
		enqueuer:     enqueuer,
		logger:       logger,
	}
}

// CreateTemplate creates an email template
func (s *EmailService) CreateTemplate(ctx context.Context, input CreateTemplateInput) (*email.Template, error) {
	template, err := email.NewTemplate(input.OrgID, input.Name, input.Subject, input.BodyHTML, input.BodyText)
	if err != nil {
		return nil, err
	}
	template.SetCreatedBy(input.CreatedBy)
	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

// GetTemplate loads a template by ID
func (s *EmailService) GetTemplate(ctx context.Context, orgID, templateID uuid.UUID) (*email.Template, error) {
	return s.templateRepo.FindByID(ctx, orgID, templateID)
}

// ListTemplates lists templates with filtering and pagination
func (s *EmailService) ListTemplates(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*email.Template], error) {
	return s.templateRepo.FindAll(ctx, orgID, filter)
}

// UpdateTemplate edits a template
func (s *EmailService) UpdateTemplate(ctx context.Context, input UpdateTemplateInput) (*email.Template, error) {
	template, err := s.templateRepo.FindByID(ctx, input.OrgID, input.TemplateID)
	if err != nil {
		return nil, err
	}
	if err := template.Update(input.Name, input.Subject, input.BodyHTML, input.BodyText); err != nil {
		return nil, err
	}
	if err := s.templateRepo.SaveWithLock(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

// DeleteTemplate removes a template
func (s *EmailService) DeleteTemplate(ctx context.Context, orgID, templateID uuid.UUID) error {
	return s.templateRepo.Delete(ctx, orgID, templateID)
}

// CreateList creates a mailing list
func (s *EmailService) CreateList(ctx context.Context, input CreateListInput) (*email.List, error) {
	list, err := email.NewList(input.OrgID, input.Name, input.Description)
	if err != nil {
		return nil, err
	}
	list.SetCreatedBy(input.CreatedBy)
	if err := s.listRepo.Save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetList loads a mailing list by ID
func (s *EmailService) GetList(ctx context.Context, orgID, listID uuid.UUID) (*email.List, error) {
	return s.listRepo.FindByID(ctx, orgID, listID)
}

// ListLists lists mailing lists with filtering and pagination
func (s *EmailService) ListLists(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*email.List], error) {
	return s.listRepo.FindAll(ctx, orgID, filter)
}

// UpdateList edits a mailing list
func (s *EmailService) UpdateList(ctx context.Context, input UpdateListInput) (*email.List, error) {
	list, err := s.listRepo.FindByID(ctx, input.OrgID, input.ListID)
	if err != nil {
		return nil, err
	}
	if err := list.Update(input.Name, input.Description); err != nil {
		return nil, err
	}
	if err := s.listRepo.Save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteList removes a mailing list and its memberships
func (s *EmailService) DeleteList(ctx context.Context, orgID, listID uuid.UUID) error {
	return s.listRepo.Delete(ctx, orgID, listID)
}

// AddMember subscribes a contact to a list. Re-adding a previously
// unsubscribed contact resubscribes them.
func (s *EmailService) AddMember(ctx context.Context, orgID, listID, contactID uuid.UUID) (*email.ListMember, error) {
	if _, err := s.listRepo.FindByID(ctx, orgID, listID); err != nil {
		return nil, err
	}
	if _, err := s.contactRepo.FindByID(ctx, orgID, contactID); err != nil {
		return nil, shared.NewDomainError("CONTACT_NOT_FOUND", "Contact does not exist")
	}

	existing, err := s.listRepo.FindMember(ctx, listID, contactID)
	if err == nil {
		if rerr := existing.Resubscribe(); rerr != nil {
			return existing, nil
		}
		if err := s.listRepo.SaveMember(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	member, err := email.NewListMember(listID, contactID)
	if err != nil {
		return nil, err
	}
	if err := s.listRepo.AddMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// ListMembers lists a list's memberships
func (s *EmailService) ListMembers(ctx context.Context, orgID, listID uuid.UUID, filter shared.Filter) (*shared.Paginated[*email.ListMember], error) {
	if _, err := s.listRepo.FindByID(ctx, orgID, listID); err != nil {
		return nil, err
	}
	return s.listRepo.FindMembers(ctx, listID, filter)
}

// Unsubscribe marks a membership unsubscribed without removing it
func (s *EmailService) Unsubscribe(ctx context.Context, orgID, listID, contactID uuid.UUID) error {
	if _, err := s.listRepo.FindByID(ctx, orgID, listID); err != nil {
		return err
	}
	member, err := s.listRepo.FindMember(ctx, listID, contactID)
	if err != nil {
		return err
	}
	if err := member.Unsubscribe(); err != nil {
		return err
	}
	return s.listRepo.SaveMember(ctx, member)
}

// RemoveMember deletes a membership outright
func (s *EmailService) RemoveMember(ctx context.Context, orgID, listID, contactID uuid.UUID) error {
	if _, err := s.listRepo.FindByID(ctx, orgID, listID); err != nil {
		return err
	}
	return s.listRepo.RemoveMember(ctx, listID, contactID)
}

// CreateCampaign drafts a campaign pairing a template with a list
func (s *EmailService) CreateCampaign(ctx context.Context, input CreateCampaignInput) (*email.Campaign, error) {
	if _, err := s.templateRepo.FindByID(ctx, input.OrgID, input.TemplateID); err != nil {
		return nil, shared.NewDomainError("TEMPLATE_NOT_FOUND", "Template does not exist")
	}
	if _, err := s.listRepo.FindByID(ctx, input.OrgID, input.ListID); err != nil {
		return nil, shared.NewDomainError("LIST_NOT_FOUND", "List does not exist")
	}

	campaign, err := email.NewCampaign(input.OrgID, input.TemplateID, input.ListID, input.Name)
	if err != nil {
		return nil, err
	}
	campaign.SetCreatedBy(input.CreatedBy)
	if input.FromEmail != "" {
		if err := campaign.SetSender(input.FromName, input.FromEmail); err != nil {
			return nil, err
		}
	}
	if err := s.campaignRepo.Save(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// GetCampaign loads a campaign by ID
func (s *EmailService) GetCampaign(ctx context.Context, orgID, campaignID uuid.UUID) (*email.Campaign, error) {
	return s.campaignRepo.FindByID(ctx, orgID, campaignID)
}

// ListCampaigns lists campaigns with filtering and pagination
func (s *EmailService) ListCampaigns(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*email.Campaign], error) {
	return s.campaignRepo.FindAll(ctx, orgID, filter)
}

// SendCampaign queues a draft or scheduled campaign for immediate delivery
func (s *EmailService) SendCampaign(ctx context.Context, orgID, campaignID uuid.UUID) (*email.Campaign, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, orgID, campaignID)
	if err != nil {
		return nil, err
	}
	if err := campaign.Enqueue(); err != nil {
		return nil, err
	}
	if err := s.campaignRepo.SaveWithLock(ctx, campaign); err != nil {
		return nil, err
	}
	if _, err := s.enqueuer.EnqueueJob(ctx, orgID, jobs.JobKindCampaignSend, campaignPayload{
		CampaignID: campaign.ID.String(),
	}); err != nil {
		return nil, err
	}
	s.logger.Info("campaign queued", zap.String("campaign_id", campaign.ID.String()))
	return campaign, nil
}

// ScheduleCampaign sets a future send time; the scheduler sweep queues it
func (s *EmailService) ScheduleCampaign(ctx context.Context, input ScheduleCampaignInput) (*email.Campaign, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, input.OrgID, input.CampaignID)
	if err != nil {
		return nil, err
	}
	if err := campaign.Schedule(input.SendAt); err != nil {
		return nil, err
	}
	if err := s.campaignRepo.SaveWithLock(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// CancelCampaign stops a campaign that has not started sending
func (s *EmailService) CancelCampaign(ctx context.Context, orgID, campaignID uuid.UUID) (*email.Campaign, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, orgID, campaignID)
	if err != nil {
		return nil, err
	}
	if err := campaign.Cancel(); err != nil {
		return nil, err
	}
	if err := s.campaignRepo.SaveWithLock(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// DeleteCampaign removes a campaign
func (s *EmailService) DeleteCampaign(ctx context.Context, orgID, campaignID uuid.UUID) error {
	return s.campaignRepo.Delete(ctx, orgID, campaignID)
}

// SweepScheduled queues scheduled campaigns whose send time has arrived.
// The worker runs it on the sweep ticker.
func (s *EmailService) SweepScheduled(ctx context.Context) error {
	campaigns, err := s.campaignRepo.FindScheduledBefore(ctx, time.Now(), scheduledSweepBatch)
	if err != nil {
		return err
	}
	for _, campaign := range campaigns {
		if err := campaign.Enqueue(); err != nil {
			continue
		}
		if err := s.campaignRepo.SaveWithLock(ctx, campaign); err != nil {
			// Another instance won the claim
			continue
		}
		if _, err := s.enqueuer.EnqueueJob(ctx, campaign.OrgID, jobs.JobKindCampaignSend, campaignPayload{
			CampaignID: campaign.ID.String(),
		}); err != nil {
			s.logger.Error("failed to queue scheduled campaign",
				zap.String("campaign_id", campaign.ID.String()), zap.Error(err))
		}
	}
	return nil
}

// HandleCampaignSend is the campaign delivery job handler. It renders the
// template per subscriber and sends one message at a time; a bad address
// fails that recipient only.
func (s *EmailService) HandleCampaignSend(ctx context.Context, job *jobs.Job) (string, error) {
	var payload campaignPayload
	if err := job.DecodePayload(&payload); err != nil {
		return "", err
	}
	campaignID, err := uuid.Parse(payload.CampaignID)
	if err != nil {
		return "", shared.NewDomainError("INVALID_PAYLOAD", "Campaign ID is not a UUID")
	}

	campaign, err := s.campaignRepo.FindByID(ctx, job.OrgID, campaignID)
	if err != nil {
		return "", err
	}
	if err := campaign.Start(); err != nil {
		return "", err
	}
	if err := s.campaignRepo.SaveWithLock(ctx, campaign); err != nil {
		return "", err
	}

	template, err := s.templateRepo.FindByID(ctx, job.OrgID, campaign.TemplateID)
	if err != nil {
		return "", s.finishFailed(ctx, campaign, err)
	}
	contactIDs, err := s.listRepo.FindSubscribedContactIDs(ctx, campaign.ListID)
	if err != nil {
		return "", s.finishFailed(ctx, campaign, err)
	}

	from := campaign.FromEmail
	if campaign.FromName != "" {
		from = fmt.Sprintf("%s <%s>", campaign.FromName, campaign.FromEmail)
	}

	var sent, failed int
	var lastError string
	for _, contactID := range contactIDs {
		if err := ctx.Err(); err != nil {
			lastError = err.Error()
			break
		}

		contact, err := s.contactRepo.FindByID(ctx, job.OrgID, contactID)
		if err != nil {
			failed++
			lastError = err.Error()
			continue
		}

		subject, html, text := template.Render(map[string]string{
			"first_name": contact.FirstName,
			"last_name":  contact.LastName,
			"full_name":  contact.FullName(),
			"email":      contact.Email,
		})
		if _, err := s.mailer.Send(ctx, &mailer.Email{
			From:    from,
			To:      []string{contact.Email},
			Subject: subject,
			HTML:    html,
			Text:    text,
		}); err != nil {
			failed++
			lastError = err.Error()
			s.logger.Warn("campaign recipient failed",
				zap.String("campaign_id", campaign.ID.String()),
				zap.String("email", contact.Email),
				zap.Error(err))
			continue
		}
		sent++
	}

	if err := campaign.Finish(sent, failed, lastError); err != nil {
		return "", err
	}
	if err := s.campaignRepo.SaveWithLock(ctx, campaign); err != nil {
		return "", err
	}

	s.logger.Info("campaign delivered",
		zap.String("campaign_id", campaign.ID.String()),
		zap.Int("sent", sent),
		zap.Int("failed", failed))
	result, _ := json.Marshal(map[string]int{"sent": sent, "failed": failed})
	return string(result), nil
}

// finishFailed records a whole-campaign failure and returns the cause
func (s *EmailService) finishFailed(ctx context.Context, campaign *email.Campaign, cause error) error {
	if err := campaign.Finish(0, 0, cause.Error()); err == nil {
		if err := s.campaignRepo.SaveWithLock(ctx, campaign); err != nil {
			s.logger.Error("failed to persist campaign failure",
				zap.String("campaign_id", campaign.ID.String()), zap.Error(err))
		}
	}
	return cause
}
