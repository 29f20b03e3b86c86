// Package seo implements site tracking, on-page audits, keyword rank
// history and the writing assistant. Audits and assistant runs execute
// as background jobs.
package seo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agencyhub/backend/internal/domain/jobs"
	"github.com/agencyhub/backend/internal/domain/seo"
	"github.com/agencyhub/backend/internal/domain/shared"
)

// auditPageBatch is how many pages one repository read pulls during an audit
const auditPageBatch = 100

// Crawler fetches a page and reports what it observed
type Crawler interface {
	Crawl(ctx context.Context, domain, path string) (seo.CrawlResult, error)
}

// Assistant produces writing suggestions from a system and user prompt
type Assistant interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// JobEnqueuer delegates audits and assistant runs to the worker pool
type JobEnqueuer interface {
	EnqueueJob(ctx context.Context, orgID uuid.UUID, kind jobs.JobKind, payload interface{}) (*jobs.Job, error)
}

// SEOService handles sites, pages, keywords and recommendations
type SEOService struct {
	siteRepo    seo.SiteRepository
	pageRepo    seo.PageRepository
	keywordRepo seo.KeywordRepository
	recRepo     seo.RecommendationRepository
	crawler     Crawler
	assistant   Assistant
	enqueuer    JobEnqueuer
	logger      *zap.Logger
}

// NewSEOService creates a new SEO service
func NewSEOService(
	siteRepo seo.SiteRepository,
	pageRepo seo.PageRepository,
	keywordRepo seo.KeywordRepository,
	recRepo seo.RecommendationRepository,
	crawler Crawler,
	assistant Assistant,
	enqueuer JobEnqueuer,
	logger *zap.Logger,
) *SEOService {
	return &SEOService{
		siteRepo:    siteRepo,
		pageRepo:    pageRepo,
		keywordRepo: keywordRepo,
		recRepo:     recRepo,
		crawler:     crawler,
		assistant:   assistant,
		enqueuer:    enqueuer,
		logger:      logger,
	}
}

// CreateSite registers a website for SEO tracking
func (s *SEOService) CreateSite(ctx context.Context, input CreateSiteInput) (*seo.Site, error) {
	normalized, err := seo.NormalizeDomain(input.Domain)
	if err != nil {
		return nil, err
	}
	if existing, err := s.siteRepo.FindByDomain(ctx, input.OrgID, normalized); err == nil && existing != nil {
		return nil, shared.NewDomainError("DOMAIN_TAKEN", "This domain is already tracked")
	}

	site, err := seo.NewSite(input.OrgID, normalized, input.Name)
	if err != nil {
		return nil, err
	}
	site.SetCreatedBy(input.CreatedBy)
	site.ContactID = input.ContactID
	site.ProjectID = input.ProjectID

	if err := s.siteRepo.Save(ctx, site); err != nil {
		return nil, err
	}
	s.logger.Info("site registered",
		zap.String("org_id", input.OrgID.String()),
		zap.String("domain", site.Domain))
	return site, nil
}

// GetSite loads a site by ID
func (s *SEOService) GetSite(ctx context.Context, orgID, siteID uuid.UUID) (*seo.Site, error) {
	return s.siteRepo.FindByID(ctx, orgID, siteID)
}

// ListSites lists tracked sites with filtering and pagination
func (s *SEOService) ListSites(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*seo.Site], error) {
	return s.siteRepo.FindAll(ctx, orgID, filter)
}

// DeleteSite removes a site with its pages, keywords and findings
func (s *SEOService) DeleteSite(ctx context.Context, orgID, siteID uuid.UUID) error {
	return s.siteRepo.Delete(ctx, orgID, siteID)
}

// RequestAudit queues a full audit of the site's pages
func (s *SEOService) RequestAudit(ctx context.Context, orgID, siteID uuid.UUID) (*seo.Site, error) {
	site, err := s.siteRepo.FindByID(ctx, orgID, siteID)
	if err != nil {
		return nil, err
	}
	if err := site.QueueAudit(); err != nil {
		return nil, err
	}
	if err := s.siteRepo.SaveWithLock(ctx, site); err != nil {
		return nil, err
	}
	if _, err := s.enqueuer.EnqueueJob(ctx, orgID, jobs.JobKindSEOAudit, auditPayload{
		SiteID: site.ID.String(),
	}); err != nil {
		return nil, err
	}
	s.logger.Info("audit queued", zap.String("site_id", site.ID.String()))
	return site, nil
}

// AddPage registers a page under a site
func (s *SEOService) AddPage(ctx context.Context, input AddPageInput) (*seo.Page, error) {
	if _, err := s.siteRepo.FindByID(ctx, input.OrgID, input.SiteID); err != nil {
		return nil, err
	}

	page, err := seo.NewPage(input.OrgID, input.SiteID, input.Path)
	if err != nil {
		return nil, err
	}
	if existing, err := s.pageRepo.FindByPath(ctx, input.OrgID, input.SiteID, page.Path); err == nil && existing != nil {
		return nil, shared.NewDomainError("PAGE_EXISTS", "This path is already tracked")
	}

	if err := s.pageRepo.Save(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

// GetPage loads a page by ID
func (s *SEOService) GetPage(ctx context.Context, orgID, pageID uuid.UUID) (*seo.Page, error) {
	return s.pageRepo.FindByID(ctx, orgID, pageID)
}

// ListPages lists a site's pages
func (s *SEOService) ListPages(ctx context.Context, orgID, siteID uuid.UUID, filter shared.Filter) (*shared.Paginated[*seo.Page], error) {
	return s.pageRepo.FindBySite(ctx, orgID, siteID, filter)
}

// DeletePage removes a page
func (s *SEOService) DeletePage(ctx context.Context, orgID, pageID uuid.UUID) error {
	return s.pageRepo.Delete(ctx, orgID, pageID)
}

// AddKeyword starts tracking a search phrase for a site
func (s *SEOService) AddKeyword(ctx context.Context, input AddKeywordInput) (*seo.Keyword, error) {
	if _, err := s.siteRepo.FindByID(ctx, input.OrgID, input.SiteID); err != nil {
		return nil, err
	}

	keyword, err := seo.NewKeyword(input.OrgID, input.SiteID, input.Phrase)
	if err != nil {
		return nil, err
	}
	exists, err := s.keywordRepo.ExistsByPhrase(ctx, input.OrgID, input.SiteID, keyword.Phrase)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("KEYWORD_EXISTS", "This phrase is already tracked")
	}

	if err := s.keywordRepo.Save(ctx, keyword); err != nil {
		return nil, err
	}
	return keyword, nil
}

// ListKeywords lists a site's tracked keywords
func (s *SEOService) ListKeywords(ctx context.Context, orgID, siteID uuid.UUID, filter shared.Filter) (*shared.Paginated[*seo.Keyword], error) {
	return s.keywordRepo.FindBySite(ctx, orgID, siteID, filter)
}

// moversBatch bounds how many keywords one movers report considers
const moversBatch = 500

// KeywordMovers reports keywords whose position changed between the two
// most recent checks, biggest absolute move first
func (s *SEOService) KeywordMovers(ctx context.Context, orgID, siteID uuid.UUID) ([]*seo.Keyword, error) {
	if _, err := s.siteRepo.FindByID(ctx, orgID, siteID); err != nil {
		return nil, err
	}

	filter := shared.DefaultFilter()
	filter.PageSize = moversBatch
	page, err := s.keywordRepo.FindBySite(ctx, orgID, siteID, filter)
	if err != nil {
		return nil, err
	}

	movers := make([]*seo.Keyword, 0, len(page.Items))
	for _, kw := range page.Items {
		if kw.Movement() != 0 {
			movers = append(movers, kw)
		}
	}
	sort.SliceStable(movers, func(i, j int) bool {
		return abs(movers[i].Movement()) > abs(movers[j].Movement())
	})
	return movers, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// RecordPosition records a ranking observation for a keyword
func (s *SEOService) RecordPosition(ctx context.Context, input RecordPositionInput) (*seo.Keyword, error) {
	keyword, err := s.keywordRepo.FindByID(ctx, input.OrgID, input.KeywordID)
	if err != nil {
		return nil, err
	}
	if err := keyword.RecordPosition(input.Position); err != nil {
		return nil, err
	}
	if err := s.keywordRepo.Save(ctx, keyword); err != nil {
		return nil, err
	}
	return keyword, nil
}

// SetKeywordTarget points a keyword at the page meant to rank for it
func (s *SEOService) SetKeywordTarget(ctx context.Context, orgID, keywordID, pageID uuid.UUID) (*seo.Keyword, error) {
	keyword, err := s.keywordRepo.FindByID(ctx, orgID, keywordID)
	if err != nil {
		return nil, err
	}
	if _, err := s.pageRepo.FindByID(ctx, orgID, pageID); err != nil {
		return nil, shared.NewDomainError("PAGE_NOT_FOUND", "Target page does not exist")
	}
	if err := keyword.SetTargetPage(pageID); err != nil {
		return nil, err
	}
	if err := s.keywordRepo.Save(ctx, keyword); err != nil {
		return nil, err
	}
	return keyword, nil
}

// DeleteKeyword stops tracking a phrase
func (s *SEOService) DeleteKeyword(ctx context.Context, orgID, keywordID uuid.UUID) error {
	return s.keywordRepo.Delete(ctx, orgID, keywordID)
}

// ListRecommendations lists a site's audit findings
func (s *SEOService) ListRecommendations(ctx context.Context, orgID, siteID uuid.UUID, filter shared.Filter) (*shared.Paginated[*seo.Recommendation], error) {
	return s.recRepo.FindBySite(ctx, orgID, siteID, filter)
}

// ApplyRecommendation marks a finding handled
func (s *SEOService) ApplyRecommendation(ctx context.Context, orgID, recID uuid.UUID) (*seo.Recommendation, error) {
	return s.resolveRecommendation(ctx, orgID, recID, (*seo.Recommendation).Apply)
}

// DismissRecommendation marks a finding intentionally ignored
func (s *SEOService) DismissRecommendation(ctx context.Context, orgID, recID uuid.UUID) (*seo.Recommendation, error) {
	return s.resolveRecommendation(ctx, orgID, recID, (*seo.Recommendation).Dismiss)
}

// ReopenRecommendation puts a resolved finding back in the open queue
func (s *SEOService) ReopenRecommendation(ctx context.Context, orgID, recID uuid.UUID) (*seo.Recommendation, error) {
	return s.resolveRecommendation(ctx, orgID, recID, (*seo.Recommendation).Reopen)
}

func (s *SEOService) resolveRecommendation(ctx context.Context, orgID, recID uuid.UUID, transition func(*seo.Recommendation) error) (*seo.Recommendation, error) {
	rec, err := s.recRepo.FindByID(ctx, orgID, recID)
	if err != nil {
		return nil, err
	}
	if err := transition(rec); err != nil {
		return nil, err
	}
	if err := s.recRepo.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// RequestAssist queues a writing assistant run for a page
func (s *SEOService) RequestAssist(ctx context.Context, input AssistInput) (*jobs.Job, error) {
	if _, err := s.siteRepo.FindByID(ctx, input.OrgID, input.SiteID); err != nil {
		return nil, err
	}
	if _, err := s.pageRepo.FindByID(ctx, input.OrgID, input.PageID); err != nil {
		return nil, err
	}
	return s.enqueuer.EnqueueJob(ctx, input.OrgID, jobs.JobKindAssistantSEO, assistPayload{
		SiteID: input.SiteID.String(),
		PageID: input.PageID.String(),
	})
}

// HandleAudit is the site audit job handler. It re-crawls every tracked
// page, replaces the open rule findings with fresh ones, and stamps the
// site's audit status.
func (s *SEOService) HandleAudit(ctx context.Context, job *jobs.Job) (string, error) {
	var payload auditPayload
	if err := job.DecodePayload(&payload); err != nil {
		return "", err
	}
	siteID, err := uuid.Parse(payload.SiteID)
	if err != nil {
		return "", shared.NewDomainError("INVALID_PAYLOAD", "Site ID is not a UUID")
	}

	site, err := s.siteRepo.FindByID(ctx, job.OrgID, siteID)
	if err != nil {
		return "", err
	}
	if err := site.StartAudit(); err != nil {
		return "", err
	}
	if err := s.siteRepo.SaveWithLock(ctx, site); err != nil {
		return "", err
	}

	crawled, findings, err := s.runAudit(ctx, site)
	if err != nil {
		if ferr := site.FailAudit(err.Error()); ferr == nil {
			if serr := s.siteRepo.SaveWithLock(ctx, site); serr != nil {
				s.logger.Error("failed to persist audit failure",
					zap.String("site_id", site.ID.String()), zap.Error(serr))
			}
		}
		return "", err
	}

	if err := site.FinishAudit(); err != nil {
		return "", err
	}
	if err := s.siteRepo.SaveWithLock(ctx, site); err != nil {
		return "", err
	}

	s.logger.Info("audit finished",
		zap.String("site_id", site.ID.String()),
		zap.Int("pages", crawled),
		zap.Int("findings", findings))
	result, _ := json.Marshal(map[string]int{"pages": crawled, "findings": findings})
	return string(result), nil
}

func (s *SEOService) runAudit(ctx context.Context, site *seo.Site) (crawled, findings int, err error) {
	if err := s.recRepo.DeleteOpenRuleFindings(ctx, site.OrgID, site.ID); err != nil {
		return 0, 0, err
	}

	var recs []*seo.Recommendation
	filter := shared.DefaultFilter()
	filter.PageSize = auditPageBatch
	filter.OrderBy = "created_at"
	filter.OrderDir = "asc"

	for page := 1; ; page++ {
		filter.Page = page
		batch, err := s.pageRepo.FindBySite(ctx, site.OrgID, site.ID, filter)
		if err != nil {
			return crawled, 0, err
		}
		for _, p := range batch.Items {
			if err := ctx.Err(); err != nil {
				return crawled, 0, err
			}

			if s.crawler != nil {
				result, err := s.crawler.Crawl(ctx, site.Domain, p.Path)
				if err != nil {
					s.logger.Warn("page crawl failed",
						zap.String("site_id", site.ID.String()),
						zap.String("path", p.Path),
						zap.Error(err))
				} else {
					p.RecordCrawl(result)
					if err := s.pageRepo.Save(ctx, p); err != nil {
						return crawled, 0, err
					}
				}
			}
			crawled++

			for _, f := range seo.AuditPage(p) {
				pageID := p.ID
				rec, err := seo.NewRecommendation(site.OrgID, site.ID, &pageID, seo.SourceRules, f.Rule, f.Severity, f.Summary, f.Detail)
				if err != nil {
					return crawled, 0, err
				}
				recs = append(recs, rec)
			}
		}
		if page >= batch.TotalPages || len(batch.Items) == 0 {
			break
		}
	}

	if len(recs) > 0 {
		if err := s.recRepo.SaveAll(ctx, recs); err != nil {
			return crawled, 0, err
		}
	}
	return crawled, len(recs), nil
}

// HandleAssist is the writing assistant job handler. The model's
// suggestions land as an assistant-sourced recommendation on the page.
func (s *SEOService) HandleAssist(ctx context.Context, job *jobs.Job) (string, error) {
	var payload assistPayload
	if err := job.DecodePayload(&payload); err != nil {
		return "", err
	}
	siteID, err := uuid.Parse(payload.SiteID)
	if err != nil {
		return "", shared.NewDomainError("INVALID_PAYLOAD", "Site ID is not a UUID")
	}
	pageID, err := uuid.Parse(payload.PageID)
	if err != nil {
		return "", shared.NewDomainError("INVALID_PAYLOAD", "Page ID is not a UUID")
	}

	site, err := s.siteRepo.FindByID(ctx, job.OrgID, siteID)
	if err != nil {
		return "", err
	}
	page, err := s.pageRepo.FindByID(ctx, job.OrgID, pageID)
	if err != nil {
		return "", err
	}

	suggestion, err := s.assistant.Complete(ctx, assistSystemPrompt, assistUserPrompt(site, page))
	if err != nil {
		return "", err
	}

	rec, err := seo.NewRecommendation(job.OrgID, site.ID, &page.ID, seo.SourceAssistant,
		"assistant-copy", seo.SeverityInfo,
		fmt.Sprintf("Writing suggestions for %s", page.Path), suggestion)
	if err != nil {
		return "", err
	}
	if err := s.recRepo.Save(ctx, rec); err != nil {
		return "", err
	}

	result, _ := json.Marshal(map[string]string{"recommendation_id": rec.ID.String()})
	return string(result), nil
}

const assistSystemPrompt = "You are an SEO copywriter. Given a page's current title, meta description " +
	"and heading, suggest improved versions that fit search best practices: titles of 30-60 characters, " +
	"meta descriptions of 70-160 characters, and a clear H1. Reply with the suggested title, meta " +
	"description and H1, each on its own line with a short reason."

func assistUserPrompt(site *seo.Site, page *seo.Page) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Site: %s\nPage: %s\n", site.Domain, page.Path)
	fmt.Fprintf(&sb, "Current title: %q\n", page.Title)
	fmt.Fprintf(&sb, "Current meta description: %q\n", page.MetaDescription)
	fmt.Fprintf(&sb, "Current H1: %q\n", page.H1)
	if page.WordCount > 0 {
		fmt.Fprintf(&sb, "Word count: %d\n", page.WordCount)
	}
	return sb.String()
}
