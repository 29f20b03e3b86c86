package handler

import (
	"context"
	"time"

	seoapp "github.com/agencyhub/backend/internal/application/seo"
	"github.com/agencyhub/backend/internal/domain/seo"
	"github.com/agencyhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SEOHandler handles site tracking, audit and writing assistant endpoints
type SEOHandler struct {
	BaseHandler
	seoService *seoapp.SEOService
}

// NewSEOHandler creates a new SEOHandler
func NewSEOHandler(seoService *seoapp.SEOService) *SEOHandler {
	return &SEOHandler{seoService: seoService}
}

// CreateSiteRequest represents a site registration request
// @Description Request body for registering a website
type CreateSiteRequest struct {
	Domain    string  `json:"domain" binding:"required,min=3,max=253" example:"example.com"`
	Name      string  `json:"name" binding:"required,min=1,max=200" example:"Example Store"`
	ContactID *string `json:"contact_id" binding:"omitempty,uuid"`
	ProjectID *string `json:"project_id" binding:"omitempty,uuid"`
}

// AddPageRequest represents a page registration request
// @Description Request body for registering a page under a site
type AddPageRequest struct {
	Path string `json:"path" binding:"required,min=1,max=2000" example:"/pricing"`
}

// AddKeywordRequest represents a keyword tracking request
// @Description Request body for tracking a search phrase
type AddKeywordRequest struct {
	Phrase string `json:"phrase" binding:"required,min=1,max=200" example:"custom web design agency"`
}

// RecordPositionRequest represents a ranking observation
// @Description Request body for recording a keyword's search position
type RecordPositionRequest struct {
	Position int `json:"position" binding:"required,min=1,max=1000" example:"12"`
}

// SetKeywordTargetRequest designates the page a keyword should rank for
// @Description Request body for setting a keyword's target page
type SetKeywordTargetRequest struct {
	PageID string `json:"page_id" binding:"required,uuid"`
}

// AssistRequest asks the writing assistant to improve a page's copy
// @Description Request body for a writing assistant run
type AssistRequest struct {
	PageID string `json:"page_id" binding:"required,uuid"`
}

// SiteResponse represents a tracked site in API responses
// @Description Tracked website details
type SiteResponse struct {
	ID          string  `json:"id"`
	ContactID   *string `json:"contact_id,omitempty"`
	ProjectID   *string `json:"project_id,omitempty"`
	Domain      string  `json:"domain" example:"example.com"`
	Name        string  `json:"name" example:"Example Store"`
	AuditStatus string  `json:"audit_status" example:"done" enums:"never,queued,running,done,failed"`
	LastAuditAt *string `json:"last_audit_at,omitempty"`
	AuditError  string  `json:"audit_error,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	Version     int     `json:"version" example:"1"`
}

// PageResponse represents a tracked page in API responses
// @Description Tracked page with the latest crawl observations
type PageResponse struct {
	ID              string  `json:"id"`
	SiteID          string  `json:"site_id"`
	Path            string  `json:"path" example:"/pricing"`
	Title           string  `json:"title,omitempty"`
	MetaDescription string  `json:"meta_description,omitempty"`
	H1              string  `json:"h1,omitempty"`
	StatusCode      int     `json:"status_code"`
	WordCount       int     `json:"word_count"`
	LoadMillis      int     `json:"load_millis"`
	Canonical       string  `json:"canonical,omitempty"`
	NoIndex         bool    `json:"no_index"`
	LastCrawledAt   *string `json:"last_crawled_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// KeywordResponse represents a tracked keyword in API responses
// @Description Tracked keyword with its latest ranking
type KeywordResponse struct {
	ID           string  `json:"id"`
	SiteID       string  `json:"site_id"`
	PageID       *string `json:"page_id,omitempty"`
	Phrase       string  `json:"phrase" example:"custom web design agency"`
	Position     *int    `json:"position,omitempty"`
	PrevPosition *int    `json:"prev_position,omitempty"`
	CheckedAt    *string `json:"checked_at,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// RecommendationResponse represents an audit finding in API responses
// @Description Audit or assistant finding with its workflow status
type RecommendationResponse struct {
	ID         string  `json:"id"`
	SiteID     string  `json:"site_id"`
	PageID     *string `json:"page_id,omitempty"`
	Source     string  `json:"source" example:"audit" enums:"audit,assistant"`
	Rule       string  `json:"rule" example:"missing-title"`
	Severity   string  `json:"severity" example:"warning" enums:"info,warning,critical"`
	Status     string  `json:"status" example:"open" enums:"open,applied,dismissed"`
	Summary    string  `json:"summary"`
	Detail     string  `json:"detail,omitempty"`
	ResolvedAt *string `json:"resolved_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

func toSiteResponse(site *seo.Site) SiteResponse {
	resp := SiteResponse{
		ID:          site.ID.String(),
		Domain:      site.Domain,
		Name:        site.Name,
		AuditStatus: string(site.AuditStatus),
		LastAuditAt: formatOptionalTime(site.LastAuditAt),
		AuditError:  site.AuditError,
		CreatedAt:   site.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   site.UpdatedAt.Format(time.RFC3339),
		Version:     site.Version,
	}
	if site.ContactID != nil {
		id := site.ContactID.String()
		resp.ContactID = &id
	}
	if site.ProjectID != nil {
		id := site.ProjectID.String()
		resp.ProjectID = &id
	}
	return resp
}

func toPageResponse(page *seo.Page) PageResponse {
	return PageResponse{
		ID:              page.ID.String(),
		SiteID:          page.SiteID.String(),
		Path:            page.Path,
		Title:           page.Title,
		MetaDescription: page.MetaDescription,
		H1:              page.H1,
		StatusCode:      page.StatusCode,
		WordCount:       page.WordCount,
		LoadMillis:      page.LoadMillis,
		Canonical:       page.Canonical,
		NoIndex:         page.NoIndex,
		LastCrawledAt:   formatOptionalTime(page.LastCrawledAt),
		CreatedAt:       page.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       page.UpdatedAt.Format(time.RFC3339),
	}
}

func toKeywordResponse(kw *seo.Keyword) KeywordResponse {
	resp := KeywordResponse{
		ID:           kw.ID.String(),
		SiteID:       kw.SiteID.String(),
		Phrase:       kw.Phrase,
		Position:     kw.Position,
		PrevPosition: kw.PrevPosition,
		CheckedAt:    formatOptionalTime(kw.CheckedAt),
		CreatedAt:    kw.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    kw.UpdatedAt.Format(time.RFC3339),
	}
	if kw.PageID != nil {
		id := kw.PageID.String()
		resp.PageID = &id
	}
	return resp
}

func toRecommendationResponse(rec *seo.Recommendation) RecommendationResponse {
	resp := RecommendationResponse{
		ID:         rec.ID.String(),
		SiteID:     rec.SiteID.String(),
		Source:     string(rec.Source),
		Rule:       rec.Rule,
		Severity:   string(rec.Severity),
		Status:     string(rec.Status),
		Summary:    rec.Summary,
		Detail:     rec.Detail,
		ResolvedAt: formatOptionalTime(rec.ResolvedAt),
		CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  rec.UpdatedAt.Format(time.RFC3339),
	}
	if rec.PageID != nil {
		id := rec.PageID.String()
		resp.PageID = &id
	}
	return resp
}

// CreateSite godoc
// @ID           createSite
// @Summary      Register a website for SEO tracking
// @Tags         seo
// @Accept       json
// @Produce      json
// @Param        request body CreateSiteRequest true "Site details"
// @Success      201 {object} APIResponse[SiteResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /seo/sites [post]
func (h *SEOHandler) CreateSite(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, _ := getUserID(c)

	var req CreateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contactID, err := parseOptionalUUID(req.ContactID)
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}
	projectID, err := parseOptionalUUID(req.ProjectID)
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	site, err := h.seoService.CreateSite(c.Request.Context(), seoapp.CreateSiteInput{
		OrgID:     orgID,
		CreatedBy: userID,
		Domain:    req.Domain,
		Name:      req.Name,
		ContactID: contactID,
		ProjectID: projectID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toSiteResponse(site))
}

// ListSites godoc
// @ID           listSites
// @Summary      List tracked sites
// @Tags         seo
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]SiteResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /seo/sites [get]
func (h *SEOHandler) ListSites(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.seoService.ListSites(c.Request.Context(), orgID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]SiteResponse, 0, len(page.Items))
	for _, site := range page.Items {
		out = append(out, toSiteResponse(site))
	}
	h.SuccessWithMeta(c, out, page.Total, page.Page, page.PageSize)
}

// GetSite godoc
// @ID           getSite
// @Summary      Get a tracked site
// @Tags         seo
// @Produce      json
// @Param        id path string true "Site ID"
// @Success      200 {object} APIResponse[SiteResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /seo/sites/{id} [get]
func (h *SEOHandler) GetSite(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	siteID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid site ID")
		return
	}

	site, err := h.seoService.GetSite(c.Request.Context(), orgID, siteID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toSiteResponse(site))
}

// DeleteSite godoc
// @ID           deleteSite
// @Summary      Delete a tracked site and its pages, keywords and findings
// @Tags         seo
// @Produce      json
// @Param        id path string true "Site ID"
// @Success      204
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /seo/sites/{id} [delete]
func (h *SEOHandler) DeleteSite(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	siteID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid site ID")
		return
	}

	if err := h.seoService.DeleteSite(c.Request.Context(), orgID, siteID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RequestAudit godoc
// @ID           requestSiteAudit
// @Summary      Queue an on-page audit for a site
// @Tags         seo
// @Produce      json
// @Param        id path string true "Site ID"
// @Success      200 {object} APIResponse[SiteResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /seo/sites/{id}/audit [post]
func (h *SEOHandler) RequestAudit(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	siteID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid site ID")
		return
	}

	site, err := h.seoService.RequestAudit(c.Request.Context(), orgID, siteID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toSiteResponse(site))
}

// AddPage godoc
// @ID           addSitePage
// @Summary      Register a page under a site
// @Tags         seo
// @Accept       json
// @Produce      json
// @Param        id path string true "Site ID"
// @Param        request body AddPageRequest true "Page path"
// @Success      201 {object} APIResponse[PageResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /seo/sites/{id}/pages [post]
func (h *SEOHandler) AddPage(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	siteID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid site ID")
		return
	}

	var req AddPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.seoService.AddPage(c.Request.Context(), seoapp.AddPageInput{
		OrgID:  orgID,
		SiteID: siteID,
		Path:   req.Path,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toPageResponse(page))
}

// ListPages godoc
// @ID           listSitePages
// @Summary      List pages of a site
// @Tags         seo
// @Produce      json
// @Param        id path string true "Site ID"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]PageResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /seo/sites/{id}/pages [get]
func (h *SEOHandler) ListPages(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	siteID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid site ID")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.seoService.ListPages(c.Request.Context(), orgID, siteID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]PageResponse, 0, len(page.Items))
	for _, p := range page.Items {
		out = append(out, toPageResponse(p))
	}
	h.SuccessWithMeta(c, out, page.Total, page.Page, page.PageSize)
}

// GetPage godoc
// @ID           getSitePage
// @Summary      Get a tracked page
// @Tags         seo
// @Produce      json
// @Param        pageId path string true "Page ID"
// @Success      200 {object} APIResponse[PageResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /seo/pages/{pageId} [get]
func (h *SEOHandler) GetPage(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	pageID, err := parseIDParam(c, "pageId")
	if err != nil {
		h.BadRequest(c, "Invalid page ID")
		return
	}

	page, err := h.seoService.GetPage(c.Request.Context(), orgID, pageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPageResponse(page))
}

// DeletePage godoc
// @ID           deleteSitePage
// @Summary      Stop tracking a page
// @Tags         seo
// @Produce      json
// @Param        pageId path string true "Page ID"
// @Success      204
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /seo/pages/{pageId} [delete]
func (h *SEOHandler) DeletePage(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	pageID, err := parseIDParam(c, "pageId")
	if err != nil {
		h.BadRequest(c, "Invalid page ID")
		return
	}

	if err := h.seoService.DeletePage(c.Request.Context(), orgID, pageID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AddKeyword godoc
// @ID           addSiteKeyword
// @Summary      Track a search phrase for a site
// @Tags         seo
// @Accept       json
// @Produce      json
// @Param        id path string true "Site ID"
// @Param        request body AddKeywordRequest true "Keyword phrase"
// @Success      201 {object} APIResponse[KeywordResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /seo/sites/{id}/keywords [post]
func (h *SEOHandler) AddKeyword(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	siteID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid site ID")
		return
	}

	var req AddKeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	kw, err := h.seoService.AddKeyword(c.Request.Context(), seoapp.AddKeywordInput{
		OrgID:  orgID,
		SiteID: siteID,
		Phrase: req.Phrase,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toKeywordResponse(kw))
}

// KeywordMoverResponse is a keyword whose rank changed between checks
// @Description Keyword with its position delta since the previous check
type KeywordMoverResponse struct {
	KeywordResponse
	Movement int `json:"movement" example:"4"`
}

// KeywordMovers godoc
// @ID           listKeywordMovers
// @Summary      Keywords whose rank moved since the last check
// @Tags         seo
// @Produce      json
// @Param        id path string true "Site ID"
// @Success      200 {object} APIResponse[[]KeywordMoverResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /seo/sites/{id}/keywords/movers [get]
func (h *SEOHandler) KeywordMovers(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	siteID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid site ID")
		return
	}

	movers, err := h.seoService.KeywordMovers(c.Request.Context(), orgID, siteID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]KeywordMoverResponse, 0, len(movers))
	for _, kw := range movers {
		out = append(out, KeywordMoverResponse{
			KeywordResponse: toKeywordResponse(kw),
			Movement:        kw.Movement(),
		})
	}
	h.Success(c, out)
}

// ListKeywords godoc
// @ID           listSiteKeywords
// @Summary      List tracked keywords of a site
// @Tags         seo
// @Produce      json
// @Param        id path string true "Site ID"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]KeywordResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /seo/sites/{id}/keywords [get]
func (h *SEOHandler) ListKeywords(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	siteID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid site ID")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.seoService.ListKeywords(c.Request.Context(), orgID, siteID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]KeywordResponse, 0, len(page.Items))
	for _, kw := range page.Items {
		out = append(out, toKeywordResponse(kw))
	}
	h.SuccessWithMeta(c, out, page.Total, page.Page, page.PageSize)
}

// RecordPosition godoc
// @ID           recordKeywordPosition
// @Summary      Record a ranking observation for a keyword
// @Tags         seo
// @Accept       json
// @Produce      json
// @Param        keywordId path string true "Keyword ID"
// @Param        request body RecordPositionRequest true "Observed position"
// @Success      200 {object} APIResponse[KeywordResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /seo/keywords/{keywordId}/position [post]
func (h *SEOHandler) RecordPosition(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	keywordID, err := parseIDParam(c, "keywordId")
	if err != nil {
		h.BadRequest(c, "Invalid keyword ID")
		return
	}

	var req RecordPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	kw, err := h.seoService.RecordPosition(c.Request.Context(), seoapp.RecordPositionInput{
		OrgID:     orgID,
		KeywordID: keywordID,
		Position:  req.Position,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toKeywordResponse(kw))
}

// SetKeywordTarget godoc
// @ID           setKeywordTarget
// @Summary      Designate the page a keyword should rank for
// @Tags         seo
// @Accept       json
// @Produce      json
// @Param        keywordId path string true "Keyword ID"
// @Param        request body SetKeywordTargetRequest true "Target page"
// @Success      200 {object} APIResponse[KeywordResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /seo/keywords/{keywordId}/target [put]
func (h *SEOHandler) SetKeywordTarget(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	keywordID, err := parseIDParam(c, "keywordId")
	if err != nil {
		h.BadRequest(c, "Invalid keyword ID")
		return
	}

	var req SetKeywordTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	pageID, err := parseOptionalUUID(&req.PageID)
	if err != nil {
		h.BadRequest(c, "Invalid page ID")
		return
	}

	kw, err := h.seoService.SetKeywordTarget(c.Request.Context(), orgID, keywordID, *pageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toKeywordResponse(kw))
}

// DeleteKeyword godoc
// @ID           deleteKeyword
// @Summary      Stop tracking a keyword
// @Tags         seo
// @Produce      json
// @Param        keywordId path string true "Keyword ID"
// @Success      204
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /seo/keywords/{keywordId} [delete]
func (h *SEOHandler) DeleteKeyword(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	keywordID, err := parseIDParam(c, "keywordId")
	if err != nil {
		h.BadRequest(c, "Invalid keyword ID")
		return
	}

	if err := h.seoService.DeleteKeyword(c.Request.Context(), orgID, keywordID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListRecommendations godoc
// @ID           listRecommendations
// @Summary      List audit and assistant findings for a site
// @Tags         seo
// @Produce      json
// @Param        id path string true "Site ID"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]RecommendationResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /seo/sites/{id}/recommendations [get]
func (h *SEOHandler) ListRecommendations(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	siteID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid site ID")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.seoService.ListRecommendations(c.Request.Context(), orgID, siteID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]RecommendationResponse, 0, len(page.Items))
	for _, rec := range page.Items {
		out = append(out, toRecommendationResponse(rec))
	}
	h.SuccessWithMeta(c, out, page.Total, page.Page, page.PageSize)
}

// ApplyRecommendation godoc
// @ID           applyRecommendation
// @Summary      Mark a finding as applied
// @Tags         seo
// @Produce      json
// @Param        recId path string true "Recommendation ID"
// @Success      200 {object} APIResponse[RecommendationResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /seo/recommendations/{recId}/apply [post]
func (h *SEOHandler) ApplyRecommendation(c *gin.Context) {
	h.resolveRecommendation(c, h.seoService.ApplyRecommendation)
}

// DismissRecommendation godoc
// @ID           dismissRecommendation
// @Summary      Dismiss a finding
// @Tags         seo
// @Produce      json
// @Param        recId path string true "Recommendation ID"
// @Success      200 {object} APIResponse[RecommendationResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /seo/recommendations/{recId}/dismiss [post]
func (h *SEOHandler) DismissRecommendation(c *gin.Context) {
	h.resolveRecommendation(c, h.seoService.DismissRecommendation)
}

// ReopenRecommendation godoc
// @ID           reopenRecommendation
// @Summary      Reopen a resolved finding
// @Tags         seo
// @Produce      json
// @Param        recId path string true "Recommendation ID"
// @Success      200 {object} APIResponse[RecommendationResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /seo/recommendations/{recId}/reopen [post]
func (h *SEOHandler) ReopenRecommendation(c *gin.Context) {
	h.resolveRecommendation(c, h.seoService.ReopenRecommendation)
}

func (h *SEOHandler) resolveRecommendation(c *gin.Context, transition func(ctx context.Context, orgID, recID uuid.UUID) (*seo.Recommendation, error)) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	recID, err := parseIDParam(c, "recId")
	if err != nil {
		h.BadRequest(c, "Invalid recommendation ID")
		return
	}

	rec, err := transition(c.Request.Context(), orgID, recID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toRecommendationResponse(rec))
}

// RequestAssist godoc
// @ID           requestAssist
// @Summary      Queue a writing assistant run for a page
// @Tags         seo
// @Accept       json
// @Produce      json
// @Param        id path string true "Site ID"
// @Param        request body AssistRequest true "Target page"
// @Success      202 {object} APIResponse[JobResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /seo/sites/{id}/assist [post]
func (h *SEOHandler) RequestAssist(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	siteID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid site ID")
		return
	}

	var req AssistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	pageID, err := parseOptionalUUID(&req.PageID)
	if err != nil {
		h.BadRequest(c, "Invalid page ID")
		return
	}

	job, err := h.seoService.RequestAssist(c.Request.Context(), seoapp.AssistInput{
		OrgID:  orgID,
		SiteID: siteID,
		PageID: *pageID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, toJobResponse(job))
}

// RegisterRoutes registers SEO routes
func (h *SEOHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sites := rg.Group("/seo/sites")
	{
		sites.POST("", h.CreateSite)
		sites.GET("", h.ListSites)
		sites.GET("/:id", h.GetSite)
		sites.DELETE("/:id", h.DeleteSite)
		sites.POST("/:id/audit", h.RequestAudit)
		sites.POST("/:id/pages", h.AddPage)
		sites.GET("/:id/pages", h.ListPages)
		sites.POST("/:id/keywords", h.AddKeyword)
		sites.GET("/:id/keywords", h.ListKeywords)
		sites.GET("/:id/keywords/movers", h.KeywordMovers)
		sites.GET("/:id/recommendations", h.ListRecommendations)
		sites.POST("/:id/assist", h.RequestAssist)
	}
	pages := rg.Group("/seo/pages")
	{
		pages.GET("/:pageId", h.GetPage)
		pages.DELETE("/:pageId", h.DeletePage)
	}
	keywords := rg.Group("/seo/keywords")
	{
		keywords.POST("/:keywordId/position", h.RecordPosition)
		keywords.PUT("/:keywordId/target", h.SetKeywordTarget)
		keywords.DELETE("/:keywordId", h.DeleteKeyword)
	}
	recs := rg.Group("/seo/recommendations")
	{
		recs.POST("/:recId/apply", h.ApplyRecommendation)
		recs.POST("/:recId/dismiss", h.DismissRecommendation)
		recs.POST("/:recId/reopen", h.ReopenRecommendation)
	}
}
