package email

import (
	"strings"
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Template is a reusable email body with {{placeholder}} variables
type Template struct {
	shared.OrgAggregateRoot
	Name     string `gorm:"type:varchar(200);not null"`
	Subject  string `gorm:"type:varchar(300);not null"`
	BodyHTML string `gorm:"type:text;not null"`
	BodyText string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Template) TableName() string {
	return "email_templates"
}

// NewTemplate creates a new email template
func NewTemplate(orgID uuid.UUID, name, subject, bodyHTML, bodyText string) (*Template, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if err := validateTemplate(name, subject, bodyHTML); err != nil {
		return nil, err
	}

	return &Template{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             name,
		Subject:          subject,
		BodyHTML:         bodyHTML,
		BodyText:         bodyText,
	}, nil
}

// Update replaces the template's content
func (t *Template) Update(name, subject, bodyHTML, bodyText string) error {
	if err := validateTemplate(name, subject, bodyHTML); err != nil {
		return err
	}

	t.Name = name
	t.Subject = subject
	t.BodyHTML = bodyHTML
	t.BodyText = bodyText
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Render substitutes {{key}} placeholders in the subject and bodies.
// Unknown placeholders are left intact so a missing variable is visible
// rather than silently blank.
func (t *Template) Render(vars map[string]string) (subject, html, text string) {
	subject = renderVars(t.Subject, vars)
	html = renderVars(t.BodyHTML, vars)
	text = renderVars(t.BodyText, vars)
	return subject, html, text
}

func renderVars(s string, vars map[string]string) string {
	for k, v := range vars {
		s = strings.ReplaceAll(s, "{{"+k+"}}", v)
	}
	return s
}

func validateTemplate(name, subject, bodyHTML string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Template name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Template name cannot exceed 200 characters")
	}
	if subject == "" {
		return shared.NewDomainError("INVALID_SUBJECT", "Subject cannot be empty")
	}
	if len(subject) > 300 {
		return shared.NewDomainError("INVALID_SUBJECT", "Subject cannot exceed 300 characters")
	}
	if bodyHTML == "" {
		return shared.NewDomainError("INVALID_BODY", "HTML body cannot be empty")
	}
	return nil
}
