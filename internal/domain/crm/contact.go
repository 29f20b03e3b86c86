package crm

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContactKind classifies a contact within the CRM
type ContactKind string

const (
	ContactKindProspect ContactKind = "prospect"
	ContactKindClient   ContactKind = "client"
	ContactKindTeam     ContactKind = "team"
)

// ContactRole determines what a contact may do once authenticated
type ContactRole string

const (
	ContactRoleOwner  ContactRole = "owner"
	ContactRoleAdmin  ContactRole = "admin"
	ContactRoleMember ContactRole = "member"
	ContactRoleClient ContactRole = "client"
)

// ContactStatus represents the lifecycle status of a contact
type ContactStatus string

const (
	ContactStatusActive   ContactStatus = "active"
	ContactStatusInactive ContactStatus = "inactive"
	ContactStatusArchived ContactStatus = "archived"
)

const (
	// MaxFailedLogins is the number of failed attempts before lockout
	MaxFailedLogins = 5
	// LockoutDuration is how long an account stays locked after too many failures
	LockoutDuration = 15 * time.Minute
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Contact is both a CRM record and, when it carries a password hash,
// a login principal. Prospects and clients start without credentials;
// team members always have them.
type Contact struct {
	shared.OrgAggregateRoot
	Email        string        `gorm:"type:varchar(254);not null;index"`
	FirstName    string        `gorm:"type:varchar(100);not null"`
	LastName     string        `gorm:"type:varchar(100)"`
	Phone        string        `gorm:"type:varchar(50)"`
	Company      string        `gorm:"type:varchar(200)"`
	Kind         ContactKind   `gorm:"type:varchar(20);not null;default:'prospect'"`
	Role         ContactRole   `gorm:"type:varchar(20);not null;default:'client'"`
	Status       ContactStatus `gorm:"type:varchar(20);not null;default:'active'"`
	PasswordHash string        `gorm:"type:varchar(100)"`
	Tags         string        `gorm:"type:jsonb"` // JSON array of free-form tags
	Notes        string        `gorm:"type:text"`
	Source       string        `gorm:"type:varchar(100)"` // Where the contact came from (referral, form, import)

	LastLoginAt  *time.Time `gorm:"type:timestamptz"`
	FailedLogins int        `gorm:"not null;default:0"`
	LockedUntil  *time.Time `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (Contact) TableName() string {
	return "contacts"
}

// NewContact creates a new CRM contact without credentials
func NewContact(orgID uuid.UUID, email, firstName, lastName string, kind ContactKind) (*Contact, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateContactName(firstName); err != nil {
		return nil, err
	}
	if err := validateKind(kind); err != nil {
		return nil, err
	}

	role := ContactRoleClient
	if kind == ContactKindTeam {
		role = ContactRoleMember
	}

	return &Contact{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Email:            strings.ToLower(strings.TrimSpace(email)),
		FirstName:        firstName,
		LastName:         lastName,
		Kind:             kind,
		Role:             role,
		Status:           ContactStatusActive,
		Tags:             "[]",
	}, nil
}

// NewTeamMember creates a team contact with credentials and the given role
func NewTeamMember(orgID uuid.UUID, email, firstName, lastName, password string, role ContactRole) (*Contact, error) {
	contact, err := NewContact(orgID, email, firstName, lastName, ContactKindTeam)
	if err != nil {
		return nil, err
	}
	if err := validateRole(role); err != nil {
		return nil, err
	}
	if err := contact.SetPassword(password); err != nil {
		return nil, err
	}
	contact.Role = role
	return contact, nil
}

// UpdateProfile updates basic contact information
func (c *Contact) UpdateProfile(firstName, lastName, phone, company string) error {
	if err := validateProfile(firstName, lastName, phone, company); err != nil {
		return err
	}

	c.FirstName = firstName
	c.LastName = lastName
	c.Phone = phone
	c.Company = company
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Update applies a full profile edit, tags and notes included, as one
// versioned change
func (c *Contact) Update(firstName, lastName, phone, company, tags, notes string) error {
	if err := validateProfile(firstName, lastName, phone, company); err != nil {
		return err
	}
	normalized, err := normalizeTags(tags)
	if err != nil {
		return err
	}

	c.FirstName = firstName
	c.LastName = lastName
	c.Phone = phone
	c.Company = company
	c.Tags = normalized
	c.Notes = notes
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// ChangeEmail updates the contact's email address
func (c *Contact) ChangeEmail(email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}

	c.Email = strings.ToLower(strings.TrimSpace(email))
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// SetPassword hashes and stores the contact's password
func (c *Contact) SetPassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return shared.NewDomainError("HASH_FAILED", "Failed to hash password")
	}

	c.PasswordHash = string(hash)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// VerifyPassword checks the given password against the stored hash
func (c *Contact) VerifyPassword(password string) bool {
	if c.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
}

// CanLogin returns true if the contact has credentials and is allowed to sign in
func (c *Contact) CanLogin() bool {
	return c.PasswordHash != "" && c.Status == ContactStatusActive && !c.IsLocked()
}

// IsLocked returns true if the contact is currently locked out
func (c *Contact) IsLocked() bool {
	return c.LockedUntil != nil && time.Now().Before(*c.LockedUntil)
}

// RecordLoginFailure increments the failed-attempt counter and locks the
// account once the threshold is reached. Returns true if the account
// became locked by this call.
func (c *Contact) RecordLoginFailure() bool {
	c.FailedLogins++
	c.UpdatedAt = time.Now()

	if c.FailedLogins >= MaxFailedLogins {
		lockedUntil := time.Now().Add(LockoutDuration)
		c.LockedUntil = &lockedUntil
		c.FailedLogins = 0
		return true
	}
	return false
}

// RecordLoginSuccess clears lockout state and stamps the login time
func (c *Contact) RecordLoginSuccess() {
	now := time.Now()
	c.LastLoginAt = &now
	c.FailedLogins = 0
	c.LockedUntil = nil
	c.UpdatedAt = now
}

// ConvertToClient promotes a prospect to a client
func (c *Contact) ConvertToClient() error {
	if c.Kind == ContactKindClient {
		return shared.NewDomainError("ALREADY_CLIENT", "Contact is already a client")
	}
	if c.Kind == ContactKindTeam {
		return shared.NewDomainError("INVALID_STATE", "Team members cannot be converted to clients")
	}

	c.Kind = ContactKindClient
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// ChangeRole updates the contact's role
func (c *Contact) ChangeRole(role ContactRole) error {
	if err := validateRole(role); err != nil {
		return err
	}
	if c.Role == ContactRoleOwner && role != ContactRoleOwner {
		return shared.NewDomainError("INVALID_STATE", "Owner role cannot be demoted; transfer ownership first")
	}

	c.Role = role
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// SetTags replaces the contact's tags JSON
func (c *Contact) SetTags(tags string) error {
	normalized, err := normalizeTags(tags)
	if err != nil {
		return err
	}

	c.Tags = normalized
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// SetNotes replaces the free-form notes
func (c *Contact) SetNotes(notes string) {
	c.Notes = notes
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Deactivate marks the contact inactive; inactive contacts cannot sign in
func (c *Contact) Deactivate() error {
	if c.Status != ContactStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active contacts can be deactivated")
	}

	c.Status = ContactStatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Activate re-enables an inactive contact
func (c *Contact) Activate() error {
	if c.Status == ContactStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Contact is already active")
	}
	if c.Status == ContactStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Archived contacts must be restored first")
	}

	c.Status = ContactStatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Archive soft-removes the contact from active use
func (c *Contact) Archive() error {
	if c.Status == ContactStatusArchived {
		return shared.NewDomainError("ALREADY_ARCHIVED", "Contact is already archived")
	}

	c.Status = ContactStatusArchived
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Restore brings an archived contact back as inactive
func (c *Contact) Restore() error {
	if c.Status != ContactStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Only archived contacts can be restored")
	}

	c.Status = ContactStatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// FullName returns the contact's display name
func (c *Contact) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 254 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 254 characters")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}
	return nil
}

func validateContactName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "First name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "First name cannot exceed 100 characters")
	}
	return nil
}

func validateProfile(firstName, lastName, phone, company string) error {
	if err := validateContactName(firstName); err != nil {
		return err
	}
	if len(lastName) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Last name cannot exceed 100 characters")
	}
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	if len(company) > 200 {
		return shared.NewDomainError("INVALID_COMPANY", "Company cannot exceed 200 characters")
	}
	return nil
}

func normalizeTags(tags string) (string, error) {
	if tags == "" {
		tags = "[]"
	}
	trimmed := strings.TrimSpace(tags)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return "", shared.NewDomainError("INVALID_TAGS", "Tags must be a JSON array")
	}
	return trimmed, nil
}

func validateKind(kind ContactKind) error {
	switch kind {
	case ContactKindProspect, ContactKindClient, ContactKindTeam:
		return nil
	default:
		return shared.NewDomainError("INVALID_KIND", "Invalid contact kind")
	}
}

func validateRole(role ContactRole) error {
	switch role {
	case ContactRoleOwner, ContactRoleAdmin, ContactRoleMember, ContactRoleClient:
		return nil
	default:
		return shared.NewDomainError("INVALID_ROLE", "Invalid contact role")
	}
}
