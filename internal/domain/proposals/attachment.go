package proposals

import (
	"strings"
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxAttachmentSize is the largest file accepted as a proposal attachment
const MaxAttachmentSize = 25 << 20 // 25 MiB

var allowedAttachmentTypes = map[string]bool{
	"application/pdf":    true,
	"image/png":          true,
	"image/jpeg":         true,
	"image/webp":         true,
	"application/zip":    true,
	"text/plain":         true,
	"text/csv":           true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       true,
}

// Attachment is a file stored in object storage and linked to a proposal
type Attachment struct {
	shared.OrgAggregateRoot
	ProposalID  uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName    string    `gorm:"type:varchar(255);not null"`
	ContentType string    `gorm:"type:varchar(100);not null"`
	SizeBytes   int64     `gorm:"not null"`
	StorageKey  string    `gorm:"type:varchar(500);not null"` // Object key in the attachment bucket
}

// TableName returns the table name for GORM
func (Attachment) TableName() string {
	return "proposal_attachments"
}

// NewAttachment creates an attachment record for an uploaded file
func NewAttachment(orgID, proposalID uuid.UUID, fileName, contentType string, sizeBytes int64) (*Attachment, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if proposalID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROPOSAL", "Proposal ID cannot be empty")
	}
	fileName = sanitizeFileName(fileName)
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILENAME", "File name cannot be empty")
	}
	if !allowedAttachmentTypes[contentType] {
		return nil, shared.NewDomainError("UNSUPPORTED_TYPE", "File type is not allowed")
	}
	if sizeBytes <= 0 {
		return nil, shared.NewDomainError("INVALID_SIZE", "File size must be positive")
	}
	if sizeBytes > MaxAttachmentSize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", "File exceeds the 25 MiB attachment limit")
	}

	a := &Attachment{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		ProposalID:       proposalID,
		FileName:         fileName,
		ContentType:      contentType,
		SizeBytes:        sizeBytes,
	}
	a.StorageKey = buildStorageKey(orgID, proposalID, a.ID, fileName)
	return a, nil
}

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	// Strip any path components a client might smuggle in
	if idx := strings.LastIndexAny(name, "/\\"); idx >= 0 {
		name = name[idx+1:]
	}
	if len(name) > 255 {
		name = name[len(name)-255:]
	}
	return name
}

func buildStorageKey(orgID, proposalID, attachmentID uuid.UUID, fileName string) string {
	return "orgs/" + orgID.String() + "/proposals/" + proposalID.String() + "/" + attachmentID.String() + "/" + fileName
}

// Touch updates the modification time after a metadata change
func (a *Attachment) Touch() {
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}
