package service

import (
	"context"
	"path"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const defaultMimeType = "application/octet-stream"

// TicketContentService manages comments and attachment metadata on tickets.
type TicketContentService struct {
	store              repository.Store
	dispatcher         events.Dispatcher
	logger             *zap.Logger
	now                Clock
	attachmentMaxBytes int64
}

// ContentDependencies bundles collaborators for ticket content.
type ContentDependencies struct {
	Store              repository.Store
	Dispatcher         events.Dispatcher
	Logger             *zap.Logger
	Clock              Clock
	AttachmentMaxBytes int64
}

// CommentInput describes a new comment.
type CommentInput struct {
	Text        string
	IsInternal  bool
	AuthorName  string
	AuthorEmail string
}

// AttachmentInput describes attachment metadata.
type AttachmentInput struct {
	FileName   string
	MimeType   string
	SizeBytes  int64
	StorageKey string
}

// NewTicketContentService constructs the service.
func NewTicketContentService(deps ContentDependencies) *TicketContentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketContentService{
		store:              deps.Store,
		dispatcher:         deps.Dispatcher,
		logger:             logger,
		now:                clockOrNow(deps.Clock),
		attachmentMaxBytes: deps.AttachmentMaxBytes,
	}
}

// AddComment posts a comment. The author defaults to the performer; closed
// tickets take no new comments.
func (s *TicketContentService) AddComment(ctx context.Context, ticketID string, input CommentInput, performer domain.Performer) (*domain.Comment, error) {
	comment := &domain.Comment{
		TicketID:    ticketID,
		Text:        strings.TrimSpace(input.Text),
		IsInternal:  input.IsInternal,
		AuthorName:  strings.TrimSpace(input.AuthorName),
		AuthorEmail: strings.TrimSpace(input.AuthorEmail),
	}
	if comment.AuthorName == "" {
		comment.AuthorName = performer.Name
	}
	if comment.AuthorEmail == "" {
		comment.AuthorEmail = performer.Email
	}
	if comment.Text == "" {
		return nil, apperrors.NewValidationError("text is required", nil)
	}
	if comment.AuthorName == "" {
		return nil, apperrors.NewValidationError("authorName is required", nil)
	}
	if comment.AuthorEmail != "" {
		if err := validateEmail(comment.AuthorEmail); err != nil {
			return nil, err
		}
	}

	if err := requireID("ticket", ticketID); err != nil {
		return nil, err
	}
	var ticket *domain.Ticket
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		locked, err := repos.Tickets().GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return lookupError(err, "ticket", ticketID)
		}
		if locked.Status == domain.TicketStatusClosed {
			return apperrors.NewConflict("cannot comment on a closed ticket", map[string]any{"ticket_id": ticketID})
		}
		if err := repos.Comments().Create(ctx, comment); err != nil {
			return lookupError(err, "ticket", ticketID)
		}
		ticket = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:           uuid.NewString(),
			Type:         events.EventTicketCommentAdded,
			TicketID:     ticket.ID,
			TicketNumber: ticket.TicketNumber,
			PerformedBy:  performer.Label(),
			Timestamp:    s.now().UTC(),
			Payload: events.CommentAddedPayload{
				CommentID:   comment.ID,
				IsInternal:  comment.IsInternal,
				AuthorName:  comment.AuthorName,
				TextPreview: stringPreview(comment.Text, 120),
			},
		})
	}
	return comment, nil
}

// ListComments returns a ticket's comments oldest first.
func (s *TicketContentService) ListComments(ctx context.Context, ticketID string, includeInternal bool) ([]domain.Comment, error) {
	if _, err := s.openTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	comments, err := s.store.Comments().ListByTicket(ctx, ticketID, includeInternal)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

// DeleteComment removes a comment.
func (s *TicketContentService) DeleteComment(ctx context.Context, commentID string) error {
	if err := requireID("comment", commentID); err != nil {
		return err
	}
	if err := s.store.Comments().Delete(ctx, commentID); err != nil {
		return lookupError(err, "comment", commentID)
	}
	return nil
}

// AddAttachment records attachment metadata. The binary lives elsewhere;
// storageKey locates it and defaults to a per-ticket path.
func (s *TicketContentService) AddAttachment(ctx context.Context, ticketID string, input AttachmentInput, performer domain.Performer) (*domain.Attachment, error) {
	attachment := &domain.Attachment{
		TicketID:   ticketID,
		FileName:   strings.TrimSpace(input.FileName),
		MimeType:   strings.TrimSpace(input.MimeType),
		SizeBytes:  input.SizeBytes,
		StorageKey: strings.TrimSpace(input.StorageKey),
		UploadedBy: performer.Label(),
	}
	if attachment.FileName == "" {
		return nil, apperrors.NewValidationError("fileName is required", nil)
	}
	if attachment.SizeBytes < 0 {
		return nil, apperrors.NewValidationError("sizeBytes must not be negative", nil)
	}
	if s.attachmentMaxBytes > 0 && attachment.SizeBytes > s.attachmentMaxBytes {
		return nil, apperrors.NewValidationError(
			"attachment exceeds maximum size of "+humanize.IBytes(uint64(s.attachmentMaxBytes)),
			map[string]any{"size_bytes": attachment.SizeBytes, "max_bytes": s.attachmentMaxBytes})
	}
	if attachment.MimeType == "" {
		attachment.MimeType = defaultMimeType
	}
	if attachment.StorageKey == "" {
		attachment.StorageKey = path.Join("tickets", ticketID, uuid.NewString()+"-"+path.Base(attachment.FileName))
	}

	if _, err := s.openTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	if err := s.store.Attachments().Create(ctx, attachment); err != nil {
		return nil, lookupError(err, "ticket", ticketID)
	}
	s.logger.Info("attachment recorded",
		zap.String("ticket_id", ticketID),
		zap.String("file_name", attachment.FileName),
		zap.String("size", humanize.IBytes(uint64(attachment.SizeBytes))))
	return attachment, nil
}

// ListAttachments returns a ticket's attachments oldest first.
func (s *TicketContentService) ListAttachments(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	if _, err := s.openTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	attachments, err := s.store.Attachments().ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return attachments, nil
}

// DeleteAttachment removes attachment metadata.
func (s *TicketContentService) DeleteAttachment(ctx context.Context, attachmentID string) error {
	if err := requireID("attachment", attachmentID); err != nil {
		return err
	}
	if err := s.store.Attachments().Delete(ctx, attachmentID); err != nil {
		return lookupError(err, "attachment", attachmentID)
	}
	return nil
}

func (s *TicketContentService) openTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	if err := requireID("ticket", ticketID); err != nil {
		return nil, err
	}
	ticket, err := s.store.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		return nil, lookupError(err, "ticket", ticketID)
	}
	return ticket, nil
}
