package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// ContentHandler serves ticket comments and attachments.
type ContentHandler struct {
	service *service.TicketContentService
}

// NewContentHandler constructs handler.
func NewContentHandler(contentService *service.TicketContentService) *ContentHandler {
	return &ContentHandler{service: contentService}
}

// ListComments GET /tickets/:id/comments. ?public=true hides internal notes.
func (h *ContentHandler) ListComments(c *fiber.Ctx) error {
	includeInternal := true
	if public := parseBool(c.Query("public")); public != nil && *public {
		includeInternal = false
	}
	comments, err := h.service.ListComments(c.UserContext(), c.Params("id"), includeInternal)
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, dto.NewCommentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddComment POST /tickets/:id/comments.
func (h *ContentHandler) AddComment(c *fiber.Ctx) error {
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.AddComment(c.UserContext(), c.Params("id"), service.CommentInput{
		Text:        req.Text,
		IsInternal:  req.IsInternal,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
	}, auth.PerformerFromContext(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

// DeleteComment DELETE /comments/:id.
func (h *ContentHandler) DeleteComment(c *fiber.Ctx) error {
	if err := h.service.DeleteComment(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListAttachments GET /tickets/:id/attachments.
func (h *ContentHandler) ListAttachments(c *fiber.Ctx) error {
	attachments, err := h.service.ListAttachments(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		items = append(items, dto.NewAttachmentResponse(&attachments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddAttachment POST /tickets/:id/attachments.
func (h *ContentHandler) AddAttachment(c *fiber.Ctx) error {
	var req dto.CreateAttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	attachment, err := h.service.AddAttachment(c.UserContext(), c.Params("id"), service.AttachmentInput{
		FileName:   req.FileName,
		MimeType:   req.MimeType,
		SizeBytes:  req.SizeBytes,
		StorageKey: req.StorageKey,
	}, auth.PerformerFromContext(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAttachmentResponse(attachment)})
}

// DeleteAttachment DELETE /attachments/:id.
func (h *ContentHandler) DeleteAttachment(c *fiber.Ctx) error {
	if err := h.service.DeleteAttachment(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
