package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"staffingapi/internal/http/middleware"
	"staffingapi/internal/model"
	"staffingapi/internal/service"
)

type listConversationsQuery struct {
	Filter string `query:"filter" validate:"oneof=all unread"`
	Search string `query:"search" validate:"max=200"`
}

type createConversationRequest struct {
	RecipientID    string  `json:"recipient_id" validate:"required,uuid"`
	ContextType    string  `json:"context_type" validate:"required,oneof=agency_inquiry job_inquiry general"`
	ContextID      *string `json:"context_id" validate:"omitempty,uuid"`
	InitialMessage string  `json:"initial_message" validate:"required,max=5000"`
}

func (r *createConversationRequest) normalize() {
	r.InitialMessage = strings.TrimSpace(r.InitialMessage)
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

func (r *sendMessageRequest) normalize() {
	r.Content = strings.TrimSpace(r.Content)
}

type threadResponse struct {
	*model.Conversation
	Messages []model.Message `json:"messages"`
}

// ListConversations godoc
// @Summary List the caller's conversations
// @Tags messages
// @Produce json
// @Param limit query int false "page size (1-100)" default(20)
// @Param offset query int false "page offset" default(0)
// @Param filter query string false "all or unread" default(all)
// @Param search query string false "participant name, email or last message"
// @Success 200 {object} listResponse
// @Failure 400 {object} errorPayload
// @Failure 401 {object} errorPayload
// @Security BearerAuth
// @Router /api/messages/conversations [get]
func ListConversations(svc service.ConversationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		errs := fieldErrors{}
		page := parsePage(c, service.DefaultConversationLimit, errs)
		q := listConversationsQuery{
			Filter: c.Query("filter", service.FilterAll),
			Search: strings.TrimSpace(c.Query("search")),
		}
		for k, v := range validateStruct(q) {
			errs[k] = v
		}
		if len(errs) > 0 {
			return writeValidation(c, errs)
		}

		res, err := svc.List(c.UserContext(), service.ListConversationsInput{
			UserID: middleware.UserID(c),
			Limit:  page.Limit,
			Offset: page.Offset,
			Filter: q.Filter,
			Search: q.Search,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeList(c, res.Items, newPagination(res.Total, page.Limit, page.Offset))
	}
}

// CreateConversation godoc
// @Summary Start a conversation with another user
// @Tags messages
// @Accept json
// @Produce json
// @Param body body createConversationRequest true "recipient and first message"
// @Success 201 {object} dataResponse
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload "details.conversation_id holds the existing conversation"
// @Security BearerAuth
// @Router /api/messages/conversations [post]
func CreateConversation(svc service.ConversationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createConversationRequest
		if ok, err := parseBody(c, &req); !ok {
			return err
		}

		conv, err := svc.Create(c.UserContext(), service.CreateConversationInput{
			SenderID:       middleware.UserID(c),
			RecipientID:    req.RecipientID,
			ContextType:    req.ContextType,
			ContextID:      req.ContextID,
			InitialMessage: req.InitialMessage,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeData(c, fiber.StatusCreated, conv)
	}
}

// GetConversation godoc
// @Summary Get a conversation with a page of its messages, oldest first
// @Tags messages
// @Produce json
// @Param id path string true "conversation id"
// @Param limit query int false "page size (1-100)" default(50)
// @Param offset query int false "page offset" default(0)
// @Success 200 {object} listResponse
// @Failure 404 {object} errorPayload
// @Security BearerAuth
// @Router /api/messages/conversations/{id} [get]
func GetConversation(svc service.ConversationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathUUID(c)
		if !ok {
			return invalidID(c)
		}
		errs := fieldErrors{}
		page := parsePage(c, service.DefaultMessageLimit, errs)
		if len(errs) > 0 {
			return writeValidation(c, errs)
		}

		thread, err := svc.Get(c.UserContext(), middleware.UserID(c), id, page.Limit, page.Offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeList(c,
			threadResponse{Conversation: thread.Conversation, Messages: thread.Messages},
			newPagination(thread.Total, page.Limit, page.Offset))
	}
}

// SendMessage godoc
// @Summary Send a message to a conversation
// @Tags messages
// @Accept json
// @Produce json
// @Param id path string true "conversation id"
// @Param body body sendMessageRequest true "message"
// @Success 201 {object} dataResponse
// @Failure 404 {object} errorPayload
// @Failure 429 {object} errorPayload
// @Security BearerAuth
// @Router /api/messages/conversations/{id}/messages [post]
func SendMessage(svc service.ConversationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathUUID(c)
		if !ok {
			return invalidID(c)
		}
		var req sendMessageRequest
		if ok, err := parseBody(c, &req); !ok {
			return err
		}

		msg, err := svc.SendMessage(c.UserContext(), middleware.UserID(c), id, req.Content)
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeData(c, fiber.StatusCreated, msg)
	}
}

// MarkConversationRead godoc
// @Summary Mark a conversation as read for the caller
// @Tags messages
// @Produce json
// @Param id path string true "conversation id"
// @Success 200 {object} dataResponse
// @Failure 404 {object} errorPayload
// @Security BearerAuth
// @Router /api/messages/conversations/{id}/read [patch]
func MarkConversationRead(svc service.ConversationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathUUID(c)
		if !ok {
			return invalidID(c)
		}
		receipt, err := svc.MarkRead(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeData(c, fiber.StatusOK, receipt)
	}
}

// UnreadCount godoc
// @Summary Count unread messages across the caller's conversations
// @Tags messages
// @Produce json
// @Success 200 {object} dataResponse
// @Security BearerAuth
// @Router /api/messages/unread-count [get]
func UnreadCount(svc service.ConversationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := svc.UnreadTotal(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeData(c, fiber.StatusOK, fiber.Map{"unread_count": n})
	}
}

func pathUUID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func invalidID(c *fiber.Ctx) error {
	return writeValidation(c, fieldErrors{"id": "id must be a valid UUID"})
}
