package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"staffingapi/internal/model"
	"staffingapi/internal/notify"
	"staffingapi/internal/repository"
)

// Conversation list filters.
const (
	FilterAll    = "all"
	FilterUnread = "unread"
)

const (
	DefaultConversationLimit = 20
	DefaultMessageLimit      = 50
	MaxPageLimit             = 100
)

const tracerName = "staffingapi/internal/service"

// ListConversationsInput selects a page of the caller's conversations.
// Filter and Search are applied to the fetched page.
type ListConversationsInput struct {
	UserID string
	Limit  int
	Offset int
	Filter string
	Search string
}

// ConversationPage is a page of assembled conversations. Total is the
// number of conversations the user participates in.
type ConversationPage struct {
	Items []model.Conversation
	Total int
}

// CreateConversationInput opens a conversation with a first message.
type CreateConversationInput struct {
	SenderID       string
	RecipientID    string
	ContextType    string
	ContextID      *string
	InitialMessage string
}

// ConversationThread is a conversation with a page of its messages.
type ConversationThread struct {
	Conversation *model.Conversation
	Messages     []model.Message
	Total        int
}

// ReadReceipt confirms a mark-as-read.
type ReadReceipt struct {
	ConversationID string    `json:"conversation_id"`
	LastReadAt     time.Time `json:"last_read_at"`
}

// ConversationService defines the messaging use cases.
type ConversationService interface {
	// List returns the caller's conversations with participants, latest message and unread count.
	List(ctx context.Context, in ListConversationsInput) (*ConversationPage, error)

	// Create opens a conversation unless the two users already share one.
	Create(ctx context.Context, in CreateConversationInput) (*model.Conversation, error)

	// Get returns a conversation the caller participates in with a page of messages.
	Get(ctx context.Context, userID, conversationID string, limit, offset int) (*ConversationThread, error)

	// SendMessage appends a message and notifies the other participants.
	SendMessage(ctx context.Context, userID, conversationID, content string) (*model.Message, error)

	MarkRead(ctx context.Context, userID, conversationID string) (*ReadReceipt, error)
	UnreadTotal(ctx context.Context, userID string) (int, error)
}

type conversationService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	profiles      repository.ProfileRepository
	mailer        *Mailer
	tracer        trace.Tracer
	now           func() time.Time
}

// NewConversationService constructs a ConversationService.
func NewConversationService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	profiles repository.ProfileRepository,
	mailer *Mailer,
) ConversationService {
	return &conversationService{
		conversations: conversations,
		messages:      messages,
		profiles:      profiles,
		mailer:        mailer,
		tracer:        otel.Tracer(tracerName),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *conversationService) List(ctx context.Context, in ListConversationsInput) (*ConversationPage, error) {
	ctx, span := s.tracer.Start(ctx, "ConversationService.List", trace.WithAttributes(
		attribute.Int("page.limit", in.Limit),
		attribute.Int("page.offset", in.Offset),
		attribute.String("filter", in.Filter),
	))
	defer span.End()

	pq := normalizePage(in.Limit, in.Offset, DefaultConversationLimit)
	page, err := s.conversations.ListForUser(ctx, in.UserID, pq)
	if err != nil {
		return nil, fail(span, dbError("list conversations", err))
	}
	if len(page.Items) == 0 {
		return &ConversationPage{Items: []model.Conversation{}, Total: page.Total}, nil
	}

	items, err := s.assemble(ctx, in.UserID, page.Items)
	if err != nil {
		return nil, fail(span, err)
	}

	search := strings.ToLower(strings.TrimSpace(in.Search))
	out := make([]model.Conversation, 0, len(items))
	for _, c := range items {
		if in.Filter == FilterUnread && c.UnreadCount == 0 {
			continue
		}
		if search != "" && !matchesSearch(c, in.UserID, search) {
			continue
		}
		out = append(out, c)
	}
	span.SetAttributes(attribute.Int("conversations.returned", len(out)))

	return &ConversationPage{Items: out, Total: page.Total}, nil
}

// assemble joins participants, latest messages and unread counts onto convs.
func (s *conversationService) assemble(ctx context.Context, userID string, convs []model.Conversation) ([]model.Conversation, error) {
	ids := make([]string, len(convs))
	for i, c := range convs {
		ids[i] = c.ID
	}

	participants, err := s.conversations.Participants(ctx, ids)
	if err != nil {
		return nil, dbError("load participants", err)
	}
	latest, err := s.conversations.LatestMessages(ctx, ids)
	if err != nil {
		return nil, dbError("load latest messages", err)
	}
	stamps, err := s.conversations.MessageStamps(ctx, ids)
	if err != nil {
		return nil, dbError("load message timestamps", err)
	}

	byConversation := make(map[string][]model.Participant, len(convs))
	lastRead := make(map[string]*time.Time, len(convs))
	for _, p := range participants {
		byConversation[p.ConversationID] = append(byConversation[p.ConversationID], p)
		if p.UserID == userID {
			lastRead[p.ConversationID] = p.LastReadAt
		}
	}
	latestBy := make(map[string]model.Message, len(latest))
	for _, m := range latest {
		latestBy[m.ConversationID] = m
	}
	unread := countUnread(stamps, lastRead)

	out := make([]model.Conversation, len(convs))
	for i, c := range convs {
		c.Participants = byConversation[c.ID]
		if c.Participants == nil {
			c.Participants = []model.Participant{}
		}
		if m, ok := latestBy[c.ID]; ok {
			c.LastMessage = m.Preview()
		}
		c.UnreadCount = unread[c.ID]
		out[i] = c
	}
	return out, nil
}

// countUnread counts messages newer than the reader's last_read_at per
// conversation. A nil last_read_at means nothing was read yet.
func countUnread(stamps []model.MessageStamp, lastRead map[string]*time.Time) map[string]int {
	out := make(map[string]int)
	for _, st := range stamps {
		lr, ok := lastRead[st.ConversationID]
		if !ok {
			continue
		}
		if lr == nil || st.CreatedAt.After(*lr) {
			out[st.ConversationID]++
		}
	}
	return out
}

// matchesSearch looks for the lowercase query in the other participants'
// names and emails and in the latest message preview.
func matchesSearch(c model.Conversation, userID, query string) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			continue
		}
		if strings.Contains(strings.ToLower(p.FullName), query) || strings.Contains(strings.ToLower(p.Email), query) {
			return true
		}
	}
	return c.LastMessage != nil && strings.Contains(strings.ToLower(c.LastMessage.Content), query)
}

func (s *conversationService) Create(ctx context.Context, in CreateConversationInput) (*model.Conversation, error) {
	ctx, span := s.tracer.Start(ctx, "ConversationService.Create", trace.WithAttributes(
		attribute.String("context_type", in.ContextType),
	))
	defer span.End()

	if in.RecipientID == in.SenderID {
		return nil, fail(span, &ValidationError{Field: "recipient_id", Message: "recipient_id must be different from the sender"})
	}

	recipient, err := s.profiles.FindByID(ctx, in.RecipientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fail(span, &NotFoundError{Resource: "recipient"})
		}
		return nil, fail(span, dbError("find recipient", err))
	}

	existing, err := s.conversations.FindBetween(ctx, in.SenderID, in.RecipientID)
	switch {
	case err == nil:
		return nil, fail(span, &ConflictError{
			Message: "A conversation with this user already exists",
			Details: map[string]any{"conversation_id": existing},
		})
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fail(span, dbError("find existing conversation", err))
	}

	conv, msg, err := s.conversations.Create(ctx, repository.NewConversation{
		CreatedBy:      in.SenderID,
		ParticipantIDs: []string{in.SenderID, in.RecipientID},
		ContextType:    in.ContextType,
		ContextID:      in.ContextID,
		InitialMessage: in.InitialMessage,
		SentAt:         s.now(),
	})
	if err != nil {
		return nil, fail(span, dbError("create conversation", err))
	}

	participants, err := s.conversations.Participants(ctx, []string{conv.ID})
	if err != nil {
		return nil, fail(span, dbError("load participants", err))
	}
	conv.Participants = participants
	conv.LastMessage = msg.Preview()
	conv.UnreadCount = 0
	span.SetAttributes(attribute.String("conversation.id", conv.ID))

	senderName := participantName(participants, in.SenderID)
	s.mailer.Go(ctx, notify.TemplateNewMessage, func(ctx context.Context, n notify.Notifier) error {
		return n.NewMessage(ctx, notify.NewMessage{
			RecipientEmail: recipient.Email,
			RecipientName:  recipient.FullName,
			SenderName:     senderName,
			Content:        msg.Content,
			ConversationID: conv.ID,
		})
	})

	return conv, nil
}

func (s *conversationService) Get(ctx context.Context, userID, conversationID string, limit, offset int) (*ConversationThread, error) {
	ctx, span := s.tracer.Start(ctx, "ConversationService.Get", trace.WithAttributes(
		attribute.String("conversation.id", conversationID),
	))
	defer span.End()

	conv, err := s.findForUser(ctx, userID, conversationID)
	if err != nil {
		return nil, fail(span, err)
	}

	assembled, err := s.assemble(ctx, userID, []model.Conversation{*conv})
	if err != nil {
		return nil, fail(span, err)
	}

	page, err := s.messages.ListByConversation(ctx, conversationID, normalizePage(limit, offset, DefaultMessageLimit))
	if err != nil {
		return nil, fail(span, dbError("list messages", err))
	}

	return &ConversationThread{Conversation: &assembled[0], Messages: page.Items, Total: page.Total}, nil
}

func (s *conversationService) SendMessage(ctx context.Context, userID, conversationID, content string) (*model.Message, error) {
	ctx, span := s.tracer.Start(ctx, "ConversationService.SendMessage", trace.WithAttributes(
		attribute.String("conversation.id", conversationID),
	))
	defer span.End()

	if _, err := s.findForUser(ctx, userID, conversationID); err != nil {
		return nil, fail(span, err)
	}

	stored, err := s.messages.Create(ctx, &model.Message{
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        content,
		CreatedAt:      s.now(),
	})
	if err != nil {
		return nil, fail(span, dbError("create message", err))
	}

	s.mailer.Go(ctx, notify.TemplateNewMessage, func(ctx context.Context, n notify.Notifier) error {
		participants, err := s.conversations.Participants(ctx, []string{conversationID})
		if err != nil {
			return err
		}
		senderName := participantName(participants, userID)
		var errs []error
		for _, p := range participants {
			if p.UserID == userID {
				continue
			}
			errs = append(errs, n.NewMessage(ctx, notify.NewMessage{
				RecipientEmail: p.Email,
				RecipientName:  p.FullName,
				SenderName:     senderName,
				Content:        stored.Content,
				ConversationID: conversationID,
			}))
		}
		return errors.Join(errs...)
	})

	return stored, nil
}

func (s *conversationService) MarkRead(ctx context.Context, userID, conversationID string) (*ReadReceipt, error) {
	at := s.now()
	if err := s.conversations.MarkRead(ctx, conversationID, userID, at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "conversation"}
		}
		return nil, dbError("mark conversation read", err)
	}
	return &ReadReceipt{ConversationID: conversationID, LastReadAt: at}, nil
}

func (s *conversationService) UnreadTotal(ctx context.Context, userID string) (int, error) {
	n, err := s.messages.UnreadTotal(ctx, userID)
	if err != nil {
		return 0, dbError("count unread messages", err)
	}
	return n, nil
}

// findForUser hides conversations the user is not part of behind NotFound.
func (s *conversationService) findForUser(ctx context.Context, userID, conversationID string) (*model.Conversation, error) {
	conv, err := s.conversations.FindForUser(ctx, conversationID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "conversation"}
		}
		return nil, dbError("find conversation", err)
	}
	return conv, nil
}

func participantName(ps []model.Participant, userID string) string {
	for _, p := range ps {
		if p.UserID == userID {
			return model.Profile{FullName: p.FullName, Email: p.Email}.DisplayName()
		}
	}
	return ""
}

func normalizePage(limit, offset, def int) repository.PageQuery {
	if limit <= 0 {
		limit = def
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.PageQuery{Limit: limit, Offset: offset}
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
