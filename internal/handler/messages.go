package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/spaceshare/internal/model"
	"github.com/iliyamo/spaceshare/internal/queue"
)

// MessageHandler serves direct messages between users.
type MessageHandler struct {
	Deps
}

func NewMessageHandler(d Deps) *MessageHandler { return &MessageHandler{Deps: d} }

type messageReq struct {
	SenderID   uint64  `json:"senderId" validate:"required"`
	ReceiverID uint64  `json:"receiverId" validate:"required"`
	ListingID  *uint64 `json:"listingId" validate:"omitempty,gt=0"`
	BookingID  *uint64 `json:"bookingId" validate:"omitempty,gt=0"`
	Message    string  `json:"message" validate:"required"`
}

func messageEvent(m *model.Message, at string) queue.MessageEvent {
	return queue.MessageEvent{MessageID: m.ID, SenderID: m.SenderID, ReceiverID: m.ReceiverID, OccurredAt: at}
}

// ByUser returns every message the user sent or received, newest first.
func (h *MessageHandler) ByUser(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	ms, err := h.Store.GetMessagesByUser(ctx, id)
	if err != nil {
		return h.fail(c, err, "get user messages")
	}
	return c.JSON(http.StatusOK, ms)
}

// Conversation returns the messages between two users, oldest first.
func (h *MessageHandler) Conversation(c echo.Context) error {
	a, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	b, ok := pathID(c, "otherId")
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	ms, err := h.Store.GetMessagesBetweenUsers(ctx, a, b)
	if err != nil {
		return h.fail(c, err, "get conversation")
	}
	return c.JSON(http.StatusOK, ms)
}

// Create sends a message. New messages are always unread.
func (h *MessageHandler) Create(c echo.Context) error {
	var req messageReq
	if ok, err := bind(c, &req); !ok {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	refs := []ref{
		userRef(h.Store, "sender", req.SenderID),
		userRef(h.Store, "receiver", req.ReceiverID),
	}
	if req.ListingID != nil {
		refs = append(refs, listingRef(h.Store, "listing", *req.ListingID))
	}
	if req.BookingID != nil {
		refs = append(refs, bookingRef(h.Store, "booking", *req.BookingID))
	}
	name, err := missingRef(ctx, refs...)
	if err != nil {
		return h.fail(c, err, "check message references")
	}
	if name != "" {
		return missing(c, name)
	}

	m, err := h.Store.CreateMessage(ctx, model.MessageFields{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		ListingID:  req.ListingID,
		BookingID:  req.BookingID,
		Message:    req.Message,
	})
	if err != nil {
		return h.fail(c, err, "create message")
	}
	h.publish(c, queue.MessageSent, messageEvent(m, h.now()))
	return c.JSON(http.StatusCreated, m)
}

// MarkRead flags a message as read. Repeating the call is harmless.
func (h *MessageHandler) MarkRead(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	m, err := h.Store.MarkMessageAsRead(ctx, id)
	if err != nil {
		return h.fail(c, err, "mark message read")
	}
	h.publish(c, queue.MessageRead, messageEvent(m, h.now()))
	return c.JSON(http.StatusOK, m)
}
