package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/spaceshare/internal/model"
	"github.com/iliyamo/spaceshare/internal/queue"
)

func messageIDs(ms []model.Message) []uint64 {
	out := make([]uint64, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

func TestMessages(t *testing.T) {
	a := newTestAPI(t)
	a.seedBasics(t)
	require.Equal(t, http.StatusCreated, a.call(t, http.MethodPost, "/api/users/register",
		`{"username":"sam","email":"sam@example.com","password":"password123","confirmPassword":"password123","fullName":"Sam"}`, nil))

	send := func(body string) model.Message {
		var m model.Message
		require.Equal(t, http.StatusCreated, a.call(t, http.MethodPost, "/api/messages", body, &m))
		return m
	}
	m1 := send(`{"senderId":2,"receiverId":1,"listingId":1,"message":"Is it dry?"}`)
	send(`{"senderId":1,"receiverId":2,"message":"Yes, very."}`)
	send(`{"senderId":3,"receiverId":1,"message":"Hello"}`)
	require.False(t, m1.IsRead)

	var ms []model.Message
	require.Equal(t, http.StatusOK, a.call(t, http.MethodGet, "/api/messages/1/2", "", &ms))
	require.Equal(t, []uint64{1, 2}, messageIDs(ms))
	require.Equal(t, http.StatusOK, a.call(t, http.MethodGet, "/api/messages/2/1", "", &ms))
	require.Equal(t, []uint64{1, 2}, messageIDs(ms))

	require.Equal(t, http.StatusOK, a.call(t, http.MethodGet, "/api/messages/1", "", &ms))
	require.Equal(t, []uint64{3, 2, 1}, messageIDs(ms))
	require.Equal(t, http.StatusOK, a.call(t, http.MethodGet, "/api/messages/2", "", &ms))
	require.Equal(t, []uint64{2, 1}, messageIDs(ms))

	var m model.Message
	for range 2 {
		require.Equal(t, http.StatusOK, a.call(t, http.MethodPatch, "/api/messages/1/read", "", &m))
		require.True(t, m.IsRead)
	}
	require.Equal(t, http.StatusNotFound, a.call(t, http.MethodPatch, "/api/messages/9/read", "", nil))

	keys := a.events.Keys()
	require.Equal(t, []string{queue.MessageSent, queue.MessageSent, queue.MessageSent, queue.MessageRead, queue.MessageRead}, keys[len(keys)-5:])
}

func TestCreateMessageRejectsBadInput(t *testing.T) {
	a := newTestAPI(t)
	a.seedBasics(t)

	var body errBody
	require.Equal(t, http.StatusBadRequest, a.call(t, http.MethodPost, "/api/messages",
		`{"senderId":1,"receiverId":2,"message":""}`, &body))
	require.Contains(t, body.Details, validationDetail("message", "required"))

	require.Equal(t, http.StatusBadRequest, a.call(t, http.MethodPost, "/api/messages",
		`{"senderId":1,"receiverId":7,"message":"hi"}`, &body))
	require.Equal(t, "receiver does not exist", body.Error)

	require.Equal(t, http.StatusBadRequest, a.call(t, http.MethodPost, "/api/messages",
		`{"senderId":1,"receiverId":2,"bookingId":4,"message":"hi"}`, &body))
	require.Equal(t, "booking does not exist", body.Error)

	require.Equal(t, http.StatusBadRequest, a.call(t, http.MethodGet, "/api/messages/1/x", "", nil))
}
