package endpoints

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/socvr/chatbot-go/pkg/chat"
	"github.com/socvr/chatbot-go/pkg/command"
	"github.com/socvr/chatbot-go/pkg/server"
	"github.com/socvr/chatbot-go/pkg/server/middleware"
)

// maxMessageBody bounds a webhook payload
const maxMessageBody = 1 << 20

// MessageRequest is what the bridge posts for every room message
type MessageRequest struct {
	Message chat.Message `json:"message"`
	// Users is directory metadata the bridge already knows: reputation and
	// display names of users the message may refer to
	Users []chat.User `json:"users,omitempty"`
}

// MessageResponse lists what the bot wants posted, in order
type MessageResponse struct {
	Handled bool     `json:"handled"`
	Replies []string `json:"replies"`
}

// RegisterMessagesEndpoint registers the chat webhook
func RegisterMessagesEndpoint(s *server.Server) {
	roomsRouter := s.Router.PathPrefix("/rooms").Subrouter()
	roomsRouter.Use(s.JWTMiddleware.Middleware)

	// POST /rooms/{room}/messages - Dispatch a chat message
	roomsRouter.HandleFunc("/{room:[0-9]+}/messages", handleMessage(s.Dispatcher, s.Log)).Methods("POST")
}

func handleMessage(dispatcher *command.Dispatcher, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID, err := strconv.Atoi(mux.Vars(r)["room"])
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid room id")
			return
		}

		var body MessageRequest
		decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBody))
		if err := decoder.Decode(&body); err != nil {
			respondWithError(w, http.StatusBadRequest, "malformed message: "+err.Error())
			return
		}
		if strings.TrimSpace(body.Message.Content) == "" || body.Message.Author.ProfileID == 0 {
			respondWithError(w, http.StatusBadRequest, "message content and author are required")
			return
		}

		msg := body.Message
		msg.RoomID = roomID

		// The author is always known to the room directory; the bridge may
		// add anyone else the message could refer to.
		room := chat.NewRecordingRoom(body.Users...)
		room.AddUser(msg.Author)

		bridge, _ := middleware.BridgeFromContext(r.Context())
		log := log.With(
			zap.String("bridge", bridge),
			zap.Int("room", roomID),
			zap.Int64("message_id", msg.ID),
		)

		handled, err := dispatcher.Dispatch(r.Context(), msg, room)
		if err != nil {
			log.Error("dispatch failed", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "internal error")
			return
		}

		replies := room.Posted()
		if replies == nil {
			replies = []string{}
		}
		respondWithJSON(w, http.StatusOK, MessageResponse{Handled: handled, Replies: replies})
	}
}
