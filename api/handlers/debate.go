package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/linesmerrill/ai-court-api/api"
	"github.com/linesmerrill/ai-court-api/config"
	"github.com/linesmerrill/ai-court-api/debate"
	"github.com/linesmerrill/ai-court-api/models"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const wsWriteWait = 10 * time.Second

// Debate exported for testing purposes
type Debate struct {
	Engine       *debate.Engine
	PollInterval time.Duration
}

type roleRequest struct {
	Role string `json:"role"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type submitRequest struct {
	Confirm bool `json:"confirm"`
}

func (d Debate) writeView(w http.ResponseWriter, r *http.Request, status int, code string) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	view, err := d.Engine.View(ctx, code, api.ClientID(r.Context()))
	if err != nil {
		api.ErrorResponse("failed to get debate room", w, err)
		return
	}
	api.WriteJSON(w, status, view)
}

// CreateDebateHandler opens a new debate room
func (d Debate) CreateDebateHandler(w http.ResponseWriter, r *http.Request) {
	var req debate.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	room, err := d.Engine.Create(ctx, req)
	if err != nil {
		api.ErrorResponse("failed to create debate room", w, err)
		return
	}
	w.Header().Set("Location", "/debate/room/"+room.RoomCode)
	api.WriteJSON(w, http.StatusCreated, room)
}

// DebateHandler returns the room as the caller sees it
func (d Debate) DebateHandler(w http.ResponseWriter, r *http.Request) {
	d.writeView(w, r, http.StatusOK, mux.Vars(r)["room_code"])
}

// JoinDebateHandler checks that a room code can be joined
func (d Debate) JoinDebateHandler(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["room_code"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	room, err := d.Engine.Join(ctx, code)
	if err != nil {
		api.ErrorResponse("failed to join debate room", w, err)
		return
	}
	d.writeView(w, r, http.StatusOK, room.RoomCode)
}

// ChooseRoleHandler binds the caller to a side of the debate
func (d Debate) ChooseRoleHandler(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["room_code"]

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		api.ErrorResponse("failed to choose role", w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := d.Engine.ChooseRole(ctx, code, api.ClientID(r.Context()), role); err != nil {
		api.ErrorResponse("failed to choose role", w, err)
		return
	}
	d.writeView(w, r, http.StatusOK, code)
}

// PostMessageHandler appends a chat message for the caller's side
func (d Debate) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["room_code"]

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := d.Engine.PostMessage(ctx, code, api.ClientID(r.Context()), req.Message); err != nil {
		api.ErrorResponse("failed to post message", w, err)
		return
	}
	d.writeView(w, r, http.StatusCreated, code)
}

// SubmitDebateHandler ends the debate and asks for the verdict. The caller has
// to confirm; a completed room answers with its stored verdict.
func (d Debate) SubmitDebateHandler(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["room_code"]

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	p := debate.NewParticipant(d.Engine, code, api.ClientID(r.Context()))
	view, err := p.SubmitNow(r.Context(), req.Confirm)
	if err != nil && !errors.Is(err, debate.ErrAlreadyCompleted) {
		api.ErrorResponse("failed to submit debate", w, err)
		return
	}
	if view.Room == nil {
		d.writeView(w, r, http.StatusOK, code)
		return
	}
	api.WriteJSON(w, http.StatusOK, view)
}

// DebateStreamHandler upgrades to a websocket and pushes the caller's view of
// the room on every change and timer tick until the client goes away
func (d Debate) DebateStreamHandler(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["room_code"]
	clientID := api.ClientID(r.Context())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	_, err := d.Engine.Find(ctx, code)
	cancel()
	if err != nil {
		api.ErrorResponse("failed to get debate room", w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade error", "roomCode", code, "error", err)
		return
	}
	defer conn.Close()

	streamCtx, stop := context.WithCancel(context.Background())
	defer stop()

	var writeMu sync.Mutex
	p := debate.NewParticipant(d.Engine, code, clientID)
	if d.PollInterval > 0 {
		p.PollInterval = d.PollInterval
	}
	p.OnChange = func(v models.RoomView) {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(v); err != nil {
			zap.S().Debugw("websocket write failed", "roomCode", code, "error", err)
			stop()
		}
	}

	go func() {
		if err := p.Run(streamCtx); err != nil && !errors.Is(err, context.Canceled) {
			zap.S().Warnw("debate stream stopped", "roomCode", code, "error", err)
		}
		stop()
	}()

	zap.S().Infow("debate stream opened", "roomCode", code, "client", clientID)
	// the client only ever closes; reading keeps the control frames flowing
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				stop()
				return
			}
		}
	}()
	<-streamCtx.Done()
	zap.S().Infow("debate stream closed", "roomCode", code, "client", clientID)
}
