package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/lineup-editor/internal/pitch"
	"github.com/jstittsworth/lineup-editor/internal/services"
	"github.com/jstittsworth/lineup-editor/pkg/utils"
)

type SessionHandler struct {
	sessions *services.SessionManager
	logger   *logrus.Logger
}

func NewSessionHandler(sessions *services.SessionManager, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

type CreateSessionRequest struct {
	MatchID string `json:"match_id" binding:"required"`
}

type SessionResponse struct {
	ID      string      `json:"id"`
	MatchID string      `json:"match_id"`
	State   pitch.State `json:"state"`
}

type MoveResponse struct {
	Move  pitch.Move  `json:"move"`
	State pitch.State `json:"state"`
}

type SelectRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
}

type MoveRequest struct {
	Kind           pitch.MoveKind `json:"kind" binding:"required"`
	Team           pitch.Side     `json:"team" binding:"required"`
	PlayerID       string         `json:"player_id" binding:"required"`
	TargetPlayerID string         `json:"target_player_id"`
	PositionID     string         `json:"position_id"`
}

type FormationRequest struct {
	Formation string `json:"formation" binding:"required"`
}

type SeekRequest struct {
	Minute *int `json:"minute" binding:"required"`
}

// session resolves the :id parameter, answering 404 itself
func (h *SessionHandler) session(c *gin.Context) (*services.Session, bool) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		sendDomainError(c, err)
		return nil, false
	}
	return sess, true
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), req.MatchID)
	if err != nil {
		sendDomainError(c, err)
		return
	}

	utils.SendCreated(c, SessionResponse{ID: sess.ID, MatchID: sess.MatchID, State: sess.Editor.State()})
}

func (h *SessionHandler) ListSessions(c *gin.Context) {
	infos := h.sessions.List()
	utils.SendSuccessWithMeta(c, infos, &utils.Meta{Total: int64(len(infos))})
}

// GetState returns the full state tuple of the session
func (h *SessionHandler) GetState(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	utils.SendSuccess(c, SessionResponse{ID: sess.ID, MatchID: sess.MatchID, State: sess.Editor.State()})
}

// CloseSession persists pending snapshots and closes the editor
func (h *SessionHandler) CloseSession(c *gin.Context) {
	if err := h.sessions.Close(c.Request.Context(), c.Param("id")); err != nil {
		sendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, gin.H{"closed": true})
}

// SaveSession writes the snapshot history to the database
func (h *SessionHandler) SaveSession(c *gin.Context) {
	id := c.Param("id")
	if err := h.sessions.Persist(c.Request.Context(), id); err != nil {
		sendDomainError(c, err)
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snapshots := sess.Editor.Snapshots()
	utils.SendSuccessWithMeta(c, gin.H{"saved": len(snapshots)}, &utils.Meta{Total: int64(len(snapshots))})
}

func (h *SessionHandler) ListSnapshots(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snapshots := sess.Editor.Snapshots()
	utils.SendSuccessWithMeta(c, snapshots, &utils.Meta{Total: int64(len(snapshots))})
}

// CaptureSnapshot records the working board at the current minute
func (h *SessionHandler) CaptureSnapshot(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snap, err := sess.SaveSnapshot()
	if err != nil {
		sendDomainError(c, err)
		return
	}
	utils.SendCreated(c, snap)
}

func (h *SessionHandler) Select(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if err := sess.Editor.Select(req.PlayerID); err != nil {
		sendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, sess.Editor.State())
}

func (h *SessionHandler) ChooseSwap(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Editor.ChooseSwap(); err != nil {
		sendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, sess.Editor.State())
}

// Resolve applies the armed player to a clicked position or player
func (h *SessionHandler) Resolve(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var target pitch.Target
	if err := c.ShouldBindJSON(&target); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if target.Kind != pitch.TargetPosition && target.Kind != pitch.TargetPlayer {
		utils.SendValidationError(c, "Invalid target", fmt.Sprintf("unknown target kind %q", target.Kind))
		return
	}

	mv, err := sess.Editor.Resolve(target)
	if err != nil {
		sendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, MoveResponse{Move: mv, State: sess.Editor.State()})
}

func (h *SessionHandler) Cancel(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Editor.Cancel(); err != nil {
		sendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, sess.Editor.State())
}

// ApplyMove runs a movement without going through the selection
func (h *SessionHandler) ApplyMove(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	var (
		mv  pitch.Move
		err error
	)
	switch req.Kind {
	case pitch.MovePlace:
		if req.PositionID == "" {
			utils.SendValidationError(c, "Invalid move", "position_id is required")
			return
		}
		mv, err = sess.Editor.MoveToEmptyPosition(req.PlayerID, req.PositionID, req.Team)
	case pitch.MoveSwap, pitch.MoveSubstitution:
		if req.TargetPlayerID == "" {
			utils.SendValidationError(c, "Invalid move", "target_player_id is required")
			return
		}
		if req.Kind == pitch.MoveSwap {
			mv, err = sess.Editor.SwapPitchPlayers(req.PlayerID, req.TargetPlayerID, req.Team)
		} else {
			mv, err = sess.Editor.SwapPitchWithBench(req.PlayerID, req.TargetPlayerID, req.Team)
		}
	default:
		utils.SendValidationError(c, "Invalid move", fmt.Sprintf("unknown move kind %q", req.Kind))
		return
	}
	if err != nil {
		sendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, MoveResponse{Move: mv, State: sess.Editor.State()})
}

func (h *SessionHandler) SetFormation(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req FormationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	mv, err := sess.Editor.SetFormation(pitch.Side(c.Param("team")), req.Formation)
	if err != nil {
		sendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, MoveResponse{Move: mv, State: sess.Editor.State()})
}

func (h *SessionHandler) Play(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	started := sess.Editor.Play()
	state := sess.Editor.State()
	utils.SendSuccessWithMeta(c, gin.H{"started": started, "state": state}, &utils.Meta{CurrentTime: &state.CurrentTime})
}

func (h *SessionHandler) Pause(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.Editor.Pause()
	state := sess.Editor.State()
	utils.SendSuccessWithMeta(c, state, &utils.Meta{CurrentTime: &state.CurrentTime})
}

// Seek jumps to a minute, clamped to the match length
func (h *SessionHandler) Seek(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req SeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	if _, err := sess.Editor.Seek(*req.Minute); err != nil {
		sendDomainError(c, err)
		return
	}
	state := sess.Editor.State()
	utils.SendSuccessWithMeta(c, state, &utils.Meta{CurrentTime: &state.CurrentTime})
}
