package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/birdsong/internal/middleware"
	"github.com/hitoshi/birdsong/internal/model"
)

// CaptureServiceInterface は観察記録ハンドラーが必要とするサービスインターフェース。
type CaptureServiceInterface interface {
	Create(ctx context.Context, userID string, in captureInput) (*model.BirdCapture, error)
	ListMine(ctx context.Context, userID string) ([]*model.BirdCapture, error)
	ListPublic(ctx context.Context) ([]*model.BirdCapture, error)
}

// CaptureHandler は観察記録のHTTPハンドラー。
type CaptureHandler struct {
	service CaptureServiceInterface
}

// NewCaptureHandler はCaptureHandlerを生成する。
func NewCaptureHandler(service CaptureServiceInterface) *CaptureHandler {
	return &CaptureHandler{service: service}
}

// createCaptureRequest は観察記録作成リクエストのボディ。
// privacyは公開フラグとして扱う。publicでも指定できる。
// user_idは受け付けず、セッションのユーザーを所有者とする。
type createCaptureRequest struct {
	En      string `json:"en"`
	Cnt     string `json:"cnt"`
	Loc     string `json:"loc"`
	Time    string `json:"time"`
	Rmk     string `json:"rmk"`
	Privacy *bool  `json:"privacy"`
	Public  *bool  `json:"public"`
}

// captureInput はサービス層に渡す観察記録の入力。
type captureInput struct {
	En     string
	Cnt    string
	Loc    string
	Time   string
	Rmk    string
	Public bool
}

// captureResponse は観察記録のAPIレスポンス。
type captureResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	En        string    `json:"en"`
	Cnt       string    `json:"cnt"`
	Loc       string    `json:"loc"`
	Time      string    `json:"time"`
	Rmk       string    `json:"rmk"`
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"created_at"`
}

type createCaptureResponse struct {
	Msg     string          `json:"msg"`
	Capture captureResponse `json:"capture"`
}

// ListPublic は全ユーザーの公開観察記録を返す。
// GET /bird_captures/public
func (h *CaptureHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	captures, err := h.service.ListPublic(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCaptureResponses(captures))
}

// ListMine はログインユーザーの観察記録を返す。
// GET /bird_captures
func (h *CaptureHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	captures, err := h.service.ListMine(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCaptureResponses(captures))
}

// Create は観察記録を作成する。
// POST /bird_captures
func (h *CaptureHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req createCaptureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	in := captureInput{
		En:   req.En,
		Cnt:  req.Cnt,
		Loc:  req.Loc,
		Time: req.Time,
		Rmk:  req.Rmk,
	}
	switch {
	case req.Privacy != nil:
		in.Public = *req.Privacy
	case req.Public != nil:
		in.Public = *req.Public
	}

	c, err := h.service.Create(r.Context(), userID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createCaptureResponse{
		Msg:     "Bird capture added successfully.",
		Capture: toCaptureResponse(c),
	})
}

func toCaptureResponse(c *model.BirdCapture) captureResponse {
	return captureResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		En:        c.En,
		Cnt:       c.Cnt,
		Loc:       c.Loc,
		Time:      c.Time,
		Rmk:       c.Rmk,
		Public:    c.Public,
		CreatedAt: c.CreatedAt,
	}
}

func toCaptureResponses(captures []*model.BirdCapture) []captureResponse {
	resp := make([]captureResponse, len(captures))
	for i, c := range captures {
		resp[i] = toCaptureResponse(c)
	}
	return resp
}
