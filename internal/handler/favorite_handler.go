package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/birdsong/internal/middleware"
	"github.com/hitoshi/birdsong/internal/model"
)

// FavoriteServiceInterface はお気に入りハンドラーが必要とするサービスインターフェース。
type FavoriteServiceInterface interface {
	Add(ctx context.Context, userID string, in favoriteInput) (*model.AudioFavorite, error)
	List(ctx context.Context, userID string) ([]*model.AudioFavorite, error)
	Remove(ctx context.Context, userID, favoriteID string) error
}

// FavoriteHandler はお気に入り録音のHTTPハンドラー。
type FavoriteHandler struct {
	service FavoriteServiceInterface
}

// NewFavoriteHandler はFavoriteHandlerを生成する。
func NewFavoriteHandler(service FavoriteServiceInterface) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

type addFavoriteRequest struct {
	En       string `json:"en"`
	Cnt      string `json:"cnt"`
	Loc      string `json:"loc"`
	Time     string `json:"time"`
	URLSound string `json:"url_sound"`
}

// favoriteInput はサービス層に渡すお気に入りの入力。
type favoriteInput struct {
	En       string
	Cnt      string
	Loc      string
	Time     string
	URLSound string
}

type favoriteResponse struct {
	ID        string    `json:"id"`
	En        string    `json:"en"`
	Cnt       string    `json:"cnt"`
	Loc       string    `json:"loc"`
	Time      string    `json:"time"`
	URLSound  string    `json:"url_sound"`
	CreatedAt time.Time `json:"created_at"`
}

// List はログインユーザーのお気に入りを返す。
// GET /favorites
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	favorites, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]favoriteResponse, len(favorites))
	for i, f := range favorites {
		resp[i] = toFavoriteResponse(f)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Add はお気に入りを登録し、登録内容を返す。
// POST /favorites
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req addFavoriteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	f, err := h.service.Add(r.Context(), userID, favoriteInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toFavoriteResponse(f))
}

// Delete はお気に入りを削除する。
// DELETE /favorites/{id}
func (h *FavoriteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if err := h.service.Remove(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeMsg(w, http.StatusOK, "Favorite deleted successful")
}

func toFavoriteResponse(f *model.AudioFavorite) favoriteResponse {
	return favoriteResponse{
		ID:        f.ID,
		En:        f.En,
		Cnt:       f.Cnt,
		Loc:       f.Loc,
		Time:      f.Time,
		URLSound:  f.URLSound,
		CreatedAt: f.CreatedAt,
	}
}
