package accounthandler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"policygen/internal/domain/account"
	"policygen/internal/domain/billing"
	"policygen/internal/platform/config"
	"policygen/internal/platform/requestctx"
	"policygen/internal/transport/http/api"
	"policygen/internal/transport/http/middleware"
	"policygen/internal/transport/http/shared"
)

type Handler struct {
	Store   *account.Store
	Billing *billing.Service
	Config  config.Config
}

func NewHandler(store *account.Store, billingSvc *billing.Service, cfg config.Config) *Handler {
	return &Handler{Store: store, Billing: billingSvc, Config: cfg}
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}

	profile, err := h.Store.GetProfile(r.Context(), user.UserID)
	if errors.Is(err, account.ErrProfileNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "profile not found", requestctx.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_failed", "failed to load profile", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, profile, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}

	var payload updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	name := strings.TrimSpace(payload.Name)
	address := strings.ToLower(strings.TrimSpace(payload.Email))

	v := shared.NewValidator()
	v.Required("name", name, "name is required")
	v.Required("email", address, "email is required")
	if address != "" && !strings.Contains(address, "@") {
		v.Add("email", "must be a valid email address")
	}
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	taken, err := h.Store.EmailTaken(r.Context(), address, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_failed", "failed to update profile", requestctx.GetRequestID(r.Context()))
		return
	}
	if taken {
		api.Fail(w, http.StatusConflict, "email_taken", "an account with this email already exists", requestctx.GetRequestID(r.Context()))
		return
	}

	if err := h.Store.UpdateProfile(r.Context(), user.UserID, name, address); err != nil {
		api.Fail(w, http.StatusInternalServerError, "update_failed", "failed to update profile", requestctx.GetRequestID(r.Context()))
		return
	}

	profile, err := h.Store.GetProfile(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_failed", "failed to load profile", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, profile, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}

	if err := r.ParseMultipartForm(h.Config.MaxUploadBytes); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid multipart payload", requestctx.GetRequestID(r.Context()))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "image file is required", requestctx.GetRequestID(r.Context()))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		api.Fail(w, http.StatusBadRequest, "unsupported_type", "image must be png, jpeg or webp", requestctx.GetRequestID(r.Context()))
		return
	}

	if err := os.MkdirAll(h.Config.UploadDir, 0o755); err != nil {
		api.Fail(w, http.StatusInternalServerError, "upload_failed", "failed to store image", requestctx.GetRequestID(r.Context()))
		return
	}
	fileName := uuid.NewString() + ext
	dstPath := filepath.Join(h.Config.UploadDir, fileName)
	dst, err := os.Create(dstPath)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "upload_failed", "failed to store image", requestctx.GetRequestID(r.Context()))
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, io.LimitReader(file, h.Config.MaxUploadBytes)); err != nil {
		api.Fail(w, http.StatusInternalServerError, "upload_failed", "failed to store image", requestctx.GetRequestID(r.Context()))
		return
	}

	imagePath := "/uploads/" + fileName
	if err := h.Store.SetImage(r.Context(), user.UserID, imagePath); err != nil {
		api.Fail(w, http.StatusInternalServerError, "upload_failed", "failed to store image", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"image": imagePath}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleGetSubscription(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}

	sub, err := h.Billing.GetSubscription(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_failed", "failed to load subscription", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, sub, requestctx.GetRequestID(r.Context()))
}
