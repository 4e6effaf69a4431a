package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/accounthub/internal/cache"
	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/geocoder89/accounthub/internal/utils"
	"github.com/gin-gonic/gin"
)

// AccountService is the orchestration core behind every route. Kept as an
// interface so handler tests can run against a fake.
type AccountService interface {
	Signup(ctx context.Context, req user.SignupRequest) (user.User, error)
	Login(ctx context.Context, req user.LoginRequest) (user.LoginResult, error)
	ForgotPassword(ctx context.Context, req user.ForgotPasswordRequest) error
	ListUsers(ctx context.Context) ([]user.User, error)
	GetUser(ctx context.Context, id int64) (user.User, error)
	UpdateUser(ctx context.Context, id int64, req user.UpdateProfileRequest) error
	DeleteUser(ctx context.Context, id int64) error
	DeleteAllUsers(ctx context.Context) error
}

type UsersHandler struct {
	svc   AccountService
	cache *cache.Cache
	log   *slog.Logger
}

func NewUsersHandler(svc AccountService, readCache *cache.Cache, log *slog.Logger) *UsersHandler {
	return &UsersHandler{
		svc:   svc,
		cache: readCache,
		log:   log,
	}
}

const opTimeout = 3 * time.Second

func (h *UsersHandler) opContext(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), opTimeout)
}

// bindLenient decodes the body without failing the request: a broken or empty
// body leaves zero values, which the service rejects with the operation's own
// validation message.
func bindLenient(ctx *gin.Context, out interface{}) {
	_ = ctx.ShouldBindJSON(out)
}

// pathID parses the :id param. A non-numeric id behaves like id 0 — an
// identity no row ever has — so reads miss and mutations no-op, matching the
// silent semantics for absent rows.
func pathID(ctx *gin.Context) int64 {
	id, _ := strconv.ParseInt(ctx.Param("id"), 10, 64)

	return id
}

func (h *UsersHandler) fail(ctx *gin.Context, op string, err error) {
	var verr *user.ValidationError

	switch {
	case errors.As(err, &verr):
		RespondBadRequest(ctx, verr.Message)
	case errors.Is(err, user.ErrDuplicate):
		RespondBadRequest(ctx, "Email or phone already exists")
	case errors.Is(err, user.ErrInvalidCredentials):
		RespondUnauthorized(ctx, "Invalid credentials")
	case errors.Is(err, user.ErrNotFound):
		RespondNotFound(ctx, "User not found")
	default:
		h.log.ErrorContext(ctx.Request.Context(), "store failure", "op", op, "err", err)
		RespondInternal(ctx)
	}
}

func (h *UsersHandler) Signup(ctx *gin.Context) {
	var req user.SignupRequest

	bindLenient(ctx, &req)

	cctx, cancel := h.opContext(ctx)
	defer cancel()

	_, err := h.svc.Signup(cctx, req)

	if err != nil {
		h.fail(ctx, "signup", err)
		return
	}

	h.cache.Clear()

	RespondMessage(ctx, http.StatusCreated, "User created successfully")
}

func (h *UsersHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	bindLenient(ctx, &req)

	cctx, cancel := h.opContext(ctx)
	defer cancel()

	res, err := h.svc.Login(cctx, req)

	if err != nil {
		h.fail(ctx, "login", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   res.Token,
		"userId":  res.User.ID,
		"email":   res.User.Email,
		"name":    res.User.Name,
	})
}

func (h *UsersHandler) ForgotPassword(ctx *gin.Context) {
	var req user.ForgotPasswordRequest

	bindLenient(ctx, &req)

	cctx, cancel := h.opContext(ctx)
	defer cancel()

	err := h.svc.ForgotPassword(cctx, req)

	if err != nil {
		h.fail(ctx, "forgot_password", err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "Password updated successfully")
}

func (h *UsersHandler) GetAllUsers(ctx *gin.Context) {
	key := utils.UsersListKey()

	if cached, ok := h.cache.Get(key); ok {
		if users, ok := cached.([]user.User); ok {
			RespondJSONWithETag(ctx, http.StatusOK, users)
			return
		}
	}

	cctx, cancel := h.opContext(ctx)
	defer cancel()

	users, err := h.svc.ListUsers(cctx)

	if err != nil {
		h.fail(ctx, "list_users", err)
		return
	}

	h.cache.Set(key, users)

	RespondJSONWithETag(ctx, http.StatusOK, users)
}

func (h *UsersHandler) GetUserByID(ctx *gin.Context) {
	id := pathID(ctx)
	key := utils.UserKey(id)

	if cached, ok := h.cache.Get(key); ok {
		if u, ok := cached.(user.User); ok {
			RespondJSONWithETag(ctx, http.StatusOK, u)
			return
		}
	}

	cctx, cancel := h.opContext(ctx)
	defer cancel()

	u, err := h.svc.GetUser(cctx, id)

	if err != nil {
		h.fail(ctx, "get_user", err)
		return
	}

	h.cache.Set(key, u)

	RespondJSONWithETag(ctx, http.StatusOK, u)
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	var req user.UpdateProfileRequest

	bindLenient(ctx, &req)

	cctx, cancel := h.opContext(ctx)
	defer cancel()

	err := h.svc.UpdateUser(cctx, pathID(ctx), req)

	if err != nil {
		h.fail(ctx, "update_user", err)
		return
	}

	h.cache.Clear()

	RespondMessage(ctx, http.StatusOK, "User updated successfully")
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	cctx, cancel := h.opContext(ctx)
	defer cancel()

	err := h.svc.DeleteUser(cctx, pathID(ctx))

	if err != nil {
		h.fail(ctx, "delete_user", err)
		return
	}

	h.cache.Clear()

	RespondMessage(ctx, http.StatusOK, "User deleted successfully")
}

func (h *UsersHandler) DeleteAllUsers(ctx *gin.Context) {
	cctx, cancel := h.opContext(ctx)
	defer cancel()

	err := h.svc.DeleteAllUsers(cctx)

	if err != nil {
		h.fail(ctx, "delete_all_users", err)
		return
	}

	h.cache.Clear()

	RespondMessage(ctx, http.StatusOK, "All users deleted successfully")
}
