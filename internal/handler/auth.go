package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/netprime/streaming-catalog/internal/config"
	"github.com/netprime/streaming-catalog/internal/model"
	"github.com/netprime/streaming-catalog/internal/repository"
	"github.com/netprime/streaming-catalog/internal/utils"
)

// AccountStore is the slice of the user repository the auth endpoints use.
type AccountStore interface {
	Create(ctx context.Context, name, email, password string, cost int) (*model.User, error)
	GetByEmailWithPassword(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    AccountStore
	Sessions *repository.SessionRepo
}

func NewAuthHandler(cfg config.Config, users AccountStore, sessions *repository.SessionRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Sessions: sessions}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}
type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates an account and returns the user with a signed token.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := c.Validate(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Please provide name, email and a password of at least 6 characters")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return respondErr(c, http.StatusBadRequest, "User already exists with this email")
		}
		return respondErr(c, http.StatusInternalServerError, "Could not create user")
	}

	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID.Hex(), u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not issue token")
	}

	return respondMsg(c, http.StatusCreated, "User registered successfully", echo.Map{
		"user":  u,
		"token": tok.Token,
	})
}

// Login verifies credentials and returns the user with a fresh token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := c.Validate(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Please provide email and password")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmailWithPassword(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusUnauthorized, "Invalid credentials")
		}
		return respondErr(c, http.StatusInternalServerError, "Login failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return respondErr(c, http.StatusUnauthorized, "Invalid credentials")
	}

	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID.Hex(), u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not issue token")
	}

	u.PasswordHash = "" // never serialized, but don't carry it further either
	return respondMsg(c, http.StatusOK, "Logged in successfully", echo.Map{
		"user":  u,
		"token": tok.Token,
	})
}

// Logout revokes the presented token until its natural expiry.  Without a
// session store (Redis down) the revocation is skipped and logout is
// client-side only.
func (h *AuthHandler) Logout(c echo.Context) error {
	jti, _ := c.Get("jti").(string)
	if exp, ok := c.Get("token_exp").(time.Time); ok && jti != "" {
		ttl := time.Until(exp)
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		_ = h.Sessions.Revoke(ctx, jti, ttl)
	}
	return respondMsg(c, http.StatusOK, "Logged out successfully", nil)
}

// Me returns the authenticated user's record.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "Unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, "User not found")
		}
		return respondErr(c, http.StatusInternalServerError, "Could not load user")
	}
	return respondData(c, http.StatusOK, u)
}
