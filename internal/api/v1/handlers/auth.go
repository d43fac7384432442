package handlers

import (
	"task-manager/internal/api/response"
	"task-manager/internal/auth"
	"task-manager/internal/middleware"
	"task-manager/internal/models"

	"github.com/gofiber/fiber/v2"
)

const maxPasswordBytes = 72

type registerRequest struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	User         *models.User `json:"user,omitempty"`
}

func newTokenResponse(pair *auth.TokenPair, user *models.User) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    pair.ExpiresIn,
		User:         user,
	}
}

// Register membuat user baru dengan role "user".
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	// bcrypt membatasi byte, bukan karakter
	if len(req.Password) > maxPasswordBytes {
		return response.FieldError(c, "password", "must be at most 72 bytes")
	}

	user, err := h.deps.Auth.Register(c.UserContext(), req.Email, req.Password, req.FullName)
	if err != nil {
		return response.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login menukar email dan password dengan pasangan token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	user, err := h.deps.Auth.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return response.Error(c, err)
	}
	pair, err := h.deps.Auth.IssueTokens(user)
	if err != nil {
		return response.Error(c, err)
	}
	return c.JSON(newTokenResponse(pair, user))
}

func (h *Handler) Me(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}

// Refresh menerbitkan pasangan token baru dari refresh token yang masih
// berlaku. Refresh token lama tidak dicabut.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	pair, err := h.deps.Auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return response.Error(c, err)
	}
	return c.JSON(newTokenResponse(pair, nil))
}

// Logout mencabut access token yang dipakai (dan refresh token bila
// dikirim). Tanpa Redis, token tetap berlaku sampai kedaluwarsa.
func (h *Handler) Logout(c *fiber.Ctx) error {
	var req logoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	if err := h.deps.Auth.Logout(c.UserContext(), middleware.CurrentToken(c), req.RefreshToken); err != nil {
		return response.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
