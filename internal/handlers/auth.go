package handlers

import (
	"errors"
	"time"

	"tcw1/internal/config"
	"tcw1/internal/services/auth"
	"tcw1/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
)

type AuthHandler struct {
	authService auth.Service
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

func NewAuthHandler(authService auth.Service, accessTTL, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
	}
}

// Signup creates an account and signs the new user in.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var input auth.SignupInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	result, err := h.authService.Signup(c.UserContext(), input)
	if err != nil {
		return handleError(c, err)
	}

	h.setAuthCookies(c, result.Tokens)
	return response.Created(c, "Account created", authPayload(result))
}

// Login authenticates with email and password. Accounts with two-factor
// enabled must resend the request with totpToken set.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input auth.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}
	input.IP = c.IP()
	input.UserAgent = c.Get(fiber.HeaderUserAgent)

	result, err := h.authService.Login(c.UserContext(), input)
	if err != nil {
		if errors.Is(err, auth.ErrTwoFactorRequired) {
			return response.Success(c, "Two-factor code required", fiber.Map{
				"requiresTwoFactor": true,
			})
		}
		return handleError(c, err)
	}

	h.setAuthCookies(c, result.Tokens)
	return response.Success(c, "Login successful", authPayload(result))
}

// RefreshToken reads the refresh token from the cookie, falling back to the body.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := c.Cookies(refreshCookie)
	if refreshToken == "" {
		var input struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.BodyParser(&input); err != nil {
			return response.Unauthorized(c, "Refresh token not provided")
		}
		refreshToken = input.RefreshToken
	}
	if refreshToken == "" {
		return response.Unauthorized(c, "Refresh token not provided")
	}

	tokens, err := h.authService.RefreshTokens(c.UserContext(), refreshToken)
	if err != nil {
		return handleError(c, err)
	}

	h.setAuthCookies(c, *tokens)
	return response.Success(c, "", tokens)
}

// Logout revokes every token issued to the caller.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	if err := h.authService.Logout(c.UserContext(), claims.UserID); err != nil {
		return handleError(c, err)
	}

	h.clearAuthCookies(c)
	return response.Success(c, "Successfully logged out", nil)
}

// Verify returns the profile behind a valid access token.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	user, err := h.authService.GetUserByID(c.UserContext(), claims.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", fiber.Map{"user": user.Profile()})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	var input struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	if err := h.authService.ChangePassword(c.UserContext(), claims.UserID, input.OldPassword, input.NewPassword); err != nil {
		return handleError(c, err)
	}

	h.clearAuthCookies(c)
	return response.Success(c, "Password changed successfully", nil)
}

// SetupTwoFactor returns the TOTP secret and backup codes. They are shown once.
func (h *AuthHandler) SetupTwoFactor(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	setup, err := h.authService.SetupTwoFactor(c.UserContext(), claims.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Scan the secret with an authenticator app", setup)
}

func (h *AuthHandler) VerifyTwoFactor(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	var input struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	if err := h.authService.VerifyAndEnableTwoFactor(c.UserContext(), claims.UserID, input.Token); err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Two-factor authentication enabled", nil)
}

func (h *AuthHandler) DisableTwoFactor(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	var input struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	if err := h.authService.DisableTwoFactor(c.UserContext(), claims.UserID, input.Password); err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Two-factor authentication disabled", nil)
}

func authPayload(result *auth.Result) fiber.Map {
	return fiber.Map{
		"user":         result.User.Profile(),
		"accessToken":  result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
	}
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, tokens auth.TokenPair) {
	c.Cookie(&fiber.Cookie{
		Name:     accessCookie,
		Value:    tokens.AccessToken,
		HTTPOnly: true,
		Secure:   config.IsProduction(),
		Path:     "/",
		SameSite: "Strict",
		MaxAge:   int(h.accessTTL.Seconds()),
	})

	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    tokens.RefreshToken,
		HTTPOnly: true,
		Secure:   config.IsProduction(),
		Path:     "/",
		SameSite: "Strict",
		MaxAge:   int(h.refreshTTL.Seconds()),
	})
}

func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{accessCookie, refreshCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			Secure:   config.IsProduction(),
			Path:     "/",
		})
	}
}
