// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/mileusna/useragent"

	"github.com/olegiv/tcms-go/internal/apperr"
	"github.com/olegiv/tcms-go/internal/auth"
	"github.com/olegiv/tcms-go/internal/middleware"
	"github.com/olegiv/tcms-go/internal/store"
)

// Auth messages.
const (
	MsgMissingCredentials = "Please provide username and password"
	MsgInvalidCredentials = "Invalid credentials"
	MsgLoginSuccessful    = "Login successful"
	MsgMissingPasswords   = "Please provide current and new password"
	MsgWrongPassword      = "Current password is incorrect"
	MsgPasswordUpdated    = "Password updated successfully"
)

// UserSummary is the public view of an admin user returned on login.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

// Login handles POST /auth/login. Unknown users and wrong passwords get the
// same answer after the same bcrypt work.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	input, err := decodeJSON(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	username := stringField(input, "username")
	password := stringField(input, "password")
	if username == "" || password == "" {
		h.writeError(w, r, apperr.BadRequest(MsgMissingCredentials))
		return
	}

	ctx := r.Context()
	ip := middleware.ClientIP(r)

	if locked, remaining := h.login.IsLocked(username); locked {
		h.logger.WarnContext(ctx, "login attempt on locked account", "username", username, "ip", ip)
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(remaining.Seconds()))))
		h.writeError(w, r, apperr.TooManyRequests(middleware.MsgAccountLocked))
		return
	}

	user, err := h.users.GetByUsername(ctx, username)
	if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		h.writeError(w, r, err)
		return
	}

	valid := false
	if err == nil {
		if valid, err = auth.CheckPassword(password, user.PasswordHash); err != nil {
			h.writeError(w, r, err)
			return
		}
	} else {
		auth.BurnPasswordCheck(password)
	}

	if !valid {
		if locked := h.login.RecordFailure(username); !locked {
			h.logger.InfoContext(ctx, "failed login", "username", username, "ip", ip,
				"remaining_attempts", h.login.RemainingAttempts(username))
		}
		h.writeError(w, r, apperr.Unauthorized(MsgInvalidCredentials))
		return
	}
	h.login.RecordSuccess(username)

	token, err := h.tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if auth.NeedsRehash(user.PasswordHash) {
		h.rehash(r, user, password)
	}
	h.logLogin(r, user, ip)

	WriteMessage(w, MsgLoginSuccessful, LoginResponse{
		Token: token,
		User: UserSummary{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		},
	})
}

// rehash upgrades a stored hash to the current bcrypt cost.
func (h *Handler) rehash(r *http.Request, user store.User, password string) {
	hash, err := auth.HashPassword(password)
	if err == nil {
		err = h.users.UpdatePassword(r.Context(), user.ID, hash)
	}
	if err != nil {
		h.logger.WarnContext(r.Context(), "password rehash failed", "username", user.Username, "error", err)
	}
}

// logLogin records a successful login with the client's browser and
// country.
func (h *Handler) logLogin(r *http.Request, user store.User, ip string) {
	ua := useragent.Parse(r.UserAgent())
	device := "desktop"
	switch {
	case ua.Mobile:
		device = "mobile"
	case ua.Tablet:
		device = "tablet"
	case ua.Bot:
		device = "bot"
	}

	attrs := []any{
		"username", user.Username,
		"role", user.Role,
		"ip", ip,
		"browser", fmt.Sprintf("%s %s", ua.Name, ua.Version),
		"os", ua.OS,
		"device", device,
	}
	if h.geo != nil {
		if country := h.geo.Country(ip); country != "" {
			attrs = append(attrs, "country", country)
		}
	}
	h.logger.InfoContext(r.Context(), "admin login", attrs...)
}

// Me handles GET /auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		h.writeError(w, r, apperr.Unauthorized(middleware.MsgNoToken))
		return
	}

	user, err := h.users.GetByID(r.Context(), claims.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	WriteSuccess(w, user)
}

// ChangePassword handles PUT /auth/password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		h.writeError(w, r, apperr.Unauthorized(middleware.MsgNoToken))
		return
	}

	input, err := decodeJSON(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	current := stringField(input, "currentPassword")
	next := stringField(input, "newPassword")
	if current == "" || next == "" {
		h.writeError(w, r, apperr.BadRequest(MsgMissingPasswords))
		return
	}
	if len([]rune(next)) < auth.MinPasswordLength {
		h.writeError(w, r, apperr.Validation(apperr.FieldError{
			Field:   "newPassword",
			Message: fmt.Sprintf("Password must be at least %d characters", auth.MinPasswordLength),
		}))
		return
	}

	ctx := r.Context()
	user, err := h.users.GetByID(ctx, claims.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	valid, err := auth.CheckPassword(current, user.PasswordHash)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !valid {
		h.writeError(w, r, apperr.Unauthorized(MsgWrongPassword))
		return
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "password changed", "username", user.Username)
	WriteMessage(w, MsgPasswordUpdated, nil)
}
