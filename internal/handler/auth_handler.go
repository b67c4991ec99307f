package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"callchat/internal/app/user"
	"callchat/internal/pkg/auth/jwt"
	"callchat/internal/pkg/errs"
	"callchat/internal/pkg/logx"
	"callchat/internal/pkg/req"
	"callchat/internal/pkg/resp"
)

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string      `json:"token"`
	User  user.Public `json:"user"`
}

// HandleRegister creates an account and signs the caller in.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		input.Username = strings.TrimSpace(input.Username)
		input.Email = user.NormalizeEmail(input.Email)

		if !user.ValidUsername(input.Username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername, user.MinUsernameLength, user.MaxUsernameLength))
			return
		}

		if !user.ValidEmail(input.Email) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}

		if !user.ValidPassword(input.Password) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword, user.MinPasswordLength, user.MaxPasswordLength))
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		u := &user.User{
			Username:       input.Username,
			Email:          input.Email,
			PasswordHash:   string(hash),
			ProfilePicture: user.AvatarURL(input.Username, ""),
		}

		if err := deps.Users.Create(r.Context(), u); err != nil {
			if errors.Is(err, user.ErrAlreadyExists) {
				logx.Warn("Registration conflict: user already exists", "email", input.Email)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(err, "Failed to create user")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		respondWithToken(w, r, deps, u, http.StatusCreated)
	}
}

// HandleLogin verifies credentials and issues an identity token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		email := user.NormalizeEmail(input.Email)

		u, err := deps.Users.GetByEmail(r.Context(), email)
		if err != nil {
			if !errors.Is(err, user.ErrNotFound) {
				logx.Error(err, "Login: user lookup failed", "email", email)
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("Login: password mismatch", "user_id", u.ID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		respondWithToken(w, r, deps, u, http.StatusOK)
	}
}

func respondWithToken(w http.ResponseWriter, r *http.Request, deps *AppDeps, u *user.User, status int) {
	token, err := jwt.GenerateToken(u.ID.String(), deps.Config.JWTSecret, jwt.IdentityExpiration)
	if err != nil {
		logx.Error(err, "Failed to generate token", "user_id", u.ID.String())
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return
	}

	data := AuthResponse{Token: token, User: u.Public()}
	if status == http.StatusCreated {
		resp.RespondCreated(w, r, data)
		return
	}
	resp.RespondSuccess(w, r, data)
}

// currentUserID returns the authenticated user of r.
func currentUserID(r *http.Request) (uuid.UUID, *errs.CustomError) {
	payload := jwt.GetPayloadFromContext(r)
	if payload == nil {
		return uuid.Nil, errs.NewError(errs.ErrUnauthorized)
	}

	id, err := uuid.Parse(payload.UserID)
	if err != nil {
		return uuid.Nil, errs.NewError(errs.ErrUnauthorized)
	}

	return id, nil
}
