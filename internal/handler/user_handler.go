package handler

import (
	"errors"
	"net/http"
	"strings"

	"callchat/internal/app/storage"
	"callchat/internal/app/user"
	"callchat/internal/pkg/errs"
	"callchat/internal/pkg/logx"
	"callchat/internal/pkg/req"
	"callchat/internal/pkg/resp"
)

// UpdateProfileInput holds optional profile changes. AvatarKey refers to an
// object uploaded through a presigned URL and wins over ProfilePicture.
type UpdateProfileInput struct {
	Username       string `json:"username"`
	Status         string `json:"status"`
	ProfilePicture string `json:"profilePicture"`
	AvatarKey      string `json:"avatarKey"`
}

type PresignAvatarInput struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// Contact is a user as listed to another user. IsOnline is the persisted flag,
// Connected is the live registry state.
type Contact struct {
	user.Public
	Connected bool `json:"connected"`
}

const maxStatusLength = 140

// HandleGetProfile returns the caller's own profile.
func HandleGetProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, customErr := currentUserID(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		u, err := deps.Users.GetByID(r.Context(), id)
		if err != nil {
			respondUserError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, u.Public())
	}
}

// HandleUpdateProfile applies profile changes of the caller.
func HandleUpdateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, customErr := currentUserID(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input UpdateProfileInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		upd := user.ProfileUpdate{
			Username:       strings.TrimSpace(input.Username),
			Status:         strings.TrimSpace(input.Status),
			ProfilePicture: strings.TrimSpace(input.ProfilePicture),
		}

		if upd.Username != "" && !user.ValidUsername(upd.Username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername, user.MinUsernameLength, user.MaxUsernameLength))
			return
		}

		if len([]rune(upd.Status)) > maxStatusLength {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if upd.ProfilePicture != "" && !strings.HasPrefix(upd.ProfilePicture, "https://") &&
			!strings.HasPrefix(upd.ProfilePicture, "http://") {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if input.AvatarKey != "" {
			url, customErr := resolveAvatar(r, deps, id.String(), input.AvatarKey)
			if customErr != nil {
				resp.RespondError(w, r, customErr)
				return
			}
			upd.ProfilePicture = url
		}

		previous, err := deps.Users.GetByID(r.Context(), id)
		if err != nil {
			respondUserError(w, r, err)
			return
		}

		updated, err := deps.Users.UpdateProfile(r.Context(), id, upd)
		if err != nil {
			respondUserError(w, r, err)
			return
		}

		if previous.ProfilePicture != updated.ProfilePicture {
			deleteReplacedAvatar(r, deps, id.String(), previous.ProfilePicture)
		}

		resp.RespondSuccess(w, r, updated.Public())
	}
}

// resolveAvatar checks an uploaded avatar object and returns its public URL.
func resolveAvatar(r *http.Request, deps *AppDeps, userID, key string) (string, *errs.CustomError) {
	if deps.Storage == nil {
		return "", errs.NewError(errs.ErrFileStorageFailed)
	}

	if !storage.OwnsAvatarKey(userID, key) {
		return "", errs.NewError(errs.ErrInvalidParams)
	}

	info, err := deps.Storage.Stat(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return "", errs.NewError(errs.ErrInvalidParams)
		}
		return "", errs.NewError(errs.ErrFileStorageFailed)
	}

	if customErr := storage.ValidateUploaded(info); customErr != nil {
		return "", customErr
	}

	return deps.Storage.PublicURL(key), nil
}

// deleteReplacedAvatar removes the caller's previous uploaded avatar, if it was one.
// Failures only leave an orphaned object behind.
func deleteReplacedAvatar(r *http.Request, deps *AppDeps, userID, previousURL string) {
	if deps.Storage == nil {
		return
	}

	key, ok := deps.Storage.KeyFromURL(previousURL)
	if !ok || !storage.OwnsAvatarKey(userID, key) {
		return
	}

	if err := deps.Storage.Delete(r.Context(), key); err != nil {
		logx.Warn("Failed to delete replaced avatar", "user_id", userID, "key", key, "error", err.Error())
	}
}

// HandleListContacts lists every other user with their presence.
func HandleListContacts(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, customErr := currentUserID(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		users, err := deps.Users.ListContacts(r.Context(), id)
		if err != nil {
			logx.Error(err, "Failed to list contacts", "user_id", id.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		contacts := make([]Contact, 0, len(users))
		for _, u := range users {
			contacts = append(contacts, Contact{
				Public:    u.Public(),
				Connected: deps.Presence.IsOnline(u.ID.String()),
			})
		}

		resp.RespondSuccess(w, r, contacts)
	}
}

// HandlePresignAvatar returns a presigned URL the caller can PUT a new avatar to.
// The returned key is later passed to the profile update.
func HandlePresignAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, customErr := currentUserID(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if deps.Storage == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		var input PresignAvatarInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := storage.ValidateAvatar(input.FileName, input.MimeType, input.FileSize); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		key := storage.NewAvatarKey(id.String(), input.FileName)

		url, err := deps.Storage.PresignUpload(
			r.Context(),
			key,
			strings.ToLower(input.MimeType),
			input.FileSize,
			storage.PresignDuration,
		)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"presignedUrl": url,
			"avatarKey":    key,
			"publicUrl":    deps.Storage.PublicURL(key),
		})
	}
}

func respondUserError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
	case errors.Is(err, user.ErrAlreadyExists):
		resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
	default:
		logx.Error(err, "User store failure")
		resp.RespondError(w, r, errs.From(err))
	}
}
