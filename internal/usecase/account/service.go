package account

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"fieldtour/internal/bootstrap/logging"
	"fieldtour/internal/domain/survey"
	"fieldtour/internal/errs"
	"fieldtour/internal/ports"
)

// Cache keys. The token key is also read by the API client's token source.
const (
	KeyToken   = "token"
	KeyUser    = "userData"
	KeyProfile = "userProfileData"
)

// Service handles the account surface around the sync core: login, the
// cached profile fallback, and password reset.
type Service struct {
	api   ports.AccountAPI
	cache ports.Cache
}

func NewService(api ports.AccountAPI, cache ports.Cache) *Service {
	return &Service{api: api, cache: cache}
}

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	if err := survey.ValidateCredentials(email, password); err != nil {
		return User{}, err
	}

	result, err := s.api.Login(ctx, email, password)
	if err != nil {
		return User{}, errs.Wrap(err, "login")
	}

	user := User{ID: result.UserID, Name: result.UserName, Email: result.UserEmail}
	userJSON, err := json.Marshal(user)
	if err != nil {
		return User{}, errs.Wrap(err, "encode user snapshot")
	}

	if err := s.cache.Set(ctx, KeyToken, result.Token, 0); err != nil {
		return User{}, errs.Wrap(err, "persist token")
	}
	if err := s.cache.Set(ctx, KeyUser, string(userJSON), 0); err != nil {
		return User{}, errs.Wrap(err, "persist user snapshot")
	}

	logging.Info(logging.WithAttrs(ctx, slog.String("component", "account.service")),
		"login succeeded", slog.String("email", user.Email))
	return user, nil
}

func (s *Service) Logout(ctx context.Context) error {
	for _, key := range []string{KeyToken, KeyUser, KeyProfile} {
		if err := s.cache.Delete(ctx, key); err != nil {
			return errs.Wrapf(err, "clear %s", key)
		}
	}
	return nil
}

// Profile fetches the employee profile, falling back to the last cached
// snapshot when the server cannot be reached. With neither connectivity nor
// a cached copy the caller gets a distinguishable error.
func (s *Service) Profile(ctx context.Context) (ports.Profile, bool, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "account.service"))

	profile, err := s.api.Profile(ctx)
	if err == nil {
		raw, marshalErr := json.Marshal(profile)
		if marshalErr == nil {
			if cacheErr := s.cache.Set(ctx, KeyProfile, string(raw), 0); cacheErr != nil {
				logging.Warn(logCtx, "profile snapshot not cached", slog.Any("err", errs.Loggable(cacheErr)))
			}
		}
		return profile, false, nil
	}

	logging.Warn(logCtx, "profile fetch failed, trying cached snapshot", slog.Any("err", errs.Loggable(err)))

	raw, found, cacheErr := s.cache.Get(ctx, KeyProfile)
	if cacheErr != nil || !found {
		return ports.Profile{}, false, fmt.Errorf("%w: %w", survey.ErrNoConnectionCache, err)
	}

	var cached ports.Profile
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return ports.Profile{}, false, errs.Wrap(err, "decode cached profile")
	}
	return cached, true, nil
}

func (s *Service) ChangePassword(ctx context.Context, current, next, confirm string) error {
	if err := survey.ValidatePasswordChange(current, next, confirm); err != nil {
		return err
	}
	if err := s.api.ResetPassword(ctx, current, next, confirm); err != nil {
		return errs.Wrap(err, "reset password")
	}
	return nil
}

// TokenSource exposes the cached bearer token for the API client.
func TokenSource(cache ports.Cache) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		token, found, err := cache.Get(ctx, KeyToken)
		if err != nil {
			return "", errs.Wrap(err, "read cached token")
		}
		if !found {
			return "", nil
		}
		return token, nil
	}
}
