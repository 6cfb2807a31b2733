package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"time"
)

// ProfileRepository captures the persistence operations needed by the profile service.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile Profile, passwordHash string) (Profile, error)
	GetProfile(ctx context.Context, id string) (Profile, error)
	UpdateProfile(ctx context.Context, profile Profile) (Profile, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	DeleteProfile(ctx context.Context, id string) error
	ListProfiles(ctx context.Context, activeOnly bool) ([]Profile, error)
}

// ProfileService orchestrates validation, authorization, and persistence for profiles.
type ProfileService struct {
	profiles     ProfileRepository
	hashPassword PasswordHasher
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewProfileService wires dependencies for the profile service.
func NewProfileService(profiles ProfileRepository, hash PasswordHasher, idGenerator func() string, now func() time.Time) *ProfileService {
	return NewProfileServiceWithLogger(profiles, hash, idGenerator, now, nil)
}

// NewProfileServiceWithLogger wires dependencies and a logger for the profile service.
func NewProfileServiceWithLogger(profiles ProfileRepository, hash PasswordHasher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ProfileService {
	if hash == nil {
		hash = DefaultPasswordHasher
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ProfileService{profiles: profiles, hashPassword: hash, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *ProfileService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ProfileService", operation, attrs...)
}

// CreateProfile validates input and persists a new profile for administrators.
func (s *ProfileService) CreateProfile(ctx context.Context, params CreateProfileParams) (profile Profile, err error) {
	if s == nil {
		return Profile{}, fmt.Errorf("ProfileService is nil")
	}

	logger := s.loggerWith(ctx, "CreateProfile", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "profile creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "profile created", "profile_id", profile.ID, "role", profile.Role)
	}()

	if !params.Principal.IsAdmin() {
		return Profile{}, ErrUnauthorized
	}

	normalized := normalizeProfileInput(params.Input)
	vErr := validateProfileInput(normalized)
	if len(normalized.Password) < MinPasswordLength {
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if err = vErr.orNil(); err != nil {
		return Profile{}, err
	}

	hash, err := s.hashPassword(normalized.Password)
	if err != nil {
		return Profile{}, fmt.Errorf("hash password: %w", err)
	}

	profile = Profile{
		ID:         s.idGenerator(),
		Email:      normalized.Email,
		FullName:   normalized.FullName,
		Role:       normalized.Role,
		Department: normalized.Department,
		Active:     boolOr(normalized.Active, true),
		CreatedAt:  s.now(),
	}
	profile.UpdatedAt = profile.CreatedAt

	if s.profiles == nil {
		return profile, nil
	}

	created, err := s.profiles.CreateProfile(ctx, profile, hash)
	if err != nil {
		return Profile{}, mapRepoError(err, "")
	}
	return created, nil
}

// UpdateProfile validates input and updates an existing profile for administrators.
// A non-empty password resets the stored hash.
func (s *ProfileService) UpdateProfile(ctx context.Context, params UpdateProfileParams) (profile Profile, err error) {
	if s == nil {
		return Profile{}, fmt.Errorf("ProfileService is nil")
	}

	logger := s.loggerWith(ctx, "UpdateProfile", "principal_id", params.Principal.UserID, "profile_id", params.ProfileID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "profile update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "profile updated")
	}()

	if !params.Principal.IsAdmin() {
		return Profile{}, ErrUnauthorized
	}
	if s.profiles == nil {
		return Profile{}, fmt.Errorf("profile repository not configured")
	}

	existing, err := s.profiles.GetProfile(ctx, params.ProfileID)
	if err != nil {
		return Profile{}, mapRepoError(err, "")
	}

	normalized := normalizeProfileInput(params.Input)
	vErr := validateProfileInput(normalized)
	if normalized.Password != "" && len(normalized.Password) < MinPasswordLength {
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if existing.ID == params.Principal.UserID {
		if normalized.Role != RoleAdmin {
			vErr.add("role", "administrators cannot demote themselves")
		}
		if !boolOr(normalized.Active, existing.Active) {
			vErr.add("is_active", "administrators cannot deactivate themselves")
		}
	}
	if err = vErr.orNil(); err != nil {
		return Profile{}, err
	}

	now := s.now()
	updated := existing
	updated.Email = normalized.Email
	updated.FullName = normalized.FullName
	updated.Role = normalized.Role
	updated.Department = normalized.Department
	updated.Active = boolOr(normalized.Active, existing.Active)
	updated.UpdatedAt = now

	profile, err = s.profiles.UpdateProfile(ctx, updated)
	if err != nil {
		return Profile{}, mapRepoError(err, "")
	}

	if normalized.Password != "" {
		var hash string
		hash, err = s.hashPassword(normalized.Password)
		if err != nil {
			return Profile{}, fmt.Errorf("hash password: %w", err)
		}
		if err = s.profiles.UpdatePasswordHash(ctx, profile.ID, hash, now); err != nil {
			return Profile{}, mapRepoError(err, "")
		}
	}

	return profile, nil
}

// DeleteProfile removes a profile when requested by an administrator.
func (s *ProfileService) DeleteProfile(ctx context.Context, principal Principal, profileID string) (err error) {
	if s == nil {
		return fmt.Errorf("ProfileService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteProfile", "principal_id", principal.UserID, "profile_id", profileID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "profile deletion failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "profile deleted")
	}()

	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if s.profiles == nil {
		return fmt.Errorf("profile repository not configured")
	}
	if profileID == principal.UserID {
		vErr := &ValidationError{}
		vErr.add("id", "administrators cannot delete themselves")
		return vErr
	}

	return mapRepoError(s.profiles.DeleteProfile(ctx, profileID), "")
}

// GetProfile returns a profile to its owner or to a manager.
func (s *ProfileService) GetProfile(ctx context.Context, principal Principal, profileID string) (Profile, error) {
	if s == nil {
		return Profile{}, fmt.Errorf("ProfileService is nil")
	}
	if !principal.Authenticated() {
		return Profile{}, ErrUnauthorized
	}
	if profileID != principal.UserID && !principal.CanManage() {
		return Profile{}, ErrUnauthorized
	}
	if s.profiles == nil {
		return Profile{}, fmt.Errorf("profile repository not configured")
	}

	profile, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		err = mapRepoError(err, "")
		if !errors.Is(err, ErrNotFound) {
			s.loggerWith(ctx, "GetProfile", "profile_id", profileID).ErrorContext(ctx, "profile lookup failed", "error", err, "error_kind", ErrorKind(err))
		}
		return Profile{}, err
	}
	return profile, nil
}

// ListProfiles returns profiles ordered by email for managers and administrators.
func (s *ProfileService) ListProfiles(ctx context.Context, principal Principal, activeOnly bool) ([]Profile, error) {
	if s == nil {
		return nil, fmt.Errorf("ProfileService is nil")
	}
	if !principal.CanManage() {
		return nil, ErrUnauthorized
	}
	if s.profiles == nil {
		return nil, nil
	}

	profiles, err := s.profiles.ListProfiles(ctx, activeOnly)
	if err != nil {
		err = mapRepoError(err, "")
		s.loggerWith(ctx, "ListProfiles").ErrorContext(ctx, "profile listing failed", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}

	out := make([]Profile, len(profiles))
	copy(out, profiles)

	sort.Slice(out, func(i, j int) bool {
		if strings.EqualFold(out[i].Email, out[j].Email) {
			return out[i].ID < out[j].ID
		}
		return strings.ToLower(out[i].Email) < strings.ToLower(out[j].Email)
	})

	return out, nil
}

func normalizeProfileInput(input ProfileInput) ProfileInput {
	return ProfileInput{
		Email:      strings.ToLower(strings.TrimSpace(input.Email)),
		FullName:   strings.TrimSpace(input.FullName),
		Role:       Role(strings.ToLower(strings.TrimSpace(string(input.Role)))),
		Department: normalizeOptionalString(input.Department),
		Active:     input.Active,
		Password:   input.Password,
	}
}

func validateProfileInput(input ProfileInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}

	if input.FullName == "" {
		vErr.add("full_name", "full name is required")
	}

	if !input.Role.Valid() {
		vErr.add("role", "role must be admin, manager or employee")
	}

	return vErr
}

// normalizeOptionalString trims an optional string and drops it when blank.
func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
