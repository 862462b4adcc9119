package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/validation"

	"github.com/rs/zerolog"
)

// UserDataStore removes the per-user documents kept outside the database.
type UserDataStore interface {
	DeleteUserData(ctx context.Context, userID string) error
}

// profileService implements ProfileService.
type profileService struct {
	profiles repository.ProfileRepository
	userData UserDataStore
	logger   zerolog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(profiles repository.ProfileRepository, userData UserDataStore, logger zerolog.Logger) ProfileService {
	return &profileService{
		profiles: profiles,
		userData: userData,
		logger:   logger.With().Str("service", "profile").Logger(),
	}
}

func (s *profileService) Get(ctx context.Context, id *model.Identity) (*model.UserProfile, error) {
	if id == nil || id.UserID == "" {
		return nil, model.ErrUnauthorised
	}

	profile, err := s.profiles.Get(ctx, id.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id.UserID).Msg("failed to get profile")
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return &model.UserProfile{UserID: id.UserID, Name: id.Name, Email: id.Email}, nil
	}
	return profile, nil
}

// Save creates the profile on first use.
func (s *profileService) Save(ctx context.Context, id *model.Identity, req *model.ProfileRequest) (*model.UserProfile, error) {
	if id == nil || id.UserID == "" {
		return nil, model.ErrUnauthorised
	}
	if req == nil {
		req = &model.ProfileRequest{}
	}

	data := map[string]string{
		"name":  req.Name,
		"email": req.Email,
		"phone": req.Phone,
	}
	rules := validation.ProfileRules()
	if req.Address != nil {
		data["address"] = req.Address.Address
		data["city"] = req.Address.City
		data["zipCode"] = req.Address.ZipCode
		rules["address"] = validation.ValidateAddress
		rules["city"] = validation.ValidateCity
		rules["zipCode"] = validation.ZipCodeRule(req.Address.Country)
	}

	form := validation.ValidateFormData(data, rules)
	if !form.Valid {
		return nil, &model.ValidationError{Fields: form.Errors}
	}

	profile := &model.UserProfile{
		UserID: id.UserID,
		Name:   validation.SanitizeName(req.Name),
		Email:  validation.SanitizeEmail(req.Email),
		Phone:  validation.SanitizePhone(req.Phone),
	}
	if req.Address != nil {
		profile.Address = &model.ShippingAddress{
			Address: validation.SanitizeAddress(req.Address.Address),
			City:    validation.SanitizeString(req.Address.City),
			ZipCode: strings.ToUpper(validation.SanitizeString(req.Address.ZipCode)),
			Country: strings.ToUpper(validation.SanitizeString(req.Address.Country)),
		}
	}

	if err := s.profiles.Save(ctx, profile); err != nil {
		s.logger.Error().Err(err).Str("user_id", id.UserID).Msg("failed to save profile")
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	saved, err := s.profiles.Get(ctx, id.UserID)
	if err != nil || saved == nil {
		return profile, nil
	}
	return saved, nil
}

func (s *profileService) DeleteAccount(ctx context.Context, userID string) error {
	if userID == "" {
		return model.ErrUnauthorised
	}

	if err := s.userData.DeleteUserData(ctx, userID); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to delete cart and wishlist")
		return fmt.Errorf("failed to delete user data: %w", err)
	}
	if err := s.profiles.Delete(ctx, userID); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to delete profile")
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Msg("account deleted")
	return nil
}

func (s *profileService) SetAdmin(ctx context.Context, userID string, isAdmin bool) error {
	if strings.TrimSpace(userID) == "" {
		return &model.ValidationError{Fields: map[string]string{"userId": "User ID is required"}}
	}

	if err := s.profiles.SetAdmin(ctx, userID, isAdmin); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to set admin flag")
		return fmt.Errorf("failed to set admin flag: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Bool("is_admin", isAdmin).Msg("admin flag updated")
	return nil
}

func (s *profileService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile != nil && profile.IsAdmin, nil
}
