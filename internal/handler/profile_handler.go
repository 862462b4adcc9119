package handler

import (
	"net/http"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// ProfileHandler serves the signed-in user's profile and account.
type ProfileHandler struct {
	profileService service.ProfileService
	logger         zerolog.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profileService service.ProfileService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		logger:         logger.With().Str("handler", "profile").Logger(),
	}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.Get(r.Context(), middleware.IdentityFrom(r.Context()))
	if err != nil {
		writeServiceError(w, err, "Failed to load profile", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Save handles PUT /api/profile.
func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req model.ProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	profile, err := h.profileService.Save(r.Context(), middleware.IdentityFrom(r.Context()), &req)
	if err != nil {
		writeServiceError(w, err, "Failed to save profile", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// DeleteAccount handles DELETE /api/account. The identity provider account
// itself is managed by the provider; this removes everything stored here.
func (h *ProfileHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFrom(r.Context())
	if id == nil {
		writeError(w, http.StatusUnauthorized, model.ErrUnauthorised.Message, h.logger)
		return
	}

	if err := h.profileService.DeleteAccount(r.Context(), id.UserID); err != nil {
		writeServiceError(w, err, "Failed to delete account", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ContactHandler accepts contact form submissions.
type ContactHandler struct {
	contactService service.ContactService
	logger         zerolog.Logger
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(contactService service.ContactService, logger zerolog.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		logger:         logger.With().Str("handler", "contact").Logger(),
	}
}

// Submit handles POST /api/contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.ContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	for _, v := range []string{req.Name, req.Email, req.Subject, req.Message} {
		if strings.TrimSpace(v) == "" {
			writeError(w, http.StatusBadRequest, "All fields are required", h.logger)
			return
		}
	}

	if err := h.contactService.Submit(r.Context(), &req); err != nil {
		writeServiceError(w, err, "Failed to send email", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
