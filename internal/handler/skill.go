package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/clawhub/clawhub/internal/apperror"
	"github.com/clawhub/clawhub/internal/auth"
	"github.com/clawhub/clawhub/internal/service"
	"github.com/clawhub/clawhub/internal/skillfile"
)

// maxPublishBytes caps the request body on publish. Readme limits are
// enforced again in the service; this is the transport-level backstop.
const maxPublishBytes = 1 << 20

// SkillHandler exposes the skill registry: browse is public, publish and
// delete require an authenticated user who passes the account age gate.
type SkillHandler struct {
	skills  *service.SkillService
	ageGate *service.AgeGateService
	logger  *slog.Logger
}

func NewSkillHandler(skills *service.SkillService, ageGate *service.AgeGateService, logger *slog.Logger) *SkillHandler {
	return &SkillHandler{
		skills:  skills,
		ageGate: ageGate,
		logger:  logger,
	}
}

// HandleList returns a page of skills, newest first.
//
// HTTP: GET /api/skills?limit=20&offset=0
func (h *SkillHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	skills, err := h.skills.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"skills": skills,
		"count":  len(skills),
	})
}

// HandleGet returns a single skill with its readme.
//
// HTTP: GET /api/skills/{slug}
func (h *SkillHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	skill, err := h.skills.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, skill)
}

// HandlePublish accepts a raw SKILL.md document as the request body,
// parses its frontmatter, and creates or republishes the skill.
//
// HTTP: POST /api/skills
// Auth: required, plus the account age gate
func (h *SkillHandler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	// The gate runs before the body is parsed: a too-new account gets the
	// same answer regardless of what it uploads.
	if err := h.ageGate.RequireAccountAge(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPublishBytes))
	if err != nil {
		writeError(w, apperror.ValidationFailed("body", "request body too large or unreadable"))
		return
	}

	manifest, readme, err := skillfile.Parse(string(body))
	if err != nil {
		writeError(w, err)
		return
	}

	skill, err := h.skills.Publish(r.Context(), userID, manifest, readme)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, skill)
}

// HandleDelete removes a skill owned by the caller.
//
// HTTP: DELETE /api/skills/{slug}
// Auth: required
func (h *SkillHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	if err := h.skills.Delete(r.Context(), userID, chi.URLParam(r, "slug")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "skill deleted"})
}
