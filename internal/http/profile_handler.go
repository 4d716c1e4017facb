package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"devconnect/internal/domain"
	"devconnect/internal/github"
	"devconnect/internal/service"
)

// ProfileHandler mantiene dependencias para endpoints de perfiles.
type ProfileHandler struct {
	logger      *zap.Logger
	profileServ *service.ProfileService
	githubCli   github.Client
}

// NewProfileHandler crea una instancia de ProfileHandler con dependencias necesarias.
func NewProfileHandler(logger *zap.Logger, profileServ *service.ProfileService, githubCli github.Client) *ProfileHandler {
	return &ProfileHandler{
		logger:      logger,
		profileServ: profileServ,
		githubCli:   githubCli,
	}
}

type socialFields struct {
	Youtube   string `json:"youtube"`
	Twitter   string `json:"twitter"`
	Facebook  string `json:"facebook"`
	Linkedin  string `json:"linkedin"`
	Instagram string `json:"instagram"`
}

func (f socialFields) toDomain() domain.SocialLinks {
	return domain.SocialLinks{
		Youtube:   f.Youtube,
		Twitter:   f.Twitter,
		Facebook:  f.Facebook,
		Linkedin:  f.Linkedin,
		Instagram: f.Instagram,
	}
}

// GetProfiles maneja GET /api/profile.
func (h *ProfileHandler) GetProfiles(c *gin.Context) {
	profiles, err := h.profileServ.GetAll(c.Request.Context())
	if err != nil {
		h.logger.Error("get profiles failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server Error"})
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// GetProfile maneja GET /api/profile/:id.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id := c.Param("id")
	profile, err := h.profileServ.GetByID(c.Request.Context(), id)
	if err != nil {
		// Un id malformado es el mismo not-found que uno desconocido.
		if errors.Is(err, service.ErrProfileNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"msg": fmt.Sprintf("Profile id %s not found", id)})
			return
		}
		h.logger.Error("get profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server Error"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetMyProfile maneja GET /api/profile/me.
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Not authorised to access this route"})
		return
	}

	profile, err := h.profileServ.GetByUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "There is no profile for this user"})
			return
		}
		h.logger.Error("get my profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server Error"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// CreateProfile maneja POST /api/profile.
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Not authorised to access this route"})
		return
	}

	var req struct {
		Status         string `json:"status" binding:"required"`
		Skills         string `json:"skills" binding:"required"`
		Company        string `json:"company"`
		Website        string `json:"website"`
		Location       string `json:"location"`
		Bio            string `json:"bio"`
		GithubUsername string `json:"github_username"`
		socialFields
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create profile request", zap.Error(err))
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	skills := splitSkills(req.Skills)
	if len(skills) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"msg": "Skills is required"}}})
		return
	}

	profile, err := h.profileServ.Create(c.Request.Context(), userID, service.CreateProfileInput{
		Status:         req.Status,
		Skills:         skills,
		Company:        req.Company,
		Website:        req.Website,
		Location:       req.Location,
		Bio:            req.Bio,
		GithubUsername: req.GithubUsername,
		Social:         req.toDomain(),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileExists):
			c.JSON(http.StatusBadRequest, gin.H{"msg": "User profile already exists"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"msg": "invalid request body"}}})
		default:
			h.logger.Error("create profile failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server Error"})
		}
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// UpdateProfile maneja PUT /api/profile/me. Merge parcial de campos de
// primer nivel; experience y education tienen sus propias rutas.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Not authorised to access this route"})
		return
	}

	var req struct {
		Status         *string       `json:"status"`
		Skills         *string       `json:"skills"`
		Company        *string       `json:"company"`
		Website        *string       `json:"website"`
		Location       *string       `json:"location"`
		Bio            *string       `json:"bio"`
		GithubUsername *string       `json:"github_username"`
		Social         *socialFields `json:"social"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update profile request", zap.Error(err))
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	input := service.UpdateProfileInput{
		Status:         req.Status,
		Company:        req.Company,
		Website:        req.Website,
		Location:       req.Location,
		Bio:            req.Bio,
		GithubUsername: req.GithubUsername,
	}
	if req.Skills != nil {
		skills := splitSkills(*req.Skills)
		if len(skills) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"msg": "Skills is required"}}})
			return
		}
		input.Skills = skills
	}
	if req.Social != nil {
		social := req.Social.toDomain()
		input.Social = &social
	}

	profile, err := h.profileServ.Update(c.Request.Context(), userID, "", input)
	if err != nil {
		h.respondProfileMutationError(c, err, "update profile failed")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// DeleteProfile maneja DELETE /api/profile/me. Idempotente.
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Not authorised to access this route"})
		return
	}

	if err := h.profileServ.Delete(c.Request.Context(), userID); err != nil {
		h.logger.Error("delete profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Profile deleted"})
}

type experienceRequest struct {
	Title       string `json:"title" binding:"required"`
	Company     string `json:"company" binding:"required"`
	Location    string `json:"location"`
	From        string `json:"from" binding:"required"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// AddExperience maneja POST /api/profile/experience.
func (h *ProfileHandler) AddExperience(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Not authorised to access this route"})
		return
	}

	var req experienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid add experience request", zap.Error(err))
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	from, err := parseDate(req.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"msg": "From date is invalid"}}})
		return
	}
	to, err := parseOptionalDate(req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"msg": "To date is invalid"}}})
		return
	}

	profile, err := h.profileServ.AddExperience(c.Request.Context(), userID, service.ExperienceInput{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        from,
		To:          to,
		Current:     req.Current,
		Description: req.Description,
	})
	if err != nil {
		h.respondProfileMutationError(c, err, "add experience failed")
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// UpdateExperience maneja PUT /api/profile/experience/:exp_id.
func (h *ProfileHandler) UpdateExperience(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Not authorised to access this route"})
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Company     *string `json:"company"`
		Location    *string `json:"location"`
		From        *string `json:"from"`
		To          *string `json:"to"`
		Current     *bool   `json:"current"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update experience request", zap.Error(err))
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	patch := service.ExperiencePatch{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		Current:     req.Current,
		Description: req.Description,
	}
	if req.From != nil {
		from, err := parseDate(*req.From)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"msg": "From date is invalid"}}})
			return
		}
		patch.From = &from
	}
	if req.To != nil {
		to, err := parseOptionalDate(*req.To)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"msg": "To date is invalid"}}})
			return
		}
		patch.To = to
	}

	profile, err := h.profileServ.UpdateExperience(c.Request.Context(), userID, c.Param("exp_id"), patch)
	if err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Experience entry does not exists"})
			return
		}
		h.respondProfileMutationError(c, err, "update experience failed")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// RemoveExperience maneja DELETE /api/profile/experience/:exp_id. Un id
// desconocido no es error: devuelve el perfil sin cambios.
func (h *ProfileHandler) RemoveExperience(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Not authorised to access this route"})
		return
	}

	profile, err := h.profileServ.RemoveExperience(c.Request.Context(), userID, c.Param("exp_id"))
	if err != nil {
		h.respondProfileMutationError(c, err, "remove experience failed")
		return
	}

	c.JSON(http.StatusOK, profile)
}

type educationRequest struct {
	School       string `json:"school" binding:"required"`
	Degree       string `json:"degree" binding:"required"`
	FieldOfStudy string `json:"field_of_study" binding:"required"`
	From         string `json:"from" binding:"required"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// AddEducation maneja POST /api/profile/education.
func (h *ProfileHandler) AddEducation(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Not authorised to access this route"})
		return
	}

	var req educationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid add education request", zap.Error(err))
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	from, err := parseDate(req.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"msg": "From date is invalid"}}})
		return
	}
	to, err := parseOptionalDate(req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"msg": "To date is invalid"}}})
		return
	}

	profile, err := h.profileServ.AddEducation(c.Request.Context(), userID, service.EducationInput{
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         from,
		To:           to,
		Current:      req.Current,
		Description:  req.Description,
	})
	if err != nil {
		h.respondProfileMutationError(c, err, "add education failed")
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// UpdateEducation maneja PUT /api/profile/education/:edu_id.
func (h *ProfileHandler) UpdateEducation(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Not authorised to access this route"})
		return
	}

	var req struct {
		School       *string `json:"school"`
		Degree       *string `json:"degree"`
		FieldOfStudy *string `json:"field_of_study"`
		From         *string `json:"from"`
		To           *string `json:"to"`
		Current      *bool   `json:"current"`
		Description  *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update education request", zap.Error(err))
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	patch := service.EducationPatch{
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		Current:      req.Current,
		Description:  req.Description,
	}
	if req.From != nil {
		from, err := parseDate(*req.From)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"msg": "From date is invalid"}}})
			return
		}
		patch.From = &from
	}
	if req.To != nil {
		to, err := parseOptionalDate(*req.To)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"msg": "To date is invalid"}}})
			return
		}
		patch.To = to
	}

	profile, err := h.profileServ.UpdateEducation(c.Request.Context(), userID, c.Param("edu_id"), patch)
	if err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Education entry does not exists"})
			return
		}
		h.respondProfileMutationError(c, err, "update education failed")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// RemoveEducation maneja DELETE /api/profile/education/:edu_id.
func (h *ProfileHandler) RemoveEducation(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Not authorised to access this route"})
		return
	}

	profile, err := h.profileServ.RemoveEducation(c.Request.Context(), userID, c.Param("edu_id"))
	if err != nil {
		h.respondProfileMutationError(c, err, "remove education failed")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetGithubRepos maneja GET /api/profile/github/:username.
func (h *ProfileHandler) GetGithubRepos(c *gin.Context) {
	username := c.Param("username")
	repos, err := h.githubCli.Repos(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, github.ErrNoProfile) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "No github profile found"})
			return
		}
		h.logger.Error("github lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server Error"})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", repos)
}

func (h *ProfileHandler) respondProfileMutationError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"msg": "User profile does not exists"})
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Not authorised to update this user profile"})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server Error"})
	}
}

// splitSkills convierte "js, ts" en ["js","ts"], descartando vacíos.
func splitSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}
	return skills
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC(), nil
	}
	return time.Parse("2006-01-02", raw)
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	ts, err := parseDate(raw)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}
