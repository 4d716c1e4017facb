package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"devconnect/internal/domain"
	"devconnect/internal/repository"
)

// ProfileService mantiene la máquina de estados por usuario sobre la
// existencia del perfil: crear una sola vez, mutar con chequeo de dueño,
// borrar de forma idempotente. Las listas embebidas se editan en memoria y
// se persisten como documento completo.
type ProfileService struct {
	logger   *zap.Logger
	profiles repository.ProfileRepository
}

func NewProfileService(logger *zap.Logger, profiles repository.ProfileRepository) *ProfileService {
	return &ProfileService{
		logger:   logger,
		profiles: profiles,
	}
}

var (
	ErrProfileExists   = errors.New("profile already exists")
	ErrProfileNotFound = errors.New("profile not found")
	ErrNotOwner        = errors.New("profile owned by another user")
	ErrEntryNotFound   = errors.New("entry not found")
)

type CreateProfileInput struct {
	Status         string
	Skills         []string
	Company        string
	Website        string
	Location       string
	Bio            string
	GithubUsername string
	Social         domain.SocialLinks
}

// UpdateProfileInput es un merge parcial: sólo los campos no-nil se aplican.
// Las listas de experience/education nunca se tocan por esta vía.
type UpdateProfileInput struct {
	Status         *string
	Skills         []string
	Company        *string
	Website        *string
	Location       *string
	Bio            *string
	GithubUsername *string
	Social         *domain.SocialLinks
}

type ExperienceInput struct {
	Title       string
	Company     string
	Location    string
	From        time.Time
	To          *time.Time
	Current     bool
	Description string
}

type ExperiencePatch struct {
	Title       *string
	Company     *string
	Location    *string
	From        *time.Time
	To          *time.Time
	Current     *bool
	Description *string
}

type EducationInput struct {
	School       string
	Degree       string
	FieldOfStudy string
	From         time.Time
	To           *time.Time
	Current      bool
	Description  string
}

type EducationPatch struct {
	School       *string
	Degree       *string
	FieldOfStudy *string
	From         *time.Time
	To           *time.Time
	Current      *bool
	Description  *string
}

// Create pasa al usuario de NoProfile a HasProfile. Falla si ya tiene uno.
func (s *ProfileService) Create(ctx context.Context, userID string, input CreateProfileInput) (domain.Profile, error) {
	if s.profiles == nil {
		return domain.Profile{}, errors.New("profile service not configured")
	}
	if input.Status == "" || len(input.Skills) == 0 {
		return domain.Profile{}, ErrInvalidInput
	}

	_, err := s.profiles.GetByUserID(ctx, userID)
	if err == nil {
		return domain.Profile{}, ErrProfileExists
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, err
	}

	now := time.Now().UTC()
	profile := domain.Profile{
		ID:             uuid.NewString(),
		UserID:         userID,
		Status:         input.Status,
		Skills:         input.Skills,
		Company:        input.Company,
		Website:        input.Website,
		Location:       input.Location,
		Bio:            input.Bio,
		GithubUsername: input.GithubUsername,
		Social:         input.Social,
		Experience:     []domain.Experience{},
		Education:      []domain.Education{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		// Dos create concurrentes pueden pasar ambos el chequeo de
		// existencia; el índice único sobre user_id corta el segundo.
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Profile{}, ErrProfileExists
		}
		return domain.Profile{}, err
	}

	return profile, nil
}

func (s *ProfileService) GetAll(ctx context.Context) ([]domain.Profile, error) {
	return s.profiles.GetAll(ctx)
}

// GetByID resuelve por id de perfil. Un id malformado es el mismo not-found
// que un id desconocido.
func (s *ProfileService) GetByID(ctx context.Context, id string) (domain.Profile, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Profile{}, ErrProfileNotFound
	}
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, ErrProfileNotFound
		}
		return domain.Profile{}, err
	}
	return profile, nil
}

func (s *ProfileService) GetByUser(ctx context.Context, userID string) (domain.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, ErrProfileNotFound
		}
		return domain.Profile{}, err
	}
	return profile, nil
}

// Update aplica un merge parcial de campos de primer nivel. profileID vacío
// significa "el perfil del requester"; en cualquier caso el perfil debe
// pertenecer al requester.
func (s *ProfileService) Update(ctx context.Context, requesterID, profileID string, input UpdateProfileInput) (domain.Profile, error) {
	var (
		profile domain.Profile
		err     error
	)
	if profileID == "" {
		profile, err = s.GetByUser(ctx, requesterID)
	} else {
		profile, err = s.GetByID(ctx, profileID)
	}
	if err != nil {
		return domain.Profile{}, err
	}

	if profile.UserID != requesterID {
		return domain.Profile{}, ErrNotOwner
	}

	if input.Status != nil {
		profile.Status = *input.Status
	}
	if input.Skills != nil {
		profile.Skills = input.Skills
	}
	if input.Company != nil {
		profile.Company = *input.Company
	}
	if input.Website != nil {
		profile.Website = *input.Website
	}
	if input.Location != nil {
		profile.Location = *input.Location
	}
	if input.Bio != nil {
		profile.Bio = *input.Bio
	}
	if input.GithubUsername != nil {
		profile.GithubUsername = *input.GithubUsername
	}
	if input.Social != nil {
		profile.Social = *input.Social
	}

	return s.persist(ctx, profile)
}

// AddExperience inserta al frente: la lista queda ordenada de más reciente
// a más antigua.
func (s *ProfileService) AddExperience(ctx context.Context, userID string, input ExperienceInput) (domain.Profile, error) {
	profile, err := s.GetByUser(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}

	entry := domain.Experience{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Company:     input.Company,
		Location:    input.Location,
		From:        input.From,
		To:          input.To,
		Current:     input.Current,
		Description: input.Description,
	}
	profile.Experience = append([]domain.Experience{entry}, profile.Experience...)

	return s.persist(ctx, profile)
}

// UpdateExperience edita una entrada por id dentro de la lista del dueño.
// Sólo se busca en la lista propia, así que editar entradas ajenas es
// estructuralmente imposible.
func (s *ProfileService) UpdateExperience(ctx context.Context, userID, entryID string, patch ExperiencePatch) (domain.Profile, error) {
	profile, err := s.GetByUser(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}

	idx := -1
	for i := range profile.Experience {
		if profile.Experience[i].ID == entryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Profile{}, ErrEntryNotFound
	}

	entry := &profile.Experience[idx]
	if patch.Title != nil {
		entry.Title = *patch.Title
	}
	if patch.Company != nil {
		entry.Company = *patch.Company
	}
	if patch.Location != nil {
		entry.Location = *patch.Location
	}
	if patch.From != nil {
		entry.From = *patch.From
	}
	if patch.To != nil {
		entry.To = patch.To
	}
	if patch.Current != nil {
		entry.Current = *patch.Current
	}
	if patch.Description != nil {
		entry.Description = *patch.Description
	}

	return s.persist(ctx, profile)
}

// RemoveExperience borra por id compactando la lista. Un id desconocido es
// un no-op: se devuelve el perfil sin cambios.
func (s *ProfileService) RemoveExperience(ctx context.Context, userID, entryID string) (domain.Profile, error) {
	profile, err := s.GetByUser(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}

	kept := profile.Experience[:0:0]
	found := false
	for _, entry := range profile.Experience {
		if entry.ID == entryID {
			found = true
			continue
		}
		kept = append(kept, entry)
	}
	if !found {
		return profile, nil
	}
	if kept == nil {
		kept = []domain.Experience{}
	}
	profile.Experience = kept

	return s.persist(ctx, profile)
}

// AddEducation es el análogo de AddExperience para educación.
func (s *ProfileService) AddEducation(ctx context.Context, userID string, input EducationInput) (domain.Profile, error) {
	profile, err := s.GetByUser(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}

	entry := domain.Education{
		ID:           uuid.NewString(),
		School:       input.School,
		Degree:       input.Degree,
		FieldOfStudy: input.FieldOfStudy,
		From:         input.From,
		To:           input.To,
		Current:      input.Current,
		Description:  input.Description,
	}
	profile.Education = append([]domain.Education{entry}, profile.Education...)

	return s.persist(ctx, profile)
}

func (s *ProfileService) UpdateEducation(ctx context.Context, userID, entryID string, patch EducationPatch) (domain.Profile, error) {
	profile, err := s.GetByUser(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}

	idx := -1
	for i := range profile.Education {
		if profile.Education[i].ID == entryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Profile{}, ErrEntryNotFound
	}

	entry := &profile.Education[idx]
	if patch.School != nil {
		entry.School = *patch.School
	}
	if patch.Degree != nil {
		entry.Degree = *patch.Degree
	}
	if patch.FieldOfStudy != nil {
		entry.FieldOfStudy = *patch.FieldOfStudy
	}
	if patch.From != nil {
		entry.From = *patch.From
	}
	if patch.To != nil {
		entry.To = patch.To
	}
	if patch.Current != nil {
		entry.Current = *patch.Current
	}
	if patch.Description != nil {
		entry.Description = *patch.Description
	}

	return s.persist(ctx, profile)
}

func (s *ProfileService) RemoveEducation(ctx context.Context, userID, entryID string) (domain.Profile, error) {
	profile, err := s.GetByUser(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}

	kept := profile.Education[:0:0]
	found := false
	for _, entry := range profile.Education {
		if entry.ID == entryID {
			found = true
			continue
		}
		kept = append(kept, entry)
	}
	if !found {
		return profile, nil
	}
	if kept == nil {
		kept = []domain.Education{}
	}
	profile.Education = kept

	return s.persist(ctx, profile)
}

// Delete borra el documento completo; las listas embebidas mueren con él.
// Es idempotente: borrar un perfil inexistente no es un error.
func (s *ProfileService) Delete(ctx context.Context, userID string) error {
	return s.profiles.DeleteByUserID(ctx, userID)
}

func (s *ProfileService) persist(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	profile.UpdatedAt = time.Now().UTC()
	if err := s.profiles.Update(ctx, profile); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, ErrProfileNotFound
		}
		return domain.Profile{}, err
	}
	return profile, nil
}
