package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"devconnect/internal/domain"
	"devconnect/internal/github"
)

func decodeProfile(t *testing.T, data []byte) domain.Profile {
	t.Helper()
	var profile domain.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	return profile
}

func createProfile(t *testing.T, env *apiEnv, token string, body map[string]any) domain.Profile {
	t.Helper()
	rec := performRequest(env.router, http.MethodPost, "/api/profile", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decodeProfile(t, rec.Body.Bytes())
}

func TestProfileLifecycle_RegisterCreateReadConflict(t *testing.T) {
	env := setupAPI()
	token := registerUser(t, env, "Alice", "alice@x.com", "secret1")

	created := createProfile(t, env, token, map[string]any{
		"status": "Dev",
		"skills": "js,ts",
	})
	if len(created.Skills) != 2 || created.Skills[0] != "js" || created.Skills[1] != "ts" {
		t.Fatalf("expected skills [js ts], got %v", created.Skills)
	}

	rec := performRequest(env.router, http.MethodGet, "/api/profile/me", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	fetched := decodeProfile(t, rec.Body.Bytes())
	if fetched.ID != created.ID {
		t.Fatalf("expected the same profile back")
	}

	rec = performRequest(env.router, http.MethodPost, "/api/profile", map[string]any{
		"status": "Dev again",
		"skills": "go",
	}, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on second create, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("User profile already exists")) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestCreateProfile_Validation(t *testing.T) {
	env := setupAPI()
	token := registerUser(t, env, "Alice", "alice@x.com", "secret1")

	cases := []map[string]any{
		{"skills": "js"},
		{"status": "Dev"},
		{"status": "Dev", "skills": " , , "},
	}
	for _, body := range cases {
		rec := performRequest(env.router, http.MethodPost, "/api/profile", body, token)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %v, got %d", body, rec.Code)
		}
	}
}

func TestGetProfiles_PublicList(t *testing.T) {
	env := setupAPI()
	token := registerUser(t, env, "Alice", "alice@x.com", "secret1")
	createProfile(t, env, token, map[string]any{"status": "Dev", "skills": "go"})

	rec := performRequest(env.router, http.MethodGet, "/api/profile", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var profiles []domain.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &profiles); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(profiles))
	}
}

func TestGetProfileByID_PublicAndNotFound(t *testing.T) {
	env := setupAPI()
	token := registerUser(t, env, "Alice", "alice@x.com", "secret1")
	created := createProfile(t, env, token, map[string]any{"status": "Dev", "skills": "go"})

	rec := performRequest(env.router, http.MethodGet, "/api/profile/"+created.ID, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Id malformado y id desconocido producen el mismo not-found.
	for _, id := range []string{"not-a-uuid", "74b5e95c-9c4a-4e43-9e2f-000000000000"} {
		rec = performRequest(env.router, http.MethodGet, "/api/profile/"+id, nil, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for id %q, got %d", id, rec.Code)
		}
		expected := fmt.Sprintf("Profile id %s not found", id)
		if !bytes.Contains(rec.Body.Bytes(), []byte(expected)) {
			t.Fatalf("unexpected body %s", rec.Body.String())
		}
	}
}

func TestGetMyProfile_NoProfile(t *testing.T) {
	env := setupAPI()
	token := registerUser(t, env, "Alice", "alice@x.com", "secret1")

	rec := performRequest(env.router, http.MethodGet, "/api/profile/me", nil, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("There is no profile for this user")) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestUpdateProfile_PartialMerge(t *testing.T) {
	env := setupAPI()
	token := registerUser(t, env, "Alice", "alice@x.com", "secret1")
	createProfile(t, env, token, map[string]any{"status": "Dev", "skills": "go"})

	rec := performRequest(env.router, http.MethodPut, "/api/profile/me", map[string]any{
		"bio":    "building things",
		"skills": "go,sql",
	}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := decodeProfile(t, rec.Body.Bytes())
	if updated.Bio != "building things" {
		t.Fatalf("expected merged bio, got %q", updated.Bio)
	}
	if updated.Status != "Dev" {
		t.Fatalf("untouched status must survive, got %q", updated.Status)
	}
	if len(updated.Skills) != 2 || updated.Skills[1] != "sql" {
		t.Fatalf("expected re-split skills, got %v", updated.Skills)
	}
}

func TestUpdateProfile_NoProfile(t *testing.T) {
	env := setupAPI()
	token := registerUser(t, env, "Alice", "alice@x.com", "secret1")

	rec := performRequest(env.router, http.MethodPut, "/api/profile/me", map[string]any{
		"bio": "nope",
	}, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("User profile does not exists")) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestExperience_AddUpdateRemove(t *testing.T) {
	env := setupAPI()
	token := registerUser(t, env, "Alice", "alice@x.com", "secret1")
	createProfile(t, env, token, map[string]any{"status": "Dev", "skills": "go"})

	rec := performRequest(env.router, http.MethodPost, "/api/profile/experience", map[string]any{
		"title":   "Junior",
		"company": "Acme",
		"from":    "2019-01-01",
	}, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = performRequest(env.router, http.MethodPost, "/api/profile/experience", map[string]any{
		"title":   "Senior",
		"company": "Acme",
		"from":    "2022-01-01",
		"current": true,
	}, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	profile := decodeProfile(t, rec.Body.Bytes())
	if len(profile.Experience) != 2 || profile.Experience[0].Title != "Senior" {
		t.Fatalf("expected newest entry first, got %+v", profile.Experience)
	}

	entryID := profile.Experience[1].ID
	rec = performRequest(env.router, http.MethodPut, "/api/profile/experience/"+entryID, map[string]any{
		"title": "Mid",
	}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	profile = decodeProfile(t, rec.Body.Bytes())
	if profile.Experience[1].Title != "Mid" || profile.Experience[1].Company != "Acme" {
		t.Fatalf("expected patched entry, got %+v", profile.Experience[1])
	}

	rec = performRequest(env.router, http.MethodPut, "/api/profile/experience/unknown-entry", map[string]any{
		"title": "Nope",
	}, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("Experience entry does not exists")) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	// Borrar un id desconocido es un no-op que igual devuelve 200.
	rec = performRequest(env.router, http.MethodDelete, "/api/profile/experience/unknown-entry", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	profile = decodeProfile(t, rec.Body.Bytes())
	if len(profile.Experience) != 2 {
		t.Fatalf("unknown id must leave the list untouched, got %+v", profile.Experience)
	}

	rec = performRequest(env.router, http.MethodDelete, "/api/profile/experience/"+entryID, nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	profile = decodeProfile(t, rec.Body.Bytes())
	if len(profile.Experience) != 1 || profile.Experience[0].Title != "Senior" {
		t.Fatalf("expected compacted list, got %+v", profile.Experience)
	}
}

func TestEducation_AddUpdateRemove(t *testing.T) {
	env := setupAPI()
	token := registerUser(t, env, "Alice", "alice@x.com", "secret1")
	createProfile(t, env, token, map[string]any{"status": "Dev", "skills": "go"})

	rec := performRequest(env.router, http.MethodPost, "/api/profile/education", map[string]any{
		"school":         "MIT",
		"degree":         "BSc",
		"field_of_study": "CS",
		"from":           "2015-09-01",
	}, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	profile := decodeProfile(t, rec.Body.Bytes())
	entryID := profile.Education[0].ID

	rec = performRequest(env.router, http.MethodPut, "/api/profile/education/"+entryID, map[string]any{
		"degree": "MSc",
	}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	profile = decodeProfile(t, rec.Body.Bytes())
	if profile.Education[0].Degree != "MSc" {
		t.Fatalf("expected patched degree, got %+v", profile.Education[0])
	}

	rec = performRequest(env.router, http.MethodDelete, "/api/profile/education/"+entryID, nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	profile = decodeProfile(t, rec.Body.Bytes())
	if len(profile.Education) != 0 {
		t.Fatalf("expected empty education list, got %+v", profile.Education)
	}
}

func TestExperienceRoutes_RequireAuth(t *testing.T) {
	env := setupAPI()

	rec := performRequest(env.router, http.MethodPost, "/api/profile/experience", map[string]any{
		"title":   "Junior",
		"company": "Acme",
		"from":    "2019-01-01",
	}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestDeleteProfile_Idempotent(t *testing.T) {
	env := setupAPI()
	token := registerUser(t, env, "Alice", "alice@x.com", "secret1")
	createProfile(t, env, token, map[string]any{"status": "Dev", "skills": "go"})

	for i := 0; i < 2; i++ {
		rec := performRequest(env.router, http.MethodDelete, "/api/profile/me", nil, token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 on delete #%d, got %d", i+1, rec.Code)
		}
		if !bytes.Contains(rec.Body.Bytes(), []byte("Profile deleted")) {
			t.Fatalf("unexpected body %s", rec.Body.String())
		}
	}

	rec := performRequest(env.router, http.MethodGet, "/api/profile/me", nil, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected profile gone, got %d", rec.Code)
	}
}

func TestGithubRepos_UpstreamFailure(t *testing.T) {
	env := setupAPI()
	env.github.err = github.ErrNoProfile

	rec := performRequest(env.router, http.MethodGet, "/api/profile/github/unknown-user", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("No github profile found")) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestGithubRepos_RelaysBody(t *testing.T) {
	env := setupAPI()
	env.github.body = json.RawMessage(`[{"name":"devconnect"}]`)

	rec := performRequest(env.router, http.MethodGet, "/api/profile/github/octocat", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != `[{"name":"devconnect"}]` {
		t.Fatalf("expected relayed body, got %s", rec.Body.String())
	}
}
