package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"devconnect/internal/service"
)

func TestAuthMiddleware_AllowsValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokenSvc := service.NewTokenService("secret", 15*time.Minute)
	token, err := tokenSvc.Issue("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := gin.New()
	r.GET("/protected", AuthMiddleware(tokenSvc), func(c *gin.Context) {
		userID, ok := GetAuthUserID(c)
		if !ok || userID != "u1" {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(authHeader, token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_RejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokenSvc := service.NewTokenService("secret", 15*time.Minute)

	r := gin.New()
	r.GET("/protected", AuthMiddleware(tokenSvc), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["msg"] != "Not authorised to access this route" {
		t.Fatalf("unexpected message %q", body["msg"])
	}
}

func TestAuthMiddleware_RejectsGarbledToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokenSvc := service.NewTokenService("secret", 15*time.Minute)

	r := gin.New()
	r.GET("/protected", AuthMiddleware(tokenSvc), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(authHeader, "garbled.token.value")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["msg"] != "Invalid token, not authorised to access this route" {
		t.Fatalf("unexpected message %q", body["msg"])
	}
}

func TestAuthMiddleware_RejectsTokenFromOtherSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	otherSvc := service.NewTokenService("other-secret", 15*time.Minute)
	token, err := otherSvc.Issue("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tokenSvc := service.NewTokenService("secret", 15*time.Minute)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(tokenSvc), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(authHeader, token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
