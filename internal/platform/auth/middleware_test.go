package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func runMiddleware(t *testing.T, authHeader string) (*httptest.ResponseRecorder, Caller, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got Caller
	mw := JWTMiddleware(JWTConfig{Secret: testSecret, Issuer: "caretrack"})
	err := mw(func(c echo.Context) error {
		got = CallerFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, got, err
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	userID := uuid.New()
	deptID := uuid.New()
	tok := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    "caretrack",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role:          RoleProfessional,
		DepartmentIDs: []string{deptID.String()},
	})

	_, caller, err := runMiddleware(t, "Bearer "+tok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caller.UserID != userID {
		t.Errorf("expected user id %s, got %s", userID, caller.UserID)
	}
	if caller.Role != RoleProfessional {
		t.Errorf("expected role professional, got %q", caller.Role)
	}
	if !caller.InDepartment(deptID) {
		t.Error("expected department scope to include the claimed department")
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	_, _, err := runMiddleware(t, "")
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_BadFormat(t *testing.T) {
	_, _, err := runMiddleware(t, "Token abc")
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_WrongIssuer(t *testing.T) {
	tok := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: RoleProfessional,
	})
	_, _, err := runMiddleware(t, "Bearer "+tok)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_NonUUIDSubject(t *testing.T) {
	tok := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    "caretrack",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: RoleProfessional,
	})
	_, _, err := runMiddleware(t, "Bearer "+tok)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestDevAuthMiddleware_InjectsAdmin(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got Caller
	err := DevAuthMiddleware()(func(c echo.Context) error {
		got = CallerFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsAdmin() {
		t.Error("expected dev caller to be admin")
	}
	if got.UserID == uuid.Nil {
		t.Error("expected dev caller to have a user id")
	}
}

func TestCallerFromContext_Empty(t *testing.T) {
	caller := CallerFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	if caller.UserID != uuid.Nil || caller.Role != "" {
		t.Error("expected zero caller from empty context")
	}
}
