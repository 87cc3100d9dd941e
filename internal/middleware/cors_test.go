package middleware

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gofiber/fiber/v3"
)

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", []string{"*"}},
		{"*", []string{"*"}},
		{" , ", []string{"*"}},
		{"https://emuready.com", []string{"https://emuready.com"}},
		{"https://emuready.com/, https://www.emuready.com", []string{"https://emuready.com", "https://www.emuready.com"}},
		{"https://emuready.com,*", []string{"*"}},
	}
	for _, tt := range tests {
		if got := parseOrigins(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseOrigins(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestNewCORS_AllowsConfiguredOrigin(t *testing.T) {
	app := fiber.New()
	app.Use(NewCORS("https://emuready.com"))
	app.Get("/api/scores/systems", func(c fiber.Ctx) error { return c.SendString("[]") })

	req := httptest.NewRequest(http.MethodGet, "/api/scores/systems", nil)
	req.Header.Set("Origin", "https://emuready.com")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://emuready.com" {
		t.Errorf("Access-Control-Allow-Origin = %q, want https://emuready.com", got)
	}
}
