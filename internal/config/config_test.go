package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SOMA_API_URL", "")
	t.Setenv("SOMA_WEB_URL", "")
	t.Setenv("SOMA_LANGUAGE", "")

	cfg := Load()
	if cfg.APIURL != "https://api.projectsoma.cat" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.WebURL != "https://projectsoma.cat" {
		t.Errorf("WebURL = %q, want api. label stripped", cfg.WebURL)
	}
	if cfg.Language != "ca" {
		t.Errorf("Language = %q, want ca", cfg.Language)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SOMA_API_URL", "http://localhost:3001")
	t.Setenv("SOMA_WEB_URL", "http://localhost:3000")
	t.Setenv("SOMA_LANGUAGE", "en")

	cfg := Load()
	if cfg.APIURL != "http://localhost:3001" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.WebURL != "http://localhost:3000" {
		t.Errorf("WebURL = %q", cfg.WebURL)
	}
	if cfg.Language != "en" {
		t.Errorf("Language = %q", cfg.Language)
	}
}
