package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/projectsoma/soma/internal/browser"
	"github.com/projectsoma/soma/internal/config"
	"github.com/projectsoma/soma/internal/store"
	"github.com/projectsoma/soma/internal/tui"
	"github.com/projectsoma/soma/pkg/client"
	"github.com/projectsoma/soma/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// configDir returns ~/.soma.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".soma"), nil
}

// readToken returns the auth token using precedence: env var > file > empty.
func readToken() string {
	if tok := os.Getenv("SOMA_TOKEN"); tok != "" {
		return tok
	}
	dir, err := configDir()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(dir, "token"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// identity is the identity-provider profile saved next to the token.
// Login echoes it to the backend to upsert the platform user.
type identity struct {
	ExternalID    string `json:"externalId"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
}

func readIdentity() (*identity, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "profile.json"))
	if err != nil {
		return nil, err
	}
	var id identity
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("parse profile.json: %w", err)
	}
	return &id, nil
}

func saveAuth(token string, id identity) error {
	dir, err := configDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create ~/.soma dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "token"), []byte(token), 0600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "profile.json"), data, 0600); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// saveCachedUser keeps the last known user record so the app can start
// during backend hiccups.
func saveCachedUser(u *domain.User) {
	dir, err := configDir()
	if err != nil {
		return
	}
	data, err := json.Marshal(u)
	if err != nil {
		return
	}
	os.WriteFile(filepath.Join(dir, "user.json"), data, 0600) //nolint:errcheck // best-effort cache
}

func readCachedUser() *domain.User {
	dir, err := configDir()
	if err != nil {
		return nil
	}
	data, err := os.ReadFile(filepath.Join(dir, "user.json"))
	if err != nil {
		return nil
	}
	var u domain.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil
	}
	return &u
}

func run() error {
	cfg := config.Load()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("soma " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "terms":
			return openLegal(cfg, "termes")
		case "privacy":
			return openLegal(cfg, "privacitat")
		case "login":
			return runLogin(cfg)
		case "logout":
			return runLogout()
		}
	}

	token := readToken()
	if token == "" {
		printWelcome()
		return nil
	}
	id, err := readIdentity()
	if err != nil {
		printWelcome()
		return nil
	}

	c := client.New(cfg.APIURL, token)
	user, err := c.Login(context.Background(), client.LoginRequest{
		ExternalID:    id.ExternalID,
		Email:         id.Email,
		EmailVerified: id.EmailVerified,
	})
	if err != nil {
		// Only force re-login on actual auth failures (401), not
		// transient errors.
		if client.IsStatus(err, 401) {
			printWelcome()
			return nil
		}
		if user = readCachedUser(); user == nil {
			return fmt.Errorf("login: %w", err)
		}
	} else {
		saveCachedUser(user)
	}

	return launch(c, cfg, user)
}

func launch(c *client.Client, cfg *config.Config, user *domain.User) error {
	app := tui.NewApp(store.New(c), user, cfg.Language)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func runLogin(cfg *config.Config) error {
	// Start ephemeral localhost server on random port.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("start callback listener: %w", err)
	}
	defer listener.Close() //nolint:errcheck

	port := listener.Addr().(*net.TCPAddr).Port

	type exchangeResult struct {
		token string
		id    identity
	}
	resultCh := make(chan exchangeResult, 1)
	errCh := make(chan error, 1)

	// Generate CSRF state token.
	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return fmt.Errorf("generate oauth state: %w", err)
	}
	expectedState := hex.EncodeToString(stateBytes)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != expectedState {
			http.Error(w, "invalid state", http.StatusForbidden)
			errCh <- fmt.Errorf("callback state mismatch (possible CSRF)")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			errCh <- fmt.Errorf("callback received without code")
			return
		}
		// Exchange the one-time code for the session token and profile.
		body, err := json.Marshal(map[string]string{"code": code})
		if err != nil {
			http.Error(w, "marshal failed", http.StatusInternalServerError)
			errCh <- fmt.Errorf("cli code exchange marshal: %w", err)
			return
		}
		resp, err := http.Post(cfg.APIURL+"/auth/cli-exchange", "application/json", bytes.NewReader(body))
		if err != nil {
			http.Error(w, "exchange failed", http.StatusInternalServerError)
			errCh <- fmt.Errorf("cli code exchange: %w", err)
			return
		}
		defer resp.Body.Close() //nolint:errcheck
		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) //nolint:errcheck // best-effort read for error message
			http.Error(w, "exchange failed", http.StatusInternalServerError)
			errCh <- fmt.Errorf("cli code exchange: HTTP %d: %s", resp.StatusCode, string(respBody))
			return
		}
		var result struct {
			Token         string `json:"token"`
			ExternalID    string `json:"externalId"`
			Email         string `json:"email"`
			EmailVerified bool   `json:"emailVerified"`
		}
		if decErr := json.NewDecoder(resp.Body).Decode(&result); decErr != nil || result.Token == "" {
			http.Error(w, "exchange failed", http.StatusInternalServerError)
			errCh <- fmt.Errorf("cli code exchange: invalid response")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, callbackHTML) //nolint:errcheck
		resultCh <- exchangeResult{
			token: result.Token,
			id: identity{
				ExternalID:    result.ExternalID,
				Email:         result.Email,
				EmailVerified: result.EmailVerified,
			},
		}
	})

	srv := &http.Server{Handler: mux}
	go func() {
		if srvErr := srv.Serve(listener); srvErr != nil && srvErr != http.ErrServerClosed {
			errCh <- srvErr
		}
	}()

	loginParams := url.Values{}
	loginParams.Set("cli_port", strconv.Itoa(port))
	loginParams.Set("state", expectedState)
	loginURL := cfg.WebURL + "/auth/login?" + loginParams.Encode()

	fmt.Printf("Obrint el navegador per iniciar sessió...\n")
	if err := browser.Open(loginURL); err != nil {
		fmt.Printf("No s'ha pogut obrir el navegador. Visita aquesta URL manualment:\n  %s\n", loginURL)
	}

	select {
	case result := <-resultCh:
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx) //nolint:errcheck

		if err := saveAuth(result.token, result.id); err != nil {
			return err
		}

		c := client.New(cfg.APIURL, result.token)
		user, err := c.Login(context.Background(), client.LoginRequest{
			ExternalID:    result.id.ExternalID,
			Email:         result.id.Email,
			EmailVerified: result.id.EmailVerified,
		})
		if err != nil {
			fmt.Printf("Sessió desada però la verificació ha fallat: %v\n", err)
			return nil
		}
		saveCachedUser(user)
		fmt.Printf("Sessió iniciada com a %s\n\n", user.Email)

		return launch(c, cfg, user)

	case srvErr := <-errCh:
		return fmt.Errorf("callback server error: %w", srvErr)

	case <-time.After(2 * time.Minute):
		return fmt.Errorf("login timed out — no callback received within 2 minutes")
	}
}

func runLogout() error {
	dir, err := configDir()
	if err != nil {
		return err
	}
	removed := false
	for _, name := range []string{"token", "profile.json", "user.json"} {
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err == nil {
			removed = true
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	if !removed {
		fmt.Println("Ja havies tancat la sessió.")
		return nil
	}
	fmt.Println("Sessió tancada.")
	return nil
}

func openLegal(cfg *config.Config, page string) error {
	u := legalURL(cfg, page)
	if err := browser.Open(u); err != nil {
		fmt.Println(u)
	}
	return nil
}

func legalURL(cfg *config.Config, page string) string {
	return cfg.WebURL + "/" + page
}

func printWelcome() {
	fmt.Println("soma — el teu estudi, al terminal")
	fmt.Println()
	fmt.Println("Per començar, inicia sessió:")
	fmt.Println("  soma login")
}

func printHelp() {
	fmt.Println("soma " + version)
	fmt.Println()
	fmt.Println("Ús:")
	fmt.Println("  soma           obre l'aplicació")
	fmt.Println("  soma login     inicia sessió al navegador")
	fmt.Println("  soma logout    tanca la sessió")
	fmt.Println("  soma terms     obre els termes i condicions")
	fmt.Println("  soma privacy   obre la política de privacitat")
	fmt.Println("  soma version   mostra la versió")
}

const callbackHTML = `<!DOCTYPE html>
<html lang="ca">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Soma</title>
<style>
*{margin:0;padding:0;box-sizing:border-box}
body{
  background:#14141c;color:#e4e4ec;
  font-family:'SF Mono','Consolas',monospace;
  height:100vh;display:flex;align-items:center;justify-content:center;
}
.card{text-align:center}
.logo{
  font-size:28px;font-weight:700;letter-spacing:10px;
  text-transform:uppercase;margin-bottom:24px;color:#f07860;
}
.check{
  width:48px;height:48px;margin:0 auto 20px;
  border:2px solid #4ade80;border-radius:50%;
  display:flex;align-items:center;justify-content:center;
}
.check svg{width:24px;height:24px}
.msg{font-size:14px;color:#4ade80;font-weight:600;margin-bottom:8px}
.sub{font-size:12px;color:#505868}
</style>
</head>
<body>
<div class="card">
  <div class="logo">SOMA</div>
  <div class="check">
    <svg viewBox="0 0 24 24" fill="none" stroke="#4ade80" stroke-width="2.5" stroke-linecap="round" stroke-linejoin="round">
      <polyline points="20 6 9 17 4 12"/>
    </svg>
  </div>
  <div class="msg">sessió iniciada</div>
  <div class="sub">torna al terminal</div>
</div>
</body>
</html>`
