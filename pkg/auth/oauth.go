package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// ServiceKeyFile is a Google service-account key. When present under the
	// config dir, auth is non-interactive: a JWT acting as the configured
	// impersonation subject.
	ServiceKeyFile = "service-account.json"

	// ClientSecretsFile is the downloaded OAuth client credentials, used for
	// the interactive browser flow when no service key exists.
	ClientSecretsFile = "credentials.json"

	// TokenFile caches the token obtained by the interactive flow.
	TokenFile = "token.json"

	// LocalhostAuthPort is where the local listener captures the OAuth
	// redirect. Must match the redirect URI registered for the client.
	LocalhostAuthPort = "6789"

	xdgAppName = "daysync"
)

func GetXdgHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

// GetClient returns an authenticated *http.Client for the given scopes.
// A service-account key takes priority; otherwise an existing cached token
// is used, and failing that the interactive browser flow runs.
func GetClient(ctx context.Context, subject string, scopes []string) (*http.Client, error) {
	xdgHome, err := GetXdgHome()
	if err != nil {
		return nil, err
	}

	keyFile := filepath.Join(xdgHome, ServiceKeyFile)
	if _, err := os.Stat(keyFile); err == nil {
		return serviceAccountClient(ctx, keyFile, subject, scopes)
	}

	return userClient(ctx, xdgHome, scopes)
}

// serviceAccountClient builds a JWT-authenticated client from a
// service-account key, acting as subject when one is configured.
func serviceAccountClient(ctx context.Context, keyFile, subject string, scopes []string) (*http.Client, error) {
	b, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account key %s: %w", keyFile, err)
	}

	conf, err := google.JWTConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account key: %w", err)
	}
	if subject != "" {
		conf.Subject = subject
	}
	return conf.Client(ctx), nil
}

func userClient(ctx context.Context, xdgHome string, scopes []string) (*http.Client, error) {
	b, err := os.ReadFile(filepath.Join(xdgHome, ClientSecretsFile))
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	config.RedirectURL = fmt.Sprintf("http://localhost:%s/oauth2callback", LocalhostAuthPort)

	tokenFile := filepath.Join(xdgHome, TokenFile)
	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		log.Printf("No existing token found at %s. Initiating web authorization flow...", tokenFile)
		tok, err = getTokenFromWeb(config)
		if err != nil {
			return nil, fmt.Errorf("failed to get token from web: %w", err)
		}
		saveToken(tokenFile, tok)
	}

	return config.Client(ctx, tok), nil
}

// RemoveToken deletes the cached OAuth token so the next run re-authorizes.
func RemoveToken() error {
	xdgHome, err := GetXdgHome()
	if err != nil {
		return err
	}
	tokenFile := filepath.Join(xdgHome, TokenFile)
	if err := os.Remove(tokenFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// getTokenFromWeb runs the OAuth authorization-code flow against a local
// listener and exchanges the captured code for a token.
func getTokenFromWeb(config *oauth2.Config) (*oauth2.Token, error) {
	codeCh := make(chan string)
	errCh := make(chan error)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", LocalhostAuthPort))
	if err != nil {
		return nil, fmt.Errorf("failed to start listener on port %s: %w", LocalhostAuthPort, err)
	}
	defer listener.Close()

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				errCh <- fmt.Errorf("authorization code not found in redirect URL")
				return
			}
			fmt.Fprintf(w, "Authentication successful! You can close this window.")
			codeCh <- code
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// AccessTypeOffline so a refresh token comes back with the grant.
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Printf("Please open the following URL in your browser to authorize daysync:\n%s\n", authURL)
	log.Println("Waiting for authorization code...")

	select {
	case authCode := <-codeCh:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		tok, err := config.Exchange(ctx, authCode)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token from Google: %w", err)
		}
		server.Shutdown(ctx)
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-time.After(5 * time.Minute):
		server.Shutdown(context.Background())
		return nil, fmt.Errorf("authorization timed out. Please try again")
	}
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", file, err)
	}
	return tok, nil
}

func saveToken(path string, token *oauth2.Token) {
	fmt.Printf("Saving authentication token to: %s\n", path)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		log.Printf("Warning: Could not create token directory %s: %v", filepath.Dir(path), err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		log.Fatalf("Unable to cache OAuth token to %s: %v", path, err)
	}
	defer f.Close()
	json.NewEncoder(f).Encode(token)
}
