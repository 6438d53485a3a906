package google

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Environment variables carrying the OAuth client credentials. These come
// from a Google Cloud project with the Calendar API enabled.
const (
	EnvClientID     = "GOOGLE_CLIENT_ID"
	EnvClientSecret = "GOOGLE_CLIENT_SECRET"
)

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateAccountName rejects account names that cannot safely become part
// of a token file name.
func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, hyphens and underscores are allowed", account)
	}
	return nil
}

// getTokenFilePath returns the cache file holding the named account's token.
func getTokenFilePath(account string) string {
	return filepath.Join(userCacheDir(), "sherpa", fmt.Sprintf("google-%s.token", account))
}

// IsConfigured reports whether OAuth client credentials are present in the
// environment.
func IsConfigured() bool {
	return os.Getenv(EnvClientID) != "" && os.Getenv(EnvClientSecret) != ""
}

// GetOAuthConfig returns the OAuth2 configuration for Google Calendar access.
func GetOAuthConfig() *oauth2.Config {
	const oob = "urn:ietf:wg:oauth:2.0:oob"
	return &oauth2.Config{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		Endpoint:     google.Endpoint,
		RedirectURL:  oob,
		Scopes:       DefaultOAuthScopes,
	}
}

// HasTokenForAccount checks if a token file exists for the specified account
func HasTokenForAccount(account string) bool {
	if err := validateAccountName(account); err != nil {
		return false
	}
	_, err := os.Stat(getTokenFilePath(account))
	return err == nil
}

// HasToken checks if a token exists for the default account
func HasToken() bool {
	return HasTokenForAccount("default")
}

// GetAuthURL returns the OAuth URL for user authorization
func GetAuthURL() string {
	return GetOAuthConfig().AuthCodeURL("state", oauth2.AccessTypeOffline)
}

// SaveTokenForAccount exchanges an authorization code for tokens and writes
// them to the account's token file
func SaveTokenForAccount(ctx context.Context, account, authCode string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if !IsConfigured() {
		return fmt.Errorf("Google OAuth client credentials missing: set %s and %s", EnvClientID, EnvClientSecret)
	}

	t, err := GetOAuthConfig().Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	tokenFile := getTokenFilePath(account)
	if err := os.MkdirAll(filepath.Dir(tokenFile), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tokenData := t.AccessToken + " " + t.RefreshToken
	if err := os.WriteFile(tokenFile, []byte(tokenData), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// SaveToken exchanges an authorization code for the default account
func SaveToken(ctx context.Context, authCode string) error {
	return SaveTokenForAccount(ctx, "default", authCode)
}

// GetTokenSourceForAccount returns an OAuth2 token source backed by the
// account's cached token. The expiry is set in the past so the source
// refreshes on first use.
func GetTokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	slurp, err := os.ReadFile(getTokenFilePath(account))
	if err != nil {
		return nil, fmt.Errorf("no Google OAuth token found for account %s", account)
	}

	f := strings.Fields(strings.TrimSpace(string(slurp)))
	if len(f) != 2 {
		return nil, fmt.Errorf("invalid token format for account %s", account)
	}

	conf := GetOAuthConfig()
	ts := conf.TokenSource(ctx, &oauth2.Token{
		AccessToken:  f[0],
		TokenType:    "Bearer",
		RefreshToken: f[1],
		Expiry:       time.Unix(1, 0),
	})

	return ts, nil
}

// GetTokenSource returns a token source for the default account
func GetTokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	return GetTokenSourceForAccount(ctx, "default")
}

// GetAuthenticationErrorMessage returns the guidance shown when an operation
// requires a Google token that is not present
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf(
		"No Google OAuth token found for account %q. Run 'sherpa auth google --account %s' to complete the OAuth flow and store a token.",
		account, account)
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		panic("No Windows TEMP or TMP environment variables found")
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
