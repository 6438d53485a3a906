package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/sherpahq/sherpa/internal/google"
	"github.com/sherpahq/sherpa/internal/ticktick"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Set up credentials for external services",
	}

	cmd.AddCommand(newAuthGoogleCmd())
	cmd.AddCommand(newAuthTickTickCmd())

	return cmd
}

func newAuthGoogleCmd() *cobra.Command {
	var (
		account  string
		authCode string
	)

	cmd := &cobra.Command{
		Use:   "google",
		Short: "Authenticate a Google account for Calendar access",
		Long: `Authenticate a Google account using the OAuth out-of-band flow.

Requires GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET environment variables.
Opens no browser: visit the printed URL, grant access, and paste the code
back. Tokens are stored per account, so multiple accounts (e.g. work and
personal) can be authenticated side by side.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !google.IsConfigured() {
				return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET environment variables are required")
			}

			if authCode == "" {
				fmt.Printf("Visit the following URL to authorize access for account %q:\n\n  %s\n\n", account, google.GetAuthURL())
				fmt.Print("Enter the authorization code: ")

				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("reading authorization code: %w", err)
				}
				authCode = strings.TrimSpace(line)
			}
			if authCode == "" {
				return fmt.Errorf("authorization code cannot be empty")
			}

			if err := google.SaveTokenForAccount(cmd.Context(), account, authCode); err != nil {
				return fmt.Errorf("saving token: %w", err)
			}

			fmt.Printf("Token saved for account %q\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Account name to store the token under (e.g., 'work', 'personal')")
	cmd.Flags().StringVar(&authCode, "code", "", "Authorization code (skips the interactive prompt)")

	return cmd
}

const (
	ticktickAuthURL     = "https://ticktick.com/oauth/authorize"
	ticktickTokenURL    = "https://ticktick.com/oauth/token"
	ticktickScopes      = "tasks:read tasks:write"
	ticktickRedirectURI = "http://localhost:8765/callback"
)

// ticktickOAuthConfig builds the OAuth2 config for the TickTick Open API.
// TickTick authenticates the token request with Basic auth and expects the
// scope to be repeated in the exchange.
func ticktickOAuthConfig(clientID, clientSecret, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       strings.Fields(ticktickScopes),
		Endpoint: oauth2.Endpoint{
			AuthURL:   ticktickAuthURL,
			TokenURL:  ticktickTokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

func newAuthTickTickCmd() *cobra.Command {
	var (
		authCode    string
		redirectURI string
	)

	cmd := &cobra.Command{
		Use:   "ticktick",
		Short: "Authenticate with TickTick",
		Long: `Obtain a TickTick Open API access token using the OAuth authorization
code flow.

Requires TICKTICK_CLIENT_ID and TICKTICK_CLIENT_SECRET environment
variables (register an app at https://developer.ticktick.com/manage and
set its redirect URI to ` + ticktickRedirectURI + `). Visit the printed
URL, authorize access, and paste back the 'code' query parameter from
the redirect.

When only TICKTICK_ACCESS_TOKEN is set, the command verifies the token
by listing the account's projects instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID := os.Getenv("TICKTICK_CLIENT_ID")
			clientSecret := os.Getenv("TICKTICK_CLIENT_SECRET")

			if clientID == "" || clientSecret == "" {
				// No app credentials: fall back to verifying an existing token
				token := os.Getenv("TICKTICK_ACCESS_TOKEN")
				if token == "" {
					return fmt.Errorf("set TICKTICK_CLIENT_ID and TICKTICK_CLIENT_SECRET to run the OAuth flow, or TICKTICK_ACCESS_TOKEN to verify an existing token")
				}
				return verifyTickTickToken(cmd.Context(), token)
			}

			conf := ticktickOAuthConfig(clientID, clientSecret, redirectURI)

			if authCode == "" {
				fmt.Printf("Visit the following URL to authorize TickTick access:\n\n  %s\n\n", conf.AuthCodeURL("state"))
				fmt.Println("After authorizing, copy the 'code' query parameter from the redirect URL.")
				fmt.Print("Enter the authorization code: ")

				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("reading authorization code: %w", err)
				}
				authCode = strings.TrimSpace(line)
			}
			if authCode == "" {
				return fmt.Errorf("authorization code cannot be empty")
			}

			token, err := conf.Exchange(cmd.Context(), authCode,
				oauth2.SetAuthURLParam("scope", ticktickScopes),
			)
			if err != nil {
				return fmt.Errorf("exchanging authorization code: %w", err)
			}

			fmt.Println("Authentication successful. Set this environment variable for the server:")
			fmt.Printf("\n  export TICKTICK_ACCESS_TOKEN='%s'\n\n", token.AccessToken)

			return verifyTickTickToken(cmd.Context(), token.AccessToken)
		},
	}

	cmd.Flags().StringVar(&authCode, "code", "", "Authorization code (skips the interactive prompt)")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", ticktickRedirectURI, "Redirect URI registered with the TickTick app")

	return cmd
}

func verifyTickTickToken(ctx context.Context, token string) error {
	client, err := ticktick.NewClient(token)
	if err != nil {
		return fmt.Errorf("creating TickTick client: %w", err)
	}

	projects, err := client.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("verifying token: %w", err)
	}

	fmt.Printf("Token OK: %d project(s) accessible\n", len(projects))
	return nil
}
