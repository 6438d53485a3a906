package google

// DefaultOAuthScopes are the Google OAuth scopes requested during the auth
// flow. Only Calendar access is needed; keeping the scope list minimal makes
// the consent screen and token blast radius as small as possible.
var DefaultOAuthScopes = []string{
	"https://www.googleapis.com/auth/calendar",
}
