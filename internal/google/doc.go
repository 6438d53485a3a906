// Package google provides OAuth2 authentication and token management for
// Google APIs.
//
// Tokens are cached per account in the user's cache directory and refreshed
// through the standard oauth2 token source. The TokenProvider interface
// allows alternative token sources to be plugged in, which keeps the
// Calendar client testable without touching the filesystem.
package google
