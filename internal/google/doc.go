// Package google provides OAuth2 authentication and token storage for the
// Google Tasks backend.
//
// Tokens are stored per account in the user cache directory, one file per
// account (google-<account>.token). The account name is a short label chosen
// by the user, "default" unless configured otherwise.
package google
