// Package google provides OAuth2 authentication and token management for Google APIs.
//
// A Session is built from an installed-app client secret file and a token
// file. When the token file exists it is loaded and refreshed transparently;
// otherwise the user is walked through the out-of-band authorization flow on
// the terminal and the resulting token is written to the token file.
//
// Every token the session hands out passes through a PersistingTokenSource,
// so refreshed tokens are written back to the token file as soon as they are
// obtained.
package google
