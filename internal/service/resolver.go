package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/planpoker/poker-jira-backend/internal/crypto"
	"github.com/planpoker/poker-jira-backend/internal/jira"
	"github.com/planpoker/poker-jira-backend/internal/model"
)

// Resolver turns a stored connection plus an optional override into a
// usable Jira session. Override fields win when non-empty; the stored
// password is decrypted only here, for the duration of the resolution.
type Resolver struct {
	client jira.Client
	enc    *crypto.Encryptor
}

func NewResolver(client jira.Client, enc *crypto.Encryptor) *Resolver {
	return &Resolver{client: client, enc: enc}
}

// Resolve produces a session for the connection. With a password in
// play the credentials are checked against the server right away; with
// no password there is no live check and the returned handle is
// trusted as-is. Remote calls made with a trusted handle can still be
// rejected later, that failure then belongs to the operation that
// made the call.
func (r *Resolver) Resolve(ctx context.Context, conn *model.JiraConnection, override model.AuthOverride) (*jira.Session, error) {
	apiURL := conn.APIURL

	username := override.Username
	if username == "" {
		username = conn.Username
	}

	password := override.Password
	if password == "" {
		stored, err := r.enc.Decrypt(conn.EncryptedPassword)
		if err != nil {
			return nil, fmt.Errorf("decrypt stored password: %w", err)
		}
		password = stored
	}

	if apiURL == "" || username == "" {
		return nil, nonFieldError(msgMissingCredentials)
	}

	if password == "" {
		return jira.NewSession(apiURL, username, ""), nil
	}

	session, err := r.client.Authenticate(ctx, apiURL, username, password)
	if err != nil {
		if jira.IsAuthError(err) {
			return nil, nonFieldError(msgBadCredentials)
		}
		var jiraErr *jira.Error
		if errors.As(err, &jiraErr) {
			return nil, nonFieldError(strconv.Itoa(jiraErr.StatusCode))
		}
		return nil, err
	}
	return session, nil
}
