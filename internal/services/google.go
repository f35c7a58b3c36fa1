package services

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/api/idtoken"
)

// GoogleIdentity is the verified content of a Google ID token.
type GoogleIdentity struct {
	Subject  string
	Audience string
	Email    string
	Name     string
}

type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

// IDTokenVerifier checks signature and expiry against Google's public keys.
// The audience is left to the caller, which may accept several client IDs.
type IDTokenVerifier struct{}

func (IDTokenVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, idToken, "")
	if err != nil {
		return nil, errors.Wrap(err, "validate google id token")
	}

	identity := &GoogleIdentity{Subject: payload.Subject, Audience: payload.Audience}
	identity.Email, _ = payload.Claims["email"].(string)
	identity.Name, _ = payload.Claims["name"].(string)
	return identity, nil
}
