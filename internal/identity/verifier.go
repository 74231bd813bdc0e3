package identity

import (
	"context"
	"fmt"
	"helpmatch/pkg/types"
	"strings"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// KeySetProvider resolves the signing keys published at a JWKS URL.
// *jwk.Cache satisfies it.
type KeySetProvider interface {
	Lookup(ctx context.Context, url string) (jwk.Set, error)
}

// StaticKeySet serves one fixed key set for every URL.
type StaticKeySet struct {
	Set jwk.Set
}

func (s StaticKeySet) Lookup(context.Context, string) (jwk.Set, error) {
	return s.Set, nil
}

type Verifier struct {
	keys      KeySetProvider
	jwksURL   string
	issuer    string
	roleClaim string
}

// NewVerifier builds a verifier for tokens signed by keys at jwksURL. An
// empty issuer skips the issuer check.
func NewVerifier(keys KeySetProvider, jwksURL, issuer, roleClaim string) *Verifier {
	if roleClaim == "" {
		roleClaim = "role"
	}

	return &Verifier{
		keys:      keys,
		jwksURL:   jwksURL,
		issuer:    issuer,
		roleClaim: roleClaim,
	}
}

// Verify validates a compact JWT and maps its claims to an actor.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*Actor, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, types.ErrUnauthenticated
	}

	set, err := v.keys.Lookup(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch jwks: %w", types.ErrIdentityUnavailable, err)
	}

	opts := []jwt.ParseOption{
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.Parse([]byte(rawToken), opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrUnauthenticated, err)
	}

	userID, ok := token.Subject()
	if !ok || userID == "" {
		return nil, fmt.Errorf("%w: token has no subject", types.ErrUnauthenticated)
	}

	role, err := v.role(token)
	if err != nil {
		return nil, err
	}

	actor := &Actor{ID: userID, Role: role}

	// Profile claims are optional.
	_ = token.Get("email", &actor.Email)
	_ = token.Get("given_name", &actor.GivenName)
	_ = token.Get("family_name", &actor.FamilyName)

	return actor, nil
}

// role reads the role claim, accepting either a boolean volunteer flag or a
// role name.
func (v *Verifier) role(token jwt.Token) (types.Role, error) {
	var raw any
	if err := token.Get(v.roleClaim, &raw); err != nil {
		return "", fmt.Errorf("%w: token has no %s claim", types.ErrUnauthenticated, v.roleClaim)
	}

	switch val := raw.(type) {
	case bool:
		return types.RoleOf(val), nil
	case string:
		switch types.Role(strings.ToLower(val)) {
		case types.RoleVolunteer:
			return types.RoleVolunteer, nil
		case types.RoleHelpSeeker, "help-seeker", "helpseeker":
			return types.RoleHelpSeeker, nil
		}
	}

	return "", fmt.Errorf("%w: unrecognized %s claim %v", types.ErrUnauthenticated, v.roleClaim, raw)
}
