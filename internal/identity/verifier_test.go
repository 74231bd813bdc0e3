package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"helpmatch/pkg/types"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://issuer.test"

type signer struct {
	key jwk.Key
	set jwk.Set
}

func newSigner(t *testing.T) *signer {
	t.Helper()

	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	key, err := jwk.Import(raw)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, "test-key"))
	require.NoError(t, key.Set(jwk.AlgorithmKey, jwa.RS256()))

	pub, err := jwk.PublicKeyOf(key)
	require.NoError(t, err)
	require.NoError(t, pub.Set(jwk.KeyIDKey, "test-key"))
	require.NoError(t, pub.Set(jwk.AlgorithmKey, jwa.RS256()))

	set := jwk.NewSet()
	require.NoError(t, set.AddKey(pub))

	return &signer{key: key, set: set}
}

func (s *signer) sign(t *testing.T, build func(b *jwt.Builder) *jwt.Builder) string {
	t.Helper()

	b := jwt.NewBuilder().
		Issuer(testIssuer).
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour))

	token, err := build(b).Build()
	require.NoError(t, err)

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.RS256(), s.key))
	require.NoError(t, err)

	return string(signed)
}

func TestVerifyMapsClaims(t *testing.T) {
	s := newSigner(t)
	v := NewVerifier(StaticKeySet{Set: s.set}, "", testIssuer, "")

	raw := s.sign(t, func(b *jwt.Builder) *jwt.Builder {
		return b.Subject("user-1").
			Claim("role", "volunteer").
			Claim("email", "vol@example.com").
			Claim("given_name", "Ada")
	})

	actor, err := v.Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", actor.ID)
	assert.Equal(t, types.RoleVolunteer, actor.Role)
	assert.Equal(t, "vol@example.com", actor.Email)
	assert.Equal(t, "Ada", actor.GivenName)
	assert.Empty(t, actor.FamilyName)
	assert.True(t, actor.IsVolunteer())
}

func TestVerifyAcceptsBooleanRoleClaim(t *testing.T) {
	s := newSigner(t)
	v := NewVerifier(StaticKeySet{Set: s.set}, "", "", "is_volunteer")

	raw := s.sign(t, func(b *jwt.Builder) *jwt.Builder {
		return b.Subject("user-2").Claim("is_volunteer", false)
	})

	actor, err := v.Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, types.RoleHelpSeeker, actor.Role)
}

func TestVerifyRejects(t *testing.T) {
	s := newSigner(t)
	other := newSigner(t)
	v := NewVerifier(StaticKeySet{Set: s.set}, "", testIssuer, "role")

	tests := map[string]string{
		"empty":   "",
		"garbage": "not-a-jwt",
		"no subject": s.sign(t, func(b *jwt.Builder) *jwt.Builder {
			return b.Claim("role", "volunteer")
		}),
		"no role": s.sign(t, func(b *jwt.Builder) *jwt.Builder {
			return b.Subject("user-1")
		}),
		"unknown role": s.sign(t, func(b *jwt.Builder) *jwt.Builder {
			return b.Subject("user-1").Claim("role", "admin")
		}),
		"wrong issuer": s.sign(t, func(b *jwt.Builder) *jwt.Builder {
			return b.Subject("user-1").Claim("role", "volunteer").Issuer("https://elsewhere.test")
		}),
		"expired": s.sign(t, func(b *jwt.Builder) *jwt.Builder {
			return b.Subject("user-1").Claim("role", "volunteer").Expiration(time.Now().Add(-time.Hour))
		}),
		"foreign key": other.sign(t, func(b *jwt.Builder) *jwt.Builder {
			return b.Subject("user-1").Claim("role", "volunteer")
		}),
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), raw)
			assert.ErrorIs(t, err, types.ErrUnauthenticated)
		})
	}
}

type failingKeySet struct{}

func (failingKeySet) Lookup(context.Context, string) (jwk.Set, error) {
	return nil, errors.New("connection refused")
}

func TestVerifyKeySetUnavailable(t *testing.T) {
	v := NewVerifier(failingKeySet{}, "https://issuer.test/jwks.json", "", "")

	_, err := v.Verify(context.Background(), "a.b.c")
	assert.ErrorIs(t, err, types.ErrIdentityUnavailable)
}

func TestAuthorize(t *testing.T) {
	assert.ErrorIs(t, Authorize(nil, types.RoleVolunteer), types.ErrUnauthenticated)
	assert.ErrorIs(t, Authorize(&Actor{}, types.RoleVolunteer), types.ErrUnauthenticated)

	seeker := &Actor{ID: "u1", Role: types.RoleHelpSeeker}
	assert.ErrorIs(t, Authorize(seeker, types.RoleVolunteer), types.ErrForbidden)
	assert.NoError(t, Authorize(seeker, types.RoleHelpSeeker))
}

func TestActorContext(t *testing.T) {
	assert.Nil(t, ActorFromContext(context.Background()))

	actor := &Actor{ID: "u1", Role: types.RoleVolunteer}
	ctx := WithActor(context.Background(), actor)
	assert.Same(t, actor, ActorFromContext(ctx))
}
