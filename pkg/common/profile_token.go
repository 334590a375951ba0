package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const ProfileCookieName = "profile"

var ErrInvalidProfile = errors.New("invalid profile token")

type ProfileClaims struct {
	Profile string `json:"profile"`
	jwt.RegisteredClaims
}

// ProfileSigner issues and verifies the HS256 token that names a browser profile.
type ProfileSigner struct {
	Secret []byte
	MaxAge time.Duration
}

func NewProfileSigner(secret string) *ProfileSigner {
	return &ProfileSigner{Secret: []byte(secret), MaxAge: 365 * 24 * time.Hour}
}

func (s *ProfileSigner) Sign(profile string, now time.Time) (string, error) {
	claims := ProfileClaims{
		Profile: profile,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.MaxAge)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

func (s *ProfileSigner) Parse(token string) (string, error) {
	claims := &ProfileClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if !parsed.Valid || claims.Profile == "" {
		return "", ErrInvalidProfile
	}
	return claims.Profile, nil
}

// HandleProfileCookie returns the profile of the request, issuing a new
// signed profile when the cookie is missing or does not verify.
func (s *ProfileSigner) HandleProfileCookie(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(ProfileCookieName); err == nil {
		if profile, err := s.Parse(c.Value); err == nil {
			return profile
		}
	}
	profile := uuid.NewString()
	token, err := s.Sign(profile, time.Now())
	if err != nil {
		return profile
	}
	http.SetCookie(w, &http.Cookie{
		Name:     ProfileCookieName,
		Value:    token,
		Domain:   strings.TrimPrefix(r.Host, "."),
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		MaxAge:   int(s.MaxAge.Seconds()),
		Path:     "/",
	})
	return profile
}
