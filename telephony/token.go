package telephony

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const accessTokenContentType = "twilio-fpa;v=1"

var (
	ErrNotConfigured = errors.New("voice credentials are not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

type (
	IncomingGrant struct {
		Allow bool `json:"allow"`
	}
	OutgoingGrant struct {
		ApplicationSid string `json:"application_sid"`
	}
	VoiceGrant struct {
		Incoming *IncomingGrant `json:"incoming,omitempty"`
		Outgoing *OutgoingGrant `json:"outgoing,omitempty"`
	}
	Grants struct {
		Identity string      `json:"identity"`
		Voice    *VoiceGrant `json:"voice,omitempty"`
	}

	// AccessClaims is the claim set of a voice capability token.
	AccessClaims struct {
		Grants Grants `json:"grants"`
		jwt.RegisteredClaims
	}

	TokenIssuer interface {
		Issue(identity string) (string, error)
	}

	// Issuer signs voice capability tokens with an API key pair.
	Issuer struct {
		accountSID string
		apiKey     string
		apiSecret  string
		appSID     string
		ttl        time.Duration
		now        func() time.Time
	}
)

func NewIssuer(accountSID, apiKey, apiSecret, appSID string, ttl time.Duration) *Issuer {
	return &Issuer{
		accountSID: accountSID,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		appSID:     appSID,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Issue returns a signed token allowing identity to place calls through the
// configured application and to receive calls.
func (i *Issuer) Issue(identity string) (string, error) {
	if i.accountSID == "" || i.apiKey == "" || i.apiSecret == "" {
		return "", ErrNotConfigured
	}

	now := i.now()
	claims := AccessClaims{
		Grants: Grants{
			Identity: identity,
			Voice: &VoiceGrant{
				Incoming: &IncomingGrant{Allow: true},
				Outgoing: &OutgoingGrant{ApplicationSid: i.appSID},
			},
		},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        fmt.Sprintf("%s-%d", i.apiKey, now.Unix()),
			Issuer:    i.apiKey,
			Subject:   i.accountSID,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["cty"] = accessTokenContentType

	signed, err := token.SignedString([]byte(i.apiSecret))
	if err != nil {
		return "", fmt.Errorf("sign voice token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token issued by i and returns its claims.
func (i *Issuer) Parse(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(i.apiSecret), nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
