package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/syncfield/standup-bot/internal/domain"
	"github.com/syncfield/standup-bot/internal/domain/contract"
	"github.com/syncfield/standup-bot/internal/domain/errs"
)

// magicClaims is the signed payload of a response link. The token is self
// contained; validity is re-derived from live instance and member state at
// verification time, so nothing is persisted for it.
type magicClaims struct {
	InstanceID     int64  `json:"instance_id"`
	MemberID       int64  `json:"member_id"`
	PlatformUserID string `json:"platform_user_id"`
	OrgID          string `json:"org_id"`
	jwt.RegisteredClaims
}

type tokenService struct {
	dm   contract.DataManager
	opts Options
}

func newToken(dm contract.DataManager, opts Options) *tokenService {
	return &tokenService{dm: dm, opts: opts}
}

// Generate issues a signed single-purpose response token and the URL that
// embeds it. The ttl defaults to 24h; the effective lifetime is still capped
// by the instance's collection window at validation time.
func (s *tokenService) Generate(instanceID, memberID int64, platformUserID, orgID string, ttl time.Duration) (*contract.MagicToken, error) {
	if ttl <= 0 {
		ttl = s.opts.TokenTTL
	}

	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := &magicClaims{
		InstanceID:     instanceID,
		MemberID:       memberID,
		PlatformUserID: platformUserID,
		OrgID:          orgID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.opts.SigningKey)
	if err != nil {
		return nil, errs.Dependency(fmt.Errorf("failed to sign token: %w", err))
	}

	return &contract.MagicToken{
		Token:      signed,
		ExpiresAt:  expiresAt,
		RespondURL: fmt.Sprintf("%s/standup/respond?token=%s", s.opts.BaseURL, signed),
	}, nil
}

// Validate checks signature and expiry first (no lookups on a bad token), then
// re-derives validity from current state: the instance must exist in the
// token's org, the member must be active and in the snapshot, the instance
// must still be collecting, and the collection window must be open. Every
// rejection is logged with its specific reason; the caller only ever sees an
// opaque unauthorized error.
func (s *tokenService) Validate(token string, now time.Time) (*contract.TokenPayload, error) {
	claims := &magicClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.opts.SigningKey, nil
	})
	if err != nil || !parsed.Valid {
		s.rejected(claims, "bad signature or expired token", err)
		return nil, errs.Unauthorized()
	}

	inst, err := s.dm.Instance().GetByID(claims.InstanceID)
	if err != nil {
		return nil, errs.Dependency(err)
	}
	if inst == nil {
		s.rejected(claims, "instance not found", nil)
		return nil, errs.Unauthorized()
	}

	team, err := s.dm.Team().GetByID(inst.TeamID)
	if err != nil {
		return nil, errs.Dependency(err)
	}
	if team == nil || team.OrgID != claims.OrgID {
		s.rejected(claims, "cross-tenant token", nil)
		return nil, errs.Unauthorized()
	}

	member, err := s.dm.Member().GetByID(claims.MemberID)
	if err != nil {
		return nil, errs.Dependency(err)
	}
	if member == nil || !member.IsActive {
		s.rejected(claims, "member missing or inactive", nil)
		return nil, errs.Unauthorized()
	}
	if inst.Participant(claims.MemberID) == nil {
		s.rejected(claims, "member not in instance snapshot", nil)
		return nil, errs.Unauthorized()
	}

	if inst.State != domain.StateCollecting {
		s.rejected(claims, "instance not collecting", nil)
		return nil, errs.Unauthorized()
	}

	// A token never outlives its instance's collection window, regardless of
	// its own unexpired signature
	if now.After(inst.TimeoutAt()) {
		s.rejected(claims, "collection window closed", nil)
		return nil, errs.Unauthorized()
	}

	return &contract.TokenPayload{
		InstanceID:     claims.InstanceID,
		MemberID:       claims.MemberID,
		PlatformUserID: claims.PlatformUserID,
		OrgID:          claims.OrgID,
	}, nil
}

// HasExistingResponses reports whether the member already has any recorded
// answer for the instance. Used for UI prefill only; submission authority
// stays with the answer collector.
func (s *tokenService) HasExistingResponses(instanceID, memberID int64) (bool, error) {
	count, err := s.dm.Answer().CountByInstanceAndMember(instanceID, memberID)
	if err != nil {
		return false, errs.Dependency(err)
	}
	return count > 0, nil
}

func (s *tokenService) rejected(claims *magicClaims, reason string, err error) {
	entry := logrus.WithFields(logrus.Fields{
		"component":   "magic-token",
		"instance_id": claims.InstanceID,
		"member_id":   claims.MemberID,
		"reason":      reason,
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn("magic token rejected")
}
