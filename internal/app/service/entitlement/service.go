// Package entitlement implements the paid-access state machine: a 30-day
// pass with a fixed quota of full analyses, granted on payment and consumed
// per stored analysis.
package entitlement

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/leaselens/leaselens/internal/models"
	"github.com/leaselens/leaselens/internal/repo"
	cfgpkg "github.com/leaselens/leaselens/pkg/config"
)

// ReasonLeaseLimitReached distinguishes an exhausted pass from a missing or
// expired one; the caller shows a "buy another pass" message instead of a
// "pay/login" one.
const ReasonLeaseLimitReached = "lease_limit_reached"

// NoAccessMessageZH is the generic denial shown for missing or expired passes.
const NoAccessMessageZH = "您当前没有有效的分析权限，请登录或完成支付后再试。"

// CheckResult is the access decision for one user at one instant.
type CheckResult struct {
	HasAccess         bool   `json:"has_access"`
	Reason            string `json:"reason,omitempty"`
	Message           string `json:"message,omitempty"`
	MessageZH         string `json:"message_zh,omitempty"`
	ExpiresAt         string `json:"expires_at,omitempty"`
	DaysRemaining     int    `json:"days_remaining"`
	AnalysesCount     int    `json:"analyses_count"`
	RemainingAnalyses int    `json:"remaining_analyses"`
}

type Service struct {
	cfg    *cfgpkg.Config
	access repo.AccessRepository
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewService(cfg *cfgpkg.Config, access repo.AccessRepository, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, access: access, log: log, now: time.Now}
}

// Grant opens (or renews) the user's access window. The consumed-analysis
// list survives renewal: buying a new pass resets the clock, not the history.
func (s *Service) Grant(ctx context.Context, userID string, days int) (*models.AccessPass, error) {
	if days <= 0 {
		days = s.cfg.Access.PassDays
	}
	var granted *models.AccessPass
	err := s.access.Mutate(ctx, userID, func(current *models.AccessPass) (*models.AccessPass, error) {
		now := s.now()
		pass := &models.AccessPass{
			UserID:    userID,
			PaidAt:    now,
			ExpiresAt: now.Add(time.Duration(days) * 24 * time.Hour),
		}
		if current != nil {
			pass.AnalysisIDs = current.AnalysisIDs
		}
		granted = pass
		return pass, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to grant access: %w", err)
	}
	s.log.Infow("access granted",
		"user_id", userID, "days", days, "expires_at", granted.ExpiresAt, "prior_analyses", granted.Consumed())
	return granted, nil
}

// Consume records analysisID against the user's pass. Idempotent on duplicate
// ids; bypass identities are never recorded.
func (s *Service) Consume(ctx context.Context, userID, analysisID string) error {
	if s.cfg.IsBypassUser(userID) {
		return nil
	}
	err := s.access.Mutate(ctx, userID, func(current *models.AccessPass) (*models.AccessPass, error) {
		if current == nil {
			// Defensive only: the caller checks access before consuming. A
			// record created here carries a lapsed window, so it grants nothing.
			current = &models.AccessPass{UserID: userID}
		}
		for _, id := range current.AnalysisIDs {
			if id == analysisID {
				return nil, nil
			}
		}
		current.AnalysisIDs = append(current.AnalysisIDs, analysisID)
		return current, nil
	})
	if err != nil {
		return fmt.Errorf("failed to consume analysis quota: %w", err)
	}
	return nil
}

// Check evaluates the user's access state: no record, expired window,
// exhausted quota, or active.
func (s *Service) Check(ctx context.Context, userID string) CheckResult {
	quota := s.cfg.Access.LeaseQuota

	if s.cfg.IsBypassUser(userID) {
		s.log.Debugw("bypass identity, access granted without record", "user_id", userID)
		return CheckResult{
			HasAccess:         true,
			DaysRemaining:     s.cfg.Access.PassDays,
			RemainingAnalyses: quota,
		}
	}

	pass, err := s.access.Get(ctx, userID)
	if err != nil {
		s.log.Errorw("access lookup failed", "user_id", userID, "err", err)
		return CheckResult{HasAccess: false}
	}
	if pass == nil {
		return CheckResult{HasAccess: false}
	}

	now := s.now()
	if pass.Expired(now) {
		return CheckResult{HasAccess: false}
	}

	count := pass.Consumed()
	if count >= quota {
		return CheckResult{
			HasAccess: false,
			Reason:    ReasonLeaseLimitReached,
			Message: fmt.Sprintf(
				"You've used all %d analyses included in your 30-day pass. Please purchase another pass for more reviews.", quota),
			MessageZH: fmt.Sprintf(
				"您已使用完30天通行证中的全部%d次分析次数。如需继续使用，请购买新的通行证。", quota),
			AnalysesCount: count,
		}
	}

	return CheckResult{
		HasAccess:         true,
		ExpiresAt:         pass.ExpiresAt.Format(time.RFC3339),
		DaysRemaining:     int(pass.ExpiresAt.Sub(now).Hours() / 24),
		AnalysesCount:     count,
		RemainingAnalyses: quota - count,
	}
}

// Revoke removes the user's pass entirely.
func (s *Service) Revoke(ctx context.Context, userID string) error {
	if err := s.access.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke access: %w", err)
	}
	s.log.Infow("access revoked", "user_id", userID)
	return nil
}
