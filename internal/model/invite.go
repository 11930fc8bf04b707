package model

import "time"

// InviteType distinguishes which application table an invite points at.
type InviteType string

const (
	InviteInternal InviteType = "internal"
	InvitePublic   InviteType = "public"
)

// OnboardingInvite is a single-use bearer token gating account
// creation for an approved applicant.  Regenerating an invite sets
// UsedAt on the old row and inserts a fresh one in the same
// transaction, so at most one valid token exists per application.
// Mirrors the `onboarding_invites` table.
type OnboardingInvite struct {
	ID              uint64     // onboarding_invites.id
	ApplicationID   uint64     // onboarding_invites.application_id
	ApplicationType InviteType // onboarding_invites.application_type
	Email           string     // onboarding_invites.email
	Token           string     // onboarding_invites.token (unique)
	ExpiresAt       time.Time  // onboarding_invites.expires_at
	UsedAt          *time.Time // onboarding_invites.used_at (nullable)
	CreatedBy       uint64     // onboarding_invites.created_by
	CreatedAt       time.Time  // onboarding_invites.created_at
}

// Usable reports whether the invite is still valid at now: not yet
// used and not expired.
func (i *OnboardingInvite) Usable(now time.Time) bool {
	return i.UsedAt == nil && now.Before(i.ExpiresAt)
}
