package model

import "time"

// HostStatus is the supplier account state.  "pending" hosts have an
// application under review; approval activates them.
type HostStatus string

const (
	HostPending   HostStatus = "pending"
	HostActive    HostStatus = "active"
	HostSuspended HostStatus = "suspended"
)

// Host is the supplier account that owns plans.  Mirrors the `hosts`
// table.
type Host struct {
	ID           uint64     // hosts.id
	UserID       uint64     // hosts.user_id
	BusinessName string     // hosts.business_name
	Slug         string     // hosts.slug (unique, public URL handle)
	TagLine      *string    // hosts.tagline (nullable)
	Location     *string    // hosts.location (nullable)
	Phone        *string    // hosts.phone (nullable)
	Instagram    *string    // hosts.instagram (nullable)
	Website      *string    // hosts.website (nullable)
	Status       HostStatus // hosts.status
	CreatedAt    time.Time  // hosts.created_at
}

// HostProfile carries the legal and banking data collected when an
// approved applicant completes onboarding.  Mirrors `host_profiles`.
type HostProfile struct {
	ID              uint64    // host_profiles.id
	HostID          uint64    // host_profiles.host_id
	LegalName       string    // host_profiles.legal_name
	RUT             string    // host_profiles.rut
	LegalRepName    string    // host_profiles.legal_rep_name
	LegalRepRUT     string    // host_profiles.legal_rep_rut
	BankName        string    // host_profiles.bank_name
	BankAccount     string    // host_profiles.bank_account
	BankType        string    // host_profiles.bank_type (vista|corriente)
	TermsAcceptedAt time.Time // host_profiles.terms_accepted_at
	Onboarded       bool      // host_profiles.onboarded
}

// Message is a note from a host to the admin team, e.g. a request to
// change a published plan.  Mirrors the `messages` table.
type Message struct {
	ID        uint64    // messages.id
	HostID    uint64    // messages.host_id
	SenderID  uint64    // messages.sender_id
	Content   string    // messages.content
	Read      bool      // messages.read
	CreatedAt time.Time // messages.created_at
}
