package model

import "time"

// ApplicationStatus is the review state of a host application.
// Approved and rejected are both terminal; there is no re-review.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Terminal reports whether the application can no longer change state.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationApproved || s == ApplicationRejected
}

// Application is an authenticated host's proposal to list an
// experience.  Approval is the only path that instantiates a plan.
// Mirrors the `applications` table.
//
// Fields:
//  ID             – primary key identifier.
//  HostID         – host that submitted (created on first apply).
//  ExperienceName – proposed plan title.
//  Location       – where the experience runs.
//  Description    – free-text pitch.
//  CommercialContact – contact person name.
//  DailyCapacity  – proposed per-day capacity.
//  PriceCLP       – proposed host price in whole pesos.
//  Schedule       – weekly time bands (JSON).
//  DaysOfWeek     – days the experience runs (JSON).
//  MediaURLs      – gallery URLs (JSON, nullable).
//  Status         – review state.
//  AdminComment   – internal reviewer note (nullable).
//  AdminMessage   – message relayed to the applicant (nullable).
//  ReviewedBy     – reviewer user ID (nullable).
//  ReviewedAt     – review timestamp (nullable).
//  CreatedAt      – submission timestamp.
type Application struct {
	ID                uint64            // applications.id
	HostID            uint64            // applications.host_id
	ExperienceName    string            // applications.experience_name
	Location          string            // applications.location
	Description       string            // applications.description
	CommercialContact string            // applications.commercial_contact
	DailyCapacity     uint32            // applications.daily_capacity
	PriceCLP          int64             // applications.price_clp
	Schedule          []ScheduleSlot    // applications.schedule (JSON)
	DaysOfWeek        []string          // applications.days_of_week (JSON)
	MediaURLs         []string          // applications.media_urls (JSON)
	Status            ApplicationStatus // applications.status
	AdminComment      *string           // applications.admin_comment
	AdminMessage      *string           // applications.admin_message
	ReviewedBy        *uint64           // applications.reviewed_by
	ReviewedAt        *time.Time        // applications.reviewed_at
	CreatedAt         time.Time         // applications.created_at
}

// PublicApplication is the unauthenticated wizard variant: no account
// required, contact by email/phone only.  Mirrors `public_applications`.
type PublicApplication struct {
	ID                   uint64            // public_applications.id
	ExperienceName       string            // public_applications.experience_name
	Email                string            // public_applications.email
	Phone                string            // public_applications.phone
	HostName             string            // public_applications.host_name ('' = use experience name)
	Location             string            // public_applications.location
	Description          string            // public_applications.description
	CommercialContact    string            // public_applications.commercial_contact
	DailyCapacity        uint32            // public_applications.daily_capacity
	PriceCLP             int64             // public_applications.price_clp
	Schedule             []ScheduleSlot    // public_applications.schedule (JSON)
	DaysOfWeek           []string          // public_applications.days_of_week (JSON)
	MediaURLs            []string          // public_applications.media_urls (JSON)
	ExclusivityConfirmed bool              // public_applications.exclusivity_confirmed
	Status               ApplicationStatus // public_applications.status
	AdminComment         *string           // public_applications.admin_comment
	ReviewedBy           *uint64           // public_applications.reviewed_by
	ReviewedAt           *time.Time        // public_applications.reviewed_at
	CreatedAt            time.Time         // public_applications.created_at
}
