package entity

import "time"

// Roles a user can hold. Transitions only ever flip between these two values.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the aggregate root for accounts and authorization state.
// Password holds a bcrypt hash and is excluded from every serialized form.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
	Role     string `json:"role"`

	AvatarID  string `json:"-"`
	AvatarURL string `json:"avatar_url"`

	SubscriptionID     *string `json:"subscription_id"`
	SubscriptionStatus *string `json:"subscription_status"`

	// Stored payment identity at the external processor; both are managed
	// out of band and only read here.
	StripeCustomerID *string `json:"-"`
	PaymentMethodID  *string `json:"-"`

	ResetTokenHash    *string    `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// HasActiveSubscription reports whether the external processor last reported
// the subscription as active.
func (u *User) HasActiveSubscription() bool {
	return u.SubscriptionStatus != nil && *u.SubscriptionStatus == "active"
}

// PlaylistItem is a bookmarked course with its cached poster URL.
// Uniqueness by course is enforced by the store.
type PlaylistItem struct {
	CourseID  string    `json:"course"`
	PosterURL string    `json:"poster"`
	AddedAt   time.Time `json:"added_at"`
}
