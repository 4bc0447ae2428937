package sessions

import "time"

// DefaultTTL applies when a repository is built without a refresh TTL.
const DefaultTTL = 7 * 24 * time.Hour

// Session is a refresh session. It binds the owner to the project resolved
// at login so a refreshed access token restores the same editor.
type Session struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	RefreshToken string    `bson:"refreshToken" json:"refreshToken"`
	Email        string    `bson:"email" json:"email"`
	ProjectID    string    `bson:"projectId" json:"projectId"`
	TemplateType string    `bson:"templateType" json:"templateType"`
	ExpiresAt    time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// Expired reports whether the session is no longer usable at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// stamp fills in the creation and expiry times a caller left unset.
func (s *Session) stamp(now time.Time, ttl time.Duration) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = s.CreatedAt.Add(ttl)
	}
}

func orDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}

// Binding is what a session is created for.
type Binding struct {
	Email        string
	ProjectID    string
	TemplateType string
}
