package db

import (
	"time"
)

// User carries the account and status flags the matching core reads.
// Authentication flows (registration, password reset, verification emails)
// live outside this service; the core only consumes these records.
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"size:255;not null"`

	// Status flags. No column defaults on the true-leaning bools: a default
	// tag makes GORM treat an explicit false as unset on Create, which would
	// silently flip an opted-out or deactivated account back on. Writers set
	// every flag explicitly.
	Active   bool `gorm:"column:is_active"`
	Approved bool `gorm:"column:is_approved;default:false"`
	Verified bool `gorm:"column:is_verified;default:false"`
	Premium  bool `gorm:"column:is_premium;default:false"`
	Admin    bool `gorm:"column:is_admin;default:false"`
	Paused   bool `gorm:"column:is_paused;default:false"`

	// Privacy / notification settings
	ShowOnline     bool
	NotifyMatches  bool
	NotifyMessages bool

	LastLogin  time.Time
	LastActive time.Time `gorm:"index"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Profile holds the dating profile for one user.
type Profile struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	UserID uint64 `gorm:"uniqueIndex;not null"`

	FirstName   string    `gorm:"size:50"`
	LastName    string    `gorm:"size:50"`
	DateOfBirth time.Time `gorm:"index"`
	Gender      string    `gorm:"size:20;index"` // "male" / "female"

	City          string `gorm:"size:100"`
	StateProvince string `gorm:"size:100"`
	Country       string `gorm:"size:10;default:US"`

	Denomination     string `gorm:"size:50"`
	ChurchAttendance string `gorm:"size:30"` // weekly, monthly, holidays, rarely
	SpeaksRomanian   string `gorm:"size:20"` // fluent, conversational, learning, heritage
	FaithImportance  string `gorm:"size:20"`

	Bio        string `gorm:"type:text"`
	Occupation string `gorm:"size:100"`

	RelationshipGoal string `gorm:"size:30"` // marriage, serious, friendship_first
	LookingForAgeMin int    `gorm:"default:18"`
	LookingForAgeMax int    `gorm:"default:99"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Like records a directional like. The unique index on (liker_id, liked_id)
// is the sole integrity guard against concurrent double-inserts; application
// code treats a duplicate-key failure as "row already exists".
//
// Indexes:
//   - idx_likes_super(liker_id, is_super_like, created_at)
//     super-like quota counting within the current UTC day.
//   - idx_likes_received(liked_id, created_at)
//     reverse lookup for mutual-like detection and "who liked me" feeds.
type Like struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	LikerID   uint64    `gorm:"not null;uniqueIndex:uniq_like,priority:1;index:idx_likes_super,priority:1"`
	LikedID   uint64    `gorm:"not null;uniqueIndex:uniq_like,priority:2;index:idx_likes_received,priority:1"`
	SuperLike bool      `gorm:"column:is_super_like;default:false;index:idx_likes_super,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_likes_super,priority:3;index:idx_likes_received,priority:2"`
}

// Pass records a swipe-left. Exclusion marker only; never triggers matching.
type Pass struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	PasserID  uint64    `gorm:"not null;uniqueIndex:uniq_pass,priority:1"`
	PassedID  uint64    `gorm:"not null;uniqueIndex:uniq_pass,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Match is the canonical mutual relationship. User1ID < User2ID always, so
// the unique pair index catches both insertion orders. Deactivation is
// terminal for the pair: the unique index blocks a second row, and lookups
// return the inactive one via the idempotent path.
type Match struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	User1ID uint64 `gorm:"not null;uniqueIndex:uniq_match,priority:1;index:idx_matches_user1_active,priority:1;check:chk_ordered_pair,user1_id < user2_id"`
	User2ID uint64 `gorm:"not null;uniqueIndex:uniq_match,priority:2;index:idx_matches_user2_active,priority:1"`

	MatchedAt   time.Time `gorm:"autoCreateTime"`
	Active      bool      `gorm:"column:is_active;default:true;index:idx_matches_user1_active,priority:2;index:idx_matches_user2_active,priority:2"`
	UnmatchedBy uint64
	UnmatchedAt *time.Time
}

// Message belongs to exactly one match. Sender membership is enforced at the
// service boundary on every write; there is no per-match membership table to
// hang a foreign key on. Soft delete is per viewer and never removes rows.
//
// Indexes:
//   - idx_messages_unread(match_id, sender_id, is_read) for unread counts.
//   - idx_messages_match_created(match_id, created_at) for ordering.
type Message struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	MatchID  uint64 `gorm:"not null;index:idx_messages_unread,priority:1;index:idx_messages_match_created,priority:1"`
	SenderID uint64 `gorm:"not null;index:idx_messages_unread,priority:2"`

	Content string `gorm:"type:text;not null"`

	Read   bool `gorm:"column:is_read;default:false;index:idx_messages_unread,priority:3"`
	ReadAt *time.Time

	DeletedBySender   bool `gorm:"default:false"`
	DeletedByReceiver bool `gorm:"default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_messages_match_created,priority:2"`
}

// Block is directional; interaction checks consult both directions.
// Creating one deactivates any active match between the pair.
type Block struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	BlockerID uint64    `gorm:"not null;uniqueIndex:uniq_block,priority:1"`
	BlockedID uint64    `gorm:"not null;uniqueIndex:uniq_block,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Report is a user-submitted safety report. ReporterID zero means the report
// was raised by auto-moderation rather than a person.
type Report struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	ReporterID uint64 `gorm:"index"`
	ReportedID uint64 `gorm:"not null;index"`

	Reason      string `gorm:"size:50;not null"`
	Description string `gorm:"type:text"`

	Status          string `gorm:"size:20;default:pending"` // pending, resolved, dismissed
	ResolvedByID    uint64
	ResolvedAt      *time.Time
	ResolutionNotes string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}
