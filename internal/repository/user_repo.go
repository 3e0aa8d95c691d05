package repository

import (
	"context"
	"time"

	"github.com/bogdang40/DouaInimi/internal/db"

	"gorm.io/gorm"
)

// UserRepository reads identity records and runs the discovery query.
// Account management itself belongs to the identity collaborator; this core
// only consumes users.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Candidate is a discovery result: the user row joined with its profile.
type Candidate struct {
	db.User
	Profile db.Profile `gorm:"-"`
}

// DiscoverFilters are the optional equality filters of the search form.
// Empty fields are ignored.
type DiscoverFilters struct {
	Denomination     string
	Country          string
	StateProvince    string
	SpeaksRomanian   string
	ChurchAttendance string
	RelationshipGoal string
}

// FindByID returns a user by id, or nil when absent.
func (r *UserRepository) FindByID(ctx context.Context, userID uint64) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).First(&user, userID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileOf returns the profile for a user, or nil when absent.
func (r *UserRepository) ProfileOf(ctx context.Context, userID uint64) (*db.Profile, error) {
	var profile db.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// TouchLastActive updates the activity timestamp used by discovery ordering
// and the online-status fallback.
func (r *UserRepository) TouchLastActive(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", userID).
		Update("last_active", time.Now().UTC()).Error
}

// FindCandidates runs the discovery query for a viewer.
//
// Behavior:
//   - Base predicate: active, verified, with a display name and bio.
//   - excludedIDs (self, blocks both ways, already-liked) are filtered out.
//     Passed users are deliberately NOT in this set.
//   - Strictly opposite gender of viewerGender.
//   - Viewer age preferences translate to a date-of-birth window against the
//     current date.
//   - Optional equality filters applied when non-empty.
//   - Ordered by last_active DESC; offset/limit with a stable total count.
func (r *UserRepository) FindCandidates(
	ctx context.Context,
	viewerGender string,
	ageMin, ageMax int,
	excludedIDs []uint64,
	filters DiscoverFilters,
	page, pageSize int,
) ([]Candidate, int64, error) {
	query := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN profiles ON profiles.user_id = users.id").
		Where("users.is_active = ? AND users.is_verified = ?", true, true).
		Where("profiles.first_name != '' AND profiles.bio != ''")

	if len(excludedIDs) > 0 {
		query = query.Where("users.id NOT IN ?", excludedIDs)
	}

	// opposite gender only, by product design
	switch viewerGender {
	case "female":
		query = query.Where("profiles.gender = ?", "male")
	case "male":
		query = query.Where("profiles.gender = ?", "female")
	}

	today := time.Now().UTC()
	if ageMin > 0 {
		maxBirth := time.Date(today.Year()-ageMin, today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		query = query.Where("profiles.date_of_birth <= ?", maxBirth)
	}
	if ageMax > 0 {
		minBirth := time.Date(today.Year()-ageMax-1, today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		query = query.Where("profiles.date_of_birth >= ?", minBirth)
	}

	if filters.Denomination != "" {
		query = query.Where("profiles.denomination = ?", filters.Denomination)
	}
	if filters.Country != "" {
		query = query.Where("profiles.country = ?", filters.Country)
	}
	if filters.StateProvince != "" {
		query = query.Where("profiles.state_province = ?", filters.StateProvince)
	}
	if filters.SpeaksRomanian != "" {
		query = query.Where("profiles.speaks_romanian = ?", filters.SpeaksRomanian)
	}
	if filters.ChurchAttendance != "" {
		query = query.Where("profiles.church_attendance = ?", filters.ChurchAttendance)
	}
	if filters.RelationshipGoal != "" {
		query = query.Where("profiles.relationship_goal = ?", filters.RelationshipGoal)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}

	var users []db.User
	if err := query.
		Select("users.*").
		Order("users.last_active DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	if len(users) == 0 {
		return nil, total, nil
	}

	// attach profiles in one query
	ids := make([]uint64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	var profiles []db.Profile
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	byUser := make(map[uint64]db.Profile, len(profiles))
	for _, p := range profiles {
		byUser[p.UserID] = p
	}

	candidates := make([]Candidate, 0, len(users))
	for _, u := range users {
		candidates = append(candidates, Candidate{User: u, Profile: byUser[u.ID]})
	}
	return candidates, total, nil
}
