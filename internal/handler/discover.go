package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bogdang40/DouaInimi/internal/repository"
)

// candidateView is the public projection of a discovery result. Account
// fields stay out of it.
type candidateView struct {
	UserID           uint64    `json:"user_id"`
	FirstName        string    `json:"first_name"`
	Age              int       `json:"age"`
	Gender           string    `json:"gender"`
	City             string    `json:"city"`
	StateProvince    string    `json:"state_province,omitempty"`
	Country          string    `json:"country"`
	Denomination     string    `json:"denomination,omitempty"`
	ChurchAttendance string    `json:"church_attendance,omitempty"`
	SpeaksRomanian   string    `json:"speaks_romanian,omitempty"`
	RelationshipGoal string    `json:"relationship_goal,omitempty"`
	Bio              string    `json:"bio"`
	Occupation       string    `json:"occupation,omitempty"`
	Premium          bool      `json:"is_premium"`
	LastActive       time.Time `json:"last_active"`
	IsOnline         bool      `json:"is_online"`
}

func newCandidateView(cand repository.Candidate, online bool) candidateView {
	return candidateView{
		UserID:           cand.ID,
		FirstName:        cand.Profile.FirstName,
		Age:              ageOf(cand.Profile.DateOfBirth),
		Gender:           cand.Profile.Gender,
		City:             cand.Profile.City,
		StateProvince:    cand.Profile.StateProvince,
		Country:          cand.Profile.Country,
		Denomination:     cand.Profile.Denomination,
		ChurchAttendance: cand.Profile.ChurchAttendance,
		SpeaksRomanian:   cand.Profile.SpeaksRomanian,
		RelationshipGoal: cand.Profile.RelationshipGoal,
		Bio:              cand.Profile.Bio,
		Occupation:       cand.Profile.Occupation,
		Premium:          cand.Premium,
		LastActive:       cand.LastActive,
		IsOnline:         online,
	}
}

func ageOf(dob time.Time) int {
	now := time.Now().UTC()
	age := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		age--
	}
	return age
}

// Discover handles GET /api/discover.
func (h *Handler) Discover(c *gin.Context) {
	filters := repository.DiscoverFilters{
		Denomination:     c.Query("denomination"),
		Country:          c.Query("country"),
		StateProvince:    c.Query("state"),
		SpeaksRomanian:   c.Query("speaks_romanian"),
		ChurchAttendance: c.Query("church_attendance"),
		RelationshipGoal: c.Query("relationship_goal"),
	}
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 0)

	result, err := h.discover.FindCandidates(c.Request.Context(), currentUser(c), filters, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]candidateView, 0, len(result.Candidates))
	for _, cand := range result.Candidates {
		// A candidate who turned show_online off always reads as offline.
		online := cand.ShowOnline && h.presence.IsOnline(c.Request.Context(), cand.ID)
		views = append(views, newCandidateView(cand, online))
	}

	c.JSON(http.StatusOK, gin.H{
		"candidates": views,
		"total":      result.Total,
		"page":       result.Page,
		"page_size":  result.PageSize,
	})
}
