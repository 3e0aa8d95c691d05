package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedDenominations = []string{"orthodox", "baptist", "pentecostal", "evangelical"}
var seedAttendance = []string{"weekly", "monthly", "holidays"}
var seedRomanian = []string{"fluent", "conversational", "heritage"}
var seedFirstNamesM = []string{"Andrei", "Mihai", "Stefan", "Cristian", "Daniel", "Gabriel", "Ionut", "Vlad", "Radu", "Paul"}
var seedFirstNamesF = []string{"Maria", "Elena", "Ana", "Ioana", "Andreea", "Cristina", "Gabriela", "Raluca", "Diana", "Alina"}

// SeedTestData resets the database and populates it with demo users,
// profiles and swipe decisions.
//
// Behavior:
//  1. Clears existing rows in every table this service owns.
//  2. Creates 20 verified users (10 male, 10 female) with bcrypt passwords
//     and complete profiles.
//  3. Generates likes with guaranteed mutual pairs, their matches, and a
//     short conversation per match.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	tables := []string{"messages", "matches", "likes", "passes", "blocks", "reports", "profiles", "users"}
	for _, t := range tables {
		if err := db.Exec("DELETE FROM " + t).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", t, err)
		}
	}
	switch db.Dialector.Name() {
	case "mysql":
		for _, t := range tables {
			db.Exec("ALTER TABLE " + t + " AUTO_INCREMENT = 1")
		}
	case "sqlite":
		for _, t := range tables {
			db.Exec("DELETE FROM sqlite_sequence WHERE name = '" + t + "'")
		}
	}
	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	for i := 1; i <= 20; i++ {
		gender := "male"
		firstName := seedFirstNamesM[(i-1)%10]
		if i > 10 {
			gender = "female"
			firstName = seedFirstNamesF[(i-11)%10]
		}

		user := User{
			Email:          fmt.Sprintf("user%d@example.com", i),
			PasswordHash:   string(hash),
			Active:         true,
			Approved:       true,
			Verified:       true,
			Premium:        i%7 == 0,
			ShowOnline:     true,
			NotifyMatches:  true,
			NotifyMessages: true,
			LastActive:     time.Now().Add(-time.Duration(r.Intn(500)) * time.Hour),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		age := 22 + r.Intn(15)
		profile := Profile{
			UserID:           user.ID,
			FirstName:        firstName,
			LastName:         "Popescu",
			DateOfBirth:      time.Now().AddDate(-age, 0, -r.Intn(300)),
			Gender:           gender,
			City:             "Chicago",
			StateProvince:    "IL",
			Country:          "US",
			Denomination:     seedDenominations[r.Intn(len(seedDenominations))],
			ChurchAttendance: seedAttendance[r.Intn(len(seedAttendance))],
			SpeaksRomanian:   seedRomanian[r.Intn(len(seedRomanian))],
			Bio:              "Looking for someone who shares my faith and values.",
			RelationshipGoal: "marriage",
			LookingForAgeMin: 20,
			LookingForAgeMax: 40,
		}
		if err := db.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}
	}
	log.Println("Seeded 20 users with profiles.")

	// Likes: each male user likes ~5 female users; every 3rd pair is mutual.
	likes := 0
	matchesMade := 0
	for m := 1; m <= 10; m++ {
		for j := 0; j < 5; j++ {
			f := uint64(11 + r.Intn(10))
			like := Like{LikerID: uint64(m), LikedID: f, SuperLike: likes%9 == 0}
			res := db.Where("liker_id = ? AND liked_id = ?", like.LikerID, like.LikedID).FirstOrCreate(&like)
			if res.Error != nil {
				return fmt.Errorf("failed to seed like: %w", res.Error)
			}
			likes++

			if likes%3 != 0 {
				continue
			}
			back := Like{LikerID: f, LikedID: uint64(m)}
			if err := db.Where("liker_id = ? AND liked_id = ?", back.LikerID, back.LikedID).FirstOrCreate(&back).Error; err != nil {
				return fmt.Errorf("failed to seed reciprocal like: %w", err)
			}
			match := Match{User1ID: uint64(m), User2ID: f, Active: true}
			res = db.Where("user1_id = ? AND user2_id = ?", match.User1ID, match.User2ID).FirstOrCreate(&match)
			if res.Error != nil {
				return fmt.Errorf("failed to seed match: %w", res.Error)
			}
			if res.RowsAffected > 0 {
				matchesMade++
				msgs := []Message{
					{MatchID: match.ID, SenderID: uint64(m), Content: "Hey! Great to match with you."},
					{MatchID: match.ID, SenderID: f, Content: "Likewise! Which church do you attend?"},
				}
				for i := range msgs {
					if err := db.Create(&msgs[i]).Error; err != nil {
						return fmt.Errorf("failed to seed message: %w", err)
					}
				}
			}
		}
	}
	log.Printf("Seeded %d likes and %d matches.", likes, matchesMade)

	return nil
}
