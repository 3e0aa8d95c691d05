package notify_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bogdang40/DouaInimi/internal/cache"
	"github.com/bogdang40/DouaInimi/internal/config"
	"github.com/bogdang40/DouaInimi/internal/db"
	"github.com/bogdang40/DouaInimi/internal/events"
	"github.com/bogdang40/DouaInimi/internal/notify"
	"github.com/bogdang40/DouaInimi/internal/presence"
	"github.com/bogdang40/DouaInimi/internal/repository"
)

// fakeSender records outgoing mail instead of dialing SMTP.
type fakeSender struct {
	mu   sync.Mutex
	sent []*gomail.Message
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m...)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func setupNotifier(t *testing.T) (*notify.Notifier, *fakeSender, *presence.Tracker, *gorm.DB) {
	t.Helper()

	dbase, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	require.NoError(t, err)
	require.NoError(t, dbase.AutoMigrate(&db.User{}))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	cfg.SMTP.Enabled = true

	tracker := presence.NewTracker(cache.NewRedisCache(cfg))
	sender := &fakeSender{}
	notifier := notify.NewNotifier(cfg, sender, repository.NewUserRepository(dbase), tracker)
	return notifier, sender, tracker, dbase
}

func seedUser(t *testing.T, dbase *gorm.DB, id uint64, notifyMatches, notifyMessages bool) {
	t.Helper()
	user := db.User{
		ID:             id,
		Email:          fmt.Sprintf("user%d@test.com", id),
		PasswordHash:   "x",
		Active:         true,
		NotifyMatches:  notifyMatches,
		NotifyMessages: notifyMessages,
	}
	require.NoError(t, dbase.Create(&user).Error)
}

func TestMatchEmailBothParticipants(t *testing.T) {
	notifier, sender, _, dbase := setupNotifier(t)
	seedUser(t, dbase, 1, true, true)
	seedUser(t, dbase, 2, true, true)

	notifier.Handle(events.NewMatchCreated(10, 1, 2))
	assert.Equal(t, 2, sender.count())
}

func TestMatchEmailHonorsOptOut(t *testing.T) {
	notifier, sender, _, dbase := setupNotifier(t)
	seedUser(t, dbase, 1, false, true)
	seedUser(t, dbase, 2, true, true)

	notifier.Handle(events.NewMatchCreated(10, 1, 2))
	assert.Equal(t, 1, sender.count())
}

func TestMessageEmailSuppressedWhenOnline(t *testing.T) {
	notifier, sender, tracker, dbase := setupNotifier(t)
	seedUser(t, dbase, 2, true, true)

	// recipient offline: email goes out
	notifier.Handle(events.NewMessageSent(10, 1, 1, 2, "hello"))
	assert.Equal(t, 1, sender.count())

	// recipient online: suppressed
	require.NoError(t, tracker.SetOnline(context.Background(), 2))
	notifier.Handle(events.NewMessageSent(10, 2, 1, 2, "hello again"))
	assert.Equal(t, 1, sender.count())

	// back offline: delivered again
	require.NoError(t, tracker.SetOffline(context.Background(), 2))
	notifier.Handle(events.NewMessageSent(10, 3, 1, 2, "third"))
	assert.Equal(t, 2, sender.count())
}

func TestMessageEmailHonorsOptOut(t *testing.T) {
	notifier, sender, _, dbase := setupNotifier(t)
	seedUser(t, dbase, 2, true, false)

	notifier.Handle(events.NewMessageSent(10, 1, 1, 2, "hello"))
	assert.Equal(t, 0, sender.count())
}

func TestDisabledSMTPSendsNothing(t *testing.T) {
	_, sender, _, dbase := setupNotifier(t)
	seedUser(t, dbase, 1, true, true)
	seedUser(t, dbase, 2, true, true)

	cfg := config.New()
	cfg.SMTP.Enabled = false
	silent := notify.NewNotifier(cfg, sender, repository.NewUserRepository(dbase), nil)
	silent.Handle(events.NewMatchCreated(10, 1, 2))
	assert.Equal(t, 0, sender.count())
}
