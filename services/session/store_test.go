package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/24kshah/nemhem-ai/services"
	"github.com/24kshah/nemhem-ai/services/search"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(maxSize int, ttl time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := NewStore(maxSize, ttl)
	store.now = clock.Now
	return store, clock
}

func TestStore_CreateGet(t *testing.T) {
	store, _ := newTestStore(10, time.Hour)

	created, err := store.Create(Options{Model: " 🟧 Groq: llama3-8b-8192 ", Search: search.Options{Web: true}})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, ModeSingle, created.Options.Mode)
	assert.Equal(t, "🟧 Groq: llama3-8b-8192", created.Options.Model)
	assert.Empty(t, created.Messages)

	got, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.Options.Search.Web)
	assert.Equal(t, 1, store.Len())
}

func TestStore_NotFound(t *testing.T) {
	store, _ := newTestStore(10, time.Hour)
	missing := uuid.New()

	_, err := store.Get(missing)
	assert.True(t, services.IsNotFoundError(err))

	_, err = store.Append(missing, Message{Role: RoleUser, Content: "hi"})
	assert.True(t, services.IsNotFoundError(err))

	_, err = store.Clear(missing)
	assert.True(t, services.IsNotFoundError(err))

	assert.True(t, services.IsNotFoundError(store.Delete(missing)))
}

func TestStore_InvalidMode(t *testing.T) {
	store, _ := newTestStore(10, time.Hour)

	_, err := store.Create(Options{Mode: "parallel"})
	assert.True(t, services.IsValidationError(err))

	sess, err := store.Create(Options{})
	require.NoError(t, err)
	_, err = store.UpdateOptions(sess.ID, Options{Mode: "parallel"})
	assert.True(t, services.IsValidationError(err))
}

func TestStore_AppendAndClear(t *testing.T) {
	store, clock := newTestStore(10, time.Hour)
	sess, err := store.Create(Options{})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	updated, err := store.Append(sess.ID,
		Message{Role: RoleUser, Content: "hi"},
		Message{Role: RoleAssistant, Content: "hello"})
	require.NoError(t, err)
	require.Len(t, updated.Messages, 2)
	assert.Equal(t, clock.Now(), updated.Messages[0].CreatedAt)
	assert.Equal(t, clock.Now(), updated.UpdatedAt)

	cleared, err := store.Clear(sess.ID)
	require.NoError(t, err)
	assert.Empty(t, cleared.Messages)
	assert.Equal(t, ModeSingle, cleared.Options.Mode)
}

func TestStore_SnapshotsAreIndependent(t *testing.T) {
	store, _ := newTestStore(10, time.Hour)
	sess, err := store.Create(Options{Mode: ModeChain, Models: []string{"a", "b"}})
	require.NoError(t, err)
	_, err = store.Append(sess.ID, Message{Role: RoleUser, Content: "original"})
	require.NoError(t, err)

	snap, err := store.Get(sess.ID)
	require.NoError(t, err)
	snap.Messages[0].Content = "mutated"
	snap.Options.Models[0] = "z"

	again, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", again.Messages[0].Content)
	assert.Equal(t, []string{"a", "b"}, again.Options.Models)
}

func TestStore_UpdateOptions(t *testing.T) {
	store, _ := newTestStore(10, time.Hour)
	sess, err := store.Create(Options{})
	require.NoError(t, err)

	updated, err := store.UpdateOptions(sess.ID, Options{
		Mode:   ModeChain,
		Models: []string{"a", "  ", "b"},
		Search: search.Options{Reddit: true, YouTube: true},
	})
	require.NoError(t, err)
	assert.Equal(t, ModeChain, updated.Options.Mode)
	assert.Equal(t, []string{"a", "b"}, updated.Options.Models)
	assert.True(t, updated.Options.Search.YouTube)
}

func TestStore_TTLExpiration(t *testing.T) {
	store, clock := newTestStore(10, 30*time.Minute)
	sess, err := store.Create(Options{})
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	_, err = store.Get(sess.ID)
	require.NoError(t, err)

	clock.Advance(11 * time.Minute)
	_, err = store.Get(sess.ID)
	assert.True(t, services.IsNotFoundError(err))
	assert.Equal(t, 0, store.Len())
}

func TestStore_LRUEviction(t *testing.T) {
	store, _ := newTestStore(2, 0)

	first, _ := store.Create(Options{})
	second, _ := store.Create(Options{})

	// touch first so second becomes least recently used
	_, err := store.Get(first.ID)
	require.NoError(t, err)

	third, _ := store.Create(Options{})

	assert.Equal(t, 2, store.Len())
	_, err = store.Get(second.ID)
	assert.True(t, services.IsNotFoundError(err))
	_, err = store.Get(first.ID)
	assert.NoError(t, err)
	_, err = store.Get(third.ID)
	assert.NoError(t, err)
}

func TestStore_Delete(t *testing.T) {
	store, _ := newTestStore(10, 0)
	sess, _ := store.Create(Options{})

	require.NoError(t, store.Delete(sess.ID))
	_, err := store.Get(sess.ID)
	assert.True(t, services.IsNotFoundError(err))
}

func TestStore_CleanupExpired(t *testing.T) {
	store, clock := newTestStore(10, time.Minute)
	_, _ = store.Create(Options{})
	_, _ = store.Create(Options{})

	clock.Advance(30 * time.Second)
	live, _ := store.Create(Options{})

	clock.Advance(45 * time.Second)
	removed := store.CleanupExpired()

	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, store.Len())
	_, err := store.Get(live.ID)
	assert.NoError(t, err)
}

func TestStore_ConcurrentAppend(t *testing.T) {
	store := NewStore(0, 0)
	sess, err := store.Create(Options{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Append(sess.ID, Message{Role: RoleUser, Content: "x"})
		}()
	}
	wg.Wait()

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 50)
}

func TestStore_StartCleanupWorker(t *testing.T) {
	store := NewStore(0, time.Nanosecond)
	_, _ = store.Create(Options{})

	stopCh := make(chan struct{})
	done := make(chan struct{})
	go func() {
		store.StartCleanupWorker(5*time.Millisecond, stopCh)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	close(stopCh)
	<-done
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, Options{}.Validate())
	assert.NoError(t, Options{Mode: ModeChain}.Validate())

	err := Options{Mode: "fanout"}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrInvalidSessionMode))
	assert.Equal(t, "fanout", services.GetErrorDetails(err)["mode"])
	assert.Empty(t, services.ErrInvalidSessionMode.Details)
}
