package store_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"friendchat/internal/domain"
	"friendchat/internal/store"
)

type opener func(t *testing.T) *store.Store

func backends() map[string]opener {
	b := map[string]opener{
		store.DriverSQLite: func(t *testing.T) *store.Store {
			return open(t, store.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
		},
	}
	if dsn := os.Getenv("FRIENDCHAT_TEST_POSTGRES_DSN"); dsn != "" {
		b[store.DriverPostgres] = func(t *testing.T) *store.Store {
			return open(t, store.DriverPostgres, dsn)
		}
	}
	return b
}

func open(t *testing.T, driver, dsn string) *store.Store {
	t.Helper()
	s, err := store.Open(driver, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate())
	require.NoError(t, s.Truncate())
	return s
}

func createUsers(t *testing.T, s *store.Store, names ...string) []*domain.User {
	t.Helper()
	users := make([]*domain.User, 0, len(names))
	for _, n := range names {
		u := &domain.User{Username: n, DisplayName: n}
		require.NoError(t, s.Users.Create(context.Background(), u))
		users = append(users, u)
	}
	return users
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := store.Open("oracle", "")
	assert.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := open(t, store.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	assert.NoError(t, s.Migrate())
}

func TestUsers(t *testing.T) {
	for name, openStore := range backends() {
		t.Run(name, func(t *testing.T) {
			s := openStore(t)
			ctx := context.Background()
			users := createUsers(t, s, "alice", "bob", "carol")

			got, err := s.Users.GetByUsername(ctx, "bob")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, users[1].ID, got.ID)

			missing, err := s.Users.GetByUsername(ctx, "dave")
			require.NoError(t, err)
			assert.Nil(t, missing)

			byID, err := s.Users.GetByID(ctx, users[2].ID)
			require.NoError(t, err)
			assert.Equal(t, "carol", byID.Username)

			others, err := s.Users.ListOthers(ctx, users[0].ID)
			require.NoError(t, err)
			require.Len(t, others, 2)
			assert.Equal(t, "bob", others[0].Username)
			assert.Equal(t, "carol", others[1].Username)

			err = s.Users.Create(ctx, &domain.User{Username: "alice"})
			assert.ErrorIs(t, err, domain.ErrConflict)
		})
	}
}

func TestFriendGraph(t *testing.T) {
	for name, openStore := range backends() {
		t.Run(name, func(t *testing.T) {
			s := openStore(t)
			ctx := context.Background()
			u := createUsers(t, s, "alice", "bob", "carol")
			alice, bob, carol := u[0], u[1], u[2]

			created, err := s.Friends.AddFriend(ctx, alice.ID, bob.ID)
			require.NoError(t, err)
			assert.True(t, created)

			for _, pair := range [][2]int64{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
				ok, err := s.Friends.AreFriends(ctx, pair[0], pair[1])
				require.NoError(t, err)
				assert.True(t, ok)
			}
			ok, err := s.Friends.AreFriends(ctx, alice.ID, carol.ID)
			require.NoError(t, err)
			assert.False(t, ok)

			created, err = s.Friends.AddFriend(ctx, alice.ID, bob.ID)
			require.NoError(t, err)
			assert.False(t, created)

			ids, err := s.Friends.ListFriends(ctx, alice.ID)
			require.NoError(t, err)
			assert.Equal(t, []int64{bob.ID}, ids)

			ids, err = s.Friends.ListFriends(ctx, bob.ID)
			require.NoError(t, err)
			assert.Equal(t, []int64{alice.ID}, ids)

			profiles, err := s.Friends.ListFriendUsers(ctx, bob.ID)
			require.NoError(t, err)
			require.Len(t, profiles, 1)
			assert.Equal(t, "alice", profiles[0].Username)

			_, err = s.Friends.AddFriend(ctx, carol.ID, carol.ID)
			assert.ErrorIs(t, err, domain.ErrSelfFriend)
			ids, err = s.Friends.ListFriends(ctx, carol.ID)
			require.NoError(t, err)
			assert.Empty(t, ids)

			ids, err = s.Friends.ListFriends(ctx, 999999)
			require.NoError(t, err)
			assert.NotNil(t, ids)
			assert.Empty(t, ids)
		})
	}
}

func TestAddFriendConcurrentDirections(t *testing.T) {
	for name, openStore := range backends() {
		t.Run(name, func(t *testing.T) {
			s := openStore(t)
			ctx := context.Background()
			u := createUsers(t, s, "alice", "bob")
			alice, bob := u[0], u[1]

			var wg sync.WaitGroup
			results := make([]bool, 2)
			errs := make([]error, 2)
			for i, pair := range [][2]int64{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
				wg.Add(1)
				go func() {
					defer wg.Done()
					results[i], errs[i] = s.Friends.AddFriend(ctx, pair[0], pair[1])
				}()
			}
			wg.Wait()

			require.NoError(t, errs[0])
			require.NoError(t, errs[1])
			assert.True(t, results[0] != results[1], "exactly one add reports created, got %v", results)

			for _, pair := range [][2]int64{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
				ok, err := s.Friends.AreFriends(ctx, pair[0], pair[1])
				require.NoError(t, err)
				assert.True(t, ok)
			}
		})
	}
}

func TestAddFriendFailureLeavesNoEdge(t *testing.T) {
	for name, openStore := range backends() {
		t.Run(name, func(t *testing.T) {
			s := openStore(t)
			ctx := context.Background()
			alice := createUsers(t, s, "alice")[0]
			const missing int64 = 999999

			for _, pair := range [][2]int64{{alice.ID, missing}, {missing, alice.ID}} {
				created, err := s.Friends.AddFriend(ctx, pair[0], pair[1])
				require.Error(t, err)
				assert.False(t, created)
			}

			for _, pair := range [][2]int64{{alice.ID, missing}, {missing, alice.ID}} {
				ok, err := s.Friends.AreFriends(ctx, pair[0], pair[1])
				require.NoError(t, err)
				assert.False(t, ok)
			}
			ids, err := s.Friends.ListFriends(ctx, alice.ID)
			require.NoError(t, err)
			assert.Empty(t, ids)
		})
	}
}

func TestMessageLog(t *testing.T) {
	for name, openStore := range backends() {
		t.Run(name, func(t *testing.T) {
			s := openStore(t)
			ctx := context.Background()
			u := createUsers(t, s, "alice", "bob", "carol")
			alice, bob, carol := u[0], u[1], u[2]

			// A frozen clock must still yield strictly increasing sent_at.
			frozen := time.Unix(1_700_000_000, 0)
			var sent []*domain.Message
			for i, dir := range [][2]int64{{alice.ID, bob.ID}, {bob.ID, alice.ID}, {alice.ID, carol.ID}, {alice.ID, bob.ID}} {
				m := &domain.Message{SenderID: dir[0], ReceiverID: dir[1], Body: string(rune('a' + i)), SentAt: frozen}
				require.NoError(t, s.Messages.Create(ctx, m))
				assert.False(t, m.Seen)
				sent = append(sent, m)
			}
			for i := 1; i < len(sent); i++ {
				assert.True(t, sent[i-1].SentAt.Before(sent[i].SentAt), "sent_at must increase")
			}

			// A clock that steps backwards is also corrected.
			back := &domain.Message{SenderID: bob.ID, ReceiverID: alice.ID, Body: "e", SentAt: frozen.Add(-time.Hour)}
			require.NoError(t, s.Messages.Create(ctx, back))
			assert.True(t, sent[len(sent)-1].SentAt.Before(back.SentAt))

			thread, err := s.Messages.ListThread(ctx, bob.ID, alice.ID)
			require.NoError(t, err)
			var threadBodies []string
			for _, m := range thread {
				threadBodies = append(threadBodies, m.Body)
			}
			assert.Equal(t, []string{"a", "b", "d", "e"}, threadBodies)

			unseen, err := s.Messages.TakeUnseen(ctx, alice.ID, bob.ID)
			require.NoError(t, err)
			require.Len(t, unseen, 2)
			assert.Equal(t, "a", unseen[0].Body)
			assert.Equal(t, "d", unseen[1].Body)
			assert.True(t, unseen[0].Seen)

			again, err := s.Messages.TakeUnseen(ctx, alice.ID, bob.ID)
			require.NoError(t, err)
			assert.Empty(t, again)

			thread, err = s.Messages.ListThread(ctx, alice.ID, bob.ID)
			require.NoError(t, err)
			for _, m := range thread {
				assert.Equal(t, m.SenderID == alice.ID, m.Seen, "message %q", m.Body)
			}
		})
	}
}
