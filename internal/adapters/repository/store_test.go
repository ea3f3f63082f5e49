package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/legend/internal/domain/engine"
	"github.com/okian/legend/internal/domain/game"
	"github.com/okian/legend/internal/domain/model"
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
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func sampleSession(id string, at time.Time) *game.Session {
	s := game.NewSession(id, at)
	s.State = game.StatePlaying
	s.Conference = model.West
	s.Candidates = []model.Player{{
		Name:       "Stephen Curry",
		Conference: model.West,
		Team:       "Warriors",
		Position:   model.PositionGuard,
		Age:        36,
		HeightCm:   188,
		Stats:      model.Stats{model.StatPoints: 26.4},
		HasAwards:  true,
	}}
	q := engine.TeamQuestion("Warriors")
	s.Active = &q
	s.QuestionsAsked = 2
	s.Log = []game.LogEntry{{Round: 0, Message: "Think of an active NBA player from the Western Conference...", At: at}}
	return s
}

// runStoreContract exercises behaviour every Store must share.
func runStoreContract(newStore func(ttl time.Duration) (Store, func(time.Duration))) {
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	Convey("When a session is saved and loaded", func() {
		store, _ := newStore(0)
		defer func() { _ = store.Close() }()
		So(store.Save(ctx, sampleSession("s1", at)), ShouldBeNil)

		loaded, err := store.Load(ctx, "s1")
		So(err, ShouldBeNil)

		Convey("Then the state round-trips", func() {
			So(loaded.ID, ShouldEqual, "s1")
			So(loaded.State, ShouldEqual, game.StatePlaying)
			So(loaded.Conference, ShouldEqual, model.West)
			So(model.Names(loaded.Candidates), ShouldResemble, []string{"Stephen Curry"})
			So(loaded.Candidates[0].Stat(model.StatPoints), ShouldEqual, 26.4)
			So(loaded.Active, ShouldNotBeNil)
			So(loaded.Active.Kind, ShouldEqual, engine.KindTeam)
			So(loaded.Active.Team, ShouldEqual, "Warriors")
			So(loaded.QuestionsAsked, ShouldEqual, 2)
			So(loaded.Log, ShouldHaveLength, 1)
			So(loaded.CreatedAt.Equal(at), ShouldBeTrue)
		})

		Convey("Then mutating the loaded copy leaves the stored one alone", func() {
			loaded.Candidates = nil
			loaded.State = game.StateResult
			again, err := store.Load(ctx, "s1")
			So(err, ShouldBeNil)
			So(again.Candidates, ShouldHaveLength, 1)
			So(again.State, ShouldEqual, game.StatePlaying)
		})

		Convey("Then it is counted and can be deleted once", func() {
			n, err := store.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)

			So(store.Delete(ctx, "s1"), ShouldBeNil)
			So(errors.Is(store.Delete(ctx, "s1"), ErrNotFound), ShouldBeTrue)
			_, err = store.Load(ctx, "s1")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("When loading an unknown session", func() {
		store, _ := newStore(0)
		_, err := store.Load(ctx, "missing")
		So(errors.Is(err, ErrNotFound), ShouldBeTrue)
	})

	Convey("When saving a session without an id", func() {
		store, _ := newStore(0)
		So(errors.Is(store.Save(ctx, nil), ErrInvalidSession), ShouldBeTrue)
		So(errors.Is(store.Save(ctx, game.NewSession("", at)), ErrInvalidSession), ShouldBeTrue)
	})

	Convey("When sessions outlive their ttl", func() {
		store, advance := newStore(time.Minute)
		So(store.Save(ctx, sampleSession("old", at)), ShouldBeNil)
		advance(30 * time.Second)
		So(store.Save(ctx, sampleSession("new", at)), ShouldBeNil)
		advance(45 * time.Second)

		Convey("Then only the fresh one survives", func() {
			_, err := store.Load(ctx, "old")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			_, err = store.Load(ctx, "new")
			So(err, ShouldBeNil)

			n, err := store.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
		})
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("Given an in-memory store", t, func() {
		runStoreContract(func(ttl time.Duration) (Store, func(time.Duration)) {
			clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
			return NewMemoryStore(WithTTL(ttl), WithClock(clock.Now)), clock.Advance
		})
	})
}

func TestRedisStore(t *testing.T) {
	Convey("Given a Redis store backed by miniredis", t, func() {
		mr, err := miniredis.Run()
		So(err, ShouldBeNil)
		defer mr.Close()

		runStoreContract(func(ttl time.Duration) (Store, func(time.Duration)) {
			mr.FlushAll()
			clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
			client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
			store := NewRedisStoreFromClient(client, WithTTL(ttl), WithPrefix("test:"), WithClock(clock.Now))
			return store, func(d time.Duration) {
				clock.Advance(d)
				mr.FastForward(d)
			}
		})

		Convey("When a session is saved", func() {
			store := NewRedisStoreFromClient(backend.NewClient(&backend.Options{Addr: mr.Addr()}), WithPrefix("p:"))
			defer func() { _ = store.Close() }()
			So(store.Ping(context.Background()), ShouldBeNil)
			So(store.Save(context.Background(), sampleSession("abc", time.Now())), ShouldBeNil)

			Convey("Then the key and index use the prefix", func() {
				So(mr.Exists("p:abc"), ShouldBeTrue)
				members, err := mr.ZMembers("p:index")
				So(err, ShouldBeNil)
				So(members, ShouldContain, "abc")
			})
		})
	})
}
