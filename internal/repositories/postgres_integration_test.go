package repositories

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/db"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := db.Migrate(ctx, pool, filepath.Join("..", "..", "migrations"), "up", io.Discard); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresSessionStore_SaveFindTouchDelete(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	store := NewPostgresSessionStore(testPool)
	now := time.Now().UTC().Truncate(time.Millisecond)
	store.now = func() time.Time { return now }

	sess := session.Session{AccessToken: "tok", TokenType: "Bearer", Email: "s@example.com", UserID: "12", Role: models.RoleStudent}
	if err := store.Save(ctx, "tab-one", sess, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Find(ctx, "tab-one")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got != sess {
		t.Fatalf("expected %+v, got %+v", sess, got)
	}

	var stored int
	if err := testPool.QueryRow(ctx, `SELECT count(*) FROM tab_sessions WHERE key_digest = $1`, []byte("tab-one")).Scan(&stored); err != nil {
		t.Fatalf("count raw key rows: %v", err)
	}
	if stored != 0 {
		t.Fatalf("expected raw tab key never to be stored")
	}

	var payload []byte
	if err := testPool.QueryRow(ctx, `SELECT payload FROM tab_sessions WHERE key_digest = $1`, keyDigest("tab-one")).Scan(&payload); err != nil {
		t.Fatalf("select payload: %v", err)
	}
	if bytes.Contains(payload, []byte(`"accessToken"`)) {
		t.Fatalf("expected session payload to be sealed at rest")
	}

	now = now.Add(50 * time.Second)
	if err := store.Touch(ctx, "tab-one", time.Minute); err != nil {
		t.Fatalf("touch: %v", err)
	}
	now = now.Add(50 * time.Second)
	if _, err := store.Find(ctx, "tab-one"); err != nil {
		t.Fatalf("expected touched session to survive: %v", err)
	}

	if err := store.Delete(ctx, "tab-one"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "tab-one"); !errors.Is(err, session.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestPostgresSessionStore_IdleEviction(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	store := NewPostgresSessionStore(testPool)
	now := time.Now().UTC()
	store.now = func() time.Time { return now }

	if err := store.Save(ctx, "idle", session.Session{AccessToken: "a"}, time.Minute); err != nil {
		t.Fatalf("save idle: %v", err)
	}
	if err := store.Save(ctx, "pinned", session.Session{AccessToken: "b"}, 0); err != nil {
		t.Fatalf("save pinned: %v", err)
	}
	if err := store.Save(ctx, "stale", session.Session{AccessToken: "c"}, time.Second); err != nil {
		t.Fatalf("save stale: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Find(ctx, "idle"); !errors.Is(err, session.ErrSessionNotFound) {
		t.Fatalf("expected idle session to be evicted, got %v", err)
	}
	if _, err := store.Find(ctx, "pinned"); err != nil {
		t.Fatalf("expected session without ttl to survive: %v", err)
	}

	purged, err := store.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 stale session purged, got %d", purged)
	}
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE tab_sessions"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
