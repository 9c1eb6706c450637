package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/snippetbox/internal/session"
)

func saveTestSession(t *testing.T, db *DB, token string, expiry time.Time, data map[string]string) {
	t.Helper()

	if data == nil {
		data = map[string]string{}
	}
	err := db.Save(context.Background(), &session.Record{
		Token:  token,
		Data:   data,
		Expiry: expiry,
	})
	if err != nil {
		t.Fatalf("saving test session: %v", err)
	}
}

func TestSessionSaveAndLoad(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	expiry := time.Now().UTC().Add(time.Hour)
	saveTestSession(t, db, "tok-1", expiry, map[string]string{
		session.KeyFlash: "hello",
	})

	rec, err := db.Load(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.Token != "tok-1" {
		t.Errorf("Token = %q", rec.Token)
	}
	if rec.Data[session.KeyFlash] != "hello" {
		t.Errorf("Data = %v", rec.Data)
	}
}

func TestSessionLoad_UnknownToken(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Load(context.Background(), "no-such-token")
	if !errors.Is(err, session.ErrNoSession) {
		t.Errorf("Load on unknown token: err = %v, want ErrNoSession", err)
	}
}

func TestSessionLoad_ExpiredBehavesAsAbsent(t *testing.T) {
	db := newTestDB(t)

	saveTestSession(t, db, "tok-old", time.Now().UTC().Add(-time.Minute), nil)

	_, err := db.Load(context.Background(), "tok-old")
	if !errors.Is(err, session.ErrNoSession) {
		t.Errorf("Load on expired session: err = %v, want ErrNoSession", err)
	}
}

func TestSessionSave_UpsertsExistingToken(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	expiry := time.Now().UTC().Add(time.Hour)
	saveTestSession(t, db, "tok-1", expiry, map[string]string{"k": "v1"})
	saveTestSession(t, db, "tok-1", expiry.Add(time.Hour), map[string]string{"k": "v2"})

	rec, err := db.Load(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.Data["k"] != "v2" {
		t.Errorf("Data[k] = %q, want the re-saved value", rec.Data["k"])
	}
}

func TestSessionDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	saveTestSession(t, db, "tok-1", time.Now().UTC().Add(time.Hour), nil)

	if err := db.Delete(ctx, "tok-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := db.Load(ctx, "tok-1"); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("Load after Delete: err = %v, want ErrNoSession", err)
	}

	// Deleting an absent token is not an error.
	if err := db.Delete(ctx, "tok-1"); err != nil {
		t.Errorf("Delete on absent token: %v", err)
	}
}

func TestSweepExpired(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	saveTestSession(t, db, "live-1", now.Add(time.Hour), nil)
	saveTestSession(t, db, "dead-1", now.Add(-time.Minute), nil)
	saveTestSession(t, db, "dead-2", now.Add(-time.Hour), nil)

	n, err := db.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if n != 2 {
		t.Errorf("SweepExpired removed %d rows, want 2", n)
	}

	if _, err := db.Load(ctx, "live-1"); err != nil {
		t.Errorf("live session gone after sweep: %v", err)
	}
}
