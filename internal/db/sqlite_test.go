package db

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
)

func openTestKV(t *testing.T) *SQLiteKV {
	t.Helper()
	kv, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "jornada.db"), "", nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestSQLiteKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)

	if _, ok, err := kv.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	err := kv.Update(ctx, "k", func(cur []byte, ok bool) ([]byte, error) {
		if ok {
			t.Fatalf("key should not exist yet")
		}
		return []byte("v1"), nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	v, ok, err := kv.Get(ctx, "k")
	if err != nil || !ok || string(v) != "v1" {
		t.Fatalf("unexpected value %q ok=%v err=%v", v, ok, err)
	}

	// nil leaves the slot as is
	if err := kv.Update(ctx, "k", func([]byte, bool) ([]byte, error) { return nil, nil }); err != nil {
		t.Fatal(err)
	}
	if v, _, _ = kv.Get(ctx, "k"); string(v) != "v1" {
		t.Fatalf("nil update changed the value to %q", v)
	}

	wantErr := fmt.Errorf("boom")
	if err := kv.Update(ctx, "k", func([]byte, bool) ([]byte, error) { return []byte("x"), wantErr }); err != wantErr {
		t.Fatalf("expected callback error, got %v", err)
	}
	if v, _, _ = kv.Get(ctx, "k"); string(v) != "v1" {
		t.Fatalf("failed update must roll back, got %q", v)
	}

	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := kv.Get(ctx, "k"); ok {
		t.Fatalf("expected key deleted")
	}
}

func TestSQLiteKVConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := kv.Update(ctx, "counter", func(cur []byte, ok bool) ([]byte, error) {
				n := 0
				if ok {
					n, _ = strconv.Atoi(string(cur))
				}
				return []byte(strconv.Itoa(n + 1)), nil
			})
			if err != nil {
				t.Errorf("Update: %v", err)
			}
		}()
	}
	wg.Wait()
	v, _, _ := kv.Get(ctx, "counter")
	if string(v) != "10" {
		t.Fatalf("lost updates: counter=%s", v)
	}
}

func TestRunMigrationsOnce(t *testing.T) {
	kv := openTestKV(t)
	n, err := RunMigrations(kv.db, "")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("migrations should not re-run, applied %d", n)
	}
}
