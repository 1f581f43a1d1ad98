package inventoryservice

import (
	"context"
	"testing"
	"time"

	"github.com/eivindn/inventar/internal/testutil"
)

func TestWatchReloadsOnSourceChange(t *testing.T) {
	svc, store := loadedService(t, sourceFixture)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan Snapshot, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, svc, testutil.DiscardLogger(), 20*time.Millisecond, func(snap Snapshot) {
			reloaded <- snap
		})
	}()

	// Give the watcher time to register before mutating the file.
	time.Sleep(100 * time.Millisecond)

	next := sourceFixture + `
## C12 Bøker
* Kokebok
`
	if err := store.Write("inventar.md", []byte(next)); err != nil {
		t.Fatal(err)
	}

	select {
	case snap := <-reloaded:
		if snap.Document.FindContainer("C12") == nil {
			t.Errorf("new container missing from snapshot")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for watcher reload")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}
