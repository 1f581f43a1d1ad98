package images

import (
	"testing"

	"github.com/eivindn/inventar/internal/storage"
)

func testStore(t *testing.T) storage.Provider {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestDiscover_SortedWithThumbFallback(t *testing.T) {
	store := testStore(t)
	for _, p := range []string{"photos/A23/b.JPG", "photos/A23/a.jpg", "photos/A23/notes.txt"} {
		if err := store.Write(p, []byte{1}); err != nil {
			t.Fatal(err)
		}
	}
	// Only a.jpg has a resized counterpart.
	if err := store.Write("resized/A23/a.jpg", []byte{1}); err != nil {
		t.Fatal(err)
	}

	imgs, err := NewFSDiscoverer(store).Discover("A23")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(imgs) != 2 {
		t.Fatalf("images = %v, want 2 (txt excluded)", imgs)
	}
	if imgs[0].Alt != "A23/a.jpg" || imgs[0].Thumb != "resized/A23/a.jpg" || imgs[0].Full != "photos/A23/a.jpg" {
		t.Errorf("image 0 = %+v", imgs[0])
	}
	// No thumbnail yet: thumb falls back to the full-size path.
	if imgs[1].Alt != "A23/b.JPG" || imgs[1].Thumb != "photos/A23/b.JPG" {
		t.Errorf("image 1 = %+v", imgs[1])
	}
}

func TestDiscover_MissingDirIsEmpty(t *testing.T) {
	store := testStore(t)
	imgs, err := NewFSDiscoverer(store).Discover("Nope")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(imgs) != 0 {
		t.Errorf("images = %v, want none", imgs)
	}
}

func TestWriteListings(t *testing.T) {
	store := testStore(t)
	files := []string{"photos/A23/a.jpg", "photos/A23/b.png", "photos/H5/x.gif", "photos/Empty/readme.txt"}
	for _, p := range files {
		if err := store.Write(p, []byte{1}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := WriteListings(store)
	if err != nil {
		t.Fatalf("WriteListings: %v", err)
	}
	if n != 2 {
		t.Errorf("written = %d, want 2", n)
	}

	data, err := store.Read("photo-listings/A23.txt")
	if err != nil {
		t.Fatalf("Read listing: %v", err)
	}
	if string(data) != "a.jpg\nb.png\n" {
		t.Errorf("listing = %q", data)
	}
	if _, err := store.Read("photo-listings/Empty.txt"); err == nil {
		t.Error("empty dir should not produce a listing")
	}
}
