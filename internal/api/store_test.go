package api

import (
	"testing"

	"github.com/namvh1209/posture-cli/internal/scanner"
)

func TestScanStore_EmptyLookups(t *testing.T) {
	store := NewScanStore()
	if _, ok := store.Latest(); ok {
		t.Error("Latest on empty store must report false")
	}
	if _, ok := store.Get("latest"); ok {
		t.Error("Get(latest) on empty store must report false")
	}
	if _, ok := store.Get("scan_x"); ok {
		t.Error("Get on empty store must report false")
	}
}

func TestScanStore_GetSemantics(t *testing.T) {
	store := NewScanStore()
	store.Put(&scanner.Scan{ID: "scan_one", URL: "https://a.example"})

	if got, ok := store.Get("scan_one"); !ok || got.ID != "scan_one" {
		t.Error("Get by matching id failed")
	}
	if got, ok := store.Get("latest"); !ok || got.ID != "scan_one" {
		t.Error("Get(latest) failed")
	}
	if _, ok := store.Get("scan_two"); ok {
		t.Error("Get must not return a scan under a foreign id")
	}
}

func TestScanStore_PutReplaces(t *testing.T) {
	store := NewScanStore()
	store.Put(&scanner.Scan{ID: "scan_one"})
	store.Put(&scanner.Scan{ID: "scan_two"})

	if _, ok := store.Get("scan_one"); ok {
		t.Error("replaced scan must no longer resolve")
	}
	if got, ok := store.Get("scan_two"); !ok || got.ID != "scan_two" {
		t.Error("newest scan must resolve")
	}
	if got, _ := store.Latest(); got.ID != "scan_two" {
		t.Error("Latest must track the newest scan")
	}
}
