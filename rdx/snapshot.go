package rdx

import (
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// Store snapshots are opaque JSON blobs, one per (store, user) pair.
// Writers overwrite unconditionally: last writer wins across tabs/devices.

func snapshotKey(store, userID string) string {
	return "snap:" + store + ":" + userID
}

// SaveSnapshot serializes v and overwrites the snapshot for (store, userID).
// Failures are logged and swallowed; local state stays authoritative.
func SaveSnapshot(store, userID string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("SaveSnapshot marshal error for %s/%s: %v", store, userID, err)
		return
	}
	if err := RdxSet(snapshotKey(store, userID), string(data)); err != nil {
		log.Printf("SaveSnapshot redis error for %s/%s: %v", store, userID, err)
	}
}

// LoadSnapshot restores the snapshot for (store, userID) into v.
// Returns false when no snapshot exists or it cannot be decoded.
func LoadSnapshot(store, userID string, v any) bool {
	data, err := RdxGet(snapshotKey(store, userID))
	if err == redis.Nil || data == "" {
		return false
	}
	if err != nil {
		log.Printf("LoadSnapshot redis error for %s/%s: %v", store, userID, err)
		return false
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		log.Printf("LoadSnapshot unmarshal error for %s/%s: %v", store, userID, err)
		return false
	}
	return true
}

// DropSnapshot removes the stored snapshot, e.g. after a cart is cleared.
func DropSnapshot(store, userID string) {
	if _, err := RdxDel(snapshotKey(store, userID)); err != nil {
		log.Printf("DropSnapshot redis error for %s/%s: %v", store, userID, err)
	}
}
