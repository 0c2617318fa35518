package store

import "testing"

// An offline Redis must surface as a nil interface value, not a typed-nil
// pointer boxed in a non-nil interface, so the startup fallback to the
// in-memory stores actually triggers.
func TestOfflineRedisYieldsNilStoreInterfaces(t *testing.T) {
	if s := sessionStoreFrom(nil); s != nil {
		t.Errorf("offline redis produced a non-nil SessionStore interface: %#v", s)
	}
	if m := messageStoreFrom(nil); m != nil {
		t.Errorf("offline redis produced a non-nil MessageStore interface: %#v", m)
	}
}
