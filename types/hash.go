package types

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// HashDevices computes the canonical, order-independent content hash
// of a device set: sha1(localId||name) per device, sorted ascending,
// concatenated, and re-hashed with sha1.
func HashDevices(devices []*Device) string {
	hashes := make([]string, len(devices))
	for i, d := range devices {
		sum := sha1.Sum([]byte(d.LocalID + d.Name))
		hashes[i] = hex.EncodeToString(sum[:])
	}
	sort.Strings(hashes)
	final := sha1.Sum([]byte(strings.Join(hashes, "")))
	return hex.EncodeToString(final[:])
}

// DeriveDeviceIDPrefix computes the stable per-(user, firstRunTime)
// prefix applied to every local id on the wire:
// base64url(sha1(md5(user) || unixTimeFloat)) with padding stripped.
func DeriveDeviceIDPrefix(user string, firstRun time.Time) string {
	userSum := md5.Sum([]byte(user))
	ts := fmt.Sprintf("%f", float64(firstRun.UnixNano())/1e9)
	combined := append(userSum[:], []byte(ts)...)
	sum := sha1.Sum(combined)
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum[:]), "=")
}

// PrefixDeviceID returns the on-wire id "{prefix}-{localId}".
func PrefixDeviceID(prefix, localID string) string {
	return prefix + "-" + localID
}

// ParseDeviceID strips a known prefix from an on-wire device id,
// returning the local id. ErrDeviceIDPrefix is returned if the id
// does not carry the expected prefix.
func ParseDeviceID(prefix, wireID string) (string, error) {
	want := prefix + "-"
	if !strings.HasPrefix(wireID, want) {
		return "", fmt.Errorf("%w: %q missing prefix %q", ErrDeviceIDPrefix, wireID, prefix)
	}
	return strings.TrimPrefix(wireID, want), nil
}
