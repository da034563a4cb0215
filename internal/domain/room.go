package domain

import (
	"fmt"
	"strings"
)

// RoomName is the shared signaling/broadcast key for one call between two
// identities.
type RoomName string

// DeriveRoom builds the room key from two display names. The pair is sorted
// so either side computes the same key independently.
func DeriveRoom(a, b string) RoomName {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return RoomName(fmt.Sprintf("room_%s_%s", a, b))
}
