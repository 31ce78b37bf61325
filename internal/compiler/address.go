package compiler

import "fmt"

// EntryAddress is the address of chapter i's entry transition.
func EntryAddress(i int) string {
	return fmt.Sprintf("C%d", i)
}

// NodeAddress is the address of tree node local in chapter i.
func NodeAddress(i int, local string) string {
	return fmt.Sprintf("C%d:%s", i, local)
}

// TransitionAddress is the address of the waypoint injected for the k-th
// authored choice (0-based) of tree node local in chapter i. Waypoints
// live under their own T prefix, so no local node ID can collide with one.
func TransitionAddress(i int, local string, k int) string {
	return fmt.Sprintf("T%d:%s>%d", i, local, k+1)
}
