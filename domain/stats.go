package domain

// Stats is a point-in-time view of the server load.
type Stats struct {
	Sessions int
	Rooms    int
	Queued   int
}
