package events

// Topics published on the process-wide event bus.
const (
	DistancesUpdatedTopic = "distances:updated"
	OffersReloadedTopic   = "offers:reloaded"
)

// DistancesUpdated is emitted after every increment of distance knowledge:
// a batch of cached hits applied at once, or a single remote lookup that
// finished (successfully or with a permanent failure).
type DistancesUpdated struct {
	Tag       string
	Resolved  int
	Remaining int
}

// OffersReloaded is emitted when a feed file has been re-read from disk
// and the offer set of a session was replaced.
type OffersReloaded struct {
	Tag   string
	Count int
}
