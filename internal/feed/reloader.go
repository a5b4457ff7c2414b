package feed

import (
	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/ssbor/jobmap/internal/entities"
	"github.com/ssbor/jobmap/internal/events"
)

// OfferSink receives the offers of a freshly loaded feed document.
type OfferSink interface {
	SetOffers(offers []entities.Offer)
}

// Reloader re-reads every feed file on a cron schedule and pushes the new
// offer sets into the registered sinks. A failed tag keeps its previous
// offers; reload never clears a session on error. Register every sink
// before Start; the schedule must not fire while sinks are still being
// added.
type Reloader struct {
	store    *Store
	bus      EventBus.Bus
	cron     *cron.Cron
	schedule string
	sinks    map[string]OfferSink
}

func NewReloader(store *Store, bus EventBus.Bus, schedule string) (*Reloader, error) {

	r := &Reloader{
		store:    store,
		bus:      bus,
		cron:     cron.New(),
		schedule: schedule,
		sinks:    map[string]OfferSink{},
	}

	_, err := r.cron.AddFunc(schedule, r.reloadAll)
	if err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Reloader) Register(tag string, sink OfferSink) {
	r.sinks[tag] = sink
}

func (r *Reloader) Start() {
	r.cron.Start()
	log.Infof("feed reloader started, schedule: %v", r.schedule)
}

func (r *Reloader) Stop() {
	r.cron.Stop()
}

func (r *Reloader) reloadAll() {
	for tag, sink := range r.sinks {
		doc, err := r.store.Load(tag)
		if err != nil {
			log.Errorf("failed to reload feed %v: %v", tag, err)
			continue
		}

		offers := doc.AllOffers()
		sink.SetOffers(offers)
		r.bus.Publish(events.OffersReloadedTopic, events.OffersReloaded{Tag: tag, Count: len(offers)})
		log.Infof("feed %v reloaded, %d offers", tag, len(offers))
	}
}
