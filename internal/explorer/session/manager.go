package session

import (
	"context"
	"errors"
	"sync"

	"map_explorer/internal/events"
	"map_explorer/internal/explorer/state"
	"map_explorer/platform/apperr"
	"map_explorer/platform/config"
	"map_explorer/platform/logger"

	"github.com/google/uuid"
)

// Geocoder resolves free text into suggestions.
type Geocoder interface {
	Suggest(ctx context.Context, query string) ([]state.Suggestion, error)
}

// PlaceFinder lists amenity features around a coordinate.
type PlaceFinder interface {
	Nearby(ctx context.Context, center state.Coordinate, amenity state.AmenityType) ([]state.Place, error)
}

// Manager owns the lifecycle of explorer sessions.
// Events for one session are applied one at a time; fetches run in the background
// and feed their results back through Dispatch.
type Manager struct {
	store    Store
	geocoder Geocoder
	places   PlaceFinder
	bus      events.Bus
	log      *logger.Logger

	center       state.Coordinate
	discardStale bool

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sessionLock
	wg      sync.WaitGroup
}

// sessionLock is held in Manager.locks only while refs > 0.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewManager creates a session manager.
func NewManager(store Store, geocoder Geocoder, places PlaceFinder, bus events.Bus, cfg config.ExplorerConfig, log *logger.Logger) *Manager {
	lat, lon := cfg.GetDefaultCenter()
	return &Manager{
		store:        store,
		geocoder:     geocoder,
		places:       places,
		bus:          bus,
		log:          log,
		center:       state.Coordinate{Lat: lat, Lon: lon},
		discardStale: cfg.GetDiscardStaleResponses(),
		locks:        make(map[uuid.UUID]*sessionLock),
	}
}

// lock serialises work on one session. The returned func releases it and
// forgets the entry once no caller holds or waits for it.
func (m *Manager) lock(id uuid.UUID) func() {
	m.locksMu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{}
		m.locks[id] = l
	}
	l.refs++
	m.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, id)
		}
		m.locksMu.Unlock()
	}
}

func (m *Manager) lockCount() int {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	return len(m.locks)
}

// Create starts a new session at the default center.
func (m *Manager) Create(ctx context.Context) (uuid.UUID, state.State, error) {
	id := uuid.New()
	s := state.New(m.center, m.discardStale)
	if err := m.store.Put(ctx, id, s); err != nil {
		return uuid.Nil, state.State{}, apperr.Wrap(apperr.KindInternal, "failed to create session", err)
	}
	m.log.WithContext(ctx).Info("explorer session created", "session_id", id.String())
	return id, s, nil
}

// Get returns the current state of a session.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (state.State, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return state.State{}, storeError(err)
	}
	return s, nil
}

// Delete discards a session. In-flight fetches complete and are dropped.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	unlock := m.lock(id)
	err := m.store.Delete(ctx, id)
	unlock()
	if err != nil {
		return storeError(err)
	}

	m.bus.Publish(ctx, events.SessionDeleted{BaseEvent: events.NewBaseEvent(), SessionID: id})
	return nil
}

// Dispatch applies ev to the session and starts any fetches it requests.
// It returns the state right after the transition.
func (m *Manager) Dispatch(ctx context.Context, id uuid.UUID, ev state.Event) (state.State, error) {
	ctx = logger.WithSessionIDContext(ctx, id.String())
	next, cmds, err := m.apply(ctx, id, ev)
	if err != nil {
		return state.State{}, err
	}

	m.log.SessionEvent(id.String(), ev.Name(), len(cmds))

	// Fetches outlive the request that caused them.
	runCtx := context.WithoutCancel(ctx)
	for _, cmd := range cmds {
		m.run(runCtx, id, cmd)
	}
	return next, nil
}

func (m *Manager) apply(ctx context.Context, id uuid.UUID, ev state.Event) (state.State, []state.Command, error) {
	unlock := m.lock(id)
	defer unlock()

	current, err := m.store.Get(ctx, id)
	if err != nil {
		return state.State{}, nil, storeError(err)
	}

	next, cmds, err := state.Reduce(current, ev)
	if err != nil {
		if errors.Is(err, state.ErrSuggestionIndex) || errors.Is(err, state.ErrUnknownAmenity) {
			return state.State{}, nil, apperr.Validation(err.Error())
		}
		return state.State{}, nil, apperr.Wrap(apperr.KindInternal, "failed to apply event", err)
	}
	next.Version = current.Version + 1

	if err := m.store.Put(ctx, id, next); err != nil {
		return state.State{}, nil, apperr.Wrap(apperr.KindInternal, "failed to save session", err)
	}

	// Published under the lock so subscribers see transitions in order.
	if err := m.bus.PublishSync(ctx, events.ViewUpdated{BaseEvent: events.NewBaseEvent(), SessionID: id, State: next}); err != nil {
		m.log.WithContext(ctx).Warn("view update delivery failed", "error", err)
	}
	return next, cmds, nil
}

func (m *Manager) run(ctx context.Context, id uuid.UUID, cmd state.Command) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		var completion state.Event
		switch c := cmd.(type) {
		case state.FetchSuggestions:
			suggestions, err := m.geocoder.Suggest(ctx, c.Query)
			if err != nil {
				m.fetchFailed(ctx, id, "geocoding", "suggestions", err)
				completion = state.SuggestionsFailed{Seq: c.Seq, Err: err}
			} else {
				completion = state.SuggestionsLoaded{Seq: c.Seq, Suggestions: suggestions}
			}
		case state.FetchPlaces:
			places, err := m.places.Nearby(ctx, c.Center, c.Amenity)
			if err != nil {
				m.fetchFailed(ctx, id, "poi", "places", err)
				completion = state.PlacesFailed{Seq: c.Seq, Err: err}
			} else {
				completion = state.PlacesLoaded{Seq: c.Seq, Places: places}
			}
		default:
			m.log.WithContext(ctx).Error("unknown explorer command", "kind", cmd.Kind())
			return
		}

		if _, err := m.Dispatch(ctx, id, completion); err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				m.log.WithContext(ctx).Debug("dropping fetch result for closed session", "event", completion.Name())
				return
			}
			m.log.WithContext(ctx).Error("failed to apply fetch result", "event", completion.Name(), "error", err)
		}
	}()
}

func (m *Manager) fetchFailed(ctx context.Context, id uuid.UUID, service, operation string, err error) {
	m.log.WithContext(ctx).UpstreamError(service, operation, err)
	m.bus.Publish(ctx, events.FetchFailed{
		BaseEvent: events.NewBaseEvent(),
		SessionID: id,
		Operation: operation,
		Message:   err.Error(),
	})
}

// Drain blocks until every in-flight fetch has finished and its result was applied.
func (m *Manager) Drain() {
	m.wg.Wait()
}

// storeError passes typed errors through and hides backend failures behind a 500.
func storeError(err error) error {
	if apperr.GetKind(err) != apperr.KindUnknown {
		return err
	}
	return apperr.Wrap(apperr.KindInternal, "session store unavailable", err)
}
