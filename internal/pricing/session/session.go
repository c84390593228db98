package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pricewatch-service/internal/pricing/model"
	"pricewatch-service/internal/pricing/service"
)

// LoadMode controls what a new upload does to the current record store.
type LoadMode string

const (
	ModeReplace LoadMode = "replace"
	ModeUnion   LoadMode = "union"
)

// Persister receives session mutations that must outlive the process.
// Persistence failures are logged and never block the mutation; the
// in-memory state is the source of truth for the running process.
type Persister interface {
	SaveAlerts([]model.Alert) error
	SaveFavorites([]string) error
	SavePreference(key, value string) error
}

// Session owns all mutable dashboard state: the current dataset, filter
// state, filtered snapshot, alerts, favorites and preferences. All methods
// are safe for concurrent use; uploads are serialized under the write lock,
// so the racing-uploads gap in the original design cannot occur here.
type Session struct {
	mu        sync.RWMutex
	dataset   *model.Dataset
	filter    model.FilterState
	filtered  []model.Record
	alerts    []model.Alert
	favorites map[string]struct{}
	darkMode  bool
	persist   Persister
	logger    zerolog.Logger
}

func New(persist Persister, logger zerolog.Logger) *Session {
	return &Session{
		dataset:   &model.Dataset{Details: model.DetailIndex{}},
		favorites: map[string]struct{}{},
		persist:   persist,
		logger:    logger,
	}
}

// LoadDataset applies a freshly built dataset atomically. Replace drops the
// previous records; union merges them, with the new file winning on
// identical facility/date/room/plan keys. Filter state and alerts survive
// the load.
func (s *Session) LoadDataset(ds *model.Dataset, mode LoadMode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mode == ModeUnion && len(s.dataset.Records) > 0 {
		s.dataset = mergeDatasets(s.dataset, ds)
	} else {
		s.dataset = ds
	}
	s.refilterLocked()
}

func mergeDatasets(old, next *model.Dataset) *model.Dataset {
	type key struct{ facility, date, room, plan string }
	merged := map[key]model.Record{}
	order := make([]key, 0, len(old.Records)+len(next.Records))
	for _, r := range append(append([]model.Record{}, old.Records...), next.Records...) {
		k := key{r.Facility, r.Date, r.RoomType, r.PlanName}
		if _, seen := merged[k]; !seen {
			order = append(order, k)
		}
		merged[k] = r
	}
	out := &model.Dataset{
		Format:  next.Format,
		Skipped: old.Skipped + next.Skipped,
		Details: model.DetailIndex{},
	}
	// the detail index is rebuilt from the surviving records, so a cell never
	// reports more prices than plan entries after a merge
	for _, k := range order {
		r := merged[k]
		out.Records = append(out.Records, r)
		dk := model.DetailKey(r.Facility, r.Date)
		if _, ok := old.Details[dk]; !ok {
			if _, ok = next.Details[dk]; !ok {
				continue
			}
		}
		out.Details[dk] = append(out.Details[dk], model.PlanEntry{
			Price:    r.Price,
			RoomType: r.RoomType,
			PlanName: r.PlanName,
		})
	}
	deriveSets(out)
	return out
}

func deriveSets(ds *model.Dataset) {
	fset := map[string]struct{}{}
	dset := map[string]struct{}{}
	for _, r := range ds.Records {
		fset[r.Facility] = struct{}{}
		dset[r.Date] = struct{}{}
	}
	ds.Facilities = sortedSet(fset)
	ds.Dates = sortedSet(dset)
}

func sortedSet(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// refilterLocked recomputes the filtered snapshot. Caller holds the write
// lock.
func (s *Session) refilterLocked() {
	s.filtered = service.ApplyFilters(s.dataset.Records, s.filter)
}

// SetFilter replaces the filter state and recomputes the snapshot.
func (s *Session) SetFilter(fs model.FilterState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = fs
	s.refilterLocked()
}

func (s *Session) Filter() model.FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// FilteredRecords returns a copy of the current filtered snapshot, so the
// alert watcher and handlers never observe a partially rebuilt store.
func (s *Session) FilteredRecords() []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Record(nil), s.filtered...)
}

// Dataset returns the current dataset's derived sets and record count.
func (s *Session) Dataset() (facilities, dates []string, total int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.dataset.Facilities...),
		append([]string(nil), s.dataset.Dates...),
		len(s.dataset.Records)
}

// Details returns a copy of the detail index.
func (s *Session) Details() model.DetailIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(model.DetailIndex, len(s.dataset.Details))
	for k, v := range s.dataset.Details {
		out[k] = append([]model.PlanEntry(nil), v...)
	}
	return out
}

// AddAlert validates and stores a new alert. Misconfigured alerts are
// rejected and never stored.
func (s *Session) AddAlert(a model.Alert) (model.Alert, error) {
	if err := service.ValidateAlert(a); err != nil {
		return model.Alert{}, err
	}
	a.ID = uuid.NewString()
	a.Active = true
	a.Created = time.Now()

	s.mu.Lock()
	s.alerts = append(s.alerts, a)
	alerts := append([]model.Alert(nil), s.alerts...)
	s.mu.Unlock()

	s.persistAlerts(alerts)
	return a, nil
}

// DeleteAlert is the only terminal transition an alert can take.
func (s *Session) DeleteAlert(id string) bool {
	s.mu.Lock()
	found := false
	kept := s.alerts[:0]
	for _, a := range s.alerts {
		if a.ID == id {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	s.alerts = kept
	alerts := append([]model.Alert(nil), s.alerts...)
	s.mu.Unlock()

	if found {
		s.persistAlerts(alerts)
	}
	return found
}

// ToggleAlert flips an alert between active and inactive.
func (s *Session) ToggleAlert(id string) (model.Alert, bool) {
	s.mu.Lock()
	var out model.Alert
	found := false
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			s.alerts[i].Active = !s.alerts[i].Active
			out = s.alerts[i]
			found = true
			break
		}
	}
	alerts := append([]model.Alert(nil), s.alerts...)
	s.mu.Unlock()

	if found {
		s.persistAlerts(alerts)
	}
	return out, found
}

func (s *Session) Alerts() []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Alert(nil), s.alerts...)
}

// SeedAlerts installs alerts restored from the persistent store at startup.
func (s *Session) SeedAlerts(alerts []model.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append([]model.Alert(nil), alerts...)
}

// EvaluateAlerts runs every active alert against a consistent snapshot of
// the filtered records.
func (s *Session) EvaluateAlerts() []model.Triggered {
	s.mu.RLock()
	alerts := append([]model.Alert(nil), s.alerts...)
	records := append([]model.Record(nil), s.filtered...)
	s.mu.RUnlock()
	return service.EvaluateAlerts(alerts, records)
}

func (s *Session) persistAlerts(alerts []model.Alert) {
	if s.persist == nil {
		return
	}
	if err := s.persist.SaveAlerts(alerts); err != nil {
		s.logger.Error().Err(err).Msg("persist alerts")
	}
}

func (s *Session) persistFavorites(favorites []string) {
	if s.persist == nil {
		return
	}
	if err := s.persist.SaveFavorites(favorites); err != nil {
		s.logger.Error().Err(err).Msg("persist favorites")
	}
}

// AddFavorite marks a facility. Returns the updated list.
func (s *Session) AddFavorite(facility string) []string {
	s.mu.Lock()
	s.favorites[facility] = struct{}{}
	out := sortedSet(s.favorites)
	s.mu.Unlock()
	s.persistFavorites(out)
	return out
}

func (s *Session) RemoveFavorite(facility string) []string {
	s.mu.Lock()
	delete(s.favorites, facility)
	out := sortedSet(s.favorites)
	s.mu.Unlock()
	s.persistFavorites(out)
	return out
}

func (s *Session) Favorites() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedSet(s.favorites)
}

func (s *Session) SeedFavorites(favorites []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorites = map[string]struct{}{}
	for _, f := range favorites {
		s.favorites[f] = struct{}{}
	}
}

func (s *Session) SetDarkMode(on bool) {
	s.mu.Lock()
	s.darkMode = on
	s.mu.Unlock()
	if s.persist == nil {
		return
	}
	v := "0"
	if on {
		v = "1"
	}
	if err := s.persist.SavePreference("darkMode", v); err != nil {
		s.logger.Error().Err(err).Msg("persist preference")
	}
}

func (s *Session) DarkMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.darkMode
}
