package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Kaptaan1992/honeybees-daycare/shared"
)

// Mirror is the cloud side of the dual-write data layer. CloudClient is the
// real implementation; tests substitute their own.
type Mirror interface {
	SelectAll(ctx context.Context, table string, out interface{}) error
	SelectById(ctx context.Context, table, id string, out interface{}) error
	Upsert(ctx context.Context, table string, records interface{}) error
	Insert(ctx context.Context, table string, records interface{}) error
	DeleteById(ctx context.Context, table, id string) error
	Count(ctx context.Context, table string) (int, error)
	RealtimeUrl() string
}

// Store is the single gatekeeper of all entity collections. Every write lands
// on the local store first and unconditionally, then mirrors to the cloud
// best-effort; every read prefers the cloud and falls back to the local copy.
//
// The original environment was single threaded. This port serves concurrent
// HTTP requests plus a realtime goroutine, so the local read-modify-write
// cycle is serialized by an internal mutex.
// Local is the synchronous persistence side of the dual-write data layer.
// LocalStore is the real implementation backed by sqlite.
type Local interface {
	Get(collection string) ([]byte, error)
	Set(collection string, payload []byte) error
	Delete(collection string) error
}

type Store struct {
	Local           Local                   `inject:""`
	Logger          *shared.Logger          `inject:""`
	StringGenerator *shared.StringGenerator `inject:""`

	// CloudFactory builds the mirror client from connection settings. Left
	// nil it defaults to NewCloudClient; tests inject their own.
	CloudFactory func(url, key string) (Mirror, error)

	mu sync.Mutex

	cloudMu    sync.Mutex
	cloud      Mirror
	cloudTried bool
}

// Cloud returns the lazily-constructed mirror client, or nil when the mirror
// is disabled (unconfigured or misconfigured). Construction failure is logged
// once and the store behaves as pure local until the settings change.
func (s *Store) Cloud() Mirror {
	s.cloudMu.Lock()
	defer s.cloudMu.Unlock()

	if s.cloud != nil {
		return s.cloud
	}
	if s.cloudTried {
		return nil
	}
	s.cloudTried = true

	settings := s.getSettingsLocal()
	factory := s.CloudFactory
	if factory == nil {
		factory = func(url, key string) (Mirror, error) {
			return NewCloudClient(url, key)
		}
	}
	client, err := factory(settings.CloudUrl, settings.CloudAnonKey)
	if err != nil {
		if err == ErrCloudDisabled {
			s.Logger.Debug(context.Background(), "cloud mirror not configured, running local-only")
		} else {
			s.Logger.Warn(context.Background(), "failed to initialise cloud mirror", "err", err.Error())
		}
		return nil
	}
	s.cloud = client
	return s.cloud
}

// ResetCloud drops the current mirror handle so the next access rebuilds it
// from fresh settings.
func (s *Store) ResetCloud() {
	s.cloudMu.Lock()
	defer s.cloudMu.Unlock()
	s.cloud = nil
	s.cloudTried = false
}

func (s *Store) IsCloudEnabled() bool {
	return s.Cloud() != nil
}

// --- Local (un)marshalling helpers. Local storage failures are non-fatal:
// the in-memory value still flows to the caller, persistence is skipped.

func (s *Store) getLocal(collection string, out interface{}) {
	payload, err := s.Local.Get(collection)
	if err != nil {
		s.Logger.Warn(context.Background(), "failed to read local collection", "collection", collection, "err", err.Error())
		return
	}
	if payload == nil {
		return
	}
	if err := json.Unmarshal(payload, out); err != nil {
		s.Logger.Warn(context.Background(), "failed to decode local collection", "collection", collection, "err", err.Error())
	}
}

func (s *Store) setLocal(collection string, records interface{}) {
	payload, err := json.Marshal(records)
	if err != nil {
		s.Logger.Warn(context.Background(), "failed to encode local collection", "collection", collection, "err", err.Error())
		return
	}
	if err := s.Local.Set(collection, payload); err != nil {
		s.Logger.Warn(context.Background(), "failed to persist local collection", "collection", collection, "err", err.Error())
	}
}

// --- Children ---

func (s *Store) getChildrenLocal() []Child {
	children := []Child{}
	s.getLocal(CollectionChildren, &children)
	return children
}

// GetChildren reads the children collection: cloud first (overwriting the
// local cache on success, last reader wins), local fallback otherwise.
func (s *Store) GetChildren(ctx context.Context) []Child {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getChildren(ctx)
}

func (s *Store) getChildren(ctx context.Context) []Child {
	if cloud := s.Cloud(); cloud != nil {
		remote := []Child{}
		if err := cloud.SelectAll(ctx, TableChildren, &remote); err == nil {
			s.setLocal(CollectionChildren, remote)
			return remote
		} else {
			s.Logger.Warn(ctx, "using local children, cloud read failed", "err", err.Error())
		}
	}
	return s.getChildrenLocal()
}

// SaveChildren overwrites the children collection: local synchronously, cloud
// best-effort.
func (s *Store) SaveChildren(ctx context.Context, children []Child) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveChildren(ctx, children)
}

func (s *Store) saveChildren(ctx context.Context, children []Child) {
	s.setLocal(CollectionChildren, children)
	if cloud := s.Cloud(); cloud != nil {
		if err := cloud.Upsert(ctx, TableChildren, children); err != nil {
			s.Logger.Warn(ctx, "cloud upsert of children failed, local write stands", "err", err.Error())
		}
	}
}

// DeleteChild removes a child from both stores.
func (s *Store) DeleteChild(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	children := s.getChildren(ctx)
	filtered := make([]Child, 0, len(children))
	for _, c := range children {
		if c.Id != id {
			filtered = append(filtered, c)
		}
	}
	s.saveChildren(ctx, filtered)

	if cloud := s.Cloud(); cloud != nil {
		if err := cloud.DeleteById(ctx, TableChildren, id); err != nil {
			s.Logger.Warn(ctx, "cloud delete of child failed", "childId", id, "err", err.Error())
		}
	}
}

// --- Parents ---

func (s *Store) getParentsLocal() []Parent {
	parents := []Parent{}
	s.getLocal(CollectionParents, &parents)
	return parents
}

func (s *Store) GetParents(ctx context.Context) []Parent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getParents(ctx)
}

func (s *Store) getParents(ctx context.Context) []Parent {
	if cloud := s.Cloud(); cloud != nil {
		remote := []Parent{}
		if err := cloud.SelectAll(ctx, TableParents, &remote); err == nil {
			s.setLocal(CollectionParents, remote)
			return remote
		} else {
			s.Logger.Warn(ctx, "using local parents, cloud read failed", "err", err.Error())
		}
	}
	return s.getParentsLocal()
}

func (s *Store) SaveParents(ctx context.Context, parents []Parent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveParents(ctx, parents)
}

func (s *Store) saveParents(ctx context.Context, parents []Parent) {
	s.setLocal(CollectionParents, parents)
	if cloud := s.Cloud(); cloud != nil {
		if err := cloud.Upsert(ctx, TableParents, parents); err != nil {
			s.Logger.Warn(ctx, "cloud upsert of parents failed, local write stands", "err", err.Error())
		}
	}
}

// DeleteParent removes a parent from both stores and detaches it from any
// children that still link to it.
func (s *Store) DeleteParent(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parents := s.getParents(ctx)
	filtered := make([]Parent, 0, len(parents))
	for _, p := range parents {
		if p.Id != id {
			filtered = append(filtered, p)
		}
	}
	s.saveParents(ctx, filtered)

	children := s.getChildren(ctx)
	changed := false
	for i, c := range children {
		kept := make([]string, 0, len(c.ParentIds))
		for _, pid := range c.ParentIds {
			if pid != id {
				kept = append(kept, pid)
			}
		}
		if len(kept) != len(c.ParentIds) {
			children[i].ParentIds = kept
			changed = true
		}
	}
	if changed {
		s.saveChildren(ctx, children)
	}

	if cloud := s.Cloud(); cloud != nil {
		if err := cloud.DeleteById(ctx, TableParents, id); err != nil {
			s.Logger.Warn(ctx, "cloud delete of parent failed", "parentId", id, "err", err.Error())
		}
	}
}

// --- Holidays ---

func (s *Store) getHolidaysLocal() []Holiday {
	holidays := []Holiday{}
	s.getLocal(CollectionHolidays, &holidays)
	return holidays
}

func (s *Store) GetHolidays(ctx context.Context) []Holiday {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getHolidays(ctx)
}

func (s *Store) getHolidays(ctx context.Context) []Holiday {
	if cloud := s.Cloud(); cloud != nil {
		remote := []Holiday{}
		if err := cloud.SelectAll(ctx, TableHolidays, &remote); err == nil {
			s.setLocal(CollectionHolidays, remote)
			return remote
		} else {
			s.Logger.Warn(ctx, "using local holidays, cloud read failed", "err", err.Error())
		}
	}
	return s.getHolidaysLocal()
}

func (s *Store) SaveHolidays(ctx context.Context, holidays []Holiday) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveHolidays(ctx, holidays)
}

func (s *Store) saveHolidays(ctx context.Context, holidays []Holiday) {
	s.setLocal(CollectionHolidays, holidays)
	if cloud := s.Cloud(); cloud != nil {
		if err := cloud.Upsert(ctx, TableHolidays, holidays); err != nil {
			s.Logger.Warn(ctx, "cloud upsert of holidays failed, local write stands", "err", err.Error())
		}
	}
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	holidays := s.getHolidays(ctx)
	filtered := make([]Holiday, 0, len(holidays))
	for _, h := range holidays {
		if h.Id != id {
			filtered = append(filtered, h)
		}
	}
	s.saveHolidays(ctx, filtered)

	if cloud := s.Cloud(); cloud != nil {
		if err := cloud.DeleteById(ctx, TableHolidays, id); err != nil {
			s.Logger.Warn(ctx, "cloud delete of holiday failed", "holidayId", id, "err", err.Error())
		}
	}
}

// --- Send logs ---

func (s *Store) getSendLogsLocal() []EmailSendLog {
	logs := []EmailSendLog{}
	s.getLocal(CollectionSendLogs, &logs)
	return logs
}

func (s *Store) GetSendLogs(ctx context.Context) []EmailSendLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getSendLogs(ctx)
}

func (s *Store) getSendLogs(ctx context.Context) []EmailSendLog {
	if cloud := s.Cloud(); cloud != nil {
		remote := []EmailSendLog{}
		if err := cloud.SelectAll(ctx, TableSendLogs, &remote); err == nil {
			s.setLocal(CollectionSendLogs, remote)
			return remote
		} else {
			s.Logger.Warn(ctx, "using local send logs, cloud read failed", "err", err.Error())
		}
	}
	return s.getSendLogsLocal()
}

func (s *Store) saveSendLogs(ctx context.Context, logs []EmailSendLog) {
	s.setLocal(CollectionSendLogs, logs)
	if cloud := s.Cloud(); cloud != nil {
		if err := cloud.Upsert(ctx, TableSendLogs, logs); err != nil {
			s.Logger.Warn(ctx, "cloud upsert of send logs failed, local write stands", "err", err.Error())
		}
	}
}

// AppendSendLog appends one audit record of a send attempt.
func (s *Store) AppendSendLog(ctx context.Context, log EmailSendLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logs := append(s.getSendLogs(ctx), log)
	s.saveSendLogs(ctx, logs)
}

// --- Settings ---

func (s *Store) getSettingsLocal() Settings {
	settings := DefaultSettings()
	payload, err := s.Local.Get(CollectionSettings)
	if err == nil && payload != nil {
		if err := json.Unmarshal(payload, &settings); err != nil {
			settings = DefaultSettings()
		}
	}
	if settings.AdminPassword == "" {
		settings.AdminPassword = DefaultAdminPassword
	}
	return settings
}

// GetSettings always answers from the local store; settings are mirrored to
// the cloud but read locally so boot never blocks on the network.
func (s *Store) GetSettings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getSettingsLocal()
}

// SaveSettings persists locally, rebuilds the cloud handle from the fresh
// connection settings, then mirrors everything except the connection
// credentials themselves to the shared app_settings row.
func (s *Store) SaveSettings(ctx context.Context, settings Settings) {
	s.mu.Lock()
	s.setLocal(CollectionSettings, settings)
	s.mu.Unlock()

	s.ResetCloud()
	s.syncSettingsToCloud(ctx)
}

func (s *Store) syncSettingsToCloud(ctx context.Context) {
	cloud := s.Cloud()
	if cloud == nil {
		return
	}
	scrubbed := s.GetSettings()
	scrubbed.CloudUrl = ""
	scrubbed.CloudAnonKey = ""
	if err := cloud.Upsert(ctx, TableSettings, []settingsRow{{Id: SettingsRowId, Data: scrubbed}}); err != nil {
		s.Logger.Warn(ctx, "cloud upsert of settings failed, local write stands", "err", err.Error())
	}
}

// SyncSettingsFromCloud pulls the shared settings row and merges it over the
// local copy. The locally-held connection credentials survive the merge.
func (s *Store) SyncSettingsFromCloud(ctx context.Context) (Settings, bool) {
	cloud := s.Cloud()
	if cloud == nil {
		return Settings{}, false
	}
	rows := []settingsRow{}
	if err := cloud.SelectById(ctx, TableSettings, SettingsRowId, &rows); err != nil {
		s.Logger.Warn(ctx, "cloud settings read failed", "err", err.Error())
		return Settings{}, false
	}
	if len(rows) == 0 {
		return Settings{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	merged := MergeSettings(s.getSettingsLocal(), rows[0].Data)
	s.setLocal(CollectionSettings, merged)
	return merged, true
}

// --- First-run seeding ---

// SeedCloud pushes the local dataset to a mirror whose tables are still
// empty, then mirrors the settings. A populated mirror is left untouched.
func (s *Store) SeedCloud(ctx context.Context) {
	cloud := s.Cloud()
	if cloud == nil {
		return
	}
	count, err := cloud.Count(ctx, TableChildren)
	if err != nil {
		s.Logger.Warn(ctx, "initial cloud sync aborted", "err", err.Error())
		return
	}
	if count == 0 {
		s.mu.Lock()
		children := s.getChildrenLocal()
		parents := s.getParentsLocal()
		logs := s.getDailyLogsLocal()
		s.mu.Unlock()

		if len(children) > 0 {
			if err := cloud.Insert(ctx, TableChildren, children); err != nil {
				s.Logger.Warn(ctx, "initial children sync failed", "err", err.Error())
			}
		}
		if len(parents) > 0 {
			if err := cloud.Insert(ctx, TableParents, parents); err != nil {
				s.Logger.Warn(ctx, "initial parents sync failed", "err", err.Error())
			}
		}
		if len(logs) > 0 {
			if err := cloud.Insert(ctx, TableDailyLogs, logs); err != nil {
				s.Logger.Warn(ctx, "initial daily logs sync failed", "err", err.Error())
			}
		}
	}
	s.syncSettingsToCloud(ctx)
}

// --- Admin auth flag ---

// IsAuthenticated reports the local login flag. This is a convenience gate,
// not a security boundary: one shared credential, no session, no server-side
// verification.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, err := s.Local.Get(CollectionAuthFlag)
	if err != nil {
		return false
	}
	return string(payload) == "true"
}

func (s *Store) Login() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Local.Set(CollectionAuthFlag, []byte("true")); err != nil {
		s.Logger.Warn(context.Background(), "failed to persist auth flag", "err", err.Error())
	}
}

func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Local.Delete(CollectionAuthFlag); err != nil {
		s.Logger.Warn(context.Background(), "failed to clear auth flag", "err", err.Error())
	}
}
