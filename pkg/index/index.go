package index

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jaketoday/daysync/pkg/model"
)

// CalendarIndex is the persisted directory of known calendars, keyed by
// name. It is populated lazily from the API on first use and survives
// across passes; a calendar renamed remotely will not resolve until the
// index is cleared.
type CalendarIndex struct {
	Calendars map[string]string `json:"calendars"` // name -> id
	Path      string            `json:"-"`
	mu        sync.RWMutex
	dirty     bool
}

func NewCalendarIndex() (*CalendarIndex, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "daysync", "calendars.json")

	idx := &CalendarIndex{
		Calendars: make(map[string]string),
		Path:      path,
	}

	if _, err := os.Stat(path); err == nil {
		if err := idx.Load(); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

func (idx *CalendarIndex) Load() error {
	f, err := os.Open(idx.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(&idx.Calendars)
}

func (idx *CalendarIndex) Save() error {
	idx.mu.RLock()
	if !idx.dirty {
		idx.mu.RUnlock()
		return nil
	}
	idx.mu.RUnlock()

	idx.mu.Lock()
	defer idx.mu.Unlock()

	dir := filepath.Dir(idx.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	f, err := os.Create(idx.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(idx.Calendars); err != nil {
		return err
	}
	idx.dirty = false
	return nil
}

// Empty reports whether the directory has been populated yet.
func (idx *CalendarIndex) Empty() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.Calendars) == 0
}

func (idx *CalendarIndex) Get(name string) (string, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	id, ok := idx.Calendars[name]
	return id, ok
}

func (idx *CalendarIndex) Put(info model.CalendarInfo) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.Calendars[info.Name] != info.ID {
		idx.Calendars[info.Name] = info.ID
		idx.dirty = true
	}
}

// All returns the directory as a calendar list, in no particular order.
func (idx *CalendarIndex) All() []model.CalendarInfo {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	infos := make([]model.CalendarInfo, 0, len(idx.Calendars))
	for name, id := range idx.Calendars {
		infos = append(infos, model.CalendarInfo{ID: id, Name: name})
	}
	return infos
}

// Clear drops the directory; the next lookup refetches from the API.
func (idx *CalendarIndex) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if len(idx.Calendars) > 0 {
		idx.Calendars = make(map[string]string)
		idx.dirty = true
	}
}
