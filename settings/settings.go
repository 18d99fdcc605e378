// Package settings holds the typed key/value configuration entries the
// terminal's settings commands operate on. Persistence is pluggable; the
// default backend is volatile memory.
package settings

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/Chati-SidecarTridge/md-microfirmware-template/hal"
)

// Type tags an entry's declared value type.
type Type uint8

const (
	TypeInt Type = iota
	TypeString
	TypeBool
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "INT"
	case TypeString:
		return "STRING"
	case TypeBool:
		return "BOOL"
	default:
		return "UNKNOWN"
	}
}

// Entry is one configuration record. Values are stored in string form,
// like the flash layout the store mirrors.
type Entry struct {
	Key   string
	Type  Type
	Value string
}

// Backend persists entry snapshots. Nil means volatile-only.
type Backend interface {
	Store(entries []Entry) error
	Erase() error
}

// Store owns the entries. Single-writer: the main loop.
type Store struct {
	log     hal.Logger
	backend Backend
	entries map[string]Entry
}

func NewStore(log hal.Logger, backend Backend, defaults []Entry) *Store {
	s := &Store{
		log:     log,
		backend: backend,
		entries: make(map[string]Entry, len(defaults)),
	}
	for _, e := range defaults {
		s.entries[e.Key] = e
	}
	return s
}

// FindEntry returns the entry for key, if declared.
func (s *Store) FindEntry(key string) (Entry, bool) {
	e, ok := s.entries[key]
	return e, ok
}

func (s *Store) put(key string, typ Type, value string) error {
	e, ok := s.entries[key]
	if !ok {
		return fmt.Errorf("settings: unknown key %q", key)
	}
	if e.Type != typ {
		return fmt.Errorf("settings: key %q is %s, not %s", key, e.Type, typ)
	}
	e.Value = value
	s.entries[key] = e
	return nil
}

func (s *Store) PutInt(key string, value int) error {
	return s.put(key, TypeInt, strconv.Itoa(value))
}

func (s *Store) PutBool(key string, value bool) error {
	return s.put(key, TypeBool, strconv.FormatBool(value))
}

func (s *Store) PutString(key, value string) error {
	return s.put(key, TypeString, value)
}

// Save pushes the current entries to the backend.
func (s *Store) Save() error {
	if s.backend == nil {
		return nil
	}
	entries := make([]Entry, 0, len(s.entries))
	for _, key := range s.keys() {
		entries = append(entries, s.entries[key])
	}
	if err := s.backend.Store(entries); err != nil {
		return fmt.Errorf("settings: save: %w", err)
	}
	return nil
}

// Erase clears the backend snapshot. In-memory entries keep their values
// until the next boot, matching the flash behavior.
func (s *Store) Erase() error {
	if s.backend == nil {
		return nil
	}
	if err := s.backend.Erase(); err != nil {
		return fmt.Errorf("settings: erase: %w", err)
	}
	return nil
}

// PrintAll renders the settings table for the terminal.
func (s *Store) PrintAll() string {
	out := "Key                  Type     Value\n"
	for _, key := range s.keys() {
		e := s.entries[key]
		out += fmt.Sprintf("%-20s %-8s %s\n", e.Key, e.Type, e.Value)
	}
	return out
}

func (s *Store) keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ValueOrNA returns the entry's value, or "N/A" when missing or empty.
func (s *Store) ValueOrNA(key string) string {
	e, ok := s.FindEntry(key)
	if !ok || e.Value == "" {
		return "N/A"
	}
	return e.Value
}
