package schedule

import (
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"github.com/clambin/go-common/set"
)

// A Record identifies the most recently activated plan: the schedule, the
// variant (blank if none) and the bindings it was resolved with.
type Record struct {
	Schedule string   `json:"schedule"`
	Variant  string   `json:"variant,omitempty"`
	Bindings Bindings `json:"bindings"`
}

// Info describes one catalog entry for enumeration.
type Info struct {
	Name     string   `json:"name"`
	Variants []string `json:"variants,omitempty"`
}

// A Catalog holds all loaded schedule templates and the active-schedule
// record. Templates are read-only after load; the record is guarded so
// concurrent activations cannot interleave.
type Catalog struct {
	templates map[string]*Template
	names     []string
	active    *Record
	lock      sync.RWMutex
}

// LoadCatalog parses every *.toml document in fsys. The load fails on the
// first invalid document: a broken schedule file is a configuration defect
// and serving a partial catalog could activate the wrong schedule.
func LoadCatalog(fsys fs.FS, knownZones set.Set[string]) (*Catalog, error) {
	files, err := fs.Glob(fsys, "*.toml")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	c := Catalog{templates: make(map[string]*Template, len(files))}
	for _, file := range files {
		doc, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		template, err := ParseTemplate(doc, knownZones)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		if _, ok := c.templates[template.Name]; ok {
			return nil, fmt.Errorf("%s: %w: %q", file, ErrDuplicateSchedule, template.Name)
		}
		c.templates[template.Name] = &template
		c.names = append(c.names, template.Name)
	}
	sort.Strings(c.names)
	return &c, nil
}

// List enumerates the loaded schedules in alphabetical order.
func (c *Catalog) List() []Info {
	info := make([]Info, len(c.names))
	for i, name := range c.names {
		info[i] = Info{Name: name, Variants: c.templates[name].VariantNames()}
	}
	return info
}

// Get returns the named template.
func (c *Catalog) Get(name string) (*Template, error) {
	template, ok := c.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrScheduleNotFound, name)
	}
	return template, nil
}

// Active returns the record of the last committed activation, if any.
func (c *Catalog) Active() (Record, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if c.active == nil {
		return Record{}, false
	}
	return *c.active, true
}

// Commit stores the record of a successfully applied plan. Callers must only
// commit after the thermostat push succeeded end to end.
func (c *Catalog) Commit(record Record) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.active = &record
}
