package config

// Site records where a configuration key was defined.
// Zero value means the definition site is unknown (defaults, CLI overrides).
type Site struct {
	File string
	Line int
}

// IsZero reports whether the site carries no location information.
func (s Site) IsZero() bool {
	return s.File == "" && s.Line == 0
}

// Entry is a single own key/value pair in an overlay, with its definition site.
type Entry struct {
	Key   string
	Value string
	Site  Site
}

// Overlay is an ordered key→value mapping layered over an optional parent.
// Own entries keep insertion order; setting an existing key updates the
// value in place (last write wins) without moving it. Lookups fall back to
// the parent chain, but OwnEntries never includes inherited values — the
// typo detector depends on that distinction to avoid false positives
// against global keys.
type Overlay struct {
	parent  *Overlay
	entries []Entry
	index   map[string]int
}

// NewOverlay creates an empty overlay inheriting from parent (may be nil).
func NewOverlay(parent *Overlay) *Overlay {
	return &Overlay{
		parent: parent,
		index:  make(map[string]int),
	}
}

// Set stores an own value for key, recording where it was defined.
// Re-setting an existing key overwrites its value and site but keeps the
// key's original position in the entry order.
func (o *Overlay) Set(key, value string, site Site) {
	if i, ok := o.index[key]; ok {
		o.entries[i].Value = value
		o.entries[i].Site = site
		return
	}
	o.index[key] = len(o.entries)
	o.entries = append(o.entries, Entry{Key: key, Value: value, Site: site})
}

// Get returns the value for key, consulting own entries first and then the
// parent chain.
func (o *Overlay) Get(key string) (string, bool) {
	if o == nil {
		return "", false
	}
	if i, ok := o.index[key]; ok {
		return o.entries[i].Value, true
	}
	return o.parent.Get(key)
}

// Has reports whether key resolves anywhere in the overlay chain.
func (o *Overlay) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// OwnEntries returns the overlay's own entries in insertion order.
// Inherited entries are never included.
func (o *Overlay) OwnEntries() []Entry {
	if o == nil {
		return nil
	}
	out := make([]Entry, len(o.entries))
	copy(out, o.entries)
	return out
}

// Resolved flattens the overlay chain into a single map, with own values
// shadowing inherited ones.
func (o *Overlay) Resolved() map[string]string {
	if o == nil {
		return map[string]string{}
	}
	out := o.parent.Resolved()
	for _, e := range o.entries {
		out[e.Key] = e.Value
	}
	return out
}

// Parent returns the overlay this one inherits from, or nil.
func (o *Overlay) Parent() *Overlay {
	if o == nil {
		return nil
	}
	return o.parent
}

// Len returns the number of own entries.
func (o *Overlay) Len() int {
	if o == nil {
		return 0
	}
	return len(o.entries)
}
