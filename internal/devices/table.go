package devices

import (
	"fmt"
	"slices"
	"strings"
)

const (
	// MaxInstances is the number of instance slots per category.
	MaxInstances = 12
	// MaxResolutions bounds the probed frame list of a capture node.
	MaxResolutions = 10
	// MaxNameLen is the storage size of device and sensor names, including
	// the terminator the kernel interface reserves.
	MaxNameLen = 64
)

// Entry is one discovered device. When Exists is false every other field
// is zero.
type Entry struct {
	Exists       bool        `json:"exists"`
	IsMIPI       bool        `json:"is_mipi"`
	IsInterlaced bool        `json:"is_interlaced"`
	DeviceName   string      `json:"device_name,omitempty"`
	SensorName   string      `json:"sensor_name,omitempty"`
	NodePath     string      `json:"node_path,omitempty"`
	Frames       []FrameInfo `json:"frames,omitempty"`
}

func (e Entry) clone() Entry {
	e.Frames = slices.Clone(e.Frames)
	return e
}

// Slot addresses one table cell.
type Slot struct {
	Category Category `json:"category"`
	Index    int      `json:"index"`
}

func (s Slot) String() string {
	return fmt.Sprintf("%s[%d]", s.Category, s.Index)
}

// SlotEntry pairs an entry with the slot it is stored under.
type SlotEntry struct {
	Slot
	Entry
}

// Table is the category × instance matrix produced by one scan. A table
// is never mutated after the scan that built it.
type Table struct {
	entries [NumCategories][MaxInstances]Entry
}

func checkSlot(cat Category, index int) error {
	if !cat.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, int(cat))
	}
	if index < 0 || index >= MaxInstances {
		return fmt.Errorf("%w: %s index %d (max %d)", ErrIndexOutOfRange, cat, index, MaxInstances-1)
	}
	return nil
}

// slot returns a pointer to a cell for the scanner to fill.
func (t *Table) slot(cat Category, index int) (*Entry, error) {
	if err := checkSlot(cat, index); err != nil {
		return nil, err
	}
	return &t.entries[cat][index], nil
}

// Get returns a copy of the entry at (cat, index).
func (t *Table) Get(cat Category, index int) (Entry, error) {
	e, err := t.slot(cat, index)
	if err != nil {
		return Entry{}, err
	}
	return e.clone(), nil
}

// Existing returns every existing entry of the given categories in table
// order, or of all categories when none are given.
func (t *Table) Existing(cats ...Category) []SlotEntry {
	if len(cats) == 0 {
		cats = Categories()
	}
	var out []SlotEntry
	for _, cat := range cats {
		for i := range MaxInstances {
			if e := t.entries[cat][i]; e.Exists {
				out = append(out, SlotEntry{Slot: Slot{Category: cat, Index: i}, Entry: e.clone()})
			}
		}
	}
	return out
}

// FindPath returns the slot whose node path equals nodePath.
func (t *Table) FindPath(nodePath string, cats ...Category) (Slot, bool) {
	for _, se := range t.Existing(cats...) {
		if se.NodePath != "" && se.NodePath == nodePath {
			return se.Slot, true
		}
	}
	return Slot{}, false
}

// matchSensor finds the sensor whose name prefixes the given device name.
func (t *Table) matchSensor(name string) (Slot, bool) {
	for i := range MaxInstances {
		s := t.entries[SensorSubdev][i]
		if s.Exists && s.SensorName != "" && strings.HasPrefix(name, s.SensorName) {
			return Slot{Category: SensorSubdev, Index: i}, true
		}
	}
	return Slot{}, false
}

// Counts returns the number of existing entries per category.
func (t *Table) Counts() map[Category]int {
	counts := make(map[Category]int, NumCategories)
	for _, cat := range Categories() {
		n := 0
		for i := range MaxInstances {
			if t.entries[cat][i].Exists {
				n++
			}
		}
		counts[cat] = n
	}
	return counts
}
