package devices

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
)

// classDir is the video4linux class directory relative to the sysfs root.
const classDir = "class/video4linux"

// maxNameAttrLen bounds the read of an entry's name attribute.
const maxNameAttrLen = MaxNameLen - 1

// Scanner builds a Table from sysfs and the capture nodes it lists.
type Scanner struct {
	sysfs      fs.FS
	devDir     string
	openFrames FrameOpener
	logger     *slog.Logger
}

// Scan reads the sensor records, walks the video4linux class directory
// in lexicographic order and returns a freshly built table. Failure to
// list the class directory is returned; per-entry failures are logged
// and the entry is skipped.
func (s *Scanner) Scan(ctx context.Context) (*Table, error) {
	t := &Table{}
	readSensors(s.sysfs, t, s.logger)

	entries, err := fs.ReadDir(s.sysfs, classDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", classDir, err)
	}

	for _, de := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.scanEntry(t, de.Name())
	}

	crossReferenceSensors(t)
	return t, nil
}

func (s *Scanner) scanEntry(t *Table, dirName string) {
	attr := path.Join(classDir, dirName, "name")
	raw, err := readAttr(s.sysfs, attr, maxNameAttrLen)
	if err != nil {
		s.logger.Warn("Failed to read device name", "entry", dirName, "error", err)
		return
	}
	name := trimName(string(raw))
	if name == "" {
		s.logger.Warn("Empty device name", "entry", dirName)
		return
	}

	slot, err := s.resolve(t, name)
	if err != nil {
		s.logger.Debug("Skipping device", "entry", dirName, "name", name, "reason", err)
		return
	}

	e, err := t.slot(slot.Category, slot.Index)
	if err != nil {
		s.logger.Warn("Device index outside table", "entry", dirName, "name", name, "error", err)
		return
	}

	e.Exists = true
	e.DeviceName = boundName(name)
	e.NodePath = path.Join(s.devDir, dirName)
	s.logger.Debug("Device found", "slot", slot.String(), "name", name, "node", e.NodePath)

	if slot.Category.IsCapture() {
		e.Frames = s.probe(e.NodePath)
	}
}

// resolve classifies a name, falling back to the sensor whose name
// prefixes it.
func (s *Scanner) resolve(t *Table, name string) (Slot, error) {
	cat, index, err := Classify(name)
	if err == nil {
		return Slot{Category: cat, Index: index}, nil
	}
	if !errors.Is(err, ErrUnrecognized) {
		return Slot{}, err
	}
	if slot, ok := t.matchSensor(name); ok {
		return slot, nil
	}
	return Slot{}, err
}

func (s *Scanner) probe(nodePath string) []FrameInfo {
	src, err := s.openFrames(nodePath)
	if err != nil {
		s.logger.Warn("Failed to open capture node for probing", "node", nodePath, "error", err)
		return nil
	}
	defer src.Close()

	frames, err := ProbeFrames(src, MaxResolutions)
	if err != nil {
		s.logger.Warn("Frame size list truncated", "node", nodePath, "kept", len(frames), "error", err)
	}
	return frames
}

// crossReferenceSensors copies the sensor flags and name of slot i onto
// the capture entries at the same index.
func crossReferenceSensors(t *Table) {
	for _, cat := range []Category{ClipperVideo, DecimatorVideo} {
		for i := range MaxInstances {
			e := &t.entries[cat][i]
			sensor := t.entries[SensorSubdev][i]
			if !e.Exists || !sensor.Exists {
				continue
			}
			e.IsMIPI = sensor.IsMIPI
			e.IsInterlaced = sensor.IsInterlaced
			e.SensorName = sensor.SensorName
		}
	}
}
