package devices

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
)

// sensorAbsent is the whole record a camerasensor driver reports for an
// unpopulated slot.
const sensorAbsent = "no exist"

// maxSensorInfoLen bounds how much of an info attribute is read.
const maxSensorInfoLen = 512

// SensorInfo is a parsed camerasensor info record.
type SensorInfo struct {
	IsMIPI       bool
	IsInterlaced bool
	Name         string
}

// ParseSensorInfo parses "is_mipi:<0|1>,interlaced:<0|1>,name:<string>".
// A record equal to "no exist" yields ErrSensorAbsent; any other
// deviation yields a *MetadataError.
func ParseSensorInfo(data []byte) (SensorInfo, error) {
	record := trimName(string(data))
	if record == sensorAbsent {
		return SensorInfo{}, ErrSensorAbsent
	}

	// name is last and may itself contain commas.
	fields := strings.SplitN(record, ",", 3)
	if len(fields) != 3 {
		return SensorInfo{}, &MetadataError{Field: "record", Value: record, Reason: "expected 3 fields"}
	}

	var info SensorInfo
	var err error
	if info.IsMIPI, err = parseFlagField(fields[0], "is_mipi"); err != nil {
		return SensorInfo{}, err
	}
	if info.IsInterlaced, err = parseFlagField(fields[1], "interlaced"); err != nil {
		return SensorInfo{}, err
	}

	name, err := fieldValue(fields[2], "name")
	if err != nil {
		return SensorInfo{}, err
	}
	if name == "" {
		return SensorInfo{}, &MetadataError{Field: "name", Reason: "empty"}
	}
	info.Name = boundName(name)
	return info, nil
}

func fieldValue(field, key string) (string, error) {
	k, v, ok := strings.Cut(field, ":")
	if !ok {
		return "", &MetadataError{Field: key, Value: field, Reason: "missing ':'"}
	}
	if k != key {
		return "", &MetadataError{Field: key, Value: k, Reason: "unexpected key"}
	}
	return v, nil
}

func parseFlagField(field, key string) (bool, error) {
	v, err := fieldValue(field, key)
	if err != nil {
		return false, err
	}
	switch v {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, &MetadataError{Field: key, Value: v, Reason: "want 0 or 1"}
	}
}

// boundName truncates to the fixed name capacity of an entry.
func boundName(s string) string {
	if len(s) >= MaxNameLen {
		return s[:MaxNameLen-1]
	}
	return s
}

func sensorInfoPath(index int) string {
	return fmt.Sprintf("devices/platform/camerasensor%d/info", index)
}

// readSensors seeds the sensor row of t from the camerasensor info
// attributes. Unreadable or malformed records leave their slot absent.
func readSensors(fsys fs.FS, t *Table, logger *slog.Logger) {
	for i := range MaxInstances {
		p := sensorInfoPath(i)
		data, err := readAttr(fsys, p, maxSensorInfoLen)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Debug("No camera sensor info", "index", i, "path", p)
			} else {
				logger.Warn("Failed to read camera sensor info", "index", i, "path", p, "error", err)
			}
			continue
		}

		info, err := ParseSensorInfo(data)
		switch {
		case errors.Is(err, ErrSensorAbsent):
			continue
		case err != nil:
			logger.Warn("Malformed camera sensor info", "index", i, "path", p, "error", err)
			continue
		}

		t.entries[SensorSubdev][i] = Entry{
			Exists:       true,
			IsMIPI:       info.IsMIPI,
			IsInterlaced: info.IsInterlaced,
			DeviceName:   info.Name,
			SensorName:   info.Name,
		}
		logger.Debug("Camera sensor found", "index", i, "name", info.Name, "mipi", info.IsMIPI, "interlaced", info.IsInterlaced)
	}
}

// readAttr reads at most limit bytes of a sysfs attribute.
func readAttr(fsys fs.FS, name string, limit int64) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit))
}
