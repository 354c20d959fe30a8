package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/nxv4l2/internal/api/models"
	"github.com/smazurov/nxv4l2/internal/devices"
	"github.com/smazurov/nxv4l2/internal/metrics"
)

// DeviceSlotInput addresses one table cell.
type DeviceSlotInput struct {
	Category models.Category `path:"category" example:"clipper-video" doc:"Device category"`
	Index    int             `path:"index" example:"0" doc:"Instance index"`
}

// SensorInput addresses one sensor slot.
type SensorInput struct {
	Index int `path:"index" example:"0" doc:"Sensor index"`
}

// ResolveInput is a kernel-reported device name.
type ResolveInput struct {
	Name string `query:"name" required:"true" example:"VIDEO CLIPPER0" doc:"Device or sensor name"`
}

// ReverseInput is a device node path.
type ReverseInput struct {
	Path string `query:"path" required:"true" example:"/dev/video6" doc:"Device node path"`
}

// deviceError maps registry errors to HTTP errors.
func deviceError(err error) error {
	switch {
	case errors.Is(err, devices.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, devices.ErrUnknownCategory),
		errors.Is(err, devices.ErrIndexOutOfRange),
		errors.Is(err, devices.ErrUnrecognized),
		errors.Is(err, devices.ErrNoInstanceIndex):
		return huma.Error400BadRequest(err.Error())
	default:
		return huma.Error503ServiceUnavailable("device scan failed", err)
	}
}

func (s *Server) registerDeviceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-devices",
		Method:      http.MethodGet,
		Path:        "/api/devices",
		Summary:     "List Devices",
		Description: "List every discovered device in table order",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{401, 503},
	}, func(_ context.Context, _ *struct{}) (*models.DevicesResponse, error) {
		entries, err := s.registry.Entries()
		metrics.RecordLookup("http", err)
		if err != nil {
			return nil, deviceError(err)
		}
		return &models.DevicesResponse{Body: deviceData(entries)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "resolve-device",
		Method:      http.MethodGet,
		Path:        "/api/devices/resolve",
		Summary:     "Resolve Name",
		Description: "Resolve a kernel-reported name such as \"VIDEO CLIPPER0\" to its slot, falling back to the sensor whose name prefixes it",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 404, 503},
	}, func(_ context.Context, input *ResolveInput) (*models.DeviceResponse, error) {
		slot, entry, err := s.registry.LookupName(input.Name)
		metrics.RecordLookup("http", err)
		if err != nil {
			return nil, deviceError(err)
		}
		return &models.DeviceResponse{Body: models.NewDeviceInfo(slot, entry)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "reverse-lookup",
		Method:      http.MethodGet,
		Path:        "/api/devices/reverse",
		Summary:     "Reverse Lookup",
		Description: "Find the category and index a device node was discovered under",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{401, 404, 503},
	}, func(_ context.Context, input *ReverseInput) (*models.ReverseLookupResponse, error) {
		slot, err := s.registry.ReverseLookup(input.Path)
		metrics.RecordLookup("http", err)
		if err != nil {
			return nil, deviceError(err)
		}

		body := models.ReverseLookupData{
			SlotData: models.SlotData{Category: slot.Category.String(), Index: slot.Index},
		}
		if slot.Category.IsCapture() {
			mipi, interlaced, err := s.registry.CameraType(input.Path)
			if err == nil {
				body.IsMIPI, body.IsInterlaced = &mipi, &interlaced
			}
		}
		return &models.ReverseLookupResponse{Body: body}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "rescan-devices",
		Method:      http.MethodPost,
		Path:        "/api/devices/rescan",
		Summary:     "Rescan",
		Description: "Rebuild the device table from sysfs",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{401, 503},
	}, func(ctx context.Context, _ *struct{}) (*models.RescanResponse, error) {
		start := time.Now()
		if err := s.registry.Scan(ctx); err != nil {
			return nil, deviceError(err)
		}
		elapsed := time.Since(start)

		entries, err := s.registry.Entries()
		if err != nil {
			return nil, deviceError(err)
		}
		counts := make(map[string]int)
		for _, e := range entries {
			counts[e.Category.String()]++
		}
		return &models.RescanResponse{
			Body: models.RescanData{
				Count:      len(entries),
				Counts:     counts,
				DurationMs: float64(elapsed.Microseconds()) / 1000,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-sensor",
		Method:      http.MethodGet,
		Path:        "/api/sensors/{index}",
		Summary:     "Get Sensor",
		Description: "Get a camera sensor slot with its MIPI and interlace flags",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 503},
	}, func(_ context.Context, input *SensorInput) (*models.DeviceResponse, error) {
		return s.lookup(devices.SensorSubdev, input.Index)
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-device",
		Method:      http.MethodGet,
		Path:        "/api/devices/{category}/{index}",
		Summary:     "Get Device",
		Description: "Get the entry at a category and instance index. Absent devices report exists=false.",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 503},
	}, func(_ context.Context, input *DeviceSlotInput) (*models.DeviceResponse, error) {
		cat, err := input.Category.Parse()
		if err != nil {
			return nil, deviceError(err)
		}
		return s.lookup(cat, input.Index)
	})
}

func (s *Server) lookup(cat devices.Category, index int) (*models.DeviceResponse, error) {
	entry, err := s.registry.Lookup(cat, index)
	metrics.RecordLookup("http", err)
	if err != nil {
		return nil, deviceError(err)
	}
	slot := devices.Slot{Category: cat, Index: index}
	return &models.DeviceResponse{Body: models.NewDeviceInfo(slot, entry)}, nil
}

func deviceData(entries []devices.SlotEntry) models.DeviceData {
	data := models.DeviceData{Devices: make([]models.DeviceInfo, 0, len(entries))}
	for _, e := range entries {
		data.Devices = append(data.Devices, models.NewDeviceInfo(e.Slot, e.Entry))
	}
	data.Count = len(data.Devices)
	return data
}
