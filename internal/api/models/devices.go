package models

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/nxv4l2/internal/devices"
)

// Category is a device category name on the wire.
type Category string

// Schema lists the known category names as an enum.
func (Category) Schema(_ huma.Registry) *huma.Schema {
	cats := devices.Categories()
	enumValues := make([]any, 0, len(cats))
	for _, c := range cats {
		enumValues = append(enumValues, c.String())
	}
	return &huma.Schema{
		Type:        huma.TypeString,
		Enum:        enumValues,
		Description: "Device category",
	}
}

// Parse returns the devices.Category the name refers to.
func (c Category) Parse() (devices.Category, error) {
	return devices.ParseCategory(string(c))
}

// FrameInfo is one probed capture size.
type FrameInfo struct {
	Index       int    `json:"index" example:"0" doc:"Enumeration index"`
	Width       uint32 `json:"width" example:"1920" doc:"Width in pixels"`
	Height      uint32 `json:"height" example:"1080" doc:"Height in pixels"`
	IntervalMin uint32 `json:"interval_min" example:"30" doc:"Frame interval denominator at the min sub-index"`
	IntervalMax uint32 `json:"interval_max" example:"15" doc:"Frame interval denominator at the max sub-index"`
}

// DeviceInfo is one discovered device.
type DeviceInfo struct {
	Category     string      `json:"category" example:"clipper-video" doc:"Device category"`
	Index        int         `json:"index" example:"0" doc:"Instance index"`
	Exists       bool        `json:"exists" example:"true" doc:"Whether the device was discovered"`
	DeviceName   string      `json:"device_name,omitempty" example:"VIDEO CLIPPER0" doc:"Kernel reported name"`
	SensorName   string      `json:"sensor_name,omitempty" example:"ov5640" doc:"Sensor feeding this instance"`
	NodePath     string      `json:"node_path,omitempty" example:"/dev/video6" doc:"Device node"`
	IsMIPI       bool        `json:"is_mipi" example:"true" doc:"Sensor uses a MIPI interface"`
	IsInterlaced bool        `json:"is_interlaced" example:"false" doc:"Sensor delivers interlaced frames"`
	Frames       []FrameInfo `json:"frames,omitempty" doc:"Supported capture sizes"`
}

// NewDeviceInfo converts a registry entry to its API shape.
func NewDeviceInfo(slot devices.Slot, e devices.Entry) DeviceInfo {
	info := DeviceInfo{
		Category:     slot.Category.String(),
		Index:        slot.Index,
		Exists:       e.Exists,
		DeviceName:   e.DeviceName,
		SensorName:   e.SensorName,
		NodePath:     e.NodePath,
		IsMIPI:       e.IsMIPI,
		IsInterlaced: e.IsInterlaced,
	}
	for _, f := range e.Frames {
		info.Frames = append(info.Frames, FrameInfo{
			Index:       f.Index,
			Width:       f.Width,
			Height:      f.Height,
			IntervalMin: f.Interval.Min,
			IntervalMax: f.Interval.Max,
		})
	}
	return info
}

type DeviceData struct {
	Devices []DeviceInfo `json:"devices" doc:"Discovered devices"`
	Count   int          `json:"count" example:"4" doc:"Number of devices"`
}

type DevicesResponse struct {
	Body DeviceData
}

type DeviceResponse struct {
	Body DeviceInfo
}

type SlotData struct {
	Category string `json:"category" example:"clipper-video" doc:"Device category"`
	Index    int    `json:"index" example:"0" doc:"Instance index"`
}

type ReverseLookupData struct {
	SlotData
	IsMIPI       *bool `json:"is_mipi,omitempty" doc:"Sensor MIPI flag, capture nodes only"`
	IsInterlaced *bool `json:"is_interlaced,omitempty" doc:"Sensor interlace flag, capture nodes only"`
}

type ReverseLookupResponse struct {
	Body ReverseLookupData
}

type RescanData struct {
	Count      int            `json:"count" example:"4" doc:"Number of devices after the scan"`
	Counts     map[string]int `json:"counts" doc:"Devices per category"`
	DurationMs float64        `json:"duration_ms" example:"12.5" doc:"Scan duration"`
}

type RescanResponse struct {
	Body RescanData
}
