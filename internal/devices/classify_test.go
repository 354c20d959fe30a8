package devices

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		category Category
		index    int
		err      error
	}{
		{name: "clipper subdev", raw: "nx-clipper3", category: ClipperSubdev, index: 3},
		{name: "decimator subdev", raw: "nx-decimator1", category: DecimatorSubdev, index: 1},
		{name: "csi subdev", raw: "nx-csi0", category: CSISubdev, index: 0},
		{name: "mpegts video", raw: "VIDEO MPEGTS0", category: MPEGTSVideo, index: 0},
		{name: "clipper video", raw: "VIDEO CLIPPER2", category: ClipperVideo, index: 2},
		{name: "decimator video", raw: "VIDEO DECIMATOR0", category: DecimatorVideo, index: 0},
		{name: "sysfs newline and padding", raw: "VIDEO CLIPPER10\n\x00\x00", category: ClipperVideo, index: 10},
		{name: "index beyond table still classifies", raw: "VIDEO CLIPPER12", category: ClipperVideo, index: 12},
		{name: "unrecognized prefix", raw: "random-device7", err: ErrUnrecognized},
		{name: "sensor name is not a prefix match", raw: "ov5640 0-003c", err: ErrUnrecognized},
		{name: "empty", raw: "", err: ErrUnrecognized},
		{name: "known prefix without index", raw: "nx-clipper", category: ClipperSubdev, err: ErrNoInstanceIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, index, err := Classify(tt.raw)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				assert.Equal(t, tt.category, cat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.category, cat)
			assert.Equal(t, tt.index, index)
		})
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		raw    string
		prefix string
		index  int
		err    error
	}{
		{raw: "nx-clipper0", prefix: "nx-clipper", index: 0},
		{raw: "VIDEO DECIMATOR11", prefix: "VIDEO DECIMATOR", index: 11},
		{raw: "VIDEO CLIPPER2 extra", prefix: "VIDEO CLIPPER", index: 2},
		{raw: "  nx-csi7\n", prefix: "nx-csi", index: 7},
		{raw: "no-digits-here", prefix: "no-digits-here", err: ErrNoInstanceIndex},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			prefix, index, err := SplitName(tt.raw)
			assert.Equal(t, tt.prefix, prefix)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.index, index)
		})
	}
}

func TestCategoryText(t *testing.T) {
	for _, cat := range Categories() {
		t.Run(cat.String(), func(t *testing.T) {
			parsed, err := ParseCategory(cat.String())
			require.NoError(t, err)
			assert.Equal(t, cat, parsed)
		})
	}

	_, err := ParseCategory("webcam")
	require.ErrorIs(t, err, ErrUnknownCategory)

	parsed, err := ParseCategory(" Clipper-Video ")
	require.NoError(t, err)
	assert.Equal(t, ClipperVideo, parsed)

	assert.Equal(t, "category(42)", Category(42).String())
	assert.False(t, NumCategories.Valid())
}

func TestCategoryJSON(t *testing.T) {
	data, err := json.Marshal(Slot{Category: DecimatorVideo, Index: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"category":"decimator-video","index":1}`, string(data))

	var slot Slot
	require.NoError(t, json.Unmarshal([]byte(`{"category":"csi-subdev","index":0}`), &slot))
	assert.Equal(t, Slot{Category: CSISubdev}, slot)

	err = json.Unmarshal([]byte(`{"category":"hdmi","index":0}`), &slot)
	require.ErrorIs(t, err, ErrUnknownCategory)
}

func TestCategoryPredicates(t *testing.T) {
	subdevs := map[Category]bool{SensorSubdev: true, ClipperSubdev: true, DecimatorSubdev: true, CSISubdev: true}
	capture := map[Category]bool{ClipperVideo: true, DecimatorVideo: true}

	for _, cat := range Categories() {
		assert.Equal(t, subdevs[cat], cat.IsSubdev(), "IsSubdev(%s)", cat)
		assert.Equal(t, capture[cat], cat.IsCapture(), "IsCapture(%s)", cat)
	}
}
