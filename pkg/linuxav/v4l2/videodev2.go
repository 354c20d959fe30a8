//go:build linux

package v4l2

import "unsafe"

// IOCTL constants whose argument layout is identical on every architecture.
const (
	vidiocQuerycap           = 0x80685600
	vidiocEnumFmt            = 0xc0405602
	vidiocReqbufs            = 0xc0145608
	vidiocStreamon           = 0x40045612
	vidiocStreamoff          = 0x40045613
	vidiocGParm              = 0xc0cc5615
	vidiocSParm              = 0xc0cc5616
	vidiocGCtrl              = 0xc008561b
	vidiocSCtrl              = 0xc008561c
	vidiocGCrop              = 0xc014563b
	vidiocSCrop              = 0x4014563c
	vidiocEnumFramesizes     = 0xc02c564a
	vidiocEnumFrameintervals = 0xc034564b
	vidiocGSelection         = 0xc040565e
	vidiocSSelection         = 0xc040565f

	vidiocSubdevGFmt       = 0xc0585604
	vidiocSubdevSFmt       = 0xc0585605
	vidiocSubdevGCrop      = 0xc038563b
	vidiocSubdevSCrop      = 0xc038563c
	vidiocSubdevGSelection = 0xc040563d
	vidiocSubdevSSelection = 0xc040563e
)

const (
	v4l2FmtFlagEmulated = 0x0002

	v4l2FrmsizeTypeDiscrete   = 1
	v4l2FrmsizeTypeContinuous = 2
	v4l2FrmsizeTypeStepwise   = 3

	v4l2FrmivalTypeDiscrete = 1

	v4l2SubdevFormatActive = 1
	v4l2SelTgtCrop         = 0x0000

	v4l2CtrlWhichCurVal = 0
)

// Compile-time struct size assertions for layouts shared by all architectures.
var (
	_ [104]byte = [unsafe.Sizeof(v4l2Capability{})]byte{}
	_ [64]byte  = [unsafe.Sizeof(v4l2Fmtdesc{})]byte{}
	_ [44]byte  = [unsafe.Sizeof(v4l2Frmsizeenum{})]byte{}
	_ [52]byte  = [unsafe.Sizeof(v4l2Frmivalenum{})]byte{}
	_ [48]byte  = [unsafe.Sizeof(v4l2PixFormat{})]byte{}
	_ [20]byte  = [unsafe.Sizeof(v4l2PlanePixFormat{})]byte{}
	_ [192]byte = [unsafe.Sizeof(v4l2PixFormatMplane{})]byte{}
	_ [48]byte  = [unsafe.Sizeof(v4l2MbusFramefmt{})]byte{}
	_ [88]byte  = [unsafe.Sizeof(v4l2SubdevFormat{})]byte{}
	_ [56]byte  = [unsafe.Sizeof(v4l2SubdevCrop{})]byte{}
	_ [64]byte  = [unsafe.Sizeof(v4l2SubdevSelection{})]byte{}
	_ [20]byte  = [unsafe.Sizeof(v4l2Crop{})]byte{}
	_ [64]byte  = [unsafe.Sizeof(v4l2Selection{})]byte{}
	_ [8]byte   = [unsafe.Sizeof(v4l2Control{})]byte{}
	_ [20]byte  = [unsafe.Sizeof(v4l2ExtControl{})]byte{}
	_ [20]byte  = [unsafe.Sizeof(v4l2Requestbuffers{})]byte{}
	_ [16]byte  = [unsafe.Sizeof(v4l2Timecode{})]byte{}
	_ [204]byte = [unsafe.Sizeof(v4l2Streamparm{})]byte{}
)

// v4l2Capability has size 104 bytes.
type v4l2Capability struct {
	driver       [16]byte  // offset 0
	card         [32]byte  // offset 16
	busInfo      [32]byte  // offset 48
	version      uint32    // offset 80
	capabilities uint32    // offset 84
	deviceCaps   uint32    // offset 88
	reserved     [3]uint32 // offset 92
}

// v4l2Fmtdesc has size 64 bytes.
type v4l2Fmtdesc struct {
	index       uint32    // offset 0
	typ         uint32    // offset 4
	flags       uint32    // offset 8
	description [32]byte  // offset 12
	pixelformat uint32    // offset 44
	mbusCode    uint32    // offset 48
	reserved    [3]uint32 // offset 52
}

type v4l2FrmsizeStepwise struct {
	minWidth   uint32
	maxWidth   uint32
	stepWidth  uint32
	minHeight  uint32
	maxHeight  uint32
	stepHeight uint32
}

// v4l2Frmsizeenum has size 44 bytes. The union holds either a discrete
// width/height pair or a v4l2FrmsizeStepwise.
type v4l2Frmsizeenum struct {
	index       uint32    // offset 0
	pixelFormat uint32    // offset 4
	typ         uint32    // offset 8
	union       [24]byte  // offset 12
	reserved    [2]uint32 // offset 36
}

func (f *v4l2Frmsizeenum) discrete() (width, height uint32) {
	d := (*[2]uint32)(unsafe.Pointer(&f.union[0]))
	return d[0], d[1]
}

func (f *v4l2Frmsizeenum) stepwise() *v4l2FrmsizeStepwise {
	return (*v4l2FrmsizeStepwise)(unsafe.Pointer(&f.union[0]))
}

type v4l2Fract struct {
	numerator   uint32
	denominator uint32
}

// v4l2Frmivalenum has size 52 bytes. For stepwise intervals the union
// starts with the minimum interval.
type v4l2Frmivalenum struct {
	index       uint32    // offset 0
	pixelFormat uint32    // offset 4
	width       uint32    // offset 8
	height      uint32    // offset 12
	typ         uint32    // offset 16
	union       [24]byte  // offset 20
	reserved    [2]uint32 // offset 44
}

func (f *v4l2Frmivalenum) fract() *v4l2Fract {
	return (*v4l2Fract)(unsafe.Pointer(&f.union[0]))
}

// v4l2PixFormat has size 48 bytes.
type v4l2PixFormat struct {
	width        uint32
	height       uint32
	pixelformat  uint32
	field        uint32
	bytesperline uint32
	sizeimage    uint32
	colorspace   uint32
	priv         uint32
	flags        uint32
	ycbcrEnc     uint32
	quantization uint32
	xferFunc     uint32
}

// v4l2PlanePixFormat has size 20 bytes.
type v4l2PlanePixFormat struct {
	sizeimage    uint32
	bytesperline uint32
	reserved     [6]uint16
}

// v4l2PixFormatMplane has size 192 bytes.
type v4l2PixFormatMplane struct {
	width        uint32                // offset 0
	height       uint32                // offset 4
	pixelformat  uint32                // offset 8
	field        uint32                // offset 12
	colorspace   uint32                // offset 16
	planeFmt     [8]v4l2PlanePixFormat // offset 20
	numPlanes    uint8                 // offset 180
	flags        uint8
	ycbcrEnc     uint8
	quantization uint8
	xferFunc     uint8
	reserved     [7]uint8
}

// v4l2MbusFramefmt has size 48 bytes.
type v4l2MbusFramefmt struct {
	width        uint32
	height       uint32
	code         uint32
	field        uint32
	colorspace   uint32
	ycbcrEnc     uint16
	quantization uint16
	xferFunc     uint16
	flags        uint16
	reserved     [10]uint16
}

// v4l2SubdevFormat has size 88 bytes.
type v4l2SubdevFormat struct {
	which    uint32           // offset 0
	pad      uint32           // offset 4
	format   v4l2MbusFramefmt // offset 8
	stream   uint32           // offset 56
	reserved [7]uint32        // offset 60
}

type v4l2Rect struct {
	left   int32
	top    int32
	width  uint32
	height uint32
}

// v4l2SubdevCrop has size 56 bytes.
type v4l2SubdevCrop struct {
	which    uint32
	pad      uint32
	rect     v4l2Rect
	stream   uint32
	reserved [7]uint32
}

// v4l2SubdevSelection has size 64 bytes.
type v4l2SubdevSelection struct {
	which    uint32
	pad      uint32
	target   uint32
	flags    uint32
	r        v4l2Rect
	stream   uint32
	reserved [7]uint32
}

// v4l2Crop has size 20 bytes.
type v4l2Crop struct {
	typ uint32
	c   v4l2Rect
}

// v4l2Selection has size 64 bytes.
type v4l2Selection struct {
	typ      uint32
	target   uint32
	flags    uint32
	r        v4l2Rect
	reserved [9]uint32
}

type v4l2Control struct {
	id    uint32
	value int32
}

// v4l2ExtControl is packed in the kernel; value is the union of the
// 32/64-bit value and the payload pointer.
type v4l2ExtControl struct {
	id        uint32  // offset 0
	size      uint32  // offset 4
	reserved2 uint32  // offset 8
	value     [8]byte // offset 12
}

type v4l2Requestbuffers struct {
	count        uint32
	typ          uint32
	memory       uint32
	capabilities uint32
	flags        uint8
	reserved     [3]uint8
}

type v4l2Timecode struct {
	typ      uint32
	flags    uint32
	frames   uint8
	seconds  uint8
	minutes  uint8
	hours    uint8
	userbits [4]uint8
}

// v4l2Captureparm and v4l2Outputparm share the same 40-byte layout.
type v4l2Captureparm struct {
	capability   uint32
	mode         uint32
	timeperframe v4l2Fract
	extendedmode uint32
	buffers      uint32
	reserved     [4]uint32
}

// v4l2Streamparm has size 204 bytes.
type v4l2Streamparm struct {
	typ  uint32
	parm [200]byte
}

func (p *v4l2Streamparm) captureparm() *v4l2Captureparm {
	return (*v4l2Captureparm)(unsafe.Pointer(&p.parm[0]))
}

func (f *v4l2Format) pix() *v4l2PixFormat {
	return (*v4l2PixFormat)(unsafe.Pointer(&f.fmt[0]))
}

func (f *v4l2Format) pixMP() *v4l2PixFormatMplane {
	return (*v4l2PixFormatMplane)(unsafe.Pointer(&f.fmt[0]))
}
