//go:build linux

// Package v4l2 provides pure Go bindings to the Video4Linux2 (V4L2) API
// used by the Nexell capture pipeline: frame size and interval
// enumeration, format and crop negotiation on sub-devices and video
// nodes, controls, and the buffer queue.
//
// This package does not use cgo, enabling simple cross-compilation for
// different Linux architectures (amd64, arm64, arm).
//
// # Enumeration
//
// Query the frame sizes and intervals a node reports for a pixel format:
//
//	dev, _ := v4l2.OpenReadOnly("/dev/video6")
//	defer dev.Close()
//	for i := uint32(0); ; i++ {
//	    size, err := dev.FrameSize(0, i)
//	    if err != nil {
//	        break
//	    }
//	    rate, _ := dev.FrameInterval(0, size.Width, size.Height, 0)
//	}
//
// # Control
//
// A Control negotiates formats and crops. Sub-devices and video nodes
// issue different ioctls for the same operation, so pick the variant
// matching the node:
//
//	sub := v4l2.NewSubdevControl(fd)
//	_ = sub.SetFormat(v4l2.Format{Width: 1920, Height: 1080, PixelFormat: code})
//
//	vid := v4l2.NewVideoControl(fd, v4l2.BufTypeVideoCaptureMPlane)
//	_ = vid.RequestBuffers(4)
//
// Video nodes additionally implement Streamer; sub-devices do not.
package v4l2
