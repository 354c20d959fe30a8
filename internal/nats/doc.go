// Package nats exposes the device registry over NATS.
//
// An embedded server can be started in-process. The Bridge republishes
// registry events from the in-process bus on the nxv4l2.devices.*
// subjects, and the Responder answers lookup requests on
// nxv4l2.devices.lookup:
//
//	nats req nxv4l2.devices.lookup '{"name":"VIDEO CLIPPER0"}'
//	nats req nxv4l2.devices.lookup '{"category":"sensor-subdev","index":0}'
//	nats req nxv4l2.devices.lookup '{"path":"/dev/video6"}'
//
// Client wraps the request side for tools such as the CLI.
package nats
