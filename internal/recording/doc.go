// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package recording captures voice messages from an audio device.
//
// The Controller moves through Idle, Active and Finalizing. Start acquires
// the device, Stop flushes and assembles the buffered chunks into a single
// artifact, and Cancel releases the device and discards everything.
//
// # Key Types
//
//   - Controller: recording state machine and elapsed-time clock
//   - Device / Stream: capture source abstraction
//   - CommandDevice: runs an external encoder such as ffmpeg
//   - Artifact: finished recording with file name and media type
//
// # Usage
//
//	rec := recording.NewController(recording.NewCommandDevice(cfg.Recording.Command),
//	    recording.OptionsFromConfig(cfg.Recording))
//	if err := rec.Start(ctx); errors.Is(err, recording.ErrDeviceUnavailable) {
//	    // stay idle
//	}
//	art, err := rec.Stop(ctx)
package recording
