// Package detect enumerates USB cameras attached to the host.
//
// One backend exists per platform, selected at compile time through build
// tags: Linux walks sysfs from the video4linux class devices, macOS parses
// system_profiler output, Windows queries PnP entities via PowerShell. All
// backends produce the same CameraDevice shape so the rest of the system is
// platform-agnostic.
//
// Detection is stateless and read-only: backends never open video streams,
// negotiate formats or touch camera firmware. A single unreadable device is
// skipped; only a failure of enumeration itself is reported as an error.
package detect
