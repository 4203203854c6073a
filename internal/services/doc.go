// Package services defines the shared error taxonomy used by the organize
// pipeline and the remote drive integration.
//
// Errors are tagged with sentinel markers (configuration, remote unavailable,
// not found, data) via the Wrap helper so the engine can decide whether a
// failure aborts the run or is isolated to a single item. Keep new failure
// paths on these markers so run reports stay consistent.
package services
