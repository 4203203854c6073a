// Package history persists organize run reports in a local SQLite
// database so completed runs can be listed, inspected, and undone.
//
// Each run is stored as one row keyed by an operation id derived from
// the run start time. The full report travels as a JSON document;
// summary columns are duplicated for cheap listing queries.
package history
