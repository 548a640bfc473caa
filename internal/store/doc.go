// Package store persists CVConfigs and applies mutation sets to them.
//
// Configs are stored per monitored service: a Location is the scope plus
// the monitored service identifier, and every config of that service lives
// under it. Two implementations are provided. MemoryStore keeps everything
// in process and is used by tests and dry runs. FileStore writes one YAML
// document per monitored service under a root directory:
//
//	<root>/<account>/<org>/<project>/<monitoredService>.yaml
//
// Each segment is the path-escaped identifier, with '.' and ':' escaped as
// well, so different identifiers never share a file. A file only ever
// yields the configs whose scope and monitored service match its Location.
//
// Apply is all or nothing per Location. Added configs are given a fresh
// UUID, updated configs replace the stored config with the same UUID, and
// deleted configs are removed by UUID. Updating or deleting a UUID that is
// not stored fails with ErrNotFound and leaves the Location untouched.
package store
