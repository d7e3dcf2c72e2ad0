// Package probecache persists ffprobe results in SQLite so repeated builds of
// the same recording skip re-probing unchanged media.
//
// Entries are keyed by absolute path, file size, and modification time; any
// change to the file produces a new key and the stale row is replaced on the
// next probe. The cache only spans runs. Within one run the assets.Resolver
// already guarantees a single probe per path.
//
// Schema changes bump schemaVersion in schema.go; users delete the cache file
// to adopt the new schema.
package probecache
