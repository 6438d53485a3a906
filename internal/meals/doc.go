// Package meals implements the meal log's persistence engine: a CRUD store
// for dated records sharded into one JSON file per calendar day.
//
// Each record's logged_at timestamp determines its partition (the YYYY-MM-DD
// date prefix). Partitions are discovered by enumerating the data directory;
// there is no index or manifest. A partition whose record list drops to zero
// is deleted rather than left behind as an empty file.
//
// The store keeps no in-memory state between calls. Every operation re-reads
// the partitions it needs, so edits made by other processes (e.g. a sync
// client touching the same directory) are picked up on the next call.
package meals
