// Package cache provides the process-local TTL cache used to keep hot
// resume lookups off the database.
//
// A TTLCache expires entries lazily on Get and, once Start is called,
// proactively from a background sweeper. When full, Set evicts the oldest
// tenth of the entries in one batch. Key and PrefixedKey derive fixed-length
// keys from call arguments, and Cached/Loader implement read-through access.
package cache
