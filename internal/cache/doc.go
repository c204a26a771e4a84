// Package cache implements the persistent embedding cache: a disk-backed
// key-value store that survives restarts, bounds its on-disk footprint, and
// tolerates crashes mid-write. Entries live as one file per logical key
// (embedding_<hash>.bin) next to a best-effort metadata.json recording
// last-access times for eviction ordering. Writes go through a temp file plus
// rename so readers never observe a torn entry, and every public operation is
// total: failures degrade to a cache miss or a no-op, never to an error the
// caller has to handle. Producers that compute embeddings and callers that
// clear or inspect the cache both go through the Cache façade; nothing else
// in the repository touches the cache directory directly.
package cache
