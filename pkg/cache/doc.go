// Package cache provides the small caching primitives shared by the entitlement engine.
//
// Entry is a value stamped with its fetch time and time-to-live; callers decide what to
// do with stale entries (the engine keeps serving them when a refetch fails).
//
// LRU is a generic, mutex-guarded, size-bounded map used to hold per-resource usage
// entries so that a session touching many resources cannot grow memory without bound.
//
//	c := cache.NewLRU[string, cache.Entry[int64]](1024)
//	c.Put("services", cache.NewEntry(int64(3), time.Now(), 5*time.Minute))
//	if e, ok := c.Get("services"); ok && e.IsFresh(time.Now()) {
//		return e.Value
//	}
package cache
