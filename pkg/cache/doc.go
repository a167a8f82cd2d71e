// Package cache provides a small generic LRU used to memoize values that are
// expensive to derive from configuration, such as compiled whitelist patterns
// and HTML sanitizer policies.
//
//	patterns := cache.NewLRU[string, *regexp.Regexp](256)
//	re, err := patterns.GetOrCompute(`^[a-z]+$`, func(p string) (*regexp.Regexp, error) {
//	    return regexp.Compile(p)
//	})
//
// All methods are safe for concurrent use.
package cache
