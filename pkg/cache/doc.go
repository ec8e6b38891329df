// Package cache shares Ethos bearer tokens between processes through Redis.
//
// Every client that talks to the same Ethos tenant with the same API key
// needs the same short-lived bearer token. Without a shared cache each
// process authenticates on its own and the auth endpoint sees one call per
// process per token lifetime. The Manager stores tokens under a key derived
// from the base URL and a fingerprint of the API key, so the key itself never
// reaches Redis.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.TokenKey{
//		BaseURL: "https://integrate.elluciancloud.com",
//		APIKey:  apiKey,
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// Authenticate, then store the new token
//		entry = cache.EntryFromToken(tok)
//		err = manager.Set(ctx, key, entry)
//	}
//
// Entries expire in Redis together with the token. Get never returns an
// entry whose token has already expired.
//
// # Metrics
//
//   - ethos_token_cache_hits_total - Cache hits
//   - ethos_token_cache_misses_total - Cache misses
//   - ethos_token_cache_errors_total{operation} - Cache operation errors
package cache
