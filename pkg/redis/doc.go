// Package redis opens the optional Redis connection used by the shared
// activity logbook.
//
// The connection is configured through [Config], normally parsed from the
// environment. When REDIS_URL is empty the service keeps its logbook in
// process memory and this package is not used.
//
//	client, err := redis.Open(ctx, cfg.Redis)
//	if err != nil {
//	    return err
//	}
//	book := logbook.New(logbook.NewRedis(client, cfg.Redis.LogKey, cfg.LogbookMax))
//
// [Healthcheck] plugs into the readiness endpoint and [Shutdown] closes the
// client as a shutdown hook.
package redis
