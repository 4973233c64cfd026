// Package health serves liveness and readiness probes for the SMTP tester.
//
// [LivenessHandler] always answers OK while the process is up.
// [ReadinessHandler] runs a set of named [Checks] concurrently (the Redis
// logbook ping and the cron probe scheduler, for example) and answers 503 if
// any of them fails or exceeds the timeout.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "redis": redis.Healthcheck(client),
//	    "jobs":  job.Healthcheck(manager),
//	}, health.WithTimeout(3*time.Second)))
//
// Responses are plain text unless the client sends Accept: application/json
// or ?format=json, in which case a [Response] document is written:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "redis": {"status": "unhealthy", "error": "dial tcp: connection refused", "duration_ms": 2}
//	  }
//	}
package health
