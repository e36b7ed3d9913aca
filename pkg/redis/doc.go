// Package redis connects to Redis with go-redis/v9 and exposes a health
// probe plus helpers for classifying client errors.
//
// # Usage
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	probe := redis.Healthcheck(client)
//
// # Errors
//
// Connection failures wrap the go-redis cause with errors.Join so both the
// sentinel and the original error remain inspectable. IsNil distinguishes a
// missing key from a failure; IsTransientError flags timeouts and network
// errors that are safe to retry.
package redis
