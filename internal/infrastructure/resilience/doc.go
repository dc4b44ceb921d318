/*
Package resilience provides a circuit breaker for outbound requests.

# Overview

The preflight probe hammers arbitrary hosts; the breaker keeps a flaky
or dead network from turning every batch submission into a pile of
timeouts. Requests fail fast while the breaker is open and recover
through a limited half-open trial.

# Usage

	breaker := resilience.New("probe", resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	result, err := breaker.Execute(func() (interface{}, error) {
		return client.Head(url)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                      [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
