/*
Package metrics implements collection of the virtual host resolution
metrics.

Two backends are available. CodaHale uses the Go implementation of the
Coda Hale metrics library, and exposes the values as JSON:

https://github.com/rcrowley/go-metrics

Prometheus uses the Prometheus client library, and exposes the values in
the Prometheus text format. All feeds both of them, and selects the
exposition format by the Accept header of the scrape request.

The collected metrics include the duration of every search, and the
number of searches that found a match per environment, that found no
match, and that failed because of a malformed request. Custom timers,
counters and gauges can be recorded under free keys.

For the keys used for the different metrics, please, see the Key*
constants.
*/
package metrics
