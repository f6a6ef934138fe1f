/*
Package observability turns engine lifecycle events into Prometheus metrics and
structured log records.

Both are exposed as domain.LifecycleHooks, so they plug into any engine through
WithLifecycleHooks and can be combined with Chain.
*/
package observability
