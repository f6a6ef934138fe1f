/*
Package session implements incremental simulation sessions and their persistence orchestration.

A session is a run that is fed symbols over time. The Manager serializes every
read-modify-write on a session ID, integrating a local reference-counted lock map
with an optional distributed lock so several replicas can share one SessionStore.
*/
package session
