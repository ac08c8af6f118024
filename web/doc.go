// Package web exposes members over HTTP: the username lookups on
// /member/{id} and /members2/{id}, the paged /members listing plus
// /healthz and /metrics.
package web
