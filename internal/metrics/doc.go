// Package metrics holds the Prometheus collectors for catalog traffic, collection runs, and the webhook server.
//
// Collectors are package variables so any layer can record without plumbing; [Register] exposes them on the
// default registry and is called once from main.
package metrics
