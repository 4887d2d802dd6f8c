// Package driven defines the interfaces the ingestion core depends on:
// document stores, checkpoint persistence, source adapters and the
// external summariser. Adapters under internal/adapters/driven and
// internal/sources implement them.
package driven
