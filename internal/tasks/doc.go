// Package tasks executes user intents against the Spotify Web API and records the outcome in
// the shared [state.Store].
//
// # Intents
//
// [Intent] is a closed set of request types. [Engine.Execute] routes each one through a single
// type switch to its handler; an unknown value is rejected with [shared.ErrUnknownIntent].
//
// # Handlers
//
// Every handler follows the same shape:
//
//  1. Validate input before any remote call
//  2. Perform remote calls with no lock held, joined with errgroup when independent
//  3. Write the results in one [state.Store.Update]
//
// A failure in steps 1 or 2 writes nothing except the store's last error. Playback commands
// whose effect is known locally (volume, shuffle, repeat) patch the cached playback; the rest
// refetch it.
//
// # Enrichment
//
// Handlers that load tracks, albums, shows or artists follow up with containment queries so
// views can mark liked and saved items. Enrichment failures are logged and recorded without
// failing the intent.
//
// # Track Caching
//
// The optional [TrackCacher] receives every loaded track. Cache failures are logged at warn.
//
// # Lifecycle Updates
//
// [EngineOpts.Updates] receives an [Update] when an intent starts and finishes. Sends never
// block the engine.
package tasks
