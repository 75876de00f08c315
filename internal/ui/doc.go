// Package ui implements the interactive now-playing screen using bubbletea's Elm architecture.
//
// The [Model] has two views:
//  1. [NowPlayingView] : The current item rendered through the configured format, a progress bar and the device
//  2. [DeviceListView] : Pick a Spotify Connect device to transfer playback to
//
// Every key press becomes a [tasks.Intent] executed on the engine in a tea.Cmd, so the UI never
// talks to the Web API directly. The model re-reads the store on each render and polls playback
// on a tea.Tick. Lifecycle updates from the engine drive the pending indicator.
//
// Keyboard: space play/pause, n/p next/previous, +/- volume, ←/→ seek, s shuffle, r repeat,
// l like, d devices, ? help, q quit.
package ui
