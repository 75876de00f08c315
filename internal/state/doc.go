// Package state holds the in-memory mirror of the remote account shared by the dispatch engine
// and its readers.
//
// A [Store] owns one [State] behind a mutex. The engine mutates it through [Store.Update];
// the command layer and the TUI read [Store.Snapshot] copies.
//
// Supporting types:
//   - [Pages] caches fetched pages of one remote collection, keyed by offset
//   - [Window] is the offset arithmetic for moving between pages
//   - [ContainmentSet] records saved/followed answers as [Member], [NotMember] or [Unknown]
//   - [Route] frames form the navigation stack, rooted at [HomeRoute]
package state
