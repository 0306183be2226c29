// Package ui implements the liked-songs terminal interface using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [LoginView] : shown when there is no stored session or the API rejected it
//  2. [LibraryView] : the liked-songs list, filled page by page by a [Catalog]
//  3. [CollageView] : progress and result of an album-art collage
//
// Loads and collages run in tea.Cmds so the render loop never waits on the network.
// Collage progress flows through a channel from [tasks.CollageEngine]; sends are
// non-blocking and the view shows the latest update.
//
// Keys: m loads more, r reloads from the network, c builds a collage, o opens the selected
// song in Spotify, q quits.
package ui
