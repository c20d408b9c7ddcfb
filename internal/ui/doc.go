// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI follows a playlist run through its views:
//  1. [ProgressView] : Watch songs being matched in setlist order
//  2. [SelectionView] : Pick between candidate tracks when a song needs disambiguation
//  3. [ResultView] : Display the final report with missing and alternate matches
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Run events flow through a channel from the pipeline assembler, so the interface
// stays responsive while searches and playlist writes are in flight.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, s, m, q) with contextual
// help displayed via charmbracelet/bubbles/help.
package ui
