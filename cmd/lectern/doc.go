// Package main hosts the lectern CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into calls on the
// internal packages: fetching a recording from its playback URL, assembling
// a downloaded recording into a GES project, probing media, and checking
// external tools. Configuration resolution and logger construction live in
// commandContext so subcommands only deal with flags and output.
//
// Keep this package lean: add behaviour to the internal packages first and
// surface it here through a command or flag.
package main
