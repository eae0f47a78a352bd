// Package media defines the playback capability the repeat controller drives
// and a wall-clock Playhead that implements it for the CLI.
package media
