// Package preflight provides readiness checks for the filesystem paths and
// external tools lectern depends on.
//
// The CLI "lectern doctor" command renders every result; "lectern build"
// runs CheckOutputDir before assembling so an unwritable destination fails
// before any media is probed.
package preflight
