// Package deps checks that the external binaries lectern shells out to are
// installed, for the doctor command and for failing fast before a build.
package deps
