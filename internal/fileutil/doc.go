// Package fileutil holds small filesystem helpers shared by the download and
// project-writing code: verified copies and cross-device directory moves.
package fileutil
