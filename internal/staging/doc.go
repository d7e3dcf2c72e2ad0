// Package staging manages the directories lectern downloads into: listing
// fetched recordings under the materials directory and removing temporary
// fetch directories that an interrupted run left behind.
package staging
