// Package faults defines the error taxonomy shared by the assembly engine and
// its ingestion collaborators.
//
// Every failure surfaced to the CLI carries exactly one sentinel marker so the
// command layer can print a single diagnostic naming the category, the
// component, and the failing file. Callers build errors with Wrap and test
// them with errors.Is; no layer recovers locally from a marked error.
package faults
