// Package app wires configuration, logging, telemetry and keyrings into the
// license services used by the command line tool.
//
// A command creates one Application, asks it for an issuer or verifier
// service, and calls Stop before exiting so the metrics textfile is written
// and telemetry is flushed.
package app
