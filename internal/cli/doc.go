// Package cli is responsible for the command-line surface of the migrator:
// parsing arguments, running the requested migration, presenting results
// and warnings on the console, and handling process-level concerns like
// exit codes. All translation logic lives in the internal/migrate and
// internal/nodeexporter packages; this package only glues them to files
// and the terminal.
package cli
