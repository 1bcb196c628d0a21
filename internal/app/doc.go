// Package app contains the batch driver of the application. It owns the
// logger and configuration and runs every input network through load,
// compile, solve and report, decoupled from any specific entrypoint.
package app
