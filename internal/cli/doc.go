// Package cli turns command-line arguments, the environment and an optional
// .env file into an app.Config. It performs no I/O beyond reading that file.
package cli
