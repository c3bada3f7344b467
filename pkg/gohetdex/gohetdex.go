// Package gohetdex carries module-wide metadata.
package gohetdex

// Version is the module version reported by the CLI.
const Version = "0.2.0"
