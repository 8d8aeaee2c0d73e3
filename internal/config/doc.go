// Package config loads elex-datasource settings from a YAML file.
//
// Every field has a default, so a missing config file is not an error. The CLI
// applies its flags on top of the loaded values.
package config
