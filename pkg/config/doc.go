// Package config loads environment-tagged configuration structs, backed by
// github.com/caarlos0/env for parsing and github.com/joho/godotenv for
// development .env files.
//
// Each distinct struct type is parsed once per process and cached, so
// independent subsystems can call Load for the same type without
// re-reading the environment.
package config
