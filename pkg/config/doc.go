// Package config loads typed configuration structs from environment
// variables using github.com/caarlos0/env/v11 field tags, after reading an
// optional .env file with github.com/joho/godotenv.
//
// Load caches each struct type after its first successful parse so that
// packages can ask for their configuration independently. Parse reads from
// an explicit map and is meant for tests.
package config
