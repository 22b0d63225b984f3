// Package config loads calbot's settings from flags, CALBOT_* environment
// variables, an optional .env file and an optional config file, using viper.
//
// Precedence follows viper: flags bound with BindPFlag, then environment,
// then the config file, then defaults.
package config
