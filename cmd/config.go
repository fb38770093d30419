package main

import "time"

type Config struct {
	BadgerFilepath            string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath             string        `env:"BLUGE_FILEPATH,required=true"`
	MediaDir                  string        `env:"MEDIA_DIR,required=true"`
	MediaBaseURL              string        `env:"MEDIA_BASE_URL,default=/media"`
	LogLevel                  string        `env:"LOG_LEVEL,required=true"`
	Host                      string        `env:"HOST,default=localhost"`
	Port                      int           `env:"PORT,default=8080"`
	AuthTokenDuration         time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	RevealWindow              time.Duration `env:"REVEAL_WINDOW,default=10s"`
	LimitMessages             *int          `env:"LIMIT_MESSAGES"`
	CensoredWords             []string      `env:"CENSORED_WORDS"`
	ModerationCharReplacement rune          `env:"MODERATION_CHARACTER_REPLACEMENT,default=42"`
}
