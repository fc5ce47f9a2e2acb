package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
)

type Config struct {
	GameName       string
	AuthToken      string
	SocketURL      string // websocket base URL, e.g. ws://localhost:4000/socket/websocket
	Port           int    // local UI listen port
	TranscriptPath string // empty disables chat persistence
}

// Load parses flags and falls back to environment variables. args is
// os.Args[1:]; a .env file, if present, should be loaded by the caller
// before this runs.
func Load(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("bingo-client", flag.ContinueOnError)
	fs.StringVar(&cfg.GameName, "game", "", "Game name to join")
	fs.StringVar(&cfg.AuthToken, "token", "", "Auth token (prefer env)")
	fs.StringVar(&cfg.SocketURL, "url", "", "Websocket base URL")
	fs.IntVar(&cfg.Port, "p", 0, "Local UI port")
	fs.StringVar(&cfg.TranscriptPath, "transcript", "", "Chat transcript sqlite path")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.GameName == "" {
		cfg.GameName = os.Getenv("BINGO_GAME")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("BINGO_TOKEN")
	}
	if cfg.SocketURL == "" {
		cfg.SocketURL = os.Getenv("BINGO_SOCKET_URL")
	}
	if cfg.TranscriptPath == "" {
		cfg.TranscriptPath = os.Getenv("BINGO_TRANSCRIPT")
	}
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, fmt.Errorf("invalid PORT %q: %w", portStr, err)
			}
			cfg.Port = port
		} else {
			cfg.Port = 4001
		}
	}

	if cfg.GameName == "" {
		return Config{}, errors.New("game name required (-game or BINGO_GAME)")
	}
	if cfg.AuthToken == "" {
		return Config{}, errors.New("auth token required (-token or BINGO_TOKEN)")
	}
	if cfg.SocketURL == "" {
		return Config{}, errors.New("websocket URL required (-url or BINGO_SOCKET_URL)")
	}
	return cfg, nil
}

// SocketAddr is the full dial URL with the auth token appended.
func (c Config) SocketAddr() string {
	return c.SocketURL + "?token=" + url.QueryEscape(c.AuthToken)
}

// Topic is the channel topic for the configured game.
func (c Config) Topic() string {
	return "games:" + c.GameName
}
