package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"holdco/internal/game"
)

type APIConfig struct {
	Addr             string
	DatabaseURL      string // Postgres, leaderboard; empty keeps it in memory
	SavesPath        string // SQLite file for in-flight games
	AllowedOrigins   []string
	SubmitToken      string
	RequestTimeout   time.Duration
	LeaderboardLimit int
}

type CLIConfig struct {
	APIBaseURL  string
	SubmitToken string
	SavesPath   string
}

// LoadDotEnv reads a .env file when present. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func LoadAPIFromEnv() (APIConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("HOLDCO_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:             addr,
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SavesPath:        envDefault("HOLDCO_SAVES_PATH", "holdco.db"),
		AllowedOrigins:   envListDefault("HOLDCO_ALLOWED_ORIGINS", []string{"*"}),
		SubmitToken:      strings.TrimSpace(os.Getenv("HOLDCO_SUBMIT_TOKEN")),
		RequestTimeout:   envDurationDefault("HOLDCO_REQUEST_TIMEOUT", 60*time.Second),
		LeaderboardLimit: envIntDefault("HOLDCO_LEADERBOARD_LIMIT", game.MaxLeaderboardEntries),
	}
	if cfg.LeaderboardLimit <= 0 || cfg.LeaderboardLimit > game.MaxLeaderboardEntries {
		return cfg, fmt.Errorf("HOLDCO_LEADERBOARD_LIMIT must be between 1 and %d", game.MaxLeaderboardEntries)
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	home, _ := os.UserHomeDir()
	return CLIConfig{
		APIBaseURL:  strings.TrimRight(envDefault("HOLDCO_API_BASE_URL", "http://localhost:8080"), "/"),
		SubmitToken: strings.TrimSpace(os.Getenv("HOLDCO_SUBMIT_TOKEN")),
		SavesPath:   envDefault("HOLDCO_CLI_SAVES_PATH", filepath.Join(home, ".holdco", "saves.db")),
	}
}

// Scenario is a YAML description of a local simulation run.
type Scenario struct {
	Name       string            `yaml:"name"`
	Seed       int64             `yaml:"seed"`
	Duration   game.GameDuration `yaml:"duration"`
	Difficulty game.Difficulty   `yaml:"difficulty"`
	Sector     string            `yaml:"sector"`
	Initials   string            `yaml:"initials"`
	HoldcoName string            `yaml:"holdco_name"`

	// Choices maps an event type to the action the autopilot takes.
	Choices map[string]string `yaml:"choices"`
}

func LoadScenario(path string) (Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(raw)
}

func ParseScenario(raw []byte) (Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	switch sc.Duration {
	case "":
		sc.Duration = game.DurationStandard
	case game.DurationStandard, game.DurationQuick:
	default:
		return Scenario{}, fmt.Errorf("unknown duration %q", sc.Duration)
	}
	switch sc.Difficulty {
	case "":
		sc.Difficulty = game.DifficultyEasy
	case game.DifficultyEasy, game.DifficultyNormal:
	default:
		return Scenario{}, fmt.Errorf("unknown difficulty %q", sc.Difficulty)
	}
	if sc.Sector != "" {
		if _, err := game.LookupSector(sc.Sector); err != nil {
			return Scenario{}, err
		}
	}
	return sc, nil
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envIntDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envListDefault(key string, fallback []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
