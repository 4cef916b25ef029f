// Package syncq holds leaderboard submissions that could not reach the API
// so they can be replayed later.
package syncq

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

type Command struct {
	Method         string          `json:"method"`
	Path           string          `json:"path"`
	Body           json.RawMessage `json:"body,omitempty"`
	IdempotencyKey string          `json:"idempotency_key"`
	QueuedAt       time.Time       `json:"queued_at"`
	Attempts       int             `json:"attempts"`
	LastError      string          `json:"last_error,omitempty"`
}

func queuePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".holdco")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "queue.json"), nil
}

func Load() ([]Command, error) {
	path, err := queuePath()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Command{}, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return []Command{}, nil
	}
	var out []Command
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func Save(commands []Command) error {
	path, err := queuePath()
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(commands, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

// Push appends cmd unless a command with the same idempotency key is
// already queued.
func Push(cmd Command) error {
	commands, err := Load()
	if err != nil {
		return err
	}
	for _, c := range commands {
		if cmd.IdempotencyKey != "" && c.IdempotencyKey == cmd.IdempotencyKey {
			return nil
		}
	}
	if cmd.QueuedAt.IsZero() {
		cmd.QueuedAt = time.Now().UTC()
	}
	commands = append(commands, cmd)
	return Save(commands)
}

// Drain sends every queued command through send. Commands for which keep
// reports true stay queued with the error recorded; the rest are dropped.
func Drain(send func(Command) error, keep func(error) bool) (sent int, failed []Command, err error) {
	commands, err := Load()
	if err != nil {
		return 0, nil, err
	}
	remaining := make([]Command, 0, len(commands))
	for _, c := range commands {
		if sendErr := send(c); sendErr != nil {
			c.Attempts++
			c.LastError = sendErr.Error()
			failed = append(failed, c)
			if keep(sendErr) {
				remaining = append(remaining, c)
			}
			continue
		}
		sent++
	}
	if err := Save(remaining); err != nil {
		return sent, failed, err
	}
	return sent, failed, nil
}
