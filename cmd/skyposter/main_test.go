package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/abdulachik/skyposter/internal/bluesky"
	"github.com/abdulachik/skyposter/internal/config"
	"github.com/abdulachik/skyposter/internal/ledger"
	"github.com/stretchr/testify/assert"
)

func TestErrorHint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"config", fmt.Errorf("validate config: %w", config.ErrMissing), "environment"},
		{"auth", fmt.Errorf("catsaday: authenticate: %w", bluesky.ErrAuth), "app password"},
		{"publish", fmt.Errorf("x: %w", bluesky.ErrPublish), "nothing was posted"},
		{"ledger", fmt.Errorf("select product: %w", ledger.ErrLedgerIO), "LEDGER_PATH"},
		{"other", errors.New("boom"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := errorHint(tt.err)
			if tt.want == "" {
				assert.Empty(t, hint)
				return
			}
			assert.Contains(t, hint, tt.want)
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"post", "catalog", "like-ring", "ledger", "whoami", "history", "migrate"} {
		assert.True(t, names[want], want)
	}
}
