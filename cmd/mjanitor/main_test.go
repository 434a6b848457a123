package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestPlural(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{0, "ies"},
		{1, "y"},
		{2, "ies"},
	}
	for _, c := range cases {
		if got := plural(c.n, "y", "ies"); got != c.want {
			t.Errorf("plural(%d, ...) = %q, want %q", c.n, got, c.want)
		}
	}
}

func TestResolveConfigFromFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Int("bitrate-tolerance-kbps", 0, "")
	cmd.Flags().String("preferred-dir", "", "")
	if err := cmd.Flags().Parse([]string{"--bitrate-tolerance-kbps=32", "--preferred-dir=/music/keepers"}); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}

	cfg := resolveConfigFromFlags(cmd)
	if cfg.BitrateTolKbps != 32 {
		t.Errorf("BitrateTolKbps = %d, want 32", cfg.BitrateTolKbps)
	}
	if cfg.PreferredDir != "/music/keepers" {
		t.Errorf("PreferredDir = %q, want /music/keepers", cfg.PreferredDir)
	}
}
