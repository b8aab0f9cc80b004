package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/openlot/openlot/internal/config"
)

// ServerStatus holds the probed state of a running server.
type ServerStatus struct {
	Addr    string `json:"addr"`
	Alive   bool   `json:"alive"`
	Ready   bool   `json:"ready"`
	Version uint   `json:"migration_version,omitempty"`
	Error   string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show status of a running OpenLot server",
		Long:  `Probe the configured metrics address for liveness and readiness.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, flags *statusConfig) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	status := probeServer(cfg.Metrics.Addr)

	if flags.jsonOutput {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return oops.Code("STATUS_ENCODE_FAILED").Wrap(err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(formatStatus(status))
	return nil
}

// probeServer queries the observability endpoints at addr.
func probeServer(addr string) ServerStatus {
	status := ServerStatus{Addr: addr}
	if addr == "" {
		status.Error = "metrics address not configured"
		return status
	}

	client := &http.Client{Timeout: 2 * time.Second}
	base := "http://" + addr

	status.Alive = probeOK(client, base+"/healthz/liveness")
	if !status.Alive {
		status.Error = "server not responding"
		return status
	}
	status.Ready = probeOK(client, base+"/healthz/readiness")
	return status
}

// probeOK reports whether the endpoint answered 200.
func probeOK(client *http.Client, url string) bool {
	resp, err := client.Get(url)
	if err != nil {
		return false
	}
	defer resp.Body.Close() //nolint:errcheck // probe response body is discarded
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// formatStatus renders a short human-readable summary.
func formatStatus(status ServerStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Server: %s\n", status.Addr)
	if !status.Alive {
		fmt.Fprintf(&b, "Status: down (%s)", status.Error)
		return b.String()
	}
	readiness := "not ready"
	if status.Ready {
		readiness = "ready"
	}
	fmt.Fprintf(&b, "Status: running (%s)", readiness)
	return b.String()
}
