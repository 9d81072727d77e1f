package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/spf13/cobra"

	"office-web-server/internal/config"
	"office-web-server/internal/infra/browser"
)

var errMissingDependencies = errors.New("required dependencies are missing")

type dependencyStatus struct {
	Name   string `json:"name"`
	Detail string `json:"detail"`
	OK     bool   `json:"ok"`
}

func newDoctorCommand(configPath *string) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that soffice and a headless browser are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, appLogger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer syncLogger(appLogger)
			return runDoctor(cmd.OutOrStdout(), checkDependencies(cfg), jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the report as JSON")
	return cmd
}

func checkDependencies(cfg *config.AppConfig) []dependencyStatus {
	statuses := make([]dependencyStatus, 0, 2)

	soffice := dependencyStatus{Name: "soffice", Detail: cfg.GetSofficeBin()}
	if path, err := exec.LookPath(cfg.GetSofficeBin()); err == nil {
		soffice.OK = true
		soffice.Detail = path
	}
	statuses = append(statuses, soffice)

	opts := config.BrowserOptions(cfg)
	opts.AutoDownload = false
	chrome := dependencyStatus{Name: "browser", Detail: "not found"}
	if path, err := browser.Resolve(opts); err == nil {
		chrome.OK = true
		chrome.Detail = path
	} else if cfg.GetBrowserAutoDownload() {
		chrome.OK = true
		chrome.Detail = "downloaded on first export"
	}
	statuses = append(statuses, chrome)

	return statuses
}

// runDoctor prints the report and fails when any dependency is missing.
func runDoctor(w io.Writer, statuses []dependencyStatus, jsonOutput bool) error {
	missing := false
	for _, s := range statuses {
		if !s.OK {
			missing = true
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(statuses); err != nil {
			return err
		}
	} else {
		for _, s := range statuses {
			mark := "ok"
			if !s.OK {
				mark = "missing"
			}
			fmt.Fprintf(w, "%-8s %-8s %s\n", s.Name, mark, s.Detail)
		}
	}

	if missing {
		return errMissingDependencies
	}
	return nil
}
