package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"unisync-backend/lib/authenticator"
	"unisync-backend/lib/browser"
	"unisync-backend/lib/institutions"
	"unisync-backend/lib/serviceutil"
	"unisync-backend/lib/telemetry"
)

var validateUsername string

func init() {
	validateCmd.Flags().StringVarP(&validateUsername, "username", "u", "", "username to validate")
	validateCmd.MarkFlagRequired("username")
}

var validateCmd = &cobra.Command{
	Use:   "validate <institution>",
	Short: "Run one live credential validation against an institution",
	Long: "Runs a single headless login attempt and prints the classified outcome as json.\n" +
		"The password is read from the SYNCD_PASSWORD environment variable so it never\nappears in shell history or process lists.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := serviceutil.SignalContext()

		otel, err := telemetry.SetupFromEnv(ctx, "unisync-backend:syncd-validate")
		if err != nil {
			serviceutil.Fatal("failed to initialize telemetry", err)
		}
		defer otel.Shutdown(ctx)

		password := os.Getenv("SYNCD_PASSWORD")
		if password == "" {
			serviceutil.Fatal("missing password", fmt.Errorf("set SYNCD_PASSWORD"))
		}

		registry, err := institutions.NewRegistry()
		if err != nil {
			serviceutil.Fatal("failed to load institution profiles", err)
		}
		profile, err := registry.Get(args[0])
		if err != nil {
			serviceutil.Fatal("unknown institution", err)
		}

		chrome, err := browser.Launch(ctx, browser.Options{})
		if err != nil {
			serviceutil.Fatal("failed to launch browser", err)
		}
		defer chrome.Close()

		page, err := chrome.NewSession(ctx)
		if err != nil {
			serviceutil.Fatal("failed to open browser session", err)
		}
		defer page.Close()

		outcome := authenticator.NewExecutor(profile).Execute(ctx, page, authenticator.Credentials{
			TenantID:      "cli",
			InstitutionID: profile.ID,
			Username:      validateUsername,
			Password:      password,
		})

		out, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			serviceutil.Fatal("failed to serialize outcome", err)
		}
		fmt.Println(string(out))
	},
}
