package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yanqian/meteo-tuya/internal/domain/meteo"
	apperrors "github.com/yanqian/meteo-tuya/pkg/errors"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "meteo-tuya",
		Short: "Weather station proxy for the Tuya cloud",
		Long: `meteo-tuya queries a Tuya weather station through the Tuya OpenAPI and
serves its current readings as flat JSON on GET /meteo.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server (default)",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "status",
			Short: "Fetch the current reading once and print it",
			RunE:  runStatus,
		},
	)
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	app, cleanup, err := initializeApp()
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}
	defer cleanup()

	return app.Run(cmd.Context())
}

func runStatus(cmd *cobra.Command, _ []string) error {
	svc, cleanup, err := initializeService()
	if err != nil {
		return fmt.Errorf("wire service: %w", err)
	}
	defer cleanup()

	reading, err := svc.Current(cmd.Context())
	if err != nil {
		if encErr := writeJSON(cmd.OutOrStdout(), statusErrorBody(err)); encErr != nil {
			return encErr
		}
		return err
	}
	return writeJSON(cmd.OutOrStdout(), reading)
}

func statusErrorBody(err error) map[string]any {
	appErr, ok := apperrors.As(err)
	if !ok {
		return map[string]any{"error": "internal_error", "detail": err.Error(), "raw": nil}
	}
	body := map[string]any{"error": appErr.Code, "raw": appErr.Data}
	if appErr.Code != meteo.CodeNotSuccess && appErr.Err != nil {
		body["detail"] = appErr.Err.Error()
	}
	return body
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
