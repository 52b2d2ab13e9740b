// Command cropctl runs the crop disease detector from the terminal: one-shot
// predictions, the prediction history, and a local stand-in for the
// prediction service.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cropdetector/internal/config"
	"cropdetector/internal/controller"
	"cropdetector/internal/logger"
	"cropdetector/internal/mockservice"
	"cropdetector/internal/models"
	"cropdetector/internal/repository/sqlite"
	"cropdetector/internal/service/predict"

	"github.com/spf13/cobra"
)

// endpoint is the prediction service address; tests point it elsewhere.
var endpoint = predict.DefaultEndpoint

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cropctl",
		Short:         "Crop disease detector tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(predictCmd(), historyCmd(), mockServiceCmd())
	return cmd
}

func predictCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "predict <image>",
		Short: "Send one leaf image to the prediction service and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd.Context(), cmd.OutOrStdout(), args[0], timeout)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	return cmd
}

// runPredict drives a controller through select and predict. A failed
// prediction is reported on out and returned as an error.
func runPredict(ctx context.Context, out io.Writer, path string, timeout time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	ctrl := controller.New(predict.NewClient(endpoint, timeout), controller.Options{})
	defer ctrl.Close()

	ctrl.SelectImage(controller.Image{
		Filename:    filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	})
	outcome := ctrl.Predict(ctx)

	view := ctrl.View()
	if view.Result != nil {
		fmt.Fprintf(out, "Disease: %s\n", view.Result.Disease)
		fmt.Fprintf(out, "Confidence: %s\n", view.Result.Confidence)
	}
	if view.Error != "" {
		fmt.Fprintln(out, view.Error)
	}
	if outcome.Kind != predict.Succeeded {
		return outcome.Err
	}
	return nil
}

func historyCmd() *cobra.Command {
	var (
		dbPath   string
		limit    int
		label    string
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded predictions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = config.Load().HistoryDB
			}
			if dbPath == "" {
				return fmt.Errorf("no history database: pass --db or set HISTORY_DB")
			}
			return runHistory(cmd.OutOrStdout(), dbPath, &models.HistoryFilter{Label: label, Limit: limit}, clearAll)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "History database path (default $HISTORY_DB)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum records to show")
	cmd.Flags().StringVar(&label, "label", "", "Only show this raw label")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all records")
	return cmd
}

func runHistory(out io.Writer, dbPath string, filter *models.HistoryFilter, clearAll bool) error {
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	db, err := sqlite.New(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := sqlite.NewHistoryRepository(db)

	if clearAll {
		if err := repo.DeleteAll(); err != nil {
			return err
		}
		fmt.Fprintln(out, "History cleared")
		return nil
	}

	records, err := repo.GetAll(filter)
	if err != nil {
		return err
	}
	for _, rec := range records {
		fmt.Fprintf(out, "%s  %-24s  %s  %s\n",
			rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.Filename,
			predict.DisplayLabel(rec.Label), predict.DisplayConfidence(rec.Confidence))
	}

	stats, err := repo.GetStats()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d prediction(s) recorded\n", stats.Total)
	return nil
}

func mockServiceCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "mock-service",
		Short: "Run a local stand-in for the prediction service",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New(cmd.ErrOrStderr())
			addr := fmt.Sprintf("127.0.0.1:%d", port)
			log.Info("Mock prediction service listening on http://%s/predict", addr)

			server := &http.Server{
				Addr:              addr,
				Handler:           mockservice.NewHandler(log).Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return server.ListenAndServe()
		},
	}

	cmd.Flags().IntVar(&port, "port", 8000, "Port to listen on")
	return cmd
}
