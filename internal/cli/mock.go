package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentdeck-io/agentdeck/internal/mockapi"
)

var (
	mockAddr      string
	mockRoot      string
	mockStepDelay time.Duration
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run a mock agent backend",
	Long: `Run a mock agent backend serving the same HTTP API as the real one.
Runs play a scripted research/plan/execute sequence, so the console can be
exercised without a live agent system.`,
	RunE: runMock,
}

func init() {
	mockCmd.Flags().StringVar(&mockAddr, "addr", ":8000", "address to listen on")
	mockCmd.Flags().StringVar(&mockRoot, "root", "", "workspace root directory (default: temp dir)")
	mockCmd.Flags().DurationVar(&mockStepDelay, "step-delay", 500*time.Millisecond, "pause between scripted log lines")
}

func runMock(cmd *cobra.Command, args []string) error {
	root := mockRoot
	if root == "" {
		dir, err := os.MkdirTemp("", "agentdeck-mock-*")
		if err != nil {
			return fmt.Errorf("failed to create workspace root: %w", err)
		}
		defer os.RemoveAll(dir)
		root = dir
	} else {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("failed to resolve workspace root: %w", err)
		}
		if err := os.MkdirAll(abs, 0755); err != nil {
			return fmt.Errorf("failed to create workspace root: %w", err)
		}
		root = abs
	}

	server := mockapi.NewServer(root, mockStepDelay)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(mockAddr)
	}()

	fmt.Printf("Mock backend listening on %s (workspaces under %s)\n", mockAddr, root)
	fmt.Println("Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	fmt.Println("\nMock backend stopped.")
	return nil
}
