package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentdeck-io/agentdeck/internal/api"
	"github.com/agentdeck-io/agentdeck/internal/config"
	"github.com/agentdeck-io/agentdeck/internal/models"
	"github.com/agentdeck-io/agentdeck/internal/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage console sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List sessions",
	RunE:    runSessionsList,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a session and its backend workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

var deleteGroup string

func init() {
	sessionsDeleteCmd.Flags().StringVar(&deleteGroup, "group", "", "group of the session to delete")
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	store, err := session.OpenGlobal()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer store.Close()

	sessions := store.List()
	if len(sessions) == 0 {
		fmt.Println(styleHint.Render("No sessions."))
		return nil
	}

	for _, s := range sessions {
		name := s.Name
		if s.Group != "" {
			name = s.Group + "/" + s.Name
		}
		fmt.Printf("%s  %s  %s\n",
			styleValue.Render(name),
			styleLabel.Render("workspace="+s.Workspace),
			styleHint.Render(s.CreatedAt.Local().Format("2006-01-02 15:04")),
		)
	}
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	store, err := session.OpenGlobal()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer store.Close()

	target := findSession(store.List(), args[0], deleteGroup)
	if target == nil {
		return fmt.Errorf("no session named %q", args[0])
	}

	if err := store.Delete(target.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	// Best-effort workspace cleanup; the backend refuses while a run is
	// active, and the registry record is already gone.
	settings, err := config.LoadSettings()
	if err == nil {
		client := api.NewClient(settings.ServerURL)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if derr := client.DeleteWorkspace(ctx, target.Workspace, target.Group); derr != nil {
			fmt.Println(styleWarning.Render("Workspace not removed: " + derr.Error()))
		}
	}

	fmt.Printf("%s %s\n", styleSuccess.Render("Deleted session"), target.Name)
	return nil
}

// findSession resolves a name (and optional group) to a session, falling back
// to ID match.
func findSession(sessions []*models.Session, name, group string) *models.Session {
	for _, s := range sessions {
		if s.Name == name && s.Group == group {
			return s
		}
	}
	for _, s := range sessions {
		if s.ID == name {
			return s
		}
	}
	return nil
}
