package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/ideabox/internal/notebook"
	"github.com/existflow/ideabox/internal/remote"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh the local mirror from the server",
	Long: `Refresh ideas and the category palette from the sync server.

Commands:
  ideabox sync              # Refresh now
  ideabox sync status       # Show mirror and server state
  ideabox sync key          # Set up end-to-end sealing of idea text`,
	RunE: runSync,
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	RunE:  runSyncStatus,
}

var syncKeyCmd = &cobra.Command{
	Use:   "key",
	Short: "Generate or show the sealing salt",
	RunE:  runSyncKey,
}

var syncConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure sync settings",
	RunE:  runSyncConfig,
}

func init() {
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncKeyCmd)
	syncCmd.AddCommand(syncConfigCmd)

	syncConfigCmd.Flags().String("server", "", "Set server URL")
	syncKeyCmd.Flags().String("salt", "", "Use the salt from another device")
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	fmt.Println("🔄 Synchronizing...")
	if err := a.client.Health(ctx); err != nil {
		return fmt.Errorf("sync server unreachable: %w", err)
	}

	ideas, err := a.repo.GetIdeas(ctx, notebook.GetOptions{Force: true})
	if err != nil {
		return err
	}
	palette := a.repo.Palette().GetCategoryPalette(ctx, notebook.GetOptions{Force: true})

	fmt.Printf("✓ Sync complete! %d ideas, %d palette entries\n", len(ideas), len(palette))
	return nil
}

func runSyncStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	s := a.session.Load()
	fmt.Printf("Server:    %s\n", a.client.BaseURL())
	fmt.Printf("Mirror:    %s\n", a.mirror.Path())
	fmt.Printf("Keys:      %s\n", strings.Join(a.mirror.Keys(), ", "))
	fmt.Printf("Cached:    %d ideas\n", len(a.mirror.ReadIdeas()))
	if s.IsLoggedIn() {
		fmt.Printf("User ID:   %s\n", s.UserID)
	} else {
		fmt.Println("Status:    Not logged in")
	}

	switch {
	case s.Salt == "":
		fmt.Println("Sealing:   off (run 'ideabox sync key')")
	case os.Getenv(passphraseEnv) == "":
		fmt.Printf("Sealing:   salt set, %s not set\n", passphraseEnv)
	default:
		sealer, err := remote.NewSealerBase64(os.Getenv(passphraseEnv), s.Salt)
		if err != nil {
			return err
		}
		fmt.Printf("Sealing:   on (key %s)\n", sealer.Fingerprint())
	}
	return nil
}

func runSyncKey(cmd *cobra.Command, args []string) error {
	session, err := sessionFile()
	if err != nil {
		return err
	}
	s := session.Load()

	if imported, _ := cmd.Flags().GetString("salt"); imported != "" {
		if _, err := remote.NewSealerBase64("probe", imported); err != nil {
			return fmt.Errorf("invalid salt: %w", err)
		}
		s.Salt = imported
		if err := session.Save(s); err != nil {
			return err
		}
		fmt.Println("✓ Sealing salt imported")
	}

	if s.Salt == "" {
		salt, err := remote.GenerateSalt()
		if err != nil {
			return err
		}
		s.Salt = salt
		if err := session.Save(s); err != nil {
			return err
		}
		fmt.Println("✓ Sealing salt generated!")
		fmt.Println("\n⚠️  IMPORTANT: Copy this salt to your other devices, together with the same passphrase.")
	}

	fmt.Printf("\nSalt: %s\n", s.Salt)

	pass := os.Getenv(passphraseEnv)
	if pass == "" {
		pass = readPassword("Passphrase (to show the key fingerprint): ")
	}
	if len(pass) < 8 {
		return fmt.Errorf("passphrase must be at least 8 characters")
	}
	sealer, err := remote.NewSealerBase64(pass, s.Salt)
	if err != nil {
		return err
	}
	fmt.Printf("Key fingerprint: %s\n", sealer.Fingerprint())
	fmt.Printf("Export %s with this passphrase to seal idea text.\n", passphraseEnv)
	return nil
}

func runSyncConfig(cmd *cobra.Command, args []string) error {
	server, _ := cmd.Flags().GetString("server")
	if server == "" {
		fmt.Printf("Server: %s\n", cfg.ServerURL)
		return nil
	}

	cfg.ServerURL = strings.TrimRight(server, "/")
	if err := cfg.Save(); err != nil {
		return err
	}

	// A session belongs to one server; switching servers signs out
	session, err := sessionFile()
	if err != nil {
		return err
	}
	if s := session.Load(); s.ServerURL != "" && s.ServerURL != cfg.ServerURL {
		s.ServerURL = cfg.ServerURL
		s.Token, s.UserID = "", ""
		if err := session.Save(s); err != nil {
			return err
		}
		fmt.Println("  signed out of the previous server")
	}
	fmt.Printf("✓ Server set to: %s\n", cfg.ServerURL)
	return nil
}
