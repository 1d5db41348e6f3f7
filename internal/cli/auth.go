package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/existflow/ideabox/internal/identity"
	"github.com/existflow/ideabox/internal/remote"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Manage authentication with the sync server.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the sync server",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from the sync server",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account on the sync server",
	RunE:  runRegister,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is signed in",
	RunE:  runStatus,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(statusCmd)

	authCmd.PersistentFlags().String("server", "", "Sync server URL (defaults to config)")
}

func readLine(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func readPassword(prompt string) string {
	fmt.Print(prompt)
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	return string(passwordBytes)
}

// authTarget resolves the server to talk to and returns an anonymous client
func authTarget(cmd *cobra.Command) (*identity.SessionFile, identity.Session, *remote.Client, error) {
	session, err := sessionFile()
	if err != nil {
		return nil, identity.Session{}, nil, err
	}
	s := session.Load()
	if url, _ := cmd.Flags().GetString("server"); url != "" {
		s.ServerURL = url
	}
	if s.ServerURL == "" {
		s.ServerURL = cfg.ServerURL
	}
	return session, s, remote.NewClient(s.ServerURL, remote.StaticToken("")), nil
}

func saveCredentials(session *identity.SessionFile, s identity.Session, creds remote.Credentials) error {
	s.Token = creds.Token
	s.UserID = creds.UserID
	if err := session.Save(s); err != nil {
		return fmt.Errorf("logged in, but failed to save session: %w", err)
	}
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	session, s, client, err := authTarget(cmd)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	username := readLine(reader, "Username: ")
	password := readPassword("Password: ")

	fmt.Println("🔄 Logging in...")
	creds, err := client.Login(context.Background(), username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := saveCredentials(session, s, creds); err != nil {
		return err
	}

	fmt.Println("✅ Logged in successfully!")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	session, err := sessionFile()
	if err != nil {
		return err
	}

	if !session.Load().IsLoggedIn() {
		fmt.Println("Not logged in.")
		return nil
	}

	if err := session.Clear(); err != nil {
		return err
	}

	fmt.Println("✅ Logged out successfully.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	session, s, client, err := authTarget(cmd)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	username := readLine(reader, "Username: ")
	email := readLine(reader, "Email: ")
	password := readPassword("Password: ")
	confirm := readPassword("Confirm Password: ")

	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	fmt.Println("🔄 Creating account...")
	creds, err := client.Register(context.Background(), username, email, password)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	if err := saveCredentials(session, s, creds); err != nil {
		return err
	}

	fmt.Println("✅ Account created and logged in!")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	session, err := sessionFile()
	if err != nil {
		return err
	}
	s := session.Load()

	fmt.Printf("Server:    %s\n", serverURL(s))
	if !s.IsLoggedIn() {
		fmt.Println("Status:    Not logged in")
		return nil
	}

	client, err := newClient(session, s)
	if err != nil {
		return err
	}
	user, err := client.Me(context.Background())
	if err != nil {
		fmt.Printf("User ID:   %s\n", s.UserID)
		fmt.Printf("Status:    ⚠️  %v\n", err)
		return nil
	}
	fmt.Printf("User:      %s <%s>\n", user.Username, user.Email)
	fmt.Println("Status:    ✓ Logged in")
	return nil
}
