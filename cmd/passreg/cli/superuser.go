package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/passreg/passreg/internal/service"
)

func newSuperuserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "superuser",
		Short: "Manage superuser accounts",
		Long:  "Create and list superuser accounts, which carry both the staff and superuser flags.",
	}

	cmd.AddCommand(newSuperuserCreateCmd())
	cmd.AddCommand(newSuperuserListCmd())

	return cmd
}

// ---------- superuser create ----------

func newSuperuserCreateCmd() *cobra.Command {
	var (
		username string
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new superuser account",
		Example: `  passreg superuser create --username admin --email admin@example.com --password secret
  passreg superuser create --username admin --email admin@example.com  # prompts for password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuperuserCreate(username, email, password)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted if omitted)")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")

	return cmd
}

func runSuperuserCreate(username, email, password string) error {
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address: %q", email)
	}

	// Prompt for password if not provided
	if password == "" {
		fmt.Print("Password: ")
		pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()
		password = string(pwBytes)

		fmt.Print("Confirm password: ")
		confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		fmt.Println()

		if password != string(confirmBytes) {
			return fmt.Errorf("passwords do not match")
		}
	}

	if password == "" {
		return fmt.Errorf("a superuser must have a password")
	}

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	authSvc := service.NewAuthService(st, jwtSecret(), tokenTTL())
	acc, err := authSvc.CreateSuperuser(context.Background(), username, email, password)
	if err != nil {
		return fmt.Errorf("create superuser: %w", err)
	}

	fmt.Printf("Created superuser %q (id %d)\n", acc.Username, acc.ID)
	return nil
}

// ---------- superuser list ----------

func newSuperuserListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all superuser accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuperuserList(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runSuperuserList(jsonOutput bool) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	accounts, err := st.ListAccounts(context.Background())
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	type superuserRow struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Active   bool   `json:"active"`
	}

	rows := []superuserRow{}
	for _, acc := range accounts {
		if !acc.IsSuperuser {
			continue
		}
		rows = append(rows, superuserRow{
			Username: acc.Username,
			Email:    acc.Email,
			Active:   acc.IsActive,
		})
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No superuser accounts. Use 'passreg superuser create' to create one.")
		return nil
	}

	fmt.Printf("%-24s %-30s %-8s\n", "USERNAME", "EMAIL", "ACTIVE")
	fmt.Printf("%-24s %-30s %-8s\n", "--------", "-----", "------")
	for _, row := range rows {
		active := "yes"
		if !row.Active {
			active = "no"
		}
		fmt.Printf("%-24s %-30s %-8s\n", row.Username, row.Email, active)
	}

	return nil
}
