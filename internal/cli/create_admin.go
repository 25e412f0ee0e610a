package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/pawsitivecheck/syncconsole/internal/auth"
	"github.com/pawsitivecheck/syncconsole/internal/config"
	"github.com/pawsitivecheck/syncconsole/internal/database"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

// CreateUserCommand adds a console account without going through /setup.
type CreateUserCommand struct {
	Username     string
	Password     string
	Role         string
	DatabasePath string

	cfg *config.Config
	out io.Writer
}

func NewCreateUserCommand(cfg *config.Config) *CreateUserCommand {
	return &CreateUserCommand{cfg: cfg, out: os.Stdout}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)

	fs.StringVar(&cmd.Username, "username", "", "Account name (required)")
	fs.StringVar(&cmd.Password, "password", os.Getenv("CONSOLE_PASSWORD"), "Password, at least 12 characters (default $CONSOLE_PASSWORD)")
	fs.StringVar(&cmd.Role, "role", string(entities.UserRoleAdmin), "Role: admin or viewer")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username <name> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a console account for AUTH_MODE=local.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		fs.Usage()
		return fmt.Errorf("username is required")
	}
	return nil
}

func (cmd *CreateUserCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath, zap.NewNop())
	if err != nil {
		return err
	}
	defer db.Close()

	service := auth.NewService(db.DB, cmd.cfg.Auth)
	user, err := service.CreateUser(cmd.Username, cmd.Password, entities.UserRole(cmd.Role))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(cmd.out, "Created %s account %q (id %d)\n", user.Role, user.Username, user.ID)
	return nil
}
