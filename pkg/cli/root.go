// Package cli implements the rent-cli command tree over the marketplace
// API client.
package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/rentloop/rentloop/pkg/client"
	"github.com/rentloop/rentloop/pkg/session"
)

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
}

// NewRootCommand creates the root command
func NewRootCommand() *Command {
	root := &Command{
		Name:        "rent-cli",
		Description: "RentLoop - car rental marketplace CLI",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("rent-cli", flag.ExitOnError),
	}

	root.Subcommands["register"] = newRegisterCommand()
	root.Subcommands["login"] = newLoginCommand()
	root.Subcommands["logout"] = newLogoutCommand()
	root.Subcommands["whoami"] = newWhoamiCommand()
	root.Subcommands["cars"] = newCarsCommand()
	root.Subcommands["availability"] = newAvailabilityCommand()
	root.Subcommands["book"] = newBookCommand()
	root.Subcommands["bookings"] = newBookingsCommand()
	root.Subcommands["owner"] = newOwnerCommand()

	return root
}

// Execute runs the command
func (c *Command) Execute() error {
	args := os.Args[1:]
	if len(args) == 0 {
		return c.usage()
	}

	if args[0] == "-h" || args[0] == "--help" {
		return c.usage()
	}

	if subcmd, ok := c.Subcommands[args[0]]; ok {
		return subcmd.Run(args[1:])
	}

	return fmt.Errorf("unknown command: %s", args[0])
}

// usage prints the command usage
func (c *Command) usage() error {
	fmt.Printf("Usage: %s <command> [args]\n\n", c.Name)
	fmt.Printf("Commands:\n")
	for name, cmd := range c.Subcommands {
		fmt.Printf("  %-15s %s\n", name, cmd.Description)
	}
	return nil
}

// newAPIClient builds the shared client: API URL and token file come from
// the environment, and error notifications go to the terminal via logrus.
func newAPIClient() *client.Client {
	apiURL := os.Getenv("RENTLOOP_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}

	tokenPath := os.Getenv("RENTLOOP_TOKEN_FILE")
	if tokenPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		tokenPath = filepath.Join(home, ".rentloop", "token")
	}

	notifier := client.NotifierFunc(func(message string) {
		logrus.Warn(message)
	})
	return client.New(apiURL, session.NewFileTokenStore(tokenPath), notifier)
}
