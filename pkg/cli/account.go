package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/rentloop/rentloop/pkg/auth"
)

func newRegisterCommand() *Command {
	return &Command{
		Name:        "register",
		Description: "Create an account and log in",
		Run:         runRegister,
	}
}

func runRegister(args []string) error {
	flags := flag.NewFlagSet("register", flag.ExitOnError)
	name := flags.String("name", "", "Full name")
	email := flags.String("email", "", "Email address")
	password := flags.String("password", "", "Password (min 8 characters)")
	owner := flags.Bool("owner", false, "Register as a car owner")
	if err := flags.Parse(args); err != nil {
		return err
	}

	role := auth.RoleRenter
	if *owner {
		role = auth.RoleOwner
	}

	c := newAPIClient()
	if err := c.Register(context.Background(), *name, *email, *password, role); err != nil {
		return err
	}

	user := c.Session().User()
	fmt.Printf("Registered and logged in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func newLoginCommand() *Command {
	return &Command{
		Name:        "login",
		Description: "Log in with email and password",
		Run:         runLogin,
	}
}

func runLogin(args []string) error {
	flags := flag.NewFlagSet("login", flag.ExitOnError)
	email := flags.String("email", "", "Email address")
	password := flags.String("password", "", "Password")
	if err := flags.Parse(args); err != nil {
		return err
	}

	c := newAPIClient()
	if err := c.Login(context.Background(), *email, *password); err != nil {
		return err
	}

	user := c.Session().User()
	fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func newLogoutCommand() *Command {
	return &Command{
		Name:        "logout",
		Description: "Drop the local session",
		Run:         runLogout,
	}
}

func runLogout(args []string) error {
	// Logout is purely local: the server holds no session state and the
	// token itself never expires.
	if err := newAPIClient().Logout(); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}

func newWhoamiCommand() *Command {
	return &Command{
		Name:        "whoami",
		Description: "Show the identity behind the stored token",
		Run:         runWhoami,
	}
}

func runWhoami(args []string) error {
	c := newAPIClient()
	if err := c.Restore(context.Background()); err != nil {
		return err
	}

	user := c.Session().User()
	if user == nil {
		fmt.Println("Not logged in")
		return nil
	}
	fmt.Printf("%s <%s> role=%s\n", user.Name, user.Email, user.Role)
	return nil
}
