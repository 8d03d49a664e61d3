// Package main is the entrypoint for the Strucbot command line client.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/strucbot/strucbot/internal/client"
)

const defaultServerURL = "http://localhost:4000"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("strucbot", flag.ContinueOnError)
	serverURL := fs.String("server", envOrDefault("STRUCBOT_SERVER_URL", defaultServerURL), "base URL of the Strucbot server")
	sessionPath := fs.String("session-file", os.Getenv("STRUCBOT_SESSION_FILE"), "path of the session file (defaults to the user config dir)")
	fs.Usage = func() { usage(out) }

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		usage(out)
		return errors.New("a command is required")
	}

	sessions, err := client.NewSessionStore(*sessionPath)
	if err != nil {
		return err
	}
	api := client.New(strings.TrimRight(*serverURL, "/"), sessions)

	ctx := context.Background()
	command := fs.Arg(0)
	rest := fs.Args()[1:]

	switch command {
	case "register":
		return runRegister(ctx, api, in, out)
	case "login":
		return runLogin(ctx, api, in, out)
	case "logout":
		if err := api.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Logged out.")
		return nil
	case "profile":
		return runProfile(ctx, api, out, rest)
	case "generate":
		if len(rest) == 0 {
			return errors.New("usage: strucbot generate <prompt>")
		}
		schema, err := api.Generate(ctx, strings.Join(rest, " "))
		if err != nil {
			return err
		}
		client.PrintSchema(out, schema)
		return nil
	case "schemas":
		return runSchemas(ctx, api, out, rest)
	case "chat":
		return client.RunChat(ctx, api, in, out)
	default:
		usage(out)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runRegister(ctx context.Context, api *client.Client, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	username := promptLine(reader, out, "Username: ")
	email := promptLine(reader, out, "Email: ")
	password := promptLine(reader, out, "Password: ")

	if err := api.Register(ctx, username, email, password); err != nil {
		return err
	}
	fmt.Fprintln(out, "Account created. Run 'strucbot login' to sign in.")
	return nil
}

func runLogin(ctx context.Context, api *client.Client, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	username := promptLine(reader, out, "Username or email: ")
	password := promptLine(reader, out, "Password: ")

	session, err := api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Logged in as %s (%s).\n", session.User.Username, session.User.Email)
	return nil
}

func runProfile(ctx context.Context, api *client.Client, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	username := fs.String("username", "", "new username")
	email := fs.String("email", "", "new email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" && *email == "" {
		profile, err := api.Profile(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s <%s> role=%s id=%s\n", profile.Username, profile.Email, profile.Role, profile.ID)
		return nil
	}

	updated, err := api.UpdateProfile(ctx, *username, *email)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Profile updated: %s <%s>\n", updated.Username, updated.Email)
	return nil
}

func runSchemas(ctx context.Context, api *client.Client, out io.Writer, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: strucbot schemas <list|delete>")
	}

	switch args[0] {
	case "list":
		schemas, err := api.ListSchemas(ctx)
		if err != nil {
			return err
		}
		if len(schemas) == 0 {
			fmt.Fprintln(out, "No saved tables yet.")
			return nil
		}
		for i := range schemas {
			client.PrintSchema(out, &schemas[i])
		}
		return nil
	case "delete":
		if len(args) < 2 {
			return errors.New("usage: strucbot schemas delete <id>")
		}
		if err := api.DeleteSchema(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintln(out, "Deleted.")
		return nil
	default:
		return fmt.Errorf("unknown schemas subcommand %q", args[0])
	}
}

func promptLine(reader *bufio.Reader, out io.Writer, prompt string) string {
	fmt.Fprint(out, prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func usage(out io.Writer) {
	fmt.Fprint(out, `Usage: strucbot [flags] <command>

Commands:
  register                      create an account
  login                         sign in and persist the session
  logout                        drop the persisted session
  profile [--username --email]  show or update the account
  generate <prompt>             design a table from a description
  schemas list                  list saved tables
  schemas delete <id>           delete a saved table
  chat                          interactive loop over the same commands

Flags:
  -server URL          server base URL (or STRUCBOT_SERVER_URL)
  -session-file PATH   session file path (or STRUCBOT_SESSION_FILE)
`)
}
