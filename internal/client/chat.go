package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/strucbot/strucbot/internal/handler/dto"
)

const welcomeMessage = "Hello! Describe the data you want to store and I'll design a database table for it. Type 'help' for commands."

// chatAPI is the command surface the chat loop needs. The real Client
// satisfies it; tests provide a stub.
type chatAPI interface {
	Generate(ctx context.Context, prompt string) (*dto.SchemaResponse, error)
	ListSchemas(ctx context.Context) ([]dto.SchemaResponse, error)
	DeleteSchema(ctx context.Context, id string) error
}

// RunChat drives the interactive loop. Existing records are shown
// first, then every non-command line is sent off as a prompt. The loop
// exits on EOF, "exit" or an expired session.
func RunChat(ctx context.Context, api chatAPI, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, welcomeMessage)

	schemas, err := api.ListSchemas(ctx)
	if err != nil {
		return err
	}
	if len(schemas) > 0 {
		fmt.Fprintf(out, "\nYou already have %d saved table(s):\n", len(schemas))
		for _, schema := range schemas {
			PrintSchema(out, &schema)
		}
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "help":
			fmt.Fprintln(out, "Commands: list, delete <id>, exit. Anything else is sent as a prompt.")

		case "list":
			schemas, err := api.ListSchemas(ctx)
			if err != nil {
				if chatFatal(out, err) {
					return err
				}
				continue
			}
			if len(schemas) == 0 {
				fmt.Fprintln(out, "No saved tables yet.")
				continue
			}
			for _, schema := range schemas {
				PrintSchema(out, &schema)
			}

		case "delete":
			if len(fields) < 2 {
				fmt.Fprintln(out, "Usage: delete <id>")
				continue
			}
			if err := api.DeleteSchema(ctx, fields[1]); err != nil {
				if chatFatal(out, err) {
					return err
				}
				continue
			}
			fmt.Fprintln(out, "Deleted.")

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return nil

		default:
			schema, err := api.Generate(ctx, line)
			if err != nil {
				if chatFatal(out, err) {
					return err
				}
				continue
			}
			fmt.Fprintln(out, "Here is the table I designed:")
			PrintSchema(out, schema)
		}
	}
}

// chatFatal prints the error and reports whether the loop should stop.
func chatFatal(out io.Writer, err error) bool {
	fmt.Fprintf(out, "Error: %v\n", err)
	return errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrNotLoggedIn)
}

// PrintSchema renders one schema record as a text card.
func PrintSchema(out io.Writer, schema *dto.SchemaResponse) {
	fmt.Fprintf(out, "\n  Table: %s  (id %s)\n", schema.TableName, schema.ID)
	for _, column := range schema.Columns {
		fmt.Fprintf(out, "    %-20s %s\n", column.Name, column.DataType)
	}
	if schema.Prompt != "" {
		fmt.Fprintf(out, "    prompt: %s\n", schema.Prompt)
	}
}
