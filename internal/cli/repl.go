package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/fine2025/petdiary/internal/models"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Open(ctx context.Context, date string) error
	Delete(ctx context.Context, date string) error
	Reload(ctx context.Context) error
	Token(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the pet diary CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - login          — authorize with an access token
//	  - token          — mint an access token for an allow-listed email
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - list           — list records, newest date first
//	  - open [date]    — edit or create the record for a date (default today)
//	  - today          — shorthand for open with today's date
//	  - delete <date>  — delete the record for a date, with confirmation
//	  - reload         — refetch everything from the store
//	  - logout         — log out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// report their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("diary %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, open [date], today, delete <date>, reload, logout, exit")
			} else {
				printlnFn("Available commands: login, token, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "open":
			date := models.Today()
			if len(args) > 0 {
				date = args[0]
			}
			_ = a.Open(ctx, date)

		case "today":
			_ = a.Open(ctx, models.Today())

		case "delete":
			if len(args) == 0 {
				printlnFn("Usage: delete <date>")
				continue
			}
			_ = a.Delete(ctx, args[0])

		case "reload":
			_ = a.Reload(ctx)

		case "token":
			_ = a.Token(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
