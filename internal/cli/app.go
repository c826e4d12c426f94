package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fine2025/petdiary/internal/config"
	"github.com/fine2025/petdiary/internal/logging"
	"github.com/fine2025/petdiary/internal/repository"
	"github.com/fine2025/petdiary/internal/session"
)

type App struct {
	config *config.Config
	repo   *repository.Repository
	gate   *session.Gate
	log    logging.Logger

	reader *bufio.Reader
	out    io.Writer
	busy   bool
}

func NewApp(c *config.Config, repo *repository.Repository, gate *session.Gate, log logging.Logger) *App {
	return &App{
		config: c,
		repo:   repo,
		gate:   gate,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

func (a *App) isLoggedIn() bool {
	_, ok := a.gate.CurrentIdentity()
	return ok
}

func (a *App) getStatus() string {
	s := ""
	if id, ok := a.gate.CurrentIdentity(); ok {
		s = id.Email + " "
	}
	s = s + a.repo.State().String()
	return fmt.Sprintf("(%s)", s)
}

// runExclusive serializes command handlers. The repository expects calls from
// one goroutine at a time, and a slow store call must not be interleaved with
// another mutation.
func (a *App) runExclusive(fn func() error) error {
	if a.busy {
		fmt.Fprintln(a.out, "Another operation is still in progress, please wait")
		return nil
	}
	a.busy = true
	defer func() { a.busy = false }()
	return fn()
}

// Run starts the interactive session: an initial login prompt followed by
// the command loop. It blocks until the user exits or stdin is closed.
func (a *App) Run(ctx context.Context) {
	printlnFn("Pet diary CLI (type 'help' for commands)")

	_ = a.Login(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
