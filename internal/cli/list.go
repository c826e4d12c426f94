package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fine2025/petdiary/internal/models"
	"github.com/fine2025/petdiary/internal/repository"
	"github.com/fine2025/petdiary/internal/storage"
)

// List prints the cached records, newest date first.
func (a *App) List(ctx context.Context) error {
	return a.runExclusive(func() error {
		records := a.repo.Records()
		if len(records) == 0 {
			fmt.Fprintln(a.out, "The diary is empty")
			return nil
		}
		for _, r := range records {
			fmt.Fprintln(a.out, formatLine(r))
		}
		return nil
	})
}

// Reload refetches everything from the store, replacing the cache.
func (a *App) Reload(ctx context.Context) error {
	return a.runExclusive(func() error {
		if err := a.repo.LoadAll(ctx); err != nil {
			reportStoreError(a, err, "Could not load the diary")
			return err
		}
		fmt.Fprintf(a.out, "Loaded %d records\n", len(a.repo.Records()))
		return nil
	})
}

// formatLine renders one record as a list row: date, photo marker, weather
// headline, elimination summary, sleep, walk, and notes.
func formatLine(r models.Record) string {
	marker := " "
	if r.Photo != nil {
		marker = "*"
	}
	a := r.Attributes
	summary := []string{
		a.Weather,
		fmt.Sprintf("poop %s (%s)", a.PoopCount, a.PoopQuality),
		fmt.Sprintf("pee %s (%s)", a.PeeCount, a.PeeColor),
		"sleep: " + a.SleepTime,
		"walk: " + a.Walk,
	}
	if a.OtherNotes != "" {
		summary = append(summary, a.OtherNotes)
	}
	return fmt.Sprintf("%s %s  %s", r.Date, marker, strings.Join(summary, ", "))
}

// reportStoreError prints a user-facing message for a failed store call,
// keeping the wording distinct per cause.
func reportStoreError(a *App, err error, prefix string) {
	switch {
	case errors.Is(err, storage.ErrUnavailable):
		fmt.Fprintf(a.out, "%s: the store is unreachable, try again later\n", prefix)
	case errors.Is(err, storage.ErrCapacityExceeded):
		fmt.Fprintf(a.out, "%s: the store is full, remove an old photo or record first\n", prefix)
	case errors.Is(err, repository.ErrNotReady):
		fmt.Fprintf(a.out, "%s: the diary is not loaded, run 'reload' first\n", prefix)
	default:
		fmt.Fprintf(a.out, "%s: %s\n", prefix, err.Error())
	}
}
