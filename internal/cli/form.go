package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fine2025/petdiary/internal/imaging"
	"github.com/fine2025/petdiary/internal/models"
	"github.com/fine2025/petdiary/internal/repository"
	"github.com/fine2025/petdiary/internal/storage"
)

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

// sleepSuggestion is the stock answer offered for the sleep field on a fresh
// form; most days the answer is the same.
const sleepSuggestion = "ずっと寝てる"

// Open walks the user through the form for one date. When a record already
// exists the form starts in edit mode with the saved values as defaults;
// otherwise it starts fresh. Pressing Enter on every prompt keeps a record
// unchanged (or accepts the stock defaults for a new one).
func (a *App) Open(ctx context.Context, date string) error {
	return a.runExclusive(func() error {
		if !models.ValidDate(date) {
			fmt.Fprintf(a.out, "%q is not a date, use YYYY-MM-DD\n", date)
			return repository.ErrInvalidDate
		}

		var base models.Record
		existing, found := a.repo.FindByDate(date)
		if found {
			base = *existing
			fmt.Fprintf(a.out, "Editing the record for %s\n", date)
		} else {
			base.Date = date
			models.FillDefaults(&base)
			base.Attributes.SleepTime = sleepSuggestion
			fmt.Fprintf(a.out, "New record for %s\n", date)
		}

		attrs, err := a.promptAttributes(base.Attributes)
		if err != nil {
			return err
		}

		photoBytes, err := a.promptPhoto(base.Photo != nil)
		if err != nil {
			return err
		}

		params := repository.SubmitParams{
			Date:       date,
			Attributes: attrs,
			PhotoBytes: photoBytes,
		}
		if found {
			params.ExistingID = base.ID
		}
		if id, ok := a.gate.CurrentIdentity(); ok {
			params.Owner = id.Email
		}

		saved, err := a.repo.Submit(ctx, params)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicateDate):
				fmt.Fprintf(a.out, "A record for %s already exists, use 'open %s' to edit it\n", date, date)
			case errors.Is(err, imaging.ErrDecode):
				fmt.Fprintln(a.out, "Could not read that image file, the record was not saved")
			default:
				reportStoreError(a, err, "Could not save the record")
			}
			return err
		}

		if len(photoBytes) > 0 && saved.Photo.Inline() {
			fmt.Fprintf(a.out, "Photo attached (%d bytes after compression)\n", len(saved.Photo.Data))
		}
		fmt.Fprintf(a.out, "Saved %s\n", saved.Date)

		// Re-render from the reloaded cache so the user sees what the store
		// actually holds now.
		if rec, ok := a.repo.FindByDate(date); ok {
			a.renderRecord(*rec)
		}
		return nil
	})
}

// renderRecord prints the full detail view of one record.
func (a *App) renderRecord(r models.Record) {
	at := r.Attributes
	fmt.Fprintf(a.out, "--- %s ---\n", r.Date)
	fmt.Fprintf(a.out, "Weather:   %s\n", at.Weather)
	fmt.Fprintf(a.out, "Poop:      %s (%s)\n", at.PoopCount, at.PoopQuality)
	fmt.Fprintf(a.out, "Pee:       %s (%s)\n", at.PeeCount, at.PeeColor)
	fmt.Fprintf(a.out, "Appetite:  morning %s / noon %s / night %s\n",
		at.AppetiteMorning, at.AppetiteNoon, at.AppetiteNight)
	fmt.Fprintf(a.out, "Sleep:     %s\n", at.SleepTime)
	fmt.Fprintf(a.out, "Walk:      %s\n", at.Walk)
	if at.OtherNotes != "" {
		fmt.Fprintf(a.out, "Notes:     %s\n", at.OtherNotes)
	}
	switch {
	case r.Photo.Inline():
		fmt.Fprintf(a.out, "Photo:     attached (%d bytes)\n", len(r.Photo.Data))
	case r.Photo != nil && r.Photo.URL != "":
		fmt.Fprintf(a.out, "Photo:     %s\n", r.Photo.URL)
	}
}

// promptAttributes walks every observation field, offering the current value
// as the default.
func (a *App) promptAttributes(cur models.Attributes) (models.Attributes, error) {
	fields := []struct {
		prompt string
		value  *string
	}{
		{"Weather", &cur.Weather},
		{"Poop count", &cur.PoopCount},
		{"Poop quality", &cur.PoopQuality},
		{"Pee count", &cur.PeeCount},
		{"Pee color", &cur.PeeColor},
		{"Appetite (morning)", &cur.AppetiteMorning},
		{"Appetite (noon)", &cur.AppetiteNoon},
		{"Appetite (night)", &cur.AppetiteNight},
		{"Sleep", &cur.SleepTime},
		{"Walk", &cur.Walk},
		{"Other notes", &cur.OtherNotes},
	}

	for _, f := range fields {
		text, err := getWithDefault(a.reader, f.prompt, *f.value, a.out)
		if err != nil {
			return models.Attributes{}, err
		}
		*f.value = text
	}
	return cur, nil
}

// promptPhoto asks for an image file path. Empty input keeps the existing
// photo (or leaves a new record without one); any other input is read from
// disk and handed to the compression pipeline as-is.
func (a *App) promptPhoto(hasPhoto bool) ([]byte, error) {
	prompt := "Photo file path (Enter to skip)"
	if hasPhoto {
		prompt = "Photo file path (Enter to keep the current photo)"
	}

	path, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return nil, err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}

	data, err := readFile(path)
	if err != nil {
		fmt.Fprintf(a.out, "Could not read %s: %s\n", path, err.Error())
		return nil, err
	}
	return data, nil
}

// Delete removes the record for a date after an explicit confirmation.
func (a *App) Delete(ctx context.Context, date string) error {
	return a.runExclusive(func() error {
		rec, found := a.repo.FindByDate(date)
		if !found {
			fmt.Fprintf(a.out, "No record for %s\n", date)
			return nil
		}

		answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete the record for %s? (y/N)", date), a.out)
		if err != nil {
			return err
		}
		if !strings.EqualFold(answer, "y") {
			fmt.Fprintln(a.out, "Cancelled")
			return nil
		}

		if err := a.repo.DeleteRecord(ctx, rec.ID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Already gone, and the cache refresh dropped the stale
				// entry. Not a failure from the user's point of view.
				fmt.Fprintf(a.out, "The record for %s was already gone\n", date)
				return nil
			}
			reportStoreError(a, err, "Could not delete the record")
			return err
		}
		fmt.Fprintf(a.out, "Deleted %s\n", date)
		return nil
	})
}
