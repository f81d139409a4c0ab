package main

import (
	"log"
	"time"

	"github.com/lookout-hud/lookout/internal/store"
)

// logPresenter stands in for the rendering layer when running headless: it
// logs each show signal instead of animating it.
type logPresenter struct{}

func (logPresenter) ShowNotification(entry *store.Entry, displayFor time.Duration, autoExpand bool) {
	log.Printf("show [%s] %s: %q (for %s, expand=%v)",
		entry.AppBundleID, entry.Sender, entry.Content, displayFor.Round(time.Second), autoExpand)
}
