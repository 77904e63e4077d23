// Package locker serialises operations that rewrite profile files, such as
// adding or removing favourites.
package locker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/op/go-logging"

	"github.com/Sopor/plugin.video.retrospect/language"
	"github.com/Sopor/plugin.video.retrospect/xbmc"
)

var log = logging.MustGetLogger("locker")

var ErrLocked = errors.New("locker: another operation is in progress")

const (
	lockFile = "retrospect.lock"
	// locks older than this are left over from a crash
	staleAfter = 2 * time.Minute
)

func acquire(path string) (bool, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(f, "%d", os.Getpid())
		return true, f.Close()
	}
	if !os.IsExist(err) {
		return false, err
	}

	fi, statErr := os.Stat(path)
	if statErr != nil || time.Since(fi.ModTime()) < staleAfter {
		return false, nil
	}
	log.Warningf("Removing stale lock %s", path)
	if err := os.Remove(path); err != nil {
		return false, err
	}
	return acquire(path)
}

// WithDialog runs fn while holding the lock in dir. When the lock is held
// the user is told so and fn does not run.
func WithDialog(dir string, fn func() error) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(dir, lockFile)

	ok, err := acquire(path)
	if err != nil {
		return err
	}
	if !ok {
		log.Warning("Lock is held, not running operation")
		xbmc.Dialog(language.GetLocalizedString(language.OperationInProgress),
			language.GetLocalizedString(language.OperationInProgressMsg))
		return ErrLocked
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			log.Errorf("Cannot release lock %s: %s", path, err)
		}
	}()

	return fn()
}
