package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/huddlekeeper/internal/common"
	"github.com/dmitrijs2005/huddlekeeper/internal/securestore"
)

var getPasscode = GetPasscode

func (a *App) authenticate(ctx context.Context) error {
	configured, err := a.vault.IsConfigured(ctx)
	if err != nil {
		return fmt.Errorf("check passcode: %w", err)
	}
	if !configured {
		return a.setup(ctx)
	}
	return a.unlock(ctx)
}

// newPasscode asks for a passcode twice until both entries match and the
// format is valid. The caller wipes the result.
func (a *App) newPasscode(prompt string) ([]byte, error) {
	for {
		first, err := getPasscode(a.reader, prompt, a.out)
		if err != nil {
			return nil, err
		}
		if err := securestore.ValidatePasscode(first); err != nil {
			common.WipeByteArray(first)
			a.println("Passcode must be exactly 4 digits.")
			continue
		}

		second, err := getPasscode(a.reader, "Confirm passcode", a.out)
		if err != nil {
			common.WipeByteArray(first)
			return nil, err
		}
		match := bytes.Equal(first, second)
		common.WipeByteArray(second)
		if !match {
			common.WipeByteArray(first)
			a.println("Passcodes do not match. Start again.")
			continue
		}
		return first, nil
	}
}

func (a *App) setup(ctx context.Context) error {
	a.println("First run: create a 4-digit passcode to protect patient data.")

	passcode, err := a.newPasscode("Create passcode")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passcode)

	if err := a.vault.Setup(ctx, passcode); err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	a.println("Passcode set.")
	return nil
}

// unlock asks for the passcode until it verifies.
func (a *App) unlock(ctx context.Context) error {
	for {
		passcode, err := getPasscode(a.reader, "Enter passcode", a.out)
		if err != nil {
			return err
		}
		ok, err := a.vault.Verify(ctx, passcode)
		common.WipeByteArray(passcode)
		if err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		if ok {
			a.touch()
			return nil
		}
		a.println("Incorrect passcode. Try again.")
	}
}

func (a *App) changePasscode(ctx context.Context) error {
	current, err := getPasscode(a.reader, "Current passcode", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	next, err := a.newPasscode("New passcode")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)

	ok, err := a.vault.ChangePasscode(ctx, current, next)
	if err != nil {
		return fmt.Errorf("change passcode: %w", err)
	}
	if !ok {
		return securestore.ErrVerificationFailed
	}
	a.println("Passcode changed.")
	return nil
}

func (a *App) lockNow(ctx context.Context) error {
	a.vault.Lock()
	a.log.Info(ctx, "session locked")
	a.println("Locked.")
	return a.resume(ctx)
}

// resume unlocks a locked store and reloads today's huddle, which also
// picks up a date change while the session was locked.
func (a *App) resume(ctx context.Context) error {
	if err := a.unlock(ctx); err != nil {
		return err
	}
	return a.openHuddle(ctx)
}

func (a *App) isLocked(ctx context.Context) (bool, error) {
	st, err := a.vault.State(ctx)
	if err != nil {
		return false, err
	}
	return st != securestore.StateUnlocked, nil
}

func (a *App) clearAll(ctx context.Context) error {
	ok, err := Confirm(a.reader, "This permanently deletes all huddle data, history and the passcode. Continue?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.println("Cancelled.")
		return nil
	}

	if err := a.vault.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	a.println("All data cleared.")

	if err := a.setup(ctx); err != nil {
		return err
	}
	return a.openHuddle(ctx)
}

func isWrongPasscode(err error) bool {
	return errors.Is(err, securestore.ErrVerificationFailed)
}
