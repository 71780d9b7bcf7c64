package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/huddlekeeper/internal/huddle"
)

var errExit = errors.New("exit")

// repl reads commands until exit or EOF. A store locked by the idle
// watcher is unlocked before the next command runs.
func (a *App) repl(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		a.printf("\nhuddle %s (%d patients)> ", a.huddle.Date(), len(a.huddle.Patients()))
		line, err := readLine(a.reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				a.println()
			}
			return err
		}

		locked, err := a.isLocked(ctx)
		if err != nil {
			return err
		}
		if locked {
			a.println("Session is locked.")
			if err := a.resume(ctx); err != nil {
				return err
			}
		}
		a.touch()

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		err = a.dispatch(ctx, strings.ToLower(fields[0]), fields[1:])
		switch {
		case err == nil:
		case errors.Is(err, errExit), errors.Is(err, io.EOF):
			return err
		case isWrongPasscode(err):
			a.println("Incorrect passcode.")
		default:
			a.log.Debug(ctx, "command failed", "cmd", fields[0])
			a.println("Error:", err)
		}
	}
}

func (a *App) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help", "?":
		a.help()
		return nil
	case "paste":
		return a.cmdPaste(ctx)
	case "patients":
		a.cmdPatients()
		return nil
	case "note":
		return a.cmdNote(ctx, args)
	case "charge":
		return a.cmdCharge(ctx, args)
	case "todo":
		return a.cmdTodo(ctx, args)
	case "rm":
		return a.cmdRemove(ctx, args)
	case "app":
		return a.cmdApp(ctx, args)
	case "verify":
		return a.cmdVerify(ctx, args)
	case "show":
		return a.cmdShow(args)
	case "export":
		return a.cmdExport(ctx, args)
	case "exportall":
		return a.cmdExportAll(ctx)
	case "summary":
		a.cmdSummary()
		return nil
	case "settings":
		return a.cmdSettings(ctx, args)
	case "passwd":
		return a.changePasscode(ctx)
	case "lock":
		return a.lockNow(ctx)
	case "clear":
		return a.clearAll(ctx)
	case "backup":
		return a.cmdBackup(ctx)
	case "exit", "quit":
		a.syncOnExit(ctx)
		a.println("Bye.")
		return errExit
	default:
		a.printf("Unknown command %q. Type 'help' for commands.\n", cmd)
		return nil
	}
}

func (a *App) help() {
	a.println(`Commands:
  paste                          paste today's schedule
  patients                       list today's patients
  note <category> [patient]      add a note (pmtIssues, insuranceQuestions, noAppt)
  charge [patient]               add charge codes and a passdown note
  todo [task]                    add a 24 hour to-do
  rm <category> <n>              remove item n of a category
  app <patient> <status>         Chiro 180: updated, needs-update or pending
  verify <patient> [yes|no]      insurance verification
  show [category]                counts, or the items of one category
  export <category>              export a category to its tracker
  exportall                      export every category with items
  summary                        print the e-mail summary
  settings [timeout N|email X]   show or change settings
  passwd                         change the passcode
  lock                           lock now
  clear                          delete all data
  backup                         write a plaintext JSON backup
  exit | quit                    leave`)
	a.println("\nCategories:")
	for i, c := range huddle.Categories {
		a.printf("  %d. %-20s %s\n", i+1, c, c.DisplayName())
	}
}

func usage(s string) error {
	return fmt.Errorf("usage: %s", s)
}
