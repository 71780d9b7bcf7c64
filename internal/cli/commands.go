package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/huddlekeeper/internal/export"
	"github.com/dmitrijs2005/huddlekeeper/internal/filex"
	"github.com/dmitrijs2005/huddlekeeper/internal/huddle"
)

var statusAliases = map[string]huddle.AppStatus{
	"u":            huddle.StatusUpdated,
	"updated":      huddle.StatusUpdated,
	"n":            huddle.StatusNeedsUpdate,
	"needs":        huddle.StatusNeedsUpdate,
	"needs-update": huddle.StatusNeedsUpdate,
	"p":            huddle.StatusPending,
	"pending":      huddle.StatusPending,
}

func (a *App) cmdPaste(ctx context.Context) error {
	text, err := GetMultiline(a.reader, "Paste today's schedule.", a.out)
	if err != nil {
		return err
	}

	names, err := a.huddle.LoadSchedule(ctx, text)
	if errors.Is(err, huddle.ErrNoNames) {
		a.println("No patient names found. Lines should look like: 9:00am John Smith Adjustment")
		return nil
	}
	if err != nil {
		return err
	}

	a.printf("Loaded %d patients.\n", len(names))
	a.cmdPatients()
	return nil
}

func (a *App) cmdPatients() {
	patients := a.huddle.Patients()
	if len(patients) == 0 {
		a.println("No patients loaded. Use 'paste' to load today's schedule.")
		return
	}
	for i, p := range patients {
		a.printf("%3d. %s\n", i+1, p)
	}
}

// resolvePatient accepts a roster number or a full name in any case and
// returns the roster spelling.
func resolvePatient(patients []string, s string) (string, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > len(patients) {
			return "", fmt.Errorf("%w: no patient #%d", huddle.ErrUnknownPatient, n)
		}
		return patients[n-1], nil
	}
	for _, p := range patients {
		if strings.EqualFold(p, s) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", huddle.ErrUnknownPatient, s)
}

// pickPatient resolves args as a patient, prompting when args are empty.
func (a *App) pickPatient(args []string) (string, error) {
	patients := a.huddle.Patients()
	if len(patients) == 0 {
		return "", errors.New("no patients loaded, use 'paste' first")
	}

	if len(args) > 0 {
		return resolvePatient(patients, strings.Join(args, " "))
	}

	a.cmdPatients()
	answer, err := GetSimpleText(a.reader, "Patient (number or name)", a.out)
	if err != nil {
		return "", err
	}
	return resolvePatient(patients, answer)
}

func (a *App) cmdNote(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("note <category> [patient]")
	}
	c, err := huddle.ParseCategory(args[0])
	if err != nil {
		return err
	}
	if !c.IsNoteCategory() {
		return fmt.Errorf("%s takes no notes, use one of pmtIssues, insuranceQuestions, noAppt", c.DisplayName())
	}

	patient, err := a.pickPatient(args[1:])
	if err != nil {
		return err
	}

	presets := huddle.QuickNotes[c]
	for i, n := range presets {
		a.printf("  %d. %s\n", i+1, n)
	}
	answer, err := GetSimpleText(a.reader, "Quick note number, or type a note (empty for none)", a.out)
	if err != nil {
		return err
	}
	note := answer
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(presets) {
		note = presets[n-1]
	}

	if _, err := a.huddle.AddNote(ctx, c, patient, note); err != nil {
		return err
	}
	a.printf("Added %s for %s.\n", c.Label(), patient)
	return nil
}

// parseCodes turns "1, 3, laser" into charge codes. Numbers index
// huddle.ChargeCodes; anything else must name a code.
func parseCodes(s string) ([]string, error) {
	var codes []string
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		code, err := lookupCode(tok)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(codes, code) {
			codes = append(codes, code)
		}
	}
	return codes, nil
}

func lookupCode(tok string) (string, error) {
	if n, err := strconv.Atoi(tok); err == nil && n >= 1 && n <= len(huddle.ChargeCodes) {
		return huddle.ChargeCodes[n-1], nil
	}
	for _, c := range huddle.ChargeCodes {
		if strings.EqualFold(c, tok) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown charge code %q", tok)
}

func (a *App) cmdCharge(ctx context.Context, args []string) error {
	patient, err := a.pickPatient(args)
	if err != nil {
		return err
	}

	for i, c := range huddle.ChargeCodes {
		a.printf("  %2d. %s\n", i+1, c)
	}
	answer, err := GetSimpleText(a.reader, "Codes (numbers or names, comma separated)", a.out)
	if err != nil {
		return err
	}
	codes, err := parseCodes(answer)
	if err != nil {
		return err
	}

	note, err := GetSimpleText(a.reader, "Passdown note (optional)", a.out)
	if err != nil {
		return err
	}

	if _, err := a.huddle.AddCharge(ctx, patient, codes, note); err != nil {
		return err
	}
	a.printf("Added charge for %s.\n", patient)
	return nil
}

func (a *App) cmdTodo(ctx context.Context, args []string) error {
	task := strings.Join(args, " ")
	if task == "" {
		var err error
		task, err = GetSimpleText(a.reader, "Task", a.out)
		if err != nil {
			return err
		}
	}
	if _, err := a.huddle.AddTodo(ctx, task); err != nil {
		return err
	}
	a.println("Added to-do.")
	return nil
}

// itemIDs lists the item ids of a list category in display order.
func itemIDs(d huddle.Data, c huddle.Category) ([]string, error) {
	var ids []string
	switch c {
	case huddle.PmtIssues:
		for _, it := range d.PmtIssues {
			ids = append(ids, it.ID)
		}
	case huddle.InsuranceQuestions:
		for _, it := range d.InsuranceQuestions {
			ids = append(ids, it.ID)
		}
	case huddle.NoAppt:
		for _, it := range d.NoAppt {
			ids = append(ids, it.ID)
		}
	case huddle.ChargePassdown:
		for _, it := range d.ChargePassdown {
			ids = append(ids, it.ID)
		}
	case huddle.Todo24:
		for _, it := range d.Todo24 {
			ids = append(ids, it.ID)
		}
	default:
		return nil, huddle.ErrNotListCategory
	}
	return ids, nil
}

func (a *App) cmdRemove(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("rm <category> <n>")
	}
	c, err := huddle.ParseCategory(args[0])
	if err != nil {
		return err
	}
	ids, err := itemIDs(a.huddle.Data(), c)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 1 || n > len(ids) {
		return fmt.Errorf("%w: %s #%s", huddle.ErrItemNotFound, c, args[1])
	}

	if err := a.huddle.RemoveItem(ctx, c, ids[n-1]); err != nil {
		return err
	}
	a.printf("Removed %s #%d.\n", c.Label(), n)
	return nil
}

func (a *App) cmdApp(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("app <patient> <updated|needs-update|pending>")
	}
	status, ok := statusAliases[strings.ToLower(args[len(args)-1])]
	if !ok {
		return fmt.Errorf("%w: %q", huddle.ErrInvalidStatus, args[len(args)-1])
	}
	patient, err := a.pickPatient(args[:len(args)-1])
	if err != nil {
		return err
	}

	if err := a.huddle.SetAppStatus(ctx, patient, status); err != nil {
		return err
	}
	a.printf("%s: %s\n", patient, status)
	return nil
}

func (a *App) cmdVerify(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("verify <patient> [yes|no]")
	}
	verified := true
	switch strings.ToLower(args[len(args)-1]) {
	case "yes", "y":
		args = args[:len(args)-1]
	case "no", "n":
		verified = false
		args = args[:len(args)-1]
	}
	if len(args) == 0 {
		return usage("verify <patient> [yes|no]")
	}
	patient, err := a.pickPatient(args)
	if err != nil {
		return err
	}

	if err := a.huddle.SetInsuranceVerified(ctx, patient, verified); err != nil {
		return err
	}
	if verified {
		a.printf("%s: verified\n", patient)
	} else {
		a.printf("%s: needs verification\n", patient)
	}
	return nil
}

func (a *App) cmdShow(args []string) error {
	if len(args) == 0 {
		counts := a.huddle.Counts()
		for i, c := range huddle.Categories {
			a.printf("  %d. %-24s %d\n", i+1, c.DisplayName(), counts[c])
		}
		return nil
	}

	c, err := huddle.ParseCategory(args[0])
	if err != nil {
		return err
	}
	d := a.huddle.Data()
	a.println(c.DisplayName() + ":")

	switch c {
	case huddle.PmtIssues, huddle.InsuranceQuestions, huddle.NoAppt:
		notes := map[huddle.Category][]huddle.NoteItem{
			huddle.PmtIssues:          d.PmtIssues,
			huddle.InsuranceQuestions: d.InsuranceQuestions,
			huddle.NoAppt:             d.NoAppt,
		}[c]
		for i, it := range notes {
			a.printf("  %d. %s: %s\n", i+1, it.PatientName, noteOrDash(it.Note))
		}
		if len(notes) == 0 {
			a.println("  (none)")
		}
	case huddle.ChargePassdown:
		for i, it := range d.ChargePassdown {
			a.printf("  %d. %s: %s - %s\n", i+1, it.PatientName, strings.Join(it.Codes, ", "), noteOrDash(it.Note))
		}
		if len(d.ChargePassdown) == 0 {
			a.println("  (none)")
		}
	case huddle.Todo24:
		for i, it := range d.Todo24 {
			a.printf("  %d. %s\n", i+1, it.Task)
		}
		if len(d.Todo24) == 0 {
			a.println("  (none)")
		}
	case huddle.Chiro180:
		for _, p := range a.huddle.Patients() {
			st, ok := d.Chiro180[p]
			if !ok {
				st = huddle.StatusPending
			}
			a.printf("  %-24s %s\n", p, st)
		}
	case huddle.InsuranceVerify:
		for _, p := range a.huddle.Patients() {
			mark := " "
			if d.InsuranceVerify[p] {
				mark = "x"
			}
			a.printf("  [%s] %s\n", mark, p)
		}
	}
	return nil
}

func noteOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (a *App) printResult(res *export.Result) {
	a.printf("%s: exported %d items, %d total, saved to %s\n",
		res.Category.DisplayName(), res.NewCount, res.TotalCount, res.Path)
	switch {
	case res.Uploaded:
		a.println("  uploaded to cloud drive")
	case res.UploadErr != nil:
		a.println("  upload failed:", res.UploadErr)
	}
}

func (a *App) cmdExport(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("export <category>")
	}
	c, err := huddle.ParseCategory(args[0])
	if err != nil {
		return err
	}

	items, err := a.huddle.ExportItems(c)
	if err != nil {
		return err
	}
	res, err := a.exporter.ExportSection(ctx, c, items)
	if errors.Is(err, export.ErrNothingToExport) {
		a.println("No items to export.")
		return nil
	}
	if err != nil {
		return err
	}
	a.printResult(res)
	return nil
}

func (a *App) cmdExportAll(ctx context.Context) error {
	results, err := a.exporter.ExportAll(ctx)
	for _, res := range results {
		a.printResult(res)
	}
	if err != nil {
		return err
	}
	if len(results) == 0 {
		a.println("No items to export.")
	}
	return nil
}

// syncOnExit pushes every non-empty category to the cloud drive. Failures
// are reported and do not block leaving.
func (a *App) syncOnExit(ctx context.Context) {
	if !a.exporter.HasUploader() {
		return
	}
	for _, c := range huddle.Categories {
		res, err := a.exporter.Sync(ctx, c)
		if err != nil {
			a.log.Error(ctx, "sync failed", "category", string(c), "error", err)
			a.printf("Sync of %s failed: %v\n", c.DisplayName(), err)
			continue
		}
		if res != nil {
			a.printResult(res)
		}
	}
}

func (a *App) cmdSummary() {
	summary := a.huddle.Summary()
	a.println(summary)

	if r := a.huddle.Settings().EmailRecipient; r != "" {
		a.println()
		a.println("Open in mail client:")
		a.println(huddle.MailtoURL(r, summary, a.now()))
	}
}

func (a *App) cmdSettings(ctx context.Context, args []string) error {
	if len(args) == 0 {
		st := a.huddle.Settings()
		a.printf("Lock timeout:    %d minutes\n", st.LockTimeout)
		a.printf("Email recipient: %s\n", noteOrDash(st.EmailRecipient))
		return nil
	}

	const u = "settings [timeout <minutes>|email <address>]"
	switch strings.ToLower(args[0]) {
	case "timeout":
		if len(args) != 2 {
			return usage(u)
		}
		minutes, err := strconv.Atoi(args[1])
		if err != nil {
			return huddle.ErrInvalidTimeout
		}
		if err := a.huddle.UpdateSettings(ctx, func(s *huddle.Settings) { s.LockTimeout = minutes }); err != nil {
			return err
		}
	case "email":
		addr := strings.Join(args[1:], " ")
		if err := a.huddle.UpdateSettings(ctx, func(s *huddle.Settings) { s.EmailRecipient = addr }); err != nil {
			return err
		}
	default:
		return usage(u)
	}

	a.setLockAfter(a.huddle.Settings().LockAfter())
	a.println("Settings saved.")
	return nil
}

// cmdBackup writes every record decrypted to a JSON file in the export
// directory.
func (a *App) cmdBackup(ctx context.Context) error {
	b, err := a.huddle.Backup(ctx)
	if err != nil {
		return err
	}
	body, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}

	dir, err := filex.EnsureDir(a.cfg.ExportDir)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "huddle-backup-"+a.huddle.Date()+".json")
	if err := filex.WriteFileAtomic(path, body, 0o600); err != nil {
		return err
	}

	a.log.Info(ctx, "backup written")
	a.println("Backup written to", path)
	a.println("Warning: the backup is not encrypted and contains patient data.")
	return nil
}
