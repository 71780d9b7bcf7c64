package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/huddlekeeper/internal/config"
	"github.com/dmitrijs2005/huddlekeeper/internal/export"
	"github.com/dmitrijs2005/huddlekeeper/internal/huddle"
	"github.com/dmitrijs2005/huddlekeeper/internal/logging"
	"github.com/dmitrijs2005/huddlekeeper/internal/securestore"
	"github.com/dmitrijs2005/huddlekeeper/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingUploader struct {
	mu    sync.Mutex
	names []string
}

func (u *recordingUploader) Upload(_ context.Context, name string, _ []byte) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.names = append(u.names, name)
	return nil
}

type testEnv struct {
	app   *App
	store *securestore.Store
	svc   huddle.Service
	out   *bytes.Buffer
	clock *clock
	dir   string
}

func newTestEnv(t *testing.T, input string, uploader export.Uploader) *testEnv {
	t.Helper()
	stubTerminal(t, false, nil, nil)
	ctx := context.Background()

	db, err := storage.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	c := &clock{t: time.Date(2026, 3, 14, 18, 0, 0, 0, time.Local)}
	dir := t.TempDir()
	cfg := &config.Config{
		DatabasePath:      ":memory:",
		ExportDir:         dir,
		IdleCheckInterval: time.Hour,
	}

	store := securestore.New(db, logging.Nop(), huddle.RecordDefaults(c.Now))
	svc := huddle.NewService(store, logging.Nop(), c.Now)
	exp := export.New(svc, dir, uploader, logging.Nop())

	out := &bytes.Buffer{}
	app := newApp(cfg, store, svc, exp, logging.Nop(), bytes.NewBufferString(input), out, c.Now)

	return &testEnv{app: app, store: store, svc: svc, out: out, clock: c, dir: dir}
}

func (e *testEnv) configure(t *testing.T) {
	t.Helper()
	require.NoError(t, e.store.Setup(context.Background(), []byte("1234")))
	e.store.Lock()
}

const schedulePaste = "paste\n2:00pm John Smith Adjustment\n  Note: called twice\n2:30 PM Mary Jane Doe New Patient Exam\n.\n"

func TestRun_FirstRunWorkflow(t *testing.T) {
	input := "1234\n9999\n1234\n1234\n" +
		schedulePaste +
		"note pmtIssues 1\n2\n" +
		"charge mary jane doe\n1, laser\nbring brace\n" +
		"todo call insurer\n" +
		"app 2 updated\n" +
		"verify John Smith\n" +
		"show pmtIssues\n" +
		"exit\n"
	env := newTestEnv(t, input, nil)

	require.NoError(t, env.app.Run(context.Background()))

	out := env.out.String()
	assert.Contains(t, out, "Passcodes do not match")
	assert.Contains(t, out, "Loaded 2 patients.")
	assert.Contains(t, out, "1. John Smith: Payment plan needed")
	assert.Contains(t, out, "Bye.")

	ok, err := env.store.Verify(context.Background(), []byte("1234"))
	require.NoError(t, err)
	assert.True(t, ok)

	d := env.svc.Data()
	require.Len(t, d.PmtIssues, 1)
	assert.Equal(t, "John Smith", d.PmtIssues[0].PatientName)
	assert.Equal(t, "Payment plan needed", d.PmtIssues[0].Note)
	require.Len(t, d.ChargePassdown, 1)
	assert.Equal(t, "Mary Jane Doe", d.ChargePassdown[0].PatientName)
	assert.Equal(t, []string{"98940", "laser"}, d.ChargePassdown[0].Codes)
	assert.Equal(t, "bring brace", d.ChargePassdown[0].Note)
	require.Len(t, d.Todo24, 1)
	assert.Equal(t, "call insurer", d.Todo24[0].Task)
	assert.Equal(t, huddle.StatusUpdated, d.Chiro180["Mary Jane Doe"])
	assert.True(t, d.InsuranceVerify["John Smith"])
}

func TestRun_SetupRejectsBadFormat(t *testing.T) {
	env := newTestEnv(t, "12a4\n1234\n1234\nexit\n", nil)
	require.NoError(t, env.app.Run(context.Background()))
	assert.Contains(t, env.out.String(), "Passcode must be exactly 4 digits.")
}

func TestRun_UnlockRetriesWrongPasscode(t *testing.T) {
	env := newTestEnv(t, "0000\n1111\n1234\nexit\n", nil)
	env.configure(t)

	require.NoError(t, env.app.Run(context.Background()))
	assert.Equal(t, 2, bytes.Count(env.out.Bytes(), []byte("Incorrect passcode. Try again.")))
}

func TestRun_EOFEndsSession(t *testing.T) {
	env := newTestEnv(t, "1234\npatients\n", nil)
	env.configure(t)

	require.NoError(t, env.app.Run(context.Background()))
	assert.Contains(t, env.out.String(), "No patients loaded.")
}

func TestRun_EOFDuringUnlock(t *testing.T) {
	env := newTestEnv(t, "", nil)
	env.configure(t)
	require.Error(t, env.app.Run(context.Background()))
}

func TestRun_LockAndResume(t *testing.T) {
	env := newTestEnv(t, "1234\n"+schedulePaste+"lock\n9999\n1234\npatients\nexit\n", nil)
	env.configure(t)

	require.NoError(t, env.app.Run(context.Background()))

	out := env.out.String()
	assert.Contains(t, out, "Locked.")
	assert.Contains(t, out, "Incorrect passcode. Try again.")
	assert.Contains(t, out, "  2. Mary Jane Doe")
}

func TestRun_UnknownCommandAndErrors(t *testing.T) {
	env := newTestEnv(t, "1234\nfrobnicate\nnote chiro180\nrm todo24 1\nsettings timeout 0\nexit\n", nil)
	env.configure(t)

	require.NoError(t, env.app.Run(context.Background()))

	out := env.out.String()
	assert.Contains(t, out, `Unknown command "frobnicate"`)
	assert.Contains(t, out, "Error: Chiro 180 Updates takes no notes")
	assert.Contains(t, out, "Error: item not found")
	assert.Contains(t, out, "Error: lock timeout must be between 1 and 120 minutes")
}

func TestRun_RemoveItem(t *testing.T) {
	env := newTestEnv(t, "1234\ntodo first\ntodo second\nrm todo24 1\nexit\n", nil)
	env.configure(t)

	require.NoError(t, env.app.Run(context.Background()))

	d := env.svc.Data()
	require.Len(t, d.Todo24, 1)
	assert.Equal(t, "second", d.Todo24[0].Task)
}

func TestRun_Settings(t *testing.T) {
	env := newTestEnv(t, "1234\nsettings timeout 10\nsettings email desk@clinic.test\nsettings\nexit\n", nil)
	env.configure(t)

	require.NoError(t, env.app.Run(context.Background()))

	st := env.svc.Settings()
	assert.Equal(t, 10, st.LockTimeout)
	assert.Equal(t, "desk@clinic.test", st.EmailRecipient)
	assert.Equal(t, int64(10*time.Minute), env.app.lockAfter.Load())
	assert.Contains(t, env.out.String(), "Lock timeout:    10 minutes")
}

func TestRun_SummaryWithMailto(t *testing.T) {
	env := newTestEnv(t, "1234\nsettings email desk@clinic.test\n"+schedulePaste+"summary\nexit\n", nil)
	env.configure(t)

	require.NoError(t, env.app.Run(context.Background()))

	out := env.out.String()
	assert.Contains(t, out, "EVENING HUDDLE SUMMARY")
	assert.Contains(t, out, "mailto:desk@clinic.test?")
}

func TestRun_Export(t *testing.T) {
	up := &recordingUploader{}
	env := newTestEnv(t, "1234\n"+schedulePaste+"note noAppt 2\n1\nexport noAppt\nexport todo24\nexit\n", up)
	env.configure(t)

	require.NoError(t, env.app.Run(context.Background()))

	out := env.out.String()
	assert.Contains(t, out, "No Appt: exported 1 items, 1 total")
	assert.Contains(t, out, "uploaded to cloud drive")
	assert.Contains(t, out, "No items to export.")

	_, err := os.Stat(filepath.Join(env.dir, export.TrackerFile(huddle.NoAppt)))
	require.NoError(t, err)

	// exit syncs the non-empty categories again
	assert.Equal(t, []string{export.TrackerFile(huddle.NoAppt), export.TrackerFile(huddle.NoAppt)}, up.names)
}

func TestRun_ExportAllEmpty(t *testing.T) {
	env := newTestEnv(t, "1234\nexportall\nexit\n", nil)
	env.configure(t)

	require.NoError(t, env.app.Run(context.Background()))
	assert.Contains(t, env.out.String(), "No items to export.")
}

func TestRun_Backup(t *testing.T) {
	env := newTestEnv(t, "1234\n"+schedulePaste+"backup\nexit\n", nil)
	env.configure(t)

	require.NoError(t, env.app.Run(context.Background()))

	raw, err := os.ReadFile(filepath.Join(env.dir, "huddle-backup-2026-03-14.json"))
	require.NoError(t, err)

	var b huddle.Backup
	require.NoError(t, json.Unmarshal(raw, &b))
	assert.Equal(t, []string{"John Smith", "Mary Jane Doe"}, b.Patients)
	assert.Equal(t, "2026-03-14", b.HuddleData.Date)
	assert.Contains(t, env.out.String(), "not encrypted")
}

func TestRun_ChangePasscode(t *testing.T) {
	env := newTestEnv(t, "1234\npasswd\n0000\n4321\n4321\npasswd\n1234\n4321\n4321\nexit\n", nil)
	env.configure(t)

	require.NoError(t, env.app.Run(context.Background()))

	out := env.out.String()
	assert.Contains(t, out, "Incorrect passcode.")
	assert.Contains(t, out, "Passcode changed.")

	env.store.Lock()
	ok, err := env.store.Verify(context.Background(), []byte("4321"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRun_ClearStartsOver(t *testing.T) {
	env := newTestEnv(t, "1234\ntodo keep\nclear\nno\nclear\nYES\n5678\n5678\nexit\n", nil)
	env.configure(t)

	require.NoError(t, env.app.Run(context.Background()))

	out := env.out.String()
	assert.Contains(t, out, "Cancelled.")
	assert.Contains(t, out, "All data cleared.")
	assert.Empty(t, env.svc.Data().Todo24)

	env.store.Lock()
	ok, err := env.store.Verify(context.Background(), []byte("5678"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResolvePatient(t *testing.T) {
	patients := []string{"John Smith", "Mary Jane Doe"}
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1", "John Smith", false},
		{"2", "Mary Jane Doe", false},
		{"mary jane doe", "Mary Jane Doe", false},
		{" John Smith ", "John Smith", false},
		{"3", "", true},
		{"0", "", true},
		{"Bob", "", true},
	}
	for _, tt := range tests {
		got, err := resolvePatient(patients, tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, huddle.ErrUnknownPatient, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseCodes(t *testing.T) {
	got, err := parseCodes("1, LASER,,1, dakota traction")
	require.NoError(t, err)
	assert.Equal(t, []string{"98940", "laser", "dakota traction"}, got)

	got, err = parseCodes("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = parseCodes("acupuncture")
	require.Error(t, err)
}

func TestNewUploader(t *testing.T) {
	ctx := context.Background()

	u, err := newUploader(ctx, &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = newUploader(ctx, &config.Config{UploadURL: "https://dav.clinic.test/huddle"})
	require.NoError(t, err)
	assert.IsType(t, &export.HTTPUploader{}, u)

	u, err = newUploader(ctx, &config.Config{
		S3Bucket:    "huddle",
		S3Region:    "us-east-1",
		S3AccessKey: "AK",
		S3SecretKey: "SK",
		UploadURL:   "https://dav.clinic.test/huddle",
	})
	require.NoError(t, err)
	assert.IsType(t, &export.S3Uploader{}, u)
}
