package huddle

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/huddlekeeper/internal/common"
	"github.com/dmitrijs2005/huddlekeeper/internal/logging"
	"github.com/dmitrijs2005/huddlekeeper/internal/schedule"
	"github.com/dmitrijs2005/huddlekeeper/internal/securestore"
	"github.com/google/uuid"
)

// Store is the part of the secure store the workflow needs.
type Store interface {
	Save(ctx context.Context, name string, v any) error
	Load(ctx context.Context, name string, v any) (bool, error)
}

type Service interface {
	Open(ctx context.Context) error

	Date() string
	Patients() []string
	Data() Data
	Settings() Settings

	LoadSchedule(ctx context.Context, text string) ([]string, error)
	AddNote(ctx context.Context, c Category, patient, note string) (*NoteItem, error)
	AddCharge(ctx context.Context, patient string, codes []string, note string) (*ChargeItem, error)
	AddTodo(ctx context.Context, task string) (*TodoItem, error)
	RemoveItem(ctx context.Context, c Category, id string) error
	SetAppStatus(ctx context.Context, patient string, status AppStatus) error
	SetInsuranceVerified(ctx context.Context, patient string, verified bool) error
	UpdateSettings(ctx context.Context, fn func(*Settings)) error

	ExportItems(c Category) ([]TrackedItem, error)
	Summary() string
	Counts() map[Category]int

	TrackerHistory(ctx context.Context, c Category) ([]TrackedItem, error)
	AddToTrackerHistory(ctx context.Context, c Category, items []TrackedItem) (int, error)
	ClearTrackerHistory(ctx context.Context, c Category) error

	Backup(ctx context.Context) (*Backup, error)
}

type service struct {
	store Store
	log   logging.Logger
	now   func() time.Time
	newID func() string

	data     *Data
	patients []string
	settings Settings
}

// NewService returns a workflow service over store. A nil now means
// time.Now.
func NewService(store Store, log logging.Logger, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{
		store: store,
		log:   log.With("component", "huddle"),
		now:   now,
		newID: uuid.NewString,
	}
}

// Open loads the daily record, the roster and the settings. Missing or
// unreadable records are replaced with defaults. When the stored record
// belongs to another day a fresh, empty day is started and persisted.
func (s *service) Open(ctx context.Context) error {
	var d Data
	found, err := s.load(ctx, common.KeyHuddleData, &d)
	if err != nil {
		return err
	}

	var patients []string
	if _, err := s.load(ctx, common.KeyPatients, &patients); err != nil {
		return err
	}

	st := DefaultSettings()
	if _, err := s.load(ctx, common.KeySettings, &st); err != nil {
		return err
	}
	if st.LockTimeout <= 0 {
		st.LockTimeout = DefaultLockTimeout
	}
	s.settings = st

	date := today(s.now)
	if !found || d.Date != date {
		s.log.Info(ctx, "starting new huddle day", "date", date, "previous", d.Date)
		fresh := NewData(date)
		if err := s.save(ctx, common.KeyHuddleData, fresh); err != nil {
			return err
		}
		s.data = fresh
		if err := s.save(ctx, common.KeyPatients, []string{}); err != nil {
			return err
		}
		s.patients = []string{}
		return nil
	}

	d.normalize()
	s.data = &d
	if patients == nil {
		patients = []string{}
	}
	s.patients = patients
	return nil
}

// load treats an undecryptable record like a missing one. The store has
// already logged the failure.
func (s *service) load(ctx context.Context, key string, v any) (bool, error) {
	found, err := s.store.Load(ctx, key, v)
	if errors.Is(err, securestore.ErrDecryptionFailed) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return found, nil
}

func (s *service) save(ctx context.Context, key string, v any) error {
	if err := s.store.Save(ctx, key, v); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// update applies fn to a copy of the daily record. The copy replaces the
// in-memory record only after it has been persisted.
func (s *service) update(ctx context.Context, fn func(d *Data) error) error {
	next := s.data.clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.save(ctx, common.KeyHuddleData, next); err != nil {
		return err
	}
	s.data = next
	return nil
}

func (s *service) opened() error {
	if s.data == nil {
		return ErrNotOpen
	}
	return nil
}

func (s *service) Date() string {
	if s.data == nil {
		return ""
	}
	return s.data.Date
}

func (s *service) Patients() []string {
	return slices.Clone(s.patients)
}

// Data returns a copy of the current daily record.
func (s *service) Data() Data {
	if s.data == nil {
		return *NewData("")
	}
	return *s.data.clone()
}

func (s *service) Settings() Settings {
	return s.settings
}

// LoadSchedule replaces today's roster with the names parsed from text.
func (s *service) LoadSchedule(ctx context.Context, text string) ([]string, error) {
	if err := s.opened(); err != nil {
		return nil, err
	}

	names := schedule.Parse(text)
	if len(names) == 0 {
		return nil, ErrNoNames
	}

	if err := s.save(ctx, common.KeyPatients, names); err != nil {
		return nil, err
	}
	s.patients = names
	s.log.Info(ctx, "schedule loaded", "patients", len(names))
	return slices.Clone(names), nil
}

func (s *service) onRoster(patient string) error {
	if !slices.Contains(s.patients, patient) {
		return fmt.Errorf("%w: %q", ErrUnknownPatient, patient)
	}
	return nil
}

func (s *service) AddNote(ctx context.Context, c Category, patient, note string) (*NoteItem, error) {
	if err := s.opened(); err != nil {
		return nil, err
	}
	if !c.IsNoteCategory() {
		return nil, fmt.Errorf("%w: %s does not take notes", ErrUnknownCategory, c)
	}
	if err := s.onRoster(patient); err != nil {
		return nil, err
	}

	now := s.now()
	item := NoteItem{
		ID:          s.newID(),
		PatientName: patient,
		Note:        strings.TrimSpace(note),
		Date:        s.data.Date,
		Timestamp:   now,
	}
	err := s.update(ctx, func(d *Data) error {
		list := d.notes(c)
		*list = append(*list, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AddCharge records charge codes for patient. At least one code or a
// non-empty note is required.
func (s *service) AddCharge(ctx context.Context, patient string, codes []string, note string) (*ChargeItem, error) {
	if err := s.opened(); err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)
	if len(codes) == 0 && note == "" {
		return nil, ErrEmptyCharge
	}
	if err := s.onRoster(patient); err != nil {
		return nil, err
	}

	item := ChargeItem{
		ID:          s.newID(),
		PatientName: patient,
		Codes:       slices.Clone(codes),
		Note:        note,
		Date:        s.data.Date,
		Timestamp:   s.now(),
	}
	if item.Codes == nil {
		item.Codes = []string{}
	}
	err := s.update(ctx, func(d *Data) error {
		d.ChargePassdown = append(d.ChargePassdown, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *service) AddTodo(ctx context.Context, task string) (*TodoItem, error) {
	if err := s.opened(); err != nil {
		return nil, err
	}
	task = strings.TrimSpace(task)
	if task == "" {
		return nil, ErrEmptyTask
	}

	item := TodoItem{
		ID:        s.newID(),
		Task:      task,
		Date:      s.data.Date,
		Timestamp: s.now(),
	}
	err := s.update(ctx, func(d *Data) error {
		d.Todo24 = append(d.Todo24, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *service) RemoveItem(ctx context.Context, c Category, id string) error {
	if err := s.opened(); err != nil {
		return err
	}

	if !c.IsNoteCategory() && c != ChargePassdown && c != Todo24 {
		return ErrNotListCategory
	}

	return s.update(ctx, func(d *Data) error {
		removed := false
		switch {
		case c.IsNoteCategory():
			list := d.notes(c)
			n := len(*list)
			*list = slices.DeleteFunc(*list, func(it NoteItem) bool { return it.ID == id })
			removed = len(*list) != n
		case c == ChargePassdown:
			n := len(d.ChargePassdown)
			d.ChargePassdown = slices.DeleteFunc(d.ChargePassdown, func(it ChargeItem) bool { return it.ID == id })
			removed = len(d.ChargePassdown) != n
		case c == Todo24:
			n := len(d.Todo24)
			d.Todo24 = slices.DeleteFunc(d.Todo24, func(it TodoItem) bool { return it.ID == id })
			removed = len(d.Todo24) != n
		}
		if !removed {
			return ErrItemNotFound
		}
		return nil
	})
}

func (s *service) SetAppStatus(ctx context.Context, patient string, status AppStatus) error {
	if err := s.opened(); err != nil {
		return err
	}
	if _, err := ParseAppStatus(string(status)); err != nil {
		return err
	}
	if err := s.onRoster(patient); err != nil {
		return err
	}

	return s.update(ctx, func(d *Data) error {
		d.Chiro180[patient] = status
		return nil
	})
}

func (s *service) SetInsuranceVerified(ctx context.Context, patient string, verified bool) error {
	if err := s.opened(); err != nil {
		return err
	}
	if err := s.onRoster(patient); err != nil {
		return err
	}

	return s.update(ctx, func(d *Data) error {
		d.InsuranceVerify[patient] = verified
		return nil
	})
}

// UpdateSettings applies fn to a copy of the settings and persists the
// result if it is valid.
func (s *service) UpdateSettings(ctx context.Context, fn func(*Settings)) error {
	next := s.settings
	fn(&next)
	next.EmailRecipient = strings.TrimSpace(next.EmailRecipient)
	if next.LockTimeout < 1 || next.LockTimeout > 120 {
		return ErrInvalidTimeout
	}

	if err := s.save(ctx, common.KeySettings, next); err != nil {
		return err
	}
	s.settings = next
	return nil
}

// ExportItems returns the rows of c that an export would add.
func (s *service) ExportItems(c Category) ([]TrackedItem, error) {
	if err := s.opened(); err != nil {
		return nil, err
	}
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	return exportRows(s.data, c, s.patients, s.now(), s.data.Date), nil
}

func (s *service) Summary() string {
	if s.data == nil {
		return ""
	}
	return renderSummary(s.data, s.patients, s.now())
}

func (s *service) Counts() map[Category]int {
	if s.data == nil {
		return map[Category]int{}
	}
	return counts(s.data)
}
