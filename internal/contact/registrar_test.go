package contact

import (
	"context"
	"errors"
	"strings"
	"testing"

	"agencyhub_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeContactStore struct {
	contacts []Contact

	findErr   error
	createErr error
	mergeErr  error

	mergeCalls  int
	mergePhones []string
	mergeEmails []string
}

func (s *fakeContactStore) FindByName(ctx context.Context, agencyID uuid.UUID, firstName, lastName string) (Contact, bool, error) {
	if s.findErr != nil {
		return Contact{}, false, s.findErr
	}
	for _, c := range s.contacts {
		if c.AgencyID == agencyID &&
			strings.EqualFold(c.FirstName, firstName) &&
			strings.EqualFold(c.LastName, lastName) {
			return c, true, nil
		}
	}
	return Contact{}, false, nil
}

func (s *fakeContactStore) Create(ctx context.Context, params CreateParams) (Contact, error) {
	if s.createErr != nil {
		return Contact{}, s.createErr
	}
	c := Contact{
		ID:             uuid.New(),
		AgencyID:       params.AgencyID,
		FirstName:      params.FirstName,
		LastName:       params.LastName,
		PhoneNumbers:   params.PhoneNumbers,
		EmailAddresses: params.EmailAddresses,
	}
	s.contacts = append(s.contacts, c)
	return c, nil
}

func (s *fakeContactStore) MergeChannels(ctx context.Context, id uuid.UUID, phones, emails []string) error {
	if s.mergeErr != nil {
		return s.mergeErr
	}
	s.mergeCalls++
	s.mergePhones = phones
	s.mergeEmails = emails
	return nil
}

type fakeLinker struct {
	linked  map[uuid.UUID]uuid.UUID
	linkErr error
}

func newFakeLinker() *fakeLinker {
	return &fakeLinker{linked: make(map[uuid.UUID]uuid.UUID)}
}

func (l *fakeLinker) LinkContact(ctx context.Context, householdID, contactID uuid.UUID) (bool, error) {
	if l.linkErr != nil {
		return false, l.linkErr
	}
	if _, ok := l.linked[householdID]; ok {
		return false, nil
	}
	l.linked[householdID] = contactID
	return true, nil
}

func TestRegisterCreatesAndLinksNewContact(t *testing.T) {
	store := &fakeContactStore{}
	linker := newFakeLinker()
	reg := NewRegistrar(store, linker, logger.New("test"))

	agencyID := uuid.New()
	householdID := uuid.New()

	contactID, linked := reg.Register(context.Background(), agencyID, householdID, Info{
		FirstName: "John",
		LastName:  "Smith",
		Phones:    []string{"(212) 555-0100"},
		Emails:    []string{"John@Example.com"},
	})
	if !linked {
		t.Fatalf("expected household to be linked")
	}
	if contactID == uuid.Nil {
		t.Fatalf("expected a contact id")
	}
	if linker.linked[householdID] != contactID {
		t.Fatalf("expected link to %s, got %s", contactID, linker.linked[householdID])
	}

	if len(store.contacts) != 1 {
		t.Fatalf("expected 1 created contact, got %d", len(store.contacts))
	}
	created := store.contacts[0]
	if len(created.PhoneNumbers) != 1 || created.PhoneNumbers[0] != "+12125550100" {
		t.Fatalf("expected normalized phone +12125550100, got %v", created.PhoneNumbers)
	}
	if len(created.EmailAddresses) != 1 || created.EmailAddresses[0] != "john@example.com" {
		t.Fatalf("expected lowercased email, got %v", created.EmailAddresses)
	}
}

func TestRegisterReusesExistingContactAndMergesChannels(t *testing.T) {
	agencyID := uuid.New()
	existing := Contact{ID: uuid.New(), AgencyID: agencyID, FirstName: "John", LastName: "Smith"}
	store := &fakeContactStore{contacts: []Contact{existing}}
	linker := newFakeLinker()
	reg := NewRegistrar(store, linker, logger.New("test"))

	contactID, linked := reg.Register(context.Background(), agencyID, uuid.New(), Info{
		FirstName: "JOHN",
		LastName:  "smith",
		Emails:    []string{"john@example.com"},
	})
	if !linked {
		t.Fatalf("expected household to be linked")
	}
	if contactID != existing.ID {
		t.Fatalf("expected existing contact %s, got %s", existing.ID, contactID)
	}
	if len(store.contacts) != 1 {
		t.Fatalf("expected no new contact, got %d total", len(store.contacts))
	}
	if store.mergeCalls != 1 {
		t.Fatalf("expected one channel merge, got %d", store.mergeCalls)
	}
}

func TestRegisterNeverOverwritesExistingLink(t *testing.T) {
	agencyID := uuid.New()
	householdID := uuid.New()
	firstContact := uuid.New()

	store := &fakeContactStore{}
	linker := newFakeLinker()
	linker.linked[householdID] = firstContact
	reg := NewRegistrar(store, linker, logger.New("test"))

	contactID, linked := reg.Register(context.Background(), agencyID, householdID, Info{
		FirstName: "Jane",
		LastName:  "Doe",
	})
	if linked {
		t.Fatalf("expected no new link on an already linked household")
	}
	if contactID == uuid.Nil {
		t.Fatalf("expected the contact id even when the link was kept")
	}
	if linker.linked[householdID] != firstContact {
		t.Fatalf("expected original link %s to survive, got %s", firstContact, linker.linked[householdID])
	}
}

func TestRegisterSkipsMissingLastName(t *testing.T) {
	store := &fakeContactStore{}
	linker := newFakeLinker()
	reg := NewRegistrar(store, linker, logger.New("test"))

	contactID, linked := reg.Register(context.Background(), uuid.New(), uuid.New(), Info{
		FirstName: "John",
		LastName:  "   ",
	})
	if linked || contactID != uuid.Nil {
		t.Fatalf("expected registration to be skipped, got id=%s linked=%v", contactID, linked)
	}
	if len(store.contacts) != 0 {
		t.Fatalf("expected no contact to be created, got %d", len(store.contacts))
	}
}

func TestRegisterSwallowsStoreErrors(t *testing.T) {
	store := &fakeContactStore{findErr: errors.New("db down")}
	linker := newFakeLinker()
	reg := NewRegistrar(store, linker, logger.New("test"))

	contactID, linked := reg.Register(context.Background(), uuid.New(), uuid.New(), Info{
		LastName: "Smith",
	})
	if linked || contactID != uuid.Nil {
		t.Fatalf("expected lookup failure to report not linked, got id=%s linked=%v", contactID, linked)
	}
}

func TestRegisterMergeFailureStillLinks(t *testing.T) {
	agencyID := uuid.New()
	existing := Contact{ID: uuid.New(), AgencyID: agencyID, FirstName: "John", LastName: "Smith"}
	store := &fakeContactStore{contacts: []Contact{existing}, mergeErr: errors.New("db down")}
	linker := newFakeLinker()
	reg := NewRegistrar(store, linker, logger.New("test"))

	contactID, linked := reg.Register(context.Background(), agencyID, uuid.New(), Info{
		FirstName: "John",
		LastName:  "Smith",
		Phones:    []string{"212-555-0100"},
	})
	if !linked {
		t.Fatalf("expected link despite merge failure")
	}
	if contactID != existing.ID {
		t.Fatalf("expected existing contact %s, got %s", existing.ID, contactID)
	}
}

func TestRegisterDeduplicatesChannels(t *testing.T) {
	store := &fakeContactStore{}
	linker := newFakeLinker()
	reg := NewRegistrar(store, linker, logger.New("test"))

	_, linked := reg.Register(context.Background(), uuid.New(), uuid.New(), Info{
		LastName: "Smith",
		Phones:   []string{"(212) 555-0100", "212-555-0100", "  "},
		Emails:   []string{"a@example.com", "A@Example.com", "  "},
	})
	if !linked {
		t.Fatalf("expected household to be linked")
	}

	created := store.contacts[0]
	if len(created.PhoneNumbers) != 1 {
		t.Fatalf("expected 1 deduplicated phone, got %v", created.PhoneNumbers)
	}
	if len(created.EmailAddresses) != 1 {
		t.Fatalf("expected 1 deduplicated email, got %v", created.EmailAddresses)
	}
}
