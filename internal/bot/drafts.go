package bot

import "sync"

// DraftKind identifies a conversational flow.
type DraftKind string

const (
	KindSupport DraftKind = "support"
	KindIDCard  DraftKind = "idcard"
	KindReply   DraftKind = "reply"
	KindEmail   DraftKind = "email"
	KindMedical DraftKind = "medical"
	KindFile    DraftKind = "medfile"
)

// textRoutingOrder fixes which open draft receives free-text input when a
// user has several drafts open at once. Whether different kinds should be
// mutually exclusive instead is an open product decision; until it is made,
// this order is the policy.
var textRoutingOrder = []DraftKind{KindSupport, KindIDCard, KindReply, KindEmail, KindMedical}

// Draft is one pending multi-step flow for one user. Each kind is its own
// type so a draft can only hold the fields its flow actually collects.
type Draft interface {
	Kind() DraftKind
}

// EmailDraft composes a free-form email. An empty Recipient means the next
// text input is the recipient; otherwise it is the body.
type EmailDraft struct {
	Recipient string
}

func (EmailDraft) Kind() DraftKind { return KindEmail }

// MedicalDraft files a medical request. An empty Reason means the next text
// input is the reason; otherwise it is the appointment date.
type MedicalDraft struct {
	Reason string
}

func (MedicalDraft) Kind() DraftKind { return KindMedical }

// SupportDraft waits for one message body for the support desk.
type SupportDraft struct{}

func (SupportDraft) Kind() DraftKind { return KindSupport }

// IDCardDraft waits for one message body for the ID-card office.
type IDCardDraft struct{}

func (IDCardDraft) Kind() DraftKind { return KindIDCard }

// ReplyDraft waits for the body of a reply to a selected inbox message.
type ReplyDraft struct {
	MessageID string
	ToEmail   string
}

func (ReplyDraft) Kind() DraftKind { return KindReply }

// FileDraft waits for a document or photo attachment.
type FileDraft struct{}

func (FileDraft) Kind() DraftKind { return KindFile }

// DraftStore keeps at most one draft per user per kind. All access goes
// through the mutex; handlers snapshot an entry, do their I/O, then write
// back, so no lock is held across network calls.
type DraftStore struct {
	mu     sync.Mutex
	drafts map[int64]map[DraftKind]Draft
}

// NewDraftStore creates an empty draft store
func NewDraftStore() *DraftStore {
	return &DraftStore{
		drafts: make(map[int64]map[DraftKind]Draft),
	}
}

// Put stores the draft, replacing any draft of the same kind for the user
func (s *DraftStore) Put(userID int64, d Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKind, ok := s.drafts[userID]
	if !ok {
		byKind = make(map[DraftKind]Draft)
		s.drafts[userID] = byKind
	}
	byKind[d.Kind()] = d
}

// Get returns the user's draft of the given kind
func (s *DraftStore) Get(userID int64, kind DraftKind) (Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[userID][kind]
	return d, ok
}

// Delete removes the user's draft of the given kind
func (s *DraftStore) Delete(userID int64, kind DraftKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKind, ok := s.drafts[userID]
	if !ok {
		return
	}
	delete(byKind, kind)
	if len(byKind) == 0 {
		delete(s.drafts, userID)
	}
}

// FirstOpen returns the user's highest-priority open text draft
func (s *DraftStore) FirstOpen(userID int64) (Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKind, ok := s.drafts[userID]
	if !ok {
		return nil, false
	}
	for _, kind := range textRoutingOrder {
		if d, ok := byKind[kind]; ok {
			return d, true
		}
	}
	return nil, false
}

// MessageRefs maps short callback tokens to full Graph message ids per user.
// Inline button payloads are limited to 64 bytes, so the full id cannot
// travel in the callback itself.
type MessageRefs struct {
	mu   sync.Mutex
	refs map[int64]map[string]string
}

// NewMessageRefs creates an empty reference map
func NewMessageRefs() *MessageRefs {
	return &MessageRefs{
		refs: make(map[int64]map[string]string),
	}
}

// Replace discards the user's previous references and installs new ones
func (m *MessageRefs) Replace(userID int64, refs map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refs[userID] = refs
}

// Resolve returns the full message id behind a short token
func (m *MessageRefs) Resolve(userID int64, short string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	full, ok := m.refs[userID][short]
	return full, ok
}
