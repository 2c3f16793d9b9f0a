package bot

import (
	"context"
	"fmt"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"helpdesk/internal/graph"
	"helpdesk/internal/models"
	"helpdesk/internal/storage/stubs"
)

// Note: the Telegram API itself is never exercised here (api is nil, so
// outbound sends are skipped); tests drive the dispatcher and the draft
// engine and assert on store state and fake client calls.

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMail struct {
	profile  graph.Profile
	inbox    []graph.Message
	messages map[string]graph.Message
	sendErr  error
	sent     []sentMail
}

func (f *fakeMail) Profile(ctx context.Context, token string) (graph.Profile, error) {
	return f.profile, nil
}

func (f *fakeMail) ListInbox(ctx context.Context, token string, top int) ([]graph.Message, error) {
	if len(f.inbox) > top {
		return f.inbox[:top], nil
	}
	return f.inbox, nil
}

func (f *fakeMail) GetMessage(ctx context.Context, token, id string) (graph.Message, error) {
	m, ok := f.messages[id]
	if !ok {
		return graph.Message{}, fmt.Errorf("unexpected status 404: message not found")
	}
	return m, nil
}

func (f *fakeMail) SendMail(ctx context.Context, token, to, subject, body string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type createdRequest struct {
	userID int64
	reason string
	date   time.Time
}

type fakeDesk struct {
	instructions []models.Instruction
	events       []models.Event
	faqs         []models.FAQ
	clubs        []models.Club
	contacts     []models.Contact
	createErr    error
	created      []createdRequest
	uploads      []string
}

func (f *fakeDesk) Instructions(ctx context.Context) ([]models.Instruction, error) {
	return f.instructions, nil
}

func (f *fakeDesk) Events(ctx context.Context) ([]models.Event, error) { return f.events, nil }
func (f *fakeDesk) FAQs(ctx context.Context) ([]models.FAQ, error)    { return f.faqs, nil }
func (f *fakeDesk) Clubs(ctx context.Context) ([]models.Club, error)  { return f.clubs, nil }
func (f *fakeDesk) Contacts(ctx context.Context) ([]models.Contact, error) {
	return f.contacts, nil
}

func (f *fakeDesk) CreateMedicalRequest(ctx context.Context, userID int64, reason string, date time.Time) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.created = append(f.created, createdRequest{userID: userID, reason: reason, date: date})
	return int64(len(f.created)), nil
}

func (f *fakeDesk) UploadMedicalFile(ctx context.Context, requestID int64, filename, mimeType string, data []byte) (string, error) {
	f.uploads = append(f.uploads, filename)
	return filename, nil
}

func newTestBot(desk *fakeDesk, mail *fakeMail) (*Bot, *stubs.MockStore) {
	store := stubs.NewMockStore()
	b := &Bot{
		api:          nil, // Not needed for internal logic tests
		tokens:       store,
		desk:         desk,
		mail:         mail,
		oauth:        graph.NewOAuth("client", "secret", "tenant", "https://example.com/callback", ""),
		drafts:       NewDraftStore(),
		msgRefs:      NewMessageRefs(),
		supportEmail: "helpdesk@university.edu",
		logger:       zap.NewNop(), // Use nop logger for tests
	}
	return b, store
}

func commandMessage(userID, chatID int64, text string) *tgbotapi.Message {
	msg := textMessage(userID, chatID, text)
	cmdLen := len(text)
	for i, r := range text {
		if r == ' ' {
			cmdLen = i
			break
		}
	}
	msg.Entities = []tgbotapi.MessageEntity{
		{Type: "bot_command", Offset: 0, Length: cmdLen},
	}
	return msg
}

func textMessage(userID, chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}
}

func authorize(t *testing.T, store *stubs.MockStore, userID int64) {
	t.Helper()
	err := store.SaveToken(context.Background(), userID, "token-abc", time.Now().Add(time.Hour))
	require.NoError(t, err)
}

func TestBot_SendEmailFlow(t *testing.T) {
	desk := &fakeDesk{}
	mail := &fakeMail{}
	bot, store := newTestBot(desk, mail)

	userID := int64(123)
	chatID := int64(456)
	authorize(t, store, userID)

	bot.handleMessage(commandMessage(userID, chatID, "/sendemail"))

	draft, ok := bot.drafts.Get(userID, KindEmail)
	require.True(t, ok, "expected an email draft to be opened")
	assert.Equal(t, EmailDraft{}, draft)

	bot.handleMessage(textMessage(userID, chatID, "a@b.com"))

	draft, ok = bot.drafts.Get(userID, KindEmail)
	require.True(t, ok)
	assert.Equal(t, EmailDraft{Recipient: "a@b.com"}, draft)

	bot.handleMessage(textMessage(userID, chatID, "hello"))

	require.Len(t, mail.sent, 1, "expected exactly one outbound send")
	assert.Equal(t, "a@b.com", mail.sent[0].to)
	assert.Equal(t, "hello", mail.sent[0].body)

	_, ok = bot.drafts.Get(userID, KindEmail)
	assert.False(t, ok, "draft must be gone after the terminal action")
}

func TestBot_SendEmailRequiresToken(t *testing.T) {
	desk := &fakeDesk{}
	mail := &fakeMail{}
	bot, _ := newTestBot(desk, mail)

	userID := int64(123)
	bot.handleMessage(commandMessage(userID, 456, "/sendemail"))

	_, ok := bot.drafts.Get(userID, KindEmail)
	assert.False(t, ok, "no draft should open without a credential")
	assert.Empty(t, mail.sent)
}

func TestBot_SendEmailExpiredToken(t *testing.T) {
	desk := &fakeDesk{}
	mail := &fakeMail{}
	bot, store := newTestBot(desk, mail)

	userID := int64(123)
	now := time.Now()
	store.SetNow(func() time.Time { return now })
	require.NoError(t, store.SaveToken(context.Background(), userID, "stale", now.Add(time.Hour)))
	store.SetNow(func() time.Time { return now.Add(2 * time.Hour) })

	bot.handleMessage(commandMessage(userID, 456, "/sendemail"))

	_, ok := bot.drafts.Get(userID, KindEmail)
	assert.False(t, ok, "an expired credential must route to login, not open a draft")
}

func TestBot_DraftClearedEvenWhenSendFails(t *testing.T) {
	desk := &fakeDesk{}
	mail := &fakeMail{sendErr: fmt.Errorf("unexpected status 500")}
	bot, store := newTestBot(desk, mail)

	userID := int64(123)
	chatID := int64(456)
	authorize(t, store, userID)

	bot.handleMessage(commandMessage(userID, chatID, "/sendemail"))
	bot.handleMessage(textMessage(userID, chatID, "a@b.com"))
	bot.handleMessage(textMessage(userID, chatID, "hello"))

	_, ok := bot.drafts.Get(userID, KindEmail)
	assert.False(t, ok, "draft is consumed by the dispatch even when the upstream call fails")
}

func TestBot_MedicalFlowWithBadDate(t *testing.T) {
	desk := &fakeDesk{}
	mail := &fakeMail{}
	bot, _ := newTestBot(desk, mail)

	userID := int64(123)
	chatID := int64(456)

	bot.handleMessage(commandMessage(userID, chatID, "/medical"))
	bot.handleMessage(textMessage(userID, chatID, "flu"))

	draft, ok := bot.drafts.Get(userID, KindMedical)
	require.True(t, ok)
	assert.Equal(t, MedicalDraft{Reason: "flu"}, draft)

	// A malformed date must not lose the reason or close the draft
	bot.handleMessage(textMessage(userID, chatID, "not-a-date"))

	draft, ok = bot.drafts.Get(userID, KindMedical)
	require.True(t, ok, "draft must survive a date parse failure")
	assert.Equal(t, MedicalDraft{Reason: "flu"}, draft)
	assert.Empty(t, desk.created)

	// A valid date on retry fires the terminal action
	bot.handleMessage(textMessage(userID, chatID, "2025-05-18 14:30"))

	require.Len(t, desk.created, 1)
	assert.Equal(t, userID, desk.created[0].userID)
	assert.Equal(t, "flu", desk.created[0].reason)
	expected := time.Date(2025, 5, 18, 14, 30, 0, 0, time.UTC)
	assert.True(t, desk.created[0].date.Equal(expected), "parsed date mismatch: %v", desk.created[0].date)

	_, ok = bot.drafts.Get(userID, KindMedical)
	assert.False(t, ok, "draft must be cleared after the request is filed")
}

func TestBot_CommandRestartsSameKindDraft(t *testing.T) {
	desk := &fakeDesk{}
	mail := &fakeMail{}
	bot, store := newTestBot(desk, mail)

	userID := int64(123)
	chatID := int64(456)
	authorize(t, store, userID)

	bot.handleMessage(commandMessage(userID, chatID, "/sendemail"))
	bot.handleMessage(textMessage(userID, chatID, "a@b.com"))

	// Re-issuing the command discards the partially filled draft
	bot.handleMessage(commandMessage(userID, chatID, "/sendemail"))

	draft, ok := bot.drafts.Get(userID, KindEmail)
	require.True(t, ok)
	assert.Equal(t, EmailDraft{}, draft, "restart must discard the collected recipient")
}

func TestBot_TextRoutedToHighestPriorityDraft(t *testing.T) {
	desk := &fakeDesk{}
	mail := &fakeMail{}
	bot, store := newTestBot(desk, mail)

	userID := int64(123)
	chatID := int64(456)
	authorize(t, store, userID)

	// Open a support draft and an email draft awaiting its body
	bot.drafts.Put(userID, EmailDraft{Recipient: "a@b.com"})
	bot.drafts.Put(userID, SupportDraft{})

	bot.handleMessage(textMessage(userID, chatID, "my laptop is on fire"))

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "helpdesk@university.edu", mail.sent[0].to, "support outranks email compose")
	assert.Equal(t, "my laptop is on fire", mail.sent[0].body)

	_, ok := bot.drafts.Get(userID, KindSupport)
	assert.False(t, ok, "support draft consumed")

	email, ok := bot.drafts.Get(userID, KindEmail)
	require.True(t, ok, "email draft stays open until support clears")
	assert.Equal(t, EmailDraft{Recipient: "a@b.com"}, email)
}

func TestBot_IDCardFlow(t *testing.T) {
	desk := &fakeDesk{}
	mail := &fakeMail{}
	bot, store := newTestBot(desk, mail)

	userID := int64(123)
	chatID := int64(456)
	authorize(t, store, userID)

	bot.handleMessage(commandMessage(userID, chatID, "/idcard"))
	bot.handleMessage(textMessage(userID, chatID, "lost my card"))

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "helpdesk@university.edu", mail.sent[0].to)
	assert.Equal(t, "lost my card", mail.sent[0].body)

	_, ok := bot.drafts.Get(userID, KindIDCard)
	assert.False(t, ok)
}

func TestBot_ReplyFlow(t *testing.T) {
	var inboxMsg graph.Message
	inboxMsg.ID = "full-message-id-1"
	inboxMsg.Subject = "Exam schedule"
	inboxMsg.From.EmailAddress.Address = "dean@university.edu"

	desk := &fakeDesk{}
	mail := &fakeMail{
		inbox:    []graph.Message{inboxMsg},
		messages: map[string]graph.Message{inboxMsg.ID: inboxMsg},
	}
	bot, store := newTestBot(desk, mail)

	userID := int64(123)
	chatID := int64(456)
	authorize(t, store, userID)

	// Simulate the short id installed by /replyinbox
	bot.msgRefs.Replace(userID, map[string]string{"ab12cd34": inboxMsg.ID})

	query := &tgbotapi.CallbackQuery{
		ID:      "q1",
		From:    &tgbotapi.User{ID: userID},
		Message: textMessage(userID, chatID, ""),
		Data:    "reply_ab12cd34",
	}
	bot.handleCallbackQuery(query)

	draft, ok := bot.drafts.Get(userID, KindReply)
	require.True(t, ok, "reply callback must open a reply draft")
	assert.Equal(t, ReplyDraft{MessageID: inboxMsg.ID, ToEmail: "dean@university.edu"}, draft)

	bot.handleMessage(textMessage(userID, chatID, "thanks, noted"))

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "dean@university.edu", mail.sent[0].to)
	assert.Equal(t, "thanks, noted", mail.sent[0].body)

	_, ok = bot.drafts.Get(userID, KindReply)
	assert.False(t, ok)
}

func TestBot_ReplyCallbackUnknownShortID(t *testing.T) {
	desk := &fakeDesk{}
	mail := &fakeMail{messages: map[string]graph.Message{}}
	bot, store := newTestBot(desk, mail)

	userID := int64(123)
	authorize(t, store, userID)

	query := &tgbotapi.CallbackQuery{
		ID:      "q1",
		From:    &tgbotapi.User{ID: userID},
		Message: textMessage(userID, 456, ""),
		Data:    "reply_deadbeef",
	}
	bot.handleCallbackQuery(query)

	_, ok := bot.drafts.Get(userID, KindReply)
	assert.False(t, ok, "an unresolvable short id must not open a draft")
}

func TestBot_AttachmentIgnoredWithoutFileDraft(t *testing.T) {
	desk := &fakeDesk{}
	mail := &fakeMail{}
	bot, _ := newTestBot(desk, mail)

	msg := textMessage(123, 456, "")
	msg.Document = &tgbotapi.Document{FileID: "f1", FileName: "cert.pdf"}

	bot.handleMessage(msg)

	assert.Empty(t, desk.created, "a stray attachment is not part of any flow")
}

func TestBot_FileDraftConsumedByAttachment(t *testing.T) {
	desk := &fakeDesk{}
	mail := &fakeMail{}
	bot, _ := newTestBot(desk, mail)

	userID := int64(123)
	chatID := int64(456)

	bot.handleMessage(commandMessage(userID, chatID, "/medfile"))

	_, ok := bot.drafts.Get(userID, KindFile)
	require.True(t, ok)

	msg := textMessage(userID, chatID, "")
	msg.Document = &tgbotapi.Document{FileID: "f1", FileName: "cert.pdf"}
	bot.handleMessage(msg)

	// With no API available the download fails, but the draft is still
	// consumed by the attachment
	_, ok = bot.drafts.Get(userID, KindFile)
	assert.False(t, ok, "file draft is spent on the first attachment")
	assert.Empty(t, desk.created)
}

func TestBot_FreeTextWithoutDraftIsDropped(t *testing.T) {
	desk := &fakeDesk{}
	mail := &fakeMail{}
	bot, _ := newTestBot(desk, mail)

	bot.handleMessage(textMessage(123, 456, "hello?"))

	assert.Empty(t, mail.sent)
	assert.Empty(t, desk.created)
}

func TestBot_PanicRecovery(t *testing.T) {
	desk := &fakeDesk{}
	mail := &fakeMail{}
	bot, _ := newTestBot(desk, mail)

	// A message without From would panic in the dispatcher; the recover
	// must keep the update loop alive
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("handleMessage panicked: %v", r)
		}
	}()

	bot.handleMessage(&tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 456}, Text: "boom"})
}

func TestBot_UnknownCommand(t *testing.T) {
	desk := &fakeDesk{}
	mail := &fakeMail{}
	bot, _ := newTestBot(desk, mail)

	userID := int64(123)
	bot.handleMessage(commandMessage(userID, 456, "/frobnicate"))

	_, ok := bot.drafts.FirstOpen(userID)
	assert.False(t, ok)
}

func TestBot_MedicalCreateFailureStillClearsDraft(t *testing.T) {
	desk := &fakeDesk{createErr: fmt.Errorf("unexpected status 404: User not found")}
	mail := &fakeMail{}
	bot, _ := newTestBot(desk, mail)

	userID := int64(123)
	chatID := int64(456)

	bot.handleMessage(commandMessage(userID, chatID, "/medical"))
	bot.handleMessage(textMessage(userID, chatID, "flu"))
	bot.handleMessage(textMessage(userID, chatID, "2025-05-18 14:30"))

	_, ok := bot.drafts.Get(userID, KindMedical)
	assert.False(t, ok, "upstream failure does not keep the draft alive")
}
