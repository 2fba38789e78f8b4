package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"servicen_platform/internal/config"
	"servicen_platform/internal/domain"
	apperrors "servicen_platform/pkg/errors"
	"servicen_platform/pkg/logger"
)

// fakeUserRepo - хранилище пользователей в памяти для тестов сервисов
type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*domain.User
	sessions map[string]*domain.UserSession
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[uuid.UUID]*domain.User),
		sessions: make(map[string]*domain.UserSession),
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return apperrors.ErrUserAlreadyExists
		}
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) ListOthers(_ context.Context, excludeID uuid.UUID, limit int) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []*domain.User
	for _, user := range r.users {
		if user.ID == excludeID || len(users) >= limit {
			continue
		}
		copied := *user
		users = append(users, &copied)
	}
	return users, nil
}

func (r *fakeUserRepo) CreateSession(_ context.Context, session *domain.UserSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.RefreshTokenHash] = &copied
	return nil
}

func (r *fakeUserRepo) GetSessionByTokenHash(_ context.Context, tokenHash string) (*domain.UserSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[tokenHash]
	if !ok || session.RevokedAt != nil {
		return nil, apperrors.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *fakeUserRepo) RevokeSession(_ context.Context, sessionID uuid.UUID, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.ID == sessionID {
			now := time.Now()
			session.RevokedAt = &now
		}
	}
	return nil
}

// fakeMessageRepo повторяет контракт message-репозитория: created_at
// назначается строго монотонно, как это делает БД
type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*domain.Message
	clock    time.Time
	users    *fakeUserRepo
}

func newFakeMessageRepo(users *fakeUserRepo) *fakeMessageRepo {
	return &fakeMessageRepo{
		clock: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		users: users,
	}
}

func (r *fakeMessageRepo) Create(_ context.Context, message *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clock = r.clock.Add(time.Second)
	message.Read = false
	message.CreatedAt = r.clock

	copied := *message
	copied.Sender = nil
	copied.Recipient = nil
	r.messages = append(r.messages, &copied)
	return nil
}

func (r *fakeMessageRepo) enrich(msg *domain.Message) *domain.Message {
	copied := *msg
	if sender, ok := r.users.users[msg.SenderID]; ok {
		summary := sender.Summary()
		copied.Sender = &summary
	}
	if recipient, ok := r.users.users[msg.RecipientID]; ok {
		summary := recipient.Summary()
		copied.Recipient = &summary
	}
	return &copied
}

func (r *fakeMessageRepo) ListByParticipant(_ context.Context, userID uuid.UUID) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*domain.Message
	for _, msg := range r.messages {
		if msg.SenderID == userID || msg.RecipientID == userID {
			result = append(result, r.enrich(msg))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeMessageRepo) ListByConversation(_ context.Context, conversationID string) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*domain.Message
	for _, msg := range r.messages {
		if msg.ConversationID == conversationID {
			result = append(result, r.enrich(msg))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeMessageRepo) MarkConversationRead(_ context.Context, conversationID string, recipientID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var updated int64
	for _, msg := range r.messages {
		if msg.ConversationID == conversationID && msg.RecipientID == recipientID && !msg.Read {
			msg.Read = true
			updated++
		}
	}
	return updated, nil
}

func (r *fakeMessageRepo) DeleteConversation(_ context.Context, conversationID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var kept []*domain.Message
	var deleted int64
	for _, msg := range r.messages {
		if msg.ConversationID == conversationID {
			deleted++
			continue
		}
		kept = append(kept, msg)
	}
	r.messages = kept
	return deleted, nil
}

func (r *fakeMessageRepo) CountUnread(_ context.Context, recipientID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, msg := range r.messages {
		if msg.RecipientID == recipientID && !msg.Read {
			count++
		}
	}
	return count, nil
}

func testMessagingConfig() config.MessagingConfig {
	return config.MessagingConfig{
		MaxBodyLength:    5000,
		MaxSubjectLength: 200,
	}
}

func setupMessaging(t *testing.T) (MessagingService, *fakeMessageRepo, *fakeUserRepo, *EventHub) {
	t.Helper()

	log := logger.New("error")
	users := newFakeUserRepo()
	messages := newFakeMessageRepo(users)
	events := NewEventHub(log)

	svc := NewMessagingService(messages, users, events, testMessagingConfig(), log)
	return svc, messages, users, events
}

func seedUser(t *testing.T, repo *fakeUserRepo, firstName, lastName, role string) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:        uuid.New(),
		Email:     strings.ToLower(firstName + "." + lastName + "@example.sn"),
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
		IsActive:  true,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("seedUser failed: %v", err)
	}
	return user
}

func TestSendMessageValidation(t *testing.T) {
	svc, _, users, _ := setupMessaging(t)
	ctx := context.Background()

	sender := seedUser(t, users, "Awa", "Diop", domain.RoleClient)
	recipient := seedUser(t, users, "Moussa", "Ndiaye", domain.RolePrestataire)

	cases := []struct {
		name        string
		recipientID uuid.UUID
		subject     string
		body        string
	}{
		{"empty body", recipient.ID, "", ""},
		{"blank body", recipient.ID, "", "   "},
		{"nil recipient", uuid.Nil, "", "Bonjour"},
		{"self send", sender.ID, "", "note to self"},
		{"oversized body", recipient.ID, "", strings.Repeat("x", 5001)},
		{"oversized subject", recipient.ID, strings.Repeat("s", 201), "Bonjour"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SendMessage(ctx, sender.ID, tc.recipientID, tc.subject, tc.body)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !apperrors.IsValidation(err) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
		})
	}
}

func TestSendMessageRecipientNotFound(t *testing.T) {
	svc, _, users, _ := setupMessaging(t)
	ctx := context.Background()

	sender := seedUser(t, users, "Awa", "Diop", domain.RoleClient)

	_, err := svc.SendMessage(ctx, sender.ID, uuid.New(), "", "Bonjour")
	if err == nil {
		t.Fatal("expected error for unknown recipient")
	}
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
}

func TestSendMessageCreatesMessage(t *testing.T) {
	svc, _, users, _ := setupMessaging(t)
	ctx := context.Background()

	sender := seedUser(t, users, "Awa", "Diop", domain.RoleClient)
	recipient := seedUser(t, users, "Moussa", "Ndiaye", domain.RolePrestataire)

	msg, err := svc.SendMessage(ctx, sender.ID, recipient.ID, "Devis", "Bonjour")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if msg.Read {
		t.Error("new message must be unread")
	}
	if want := domain.ConversationID(sender.ID, recipient.ID); msg.ConversationID != want {
		t.Errorf("conversation ID = %q, want %q", msg.ConversationID, want)
	}
	if msg.CreatedAt.IsZero() {
		t.Error("created_at must be set by the store")
	}
	if msg.Sender == nil || msg.Sender.FirstName != "Awa" {
		t.Error("sender summary not attached")
	}
	if msg.Recipient == nil || msg.Recipient.FirstName != "Moussa" {
		t.Error("recipient summary not attached")
	}
}

func TestConversationIDStableAcrossDirections(t *testing.T) {
	svc, _, users, _ := setupMessaging(t)
	ctx := context.Background()

	a := seedUser(t, users, "Awa", "Diop", domain.RoleClient)
	b := seedUser(t, users, "Moussa", "Ndiaye", domain.RolePrestataire)

	first, err := svc.SendMessage(ctx, a.ID, b.ID, "", "salut")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	second, err := svc.SendMessage(ctx, b.ID, a.ID, "", "re")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if first.ConversationID != second.ConversationID {
		t.Errorf("messages in both directions must share a conversation: %q != %q",
			first.ConversationID, second.ConversationID)
	}

	// Просмотр с обеих сторон возвращает один и тот же набор сообщений
	threadA, err := svc.GetConversation(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	threadB, err := svc.GetConversation(ctx, b.ID, a.ID)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}

	if len(threadA.Messages) != 2 || len(threadB.Messages) != 2 {
		t.Fatalf("expected both views to hold 2 messages, got %d and %d",
			len(threadA.Messages), len(threadB.Messages))
	}
	for i := range threadA.Messages {
		if threadA.Messages[i].ID != threadB.Messages[i].ID {
			t.Errorf("message order differs between views at index %d", i)
		}
	}
}

func TestListConversations(t *testing.T) {
	svc, _, users, _ := setupMessaging(t)
	ctx := context.Background()

	viewer := seedUser(t, users, "Awa", "Diop", domain.RoleClient)
	plumber := seedUser(t, users, "Moussa", "Ndiaye", domain.RolePrestataire)
	tutor := seedUser(t, users, "Fatou", "Sall", domain.RolePrestataire)

	// Диалог с plumber: входящее непрочитанное
	if _, err := svc.SendMessage(ctx, plumber.ID, viewer.ID, "", "Disponible demain"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	// Диалог с tutor: и более поздний ответ от viewer
	if _, err := svc.SendMessage(ctx, tutor.ID, viewer.ID, "", "Cours lundi?"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if _, err := svc.SendMessage(ctx, viewer.ID, tutor.ID, "", "Oui, parfait"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	conversations, err := svc.ListConversations(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}

	if len(conversations) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(conversations))
	}

	// Свежайший диалог первым - диалог с tutor
	if conversations[0].Counterpart.ID != tutor.ID {
		t.Errorf("expected tutor conversation first, got counterpart %s", conversations[0].Counterpart.ID)
	}
	if conversations[1].Counterpart.ID != plumber.ID {
		t.Errorf("expected plumber conversation second, got counterpart %s", conversations[1].Counterpart.ID)
	}

	if conversations[0].LastMessage.Body != "Oui, parfait" {
		t.Errorf("unexpected last message: %q", conversations[0].LastMessage.Body)
	}

	// Оба диалога содержат непрочитанные входящие
	for _, conv := range conversations {
		if !conv.HasUnread {
			t.Errorf("conversation with %s should be unread", conv.Counterpart.ID)
		}
	}
}

func TestListConversationsUnreadOnlyForIncoming(t *testing.T) {
	svc, _, users, _ := setupMessaging(t)
	ctx := context.Background()

	viewer := seedUser(t, users, "Awa", "Diop", domain.RoleClient)
	other := seedUser(t, users, "Moussa", "Ndiaye", domain.RolePrestataire)

	// Только исходящее: для отправителя диалог прочитан
	if _, err := svc.SendMessage(ctx, viewer.ID, other.ID, "", "Bonjour"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	conversations, err := svc.ListConversations(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(conversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(conversations))
	}
	if conversations[0].HasUnread {
		t.Error("outgoing-only conversation must not be flagged unread for the sender")
	}

	// А для получателя - непрочитан
	otherSide, err := svc.ListConversations(ctx, other.ID)
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if !otherSide[0].HasUnread {
		t.Error("incoming conversation must be flagged unread for the recipient")
	}
}

func TestGetConversationMarksRead(t *testing.T) {
	svc, messages, users, _ := setupMessaging(t)
	ctx := context.Background()

	sender := seedUser(t, users, "Awa", "Diop", domain.RoleClient)
	viewer := seedUser(t, users, "Moussa", "Ndiaye", domain.RolePrestataire)

	if _, err := svc.SendMessage(ctx, sender.ID, viewer.ID, "", "premier"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if _, err := svc.SendMessage(ctx, sender.ID, viewer.ID, "", "deuxième"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	thread, err := svc.GetConversation(ctx, viewer.ID, sender.ID)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}

	// Ответ уже отражает пометку
	for _, msg := range thread.Messages {
		if msg.RecipientID == viewer.ID && !msg.Read {
			t.Error("incoming message still unread in returned thread")
		}
	}

	// В хранилище тоже прочитано
	unread, err := messages.CountUnread(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if unread != 0 {
		t.Errorf("expected 0 unread after viewing, got %d", unread)
	}

	// Повторный просмотр ничего не меняет (монотонность read)
	updated, err := svc.MarkConversationRead(ctx, viewer.ID, sender.ID)
	if err != nil {
		t.Fatalf("MarkConversationRead failed: %v", err)
	}
	if updated != 0 {
		t.Errorf("second mark-read updated %d records, want 0", updated)
	}
}

func TestGetConversationDoesNotMarkSenderSide(t *testing.T) {
	svc, messages, users, _ := setupMessaging(t)
	ctx := context.Background()

	sender := seedUser(t, users, "Awa", "Diop", domain.RoleClient)
	recipient := seedUser(t, users, "Moussa", "Ndiaye", domain.RolePrestataire)

	if _, err := svc.SendMessage(ctx, sender.ID, recipient.ID, "", "Bonjour"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	// Отправитель открывает диалог - чужое входящее не трогается
	if _, err := svc.GetConversation(ctx, sender.ID, recipient.ID); err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}

	unread, err := messages.CountUnread(ctx, recipient.ID)
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if unread != 1 {
		t.Errorf("recipient's unread count = %d, want 1", unread)
	}
}

func TestGetConversationUnknownCounterpart(t *testing.T) {
	svc, _, users, _ := setupMessaging(t)
	ctx := context.Background()

	viewer := seedUser(t, users, "Awa", "Diop", domain.RoleClient)

	_, err := svc.GetConversation(ctx, viewer.ID, uuid.New())
	if err == nil {
		t.Fatal("expected error for unknown counterpart")
	}
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
}

func TestMarkConversationReadIdempotent(t *testing.T) {
	svc, _, users, _ := setupMessaging(t)
	ctx := context.Background()

	sender := seedUser(t, users, "Awa", "Diop", domain.RoleClient)
	viewer := seedUser(t, users, "Moussa", "Ndiaye", domain.RolePrestataire)

	if _, err := svc.SendMessage(ctx, sender.ID, viewer.ID, "", "Bonjour"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	first, err := svc.MarkConversationRead(ctx, viewer.ID, sender.ID)
	if err != nil {
		t.Fatalf("MarkConversationRead failed: %v", err)
	}
	if first != 1 {
		t.Errorf("first mark-read updated %d, want 1", first)
	}

	second, err := svc.MarkConversationRead(ctx, viewer.ID, sender.ID)
	if err != nil {
		t.Fatalf("MarkConversationRead failed: %v", err)
	}
	if second != 0 {
		t.Errorf("second mark-read updated %d, want 0", second)
	}
}

func TestMarkConversationReadEmptyConversation(t *testing.T) {
	svc, _, users, _ := setupMessaging(t)
	ctx := context.Background()

	viewer := seedUser(t, users, "Awa", "Diop", domain.RoleClient)
	other := seedUser(t, users, "Moussa", "Ndiaye", domain.RolePrestataire)

	// Пустой диалог не ошибка
	updated, err := svc.MarkConversationRead(ctx, viewer.ID, other.ID)
	if err != nil {
		t.Fatalf("MarkConversationRead on empty conversation failed: %v", err)
	}
	if updated != 0 {
		t.Errorf("expected 0 updates, got %d", updated)
	}
}

func TestDeleteConversation(t *testing.T) {
	svc, _, users, _ := setupMessaging(t)
	ctx := context.Background()

	a := seedUser(t, users, "Awa", "Diop", domain.RoleClient)
	b := seedUser(t, users, "Moussa", "Ndiaye", domain.RolePrestataire)

	// Сообщения в обе стороны
	if _, err := svc.SendMessage(ctx, a.ID, b.ID, "", "salut"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if _, err := svc.SendMessage(ctx, b.ID, a.ID, "", "re"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if err := svc.DeleteConversation(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("DeleteConversation failed: %v", err)
	}

	// Диалог пуст для обоих участников
	threadA, err := svc.GetConversation(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if len(threadA.Messages) != 0 {
		t.Errorf("expected empty thread for a, got %d messages", len(threadA.Messages))
	}

	convsB, err := svc.ListConversations(ctx, b.ID)
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(convsB) != 0 {
		t.Errorf("expected no conversations for b, got %d", len(convsB))
	}

	// Повторное удаление - no-op
	if err := svc.DeleteConversation(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("DeleteConversation on empty conversation failed: %v", err)
	}
}

// Сценарий из жизни: отправка, входящие, просмотр, сброс бейджа
func TestEndToEndScenario(t *testing.T) {
	svc, _, users, _ := setupMessaging(t)
	ctx := context.Background()

	u1 := seedUser(t, users, "Awa", "Diop", domain.RoleClient)
	u2 := seedUser(t, users, "Moussa", "Ndiaye", domain.RolePrestataire)

	sent, err := svc.SendMessage(ctx, u1.ID, u2.ID, "", "Bonjour")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if want := domain.ConversationID(u1.ID, u2.ID); sent.ConversationID != want {
		t.Errorf("conversation ID = %q, want %q", sent.ConversationID, want)
	}
	if sent.Read {
		t.Error("sent message must start unread")
	}

	inbox, err := svc.ListConversations(ctx, u2.ID)
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(inbox) != 1 || !inbox[0].HasUnread {
		t.Fatalf("recipient inbox should show one unread conversation, got %+v", inbox)
	}

	thread, err := svc.GetConversation(ctx, u2.ID, u1.ID)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if len(thread.Messages) != 1 || thread.Messages[0].Body != "Bonjour" {
		t.Fatalf("unexpected thread contents: %+v", thread.Messages)
	}

	inbox, err = svc.ListConversations(ctx, u2.ID)
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if inbox[0].HasUnread {
		t.Error("conversation should be read after viewing")
	}
}

// Порядок: переписка хронологическая, входящие - свежие сверху
func TestOrderingScenario(t *testing.T) {
	svc, _, users, _ := setupMessaging(t)
	ctx := context.Background()

	u1 := seedUser(t, users, "Awa", "Diop", domain.RoleClient)
	u2 := seedUser(t, users, "Moussa", "Ndiaye", domain.RolePrestataire)

	bodies := []string{"premier", "deuxième", "troisième"}
	for _, body := range bodies {
		if _, err := svc.SendMessage(ctx, u1.ID, u2.ID, "", body); err != nil {
			t.Fatalf("SendMessage failed: %v", err)
		}
	}

	thread, err := svc.GetConversation(ctx, u2.ID, u1.ID)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if len(thread.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(thread.Messages))
	}
	for i, body := range bodies {
		if thread.Messages[i].Body != body {
			t.Errorf("thread[%d] = %q, want %q (ascending order)", i, thread.Messages[i].Body, body)
		}
		if i > 0 && thread.Messages[i].CreatedAt.Before(thread.Messages[i-1].CreatedAt) {
			t.Error("thread timestamps not ascending")
		}
	}

	inbox, err := svc.ListConversations(ctx, u2.ID)
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if inbox[0].LastMessage.Body != "troisième" {
		t.Errorf("last message = %q, want the latest one", inbox[0].LastMessage.Body)
	}
	if !inbox[0].LastMessage.CreatedAt.Equal(thread.Messages[2].CreatedAt) {
		t.Error("inbox last message timestamp differs from newest thread message")
	}
}

func TestSendMessagePublishesEvent(t *testing.T) {
	svc, _, users, events := setupMessaging(t)
	ctx := context.Background()

	sender := seedUser(t, users, "Awa", "Diop", domain.RoleClient)
	recipient := seedUser(t, users, "Moussa", "Ndiaye", domain.RolePrestataire)

	ch, unsubscribe := events.Subscribe(recipient.ID)
	defer unsubscribe()

	sent, err := svc.SendMessage(ctx, sender.ID, recipient.ID, "", "Bonjour")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	select {
	case event := <-ch:
		if event.Type != EventMessageNew {
			t.Errorf("event type = %q, want %q", event.Type, EventMessageNew)
		}
		if event.Message == nil || event.Message.ID != sent.ID {
			t.Error("event does not carry the sent message")
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered to recipient subscriber")
	}
}
