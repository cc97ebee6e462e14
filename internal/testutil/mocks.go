package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/messaging"
	"github.com/dafibh/fluxo/fluxo-backend/internal/util"
	"github.com/dafibh/fluxo/fluxo-backend/internal/websocket"
	"github.com/google/uuid"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users    map[string]*domain.User
	ByID     map[uuid.UUID]*domain.User
	CreateFn func(auth0ID, email string, name, pictureURL *string) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail retrieves a user by email, ignoring case
func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.ByID {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(auth0ID, email, name, pictureURL)
	}
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:         uuid.New(),
		Auth0ID:    auth0ID,
		Email:      email,
		Name:       name,
		PictureURL: pictureURL,
	}
	m.AddUser(user)
	return user, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
}

// MockClientRepository is a mock implementation of domain.ClientRepository
type MockClientRepository struct {
	Clients       map[int32]*domain.Client
	ByUserID      map[uuid.UUID]*domain.Client
	ByUserAuth0ID map[string]*domain.Client
	NextID        int32
	GetByUserIDFn func(userID uuid.UUID) (*domain.Client, error)
	CreateFn      func(client *domain.Client) (*domain.Client, error)
}

// NewMockClientRepository creates a new MockClientRepository
func NewMockClientRepository() *MockClientRepository {
	return &MockClientRepository{
		Clients:       make(map[int32]*domain.Client),
		ByUserID:      make(map[uuid.UUID]*domain.Client),
		ByUserAuth0ID: make(map[string]*domain.Client),
		NextID:        1,
	}
}

// GetByID retrieves a client by ID
func (m *MockClientRepository) GetByID(ctx context.Context, id int32) (*domain.Client, error) {
	if c, ok := m.Clients[id]; ok {
		return c, nil
	}
	return nil, domain.ErrClientNotFound
}

// GetByUserID retrieves the client owned by a user
func (m *MockClientRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Client, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(userID)
	}
	if c, ok := m.ByUserID[userID]; ok {
		return c, nil
	}
	return nil, domain.ErrClientNotFound
}

// GetByUserAuth0ID retrieves the client owned by the user with the given Auth0 ID
func (m *MockClientRepository) GetByUserAuth0ID(ctx context.Context, auth0ID string) (*domain.Client, error) {
	if c, ok := m.ByUserAuth0ID[auth0ID]; ok {
		return c, nil
	}
	return nil, domain.ErrClientNotFound
}

// GetByEmail retrieves a client by contact email
func (m *MockClientRepository) GetByEmail(ctx context.Context, email string) (*domain.Client, error) {
	for _, id := range m.sortedIDs() {
		if strings.EqualFold(m.Clients[id].Email, email) {
			return m.Clients[id], nil
		}
	}
	return nil, domain.ErrClientNotFound
}

// GetByConsultant lists the clients linked to a consultant
func (m *MockClientRepository) GetByConsultant(ctx context.Context, consultantID uuid.UUID) ([]*domain.Client, error) {
	var out []*domain.Client
	for _, id := range m.sortedIDs() {
		c := m.Clients[id]
		if c.ConsultorID != nil && *c.ConsultorID == consultantID {
			out = append(out, c)
		}
	}
	return out, nil
}

// GetAll lists every client
func (m *MockClientRepository) GetAll(ctx context.Context) ([]*domain.Client, error) {
	out := make([]*domain.Client, 0, len(m.Clients))
	for _, id := range m.sortedIDs() {
		out = append(out, m.Clients[id])
	}
	return out, nil
}

// Create creates a new client
func (m *MockClientRepository) Create(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	if m.CreateFn != nil {
		return m.CreateFn(client)
	}
	if _, exists := m.ByUserID[client.UserID]; exists {
		return nil, domain.ErrAlreadyExists
	}
	client.ID = m.NextID
	m.NextID++
	client.CreatedAt = time.Now()
	client.UpdatedAt = client.CreatedAt
	m.Clients[client.ID] = client
	m.ByUserID[client.UserID] = client
	return client, nil
}

// Update updates a client's profile fields
func (m *MockClientRepository) Update(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	existing, ok := m.Clients[client.ID]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	existing.Nome = client.Nome
	existing.Telefone = client.Telefone
	existing.CpfCnpj = client.CpfCnpj
	existing.UpdatedAt = time.Now()
	return existing, nil
}

// SetConsultant links or unlinks a consultant
func (m *MockClientRepository) SetConsultant(ctx context.Context, clientID int32, consultantID *uuid.UUID) (*domain.Client, error) {
	existing, ok := m.Clients[clientID]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	existing.ConsultorID = consultantID
	return existing, nil
}

// AddClient adds a client owned by the given Auth0 user (helper for tests)
func (m *MockClientRepository) AddClient(client *domain.Client, auth0ID string) {
	m.Clients[client.ID] = client
	m.ByUserID[client.UserID] = client
	if auth0ID != "" {
		m.ByUserAuth0ID[auth0ID] = client
	}
	if client.ID >= m.NextID {
		m.NextID = client.ID + 1
	}
}

func (m *MockClientRepository) sortedIDs() []int32 {
	ids := make([]int32, 0, len(m.Clients))
	for id := range m.Clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions  map[int32]*domain.Transaction
	NextID        int32
	CreateFn      func(transaction *domain.Transaction) (*domain.Transaction, error)
	CreateManyFn  func(transactions []*domain.Transaction) ([]*domain.Transaction, error)
	GetByClientFn func(clientID int32, filters *domain.TransactionFilters) ([]*domain.Transaction, error)
	BatchUpdateFn func(clientID int32, ids []int32, patch domain.TransactionPatch) ([]*domain.Transaction, error)
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[int32]*domain.Transaction),
		NextID:       1,
	}
}

// Create creates a new transaction
func (m *MockTransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	if m.CreateFn != nil {
		return m.CreateFn(transaction)
	}
	m.AddTransaction(transaction)
	return transaction, nil
}

// CreateMany inserts all transactions or none
func (m *MockTransactionRepository) CreateMany(ctx context.Context, transactions []*domain.Transaction) ([]*domain.Transaction, error) {
	if m.CreateManyFn != nil {
		return m.CreateManyFn(transactions)
	}
	for _, t := range transactions {
		m.AddTransaction(t)
	}
	return transactions, nil
}

// GetByID retrieves a transaction by ID within a client
func (m *MockTransactionRepository) GetByID(ctx context.Context, clientID, id int32) (*domain.Transaction, error) {
	t, ok := m.Transactions[id]
	if !ok || t.ClientID != clientID {
		return nil, domain.ErrTransactionNotFound
	}
	return t, nil
}

// GetByClient lists a client's transactions, newest first
func (m *MockTransactionRepository) GetByClient(ctx context.Context, clientID int32, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	if m.GetByClientFn != nil {
		return m.GetByClientFn(clientID, filters)
	}
	out := []*domain.Transaction{}
	for _, t := range m.Transactions {
		if t.ClientID != clientID {
			continue
		}
		if filters != nil {
			if filters.StartDate != nil && t.Data < filters.StartDate.Format(util.DateLayout) {
				continue
			}
			if filters.EndDate != nil && t.Data > filters.EndDate.Format(util.DateLayout) {
				continue
			}
			if filters.Operacao != nil && t.Operacao != *filters.Operacao {
				continue
			}
			if filters.Categoria != nil && t.Categoria != *filters.Categoria {
				continue
			}
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Data != out[j].Data {
			return out[i].Data > out[j].Data
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Update replaces the editable fields of a transaction
func (m *MockTransactionRepository) Update(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	existing, ok := m.Transactions[transaction.ID]
	if !ok || existing.ClientID != transaction.ClientID {
		return nil, domain.ErrTransactionNotFound
	}
	existing.Data = transaction.Data
	existing.Operacao = transaction.Operacao
	existing.Descricao = transaction.Descricao
	existing.Categoria = transaction.Categoria
	existing.Valor = transaction.Valor
	existing.UpdatedAt = time.Now()
	return existing, nil
}

// BatchUpdate applies a patch to every listed transaction, or to none
func (m *MockTransactionRepository) BatchUpdate(ctx context.Context, clientID int32, ids []int32, patch domain.TransactionPatch) ([]*domain.Transaction, error) {
	if m.BatchUpdateFn != nil {
		return m.BatchUpdateFn(clientID, ids, patch)
	}
	for _, id := range ids {
		if t, ok := m.Transactions[id]; !ok || t.ClientID != clientID {
			return nil, domain.ErrTransactionNotFound
		}
	}
	out := make([]*domain.Transaction, 0, len(ids))
	for _, id := range ids {
		t := m.Transactions[id]
		if patch.Data != nil {
			t.Data = *patch.Data
		}
		if patch.Operacao != nil {
			t.Operacao = *patch.Operacao
		}
		if patch.Descricao != nil {
			t.Descricao = *patch.Descricao
		}
		if patch.Categoria != nil {
			t.Categoria = *patch.Categoria
		}
		if patch.Valor != nil {
			t.Valor = *patch.Valor
		}
		out = append(out, t)
	}
	return out, nil
}

// SetReceipt stores or clears a receipt path
func (m *MockTransactionRepository) SetReceipt(ctx context.Context, clientID, id int32, path *string) (*domain.Transaction, error) {
	t, ok := m.Transactions[id]
	if !ok || t.ClientID != clientID {
		return nil, domain.ErrTransactionNotFound
	}
	t.ComprovantePath = path
	return t, nil
}

// Delete removes a transaction
func (m *MockTransactionRepository) Delete(ctx context.Context, clientID, id int32) error {
	t, ok := m.Transactions[id]
	if !ok || t.ClientID != clientID {
		return domain.ErrTransactionNotFound
	}
	delete(m.Transactions, id)
	return nil
}

// AddTransaction stores a transaction, assigning an ID when it has none (helper for tests)
func (m *MockTransactionRepository) AddTransaction(t *domain.Transaction) {
	if t.ID == 0 {
		t.ID = m.NextID
	}
	if t.ID >= m.NextID {
		m.NextID = t.ID + 1
	}
	m.Transactions[t.ID] = t
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[int32]*domain.Category
	NextID     int32
	// Transactions and Goals, when set, are rewritten by Rename like the real repository does
	Transactions *MockTransactionRepository
	Goals        *MockGoalRepository
	RenameFn     func(clientID, id int32, newName string, tipo domain.CategoryType) (*domain.Category, error)
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories: make(map[int32]*domain.Category),
		NextID:     1,
	}
}

// Create creates a new category
func (m *MockCategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if _, err := m.GetByName(ctx, category.ClientID, category.Nome); err == nil {
		return nil, domain.ErrCategoryAlreadyExists
	}
	category.ID = m.NextID
	m.NextID++
	m.Categories[category.ID] = category
	return category, nil
}

// CreateDefaults seeds defaults, skipping names that already exist
func (m *MockCategoryRepository) CreateDefaults(ctx context.Context, clientID int32, defaults []domain.Category) error {
	for _, d := range defaults {
		c := d
		c.ClientID = clientID
		if _, err := m.Create(ctx, &c); err != nil && err != domain.ErrCategoryAlreadyExists {
			return err
		}
	}
	return nil
}

// GetByID retrieves a category by ID within a client
func (m *MockCategoryRepository) GetByID(ctx context.Context, clientID, id int32) (*domain.Category, error) {
	c, ok := m.Categories[id]
	if !ok || c.ClientID != clientID {
		return nil, domain.ErrCategoryNotFound
	}
	return c, nil
}

// GetByName retrieves a category by exact name within a client
func (m *MockCategoryRepository) GetByName(ctx context.Context, clientID int32, name string) (*domain.Category, error) {
	for _, c := range m.Categories {
		if c.ClientID == clientID && c.Nome == name {
			return c, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

// GetAllByClient lists a client's categories, defaults first
func (m *MockCategoryRepository) GetAllByClient(ctx context.Context, clientID int32) ([]*domain.Category, error) {
	out := []*domain.Category{}
	for _, c := range m.Categories {
		if c.ClientID == clientID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Padrao != out[j].Padrao {
			return out[i].Padrao
		}
		return out[i].Nome < out[j].Nome
	})
	return out, nil
}

// UpdateType changes a category's type
func (m *MockCategoryRepository) UpdateType(ctx context.Context, clientID, id int32, tipo domain.CategoryType) (*domain.Category, error) {
	c, err := m.GetByID(ctx, clientID, id)
	if err != nil {
		return nil, err
	}
	c.Tipo = tipo
	return c, nil
}

// OperationsInUse lists the operations of the linked transactions under a name
func (m *MockCategoryRepository) OperationsInUse(ctx context.Context, clientID int32, name string) ([]string, error) {
	if m.Transactions == nil {
		return nil, nil
	}
	seen := make(map[string]bool)
	var ops []string
	for _, t := range m.Transactions.Transactions {
		if t.ClientID == clientID && t.Categoria == name && !seen[string(t.Operacao)] {
			seen[string(t.Operacao)] = true
			ops = append(ops, string(t.Operacao))
		}
	}
	return ops, nil
}

// Rename replaces a category and moves its references to the new name
func (m *MockCategoryRepository) Rename(ctx context.Context, clientID, id int32, newName string, tipo domain.CategoryType) (*domain.Category, error) {
	if m.RenameFn != nil {
		return m.RenameFn(clientID, id, newName, tipo)
	}
	old, err := m.GetByID(ctx, clientID, id)
	if err != nil {
		return nil, err
	}
	created, err := m.Create(ctx, &domain.Category{ClientID: clientID, Nome: newName, Tipo: tipo})
	if err != nil {
		return nil, err
	}
	if m.Transactions != nil {
		for _, t := range m.Transactions.Transactions {
			if t.ClientID == clientID && t.Categoria == old.Nome {
				t.Categoria = newName
			}
		}
	}
	if m.Goals != nil {
		for _, g := range m.Goals.Goals {
			if g.ClientID == clientID && g.Categoria == old.Nome {
				g.Categoria = newName
			}
		}
	}
	delete(m.Categories, id)
	return created, nil
}

// Delete removes a category
func (m *MockCategoryRepository) Delete(ctx context.Context, clientID, id int32) error {
	if _, err := m.GetByID(ctx, clientID, id); err != nil {
		return err
	}
	delete(m.Categories, id)
	return nil
}

// AddCategory stores a category as-is (helper for tests)
func (m *MockCategoryRepository) AddCategory(c *domain.Category) {
	if c.ID == 0 {
		c.ID = m.NextID
	}
	if c.ID >= m.NextID {
		m.NextID = c.ID + 1
	}
	m.Categories[c.ID] = c
}

// MockGoalRepository is a mock implementation of domain.GoalRepository
type MockGoalRepository struct {
	Goals        map[int32]*domain.Goal
	NextID       int32
	GetByMonthFn func(clientID int32, year, month int) ([]*domain.Goal, error)
}

// NewMockGoalRepository creates a new MockGoalRepository
func NewMockGoalRepository() *MockGoalRepository {
	return &MockGoalRepository{
		Goals:  make(map[int32]*domain.Goal),
		NextID: 1,
	}
}

func (m *MockGoalRepository) duplicate(g *domain.Goal) bool {
	for _, other := range m.Goals {
		if other.ID != g.ID && other.ClientID == g.ClientID && other.Categoria == g.Categoria &&
			other.Mes == g.Mes && other.Ano == g.Ano {
			return true
		}
	}
	return false
}

// Create creates a goal, rejecting a second goal for the same category and month
func (m *MockGoalRepository) Create(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	if m.duplicate(goal) {
		return nil, domain.ErrGoalAlreadyExists
	}
	goal.ID = m.NextID
	m.NextID++
	m.Goals[goal.ID] = goal
	return goal, nil
}

// GetByID retrieves a goal by ID within a client
func (m *MockGoalRepository) GetByID(ctx context.Context, clientID, id int32) (*domain.Goal, error) {
	g, ok := m.Goals[id]
	if !ok || g.ClientID != clientID {
		return nil, domain.ErrGoalNotFound
	}
	return g, nil
}

// GetByMonth lists a client's goals for one month
func (m *MockGoalRepository) GetByMonth(ctx context.Context, clientID int32, year, month int) ([]*domain.Goal, error) {
	if m.GetByMonthFn != nil {
		return m.GetByMonthFn(clientID, year, month)
	}
	out := []*domain.Goal{}
	for _, g := range m.Goals {
		if g.ClientID == clientID && g.Ano == year && g.Mes == month {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Categoria != out[j].Categoria {
			return out[i].Categoria < out[j].Categoria
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Update updates a goal
func (m *MockGoalRepository) Update(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	if _, err := m.GetByID(ctx, goal.ClientID, goal.ID); err != nil {
		return nil, err
	}
	if m.duplicate(goal) {
		return nil, domain.ErrGoalAlreadyExists
	}
	m.Goals[goal.ID] = goal
	return goal, nil
}

// Delete removes a goal
func (m *MockGoalRepository) Delete(ctx context.Context, clientID, id int32) error {
	if _, err := m.GetByID(ctx, clientID, id); err != nil {
		return err
	}
	delete(m.Goals, id)
	return nil
}

// AddGoal stores a goal as-is (helper for tests)
func (m *MockGoalRepository) AddGoal(g *domain.Goal) {
	if g.ID == 0 {
		g.ID = m.NextID
	}
	if g.ID >= m.NextID {
		m.NextID = g.ID + 1
	}
	m.Goals[g.ID] = g
}

// MockReminderRepository is a mock implementation of domain.ReminderRepository.
// It is safe for concurrent use.
type MockReminderRepository struct {
	mu        sync.Mutex
	Reminders map[int32]*domain.Reminder
	NextID    int32
	CreateFn  func(ctx context.Context, reminder *domain.Reminder) (*domain.Reminder, error)
	DeleteFn  func(clientID, id int32) error
}

// NewMockReminderRepository creates a new MockReminderRepository
func NewMockReminderRepository() *MockReminderRepository {
	return &MockReminderRepository{
		Reminders: make(map[int32]*domain.Reminder),
		NextID:    1,
	}
}

// Create creates a reminder
func (m *MockReminderRepository) Create(ctx context.Context, reminder *domain.Reminder) (*domain.Reminder, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, reminder)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	reminder.ID = m.NextID
	m.NextID++
	m.Reminders[reminder.ID] = reminder
	return reminder, nil
}

// GetByID retrieves a reminder by ID within a client
func (m *MockReminderRepository) GetByID(ctx context.Context, clientID, id int32) (*domain.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Reminders[id]
	if !ok || r.ClientID != clientID {
		return nil, domain.ErrReminderNotFound
	}
	return r, nil
}

// GetByClient lists a client's reminders by due date
func (m *MockReminderRepository) GetByClient(ctx context.Context, clientID int32) ([]*domain.Reminder, error) {
	return m.filter(func(r *domain.Reminder) bool { return r.ClientID == clientID }), nil
}

// GetPendingUntil lists reminders not yet notified and due on or before until
func (m *MockReminderRepository) GetPendingUntil(ctx context.Context, until time.Time) ([]*domain.Reminder, error) {
	limit := until.Format(util.DateLayout)
	return m.filter(func(r *domain.Reminder) bool {
		return r.NotificadoEm == nil && r.Vencimento <= limit
	}), nil
}

// GetOverdueFixed lists fixo reminders due before the given date
func (m *MockReminderRepository) GetOverdueFixed(ctx context.Context, before time.Time) ([]*domain.Reminder, error) {
	limit := before.Format(util.DateLayout)
	return m.filter(func(r *domain.Reminder) bool {
		return r.Tipo == domain.ReminderTypeFixed && r.Vencimento < limit
	}), nil
}

// Update updates a reminder, re-arming the notification when the due date changes
func (m *MockReminderRepository) Update(ctx context.Context, reminder *domain.Reminder) (*domain.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Reminders[reminder.ID]
	if !ok || existing.ClientID != reminder.ClientID {
		return nil, domain.ErrReminderNotFound
	}
	if existing.Vencimento != reminder.Vencimento {
		reminder.NotificadoEm = nil
	} else {
		reminder.NotificadoEm = existing.NotificadoEm
	}
	m.Reminders[reminder.ID] = reminder
	return reminder, nil
}

// MarkNotified records the notification time
func (m *MockReminderRepository) MarkNotified(ctx context.Context, id int32, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Reminders[id]
	if !ok {
		return domain.ErrReminderNotFound
	}
	r.NotificadoEm = &at
	return nil
}

// Reschedule moves a reminder to a new due date and clears its notification mark
func (m *MockReminderRepository) Reschedule(ctx context.Context, id int32, vencimento time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Reminders[id]
	if !ok {
		return domain.ErrReminderNotFound
	}
	r.Vencimento = vencimento.Format(util.DateLayout)
	r.NotificadoEm = nil
	return nil
}

// Delete removes a reminder
func (m *MockReminderRepository) Delete(ctx context.Context, clientID, id int32) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(clientID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Reminders[id]
	if !ok || r.ClientID != clientID {
		return domain.ErrReminderNotFound
	}
	delete(m.Reminders, id)
	return nil
}

// AddReminder stores a reminder as-is (helper for tests)
func (m *MockReminderRepository) AddReminder(r *domain.Reminder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == 0 {
		r.ID = m.NextID
	}
	if r.ID >= m.NextID {
		m.NextID = r.ID + 1
	}
	m.Reminders[r.ID] = r
}

func (m *MockReminderRepository) filter(keep func(*domain.Reminder) bool) []*domain.Reminder {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Reminder{}
	for _, r := range m.Reminders {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Vencimento != out[j].Vencimento {
			return out[i].Vencimento < out[j].Vencimento
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// MockObjectStore is an in-memory storage.ObjectStore
type MockObjectStore struct {
	mu       sync.Mutex
	Objects  map[string][]byte
	Types    map[string]string
	UploadFn func(objectPath string) error
}

// NewMockObjectStore creates a new MockObjectStore
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{
		Objects: make(map[string][]byte),
		Types:   make(map[string]string),
	}
}

// Upload stores the object and returns its path
func (m *MockObjectStore) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadFn != nil {
		if err := m.UploadFn(objectPath); err != nil {
			return "", err
		}
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectPath] = buf.Bytes()
	m.Types[objectPath] = contentType
	return objectPath, nil
}

// Delete removes an object
func (m *MockObjectStore) Delete(ctx context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, objectPath)
	delete(m.Types, objectPath)
	return nil
}

// GeneratePresignedURL returns a fake signed URL for the object
func (m *MockObjectStore) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.test/%s?expires=%d", objectPath, int(expiry.Seconds())), nil
}

// Count returns the number of stored objects
func (m *MockObjectStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Objects)
}

// MockReminderPublisher records published reminder messages
type MockReminderPublisher struct {
	mu        sync.Mutex
	Messages  []*messaging.ReminderDueMessage
	PublishFn func(msg *messaging.ReminderDueMessage) error
}

// PublishReminderDue records the message
func (m *MockReminderPublisher) PublishReminderDue(ctx context.Context, msg *messaging.ReminderDueMessage) error {
	if m.PublishFn != nil {
		if err := m.PublishFn(msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, msg)
	return nil
}

// Published returns a copy of the recorded messages
func (m *MockReminderPublisher) Published() []*messaging.ReminderDueMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*messaging.ReminderDueMessage, len(m.Messages))
	copy(out, m.Messages)
	return out
}

// PublishedEvent is one event captured by MockEventPublisher
type PublishedEvent struct {
	ClientID int32
	Event    websocket.Event
}

// MockEventPublisher records websocket events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// Publish records the event
func (m *MockEventPublisher) Publish(clientID int32, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{ClientID: clientID, Event: event})
}

// Types returns the recorded event types in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Event.Type
	}
	return out
}
