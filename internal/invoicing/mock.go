package invoicing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// MockClient implements Client for testing.
type MockClient struct {
	mu sync.Mutex

	// Function fields allow tests to customize behavior
	FindInvoiceByOrderIDFunc func(ctx context.Context, orderID string) (*Invoice, error)
	GetContactByEmailFunc    func(ctx context.Context, email string) (*Contact, error)
	CreateContactFunc        func(ctx context.Context, params ContactParams) (*Contact, error)
	UpdateContactFunc        func(ctx context.Context, contactID int64, params ContactParams) (*Contact, error)
	CreateInvoiceFunc        func(ctx context.Context, params CreateInvoiceParams) (*Invoice, error)
	GetInvoicePDFFunc        func(ctx context.Context, invoiceID string) ([]byte, error)

	// State stores
	Invoices  map[string]*Invoice // keyed by invoice ID
	Contacts  map[int64]*Contact
	nextID    int64
	PDFs      map[string][]byte

	// Call tracking
	CallLog []string
}

// NewMockClient creates a mock invoicing client with empty stores.
func NewMockClient() *MockClient {
	return &MockClient{
		Invoices: make(map[string]*Invoice),
		Contacts: make(map[int64]*Contact),
		PDFs:     make(map[string][]byte),
		CallLog:  []string{},
	}
}

func (m *MockClient) FindInvoiceByOrderID(ctx context.Context, orderID string) (*Invoice, error) {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, fmt.Sprintf("FindInvoiceByOrderID(%s)", orderID))
	m.mu.Unlock()

	if m.FindInvoiceByOrderIDFunc != nil {
		return m.FindInvoiceByOrderIDFunc(ctx, orderID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.Invoices {
		if inv.OrderID == orderID {
			return inv, nil
		}
	}
	return nil, nil
}

func (m *MockClient) GetContactByEmail(ctx context.Context, email string) (*Contact, error) {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, fmt.Sprintf("GetContactByEmail(%s)", email))
	m.mu.Unlock()

	if m.GetContactByEmailFunc != nil {
		return m.GetContactByEmailFunc(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Contacts {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (m *MockClient) CreateContact(ctx context.Context, params ContactParams) (*Contact, error) {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateContact(%s)", params.Email))
	m.mu.Unlock()

	if m.CreateContactFunc != nil {
		return m.CreateContactFunc(ctx, params)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	contact := &Contact{
		ID:         m.nextID,
		Name:       params.Name,
		Email:      params.Email,
		Phone:      params.Phone,
		Address:    params.Address,
		City:       params.City,
		PostalCode: params.PostalCode,
		Country:    params.Country,
		ICO:        params.ICO,
		DIC:        params.DIC,
		ICDPH:      params.ICDPH,
	}
	m.Contacts[contact.ID] = contact
	return contact, nil
}

func (m *MockClient) UpdateContact(ctx context.Context, contactID int64, params ContactParams) (*Contact, error) {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, fmt.Sprintf("UpdateContact(%d)", contactID))
	m.mu.Unlock()

	if m.UpdateContactFunc != nil {
		return m.UpdateContactFunc(ctx, contactID, params)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	contact, ok := m.Contacts[contactID]
	if !ok {
		return nil, ErrContactNotFound
	}
	contact.Name = params.Name
	contact.Phone = params.Phone
	contact.Address = params.Address
	contact.City = params.City
	contact.PostalCode = params.PostalCode
	contact.Country = params.Country
	contact.ICO = params.ICO
	contact.DIC = params.DIC
	contact.ICDPH = params.ICDPH
	return contact, nil
}

func (m *MockClient) CreateInvoice(ctx context.Context, params CreateInvoiceParams) (*Invoice, error) {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateInvoice(%s)", params.OrderID))
	m.mu.Unlock()

	if m.CreateInvoiceFunc != nil {
		return m.CreateInvoiceFunc(ctx, params)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	total := decimal.Zero
	for _, item := range params.Items {
		total = total.Add(item.Total())
	}
	invoice := &Invoice{
		ID:          fmt.Sprintf("inv_%d", m.nextID),
		Number:      fmt.Sprintf("2026%04d", m.nextID),
		OrderID:     params.OrderID,
		TotalAmount: total,
		CreatedAt:   time.Now(),
	}
	m.Invoices[invoice.ID] = invoice
	return invoice, nil
}

func (m *MockClient) GetInvoicePDF(ctx context.Context, invoiceID string) ([]byte, error) {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, fmt.Sprintf("GetInvoicePDF(%s)", invoiceID))
	m.mu.Unlock()

	if m.GetInvoicePDFFunc != nil {
		return m.GetInvoicePDFFunc(ctx, invoiceID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if pdf, ok := m.PDFs[invoiceID]; ok {
		return pdf, nil
	}
	if _, ok := m.Invoices[invoiceID]; ok {
		return []byte("%PDF-1.4 mock"), nil
	}
	return nil, ErrInvoiceNotFound
}

// CallCount returns how many logged calls start with the given prefix.
func (m *MockClient) CallCount(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, call := range m.CallLog {
		if len(call) >= len(prefix) && call[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}
