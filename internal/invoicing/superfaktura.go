package invoicing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://moja.superfaktura.sk"

// SuperFakturaClient implements Client against the SuperFaktura API.
type SuperFakturaClient struct {
	email   string
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewSuperFakturaClient creates a SuperFaktura invoicing client.
// baseURL may be empty to use the production endpoint; tests point it
// at an httptest server.
func NewSuperFakturaClient(email, apiKey, baseURL string) *SuperFakturaClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &SuperFakturaClient{
		email:   email,
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Wire types. SuperFaktura wraps entities in named envelopes and
// reports failures in-band via the Error field.

type sfEnvelope struct {
	Error        int             `json:"error"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Data         json.RawMessage `json:"data,omitempty"`
}

type sfInvoice struct {
	ID          json.Number `json:"id"`
	InvoiceNo   string      `json:"invoice_no_formatted"`
	OrderNo     string      `json:"order_no"`
	Amount      json.Number `json:"amount"`
	Created     string      `json:"created"`
}

type sfInvoiceRecord struct {
	Invoice sfInvoice `json:"Invoice"`
}

type sfClient struct {
	ID      json.Number `json:"id"`
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Phone   string      `json:"phone"`
	Address string      `json:"address"`
	City    string      `json:"city"`
	Zip     string      `json:"zip"`
	Country string      `json:"country"`
	ICO     string      `json:"ico"`
	DIC     string      `json:"dic"`
	ICDPH   string      `json:"ic_dph"`
}

type sfClientRecord struct {
	Client sfClient `json:"Client"`
}

type sfInvoiceItem struct {
	Name      string `json:"name"`
	Quantity  int32  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Tax       int    `json:"tax"`
}

type sfCreateInvoice struct {
	Invoice struct {
		Type           string `json:"type"`
		OrderNo        string `json:"order_no"`
		VariableSymbol string `json:"variable"`
		Comment        string `json:"comment,omitempty"`
		Currency       string `json:"currency"`
		ClientID       int64  `json:"client_id"`
	} `json:"Invoice"`
	InvoiceItem []sfInvoiceItem `json:"InvoiceItem"`
}

// FindInvoiceByOrderID searches issued invoices by their order number.
func (c *SuperFakturaClient) FindInvoiceByOrderID(ctx context.Context, orderID string) (*Invoice, error) {
	q := url.Values{}
	q.Set("search", orderID)
	q.Set("type", "regular")

	var records []sfInvoiceRecord
	if err := c.do(ctx, http.MethodGet, "/invoices/index.json?"+q.Encode(), nil, &records); err != nil {
		return nil, fmt.Errorf("superfaktura: search invoices: %w", err)
	}

	// The search matches loosely; require an exact order-number match.
	for _, rec := range records {
		if rec.Invoice.OrderNo == orderID {
			return convertInvoice(rec.Invoice), nil
		}
	}
	return nil, nil
}

// GetContactByEmail searches billing contacts by email.
func (c *SuperFakturaClient) GetContactByEmail(ctx context.Context, email string) (*Contact, error) {
	q := url.Values{}
	q.Set("search", email)

	var records []sfClientRecord
	if err := c.do(ctx, http.MethodGet, "/clients/index.json?"+q.Encode(), nil, &records); err != nil {
		return nil, fmt.Errorf("superfaktura: search clients: %w", err)
	}

	for _, rec := range records {
		if rec.Client.Email == email {
			return convertContact(rec.Client), nil
		}
	}
	return nil, nil
}

// CreateContact creates a billing contact.
func (c *SuperFakturaClient) CreateContact(ctx context.Context, params ContactParams) (*Contact, error) {
	body := sfClientRecord{Client: contactToWire(params)}

	var created sfClientRecord
	if err := c.do(ctx, http.MethodPost, "/clients/create", body, &created); err != nil {
		return nil, fmt.Errorf("superfaktura: create client: %w", err)
	}
	return convertContact(created.Client), nil
}

// UpdateContact overwrites a contact's address and tax fields.
func (c *SuperFakturaClient) UpdateContact(ctx context.Context, contactID int64, params ContactParams) (*Contact, error) {
	wire := contactToWire(params)
	wire.ID = json.Number(strconv.FormatInt(contactID, 10))
	body := sfClientRecord{Client: wire}

	var updated sfClientRecord
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/clients/edit/%d", contactID), body, &updated); err != nil {
		return nil, fmt.Errorf("superfaktura: update client %d: %w", contactID, err)
	}
	return convertContact(updated.Client), nil
}

// CreateInvoice issues an invoice document.
func (c *SuperFakturaClient) CreateInvoice(ctx context.Context, params CreateInvoiceParams) (*Invoice, error) {
	var body sfCreateInvoice
	body.Invoice.Type = "regular"
	body.Invoice.OrderNo = params.OrderID
	body.Invoice.VariableSymbol = params.OrderID
	body.Invoice.Comment = params.Comment
	body.Invoice.Currency = params.Currency
	body.Invoice.ClientID = params.ContactID

	body.InvoiceItem = make([]sfInvoiceItem, len(params.Items))
	for i, item := range params.Items {
		body.InvoiceItem[i] = sfInvoiceItem{
			Name:      item.Description,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.String(),
			Tax:       0,
		}
	}

	var created sfInvoiceRecord
	if err := c.do(ctx, http.MethodPost, "/invoices/create", body, &created); err != nil {
		return nil, fmt.Errorf("superfaktura: create invoice: %w", err)
	}
	return convertInvoice(created.Invoice), nil
}

// GetInvoicePDF downloads the rendered invoice PDF.
func (c *SuperFakturaClient) GetInvoicePDF(ctx context.Context, invoiceID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/invoices/pdf/"+invoiceID, nil)
	if err != nil {
		return nil, fmt.Errorf("superfaktura: create request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("superfaktura: fetch pdf: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrInvoiceNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("superfaktura: pdf fetch failed (status %d)", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// do issues a request and decodes the response envelope into out.
func (c *SuperFakturaClient) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", c.authHeader())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var envelope sfEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if envelope.Error != 0 {
		return fmt.Errorf("API error %d: %s", envelope.Error, envelope.ErrorMessage)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("parse response data: %w", err)
		}
	}
	return nil
}

func (c *SuperFakturaClient) authHeader() string {
	return fmt.Sprintf("SFAPI email=%s&apikey=%s&module=shop", url.QueryEscape(c.email), c.apiKey)
}

func contactToWire(params ContactParams) sfClient {
	return sfClient{
		Name:    params.Name,
		Email:   params.Email,
		Phone:   params.Phone,
		Address: params.Address,
		City:    params.City,
		Zip:     params.PostalCode,
		Country: params.Country,
		ICO:     params.ICO,
		DIC:     params.DIC,
		ICDPH:   params.ICDPH,
	}
}

func convertInvoice(inv sfInvoice) *Invoice {
	amount, _ := decimal.NewFromString(inv.Amount.String())
	created, _ := time.Parse("2006-01-02 15:04:05", inv.Created)
	return &Invoice{
		ID:          inv.ID.String(),
		Number:      inv.InvoiceNo,
		OrderID:     inv.OrderNo,
		TotalAmount: amount,
		CreatedAt:   created,
	}
}

func convertContact(cl sfClient) *Contact {
	id, _ := cl.ID.Int64()
	return &Contact{
		ID:         id,
		Name:       cl.Name,
		Email:      cl.Email,
		Phone:      cl.Phone,
		Address:    cl.Address,
		City:       cl.City,
		PostalCode: cl.Zip,
		Country:    cl.Country,
		ICO:        cl.ICO,
		DIC:        cl.DIC,
		ICDPH:      cl.ICDPH,
	}
}
