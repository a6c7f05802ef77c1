package store

import (
	"context"
	"time"

	"github.com/solaros/solar-os/internal/domain"
)

// ============================================================================
// Invoices
// ============================================================================

// ListInvoices returns all invoices in insertion order
func (s *Store) ListInvoices() []domain.Invoice {
	var out []domain.Invoice
	s.read(func(st *domain.State) { out = st.Invoices.Items() })
	return out
}

// GetInvoice returns an invoice by id
func (s *Store) GetInvoice(id string) (domain.Invoice, error) {
	var (
		out domain.Invoice
		err error
	)
	s.read(func(st *domain.State) { out, err = getRecord(&st.Invoices, "invoice", id) })
	return out, err
}

// CreateInvoice adds an invoice
func (s *Store) CreateInvoice(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	var out domain.Invoice
	err := s.mutate(ctx, mutation{op: "create_invoice", collection: "invoices"}, func(st *domain.State, now time.Time, m *mutation) error {
		if inv.Status == "" {
			inv.Status = domain.InvoiceStatusDraft
		}
		if err := s.check(inv); err != nil {
			return err
		}
		out = insertRecord(&st.Invoices, inv, s.ids.New("INV"), now, nil)
		m.id = out.ID
		return nil
	})
	return out, err
}

// UpdateInvoice applies mutate to an invoice
func (s *Store) UpdateInvoice(ctx context.Context, id string, mutate func(*domain.Invoice)) (domain.Invoice, error) {
	var out domain.Invoice
	err := s.mutate(ctx, mutation{op: "update_invoice", collection: "invoices", id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		var err error
		out, err = updateRecord(&st.Invoices, "invoice", id, now, mutate, nil)
		if err != nil {
			return err
		}
		return s.check(out)
	})
	return out, err
}

// ============================================================================
// Payments
// ============================================================================

// ListPayments returns all payments in insertion order
func (s *Store) ListPayments() []domain.Payment {
	var out []domain.Payment
	s.read(func(st *domain.State) { out = st.Payments.Items() })
	return out
}

// PaymentsForInvoice returns the payments recorded against an invoice
func (s *Store) PaymentsForInvoice(invoiceID string) []domain.Payment {
	var out []domain.Payment
	s.read(func(st *domain.State) {
		for _, p := range st.Payments.Items() {
			if p.InvoiceID == invoiceID {
				out = append(out, p)
			}
		}
	})
	return out
}

// GetPayment returns a payment by id
func (s *Store) GetPayment(id string) (domain.Payment, error) {
	var (
		out domain.Payment
		err error
	)
	s.read(func(st *domain.State) { out, err = getRecord(&st.Payments, "payment", id) })
	return out, err
}

// CreatePayment records a payment. The referenced invoice is not checked or changed.
func (s *Store) CreatePayment(ctx context.Context, p domain.Payment) (domain.Payment, error) {
	var out domain.Payment
	err := s.mutate(ctx, mutation{op: "create_payment", collection: "payments"}, func(st *domain.State, now time.Time, m *mutation) error {
		if p.Status == "" {
			p.Status = domain.PaymentStatusPending
		}
		if err := s.check(p); err != nil {
			return err
		}
		out = insertRecord(&st.Payments, p, s.ids.New("PAY"), now, nil)
		m.id = out.ID
		return nil
	})
	return out, err
}

// UpdatePayment applies mutate to a payment
func (s *Store) UpdatePayment(ctx context.Context, id string, mutate func(*domain.Payment)) (domain.Payment, error) {
	var out domain.Payment
	err := s.mutate(ctx, mutation{op: "update_payment", collection: "payments", id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		var err error
		out, err = updateRecord(&st.Payments, "payment", id, now, mutate, nil)
		if err != nil {
			return err
		}
		return s.check(out)
	})
	return out, err
}
