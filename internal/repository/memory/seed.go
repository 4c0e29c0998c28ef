package memory

import (
	"context"

	"github.com/guregu/null/v5"

	"github.com/supporthub/support-dashboard/internal/domain"
)

// Seed fills the store with a small demo data set for running without a database.
func Seed(ctx context.Context, s *Store) error {
	acme := s.AddCustomer(domain.Customer{Name: "Ada Lovelace", Company: "Acme Analytics", Email: "ada@acme.test", Phone: null.StringFrom("+1 555 0100")})
	globex := s.AddCustomer(domain.Customer{Name: "Hank Scorpio", Company: "Globex", Email: "hank@globex.test"})

	tickets := []domain.Ticket{
		{CustomerID: acme.ID, Title: "Cannot export reports", Description: "The CSV export button spins forever.", Priority: domain.TicketPriorityHigh, Category: domain.TicketCategoryBugReport},
		{CustomerID: globex.ID, Title: "Invoice shows wrong VAT", Description: "March invoice applied 21% instead of 19%.", Priority: domain.TicketPriorityUrgent, Category: domain.TicketCategoryBilling},
		{CustomerID: acme.ID, Title: "Dark mode please", Description: "Our analysts work nights.", Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryFeatureRequest},
	}
	repo := s.Tickets()
	for i := range tickets {
		tickets[i].Status = domain.TicketStatusOpen
		if err := repo.Create(ctx, &tickets[i]); err != nil {
			return err
		}
		s.AddMessage(domain.TicketMessage{
			TicketID:   tickets[i].ID,
			SenderType: domain.SenderCustomer,
			SenderName: map[string]string{acme.ID: acme.Name, globex.ID: globex.Name}[tickets[i].CustomerID],
			Message:    tickets[i].Description,
		})
	}
	if _, err := repo.UpdateStatus(ctx, tickets[0].ID, domain.TicketStatusInProgress, nil); err != nil {
		return err
	}

	articles := []domain.Article{
		{Title: "Exporting reports", Content: "Use **Reports → Export**. Large exports are emailed.", Category: "Reports", Tags: []string{"export", "csv"}},
		{Title: "Understanding your invoice", Content: "Invoices are issued on the 1st.\n\n- VAT follows your billing country.", Category: "Billing", Tags: []string{"invoice", "vat"}},
	}
	for i := range articles {
		if err := s.Articles().Create(ctx, &articles[i]); err != nil {
			return err
		}
	}
	return nil
}
