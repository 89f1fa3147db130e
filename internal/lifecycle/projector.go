package lifecycle

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Reader loads a contact batch's active rows per report family. Each call is
// one batched query; the projector fans the four out in parallel.
type Reader interface {
	WinbacksByContacts(ctx context.Context, agencyID uuid.UUID, contactIDs []uuid.UUID) (map[uuid.UUID][]Winback, error)
	CancelAuditsByContacts(ctx context.Context, agencyID uuid.UUID, contactIDs []uuid.UUID) (map[uuid.UUID][]CancelAudit, error)
	RenewalsByContacts(ctx context.Context, agencyID uuid.UUID, contactIDs []uuid.UUID) (map[uuid.UUID][]Renewal, error)
	SalesByContacts(ctx context.Context, agencyID uuid.UUID, contactIDs []uuid.UUID) (map[uuid.UUID][]Sale, error)
}

// Projector annotates contacts with their derived stage on read. It has no
// write side effects, so it can be swapped for a materialized view later
// without changing the ResolveStage contract.
type Projector struct {
	reader Reader
}

// NewProjector creates a read-side stage projector.
func NewProjector(reader Reader) *Projector {
	return &Projector{reader: reader}
}

// StageFor derives the stage for one contact.
func (p *Projector) StageFor(ctx context.Context, agencyID, contactID uuid.UUID) (Stage, error) {
	stages, err := p.StagesFor(ctx, agencyID, []uuid.UUID{contactID})
	if err != nil {
		return "", err
	}
	return stages[contactID], nil
}

// StagesFor derives stages for a contact batch. The four record families are
// loaded concurrently; every requested contact gets an entry (contacts with
// no records resolve to the default stage).
func (p *Projector) StagesFor(ctx context.Context, agencyID uuid.UUID, contactIDs []uuid.UUID) (map[uuid.UUID]Stage, error) {
	if len(contactIDs) == 0 {
		return map[uuid.UUID]Stage{}, nil
	}

	var (
		winbacks     map[uuid.UUID][]Winback
		cancelAudits map[uuid.UUID][]CancelAudit
		renewals     map[uuid.UUID][]Renewal
		sales        map[uuid.UUID][]Sale
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		winbacks, err = p.reader.WinbacksByContacts(gctx, agencyID, contactIDs)
		return err
	})
	g.Go(func() error {
		var err error
		cancelAudits, err = p.reader.CancelAuditsByContacts(gctx, agencyID, contactIDs)
		return err
	})
	g.Go(func() error {
		var err error
		renewals, err = p.reader.RenewalsByContacts(gctx, agencyID, contactIDs)
		return err
	})
	g.Go(func() error {
		var err error
		sales, err = p.reader.SalesByContacts(gctx, agencyID, contactIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stages := make(map[uuid.UUID]Stage, len(contactIDs))
	for _, id := range contactIDs {
		stages[id] = ResolveStage(Records{
			Winbacks:     winbacks[id],
			CancelAudits: cancelAudits[id],
			Renewals:     renewals[id],
			Sales:        sales[id],
		})
	}

	return stages, nil
}
