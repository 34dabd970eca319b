package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/marmora-backend/internal/data/repos"
	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/dbctx"
)

type DashboardStats struct {
	Products          int64            `json:"products"`
	PublishedProducts int64            `json:"published_products"`
	Quotes            map[string]int64 `json:"quotes"`
	QuotesTotal       int64            `json:"quotes_total"`
	UnreadContacts    int64            `json:"unread_contacts"`
}

type StatsService interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
}

type statsService struct {
	productRepo repos.ProductRepo
	quotes      QuoteService
	contacts    ContactService
}

func NewStatsService(productRepo repos.ProductRepo, quotes QuoteService, contacts ContactService) StatsService {
	return &statsService{productRepo: productRepo, quotes: quotes, contacts: contacts}
}

func (s *statsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	out := &DashboardStats{Quotes: map[string]int64{}}
	var byStatus map[types.QuoteStatus]int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Products, err = s.productRepo.Count(dbctx.Context{Ctx: gctx}, false)
		return err
	})
	g.Go(func() (err error) {
		out.PublishedProducts, err = s.productRepo.Count(dbctx.Context{Ctx: gctx}, true)
		return err
	})
	g.Go(func() (err error) {
		byStatus, err = s.quotes.CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.UnreadContacts, err = s.contacts.CountUnread(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}

	for _, st := range types.QuoteStatuses() {
		n := byStatus[st]
		out.Quotes[string(st)] = n
		out.QuotesTotal += n
	}
	return out, nil
}
