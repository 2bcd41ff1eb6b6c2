package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cristianortiz/dutchAuction/internal/auction/domain"
	"github.com/google/uuid"
)

// PhaseFilter selects which open auctions the public listing shows.
type PhaseFilter string

const (
	PhaseFilterAll       PhaseFilter = "all"
	PhaseFilterLive      PhaseFilter = "live"
	PhaseFilterScheduled PhaseFilter = "scheduled"
)

// SortOrder orders the listing by a value computed at query time.
type SortOrder string

const (
	SortPriceAsc        SortOrder = "price_asc"
	SortPriceDesc       SortOrder = "price_desc"
	SortTemperatureAsc  SortOrder = "temperature_asc"
	SortTemperatureDesc SortOrder = "temperature_desc"
	SortEndingSoon      SortOrder = "ending_soon"
	SortStartingSoon    SortOrder = "starting_soon"
)

// ListAuctionsDTO is the input DTO for ListAuctions; zero values mean all phases, ending soonest first.
type ListAuctionsDTO struct {
	Phase   PhaseFilter
	Sort    SortOrder
	StoreID *uuid.UUID
}

// ListAuctionsUseCase backs the public auctions page. Every auction in one
// response is priced at the same instant so the ordering is consistent.
type ListAuctionsUseCase struct {
	auctionRepo domain.AuctionRepository
	now         func() time.Time
}

func NewListAuctionsUseCase(auctionRepo domain.AuctionRepository) *ListAuctionsUseCase {
	return &ListAuctionsUseCase{
		auctionRepo: auctionRepo,
		now:         time.Now,
	}
}

func (uc *ListAuctionsUseCase) Execute(ctx context.Context, query ListAuctionsDTO) ([]*AuctionQuoteDTO, error) {
	phase := query.Phase
	if phase == "" {
		phase = PhaseFilterAll
	}
	order := query.Sort
	if order == "" {
		order = SortEndingSoon
	}
	less, err := lessFor(order)
	if err != nil {
		return nil, err
	}
	if phase != PhaseFilterAll && phase != PhaseFilterLive && phase != PhaseFilterScheduled {
		return nil, fmt.Errorf("%w: unknown phase %q", ErrInvalidQuery, phase)
	}

	auctions, err := uc.auctionRepo.List(ctx, domain.ListFilter{
		Statuses: []domain.AuctionStatus{domain.StatusOpen},
		StoreID:  query.StoreID,
	})
	if err != nil {
		return nil, fmt.Errorf("list auctions use case: %w", err)
	}

	now := uc.now()
	quotes := make([]*AuctionQuoteDTO, 0, len(auctions))
	for _, a := range auctions {
		p := a.Phase(now)
		switch {
		case p == domain.PhaseEnded:
			continue
		case phase == PhaseFilterLive && p != domain.PhaseLive:
			continue
		case phase == PhaseFilterScheduled && p != domain.PhaseScheduled:
			continue
		}
		quotes = append(quotes, NewAuctionQuote(a, now))
	}

	sort.SliceStable(quotes, func(i, j int) bool { return less(quotes[i], quotes[j]) })
	return quotes, nil
}

func lessFor(order SortOrder) (func(a, b *AuctionQuoteDTO) bool, error) {
	switch order {
	case SortPriceAsc:
		return func(a, b *AuctionQuoteDTO) bool { return a.CurrentPrice.LessThan(b.CurrentPrice) }, nil
	case SortPriceDesc:
		return func(a, b *AuctionQuoteDTO) bool { return a.CurrentPrice.GreaterThan(b.CurrentPrice) }, nil
	case SortTemperatureAsc:
		return func(a, b *AuctionQuoteDTO) bool { return a.Temperature.LessThan(b.Temperature) }, nil
	case SortTemperatureDesc:
		return func(a, b *AuctionQuoteDTO) bool { return a.Temperature.GreaterThan(b.Temperature) }, nil
	case SortEndingSoon:
		return func(a, b *AuctionQuoteDTO) bool { return a.EndsAt.Before(b.EndsAt) }, nil
	case SortStartingSoon:
		return func(a, b *AuctionQuoteDTO) bool { return a.StartsAt.Before(b.StartsAt) }, nil
	}
	return nil, fmt.Errorf("%w: unknown sort %q", ErrInvalidQuery, order)
}
