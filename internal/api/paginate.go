package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arcanaland/altered-scribe/internal/card"
)

// FetchFaction walks every page of one faction in one language.
//
// The catalog can change between requests: when a later page reports a total
// different from page 1, everything collected so far is dropped and the walk
// starts over.
func (c *Client) FetchFaction(ctx context.Context, lang card.Language, faction, token string) ([]card.RawCard, error) {
	for restarts := 0; ; restarts++ {
		cards, total, stable, err := c.walkFaction(ctx, lang, faction, token)
		if err != nil {
			return nil, err
		}
		if !stable {
			if restarts >= c.maxRestarts {
				return nil, fmt.Errorf("api: %s/%s: %w", lang, faction, ErrCatalogUnstable)
			}
			continue
		}
		if len(cards) != total {
			return nil, fmt.Errorf("api: %s/%s: got %d cards, expected %d: %w",
				lang, faction, len(cards), total, ErrCountMismatch)
		}
		return cards, nil
	}
}

// walkFaction runs one pagination pass. stable is false when the total
// changed mid-walk.
func (c *Client) walkFaction(ctx context.Context, lang card.Language, faction, token string) (cards []card.RawCard, total int, stable bool, err error) {
	for page := 1; ; page++ {
		p, err := c.FetchPage(ctx, Query{
			Language:     lang,
			Faction:      faction,
			Page:         page,
			ItemsPerPage: c.itemsPerPage,
			Rarities:     c.rarities,
			Token:        token,
		})
		if err != nil {
			return nil, 0, false, err
		}

		if page == 1 {
			total = p.TotalItems
		} else if p.TotalItems != total {
			c.log.WarnContext(ctx, "catalog total changed, restarting faction",
				slog.String("language", string(lang)),
				slog.String("faction", faction),
				slog.Int("page", page),
				slog.Int("was", total),
				slog.Int("now", p.TotalItems),
			)
			return nil, 0, false, nil
		}

		cards = append(cards, p.Cards...)
		if len(p.Cards) == 0 || len(cards) >= total {
			return cards, total, true, nil
		}
	}
}

// FetchLanguage fetches every faction of the catalog in lang.
func (c *Client) FetchLanguage(ctx context.Context, lang card.Language, token string) ([]card.RawCard, error) {
	var all []card.RawCard
	for _, faction := range Factions {
		cards, err := c.FetchFaction(ctx, lang, faction, token)
		if err != nil {
			return nil, err
		}
		c.log.InfoContext(ctx, "fetched faction",
			slog.String("language", string(lang)),
			slog.String("faction", faction),
			slog.Int("cards", len(cards)),
		)
		all = append(all, cards...)
	}
	return all, nil
}
