package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"discdb/internal/contribution"
)

// FindDiscsByFingerprint returns every stored disc with fingerprint fp,
// ordered by contribution and disc index.
func (s *Store) FindDiscsByFingerprint(ctx context.Context, fp string) ([]contribution.DiscMatch, error) {
	fp = strings.TrimSpace(fp)
	if fp == "" {
		return nil, nil
	}
	ctx = ensureContext(ctx)
	var matches []contribution.DiscMatch
	err := retryOnBusy(ctx, func() error {
		rows, err := s.db.QueryContext(ctx,
			`SELECT contribution_id, disc_index, name, fingerprint
            FROM discs WHERE fingerprint = ? ORDER BY contribution_id, disc_index`, fp)
		if err != nil {
			return fmt.Errorf("find discs by fingerprint: %w", err)
		}
		defer rows.Close()
		matches = matches[:0]
		for rows.Next() {
			var (
				m    contribution.DiscMatch
				name sql.NullString
			)
			if err := rows.Scan(&m.ContributionID, &m.DiscIndex, &name, &m.Fingerprint); err != nil {
				return fmt.Errorf("scan disc match: %w", err)
			}
			m.DiscName = name.String
			matches = append(matches, m)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// FindContributionsByDiscHash returns the ids of contributions that
// recorded stream files under discHash.
func (s *Store) FindContributionsByDiscHash(ctx context.Context, discHash string) ([]int64, error) {
	discHash = strings.TrimSpace(discHash)
	if discHash == "" {
		return nil, nil
	}
	ctx = ensureContext(ctx)
	var ids []int64
	err := retryOnBusy(ctx, func() error {
		rows, err := s.db.QueryContext(ctx,
			`SELECT DISTINCT contribution_id FROM hash_items WHERE disc_hash = ? ORDER BY contribution_id`, discHash)
		if err != nil {
			return fmt.Errorf("find contributions by disc hash: %w", err)
		}
		defer rows.Close()
		ids = ids[:0]
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return fmt.Errorf("scan contribution id: %w", err)
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
