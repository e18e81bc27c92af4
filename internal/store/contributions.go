package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"discdb/internal/contribution"
	"discdb/internal/disc"
)

// CreateContribution inserts c and its children. On success c carries the
// assigned ID, version 1 and the stored timestamps.
func (s *Store) CreateContribution(ctx context.Context, c *contribution.Contribution) error {
	if c == nil {
		return errors.New("create contribution: nil contribution")
	}
	now := time.Now().UTC()
	created := c.CreatedAt
	if created.IsZero() {
		created = now
	}
	status := c.Status
	if status == "" {
		status = contribution.StatusPending
	}

	var id int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO contributions (
                owner_id, status, version, media_type, external_provider, external_id,
                release_date, asin, upc, title, slug, region_code, locale,
                front_image_url, back_image_url, created_at, updated_at
            ) VALUES (?, ?, 1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.OwnerID,
			string(status),
			string(c.MediaType),
			nullableString(c.ExternalProvider),
			nullableString(c.ExternalID),
			nullableDate(c.Release.ReleaseDate),
			nullableString(c.Release.ASIN),
			nullableString(c.Release.UPC),
			nullableString(c.Release.Title),
			nullableString(c.Release.Slug),
			nullableString(c.Release.RegionCode),
			nullableString(c.Release.Locale),
			nullableString(c.Release.FrontImageURL),
			nullableString(c.Release.BackImageURL),
			formatTime(created),
			formatTime(now),
		)
		if err != nil {
			return fmt.Errorf("insert contribution: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		return insertChildren(ctx, tx, id, c)
	})
	if err != nil {
		return err
	}

	c.ID = id
	c.Status = status
	c.Version = 1
	c.CreatedAt = created
	c.UpdatedAt = now
	return nil
}

// SaveContribution writes c when the stored version still equals c.Version.
// Children are replaced wholesale. On success c.Version is incremented; a
// stale version yields *ConcurrencyConflictError and nothing is written.
func (s *Store) SaveContribution(ctx context.Context, c *contribution.Contribution) error {
	if c == nil {
		return errors.New("save contribution: nil contribution")
	}
	now := time.Now().UTC()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE contributions SET
                owner_id = ?, status = ?, version = version + 1, media_type = ?,
                external_provider = ?, external_id = ?, release_date = ?, asin = ?,
                upc = ?, title = ?, slug = ?, region_code = ?, locale = ?,
                front_image_url = ?, back_image_url = ?, updated_at = ?
            WHERE id = ? AND version = ?`,
			c.OwnerID,
			string(c.Status),
			string(c.MediaType),
			nullableString(c.ExternalProvider),
			nullableString(c.ExternalID),
			nullableDate(c.Release.ReleaseDate),
			nullableString(c.Release.ASIN),
			nullableString(c.Release.UPC),
			nullableString(c.Release.Title),
			nullableString(c.Release.Slug),
			nullableString(c.Release.RegionCode),
			nullableString(c.Release.Locale),
			nullableString(c.Release.FrontImageURL),
			nullableString(c.Release.BackImageURL),
			formatTime(now),
			c.ID,
			c.Version,
		)
		if err != nil {
			return fmt.Errorf("update contribution: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			var exists int
			if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM contributions WHERE id = ?", c.ID).Scan(&exists); err != nil {
				return fmt.Errorf("check contribution: %w", err)
			}
			if exists == 0 {
				return notFound(c.ID)
			}
			return &ConcurrencyConflictError{ID: c.ID, Version: c.Version}
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM discs WHERE contribution_id = ?", c.ID); err != nil {
			return fmt.Errorf("clear discs: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM hash_items WHERE contribution_id = ?", c.ID); err != nil {
			return fmt.Errorf("clear hash items: %w", err)
		}
		return insertChildren(ctx, tx, c.ID, c)
	})
	if err != nil {
		return err
	}

	c.Version++
	c.UpdatedAt = now
	return nil
}

// LoadContribution reads the contribution with id and all of its children
// from one read transaction.
func (s *Store) LoadContribution(ctx context.Context, id int64) (*contribution.Contribution, error) {
	ctx = ensureContext(ctx)
	var c *contribution.Contribution
	err := s.inReadTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, "SELECT "+contributionColumns+" FROM contributions WHERE id = ?", id)
		loaded, err := scanContribution(row)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound(id)
		}
		if err != nil {
			return fmt.Errorf("load contribution: %w", err)
		}
		if err := loadChildren(ctx, tx, loaded); err != nil {
			return err
		}
		c = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Summary is a lightweight listing row.
type Summary struct {
	ID        int64
	OwnerID   string
	Status    contribution.Status
	MediaType contribution.MediaType
	Title     string
	Discs     int
	UpdatedAt time.Time
}

// ListContributions returns summaries ordered by id, optionally filtered by
// status.
func (s *Store) ListContributions(ctx context.Context, statuses ...contribution.Status) ([]Summary, error) {
	ctx = ensureContext(ctx)
	query := `SELECT c.id, c.owner_id, c.status, c.media_type, c.title, c.updated_at,
            (SELECT COUNT(1) FROM discs d WHERE d.contribution_id = c.id)
        FROM contributions c`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, st := range statuses {
			placeholders[i] = "?"
			args = append(args, string(st))
		}
		query += " WHERE c.status IN (" + strings.Join(placeholders, ",") + ")"
	}
	query += " ORDER BY c.id"

	var out []Summary
	err := retryOnBusy(ctx, func() error {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("list contributions: %w", err)
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var (
				sum       Summary
				status    string
				media     string
				title     sql.NullString
				updatedAt sql.NullString
			)
			if err := rows.Scan(&sum.ID, &sum.OwnerID, &status, &media, &title, &updatedAt, &sum.Discs); err != nil {
				return fmt.Errorf("scan contribution summary: %w", err)
			}
			sum.Status = contribution.Status(status)
			sum.MediaType = contribution.MediaType(media)
			sum.Title = title.String
			sum.UpdatedAt = parseTimeOrZero(updatedAt)
			out = append(out, sum)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanContribution(scanner interface{ Scan(dest ...any) error }) (*contribution.Contribution, error) {
	var (
		id          int64
		ownerID     string
		status      string
		version     int64
		mediaType   string
		provider    sql.NullString
		externalID  sql.NullString
		releaseDate sql.NullString
		asin        sql.NullString
		upc         sql.NullString
		title       sql.NullString
		slug        sql.NullString
		regionCode  sql.NullString
		locale      sql.NullString
		frontImage  sql.NullString
		backImage   sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&ownerID,
		&status,
		&version,
		&mediaType,
		&provider,
		&externalID,
		&releaseDate,
		&asin,
		&upc,
		&title,
		&slug,
		&regionCode,
		&locale,
		&frontImage,
		&backImage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	return &contribution.Contribution{
		ID:               id,
		OwnerID:          ownerID,
		Status:           contribution.Status(status),
		Version:          version,
		MediaType:        contribution.MediaType(mediaType),
		ExternalProvider: provider.String,
		ExternalID:       externalID.String,
		Release: contribution.Release{
			ReleaseDate:   parseTimeOrZero(releaseDate),
			ASIN:          asin.String,
			UPC:           upc.String,
			Title:         title.String,
			Slug:          slug.String,
			RegionCode:    regionCode.String,
			Locale:        locale.String,
			FrontImageURL: frontImage.String,
			BackImageURL:  backImage.String,
		},
		CreatedAt: parseTimeOrZero(createdRaw),
		UpdatedAt: parseTimeOrZero(updatedRaw),
	}, nil
}

type itemKey struct {
	disc int
	item int
}

// loadChildren reads each child table in one query so that no two result
// sets are open at once on the single connection.
func loadChildren(ctx context.Context, tx *sql.Tx, c *contribution.Contribution) error {
	discs, err := loadDiscs(ctx, tx, c.ID)
	if err != nil {
		return err
	}
	items, err := loadItems(ctx, tx, c.ID)
	if err != nil {
		return err
	}
	chapters, err := loadChapters(ctx, tx, c.ID)
	if err != nil {
		return err
	}
	tracks, err := loadAudioTracks(ctx, tx, c.ID)
	if err != nil {
		return err
	}
	hashItems, err := loadHashItems(ctx, tx, c.ID)
	if err != nil {
		return err
	}

	for i := range discs {
		list := items[discs[i].Index]
		for j := range list {
			key := itemKey{disc: discs[i].Index, item: list[j].Index}
			list[j].Chapters = chapters[key]
			list[j].AudioTracks = tracks[key]
		}
		discs[i].Items = list
	}
	c.Discs = discs
	c.HashItems = hashItems
	return nil
}

func loadDiscs(ctx context.Context, tx *sql.Tx, id int64) ([]contribution.Disc, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT disc_index, fingerprint, format, name, slug, logs_uploaded, log_path
        FROM discs WHERE contribution_id = ? ORDER BY disc_index`, id)
	if err != nil {
		return nil, fmt.Errorf("load discs: %w", err)
	}
	defer rows.Close()

	var discs []contribution.Disc
	for rows.Next() {
		var (
			d            contribution.Disc
			fingerprint  sql.NullString
			format       sql.NullString
			name         sql.NullString
			slug         sql.NullString
			logsUploaded int
			logPath      sql.NullString
		)
		if err := rows.Scan(&d.Index, &fingerprint, &format, &name, &slug, &logsUploaded, &logPath); err != nil {
			return nil, fmt.Errorf("scan disc: %w", err)
		}
		d.Fingerprint = fingerprint.String
		d.Format = disc.Format(format.String)
		d.Name = name.String
		d.Slug = slug.String
		d.LogsUploaded = logsUploaded != 0
		d.LogPath = logPath.String
		discs = append(discs, d)
	}
	return discs, rows.Err()
}

func loadItems(ctx context.Context, tx *sql.Tx, id int64) (map[int][]contribution.Item, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT disc_index, item_index, name, source, duration_ms, size, chapter_count,
            segment_count, segment_map, item_type, description, season, episode
        FROM disc_items WHERE contribution_id = ? ORDER BY disc_index, item_index`, id)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()

	items := make(map[int][]contribution.Item)
	for rows.Next() {
		var (
			discIndex   int
			it          contribution.Item
			name        sql.NullString
			source      sql.NullString
			durationMS  int64
			segmentMap  sql.NullString
			itemType    string
			description sql.NullString
			season      sql.NullInt64
			episode     sql.NullInt64
		)
		if err := rows.Scan(&discIndex, &it.Index, &name, &source, &durationMS, &it.Size, &it.ChapterCount,
			&it.SegmentCount, &segmentMap, &itemType, &description, &season, &episode); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.Name = name.String
		it.Source = source.String
		it.Duration = time.Duration(durationMS) * time.Millisecond
		it.SegmentMap = segmentMap.String
		it.Type = contribution.ItemType(itemType)
		it.Description = description.String
		it.Season = intPtr(season)
		it.Episode = intPtr(episode)
		items[discIndex] = append(items[discIndex], it)
	}
	return items, rows.Err()
}

func loadChapters(ctx context.Context, tx *sql.Tx, id int64) (map[itemKey][]contribution.Chapter, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT disc_index, item_index, chapter_index, title
        FROM item_chapters WHERE contribution_id = ? ORDER BY disc_index, item_index, chapter_index`, id)
	if err != nil {
		return nil, fmt.Errorf("load chapters: %w", err)
	}
	defer rows.Close()

	out := make(map[itemKey][]contribution.Chapter)
	for rows.Next() {
		var (
			key   itemKey
			ch    contribution.Chapter
			title sql.NullString
		)
		if err := rows.Scan(&key.disc, &key.item, &ch.Index, &title); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		ch.Title = title.String
		out[key] = append(out[key], ch)
	}
	return out, rows.Err()
}

func loadAudioTracks(ctx context.Context, tx *sql.Tx, id int64) (map[itemKey][]contribution.AudioTrack, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT disc_index, item_index, track_index, title
        FROM item_audio_tracks WHERE contribution_id = ? ORDER BY disc_index, item_index, track_index`, id)
	if err != nil {
		return nil, fmt.Errorf("load audio tracks: %w", err)
	}
	defer rows.Close()

	out := make(map[itemKey][]contribution.AudioTrack)
	for rows.Next() {
		var (
			key   itemKey
			tr    contribution.AudioTrack
			title sql.NullString
		)
		if err := rows.Scan(&key.disc, &key.item, &tr.Index, &title); err != nil {
			return nil, fmt.Errorf("scan audio track: %w", err)
		}
		tr.Title = title.String
		out[key] = append(out[key], tr)
	}
	return out, rows.Err()
}

func loadHashItems(ctx context.Context, tx *sql.Tx, id int64) ([]contribution.HashItem, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT disc_hash, item_index, name, size, created_at
        FROM hash_items WHERE contribution_id = ? ORDER BY disc_hash, item_index`, id)
	if err != nil {
		return nil, fmt.Errorf("load hash items: %w", err)
	}
	defer rows.Close()

	var out []contribution.HashItem
	for rows.Next() {
		var (
			h         contribution.HashItem
			name      sql.NullString
			createdAt sql.NullString
		)
		if err := rows.Scan(&h.DiscHash, &h.Index, &name, &h.Size, &createdAt); err != nil {
			return nil, fmt.Errorf("scan hash item: %w", err)
		}
		h.Name = name.String
		h.CreatedAt = parseTimeOrZero(createdAt)
		out = append(out, h)
	}
	return out, rows.Err()
}

func insertChildren(ctx context.Context, tx *sql.Tx, id int64, c *contribution.Contribution) error {
	for _, d := range c.Discs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO discs (contribution_id, disc_index, fingerprint, format, name, slug, logs_uploaded, log_path)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, d.Index,
			nullableString(d.Fingerprint),
			nullableString(string(d.Format)),
			nullableString(d.Name),
			nullableString(d.Slug),
			boolToInt(d.LogsUploaded),
			nullableString(d.LogPath),
		); err != nil {
			return fmt.Errorf("insert disc %d: %w", d.Index, err)
		}
		for _, it := range d.Items {
			if err := insertItem(ctx, tx, id, d.Index, it); err != nil {
				return err
			}
		}
	}
	for _, h := range c.HashItems {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO hash_items (contribution_id, disc_hash, item_index, name, size, created_at)
            VALUES (?, ?, ?, ?, ?, ?)`,
			id, h.DiscHash, h.Index, nullableString(h.Name), h.Size, formatTime(h.CreatedAt),
		); err != nil {
			return fmt.Errorf("insert hash item %s/%d: %w", h.DiscHash, h.Index, err)
		}
	}
	return nil
}

func insertItem(ctx context.Context, tx *sql.Tx, id int64, discIndex int, it contribution.Item) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO disc_items (
            contribution_id, disc_index, item_index, name, source, duration_ms, size,
            chapter_count, segment_count, segment_map, item_type, description, season, episode
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, discIndex, it.Index,
		nullableString(it.Name),
		nullableString(it.Source),
		it.Duration.Milliseconds(),
		it.Size,
		it.ChapterCount,
		it.SegmentCount,
		nullableString(it.SegmentMap),
		string(it.Type),
		nullableString(it.Description),
		nullableInt(it.Season),
		nullableInt(it.Episode),
	); err != nil {
		return fmt.Errorf("insert disc %d item %d: %w", discIndex, it.Index, err)
	}
	for _, ch := range it.Chapters {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO item_chapters (contribution_id, disc_index, item_index, chapter_index, title)
            VALUES (?, ?, ?, ?, ?)`,
			id, discIndex, it.Index, ch.Index, nullableString(ch.Title),
		); err != nil {
			return fmt.Errorf("insert chapter %d of disc %d item %d: %w", ch.Index, discIndex, it.Index, err)
		}
	}
	for _, tr := range it.AudioTracks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO item_audio_tracks (contribution_id, disc_index, item_index, track_index, title)
            VALUES (?, ?, ?, ?, ?)`,
			id, discIndex, it.Index, tr.Index, nullableString(tr.Title),
		); err != nil {
			return fmt.Errorf("insert audio track %d of disc %d item %d: %w", tr.Index, discIndex, it.Index, err)
		}
	}
	return nil
}
