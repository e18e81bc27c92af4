package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"discdb/internal/blob"
	"discdb/internal/contribution"
	"discdb/internal/disc"
	"discdb/internal/disc/fingerprint"
	"discdb/internal/identity"
	"discdb/internal/logging"
	"discdb/internal/services"
)

func defaultDiscName(index int) string {
	return fmt.Sprintf("Disc %d", index)
}

// AddDisc appends a disc. An empty name becomes "Disc N" until a log
// supplies the disc's own name.
func (m *Manager) AddDisc(ctx context.Context, externalID, name string, format disc.Format) (*View, error) {
	return m.edit(ctx, "add_disc", externalID, func(c *contribution.Contribution, logger *slog.Logger) error {
		if format != "" {
			parsed, ok := disc.ParseFormat(string(format))
			if !ok {
				return services.Wrap(services.ErrValidation, "workflow", "add_disc", fmt.Sprintf("unknown disc format %q", format), nil)
			}
			format = parsed
		}
		index := c.NextDiscIndex()
		name = strings.TrimSpace(name)
		if name == "" {
			name = defaultDiscName(index)
		}
		c.Discs = append(c.Discs, contribution.Disc{
			Index:  index,
			Name:   name,
			Slug:   disc.Slugify(name),
			Format: format,
		})
		logger.Info("disc added",
			logging.String(logging.FieldEventType, "disc_added"),
			logging.Int(logging.FieldDiscIndex, index),
			logging.String("format", string(format)))
		return nil
	})
}

// UploadLog parses a raw ripper log, fingerprints it and merges the result
// into the disc. The raw log is stored as a new immutable object.
func (m *Manager) UploadLog(ctx context.Context, req UploadLogRequest) (*UploadLogResult, error) {
	if m.maxLog > 0 && len(req.Raw) > m.maxLog {
		return nil, &disc.LogFormatError{Reason: fmt.Sprintf("log exceeds %d bytes", m.maxLog)}
	}
	text, err := disc.NormalizeLog(req.Raw)
	if err != nil {
		return nil, err
	}
	info, err := disc.ParseLog(text)
	if err != nil {
		return nil, err
	}
	fp := m.hasher.Compute(info)

	result := &UploadLogResult{
		DiscIndex:   req.DiscIndex,
		Fingerprint: fp,
		Warnings:    info.Warnings,
		Stats:       info.Stats,
	}
	var replaced bool
	updated, err := m.mutate(ctx, "upload_log", req.ExternalID, contribution.RoleOwner,
		func(ctx context.Context, c *contribution.Contribution, who identity.Caller, logger *slog.Logger) (*contribution.Contribution, error) {
			if err := checkOwner(c, who, contribution.ActionEdit); err != nil {
				return nil, err
			}
			next, err := m.machine.Transition(c, contribution.ActionEdit, who.Role)
			if err != nil {
				return nil, err
			}
			d, ok := next.DiscByIndex(req.DiscIndex)
			if !ok {
				return nil, fmt.Errorf("disc %d: %w", req.DiscIndex, services.ErrNotFound)
			}
			previous, err := d.ApplyFingerprint(fp, req.Force)
			if err != nil {
				logger.Info("log upload conflicts with recorded fingerprint",
					logging.String(logging.FieldEventType, "fingerprint_conflict"),
					logging.Int(logging.FieldDiscIndex, d.Index),
					logging.String("recorded", previous),
					logging.String(logging.FieldFingerprint, fp))
				return nil, err
			}
			if previous != "" && previous != fp {
				replaced = true
				result.Previous = previous
				logging.WarnWithContext(logger, "disc fingerprint replaced", "fingerprint_replaced",
					logging.Int(logging.FieldDiscIndex, d.Index),
					logging.String("previous", previous),
					logging.String(logging.FieldFingerprint, fp),
					logging.String(logging.FieldErrorHint, "confirm the uploaded log belongs to this disc"),
					logging.String(logging.FieldImpact, "items were rebuilt from the new log"))
			}

			extID, err := m.codec.Encode(next.ID)
			if err != nil {
				return nil, err
			}
			key := blob.LogKey(extID, d.Index)
			if err := m.blobs.Save(ctx, []byte(text), key, blob.ContentTypeLog); err != nil {
				return nil, fmt.Errorf("store raw log: %w", err)
			}

			items := contribution.ItemsFromDisc(info, next.MediaType)
			if previous == fp {
				items = carryItemEdits(d.Items, items)
			}
			d.Items = items
			d.LogsUploaded = true
			d.LogPath = key
			if d.Format == "" {
				d.Format = info.Format
			}
			if info.Name != "" && (d.Name == "" || d.Name == defaultDiscName(d.Index)) {
				d.Name = info.Name
				d.Slug = disc.Slugify(info.Name)
			}
			result.LogPath = key

			for _, w := range info.Warnings {
				logging.WarnWithContext(logger, "ripper reported a read problem", "log_warning",
					logging.Int(logging.FieldDiscIndex, d.Index),
					logging.String("message", w),
					logging.String(logging.FieldErrorHint, "inspect the disc surface and re-rip if titles are incomplete"),
					logging.String(logging.FieldImpact, "the fingerprint may not match other copies"))
			}
			logger.Info("log uploaded",
				logging.String(logging.FieldEventType, "log_uploaded"),
				logging.Int(logging.FieldDiscIndex, d.Index),
				logging.String(logging.FieldFingerprint, fp),
				logging.Int("titles", len(info.Titles)),
				logging.Int("skipped_lines", info.Stats.Skipped),
				logging.String("log_path", key))
			return next, nil
		})
	if err != nil {
		if result.LogPath != "" {
			m.discardBlob(ctx, result.LogPath)
		}
		return nil, err
	}

	if replaced {
		m.index.Forget(result.Previous, updated.ID, req.DiscIndex)
	}
	d, _ := updated.DiscByIndex(req.DiscIndex)
	m.index.Record(contribution.DiscMatch{
		ContributionID: updated.ID,
		DiscIndex:      d.Index,
		DiscName:       d.Name,
		Fingerprint:    fp,
	})

	view, err := m.view(ctx, updated, contribution.RoleOwner)
	if err != nil {
		return nil, err
	}
	result.View = *view
	if d, ok := view.Contribution.DiscByIndex(req.DiscIndex); ok {
		result.Duplicates = d.Duplicates
	}
	return result, nil
}

// discardBlob removes an object written for a change that was not saved.
func (m *Manager) discardBlob(ctx context.Context, key string) {
	if err := m.blobs.Delete(context.WithoutCancel(ctx), key); err != nil {
		logging.WarnWithContext(m.logger, "orphaned blob left behind", "blob_cleanup_failed",
			logging.String("key", key),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the object manually"),
			logging.String(logging.FieldImpact, "unused storage"))
	}
}

// carryItemEdits keeps user-entered metadata of items whose index and
// source are unchanged by a re-upload of the same disc.
func carryItemEdits(old, fresh []contribution.Item) []contribution.Item {
	byIndex := make(map[int]contribution.Item, len(old))
	for _, it := range old {
		byIndex[it.Index] = it
	}
	for i := range fresh {
		prev, ok := byIndex[fresh[i].Index]
		if !ok || prev.Source != fresh[i].Source {
			continue
		}
		fresh[i].Type = prev.Type
		fresh[i].Season = prev.Season
		fresh[i].Episode = prev.Episode
		if prev.Name != "" {
			fresh[i].Name = prev.Name
		}
		if prev.Description != "" {
			fresh[i].Description = prev.Description
		}
	}
	return fresh
}

// Image sides.
const (
	ImageFront = "front"
	ImageBack  = "back"
)

var allowedImageTypes = map[string]bool{
	blob.ContentTypeJPEG: true,
	blob.ContentTypePNG:  true,
	blob.ContentTypeWebP: true,
}

// UploadImage stores a front or back cover image and records its key.
// An empty contentType is sniffed from the data.
func (m *Manager) UploadImage(ctx context.Context, externalID, side string, data []byte, contentType string) (*View, error) {
	side = strings.ToLower(strings.TrimSpace(side))
	if side != ImageFront && side != ImageBack {
		return nil, services.Wrap(services.ErrValidation, "workflow", "upload_image", fmt.Sprintf("image side %q must be front or back", side), nil)
	}
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrValidation, "workflow", "upload_image", "image is empty", nil)
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !allowedImageTypes[contentType] {
		return nil, services.Wrap(services.ErrValidation, "workflow", "upload_image", fmt.Sprintf("unsupported image type %q", contentType), nil)
	}

	var key string
	view, err := m.edit(ctx, "upload_image", externalID, func(c *contribution.Contribution, logger *slog.Logger) error {
		extID, err := m.codec.Encode(c.ID)
		if err != nil {
			return err
		}
		key = blob.ImageKey(extID, side, contentType)
		if err := m.blobs.Save(ctx, data, key, contentType); err != nil {
			key = ""
			return fmt.Errorf("store image: %w", err)
		}
		if side == ImageFront {
			c.Release.FrontImageURL = key
		} else {
			c.Release.BackImageURL = key
		}
		logger.Info("image uploaded",
			logging.String(logging.FieldEventType, "image_uploaded"),
			logging.String("side", side),
			logging.String("content_type", contentType),
			logging.Int("bytes", len(data)))
		return nil
	})
	if err != nil {
		if key != "" {
			m.discardBlob(ctx, key)
		}
		return nil, err
	}
	return view, nil
}

// RecordHashItems scans dir, a ripped disc's stream directory, and records
// its files under their combined hash. Files already recorded under the
// same hash are replaced.
func (m *Manager) RecordHashItems(ctx context.Context, externalID, dir string) (*HashResult, error) {
	files, err := fingerprint.ScanFiles(ctx, dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, services.Wrap(services.ErrValidation, "workflow", "record_hash_items", fmt.Sprintf("no files in %s", dir), nil)
	}
	discHash := fingerprint.FilesHash(files)

	view, err := m.edit(ctx, "record_hash_items", externalID, func(c *contribution.Contribution, logger *slog.Logger) error {
		kept := c.HashItems[:0:0]
		for _, h := range c.HashItems {
			if h.DiscHash != discHash {
				kept = append(kept, h)
			}
		}
		for _, f := range files {
			kept = append(kept, contribution.HashItem{
				DiscHash:  discHash,
				Index:     f.Index,
				Name:      f.Name,
				Size:      f.Size,
				CreatedAt: f.CreatedAt,
			})
		}
		c.HashItems = kept
		logger.Info("stream files recorded",
			logging.String(logging.FieldEventType, "hash_items_recorded"),
			logging.String("disc_hash", discHash),
			logging.Int("files", len(files)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids, err := m.store.FindContributionsByDiscHash(ctx, discHash)
	if err != nil {
		return nil, err
	}
	var others []string
	for _, id := range ids {
		if id == view.Contribution.ID {
			continue
		}
		enc, err := m.codec.Encode(id)
		if err != nil {
			return nil, err
		}
		others = append(others, enc)
	}
	return &HashResult{View: *view, DiscHash: discHash, Files: files, Others: others}, nil
}

// ReadLog returns the stored raw log of a disc.
func (m *Manager) ReadLog(ctx context.Context, externalID string, discIndex int) ([]byte, error) {
	view, err := m.Get(ctx, externalID)
	if err != nil {
		return nil, err
	}
	d, ok := view.Contribution.DiscByIndex(discIndex)
	if !ok {
		return nil, fmt.Errorf("disc %d: %w", discIndex, services.ErrNotFound)
	}
	if d.LogPath == "" {
		return nil, fmt.Errorf("disc %d has no uploaded log: %w", discIndex, services.ErrNotFound)
	}
	data, err := m.blobs.Open(ctx, d.LogPath)
	if err != nil {
		return nil, fmt.Errorf("raw log for disc %d: %w", discIndex, err)
	}
	return data, nil
}
