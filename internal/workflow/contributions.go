package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"discdb/internal/contribution"
	"discdb/internal/disc"
	"discdb/internal/logging"
	"discdb/internal/services"
)

// CreateContribution starts a pending contribution owned by the caller.
func (m *Manager) CreateContribution(ctx context.Context, req CreateRequest) (*View, error) {
	who, err := m.caller(ctx, contribution.RoleOwner)
	if err != nil {
		return nil, err
	}
	media := req.MediaType
	if media == "" {
		media = contribution.MediaTypeMovie
	}
	if _, ok := contribution.ParseMediaType(string(media)); !ok {
		return nil, services.Wrap(services.ErrValidation, "workflow", "create", fmt.Sprintf("unknown media type %q", media), nil)
	}

	release := req.Release
	normalizeRelease(&release)
	c := &contribution.Contribution{
		OwnerID:          who.UserID,
		Status:           contribution.StatusPending,
		MediaType:        media,
		ExternalProvider: strings.TrimSpace(req.ExternalProvider),
		ExternalID:       strings.TrimSpace(req.ExternalID),
		Release:          release,
	}
	ctx, logger := m.opContext(ctx, "create", 0)
	if err := m.store.CreateContribution(ctx, c); err != nil {
		return nil, err
	}
	view, err := m.view(ctx, c, who.Role)
	if err != nil {
		return nil, err
	}
	logger.Info("contribution created",
		logging.String(logging.FieldEventType, "contribution_created"),
		logging.Int64(logging.FieldContributionID, c.ID),
		logging.String(logging.FieldExternalID, view.ExternalID),
		logging.String("owner", c.OwnerID),
		logging.String("media_type", string(c.MediaType)))
	return view, nil
}

// EditRelease applies edit to the release metadata.
func (m *Manager) EditRelease(ctx context.Context, externalID string, edit ReleaseEdit) (*View, error) {
	return m.edit(ctx, "edit_release", externalID, func(c *contribution.Contribution, logger *slog.Logger) error {
		r := &c.Release
		if edit.ReleaseDate != nil {
			r.ReleaseDate = edit.ReleaseDate.UTC()
		}
		if edit.ASIN != nil {
			r.ASIN = *edit.ASIN
		}
		if edit.UPC != nil {
			r.UPC = *edit.UPC
		}
		if edit.Title != nil {
			r.Title = *edit.Title
		}
		if edit.Slug != nil {
			r.Slug = *edit.Slug
		}
		if edit.RegionCode != nil {
			r.RegionCode = *edit.RegionCode
		}
		if edit.Locale != nil {
			r.Locale = *edit.Locale
		}
		if edit.MediaType != nil {
			media, ok := contribution.ParseMediaType(string(*edit.MediaType))
			if !ok {
				return services.Wrap(services.ErrValidation, "workflow", "edit_release", fmt.Sprintf("unknown media type %q", *edit.MediaType), nil)
			}
			c.MediaType = media
		}
		normalizeRelease(r)
		logger.Info("release updated", logging.String(logging.FieldEventType, "release_updated"))
		return nil
	})
}

// EditItem changes the catalog metadata of one item of a disc.
func (m *Manager) EditItem(ctx context.Context, externalID string, discIndex, itemIndex int, edit ItemEdit) (*View, error) {
	return m.edit(ctx, "edit_item", externalID, func(c *contribution.Contribution, logger *slog.Logger) error {
		d, ok := c.DiscByIndex(discIndex)
		if !ok {
			return fmt.Errorf("disc %d: %w", discIndex, services.ErrNotFound)
		}
		var item *contribution.Item
		for i := range d.Items {
			if d.Items[i].Index == itemIndex {
				item = &d.Items[i]
				break
			}
		}
		if item == nil {
			return fmt.Errorf("disc %d item %d: %w", discIndex, itemIndex, services.ErrNotFound)
		}
		if edit.Name != nil {
			item.Name = strings.TrimSpace(*edit.Name)
		}
		if edit.Type != nil {
			t, ok := contribution.ParseItemType(string(*edit.Type))
			if !ok {
				return services.Wrap(services.ErrValidation, "workflow", "edit_item", fmt.Sprintf("unknown item type %q", *edit.Type), nil)
			}
			item.Type = t
		}
		if edit.Description != nil {
			item.Description = strings.TrimSpace(*edit.Description)
		}
		if edit.Season != nil {
			v := *edit.Season
			item.Season = &v
		}
		if edit.Episode != nil {
			v := *edit.Episode
			item.Episode = &v
		}
		logger.Info("item updated",
			logging.String(logging.FieldEventType, "item_updated"),
			logging.Int(logging.FieldDiscIndex, discIndex),
			logging.Int("item_index", itemIndex),
			logging.String("item_type", string(item.Type)))
		return nil
	})
}

// Get loads a contribution with duplicate advisories attached. The allowed
// actions are computed for the caller's role, defaulting to owner.
func (m *Manager) Get(ctx context.Context, externalID string) (*View, error) {
	id, err := m.decode(externalID)
	if err != nil {
		return nil, err
	}
	ctx, _ = m.opContext(ctx, "get", id)
	c, err := m.store.LoadContribution(ctx, id)
	if err != nil {
		return nil, err
	}
	role := contribution.RoleOwner
	if who, err := m.caller(ctx, contribution.RoleOwner); err == nil {
		role = who.Role
	}
	return m.view(ctx, c, role)
}

// normalizeRelease trims values, upper-cases product and region codes,
// lower-cases the locale and derives a slug from the title when unset.
func normalizeRelease(r *contribution.Release) {
	r.ASIN = strings.ToUpper(strings.TrimSpace(r.ASIN))
	r.UPC = strings.TrimSpace(r.UPC)
	r.Title = strings.TrimSpace(r.Title)
	r.Slug = strings.TrimSpace(r.Slug)
	r.RegionCode = strings.ToUpper(strings.TrimSpace(r.RegionCode))
	r.Locale = strings.ToLower(strings.TrimSpace(r.Locale))
	if r.Slug == "" && r.Title != "" {
		r.Slug = disc.Slugify(r.Title)
	}
	if !r.ReleaseDate.IsZero() {
		r.ReleaseDate = r.ReleaseDate.UTC()
	}
}
