// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"path"
	"regexp"

	"github.com/jmoiron/sqlx"

	"github.com/olegiv/tcms-go/internal/content"
)

// ImagesPrefix is the public path under which uploaded images are served.
const ImagesPrefix = content.UploadsPrefix + "images/"

var embeddedImageRe = regexp.MustCompile(`/uploads/images/[A-Za-z0-9_.\-]+`)

// ReferencedImages returns the base names of every uploaded image that a
// content row points at, either through an image column or embedded in a
// rich-text column. Image columns may hold a server-relative path, an
// absolute URL to this server, or either with a query or fragment.
func ReferencedImages(ctx context.Context, db *sqlx.DB) (map[string]struct{}, error) {
	refs := make(map[string]struct{})

	for _, s := range content.All() {
		for _, c := range s.Columns() {
			if c.Field.Kind != content.Image && c.Field.Kind != content.LocalizedRich {
				continue
			}

			var values []string
			query := fmt.Sprintf("SELECT %s FROM %s WHERE %s LIKE ?", quote(c.Name), quote(s.Table), quote(c.Name))
			if err := db.SelectContext(ctx, &values, db.Rebind(query), "%"+ImagesPrefix+"%"); err != nil {
				return nil, fmt.Errorf("collecting images from %s.%s: %w", s.Table, c.Name, err)
			}

			for _, v := range values {
				for _, m := range embeddedImageRe.FindAllString(v, -1) {
					refs[path.Base(m)] = struct{}{}
				}
			}
		}
	}

	return refs, nil
}
