package sqlite

import (
	"context"
	"strings"

	"github.com/nordsearch/pagefinder/internal/search/domain"
)

type pagesRepo struct {
	db dbtx
}

// SearchPages scans pages in the given language for a literal substring of
// content. The pattern is a bind argument with LIKE metacharacters escaped,
// so query text never contains caller input. Ordered by id ascending
// (insertion order), which is the service's documented result order.
func (r *pagesRepo) SearchPages(ctx context.Context, language, substring string) ([]domain.Page, error) {
	if substring == "" {
		return []domain.Page{}, nil
	}

	pattern := "%" + escapeLike(substring) + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, language, title, url, content, last_updated
		 FROM pages
		 WHERE language = ? AND content LIKE ? ESCAPE '\'
		 ORDER BY id`,
		language, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pages := []domain.Page{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pages, nil
}

// escapeLike neutralises LIKE wildcards so the query matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
