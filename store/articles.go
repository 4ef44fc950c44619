package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/inkwell/models"
	"github.com/cppla/inkwell/utils"
)

// NewArticle holds the fields accepted when creating an article.
type NewArticle struct {
	Title    string
	Content  string
	AuthorID *uint
}

// CreateArticles inserts all items in one transaction and returns their ids in input order.
// On any failure the whole batch is rolled back and a *TransactionError is returned.
func (s *Store) CreateArticles(ctx context.Context, items []NewArticle) ([]uint, error) {
	if len(items) == 0 {
		return nil, validationError("no articles given")
	}

	rows := make([]models.Article, len(items))
	for i, it := range items {
		title := strings.TrimSpace(utils.StripTags(it.Title))
		content := utils.StripTags(it.Content)
		switch {
		case title == "":
			return nil, &TransactionError{Index: i, Err: validationError("title is required")}
		case strings.TrimSpace(content) == "":
			return nil, &TransactionError{Index: i, Err: validationError("content is required")}
		}
		rows[i] = models.Article{Title: title, Content: content, AuthorID: it.AuthorID}
	}

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if err := tx.Create(&rows[i]).Error; err != nil {
				return &TransactionError{Index: i, Err: classify(err, ErrReference)}
			}
		}
		return nil
	})
	if err != nil {
		var txErr *TransactionError
		if errors.As(err, &txErr) {
			return nil, err
		}
		return nil, &TransactionError{Index: -1, Err: classify(err, nil)}
	}

	ids := make([]uint, len(rows))
	seen := map[uint]bool{}
	for i, row := range rows {
		ids[i] = row.ID
		if row.AuthorID != nil && !seen[*row.AuthorID] {
			seen[*row.AuthorID] = true
			s.invalidateAuthor(ctx, *row.AuthorID)
		}
	}
	s.log.Debug("articles created", zap.Int("count", len(ids)))
	return ids, nil
}

// GetArticlesByAuthor lists the articles whose author_id equals userID, lowest id first.
// An unknown author yields an empty list.
func (s *Store) GetArticlesByAuthor(ctx context.Context, userID uint, page Page) ([]models.Article, error) {
	page = page.normalized()
	key := fmt.Sprintf("%spage=%d:size=%d", authorPrefix(userID), page.Number, page.Size)

	if b, ok := s.cache.Get(ctx, key); ok {
		var cached []models.Article
		if err := json.Unmarshal(b, &cached); err == nil {
			return cached, nil
		}
	}

	articles := []models.Article{}
	q := s.conn(ctx).Where("author_id = ?", userID).Order("id ASC")
	if err := page.apply(q).Find(&articles).Error; err != nil {
		return nil, classify(err, nil)
	}

	if b, err := json.Marshal(articles); err == nil {
		s.cache.Set(ctx, key, b)
	}
	return articles, nil
}

// CountArticles returns the number of stored articles.
func (s *Store) CountArticles(ctx context.Context) (int64, error) {
	var n int64
	if err := s.conn(ctx).Model(&models.Article{}).Count(&n).Error; err != nil {
		return 0, classify(err, nil)
	}
	return n, nil
}

func authorPrefix(userID uint) string {
	return fmt.Sprintf("cache:user:%d:articles:", userID)
}

func (s *Store) invalidateAuthor(ctx context.Context, userID uint) {
	s.cache.InvalidatePrefix(ctx, authorPrefix(userID))
}
