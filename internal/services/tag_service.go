package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/models"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/validation"
)

const (
	maxTagNameLength = 100
	allTagsKey       = "all"
)

// TagService maintains the global tag catalog. Lookups by name and the full
// list are cached; every mutation invalidates what it touched.
type TagService struct {
	db        *gorm.DB
	validator *validation.Validator
	byName    *ristretto.Cache[string, models.Tag]
	list      *ristretto.Cache[string, []models.Tag]

	// listGen counts list invalidations. A list read from the database is
	// cached only if no invalidation happened while it was being read.
	listMu  sync.Mutex
	listGen uint64
}

func NewTagService(db *gorm.DB, v *validation.Validator, maxKeys int64) *TagService {
	if maxKeys <= 0 {
		maxKeys = 10000
	}

	byName, err := ristretto.NewCache(&ristretto.Config[string, models.Tag]{
		NumCounters:        maxKeys * 10,
		MaxCost:            maxKeys,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to create tag cache: %v", err))
	}

	list, err := ristretto.NewCache(&ristretto.Config[string, []models.Tag]{
		NumCounters:        10,
		MaxCost:            1,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to create tag list cache: %v", err))
	}

	return &TagService{db: db, validator: v, byName: byName, list: list}
}

// Close releases the cache goroutines.
func (s *TagService) Close() {
	s.byName.Close()
	s.list.Close()
}

// GetAllTags returns every tag ordered by name.
func (s *TagService) GetAllTags(ctx context.Context) ([]models.Tag, error) {
	if cached, ok := s.list.Get(allTagsKey); ok {
		return append([]models.Tag(nil), cached...), nil
	}

	s.listMu.Lock()
	gen := s.listGen
	s.listMu.Unlock()

	tags := []models.Tag{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch tags: %w", err)
	}

	s.listMu.Lock()
	if s.listGen == gen {
		s.list.Set(allTagsKey, tags, 1)
		s.list.Wait()
	}
	s.listMu.Unlock()
	return append([]models.Tag(nil), tags...), nil
}

// CreateTag inserts a new tag. An existing name yields ErrTagExists.
func (s *TagService) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	name, err := s.cleanName(name)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Tag{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check tag: %w", err)
	}
	if count > 0 {
		return nil, ErrTagExists
	}

	tag := models.Tag{Name: name}
	if err := db.Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTagExists
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	s.remember([]models.Tag{tag}, true)
	return &tag, nil
}

// GetOrCreateTagsByName resolves each name to a tag, creating missing ones.
// Tags created before a failure stay committed.
func (s *TagService) GetOrCreateTagsByName(ctx context.Context, names []string) ([]models.Tag, error) {
	tags, created, err := s.resolve(s.db.WithContext(ctx), names)
	if err != nil {
		return nil, err
	}
	s.remember(tags, created)
	return tags, nil
}

// UpdateTag renames a tag. Photos follow automatically through the join table.
func (s *TagService) UpdateTag(ctx context.Context, id uuid.UUID, name string) (*models.Tag, error) {
	name, err := s.cleanName(name)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var tag models.Tag
	if err := db.First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to fetch tag: %w", err)
	}
	if tag.Name == name {
		return &tag, nil
	}

	var count int64
	if err := db.Model(&models.Tag{}).Where("name = ? AND id <> ?", name, id).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check tag: %w", err)
	}
	if count > 0 {
		return nil, ErrTagExists
	}

	oldName := tag.Name
	if err := db.Model(&tag).Update("name", name).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTagExists
		}
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}
	tag.Name = name

	s.forget(oldName)
	return &tag, nil
}

// DeleteTag removes a tag and its photo associations.
func (s *TagService) DeleteTag(ctx context.Context, id uuid.UUID) error {
	var tag models.Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&tag, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTagNotFound
			}
			return err
		}
		if err := tx.Exec("DELETE FROM photo_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
	if err != nil {
		if errors.Is(err, ErrTagNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	s.forget(tag.Name)
	return nil
}

// resolve looks up names through tx and creates the missing ones. It only
// reads the cache, so a rolled back transaction never leaves stale entries.
func (s *TagService) resolve(tx *gorm.DB, names []string) ([]models.Tag, bool, error) {
	names, err := s.cleanNames(names)
	if err != nil {
		return nil, false, err
	}
	if len(names) == 0 {
		return []models.Tag{}, false, nil
	}

	found := make(map[string]models.Tag, len(names))
	var missing []string
	for _, name := range names {
		if tag, ok := s.byName.Get(name); ok {
			found[name] = tag
			continue
		}
		missing = append(missing, name)
	}

	if len(missing) > 0 {
		var existing []models.Tag
		if err := tx.Where("name IN ?", missing).Find(&existing).Error; err != nil {
			return nil, false, fmt.Errorf("failed to look up tags: %w", err)
		}
		for _, tag := range existing {
			found[tag.Name] = tag
		}
	}

	created := false
	for _, name := range names {
		if _, ok := found[name]; ok {
			continue
		}

		// Another request may insert the same name concurrently; let the
		// unique index decide and read back whichever row won.
		tag := models.Tag{Name: name}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&tag).Error
		if err != nil {
			return nil, false, fmt.Errorf("failed to create tag %q: %w", name, err)
		}

		var stored models.Tag
		if err := tx.Where("name = ?", name).First(&stored).Error; err != nil {
			return nil, false, fmt.Errorf("failed to read tag %q: %w", name, err)
		}
		found[name] = stored
		created = true
	}

	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tags = append(tags, found[name])
	}
	return tags, created, nil
}

// remember caches resolved tags and drops the cached list when the catalog grew.
func (s *TagService) remember(tags []models.Tag, created bool) {
	for _, tag := range tags {
		s.byName.Set(tag.Name, tag, 1)
	}
	s.byName.Wait()
	if created {
		s.invalidateList()
	}
}

func (s *TagService) forget(name string) {
	s.byName.Del(name)
	s.invalidateList()
}

func (s *TagService) invalidateList() {
	s.listMu.Lock()
	s.listGen++
	s.list.Del(allTagsKey)
	s.listMu.Unlock()
}

func (s *TagService) cleanName(name string) (string, error) {
	name = s.validator.Text(name)
	if name == "" {
		return "", validation.Field("name", "is required")
	}
	if len(name) > maxTagNameLength {
		return "", validation.Field("name", fmt.Sprintf("must not exceed %d characters", maxTagNameLength))
	}
	return name, nil
}

// cleanNames trims and sanitises names, drops blanks and repeats, keeps order.
func (s *TagService) cleanNames(names []string) ([]string, error) {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for i, raw := range names {
		name := s.validator.Text(raw)
		if name == "" {
			continue
		}
		if len(name) > maxTagNameLength {
			return nil, validation.Field(fmt.Sprintf("tags[%d]", i), fmt.Sprintf("must not exceed %d characters", maxTagNameLength))
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}
