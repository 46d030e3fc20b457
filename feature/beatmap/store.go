package beatmap

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"beatmap-manager/feature/beatmap/models"
)

// Store is the durable tier of the beatmap cache.
//
// Absence is a normal outcome, not an error: lookup methods return nil (or
// an empty slice) when nothing matches, and reserve the error return for
// actual storage failures.
type Store interface {
	// MapByMD5 fetches a single map row by checksum.
	MapByMD5(ctx context.Context, md5 string) (*models.Map, error)
	// MapByID fetches a single map row by id.
	MapByID(ctx context.Context, id int) (*models.Map, error)
	// MapsBySet fetches all map rows of a set, ordered by id.
	MapsBySet(ctx context.Context, setID int) ([]models.Map, error)
	// SetLastCheck fetches a set's last upstream check, or nil when the
	// set row does not exist.
	SetLastCheck(ctx context.Context, setID int) (*time.Time, error)
	// FrozenStatuses returns id -> status for every frozen map of a set.
	FrozenStatuses(ctx context.Context, setID int) (map[int]RankedStatus, error)
	// SaveSet persists a reconciled set in one transaction: dependent
	// records and map rows for deletedMD5s are removed first (so an
	// updated map re-using a key never conflicts), then the set row and
	// all current map rows are upserted.
	SaveSet(ctx context.Context, set *BeatmapSet, server models.MapServer, deletedMD5s []string) error
	// DeleteMaps removes map rows and their dependent score records.
	DeleteMaps(ctx context.Context, md5s []string) error
	// DeleteMapset removes a set row. Member maps are not touched; the
	// caller cascades through DeleteMaps.
	DeleteMapset(ctx context.Context, setID int) error
	// UpdateMapStatus persists a manual status override.
	UpdateMapStatus(ctx context.Context, id int, status RankedStatus, frozen bool) error
	// NextMapID allocates the next id for locally submitted maps.
	NextMapID(ctx context.Context) (int, error)
	// NextSetID allocates the next id for locally submitted sets.
	NextSetID(ctx context.Context) (int, error)
	// InactiveMaps returns all maps of a creator still in the Inactive
	// submission state.
	InactiveMaps(ctx context.Context, creator string) ([]models.Map, error)
}

// Private submissions allocate ids far above anything the upstream catalogue
// hands out, so the two namespaces can never collide.
const (
	localMapIDFloor = 1 << 30
	localSetIDFloor = 1 << 30
)

// SQLStore is the gorm-backed Store implementation.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore wraps a database connection in a Store.
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// MapByMD5 fetches a single map row by checksum.
func (s *SQLStore) MapByMD5(ctx context.Context, md5 string) (*models.Map, error) {
	var row models.Map
	err := s.db.WithContext(ctx).Where("md5 = ?", md5).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// MapByID fetches a single map row by id.
func (s *SQLStore) MapByID(ctx context.Context, id int) (*models.Map, error) {
	var row models.Map
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// MapsBySet fetches all map rows of a set, ordered by id.
func (s *SQLStore) MapsBySet(ctx context.Context, setID int) ([]models.Map, error) {
	var rows []models.Map
	err := s.db.WithContext(ctx).Where("set_id = ?", setID).Order("id").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SetLastCheck fetches a set's last upstream check timestamp.
func (s *SQLStore) SetLastCheck(ctx context.Context, setID int) (*time.Time, error) {
	var row models.Mapset
	err := s.db.WithContext(ctx).Where("id = ?", setID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row.LastAPICheck, nil
}

// FrozenStatuses returns id -> status for every frozen map of a set.
func (s *SQLStore) FrozenStatuses(ctx context.Context, setID int) (map[int]RankedStatus, error) {
	var rows []models.Map
	err := s.db.WithContext(ctx).
		Select("id", "status").
		Where("set_id = ? AND frozen = ?", setID, true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	statuses := make(map[int]RankedStatus, len(rows))
	for _, row := range rows {
		statuses[row.ID] = RankedStatus(row.Status)
	}
	return statuses, nil
}

// SaveSet persists a reconciled set in one transaction, deletes first.
func (s *SQLStore) SaveSet(ctx context.Context, set *BeatmapSet, server models.MapServer, deletedMD5s []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(deletedMD5s) > 0 {
			if err := tx.Where("map_md5 IN ?", deletedMD5s).Delete(&models.Score{}).Error; err != nil {
				return err
			}
			if err := tx.Where("md5 IN ?", deletedMD5s).Delete(&models.Map{}).Error; err != nil {
				return err
			}
		}

		meta := models.Mapset{
			ID:           set.ID,
			Server:       server,
			LastAPICheck: set.LastAPICheck,
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&meta).Error; err != nil {
			return err
		}

		if len(set.Maps) == 0 {
			return nil
		}

		rows := make([]models.Map, 0, len(set.Maps))
		for _, b := range set.Maps {
			rows = append(rows, b.toRow())
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error
	})
}

// DeleteMaps removes map rows and their dependent scores, scores first so a
// crash mid-way never leaves scores pointing at a deleted map.
func (s *SQLStore) DeleteMaps(ctx context.Context, md5s []string) error {
	if len(md5s) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("map_md5 IN ?", md5s).Delete(&models.Score{}).Error; err != nil {
			return err
		}
		return tx.Where("md5 IN ?", md5s).Delete(&models.Map{}).Error
	})
}

// DeleteMapset removes a set row.
func (s *SQLStore) DeleteMapset(ctx context.Context, setID int) error {
	return s.db.WithContext(ctx).Where("id = ?", setID).Delete(&models.Mapset{}).Error
}

// UpdateMapStatus persists a manual status override.
func (s *SQLStore) UpdateMapStatus(ctx context.Context, id int, status RankedStatus, frozen bool) error {
	return s.db.WithContext(ctx).Model(&models.Map{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": int(status), "frozen": frozen}).Error
}

// NextMapID allocates the next local map id.
func (s *SQLStore) NextMapID(ctx context.Context) (int, error) {
	return s.nextID(ctx, &models.Map{}, localMapIDFloor)
}

// NextSetID allocates the next local set id.
func (s *SQLStore) NextSetID(ctx context.Context) (int, error) {
	return s.nextID(ctx, &models.Mapset{}, localSetIDFloor)
}

func (s *SQLStore) nextID(ctx context.Context, model any, floor int) (int, error) {
	var maxID *int
	err := s.db.WithContext(ctx).Model(model).
		Select("MAX(id)").
		Where("id >= ?", floor).
		Scan(&maxID).Error
	if err != nil {
		return 0, err
	}
	if maxID == nil {
		return floor, nil
	}
	return *maxID + 1, nil
}

// InactiveMaps returns all maps of a creator still in the Inactive state.
func (s *SQLStore) InactiveMaps(ctx context.Context, creator string) ([]models.Map, error) {
	var rows []models.Map
	err := s.db.WithContext(ctx).
		Where("creator = ? AND status = ?", creator, int(StatusInactive)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
