package beatmap

import (
	"context"
	"sort"
	"sync"
	"time"

	"beatmap-manager/core/osuapi"
	"beatmap-manager/feature/beatmap/models"
)

// memStore is an in-memory Store for exercising the resolver and reconciler
// without a database.
type memStore struct {
	mu      sync.Mutex
	maps    map[string]models.Map // keyed by md5
	mapsets map[int]models.Mapset
	scores  map[string]int // score rows per map md5
	failing error          // returned by every method when set
}

func newMemStore() *memStore {
	return &memStore{
		maps:    make(map[string]models.Map),
		mapsets: make(map[int]models.Mapset),
		scores:  make(map[string]int),
	}
}

func (m *memStore) MapByMD5(_ context.Context, md5 string) (*models.Map, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return nil, m.failing
	}
	if row, ok := m.maps[md5]; ok {
		return &row, nil
	}
	return nil, nil
}

func (m *memStore) MapByID(_ context.Context, id int) (*models.Map, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return nil, m.failing
	}
	for _, row := range m.maps {
		if row.ID == id {
			return &row, nil
		}
	}
	return nil, nil
}

func (m *memStore) MapsBySet(_ context.Context, setID int) ([]models.Map, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return nil, m.failing
	}
	var rows []models.Map
	for _, row := range m.maps {
		if row.SetID == setID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (m *memStore) SetLastCheck(_ context.Context, setID int) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return nil, m.failing
	}
	if row, ok := m.mapsets[setID]; ok {
		t := row.LastAPICheck
		return &t, nil
	}
	return nil, nil
}

func (m *memStore) FrozenStatuses(_ context.Context, setID int) (map[int]RankedStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return nil, m.failing
	}
	statuses := make(map[int]RankedStatus)
	for _, row := range m.maps {
		if row.SetID == setID && row.Frozen {
			statuses[row.ID] = RankedStatus(row.Status)
		}
	}
	return statuses, nil
}

func (m *memStore) SaveSet(_ context.Context, set *BeatmapSet, server models.MapServer, deletedMD5s []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return m.failing
	}
	for _, md5 := range deletedMD5s {
		delete(m.maps, md5)
		delete(m.scores, md5)
	}
	m.mapsets[set.ID] = models.Mapset{ID: set.ID, Server: server, LastAPICheck: set.LastAPICheck}
	for _, b := range set.Maps {
		m.maps[b.MD5] = b.toRow()
	}
	return nil
}

func (m *memStore) DeleteMaps(_ context.Context, md5s []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return m.failing
	}
	for _, md5 := range md5s {
		delete(m.maps, md5)
		delete(m.scores, md5)
	}
	return nil
}

func (m *memStore) DeleteMapset(_ context.Context, setID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return m.failing
	}
	delete(m.mapsets, setID)
	return nil
}

func (m *memStore) UpdateMapStatus(_ context.Context, id int, status RankedStatus, frozen bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return m.failing
	}
	for md5, row := range m.maps {
		if row.ID == id {
			row.Status = int(status)
			row.Frozen = frozen
			m.maps[md5] = row
		}
	}
	return nil
}

func (m *memStore) NextMapID(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return 0, m.failing
	}
	next := localMapIDFloor
	for _, row := range m.maps {
		if row.ID >= next {
			next = row.ID + 1
		}
	}
	return next, nil
}

func (m *memStore) NextSetID(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return 0, m.failing
	}
	next := localSetIDFloor
	for id := range m.mapsets {
		if id >= next {
			next = id + 1
		}
	}
	return next, nil
}

func (m *memStore) InactiveMaps(_ context.Context, creator string) ([]models.Map, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return nil, m.failing
	}
	var rows []models.Map
	for _, row := range m.maps {
		if row.Creator == creator && row.Status == int(StatusInactive) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

// seed inserts a map row directly, bypassing the resolution path.
func (m *memStore) seed(row models.Map, lastCheck time.Time, server models.MapServer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maps[row.MD5] = row
	m.mapsets[row.SetID] = models.Mapset{ID: row.SetID, Server: server, LastAPICheck: lastCheck}
}

// seedMapOnly inserts a map row without its set row, mimicking a partially
// migrated database.
func (m *memStore) seedMapOnly(row models.Map) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maps[row.MD5] = row
}

// seedScores attaches score rows to a map md5.
func (m *memStore) seedScores(md5 string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[md5] = n
}

func (m *memStore) scoreCount(md5 string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scores[md5]
}

func (m *memStore) hasMap(md5 string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.maps[md5]
	return ok
}

func (m *memStore) hasMapset(setID int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.mapsets[setID]
	return ok
}

// fakeCatalogue is a scripted Catalogue with call counting.
type fakeCatalogue struct {
	mu   sync.Mutex
	sets map[int]*osuapi.Beatmapset
	err  error // non-nil simulates a transient upstream failure

	setCalls    int
	lookupCalls int
}

func newFakeCatalogue() *fakeCatalogue {
	return &fakeCatalogue{sets: make(map[int]*osuapi.Beatmapset)}
}

func (f *fakeCatalogue) LookupBeatmap(_ context.Context, q osuapi.Lookup) (*osuapi.Beatmap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookupCalls++
	if f.err != nil {
		return nil, f.err
	}
	for _, set := range f.sets {
		for i := range set.Beatmaps {
			b := set.Beatmaps[i]
			if (q.Checksum != "" && b.Checksum == q.Checksum) || (q.ID != 0 && b.ID == q.ID) {
				return &b, nil
			}
		}
	}
	return nil, osuapi.ErrNotFound
}

func (f *fakeCatalogue) GetBeatmapset(_ context.Context, setID int) (*osuapi.Beatmapset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	if f.err != nil {
		return nil, f.err
	}
	set, ok := f.sets[setID]
	if !ok {
		return nil, osuapi.ErrNotFound
	}
	return set, nil
}

func (f *fakeCatalogue) GetOsuFile(_ context.Context, beatmapID int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return []byte("osu file format v14\n"), nil
}

func (f *fakeCatalogue) setCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setCalls
}

func (f *fakeCatalogue) lookupCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookupCalls
}
