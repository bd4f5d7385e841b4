// Package memory keeps users, herds and milk records in process memory.
// It backs the server's "memory" storage mode and the HTTP API tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/milktracker/internal/common"
	"github.com/dmitrijs2005/milktracker/internal/models"
	"github.com/dmitrijs2005/milktracker/internal/server/repositories/milk"
)

type Store struct {
	mu      sync.RWMutex
	seq     int64
	users   map[int64]models.User
	herds   map[int64]models.Herd
	records map[int64]models.MilkRecord
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:   map[int64]models.User{},
		herds:   map[int64]models.Herd{},
		records: map[int64]models.MilkRecord{},
		now:     time.Now,
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// UserRepository, HerdRepository and MilkRepository are views over one Store
// so cascades and ownership checks see the same data.
type (
	UserRepository struct{ s *Store }
	HerdRepository struct{ s *Store }
	MilkRepository struct{ s *Store }
)

func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }
func (s *Store) Herds() *HerdRepository { return &HerdRepository{s: s} }
func (s *Store) Milk() *MilkRepository  { return &MilkRepository{s: s} }

// --- users ---

func (r *UserRepository) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.conflict(0, u.Email, u.Username) {
		return nil, common.ErrorAlreadyExists
	}
	if u.MembershipType == "" {
		u.MembershipType = models.MembershipFree
	}
	u.ID = r.s.nextID()
	u.IsActive = true
	u.CreatedAt = r.s.now()
	r.s.users[u.ID] = *u
	out := *u
	return &out, nil
}

func (s *Store) conflict(selfID int64, email, username string) bool {
	for id, other := range s.users {
		if id == selfID {
			continue
		}
		if strings.EqualFold(other.Email, email) || (username != "" && other.Username == username) {
			return true
		}
	}
	return false
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *UserRepository) find(match func(models.User) bool) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *UserRepository) Update(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.users[u.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if r.s.conflict(u.ID, u.Email, u.Username) {
		return nil, common.ErrorAlreadyExists
	}
	cur.Email, cur.Username, cur.PasswordHash, cur.MembershipType = u.Email, u.Username, u.PasswordHash, u.MembershipType
	r.s.users[u.ID] = cur
	return &cur, nil
}

func (r *UserRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.users, id)
	for hid, h := range r.s.herds {
		if h.UserID == id {
			r.s.deleteHerd(hid)
		}
	}
	return nil
}

// --- herds ---

func (s *Store) deleteHerd(id int64) {
	delete(s.herds, id)
	for rid, rec := range s.records {
		if rec.HerdID == id {
			delete(s.records, rid)
		}
	}
}

func (r *HerdRepository) Create(_ context.Context, userID int64, in models.HerdInput) (*models.Herd, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	h := models.Herd{
		ID:            r.s.nextID(),
		UserID:        userID,
		Name:          in.Name,
		CowCount:      in.CowCount,
		LocationLine1: in.LocationLine1,
		LocationLine2: in.LocationLine2,
		CreatedAt:     r.s.now(),
	}
	r.s.herds[h.ID] = h
	return &h, nil
}

func (r *HerdRepository) List(_ context.Context, userID int64, skip, limit int) ([]models.Herd, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Herd, 0)
	for _, h := range r.s.herds {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, skip, limit), nil
}

func (r *HerdRepository) Get(_ context.Context, userID, id int64) (*models.Herd, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	h, ok := r.s.herds[id]
	if !ok || h.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return &h, nil
}

func (r *HerdRepository) Update(_ context.Context, userID, id int64, in models.HerdInput) (*models.Herd, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h, ok := r.s.herds[id]
	if !ok || h.UserID != userID {
		return nil, common.ErrorNotFound
	}
	h.Name, h.CowCount, h.LocationLine1, h.LocationLine2 = in.Name, in.CowCount, in.LocationLine1, in.LocationLine2
	r.s.herds[id] = h
	return &h, nil
}

func (r *HerdRepository) Delete(_ context.Context, userID, id int64) (*models.Herd, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h, ok := r.s.herds[id]
	if !ok || h.UserID != userID {
		return nil, common.ErrorNotFound
	}
	r.s.deleteHerd(id)
	return &h, nil
}

// --- milk ---

func (s *Store) ownsRecord(userID int64, rec models.MilkRecord) bool {
	h, ok := s.herds[rec.HerdID]
	return ok && h.UserID == userID
}

func (r *MilkRepository) Create(_ context.Context, in models.MilkRecordInput) (*models.MilkRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec := models.MilkRecord{
		ID:                r.s.nextID(),
		HerdID:            in.HerdID,
		Date:              in.Date,
		AmountLiters:      in.AmountLiters,
		FatPercentage:     in.FatPercentage,
		ProteinPercentage: in.ProteinPercentage,
		CreatedAt:         r.s.now(),
	}
	r.s.records[rec.ID] = rec
	return &rec, nil
}

func (r *MilkRepository) selectRecords(userID int64, f milk.Filter) []models.MilkRecord {
	out := make([]models.MilkRecord, 0)
	for _, rec := range r.s.records {
		if !r.s.ownsRecord(userID, rec) {
			continue
		}
		if f.HerdID != 0 && rec.HerdID != f.HerdID {
			continue
		}
		if !f.Since.IsZero() && rec.Date.Before(f.Since) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func (r *MilkRepository) List(_ context.Context, userID int64, f milk.Filter) ([]models.MilkRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f.Since = time.Time{}
	return page(r.selectRecords(userID, f), f.Skip, f.Limit), nil
}

func (r *MilkRepository) Get(_ context.Context, userID, id int64) (*models.MilkRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.records[id]
	if !ok || !r.s.ownsRecord(userID, rec) {
		return nil, common.ErrorNotFound
	}
	return &rec, nil
}

func (r *MilkRepository) Update(_ context.Context, userID, id int64, in models.MilkRecordInput) (*models.MilkRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.records[id]
	if !ok || !r.s.ownsRecord(userID, rec) {
		return nil, common.ErrorNotFound
	}
	rec.HerdID, rec.Date, rec.AmountLiters = in.HerdID, in.Date, in.AmountLiters
	rec.FatPercentage, rec.ProteinPercentage = in.FatPercentage, in.ProteinPercentage
	r.s.records[id] = rec
	return &rec, nil
}

func (r *MilkRepository) Delete(_ context.Context, userID, id int64) (*models.MilkRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.records[id]
	if !ok || !r.s.ownsRecord(userID, rec) {
		return nil, common.ErrorNotFound
	}
	delete(r.s.records, id)
	return &rec, nil
}

func (r *MilkRepository) Totals(_ context.Context, userID int64, f milk.Filter) (float64, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	total := 0.0
	days := map[string]struct{}{}
	for _, rec := range r.selectRecords(userID, f) {
		total += rec.AmountLiters
		days[rec.Date.Format(time.DateOnly)] = struct{}{}
	}
	return total, len(days), nil
}

func page[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return items[:0]
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
