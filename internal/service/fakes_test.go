package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"flipyard/internal/config"
	"flipyard/internal/models"
	"flipyard/internal/notify"
	"flipyard/internal/repository"
	"flipyard/internal/security"
)

type fakeUsers struct {
	mu   sync.Mutex
	byID map[string]models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]models.User{}}
}

func (f *fakeUsers) Create(ctx context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.Email || u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUsers) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]models.User, 0, len(f.byID))
	for _, u := range f.byID {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	if offset >= len(users) {
		return nil, nil
	}
	users = users[offset:]
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (f *fakeUsers) update(id string, fn func(*models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	fn(&u)
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	return f.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (f *fakeUsers) SetBanned(ctx context.Context, id string, banned bool) error {
	return f.update(id, func(u *models.User) { u.IsBanned = banned })
}

func (f *fakeUsers) SetAdmin(ctx context.Context, id string, admin bool) error {
	return f.update(id, func(u *models.User) { u.IsAdmin = admin })
}

type fakeSessions struct {
	mu    sync.Mutex
	users *fakeUsers
	rows  map[string]models.Session
}

func newFakeSessions(users *fakeUsers) *fakeSessions {
	return &fakeSessions{users: users, rows: map[string]models.Session{}}
}

func (f *fakeSessions) Create(ctx context.Context, session models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[session.ID] = session
	return nil
}

func (f *fakeSessions) GetWithUser(ctx context.Context, id string) (models.Session, models.User, error) {
	f.mu.Lock()
	session, ok := f.rows[id]
	f.mu.Unlock()
	if !ok {
		return models.Session{}, models.User{}, repository.ErrSessionNotFound
	}
	user, err := f.users.GetByID(ctx, session.UserID)
	if err != nil {
		return models.Session{}, models.User{}, repository.ErrSessionNotFound
	}
	return session, user, nil
}

func (f *fakeSessions) DeleteByID(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeSessions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeResets struct {
	mu   sync.Mutex
	rows []models.PasswordResetToken
}

func (f *fakeResets) Create(ctx context.Context, token models.PasswordResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, token)
	return nil
}

func (f *fakeResets) FindUsable(ctx context.Context, hash string, now time.Time) (models.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.rows {
		if t.TokenHash == hash && t.ExpiresAt.After(now) && t.UsedAt == nil {
			return t, nil
		}
	}
	return models.PasswordResetToken{}, repository.ErrResetTokenNotFound
}

func (f *fakeResets) MarkUsed(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.rows {
		if t.ID == id && t.UsedAt == nil {
			f.rows[i].UsedAt = &at
			return nil
		}
	}
	return repository.ErrResetTokenNotFound
}

type fakeNotifier struct {
	mu        sync.Mutex
	resets    []notify.PasswordResetEmail
	inquiries []notify.InquiryEmail
	err       error
}

func (f *fakeNotifier) SendPasswordReset(ctx context.Context, msg notify.PasswordResetEmail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, msg)
	return f.err
}

func (f *fakeNotifier) SendInquiry(ctx context.Context, msg notify.InquiryEmail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inquiries = append(f.inquiries, msg)
	return f.err
}

type fakeLimiter struct {
	allow bool
	keys  []string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allow, nil
}

type fakeObjects struct {
	puts    map[string][]byte
	removed []string
}

func (f *fakeObjects) Bucket() string { return "flipyard-listings" }

func (f *fakeObjects) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if f.puts == nil {
		f.puts = map[string][]byte{}
	}
	f.puts[key] = data
	return nil
}

func (f *fakeObjects) Remove(ctx context.Context, key string) error {
	f.removed = append(f.removed, key)
	return nil
}

func (f *fakeObjects) PublicURL(key string) string {
	return "https://cdn.example/" + key
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		BaseURL: "http://localhost:3000/",
		Security: config.SecurityConfig{
			SessionSecret: strings.Repeat("k", 32),
			SessionTTL:    7 * 24 * time.Hour,
			ResetTokenTTL: time.Hour,
			BcryptCost:    bcrypt.MinCost,
		},
	}
}

func testHasher(t *testing.T) *security.PasswordHasher {
	t.Helper()
	h, err := security.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func sessionRow(id, userID string, expiresAt time.Time) models.Session {
	return models.Session{ID: id, UserID: userID, ExpiresAt: expiresAt, CreatedAt: expiresAt.Add(-time.Hour)}
}

type fakeListings struct {
	mu       sync.Mutex
	rows     map[string]models.Listing
	owners   map[string]string // image id -> owner, unattached images
	filter   repository.ListingFilter
	attached map[string][]string
}

func newFakeListings() *fakeListings {
	return &fakeListings{
		rows:     map[string]models.Listing{},
		owners:   map[string]string{},
		attached: map[string][]string{},
	}
}

func (f *fakeListings) CreateWithImages(ctx context.Context, listing models.Listing, imageIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range imageIDs {
		if f.owners[id] != listing.SellerID {
			return repository.ErrImageNotFound
		}
	}
	for _, id := range imageIDs {
		delete(f.owners, id)
		listing.Images = append(listing.Images, "https://cdn.example/"+id)
	}
	f.attached[listing.ID] = imageIDs
	f.rows[listing.ID] = listing
	return nil
}

func (f *fakeListings) Update(ctx context.Context, listing models.Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[listing.ID]; !ok {
		return repository.ErrListingNotFound
	}
	f.rows[listing.ID] = listing
	return nil
}

func (f *fakeListings) GetByID(ctx context.Context, id string) (models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.rows[id]
	if !ok {
		return models.Listing{}, repository.ErrListingNotFound
	}
	return l, nil
}

func (f *fakeListings) Search(ctx context.Context, filter repository.ListingFilter) ([]models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = filter
	out := []models.Listing{}
	for _, l := range f.rows {
		if l.Status == models.ListingStatusActive {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeListings) ListBySeller(ctx context.Context, sellerID string) ([]models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Listing{}
	for _, l := range f.rows {
		if l.SellerID == sellerID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeInquiries struct {
	rows []models.Inquiry
}

func (f *fakeInquiries) Create(ctx context.Context, inquiry models.Inquiry) error {
	f.rows = append(f.rows, inquiry)
	return nil
}

func (f *fakeInquiries) ListForSeller(ctx context.Context, sellerID string, limit, offset int) ([]models.Inquiry, error) {
	return f.rows, nil
}

type fakeImages struct {
	rows []models.ListingImage
	err  error
}

func (f *fakeImages) Create(ctx context.Context, image models.ListingImage) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, image)
	return nil
}
