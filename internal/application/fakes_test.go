package application

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coursewire/coursewire/internal/domain/entity"
	"github.com/coursewire/coursewire/internal/domain/repository"
	"github.com/coursewire/coursewire/pkg/mailer"
	"github.com/coursewire/coursewire/pkg/media"
	"github.com/coursewire/coursewire/pkg/payments"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeUserRepo is an in-memory UserRepository mirroring the store's
// conditional semantics (unique email, single-use reset token, playlist
// insert-if-absent).
type fakeUserRepo struct {
	mu       sync.Mutex
	seq      int
	users    map[string]*entity.User
	playlist map[string][]entity.PlaylistItem
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[string]*entity.User),
		playlist: make(map[string][]entity.PlaylistItem),
	}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) List(_ context.Context) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range r.users {
		if id != u.ID && other.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	stored.Name = u.Name
	stored.Email = u.Email
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = passwordHash
	return nil
}

func (r *fakeUserRepo) UpdateAvatar(_ context.Context, id, avatarID, avatarURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.AvatarID = avatarID
	u.AvatarURL = avatarURL
	return nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	return nil
}

func (r *fakeUserRepo) UpdateSubscription(_ context.Context, id, subscriptionID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.SubscriptionID = &subscriptionID
	u.SubscriptionStatus = &status
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	delete(r.playlist, id)
	return nil
}

func (r *fakeUserRepo) SetResetToken(_ context.Context, id, tokenHash string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ResetTokenHash = &tokenHash
	u.ResetTokenExpires = &expires
	return nil
}

func (r *fakeUserRepo) ConsumeResetToken(_ context.Context, tokenHash, newPasswordHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash &&
			u.ResetTokenExpires != nil && u.ResetTokenExpires.After(time.Now()) {
			u.Password = newPasswordHash
			u.ResetTokenHash = nil
			u.ResetTokenExpires = nil
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) AddPlaylistItem(_ context.Context, userID, courseID, posterURL string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.playlist[userID] {
		if item.CourseID == courseID {
			return false, nil
		}
	}
	r.playlist[userID] = append(r.playlist[userID], entity.PlaylistItem{
		CourseID:  courseID,
		PosterURL: posterURL,
		AddedAt:   time.Now(),
	})
	return true, nil
}

func (r *fakeUserRepo) RemovePlaylistItem(_ context.Context, userID, courseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.playlist[userID]
	for i, item := range items {
		if item.CourseID == courseID {
			r.playlist[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeUserRepo) GetPlaylist(_ context.Context, userID string) ([]entity.PlaylistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.PlaylistItem(nil), r.playlist[userID]...), nil
}

func (r *fakeUserRepo) CountUsers(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) CountActiveSubscriptions(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.HasActiveSubscription() {
			n++
		}
	}
	return n, nil
}

// fakeCourseRepo is an in-memory CourseRepository.
type fakeCourseRepo struct {
	mu       sync.Mutex
	seq      int
	courses  map[string]*entity.Course
	lectures map[string]*entity.Lecture
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{
		courses:  make(map[string]*entity.Course),
		lectures: make(map[string]*entity.Lecture),
	}
}

func (r *fakeCourseRepo) Create(_ context.Context, c *entity.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	c.ID = fmt.Sprintf("course-%d", r.seq)
	c.CreatedAt = time.Now()
	cp := *c
	r.courses[c.ID] = &cp
	return nil
}

func (r *fakeCourseRepo) GetByID(_ context.Context, id string) (*entity.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCourseRepo) List(_ context.Context) ([]*entity.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Course, 0, len(r.courses))
	for _, c := range r.courses {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeCourseRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.courses, id)
	for lid, l := range r.lectures {
		if l.CourseID == id {
			delete(r.lectures, lid)
		}
	}
	return nil
}

func (r *fakeCourseRepo) IncrementViews(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Views++
	return nil
}

func (r *fakeCourseRepo) SumViews(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.courses {
		n += c.Views
	}
	return n, nil
}

func (r *fakeCourseRepo) AddLecture(_ context.Context, l *entity.Lecture) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[l.CourseID]
	if !ok {
		return repository.ErrNotFound
	}
	r.seq++
	l.ID = fmt.Sprintf("lecture-%d", r.seq)
	cp := *l
	r.lectures[l.ID] = &cp
	c.NumVideos++
	return nil
}

func (r *fakeCourseRepo) GetLecture(_ context.Context, id string) (*entity.Lecture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lectures[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeCourseRepo) GetLectures(_ context.Context, courseID string) ([]*entity.Lecture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Lecture
	for _, l := range r.lectures {
		if l.CourseID == courseID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) DeleteLecture(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lectures[id]
	if !ok {
		return repository.ErrNotFound
	}
	if c, ok := r.courses[l.CourseID]; ok && c.NumVideos > 0 {
		c.NumVideos--
	}
	delete(r.lectures, id)
	return nil
}

// fakeStatsRepo records snapshots in order.
type fakeStatsRepo struct {
	mu        sync.Mutex
	snapshots []*entity.Snapshot
}

func (r *fakeStatsRepo) CreateSnapshot(_ context.Context, s *entity.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	cp.ID = fmt.Sprintf("snap-%d", len(r.snapshots)+1)
	cp.CreatedAt = time.Now()
	r.snapshots = append(r.snapshots, &cp)
	return nil
}

func (r *fakeStatsRepo) UpdateLatest(ctx context.Context, users, subscriptions, views int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		r.snapshots = append(r.snapshots, &entity.Snapshot{
			ID: "snap-1", Users: users, Subscriptions: subscriptions, Views: views, CreatedAt: time.Now(),
		})
		return nil
	}
	latest := r.snapshots[len(r.snapshots)-1]
	latest.Users = users
	latest.Subscriptions = subscriptions
	latest.Views = views
	return nil
}

func (r *fakeStatsRepo) GetLatest(_ context.Context) (*entity.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		return nil, repository.ErrNotFound
	}
	cp := *r.snapshots[len(r.snapshots)-1]
	return &cp, nil
}

func (r *fakeStatsRepo) ListRecent(_ context.Context, limit int) ([]*entity.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Snapshot, 0, limit)
	for i := len(r.snapshots) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *r.snapshots[i]
		out = append(out, &cp)
	}
	return out, nil
}

// fakeMediaHost assigns sequential asset ids and remembers deletions.
type fakeMediaHost struct {
	mu       sync.Mutex
	seq      int
	uploads  []string
	deleted  []string
	uploadEr error
}

func (h *fakeMediaHost) Upload(_ context.Context, _ io.Reader, filename, _ string) (media.Asset, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.uploadEr != nil {
		return media.Asset{}, h.uploadEr
	}
	h.seq++
	id := fmt.Sprintf("asset-%d-%s", h.seq, filename)
	h.uploads = append(h.uploads, id)
	return media.Asset{ID: id, URL: "https://media.test/" + id}, nil
}

func (h *fakeMediaHost) Delete(_ context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deleted = append(h.deleted, id)
	return nil
}

// fakePublisher captures enqueued email jobs.
type fakePublisher struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if job, ok := body.(mailer.EmailJob); ok {
		p.jobs = append(p.jobs, job)
	}
	return nil
}

// fakeProcessor returns a canned subscription.
type fakeProcessor struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *fakeProcessor) CreateSubscription(_ context.Context, customerID, priceID, paymentMethod string) (payments.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return payments.Subscription{}, p.err
	}
	return payments.Subscription{ID: "sub_test", Status: "active"}, nil
}
