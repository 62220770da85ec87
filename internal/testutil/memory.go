// Package testutil holds in-memory stores and fakes shared by use case and handler tests.
package testutil

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/khoahotran/learnerhub/internal/application/service"
	"github.com/khoahotran/learnerhub/internal/domain/objective"
	"github.com/khoahotran/learnerhub/internal/domain/tag"
	"github.com/khoahotran/learnerhub/internal/domain/user"
	"github.com/khoahotran/learnerhub/pkg/apperror"
)

// TagRepo is a tag.Repository backed by a map. BeforeCreate runs before the name
// check and can be used to simulate a concurrent writer.
type TagRepo struct {
	mu           sync.Mutex
	kind         tag.Kind
	tags         map[uuid.UUID]tag.Tag
	order        []uuid.UUID
	BeforeCreate func(t *tag.Tag)
	CreateErr    error
	Creates      int
}

func NewTagRepo(kind tag.Kind) *TagRepo {
	return &TagRepo{kind: kind, tags: map[uuid.UUID]tag.Tag{}}
}

func (r *TagRepo) Kind() tag.Kind { return r.kind }

// Insert stores t without any checks.
func (r *TagRepo) Insert(t tag.Tag) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.Kind = r.kind
	r.tags[t.ID] = t
	r.order = append(r.order, t.ID)
}

func (r *TagRepo) Create(ctx context.Context, t *tag.Tag) error {
	if r.BeforeCreate != nil {
		r.BeforeCreate(t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return r.CreateErr
	}
	for _, existing := range r.tags {
		if existing.Name == t.Name {
			return apperror.NewConflict(r.kind.Label(), "name", t.Name)
		}
	}
	r.Creates++
	cp := *t
	cp.Kind = r.kind
	r.tags[t.ID] = cp
	r.order = append(r.order, t.ID)
	return nil
}

func (r *TagRepo) Update(ctx context.Context, t *tag.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tags[t.ID]; !ok {
		return apperror.NewNotFound(r.kind.Label(), t.ID.String())
	}
	for id, existing := range r.tags {
		if id != t.ID && existing.Name == t.Name {
			return apperror.NewConflict(r.kind.Label(), "name", t.Name)
		}
	}
	r.tags[t.ID] = *t
	return nil
}

func (r *TagRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tags[id]; !ok {
		return apperror.NewNotFound(r.kind.Label(), id.String())
	}
	delete(r.tags, id)
	return nil
}

func (r *TagRepo) FindByID(ctx context.Context, id uuid.UUID) (*tag.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tags[id]
	if !ok {
		return nil, apperror.NewNotFound(r.kind.Label(), id.String())
	}
	return &t, nil
}

func (r *TagRepo) FindByName(ctx context.Context, name string) (*tag.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tags {
		if t.Name == name {
			found := t
			return &found, nil
		}
	}
	return nil, apperror.NewNotFound(r.kind.Label(), name)
}

func (r *TagRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]tag.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []tag.Tag{}
	for _, id := range ids {
		if t, ok := r.tags[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *TagRepo) List(ctx context.Context) ([]tag.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []tag.Tag{}
	for _, id := range r.order {
		if t, ok := r.tags[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *TagRepo) SearchByName(ctx context.Context, partial string) ([]tag.Tag, error) {
	all, _ := r.List(ctx)
	out := []tag.Tag{}
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Name), strings.ToLower(partial)) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *TagRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tags), nil
}

// ObjectiveRepo is an objective.Repository backed by a map.
type ObjectiveRepo struct {
	mu    sync.Mutex
	objs  map[uuid.UUID]objective.Objective
	order []uuid.UUID
}

func NewObjectiveRepo() *ObjectiveRepo {
	return &ObjectiveRepo{objs: map[uuid.UUID]objective.Objective{}}
}

func (r *ObjectiveRepo) Create(ctx context.Context, o *objective.Objective) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.objs {
		if existing.UserID == o.UserID && existing.Title == o.Title {
			return apperror.NewConflict("Learning objective", "title", o.Title)
		}
	}
	r.objs[o.ID] = *o
	r.order = append(r.order, o.ID)
	return nil
}

func (r *ObjectiveRepo) Update(ctx context.Context, o *objective.Objective) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.objs[o.ID]
	if !ok || existing.UserID != o.UserID {
		return apperror.NewNotFound("Learning objective", o.ID.String())
	}
	for id, other := range r.objs {
		if id != o.ID && other.UserID == o.UserID && other.Title == o.Title {
			return apperror.NewConflict("Learning objective", "title", o.Title)
		}
	}
	r.objs[o.ID] = *o
	return nil
}

func (r *ObjectiveRepo) UpdateProgress(ctx context.Context, id uuid.UUID, progress int) (*objective.Objective, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.objs[id]
	if !ok {
		return nil, apperror.NewNotFound("Learning objective", id.String())
	}
	o.ProgressPercentage = progress
	r.objs[id] = o
	return &o, nil
}

func (r *ObjectiveRepo) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.objs[id]
	if !ok || o.UserID != userID {
		return apperror.NewNotFound("Learning objective", id.String())
	}
	delete(r.objs, id)
	return nil
}

func (r *ObjectiveRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, o := range r.objs {
		if o.UserID == userID {
			delete(r.objs, id)
			n++
		}
	}
	return n, nil
}

func (r *ObjectiveRepo) FindByID(ctx context.Context, id uuid.UUID) (*objective.Objective, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.objs[id]
	if !ok {
		return nil, apperror.NewNotFound("Learning objective", id.String())
	}
	return &o, nil
}

func (r *ObjectiveRepo) FindByTitleAndUser(ctx context.Context, title string, userID uuid.UUID) (*objective.Objective, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.objs {
		if o.UserID == userID && o.Title == title {
			found := o
			return &found, nil
		}
	}
	return nil, apperror.NewNotFound("Learning objective", title)
}

func (r *ObjectiveRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]objective.Objective, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []objective.Objective{}
	for _, id := range ids {
		if o, ok := r.objs[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *ObjectiveRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]objective.Objective, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []objective.Objective{}
	for _, id := range r.order {
		if o, ok := r.objs[id]; ok && o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *ObjectiveRepo) SearchByTitle(ctx context.Context, partial string) ([]objective.Objective, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []objective.Objective{}
	for _, id := range r.order {
		o, ok := r.objs[id]
		if ok && strings.Contains(strings.ToLower(o.Title), strings.ToLower(partial)) {
			out = append(out, o)
		}
	}
	return out, nil
}

// Count returns the number of stored objectives.
func (r *ObjectiveRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objs)
}

// UserRepo is a user.Repository backed by a map. It enforces username, email and
// keycloak id uniqueness like the database does.
type UserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.UserProfile
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: map[uuid.UUID]user.UserProfile{}}
}

func (r *UserRepo) uniqueViolation(p *user.UserProfile) error {
	for id, u := range r.users {
		if id == p.ID {
			continue
		}
		if u.Username == p.Username {
			return apperror.NewConflict("User", "username", p.Username)
		}
		if u.Email == p.Email {
			return apperror.NewConflict("User", "email", p.Email)
		}
		if u.KeycloakID != nil && p.KeycloakID != nil && *u.KeycloakID == *p.KeycloakID {
			return apperror.NewConflict("User", "keycloakId", *p.KeycloakID)
		}
	}
	return nil
}

func clone(p user.UserProfile) *user.UserProfile {
	p.SkillIDs = append([]uuid.UUID{}, p.SkillIDs...)
	p.InterestIDs = append([]uuid.UUID{}, p.InterestIDs...)
	p.ObjectiveIDs = append([]uuid.UUID{}, p.ObjectiveIDs...)
	p.PartnershipIDs = append([]string{}, p.PartnershipIDs...)
	return &p
}

func (r *UserRepo) Create(ctx context.Context, p *user.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.uniqueViolation(p); err != nil {
		return err
	}
	r.users[p.ID] = *clone(*p)
	return nil
}

func (r *UserRepo) Update(ctx context.Context, p *user.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[p.ID]; !ok {
		return apperror.NewNotFound("User", p.ID.String())
	}
	if err := r.uniqueViolation(p); err != nil {
		return err
	}
	r.users[p.ID] = *clone(*p)
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return apperror.NewNotFound("User", id.String())
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepo) find(match func(u user.UserProfile) bool, ident string) (*user.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, apperror.NewNotFound("User", ident)
}

func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*user.UserProfile, error) {
	return r.find(func(u user.UserProfile) bool { return u.ID == id }, id.String())
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*user.UserProfile, error) {
	return r.find(func(u user.UserProfile) bool { return u.Username == username }, username)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*user.UserProfile, error) {
	return r.find(func(u user.UserProfile) bool { return u.Email == email }, email)
}

func (r *UserRepo) FindByKeycloakID(ctx context.Context, keycloakID string) (*user.UserProfile, error) {
	return r.find(func(u user.UserProfile) bool {
		return u.KeycloakID != nil && *u.KeycloakID == keycloakID
	}, keycloakID)
}

func (r *UserRepo) filter(match func(u user.UserProfile) bool) []*user.UserProfile {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*user.UserProfile{}
	for _, u := range r.users {
		if match(u) {
			out = append(out, clone(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *UserRepo) List(ctx context.Context) ([]*user.UserProfile, error) {
	return r.filter(func(user.UserProfile) bool { return true }), nil
}

func (r *UserRepo) ListBySkill(ctx context.Context, skillID uuid.UUID) ([]*user.UserProfile, error) {
	return r.filter(func(u user.UserProfile) bool { return containsID(u.SkillIDs, skillID) }), nil
}

func (r *UserRepo) ListByInterest(ctx context.Context, interestID uuid.UUID) ([]*user.UserProfile, error) {
	return r.filter(func(u user.UserProfile) bool { return containsID(u.InterestIDs, interestID) }), nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Publisher records published events.
type Publisher struct {
	mu     sync.Mutex
	events []service.ProfileEvent
	Err    error
}

func (p *Publisher) PublishProfileEvent(ctx context.Context, evt service.ProfileEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *Publisher) Events() []service.ProfileEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]service.ProfileEvent{}, p.events...)
}

// Uploader returns URL for every upload and remembers the last folder and public id.
type Uploader struct {
	URL      string
	Err      error
	Folder   string
	PublicID string
	Body     []byte
}

func (u *Uploader) Upload(ctx context.Context, file io.Reader, folder string, publicID string) (string, error) {
	if u.Err != nil {
		return "", u.Err
	}
	body, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	u.Folder, u.PublicID, u.Body = folder, publicID, body
	return u.URL, nil
}

func (u *Uploader) Delete(ctx context.Context, publicID string) error {
	if u.Err != nil {
		return u.Err
	}
	if publicID == "" {
		return errors.New("empty public id")
	}
	return nil
}
