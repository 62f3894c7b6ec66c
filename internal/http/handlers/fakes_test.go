package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/juliusiqbal/ai-img-gen/internal/domain"
	"github.com/juliusiqbal/ai-img-gen/internal/generation"
	"github.com/juliusiqbal/ai-img-gen/internal/promptsynth"
)

type memCategories struct {
	mu      sync.Mutex
	items   map[int64]*domain.Category
	nextID  int64
	updates int
}

func newMemCategories(seed ...domain.Category) *memCategories {
	m := &memCategories{items: map[int64]*domain.Category{}}
	for _, c := range seed {
		c := c
		m.items[c.ID] = &c
		if c.ID > m.nextID {
			m.nextID = c.ID
		}
	}
	return m
}

func (m *memCategories) List(ctx context.Context) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Category, 0, len(m.items))
	for _, c := range m.items {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memCategories) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (m *memCategories) FirstOrCreate(ctx context.Context, name, description, details string) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	m.nextID++
	c := &domain.Category{ID: m.nextID, Name: name, Description: description, Details: details}
	m.items[c.ID] = c
	cp := *c
	return &cp, nil
}

func (m *memCategories) UpdateDetails(ctx context.Context, id int64, details string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Details = details
	m.updates++
	return nil
}

type memTemplates struct {
	items []domain.Template
}

func (m *memTemplates) Create(ctx context.Context, t *domain.Template) error {
	t.ID = int64(len(m.items) + 1)
	m.items = append(m.items, *t)
	return nil
}

func (m *memTemplates) GetByID(ctx context.Context, id int64) (*domain.Template, error) {
	for _, t := range m.items {
		if t.ID == id {
			cp := t
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("template %d: %w", id, domain.ErrNotFound)
}

func (m *memTemplates) List(ctx context.Context, categoryID int64) ([]domain.Template, error) {
	out := []domain.Template{}
	for _, t := range m.items {
		if categoryID == 0 || t.CategoryID == categoryID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTemplates) ListByIDs(ctx context.Context, ids []int64) ([]domain.Template, error) {
	out := []domain.Template{}
	for _, id := range ids {
		if t, err := m.GetByID(ctx, id); err == nil {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTemplates) ListByProject(ctx context.Context, projectName string) ([]domain.Template, error) {
	out := []domain.Template{}
	for _, t := range m.items {
		if t.ProjectName == projectName {
			out = append(out, t)
		}
	}
	return out, nil
}

type memJobs struct {
	items map[int64]*domain.GenerationJob
}

func newMemJobs() *memJobs {
	return &memJobs{items: map[int64]*domain.GenerationJob{}}
}

func (m *memJobs) Create(ctx context.Context, job *domain.GenerationJob) error {
	job.ID = int64(len(m.items) + 1)
	cp := *job
	m.items[job.ID] = &cp
	return nil
}

func (m *memJobs) UpdateStatus(ctx context.Context, id int64, status domain.JobStatus, errMsg string) error {
	job, ok := m.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	job.Status = status
	job.ErrorMessage = errMsg
	return nil
}

func (m *memJobs) GetByID(ctx context.Context, id int64) (*domain.GenerationJob, error) {
	job, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("job %d: %w", id, domain.ErrNotFound)
	}
	cp := *job
	return &cp, nil
}

type memStore struct {
	blobs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{blobs: map[string][]byte{}}
}

func (s *memStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	s.blobs[key] = append([]byte(nil), data...)
	return key, nil
}

func (s *memStore) Read(ctx context.Context, key string) ([]byte, error) {
	data, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("storage: %s: %w", key, domain.ErrNotFound)
	}
	return data, nil
}

func (s *memStore) URL(key string) string {
	return "/files/" + key
}

type stubGenerator struct {
	result  *generation.Result
	err     error
	calls   int
	lastReq generation.Request
}

func (s *stubGenerator) Generate(ctx context.Context, req generation.Request) (*generation.Result, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubPrompts struct {
	prompts   []string
	err       error
	lastReq   promptsynth.Request
	lastCount int
}

func (s *stubPrompts) SynthesizeBatch(ctx context.Context, req promptsynth.Request, count int) ([]promptsynth.GeneratedPrompt, error) {
	s.lastReq = req
	s.lastCount = count
	if s.err != nil {
		return nil, s.err
	}
	out := make([]promptsynth.GeneratedPrompt, 0, count)
	for i := 0; i < count && i < len(s.prompts); i++ {
		out = append(out, promptsynth.GeneratedPrompt{Text: s.prompts[i], Variation: i})
	}
	return out, nil
}

type testEnv struct {
	app        *App
	categories *memCategories
	templates  *memTemplates
	jobs       *memJobs
	store      *memStore
	generator  *stubGenerator
	prompts    *stubPrompts
}

func newTestEnv(seed ...domain.Category) *testEnv {
	env := &testEnv{
		categories: newMemCategories(seed...),
		templates:  &memTemplates{},
		jobs:       newMemJobs(),
		store:      newMemStore(),
		generator:  &stubGenerator{},
		prompts:    &stubPrompts{},
	}
	env.app = &App{
		Categories: env.categories,
		Templates:  env.templates,
		Jobs:       env.jobs,
		Store:      env.store,
		Generator:  env.generator,
		Prompts:    env.prompts,
		Logger:     zerolog.Nop(),
	}
	return env
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
