package ingest

import (
	"context"
	"slices"
	"sync"

	"github.com/kailas-cloud/schoolkeuze/internal/domain/admissions"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/level"
	domschool "github.com/kailas-cloud/schoolkeuze/internal/domain/school"
)

type mockSource struct {
	listFn func(ctx context.Context) ([]domschool.School, error)
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) List(ctx context.Context) ([]domschool.School, error) {
	return m.listFn(ctx)
}

type mockTarget struct {
	ensureFn func(ctx context.Context) error
	deleteFn func(ctx context.Context, source string) (int, error)
	upsertFn func(ctx context.Context, schools []domschool.School) error

	mu      sync.Mutex
	calls   []string
	written []domschool.School
	chunks  int
}

func (m *mockTarget) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *mockTarget) EnsureIndex(ctx context.Context) error {
	m.record("ensure")
	if m.ensureFn != nil {
		return m.ensureFn(ctx)
	}
	return nil
}

func (m *mockTarget) DeleteBySource(ctx context.Context, source string) (int, error) {
	m.record("delete:" + source)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, source)
	}
	return 0, nil
}

func (m *mockTarget) UpsertMany(ctx context.Context, schools []domschool.School) error {
	if m.upsertFn != nil {
		if err := m.upsertFn(ctx, schools); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks++
	m.written = append(m.written, schools...)
	return nil
}

func (m *mockTarget) writtenIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.written))
	for i := range m.written {
		out = append(out, m.written[i].ID())
	}
	slices.Sort(out)
	return out
}

type mockRewriter struct {
	rewriteFn func(build func(name, websiteURL string, levels []level.Level) admissions.Info) (int, error)
}

func (m *mockRewriter) RewriteAdmissions(
	build func(name, websiteURL string, levels []level.Level) admissions.Info,
) (int, error) {
	return m.rewriteFn(build)
}
