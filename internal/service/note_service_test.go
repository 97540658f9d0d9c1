package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/haierkeys/flownote-service/internal/dao"
	"github.com/haierkeys/flownote-service/internal/domain"
	"github.com/haierkeys/flownote-service/internal/dto"
	"github.com/haierkeys/flownote-service/pkg/app"
	"github.com/haierkeys/flownote-service/pkg/code"
	"github.com/haierkeys/flownote-service/pkg/kvstore"
	"github.com/haierkeys/flownote-service/pkg/util"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTagger returns fixed suggestions or a fixed error
type stubTagger struct {
	mu    sync.Mutex
	tags  []string
	err   error
	calls int
}

func (s *stubTagger) Suggest(_ context.Context, _ string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.tags, s.err
}

type testEnv struct {
	svc     NoteService
	impl    *noteService
	tagger  *stubTagger
	metrics *Metrics
	now     time.Time
}

func newTestEnv(t *testing.T, mode string) *testEnv {
	t.Helper()
	local := dao.NewLocalNoteRepository(kvstore.NewMemoryStore(), nil, nil)
	remote := dao.NewLocalNoteRepository(kvstore.NewMemoryStore(), nil, nil)
	tagger := &stubTagger{err: ErrTaggingDisabled}
	metrics := NewMetrics(prometheus.NewRegistry())

	svc := NewNoteService(local, remote, tagger, NotesServiceConfig{
		Persistence: mode,
		SpecialTags: DefaultSpecialTags,
	}, metrics, nil)

	env := &testEnv{
		svc:     svc,
		impl:    svc.(*noteService),
		tagger:  tagger,
		metrics: metrics,
		now:     time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC),
	}
	env.impl.clock = func() time.Time { return env.now }
	return env
}

func (e *testEnv) create(t *testing.T, identity domain.Identity, content string) *dto.NoteDTO {
	t.Helper()
	res, err := e.svc.Create(context.Background(), identity, &dto.NoteCreateRequest{Content: content})
	require.NoError(t, err)
	return res.Note
}

func codeOf(t *testing.T, err error) int {
	t.Helper()
	var c *code.Code
	require.True(t, errors.As(err, &c), "expected *code.Code, got %v", err)
	return c.Code()
}

var anon = domain.Identity{ClientID: "tab-1"}

func TestCreate_DerivesTitleAndTags(t *testing.T) {
	env := newTestEnv(t, PersistenceAuto)

	res, err := env.svc.Create(context.Background(), anon, &dto.NoteCreateRequest{Content: "Buy milk #errand/home"})
	require.NoError(t, err)

	assert.Equal(t, "Buy milk", res.Note.Title)
	assert.Equal(t, []string{"errand/home"}, res.Note.Tags)
	assert.Equal(t, dto.TaggingStatusDisabled, res.TaggingStatus)
	assert.Empty(t, res.TaggingMessage)
	assert.NotEmpty(t, res.Note.ID)
	assert.True(t, res.Note.CreatedAt.Time().Equal(env.now))
	assert.Equal(t, res.Note.CreatedAt, res.Note.UpdatedAt)
}

func TestCreate_BlankNote(t *testing.T) {
	env := newTestEnv(t, PersistenceAuto)
	ctx := context.Background()

	for _, content := range []string{"", "   \n\t"} {
		_, err := env.svc.Create(ctx, anon, &dto.NoteCreateRequest{Content: content})
		assert.Equal(t, code.ErrorNoteContentEmpty.Code(), codeOf(t, err))
	}

	res, err := env.svc.Create(ctx, anon, &dto.NoteCreateRequest{ImageDataURI: "data:image/png;base64,AAAA"})
	require.NoError(t, err)
	assert.Equal(t, "", res.Note.Title)
	assert.Equal(t, []string{}, res.Note.Tags)
}

func TestCreate_AITagging(t *testing.T) {
	tests := []struct {
		name        string
		suggested   []string
		err         error
		wantTags    []string
		wantStatus  string
		wantMessage string
	}{
		{
			name:       "suggestions merged with manual tags",
			suggested:  []string{"#ideas", "bad tag", "errand/home", "food"},
			wantTags:   []string{"errand/home", "food", "ideas"},
			wantStatus: dto.TaggingStatusOK,
		},
		{
			name:        "failure keeps manual tags",
			err:         errors.New("upstream 503"),
			wantTags:    []string{"errand/home"},
			wantStatus:  dto.TaggingStatusFailed,
			wantMessage: "Note saved with manually extracted tags: errand/home. AI tagging failed.",
		},
		{
			name:       "disabled is silent",
			err:        ErrTaggingDisabled,
			wantTags:   []string{"errand/home"},
			wantStatus: dto.TaggingStatusDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, PersistenceAuto)
			env.tagger.tags, env.tagger.err = tt.suggested, tt.err

			res, err := env.svc.Create(context.Background(), anon, &dto.NoteCreateRequest{Content: "Buy milk #errand/home"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantTags, res.Note.Tags)
			assert.Equal(t, tt.wantStatus, res.TaggingStatus)
			assert.Equal(t, tt.wantMessage, res.TaggingMessage)

			stored, err := env.svc.Get(context.Background(), anon, res.Note.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTags, stored.Tags)
		})
	}
}

func TestUpdate(t *testing.T) {
	env := newTestEnv(t, PersistenceAuto)
	ctx := context.Background()
	created := env.create(t, anon, "draft #a")

	env.now = env.now.Add(2 * time.Hour)
	res, err := env.svc.Update(ctx, anon, &dto.NoteUpdateRequest{ID: created.ID, Content: "final #b\nbody"})
	require.NoError(t, err)

	assert.Equal(t, "final", res.Note.Title)
	assert.Equal(t, []string{"b"}, res.Note.Tags)
	assert.True(t, created.CreatedAt.Time().Equal(res.Note.CreatedAt.Time()), "createdAt is kept")
	assert.True(t, res.Note.UpdatedAt.Time().Equal(env.now))

	_, err = env.svc.Update(ctx, anon, &dto.NoteUpdateRequest{ID: "missing", Content: "x"})
	assert.ErrorIs(t, err, code.ErrorNoteNotFound)

	_, err = env.svc.Update(ctx, anon, &dto.NoteUpdateRequest{ID: created.ID, Content: " "})
	assert.Equal(t, code.ErrorNoteContentEmpty.Code(), codeOf(t, err))
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t, PersistenceAuto)
	ctx := context.Background()
	created := env.create(t, anon, "bye")

	require.NoError(t, env.svc.Delete(ctx, anon, created.ID))
	assert.ErrorIs(t, env.svc.Delete(ctx, anon, created.ID), code.ErrorNoteNotFound)

	_, err := env.svc.Get(ctx, anon, created.ID)
	assert.ErrorIs(t, err, code.ErrorNoteNotFound)
}

func TestList_FilterAndPaging(t *testing.T) {
	env := newTestEnv(t, PersistenceAuto)
	ctx := context.Background()

	contents := []string{
		"one #work #urgent",
		"two #work",
		"three #urgent",
		"Four Meeting #work #urgent",
	}
	for _, c := range contents {
		env.create(t, anon, c)
		env.now = env.now.Add(time.Minute)
	}

	list, total, err := env.svc.List(ctx, anon, &dto.NoteListFilter{Tags: []string{"work", "urgent"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"Four Meeting", "one"}, titles(list))

	list, total, err = env.svc.List(ctx, anon, &dto.NoteListFilter{Keyword: "MEETING"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, []string{"Four Meeting"}, titles(list))

	list, total, err = env.svc.List(ctx, anon, nil, &app.Pager{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, []string{"one"}, titles(list))

	list, _, err = env.svc.List(ctx, anon, nil, &app.Pager{Page: 9, PageSize: 3})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func titles(list []*dto.NoteDTO) []string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		out = append(out, n.Title)
	}
	return out
}

func TestTags(t *testing.T) {
	env := newTestEnv(t, PersistenceAuto)
	ctx := context.Background()
	env.create(t, anon, "#成长/读书 #work/projects")
	env.create(t, anon, "#work #产品")

	tags, err := env.svc.AllTags(ctx, anon)
	require.NoError(t, err)
	assert.Equal(t, []string{"work", "work/projects", "产品", "成长/读书"}, tags)

	forest, err := env.svc.TagTree(ctx, anon)
	require.NoError(t, err)
	require.Len(t, forest.Special, 2)
	assert.Equal(t, "产品", forest.Special[0].Name)
	assert.Equal(t, "成长", forest.Special[1].Name)
	assert.False(t, forest.Special[1].IsActualTag)
	require.Len(t, forest.Regular, 1)
	assert.True(t, forest.Find("work/projects").IsActualTag)
}

func TestRender_Mentions(t *testing.T) {
	env := newTestEnv(t, PersistenceAuto)
	ctx := context.Background()

	a := env.create(t, anon, "Alpha note #x")
	b := env.create(t, anon, "see "+util.MentionToken(a.ID)+" now")

	rendered, err := env.svc.Render(ctx, anon, b.ID)
	require.NoError(t, err)
	require.Len(t, rendered.Mentions, 1)
	assert.True(t, rendered.Mentions[0].Found)
	assert.Equal(t, "Alpha note", rendered.Mentions[0].Label)
	assert.Contains(t, rendered.HTML, `<a href="#note-`+a.ID+`">@Alpha note</a>`)
	assert.Len(t, rendered.Segments, 3)

	backlinks, err := env.svc.Backlinks(ctx, anon, a.ID)
	require.NoError(t, err)
	require.Len(t, backlinks, 1)
	assert.Equal(t, b.ID, backlinks[0].ID)

	require.NoError(t, env.svc.Delete(ctx, anon, a.ID))

	rendered, err = env.svc.Render(ctx, anon, b.ID)
	require.NoError(t, err)
	require.Len(t, rendered.Mentions, 1)
	assert.False(t, rendered.Mentions[0].Found)
	assert.Equal(t, "Note (ID: "+a.ID[:8]+"...) [not found]", rendered.Mentions[0].Label)
	assert.Contains(t, rendered.HTML, "<em>")
	assert.Contains(t, rendered.HTML, "[not found]")

	_, err = env.svc.Render(ctx, anon, "missing")
	assert.ErrorIs(t, err, code.ErrorNoteNotFound)
}

func TestParseNote(t *testing.T) {
	res := ParseNote("Buy milk #errand/home\nsee [[note:abc]]")
	assert.Equal(t, "Buy milk", res.Title)
	assert.Equal(t, []string{"errand/home"}, res.Tags)
	require.Len(t, res.Mentions, 1)
	assert.Equal(t, "abc", res.Mentions[0].NoteID)
	assert.Empty(t, res.Mentions[0].Label)
	assert.Equal(t, "[[note:abc]]", "Buy milk #errand/home\nsee [[note:abc]]"[res.Mentions[0].Start:res.Mentions[0].End])

	empty := ParseNote("")
	assert.Equal(t, "", empty.Title)
	assert.Empty(t, empty.Tags)
	assert.NotNil(t, empty.Mentions)
}

func TestMentionLabel(t *testing.T) {
	long := strings.Repeat("长", 31)
	tests := []struct {
		name string
		note domain.Note
		want string
	}{
		{name: "title wins", note: domain.Note{Title: "Hello", Content: "Hello #x"}, want: "Hello"},
		{name: "short snippet", note: domain.Note{Content: "#only #tags"}, want: "#only #tags"},
		{name: "long snippet", note: domain.Note{Content: long}, want: strings.Repeat("长", 30) + "..."},
		{name: "image note", note: domain.Note{Content: "  ", ImageDataURI: "data:image/png;base64,AA"}, want: "Image Note"},
		{name: "untitled", note: domain.Note{}, want: "Untitled Note"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MentionLabel(&tt.note))
		})
	}

	assert.Equal(t, "Note (ID: abc...) [not found]", MissingMentionLabel("abc"))
}

func TestPersistenceRouting(t *testing.T) {
	ctx := context.Background()
	user := domain.Identity{UID: 42, ClientID: "tab-1"}

	t.Run("auto splits by identity", func(t *testing.T) {
		env := newTestEnv(t, PersistenceAuto)
		env.create(t, anon, "local note")
		env.create(t, user, "remote note")

		localList, _, err := env.svc.List(ctx, anon, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"local note"}, titles(localList))

		remoteList, _, err := env.svc.List(ctx, user, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"remote note"}, titles(remoteList))
	})

	t.Run("remote requires identity", func(t *testing.T) {
		env := newTestEnv(t, PersistenceRemote)
		_, err := env.svc.Create(ctx, anon, &dto.NoteCreateRequest{Content: "x"})
		assert.ErrorIs(t, err, code.ErrorNotUserAuthToken)
	})

	t.Run("local ignores identity", func(t *testing.T) {
		env := newTestEnv(t, PersistenceLocal)
		env.create(t, domain.Identity{UID: 42, ClientID: "tab-9"}, "mine")
		list, _, err := env.svc.List(ctx, domain.Identity{ClientID: "tab-9"}, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"mine"}, titles(list))
	})
}

func TestExport(t *testing.T) {
	env := newTestEnv(t, PersistenceAuto)
	ctx := context.Background()

	_, err := env.svc.Export(ctx, anon, env.now)
	assert.ErrorIs(t, err, code.ErrorNoNotesToExport)

	env.create(t, anon, "exported #x")
	file, err := env.svc.Export(ctx, anon, env.now)
	require.NoError(t, err)
	assert.Equal(t, "flownote_notes_2024-05-15.json", file.FileName)
	assert.Contains(t, string(file.Data), "\n  {\n    \"id\"")
	assert.Contains(t, string(file.Data), `"title": "exported"`)
}

func TestActivity(t *testing.T) {
	// Wednesday
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	at := func(day string, n int) []*domain.Note {
		d, _ := time.Parse(util.DateLayout, day)
		out := make([]*domain.Note, n)
		for i := range out {
			out[i] = &domain.Note{ID: day, CreatedAt: d.Add(time.Hour), Tags: []string{"t" + day}}
		}
		return out
	}

	var notes []*domain.Note
	notes = append(notes, at("2024-05-15", 6)...)
	notes = append(notes, at("2024-05-13", 2)...)
	notes = append(notes, at("2024-04-15", 1)...)
	notes = append(notes, at("2024-01-01", 1)...)

	activity := BuildActivity(notes, now)

	require.Len(t, activity.Weeks, 5)
	for _, week := range activity.Weeks {
		require.Len(t, week, 7)
	}
	assert.Equal(t, "2024-04-15", activity.Weeks[0][0].Date)
	assert.Equal(t, "2024-05-19", activity.Weeks[4][6].Date)

	assert.Equal(t, 1, activity.Weeks[0][0].Level)
	assert.Equal(t, 2, activity.Weeks[4][0].Level)
	today := activity.Weeks[4][2]
	assert.Equal(t, "2024-05-15", today.Date)
	assert.Equal(t, 6, today.Count)
	assert.Equal(t, 4, today.Level)
	assert.True(t, today.IsToday)

	assert.Equal(t, []string{"4月", "5月"}, activity.MonthLabels)
	assert.Equal(t, dto.ActivityStatsDTO{NoteCount: 10, TagCount: 4, DaysSinceFirst: 135}, activity.Stats)

	empty := BuildActivity(nil, now)
	assert.Equal(t, dto.ActivityStatsDTO{}, empty.Stats)
}

func TestActivity_MonthLabelsAcrossThreeMonths(t *testing.T) {
	// grid 2024-01-29 .. 2024-03-03 spans January, February and March
	activity := BuildActivity(nil, time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, []string{"1月", "2月", "3月"}, activity.MonthLabels)
}

func TestActivityLevel(t *testing.T) {
	tests := map[int]int{0: 0, 1: 1, 2: 2, 3: 2, 4: 3, 5: 3, 6: 4, 40: 4}
	for count, want := range tests {
		assert.Equal(t, want, ActivityLevel(count), "count %d", count)
	}
}

func TestNoteServiceProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("activity level never decreases with count", prop.ForAll(
		func(a, b int) bool {
			if a > b {
				a, b = b, a
			}
			return ActivityLevel(a) <= ActivityLevel(b)
		},
		gen.IntRange(0, 50), gen.IntRange(0, 50),
	))

	tagGen := gen.OneConstOf("a", "b", "c", "a/b")
	properties.Property("filtered notes carry every active tag", prop.ForAll(
		func(noteTags [][]string, active []string) bool {
			notes := make([]*domain.Note, 0, len(noteTags))
			for _, tags := range noteTags {
				notes = append(notes, &domain.Note{Tags: util.MergeTags(tags)})
			}
			for _, n := range FilterNotes(notes, &dto.NoteListFilter{Tags: active}) {
				if !n.HasAllTags(active) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.SliceOf(tagGen)),
		gen.SliceOfN(2, tagGen),
	))

	properties.TestingRun(t)
}

// gatedRepo holds List until release is closed, then reports the load ctx state
type gatedRepo struct {
	domain.NoteRepository
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *gatedRepo) List(ctx context.Context, owner domain.Identity) ([]*domain.Note, error) {
	r.once.Do(func() { close(r.started) })
	<-r.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.NoteRepository.List(ctx, owner)
}

func TestCollection_CancelledCallerDoesNotFailOthers(t *testing.T) {
	repo := &gatedRepo{
		NoteRepository: dao.NewLocalNoteRepository(kvstore.NewMemoryStore(), nil, nil),
		started:        make(chan struct{}),
		release:        make(chan struct{}),
	}
	svc := NewNoteService(repo, nil, &stubTagger{err: ErrTaggingDisabled}, NotesServiceConfig{
		Persistence: PersistenceLocal,
	}, NewMetrics(prometheus.NewRegistry()), nil)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.AllTags(first, anon)
		firstErr <- err
	}()
	<-repo.started

	secondErr := make(chan error, 1)
	go func() {
		_, err := svc.AllTags(context.Background(), anon)
		secondErr <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.Error(t, <-firstErr)

	close(repo.release)
	assert.NoError(t, <-secondErr)
}
