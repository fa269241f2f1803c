package list

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/dragdo/internal/model"
	"github.com/Makepad-fr/dragdo/internal/store"
	"github.com/Makepad-fr/dragdo/internal/store/cache"
)

// fakePersister records saves and serves canned loads.
type fakePersister struct {
	mu        sync.Mutex
	saves     [][]model.Item
	saveErr   error
	remote    []model.Item
	loadErr   error
	cached    []model.Item
	hasCached bool
}

func (f *fakePersister) Save(_ context.Context, items []model.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, model.Clone(items))
	f.cached, f.hasCached = model.Clone(items), true
	return f.saveErr
}

func (f *fakePersister) Load(context.Context) ([]model.Item, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return model.Clone(f.remote), nil
}

func (f *fakePersister) LoadCached(context.Context) ([]model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.hasCached {
		return nil, errors.New("empty")
	}
	return model.Clone(f.cached), nil
}

func (f *fakePersister) StoreCached(_ context.Context, items []model.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cached, f.hasCached = model.Clone(items), true
	return nil
}

func (f *fakePersister) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakePersister) lastSave() []model.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saves) == 0 {
		return nil
	}
	return f.saves[len(f.saves)-1]
}

// newTestList seeds items item-0..n-1 with a long debounce so saves only
// happen on Flush.
func newTestList(t *testing.T, n int) (*List, *fakePersister) {
	t.Helper()
	p := &fakePersister{}
	l := New(p, WithItems(SeedItems(n)), WithDebounce(time.Hour))
	t.Cleanup(l.Close)
	return l, p
}

func ids(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestReorder_MovesOneElement(t *testing.T) {
	l, p := newTestList(t, 3)

	require.True(t, l.Reorder(0, 2, true))
	assert.Equal(t, []string{"item-1", "item-2", "item-0"}, ids(l.Items()))

	l.Flush(context.Background())
	assert.Equal(t, []string{"item-1", "item-2", "item-0"}, ids(p.lastSave()))
}

func TestReorder_CancelledDropIsNoop(t *testing.T) {
	l, p := newTestList(t, 3)
	before := l.Items()

	assert.False(t, l.Reorder(0, 2, false))
	assert.Equal(t, before, l.Items())

	l.Flush(context.Background())
	assert.Zero(t, p.saveCount())
}

func TestReorder_OutOfRangeIsNoop(t *testing.T) {
	l, _ := newTestList(t, 3)
	before := l.Items()
	for _, pair := range [][2]int{{-1, 0}, {0, 3}, {3, 0}, {0, -1}} {
		assert.False(t, l.Reorder(pair[0], pair[1], true), "pair %v", pair)
	}
	assert.Equal(t, before, l.Items())
}

func TestReorder_SameIndexStillSchedulesSave(t *testing.T) {
	l, p := newTestList(t, 2)
	assert.True(t, l.Reorder(1, 1, true))
	l.Flush(context.Background())
	assert.Equal(t, 1, p.saveCount())
}

func TestAppendItem_AddsUncheckedItemAndClearsPending(t *testing.T) {
	l, p := newTestList(t, 2)
	l.SetPendingInput("buy milk")

	it, ok := l.Commit()
	require.True(t, ok)
	assert.Equal(t, "buy milk", it.Content)
	assert.False(t, it.Checked)
	assert.NotEmpty(t, it.ID)

	items := l.Items()
	require.Len(t, items, 3)
	assert.Equal(t, it, items[2])
	assert.Equal(t, "", l.Pending())

	l.Flush(context.Background())
	assert.Len(t, p.lastSave(), 3)
}

func TestAppendItem_BlankIsNoopAndKeepsPending(t *testing.T) {
	l, p := newTestList(t, 2)
	for _, s := range []string{"", "   ", "\t\n"} {
		l.SetPendingInput(s)
		_, ok := l.Commit()
		assert.False(t, ok)
		assert.Equal(t, s, l.Pending())

		_, ok = l.AppendItem(s)
		assert.False(t, ok)
	}
	assert.Len(t, l.Items(), 2)
	l.Flush(context.Background())
	assert.Zero(t, p.saveCount())
}

func TestAppendItem_IDsNeverCollide(t *testing.T) {
	p := &fakePersister{}
	// item-3 is already taken, so the index scheme must skip it.
	seed := []model.Item{{ID: "item-3"}, {ID: "item-0"}, {ID: "item-1"}}
	l := New(p, WithItems(seed), WithIDGenerator(IndexGenerator{}), WithDebounce(time.Hour))
	t.Cleanup(l.Close)

	a, _ := l.AppendItem("a")
	b, _ := l.AppendItem("b")
	assert.Equal(t, "item-4", a.ID)
	assert.Equal(t, "item-5", b.ID)
	assert.NoError(t, model.CheckUnique(l.Items()))
}

func TestUUIDGenerator_Unique(t *testing.T) {
	var items []model.Item
	for i := 0; i < 200; i++ {
		id := UUIDGenerator{}.NewID(items)
		assert.Regexp(t, `^item-[0-9a-f]{8}$`, id)
		items = append(items, model.Item{ID: id})
	}
	assert.NoError(t, model.CheckUnique(items))
}

func TestSetPendingInput_DoesNotSave(t *testing.T) {
	l, p := newTestList(t, 1)
	l.SetPendingInput("draft")
	assert.Equal(t, "draft", l.Pending())
	l.Flush(context.Background())
	assert.Zero(t, p.saveCount())
}

func TestToggleChecked_FlipsOnlyTarget(t *testing.T) {
	l, _ := newTestList(t, 4)
	before := l.Items()

	require.True(t, l.ToggleChecked("item-2"))
	after := l.Items()
	require.Len(t, after, len(before))
	for i := range before {
		if before[i].ID == "item-2" {
			assert.True(t, after[i].Checked)
			assert.Equal(t, before[i].Content, after[i].Content)
			continue
		}
		assert.Equal(t, before[i], after[i])
	}

	require.True(t, l.ToggleChecked("item-2"))
	assert.Equal(t, before, l.Items())
}

func TestToggleChecked_UnknownIDIsNoop(t *testing.T) {
	l, p := newTestList(t, 3)
	before := l.Items()
	rev := l.Snapshot().Revision

	assert.False(t, l.ToggleChecked("nope"))
	assert.Equal(t, before, l.Items())
	assert.Equal(t, rev, l.Snapshot().Revision)
	l.Flush(context.Background())
	assert.Zero(t, p.saveCount())
}

func TestEndToEndScenario(t *testing.T) {
	p := &fakePersister{}
	seed := []model.Item{
		{ID: "item-0", Content: "A"},
		{ID: "item-1", Content: "B"},
		{ID: "item-2", Content: "C"},
	}
	l := New(p, WithItems(seed), WithDebounce(time.Hour))
	t.Cleanup(l.Close)

	l.Reorder(0, 2, true)
	assert.Equal(t, []string{"B", "C", "A"}, contents(l.Items()))

	it, ok := l.AppendItem("buy milk")
	require.True(t, ok)
	assert.Equal(t, []string{"B", "C", "A", "buy milk"}, contents(l.Items()))
	assert.False(t, it.Checked)

	l.ToggleChecked("item-1")
	got := l.Items()
	assert.Equal(t, model.Item{ID: "item-1", Content: "B", Checked: true}, got[0])
	assert.Equal(t, model.Item{ID: "item-2", Content: "C"}, got[1])
	assert.Equal(t, model.Item{ID: "item-0", Content: "A"}, got[2])
	assert.Equal(t, it, got[3])

	// Three mutations inside one quiet period collapse into one save of the final state.
	l.Flush(context.Background())
	assert.Equal(t, 1, p.saveCount())
	assert.Equal(t, got, p.lastSave())
}

func contents(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Content
	}
	return out
}

func TestMutations_DebouncedSaveCarriesLatestState(t *testing.T) {
	p := &fakePersister{}
	l := New(p, WithItems(SeedItems(3)), WithDebounce(30*time.Millisecond))
	t.Cleanup(l.Close)

	l.Reorder(0, 1, true)
	l.ToggleChecked("item-2")
	l.AppendItem("x")

	require.Eventually(t, func() bool { return p.saveCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, p.saveCount())
	assert.Equal(t, l.Items(), p.lastSave())
}

func TestSaveFailureIsSwallowedButRecorded(t *testing.T) {
	p := &fakePersister{saveErr: errors.New("offline")}
	l := New(p, WithItems(SeedItems(1)), WithDebounce(time.Hour))
	t.Cleanup(l.Close)

	l.ToggleChecked("item-0")
	l.Flush(context.Background())
	assert.True(t, l.Items()[0].Checked, "state survives a failed save")
	assert.EqualError(t, l.LastSaveError(), "offline")

	p.saveErr = nil
	l.ToggleChecked("item-0")
	l.Flush(context.Background())
	assert.NoError(t, l.LastSaveError())
}

func TestInitialize_ReplacesAndMirrorsToCache(t *testing.T) {
	p := &fakePersister{remote: SeedItems(2)}
	l := New(p, WithDebounce(time.Hour))
	t.Cleanup(l.Close)

	require.NoError(t, l.Initialize(context.Background()))
	assert.Equal(t, SeedItems(2), l.Items())
	assert.True(t, p.hasCached)
	assert.Equal(t, SeedItems(2), p.cached)
	assert.Zero(t, p.saveCount(), "loading is not a mutation")
}

func TestInitialize_DropsSaveQueuedBeforeLoad(t *testing.T) {
	p := &fakePersister{remote: SeedItems(3)}
	l := New(p, WithDebounce(time.Hour))
	t.Cleanup(l.Close)

	_, ok := l.AppendItem("x")
	require.True(t, ok)
	require.NoError(t, l.Initialize(context.Background()))
	l.Flush(context.Background())

	assert.Zero(t, p.saveCount())
	assert.Equal(t, l.Items(), p.cached, "cache matches the list")

	l.ToggleChecked("item-1")
	l.Flush(context.Background())
	require.Equal(t, 1, p.saveCount())
	assert.Equal(t, l.Items(), p.lastSave())
	assert.Equal(t, l.Items(), p.cached)
}

func TestInitialize_FallbackAlsoDropsEarlierSave(t *testing.T) {
	p := &fakePersister{loadErr: errors.New("boom"), cached: SeedItems(2), hasCached: true}
	l := New(p, WithCacheFallback(true), WithDebounce(time.Hour))
	t.Cleanup(l.Close)

	l.AppendItem("x")
	assert.Error(t, l.Initialize(context.Background()))
	l.Flush(context.Background())
	assert.Zero(t, p.saveCount())
	assert.Equal(t, SeedItems(2), l.Items())
}

func TestInitialize_FailureLeavesListEmpty(t *testing.T) {
	p := &fakePersister{loadErr: errors.New("boom"), cached: SeedItems(2), hasCached: true}
	l := New(p)
	t.Cleanup(l.Close)

	err := l.Initialize(context.Background())
	assert.Error(t, err)
	assert.Empty(t, l.Items())
}

func TestInitialize_CacheFallback(t *testing.T) {
	p := &fakePersister{loadErr: errors.New("boom"), cached: SeedItems(2), hasCached: true}
	l := New(p, WithCacheFallback(true))
	t.Cleanup(l.Close)

	assert.Error(t, l.Initialize(context.Background()))
	assert.Equal(t, SeedItems(2), l.Items())
}

func TestSubscribe_ReceivesSnapshotsUntilCancelled(t *testing.T) {
	l, _ := newTestList(t, 2)
	var got []Snapshot
	cancel := l.Subscribe(func(s Snapshot) { got = append(got, s) })

	l.SetPendingInput("x")
	l.Reorder(0, 1, true)
	l.ToggleChecked("missing")
	require.Len(t, got, 2)
	assert.Equal(t, "x", got[0].Pending)
	assert.Equal(t, []string{"item-1", "item-0"}, ids(got[1].Items))
	assert.Greater(t, got[1].Revision, got[0].Revision)

	// Snapshots are copies.
	got[1].Items[0].Content = "mutated"
	assert.NotEqual(t, "mutated", l.Items()[0].Content)

	cancel()
	cancel()
	l.Reorder(0, 1, true)
	assert.Len(t, got, 2)
}

func TestWithGateway_EndToEnd(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()
	g := store.NewGateway(nil, c, "")
	l := New(g, WithItems(SeedItems(2)), WithDebounce(time.Hour))
	t.Cleanup(l.Close)

	l.AppendItem("offline item")
	l.Flush(ctx)
	assert.Equal(t, store.KindNotConfigured, store.KindOf(l.LastSaveError()))

	cached, err := g.LoadCached(ctx)
	require.NoError(t, err)
	assert.Equal(t, l.Items(), cached)
}
