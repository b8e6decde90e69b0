package hierarchy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelogn/WinWork-sub000/internal/domain"
	hierRepo "github.com/codelogn/WinWork-sub000/internal/domain/repositories/hierarchy"
)

func TestMoveItem_ToRootAppendsAfterSiblings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	f1 := env.folder(t, "F1", nil)
	other := env.link(t, "other", nil)
	l1 := env.link(t, "L1", &f1.ID)

	moved, err := env.Tree.MoveItem(ctx, l1.ID, nil, 0)
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)

	children, err := env.Items.GetChildren(ctx, f1.ID)
	require.NoError(t, err)
	assert.Empty(t, children)

	got, err := env.Items.GetItem(ctx, l1.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)
	assert.Greater(t, got.SortOrder, f1.SortOrder)
	assert.Greater(t, got.SortOrder, other.SortOrder)

	env.requireInvariants(t)
}

func TestMoveItem_RejectsCycles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	f1 := env.folder(t, "F1", nil)
	c1 := env.folder(t, "C1", &f1.ID)
	g1 := env.link(t, "G1", &c1.ID)

	tests := []struct {
		name     string
		id       string
		parentID string
	}{
		{name: "into itself", id: f1.ID, parentID: f1.ID},
		{name: "under direct child", id: f1.ID, parentID: c1.ID},
		{name: "under grandchild", id: f1.ID, parentID: g1.ID},
		{name: "non folder under own child", id: c1.ID, parentID: g1.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Tree.MoveItem(ctx, tt.id, &tt.parentID, 0)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrCircularReference))

			var cycleErr *domain.CircularReferenceError
			require.ErrorAs(t, err, &cycleErr)
			assert.Equal(t, tt.id, cycleErr.ItemID)
			assert.Equal(t, tt.parentID, cycleErr.TargetParentID)
		})
	}

	// Nothing changed
	gotF1, err := env.Items.GetItem(ctx, f1.ID)
	require.NoError(t, err)
	assert.Nil(t, gotF1.ParentID)
	assert.Equal(t, f1.SortOrder, gotF1.SortOrder)

	gotC1, err := env.Items.GetItem(ctx, c1.ID)
	require.NoError(t, err)
	require.NotNil(t, gotC1.ParentID)
	assert.Equal(t, f1.ID, *gotC1.ParentID)

	env.requireInvariants(t)
}

func TestMoveItem_UnknownTargets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	l1 := env.link(t, "L1", nil)

	_, err := env.Tree.MoveItem(ctx, l1.ID, ptr("missing"), 0)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = env.Tree.MoveItem(ctx, "missing", nil, 0)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMoveItem_ReordersWithinParent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	f := env.folder(t, "F", nil)
	a := env.link(t, "a", &f.ID)
	env.link(t, "b", &f.ID)
	c := env.link(t, "c", &f.ID)

	tests := []struct {
		name   string
		id     string
		target int
		want   []string
	}{
		{name: "last to first", id: c.ID, target: 1, want: []string{"c", "a", "b"}},
		{name: "first to middle", id: c.ID, target: 2, want: []string{"a", "c", "b"}},
		{name: "clamped past end", id: a.ID, target: 99, want: []string{"c", "b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Tree.MoveItem(ctx, tt.id, &f.ID, tt.target)
			require.NoError(t, err)

			children, err := env.Items.GetChildren(ctx, f.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(children))
			env.requireInvariants(t)
		})
	}
}

func TestMoveItem_InsertsAtPositionInNewParent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	src := env.folder(t, "src", nil)
	dst := env.folder(t, "dst", nil)
	env.link(t, "x", &dst.ID)
	env.link(t, "y", &dst.ID)
	m := env.link(t, "m", &src.ID)

	moved, err := env.Tree.MoveItem(ctx, m.ID, &dst.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, moved.SortOrder)

	children, err := env.Items.GetChildren(ctx, dst.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "m", "y"}, names(children))
	for i, c := range children {
		assert.Equal(t, i+1, c.SortOrder)
	}
	env.requireInvariants(t)
}

func TestDeleteItem_BlockingVersusCascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	f1 := env.folder(t, "F1", nil)
	c1 := env.link(t, "C1", &f1.ID)

	err := env.Tree.DeleteItem(ctx, f1.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFolderNotEmpty))

	var notEmpty *domain.FolderNotEmptyError
	require.ErrorAs(t, err, &notEmpty)
	require.Len(t, notEmpty.Children, 1)
	assert.Equal(t, c1.ID, notEmpty.Children[0].ID)

	removed, err := env.Tree.DeleteItemRecursive(ctx, f1.ID)
	require.NoError(t, err)
	require.Len(t, removed, 2)
	assert.Equal(t, f1.ID, removed[0].ID)
	assert.Equal(t, c1.ID, removed[1].ID)

	for _, id := range []string{f1.ID, c1.ID} {
		_, err := env.Items.GetItem(ctx, id)
		assert.True(t, errors.Is(err, domain.ErrNotFound), id)
	}
	env.requireInvariants(t)
}

func TestDeleteItem_RemovesTagAssociations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	l1 := env.link(t, "L1", nil)
	_, err := env.Tags.SetTagsForItem(ctx, l1.ID, []string{"work"})
	require.NoError(t, err)

	require.NoError(t, env.Tree.DeleteItem(ctx, l1.ID))

	tags, err := env.Tags.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1, "tags outlive their last association")

	count, err := env.tags.CountItems(ctx, tags[0].ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteItemRecursive_DeepTree(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.folder(t, "root", nil)
	keep := env.folder(t, "keep", nil)
	parent := root
	for i := 0; i < 5; i++ {
		parent = env.folder(t, "level", &parent.ID)
		env.link(t, "leaf", &parent.ID)
	}

	removed, err := env.Tree.DeleteItemRecursive(ctx, root.ID)
	require.NoError(t, err)
	assert.Len(t, removed, 11)

	all, err := env.items.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep.ID, all[0].ID)
}

func TestGetTree_NestsChildrenInOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	work := env.folder(t, "Work", nil)
	env.folder(t, "Home", nil)
	env.link(t, "b", &work.ID)
	a := env.link(t, "a", &work.ID)
	_, err := env.Tree.MoveItem(ctx, a.ID, &work.ID, 1)
	require.NoError(t, err)
	_, err = env.Tags.SetTagsForItem(ctx, a.ID, []string{"starred"})
	require.NoError(t, err)

	roots, err := env.Tree.GetTree(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "Work", roots[0].Name)
	assert.Equal(t, "Home", roots[1].Name)
	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, "a", roots[0].Children[0].Name)
	assert.Equal(t, "b", roots[0].Children[1].Name)
	require.Len(t, roots[0].Children[0].Tags, 1)
	assert.Equal(t, "starred", roots[0].Children[0].Tags[0].Name)
	assert.Empty(t, roots[1].Children)
}

func TestGetAncestors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.folder(t, "a", nil)
	b := env.folder(t, "b", &a.ID)
	c := env.link(t, "c", &b.ID)

	chain, err := env.Tree.GetAncestors(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, a.ID, chain[0].ID)
	assert.Equal(t, b.ID, chain[1].ID)

	chain, err = env.Tree.GetAncestors(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, chain)
}

var errDiskFull = errors.New("disk full")

// failingDeletes fails the Nth Delete call and passes every other call through
type failingDeletes struct {
	hierRepo.ItemRepository
	failAt int
	calls  int
}

func (r *failingDeletes) Delete(ctx context.Context, id string) (bool, error) {
	r.calls++
	if r.calls == r.failAt {
		return false, errDiskFull
	}
	return r.ItemRepository.Delete(ctx, id)
}

func TestDeleteItemRecursive_FailureLeavesSubtreeIntact(t *testing.T) {
	// root > (mid > (l1, l2), l3); rows go l1, l2, mid, l3, root
	tests := []struct {
		name   string
		failAt int
	}{
		{name: "first leaf", failAt: 1},
		{name: "second leaf", failAt: 2},
		{name: "inner folder", failAt: 3},
		{name: "sibling leaf", failAt: 4},
		{name: "root itself", failAt: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &failingDeletes{failAt: tt.failAt}
			env := newTestEnvWith(t, func(inner hierRepo.ItemRepository) hierRepo.ItemRepository {
				repo.ItemRepository = inner
				return repo
			})
			ctx := context.Background()

			root := env.folder(t, "root", nil)
			mid := env.folder(t, "mid", &root.ID)
			l1 := env.link(t, "l1", &mid.ID)
			l2 := env.link(t, "l2", &mid.ID)
			l3 := env.link(t, "l3", &root.ID)
			_, err := env.Tags.SetTagsForItem(ctx, l1.ID, []string{"keep"})
			require.NoError(t, err)

			removed, err := env.Tree.DeleteItemRecursive(ctx, root.ID)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errDiskFull))
			assert.Nil(t, removed)
			assert.Equal(t, tt.failAt, repo.calls)

			for _, id := range []string{root.ID, mid.ID, l1.ID, l2.ID, l3.ID} {
				_, err := env.Items.GetItem(ctx, id)
				assert.NoError(t, err, "item %s must survive the failed delete", id)
			}
			kept, err := env.Items.GetItem(ctx, l1.ID)
			require.NoError(t, err)
			require.Len(t, kept.Tags, 1)
			assert.Equal(t, "keep", kept.Tags[0].Name)

			all, err := env.items.ListAll(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 5)
			env.requireInvariants(t)
		})
	}
}
