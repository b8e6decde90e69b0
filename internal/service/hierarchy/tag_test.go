package hierarchy

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelogn/WinWork-sub000/internal/catalog"
	"github.com/codelogn/WinWork-sub000/internal/domain"
	hierSvc "github.com/codelogn/WinWork-sub000/internal/domain/services/hierarchy"
)

func TestParseLabels(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "nil", input: nil, want: []string{}},
		{name: "comma separated", input: []string{"work, home ,,play"}, want: []string{"work", "home", "play"}},
		{name: "case-insensitive duplicates keep first spelling", input: []string{"a", "a", "A"}, want: []string{"a"}},
		{name: "across entries", input: []string{"Go", "go,Rust", " rust "}, want: []string{"Go", "Rust"}},
		{name: "unicode folding", input: []string{"Émile", "éMILE"}, want: []string{"Émile"}},
		{name: "only blanks", input: []string{" ", ",", ""}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLabels(tt.input))
		})
	}
}

func TestSetTagsForItem_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	l1 := env.link(t, "L1", nil)

	for i := 0; i < 2; i++ {
		tags, err := env.Tags.SetTagsForItem(ctx, l1.ID, []string{"a", "a", "A"})
		require.NoError(t, err)
		require.Len(t, tags, 1)
		assert.Equal(t, "a", tags[0].Name)
	}

	all, err := env.Tags.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	pairs, err := env.tags.ListAssociations(ctx)
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
}

func TestSetTagsForItem_ReconcilesDifference(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	l1 := env.link(t, "L1", nil)
	l2 := env.link(t, "L2", nil)

	_, err := env.Tags.SetTagsForItem(ctx, l1.ID, []string{"work,urgent"})
	require.NoError(t, err)
	_, err = env.Tags.SetTagsForItem(ctx, l2.ID, []string{"WORK"})
	require.NoError(t, err)

	tags, err := env.Tags.SetTagsForItem(ctx, l1.ID, []string{"Work", "later"})
	require.NoError(t, err)
	var got []string
	for _, tag := range tags {
		got = append(got, tag.Name)
	}
	assert.Equal(t, []string{"later", "work"}, got)

	// "urgent" is detached but not deleted; "work" is shared, not duplicated
	all, err := env.Tags.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	l2Tags, err := env.Tags.GetTagsForItem(ctx, l2.ID)
	require.NoError(t, err)
	require.Len(t, l2Tags, 1)
	assert.Equal(t, "work", l2Tags[0].Name)

	// Clearing
	tags, err = env.Tags.SetTagsForItem(ctx, l1.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestSetTagsForItem_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	l1 := env.link(t, "L1", nil)

	_, err := env.Tags.SetTagsForItem(ctx, "missing", []string{"a"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = env.Tags.SetTagsForItem(ctx, l1.ID, []string{strings.Repeat("x", 100)})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	all, err := env.Tags.ListTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSetTagsForItem_AssignsPaletteColors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	l1 := env.link(t, "L1", nil)

	tags, err := env.Tags.SetTagsForItem(ctx, l1.ID, []string{"one", "two", "three"})
	require.NoError(t, err)
	colors := map[string]bool{}
	for _, tag := range tags {
		assert.True(t, catalog.IsHexColor(tag.Color), tag.Color)
		colors[tag.Color] = true
	}
	assert.Len(t, colors, 3)
}

func TestCreateAndUpdateTag(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tag, err := env.Tags.CreateTag(ctx, &hierSvc.CreateTagRequest{Name: " Reading ", Color: "#112233"})
	require.NoError(t, err)
	assert.Equal(t, "Reading", tag.Name)
	assert.Equal(t, "#112233", tag.Color)

	_, err = env.Tags.CreateTag(ctx, &hierSvc.CreateTagRequest{Name: "reading"})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, tag.ID, conflict.ResourceID)

	_, err = env.Tags.CreateTag(ctx, &hierSvc.CreateTagRequest{Name: "bad", Color: "blue"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	other, err := env.Tags.CreateTag(ctx, &hierSvc.CreateTagRequest{Name: "Other"})
	require.NoError(t, err)
	assert.True(t, catalog.IsHexColor(other.Color))

	_, err = env.Tags.UpdateTag(ctx, other.ID, &hierSvc.UpdateTagRequest{Name: ptr("READING")})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	updated, err := env.Tags.UpdateTag(ctx, other.ID, &hierSvc.UpdateTagRequest{Name: ptr("Later"), Color: ptr("#abc")})
	require.NoError(t, err)
	assert.Equal(t, "Later", updated.Name)
	assert.Equal(t, "#abc", updated.Color)

	_, err = env.Tags.UpdateTag(ctx, other.ID, &hierSvc.UpdateTagRequest{})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestDeleteTag_RequiresForceWhileInUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	l1 := env.link(t, "L1", nil)

	tags, err := env.Tags.SetTagsForItem(ctx, l1.ID, []string{"work"})
	require.NoError(t, err)
	tagID := tags[0].ID

	err = env.Tags.DeleteTag(ctx, tagID, false)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	require.NoError(t, env.Tags.DeleteTag(ctx, tagID, true))

	remaining, err := env.Tags.GetTagsForItem(ctx, l1.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	err = env.Tags.DeleteTag(ctx, tagID, false)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
