package hierarchy

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
)

func TestBuildDocument_EmptyStore(t *testing.T) {
	env := newTestEnv(t)

	doc, err := env.Export.BuildDocument(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.CurrentDocumentVersion, doc.Version)
	assert.NotNil(t, doc.Items)
	assert.NotNil(t, doc.Tags)
	assert.Empty(t, doc.Items)

	data, err := env.Export.ExportDocument(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"items": []`)
}

func TestBuildDocument_ParentsPrecedeChildren(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.folder(t, "a", nil)
	b := env.folder(t, "b", nil)
	// created under b first, then moved deep under a
	deep := env.link(t, "deep", &b.ID)
	mid := env.folder(t, "mid", &b.ID)
	_, err := env.Tree.MoveItem(ctx, mid.ID, &a.ID, 0)
	require.NoError(t, err)
	_, err = env.Tree.MoveItem(ctx, deep.ID, &mid.ID, 0)
	require.NoError(t, err)
	_, err = env.Tags.SetTagsForItem(ctx, deep.ID, []string{"Ref"})
	require.NoError(t, err)

	doc, err := env.Export.BuildDocument(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Items, 4)

	seen := map[models.ForeignID]bool{}
	for _, item := range doc.Items {
		if item.ParentID != nil {
			assert.True(t, seen[*item.ParentID], "parent of %s listed after it", item.Name)
		}
		seen[item.ID] = true
	}

	var exported models.DocumentItem
	for _, item := range doc.Items {
		if item.ID == models.ForeignID(deep.ID) {
			exported = item
		}
	}
	require.Len(t, doc.Tags, 1)
	assert.Equal(t, []models.ForeignID{doc.Tags[0].ID}, exported.TagIDs)
	assert.Equal(t, string(models.ItemTypeWebURL), exported.Type)

	data, err := env.Export.ExportDocument(ctx)
	require.NoError(t, err)
	var decoded models.Document
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded.Items, 4)
}

func TestExportDocument_ItemKeysAlwaysPresent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	parent := env.folder(t, "Bare", nil)
	env.link(t, "child", &parent.ID)

	data, err := env.Export.ExportDocument(ctx)
	require.NoError(t, err)

	var raw struct {
		Items []map[string]json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw.Items, 2)

	strict := []string{
		"id", "name", "url", "type", "parentId", "description", "notes",
		"sortOrder", "createdAt", "updatedAt", "lastAccessedAt", "accessCount", "tagIds",
	}
	for _, item := range raw.Items {
		for _, key := range strict {
			assert.Contains(t, item, key)
		}
		for _, key := range []string{"title", "linkType", "tags"} {
			assert.NotContains(t, item, key)
		}
	}

	root := raw.Items[0]
	tests := []struct {
		key  string
		want string
	}{
		{"url", `""`},
		{"description", `""`},
		{"notes", `""`},
		{"parentId", `null`},
		{"lastAccessedAt", `null`},
		{"tagIds", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.JSONEq(t, tt.want, string(root[tt.key]))
		})
	}
}
