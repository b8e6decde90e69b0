package hierarchy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelogn/WinWork-sub000/internal/domain"
	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	hierSvc "github.com/codelogn/WinWork-sub000/internal/domain/services/hierarchy"
)

// shape renders the store as "path|type|tags" lines in tree order, ignoring ids
func shape(t *testing.T, env *testEnv) []string {
	t.Helper()
	roots, err := env.Tree.GetTree(context.Background())
	require.NoError(t, err)

	var lines []string
	var walk func(node *models.ItemTreeNode, prefix string)
	walk = func(node *models.ItemTreeNode, prefix string) {
		path := prefix + "/" + node.Name
		var tags []string
		for _, tag := range node.Tags {
			tags = append(tags, strings.ToLower(tag.Name))
		}
		sort.Strings(tags)
		lines = append(lines, fmt.Sprintf("%s|%s|%s", path, node.ItemType, strings.Join(tags, ",")))
		for _, child := range node.Children {
			walk(child, path)
		}
	}
	for _, root := range roots {
		walk(root, "")
	}
	return lines
}

func TestImportDocument_ChildBeforeParent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := `{
		"version": "1.0",
		"items": [
			{"id": 1, "name": "child", "url": "https://child.example", "type": "WebUrl", "parentId": 7},
			{"id": 7, "name": "parent", "type": "Folder", "parentId": null}
		]
	}`

	summary, err := env.Import.ImportDocument(ctx, []byte(doc), models.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ItemsCreated)
	assert.Empty(t, summary.Orphans)

	childID := summary.IDMapping["1"]
	parentID := summary.IDMapping["7"]
	require.NotEmpty(t, childID)
	require.NotEmpty(t, parentID)

	child, err := env.Items.GetItem(ctx, childID)
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parentID, *child.ParentID)

	assert.Equal(t, []string{"/parent|Folder|", "/parent/child|WebUrl|"}, shape(t, env))
	env.requireInvariants(t)
}

func TestImportDocument_RoundTrip(t *testing.T) {
	src := newTestEnv(t)
	ctx := context.Background()

	work := src.folder(t, "Work", nil)
	docs := src.folder(t, "Docs", &work.ID)
	readme := src.link(t, "readme", &docs.ID)
	src.link(t, "board", &work.ID)
	home := src.folder(t, "Home", nil)
	shell := models.TerminalPowerShell
	_, err := src.Items.CreateItem(ctx, &hierSvc.CreateItemRequest{
		Name:         "build",
		ItemType:     models.ItemTypeTerminal,
		Command:      "make all",
		TerminalType: &shell,
		ParentID:     &home.ID,
		Tags:         []string{"dev", "Daily"},
	})
	require.NoError(t, err)
	_, err = src.Tags.SetTagsForItem(ctx, readme.ID, []string{"dev"})
	require.NoError(t, err)
	_, err = src.Items.RecordAccess(ctx, readme.ID)
	require.NoError(t, err)

	data, err := src.Export.ExportDocument(ctx)
	require.NoError(t, err)

	var doc models.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, models.CurrentDocumentVersion, doc.Version)
	assert.Len(t, doc.Items, 6)
	assert.Len(t, doc.Tags, 2)

	dst := newTestEnv(t)
	summary, err := dst.Import.ImportDocument(ctx, data, models.ImportOptions{
		DuplicatePolicy: models.DuplicateUpdateExisting,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, summary.ItemsCreated)
	assert.Equal(t, 2, summary.TagsCreated)
	assert.Empty(t, summary.Errors)

	assert.Equal(t, shape(t, src), shape(t, dst))
	dst.requireInvariants(t)

	imported, err := dst.Items.GetItem(ctx, summary.IDMapping[readme.ID])
	require.NoError(t, err)
	assert.Equal(t, 1, imported.AccessCount)
}

func TestImportDocument_LooseShape(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := `{
		"items": [
			{"title": "Site", "url": "https://site.example", "linkType": "website", "tags": ["news", "News", "daily"]},
			{"title": "Manual", "url": "C:\\docs\\manual.pdf", "linkType": "document"},
			{"title": "Mystery", "url": "https://m.example", "linkType": "hologram"},
			{"title": "Group"}
		],
		"tags": ["extra"]
	}`

	summary, err := env.Import.ImportDocument(ctx, []byte(doc), models.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, summary.ItemsCreated)
	// extra, news, daily
	assert.Equal(t, 3, summary.TagsCreated)

	assert.Equal(t, []string{
		"/Site|WebUrl|daily,news",
		"/Manual|FilePath|",
		"/Mystery|WebUrl|",
		"/Group|Folder|",
	}, shape(t, env))
}

func TestImportDocument_ContainerAndOrphans(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	existing := env.folder(t, "Existing", nil)

	doc := `{"items": [
		{"id": "a", "name": "top", "type": "Folder"},
		{"id": "b", "name": "lost", "url": "https://lost.example", "parentId": "nowhere"},
		{"id": "c", "name": "nested", "url": "https://n.example", "parentId": "a"}
	]}`

	summary, err := env.Import.ImportDocument(ctx, []byte(doc), models.ImportOptions{
		CreateContainer: true,
		ContainerName:   "Imported",
	})
	require.NoError(t, err)
	require.NotNil(t, summary.ContainerID)
	assert.Equal(t, []string{"b"}, summary.Orphans)

	assert.Equal(t, []string{
		"/Existing|Folder|",
		"/Imported|Folder|",
		"/Imported/top|Folder|",
		"/Imported/top/nested|WebUrl|",
		"/Imported/lost|WebUrl|",
	}, shape(t, env))

	roots, err := env.Items.GetRootItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, roots[0].ID)
	env.requireInvariants(t)
}

func TestImportDocument_DuplicatePolicies(t *testing.T) {
	doc := `{"items": [
		{"id": 1, "name": "work", "type": "Folder"},
		{"id": 2, "name": "Docs", "url": "https://new.example", "type": "website", "parentId": 1},
		{"id": 3, "name": "New", "url": "https://fresh.example", "parentId": 1}
	]}`

	tests := []struct {
		name        string
		policy      models.DuplicatePolicy
		wantShape   []string
		wantCreated int
		wantSkipped int
		wantUpdated int
		wantDocsURL string
	}{
		{
			name:   "skip maps onto existing items",
			policy: models.DuplicateSkip,
			wantShape: []string{
				"/Work|Folder|",
				"/Work/Docs|WebUrl|",
				"/Work/New|WebUrl|",
			},
			wantCreated: 1,
			wantSkipped: 2,
			wantDocsURL: "https://old.example",
		},
		{
			name:   "rename creates a parallel tree",
			policy: models.DuplicateRename,
			wantShape: []string{
				"/Work|Folder|",
				"/Work/Docs|WebUrl|",
				"/work (2)|Folder|",
				"/work (2)/Docs|WebUrl|",
				"/work (2)/New|WebUrl|",
			},
			wantCreated: 3,
			wantDocsURL: "https://old.example",
		},
		{
			name:   "update existing overwrites fields",
			policy: models.DuplicateUpdateExisting,
			wantShape: []string{
				"/Work|Folder|",
				"/Work/Docs|WebUrl|",
				"/Work/New|WebUrl|",
			},
			wantCreated: 1,
			wantUpdated: 2,
			wantDocsURL: "https://new.example",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			work := env.folder(t, "Work", nil)
			docs, err := env.Items.CreateItem(ctx, &hierSvc.CreateItemRequest{
				Name:     "Docs",
				ItemType: models.ItemTypeWebURL,
				URL:      "https://old.example",
				ParentID: &work.ID,
			})
			require.NoError(t, err)

			summary, err := env.Import.ImportDocument(ctx, []byte(doc), models.ImportOptions{
				DuplicatePolicy:  tt.policy,
				MatchItemsByName: true,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, summary.ItemsCreated)
			assert.Equal(t, tt.wantSkipped, summary.ItemsSkipped)
			assert.Equal(t, tt.wantUpdated, summary.ItemsUpdated)
			assert.Equal(t, tt.wantShape, shape(t, env))

			got, err := env.Items.GetItem(ctx, docs.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDocsURL, got.URL)
			env.requireInvariants(t)
		})
	}
}

func TestImportDocument_TagPolicies(t *testing.T) {
	doc := `{
		"tags": [{"id": "t1", "name": "work", "color": "#000000"}],
		"items": [{"id": "a", "name": "A", "url": "https://a.example", "tagIds": ["t1"]}]
	}`

	tests := []struct {
		policy    models.DuplicatePolicy
		wantColor string
		wantTag   string
	}{
		{policy: models.DuplicateSkip, wantColor: "#111111", wantTag: "Work"},
		{policy: models.DuplicateUpdateExisting, wantColor: "#000000", wantTag: "Work"},
		{policy: models.DuplicateRename, wantColor: "#111111", wantTag: "work (2)"},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			existing, err := env.Tags.CreateTag(ctx, &hierSvc.CreateTagRequest{Name: "Work", Color: "#111111"})
			require.NoError(t, err)

			summary, err := env.Import.ImportDocument(ctx, []byte(doc), models.ImportOptions{DuplicatePolicy: tt.policy})
			require.NoError(t, err)

			tags, err := env.Tags.GetTagsForItem(ctx, summary.IDMapping["a"])
			require.NoError(t, err)
			require.Len(t, tags, 1)
			assert.Equal(t, tt.wantTag, tags[0].Name)

			all, err := env.Tags.ListTags(ctx)
			require.NoError(t, err)
			for _, tag := range all {
				if tag.ID == existing.ID {
					assert.Equal(t, tt.wantColor, tag.Color)
				}
			}
		})
	}
}

func TestImportDocument_ItemTagNamesFollowPolicy(t *testing.T) {
	doc := `{"items": [
		{"id": "a", "title": "A", "url": "https://a.example", "tags": ["work", "fresh"]},
		{"id": "b", "title": "B", "url": "https://b.example", "tags": ["WORK"]}
	]}`

	tests := []struct {
		policy      models.DuplicatePolicy
		wantA       []string
		wantB       []string
		wantCreated int
		wantUpdated int
		wantSkipped int
	}{
		{policy: models.DuplicateSkip, wantA: []string{"Work", "fresh"}, wantB: []string{"Work"}, wantCreated: 1, wantSkipped: 1},
		{policy: models.DuplicateUpdateExisting, wantA: []string{"Work", "fresh"}, wantB: []string{"Work"}, wantCreated: 1, wantUpdated: 1},
		{policy: models.DuplicateRename, wantA: []string{"work (2)", "fresh"}, wantB: []string{"work (2)"}, wantCreated: 2},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			_, err := env.Tags.CreateTag(ctx, &hierSvc.CreateTagRequest{Name: "Work", Color: "#111111"})
			require.NoError(t, err)

			summary, err := env.Import.ImportDocument(ctx, []byte(doc), models.ImportOptions{DuplicatePolicy: tt.policy})
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, summary.TagsCreated)
			assert.Equal(t, tt.wantUpdated, summary.TagsUpdated)
			assert.Equal(t, tt.wantSkipped, summary.TagsSkipped)
			assert.Empty(t, summary.Errors)

			tagNames := func(id string) []string {
				tags, err := env.Tags.GetTagsForItem(ctx, id)
				require.NoError(t, err)
				out := make([]string, 0, len(tags))
				for _, tag := range tags {
					out = append(out, tag.Name)
				}
				return out
			}
			assert.ElementsMatch(t, tt.wantA, tagNames(summary.IDMapping["a"]))
			assert.ElementsMatch(t, tt.wantB, tagNames(summary.IDMapping["b"]))

			all, err := env.Tags.ListTags(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1+tt.wantCreated)
		})
	}
}

func TestImportDocument_InvalidRecordsAreReported(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := `{"items": [
		{"id": 1, "name": "ok", "type": "Folder"},
		{"id": 2, "name": "no url", "type": "website"},
		{"id": 3, "name": ""},
		{"id": 4, "name": "under broken", "type": "Notes", "parentId": 2}
	]}`

	summary, err := env.Import.ImportDocument(ctx, []byte(doc), models.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ItemsCreated)
	assert.Equal(t, 2, summary.ItemsFailed)
	require.Len(t, summary.Errors, 2)
	assert.Equal(t, 1, summary.Errors[0].Index)
	assert.Equal(t, 2, summary.Errors[1].Index)
	assert.Equal(t, []string{"4"}, summary.Orphans)
	env.requireInvariants(t)
}

func TestImportDocument_CycleRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.folder(t, "before", nil)

	doc := `{"items": [
		{"id": 1, "name": "a", "type": "Folder", "parentId": 2},
		{"id": 2, "name": "b", "type": "Folder", "parentId": 1}
	], "tags": [{"name": "from-import"}]}`

	_, err := env.Import.ImportDocument(ctx, []byte(doc), models.ImportOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCircularReference))

	assert.Equal(t, []string{"/before|Folder|"}, shape(t, env))
	tags, err := env.Tags.ListTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestParseDocument_FormatErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: "  "},
		{name: "array", input: `[{"name": "x"}]`},
		{name: "not json", input: `{"items": [`},
		{name: "missing items", input: `{"tags": []}`},
		{name: "items not array", input: `{"items": {}}`},
		{name: "future version", input: `{"version": "2.0", "items": []}`},
		{name: "bad item field", input: `{"items": [{"accessCount": "many"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrImportFormat))
		})
	}

	doc, err := ParseDocument([]byte(`{"version": "1.3", "items": []}`))
	require.NoError(t, err)
	assert.Empty(t, doc.Items)
}
