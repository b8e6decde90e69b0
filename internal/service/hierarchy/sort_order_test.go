package hierarchy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortOrderManager_NextSortOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := NewSortOrderManager(env.items, discardLogger())

	next, err := m.NextSortOrder(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	f := env.folder(t, "f", nil)
	next, err = m.NextSortOrder(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, next)

	next, err = m.NextSortOrder(ctx, &f.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestSortOrderManager_RenumberForInsertAt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := NewSortOrderManager(env.items, discardLogger())

	a := env.link(t, "a", nil)
	b := env.link(t, "b", nil)
	c := env.link(t, "c", nil)

	tests := []struct {
		name      string
		target    int
		excluding string
		wantSlot  int
		want      map[string]int
	}{
		{name: "front", target: 1, wantSlot: 1, want: map[string]int{a.ID: 2, b.ID: 3, c.ID: 4}},
		{name: "middle", target: 2, wantSlot: 2, want: map[string]int{a.ID: 1, b.ID: 3, c.ID: 4}},
		{name: "end", target: 4, wantSlot: 4, want: map[string]int{a.ID: 1, b.ID: 2, c.ID: 3}},
		{name: "clamped high", target: 50, wantSlot: 4, want: map[string]int{a.ID: 1, b.ID: 2, c.ID: 3}},
		{name: "clamped low", target: -3, wantSlot: 1, want: map[string]int{a.ID: 2, b.ID: 3, c.ID: 4}},
		{name: "excluding moved item", target: 1, excluding: c.ID, wantSlot: 1, want: map[string]int{a.ID: 2, b.ID: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assignment, slot, err := m.RenumberForInsertAt(ctx, nil, tt.target, tt.excluding)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSlot, slot)
			assert.Equal(t, tt.want, assignment)
		})
	}
}
