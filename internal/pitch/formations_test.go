package pitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()
	assert.Equal(t, []string{"3-5-2", "4-2-3-1", "4-3-3", "4-4-2", "5-3-2"}, catalog.Names())

	for _, name := range catalog.Names() {
		t.Run(name, func(t *testing.T) {
			f, ok := catalog.Lookup(name)
			require.True(t, ok)
			assert.Len(t, f.Positions, 11)

			ids := make(map[string]bool)
			for _, p := range f.Positions {
				assert.False(t, ids[p.ID], "duplicate slot %s", p.ID)
				ids[p.ID] = true
				assert.True(t, p.X >= 0 && p.X <= 100, "x out of range for %s", p.ID)
				assert.True(t, p.Y >= 0 && p.Y <= 100, "y out of range for %s", p.ID)
			}

			gk, ok := f.Position("GK")
			require.True(t, ok)
			assert.Equal(t, RoleGoalkeeper, gk.Role)
		})
	}

	_, ok := catalog.Lookup("4-4-2")
	assert.True(t, ok)
	rw, ok := catalog["4-4-2"].Position("RW")
	require.True(t, ok)
	assert.Equal(t, "Right Wing", rw.Label)
}
