package eligibility

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRules(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		r, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultRules(), r)
	})

	t.Run("empty path yields defaults", func(t *testing.T) {
		r, err := LoadRules("")
		require.NoError(t, err)
		assert.Equal(t, DefaultRules(), r)
	})

	t.Run("partial file keeps defaults for the rest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rules:\n  min_days_to_expiry: 45\n  reject_unparseable_expiry: true\n"), 0o600))

		r, err := LoadRules(path)
		require.NoError(t, err)
		assert.Equal(t, 45, r.MinDaysToExpiry)
		assert.True(t, r.RejectUnparseableExpiry)
		assert.Equal(t, 2_000_000.0, r.MaxGeneralAggregate)
		assert.Equal(t, 0.10, r.DiscountRate)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rules: [unterminated"), 0o600))
		_, err := LoadRules(path)
		assert.Error(t, err)
	})
}
