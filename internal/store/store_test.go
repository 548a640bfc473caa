package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthsync/internal/cvconfig"
	"healthsync/internal/reconciler"
)

var testScope = cvconfig.Scope{AccountID: "acc", OrgIdentifier: "org", ProjectIdentifier: "proj"}

func logConfig(ms, query string) cvconfig.CVConfig {
	return cvconfig.CVConfig{
		Scope:                      testScope,
		MonitoredServiceIdentifier: ms,
		Identifier:                 "splunk",
		MonitoringSourceName:       "Splunk",
		ConnectorIdentifier:        "splunk-connector",
		Category:                   cvconfig.CategoryErrors,
		Enabled:                    true,
		Payload:                    cvconfig.SplunkPayload{QueryName: query, Query: "error " + query, ServiceInstanceIdentifier: "host"},
	}
}

func added(configs ...cvconfig.CVConfig) reconciler.MutationSet {
	return reconciler.MutationSet{Added: configs}
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(t.TempDir()),
	}
}

func TestStore_ApplyAndList(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Apply(ctx, added(logConfig("ms1", "q1"), logConfig("ms1", "q2"))))

			configs, err := s.List(ctx, testScope, "ms1")
			require.NoError(t, err)
			require.Len(t, configs, 2)
			assert.Equal(t, "q1", configs[0].Label())
			assert.Equal(t, "q2", configs[1].Label())
			assert.NotEmpty(t, configs[0].UUID)
			assert.NotEqual(t, configs[0].UUID, configs[1].UUID)
			assert.Equal(t, logConfig("ms1", "q1"), configs[0].WithUUID(""))

			other, err := s.List(ctx, testScope, "ms2")
			require.NoError(t, err)
			assert.Empty(t, other)
		})
	}
}

func TestStore_UpdateKeepsPosition(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Apply(ctx, added(logConfig("ms1", "q1"), logConfig("ms1", "q2"))))
			configs, err := s.List(ctx, testScope, "ms1")
			require.NoError(t, err)

			changed := configs[0]
			changed.Enabled = false
			require.NoError(t, s.Apply(ctx, reconciler.MutationSet{Updated: []cvconfig.CVConfig{changed}}))

			after, err := s.List(ctx, testScope, "ms1")
			require.NoError(t, err)
			require.Len(t, after, 2)
			assert.Equal(t, changed, after[0])
			assert.Equal(t, configs[1], after[1])
		})
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Apply(ctx, added(logConfig("ms1", "q1"), logConfig("ms1", "q2"))))
			configs, err := s.List(ctx, testScope, "ms1")
			require.NoError(t, err)

			require.NoError(t, s.Apply(ctx, reconciler.MutationSet{Deleted: configs[:1]}))
			after, err := s.List(ctx, testScope, "ms1")
			require.NoError(t, err)
			assert.Equal(t, configs[1:], after)

			require.NoError(t, s.Apply(ctx, reconciler.DeleteAll(after)))
			after, err = s.List(ctx, testScope, "ms1")
			require.NoError(t, err)
			assert.Empty(t, after)
		})
	}
}

func TestStore_UnknownIdentityLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Apply(ctx, added(logConfig("ms1", "q1"))))
			before, err := s.List(ctx, testScope, "ms1")
			require.NoError(t, err)

			err = s.Apply(ctx, reconciler.MutationSet{
				Added:   []cvconfig.CVConfig{logConfig("ms1", "q2")},
				Updated: []cvconfig.CVConfig{logConfig("ms1", "q3").WithUUID("missing")},
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotFound))

			err = s.Apply(ctx, reconciler.MutationSet{Deleted: []cvconfig.CVConfig{logConfig("ms1", "q1")}})
			assert.ErrorIs(t, err, ErrNotFound)

			after, err := s.List(ctx, testScope, "ms1")
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.List(ctx, testScope, "ms1")
			assert.ErrorIs(t, err, context.Canceled)
			assert.ErrorIs(t, s.Apply(ctx, added(logConfig("ms1", "q1"))), context.Canceled)
		})
	}
}

func TestStore_ListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Apply(ctx, added(logConfig("ms1", "q1"))))

	configs, err := s.List(ctx, testScope, "ms1")
	require.NoError(t, err)
	configs[0].Enabled = false

	again, err := s.List(ctx, testScope, "ms1")
	require.NoError(t, err)
	assert.True(t, again[0].Enabled)
}

func TestFileStore_Layout(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewFileStore(root)
	assert.Equal(t, root, s.Root())

	require.NoError(t, s.Apply(ctx, added(logConfig("payments/api", "q1"))))

	path := filepath.Join(root, "acc", "org", "proj", "payments%2Fapi.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "type: Splunk")
	assert.Contains(t, string(data), "queryName: q1")

	// A second store over the same root sees the same configs.
	reopened, err := NewFileStore(root).List(ctx, testScope, "payments/api")
	require.NoError(t, err)
	require.Len(t, reopened, 1)
	assert.Equal(t, "q1", reopened[0].Label())

	require.NoError(t, s.Apply(ctx, reconciler.DeleteAll(reopened)))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_CorruptFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "acc", "org", "proj")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ms1.yaml"), []byte("- type: Graphite\n  payload: {}\n"), 0644))

	_, err := NewFileStore(root).List(context.Background(), testScope, "ms1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse file")
}

func TestEscapeSegment(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", "simple"},
		{"payments_api", "payments_api"},
		{"payments.api", "payments%2Eapi"},
		{"payments api", "payments%20api"},
		{"with/slash", "with%2Fslash"},
		{"a:b*c", "a%3Ab%2Ac"},
		{"..", "%2E%2E"},
		{"100%", "100%25"},
		{"", "%"},
	}

	for _, tt := range tests {
		if got := escapeSegment(tt.input); got != tt.expected {
			t.Errorf("escapeSegment(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestStore_SimilarIdentifiersStaySeparate(t *testing.T) {
	ctx := context.Background()
	names := []string{"payments.api", "payments_api", "payments api", "payments/api", "payments:api"}
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, ms := range names {
				require.NoError(t, s.Apply(ctx, added(logConfig(ms, "q-"+ms))))
			}

			for _, ms := range names {
				got, err := s.List(ctx, testScope, ms)
				require.NoError(t, err)
				require.Len(t, got, 1, ms)
				assert.Equal(t, ms, got[0].MonitoredServiceIdentifier)
				assert.Equal(t, "q-"+ms, got[0].Label())
			}

			dotted, err := s.List(ctx, testScope, "payments.api")
			require.NoError(t, err)
			require.NoError(t, s.Apply(ctx, reconciler.DeleteAll(dotted)))

			left, err := s.List(ctx, testScope, "payments_api")
			require.NoError(t, err)
			assert.Len(t, left, 1)
		})
	}
}

func TestFileStore_IgnoresConfigsOfOtherLocations(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewFileStore(root)
	require.NoError(t, s.Apply(ctx, added(logConfig("ms1", "q1"))))

	// A file copied under another name still belongs to ms1.
	dir := filepath.Join(root, "acc", "org", "proj")
	data, err := os.ReadFile(filepath.Join(dir, "ms1.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ms2.yaml"), data, 0644))

	got, err := s.List(ctx, testScope, "ms2")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.List(ctx, testScope, "ms1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
