package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultOptions(t *testing.T) {
	opts := NewDefaultOptions()

	assert.Equal(t, "learning", opts.LabelKey)
	assert.Equal(t, "rust", opts.LabelValue)
	assert.Equal(t, "my_controller", opts.FieldManager)
	assert.Equal(t, "default", opts.DefaultNamespace)
	assert.Empty(t, opts.Namespace, "默认应该 watch 所有命名空间")
	require.NoError(t, opts.Validate())
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Options)
		wantErr string
	}{
		{"PrefixedKey", func(o *Options) { o.LabelKey = "example.com/learning" }, ""},
		{"ScopedNamespace", func(o *Options) { o.Namespace = "ops" }, ""},
		{"Selector", func(o *Options) { o.LabelSelector = "app=web,tier!=db" }, ""},
		{"EmptyKey", func(o *Options) { o.LabelKey = "" }, "label key"},
		{"BadValue", func(o *Options) { o.LabelValue = "not valid!" }, "label value"},
		{"EmptyFieldManager", func(o *Options) { o.FieldManager = "" }, "field manager"},
		{"BadDefaultNamespace", func(o *Options) { o.DefaultNamespace = "Default" }, "default namespace"},
		{"BadSelector", func(o *Options) { o.LabelSelector = "app in (" }, "label selector"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := NewDefaultOptions()
			tt.mutate(&opts)

			err := opts.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
