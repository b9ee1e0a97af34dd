package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderLocal, config.Provider)
	assert.Equal(t, DefaultTimeout, config.Timeout)
	assert.Empty(t, config.BaseURL)
	assert.NoError(t, config.Validate())
}

func TestConfigFor(t *testing.T) {
	config := ConfigFor("", 0)
	assert.Equal(t, ProviderLocal, config.Provider)
	assert.Equal(t, DefaultTimeout, config.Timeout)

	config = ConfigFor("http://localhost:8000", 2*time.Second)
	assert.Equal(t, ProviderHTTP, config.Provider)
	assert.Equal(t, "http://localhost:8000", config.BaseURL)
	assert.Equal(t, 2*time.Second, config.Timeout)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"local", Config{Provider: ProviderLocal, Timeout: time.Second}, false},
		{"http", Config{Provider: ProviderHTTP, BaseURL: "https://ranker.internal", Timeout: time.Second}, false},
		{"zero timeout", Config{Provider: ProviderLocal}, true},
		{"missing scheme", Config{Provider: ProviderHTTP, BaseURL: "ranker:8000", Timeout: time.Second}, true},
		{"ftp scheme", Config{Provider: ProviderHTTP, BaseURL: "ftp://ranker", Timeout: time.Second}, true},
		{"missing host", Config{Provider: ProviderHTTP, BaseURL: "http://", Timeout: time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
