package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Symbols:           []string{"BTC/USDT"},
		KafkaBrokers:      []string{"localhost:9092"},
		NarrativeEnabled:  true,
		OpenAIAPIKey:      "sk-test",
		MinSignalStrength: 0.6,
		MoveThreshold:     0.01,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid config passes",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing API key while narrative enabled is fatal",
			mutate:  func(c *Config) { c.OpenAIAPIKey = "" },
			wantErr: "OPENAI_API_KEY",
		},
		{
			name: "missing API key with narrative disabled is fine",
			mutate: func(c *Config) {
				c.NarrativeEnabled = false
				c.OpenAIAPIKey = ""
			},
		},
		{
			name:    "no symbols",
			mutate:  func(c *Config) { c.Symbols = nil },
			wantErr: "SYMBOLS",
		},
		{
			name:    "no brokers",
			mutate:  func(c *Config) { c.KafkaBrokers = nil },
			wantErr: "KAFKA_BROKERS",
		},
		{
			name:    "signal strength out of range",
			mutate:  func(c *Config) { c.MinSignalStrength = 1.5 },
			wantErr: "MIN_SIGNAL_STRENGTH",
		},
		{
			name:    "telegram token without chat id",
			mutate:  func(c *Config) { c.TelegramToken = "123:abc" },
			wantErr: "TELEGRAM_CHAT_ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" BTC/USDT, ETH/USDT ,,SOL/USDT")
	want := []string{"BTC/USDT", "ETH/USDT", "SOL/USDT"}
	if len(got) != len(want) {
		t.Fatalf("splitList returned %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitList[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
