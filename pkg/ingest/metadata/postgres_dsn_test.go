package metadata

import "testing"

func TestPostgresConfig_DSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  PostgresConfig
		want string
	}{
		{
			name: "with password",
			cfg:  PostgresConfig{Host: "db", Port: 5432, Database: "strata", User: "app", Password: "p@ss"},
			want: "postgres://app:p%40ss@db:5432/strata?sslmode=disable",
		},
		{
			name: "explicit ssl mode",
			cfg:  PostgresConfig{Host: "db", Port: 6543, Database: "strata", User: "app", SSLMode: "require"},
			want: "postgres://app@db:6543/strata?sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.DSN(); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}
