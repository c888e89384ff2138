package config

import "testing"

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := validConfig()
		cfg.HTTP.Port = port
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for port %d", port)
		}
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_AlphaRange(t *testing.T) {
	for _, alpha := range []float64{0, 0.5, 1} {
		cfg := validConfig()
		a := alpha
		cfg.Retrieval.Alpha = &a
		if err := cfg.Validate(); err != nil {
			t.Errorf("alpha %v should be valid: %v", alpha, err)
		}
	}
	for _, alpha := range []float64{-0.1, 1.1} {
		cfg := validConfig()
		a := alpha
		cfg.Retrieval.Alpha = &a
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for alpha %v", alpha)
		}
	}
}

func TestFusionAlpha_Defaults(t *testing.T) {
	var r RetrievalConfig
	if got := r.FusionAlpha(); got != 0.5 {
		t.Errorf("unset alpha = %v, want 0.5", got)
	}

	zero := 0.0
	r.Alpha = &zero
	if got := r.FusionAlpha(); got != 0 {
		t.Errorf("explicit alpha 0 = %v, want 0 (pure sparse)", got)
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Embedding.Model != "text-embedding-3-large" {
		t.Errorf("embedding model = %q", cfg.Embedding.Model)
	}
	if cfg.Chat.Model != "gpt-4.1-mini" {
		t.Errorf("chat model = %q", cfg.Chat.Model)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("top_k = %d", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.Namespace != "docbricks-namespace" {
		t.Errorf("namespace = %q", cfg.Retrieval.Namespace)
	}
	if cfg.Sparse.ArtifactDir != "bm25_indexes" {
		t.Errorf("artifact dir = %q", cfg.Sparse.ArtifactDir)
	}
	if cfg.Retrieval.Alpha != nil {
		t.Error("defaults must not pin alpha; FusionAlpha handles it")
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Embedding: EmbeddingConfig{Model: "custom-model"},
		Retrieval: RetrievalConfig{TopK: 10},
	}
	cfg.ApplyDefaults()

	if cfg.Embedding.Model != "custom-model" {
		t.Errorf("explicit model overwritten: %q", cfg.Embedding.Model)
	}
	if cfg.Retrieval.TopK != 10 {
		t.Errorf("explicit top_k overwritten: %d", cfg.Retrieval.TopK)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("DOCBRICKS_TEST_VAR", "resolved")

	got := string(expandEnvVars([]byte("key: ${DOCBRICKS_TEST_VAR}")))
	if got != "key: resolved" {
		t.Errorf("expand = %q", got)
	}

	got = string(expandEnvVars([]byte("key: ${DOCBRICKS_UNSET_VAR:-fallback}")))
	if got != "key: fallback" {
		t.Errorf("default expansion = %q", got)
	}

	got = string(expandEnvVars([]byte("key: ${DOCBRICKS_UNSET_VAR}")))
	if got != "key: " {
		t.Errorf("unset without default = %q", got)
	}
}
