package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/legisfy/assessor-ia-go/internal/domain"
	"github.com/legisfy/assessor-ia-go/internal/handler"
	"github.com/legisfy/assessor-ia-go/internal/infra/cache"
	"github.com/legisfy/assessor-ia-go/internal/infra/observability"
	"github.com/legisfy/assessor-ia-go/internal/infra/openrouter"
	"github.com/legisfy/assessor-ia-go/internal/infra/resilience"
	"github.com/legisfy/assessor-ia-go/internal/infra/supabase"
	"github.com/legisfy/assessor-ia-go/internal/interpreter"
	"github.com/legisfy/assessor-ia-go/internal/service"

	"go.uber.org/zap"
)

// fakeBackend emulates the PostgREST surface the service talks to.
type fakeBackend struct {
	mu            sync.Mutex
	auditInserts  atomic.Int64
	lastInsert    map[string]any
	openrouterHit atomic.Int64
}

func (f *fakeBackend) insert(row map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastInsert = row
}

func (f *fakeBackend) lastInserted() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastInsert
}

func (f *fakeBackend) supabaseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") == "" {
			http.Error(w, "missing apikey", http.StatusUnauthorized)
			return
		}

		table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodPost && table == "audit_log_whatsapp":
			f.auditInserts.Add(1)
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `[{}]`)

		case r.Method == http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			var row map[string]any
			json.Unmarshal(body, &row)
			f.insert(row)

			row["id"] = "a1b2c3d4-e5f6-7890-abcd-ef0123456789"
			row["created_at"] = time.Now().UTC().Format(time.RFC3339)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode([]map[string]any{row})

		case r.Method == http.MethodGet && table == "demandas_whatsapp":
			json.NewEncoder(w).Encode([]map[string]any{{
				"id":         "a1b2c3d4-e5f6-7890-abcd-ef0123456789",
				"titulo":     "Buraco na rua 7",
				"status":     "ABERTA",
				"created_at": "2026-03-15T10:00:00Z",
			}})

		case r.Method == http.MethodGet && strings.HasPrefix(table, "ia_integrations"):
			io.WriteString(w, `[]`)

		default:
			io.WriteString(w, `[]`)
		}
	}
}

func (f *fakeBackend) openrouterHandler(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.openrouterHit.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
			"usage": map[string]any{"prompt_tokens": 320, "completion_tokens": 40},
		})
	}
}

func buildRouter(t *testing.T, backend *fakeBackend, modelReply string) http.Handler {
	t.Helper()

	supaServer := httptest.NewServer(backend.supabaseHandler())
	t.Cleanup(supaServer.Close)

	orServer := httptest.NewServer(backend.openrouterHandler(modelReply))
	t.Cleanup(orServer.Close)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cfg := resilience.Config{MaxRetries: 1, InitialBackoff: 10 * time.Millisecond, MaxConcurrency: 5}
	httpClient := &http.Client{Timeout: 5 * time.Second}

	supaClient := supabase.NewClient(httpClient, supaServer.URL, "anon-key", "service-key",
		resilience.NewCircuitBreaker("supabase-test"), cfg, logger)
	orClient := openrouter.NewClient(httpClient, orServer.URL, "or-key", "openai/gpt-4o-mini",
		resilience.NewCircuitBreaker("openrouter-test"), metrics, logger)

	parser := interpreter.NewAIParser(orClient, resilience.NewBulkhead(5), 2*time.Second, logger)
	auditor := service.NewAuditor(supaClient, metrics, logger)
	svc := service.NewAssessor(parser, supaClient, supaClient, supaClient,
		cache.New[*domain.Integration](time.Minute), auditor, metrics, logger)

	return handler.NewRouter(svc, supaClient, orClient, metrics, logger, "")
}

func post(t *testing.T, router http.Handler, body map[string]any) *domain.ActionResult {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/v1/whatsapp/actions", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res domain.ActionResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return &res
}

func TestIntegration_ComandoManualCompleto(t *testing.T) {
	backend := &fakeBackend{}
	router := buildRouter(t, backend, "")

	res := post(t, router, map[string]any{
		"userId":     "user-1",
		"userName":   "Ana",
		"gabineteId": "gab-1",
		"userRole":   "assessor",
		"userText":   "cadastrar eleitor João Silva",
	})

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if !strings.Contains(res.Message, "✅ Eleitor João Silva cadastrado com sucesso!") {
		t.Errorf("unexpected message %q", res.Message)
	}
	if backend.openrouterHit.Load() != 0 {
		t.Errorf("manual command must not call the model, got %d calls", backend.openrouterHit.Load())
	}
	if row := backend.lastInserted(); row["gabinete_id"] != "gab-1" {
		t.Errorf("insert not scoped to gabinete: %+v", row)
	}
	if backend.auditInserts.Load() != 1 {
		t.Errorf("expected 1 audit insert, got %d", backend.auditInserts.Load())
	}
}

func TestIntegration_TextoLivreViaModelo(t *testing.T) {
	backend := &fakeBackend{}
	router := buildRouter(t, backend,
		`{"action":"registrar_demanda","parameters":{"titulo":"Buraco na rua 7","descricao":"Altura do número 300"}}`)

	res := post(t, router, map[string]any{
		"userId":     "user-1",
		"gabineteId": "gab-1",
		"userRole":   "assessor",
		"userText":   "tem um buraco enorme na rua 7, dá pra resolver?",
	})

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if backend.openrouterHit.Load() != 1 {
		t.Fatalf("expected 1 model call, got %d", backend.openrouterHit.Load())
	}
	if !strings.Contains(res.Message, `🎯 Demanda "Buraco na rua 7" registrada com sucesso!`) {
		t.Errorf("unexpected message %q", res.Message)
	}
	if row := backend.lastInserted(); row["status"] != "ABERTA" {
		t.Errorf("expected status ABERTA on insert, got %+v", row)
	}
}

func TestIntegration_ConsultaDeStatus(t *testing.T) {
	backend := &fakeBackend{}
	router := buildRouter(t, backend, "")

	res := post(t, router, map[string]any{
		"userId":     "user-1",
		"gabineteId": "gab-1",
		"userRole":   "chefe_gabinete",
		"userText":   "status demanda a1b2c3d4",
	})

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	for _, want := range []string{"📊 Status de demanda:", "Buraco na rua 7", "🔄 Status: ABERTA", "15/03/2026"} {
		if !strings.Contains(res.Message, want) {
			t.Errorf("expected %q in %q", want, res.Message)
		}
	}
}

func TestIntegration_ModeloForaDoArDegradaParaChat(t *testing.T) {
	backend := &fakeBackend{}

	supaServer := httptest.NewServer(backend.supabaseHandler())
	t.Cleanup(supaServer.Close)
	orServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	t.Cleanup(orServer.Close)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cfg := resilience.Config{MaxRetries: 1, InitialBackoff: 10 * time.Millisecond, MaxConcurrency: 5}
	httpClient := &http.Client{Timeout: 2 * time.Second}

	supaClient := supabase.NewClient(httpClient, supaServer.URL, "anon-key", "service-key",
		resilience.NewCircuitBreaker("supabase-test2"), cfg, logger)
	orClient := openrouter.NewClient(httpClient, orServer.URL, "or-key", "openai/gpt-4o-mini",
		resilience.NewCircuitBreaker("openrouter-test2"), metrics, logger)
	parser := interpreter.NewAIParser(orClient, resilience.NewBulkhead(5), time.Second, logger)
	auditor := service.NewAuditor(supaClient, metrics, logger)
	svc := service.NewAssessor(parser, supaClient, supaClient, supaClient,
		cache.New[*domain.Integration](time.Minute), auditor, metrics, logger)
	router := handler.NewRouter(svc, supaClient, orClient, metrics, logger, "")

	res := post(t, router, map[string]any{
		"userId":     "user-1",
		"gabineteId": "gab-1",
		"userRole":   "assessor",
		"userText":   "alguma mensagem sem comando",
	})

	if !res.Success {
		t.Fatalf("degraded chat must still succeed, got %+v", res)
	}
	if !strings.Contains(res.Message, "problema técnico") {
		t.Errorf("expected apology text, got %q", res.Message)
	}
}
